package hierarchy

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"orghierarchy-backend/shared/database/models"
)

var (
	childrenCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hierarchy",
		Subsystem: "children",
		Name:      "created_total",
		Help:      "Total number of child organizations created, by organization type.",
	}, []string{"org_type"})

	creationRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hierarchy",
		Subsystem: "creation",
		Name:      "rejected_total",
		Help:      "Total number of rejected child creations, by error kind.",
	}, []string{"kind"})

	slugCollisions = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "hierarchy",
		Subsystem: "slug",
		Name:      "collisions_total",
		Help:      "Total number of derived slug collisions, including store-level races.",
	})

	treeLevelsFetched = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "hierarchy",
		Subsystem: "tree",
		Name:      "levels_fetched",
		Help:      "Number of breadth batches issued per descendant traversal.",
		Buckets:   prometheus.LinearBuckets(1, 1, 12),
	})
)

func recordChildCreated(t models.OrgType) {
	childrenCreated.WithLabelValues(string(t)).Inc()
}

func recordRejection(kind ErrorKind) {
	if kind == "" {
		kind = KindUnexpected
	}
	creationRejected.WithLabelValues(string(kind)).Inc()
}

func recordSlugCollision() {
	slugCollisions.Inc()
}

func recordLevelsFetched(levels int) {
	treeLevelsFetched.Observe(float64(levels))
}
