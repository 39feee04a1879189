package hierarchy

import (
	"context"

	"github.com/google/uuid"

	"orghierarchy-backend/shared/database/models"
	"orghierarchy-backend/shared/utils/query"
)

// ChildFilter narrows a children lookup. Empty slices match everything.
type ChildFilter struct {
	OrgTypes  []models.OrgType
	PlanTiers []models.PlanTier
}

// Store is the persistence boundary of the hierarchy. Implementations read
// straight from the backing store on every call.
type Store interface {
	// Get returns ErrOrganizationNotFound when id does not exist.
	Get(ctx context.Context, id uuid.UUID) (*models.Organization, error)
	// FindChildren returns the direct children of every parent in parentIDs,
	// ordered by display order then creation time.
	FindChildren(ctx context.Context, parentIDs []uuid.UUID, filter ChildFilter) ([]models.Organization, error)
	FindRoots(ctx context.Context) ([]models.Organization, error)
	// ExistsSlugOrDomain ignores empty arguments.
	ExistsSlugOrDomain(ctx context.Context, slug, domain string) (bool, error)
	// Insert returns ErrSlugTaken or ErrDomainTaken on unique violations.
	Insert(ctx context.Context, org *models.Organization) error
	AggregateCountsByType(ctx context.Context) (map[models.OrgType]int64, error)
	CountChildren(ctx context.Context, parentID uuid.UUID) (int64, error)
	List(ctx context.Context, params query.FilterParams) ([]models.Organization, int64, error)
	// Delete returns ErrOrganizationHasChildren if rows still reference id.
	Delete(ctx context.Context, id uuid.UUID) error
	UpdateLogoURL(ctx context.Context, id uuid.UUID, logoURL string) error
	// Transaction runs fn in one atomic unit. Store calls made with the
	// context passed to fn join that unit.
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}
