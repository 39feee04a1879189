package hierarchy_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/mock"

	"orghierarchy-backend/shared/database/models"
	"orghierarchy-backend/shared/hierarchy"
	"orghierarchy-backend/shared/hierarchy/hierarchytest"
	"orghierarchy-backend/shared/utils/permission"
)

var (
	owner  = hierarchy.Actor{ID: uuid.MustParse("11111111-1111-1111-1111-111111111111"), Email: "owner@acme.test", Role: permission.RoleOwner}
	viewer = hierarchy.Actor{ID: uuid.MustParse("22222222-2222-2222-2222-222222222222"), Email: "viewer@acme.test", Role: permission.RoleViewer}

	fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
)

type fixture struct {
	store  *hierarchytest.MemoryStore
	audit  *hierarchytest.AuditRecorder
	events *hierarchytest.EventRecorder
	hook   *test.Hook
	svc    *hierarchy.Service
}

func newFixture(t *testing.T, maxDepth int) *fixture {
	return newFixtureWithChecker(t, maxDepth, nil)
}

func newFixtureWithChecker(t *testing.T, maxDepth int, perms permission.Checker) *fixture {
	t.Helper()
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)

	f := &fixture{
		store:  hierarchytest.NewMemoryStore(),
		audit:  &hierarchytest.AuditRecorder{},
		events: &hierarchytest.EventRecorder{},
		hook:   hook,
	}
	f.svc = hierarchy.NewService(f.store, f.audit, perms, maxDepth,
		hierarchy.WithLogger(log),
		hierarchy.WithEventPublisher(f.events),
		hierarchy.WithClock(func() time.Time { return fixedNow }),
	)
	return f
}

func (f *fixture) root(name string, orgType models.OrgType, settings map[string]interface{}) models.Organization {
	return f.store.Put(models.Organization{
		Name:           name,
		Slug:           hierarchy.Slugify(name),
		OrgType:        orgType,
		AllowChildOrgs: true,
		PlanTier:       models.PlanTierEnterprise,
		Settings:       settings,
	})
}

func (f *fixture) child(parent models.Organization, name string) models.Organization {
	parentID := parent.ID
	return f.store.Put(models.Organization{
		Name:           name,
		Slug:           hierarchy.Slugify(name),
		OrgType:        models.OrgTypeDivision,
		ParentOrgID:    &parentID,
		HierarchyLevel: parent.HierarchyLevel + 1,
		AllowChildOrgs: true,
		PlanTier:       parent.PlanTier,
	})
}

// chain builds root plus length descendants, each the only child of the previous.
func (f *fixture) chain(length int) []models.Organization {
	nodes := []models.Organization{f.root("Chain Root", models.OrgTypeStandard, nil)}
	for i := 0; i < length; i++ {
		nodes = append(nodes, f.child(nodes[len(nodes)-1], "Level "+string(rune('A'+i))))
	}
	return nodes
}

func (f *fixture) create(t *testing.T, parent models.Organization, name string, orgType models.OrgType) *models.Organization {
	t.Helper()
	org, err := f.svc.CreateChild(context.Background(), hierarchy.CreateChildInput{
		ParentOrgID: parent.ID,
		Name:        name,
		OrgType:     orgType,
		Actor:       owner,
	})
	if err != nil {
		t.Fatalf("create %q: %v", name, err)
	}
	return org
}

func boolPtr(b bool) *bool { return &b }
func intPtr(i int) *int    { return &i }

type mockChecker struct {
	mock.Mock
}

func (m *mockChecker) HasPermission(ctx context.Context, subject permission.Subject, action permission.Action) (bool, error) {
	args := m.Called(ctx, subject, action)
	return args.Bool(0), args.Error(1)
}
