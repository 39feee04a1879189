package database

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"orghierarchy-backend/shared/database/models"
	"orghierarchy-backend/shared/hierarchy"
)

type seedNode struct {
	name     string
	orgType  models.OrgType
	planTier models.PlanTier
	settings map[string]interface{}
	children []seedNode
}

var demoForest = []seedNode{
	{
		name:     "Acme Group",
		orgType:  models.OrgTypeHoldingCompany,
		planTier: models.PlanTierEnterprise,
		settings: map[string]interface{}{
			"currency": "USD",
			"locale":   "en-US",
			"features": map[string]interface{}{"sso": true, "auditExport": true},
		},
		children: []seedNode{
			{name: "Acme Widgets", orgType: models.OrgTypeSubsidiary, children: []seedNode{
				{name: "Widgets Europe", orgType: models.OrgTypeRegional, settings: map[string]interface{}{"currency": "EUR", "locale": "de-DE"}},
				{name: "Widgets Engineering", orgType: models.OrgTypeDivision},
			}},
			{name: "Acme Gadgets", orgType: models.OrgTypeSubsidiary, planTier: models.PlanTierProfessional, children: []seedNode{
				{name: "Gadgets Pro", orgType: models.OrgTypeBrand},
			}},
		},
	},
	{
		name:     "Northwind Agency",
		orgType:  models.OrgTypeAgency,
		planTier: models.PlanTierProfessional,
		settings: map[string]interface{}{"currency": "GBP", "locale": "en-GB"},
		children: []seedNode{
			{name: "Contoso Retail", orgType: models.OrgTypeClient, planTier: models.PlanTierStarter},
			{name: "Fabrikam Foods", orgType: models.OrgTypeClient, planTier: models.PlanTierStarter},
		},
	},
}

// SeedDemoHierarchy builds the demo forest unless its roots already exist.
// Roots go straight to the store; everything below them goes through the
// same creation path the API uses, so levels, settings and audit rows match.
func SeedDemoHierarchy(ctx context.Context, store hierarchy.Store, svc *hierarchy.Service, actor hierarchy.Actor, log *logrus.Logger) (int, error) {
	created := 0
	for _, root := range demoForest {
		slug := hierarchy.Slugify(root.name)
		exists, err := store.ExistsSlugOrDomain(ctx, slug, "")
		if err != nil {
			return created, fmt.Errorf("check %s: %w", slug, err)
		}
		if exists {
			log.WithField("slug", slug).Info("demo root already present, skipping")
			continue
		}

		org := &models.Organization{
			Name:           root.name,
			Slug:           slug,
			OrgType:        root.orgType,
			Status:         models.OrganizationStatusActive,
			HierarchyLevel: 0,
			AllowChildOrgs: true,
			PlanTier:       root.planTier,
			Settings:       root.settings,
		}
		if err := store.Insert(ctx, org); err != nil {
			return created, fmt.Errorf("insert root %s: %w", slug, err)
		}
		created++

		n, err := seedChildren(ctx, svc, actor, org, root.children)
		created += n
		if err != nil {
			return created, err
		}
	}

	log.WithField("created", created).Info("demo hierarchy seeded")
	return created, nil
}

func seedChildren(ctx context.Context, svc *hierarchy.Service, actor hierarchy.Actor, parent *models.Organization, nodes []seedNode) (int, error) {
	created := 0
	for _, node := range nodes {
		child, err := svc.CreateChild(ctx, hierarchy.CreateChildInput{
			ParentOrgID: parent.ID,
			Name:        node.name,
			OrgType:     node.orgType,
			PlanTier:    node.planTier,
			Settings:    node.settings,
			Actor:       actor,
		})
		if err != nil {
			return created, fmt.Errorf("create %s under %s: %w", node.name, parent.Slug, err)
		}
		created++

		n, err := seedChildren(ctx, svc, actor, child, node.children)
		created += n
		if err != nil {
			return created, err
		}
	}
	return created, nil
}
