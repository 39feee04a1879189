package hierarchy

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"orghierarchy-backend/shared/database/models"
	"orghierarchy-backend/shared/utils/permission"
)

// maxSlugAttempts bounds the suffix search for a free derived slug.
const maxSlugAttempts = 1000

// CreateChildInput is a request to create one organization under ParentOrgID.
// Nil pointers take their documented defaults.
type CreateChildInput struct {
	ParentOrgID uuid.UUID
	Name        string
	Slug        string // derived from Name when empty
	OrgType     models.OrgType
	PlanTier    models.PlanTier // parent's tier when empty

	InheritSettings *bool // default true
	Settings        map[string]interface{}
	AllowChildOrgs  *bool // default: the type has recommended child types
	DisplayOrder    *int  // default: appended after existing siblings

	Industry    string
	CompanySize string
	Country     string
	Timezone    string
	LogoURL     string
	BrandColor  string
	Domain      string

	Actor Actor
}

// Creator validates and commits new child organizations.
type Creator struct {
	store    Store
	resolver *Resolver
	audit    AuditSink
	perms    permission.Checker
	opts     options
}

func NewCreator(store Store, resolver *Resolver, audit AuditSink, perms permission.Checker, opts ...Option) *Creator {
	return &Creator{
		store:    store,
		resolver: resolver,
		audit:    audit,
		perms:    perms,
		opts:     buildOptions(opts),
	}
}

// CreateChild runs the validation sequence in order and stops at the first
// failure. On success the organization row and its audit record are
// committed together.
func (c *Creator) CreateChild(ctx context.Context, in CreateChildInput) (*models.Organization, error) {
	org, err := c.createChild(ctx, in)
	if err != nil {
		kind := KindOf(err)
		recordRejection(kind)

		entry := c.opts.log.WithFields(logrus.Fields{
			"parent_org_id": in.ParentOrgID,
			"actor_id":      in.Actor.ID,
			"error_kind":    kind,
		})
		if kind == KindUnexpected {
			entry.WithError(err).Error("child organization creation failed")
		} else {
			entry.WithField("reason", MessageOf(err)).Info("child organization creation rejected")
		}
		return nil, err
	}

	recordChildCreated(org.OrgType)
	c.opts.log.WithFields(logrus.Fields{
		"org_id":          org.ID,
		"parent_org_id":   in.ParentOrgID,
		"actor_id":        in.Actor.ID,
		"slug":            org.Slug,
		"hierarchy_level": org.HierarchyLevel,
	}).Info("child organization created")

	c.opts.publish(Event{
		Type:           EventOrganizationCreated,
		OrganizationID: org.ID,
		ParentOrgID:    org.ParentOrgID,
		ActorID:        in.Actor.ID,
		Organization:   org,
		OccurredAt:     c.opts.now(),
	})
	return org, nil
}

func (c *Creator) createChild(ctx context.Context, in CreateChildInput) (*models.Organization, error) {
	allowed, err := permission.Allowed(ctx, c.perms, permission.Subject{UserID: in.Actor.ID, Role: in.Actor.Role}, permission.ActionHierarchyManage)
	if err != nil {
		return nil, UnexpectedError(fmt.Errorf("permission check: %w", err))
	}
	if !allowed {
		return nil, ForbiddenError("you are not allowed to manage the organization hierarchy")
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ValidationError("name is required")
	}

	if in.OrgType == "" {
		return nil, ValidationError("orgType is required")
	}
	if !in.OrgType.IsValid() {
		return nil, ValidationError("orgType %q is not a recognized organization type", in.OrgType)
	}
	if in.PlanTier != "" && !in.PlanTier.IsValid() {
		return nil, ValidationError("planTier %q is not a recognized plan tier", in.PlanTier)
	}

	explicitSlug := strings.TrimSpace(in.Slug)
	if explicitSlug != "" && !ValidSlug(explicitSlug) {
		return nil, ValidationError("slug %q may only contain lowercase letters, digits and single hyphens", explicitSlug)
	}
	domain := strings.ToLower(strings.TrimSpace(in.Domain))

	parent, err := c.resolver.load(ctx, in.ParentOrgID, "parent organization")
	if err != nil {
		return nil, err
	}

	if !parent.AllowChildOrgs {
		return nil, PolicyViolation("parent organization %q does not allow child organizations", parent.Name)
	}

	level := levelUnder(parent)
	if level > c.resolver.MaxDepth() {
		return nil, PolicyViolation("maximum hierarchy depth of %d exceeded", c.resolver.MaxDepth())
	}

	baseSlug := Slugify(name)
	slug := explicitSlug
	if slug != "" {
		taken, err := c.store.ExistsSlugOrDomain(ctx, slug, "")
		if err != nil {
			return nil, UnexpectedError(err)
		}
		if taken {
			return nil, ConflictError(nil, "slug %q is already taken", slug)
		}
	} else {
		slug, err = c.nextFreeSlug(ctx, baseSlug)
		if err != nil {
			return nil, err
		}
	}

	if domain != "" {
		taken, err := c.store.ExistsSlugOrDomain(ctx, "", domain)
		if err != nil {
			return nil, UnexpectedError(err)
		}
		if taken {
			return nil, ConflictError(nil, "domain %q is already in use", domain)
		}
	}

	org, err := c.build(ctx, in, parent, name, slug, domain, level)
	if err != nil {
		return nil, err
	}

	err = c.commit(ctx, org, in.Actor)
	if errors.Is(err, ErrSlugTaken) && explicitSlug == "" {
		// Another request took the derived slug between our check and insert.
		recordSlugCollision()
		c.opts.log.WithField("slug", org.Slug).Warn("derived slug taken concurrently, retrying once")

		org.Slug, err = c.nextFreeSlug(ctx, baseSlug)
		if err != nil {
			return nil, err
		}
		err = c.commit(ctx, org, in.Actor)
	}

	switch {
	case err == nil:
		return org, nil
	case errors.Is(err, ErrSlugTaken):
		return nil, ConflictError(err, "slug %q is already taken", org.Slug)
	case errors.Is(err, ErrDomainTaken):
		return nil, ConflictError(err, "domain %q is already in use", domain)
	default:
		return nil, UnexpectedError(err)
	}
}

func (c *Creator) build(ctx context.Context, in CreateChildInput, parent *models.Organization, name, slug, domain string, level int) (*models.Organization, error) {
	inherit := true
	if in.InheritSettings != nil {
		inherit = *in.InheritSettings
	}

	planTier := in.PlanTier
	if planTier == "" {
		planTier = parent.PlanTier
	}
	if planTier == "" {
		planTier = models.PlanTierFree
	}

	allowChildren := len(GetRecommendedChildTypes(in.OrgType)) > 0
	if in.AllowChildOrgs != nil {
		allowChildren = *in.AllowChildOrgs
	}

	var displayOrder int
	if in.DisplayOrder != nil {
		displayOrder = *in.DisplayOrder
	} else {
		siblings, err := c.store.CountChildren(ctx, parent.ID)
		if err != nil {
			return nil, UnexpectedError(err)
		}
		displayOrder = int(siblings)
	}

	parentID := parent.ID
	org := &models.Organization{
		ID:             uuid.New(),
		Name:           name,
		Slug:           slug,
		OrgType:        in.OrgType,
		Status:         models.OrganizationStatusActive,
		ParentOrgID:    &parentID,
		HierarchyLevel: level,
		AllowChildOrgs: allowChildren,
		DisplayOrder:   displayOrder,
		PlanTier:       planTier,
		Industry:       strings.TrimSpace(in.Industry),
		CompanySize:    strings.TrimSpace(in.CompanySize),
		Country:        strings.ToUpper(strings.TrimSpace(in.Country)),
		Timezone:       strings.TrimSpace(in.Timezone),
		LogoURL:        strings.TrimSpace(in.LogoURL),
		BrandColor:     strings.TrimSpace(in.BrandColor),
		Settings:       ResolveInitialSettings(parent.Settings, in.Settings, inherit),
	}
	if domain != "" {
		org.Domain = &domain
	}
	return org, nil
}

func (c *Creator) commit(ctx context.Context, org *models.Organization, actor Actor) error {
	return c.store.Transaction(ctx, func(txCtx context.Context) error {
		if err := c.store.Insert(txCtx, org); err != nil {
			return err
		}
		return c.audit.Record(txCtx, AuditRecord{
			ActorID:        actor.ID,
			Action:         AuditActionChildCreated,
			OrganizationID: org.ID,
			ParentOrgID:    org.ParentOrgID,
			Metadata: map[string]interface{}{
				"slug":    org.Slug,
				"orgType": string(org.OrgType),
				"level":   org.HierarchyLevel,
			},
			OccurredAt: c.opts.now(),
		})
	})
}

// nextFreeSlug returns base, or base-1, base-2, ... whichever is free first.
func (c *Creator) nextFreeSlug(ctx context.Context, base string) (string, error) {
	for i := 0; i < maxSlugAttempts; i++ {
		candidate := base
		if i > 0 {
			candidate = fmt.Sprintf("%s-%d", base, i)
			recordSlugCollision()
		}
		taken, err := c.store.ExistsSlugOrDomain(ctx, candidate, "")
		if err != nil {
			return "", UnexpectedError(err)
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", ConflictError(nil, "could not find a free slug for %q", base)
}
