package hierarchy

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"orghierarchy-backend/shared/database/models"
	"orghierarchy-backend/shared/utils/permission"
	"orghierarchy-backend/shared/utils/query"
)

// ChildMeta tells a client what it may add under an organization.
type ChildMeta struct {
	CanCreateChildren     bool             `json:"canCreateChildren"`
	RecommendedChildTypes []models.OrgType `json:"recommendedChildTypes"`
}

// Service is the entry point the HTTP layer and tools use.
type Service struct {
	store    Store
	resolver *Resolver
	creator  *Creator
	audit    AuditSink
	perms    permission.Checker
	opts     options
}

func NewService(store Store, audit AuditSink, perms permission.Checker, maxDepth int, opts ...Option) *Service {
	resolver := NewResolver(store, maxDepth, opts...)
	return &Service{
		store:    store,
		resolver: resolver,
		creator:  NewCreator(store, resolver, audit, perms, opts...),
		audit:    audit,
		perms:    perms,
		opts:     buildOptions(opts),
	}
}

func (s *Service) Resolver() *Resolver {
	return s.resolver
}

func (s *Service) GetOrganization(ctx context.Context, id uuid.UUID) (*models.Organization, error) {
	return s.resolver.load(ctx, id, "organization")
}

func (s *Service) ListOrganizations(ctx context.Context, params query.FilterParams) ([]models.Organization, int64, error) {
	orgs, total, err := s.store.List(ctx, params)
	if err != nil {
		return nil, 0, UnexpectedError(err)
	}
	return orgs, total, nil
}

func (s *Service) ListRoots(ctx context.Context) ([]models.Organization, error) {
	roots, err := s.store.FindRoots(ctx)
	if err != nil {
		return nil, UnexpectedError(err)
	}
	return roots, nil
}

func (s *Service) GetHierarchyTree(ctx context.Context, rootOrgID uuid.UUID) (*TreeNode, error) {
	return s.resolver.GetHierarchyTree(ctx, rootOrgID)
}

func (s *Service) GetDescendants(ctx context.Context, orgID uuid.UUID, maxDepth int) (*TreeNode, error) {
	return s.resolver.GetDescendantsRecursive(ctx, orgID, maxDepth)
}

func (s *Service) GetDirectChildren(ctx context.Context, orgID uuid.UUID, filter ChildFilter) ([]models.Organization, error) {
	return s.resolver.GetDirectChildren(ctx, orgID, filter)
}

func (s *Service) GetAncestors(ctx context.Context, orgID uuid.UUID) ([]models.Organization, error) {
	return s.resolver.GetAncestors(ctx, orgID)
}

func (s *Service) CreateChild(ctx context.Context, in CreateChildInput) (*models.Organization, error) {
	return s.creator.CreateChild(ctx, in)
}

// DescribeChildren reports whether actor could add a child under org right now.
// A failing permission backend is logged and treated as a denial.
func (s *Service) DescribeChildren(ctx context.Context, org *models.Organization, actor Actor) ChildMeta {
	meta := ChildMeta{RecommendedChildTypes: GetRecommendedChildTypes(org.OrgType)}
	if !org.AllowChildOrgs || levelUnder(org) > s.resolver.MaxDepth() {
		return meta
	}

	allowed, err := s.allowed(ctx, actor, permission.ActionHierarchyManage)
	if err != nil {
		s.opts.log.WithError(err).WithField("actor_id", actor.ID).Warn("permission check failed while describing children")
		return meta
	}
	meta.CanCreateChildren = allowed
	return meta
}

// DeleteOrganization removes a leaf organization. Organizations that still
// have children are never deleted; the subtree must be emptied first.
func (s *Service) DeleteOrganization(ctx context.Context, id uuid.UUID, actor Actor) error {
	if err := s.require(ctx, actor, permission.ActionOrganizationDelete, "you are not allowed to delete organizations"); err != nil {
		return err
	}

	org, err := s.resolver.load(ctx, id, "organization")
	if err != nil {
		return err
	}

	children, err := s.store.CountChildren(ctx, id)
	if err != nil {
		return UnexpectedError(err)
	}
	if children > 0 {
		return PolicyViolation("organization %q still has %d child organizations", org.Name, children)
	}

	err = s.store.Transaction(ctx, func(txCtx context.Context) error {
		if err := s.store.Delete(txCtx, id); err != nil {
			return err
		}
		return s.audit.Record(txCtx, AuditRecord{
			ActorID:        actor.ID,
			Action:         AuditActionOrganizationDeleted,
			OrganizationID: id,
			ParentOrgID:    org.ParentOrgID,
			Metadata:       map[string]interface{}{"slug": org.Slug},
			OccurredAt:     s.opts.now(),
		})
	})
	switch {
	case err == nil:
	case errors.Is(err, ErrOrganizationHasChildren):
		return PolicyViolation("organization %q still has child organizations", org.Name)
	case errors.Is(err, ErrOrganizationNotFound):
		return NotFoundError("organization %s not found", id)
	default:
		return UnexpectedError(err)
	}

	s.opts.log.WithFields(logrus.Fields{
		"org_id":   id,
		"actor_id": actor.ID,
	}).Info("organization deleted")
	s.opts.publish(Event{
		Type:           EventOrganizationDeleted,
		OrganizationID: id,
		ParentOrgID:    org.ParentOrgID,
		ActorID:        actor.ID,
		OccurredAt:     s.opts.now(),
	})
	return nil
}

// UpdateLogo points the organization's logo at logoURL.
func (s *Service) UpdateLogo(ctx context.Context, id uuid.UUID, actor Actor, logoURL string) (*models.Organization, error) {
	if err := s.require(ctx, actor, permission.ActionOrganizationUpdate, "you are not allowed to update organizations"); err != nil {
		return nil, err
	}

	org, err := s.resolver.load(ctx, id, "organization")
	if err != nil {
		return nil, err
	}

	err = s.store.Transaction(ctx, func(txCtx context.Context) error {
		if err := s.store.UpdateLogoURL(txCtx, id, logoURL); err != nil {
			return err
		}
		return s.audit.Record(txCtx, AuditRecord{
			ActorID:        actor.ID,
			Action:         AuditActionLogoUpdated,
			OrganizationID: id,
			ParentOrgID:    org.ParentOrgID,
			Metadata:       map[string]interface{}{"logoUrl": logoURL},
			OccurredAt:     s.opts.now(),
		})
	})
	if err != nil {
		if errors.Is(err, ErrOrganizationNotFound) {
			return nil, NotFoundError("organization %s not found", id)
		}
		return nil, UnexpectedError(err)
	}

	org.LogoURL = logoURL
	s.opts.publish(Event{
		Type:           EventOrganizationUpdated,
		OrganizationID: id,
		ParentOrgID:    org.ParentOrgID,
		ActorID:        actor.ID,
		Organization:   org,
		OccurredAt:     s.opts.now(),
	})
	return org, nil
}

// Stats counts organizations per type across the whole forest.
func (s *Service) Stats(ctx context.Context, actor Actor) (map[models.OrgType]int64, error) {
	if err := s.require(ctx, actor, permission.ActionHierarchyStats, "you are not allowed to view hierarchy statistics"); err != nil {
		return nil, err
	}
	counts, err := s.store.AggregateCountsByType(ctx)
	if err != nil {
		return nil, UnexpectedError(err)
	}
	return counts, nil
}

// Authorize returns a Forbidden error unless actor may perform action.
func (s *Service) Authorize(ctx context.Context, actor Actor, action permission.Action) error {
	return s.require(ctx, actor, action, fmt.Sprintf("you are not allowed to perform %s", action))
}

func (s *Service) allowed(ctx context.Context, actor Actor, action permission.Action) (bool, error) {
	return permission.Allowed(ctx, s.perms, permission.Subject{UserID: actor.ID, Role: actor.Role}, action)
}

func (s *Service) require(ctx context.Context, actor Actor, action permission.Action, denial string) error {
	ok, err := s.allowed(ctx, actor, action)
	if err != nil {
		return UnexpectedError(fmt.Errorf("permission check %s: %w", action, err))
	}
	if !ok {
		return ForbiddenError("%s", denial)
	}
	return nil
}
