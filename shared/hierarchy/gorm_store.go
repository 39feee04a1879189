package hierarchy

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"orghierarchy-backend/shared/database/models"
	"orghierarchy-backend/shared/utils/query"
)

const (
	slugIndexName   = "idx_organizations_slug"
	domainIndexName = "idx_organizations_domain"
)

type txKey struct{}

// WithTx returns a context carrying tx. Store calls made with it run inside tx.
func WithTx(ctx context.Context, tx *gorm.DB) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// UseTx returns the transaction carried by ctx, or fallback bound to ctx.
func UseTx(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok && tx != nil {
		return tx
	}
	return fallback.WithContext(ctx)
}

// GormStore is the postgres-backed Store.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

var (
	listFilters = map[string]string{
		"status":      "status",
		"orgType":     "org_type",
		"planTier":    "plan_tier",
		"parentOrgId": "parent_org_id",
		"country":     "country",
	}
	listSortFields = map[string]string{
		"name":           "name",
		"slug":           "slug",
		"orgType":        "org_type",
		"hierarchyLevel": "hierarchy_level",
		"displayOrder":   "display_order",
		"created_at":     "created_at",
		"updated_at":     "updated_at",
	}
	listSearchFields = []string{"name", "slug"}
)

func (s *GormStore) Get(ctx context.Context, id uuid.UUID) (*models.Organization, error) {
	var org models.Organization
	if err := UseTx(ctx, s.db).Where("id = ?", id).First(&org).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("get organization %s: %w", id, err)
	}
	return &org, nil
}

func (s *GormStore) FindChildren(ctx context.Context, parentIDs []uuid.UUID, filter ChildFilter) ([]models.Organization, error) {
	if len(parentIDs) == 0 {
		return []models.Organization{}, nil
	}

	q := UseTx(ctx, s.db).Where("parent_org_id IN ?", parentIDs)
	if len(filter.OrgTypes) > 0 {
		q = q.Where("org_type IN ?", filter.OrgTypes)
	}
	if len(filter.PlanTiers) > 0 {
		q = q.Where("plan_tier IN ?", filter.PlanTiers)
	}

	var children []models.Organization
	if err := q.Order("display_order ASC").Order("created_at ASC").Order("id ASC").Find(&children).Error; err != nil {
		return nil, fmt.Errorf("find children: %w", err)
	}
	return children, nil
}

func (s *GormStore) FindRoots(ctx context.Context) ([]models.Organization, error) {
	var roots []models.Organization
	err := UseTx(ctx, s.db).
		Where("parent_org_id IS NULL").
		Order("display_order ASC").
		Order("created_at ASC").
		Find(&roots).Error
	if err != nil {
		return nil, fmt.Errorf("find roots: %w", err)
	}
	return roots, nil
}

func (s *GormStore) ExistsSlugOrDomain(ctx context.Context, slug, domain string) (bool, error) {
	q := UseTx(ctx, s.db).Model(&models.Organization{})
	switch {
	case slug != "" && domain != "":
		q = q.Where("slug = ? OR domain = ?", slug, domain)
	case slug != "":
		q = q.Where("slug = ?", slug)
	case domain != "":
		q = q.Where("domain = ?", domain)
	default:
		return false, nil
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, fmt.Errorf("check slug/domain: %w", err)
	}
	return count > 0, nil
}

func (s *GormStore) Insert(ctx context.Context, org *models.Organization) error {
	if err := UseTx(ctx, s.db).Create(org).Error; err != nil {
		return mapPgError(err)
	}
	return nil
}

func (s *GormStore) AggregateCountsByType(ctx context.Context) (map[models.OrgType]int64, error) {
	var rows []struct {
		OrgType models.OrgType
		Count   int64
	}
	err := UseTx(ctx, s.db).
		Model(&models.Organization{}).
		Select("org_type, COUNT(*) AS count").
		Group("org_type").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("aggregate counts: %w", err)
	}

	counts := make(map[models.OrgType]int64, len(rows))
	for _, r := range rows {
		counts[r.OrgType] = r.Count
	}
	return counts, nil
}

func (s *GormStore) CountChildren(ctx context.Context, parentID uuid.UUID) (int64, error) {
	var count int64
	err := UseTx(ctx, s.db).
		Model(&models.Organization{}).
		Where("parent_org_id = ?", parentID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count children of %s: %w", parentID, err)
	}
	return count, nil
}

func (s *GormStore) List(ctx context.Context, params query.FilterParams) ([]models.Organization, int64, error) {
	q := UseTx(ctx, s.db).Model(&models.Organization{})
	q = query.ApplyFilters(q, params.Filters, listFilters)
	q = query.ApplySearch(q, params.Search, listSearchFields)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count organizations: %w", err)
	}

	q = query.ApplySort(q, params.Sort, listSortFields)
	q = query.ApplyPagination(q, params.Page, params.Limit)

	var orgs []models.Organization
	if err := q.Find(&orgs).Error; err != nil {
		return nil, 0, fmt.Errorf("list organizations: %w", err)
	}
	return orgs, total, nil
}

func (s *GormStore) Delete(ctx context.Context, id uuid.UUID) error {
	res := UseTx(ctx, s.db).Where("id = ?", id).Delete(&models.Organization{})
	if res.Error != nil {
		var pgErr *pgconn.PgError
		if errors.As(res.Error, &pgErr) && pgErr.Code == "23503" { // foreign_key_violation
			return fmt.Errorf("%w: %s", ErrOrganizationHasChildren, pgErr.Detail)
		}
		return fmt.Errorf("delete organization %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrOrganizationNotFound
	}
	return nil
}

func (s *GormStore) UpdateLogoURL(ctx context.Context, id uuid.UUID, logoURL string) error {
	res := UseTx(ctx, s.db).
		Model(&models.Organization{}).
		Where("id = ?", id).
		Update("logo_url", logoURL)
	if res.Error != nil {
		return fmt.Errorf("update logo of %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrOrganizationNotFound
	}
	return nil
}

func (s *GormStore) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(WithTx(ctx, tx))
	})
}

func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	if pgErr.Code != "23505" { // unique_violation
		return err
	}
	switch pgErr.ConstraintName {
	case slugIndexName:
		return fmt.Errorf("%w: %s", ErrSlugTaken, pgErr.Detail)
	case domainIndexName:
		return fmt.Errorf("%w: %s", ErrDomainTaken, pgErr.Detail)
	}
	return err
}
