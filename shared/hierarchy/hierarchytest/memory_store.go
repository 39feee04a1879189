// Package hierarchytest provides in-memory fakes of the hierarchy collaborators.
package hierarchytest

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"orghierarchy-backend/shared/database/models"
	"orghierarchy-backend/shared/hierarchy"
	"orghierarchy-backend/shared/utils/query"
)

type txKey struct{}

// txState collects the inverse of every write made inside a transaction.
type txState struct {
	undo []func()
}

// MemoryStore is a hierarchy.Store kept in a map. It enforces the same
// unique and foreign key rules as the postgres schema. A failed transaction
// undoes only its own writes; transactions are not isolated from each other.
type MemoryStore struct {
	mu    sync.Mutex
	orgs  map[uuid.UUID]models.Organization
	seq   map[uuid.UUID]int
	next  int
	epoch time.Time

	// FindChildrenCalls counts FindChildren invocations.
	FindChildrenCalls int
	// BeforeInsert, when set, runs before every insert without holding the
	// store lock, so it may call Put to simulate a concurrent writer. An
	// error aborts the insert.
	BeforeInsert func(org *models.Organization) error
}

var _ hierarchy.Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		orgs:  make(map[uuid.UUID]models.Organization),
		seq:   make(map[uuid.UUID]int),
		epoch: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func clone(org models.Organization) models.Organization {
	if org.Settings != nil {
		settings := make(map[string]interface{}, len(org.Settings))
		for k, v := range org.Settings {
			settings[k] = v
		}
		org.Settings = settings
	}
	if org.ParentOrgID != nil {
		parent := *org.ParentOrgID
		org.ParentOrgID = &parent
	}
	if org.Domain != nil {
		domain := *org.Domain
		org.Domain = &domain
	}
	return org
}

// Put stores org as-is, skipping every constraint. Use it to build fixtures,
// including corrupt ones.
func (s *MemoryStore) Put(org models.Organization) models.Organization {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.putLocked(org)
}

func (s *MemoryStore) putLocked(org models.Organization) models.Organization {
	if org.ID == uuid.Nil {
		org.ID = uuid.New()
	}
	if org.Status == "" {
		org.Status = models.OrganizationStatusActive
	}
	if org.Settings == nil {
		org.Settings = map[string]interface{}{}
	}
	s.next++
	if org.CreatedAt.IsZero() {
		org.CreatedAt = s.epoch.Add(time.Duration(s.next) * time.Millisecond)
	}
	org.UpdatedAt = org.CreatedAt
	if _, exists := s.seq[org.ID]; !exists {
		s.seq[org.ID] = s.next
	}
	s.orgs[org.ID] = clone(org)
	return clone(org)
}

// Len returns the number of stored organizations.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orgs)
}

// All returns every stored organization in insertion order.
func (s *MemoryStore) All() []models.Organization {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Organization, 0, len(s.orgs))
	for _, o := range s.orgs {
		out = append(out, clone(o))
	}
	sort.Slice(out, func(i, j int) bool { return s.seq[out[i].ID] < s.seq[out[j].ID] })
	return out
}

func (s *MemoryStore) Get(_ context.Context, id uuid.UUID) (*models.Organization, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	org, ok := s.orgs[id]
	if !ok {
		return nil, hierarchy.ErrOrganizationNotFound
	}
	out := clone(org)
	return &out, nil
}

func (s *MemoryStore) sortSiblings(orgs []models.Organization) {
	sort.SliceStable(orgs, func(i, j int) bool {
		a, b := orgs[i], orgs[j]
		if a.DisplayOrder != b.DisplayOrder {
			return a.DisplayOrder < b.DisplayOrder
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return s.seq[a.ID] < s.seq[b.ID]
	})
}

func (s *MemoryStore) FindChildren(_ context.Context, parentIDs []uuid.UUID, filter hierarchy.ChildFilter) ([]models.Organization, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.FindChildrenCalls++

	parents := make(map[uuid.UUID]bool, len(parentIDs))
	for _, id := range parentIDs {
		parents[id] = true
	}

	out := []models.Organization{}
	for _, o := range s.orgs {
		if o.ParentOrgID == nil || !parents[*o.ParentOrgID] {
			continue
		}
		if len(filter.OrgTypes) > 0 && !containsType(filter.OrgTypes, o.OrgType) {
			continue
		}
		if len(filter.PlanTiers) > 0 && !containsTier(filter.PlanTiers, o.PlanTier) {
			continue
		}
		out = append(out, clone(o))
	}
	s.sortSiblings(out)
	return out, nil
}

func containsType(list []models.OrgType, t models.OrgType) bool {
	for _, v := range list {
		if v == t {
			return true
		}
	}
	return false
}

func containsTier(list []models.PlanTier, t models.PlanTier) bool {
	for _, v := range list {
		if v == t {
			return true
		}
	}
	return false
}

func (s *MemoryStore) FindRoots(_ context.Context) ([]models.Organization, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Organization{}
	for _, o := range s.orgs {
		if o.ParentOrgID == nil {
			out = append(out, clone(o))
		}
	}
	s.sortSiblings(out)
	return out, nil
}

func (s *MemoryStore) ExistsSlugOrDomain(_ context.Context, slug, domain string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.existsLocked(slug, domain, uuid.Nil), nil
}

func (s *MemoryStore) existsLocked(slug, domain string, except uuid.UUID) bool {
	for id, o := range s.orgs {
		if id == except {
			continue
		}
		if slug != "" && o.Slug == slug {
			return true
		}
		if domain != "" && o.Domain != nil && *o.Domain == domain {
			return true
		}
	}
	return false
}

// logUndo must be called with s.mu held.
func logUndo(ctx context.Context, fn func()) {
	if tx, ok := ctx.Value(txKey{}).(*txState); ok {
		tx.undo = append(tx.undo, fn)
	}
}

func (s *MemoryStore) Insert(ctx context.Context, org *models.Organization) error {
	if s.BeforeInsert != nil {
		if err := s.BeforeInsert(org); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.existsLocked(org.Slug, "", uuid.Nil) {
		return hierarchy.ErrSlugTaken
	}
	if org.Domain != nil && s.existsLocked("", *org.Domain, uuid.Nil) {
		return hierarchy.ErrDomainTaken
	}
	if org.ParentOrgID != nil {
		if _, ok := s.orgs[*org.ParentOrgID]; !ok {
			return errors.New("insert or update on table \"organizations\" violates foreign key constraint")
		}
	}
	if _, exists := s.orgs[org.ID]; exists && org.ID != uuid.Nil {
		return errors.New("duplicate key value violates unique constraint \"organizations_pkey\"")
	}

	stored := s.putLocked(*org)
	logUndo(ctx, func() {
		delete(s.orgs, stored.ID)
		delete(s.seq, stored.ID)
	})
	org.ID = stored.ID
	org.Status = stored.Status
	org.CreatedAt = stored.CreatedAt
	org.UpdatedAt = stored.UpdatedAt
	return nil
}

func (s *MemoryStore) AggregateCountsByType(_ context.Context) (map[models.OrgType]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := make(map[models.OrgType]int64)
	for _, o := range s.orgs {
		counts[o.OrgType]++
	}
	return counts, nil
}

func (s *MemoryStore) CountChildren(_ context.Context, parentID uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, o := range s.orgs {
		if o.ParentOrgID != nil && *o.ParentOrgID == parentID {
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) List(_ context.Context, params query.FilterParams) ([]models.Organization, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	search := strings.ToLower(params.Search)
	matched := []models.Organization{}
	for _, o := range s.orgs {
		if !matchesFilters(o, params.Filters) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(o.Name), search) && !strings.Contains(o.Slug, search) {
			continue
		}
		matched = append(matched, clone(o))
	}

	desc := params.Sort.Order != "asc"
	sort.SliceStable(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if params.Sort.Field == "name" && a.Name != b.Name {
			return (a.Name < b.Name) != desc
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt) != desc
		}
		return s.seq[a.ID] < s.seq[b.ID]
	})

	total := int64(len(matched))
	page, limit := params.Page, params.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = query.DefaultLimit
	}
	start := (page - 1) * limit
	if start >= len(matched) {
		return []models.Organization{}, total, nil
	}
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func matchesFilters(o models.Organization, filters map[string]string) bool {
	for field, value := range filters {
		var actual string
		switch field {
		case "status":
			actual = o.Status
		case "orgType":
			actual = string(o.OrgType)
		case "planTier":
			actual = string(o.PlanTier)
		case "country":
			actual = o.Country
		case "parentOrgId":
			if o.ParentOrgID != nil {
				actual = o.ParentOrgID.String()
			}
		default:
			continue
		}
		found := false
		for _, want := range query.SplitList(value) {
			if want == actual {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (s *MemoryStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	org, ok := s.orgs[id]
	if !ok {
		return hierarchy.ErrOrganizationNotFound
	}
	for _, o := range s.orgs {
		if o.ParentOrgID != nil && *o.ParentOrgID == id {
			return hierarchy.ErrOrganizationHasChildren
		}
	}
	seq := s.seq[id]
	delete(s.orgs, id)
	delete(s.seq, id)
	logUndo(ctx, func() {
		s.orgs[id] = org
		s.seq[id] = seq
	})
	return nil
}

func (s *MemoryStore) UpdateLogoURL(ctx context.Context, id uuid.UUID, logoURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	org, ok := s.orgs[id]
	if !ok {
		return hierarchy.ErrOrganizationNotFound
	}
	previous := org.LogoURL
	logUndo(ctx, func() {
		if o, ok := s.orgs[id]; ok {
			o.LogoURL = previous
			s.orgs[id] = o
		}
	})
	org.LogoURL = logoURL
	s.orgs[id] = org
	return nil
}

func (s *MemoryStore) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*txState); ok {
		return fn(ctx)
	}

	tx := &txState{}
	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		s.mu.Lock()
		for i := len(tx.undo) - 1; i >= 0; i-- {
			tx.undo[i]()
		}
		s.mu.Unlock()
		return err
	}
	return nil
}
