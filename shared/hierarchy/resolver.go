package hierarchy

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"orghierarchy-backend/shared/database/models"
)

// TreeNode is an organization with its loaded descendants.
type TreeNode struct {
	models.Organization
	Children []*TreeNode `json:"children"`
}

// Size counts the nodes in the subtree rooted at n.
func (n *TreeNode) Size() int {
	if n == nil {
		return 0
	}
	total := 1
	for _, c := range n.Children {
		total += c.Size()
	}
	return total
}

// Resolver answers structural questions about the tree. It never writes.
type Resolver struct {
	store    Store
	maxDepth int
	log      *logrus.Logger
}

// NewResolver returns a Resolver capped at maxDepth levels (DefaultMaxDepth when <= 0).
func NewResolver(store Store, maxDepth int, opts ...Option) *Resolver {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	o := buildOptions(opts)
	return &Resolver{store: store, maxDepth: maxDepth, log: o.log}
}

func (r *Resolver) MaxDepth() int {
	return r.maxDepth
}

func (r *Resolver) load(ctx context.Context, id uuid.UUID, label string) (*models.Organization, error) {
	org, err := r.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrOrganizationNotFound) {
			return nil, NotFoundError("%s %s not found", label, id)
		}
		return nil, UnexpectedError(err)
	}
	return org, nil
}

// GetDirectChildren lists the immediate children of orgID.
func (r *Resolver) GetDirectChildren(ctx context.Context, orgID uuid.UUID, filter ChildFilter) ([]models.Organization, error) {
	if _, err := r.load(ctx, orgID, "organization"); err != nil {
		return nil, err
	}
	children, err := r.store.FindChildren(ctx, []uuid.UUID{orgID}, filter)
	if err != nil {
		return nil, UnexpectedError(err)
	}
	return children, nil
}

// GetDescendantsRecursive loads the subtree under orgID, one store call per
// level, stopping after maxDepth levels below orgID whatever the real shape.
// maxDepth <= 0 uses the resolver's configured depth.
func (r *Resolver) GetDescendantsRecursive(ctx context.Context, orgID uuid.UUID, maxDepth int) (*TreeNode, error) {
	if maxDepth <= 0 {
		maxDepth = r.maxDepth
	}

	root, err := r.load(ctx, orgID, "organization")
	if err != nil {
		return nil, err
	}

	rootNode := &TreeNode{Organization: *root, Children: []*TreeNode{}}
	visited := map[uuid.UUID]bool{root.ID: true}
	frontier := map[uuid.UUID]*TreeNode{root.ID: rootNode}
	frontierIDs := []uuid.UUID{root.ID}

	levels := 0
	for depth := 1; depth <= maxDepth && len(frontierIDs) > 0; depth++ {
		children, err := r.store.FindChildren(ctx, frontierIDs, ChildFilter{})
		if err != nil {
			return nil, UnexpectedError(err)
		}
		levels++

		next := make(map[uuid.UUID]*TreeNode, len(children))
		nextIDs := make([]uuid.UUID, 0, len(children))
		for i := range children {
			child := children[i]
			if child.ParentOrgID == nil {
				continue
			}
			parent, ok := frontier[*child.ParentOrgID]
			if !ok {
				continue
			}
			if visited[child.ID] {
				r.log.WithFields(logrus.Fields{
					"org_id":        child.ID,
					"parent_org_id": *child.ParentOrgID,
					"root_org_id":   orgID,
				}).Error("cycle detected in organization hierarchy")
				continue
			}
			visited[child.ID] = true

			node := &TreeNode{Organization: child, Children: []*TreeNode{}}
			parent.Children = append(parent.Children, node)
			next[child.ID] = node
			nextIDs = append(nextIDs, child.ID)
		}
		frontier, frontierIDs = next, nextIDs
	}
	recordLevelsFetched(levels)

	return rootNode, nil
}

// GetHierarchyTree is the full tree below rootOrgID up to the configured depth.
func (r *Resolver) GetHierarchyTree(ctx context.Context, rootOrgID uuid.UUID) (*TreeNode, error) {
	return r.GetDescendantsRecursive(ctx, rootOrgID, r.maxDepth)
}

// ComputeHierarchyLevel is the level a child of parentOrgID would get.
func (r *Resolver) ComputeHierarchyLevel(ctx context.Context, parentOrgID *uuid.UUID) (int, error) {
	if parentOrgID == nil {
		return 0, nil
	}
	parent, err := r.load(ctx, *parentOrgID, "parent organization")
	if err != nil {
		return 0, err
	}
	return levelUnder(parent), nil
}

// WouldExceedMaxDepth reports whether a child of parentOrgID would sit below
// maxDepth. maxDepth <= 0 uses the resolver's configured depth.
func (r *Resolver) WouldExceedMaxDepth(ctx context.Context, parentOrgID *uuid.UUID, maxDepth int) (bool, error) {
	if maxDepth <= 0 {
		maxDepth = r.maxDepth
	}
	level, err := r.ComputeHierarchyLevel(ctx, parentOrgID)
	if err != nil {
		return false, err
	}
	return level > maxDepth, nil
}

// GetAncestors returns the chain from the root down to orgID's parent.
func (r *Resolver) GetAncestors(ctx context.Context, orgID uuid.UUID) ([]models.Organization, error) {
	org, err := r.load(ctx, orgID, "organization")
	if err != nil {
		return nil, err
	}

	chain := []models.Organization{}
	seen := map[uuid.UUID]bool{org.ID: true}
	current := org
	for current.ParentOrgID != nil {
		if len(chain) > r.maxDepth || seen[*current.ParentOrgID] {
			return nil, UnexpectedError(fmt.Errorf("cycle or runaway depth above organization %s", orgID))
		}
		parent, err := r.store.Get(ctx, *current.ParentOrgID)
		if err != nil {
			return nil, UnexpectedError(fmt.Errorf("load ancestor %s: %w", *current.ParentOrgID, err))
		}
		seen[parent.ID] = true
		chain = append(chain, *parent)
		current = parent
	}

	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain, nil
}

func levelUnder(parent *models.Organization) int {
	return parent.HierarchyLevel + 1
}
