package permission

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// Action is a "resource:verb" pair, e.g. "hierarchy:manage".
type Action string

const (
	ActionHierarchyManage    Action = "hierarchy:manage"
	ActionOrganizationUpdate Action = "organizations:update"
	ActionOrganizationDelete Action = "organizations:delete"
	ActionHierarchyStats     Action = "hierarchy:stats"
)

// Split returns the resource and verb halves of the action.
func (a Action) Split() (resource, verb string) {
	resource, verb, found := strings.Cut(string(a), ":")
	if !found {
		return resource, "*"
	}
	return resource, verb
}

const (
	RoleSuperAdmin = "SUPER_ADMIN"
	RoleOwner      = "OWNER"
	RoleAdmin      = "ADMIN"
	RoleManager    = "MANAGER"
	RoleMember     = "MEMBER"
	RoleViewer     = "VIEWER"
)

const wildcard Action = "*"

var roleActions = map[string][]Action{
	RoleSuperAdmin: {wildcard},
	RoleOwner: {
		ActionHierarchyManage,
		ActionOrganizationUpdate,
		ActionOrganizationDelete,
		ActionHierarchyStats,
	},
	RoleAdmin: {
		ActionHierarchyManage,
		ActionOrganizationUpdate,
		ActionOrganizationDelete,
	},
	RoleManager: {
		ActionOrganizationUpdate,
	},
	RoleMember: {},
	RoleViewer: {},
}

// Subject is who a permission question is asked about.
type Subject struct {
	UserID uuid.UUID
	Role   string
}

// Checker answers permission questions. Implementations may do I/O.
type Checker interface {
	HasPermission(ctx context.Context, subject Subject, action Action) (bool, error)
}

// HasPermission consults the static role table. Role names are case-insensitive.
func HasPermission(role string, action Action) bool {
	granted, ok := roleActions[strings.ToUpper(strings.TrimSpace(role))]
	if !ok {
		return false
	}
	for _, a := range granted {
		if a == wildcard || a == action {
			return true
		}
	}
	return false
}

// CanManageHierarchy reports whether the role may create children.
func CanManageHierarchy(role string) bool {
	return HasPermission(role, ActionHierarchyManage)
}

// RoleChecker is the in-process Checker backed by the static role table.
type RoleChecker struct{}

func NewRoleChecker() *RoleChecker {
	return &RoleChecker{}
}

func (RoleChecker) HasPermission(_ context.Context, subject Subject, action Action) (bool, error) {
	return HasPermission(subject.Role, action), nil
}

// Allowed asks checker, or the static role table when checker is nil.
func Allowed(ctx context.Context, checker Checker, subject Subject, action Action) (bool, error) {
	if checker == nil {
		return HasPermission(subject.Role, action), nil
	}
	return checker.HasPermission(ctx, subject, action)
}
