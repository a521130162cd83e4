// Package policy holds the portal's role engine: the single declarative
// role → capability table every access decision goes through. The old portal
// re-derived ad-hoc role lists at each call site and the lists drifted; here
// there is exactly one table and one gate function.
package policy

import (
	"github.com/diewo77/staff-portal/internal/gate"
	"github.com/diewo77/staff-portal/internal/models"
)

// All capabilities checked anywhere in the portal.
const (
	CapAdminView       gate.Capability = "admin:view"
	CapTaskCreate      gate.Capability = "task:create"
	CapTaskResolve     gate.Capability = "task:resolve"
	CapTaskDelete      gate.Capability = "task:delete"
	CapRoleAssign      gate.Capability = "role:assign"
	CapUserDelete      gate.Capability = "user:delete"
	CapCategoryManage  gate.Capability = "category:manage"
	CapCalendarEdit    gate.Capability = "calendar:edit"
	CapDirectoryEmails gate.Capability = "directory:emails"
	CapCategoryView    gate.Capability = "category:view"
)

// Engine is the pure role engine. It owns no state beyond the static table
// and performs no I/O; every check is a map lookup plus capability match.
type Engine struct {
	profiles map[models.Role]*gate.Profile
}

// NewEngine builds the canonical role table.
func NewEngine() *Engine {
	return &Engine{profiles: map[models.Role]*gate.Profile{
		models.RoleSuperAdmin: gate.NewProfile(string(models.RoleSuperAdmin),
			gate.CapabilitySuperAdmin,
		),
		models.RoleAdmin: gate.NewProfile(string(models.RoleAdmin),
			CapAdminView,
			CapTaskCreate,
			CapTaskResolve,
			CapTaskDelete,
			CapRoleAssign,
			CapCategoryManage,
			CapCalendarEdit,
			CapDirectoryEmails,
			CapCategoryView,
		),
		models.RoleMember: gate.NewProfile(string(models.RoleMember),
			CapTaskCreate,
			CapTaskResolve,
			CapCategoryView,
		),
	}}
}

// Can reports whether a user with the given role and status holds the
// capability. Status gating comes first: a pending account is denied
// everything regardless of its role field. Unknown roles fail closed.
func (e *Engine) Can(role models.Role, status models.Status, c gate.Capability) bool {
	if status != models.StatusApproved {
		return false
	}
	p, ok := e.profiles[role]
	if !ok {
		return false
	}
	return p.HasCapability(c)
}

// CanViewCategory is the category-scoped visibility check. An unrestricted
// category is visible to anyone holding category:view; a restricted one only
// to its required role and to wildcard holders.
func (e *Engine) CanViewCategory(role models.Role, status models.Status, cat models.Category) bool {
	if !e.Can(role, status, CapCategoryView) {
		return false
	}
	if cat.RequiredRole == nil || *cat.RequiredRole == "" {
		return true
	}
	if *cat.RequiredRole == role {
		return true
	}
	return e.profiles[role].HasCapability(gate.CapabilitySuperAdmin)
}

// VisibleCategories filters a category list down to what the role may see.
func (e *Engine) VisibleCategories(role models.Role, status models.Status, cats []models.Category) []models.Category {
	out := make([]models.Category, 0, len(cats))
	for _, c := range cats {
		if e.CanViewCategory(role, status, c) {
			out = append(out, c)
		}
	}
	return out
}
