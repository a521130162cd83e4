// Package gate provides the permission primitives behind the portal's role
// engine: capabilities in "resource:action" form and profiles grouping them.
// This package has no dependencies on domain models; the role table itself
// lives in internal/policy.
package gate

import "strings"

// Capability represents an allowed action on a resource type.
// Format: "resource:action" (e.g., "task:create", "calendar:edit")
type Capability string

// NewCapability creates a capability from resource type and action.
func NewCapability(resourceType, action string) Capability {
	return Capability(resourceType + ":" + action)
}

// Parse splits a capability into resource type and action.
func (c Capability) Parse() (resourceType, action string) {
	parts := strings.SplitN(string(c), ":", 2)
	if len(parts) != 2 {
		return "", ""
	}
	return parts[0], parts[1]
}

// Wildcards for super capabilities
const (
	WildcardAll                     = "*"
	CapabilitySuperAdmin Capability = "*:*"
)

// Matches checks if this capability grants a requested capability.
// Supports wildcards: "*:*" matches all, "task:*" matches all task actions.
func (c Capability) Matches(requested Capability) bool {
	// Superadmin matches everything
	if c == CapabilitySuperAdmin {
		return true
	}
	// Exact match
	if c == requested {
		return true
	}
	// Check resource wildcard: "task:*" matches "task:create"
	res, act := c.Parse()
	reqRes, _ := requested.Parse()
	if res == reqRes && act == WildcardAll {
		return true
	}
	return false
}
