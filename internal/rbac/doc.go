// Package rbac implements the role-based access control model of the portal.
//
// Two independent policies live here and must not be merged:
//
//   - Feature gating: a static PermissionTable maps every Role to the set of
//     Capabilities it grants. Enforcer loads it into a casbin model of exact
//     (role, capability) pairs, and Enforcer.Authorize is the single chokepoint
//     used by page handlers and API handlers alike.
//   - Content gating: every post stores an access level (a Role). Visible compares
//     the viewer's Rank against that level and decides whether a single row may be
//     returned to the viewer.
//
// The package also carries the content authoring rules (InferAccessLevel,
// CapabilityForCategory) and the administrative mutation guards
// (CheckUserDeletion, CheckRoleChange).
//
// Nothing in this package does I/O. The Enforcer is safe for concurrent use.
//
// Example usage:
//
//	enforcer := rbac.NewEnforcer(rbac.DefaultTable())
//
//	decision := enforcer.Authorize(identity, rbac.CapViewYearbooks)
//	if !decision.Allowed {
//	    return decision.Err()
//	}
package rbac
