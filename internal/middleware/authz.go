package middleware

import (
	"errors"
	"fmt"
	"maps"
	"net/http"
	"slices"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/simp-lee/ginx"
	"github.com/simp-lee/rbac"

	"github.com/simp-lee/learnhub/internal/domain"
)

// Actions checked by route guards.
const (
	ActionRead     = "read"
	ActionWrite    = "write"
	ActionDelete   = "delete"
	ActionModerate = "moderate"
)

// Resources checked by route guards.
const (
	ResourceUsers     = "users"
	ResourceCourses   = "courses"
	ResourceLessons   = "lessons"
	ResourceDiscounts = "discounts"
	ResourcePosts     = "posts"
	ResourceComments  = "comments"
	ResourceProgress  = "progress"
)

const wildcard = "*"

// Policy maps role -> resource -> allowed actions. "*" matches any resource
// or action.
type Policy map[string]map[string][]string

// DefaultPolicy grants admins everything. Regular users read the catalog,
// write their own posts, comments and progress, and manage their own
// profile through routes that only require authentication.
func DefaultPolicy() Policy {
	return Policy{
		domain.RoleAdmin: {
			wildcard: {wildcard},
		},
		domain.RoleUser: {
			ResourceCourses:   {ActionRead},
			ResourceLessons:   {ActionRead},
			ResourceDiscounts: {ActionRead},
			ResourcePosts:     {ActionRead, ActionWrite},
			ResourceComments:  {ActionRead, ActionWrite},
			ResourceProgress:  {ActionRead, ActionWrite},
		},
	}
}

// Allows reports whether any of roles may perform action on resource.
func (p Policy) Allows(roles []string, resource, action string) bool {
	for _, role := range roles {
		perms, ok := p[role]
		if !ok {
			continue
		}
		for _, res := range []string{resource, wildcard} {
			actions := perms[res]
			if slices.Contains(actions, action) || slices.Contains(actions, wildcard) {
				return true
			}
		}
	}
	return false
}

// Guard authorizes requests after ginx.Auth has identified the caller. With
// an RBAC service it defers to ginx.RequirePermission, so role changes apply
// immediately. Without one it checks the roles carried in the token against
// the static policy. A nil Guard lets every request through, which is how the
// API runs with auth disabled.
type Guard struct {
	rbac   rbac.Service
	policy Policy
}

// NewGuard creates a Guard. svc may be nil; a nil policy uses DefaultPolicy.
func NewGuard(svc rbac.Service, policy Policy) *Guard {
	if policy == nil {
		policy = DefaultPolicy()
	}
	return &Guard{rbac: svc, policy: policy}
}

// Require returns a handler that aborts with 401 or 403 unless the caller may
// perform action on resource.
func (g *Guard) Require(resource, action string) gin.HandlerFunc {
	if g == nil {
		return func(c *gin.Context) { c.Next() }
	}
	if g.rbac != nil {
		return ginx.NewChain().Use(ginx.RequirePermission(g.rbac, resource, action)).Build()
	}

	return func(c *gin.Context) {
		if _, ok := ginx.GetUserIDOrAbort(c); !ok {
			return
		}
		roles, _ := ginx.GetUserRoles(c)
		if !g.policy.Allows(roles, resource, action) {
			ginx.AbortWithError(c, http.StatusForbidden, "permission denied")
			return
		}
		c.Next()
	}
}

// Allowed is the in-handler form of Require, used for checks that depend on
// the target row, like moderating someone else's post.
func (g *Guard) Allowed(c *gin.Context, resource, action string) bool {
	if g == nil {
		return true
	}
	if g.rbac != nil {
		return ginx.HasPermission(g.rbac, resource, action)(c)
	}
	roles, _ := ginx.GetUserRoles(c)
	return g.policy.Allows(roles, resource, action)
}

// SyncRole makes role the only role bound to the user in the RBAC store. It
// is a no-op without RBAC, where the role travels in the access token.
func (g *Guard) SyncRole(userID uint, role string) error {
	if g == nil || g.rbac == nil {
		return nil
	}
	uid := strconv.FormatUint(uint64(userID), 10)

	current, err := g.rbac.GetUserRoles(uid)
	if err != nil {
		return fmt.Errorf("load roles of user %s: %w", uid, err)
	}
	for _, r := range current {
		if r == role {
			continue
		}
		if err := g.rbac.UnassignRole(uid, r); err != nil && !errors.Is(err, rbac.ErrUserDoesNotHaveRole) {
			return fmt.Errorf("unassign role %s from user %s: %w", r, uid, err)
		}
	}
	if err := g.rbac.AssignRole(uid, role); err != nil && !errors.Is(err, rbac.ErrUserAlreadyHasRole) {
		return fmt.Errorf("assign role %s to user %s: %w", role, uid, err)
	}
	return nil
}

// SeedPolicy creates every role of p in the RBAC store and grants its
// permissions. Running it again on a seeded store changes nothing.
func SeedPolicy(svc rbac.Service, p Policy) error {
	for _, role := range slices.Sorted(maps.Keys(p)) {
		if err := svc.CreateRole(role, role, "learnhub "+role); err != nil && !errors.Is(err, rbac.ErrRoleAlreadyExists) {
			return fmt.Errorf("create role %s: %w", role, err)
		}
		for _, resource := range slices.Sorted(maps.Keys(p[role])) {
			if err := svc.AddRolePermissions(role, resource, p[role][resource]); err != nil && !errors.Is(err, rbac.ErrPermissionAlreadyExists) {
				return fmt.Errorf("grant %s on %s: %w", role, resource, err)
			}
		}
	}
	return nil
}
