package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/simp-lee/ginx"
	"github.com/simp-lee/rbac"

	"github.com/simp-lee/learnhub/internal/domain"
)

func TestPolicyAllows(t *testing.T) {
	p := DefaultPolicy()
	tests := []struct {
		name     string
		roles    []string
		resource string
		action   string
		want     bool
	}{
		{"admin wildcard", []string{domain.RoleAdmin}, ResourceUsers, ActionDelete, true},
		{"admin moderates", []string{domain.RoleAdmin}, ResourcePosts, ActionModerate, true},
		{"user reads courses", []string{domain.RoleUser}, ResourceCourses, ActionRead, true},
		{"user cannot write courses", []string{domain.RoleUser}, ResourceCourses, ActionWrite, false},
		{"user writes posts", []string{domain.RoleUser}, ResourcePosts, ActionWrite, true},
		{"user cannot moderate", []string{domain.RoleUser}, ResourceComments, ActionModerate, false},
		{"user cannot list users", []string{domain.RoleUser}, ResourceUsers, ActionRead, false},
		{"unknown role", []string{"guest"}, ResourceCourses, ActionRead, false},
		{"no roles", nil, ResourceCourses, ActionRead, false},
		{"any matching role wins", []string{"guest", domain.RoleUser}, ResourceProgress, ActionWrite, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.Allows(tt.roles, tt.resource, tt.action); got != tt.want {
				t.Errorf("Allows(%v, %s, %s) = %v, want %v", tt.roles, tt.resource, tt.action, got, tt.want)
			}
		})
	}
}

// identify simulates ginx.Auth having accepted a token.
func identify(userID string, roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID != "" {
			ginx.SetUserID(c, userID)
			ginx.SetUserRoles(c, roles)
		}
		c.Next()
	}
}

func serveGuarded(g *Guard, ident gin.HandlerFunc, resource, action string) int {
	r := gin.New()
	r.GET("/x", ident, g.Require(resource, action), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	return w.Code
}

func TestGuard_NilPassesThrough(t *testing.T) {
	var g *Guard
	if code := serveGuarded(g, identify(""), ResourceUsers, ActionDelete); code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	if !g.Allowed(nil, ResourcePosts, ActionModerate) {
		t.Error("nil guard should allow everything")
	}
	if err := g.SyncRole(1, domain.RoleAdmin); err != nil {
		t.Errorf("nil guard SyncRole: %v", err)
	}
}

func TestGuard_TokenRoles(t *testing.T) {
	g := NewGuard(nil, nil)
	tests := []struct {
		name   string
		ident  gin.HandlerFunc
		action string
		want   int
	}{
		{"anonymous", identify(""), ActionRead, http.StatusUnauthorized},
		{"user reads", identify("2", domain.RoleUser), ActionRead, http.StatusOK},
		{"user writes", identify("2", domain.RoleUser), ActionWrite, http.StatusForbidden},
		{"admin writes", identify("1", domain.RoleAdmin), ActionWrite, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if code := serveGuarded(g, tt.ident, ResourceCourses, tt.action); code != tt.want {
				t.Errorf("status = %d, want %d", code, tt.want)
			}
		})
	}
}

func newSeededRBAC(t *testing.T) rbac.Service {
	t.Helper()
	svc, err := rbac.New(rbac.WithMemoryStorage())
	if err != nil {
		t.Fatalf("rbac.New: %v", err)
	}
	t.Cleanup(func() { _ = svc.Close() })
	if err := SeedPolicy(svc, DefaultPolicy()); err != nil {
		t.Fatalf("SeedPolicy: %v", err)
	}
	return svc
}

func TestSeedPolicy_Idempotent(t *testing.T) {
	svc := newSeededRBAC(t)
	if err := SeedPolicy(svc, DefaultPolicy()); err != nil {
		t.Fatalf("second SeedPolicy: %v", err)
	}
	perms, err := svc.GetRolePermissions(domain.RoleUser)
	if err != nil {
		t.Fatalf("GetRolePermissions: %v", err)
	}
	if len(perms[ResourcePosts]) != 2 {
		t.Errorf("posts actions = %v, want read and write once each", perms[ResourcePosts])
	}
}

func TestGuard_RBACFollowsRoleChanges(t *testing.T) {
	svc := newSeededRBAC(t)
	g := NewGuard(svc, nil)

	if err := g.SyncRole(9, domain.RoleUser); err != nil {
		t.Fatalf("SyncRole user: %v", err)
	}
	// Token roles are ignored when RBAC is enabled; the store decides.
	ident := identify("9", domain.RoleAdmin)
	if code := serveGuarded(g, ident, ResourceCourses, ActionWrite); code != http.StatusForbidden {
		t.Fatalf("as user: status = %d, want 403", code)
	}

	if err := g.SyncRole(9, domain.RoleAdmin); err != nil {
		t.Fatalf("SyncRole admin: %v", err)
	}
	if code := serveGuarded(g, ident, ResourceCourses, ActionWrite); code != http.StatusOK {
		t.Fatalf("as admin: status = %d, want 200", code)
	}

	roles, err := svc.GetUserRoles("9")
	if err != nil {
		t.Fatalf("GetUserRoles: %v", err)
	}
	if len(roles) != 1 || roles[0] != domain.RoleAdmin {
		t.Errorf("roles = %v, want only admin", roles)
	}

	// Syncing the same role again is a no-op.
	if err := g.SyncRole(9, domain.RoleAdmin); err != nil {
		t.Errorf("repeated SyncRole: %v", err)
	}
}

func TestGuard_Allowed(t *testing.T) {
	svc := newSeededRBAC(t)
	withRBAC := NewGuard(svc, nil)
	if err := withRBAC.SyncRole(3, domain.RoleUser); err != nil {
		t.Fatalf("SyncRole: %v", err)
	}
	tokenOnly := NewGuard(nil, nil)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	ginx.SetUserID(c, "3")
	ginx.SetUserRoles(c, []string{domain.RoleUser})

	for name, g := range map[string]*Guard{"rbac": withRBAC, "token": tokenOnly} {
		if g.Allowed(c, ResourcePosts, ActionModerate) {
			t.Errorf("%s: user should not moderate posts", name)
		}
		if !g.Allowed(c, ResourcePosts, ActionWrite) {
			t.Errorf("%s: user should write posts", name)
		}
	}
}
