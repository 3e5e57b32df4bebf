package user

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/simp-lee/ginx"

	"github.com/simp-lee/learnhub/internal/domain"
	"github.com/simp-lee/learnhub/internal/pkg"
	"github.com/simp-lee/learnhub/internal/storage"
)

// mockService implements domain.UserService over a map. Lifecycle methods
// come from the embedded interface and are not exercised here.
type mockService struct {
	domain.UserService
	users     map[uint]*domain.User
	err       error
	avatarErr error
	lastInput domain.UserInput
	lastPass  [2]string
	lastFlt   domain.Filter
}

func newMockService(users ...*domain.User) *mockService {
	m := &mockService{users: map[uint]*domain.User{}}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *mockService) CreateUser(_ context.Context, in domain.UserInput) (*domain.User, error) {
	m.lastInput = in
	if m.err != nil {
		return nil, m.err
	}
	u := &domain.User{Username: in.Username, Email: in.Email, Role: in.Role}
	u.ID = uint(len(m.users) + 1)
	m.users[u.ID] = u
	return u, nil
}

func (m *mockService) GetUser(_ context.Context, id uint) (*domain.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, domain.NewNotFoundError("user not found")
}

func (m *mockService) ListUsers(_ context.Context, f domain.Filter) (*domain.PageResult[domain.User], error) {
	m.lastFlt = f
	return &domain.PageResult[domain.User]{Data: []domain.User{}, CurrentPage: f.Page, ItemsPerPage: f.ItemsPerPage}, m.err
}

func (m *mockService) TrashedUsers(_ context.Context, f domain.Filter) (*domain.PageResult[domain.User], error) {
	m.lastFlt = f
	return &domain.PageResult[domain.User]{Data: []domain.User{}}, m.err
}

func (m *mockService) UpdateUser(_ context.Context, id uint, in domain.UserInput) (*domain.User, error) {
	m.lastInput = in
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.users[id]
	if !ok {
		return nil, domain.NewNotFoundError("user not found")
	}
	u.Username, u.Email = in.Username, in.Email
	return u, nil
}

func (m *mockService) UpdatePassword(_ context.Context, _ uint, oldPassword, newPassword string) error {
	m.lastPass = [2]string{oldPassword, newPassword}
	return m.err
}

func (m *mockService) UpdateAvatar(_ context.Context, id uint, path string) (*domain.User, error) {
	if m.avatarErr != nil {
		return nil, m.avatarErr
	}
	u := m.users[id]
	u.Avatar = path
	return u, nil
}

func testUser(id uint, username string) *domain.User {
	u := &domain.User{Username: username, Email: username + "@example.com", Role: domain.RoleUser}
	u.ID = id
	u.Status = domain.StatusActive
	return u
}

// setupAPIRouter mounts the module without a guard; callerID, when set,
// stands in for ginx.Auth.
func setupAPIRouter(t *testing.T, svc *mockService, callerID string) (*gin.Engine, *storage.Local) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	files, err := storage.NewLocal(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}

	r := gin.New()
	if callerID != "" {
		r.Use(func(c *gin.Context) {
			ginx.SetUserID(c, callerID)
			c.Next()
		})
	}
	NewModule(NewUserHandler(svc, files), svc, nil).RegisterRoutes(r.Group("/api/v1"))
	return r, files
}

func doJSON(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestUserHandler_Create(t *testing.T) {
	svc := newMockService()
	r, _ := setupAPIRouter(t, svc, "")

	w := doJSON(r, http.MethodPost, "/api/v1/users", `{"username":"alice","email":"alice@example.com","password":"secret1234","role":"admin"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d (%s)", w.Code, w.Body.String())
	}

	var resp pkg.Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp.Code != http.StatusCreated || resp.Message != "success" {
		t.Errorf("envelope = %d %q", resp.Code, resp.Message)
	}
	if svc.lastInput.Role != domain.RoleAdmin || svc.lastInput.Password != "secret1234" {
		t.Errorf("service got %+v", svc.lastInput)
	}
}

func TestUserHandler_Create_ValidationError(t *testing.T) {
	r, _ := setupAPIRouter(t, newMockService(), "")

	w := doJSON(r, http.MethodPost, "/api/v1/users", `{"username":"","email":"nope","password":"x","role":"root"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}

	var resp pkg.ValidationErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp.Message != "validation error" {
		t.Errorf("expected message 'validation error', got %q", resp.Message)
	}
	for _, field := range []string{"username", "email", "password", "role"} {
		if _, ok := resp.Errors[field]; !ok {
			t.Errorf("expected %q in errors map, got %v", field, resp.Errors)
		}
	}
}

func TestUserHandler_Create_EmailTaken(t *testing.T) {
	svc := newMockService()
	svc.err = domain.NewValidationError("email already exists")
	r, _ := setupAPIRouter(t, svc, "")

	w := doJSON(r, http.MethodPost, "/api/v1/users", `{"username":"alice","email":"alice@example.com","password":"secret1234"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "email already exists") {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestUserHandler_ListAndTrash_UseFixedPartition(t *testing.T) {
	tests := []struct {
		path   string
		status domain.Status
	}{
		{"/api/v1/users?page=2&items_per_page=5&search=al", domain.StatusActive},
		{"/api/v1/users/trash?status=1&items_per_page=ALL", domain.StatusTrashed},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			svc := newMockService()
			r, _ := setupAPIRouter(t, svc, "")

			w := doJSON(r, http.MethodGet, tt.path, "")
			if w.Code != http.StatusOK {
				t.Fatalf("expected status 200, got %d", w.Code)
			}
			if svc.lastFlt.Status != tt.status {
				t.Errorf("status = %v, want %v", svc.lastFlt.Status, tt.status)
			}
		})
	}
}

func TestUserHandler_Get(t *testing.T) {
	r, _ := setupAPIRouter(t, newMockService(testUser(1, "alice")), "")

	tests := []struct {
		path string
		want int
	}{
		{"/api/v1/users/1", http.StatusOK},
		{"/api/v1/users/2", http.StatusNotFound},
		{"/api/v1/users/abc", http.StatusBadRequest},
	}
	for _, tt := range tests {
		if w := doJSON(r, http.MethodGet, tt.path, ""); w.Code != tt.want {
			t.Errorf("GET %s = %d, want %d", tt.path, w.Code, tt.want)
		}
	}
}

func TestUserHandler_Profile(t *testing.T) {
	r, _ := setupAPIRouter(t, newMockService(testUser(3, "carol")), "3")

	w := doJSON(r, http.MethodGet, "/api/v1/users/profile", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"username":"carol"`) {
		t.Errorf("body = %s", w.Body.String())
	}

	anon, _ := setupAPIRouter(t, newMockService(testUser(3, "carol")), "")
	if w := doJSON(anon, http.MethodGet, "/api/v1/users/profile", ""); w.Code != http.StatusUnauthorized {
		t.Errorf("anonymous profile = %d, want 401", w.Code)
	}
}

func TestUserHandler_Update(t *testing.T) {
	svc := newMockService(testUser(1, "alice"))
	r, _ := setupAPIRouter(t, svc, "")

	w := doJSON(r, http.MethodPut, "/api/v1/users/1", `{"username":"alicia","email":"alicia@example.com"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d (%s)", w.Code, w.Body.String())
	}
	if svc.lastInput.Role != "" {
		t.Errorf("omitted role should stay empty, got %q", svc.lastInput.Role)
	}

	if w := doJSON(r, http.MethodPut, "/api/v1/users/1", `{"username":"alicia"}`); w.Code != http.StatusBadRequest {
		t.Errorf("missing email = %d, want 400", w.Code)
	}
}

func TestUserHandler_UpdatePassword(t *testing.T) {
	svc := newMockService(testUser(1, "alice"))
	r, _ := setupAPIRouter(t, svc, "1")

	w := doJSON(r, http.MethodPut, "/api/v1/users/update-password", `{"old_password":"secret1234","new_password":"newsecret99"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if svc.lastPass != [2]string{"secret1234", "newsecret99"} {
		t.Errorf("service got %v", svc.lastPass)
	}

	svc.err = domain.NewValidationError("old password is incorrect")
	if w := doJSON(r, http.MethodPut, "/api/v1/users/update-password", `{"old_password":"x","new_password":"newsecret99"}`); w.Code != http.StatusBadRequest {
		t.Errorf("wrong old password = %d, want 400", w.Code)
	}
}

// avatarRequest builds a multipart upload with field "avatar".
func avatarRequest(t *testing.T, filename string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("avatar", filename)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatal(err)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/upload-avatar", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func countFiles(t *testing.T, dir string) int {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return 0
	}
	if err != nil {
		t.Fatal(err)
	}
	return len(entries)
}

func TestUserHandler_UploadAvatar(t *testing.T) {
	t.Run("stores file and replaces the old one", func(t *testing.T) {
		user := testUser(1, "alice")
		svc := newMockService(user)
		r, files := setupAPIRouter(t, svc, "1")

		old, err := files.Save(context.Background(), storage.FolderAvatar, "old.png", strings.NewReader("old"))
		if err != nil {
			t.Fatal(err)
		}
		user.Avatar = old

		w := httptest.NewRecorder()
		r.ServeHTTP(w, avatarRequest(t, "me.PNG", []byte("png")))
		if w.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d (%s)", w.Code, w.Body.String())
		}

		if user.Avatar == old || !strings.HasPrefix(user.Avatar, "avatar/") {
			t.Fatalf("avatar = %q", user.Avatar)
		}
		if _, err := os.Stat(filepath.Join(files.Root(), filepath.FromSlash(user.Avatar))); err != nil {
			t.Errorf("new avatar missing: %v", err)
		}
		if _, err := os.Stat(filepath.Join(files.Root(), filepath.FromSlash(old))); !os.IsNotExist(err) {
			t.Errorf("old avatar should be removed, stat err = %v", err)
		}
	})

	t.Run("rejects disallowed extension", func(t *testing.T) {
		r, files := setupAPIRouter(t, newMockService(testUser(1, "alice")), "1")

		w := httptest.NewRecorder()
		r.ServeHTTP(w, avatarRequest(t, "me.gif", []byte("gif")))
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", w.Code)
		}
		if n := countFiles(t, filepath.Join(files.Root(), storage.FolderAvatar)); n != 0 {
			t.Errorf("%d files left behind", n)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		r, _ := setupAPIRouter(t, newMockService(testUser(1, "alice")), "1")
		if w := doJSON(r, http.MethodPost, "/api/v1/users/upload-avatar", `{}`); w.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", w.Code)
		}
	})

	t.Run("removes the upload when the update fails", func(t *testing.T) {
		svc := newMockService(testUser(1, "alice"))
		svc.avatarErr = domain.NewAppError(domain.CodeInternal, "database error", nil)
		r, files := setupAPIRouter(t, svc, "1")

		w := httptest.NewRecorder()
		r.ServeHTTP(w, avatarRequest(t, "me.jpg", []byte("jpg")))
		if w.Code != http.StatusInternalServerError {
			t.Fatalf("expected status 500, got %d", w.Code)
		}
		if n := countFiles(t, filepath.Join(files.Root(), storage.FolderAvatar)); n != 0 {
			t.Errorf("%d files left behind", n)
		}
	})
}
