package pkg

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/simp-lee/ginx"

	"github.com/simp-lee/learnhub/internal/domain"
)

func TestParseID(t *testing.T) {
	tests := []struct {
		raw     string
		want    uint
		wantErr bool
	}{
		{"42", 42, false},
		{"0", 0, true},
		{"-1", 0, true},
		{"abc", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Params = gin.Params{{Key: "id", Value: tt.raw}}
		got, err := ParseID(c, "id")
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseID(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
		}
		if err != nil && !domain.IsValidation(err) {
			t.Errorf("ParseID(%q) error should be validation, got %v", tt.raw, err)
		}
		if got != tt.want {
			t.Errorf("ParseID(%q) = %d, want %d", tt.raw, got, tt.want)
		}
	}
}

func TestCurrentUserID(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if _, err := CurrentUserID(c); !domain.IsUnauthorized(err) {
		t.Errorf("missing user: expected unauthorized, got %v", err)
	}

	ginx.SetUserID(c, "not-a-number")
	if _, err := CurrentUserID(c); !domain.IsUnauthorized(err) {
		t.Errorf("bad subject: expected unauthorized, got %v", err)
	}

	ginx.SetUserID(c, "7")
	id, err := CurrentUserID(c)
	if err != nil || id != 7 {
		t.Errorf("CurrentUserID = (%d, %v), want (7, nil)", id, err)
	}
}

func TestBearerToken(t *testing.T) {
	tests := map[string]bool{
		"Bearer abc.def": true,
		"bearer abc.def": true,
		"Basic xyz":      false,
		"Bearer ":        false,
		"":               false,
	}
	for header, ok := range tests {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodPost, "/", nil)
		c.Request.Header.Set("Authorization", header)
		tok, err := BearerToken(c)
		if ok && (err != nil || tok != "abc.def") {
			t.Errorf("BearerToken(%q) = (%q, %v)", header, tok, err)
		}
		if !ok && err == nil {
			t.Errorf("BearerToken(%q) expected error", header)
		}
	}
}

// fakeLifecycle records the last call made through the handler.
type fakeLifecycle struct {
	lastID  uint
	lastIDs []uint
	err     error
}

func (f *fakeLifecycle) SoftDelete(_ context.Context, id uint) (*widget, error) {
	f.lastID = id
	if f.err != nil {
		return nil, f.err
	}
	return &widget{Name: "trashed"}, nil
}
func (f *fakeLifecycle) Restore(_ context.Context, id uint) (*widget, error) {
	f.lastID = id
	return &widget{Name: "restored"}, f.err
}
func (f *fakeLifecycle) ForceDelete(_ context.Context, id uint) (*widget, error) {
	f.lastID = id
	return &widget{Name: "gone"}, f.err
}
func (f *fakeLifecycle) SoftDeleteMany(_ context.Context, ids []uint) (int64, error) {
	f.lastIDs = ids
	return int64(len(ids)), f.err
}
func (f *fakeLifecycle) RestoreMany(_ context.Context, ids []uint) (int64, error) {
	f.lastIDs = ids
	return int64(len(ids)), f.err
}
func (f *fakeLifecycle) ForceDeleteMany(_ context.Context, ids []uint) (int64, error) {
	f.lastIDs = ids
	return int64(len(ids)), f.err
}

func newLifecycleRouter(svc domain.Lifecycle[widget]) *gin.Engine {
	r := gin.New()
	NewLifecycleHandler[widget](svc).Register(r, "/widgets")
	return r
}

func TestLifecycleHandler_Routes(t *testing.T) {
	tests := []struct {
		method   string
		path     string
		body     string
		wantCode int
		wantID   uint
		wantIDs  int
	}{
		{http.MethodDelete, "/widgets/5", "", http.StatusOK, 5, 0},
		{http.MethodPut, "/widgets/restore/6", "", http.StatusOK, 6, 0},
		{http.MethodDelete, "/widgets/force-delete/7", "", http.StatusOK, 7, 0},
		{http.MethodDelete, "/widgets/multiple-soft-delete", `{"ids":[1,2,3]}`, http.StatusOK, 0, 3},
		{http.MethodPut, "/widgets/multiple-restore", `{"ids":[4]}`, http.StatusOK, 0, 1},
		{http.MethodDelete, "/widgets/multiple-force-delete", `{"ids":[8,9]}`, http.StatusOK, 0, 2},
		{http.MethodDelete, "/widgets/abc", "", http.StatusBadRequest, 0, 0},
		{http.MethodDelete, "/widgets/multiple-soft-delete", `{"ids":[]}`, http.StatusBadRequest, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			fake := &fakeLifecycle{}
			r := newLifecycleRouter(fake)

			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			if tt.body != "" {
				req.Header.Set("Content-Type", "application/json")
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tt.wantCode, w.Body.String())
			}
			if fake.lastID != tt.wantID {
				t.Errorf("lastID = %d, want %d", fake.lastID, tt.wantID)
			}
			if len(fake.lastIDs) != tt.wantIDs {
				t.Errorf("len(lastIDs) = %d, want %d", len(fake.lastIDs), tt.wantIDs)
			}
		})
	}
}

func TestLifecycleHandler_BulkReportsCount(t *testing.T) {
	r := newLifecycleRouter(&fakeLifecycle{})

	req := httptest.NewRequest(http.MethodDelete, "/widgets/multiple-soft-delete", strings.NewReader(`{"ids":[1,2]}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp struct {
		Data struct {
			Count int64 `json:"count"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Data.Count != 2 {
		t.Errorf("count = %d, want 2", resp.Data.Count)
	}
}

func TestLifecycleHandler_MapsServiceErrors(t *testing.T) {
	r := newLifecycleRouter(&fakeLifecycle{err: domain.NewValidationError("widget is already trashed")})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/widgets/3", nil))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	var resp Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Message != "widget is already trashed" {
		t.Errorf("message = %q", resp.Message)
	}
}
