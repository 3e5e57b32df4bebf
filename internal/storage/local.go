// Package storage keeps uploaded media on the local filesystem.
package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/simp-lee/learnhub/internal/domain"
)

// Upload folders, one per kind of media.
const (
	FolderAvatar    = "avatar"
	FolderThumbnail = "thumbnail"
	FolderLesson    = "lesson"
)

// Rule describes which files an upload field accepts. A zero MaxSize means no cap.
type Rule struct {
	Extensions []string
	MaxSize    int64
}

var (
	// ImageRule accepts avatars and thumbnails.
	ImageRule = Rule{Extensions: []string{".jpg", ".jpeg", ".png"}, MaxSize: 5 << 20}
	// VideoRule accepts lesson videos.
	VideoRule = Rule{Extensions: []string{".mp4", ".mov"}}
)

// Verdict is the outcome of checking a file against a Rule.
type Verdict struct {
	Allowed bool
	Reason  string
}

// Check validates a file name and size against the rule.
func (r Rule) Check(filename string, size int64) Verdict {
	ext := strings.ToLower(filepath.Ext(filename))
	if !slices.Contains(r.Extensions, ext) {
		return Verdict{Reason: fmt.Sprintf("wrong extension type, accepted file ext are: %s", strings.Join(r.Extensions, ","))}
	}
	if r.MaxSize > 0 && size > r.MaxSize {
		return Verdict{Reason: fmt.Sprintf("file size is too large, accepted file size is less than %d MB", r.MaxSize>>20)}
	}
	return Verdict{Allowed: true}
}

// Local stores files under a root directory.
type Local struct {
	root string
}

// NewLocal creates the root directory if needed and returns a Local store.
func NewLocal(root string) (*Local, error) {
	if root == "" {
		return nil, fmt.Errorf("storage root is empty")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory %q: %w", root, err)
	}
	return &Local{root: root}, nil
}

// Root returns the directory files are written to.
func (l *Local) Root() string {
	return l.root
}

// Save writes r to <root>/<folder>/<uuid><ext> and returns the relative path
// "folder/<uuid><ext>" that is stored in the database.
func (l *Local) Save(ctx context.Context, folder, filename string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	dir := filepath.Join(l.root, folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create folder %q: %w", folder, err)
	}

	name := uuid.NewString() + strings.ToLower(filepath.Ext(filename))
	f, err := os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("write file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("close file: %w", err)
	}

	return path.Join(folder, name), nil
}

// Remove deletes a previously saved file. Missing files are not an error.
func (l *Local) Remove(rel string) error {
	if rel == "" {
		return nil
	}
	clean := filepath.Clean(filepath.FromSlash(rel))
	if filepath.IsAbs(clean) || strings.HasPrefix(clean, "..") {
		return fmt.Errorf("refusing to remove %q outside the upload root", rel)
	}
	if err := os.Remove(filepath.Join(l.root, clean)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Accept checks an uploaded multipart file against rule and saves it into
// folder. A rejected file yields a validation error carrying the verdict reason.
func (l *Local) Accept(ctx context.Context, fh *multipart.FileHeader, folder string, rule Rule) (string, error) {
	if fh == nil {
		return "", domain.NewValidationError("file is required")
	}
	if v := rule.Check(fh.Filename, fh.Size); !v.Allowed {
		return "", domain.NewValidationError(v.Reason)
	}

	src, err := fh.Open()
	if err != nil {
		return "", domain.NewAppError(domain.CodeValidation, "cannot read uploaded file", err)
	}
	defer src.Close()

	rel, err := l.Save(ctx, folder, fh.Filename, src)
	if err != nil {
		return "", domain.NewAppError(domain.CodeInternal, "failed to store file", err)
	}
	return rel, nil
}

// Discard removes rel and logs instead of failing. Handlers use it to clean up
// after a save whose database update did not go through, and to drop files
// that were replaced.
func (l *Local) Discard(ctx context.Context, rel string) {
	if err := l.Remove(rel); err != nil {
		slog.WarnContext(ctx, "failed to remove stored file", "path", rel, "error", err)
	}
}
