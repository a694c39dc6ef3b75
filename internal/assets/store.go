// Package assets 管理封面与页面插图文件，路径均相对于上传根目录保存。
package assets

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/ariane/internal/entity"
)

// Store 是按相对路径读写资源的抽象。
type Store interface {
	Open(rel string) (io.ReadCloser, error)
	Save(rel string, r io.Reader) error
	Exists(rel string) bool
	Remove(rel string) error
	URL(rel string) string
}

// 资源子目录。
const (
	CoverDir = "covers"
	ImageDir = "pages"
)

// FileStore 把资源保存在本地目录下，并通过 URLPath 对外提供静态访问。
type FileStore struct {
	root    string
	urlPath string
}

// NewFileStore creates the root directory when it does not exist yet.
func NewFileStore(root, urlPath string) (*FileStore, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("asset root cannot be empty")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create asset root: %w", err)
	}
	return &FileStore{root: root, urlPath: strings.TrimRight(urlPath, "/")}, nil
}

// Root returns the local directory holding the assets.
func (s *FileStore) Root() string {
	return s.root
}

func (s *FileStore) Open(rel string) (io.ReadCloser, error) {
	full, err := s.resolve(rel)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(full)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("asset %s: %w", rel, entity.ErrNotFound)
		}
		return nil, fmt.Errorf("open asset %s: %w", rel, err)
	}
	return f, nil
}

func (s *FileStore) Save(rel string, r io.Reader) error {
	full, err := s.resolve(rel)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("create asset dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(full), ".upload-*")
	if err != nil {
		return fmt.Errorf("create asset %s: %w", rel, err)
	}
	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write asset %s: %w", rel, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write asset %s: %w", rel, err)
	}
	if err := os.Rename(tmp.Name(), full); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write asset %s: %w", rel, err)
	}
	return nil
}

func (s *FileStore) Exists(rel string) bool {
	full, err := s.resolve(rel)
	if err != nil {
		return false
	}
	info, err := os.Stat(full)
	return err == nil && !info.IsDir()
}

// Remove ignores files that are already gone.
func (s *FileStore) Remove(rel string) error {
	full, err := s.resolve(rel)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove asset %s: %w", rel, err)
	}
	return nil
}

func (s *FileStore) URL(rel string) string {
	clean, err := Clean(rel)
	if err != nil {
		return ""
	}
	return s.urlPath + "/" + clean
}

func (s *FileStore) resolve(rel string) (string, error) {
	clean, err := Clean(rel)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.root, filepath.FromSlash(clean)), nil
}

// Clean normalizes a relative asset path and rejects anything escaping the root.
func Clean(rel string) (string, error) {
	rel = strings.TrimSpace(strings.ReplaceAll(rel, "\\", "/"))
	rel = strings.TrimLeft(rel, "/")
	if rel == "" {
		return "", fmt.Errorf("%w: empty asset path", entity.ErrValidation)
	}
	clean := path.Clean(rel)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("%w: asset path %q escapes upload root", entity.ErrValidation, rel)
	}
	return clean, nil
}

// CoverPath 返回故事封面的相对路径。
func CoverPath(storyID, ext string) string {
	return path.Join(CoverDir, storyID+normalizeExt(ext))
}

// ImagePath 返回页面插图的相对路径。
func ImagePath(pageID, ext string) string {
	return path.Join(ImageDir, pageID+normalizeExt(ext))
}

// Renamed keeps the directory and extension of rel but swaps the base name for id.
func Renamed(rel, id string) string {
	dir := path.Dir(rel)
	name := id + path.Ext(rel)
	if dir == "." {
		return name
	}
	return path.Join(dir, name)
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
