// Package storage persists uploaded donation images on the local filesystem.
package storage

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const (
	// PublicPrefix is the URL prefix uploaded files are served under.
	PublicPrefix = "/uploads/"

	donationsDir = "donations"
)

var allowedImageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// Local stores files below a root directory.
type Local struct {
	root string
}

// NewLocal creates the root directory if needed.
func NewLocal(root string) (*Local, error) {
	if err := os.MkdirAll(filepath.Join(root, donationsDir), 0o755); err != nil {
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}
	return &Local{root: root}, nil
}

// Root returns the storage root directory.
func (l *Local) Root() string {
	return l.root
}

// SaveDonationImage writes r under a fresh random name and returns the
// public path of the file. Known image extensions of filename are kept
// lower-cased; anything else is stored without an extension.
func (l *Local) SaveDonationImage(filename string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedImageExts[ext] {
		ext = ""
	}

	name := strings.ReplaceAll(uuid.NewString(), "-", "") + ext
	dst := filepath.Join(l.root, donationsDir, name)

	f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create image file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(dst)
		return "", fmt.Errorf("write image file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(dst)
		return "", fmt.Errorf("close image file: %w", err)
	}

	return PublicPrefix + path.Join(donationsDir, name), nil
}

// Remove deletes a file previously returned by SaveDonationImage.
// Paths outside the storage root are ignored.
func (l *Local) Remove(publicPath string) error {
	rel, ok := strings.CutPrefix(publicPath, PublicPrefix)
	if !ok || rel == "" {
		return nil
	}
	clean := path.Clean("/" + rel)
	if strings.Contains(clean, "..") {
		return nil
	}
	err := os.Remove(filepath.Join(l.root, filepath.FromSlash(clean)))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove image file: %w", err)
	}
	return nil
}

// Handler serves stored files under PublicPrefix. Directory listings are disabled.
func (l *Local) Handler() http.Handler {
	fs := http.FileServer(noDirFS{http.Dir(l.root)})
	return http.StripPrefix(strings.TrimSuffix(PublicPrefix, "/"), fs)
}

type noDirFS struct {
	fs http.FileSystem
}

func (n noDirFS) Open(name string) (http.File, error) {
	f, err := n.fs.Open(name)
	if err != nil {
		return nil, err
	}
	stat, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if stat.IsDir() {
		_ = f.Close()
		return nil, os.ErrNotExist
	}
	return f, nil
}
