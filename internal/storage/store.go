// Package storage implements the path-addressed image store backing
// listing photos. Files are written under a root directory and exposed
// through a public base URL; paths are namespaced by owner and car id
// with a timestamp+random suffix so concurrent uploads never collide.
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrUnsupportedType is returned for files whose extension is not an
// accepted image format.
var ErrUnsupportedType = errors.New("unsupported file type, only images allowed")

// MaxImageBytes is the per-file upload cap (5MB, matching the form's
// stated limit).
const MaxImageBytes = 5 << 20

var allowedExt = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// Store saves files on local disk and addresses them by URL. It
// satisfies the workflow's needs with two operations: upload returning
// a public URL, and best-effort removal by that URL.
type Store struct {
	root    string // filesystem root for stored files
	baseURL string // public URL prefix mapped to root
}

// New constructs a Store. The root directory is created if missing.
func New(root, baseURL string) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &Store{root: root, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

// SaveCarImage streams one uploaded file into the store under
// <userID>/<carID>/<unique-name><ext> and returns its public URL.
func (s *Store) SaveCarImage(userID, carID uint64, filename string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExt[ext] {
		return "", ErrUnsupportedType
	}

	name := fmt.Sprintf("%d_%s%s", time.Now().Unix(), uuid.New().String(), ext)
	rel := path.Join(fmt.Sprint(userID), fmt.Sprint(carID), name)
	dst := filepath.Join(s.root, filepath.FromSlash(rel))

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", err
	}
	f, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := io.Copy(f, io.LimitReader(r, MaxImageBytes)); err != nil {
		_ = os.Remove(dst)
		return "", err
	}
	return s.baseURL + "/" + rel, nil
}

// Remove deletes the stored file behind a public URL. Unknown URLs are
// ignored: removal is a best-effort cleanup step and must never fail a
// primary operation.
func (s *Store) Remove(publicURL string) error {
	rel, ok := strings.CutPrefix(publicURL, s.baseURL+"/")
	if !ok {
		return nil
	}
	// Refuse anything that escapes the root.
	clean := filepath.Clean(filepath.FromSlash(rel))
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return nil
	}
	err := os.Remove(filepath.Join(s.root, clean))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
