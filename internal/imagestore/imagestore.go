// Package imagestore persists captured plate images on disk. The ledger
// treats the resulting paths as opaque; losing an image never loses a stay.
package imagestore

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Store writes JPEG files into a single directory.
type Store struct {
	dir string
}

// New creates a store rooted at dir, creating it if needed.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create image dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Save writes jpeg to a new file named after the plate key, the capture
// time and a random suffix, and returns the file path.
func (s *Store) Save(plateKey string, jpeg []byte) (string, error) {
	name := fmt.Sprintf("%s_%s_%s.jpg",
		sanitize(plateKey),
		time.Now().Format("20060102_150405"),
		uuid.NewString()[:8],
	)
	path := filepath.Join(s.dir, name)

	if err := os.WriteFile(path, jpeg, 0o644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	return path, nil
}

// Remove deletes a previously saved image. A missing file is not an error.
func (s *Store) Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove image: %w", err)
	}
	return nil
}

// sanitize keeps file names portable: anything outside letters, digits,
// dash and dot becomes an underscore.
func sanitize(plateKey string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '.':
			return r
		default:
			return '_'
		}
	}, plateKey)
}
