package imaging

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrInvalidName is returned for photo names that could escape the photo directory.
var ErrInvalidName = errors.New("invalid photo name")

// PhotoStore keeps item photos as JPEG files in a single directory.
type PhotoStore struct {
	Dir string
}

// NewPhotoStore returns a store rooted at dir, creating the directory if needed.
func NewPhotoStore(dir string) (*PhotoStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating photo directory: %w", err)
	}
	return &PhotoStore{Dir: dir}, nil
}

// Save normalizes the image read from r and stores it under a new random
// name, which it returns.
func (p *PhotoStore) Save(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("reading image data: %w", err)
	}

	jpegData, err := Normalize(data)
	if err != nil {
		return "", err
	}

	name := uuid.NewString() + ".jpg"
	if err := os.WriteFile(filepath.Join(p.Dir, name), jpegData, 0o644); err != nil {
		return "", fmt.Errorf("writing photo: %w", err)
	}
	return name, nil
}

// Path returns the file path of a stored photo.
func (p *PhotoStore) Path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", ErrInvalidName
	}
	return filepath.Join(p.Dir, name), nil
}

// Remove deletes a stored photo. Missing photos are not an error.
func (p *PhotoStore) Remove(name string) error {
	if name == "" {
		return nil
	}
	path, err := p.Path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing photo: %w", err)
	}
	return nil
}
