package services

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// PublicUploadPath is the URL prefix uploaded images are served from.
const PublicUploadPath = "/uploads"

var allowedImageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// UploadStore persists post images on the local disk and hands back the
// public path stored on the post record.
type UploadStore struct {
	dir string
}

func NewUploadStore(dir string) (*UploadStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("error creating upload directory %v: %w", dir, err)
	}
	return &UploadStore{dir: dir}, nil
}

func (us *UploadStore) Dir() string {
	return us.dir
}

// Save writes the uploaded image under a generated name and returns its
// public path.
func (us *UploadStore) Save(file *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedImageExts[ext] {
		return "", fmt.Errorf("unsupported image type %q", ext)
	}

	name := uuid.New().String() + ext
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(us.dir, name))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}
	return PublicUploadPath + "/" + name, nil
}

// Remove deletes the file behind a public path. Unknown paths are ignored.
func (us *UploadStore) Remove(publicPath string) error {
	name, ok := strings.CutPrefix(publicPath, PublicUploadPath+"/")
	if !ok || name == "" || strings.Contains(name, "/") {
		return nil
	}
	if err := os.Remove(filepath.Join(us.dir, name)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Exists reports whether a public path resolves to a stored file.
func (us *UploadStore) Exists(publicPath string) (bool, error) {
	name, ok := strings.CutPrefix(publicPath, PublicUploadPath+"/")
	if !ok || name == "" {
		return false, nil
	}
	if _, err := os.Stat(filepath.Join(us.dir, name)); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
