package uploads

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// อนุญาตเฉพาะรูปและ PDF ตาม accept ของฟอร์มฝั่ง frontend
var allowedExts = map[string]bool{
	".pdf":  true,
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".webp": true,
}

func mediaRoot() string {
	root := os.Getenv("MEDIA_ROOT")
	if root == "" {
		root = "uploads" // fallback for development
	}
	return root
}

// SaveCertificate persists one evidence file and returns the media path that
// gets stored in the section's certificate field. The stored name is
// randomized so re-uploads never collide or overwrite across sections.
func SaveCertificate(file *multipart.FileHeader, supplierID, category, sectionKey string) (string, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedExts[ext] {
		return "", fmt.Errorf("unsupported file type: %s", ext)
	}

	relDir := path.Join("certificates", supplierID, category)
	if err := os.MkdirAll(filepath.Join(mediaRoot(), relDir), 0o755); err != nil {
		return "", err
	}

	name := fmt.Sprintf("%s_%s%s", sectionKey, uuid.NewString(), ext)
	relPath := path.Join(relDir, name)

	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(mediaRoot(), relDir, name))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}

	return relPath, nil
}
