package handlers

import (
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// maxUploadSize caps answer/question images at 10 MiB.
const maxUploadSize = 10 << 20

var allowedImageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// saveUpload stores an uploaded image under uploadDir with a random
// filename and returns the public URL path.
func saveUpload(c *gin.Context, file *multipart.FileHeader, uploadDir string) (string, error) {
	if file.Size > maxUploadSize {
		return "", fmt.Errorf("file too large: %d bytes", file.Size)
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedImageExts[ext] {
		return "", fmt.Errorf("unsupported file type: %s", ext)
	}

	name := uuid.New().String() + ext
	dst := filepath.Join(uploadDir, name)
	if err := c.SaveUploadedFile(file, dst); err != nil {
		return "", fmt.Errorf("failed to store upload: %w", err)
	}

	return "/uploads/" + name, nil
}
