package catalog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	pkgerrors "github.com/teomanager/teomanager-backend/pkg/errors"
)

var allowedImageExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".webp": {},
	".gif":  {},
}

// validateImageFile rejects unsupported extensions and, when the file
// lives in the local uploads directory, oversized files. Remote URLs are
// only checked by extension.
func (s *service) validateImageFile(url string) error {
	ext := strings.ToLower(filepath.Ext(strings.TrimSpace(url)))
	if _, ok := allowedImageExtensions[ext]; !ok {
		return pkgerrors.New(pkgerrors.CodeValidation, "unsupported image type, expected jpg, jpeg, png, webp or gif")
	}

	path, ok := s.localUploadPath(url)
	if !ok {
		return nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil
	}
	maxBytes := int64(s.uploads.MaxImageMB) * 1024 * 1024
	if maxBytes > 0 && info.Size() > maxBytes {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("image exceeds the %dMB limit", s.uploads.MaxImageMB))
	}
	return nil
}

func (s *service) localUploadPath(url string) (string, bool) {
	if s.uploads.Dir == "" {
		return "", false
	}
	base := filepath.Base(strings.TrimSpace(url))
	if base == "" || base == "." || base == string(filepath.Separator) {
		return "", false
	}
	return filepath.Join(s.uploads.Dir, base), true
}

// removeImageFile deletes the backing file after its row is gone. Best
// effort: a leftover file is picked up by the uploads sweep later.
func (s *service) removeImageFile(ctx context.Context, url string) {
	path, ok := s.localUploadPath(url)
	if !ok {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) && s.logg != nil {
		s.logg.Warn(ctx, "orphan image file left behind: "+path)
	}
}
