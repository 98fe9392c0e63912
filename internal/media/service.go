package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/pestilink/pestilink-backend/pkg/config"
	pkgerrors "github.com/pestilink/pestilink-backend/pkg/errors"
	"github.com/pestilink/pestilink-backend/pkg/logger"
)

// Image formats accepted for product listings.
var allowedImageTypes = []string{
	"image/png",
	"image/jpeg",
	"image/gif",
	"image/webp",
}

// Service stores product images on local disk under generated filenames.
type Service interface {
	Save(ctx context.Context, r io.Reader) (string, error)
	Remove(ctx context.Context, filename string) error
	Path(filename string) (string, error)
}

type service struct {
	dir      string
	maxBytes int64
	logg     *logger.Logger
}

// NewService prepares the upload directory and returns a disk-backed store.
func NewService(cfg config.MediaConfig, logg *logger.Logger) (Service, error) {
	if cfg.UploadDir == "" {
		return nil, fmt.Errorf("media upload directory required")
	}
	if cfg.MaxUploadMB <= 0 {
		return nil, fmt.Errorf("media upload size limit must be positive")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload directory: %w", err)
	}
	return &service{
		dir:      cfg.UploadDir,
		maxBytes: int64(cfg.MaxUploadMB) << 20,
		logg:     logg,
	}, nil
}

// Save sniffs the upload's content type, enforces the size limit, and writes
// the image under a fresh uuid filename. The returned name is safe to persist.
func (s *service) Save(ctx context.Context, r io.Reader) (string, error) {
	buf, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "read upload")
	}
	if int64(len(buf)) > s.maxBytes {
		return "", pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("image exceeds the %d MB upload limit", s.maxBytes>>20))
	}
	if len(buf) == 0 {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "empty upload")
	}

	mtype := mimetype.Detect(buf)
	if !isAllowedImage(mtype) {
		return "", pkgerrors.New(pkgerrors.CodeValidation,
			"unsupported image type, expected png, jpeg, gif or webp")
	}

	filename := uuid.NewString() + mtype.Extension()
	if err := os.WriteFile(filepath.Join(s.dir, filename), buf, 0o644); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store image")
	}

	s.logg.Info(s.logg.WithField(ctx, "filename", filename), "stored product image")
	return filename, nil
}

// Remove deletes a stored image. A missing file is not an error; callers treat
// image cleanup as best effort.
func (s *service) Remove(ctx context.Context, filename string) error {
	path, err := s.Path(filename)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "remove image")
	}
	s.logg.Info(s.logg.WithField(ctx, "filename", filename), "removed product image")
	return nil
}

// Path resolves a stored filename to its on-disk location, rejecting names
// that would escape the upload directory.
func (s *service) Path(filename string) (string, error) {
	if filename == "" ||
		filename != filepath.Base(filename) ||
		strings.HasPrefix(filename, ".") ||
		strings.ContainsAny(filename, `/\`) {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "invalid image filename")
	}
	return filepath.Join(s.dir, filename), nil
}

func isAllowedImage(m *mimetype.MIME) bool {
	for _, t := range allowedImageTypes {
		if m.Is(t) {
			return true
		}
	}
	return false
}
