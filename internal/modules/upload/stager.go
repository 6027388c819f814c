package upload

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"evisa/internal/pkg/storage"

	"github.com/gabriel-vasile/mimetype"
)

const DefaultMaxFileSize = 5 << 20

var allowedExtensions = map[string]bool{
	".jpeg": true,
	".jpg":  true,
	".png":  true,
	".pdf":  true,
}

var allowedContentTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"application/pdf": true,
}

// StagedFile is an uploaded file already written to storage but not yet
// referenced by any record.
type StagedFile struct {
	Field        string
	Key          string
	OriginalName string
	ContentType  string
	Size         int64
}

// Stager validates multipart files and writes them to storage under a
// folder chosen by form field.
type Stager struct {
	store   storage.Storage
	maxSize int64
	now     func() time.Time
	suffix  func() int
}

func NewStager(store storage.Storage, maxSize int64) *Stager {
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}
	return &Stager{
		store:   store,
		maxSize: maxSize,
		now:     time.Now,
		suffix:  func() int { return rand.IntN(1_000_000_000) },
	}
}

func (s *Stager) MaxSize() int64 { return s.maxSize }

func folderFor(field string) string {
	switch field {
	case "passportPhoto":
		return "photos"
	case "passportCopy":
		return "passports"
	default:
		return "documents"
	}
}

// declaredTypeAllowed mirrors the jpeg|jpg|png|pdf match on the client's
// Content-Type.
func declaredTypeAllowed(ct string) bool {
	ct = strings.ToLower(ct)
	for _, t := range []string{"jpeg", "jpg", "png", "pdf"} {
		if strings.Contains(ct, t) {
			return true
		}
	}
	return false
}

// Stage checks fh and stores it. The caller owns the returned file and must
// Discard it if the surrounding operation fails.
func (s *Stager) Stage(ctx context.Context, field string, fh *multipart.FileHeader) (*StagedFile, error) {
	if fh == nil {
		return nil, ErrNoFile
	}
	if fh.Size == 0 {
		return nil, ErrEmptyFile
	}
	if fh.Size > s.maxSize {
		return nil, ErrFileTooLarge
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !allowedExtensions[ext] || !declaredTypeAllowed(fh.Header.Get("Content-Type")) {
		return nil, ErrInvalidFileType
	}

	file, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer file.Close()

	detected, err := mimetype.DetectReader(file)
	if err != nil {
		return nil, fmt.Errorf("detect content type: %w", err)
	}
	contentType := detected.String()
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	if !allowedContentTypes[contentType] {
		return nil, ErrInvalidFileType
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewind upload: %w", err)
	}

	name := fmt.Sprintf("%s-%d-%09d%s", field, s.now().UnixMilli(), s.suffix(), ext)
	key := folderFor(field) + "/" + name

	if err := s.store.Save(ctx, key, io.LimitReader(file, s.maxSize), fh.Size, contentType); err != nil {
		return nil, fmt.Errorf("store upload: %w", err)
	}

	return &StagedFile{
		Field:        field,
		Key:          key,
		OriginalName: filepath.Base(fh.Filename),
		ContentType:  contentType,
		Size:         fh.Size,
	}, nil
}

// Discard removes a staged file. Errors are returned for logging only.
func (s *Stager) Discard(ctx context.Context, f *StagedFile) error {
	if f == nil {
		return nil
	}
	return s.store.Delete(ctx, f.Key)
}
