package upload

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"testing"
	"time"

	"evisa/internal/pkg/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	pdfBody = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n%%EOF\n")
	pngBody = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 32)...)
)

// multipartBody encodes a single file part with an explicit Content-Type.
func multipartBody(t *testing.T, field, filename, contentType string, content []byte, extra map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range extra {
		require.NoError(t, mw.WriteField(k, v))
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename))
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func fileHeader(t *testing.T, field, filename, contentType string, content []byte) *multipart.FileHeader {
	t.Helper()
	body, ct := multipartBody(t, field, filename, contentType, content, nil)
	_, params, err := mime.ParseMediaType(ct)
	require.NoError(t, err)
	form, err := multipart.NewReader(body, params["boundary"]).ReadForm(10 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	require.Len(t, form.File[field], 1)
	return form.File[field][0]
}

func newTestStager(t *testing.T, maxSize int64) (*Stager, *storage.DiskStorage, string) {
	t.Helper()
	dir := t.TempDir()
	disk, err := storage.NewDiskStorage(dir, "/uploads")
	require.NoError(t, err)
	s := NewStager(disk, maxSize)
	s.now = func() time.Time { return time.UnixMilli(1700000000000) }
	s.suffix = func() int { return 42 }
	return s, disk, dir
}

func TestStager_StoresPDFUnderDocuments(t *testing.T) {
	s, _, dir := newTestStager(t, 0)
	fh := fileHeader(t, "document", "ticket.PDF", "application/pdf", pdfBody)

	f, err := s.Stage(context.Background(), "document", fh)
	require.NoError(t, err)

	assert.Equal(t, "documents/document-1700000000000-000000042.pdf", f.Key)
	assert.Equal(t, "ticket.PDF", f.OriginalName)
	assert.Equal(t, "application/pdf", f.ContentType)
	assert.Equal(t, int64(len(pdfBody)), f.Size)

	stored, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(f.Key)))
	require.NoError(t, err)
	assert.Equal(t, pdfBody, stored)
}

func TestStager_FolderByField(t *testing.T) {
	s, _, _ := newTestStager(t, 0)

	f, err := s.Stage(context.Background(), "passportPhoto", fileHeader(t, "passportPhoto", "me.png", "image/png", pngBody))
	require.NoError(t, err)
	assert.Equal(t, "photos/passportPhoto-1700000000000-000000042.png", f.Key)

	f, err = s.Stage(context.Background(), "passportCopy", fileHeader(t, "passportCopy", "p.pdf", "application/pdf", pdfBody))
	require.NoError(t, err)
	assert.Equal(t, "passports/passportCopy-1700000000000-000000042.pdf", f.Key)
}

func TestStager_Rejects(t *testing.T) {
	cases := []struct {
		name        string
		filename    string
		contentType string
		content     []byte
		maxSize     int64
		want        error
	}{
		{"wrong extension", "notes.txt", "application/pdf", pdfBody, 0, ErrInvalidFileType},
		{"wrong declared type", "a.pdf", "text/plain", pdfBody, 0, ErrInvalidFileType},
		{"content does not match", "a.png", "image/png", []byte("just some plain text here"), 0, ErrInvalidFileType},
		{"too large", "a.pdf", "application/pdf", pdfBody, 10, ErrFileTooLarge},
		{"empty", "a.pdf", "application/pdf", []byte{}, 0, ErrEmptyFile},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s, _, dir := newTestStager(t, tc.maxSize)
			_, err := s.Stage(context.Background(), "document", fileHeader(t, "document", tc.filename, tc.contentType, tc.content))
			assert.ErrorIs(t, err, tc.want)

			entries, _ := os.ReadDir(filepath.Join(dir, "documents"))
			assert.Empty(t, entries, "rejected files are never stored")
		})
	}
}

func TestStager_NilHeader(t *testing.T) {
	s, _, _ := newTestStager(t, 0)
	_, err := s.Stage(context.Background(), "document", nil)
	assert.ErrorIs(t, err, ErrNoFile)
}

func TestStager_Discard(t *testing.T) {
	s, disk, _ := newTestStager(t, 0)
	ctx := context.Background()
	f, err := s.Stage(ctx, "document", fileHeader(t, "document", "a.pdf", "application/pdf", pdfBody))
	require.NoError(t, err)

	require.NoError(t, s.Discard(ctx, f))
	_, err = disk.Open(ctx, f.Key)
	assert.ErrorIs(t, err, storage.ErrObjectNotFound)
	assert.NoError(t, s.Discard(ctx, nil))
}
