package storage

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	pdfBytes = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n")
	pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00\x90wS\xde")
)

func TestInspectAcceptsPDF(t *testing.T) {
	policy := Policy{AllowedTypes: DocumentTypes, MaxBytes: 5 << 20}

	blob, err := policy.Inspect(Upload{Filename: "charter.pdf", ContentType: "application/pdf", Size: int64(len(pdfBytes)), Body: bytes.NewReader(pdfBytes)})
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", blob.ContentType)
	assert.Equal(t, ".pdf", blob.Extension)
	assert.Equal(t, int64(len(pdfBytes)), blob.Size())
}

func TestInspectAcceptsPNGWithoutDeclaredType(t *testing.T) {
	policy := Policy{AllowedTypes: DocumentTypes, MaxBytes: 5 << 20}

	blob, err := policy.Inspect(Upload{Filename: "scan.png", Body: bytes.NewReader(pngBytes)})
	require.NoError(t, err)
	assert.Equal(t, "image/png", blob.ContentType)
}

func TestInspectRejectsOversizedFile(t *testing.T) {
	policy := Policy{AllowedTypes: DocumentTypes, MaxBytes: 16}

	_, err := policy.Inspect(Upload{Filename: "big.pdf", ContentType: "application/pdf", Body: bytes.NewReader(pdfBytes)})
	assert.ErrorIs(t, err, ErrTooLarge)

	_, err = policy.Inspect(Upload{Filename: "big.pdf", ContentType: "application/pdf", Size: 1 << 30, Body: bytes.NewReader(pdfBytes)})
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestInspectRejectsDisallowedContent(t *testing.T) {
	policy := Policy{AllowedTypes: DocumentTypes, MaxBytes: 5 << 20}

	_, err := policy.Inspect(Upload{Filename: "notes.txt", Body: strings.NewReader("just some text")})
	assert.ErrorIs(t, err, ErrUnsupportedType)

	// content sniffing wins over a lying declared type
	_, err = policy.Inspect(Upload{Filename: "fake.pdf", ContentType: "application/pdf", Body: strings.NewReader("just some text")})
	assert.ErrorIs(t, err, ErrUnsupportedType)

	_, err = policy.Inspect(Upload{Filename: "page.html", ContentType: "text/html", Body: bytes.NewReader(pdfBytes)})
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestInspectRejectsDeclaredTypeMismatch(t *testing.T) {
	policy := Policy{AllowedTypes: DocumentTypes, MaxBytes: 5 << 20}

	_, err := policy.Inspect(Upload{Filename: "scan.png", ContentType: "image/png", Body: bytes.NewReader(pdfBytes)})
	assert.ErrorIs(t, err, ErrTypeMismatch)

	_, err = policy.Inspect(Upload{Filename: "charter.pdf", ContentType: "application/pdf", Body: bytes.NewReader(pngBytes)})
	assert.ErrorIs(t, err, ErrTypeMismatch)

	blob, err := policy.Inspect(Upload{Filename: "charter.pdf", ContentType: "application/octet-stream", Body: bytes.NewReader(pdfBytes)})
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", blob.ContentType)

	blob, err = policy.Inspect(Upload{Filename: "scan.png", ContentType: "IMAGE/PNG; charset=binary", Body: bytes.NewReader(pngBytes)})
	require.NoError(t, err)
	assert.Equal(t, "image/png", blob.ContentType)
}

func TestInspectRejectsEmptyUpload(t *testing.T) {
	policy := Policy{AllowedTypes: DocumentTypes, MaxBytes: 5 << 20}

	_, err := policy.Inspect(Upload{Filename: "empty.pdf", Body: bytes.NewReader(nil)})
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestNewKeyIsUnique(t *testing.T) {
	a := NewKey("resumes/7", ".pdf")
	b := NewKey("resumes/7", ".pdf")
	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasPrefix(a, "resumes/7/"))
	assert.True(t, strings.HasSuffix(a, ".pdf"))
}
