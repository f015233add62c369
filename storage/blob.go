// Package storage hands uploaded files to a blob store and validates them first.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

var (
	ErrEmpty           = errors.New("file is empty")
	ErrTooLarge        = errors.New("file exceeds the size limit")
	ErrUnsupportedType = errors.New("file type is not allowed")
	ErrTypeMismatch    = errors.New("file content does not match its declared type")
)

// BlobStore keeps opaque blobs and hands back references to them.
type BlobStore interface {
	Put(ctx context.Context, key, contentType string, size int64, body io.Reader) (string, error)
	URL(ctx context.Context, ref string) (string, error)
	Delete(ctx context.Context, ref string) error
}

// Upload is a file as received from the request layer.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Blob is an upload that passed a Policy.
type Blob struct {
	Data        []byte
	ContentType string
	Extension   string
}

func (b *Blob) Reader() io.Reader {
	return bytes.NewReader(b.Data)
}

func (b *Blob) Size() int64 {
	return int64(len(b.Data))
}

// Policy bounds what an upload may contain.
type Policy struct {
	AllowedTypes []string
	MaxBytes     int64
}

var (
	DocumentTypes = []string{"application/pdf", "image/png", "image/jpeg"}
	ResumeTypes   = []string{
		"application/pdf",
		"application/msword",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	}
	ImageTypes = []string{"image/png", "image/jpeg"}
)

// Inspect reads the upload, enforces the size limit and checks the sniffed
// content type. A declared content type must be on the allow-list and agree
// with the sniffed one.
func (p Policy) Inspect(u Upload) (*Blob, error) {
	if u.Body == nil {
		return nil, ErrEmpty
	}
	if p.MaxBytes > 0 && u.Size > p.MaxBytes {
		return nil, ErrTooLarge
	}

	reader := u.Body
	if p.MaxBytes > 0 {
		reader = io.LimitReader(u.Body, p.MaxBytes+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrEmpty
	}
	if p.MaxBytes > 0 && int64(len(data)) > p.MaxBytes {
		return nil, ErrTooLarge
	}

	declared := baseType(u.ContentType)
	if declared == "application/octet-stream" {
		declared = ""
	}
	if declared != "" && !p.allows(declared) {
		return nil, ErrUnsupportedType
	}

	detected := mimetype.Detect(data)
	for _, allowed := range p.AllowedTypes {
		if !detected.Is(allowed) {
			continue
		}
		if declared != "" && !strings.EqualFold(declared, allowed) {
			return nil, ErrTypeMismatch
		}
		return &Blob{Data: data, ContentType: allowed, Extension: detected.Extension()}, nil
	}
	return nil, ErrUnsupportedType
}

func (p Policy) allows(contentType string) bool {
	for _, allowed := range p.AllowedTypes {
		if strings.EqualFold(allowed, contentType) {
			return true
		}
	}
	return false
}

func baseType(contentType string) string {
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	return strings.ToLower(strings.TrimSpace(contentType))
}

// NewKey builds a collision free object key under prefix.
func NewKey(prefix, extension string) string {
	name := fmt.Sprintf("%s-%s%s", time.Now().UTC().Format("20060102"), uuid.NewString(), extension)
	return path.Join(prefix, name)
}
