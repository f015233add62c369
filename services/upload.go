package services

import (
	"context"
	"errors"
	"fmt"

	"campuslink/storage"
)

// storeUpload validates u against policy and writes it under prefix.
// Policy failures come back as validation errors keyed by field.
func (b *base) storeUpload(ctx context.Context, field string, u *storage.Upload, policy storage.Policy, prefix string) (string, error) {
	blob, err := policy.Inspect(*u)
	if err != nil {
		return "", uploadError(field, policy, err)
	}
	if b.blobs == nil {
		return "", errors.New("no blob store configured")
	}
	ref, err := b.blobs.Put(ctx, storage.NewKey(prefix, blob.Extension), blob.ContentType, blob.Size(), blob.Reader())
	if err != nil {
		return "", fmt.Errorf("store %s: %w", field, err)
	}
	return ref, nil
}

func uploadError(field string, policy storage.Policy, err error) error {
	var msg string
	switch {
	case errors.Is(err, storage.ErrEmpty):
		msg = "file is empty"
	case errors.Is(err, storage.ErrTooLarge):
		msg = fmt.Sprintf("file must be at most %d MB", policy.MaxBytes>>20)
	case errors.Is(err, storage.ErrUnsupportedType):
		msg = "file type is not allowed"
	case errors.Is(err, storage.ErrTypeMismatch):
		msg = "file content does not match its type"
	default:
		return err
	}
	return validationError("Invalid file", map[string]string{field: msg})
}

// resolveURL turns a blob ref into a link, logging instead of failing the read.
func (b *base) resolveURL(ctx context.Context, ref string) string {
	if ref == "" || b.blobs == nil {
		return ""
	}
	url, err := b.blobs.URL(ctx, ref)
	if err != nil {
		logStorage("failed to resolve %s: %v", ref, err)
		return ""
	}
	return url
}
