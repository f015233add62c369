package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// SupabaseStore talks to the Supabase Storage REST API.
type SupabaseStore struct {
	client     *resty.Client
	projectURL string
	bucket     string
	signedTTL  time.Duration
}

func NewSupabaseStore(projectURL, serviceKey, bucket string, signedTTL time.Duration) *SupabaseStore {
	projectURL = strings.TrimRight(projectURL, "/")
	client := resty.New().
		SetBaseURL(projectURL+"/storage/v1").
		SetAuthToken(serviceKey).
		SetHeader("apikey", serviceKey).
		SetTimeout(30 * time.Second)
	return &SupabaseStore{client: client, projectURL: projectURL, bucket: bucket, signedTTL: signedTTL}
}

func (s *SupabaseStore) Put(ctx context.Context, key, contentType string, size int64, body io.Reader) (string, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", contentType).
		SetHeader("Cache-Control", "max-age=3600").
		SetHeader("x-upsert", "true").
		SetBody(body).
		Post("/object/" + s.bucket + "/" + key)
	if err != nil {
		return "", fmt.Errorf("supabase upload: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("supabase upload: %s: %s", resp.Status(), resp.String())
	}
	return key, nil
}

// URL returns a signed URL that expires after the configured TTL.
func (s *SupabaseStore) URL(ctx context.Context, ref string) (string, error) {
	if ref == "" {
		return "", nil
	}
	var out struct {
		SignedURL string `json:"signedURL"`
	}
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(map[string]int64{"expiresIn": int64(s.signedTTL.Seconds())}).
		SetResult(&out).
		Post("/object/sign/" + s.bucket + "/" + ref)
	if err != nil {
		return "", fmt.Errorf("supabase sign: %w", err)
	}
	if resp.IsError() || out.SignedURL == "" {
		return "", fmt.Errorf("supabase sign: %s: %s", resp.Status(), resp.String())
	}
	return s.projectURL + "/storage/v1" + out.SignedURL, nil
}

func (s *SupabaseStore) Delete(ctx context.Context, ref string) error {
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(map[string][]string{"prefixes": {ref}}).
		Delete("/object/" + s.bucket)
	if err != nil {
		return fmt.Errorf("supabase delete: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("supabase delete: %s: %s", resp.Status(), resp.String())
	}
	return nil
}
