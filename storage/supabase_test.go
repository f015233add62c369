package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSupabaseStore(t *testing.T) {
	var uploaded []byte
	var deleted []string

	mux := http.NewServeMux()
	mux.HandleFunc("/storage/v1/object/applications/resumes/3/cv.pdf", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer service-key", r.Header.Get("Authorization"))
		assert.Equal(t, "service-key", r.Header.Get("apikey"))
		assert.Equal(t, "application/pdf", r.Header.Get("Content-Type"))
		uploaded, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"Key":"applications/resumes/3/cv.pdf"}`))
	})
	mux.HandleFunc("/storage/v1/object/sign/applications/resumes/3/cv.pdf", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]int64
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, int64(604800), body["expiresIn"])
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"signedURL":"/object/sign/applications/resumes/3/cv.pdf?token=abc"}`))
	})
	mux.HandleFunc("/storage/v1/object/applications", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		var body map[string][]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		deleted = body["prefixes"]
		_, _ = w.Write([]byte(`[]`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	store := NewSupabaseStore(server.URL+"/", "service-key", "applications", 7*24*time.Hour)
	ctx := context.Background()

	ref, err := store.Put(ctx, "resumes/3/cv.pdf", "application/pdf", int64(len(pdfBytes)), bytes.NewReader(pdfBytes))
	require.NoError(t, err)
	assert.Equal(t, "resumes/3/cv.pdf", ref)
	assert.Equal(t, pdfBytes, uploaded)

	url, err := store.URL(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, server.URL+"/storage/v1/object/sign/applications/resumes/3/cv.pdf?token=abc", url)

	require.NoError(t, store.Delete(ctx, ref))
	assert.Equal(t, []string{"resumes/3/cv.pdf"}, deleted)
}

func TestSupabaseStoreSurfacesErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":"new row violates row-level security policy"}`))
	}))
	defer server.Close()

	store := NewSupabaseStore(server.URL, "bad-key", "applications", time.Hour)

	_, err := store.Put(context.Background(), "resumes/1/cv.pdf", "application/pdf", 3, bytes.NewReader([]byte("abc")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")

	_, err = store.URL(context.Background(), "resumes/1/cv.pdf")
	require.Error(t, err)
}
