package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestS3Store(t *testing.T, handler http.HandlerFunc) *S3Store {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	s, err := NewS3Store(context.Background(), S3Options{
		Bucket:    "reports",
		Endpoint:  srv.URL,
		Region:    "us-east-1",
		AccessKey: "test-access",
		SecretKey: "test-secret",
	})
	require.NoError(t, err)
	return s
}

func TestS3StorePutUsesPathStyleKey(t *testing.T) {
	var gotMethod, gotPath, gotContentType string
	s := newTestS3Store(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		_, _ = io.Copy(io.Discard, r.Body)
		w.WriteHeader(http.StatusOK)
	})

	err := s.Put(context.Background(), "abc.pdf", []byte("%PDF-1.3"), "application/pdf")

	require.NoError(t, err)
	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/reports/abc.pdf", gotPath)
	assert.Equal(t, "application/pdf", gotContentType)
}

func TestS3StoreGet(t *testing.T) {
	s := newTestS3Store(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/reports/abc.pdf" {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>The specified key does not exist.</Message></Error>`)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = io.WriteString(w, "%PDF-1.3 report")
	})

	rc, err := s.Get(context.Background(), "abc.pdf")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	rc.Close()
	assert.Equal(t, "%PDF-1.3 report", string(data))

	_, err = s.Get(context.Background(), "missing.pdf")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNewS3StoreRequiresBucket(t *testing.T) {
	_, err := NewS3Store(context.Background(), S3Options{Region: "auto"})
	assert.Error(t, err)
}
