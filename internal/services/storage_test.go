package services

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var samplePDF = []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\ntrailer\n<<>>\n%%EOF\n")

var samplePNG = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 13, 'I', 'H', 'D', 'R'}

func TestUploadLocalPDF(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalStorage(dir, "http://localhost:8080/files/")
	assert.Equal(t, dir, store.Dir())

	res, err := Upload(context.Background(), store, "pdfs", bytes.NewReader(samplePDF))
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", res.ContentType)
	assert.True(t, strings.HasPrefix(res.Path, "pdfs/"))
	assert.True(t, strings.HasSuffix(res.Path, ".pdf"))
	assert.Equal(t, "http://localhost:8080/files/"+res.Path, res.URL)

	stored, err := os.ReadFile(filepath.Join(dir, res.Path))
	require.NoError(t, err)
	assert.Equal(t, samplePDF, stored)
}

func TestUploadRejectsWrongType(t *testing.T) {
	store := NewLocalStorage(t.TempDir(), "/files")

	_, err := Upload(context.Background(), store, "notes", bytes.NewReader(samplePNG))
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = Upload(context.Background(), store, "images", bytes.NewReader(samplePDF))
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = Upload(context.Background(), store, "videos", bytes.NewReader(samplePDF))
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = Upload(context.Background(), store, "pdfs", bytes.NewReader(nil))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestUploadRejectsOversized(t *testing.T) {
	big := io.MultiReader(bytes.NewReader(samplePDF), bytes.NewReader(make([]byte, MaxUploadSize)))
	_, err := Upload(context.Background(), NewLocalStorage(t.TempDir(), "/files"), "pdfs", big)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestRemoteStorage(t *testing.T) {
	var gotPath, gotAuth, gotType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotType = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	res, err := Upload(context.Background(), NewRemoteStorage(server.URL, "service-key"), "images", bytes.NewReader(samplePNG))
	require.NoError(t, err)
	assert.Equal(t, "/object/"+res.Path, gotPath)
	assert.Equal(t, "Bearer service-key", gotAuth)
	assert.Equal(t, "image/png", gotType)
	assert.Equal(t, server.URL+"/object/public/"+res.Path, res.URL)
}

func TestRemoteStorageFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	_, err := NewRemoteStorage(server.URL, "").Put(context.Background(), "pdfs", "x.pdf", "application/pdf", samplePDF)
	assert.ErrorIs(t, err, ErrUpstream)
}
