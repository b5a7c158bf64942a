package services

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0}

func fileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/upload", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["file"][0]
}

func TestLocalStorageUpload(t *testing.T) {
	cfg := testConfig()
	cfg.Storage.LocalDir = t.TempDir()
	cfg.Storage.LocalBaseURL = "/uploads/"
	ctx := context.Background()

	svc, err := NewStorageService(ctx, cfg)
	require.NoError(t, err)

	result, err := svc.UploadFile(ctx, fileHeader(t, "Photo.PNG", pngHeader), svc.GetDefaultUploadOptions("products"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(result.Key, "products/"))
	assert.True(t, strings.HasSuffix(result.Key, ".png"))
	assert.Equal(t, "/uploads/"+result.Key, result.URL)
	assert.EqualValues(t, len(pngHeader), result.Size)

	stored, err := os.ReadFile(filepath.Join(cfg.Storage.LocalDir, result.Key))
	require.NoError(t, err)
	assert.Equal(t, pngHeader, stored)

	require.NoError(t, svc.DeleteFile(ctx, result.Key))
	_, err = os.Stat(filepath.Join(cfg.Storage.LocalDir, result.Key))
	assert.True(t, os.IsNotExist(err))
	assert.NoError(t, svc.DeleteFile(ctx, result.Key))
}

func TestUploadRejections(t *testing.T) {
	cfg := testConfig()
	cfg.Storage.LocalDir = t.TempDir()
	svc, err := NewStorageService(context.Background(), cfg)
	require.NoError(t, err)

	tests := []struct {
		name     string
		filename string
		content  []byte
		category string
		want     error
	}{
		{"extension", "model.exe", pngHeader, "products", ErrFileTypeInvalid},
		{"content sniffing", "fake.png", []byte("not really a png"), "products", ErrFileTypeInvalid},
		{"size", "big.jpg", bytes.Repeat([]byte{0xFF}, 3*1024*1024), "avatars", ErrFileTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.UploadFile(context.Background(), fileHeader(t, tt.filename, tt.content), svc.GetDefaultUploadOptions(tt.category))
			assert.ErrorIs(t, err, tt.want)
		})
	}

	result, err := svc.UploadFile(context.Background(), fileHeader(t, "bench.stl", []byte("solid bench")), svc.GetDefaultUploadOptions("stl_models"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(result.Key, "stl-models/"))
}
