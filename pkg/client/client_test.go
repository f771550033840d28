package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStubServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, 5*time.Second)
}

// TestUpload проверяет форму запроса: поле file, имя, Content-Type
// части — и разбор ответа.
func TestUpload(t *testing.T) {
	c := newStubServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/files", r.URL.Path)

		require.NoError(t, r.ParseMultipartForm(32<<20))
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()

		assert.Equal(t, "report.pdf", header.Filename)
		assert.Equal(t, "application/pdf", header.Header.Get("Content-Type"))

		content, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, "%PDF-1.7", string(content))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{
			"file": map[string]any{
				"id":         1,
				"name":       header.Filename,
				"size":       header.Size,
				"mime":       "application/pdf",
				"created_at": time.Now(),
			},
		})
	})

	uploaded, err := c.Upload(context.Background(), "report.pdf", "application/pdf", strings.NewReader("%PDF-1.7"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), uploaded.ID)
	assert.Equal(t, "report.pdf", uploaded.OriginalName)
}

// TestUpload_ServerError: сообщение сервера попадает в ошибку клиента.
func TestUpload_ServerError(t *testing.T) {
	c := newStubServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "No file uploaded or wrong file type"})
	})

	_, err := c.Upload(context.Background(), "notes.txt", "text/plain", strings.NewReader("text"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "No file uploaded or wrong file type")
}

// TestList разбирает конверт {"files": [...]}.
func TestList(t *testing.T) {
	c := newStubServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/api/files", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"files": []map[string]any{
				{"id": 2, "name": "b.pdf", "size": 20, "mime": "application/pdf"},
				{"id": 1, "name": "a.pdf", "size": 10, "mime": "application/pdf"},
			},
		})
	})

	files, err := c.List(context.Background())
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "b.pdf", files[0].OriginalName)
	assert.Equal(t, int64(1), files[1].ID)
}

// TestDownload возвращает поток и имя из Content-Disposition.
func TestDownload(t *testing.T) {
	c := newStubServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/files/7/download", r.URL.Path)

		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="report.pdf"; filename*=UTF-8''report.pdf`)
		w.Write([]byte("%PDF-1.7 data"))
	})

	reader, filename, err := c.Download(context.Background(), 7)
	require.NoError(t, err)
	defer reader.Close()

	assert.Equal(t, "report.pdf", filename)
	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7 data", string(data))
}

// TestDownload_NotFound: 404 превращается в ошибку с текстом сервера.
func TestDownload_NotFound(t *testing.T) {
	c := newStubServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "File not found"})
	})

	_, _, err := c.Download(context.Background(), 42)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "File not found")
}

// TestDelete: метод, путь и обработка успеха.
func TestDelete(t *testing.T) {
	c := newStubServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		require.Equal(t, "/api/files/7", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "File deleted"})
	})

	assert.NoError(t, c.Delete(context.Background(), 7))
}
