// Пакет client — HTTP-клиент файлового хранилища. Покрывает четыре
// операции API: загрузку, список, скачивание и удаление.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"pdfvault/internal/domain"
)

// Client — клиент API файлового хранилища.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New создаёт клиента. baseURL — адрес сервера без завершающего слэша,
// например http://localhost:5000.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Upload загружает файл и возвращает созданную запись.
// name — исходное имя файла, mimeType — заявленный Content-Type.
func (c *Client) Upload(ctx context.Context, name, mimeType string, r io.Reader) (*domain.File, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	// Часть формы собирается вручную, чтобы проставить Content-Type части
	partHeader := textproto.MIMEHeader{}
	partHeader.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="file"; filename="%s"`, strings.ReplaceAll(name, `"`, `\"`)))
	if mimeType != "" {
		partHeader.Set("Content-Type", mimeType)
	}

	part, err := mw.CreatePart(partHeader)
	if err != nil {
		return nil, fmt.Errorf("failed to create form part: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("failed to write form part: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/files", &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upload request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return nil, apiError(resp)
	}

	var result struct {
		File *domain.File `json:"file"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode upload response: %w", err)
	}
	return result.File, nil
}

// List возвращает все файлы, новые первыми.
func (c *Client) List(ctx context.Context) ([]domain.File, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/files", http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create list request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp)
	}

	var result struct {
		Files []domain.File `json:"files"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode list response: %w", err)
	}
	return result.Files, nil
}

// Download скачивает файл по id. Возвращает поток содержимого и имя
// файла из Content-Disposition. Закрыть поток обязан вызывающий код.
func (c *Client) Download(ctx context.Context, id int64) (io.ReadCloser, string, error) {
	reqURL := fmt.Sprintf("%s/api/files/%d/download", c.baseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create download request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("download request failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, "", apiError(resp)
	}

	filename := ""
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil {
		filename = params["filename"]
	}

	// Тело не закрываем — стриминг, ответственность вызывающего
	return resp.Body, filename, nil
}

// Delete удаляет файл по id.
func (c *Client) Delete(ctx context.Context, id int64) error {
	reqURL := fmt.Sprintf("%s/api/files/%d", c.baseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, reqURL, http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create delete request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("delete request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apiError(resp)
	}
	return nil
}

// apiError выделяет структурированное сообщение сервера {"error": "..."}.
func apiError(resp *http.Response) error {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil && payload.Error != "" {
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, payload.Error)
	}
	return fmt.Errorf("server returned %d", resp.StatusCode)
}
