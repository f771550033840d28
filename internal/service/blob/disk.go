package blob

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Client хранит блобы в одном плоском каталоге на локальном диске.
type Client struct {
	dir string
}

// NewClient создаёт клиента дискового хранилища. Каталог создаётся,
// если его ещё нет.
func NewClient(dir string) (*Client, error) {
	if dir == "" {
		return nil, fmt.Errorf("upload directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &Client{dir: dir}, nil
}

// Save записывает блоб через временный файл с последующим rename,
// чтобы неудачная запись не оставила частичный блоб под финальным именем.
func (c *Client) Save(key string, r io.Reader) (int64, error) {
	tmp, err := os.CreateTemp(c.dir, ".upload-*")
	if err != nil {
		return 0, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	written, err := io.Copy(tmp, r)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return 0, fmt.Errorf("failed to write blob: %w", err)
	}

	if err := os.Rename(tmp.Name(), c.path(key)); err != nil {
		return 0, fmt.Errorf("failed to finalize blob: %w", err)
	}
	return written, nil
}

func (c *Client) Open(key string) (io.ReadCloser, error) {
	f, err := os.Open(c.path(key))
	if err != nil {
		// os.Open уже возвращает ошибку, совместимую с fs.ErrNotExist
		return nil, err
	}
	return f, nil
}

func (c *Client) Remove(key string) error {
	if err := os.Remove(c.path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove blob: %w", err)
	}
	return nil
}

func (c *Client) path(key string) string {
	// Ключи генерируются сервером, но Base отрезает попытки выхода
	// из каталога на случай испорченной записи в базе
	return filepath.Join(c.dir, filepath.Base(key))
}
