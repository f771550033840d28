package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"pdfvault/internal/domain"
)

// FileRepository — доступ к таблице files. Интерфейс позволяет
// подменять реализацию в тестах сервиса и хендлеров.
type FileRepository interface {
	// Create вставляет запись и возвращает сгенерированный id.
	Create(ctx context.Context, file *domain.File) (int64, error)
	// GetByID возвращает запись или domain.ErrFileNotFound.
	GetByID(ctx context.Context, id int64) (*domain.File, error)
	// List возвращает все записи, новые первыми.
	List(ctx context.Context) ([]domain.File, error)
	// Delete удаляет запись; domain.ErrFileNotFound, если её не было.
	Delete(ctx context.Context, id int64) error
}

type fileRepository struct {
	db *sqlx.DB
}

func NewFileRepository(db *sqlx.DB) FileRepository {
	return &fileRepository{db: db}
}

func (r *fileRepository) Create(ctx context.Context, file *domain.File) (int64, error) {
	query := `
        INSERT INTO files (filename, original_name, size, mime)
        VALUES ($1, $2, $3, $4)
        RETURNING id`

	var id int64
	err := r.db.QueryRowContext(
		ctx,
		query,
		file.Filename,
		file.OriginalName,
		file.Size,
		file.MIME,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert file: %w", err)
	}

	return id, nil
}

func (r *fileRepository) GetByID(ctx context.Context, id int64) (*domain.File, error) {
	var file domain.File
	query := `SELECT id, filename, original_name, size, mime, created_at FROM files WHERE id = $1`

	err := r.db.GetContext(ctx, &file, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrFileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get file: %w", err)
	}

	return &file, nil
}

func (r *fileRepository) List(ctx context.Context) ([]domain.File, error) {
	var files []domain.File
	// id как tie-break: записи одного тика created_at идут в порядке вставки
	query := `
        SELECT id, filename, original_name, size, mime, created_at
        FROM files
        ORDER BY created_at DESC, id DESC`

	if err := r.db.SelectContext(ctx, &files, query); err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	return files, nil
}

func (r *fileRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM files WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return domain.ErrFileNotFound
	}

	return nil
}
