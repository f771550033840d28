package domain

import (
	"errors"
	"time"
)

// Ошибки доменного уровня. Сервис возвращает их (обёрнутыми через %w),
// хендлеры сопоставляют с HTTP-статусами через errors.Is.
var (
	// ErrInvalidFile — файл не передан или не прошёл проверку типа.
	ErrInvalidFile = errors.New("no file uploaded or wrong file type")
	// ErrFileTooLarge — превышен максимальный размер загрузки.
	ErrFileTooLarge = errors.New("file size exceeds maximum allowed size")
	// ErrFileNotFound — записи с таким id нет в базе.
	ErrFileNotFound = errors.New("file not found")
	// ErrBlobMissing — запись есть, а блоба на диске нет.
	ErrBlobMissing = errors.New("file missing on server")
	// ErrInsertFailed — не удалось вставить запись (блоб откатывается).
	ErrInsertFailed = errors.New("db insert failed")
	// ErrFetchFailed — вставка прошла, но перечитать запись не удалось.
	ErrFetchFailed = errors.New("could not fetch inserted row")
	// ErrDeleteFailed — не удалось удалить запись из базы.
	ErrDeleteFailed = errors.New("failed to delete db record")
	// ErrStorage — прочие ошибки базы или файловой системы.
	ErrStorage = errors.New("storage operation failed")
)

// File представляет запись о загруженном файле.
// Filename — сгенерированное имя на диске, наружу не отдаётся;
// пользователь видит только OriginalName.
type File struct {
	ID           int64     `json:"id" db:"id"`
	Filename     string    `json:"-" db:"filename"`
	OriginalName string    `json:"name" db:"original_name"`
	Size         int64     `json:"size" db:"size"`
	MIME         string    `json:"mime" db:"mime"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
