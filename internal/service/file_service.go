package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"mime/multipart"
	"path/filepath"
	"strings"

	"pdfvault/internal/domain"
	"pdfvault/internal/repository"
	"pdfvault/internal/service/blob"
)

// MaxFileSize — максимальный размер загружаемого файла (20 MiB).
const MaxFileSize = 20 * 1024 * 1024

// FileService реализует основные операции над файлами: загрузку,
// список, скачивание и удаление. Зависимости передаются явно,
// чтобы в тестах подставлять дублёры.
type FileService struct {
	fileRepo repository.FileRepository
	blobs    blob.Storage
}

func NewFileService(fileRepo repository.FileRepository, blobs blob.Storage) *FileService {
	return &FileService{
		fileRepo: fileRepo,
		blobs:    blobs,
	}
}

// isPDF проверяет тип загрузки: достаточно либо заявленного MIME
// application/pdf, либо расширения .pdf (без учёта регистра).
// Проверка — ИЛИ, не И: файл с неверным MIME, но правильным именем
// проходит, как и наоборот.
func isPDF(originalName, mimeType string) bool {
	if mimeType == "application/pdf" {
		return true
	}
	return strings.EqualFold(filepath.Ext(originalName), ".pdf")
}

// Upload выполняет конвейер загрузки: валидация до любой записи,
// затем блоб на диск, затем запись в базу. Если вставка в базу не
// удалась, только что записанный блоб удаляется best-effort.
func (s *FileService) Upload(ctx context.Context, header *multipart.FileHeader, file multipart.File) (*domain.File, error) {
	if header == nil || file == nil {
		return nil, domain.ErrInvalidFile
	}

	mimeType := header.Header.Get("Content-Type")
	if !isPDF(header.Filename, mimeType) {
		return nil, domain.ErrInvalidFile
	}

	if header.Size > MaxFileSize {
		return nil, fmt.Errorf("%w: max size is %d bytes", domain.ErrFileTooLarge, MaxFileSize)
	}

	// Пишем блоб под свежесгенерированным именем
	key := blob.NewKey(header.Filename)
	if _, err := s.blobs.Save(key, file); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}

	// Вставляем запись; размер и MIME берутся из метаданных загрузки
	record := &domain.File{
		Filename:     key,
		OriginalName: header.Filename,
		Size:         header.Size,
		MIME:         mimeType,
	}
	id, err := s.fileRepo.Create(ctx, record)
	if err != nil {
		// Откатываем блоб; неудача отката логируется и проглатывается
		s.cleanup("remove blob after failed insert", key)
		return nil, fmt.Errorf("%w: %v", domain.ErrInsertFailed, err)
	}

	// Перечитываем вставленную запись — наружу уходит то, что реально
	// лежит в базе (включая created_at, проставленный сервером БД)
	inserted, err := s.fileRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrFetchFailed, err)
	}

	return inserted, nil
}

// List возвращает все записи, новые первыми.
func (s *FileService) List(ctx context.Context) ([]domain.File, error) {
	files, err := s.fileRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}
	return files, nil
}

// Download находит запись и открывает её блоб. Запись без блоба на
// диске — рассинхронизация, о ней сообщается как об отсутствии файла,
// а не падением.
func (s *FileService) Download(ctx context.Context, id int64) (*domain.File, io.ReadCloser, error) {
	file, err := s.fileRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrFileNotFound) {
			return nil, nil, domain.ErrFileNotFound
		}
		return nil, nil, fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}

	reader, err := s.blobs.Open(file.Filename)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, domain.ErrBlobMissing
		}
		return nil, nil, fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}

	return file, reader, nil
}

// Delete удаляет запись, затем пытается удалить блоб. Порядок
// фиксированный: сначала база, потом диск. Неудача удаления блоба не
// проваливает запрос — запись уже удалена, блоб остаётся сиротой.
func (s *FileService) Delete(ctx context.Context, id int64) error {
	file, err := s.fileRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrFileNotFound) {
			return domain.ErrFileNotFound
		}
		return fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}

	if err := s.fileRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrFileNotFound) {
			// Запись исчезла между чтением и удалением
			return domain.ErrFileNotFound
		}
		return fmt.Errorf("%w: %v", domain.ErrDeleteFailed, err)
	}

	s.cleanup("remove blob after delete", file.Filename)
	return nil
}

// cleanup — именованная категория best-effort операций: удаление блоба,
// исход которого не влияет на результат основной операции. Ошибка
// только логируется.
func (s *FileService) cleanup(op, key string) {
	if err := s.blobs.Remove(key); err != nil {
		log.Printf("[Cleanup] %s (%s): %v", op, key, err)
	}
}
