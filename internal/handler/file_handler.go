package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"pdfvault/internal/domain"
	"pdfvault/internal/service"
)

// maxUploadBytes — лимит на тело запроса загрузки: максимальный размер
// файла плюс запас на multipart-обвязку. Превышение отсекается
// транспортным слоем до какой-либо записи на диск.
const maxUploadBytes = service.MaxFileSize + 512*1024

type FileHandler struct {
	fileService *service.FileService
}

func NewFileHandler(fileService *service.FileService) *FileHandler {
	return &FileHandler{fileService: fileService}
}

// UploadFile обрабатывает загрузку одного PDF (поле формы file).
// POST /api/files
func (h *FileHandler) UploadFile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respondError(w, http.StatusBadRequest, "File too large")
			return
		}
		respondError(w, http.StatusBadRequest, "Failed to parse form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "No file uploaded or wrong file type")
		return
	}
	defer file.Close()

	uploaded, err := h.fileService.Upload(r.Context(), header, file)
	if err != nil {
		log.Printf("[Upload] Ошибка загрузки %q: %v", header.Filename, err)
		switch {
		case errors.Is(err, domain.ErrInvalidFile):
			respondError(w, http.StatusBadRequest, "No file uploaded or wrong file type")
		case errors.Is(err, domain.ErrFileTooLarge):
			respondError(w, http.StatusBadRequest, "File too large")
		case errors.Is(err, domain.ErrInsertFailed):
			respondError(w, http.StatusInternalServerError, "DB insert failed")
		case errors.Is(err, domain.ErrFetchFailed):
			respondError(w, http.StatusInternalServerError, "Could not fetch inserted row")
		default:
			respondError(w, http.StatusInternalServerError, "Upload failed")
		}
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{"file": uploaded})
}

// ListFiles возвращает все файлы, новые первыми.
// GET /api/files
func (h *FileHandler) ListFiles(w http.ResponseWriter, r *http.Request) {
	files, err := h.fileService.List(r.Context())
	if err != nil {
		log.Printf("[List] Ошибка получения списка: %v", err)
		respondError(w, http.StatusInternalServerError, "DB error")
		return
	}

	if files == nil {
		files = []domain.File{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"files": files})
}

// DownloadFile отдаёт блоб как attachment с исходным именем файла.
// GET /api/files/{id}/download
func (h *FileHandler) DownloadFile(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusNotFound, "File not found")
		return
	}

	file, reader, err := h.fileService.Download(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrFileNotFound):
			respondError(w, http.StatusNotFound, "File not found")
		case errors.Is(err, domain.ErrBlobMissing):
			log.Printf("[Download] Запись %d есть, блоба на диске нет", id)
			respondError(w, http.StatusNotFound, "File missing on server")
		default:
			log.Printf("[Download] Ошибка: %v", err)
			respondError(w, http.StatusInternalServerError, "Failed to get file data")
		}
		return
	}
	defer reader.Close()

	contentType := file.MIME
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	// Имя для сохранения — исходное, а не сгенерированное дисковое
	encodedName := url.QueryEscape(file.OriginalName)
	asciiName := strings.ReplaceAll(file.OriginalName, `"`, `\"`)

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.FormatInt(file.Size, 10))
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="%s"; filename*=UTF-8''%s`, asciiName, encodedName))

	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, reader); err != nil {
		// Заголовки уже ушли, остаётся только залогировать
		log.Printf("[Download] Ошибка при отдаче %d: %v", id, err)
	}
}

// DeleteFile удаляет запись и её блоб.
// DELETE /api/files/{id}
func (h *FileHandler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusNotFound, "File not found")
		return
	}

	if err := h.fileService.Delete(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, domain.ErrFileNotFound):
			respondError(w, http.StatusNotFound, "File not found")
		case errors.Is(err, domain.ErrDeleteFailed):
			log.Printf("[Delete] Ошибка удаления записи %d: %v", id, err)
			respondError(w, http.StatusInternalServerError, "Failed to delete DB record")
		default:
			log.Printf("[Delete] Ошибка: %v", err)
			respondError(w, http.StatusInternalServerError, "Failed to delete file")
		}
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "File deleted"})
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
