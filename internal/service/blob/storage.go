// storage.go
package blob

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Storage определяет интерфейс для работы с хранилищем блобов.
// Ключ — сгенерированное имя файла внутри каталога хранилища.
type Storage interface {
	// Save записывает содержимое r под ключом key и возвращает
	// количество записанных байт.
	Save(key string, r io.Reader) (int64, error)
	// Open открывает блоб на чтение. Отсутствие блоба отличимо
	// через errors.Is(err, fs.ErrNotExist).
	Open(key string) (io.ReadCloser, error)
	// Remove удаляет блоб. Отсутствие блоба — не ошибка.
	Remove(key string) error
}

// NewKey генерирует имя блоба на диске: миллисекунды текущего времени,
// случайный суффикс и исходное расширение. Временная компонента плюс
// случайная дают устойчивость к коллизиям при параллельных загрузках
// файлов с одинаковыми именами.
func NewKey(originalName string) string {
	ext := filepath.Ext(originalName)
	return fmt.Sprintf("%d-%s%s", time.Now().UnixMilli(), uuid.NewString()[:8], ext)
}
