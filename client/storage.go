// Package client реализует SDK портала: хранение сессии, обёртку над
// REST API с разбором конвертов ответов, жизненный цикл аутентификации
// и сценарий оплаты подписки.
package client

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Ключи персистентного хранилища клиента.
const (
	StorageKeyToken   = "token"
	StorageKeyUser    = "user"
	StorageKeySidebar = "sidebar_collapsed"
	StorageKeyTheme   = "theme"
)

// Storage описывает персистентное хранилище клиента: токен, профиль
// и настройки интерфейса.
type Storage interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Delete(key string) error
	Clear() error
}

// FileStorage реализует Storage поверх JSON-файла.
type FileStorage struct {
	mu   sync.Mutex
	path string
	data map[string]string
}

// NewFileStorage создаёт хранилище в указанном файле. Существующее
// содержимое загружается, повреждённый файл считается пустым.
func NewFileStorage(path string) (*FileStorage, error) {
	s := &FileStorage{
		path: path,
		data: make(map[string]string),
	}

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read storage file: %w", err)
	}
	if err := json.Unmarshal(raw, &s.data); err != nil {
		// Повреждённый файл перезаписывается при первом Set.
		s.data = make(map[string]string)
	}
	return s, nil
}

// Get возвращает значение по ключу.
func (s *FileStorage) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	return v, ok
}

// Set сохраняет значение и записывает файл.
func (s *FileStorage) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return s.flush()
}

// Delete удаляет значение по ключу.
func (s *FileStorage) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return s.flush()
}

// Clear удаляет все значения.
func (s *FileStorage) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = make(map[string]string)
	return s.flush()
}

func (s *FileStorage) flush() error {
	raw, err := json.Marshal(s.data)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(s.path, raw, 0o600)
}

// MemoryStorage реализует Storage в памяти. Используется в тестах
// и в сценариях без персистентности.
type MemoryStorage struct {
	mu   sync.Mutex
	data map[string]string
}

// NewMemoryStorage создаёт пустое хранилище в памяти.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{data: make(map[string]string)}
}

// Get возвращает значение по ключу.
func (s *MemoryStorage) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	return v, ok
}

// Set сохраняет значение.
func (s *MemoryStorage) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

// Delete удаляет значение по ключу.
func (s *MemoryStorage) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// Clear удаляет все значения.
func (s *MemoryStorage) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = make(map[string]string)
	return nil
}
