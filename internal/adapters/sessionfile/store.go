package sessionfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/larriantoniy/tg_report_bot/internal/domain"
)

// Файл сессии это YAML-дескриптор. Ключи авторизации хранит TDLib
// в своей базе рядом с файлом: <session>.tdlib/{database,files}.
const tdlibDirSuffix = ".tdlib"

// LoadOrCreate читает дескриптор или возвращает новый, если файла нет.
func LoadOrCreate(path string) (*domain.Session, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return newSession(path), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session %s: %w", path, err)
	}

	var s domain.Session
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("unmarshal session %s: %w", path, err)
	}

	// подстрахуемся, если файл правили руками
	def := newSession(path)
	if s.DatabaseDir == "" {
		s.DatabaseDir = def.DatabaseDir
	}
	if s.FilesDir == "" {
		s.FilesDir = def.FilesDir
	}
	return &s, nil
}

func newSession(path string) *domain.Session {
	root := path + tdlibDirSuffix
	return &domain.Session{
		DatabaseDir: filepath.Join(root, "database"),
		FilesDir:    filepath.Join(root, "files"),
	}
}

// Save пишет дескриптор атомарно (tmp + rename), права 0600.
func Save(path string, s *domain.Session) error {
	if s.SavedAt.IsZero() {
		s.SavedAt = time.Now().UTC()
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp session: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write session: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod session: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close session: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename session: %w", err)
	}
	return nil
}
