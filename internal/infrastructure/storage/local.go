// Package storage implementa ports.FileStore sobre disco local o MinIO.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/jhoicas/portal-unamad/internal/application/ports"
	"github.com/jhoicas/portal-unamad/internal/domain"
	"github.com/jhoicas/portal-unamad/internal/domain/files"
)

var _ ports.FileStore = (*LocalStore)(nil)

// LocalStore guarda los archivos bajo una raíz de contenido en disco.
type LocalStore struct {
	root string
}

// NewLocalStore crea la raíz si no existe.
func NewLocalStore(root string) (*LocalStore, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: raíz %q: %w", root, err)
	}
	if err := os.MkdirAll(abs, 0o750); err != nil {
		return nil, fmt.Errorf("storage: crear raíz: %w", err)
	}
	return &LocalStore{root: abs}, nil
}

// resolve traduce la clave a una ruta absoluta que debe quedar dentro de la raíz.
func (s *LocalStore) resolve(key string) (string, error) {
	full := filepath.Join(s.root, filepath.FromSlash(key))
	rel, err := filepath.Rel(s.root, full)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return "", domain.NewValidationError("ruta de archivo inválida")
	}
	return full, nil
}

// Save escribe el archivo de forma atómica (temporal + rename).
func (s *LocalStore) Save(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	full, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o750); err != nil {
		return fmt.Errorf("storage: crear carpeta: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(full), ".upload-*")
	if err != nil {
		return fmt.Errorf("storage: temporal: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := io.Copy(tmp, r); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("storage: escribir %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: cerrar %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), full); err != nil {
		return fmt.Errorf("storage: mover %s: %w", key, err)
	}
	return nil
}

// Open abre el archivo; domain.ErrNotFound si no existe o es un directorio.
func (s *LocalStore) Open(_ context.Context, key string) (*ports.StoredFile, error) {
	full, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("storage: abrir %s: %w", key, err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("storage: stat %s: %w", key, err)
	}
	if info.IsDir() {
		_ = f.Close()
		return nil, domain.ErrNotFound
	}
	return &ports.StoredFile{
		Content:     f,
		Size:        info.Size(),
		ContentType: files.ContentTypeFor(key),
		ModTime:     info.ModTime(),
	}, nil
}

// Delete borra el archivo; domain.ErrNotFound si no existía.
func (s *LocalStore) Delete(_ context.Context, key string) error {
	full, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("storage: borrar %s: %w", key, err)
	}
	return nil
}
