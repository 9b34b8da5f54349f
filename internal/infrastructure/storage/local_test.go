package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/portal-unamad/internal/domain"
	"github.com/jhoicas/portal-unamad/pkg/config"
)

func TestLocalStore_GuardarAbrirBorrar(t *testing.T) {
	s, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "constancias/2025/a.pdf", strings.NewReader("%PDF-1.7"), 8, "application/pdf"))

	f, err := s.Open(ctx, "constancias/2025/a.pdf")
	require.NoError(t, err)
	body, err := io.ReadAll(f.Content)
	require.NoError(t, err)
	require.NoError(t, f.Content.Close())
	assert.Equal(t, "%PDF-1.7", string(body))
	assert.Equal(t, int64(8), f.Size)
	assert.Equal(t, "application/pdf", f.ContentType)

	require.NoError(t, s.Delete(ctx, "constancias/2025/a.pdf"))
	_, err = s.Open(ctx, "constancias/2025/a.pdf")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, "constancias/2025/a.pdf"), domain.ErrNotFound)
}

func TestLocalStore_NoSaleDeLaRaiz(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "uploads")
	s, err := NewLocalStore(root)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "secreto.txt"), []byte("x"), 0o600))

	_, err = s.Open(context.Background(), "../secreto.txt")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = s.Open(context.Background(), "constancias/../../secreto.txt")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	err = s.Save(context.Background(), "../fuera.pdf", strings.NewReader("x"), 1, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.NoFileExists(t, filepath.Join(dir, "fuera.pdf"))
}

func TestLocalStore_DirectorioNoEsArchivo(t *testing.T) {
	s, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, s.Save(context.Background(), "public/x/a.png", strings.NewReader("png"), 3, ""))

	_, err = s.Open(context.Background(), "public/x")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestNew_DriverDesconocido(t *testing.T) {
	_, err := New(context.Background(), config.StorageConfig{Driver: "ftp"})
	assert.Error(t, err)

	st, err := New(context.Background(), config.StorageConfig{Driver: "local", Root: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &LocalStore{}, st)
}
