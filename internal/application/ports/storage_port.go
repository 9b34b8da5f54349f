package ports

import (
	"context"
	"io"
	"time"
)

// StoredFile archivo leído del almacenamiento. Quien lo recibe debe cerrar Content.
type StoredFile struct {
	Content     io.ReadCloser
	Size        int64
	ContentType string
	ModTime     time.Time
}

// FileStore almacenamiento de archivos por clave relativa ("constancias/2024/abc.pdf").
// Las claves llegan ya saneadas; Open devuelve domain.ErrNotFound si no existe.
type FileStore interface {
	Save(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Open(ctx context.Context, key string) (*StoredFile, error)
	Delete(ctx context.Context, key string) error
}
