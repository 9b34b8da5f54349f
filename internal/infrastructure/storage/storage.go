package storage

import (
	"context"
	"fmt"

	"github.com/jhoicas/portal-unamad/internal/application/ports"
	"github.com/jhoicas/portal-unamad/pkg/config"
)

// New construye el FileStore según STORAGE_DRIVER (local | minio).
func New(ctx context.Context, cfg config.StorageConfig) (ports.FileStore, error) {
	switch cfg.Driver {
	case "", "local":
		return NewLocalStore(cfg.Root)
	case "minio":
		return NewMinioStore(ctx, cfg)
	}
	return nil, fmt.Errorf("storage: driver desconocido %q", cfg.Driver)
}
