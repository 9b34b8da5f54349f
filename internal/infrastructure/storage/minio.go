package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/jhoicas/portal-unamad/internal/application/ports"
	"github.com/jhoicas/portal-unamad/internal/domain"
	"github.com/jhoicas/portal-unamad/internal/domain/files"
	"github.com/jhoicas/portal-unamad/pkg/config"
)

var _ ports.FileStore = (*MinioStore)(nil)

// MinioStore guarda los archivos como objetos de un bucket; la clave es el nombre del objeto.
type MinioStore struct {
	client *minio.Client
	bucket string
}

// NewMinioStore conecta con MinIO y crea el bucket si no existe.
func NewMinioStore(ctx context.Context, cfg config.StorageConfig) (*MinioStore, error) {
	endpoint := strings.TrimPrefix(cfg.MinioEndpoint, "http://")
	endpoint = strings.TrimPrefix(endpoint, "https://")

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioSecure,
	})
	if err != nil {
		return nil, fmt.Errorf("storage: cliente minio: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	exists, err := client.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		return nil, fmt.Errorf("storage: conectar con minio: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("storage: crear bucket %s: %w", cfg.MinioBucket, err)
		}
	}
	return &MinioStore{client: client, bucket: cfg.MinioBucket}, nil
}

// Save sube el objeto con su tipo de contenido.
func (s *MinioStore) Save(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	if contentType == "" {
		contentType = files.ContentTypeFor(key)
	}
	_, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("storage: subir %s: %w", key, err)
	}
	return nil
}

// Open descarga el objeto; domain.ErrNotFound si no existe.
func (s *MinioStore) Open(ctx context.Context, key string) (*ports.StoredFile, error) {
	info, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if isNotFound(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("storage: stat %s: %w", key, err)
	}
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("storage: descargar %s: %w", key, err)
	}
	// El tipo se deriva de la extensión, no del metadato guardado.
	return &ports.StoredFile{
		Content:     obj,
		Size:        info.Size,
		ContentType: files.ContentTypeFor(key),
		ModTime:     info.LastModified,
	}, nil
}

// Delete borra el objeto. MinIO no informa si existía.
func (s *MinioStore) Delete(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("storage: borrar %s: %w", key, err)
	}
	return nil
}

func isNotFound(err error) bool {
	resp := minio.ToErrorResponse(err)
	return resp.StatusCode == http.StatusNotFound || resp.Code == "NoSuchKey"
}
