package document

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/portal-unamad/internal/application/dto"
	"github.com/jhoicas/portal-unamad/internal/application/ports"
	"github.com/jhoicas/portal-unamad/internal/domain"
	"github.com/jhoicas/portal-unamad/internal/domain/entity"
	"github.com/jhoicas/portal-unamad/internal/domain/files"
	"github.com/jhoicas/portal-unamad/internal/domain/repository"
	"github.com/jhoicas/portal-unamad/pkg/validate"
)

// MaxUploadBytes tamaño máximo de un archivo adjunto.
const MaxUploadBytes = 10 << 20

// Deps dependencias del servicio de documentos.
type Deps struct {
	Tx           TxRunner
	Constancias  repository.ConstanciaRepository
	Resoluciones repository.ResolucionRepository
	Audit        repository.AuditLogRepository
	Users        repository.UserRepository
	Authz        permissionChecker
	Store        ports.FileStore
	PDF          ports.ConstanciaRenderer
}

// Service casos de uso de documentos. Cada operación verifica la acción requerida
// sobre el permiso del tipo (constancias.access / resoluciones.access).
type Service struct {
	tx           TxRunner
	constancias  repository.ConstanciaRepository
	resoluciones repository.ResolucionRepository
	audit        repository.AuditLogRepository
	users        repository.UserRepository
	authz        permissionChecker
	store        ports.FileStore
	pdf          ports.ConstanciaRenderer
	now          func() time.Time
}

// NewService construye el servicio de documentos.
func NewService(d Deps) *Service {
	return &Service{
		tx:           d.Tx,
		constancias:  d.Constancias,
		resoluciones: d.Resoluciones,
		audit:        d.Audit,
		users:        d.Users,
		authz:        d.Authz,
		store:        d.Store,
		pdf:          d.PDF,
		now:          time.Now,
	}
}

// WithClock reemplaza el reloj (tests).
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// ─── Constancias ─────────────────────────────────────────────────────────────

// CreateConstancia registra una constancia PENDIENTE. El adjunto es opcional:
// la versión imprimible se genera con ConstanciaPDF una vez aprobada.
func (s *Service) CreateConstancia(ctx context.Context, actor entity.Session, in dto.CreateConstanciaRequest, file *dto.FileUpload, meta entity.RequestMeta) (*dto.ConstanciaResponse, error) {
	if err := s.authorize(ctx, actor, entity.KindConstancia, entity.ActionCreate); err != nil {
		return nil, err
	}
	if err := validate.Struct(&in); err != nil {
		return nil, domain.NewValidationError(err.Error())
	}

	now := s.now()
	c := &entity.Constancia{
		ID:          uuid.New().String(),
		StudentCode: in.StudentCode,
		StudentDNI:  in.StudentDNI,
		StudentName: strings.TrimSpace(in.StudentName),
		Type:        in.Type,
		Purpose:     in.Purpose,
		Status:      entity.StatusPendiente,
		CreatedByID: actor.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if file != nil {
		key, err := s.upload(ctx, entity.KindConstancia, file, now)
		if err != nil {
			return nil, err
		}
		c.FilePath = key
	}

	err := s.tx.RunConstancias(ctx, func(docs repository.ConstanciaRepository, audit repository.AuditLogRepository) error {
		if err := docs.Create(ctx, c); err != nil {
			return err
		}
		return audit.Create(ctx, createdAudit(actor, entity.KindConstancia, c.ID, map[string]any{"code": c.Code, "studentCode": c.StudentCode}, meta, now))
	})
	if err != nil {
		s.discard(c.FilePath)
		return nil, err
	}
	return toConstanciaResponse(c), nil
}

// ListConstancias listado paginado con filtros de estado y búsqueda.
func (s *Service) ListConstancias(ctx context.Context, actor entity.Session, q dto.DocumentListQuery) (*dto.ConstanciaListResponse, error) {
	if err := s.authorize(ctx, actor, entity.KindConstancia, entity.ActionRead); err != nil {
		return nil, err
	}
	f, err := toFilter(q)
	if err != nil {
		return nil, err
	}
	list, total, err := s.constancias.List(ctx, f)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ConstanciaResponse, 0, len(list))
	for _, c := range list {
		items = append(items, *toConstanciaResponse(c))
	}
	return &dto.ConstanciaListResponse{Items: items, Page: dto.PageResponse{Limit: f.Limit, Offset: f.Offset, Total: total}}, nil
}

// GetConstancia devuelve una constancia o domain.ErrNotFound.
func (s *Service) GetConstancia(ctx context.Context, actor entity.Session, id string) (*dto.ConstanciaResponse, error) {
	if err := s.authorize(ctx, actor, entity.KindConstancia, entity.ActionRead); err != nil {
		return nil, err
	}
	c, err := s.constancias.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	return toConstanciaResponse(c), nil
}

// DeleteConstancia elimina una constancia que sigue PENDIENTE.
func (s *Service) DeleteConstancia(ctx context.Context, actor entity.Session, id string, meta entity.RequestMeta) error {
	if err := s.authorize(ctx, actor, entity.KindConstancia, entity.ActionDelete); err != nil {
		return err
	}
	var filePath string
	err := s.tx.RunConstancias(ctx, func(docs repository.ConstanciaRepository, audit repository.AuditLogRepository) error {
		c, err := docs.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if c == nil {
			return domain.ErrNotFound
		}
		if c.Status != entity.StatusPendiente {
			return fmt.Errorf("%w (estado actual: %s)", domain.ErrAlreadyProcessed, c.Status)
		}
		if err := docs.Delete(ctx, id); err != nil {
			return err
		}
		filePath = c.FilePath
		return audit.Create(ctx, deletedAudit(actor, entity.KindConstancia, id, map[string]any{"code": c.Code}, meta, s.now()))
	})
	if err != nil {
		return err
	}
	s.discard(filePath)
	return nil
}

// ConstanciaPDF genera el PDF imprimible de una constancia APROBADA. Exige EXPORT.
func (s *Service) ConstanciaPDF(ctx context.Context, actor entity.Session, id string) ([]byte, string, error) {
	if err := s.authorize(ctx, actor, entity.KindConstancia, entity.ActionExport); err != nil {
		return nil, "", err
	}
	c, err := s.constancias.GetByID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if c == nil {
		return nil, "", domain.ErrNotFound
	}
	if c.Status != entity.StatusAprobado {
		return nil, "", fmt.Errorf("%w: la constancia no está aprobada", domain.ErrConflict)
	}
	approver := ""
	if c.ApprovedByID != nil {
		u, err := s.users.GetByID(ctx, *c.ApprovedByID)
		if err != nil {
			return nil, "", err
		}
		if u != nil {
			approver = u.Name
		}
	}
	pdf, err := s.pdf.RenderConstancia(c, approver)
	if err != nil {
		return nil, "", fmt.Errorf("constancia pdf: %w", err)
	}
	return pdf, c.Code + ".pdf", nil
}

// ─── Resoluciones ────────────────────────────────────────────────────────────

// CreateResolucion registra una resolución PENDIENTE con su archivo (obligatorio).
func (s *Service) CreateResolucion(ctx context.Context, actor entity.Session, in dto.CreateResolucionRequest, file *dto.FileUpload, meta entity.RequestMeta) (*dto.ResolucionResponse, error) {
	if err := s.authorize(ctx, actor, entity.KindResolucion, entity.ActionCreate); err != nil {
		return nil, err
	}
	if err := validate.Struct(&in); err != nil {
		return nil, domain.NewValidationError(err.Error())
	}
	if file == nil {
		return nil, domain.NewValidationError("el archivo de la resolución es obligatorio")
	}

	now := s.now()
	key, err := s.upload(ctx, entity.KindResolucion, file, now)
	if err != nil {
		return nil, err
	}
	r := &entity.Resolucion{
		ID:          uuid.New().String(),
		Number:      strings.TrimSpace(in.Number),
		Title:       in.Title,
		Description: in.Description,
		IssuedAt:    in.IssuedAt,
		FilePath:    key,
		Status:      entity.StatusPendiente,
		CreatedByID: actor.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	err = s.tx.RunResoluciones(ctx, func(docs repository.ResolucionRepository, audit repository.AuditLogRepository) error {
		if err := docs.Create(ctx, r); err != nil {
			return err
		}
		return audit.Create(ctx, createdAudit(actor, entity.KindResolucion, r.ID, map[string]any{"number": r.Number}, meta, now))
	})
	if err != nil {
		s.discard(key)
		return nil, err
	}
	return toResolucionResponse(r), nil
}

// ListResoluciones listado paginado con filtros de estado y búsqueda.
func (s *Service) ListResoluciones(ctx context.Context, actor entity.Session, q dto.DocumentListQuery) (*dto.ResolucionListResponse, error) {
	if err := s.authorize(ctx, actor, entity.KindResolucion, entity.ActionRead); err != nil {
		return nil, err
	}
	f, err := toFilter(q)
	if err != nil {
		return nil, err
	}
	list, total, err := s.resoluciones.List(ctx, f)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ResolucionResponse, 0, len(list))
	for _, r := range list {
		items = append(items, *toResolucionResponse(r))
	}
	return &dto.ResolucionListResponse{Items: items, Page: dto.PageResponse{Limit: f.Limit, Offset: f.Offset, Total: total}}, nil
}

// GetResolucion devuelve una resolución o domain.ErrNotFound.
func (s *Service) GetResolucion(ctx context.Context, actor entity.Session, id string) (*dto.ResolucionResponse, error) {
	if err := s.authorize(ctx, actor, entity.KindResolucion, entity.ActionRead); err != nil {
		return nil, err
	}
	r, err := s.resoluciones.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, domain.ErrNotFound
	}
	return toResolucionResponse(r), nil
}

// DeleteResolucion elimina una resolución que sigue PENDIENTE.
func (s *Service) DeleteResolucion(ctx context.Context, actor entity.Session, id string, meta entity.RequestMeta) error {
	if err := s.authorize(ctx, actor, entity.KindResolucion, entity.ActionDelete); err != nil {
		return err
	}
	var filePath string
	err := s.tx.RunResoluciones(ctx, func(docs repository.ResolucionRepository, audit repository.AuditLogRepository) error {
		r, err := docs.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if r == nil {
			return domain.ErrNotFound
		}
		if r.Status != entity.StatusPendiente {
			return fmt.Errorf("%w (estado actual: %s)", domain.ErrAlreadyProcessed, r.Status)
		}
		if err := docs.Delete(ctx, id); err != nil {
			return err
		}
		filePath = r.FilePath
		return audit.Create(ctx, deletedAudit(actor, entity.KindResolucion, id, map[string]any{"number": r.Number}, meta, s.now()))
	})
	if err != nil {
		return err
	}
	s.discard(filePath)
	return nil
}

// ─── Historial ───────────────────────────────────────────────────────────────

// History devuelve las entradas de auditoría del documento, de la más antigua a la más reciente.
func (s *Service) History(ctx context.Context, actor entity.Session, kind entity.DocumentKind, id string) ([]dto.AuditLogResponse, error) {
	if _, ok := PolicyFor(kind); !ok {
		return nil, fmt.Errorf("tipo de documento %q: %w", kind, domain.ErrNotFound)
	}
	if err := s.authorize(ctx, actor, kind, entity.ActionRead); err != nil {
		return nil, err
	}
	logs, err := s.audit.ListByEntity(ctx, string(kind), id)
	if err != nil {
		return nil, err
	}
	out := make([]dto.AuditLogResponse, 0, len(logs))
	for _, l := range logs {
		out = append(out, dto.AuditLogResponse{
			ID: l.ID, UserID: l.UserID, Action: l.Action, Metadata: l.Metadata,
			IPAddress: l.IPAddress, CreatedAt: l.CreatedAt,
		})
	}
	return out, nil
}

// ─── helpers ─────────────────────────────────────────────────────────────────

func (s *Service) upload(ctx context.Context, kind entity.DocumentKind, file *dto.FileUpload, now time.Time) (string, error) {
	if file.Size <= 0 {
		return "", domain.NewValidationError("el archivo está vacío")
	}
	if file.Size > MaxUploadBytes {
		return "", domain.NewValidationError("el archivo supera el tamaño máximo de 10 MB")
	}
	if !files.AllowedUploadExt(file.Name) {
		return "", domain.NewValidationError("tipo de archivo no permitido")
	}
	ext := strings.ToLower(path.Ext(file.Name))
	key := fmt.Sprintf("%s/%d/%s%s", kind.StorageFolder(), now.Year(), uuid.New().String(), ext)
	if err := s.store.Save(ctx, key, file.Content, file.Size, files.ContentTypeFor(key)); err != nil {
		return "", fmt.Errorf("guardar archivo: %w", err)
	}
	return key, nil
}

// discard borra un archivo huérfano; un fallo aquí no cambia el resultado de la operación.
func (s *Service) discard(key string) {
	if key == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = s.store.Delete(ctx, key)
}

func toFilter(q dto.DocumentListQuery) (repository.DocumentFilter, error) {
	if err := validate.Struct(&q); err != nil {
		return repository.DocumentFilter{}, domain.NewValidationError(err.Error())
	}
	q.DefaultPage()
	return repository.DocumentFilter{
		Status: entity.DocumentStatus(q.Status),
		Search: strings.TrimSpace(q.Search),
		Limit:  q.Limit,
		Offset: q.Offset,
	}, nil
}

func createdAudit(actor entity.Session, kind entity.DocumentKind, id string, md map[string]any, meta entity.RequestMeta, now time.Time) *entity.AuditLog {
	return &entity.AuditLog{
		ID: uuid.New().String(), UserID: actor.UserID, Action: entity.AuditDocumentCreated,
		EntityType: string(kind), EntityID: id, Metadata: md,
		IPAddress: meta.IPAddress, UserAgent: meta.UserAgent, CreatedAt: now,
	}
}

func deletedAudit(actor entity.Session, kind entity.DocumentKind, id string, md map[string]any, meta entity.RequestMeta, now time.Time) *entity.AuditLog {
	a := createdAudit(actor, kind, id, md, meta, now)
	a.Action = entity.AuditDocumentDeleted
	return a
}

// FileURL ruta pública del archivo de un documento.
func FileURL(key string) string {
	if key == "" {
		return ""
	}
	return "/api/files/" + key
}

func toConstanciaResponse(c *entity.Constancia) *dto.ConstanciaResponse {
	return &dto.ConstanciaResponse{
		ID: c.ID, Code: c.Code, StudentCode: c.StudentCode, StudentDNI: c.StudentDNI,
		StudentName: c.StudentName, Type: c.Type, Purpose: c.Purpose, FileURL: FileURL(c.FilePath),
		Status: string(c.Status), CreatedByID: c.CreatedByID, ApprovedByID: c.ApprovedByID,
		ApprovedAt: c.ApprovedAt, CreatedAt: c.CreatedAt, UpdatedAt: c.UpdatedAt,
	}
}

func toResolucionResponse(r *entity.Resolucion) *dto.ResolucionResponse {
	return &dto.ResolucionResponse{
		ID: r.ID, Number: r.Number, Title: r.Title, Description: r.Description, IssuedAt: r.IssuedAt,
		FileURL: FileURL(r.FilePath), Status: string(r.Status), CreatedByID: r.CreatedByID,
		ApprovedByID: r.ApprovedByID, ApprovedAt: r.ApprovedAt, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}
