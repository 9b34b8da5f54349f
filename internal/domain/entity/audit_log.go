package entity

import "time"

// Etiquetas de acción del registro de auditoría.
const (
	AuditDocumentApproved    = "DOCUMENT_APPROVED"
	AuditDocumentRejected    = "DOCUMENT_REJECTED"
	AuditDocumentCreated     = "DOCUMENT_CREATED"
	AuditDocumentDeleted     = "DOCUMENT_DELETED"
	AuditPermissionsAssigned = "PERMISSIONS_ASSIGNED"
	AuditPasswordChanged     = "PASSWORD_CHANGED"
	AuditPasswordReset       = "PASSWORD_RESET"
	AuditUserUpdated         = "USER_UPDATED"
)

// AuditLog fila de auditoría: actor, acción, entidad y metadatos de la petición.
type AuditLog struct {
	ID         string
	UserID     string
	Action     string
	EntityType string
	EntityID   string
	Metadata   map[string]any
	IPAddress  string
	UserAgent  string
	CreatedAt  time.Time
}

// RequestMeta datos de la petición HTTP que se copian a la auditoría.
type RequestMeta struct {
	IPAddress string
	UserAgent string
}
