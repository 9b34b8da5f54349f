package dto

import (
	"io"
	"time"
)

// CreateConstanciaRequest campos del formulario multipart de alta de constancia.
type CreateConstanciaRequest struct {
	StudentCode string `json:"studentCode" form:"studentCode" validate:"required,alphanum,max=20"`
	StudentDNI  string `json:"studentDni" form:"studentDni" validate:"required,len=8,numeric"`
	StudentName string `json:"studentName" form:"studentName" validate:"required,max=200"`
	Type        string `json:"type" form:"type" validate:"required,oneof=ESTUDIOS MATRICULA EGRESADO CONDUCTA ORDEN_MERITO"`
	Purpose     string `json:"purpose" form:"purpose" validate:"max=500"`
}

// CreateResolucionRequest campos del formulario multipart de alta de resolución.
type CreateResolucionRequest struct {
	Number      string    `json:"number" form:"number" validate:"required,max=50"`
	Title       string    `json:"title" form:"title" validate:"required,max=300"`
	Description string    `json:"description" form:"description" validate:"max=2000"`
	IssuedAt    time.Time `json:"issuedAt" form:"issuedAt" validate:"required"`
}

// FileUpload archivo adjunto recibido en el formulario.
type FileUpload struct {
	Name    string
	Size    int64
	Content io.Reader
}

// DocumentListQuery filtros de listado.
type DocumentListQuery struct {
	Status string `query:"status" validate:"omitempty,oneof=PENDIENTE APROBADO RECHAZADO"`
	Search string `query:"search" validate:"max=100"`
	PageRequest
}

// ConstanciaResponse constancia.
type ConstanciaResponse struct {
	ID           string     `json:"id"`
	Code         string     `json:"code"`
	StudentCode  string     `json:"studentCode"`
	StudentDNI   string     `json:"studentDni"`
	StudentName  string     `json:"studentName"`
	Type         string     `json:"type"`
	Purpose      string     `json:"purpose,omitempty"`
	FileURL      string     `json:"fileUrl,omitempty"`
	Status       string     `json:"status"`
	CreatedByID  string     `json:"createdById"`
	ApprovedByID *string    `json:"approvedById"`
	ApprovedAt   *time.Time `json:"approvedAt"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// ResolucionResponse resolución.
type ResolucionResponse struct {
	ID           string     `json:"id"`
	Number       string     `json:"number"`
	Title        string     `json:"title"`
	Description  string     `json:"description,omitempty"`
	IssuedAt     time.Time  `json:"issuedAt"`
	FileURL      string     `json:"fileUrl,omitempty"`
	Status       string     `json:"status"`
	CreatedByID  string     `json:"createdById"`
	ApprovedByID *string    `json:"approvedById"`
	ApprovedAt   *time.Time `json:"approvedAt"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// ConstanciaListResponse listado paginado.
type ConstanciaListResponse struct {
	Items []ConstanciaResponse `json:"items"`
	Page  PageResponse         `json:"page"`
}

// ResolucionListResponse listado paginado.
type ResolucionListResponse struct {
	Items []ResolucionResponse `json:"items"`
	Page  PageResponse         `json:"page"`
}

// TransitionResponse resultado de aprobar o rechazar.
type TransitionResponse struct {
	ID           string     `json:"id"`
	Kind         string     `json:"kind"`
	Status       string     `json:"status"`
	ApprovedByID *string    `json:"approvedById"`
	ApprovedAt   *time.Time `json:"approvedAt"`
	Message      string     `json:"message"`
}

// AuditLogResponse entrada del historial de un documento.
type AuditLogResponse struct {
	ID        string         `json:"id"`
	UserID    string         `json:"userId"`
	Action    string         `json:"action"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	IPAddress string         `json:"ipAddress,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

// RejectRequest cuerpo opcional de un rechazo.
type RejectRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}
