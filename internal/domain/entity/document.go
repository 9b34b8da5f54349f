package entity

import "time"

// DocumentStatus estado del flujo de aprobación.
type DocumentStatus string

const (
	StatusPendiente DocumentStatus = "PENDIENTE"
	StatusAprobado  DocumentStatus = "APROBADO"
	StatusRechazado DocumentStatus = "RECHAZADO"
)

// Valid informa si el estado es conocido.
func (s DocumentStatus) Valid() bool {
	return s == StatusPendiente || s == StatusAprobado || s == StatusRechazado
}

// DocumentKind tipo de documento sujeto al flujo.
type DocumentKind string

const (
	KindConstancia DocumentKind = "constancia"
	KindResolucion DocumentKind = "resolucion"
)

// PermissionCode código de permiso del dominio del documento.
func (k DocumentKind) PermissionCode() string {
	if k == KindResolucion {
		return PermResoluciones
	}
	return PermConstancias
}

// StorageFolder primer segmento de la ruta de archivos del tipo.
func (k DocumentKind) StorageFolder() string {
	if k == KindResolucion {
		return "resoluciones"
	}
	return "constancias"
}

// DocumentState vista mínima de un documento para las transiciones de estado.
type DocumentState struct {
	ID           string
	Kind         DocumentKind
	Status       DocumentStatus
	CreatedByID  string
	ApprovedByID *string
	ApprovedAt   *time.Time
}

// Constancia constancia académica emitida a un estudiante.
type Constancia struct {
	ID           string
	Code         string
	StudentCode  string
	StudentDNI   string
	StudentName  string
	Type         string // estudios, matrícula, egresado, ...
	Purpose      string
	FilePath     string
	Status       DocumentStatus
	CreatedByID  string
	ApprovedByID *string
	ApprovedAt   *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Resolucion resolución administrativa.
type Resolucion struct {
	ID           string
	Number       string
	Title        string
	Description  string
	IssuedAt     time.Time
	FilePath     string
	Status       DocumentStatus
	CreatedByID  string
	ApprovedByID *string
	ApprovedAt   *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
