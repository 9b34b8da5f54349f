package entity

import "time"

// Module unidad de navegación y de alcance de permisos.
type Module struct {
	ID          string
	Name        string
	Slug        string
	Description string
	Icon        string
	Order       int
	IsActive    bool
	Submodules  []Submodule
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Submodule pertenece a exactamente un Module.
type Submodule struct {
	ID        string
	ModuleID  string
	Name      string
	Slug      string
	Icon      string
	Route     string
	Order     int
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
