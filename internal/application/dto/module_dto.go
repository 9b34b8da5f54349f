package dto

// ModuleResponse módulo con sus submódulos visibles.
type ModuleResponse struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Slug        string              `json:"slug"`
	Description string              `json:"description,omitempty"`
	Icon        string              `json:"icon"`
	Order       int                 `json:"order"`
	IsActive    bool                `json:"isActive"`
	Submodules  []SubmoduleResponse `json:"submodules"`
}

// SubmoduleResponse submódulo.
type SubmoduleResponse struct {
	ID       string `json:"id"`
	ModuleID string `json:"moduleId"`
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	Icon     string `json:"icon"`
	Route    string `json:"route"`
	Order    int    `json:"order"`
	IsActive bool   `json:"isActive"`
}

// CreateModuleRequest alta o edición de un módulo.
type CreateModuleRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Slug        string `json:"slug" validate:"omitempty,max=100"`
	Description string `json:"description" validate:"max=500"`
	Icon        string `json:"icon" validate:"max=50"`
	Order       int    `json:"order" validate:"gte=0"`
	IsActive    *bool  `json:"isActive"`
}

// CreateSubmoduleRequest alta de un submódulo.
type CreateSubmoduleRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Slug     string `json:"slug" validate:"omitempty,max=100"`
	Icon     string `json:"icon" validate:"max=50"`
	Route    string `json:"route" validate:"required,max=200"`
	Order    int    `json:"order" validate:"gte=0"`
	IsActive *bool  `json:"isActive"`
}
