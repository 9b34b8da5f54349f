package usecase

import (
	"context"
	"strings"

	"github.com/jhoicas/portal-unamad/internal/application/dto"
	"github.com/jhoicas/portal-unamad/internal/application/ports"
	"github.com/jhoicas/portal-unamad/internal/domain"
	"github.com/jhoicas/portal-unamad/internal/domain/entity"
	"github.com/jhoicas/portal-unamad/pkg/validate"
)

// StudentUseCase consulta el padrón institucional de estudiantes.
type StudentUseCase struct {
	registry ports.StudentRegistry
}

// NewStudentUseCase construye el caso de uso con el cliente del padrón.
func NewStudentUseCase(registry ports.StudentRegistry) *StudentUseCase {
	return &StudentUseCase{registry: registry}
}

// ByDNI busca un estudiante por DNI (8 dígitos).
func (uc *StudentUseCase) ByDNI(ctx context.Context, dni string) (*entity.Student, error) {
	in := dto.ConsultByDNIRequest{DNI: strings.TrimSpace(dni)}
	if err := validate.Struct(&in); err != nil {
		return nil, domain.NewValidationError(err.Error())
	}
	return uc.registry.ByDNI(ctx, in.DNI)
}

// ByCode busca un estudiante por código universitario.
func (uc *StudentUseCase) ByCode(ctx context.Context, code string) (*entity.Student, error) {
	in := dto.ConsultByCodeRequest{Code: strings.ToUpper(strings.TrimSpace(code))}
	if err := validate.Struct(&in); err != nil {
		return nil, domain.NewValidationError(err.Error())
	}
	return uc.registry.ByCode(ctx, in.Code)
}
