// Package document implementa el flujo de aprobación de constancias y resoluciones
// y su administración (alta, listado, baja, PDF e historial).
package document

import (
	"slices"

	"github.com/jhoicas/portal-unamad/internal/domain/entity"
)

// Policy reglas de transición de un tipo de documento.
//
// Constancia y Resolucion no comparten la regla de rechazo: una resolución aprobada
// puede rechazarse después (y pierde los datos de aprobación); una constancia solo se
// rechaza mientras está pendiente.
type Policy struct {
	Kind                 entity.DocumentKind
	ApproveFrom          []entity.DocumentStatus
	RejectFrom           []entity.DocumentStatus
	RejectClearsApproval bool
}

var policies = map[entity.DocumentKind]Policy{
	entity.KindConstancia: {
		Kind:        entity.KindConstancia,
		ApproveFrom: []entity.DocumentStatus{entity.StatusPendiente},
		RejectFrom:  []entity.DocumentStatus{entity.StatusPendiente},
	},
	entity.KindResolucion: {
		Kind:                 entity.KindResolucion,
		ApproveFrom:          []entity.DocumentStatus{entity.StatusPendiente},
		RejectFrom:           []entity.DocumentStatus{entity.StatusPendiente, entity.StatusAprobado},
		RejectClearsApproval: true,
	},
}

// PolicyFor devuelve la política del tipo; ok=false si el tipo no existe.
func PolicyFor(kind entity.DocumentKind) (Policy, bool) {
	p, ok := policies[kind]
	return p, ok
}

// CanApprove informa si un documento en status puede aprobarse.
func (p Policy) CanApprove(status entity.DocumentStatus) bool {
	return slices.Contains(p.ApproveFrom, status)
}

// CanReject informa si un documento en status puede rechazarse.
func (p Policy) CanReject(status entity.DocumentStatus) bool {
	return slices.Contains(p.RejectFrom, status)
}
