package dto

// ConsultByDNIRequest POST /api/student/consult.
type ConsultByDNIRequest struct {
	DNI string `json:"dni" validate:"required,len=8,numeric"`
}

// ConsultByCodeRequest POST /api/student/consult-by-code.
type ConsultByCodeRequest struct {
	Code string `json:"code" validate:"required,alphanum,max=20"`
}
