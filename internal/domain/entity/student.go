package entity

// Student registro normalizado del padrón institucional de estudiantes.
type Student struct {
	Code            string `json:"code"`
	DNI             string `json:"dni"`
	Names           string `json:"names"`
	PaternalSurname string `json:"paternal_surname"`
	MaternalSurname string `json:"maternal_surname"`
	FullName        string `json:"full_name"`
	Faculty         string `json:"faculty,omitempty"`
	Program         string `json:"program,omitempty"`
	Email           string `json:"email,omitempty"`
	Status          string `json:"status,omitempty"`
}
