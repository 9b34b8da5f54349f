package entity

// Session es la sesión resuelta de la petición en curso. Se pasa explícitamente a los
// casos de uso; no existe estado global de sesión.
type Session struct {
	UserID string
	Email  string
	Name   string
	Role   Role
}

// IsSuperuser atajo sobre el rol de la sesión.
func (s Session) IsSuperuser() bool {
	return IsSuperuser(s.Role)
}
