// Package navigation resuelve los identificadores de ícono configurados en módulos y
// submódulos a un conjunto cerrado de íconos conocidos por el frontend.
package navigation

import "strings"

// Icon identificador canónico de ícono.
type Icon string

const (
	IconDefault    Icon = "circle"
	IconDashboard  Icon = "layout-dashboard"
	IconUsers      Icon = "users"
	IconUser       Icon = "user"
	IconShield     Icon = "shield"
	IconKey        Icon = "key"
	IconFileText   Icon = "file-text"
	IconFileCheck  Icon = "file-check"
	IconFileSigned Icon = "file-signature"
	IconFolder     Icon = "folder"
	IconGraduation Icon = "graduation-cap"
	IconBook       Icon = "book-open"
	IconSettings   Icon = "settings"
	IconSearch     Icon = "search"
	IconBuilding   Icon = "building"
	IconChart      Icon = "bar-chart"
	IconCalendar   Icon = "calendar"
	IconMail       Icon = "mail"
	IconArchive    Icon = "archive"
	IconClipboard  Icon = "clipboard-list"
)

// icons incluye alias en PascalCase (nombres de lucide-react) y en español.
var icons = map[string]Icon{}

func init() {
	register(IconDashboard, "layoutdashboard", "dashboard", "home", "inicio")
	register(IconUsers, "users", "usuarios")
	register(IconUser, "user", "usercircle", "perfil")
	register(IconShield, "shield", "shieldcheck", "roles", "permisos")
	register(IconKey, "key", "keyround", "lock")
	register(IconFileText, "filetext", "file", "documentos")
	register(IconFileCheck, "filecheck", "filecheck2", "constancias")
	register(IconFileSigned, "filesignature", "resoluciones", "stamp")
	register(IconFolder, "folder", "folderopen")
	register(IconGraduation, "graduationcap", "estudiantes", "academico")
	register(IconBook, "bookopen", "book")
	register(IconSettings, "settings", "cog", "configuracion")
	register(IconSearch, "search", "consulta")
	register(IconBuilding, "building", "building2", "facultades")
	register(IconChart, "barchart", "barchart3", "chart", "reportes")
	register(IconCalendar, "calendar", "calendardays")
	register(IconMail, "mail", "correo")
	register(IconArchive, "archive", "archivo")
	register(IconClipboard, "clipboardlist", "clipboard", "tramites")
}

func register(icon Icon, aliases ...string) {
	icons[normalize(string(icon))] = icon
	for _, a := range aliases {
		icons[normalize(a)] = icon
	}
}

// normalize: "FileText", "file-text", "file_text" y "file text" son la misma clave.
func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("-", "", "_", "", " ", "").Replace(s)
}

// ResolveIcon devuelve el ícono conocido para name, o IconDefault.
func ResolveIcon(name string) Icon {
	if icon, ok := icons[normalize(name)]; ok {
		return icon
	}
	return IconDefault
}

// IsKnown informa si name resuelve a un ícono distinto del de respaldo.
func IsKnown(name string) bool {
	_, ok := icons[normalize(name)]
	return ok
}
