package mail

import (
	"fmt"
	"html"
)

const signature = `<p>Atentamente,<br>Portal Administrativo UNAMAD</p>`

func verificationTemplate(name, link string) string {
	return fmt.Sprintf(`
		<html>
		<body>
			<h2>Verifica tu correo</h2>
			<p>Hola %s,</p>
			<p>Tu cuenta en el portal administrativo fue creada. Para activarla confirma tu correo:</p>
			<p><a href="%s">Verificar correo</a></p>
			<p>El enlace vence en 24 horas. Si no solicitaste esta cuenta, ignora este mensaje.</p>
			%s
		</body>
		</html>
		`, html.EscapeString(name), html.EscapeString(link), signature)
}

func welcomeTemplate(name string) string {
	return fmt.Sprintf(`
		<html>
		<body>
			<h2>¡Bienvenido!</h2>
			<p>Hola %s,</p>
			<p>Tu correo fue verificado. Ya puedes iniciar sesión en el portal.</p>
			%s
		</body>
		</html>
		`, html.EscapeString(name), signature)
}

func passwordResetTemplate(name, link string) string {
	return fmt.Sprintf(`
		<html>
		<body>
			<h2>Restablecer contraseña</h2>
			<p>Hola %s,</p>
			<p>Recibimos una solicitud para restablecer tu contraseña. Usa el siguiente enlace:</p>
			<p><a href="%s">Restablecer contraseña</a></p>
			<p>El enlace vence en 1 hora. Si no fuiste tú, ignora este mensaje.</p>
			%s
		</body>
		</html>
		`, html.EscapeString(name), html.EscapeString(link), signature)
}
