// Package validate envuelve go-playground/validator y traduce la primera violación
// a un mensaje en español apto para devolver al cliente con HTTP 400.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var v *validator.Validate

func init() {
	v = validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
}

var messages = map[string]string{
	"required":         "el campo '%s' es obligatorio",
	"required_without": "el campo '%s' es obligatorio si no se envía '%s'",
	"excluded_with":    "el campo '%s' no puede enviarse junto con '%s'",
	"email":            "el campo '%s' debe ser un correo válido",
	"min":              "el campo '%s' debe tener al menos %s caracteres o elementos",
	"max":              "el campo '%s' no puede superar %s caracteres o elementos",
	"len":              "el campo '%s' debe tener exactamente %s caracteres",
	"oneof":            "el campo '%s' debe ser uno de: %s",
	"numeric":          "el campo '%s' debe contener solo dígitos",
	"alphanum":         "el campo '%s' debe ser alfanumérico",
	"uuid":             "el campo '%s' debe ser un UUID válido",
	"gt":               "el campo '%s' debe ser mayor que %s",
	"gte":              "el campo '%s' debe ser mayor o igual que %s",
}

// Struct valida s y devuelve un error con el mensaje de la primera violación, o nil.
func Struct(s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	return errors.New(message(verrs[0]))
}

// Var valida un valor suelto con las reglas indicadas; field se usa en el mensaje.
func Var(field string, value any, tag string) error {
	err := v.Var(value, tag)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	tmpl, ok := messages[fe.Tag()]
	if !ok {
		return fmt.Errorf("el campo '%s' no es válido", field)
	}
	if strings.Count(tmpl, "%s") == 2 {
		return fmt.Errorf(tmpl, field, fe.Param())
	}
	return fmt.Errorf(tmpl, field)
}

func message(fe validator.FieldError) string {
	field := fe.Namespace()
	// Namespace incluye el nombre del struct raíz: "LoginRequest.email" → "email".
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}
	tmpl, ok := messages[fe.Tag()]
	if !ok {
		return fmt.Sprintf("el campo '%s' no es válido (%s)", field, fe.Tag())
	}
	if strings.Count(tmpl, "%s") == 2 {
		return fmt.Sprintf(tmpl, field, fe.Param())
	}
	return fmt.Sprintf(tmpl, field)
}
