package http

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ValidationError lista de campos inválidos de un cuerpo de petición.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "datos inválidos: " + strings.Join(e.Fields, "; ")
}

// RequestValidator valida DTOs con las etiquetas `validate`; los campos se reportan con su nombre JSON.
type RequestValidator struct {
	v *validator.Validate
}

// NewRequestValidator construye el validador de los handlers.
func NewRequestValidator() *RequestValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return &RequestValidator{v: v}
}

// Struct valida in y devuelve *ValidationError con un mensaje por campo.
func (rv *RequestValidator) Struct(in any) error {
	err := rv.v.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, describe(fe))
	}
	return &ValidationError{Fields: fields}
}

func describe(fe validator.FieldError) string {
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s es requerido", field)
	case "gt":
		return fmt.Sprintf("%s debe ser > %s", field, fe.Param())
	case "gte", "min":
		return fmt.Sprintf("%s debe ser >= %s", field, fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s debe ser <= %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s debe ser uno de [%s]", field, fe.Param())
	default:
		return fmt.Sprintf("%s no cumple %s", field, fe.Tag())
	}
}

// bind parsea el cuerpo JSON en dst y lo valida.
func (rv *RequestValidator) bind(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return &ValidationError{Fields: []string{"cuerpo JSON inválido"}}
	}
	return rv.Struct(dst)
}
