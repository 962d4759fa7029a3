package http

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// validateStruct corre las reglas declaradas en los tags `validate` del DTO
// y devuelve un mensaje legible con los campos rechazados, o "" si pasa.
func validateStruct(in any) string {
	err := validate.Struct(in)
	if err == nil {
		return ""
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, strings.ToLower(fe.Field())+" ("+fe.Tag()+")")
		}
		return "campos inválidos: " + strings.Join(fields, ", ")
	}
	return err.Error()
}
