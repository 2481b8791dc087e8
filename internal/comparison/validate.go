package comparison

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"

	"agora/internal/services"
)

const tagHistoria = "historia"

// Request is one bulk comparison submission.
type Request struct {
	ProgramaID int      `validate:"gt=0"`
	Files      []string `validate:"required,min=1,dive,required,historia"`
}

func newValidator(allowed []string) *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation(tagHistoria, func(fl validator.FieldLevel) bool {
		ext := strings.ToLower(filepath.Ext(fl.Field().String()))
		return slices.Contains(allowed, ext)
	})
	return v
}

// Validate checks a submission without touching the network: a positive
// program id, between one and max_files transcripts, a whitelisted extension
// on each, and every file present on disk.
func (s *Service) Validate(req Request) error {
	if len(req.Files) > s.maxFiles {
		return services.Wrap(services.ErrValidation, "comparison", "validate",
			fmt.Sprintf("Máximo %d archivos permitidos (seleccionados: %d)", s.maxFiles, len(req.Files)), nil)
	}
	if err := s.validate.Struct(req); err != nil {
		return services.Wrap(services.ErrValidation, "comparison", "validate", s.describe(err), nil)
	}
	for _, path := range req.Files {
		info, err := os.Stat(path)
		if err != nil {
			return services.Wrap(services.ErrValidation, "comparison", "validate",
				fmt.Sprintf("No se puede leer %s", path), err)
		}
		if info.IsDir() {
			return services.Wrap(services.ErrValidation, "comparison", "validate",
				fmt.Sprintf("%s es un directorio", path), nil)
		}
	}
	return nil
}

func (s *Service) describe(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err.Error()
	}
	fe := fieldErrs[0]
	switch {
	case fe.Field() == "ProgramaID":
		return "Seleccione un programa válido"
	case fe.Tag() == tagHistoria:
		return fmt.Sprintf("Formato no permitido: %v (permitidos: %s)", fe.Value(), strings.Join(s.allowed, ", "))
	case fe.Field() == "Files":
		return "Seleccione al menos un archivo"
	default:
		return fmt.Sprintf("Archivo inválido en %s", fe.Namespace())
	}
}
