package entry

import (
	"strings"

	"valkiria-backend-go/internal/models"
)

// ParentForm adds a sede, or a modelo/plataforma under SedeID.
type ParentForm struct {
	Name   string `json:"name" validate:"required"`
	SedeID string `json:"sedeId"`
}

func (f *ParentForm) Validate(kind models.ParentKind) error {
	f.Name = strings.TrimSpace(f.Name)
	f.SedeID = strings.TrimSpace(f.SedeID)
	if err := Struct(f); err != nil {
		return err
	}
	if kind.NeedsSede() && f.SedeID == "" {
		return ValidationError{Fields: map[string]string{"sedeId": "required"}}
	}
	return nil
}
