// Package entry holds the attendance entry form: the sede-driven cascade of
// modelo and plataforma choices, and the checks a submission must pass
// before anything is sent to the database.
package entry

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"valkiria-backend-go/internal/models"
)

// Field is a form value that may arrive as a JSON string or number.
type Field string

func (f *Field) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = Field(s)
		return nil
	}
	*f = Field(data)
	return nil
}

type Form struct {
	Date          string `json:"date" validate:"required,datetime=2006-01-02"`
	SedeID        string `json:"sedeId" validate:"required"`
	ModeloID      string `json:"modeloId" validate:"required"`
	PlataformaID  string `json:"plataformaId" validate:"required"`
	HorasConexion Field  `json:"horasConexion"`
	TotalTokens   Field  `json:"totalTokens"`
}

// Validate trims the form and checks the required fields. Numbers are never
// rejected; NewLog coerces them.
func (f *Form) Validate() error {
	f.Date = strings.TrimSpace(f.Date)
	f.SedeID = strings.TrimSpace(f.SedeID)
	f.ModeloID = strings.TrimSpace(f.ModeloID)
	f.PlataformaID = strings.TrimSpace(f.PlataformaID)
	return Struct(f)
}

// Selection replays the form's choices through the cascade, sede first.
func (f Form) Selection() Selection {
	var sel Selection
	sel.SelectSede(f.SedeID)
	sel.SelectModelo(f.ModeloID)
	sel.SelectPlataforma(f.PlataformaID)
	return sel
}

// CheckAgainst validates the form, then rejects choices outside the
// selected sede in cfg.
func (f *Form) CheckAgainst(cfg models.Configuration) error {
	if err := f.Validate(); err != nil {
		return err
	}
	return f.Selection().Check(cfg)
}

// NewLog converts a validated form. Blank or non-numeric hours and tokens
// become 0; tokens are truncated to whole units.
func (f Form) NewLog() models.NewAttendanceLog {
	return models.NewAttendanceLog{
		Date:          f.Date,
		SedeID:        f.SedeID,
		ModeloID:      f.ModeloID,
		PlataformaID:  f.PlataformaID,
		HorasConexion: ParseNumberOrZero(string(f.HorasConexion)),
		TotalTokens:   int64(math.Trunc(ParseNumberOrZero(string(f.TotalTokens)))),
	}
}

func ParseNumberOrZero(raw string) float64 {
	parsed, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) || parsed < 0 {
		return 0
	}
	return parsed
}

// Selection is the sede/modelo/plataforma choice of the entry form.
type Selection struct {
	SedeID       string `json:"sedeId"`
	ModeloID     string `json:"modeloId"`
	PlataformaID string `json:"plataformaId"`
}

// SelectSede changes the sede. Any change clears the dependent choices.
func (s *Selection) SelectSede(id string) {
	if s.SedeID == id {
		return
	}
	s.SedeID = id
	s.ModeloID = ""
	s.PlataformaID = ""
}

func (s *Selection) SelectModelo(id string) {
	s.ModeloID = id
}

func (s *Selection) SelectPlataforma(id string) {
	s.PlataformaID = id
}

// Check reports choices that are not offered for the selected sede. Fields
// map to "exists" for an unknown sede and "sede" for a modelo or plataforma
// that belongs to another sede.
func (s Selection) Check(cfg models.Configuration) error {
	fields := map[string]string{}
	if _, ok := cfg.SedeName(s.SedeID); !ok {
		fields["sedeId"] = "exists"
	}
	if s.ModeloID != "" && !containsModelo(ModelosFor(cfg, s.SedeID), s.ModeloID) {
		fields["modeloId"] = "sede"
	}
	if s.PlataformaID != "" && !containsPlataforma(PlataformasFor(cfg, s.SedeID), s.PlataformaID) {
		fields["plataformaId"] = "sede"
	}
	if len(fields) > 0 {
		return ValidationError{Fields: fields}
	}
	return nil
}

func containsModelo(items []models.Modelo, id string) bool {
	for _, item := range items {
		if item.ID == id {
			return true
		}
	}
	return false
}

func containsPlataforma(items []models.Plataforma, id string) bool {
	for _, item := range items {
		if item.ID == id {
			return true
		}
	}
	return false
}

// Options are the choices offered for the current sede.
type Options struct {
	Sedes       []models.Sede       `json:"sedes"`
	Modelos     []models.Modelo     `json:"modelos"`
	Plataformas []models.Plataforma `json:"plataformas"`
}

func (s Selection) Options(cfg models.Configuration) Options {
	sedes := cfg.Sedes
	if sedes == nil {
		sedes = []models.Sede{}
	}
	return Options{
		Sedes:       sedes,
		Modelos:     ModelosFor(cfg, s.SedeID),
		Plataformas: PlataformasFor(cfg, s.SedeID),
	}
}

// ModelosFor returns the modelos of sedeID. No sede means no choices.
func ModelosFor(cfg models.Configuration, sedeID string) []models.Modelo {
	items := []models.Modelo{}
	if sedeID == "" {
		return items
	}
	for _, modelo := range cfg.Modelos {
		if modelo.SedeID == sedeID {
			items = append(items, modelo)
		}
	}
	return items
}

func PlataformasFor(cfg models.Configuration, sedeID string) []models.Plataforma {
	items := []models.Plataforma{}
	if sedeID == "" {
		return items
	}
	for _, plataforma := range cfg.Plataformas {
		if plataforma.SedeID == sedeID {
			items = append(items, plataforma)
		}
	}
	return items
}
