package services

import (
	"database/sql"
	"math"
	"testing"

	"valkiria-backend-go/internal/models"
)

func TestNumberOrZero(t *testing.T) {
	cases := []struct {
		in   sql.NullFloat64
		want float64
	}{
		{sql.NullFloat64{}, 0},
		{sql.NullFloat64{Float64: 2.5, Valid: true}, 2.5},
		{sql.NullFloat64{Float64: math.NaN(), Valid: true}, 0},
		{sql.NullFloat64{Float64: math.Inf(1), Valid: true}, 0},
		{sql.NullFloat64{Float64: -3, Valid: true}, 0},
	}
	for _, tc := range cases {
		if got := NumberOrZero(tc.in); got != tc.want {
			t.Errorf("NumberOrZero(%+v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestToAttendanceLogPlaceholders(t *testing.T) {
	row := logRow{
		ID:       "l1",
		Date:     sql.NullString{String: "2024-01-15", Valid: true},
		SedeID:   sql.NullString{String: "s1", Valid: true},
		SedeName: sql.NullString{String: "North", Valid: true},
	}
	got := toAttendanceLog(row)
	if got.SedeName != "North" {
		t.Errorf("sede name = %q", got.SedeName)
	}
	if got.ModeloID != "" || got.ModeloName != models.MissingName || got.PlataformaName != models.MissingName {
		t.Errorf("expected placeholders for cleared references: %+v", got)
	}
}

func TestResolveLogNames(t *testing.T) {
	cfg := models.Configuration{
		Sedes:       []models.Sede{{ID: "s1", Name: "North"}},
		Modelos:     []models.Modelo{{ID: "m1", Name: "Ana", SedeID: "s1"}},
		Plataformas: []models.Plataforma{{ID: "p1", Name: "Web", SedeID: "s1"}},
	}
	row := logRow{
		ID:           "l1",
		SedeID:       sql.NullString{String: "s1", Valid: true},
		ModeloID:     sql.NullString{String: "m2", Valid: true},
		PlataformaID: sql.NullString{String: "p1", Valid: true},
	}
	got := resolveLogNames(row, cfg)
	if got.SedeName != "North" || got.PlataformaName != "Web" || got.ModeloName != models.MissingName {
		t.Errorf("unexpected names: %+v", got)
	}
}
