package services

import (
	"database/sql"
	"math"
	"strings"

	"valkiria-backend-go/internal/models"
)

type sedeRow struct {
	ID   string         `db:"id"`
	Name sql.NullString `db:"name"`
}

type childRow struct {
	ID     string         `db:"id"`
	Name   sql.NullString `db:"name"`
	SedeID sql.NullString `db:"sede_id"`
}

type logRow struct {
	ID             string          `db:"id"`
	Date           sql.NullString  `db:"date"`
	SedeID         sql.NullString  `db:"sede_id"`
	SedeName       sql.NullString  `db:"sede_name"`
	ModeloID       sql.NullString  `db:"modelo_id"`
	ModeloName     sql.NullString  `db:"modelo_name"`
	PlataformaID   sql.NullString  `db:"plataforma_id"`
	PlataformaName sql.NullString  `db:"plataforma_name"`
	HorasConexion  sql.NullFloat64 `db:"horas_conexion"`
	TotalTokens    sql.NullFloat64 `db:"total_tokens"`
}

func toSede(row sedeRow) models.Sede {
	return models.Sede{ID: row.ID, Name: row.Name.String}
}

func toModelo(row childRow) models.Modelo {
	return models.Modelo{ID: row.ID, Name: row.Name.String, SedeID: row.SedeID.String}
}

func toPlataforma(row childRow) models.Plataforma {
	return models.Plataforma{ID: row.ID, Name: row.Name.String, SedeID: row.SedeID.String}
}

func toAttendanceLog(row logRow) models.AttendanceLog {
	return models.AttendanceLog{
		ID:             row.ID,
		Date:           row.Date.String,
		SedeID:         row.SedeID.String,
		SedeName:       nameOrMissing(row.SedeName),
		ModeloID:       row.ModeloID.String,
		ModeloName:     nameOrMissing(row.ModeloName),
		PlataformaID:   row.PlataformaID.String,
		PlataformaName: nameOrMissing(row.PlataformaName),
		HorasConexion:  NumberOrZero(row.HorasConexion),
		TotalTokens:    int64(math.Round(NumberOrZero(row.TotalTokens))),
	}
}

// resolveLogNames maps a log read without joins, taking names from cfg.
func resolveLogNames(row logRow, cfg models.Configuration) models.AttendanceLog {
	item := toAttendanceLog(row)
	item.SedeName = lookupOrMissing(cfg.SedeName(item.SedeID))
	item.ModeloName = lookupOrMissing(cfg.ModeloName(item.ModeloID))
	item.PlataformaName = lookupOrMissing(cfg.PlataformaName(item.PlataformaID))
	return item
}

func nameOrMissing(value sql.NullString) string {
	if !value.Valid || strings.TrimSpace(value.String) == "" {
		return models.MissingName
	}
	return value.String
}

func lookupOrMissing(name string, ok bool) string {
	if !ok || strings.TrimSpace(name) == "" {
		return models.MissingName
	}
	return name
}

// NumberOrZero turns null, NaN, infinite and negative readings into 0.
func NumberOrZero(value sql.NullFloat64) float64 {
	if !value.Valid {
		return 0
	}
	return finiteOrZero(value.Float64)
}

func finiteOrZero(value float64) float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
		return 0
	}
	return value
}
