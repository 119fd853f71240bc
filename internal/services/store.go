package services

import (
	"context"
	"log"
	"net/http"
	"strings"

	"valkiria-backend-go/internal/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/errgroup"
)

// Store is the data access layer over the attendance schema.
type Store struct {
	DB *sqlx.DB
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{DB: db}
}

const joinedLogsQuery = `
SELECT l.id, to_char(l.date, 'YYYY-MM-DD') AS date,
       l.sede_id, s.name AS sede_name,
       l.modelo_id, m.name AS modelo_name,
       l.plataforma_id, p.name AS plataforma_name,
       l.horas_conexion::float8 AS horas_conexion, l.total_tokens::float8 AS total_tokens
FROM attendance_logs l
LEFT JOIN sedes s ON s.id = l.sede_id
LEFT JOIN modelos m ON m.id = l.modelo_id
LEFT JOIN plataformas p ON p.id = l.plataforma_id
ORDER BY l.date DESC, l.id ASC`

const plainLogsQuery = `
SELECT l.id, to_char(l.date, 'YYYY-MM-DD') AS date, l.sede_id, l.modelo_id, l.plataforma_id,
       l.horas_conexion::float8 AS horas_conexion, l.total_tokens::float8 AS total_tokens
FROM attendance_logs l
ORDER BY l.date DESC, l.id ASC`

// LoadAll reads the three configuration tables and every attendance log.
// Only a failure on sedes is fatal; the other configuration tables degrade to
// empty lists and the joined log read falls back to a plain read whose names
// are resolved from the configuration.
func (s *Store) LoadAll(ctx context.Context) (models.Configuration, []models.AttendanceLog, error) {
	var (
		sedes       []sedeRow
		modelos     []childRow
		plataformas []childRow
		joined      []logRow
		joinErr     error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.DB.SelectContext(gctx, &sedes, `SELECT id, name FROM sedes ORDER BY name ASC`)
	})
	g.Go(func() error {
		if err := s.DB.SelectContext(gctx, &modelos, `SELECT id, name, sede_id FROM modelos ORDER BY name ASC`); err != nil {
			log.Printf("load modelos: %v", err)
			modelos = nil
		}
		return nil
	})
	g.Go(func() error {
		if err := s.DB.SelectContext(gctx, &plataformas, `SELECT id, name, sede_id FROM plataformas ORDER BY name ASC`); err != nil {
			log.Printf("load plataformas: %v", err)
			plataformas = nil
		}
		return nil
	})
	g.Go(func() error {
		joinErr = s.DB.SelectContext(gctx, &joined, joinedLogsQuery)
		return nil
	})
	if err := g.Wait(); err != nil {
		return models.Configuration{}, nil, newFetchError(err, "load sedes")
	}

	cfg := models.Configuration{
		Sedes:       make([]models.Sede, 0, len(sedes)),
		Modelos:     make([]models.Modelo, 0, len(modelos)),
		Plataformas: make([]models.Plataforma, 0, len(plataformas)),
	}
	for _, row := range sedes {
		cfg.Sedes = append(cfg.Sedes, toSede(row))
	}
	for _, row := range modelos {
		cfg.Modelos = append(cfg.Modelos, toModelo(row))
	}
	for _, row := range plataformas {
		cfg.Plataformas = append(cfg.Plataformas, toPlataforma(row))
	}

	if joinErr == nil {
		logs := make([]models.AttendanceLog, 0, len(joined))
		for _, row := range joined {
			logs = append(logs, toAttendanceLog(row))
		}
		return cfg, logs, nil
	}

	log.Printf("load attendance logs with joins: %v; retrying without joins", joinErr)
	plain := []logRow{}
	if err := s.DB.SelectContext(ctx, &plain, plainLogsQuery); err != nil {
		return models.Configuration{}, nil, newFetchError(err, "load attendance logs")
	}
	logs := make([]models.AttendanceLog, 0, len(plain))
	for _, row := range plain {
		logs = append(logs, resolveLogNames(row, cfg))
	}
	return cfg, logs, nil
}

func (s *Store) InsertLog(ctx context.Context, entry models.NewAttendanceLog) error {
	_, err := s.DB.ExecContext(ctx, `
INSERT INTO attendance_logs (id, date, sede_id, modelo_id, plataforma_id, horas_conexion, total_tokens)
VALUES ($1,$2,$3,$4,$5,$6,$7)
`, uuid.NewString(), entry.Date, entry.SedeID, entry.ModeloID, entry.PlataformaID, entry.HorasConexion, entry.TotalTokens)
	if err != nil {
		return newWriteError(err, "save attendance log")
	}
	return nil
}

func (s *Store) DeleteLog(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "attendance_logs", id, "attendance log")
}

// InsertParent adds a sede, modelo or plataforma. sedeID is ignored for sedes.
func (s *Store) InsertParent(ctx context.Context, kind models.ParentKind, name, sedeID string) error {
	if !kind.Valid() {
		return ErrBadRequest("unknown table " + string(kind))
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrBadRequest("name is required")
	}
	var err error
	if kind.NeedsSede() {
		if strings.TrimSpace(sedeID) == "" {
			return ErrBadRequest("sedeId is required")
		}
		_, err = s.DB.ExecContext(ctx, `INSERT INTO `+string(kind)+` (id, name, sede_id) VALUES ($1,$2,$3)`,
			uuid.NewString(), name, sedeID)
	} else {
		_, err = s.DB.ExecContext(ctx, `INSERT INTO sedes (id, name) VALUES ($1,$2)`, uuid.NewString(), name)
	}
	if err != nil {
		return newWriteError(err, "save "+string(kind))
	}
	return nil
}

// DeleteParent removes a configuration row. Deleting a sede cascades to its
// modelos and plataformas; attendance logs keep their history with the
// reference cleared.
func (s *Store) DeleteParent(ctx context.Context, kind models.ParentKind, id string) error {
	if !kind.Valid() {
		return ErrBadRequest("unknown table " + string(kind))
	}
	return s.deleteByID(ctx, string(kind), id, string(kind))
}

func (s *Store) deleteByID(ctx context.Context, table, id, what string) error {
	result, err := s.DB.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = $1`, id)
	if err != nil {
		return newWriteError(err, "delete "+what)
	}
	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		return WriteError{Status: http.StatusNotFound, Message: what + " not found"}
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.DB.Close()
}
