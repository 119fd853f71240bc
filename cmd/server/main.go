package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"valkiria-backend-go/internal/config"
	"valkiria-backend-go/internal/db"
	httpapi "valkiria-backend-go/internal/http"
	"valkiria-backend-go/internal/migrations"
	"valkiria-backend-go/internal/services"
	"valkiria-backend-go/internal/state"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		var missing config.MissingError
		if errors.As(err, &missing) {
			log.Fatalf("configuration: %v (set it or enable ALLOW_MANUAL_CONNECT)", err)
		}
		log.Fatalf("configuration: %v", err)
	}

	cleanupLogs, err := setupLogger(cfg.LogDir, cfg.LogRetentionDays)
	if err != nil {
		log.Printf("logger setup failed: %v", err)
	} else {
		defer cleanupLogs()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	connect := func(ctx context.Context, databaseURL string) (state.DataSource, error) {
		database, err := db.Open(ctx, databaseURL)
		if err != nil {
			return nil, services.WrapError(err, "db")
		}
		applied, err := migrations.Apply(ctx, database, cfg.MigrationsDir)
		if err != nil {
			_ = database.Close()
			return nil, services.WrapError(err, "migrations")
		}
		if applied > 0 {
			log.Printf("applied %d migration(s)", applied)
		}
		return services.NewStore(database), nil
	}

	hub := services.NewSnapshotHub()
	go hub.Run(ctx)

	container := state.New(nil)
	container.Subscribe(httpapi.PublishTo(hub))
	if cfg.DatabaseURL != "" {
		source, err := connect(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("%v", err)
		}
		if err := container.Connect(ctx, source); err != nil {
			log.Printf("initial load: %v", err)
		}
	} else {
		log.Printf("no DATABASE_URL set, waiting for a manual connection")
	}

	server := httpapi.NewServer(cfg, container, hub, connect)
	addr := ":" + cfg.Port
	httpServer := &http.Server{
		Addr:    addr,
		Handler: server.Router(),
	}

	go func() {
		log.Printf("listening on %s", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGTERM, syscall.SIGINT)
	<-stop
	cancel()
	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	_ = httpServer.Shutdown(ctxShutdown)
	if err := container.Close(); err != nil {
		log.Printf("close data source: %v", err)
	}
	log.Printf("shutdown complete")
}

// setupLogger mirrors the standard logger into a daily file under logDir and
// prunes files older than retentionDays.
func setupLogger(logDir string, retentionDays int) (func(), error) {
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, err
	}

	var mu sync.Mutex
	currentDate := time.Now().Format("2006-01-02")
	file, err := openLogFile(logDir, currentDate)
	if err != nil {
		return nil, err
	}
	log.SetOutput(io.MultiWriter(os.Stdout, file))
	cleanupOldLogs(logDir, retentionDays, time.Now())

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case now := <-ticker.C:
				date := now.Format("2006-01-02")
				mu.Lock()
				if date != currentDate {
					newFile, err := openLogFile(logDir, date)
					if err == nil {
						log.SetOutput(io.MultiWriter(os.Stdout, newFile))
						_ = file.Close()
						file = newFile
						currentDate = date
						cleanupOldLogs(logDir, retentionDays, now)
					}
				}
				mu.Unlock()
			case <-ctx.Done():
				return
			}
		}
	}()

	return func() {
		cancel()
		mu.Lock()
		log.SetOutput(os.Stdout)
		_ = file.Close()
		mu.Unlock()
	}, nil
}

func openLogFile(logDir, date string) (*os.File, error) {
	filename := filepath.Join(logDir, fmt.Sprintf("valkiria-%s.log", date))
	return os.OpenFile(filename, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
}

func cleanupOldLogs(logDir string, retentionDays int, now time.Time) {
	entries, err := os.ReadDir(logDir)
	if err != nil {
		return
	}
	cutoff := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -(retentionDays - 1))
	for _, entry := range entries {
		name := entry.Name()
		if !entry.Type().IsRegular() {
			continue
		}
		if !strings.HasPrefix(name, "valkiria-") || !strings.HasSuffix(name, ".log") {
			continue
		}
		datePart := strings.TrimSuffix(strings.TrimPrefix(name, "valkiria-"), ".log")
		logDate, err := time.Parse("2006-01-02", datePart)
		if err != nil {
			continue
		}
		if logDate.Before(cutoff) {
			_ = os.Remove(filepath.Join(logDir, name))
		}
	}
}
