// Package state keeps the last fetched configuration and attendance logs in
// memory and rebuilds them wholesale after every successful write.
package state

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"
	"time"

	"valkiria-backend-go/internal/models"
	"valkiria-backend-go/internal/services"

	"golang.org/x/sync/singleflight"
)

// DataSource is the data access layer the container reads from and writes to.
type DataSource interface {
	LoadAll(ctx context.Context) (models.Configuration, []models.AttendanceLog, error)
	InsertLog(ctx context.Context, entry models.NewAttendanceLog) error
	DeleteLog(ctx context.Context, id string) error
	InsertParent(ctx context.Context, kind models.ParentKind, name, sedeID string) error
	DeleteParent(ctx context.Context, kind models.ParentKind, id string) error
}

type Snapshot struct {
	Config      models.Configuration   `json:"config"`
	Logs        []models.AttendanceLog `json:"logs"`
	Loading     bool                   `json:"loading"`
	Error       string                 `json:"error,omitempty"`
	Connected   bool                   `json:"connected"`
	RefreshedAt *time.Time             `json:"refreshedAt,omitempty"`
}

// LoadTimeout bounds a single reload of configuration and logs.
var LoadTimeout = 30 * time.Second

type Container struct {
	mu          sync.RWMutex
	source      DataSource
	config      models.Configuration
	logs        []models.AttendanceLog
	inflight    int
	lastErr     string
	refreshedAt *time.Time

	// issued and applied order refreshes: a load only lands if nothing newer
	// has landed before it.
	issued  uint64
	applied uint64

	group     singleflight.Group
	listeners []func(Snapshot)
}

func New(source DataSource) *Container {
	return &Container{
		source: source,
		config: models.EmptyConfiguration(),
		logs:   []models.AttendanceLog{},
	}
}

// Subscribe registers fn to receive a snapshot after every applied refresh.
func (c *Container) Subscribe(fn func(Snapshot)) {
	c.mu.Lock()
	c.listeners = append(c.listeners, fn)
	c.mu.Unlock()
}

// Connect swaps the data source, as on a reconnect, and reloads from it.
// The previous data is dropped since it belonged to another backend, and the
// previous source is closed if it can be.
func (c *Container) Connect(ctx context.Context, source DataSource) error {
	c.mu.Lock()
	previous := c.source
	c.source = source
	c.config = models.EmptyConfiguration()
	c.logs = []models.AttendanceLog{}
	c.lastErr = ""
	c.refreshedAt = nil
	c.applied = c.issued
	c.mu.Unlock()
	if closer, ok := previous.(io.Closer); ok && previous != source {
		if err := closer.Close(); err != nil {
			log.Printf("close previous data source: %v", err)
		}
	}
	loadCtx, cancel := loadContext(ctx)
	defer cancel()
	return c.refresh(loadCtx)
}

// Ping checks the data source when it supports it.
func (c *Container) Ping(ctx context.Context) error {
	c.mu.RLock()
	source := c.source
	c.mu.RUnlock()
	if source == nil {
		return notConnected()
	}
	if pinger, ok := source.(interface{ Ping(context.Context) error }); ok {
		return pinger.Ping(ctx)
	}
	return nil
}

// Close releases the data source. The container reports itself disconnected
// afterwards.
func (c *Container) Close() error {
	c.mu.Lock()
	source := c.source
	c.source = nil
	c.mu.Unlock()
	if closer, ok := source.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

func (c *Container) Connected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.source != nil
}

func (c *Container) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshotLocked()
}

func (c *Container) snapshotLocked() Snapshot {
	return Snapshot{
		Config:      c.config,
		Logs:        c.logs,
		Loading:     c.inflight > 0,
		Error:       c.lastErr,
		Connected:   c.source != nil,
		RefreshedAt: c.refreshedAt,
	}
}

// Refresh reloads everything from the data source. Concurrent callers share
// one load.
func (c *Container) Refresh(ctx context.Context) error {
	ch := c.group.DoChan("refresh", func() (interface{}, error) {
		loadCtx, cancel := loadContext(ctx)
		defer cancel()
		return nil, c.refresh(loadCtx)
	})
	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// loadContext keeps ctx's values but not its cancellation, and bounds the load
// by LoadTimeout.
func loadContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), LoadTimeout)
}

func (c *Container) refresh(ctx context.Context) error {
	c.mu.Lock()
	source := c.source
	if source == nil {
		c.mu.Unlock()
		return notConnected()
	}
	c.issued++
	token := c.issued
	c.inflight++
	c.lastErr = ""
	c.mu.Unlock()

	cfg, logs, err := source.LoadAll(ctx)

	c.mu.Lock()
	c.inflight--
	stale := token <= c.applied || source != c.source
	if !stale {
		c.applied = token
		if err != nil {
			c.lastErr = errorMessage(err)
		} else {
			if logs == nil {
				logs = []models.AttendanceLog{}
			}
			now := time.Now().UTC()
			c.config = cfg
			c.logs = logs
			c.refreshedAt = &now
		}
	}
	snap := c.snapshotLocked()
	listeners := append([]func(Snapshot){}, c.listeners...)
	c.mu.Unlock()

	if stale {
		log.Printf("discarding stale refresh #%d", token)
	} else {
		for _, fn := range listeners {
			fn(snap)
		}
	}
	if err != nil {
		var fetchErr services.FetchError
		if !errors.As(err, &fetchErr) {
			err = services.FetchError{Message: err.Error(), Err: err}
		}
		return err
	}
	return nil
}

func (c *Container) AddLog(ctx context.Context, entry models.NewAttendanceLog) error {
	return c.write(ctx, func(source DataSource) error {
		return source.InsertLog(ctx, entry)
	})
}

func (c *Container) DeleteLog(ctx context.Context, id string) error {
	return c.write(ctx, func(source DataSource) error {
		return source.DeleteLog(ctx, id)
	})
}

func (c *Container) AddParent(ctx context.Context, kind models.ParentKind, name, sedeID string) error {
	return c.write(ctx, func(source DataSource) error {
		return source.InsertParent(ctx, kind, name, sedeID)
	})
}

func (c *Container) RemoveParent(ctx context.Context, kind models.ParentKind, id string) error {
	return c.write(ctx, func(source DataSource) error {
		return source.DeleteParent(ctx, kind, id)
	})
}

// write runs fn against the source and reloads on success. A failed write
// leaves the cached data and the error flag untouched; a failed reload after
// a successful write is recorded in the snapshot only.
func (c *Container) write(ctx context.Context, fn func(DataSource) error) error {
	c.mu.RLock()
	source := c.source
	c.mu.RUnlock()
	if source == nil {
		return notConnected()
	}
	if err := fn(source); err != nil {
		return err
	}
	loadCtx, cancel := loadContext(ctx)
	defer cancel()
	if err := c.refresh(loadCtx); err != nil {
		log.Printf("refresh after write: %v", err)
	}
	return nil
}

func notConnected() error {
	return services.ConfigurationError{Message: "database connection is not configured"}
}

func errorMessage(err error) string {
	if err.Error() == "" {
		return "database connection error"
	}
	return err.Error()
}
