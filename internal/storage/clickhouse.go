package storage

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// streamBuffer is the size of the in-memory channel. If analytics inserts
	// stall long enough to fill it, events are dropped and counted.
	streamBuffer = 10_000

	// flushInterval is how often buffered events are flushed to ClickHouse.
	flushInterval = 100 * time.Millisecond

	// flushBatch caps how many events go into a single INSERT.
	flushBatch = 1000

	// drainTimeout bounds the final flush during shutdown.
	drainTimeout = 2 * time.Second
)

// StreamEvent is the denormalized analytics row mirrored to ClickHouse after
// each assessment. It carries the resolved tier so the read side can slice by
// outcome without re-running policy.
type StreamEvent struct {
	ID          uuid.UUID
	UserID      string
	Kind        string
	OverallRisk float64
	AuthLevel   string
	Location    string
	IPAddress   string
	CreatedAt   time.Time
}

// AnalyticsStream receives assessment events. Write never blocks the caller;
// the Postgres audit trail is the record of truth, this stream is not.
type AnalyticsStream interface {
	Write(e StreamEvent)
	Close(ctx context.Context) error
}

// ClickHouseStream buffers events in memory and flushes them to ClickHouse in
// batches from a background goroutine.
type ClickHouseStream struct {
	conn    driver.Conn
	logger  *zap.Logger
	events  chan StreamEvent
	done    chan struct{}
	flushed chan struct{} // closed by flushLoop when it returns
	dropped atomic.Int64
}

// NewClickHouseStream connects, pings, and starts the flush loop.
func NewClickHouseStream(ctx context.Context, addr, database, username, password string, logger *zap.Logger) (*ClickHouseStream, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: database,
			Username: username,
			Password: password,
		},
		DialTimeout: 5 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("NewClickHouseStream: open: %w", err)
	}
	if err := conn.Ping(ctx); err != nil {
		return nil, fmt.Errorf("NewClickHouseStream: ping: %w", err)
	}

	s := &ClickHouseStream{
		conn:    conn,
		logger:  logger,
		events:  make(chan StreamEvent, streamBuffer),
		done:    make(chan struct{}),
		flushed: make(chan struct{}),
	}
	go s.flushLoop()
	return s, nil
}

// Write enqueues an event. Drops when the buffer is full.
func (s *ClickHouseStream) Write(e StreamEvent) {
	select {
	case s.events <- e:
	default:
		s.logger.Warn("analytics buffer full, dropping event",
			zap.String("assessment_id", e.ID.String()),
			zap.Int64("dropped_total", s.dropped.Add(1)),
		)
	}
}

func (s *ClickHouseStream) flushLoop() {
	defer close(s.flushed)

	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	batch := make([]StreamEvent, 0, flushBatch)
	for {
		select {
		case e := <-s.events:
			batch = append(batch, e)
			if len(batch) >= flushBatch {
				s.flush(batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				s.flush(batch)
				batch = batch[:0]
			}
		case <-s.done:
			s.drain(batch)
			return
		}
	}
}

// drain empties the channel and flushes whatever remains, bounded by
// drainTimeout so shutdown cannot hang on a dead ClickHouse.
func (s *ClickHouseStream) drain(batch []StreamEvent) {
	deadline := time.After(drainTimeout)
	for {
		select {
		case e := <-s.events:
			batch = append(batch, e)
			if len(batch) >= flushBatch {
				s.flush(batch)
				batch = batch[:0]
			}
		case <-deadline:
			s.flush(batch)
			return
		default:
			s.flush(batch)
			return
		}
	}
}

func (s *ClickHouseStream) flush(batch []StreamEvent) {
	if len(batch) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	b, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO risk_assessment_events (
			id, user_id, kind, overall_risk, auth_level,
			location, ip_address, created_at
		)`)
	if err != nil {
		s.logger.Error("prepare analytics batch", zap.Error(err), zap.Int("events", len(batch)))
		return
	}
	for _, e := range batch {
		err := b.Append(
			e.ID.String(), e.UserID, e.Kind, e.OverallRisk, e.AuthLevel,
			e.Location, e.IPAddress, e.CreatedAt,
		)
		if err != nil {
			s.logger.Error("append analytics event", zap.Error(err))
			return
		}
	}
	if err := b.Send(); err != nil {
		s.logger.Error("send analytics batch", zap.Error(err), zap.Int("events", len(batch)))
		return
	}
}

// Close stops the flush loop and waits for its final drain to finish, or for
// ctx to expire, whichever comes first. Safe to call once.
func (s *ClickHouseStream) Close(ctx context.Context) error {
	close(s.done)
	select {
	case <-s.flushed:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("Close: %w", ctx.Err())
	}
}

// LogStream is the fallback when ClickHouse is not configured: events go to
// the structured log instead of a table. The admin analytics endpoints return
// 503 in this mode.
type LogStream struct {
	logger *zap.Logger
}

func NewLogStream(logger *zap.Logger) *LogStream {
	return &LogStream{logger: logger}
}

func (s *LogStream) Write(e StreamEvent) {
	s.logger.Info("assessment event",
		zap.String("assessment_id", e.ID.String()),
		zap.String("user_id", e.UserID),
		zap.String("kind", e.Kind),
		zap.Float64("overall_risk", e.OverallRisk),
		zap.String("auth_level", e.AuthLevel),
	)
}

func (s *LogStream) Close(ctx context.Context) error { return nil }
