package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var (
	// ErrNotConfigured indicates the storage pool was not initialised.
	ErrNotConfigured = errors.New("storage: pool not configured")
)

const (
	upsertSeriesRowSQL = `INSERT INTO sentiment_series (
        obs_date,
        sentiment,
        sentiment_smoothed,
        local_min,
        local_max,
        extremity_score
    ) VALUES (
        $1,$2,$3,$4,$5,$6
    )
    ON CONFLICT (obs_date) DO UPDATE
    SET
        sentiment          = EXCLUDED.sentiment,
        sentiment_smoothed = EXCLUDED.sentiment_smoothed,
        local_min          = EXCLUDED.local_min,
        local_max          = EXCLUDED.local_max,
        extremity_score    = EXCLUDED.extremity_score,
        updated_at         = now();`

	listSeriesBetweenSQL = `SELECT
        obs_date,
        sentiment,
        sentiment_smoothed,
        local_min,
        local_max,
        extremity_score,
        updated_at
    FROM sentiment_series
    WHERE obs_date >= $1
      AND obs_date < $2
    ORDER BY obs_date;`

	countSeriesRowsSQL = `SELECT COUNT(*) FROM sentiment_series;`

	upsertEventSQL = `INSERT INTO sentiment_events (
        event_date,
        event_type,
        extremity_score,
        channels
    ) VALUES (
        $1,$2,$3,$4
    )
    ON CONFLICT (event_date) DO UPDATE
    SET event_type      = EXCLUDED.event_type,
        extremity_score = EXCLUDED.extremity_score,
        channels        = EXCLUDED.channels
    RETURNING id, event_date, event_type, extremity_score, channels, created_at;`

	listEventsBetweenSQL = `SELECT
        id,
        event_date,
        event_type,
        extremity_score,
        channels,
        created_at
    FROM sentiment_events
    WHERE event_date >= $1
      AND event_date < $2
    ORDER BY event_date;`

	listRecentEventsSQL = `SELECT
        id,
        event_date,
        event_type,
        extremity_score,
        channels,
        created_at
    FROM sentiment_events
    ORDER BY event_date DESC
    LIMIT $1;`

	deleteEventsBeforeSQL = `DELETE FROM sentiment_events WHERE event_date < $1;`

	tryAdvisoryLockSQL = `SELECT pg_try_advisory_lock($1);`
	advisoryUnlockSQL  = `SELECT pg_advisory_unlock($1);`
)

// SeriesStore defines operations for the labeled series table.
type SeriesStore interface {
	UpsertSeriesRow(ctx context.Context, row SeriesRow) error
	ListSeriesBetween(ctx context.Context, from, to time.Time) ([]SeriesRow, error)
	CountSeriesRows(ctx context.Context) (int64, error)
}

// EventStore defines operations for selected events.
type EventStore interface {
	UpsertEvent(ctx context.Context, record EventRecord) (EventRecord, error)
	ListEventsBetween(ctx context.Context, from, to time.Time) ([]EventRecord, error)
	ListRecentEvents(ctx context.Context, limit int) ([]EventRecord, error)
	DeleteEventsBefore(ctx context.Context, olderThan time.Time) error
}

// AdvisoryLocker exposes advisory lock helpers.
type AdvisoryLocker interface {
	TryAdvisoryLock(ctx context.Context, key int64) (unlock func(), acquired bool, err error)
}

// Store aggregates access to the series and event tables.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore wires a pgx pool into a Store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Close releases the underlying pool resources.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// TryAdvisoryLock attempts to acquire a postgres advisory lock and returns a release func.
func (s *Store) TryAdvisoryLock(ctx context.Context, key int64) (func(), bool, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, false, err
	}

	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("acquire connection: %w", err)
	}

	var acquired bool
	if err := conn.QueryRow(ctx, tryAdvisoryLockSQL, key).Scan(&acquired); err != nil {
		conn.Release()
		return nil, false, fmt.Errorf("try advisory lock: %w", err)
	}
	if !acquired {
		conn.Release()
		return nil, false, nil
	}

	unlock := func() {
		ctxUnlock, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		// best effort; the lock is also released when the connection closes
		_, _ = conn.Exec(ctxUnlock, advisoryUnlockSQL, key)
		conn.Release()
	}
	return unlock, true, nil
}

func (s *Store) getPool() (*pgxpool.Pool, error) {
	if s == nil || s.pool == nil {
		return nil, ErrNotConfigured
	}
	return s.pool, nil
}

// UpsertSeriesRow persists or updates one labeled observation.
func (s *Store) UpsertSeriesRow(ctx context.Context, row SeriesRow) error {
	pool, err := s.getPool()
	if err != nil {
		return err
	}

	var score interface{}
	if row.Score != nil {
		score = row.Score.String()
	}

	_, execErr := pool.Exec(ctx, upsertSeriesRowSQL,
		row.Date,
		row.Value.String(),
		row.Smoothed.String(),
		row.LocalMin,
		row.LocalMax,
		score,
	)
	if execErr != nil {
		return fmt.Errorf("upsert series row: %w", execErr)
	}
	return nil
}

// ListSeriesBetween lists labeled observations within a date window.
func (s *Store) ListSeriesBetween(ctx context.Context, from, to time.Time) ([]SeriesRow, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listSeriesBetweenSQL, from, to)
	if queryErr != nil {
		return nil, fmt.Errorf("list series between: %w", queryErr)
	}
	defer rows.Close()

	result := make([]SeriesRow, 0)
	for rows.Next() {
		row, scanErr := scanSeriesRow(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		result = append(result, row)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return result, nil
}

// CountSeriesRows counts stored observations.
func (s *Store) CountSeriesRows(ctx context.Context) (int64, error) {
	pool, err := s.getPool()
	if err != nil {
		return 0, err
	}
	var count int64
	if scanErr := pool.QueryRow(ctx, countSeriesRowsSQL).Scan(&count); scanErr != nil {
		return 0, fmt.Errorf("count series rows: %w", scanErr)
	}
	return count, nil
}

// UpsertEvent persists a selected event.
func (s *Store) UpsertEvent(ctx context.Context, record EventRecord) (EventRecord, error) {
	pool, err := s.getPool()
	if err != nil {
		return EventRecord{}, err
	}

	row := pool.QueryRow(ctx, upsertEventSQL,
		record.Date,
		record.Type,
		record.Score.String(),
		record.Channels,
	)

	rec, scanErr := scanEventRecord(row.Scan)
	if scanErr != nil {
		return EventRecord{}, fmt.Errorf("upsert event: %w", scanErr)
	}
	return rec, nil
}

// ListEventsBetween lists events within a date window.
func (s *Store) ListEventsBetween(ctx context.Context, from, to time.Time) ([]EventRecord, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listEventsBetweenSQL, from, to)
	if queryErr != nil {
		return nil, fmt.Errorf("list events between: %w", queryErr)
	}
	defer rows.Close()

	return collectEvents(rows)
}

// ListRecentEvents lists the most recent events ordered by descending date.
func (s *Store) ListRecentEvents(ctx context.Context, limit int) ([]EventRecord, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listRecentEventsSQL, limit)
	if queryErr != nil {
		return nil, fmt.Errorf("list recent events: %w", queryErr)
	}
	defer rows.Close()

	return collectEvents(rows)
}

// DeleteEventsBefore deletes historical events.
func (s *Store) DeleteEventsBefore(ctx context.Context, olderThan time.Time) error {
	pool, err := s.getPool()
	if err != nil {
		return err
	}
	if _, execErr := pool.Exec(ctx, deleteEventsBeforeSQL, olderThan); execErr != nil {
		return fmt.Errorf("delete events before: %w", execErr)
	}
	return nil
}

func collectEvents(rows pgx.Rows) ([]EventRecord, error) {
	events := make([]EventRecord, 0)
	for rows.Next() {
		rec, scanErr := scanEventRecord(rows.Scan)
		if scanErr != nil {
			return nil, scanErr
		}
		events = append(events, rec)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return events, nil
}

func scanEventRecord(scan func(dest ...any) error) (EventRecord, error) {
	var rec EventRecord
	var scoreStr string
	if err := scan(
		&rec.ID,
		&rec.Date,
		&rec.Type,
		&scoreStr,
		&rec.Channels,
		&rec.CreatedAt,
	); err != nil {
		return EventRecord{}, err
	}

	score, err := decimal.NewFromString(scoreStr)
	if err != nil {
		return EventRecord{}, fmt.Errorf("parse extremity score: %w", err)
	}
	rec.Score = score
	return rec, nil
}

func scanSeriesRow(rows pgx.Rows) (SeriesRow, error) {
	var (
		date        time.Time
		sentiment   string
		smoothedStr string
		localMin    bool
		localMax    bool
		scoreStr    sql.NullString
		updatedAt   time.Time
	)

	if err := rows.Scan(
		&date,
		&sentiment,
		&smoothedStr,
		&localMin,
		&localMax,
		&scoreStr,
		&updatedAt,
	); err != nil {
		return SeriesRow{}, err
	}

	value, err := decimal.NewFromString(sentiment)
	if err != nil {
		return SeriesRow{}, fmt.Errorf("parse sentiment: %w", err)
	}
	smoothed, err := decimal.NewFromString(smoothedStr)
	if err != nil {
		return SeriesRow{}, fmt.Errorf("parse smoothed sentiment: %w", err)
	}

	row := SeriesRow{
		Date:      date,
		Value:     value,
		Smoothed:  smoothed,
		LocalMin:  localMin,
		LocalMax:  localMax,
		UpdatedAt: updatedAt,
	}

	if scoreStr.Valid {
		score, convErr := decimal.NewFromString(scoreStr.String)
		if convErr != nil {
			return SeriesRow{}, fmt.Errorf("parse extremity score: %w", convErr)
		}
		row.Score = &score
	}

	return row, nil
}
