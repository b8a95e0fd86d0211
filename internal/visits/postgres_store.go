package visits

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// visitsDB is the slice of pgx the store needs, so tests can inject pgxmock.
type visitsDB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore persists visits in the relational database. The visits
// table carries a unique index on appointment_id.
type PostgresStore struct {
	db  visitsDB
	now func() time.Time
}

// NewPostgresStore initializes a store backed by pgxpool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	if pool == nil {
		panic("visits: pgx pool required")
	}
	return &PostgresStore{db: pool, now: time.Now}
}

// NewPostgresStoreWithDB allows injecting a mock database and clock for testing.
func NewPostgresStoreWithDB(db visitsDB, now func() time.Time) *PostgresStore {
	if now == nil {
		now = time.Now
	}
	return &PostgresStore{db: db, now: now}
}

const visitColumns = `appointment_id, patient_id, status, scheduled_time, arrival_time, start_time, end_time`

func (s *PostgresStore) GetOrCreate(ctx context.Context, appointmentID, patientID int, scheduledTime *time.Time) (*Visit, bool, error) {
	arrived := s.now().UTC()

	// ON CONFLICT DO NOTHING keeps the insert idempotent under the unique
	// appointment_id index; a concurrent duplicate check-in loses the race
	// and falls through to the read below.
	insert := `
		INSERT INTO visits (appointment_id, patient_id, status, scheduled_time, arrival_time)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (appointment_id) DO NOTHING
	`
	tag, err := s.db.Exec(ctx, insert, appointmentID, patientID, StatusArrived, scheduledTime, arrived)
	if err != nil {
		return nil, false, fmt.Errorf("visits: insert failed: %w", err)
	}
	created := tag.RowsAffected() == 1

	v, err := s.Get(ctx, appointmentID)
	if err != nil {
		return nil, false, err
	}
	return v, created, nil
}

func (s *PostgresStore) Get(ctx context.Context, appointmentID int) (*Visit, error) {
	query := `SELECT ` + visitColumns + ` FROM visits WHERE appointment_id = $1`
	v, err := scanVisit(s.db.QueryRow(ctx, query, appointmentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrVisitNotFound
		}
		return nil, fmt.Errorf("visits: select failed: %w", err)
	}
	return v, nil
}

// Toggle advances the visit with a compare-and-set on the current status,
// so two concurrent toggles cannot both advance the same record.
func (s *PostgresStore) Toggle(ctx context.Context, appointmentID int) (*Visit, error) {
	v, err := s.Get(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	next, err := Next(v.Status)
	if err != nil {
		return nil, err
	}

	stamp := s.now().UTC()
	var update string
	switch next {
	case StatusInSession:
		update = `UPDATE visits SET status = $1, start_time = $2 WHERE appointment_id = $3 AND status = $4`
	case StatusFinished:
		update = `UPDATE visits SET status = $1, end_time = $2 WHERE appointment_id = $3 AND status = $4`
	}

	tag, err := s.db.Exec(ctx, update, next, stamp, appointmentID, v.Status)
	if err != nil {
		return nil, fmt.Errorf("visits: toggle update failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Another writer advanced the record between our read and write.
		return nil, fmt.Errorf("visits: concurrent toggle on appointment %d: %w", appointmentID, ErrInvalidState)
	}

	switch next {
	case StatusInSession:
		v.StartTime = &stamp
	case StatusFinished:
		v.EndTime = &stamp
	}
	v.Status = next
	return v, nil
}

func (s *PostgresStore) ListByStatus(ctx context.Context, status Status) ([]*Visit, error) {
	query := `SELECT ` + visitColumns + ` FROM visits WHERE status = $1 ORDER BY arrival_time`
	rows, err := s.db.Query(ctx, query, status)
	if err != nil {
		return nil, fmt.Errorf("visits: list by status: %w", err)
	}
	defer rows.Close()

	var out []*Visit
	for rows.Next() {
		v, err := scanVisit(rows)
		if err != nil {
			return nil, fmt.Errorf("visits: scan row: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("visits: iterate rows: %w", err)
	}
	return out, nil
}

func scanVisit(row pgx.Row) (*Visit, error) {
	var v Visit
	var status string
	if err := row.Scan(
		&v.AppointmentID,
		&v.PatientID,
		&status,
		&v.ScheduledTime,
		&v.ArrivalTime,
		&v.StartTime,
		&v.EndTime,
	); err != nil {
		return nil, err
	}
	parsed, err := ParseStatus(status)
	if err != nil {
		return nil, err
	}
	v.Status = parsed
	return &v, nil
}
