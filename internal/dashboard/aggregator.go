// Package dashboard builds the live staff view: who has arrived, who is in
// session, aggregate timings for finished visits, and today's schedule.
package dashboard

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/oakpoint-health/checkin-kiosk/internal/directory"
	"github.com/oakpoint-health/checkin-kiosk/internal/observability/metrics"
	"github.com/oakpoint-health/checkin-kiosk/internal/visits"
	"github.com/oakpoint-health/checkin-kiosk/pkg/logging"
)

// ArrivedEntry is a waiting patient with a live, growing wait timer.
type ArrivedEntry struct {
	AppointmentID int        `json:"appointment_id"`
	PatientID     int        `json:"patient_id"`
	FirstName     string     `json:"first_name"`
	LastName      string     `json:"last_name"`
	ScheduledTime *time.Time `json:"scheduled_time,omitempty"`
	WaitSeconds   int64      `json:"wait_seconds"`
}

// SessionEntry is the visit currently in session (at most one by
// convention), annotated with the demographics the staff view shows.
type SessionEntry struct {
	AppointmentID int    `json:"appointment_id"`
	PatientID     int    `json:"patient_id"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	DateOfBirth   string `json:"date_of_birth,omitempty"`
	Gender        string `json:"gender,omitempty"`
	Race          string `json:"race,omitempty"`
	Ethnicity     string `json:"ethnicity,omitempty"`
	VisitSeconds  int64  `json:"visit_seconds"`
}

// CompletedStats aggregates finished visits. HasData is false when nothing
// has finished today, so callers render a "no data" message instead of
// zeros.
type CompletedStats struct {
	HasData         bool  `json:"has_data"`
	Count           int   `json:"count"`
	AvgWaitSeconds  int64 `json:"avg_wait_seconds"`
	AvgVisitSeconds int64 `json:"avg_visit_seconds"`
}

// ScheduleEntry is one of today's appointments from the external directory,
// annotated with the patient's name.
type ScheduleEntry struct {
	AppointmentID int       `json:"appointment_id"`
	PatientID     int       `json:"patient_id"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	Status        string    `json:"status"`
	ScheduledTime time.Time `json:"scheduled_time"`
}

// Snapshot is the full dashboard payload.
type Snapshot struct {
	GeneratedAt time.Time         `json:"generated_at"`
	Doctor      *directory.Doctor `json:"doctor,omitempty"`
	Schedule    []ScheduleEntry   `json:"schedule"`
	Arrived     []ArrivedEntry    `json:"arrived"`
	Current     *SessionEntry     `json:"current,omitempty"`
	Completed   CompletedStats    `json:"completed"`
}

// Aggregator reads across the visit store and the directory to build a
// snapshot. Durations are computed at read time, never cached, so the wait
// and visit timers keep climbing between reads.
type Aggregator struct {
	store   visits.Store
	dir     directory.Client
	tokens  directory.TokenSource
	metrics *metrics.KioskMetrics
	logger  *logging.Logger

	loc *time.Location
	now func() time.Time
}

// NewAggregator constructs a dashboard aggregator. loc defaults to UTC.
func NewAggregator(store visits.Store, dir directory.Client, tokens directory.TokenSource, m *metrics.KioskMetrics, loc *time.Location, logger *logging.Logger) *Aggregator {
	if store == nil {
		panic("dashboard: visit store required")
	}
	if dir == nil {
		panic("dashboard: directory client required")
	}
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Aggregator{
		store:   store,
		dir:     dir,
		tokens:  tokens,
		metrics: m,
		logger:  logger,
		loc:     loc,
		now:     time.Now,
	}
}

// WithClock overrides the aggregator clock, for tests.
func (a *Aggregator) WithClock(now func() time.Time) *Aggregator {
	if now != nil {
		a.now = now
	}
	return a
}

// BuildSnapshot assembles the dashboard view.
func (a *Aggregator) BuildSnapshot(ctx context.Context) (*Snapshot, error) {
	started := a.now()
	defer func() {
		a.metrics.ObserveDashboardLatency(a.now().Sub(started).Seconds())
	}()

	cred, err := a.tokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("dashboard: resolve credential: %w", err)
	}

	patients, err := a.dir.ListPatients(ctx, cred)
	if err != nil {
		return nil, fmt.Errorf("dashboard: list patients: %w", err)
	}
	byID := make(map[int]directory.Patient, len(patients))
	for _, p := range patients {
		byID[p.ID] = p
	}

	now := a.now()
	snap := &Snapshot{GeneratedAt: now.UTC()}

	// The doctor fetch doubles as an upstream liveness probe; a miss keeps
	// the rest of the dashboard usable.
	if doctors, err := a.dir.ListDoctors(ctx, cred); err != nil {
		a.logger.Warn("doctor liveness probe failed", "error", err)
	} else if len(doctors) > 0 {
		snap.Doctor = &doctors[0]
	}

	appts, err := a.dir.ListAppointments(ctx, cred, directory.AppointmentFilter{Date: now.In(a.loc)})
	if err != nil {
		return nil, fmt.Errorf("dashboard: list appointments: %w", err)
	}
	for _, appt := range appts {
		entry := ScheduleEntry{
			AppointmentID: appt.ID,
			PatientID:     appt.PatientID,
			Status:        appt.Status,
			ScheduledTime: appt.ScheduledTime,
		}
		if p, ok := byID[appt.PatientID]; ok {
			entry.FirstName = p.FirstName
			entry.LastName = p.LastName
		}
		snap.Schedule = append(snap.Schedule, entry)
	}

	arrived, err := a.store.ListByStatus(ctx, visits.StatusArrived)
	if err != nil {
		return nil, fmt.Errorf("dashboard: list arrived visits: %w", err)
	}
	for _, v := range arrived {
		wait, ok := v.WaitDuration(now)
		if !ok {
			continue
		}
		entry := ArrivedEntry{
			AppointmentID: v.AppointmentID,
			PatientID:     v.PatientID,
			ScheduledTime: v.ScheduledTime,
			WaitSeconds:   int64(wait.Seconds()),
		}
		if p, ok := byID[v.PatientID]; ok {
			entry.FirstName = p.FirstName
			entry.LastName = p.LastName
		}
		snap.Arrived = append(snap.Arrived, entry)
	}

	inSession, err := a.store.ListByStatus(ctx, visits.StatusInSession)
	if err != nil {
		return nil, fmt.Errorf("dashboard: list in-session visits: %w", err)
	}
	if len(inSession) > 0 {
		v := inSession[0]
		if d, ok := v.VisitDuration(now); ok {
			entry := &SessionEntry{
				AppointmentID: v.AppointmentID,
				PatientID:     v.PatientID,
				VisitSeconds:  int64(d.Seconds()),
			}
			if p, ok := byID[v.PatientID]; ok {
				entry.FirstName = p.FirstName
				entry.LastName = p.LastName
				entry.DateOfBirth = p.DateOfBirth
				entry.Gender = p.Gender
				entry.Race = p.Race
				entry.Ethnicity = p.Ethnicity
			}
			snap.Current = entry
		}
	}

	finished, err := a.store.ListByStatus(ctx, visits.StatusFinished)
	if err != nil {
		return nil, fmt.Errorf("dashboard: list finished visits: %w", err)
	}
	snap.Completed = completedStats(finished, now)

	return snap, nil
}

// completedStats averages the wait and in-session windows over finished
// visits, rounding each mean up to the next whole second.
func completedStats(finished []*visits.Visit, now time.Time) CompletedStats {
	var waitTotal, visitTotal float64
	count := 0
	for _, v := range finished {
		wait, waitOK := v.WaitDuration(now)
		visit, visitOK := v.VisitDuration(now)
		if !waitOK || !visitOK {
			continue
		}
		waitTotal += wait.Seconds()
		visitTotal += visit.Seconds()
		count++
	}
	if count == 0 {
		return CompletedStats{}
	}
	return CompletedStats{
		HasData:         true,
		Count:           count,
		AvgWaitSeconds:  int64(math.Ceil(waitTotal / float64(count))),
		AvgVisitSeconds: int64(math.Ceil(visitTotal / float64(count))),
	}
}
