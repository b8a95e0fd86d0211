// Package checkin matches a submitted patient identity against the external
// directory and opens the local visit record.
package checkin

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oakpoint-health/checkin-kiosk/internal/directory"
	"github.com/oakpoint-health/checkin-kiosk/internal/visits"
	"github.com/oakpoint-health/checkin-kiosk/pkg/logging"
)

var (
	// ErrPatientNotFound is returned when no directory entry matches the
	// submitted name.
	ErrPatientNotFound = errors.New("no matching patient found")

	// ErrAppointmentNotFound is returned when the patient matched but has
	// no appointment scheduled today.
	ErrAppointmentNotFound = errors.New("no appointment scheduled today")

	// ErrInvalidSubmission is returned for an incomplete kiosk form.
	ErrInvalidSubmission = errors.New("first and last name are required")
)

// CheckInRequest is the kiosk form submission. SSN is optional and only
// used to narrow the match when two patients share a name; the matching
// policy is exact, case-sensitive name equality.
type CheckInRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	SSN       string `json:"ssn,omitempty"`
}

// Validate rejects submissions missing a name.
func (r *CheckInRequest) Validate() error {
	if r.FirstName == "" || r.LastName == "" {
		return ErrInvalidSubmission
	}
	return nil
}

// CheckInResult identifies the visit opened by a successful check-in, so
// the kiosk can route to demographics collection next.
type CheckInResult struct {
	AppointmentID int `json:"appointment_id"`
	PatientID     int `json:"patient_id"`
}

// Service orchestrates check-in: directory lookup, external status update,
// then local visit creation, in that order.
type Service struct {
	dir    directory.Client
	tokens directory.TokenSource
	store  visits.Store
	logger *logging.Logger

	// loc defines where "today" begins and ends for appointment matching.
	loc *time.Location
	now func() time.Time
}

// NewService constructs a check-in service. loc defaults to UTC.
func NewService(dir directory.Client, tokens directory.TokenSource, store visits.Store, loc *time.Location, logger *logging.Logger) *Service {
	if dir == nil {
		panic("checkin: directory client required")
	}
	if store == nil {
		panic("checkin: visit store required")
	}
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		dir:    dir,
		tokens: tokens,
		store:  store,
		logger: logger,
		loc:    loc,
		now:    time.Now,
	}
}

// WithClock overrides the service clock, for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

// CheckIn resolves the submitted name against the patient directory,
// marks today's appointment Arrived upstream, and opens the local visit.
//
// The external status update deliberately happens before the local write:
// if the local store fails afterwards there is no compensating rollback, so
// the upstream system is never left unmarked for a visit we track locally.
func (s *Service) CheckIn(ctx context.Context, req CheckInRequest) (*CheckInResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	cred, err := s.tokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("checkin: resolve credential: %w", err)
	}

	patient, err := s.matchPatient(ctx, cred, req)
	if err != nil {
		return nil, err
	}

	today := s.now().In(s.loc)
	appts, err := s.dir.ListAppointments(ctx, cred, directory.AppointmentFilter{
		PatientID: patient.ID,
		Date:      today,
	})
	if err != nil {
		return nil, fmt.Errorf("checkin: list appointments: %w", err)
	}
	if len(appts) == 0 {
		return nil, ErrAppointmentNotFound
	}

	var result *CheckInResult
	for _, appt := range appts {
		if err := s.dir.UpdateAppointmentStatus(ctx, cred, appt.ID, string(visits.StatusArrived)); err != nil {
			return nil, fmt.Errorf("checkin: mark appointment arrived: %w", err)
		}

		scheduled := appt.ScheduledTime
		_, created, err := s.store.GetOrCreate(ctx, appt.ID, patient.ID, &scheduled)
		if err != nil {
			// Upstream is already marked Arrived at this point; surface the
			// inconsistency rather than hiding it.
			return nil, fmt.Errorf("checkin: open visit for appointment %d: %w", appt.ID, err)
		}
		if !created {
			return nil, visits.ErrAlreadyCheckedIn
		}

		s.logger.Info("patient checked in",
			"appointment_id", appt.ID,
			"patient_id", patient.ID,
		)
		result = &CheckInResult{AppointmentID: appt.ID, PatientID: patient.ID}
	}
	return result, nil
}

// matchPatient finds the directory entry with exactly the submitted name.
// When several patients share the name, the optional SSN disambiguates.
func (s *Service) matchPatient(ctx context.Context, cred directory.Credential, req CheckInRequest) (*directory.Patient, error) {
	patients, err := s.dir.ListPatients(ctx, cred)
	if err != nil {
		return nil, fmt.Errorf("checkin: list patients: %w", err)
	}

	var matches []directory.Patient
	for _, p := range patients {
		if p.FirstName == req.FirstName && p.LastName == req.LastName {
			matches = append(matches, p)
		}
	}

	switch {
	case len(matches) == 0:
		return nil, ErrPatientNotFound
	case len(matches) == 1:
		return &matches[0], nil
	}

	if req.SSN != "" {
		for _, p := range matches {
			if p.SSN == req.SSN {
				return &p, nil
			}
		}
		return nil, ErrPatientNotFound
	}

	// Ambiguous without an SSN; take the first match, mirroring the
	// name-match-only policy.
	s.logger.Warn("ambiguous patient name at check-in",
		"first_name", req.FirstName,
		"matches", len(matches),
	)
	return &matches[0], nil
}
