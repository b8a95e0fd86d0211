// Package visits tracks a patient's single-day clinic visit: check-in
// arrival, the in-session window, and the timestamps that drive the
// wait/visit timers on the staff dashboard.
package visits

import (
	"fmt"
	"time"
)

// Status is the lifecycle state of a visit. The zero value means the
// patient has not checked in yet.
type Status string

const (
	StatusNone      Status = ""
	StatusArrived   Status = "Arrived"
	StatusInSession Status = "In Session"
	StatusFinished  Status = "Finished"
)

// ParseStatus validates a raw status value at the boundary. Free-text
// statuses are rejected rather than carried through the state machine.
func ParseStatus(raw string) (Status, error) {
	switch Status(raw) {
	case StatusNone, StatusArrived, StatusInSession, StatusFinished:
		return Status(raw), nil
	}
	return StatusNone, fmt.Errorf("visits: unknown status %q: %w", raw, ErrInvalidState)
}

// Next returns the status a toggle advances to. The lifecycle is linear
// (Arrived -> In Session -> Finished) and terminal at Finished; toggling
// from Finished or from a not-checked-in record is an invalid transition.
func Next(current Status) (Status, error) {
	switch current {
	case StatusArrived:
		return StatusInSession, nil
	case StatusInSession:
		return StatusFinished, nil
	}
	return StatusNone, fmt.Errorf("visits: cannot toggle from status %q: %w", current, ErrInvalidState)
}

// Visit is one patient's clinic-day encounter. AppointmentID is the unique
// key; it comes from the external scheduling directory, as does PatientID.
// Each timestamp is set exactly once, to the wall clock at the moment of
// the corresponding transition.
type Visit struct {
	AppointmentID int        `json:"appointment_id"`
	PatientID     int        `json:"patient_id"`
	Status        Status     `json:"status"`
	ScheduledTime *time.Time `json:"scheduled_time,omitempty"`
	ArrivalTime   *time.Time `json:"arrival_time,omitempty"`
	StartTime     *time.Time `json:"start_time,omitempty"`
	EndTime       *time.Time `json:"end_time,omitempty"`
}

// WaitDuration reports how long the patient waited between arriving and
// being seen. While the visit has not started the duration is live, growing
// with now. ok is false until the patient has arrived.
func (v *Visit) WaitDuration(now time.Time) (d time.Duration, ok bool) {
	if v.ArrivalTime == nil {
		return 0, false
	}
	if v.StartTime != nil {
		return v.StartTime.Sub(*v.ArrivalTime), true
	}
	return now.Sub(*v.ArrivalTime), true
}

// VisitDuration reports how long the patient has been (or was) in session.
// Live until EndTime is set. ok is false until the session has started.
func (v *Visit) VisitDuration(now time.Time) (d time.Duration, ok bool) {
	if v.StartTime == nil {
		return 0, false
	}
	if v.EndTime != nil {
		return v.EndTime.Sub(*v.StartTime), true
	}
	return now.Sub(*v.StartTime), true
}
