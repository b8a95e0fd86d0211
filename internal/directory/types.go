// Package directory is the client for the external clinic-management API:
// the system of record for patients, appointments, and doctors. The kiosk
// never owns this data; it reads it and pushes back status/demographic
// updates.
package directory

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when the directory has no matching resource.
var ErrNotFound = errors.New("directory: resource not found")

// Credential is the bearer token handed to every call. Callers resolve it
// once per request from a TokenSource; nothing in the kiosk caches it in
// ambient state.
type Credential struct {
	AccessToken string
	Expiry      time.Time
}

// Patient mirrors the directory's patient record, demographic fields
// included, since the kiosk's demographics screen round-trips them.
type Patient struct {
	ID          int    `json:"id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	DateOfBirth string `json:"date_of_birth,omitempty"`
	Gender      string `json:"gender,omitempty"`
	Race        string `json:"race,omitempty"`
	Ethnicity   string `json:"ethnicity,omitempty"`
	Email       string `json:"email,omitempty"`
	SSN         string `json:"social_security_number,omitempty"`
}

// PatientUpdate carries the demographic fields the kiosk may write back.
type PatientUpdate struct {
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	DateOfBirth string `json:"date_of_birth,omitempty"`
	Gender      string `json:"gender,omitempty"`
	Race        string `json:"race,omitempty"`
	Ethnicity   string `json:"ethnicity,omitempty"`
	Email       string `json:"email,omitempty"`
}

// Appointment is a scheduled slot in the external system.
type Appointment struct {
	ID            int       `json:"id"`
	PatientID     int       `json:"patient"`
	DoctorID      int       `json:"doctor"`
	Status        string    `json:"status"`
	ScheduledTime time.Time `json:"scheduled_time"`
	Duration      int       `json:"duration"`
	Reason        string    `json:"reason,omitempty"`
}

// Doctor is used only for the dashboard's upstream liveness probe.
type Doctor struct {
	ID        int    `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Specialty string `json:"specialty,omitempty"`
}

// AppointmentFilter scopes a ListAppointments call. Date is required by the
// upstream API; PatientID of zero means all patients.
type AppointmentFilter struct {
	PatientID int
	Date      time.Time
}

// Client is the abstract directory contract the kiosk core consumes.
// Network failures propagate unmodified; retries belong to implementations,
// not callers.
type Client interface {
	ListPatients(ctx context.Context, cred Credential) ([]Patient, error)
	GetPatient(ctx context.Context, cred Credential, patientID int) (*Patient, error)
	UpdatePatient(ctx context.Context, cred Credential, patientID int, update PatientUpdate) error
	ListAppointments(ctx context.Context, cred Credential, filter AppointmentFilter) ([]Appointment, error)
	UpdateAppointmentStatus(ctx context.Context, cred Credential, appointmentID int, status string) error
	ListDoctors(ctx context.Context, cred Credential) ([]Doctor, error)
}
