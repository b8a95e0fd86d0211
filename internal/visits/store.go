package visits

import (
	"context"
	"sync"
	"time"
)

// Store is the durable home of visit records. Implementations enforce the
// appointment-id uniqueness invariant and make Toggle atomic so two
// concurrent presses of the timer button cannot double-advance a visit.
type Store interface {
	// GetOrCreate returns the visit for the appointment, creating it in the
	// Arrived state (arrival time = now) when absent. created reports
	// whether this call created the record.
	GetOrCreate(ctx context.Context, appointmentID, patientID int, scheduledTime *time.Time) (v *Visit, created bool, err error)

	// Get returns the visit for the appointment or ErrVisitNotFound.
	Get(ctx context.Context, appointmentID int) (*Visit, error)

	// Toggle advances the visit exactly one lifecycle step, stamping the
	// corresponding timestamp. ErrVisitNotFound if absent, ErrInvalidState
	// if the visit is Finished or otherwise not toggleable.
	Toggle(ctx context.Context, appointmentID int) (*Visit, error)

	// ListByStatus returns all visits currently in the given status.
	ListByStatus(ctx context.Context, status Status) ([]*Visit, error)
}

// MemoryStore keeps visits in a mutex-guarded map. Used in tests and when
// the kiosk boots without DATABASE_URL configured.
type MemoryStore struct {
	mu     sync.RWMutex
	visits map[int]*Visit
	now    func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		visits: make(map[int]*Visit),
		now:    time.Now,
	}
}

// NewMemoryStoreWithClock allows tests to control the transition clock.
func NewMemoryStoreWithClock(now func() time.Time) *MemoryStore {
	s := NewMemoryStore()
	if now != nil {
		s.now = now
	}
	return s
}

func (s *MemoryStore) GetOrCreate(ctx context.Context, appointmentID, patientID int, scheduledTime *time.Time) (*Visit, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := s.visits[appointmentID]; ok {
		return v.clone(), false, nil
	}

	arrived := s.now().UTC()
	v := &Visit{
		AppointmentID: appointmentID,
		PatientID:     patientID,
		Status:        StatusArrived,
		ScheduledTime: scheduledTime,
		ArrivalTime:   &arrived,
	}
	s.visits[appointmentID] = v
	return v.clone(), true, nil
}

func (s *MemoryStore) Get(ctx context.Context, appointmentID int) (*Visit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.visits[appointmentID]
	if !ok {
		return nil, ErrVisitNotFound
	}
	return v.clone(), nil
}

// Toggle holds the write lock across the read-modify-write, so it is
// serialized per store rather than per record. Fine at kiosk scale.
func (s *MemoryStore) Toggle(ctx context.Context, appointmentID int) (*Visit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.visits[appointmentID]
	if !ok {
		return nil, ErrVisitNotFound
	}

	next, err := Next(v.Status)
	if err != nil {
		return nil, err
	}

	stamp := s.now().UTC()
	switch next {
	case StatusInSession:
		v.StartTime = &stamp
	case StatusFinished:
		v.EndTime = &stamp
	}
	v.Status = next
	return v.clone(), nil
}

func (s *MemoryStore) ListByStatus(ctx context.Context, status Status) ([]*Visit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Visit
	for _, v := range s.visits {
		if v.Status == status {
			out = append(out, v.clone())
		}
	}
	return out, nil
}

func (v *Visit) clone() *Visit {
	cp := *v
	return &cp
}
