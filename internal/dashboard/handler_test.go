package dashboard

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/oakpoint-health/checkin-kiosk/internal/directory"
	"github.com/oakpoint-health/checkin-kiosk/internal/visits"
)

func TestGetSnapshot(t *testing.T) {
	store := visits.NewMemoryStore()
	seedVisit(t, store, 41, 6, 0)
	dir := &fakeDirectory{patients: []directory.Patient{{ID: 6, FirstName: "Amy", LastName: "Pond"}}}

	agg := newAggregator(store, dir, time.Now())
	h := NewHandler(agg, nil)

	req := httptest.NewRequest(http.MethodGet, "/staff/dashboard", nil)
	rec := httptest.NewRecorder()
	h.GetSnapshot(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	var snap Snapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(snap.Arrived) != 1 || snap.Arrived[0].FirstName != "Amy" {
		t.Errorf("arrived = %+v", snap.Arrived)
	}
	if snap.Completed.HasData {
		t.Error("no visits finished, HasData should be false")
	}
}

func TestGetSnapshot_UpstreamFailure(t *testing.T) {
	store := visits.NewMemoryStore()
	dir := &fakeDirectory{listPatientsErr: http.ErrHandlerTimeout}

	agg := newAggregator(store, dir, time.Now())
	h := NewHandler(agg, nil)

	rec := httptest.NewRecorder()
	h.GetSnapshot(rec, httptest.NewRequest(http.MethodGet, "/staff/dashboard", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}
