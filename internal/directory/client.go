package directory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// HTTPClient talks to the clinic-management REST API. List endpoints are
// cursor-paginated: each page carries a "next" URL until exhausted.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// Config holds configuration for the directory client.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// NewHTTPClient creates a directory client.
func NewHTTPClient(cfg Config) (*HTTPClient, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("directory: BaseURL is required")
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &HTTPClient{
		baseURL: trimSlash(cfg.BaseURL),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

func trimSlash(s string) string {
	for len(s) > 0 && s[len(s)-1] == '/' {
		s = s[:len(s)-1]
	}
	return s
}

// page is the envelope every list endpoint returns.
type page struct {
	Next    string          `json:"next"`
	Results json.RawMessage `json:"results"`
}

func (c *HTTPClient) ListPatients(ctx context.Context, cred Credential) ([]Patient, error) {
	var out []Patient
	endpoint := c.baseURL + "/api/patients"
	for endpoint != "" {
		var pg page
		if err := c.get(ctx, cred, endpoint, &pg); err != nil {
			return nil, err
		}
		var batch []Patient
		if err := json.Unmarshal(pg.Results, &batch); err != nil {
			return nil, fmt.Errorf("directory: decode patients: %w", err)
		}
		out = append(out, batch...)
		endpoint = pg.Next
	}
	return out, nil
}

func (c *HTTPClient) GetPatient(ctx context.Context, cred Credential, patientID int) (*Patient, error) {
	var p Patient
	endpoint := fmt.Sprintf("%s/api/patients/%d", c.baseURL, patientID)
	if err := c.get(ctx, cred, endpoint, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *HTTPClient) UpdatePatient(ctx context.Context, cred Credential, patientID int, update PatientUpdate) error {
	endpoint := fmt.Sprintf("%s/api/patients/%d", c.baseURL, patientID)
	return c.send(ctx, cred, http.MethodPatch, endpoint, update)
}

func (c *HTTPClient) ListAppointments(ctx context.Context, cred Credential, filter AppointmentFilter) ([]Appointment, error) {
	if filter.Date.IsZero() {
		return nil, fmt.Errorf("directory: appointment list requires a date")
	}

	params := url.Values{}
	params.Set("date", filter.Date.Format("2006-01-02"))
	if filter.PatientID != 0 {
		params.Set("patient", strconv.Itoa(filter.PatientID))
	}

	var out []Appointment
	endpoint := c.baseURL + "/api/appointments?" + params.Encode()
	for endpoint != "" {
		var pg page
		if err := c.get(ctx, cred, endpoint, &pg); err != nil {
			return nil, err
		}
		var batch []Appointment
		if err := json.Unmarshal(pg.Results, &batch); err != nil {
			return nil, fmt.Errorf("directory: decode appointments: %w", err)
		}
		out = append(out, batch...)
		endpoint = pg.Next
	}
	return out, nil
}

func (c *HTTPClient) UpdateAppointmentStatus(ctx context.Context, cred Credential, appointmentID int, status string) error {
	endpoint := fmt.Sprintf("%s/api/appointments/%d", c.baseURL, appointmentID)
	return c.send(ctx, cred, http.MethodPatch, endpoint, map[string]string{"status": status})
}

func (c *HTTPClient) ListDoctors(ctx context.Context, cred Credential) ([]Doctor, error) {
	var out []Doctor
	endpoint := c.baseURL + "/api/doctors"
	for endpoint != "" {
		var pg page
		if err := c.get(ctx, cred, endpoint, &pg); err != nil {
			return nil, err
		}
		var batch []Doctor
		if err := json.Unmarshal(pg.Results, &batch); err != nil {
			return nil, fmt.Errorf("directory: decode doctors: %w", err)
		}
		out = append(out, batch...)
		endpoint = pg.Next
	}
	return out, nil
}

func (c *HTTPClient) get(ctx context.Context, cred Credential, endpoint string, into any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("directory: failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+cred.AccessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("directory: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("directory: API error (status %d): %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(into); err != nil {
		return fmt.Errorf("directory: failed to decode response: %w", err)
	}
	return nil
}

func (c *HTTPClient) send(ctx context.Context, cred Credential, method, endpoint string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("directory: failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("directory: failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+cred.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("directory: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("directory: API error (status %d): %s", resp.StatusCode, string(respBody))
	}
	return nil
}
