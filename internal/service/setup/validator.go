// internal/service/setup/validator.go

package setup

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	projectURLScheme = "https://"
	projectURLDomain = ".supabase.co"
	anonKeyPrefix    = "eyJ"
	anonKeyMinLength = 100
)

// Credentials are the values pasted into the backend configuration form
type Credentials struct {
	ProjectURL  string `json:"project_url"`
	AnonKey     string `json:"anon_key"`
	DatabaseURL string `json:"database_url,omitempty"`
}

// FieldError describes one rejected form field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate applies the client-side pattern checks to the credentials.
// The returned error joins one *FieldError per rejected field.
func Validate(c Credentials) error {
	var errs []error

	url := strings.TrimSpace(c.ProjectURL)
	switch {
	case url == "":
		errs = append(errs, &FieldError{Field: "project_url", Message: "is required"})
	case !strings.HasPrefix(url, projectURLScheme):
		errs = append(errs, &FieldError{Field: "project_url", Message: "must start with https://"})
	case !strings.Contains(url, projectURLDomain):
		errs = append(errs, &FieldError{Field: "project_url", Message: "must be a supabase.co project URL"})
	}

	key := strings.TrimSpace(c.AnonKey)
	switch {
	case key == "":
		errs = append(errs, &FieldError{Field: "anon_key", Message: "is required"})
	case !strings.HasPrefix(key, anonKeyPrefix):
		errs = append(errs, &FieldError{Field: "anon_key", Message: "must be a JWT starting with eyJ"})
	case len(key) < anonKeyMinLength:
		errs = append(errs, &FieldError{Field: "anon_key", Message: fmt.Sprintf("must be at least %d characters", anonKeyMinLength)})
	}

	return errors.Join(errs...)
}

// FieldErrors unpacks the errors returned by Validate
func FieldErrors(err error) []FieldError {
	if err == nil {
		return nil
	}

	var out []FieldError
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			out = append(out, FieldErrors(e)...)
		}
		return out
	}

	var fe *FieldError
	if errors.As(err, &fe) {
		out = append(out, *fe)
	}
	return out
}

// Prober checks that a database is reachable
type Prober interface {
	Probe(ctx context.Context, databaseURL string) error
}

// Service runs validation and optional connectivity checks
type Service struct {
	prober  Prober
	timeout time.Duration
}

// NewService creates a new setup service
func NewService(prober Prober, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Service{
		prober:  prober,
		timeout: timeout,
	}
}

// ProbeEnabled reports whether Check dials database URLs
func (s *Service) ProbeEnabled() bool {
	return s.prober != nil
}

// Check validates credentials and, when a database URL is given, probes it
func (s *Service) Check(ctx context.Context, c Credentials) error {
	if err := Validate(c); err != nil {
		return err
	}

	if c.DatabaseURL == "" || s.prober == nil {
		return nil
	}

	probeCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.prober.Probe(probeCtx, c.DatabaseURL); err != nil {
		return fmt.Errorf("database probe failed: %w", err)
	}

	return nil
}
