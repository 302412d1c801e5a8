package health

import (
	"context"
	"fmt"
	"os"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates total failure.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	store    StorePinger
	binaries []string
	stat     func(path string) error
}

// New creates a Service. store can be nil when results are not kept; binaries are
// the executable paths that must stay present.
func New(store StorePinger, binaries []string) *Service {
	return &Service{store: store, binaries: binaries, stat: statExecutable}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	if s.store != nil {
		if err := s.store.Ping(ctx); err != nil {
			checks["store"] = CheckError
		} else {
			checks["store"] = CheckOK
		}
	}

	checks["binaries"] = CheckOK
	for _, b := range s.binaries {
		if err := s.stat(b); err != nil {
			checks["binaries"] = CheckError
			break
		}
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}
	// Without its binaries the service cannot answer any search.
	if checks["binaries"] == CheckError {
		status = Unhealthy
	}

	return Report{Status: status, Checks: checks}
}

func statExecutable(path string) error {
	fi, err := os.Stat(path)
	if err != nil {
		return err
	}
	if fi.IsDir() || fi.Mode().Perm()&0o111 == 0 {
		return fmt.Errorf("%s is not executable", path)
	}
	return nil
}
