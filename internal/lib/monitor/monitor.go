// Package monitor runs named dependency checks on a cron schedule and
// keeps the latest result of each, for logs, New Relic and /status.
package monitor

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/deppfellow/bridge-api/internal/config"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

// CheckFunc probes one dependency. A nil error means healthy.
type CheckFunc func(ctx context.Context) error

// Result is the outcome of the last run of a check.
type Result struct {
	Name      string        `json:"name"`
	Status    string        `json:"status"`
	Error     string        `json:"error,omitempty"`
	Duration  time.Duration `json:"-"`
	CheckedAt time.Time     `json:"checked_at"`

	// ResponseTime mirrors Duration for JSON output.
	ResponseTime string `json:"response_time"`
}

type check struct {
	name string
	fn   CheckFunc
}

// Monitor schedules checks and remembers their results.
type Monitor struct {
	cfg    config.HealthChecksConfig
	logger zerolog.Logger
	nrApp  *newrelic.Application

	cron    *cron.Cron
	entryID cron.EntryID

	mu      sync.RWMutex
	checks  []check
	results map[string]Result
	running bool
}

// New creates a monitor. nrApp may be nil.
func New(cfg config.HealthChecksConfig, logger *zerolog.Logger, nrApp *newrelic.Application) *Monitor {
	l := zerolog.Nop()
	if logger != nil {
		l = logger.With().Str("component", "monitor").Logger()
	}

	return &Monitor{
		cfg:     cfg,
		logger:  l,
		nrApp:   nrApp,
		cron:    cron.New(),
		results: make(map[string]Result),
	}
}

// Register adds a check if its name is enabled in config. It reports
// whether the check was added.
func (m *Monitor) Register(name string, fn CheckFunc) bool {
	if !slices.Contains(m.cfg.Checks, name) {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for i, c := range m.checks {
		if c.name == name {
			m.checks[i].fn = fn
			return true
		}
	}
	m.checks = append(m.checks, check{name: name, fn: fn})
	return true
}

// Start schedules the checks every configured interval. It is a no-op
// when health checks are disabled or nothing is registered.
func (m *Monitor) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running || !m.cfg.Enabled || len(m.checks) == 0 {
		return nil
	}

	schedule := fmt.Sprintf("@every %s", m.cfg.Interval)
	id, err := m.cron.AddFunc(schedule, m.scheduledRun)
	if err != nil {
		return fmt.Errorf("failed to schedule health checks: %w", err)
	}

	m.entryID = id
	m.cron.Start()
	m.running = true

	m.logger.Info().
		Str("schedule", schedule).
		Int("checks", len(m.checks)).
		Msg("health check monitor started")

	return nil
}

// Stop halts the scheduler and waits for a running pass to finish or for
// ctx to expire.
func (m *Monitor) Stop(ctx context.Context) error {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return nil
	}
	m.running = false
	m.mu.Unlock()

	done := m.cron.Stop()
	select {
	case <-done.Done():
		m.logger.Info().Msg("health check monitor stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("health check monitor did not stop: %w", ctx.Err())
	}
}

func (m *Monitor) scheduledRun() {
	m.RunOnce(context.Background())
}

// RunOnce executes every registered check sequentially, each bounded by the
// configured timeout, stores and returns the results.
func (m *Monitor) RunOnce(ctx context.Context) []Result {
	m.mu.RLock()
	checks := slices.Clone(m.checks)
	m.mu.RUnlock()

	results := make([]Result, 0, len(checks))
	for _, c := range checks {
		results = append(results, m.run(ctx, c))
	}

	m.mu.Lock()
	for _, r := range results {
		m.results[r.Name] = r
	}
	m.mu.Unlock()

	return results
}

func (m *Monitor) run(ctx context.Context, c check) Result {
	timeout := m.cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	err := c.fn(ctx)
	elapsed := time.Since(start)

	result := Result{
		Name:         c.name,
		Status:       StatusHealthy,
		Duration:     elapsed,
		ResponseTime: elapsed.String(),
		CheckedAt:    start.UTC(),
	}

	if err != nil {
		result.Status = StatusUnhealthy
		result.Error = err.Error()

		m.logger.Error().
			Err(err).
			Str("check", c.name).
			Dur("response_time", elapsed).
			Msg("health check failed")

		if m.nrApp != nil {
			m.nrApp.RecordCustomEvent("HealthCheckError", map[string]interface{}{
				"check_type":       c.name,
				"operation":        "scheduled_health_check",
				"error_type":       c.name + "_unhealthy",
				"response_time_ms": elapsed.Milliseconds(),
				"error_message":    err.Error(),
			})
		}
		return result
	}

	m.logger.Debug().
		Str("check", c.name).
		Dur("response_time", elapsed).
		Msg("health check passed")

	return result
}

// Results returns the most recent result of every check that has run, in
// registration order.
func (m *Monitor) Results() []Result {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Result, 0, len(m.results))
	for _, c := range m.checks {
		if r, ok := m.results[c.name]; ok {
			out = append(out, r)
		}
	}
	return out
}

// NextRun returns when the next scheduled pass is due, or the zero time.
func (m *Monitor) NextRun() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.running {
		return time.Time{}
	}
	return m.cron.Entry(m.entryID).Next
}
