// Package health runs liveness and readiness checks and serves them as
// JSON probes.
package health

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/lewisedginton/zapbot/pkg/logger"
)

// Check is a single named probe. Check returns nil when healthy.
type Check interface {
	Name() string
	Check(ctx context.Context) error
}

// CheckFunc adapts a function to the Check interface.
type CheckFunc struct {
	name string
	fn   func(context.Context) error
}

// NewCheckFunc creates a new CheckFunc with the given name and function.
func NewCheckFunc(name string, fn func(context.Context) error) *CheckFunc {
	return &CheckFunc{name: name, fn: fn}
}

// Name returns the name of this check.
func (c *CheckFunc) Name() string { return c.name }

// Check executes the check function.
func (c *CheckFunc) Check(ctx context.Context) error { return c.fn(ctx) }

// CheckResult is the outcome of one check execution.
type CheckResult struct {
	Name    string
	Healthy bool
	Error   string
	Latency time.Duration
}

// Status aggregates the results of one probe.
type Status struct {
	Healthy bool
	Checks  []CheckResult
}

// Checker holds the liveness and readiness checks of a process.
type Checker struct {
	mu               sync.Mutex
	liveness         []Check
	readiness        []Check
	failures         map[string]int
	timeout          time.Duration
	failureThreshold int
	logger           logger.Logger
}

// Option configures a Checker.
type Option func(*Checker)

// WithTimeout bounds each check. Default is 5 seconds.
func WithTimeout(d time.Duration) Option {
	return func(c *Checker) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the logger for failed checks.
func WithLogger(l logger.Logger) Option {
	return func(c *Checker) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithFailureThreshold sets how many consecutive failures a check needs
// before it is reported unhealthy. Default is 1.
func WithFailureThreshold(n int) Option {
	return func(c *Checker) {
		if n > 0 {
			c.failureThreshold = n
		}
	}
}

// New creates a Checker.
func New(opts ...Option) *Checker {
	c := &Checker{
		failures:         make(map[string]int),
		timeout:          5 * time.Second,
		failureThreshold: 1,
		logger:           logger.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AddLivenessCheck registers a check that decides whether the process
// should be restarted.
func (c *Checker) AddLivenessCheck(check Check) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.liveness = append(c.liveness, check)
}

// AddReadinessCheck registers a check that decides whether the process
// should receive traffic.
func (c *Checker) AddReadinessCheck(check Check) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.readiness = append(c.readiness, check)
}

// CheckLiveness runs the liveness checks.
func (c *Checker) CheckLiveness(ctx context.Context) (*Status, error) {
	c.mu.Lock()
	checks := append([]Check(nil), c.liveness...)
	c.mu.Unlock()
	return c.run(ctx, checks)
}

// CheckReadiness runs the readiness checks.
func (c *Checker) CheckReadiness(ctx context.Context) (*Status, error) {
	c.mu.Lock()
	checks := append([]Check(nil), c.readiness...)
	c.mu.Unlock()
	return c.run(ctx, checks)
}

// run executes checks concurrently. With no checks the probe is healthy.
func (c *Checker) run(ctx context.Context, checks []Check) (*Status, error) {
	status := &Status{Healthy: true, Checks: make([]CheckResult, len(checks))}

	var wg sync.WaitGroup
	for i, check := range checks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			status.Checks[i] = c.runOne(ctx, check)
		}()
	}
	wg.Wait()

	var errs *multierror.Error
	for _, result := range status.Checks {
		if !result.Healthy {
			status.Healthy = false
			errs = multierror.Append(errs, fmt.Errorf("%s: %s", result.Name, result.Error))
		}
	}
	return status, errs.ErrorOrNil()
}

func (c *Checker) runOne(parent context.Context, check Check) CheckResult {
	ctx, cancel := context.WithTimeout(parent, c.timeout)
	defer cancel()

	start := time.Now()
	err := check.Check(ctx)
	result := CheckResult{Name: check.Name(), Healthy: true, Latency: time.Since(start)}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err == nil {
		c.failures[result.Name] = 0
		return result
	}

	c.failures[result.Name]++
	failures := c.failures[result.Name]
	if failures < c.failureThreshold {
		c.logger.Debug("Health check failed below threshold",
			logger.StringField("check", result.Name),
			logger.ErrorField(err),
			logger.IntField("failures", failures))
		return result
	}

	result.Healthy = false
	result.Error = err.Error()
	c.logger.Warn("Health check failed",
		logger.StringField("check", result.Name),
		logger.ErrorField(err),
		logger.IntField("failures", failures),
		logger.DurationField("latency", result.Latency))
	return result
}
