package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func failN(t *testing.T, cb *CircuitBreaker, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		_ = cb.Execute(context.Background(), func(context.Context) error { return errBoom })
	}
}

func TestCircuitBreaker_OpensAfterThreshold(t *testing.T) {
	t.Parallel()

	cb := NewCircuitBreaker(CircuitBreakerConfig{Name: "anthropic", FailureThreshold: 3, ResetTimeout: time.Minute})
	failN(t, cb, 3)
	assert.Equal(t, CircuitOpen, cb.State())

	err := cb.Execute(context.Background(), func(context.Context) error {
		t.Error("should not be called when circuit is open")
		return nil
	})
	require.ErrorIs(t, err, ErrCircuitOpen)
	assert.Contains(t, err.Error(), "anthropic")
}

func TestCircuitBreaker_SuccessResetsFailures(t *testing.T) {
	t.Parallel()

	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 3})
	failN(t, cb, 2)
	assert.Equal(t, 2, cb.Failures())

	require.NoError(t, cb.Execute(context.Background(), func(context.Context) error { return nil }))
	assert.Equal(t, 0, cb.Failures())
	assert.Equal(t, CircuitClosed, cb.State())
}

func TestCircuitBreaker_HalfOpenProbe(t *testing.T) {
	t.Parallel()

	var transitions []string
	now := time.Now()
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		Name:             "firecrawl",
		FailureThreshold: 1,
		ResetTimeout:     time.Second,
		OnStateChange: func(_ string, from, to CircuitState) {
			transitions = append(transitions, from.String()+"->"+to.String())
		},
	})
	cb.nowFunc = func() time.Time { return now }

	failN(t, cb, 1)
	assert.Equal(t, CircuitOpen, cb.State())

	now = now.Add(2 * time.Second)
	assert.Equal(t, CircuitHalfOpen, cb.State())

	// A failed probe reopens.
	failN(t, cb, 1)
	assert.Equal(t, CircuitOpen, cb.State())

	now = now.Add(2 * time.Second)
	require.NoError(t, cb.Execute(context.Background(), func(context.Context) error { return nil }))
	assert.Equal(t, CircuitClosed, cb.State())

	assert.Equal(t, []string{
		"closed->open",
		"open->half-open",
		"half-open->open",
		"open->half-open",
		"half-open->closed",
	}, transitions)
}

func TestCircuitBreaker_CancellationDoesNotTrip(t *testing.T) {
	t.Parallel()

	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 1})
	_ = cb.Execute(context.Background(), func(context.Context) error { return context.Canceled })
	assert.Equal(t, CircuitClosed, cb.State())
}

func TestCircuitState_String(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "closed", CircuitClosed.String())
	assert.Equal(t, "open", CircuitOpen.String())
	assert.Equal(t, "half-open", CircuitHalfOpen.String())
	assert.Equal(t, "unknown", CircuitState(9).String())
}

func TestRun_RetriesThroughBreaker(t *testing.T) {
	t.Parallel()

	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 2, ResetTimeout: time.Minute})
	p := Policy{Retry: fastRetry(5), Breaker: cb}

	var calls int
	_, err := Run(context.Background(), p, func(context.Context) (string, error) {
		calls++
		return "", NewTransientError(errBoom, 503)
	})
	require.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, 2, calls)
}

func TestRun_NoBreaker(t *testing.T) {
	t.Parallel()

	got, err := Run(context.Background(), Policy{Retry: fastRetry(1)}, func(context.Context) (int, error) {
		return 7, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 7, got)
}

func TestFromCircuitConfig(t *testing.T) {
	t.Parallel()

	cfg := FromCircuitConfig("anthropic", 7, 10)
	assert.Equal(t, "anthropic", cfg.Name)
	assert.Equal(t, 7, cfg.FailureThreshold)
	assert.Equal(t, 10*time.Second, cfg.ResetTimeout)
}
