package resilience

import "context"

// Policy combines a retry schedule with a circuit breaker. Every retry
// attempt counts against the breaker, so a dead service trips it quickly.
type Policy struct {
	Retry   RetryConfig
	Breaker *CircuitBreaker
}

// Run executes fn under p. A nil breaker means retries only.
func Run[T any](ctx context.Context, p Policy, fn func(ctx context.Context) (T, error)) (T, error) {
	attempt := fn
	if p.Breaker != nil {
		attempt = func(ctx context.Context) (T, error) {
			return ExecuteVal(ctx, p.Breaker, fn)
		}
	}
	return DoVal(ctx, p.Retry, attempt)
}
