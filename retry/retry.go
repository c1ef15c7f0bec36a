package retry

import (
	"context"
	"errors"
	"time"

	"go.alis.build/gsheets/alog"
)

// ErrRetryExhausted is matched by every ExhaustedError.
var ErrRetryExhausted = errors.New("retry attempts exhausted")

// ExhaustedError is returned once every attempt allowed by the Policy failed with a retryable error.
// It reports the last underlying error unchanged.
type ExhaustedError struct {
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	if e.Err == nil {
		return ErrRetryExhausted.Error()
	}
	return e.Err.Error()
}

func (e *ExhaustedError) Unwrap() error {
	return e.Err
}

func (e *ExhaustedError) Is(target error) bool {
	return target == ErrRetryExhausted
}

// Executor runs operations under a Policy.
type Executor struct {
	policy   *Policy
	classify Classifier
	sleep    func(time.Duration)
	log      *alog.Logger
}

// ExecutorOptions for the NewExecutor method.
type ExecutorOptions struct {
	Classifier Classifier
	Sleeper    func(time.Duration)
	Logger     *alog.Logger
}

// ExecutorOption is a functional option for the NewExecutor method.
type ExecutorOption func(*ExecutorOptions)

// WithClassifier replaces the default Classify function.
func WithClassifier(c Classifier) ExecutorOption {
	return func(opts *ExecutorOptions) {
		opts.Classifier = c
	}
}

// WithSleeper replaces time.Sleep, mostly useful in tests.
func WithSleeper(sleep func(time.Duration)) ExecutorOption {
	return func(opts *ExecutorOptions) {
		opts.Sleeper = sleep
	}
}

// WithLogger sets the logger used to report retries.
func WithLogger(l *alog.Logger) ExecutorOption {
	return func(opts *ExecutorOptions) {
		opts.Logger = l
	}
}

// NewExecutor creates an Executor. A nil policy falls back to DefaultPolicy.
func NewExecutor(policy *Policy, opts ...ExecutorOption) *Executor {
	options := &ExecutorOptions{
		Classifier: Classify,
		Sleeper:    time.Sleep,
	}
	for _, opt := range opts {
		opt(options)
	}
	if policy == nil {
		policy = DefaultPolicy()
	}
	return &Executor{
		policy:   policy,
		classify: options.Classifier,
		sleep:    options.Sleeper,
		log:      options.Logger,
	}
}

// Policy returns the executor's policy.
func (e *Executor) Policy() *Policy {
	return e.policy
}

// Execute runs f until it succeeds, fails with an error outside the retryable set, or runs out of
// attempts.
func (e *Executor) Execute(ctx context.Context, f func(ctx context.Context) error) error {
	_, err := Do(ctx, e, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, f(ctx)
	})
	return err
}

// Do is the generic form of Executor.Execute returning the result of f.
func Do[R any](ctx context.Context, e *Executor, f func(ctx context.Context) (R, error)) (R, error) {
	remaining := e.policy.maxAttempts
	for waits := 0; ; waits++ {
		res, err := f(ctx)
		if err == nil {
			return res, nil
		}

		c, ok := e.classify(err)
		if !ok || !e.policy.Retryable(c) {
			e.log.Debugf(ctx, "retry: %v is not retryable: %v", c, err)
			return res, err
		}

		if remaining--; remaining <= 0 {
			e.log.Warnf(ctx, "retry: giving up after %d attempts: %v", e.policy.maxAttempts, err)
			return res, &ExhaustedError{Attempts: e.policy.maxAttempts, Err: err}
		}

		delay := e.policy.Delay(waits)
		e.log.Warnf(ctx, "retry: %v, %d attempts left, waiting %s", c, remaining, delay)
		e.sleep(delay)
	}
}
