package retry

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/fjord-labs/materialize/lib/jitter"
)

type RetryConfig struct {
	jitterBaseMs   int
	jitterMaxMs    int
	maxAttempts    int
	isRetryableErr func(err error) bool
}

func NewJitterRetryConfig(baseMs, maxMs, maxAttempts int, isRetryableErr func(err error) bool) (RetryConfig, error) {
	if baseMs < 0 {
		return RetryConfig{}, fmt.Errorf("jitter base must be >= 0")
	}

	if maxMs < 0 {
		return RetryConfig{}, fmt.Errorf("jitter max must be >= 0")
	}

	if maxAttempts < 1 {
		return RetryConfig{}, fmt.Errorf("max attempts must be >= 1")
	}

	if isRetryableErr == nil {
		isRetryableErr = func(_ error) bool { return true }
	}

	return RetryConfig{
		jitterBaseMs:   baseMs,
		jitterMaxMs:    maxMs,
		maxAttempts:    maxAttempts,
		isRetryableErr: isRetryableErr,
	}, nil
}

func (r RetryConfig) sleepIfNecessary(attempt int, err error) {
	if attempt > 0 {
		sleepDuration := jitter.Jitter(r.jitterBaseMs, r.jitterMaxMs, attempt)
		if sleepDuration > 0 {
			slog.Info("An error occurred, retrying after delay...",
				slog.Duration("sleep", sleepDuration),
				slog.Any("attemptsLeft", r.maxAttempts-attempt),
				slog.Any("err", err),
			)
			time.Sleep(sleepDuration)
		} else {
			slog.Info("An error occurred, retrying...",
				slog.Any("attemptsLeft", r.maxAttempts-attempt),
				slog.Any("err", err),
			)
		}
	}
}

func WithRetries(retryCfg RetryConfig, f func(attempt int, err error) error) error {
	var err error
	for attempt := 0; attempt < retryCfg.maxAttempts; attempt++ {
		retryCfg.sleepIfNecessary(attempt, err)
		err = f(attempt, err)
		if err == nil {
			return nil
		} else if !retryCfg.isRetryableErr(err) {
			break
		}
	}
	return err
}

func WithRetriesAndResult[T any](retryCfg RetryConfig, f func(attempt int, err error) (T, error)) (T, error) {
	var result T
	var err error
	for attempt := 0; attempt < retryCfg.maxAttempts; attempt++ {
		retryCfg.sleepIfNecessary(attempt, err)
		result, err = f(attempt, err)
		if err == nil {
			return result, nil
		} else if !retryCfg.isRetryableErr(err) {
			break
		}
	}
	return result, err
}
