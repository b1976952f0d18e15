package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// ErrExhausted возвращается, когда все попытки исчерпаны на повторяемой ошибке
var ErrExhausted = errors.New("retry: attempts exhausted")

// Policy параметры экспоненциального повтора
type Policy struct {
	MaxAttempts     uint
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultPolicy три попытки, 50ms -> 1s
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:     3,
		InitialInterval: 50 * time.Millisecond,
		MaxInterval:     time.Second,
	}
}

// Do выполняет op, повторяя его, пока retryable(err) == true и попытки не исчерпаны.
// Неповторяемая ошибка возвращается сразу и без обёртки.
// onRetry (может быть nil) вызывается перед каждой паузой.
func Do(
	ctx context.Context,
	p Policy,
	retryable func(error) bool,
	onRetry func(err error, next time.Duration),
	op func() error,
) error {
	if p.MaxAttempts == 0 {
		p.MaxAttempts = 1
	}

	b := backoff.NewExponentialBackOff()
	if p.InitialInterval > 0 {
		b.InitialInterval = p.InitialInterval
	}
	if p.MaxInterval > 0 {
		b.MaxInterval = p.MaxInterval
	}

	opts := []backoff.RetryOption{
		backoff.WithBackOff(b),
		backoff.WithMaxTries(p.MaxAttempts),
	}
	if onRetry != nil {
		opts = append(opts, backoff.WithNotify(onRetry))
	}

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		err := op()
		if err == nil {
			return struct{}{}, nil
		}
		if !retryable(err) {
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, err
	}, opts...)

	if err != nil && retryable(err) {
		return fmt.Errorf("%w: %w", ErrExhausted, err)
	}
	return err
}
