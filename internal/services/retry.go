package services

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	retryAttempts = 3
	retryBackoff  = 50 * time.Millisecond
)

// retryTransient runs fn until it succeeds, fails with a non-transient
// error, or runs out of attempts. Only safe for idempotent work.
func retryTransient(ctx context.Context, op string, fn func() error) error {
	var err error
	for attempt := 1; attempt <= retryAttempts; attempt++ {
		err = fn()
		if err == nil || !errors.Is(err, ErrTransient) {
			return err
		}
		logrus.WithError(err).WithFields(logrus.Fields{
			"op":      op,
			"attempt": attempt,
		}).Warn("transient store error, retrying")

		select {
		case <-ctx.Done():
			return err
		case <-time.After(time.Duration(attempt) * retryBackoff):
		}
	}
	return err
}
