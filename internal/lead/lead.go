package lead

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Simplici0/nebula-roi/internal/roi"
)

// ErrEmptyEmail is returned when a lead is submitted without an email.
var ErrEmptyEmail = errors.New("email is required")

// Lead is a callback request captured from the calculator.
type Lead struct {
	ID        int64     `db:"id"`
	Email     string    `db:"email"`
	Mode      roi.Mode  `db:"mode"`
	Savings   float64   `db:"savings"`
	CreatedAt time.Time `db:"created_at"`
}

// New builds a lead from the calculator state at submission time. The email
// is handed on as typed; only its presence is checked.
func New(state roi.InputState, result roi.Result, now time.Time) (Lead, error) {
	if strings.TrimSpace(state.Email) == "" {
		return Lead{}, ErrEmptyEmail
	}
	return Lead{
		Email:     state.Email,
		Mode:      state.Mode,
		Savings:   result.Savings,
		CreatedAt: now.UTC(),
	}, nil
}

// Sink receives captured leads.
type Sink interface {
	Submit(ctx context.Context, l Lead) error
}

// MultiSink hands a lead to a primary sink and then to best-effort followers.
// Only a primary failure fails the submission; follower errors are logged.
type MultiSink struct {
	primary   Sink
	followers []Sink
	logger    *logrus.Logger
}

func NewMultiSink(logger *logrus.Logger, primary Sink, followers ...Sink) *MultiSink {
	return &MultiSink{primary: primary, followers: followers, logger: logger}
}

func (m *MultiSink) Submit(ctx context.Context, l Lead) error {
	if err := m.primary.Submit(ctx, l); err != nil {
		return err
	}

	for _, sink := range m.followers {
		if err := sink.Submit(ctx, l); err != nil {
			m.logger.WithError(err).WithField("email", l.Email).Warn("lead follower sink failed")
		}
	}
	return nil
}

// LogSink records leads in the application log.
type LogSink struct {
	logger *logrus.Logger
}

func NewLogSink(logger *logrus.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Submit(_ context.Context, l Lead) error {
	s.logger.WithFields(logrus.Fields{
		"email":   l.Email,
		"mode":    l.Mode,
		"savings": l.Savings,
	}).Info("lead captured")
	return nil
}
