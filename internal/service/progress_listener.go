package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/noah-isme/pbl-go-api/internal/dto"
	"github.com/noah-isme/pbl-go-api/internal/middleware"
	"github.com/noah-isme/pbl-go-api/internal/observability"
)

const (
	progressQueueGroup   = "pbl-progress"
	progressEventTimeout = 10 * time.Second
)

// ProgressListener consumes progress events published by other services and
// feeds them to the gamification tracker.
type ProgressListener struct {
	conn    *nats.Conn
	subject string
	tracker GamificationService
	logger  zerolog.Logger
}

// NewProgressListener subscribes to <base>.progress.track once started.
func NewProgressListener(conn *nats.Conn, subjectBase string, tracker GamificationService, logger zerolog.Logger) *ProgressListener {
	return &ProgressListener{
		conn:    conn,
		subject: ProgressSubject(subjectBase),
		tracker: tracker,
		logger:  logger.With().Str("component", "progress_listener").Logger(),
	}
}

// Start joins the queue group and drains the subscription when ctx is cancelled.
func (l *ProgressListener) Start(ctx context.Context) error {
	if l.conn == nil {
		return nil
	}

	sub, err := l.conn.QueueSubscribe(l.subject, progressQueueGroup, func(msg *nats.Msg) {
		l.handleMessage(ctx, msg)
	})
	if err != nil {
		return err
	}
	l.logger.Info().Str("subject", l.subject).Msg("listening for progress events")

	go func() {
		<-ctx.Done()
		if err := sub.Drain(); err != nil {
			l.logger.Warn().Err(err).Msg("failed to drain progress subscription")
		}
	}()
	return nil
}

// handleMessage returns the metric label describing how the event was handled.
// Messages delivered while the subscription drains still run to completion.
func (l *ProgressListener) handleMessage(ctx context.Context, msg *nats.Msg) string {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), progressEventTimeout)
	defer cancel()

	if msg.Header != nil {
		ctx = middleware.ContextWithCorrelation(ctx, msg.Header.Get(middleware.CorrelationHeader))
	}
	result := l.process(ctx, msg.Data)
	observability.ProgressEventsConsumed().WithLabelValues(result).Inc()
	return result
}

func (l *ProgressListener) process(ctx context.Context, payload []byte) string {
	var request dto.TrackProgressRequest
	if err := json.Unmarshal(payload, &request); err != nil {
		l.logger.Warn().Err(err).Msg("invalid progress event payload")
		return "invalid"
	}

	response, err := l.tracker.TrackProgress(ctx, request, SystemActor)
	if err != nil {
		l.logger.Error().Err(err).
			Str("correlation_id", middleware.CorrelationIDFromContext(ctx)).
			Uint("student_id", request.StudentID).
			Str("achievement_id", request.AchievementID).
			Msg("failed to track progress event")
		return "error"
	}

	return response.Outcome
}
