package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/noah-isme/pbl-go-api/internal/middleware"
)

// AchievementUnlockedEvent is broadcast after an unlock has been committed.
type AchievementUnlockedEvent struct {
	Source        string    `json:"source"`
	StudentID     uint      `json:"student_id"`
	AchievementID string    `json:"achievement_id"`
	XPAwarded     int       `json:"xp_awarded"`
	StudentXP     int       `json:"student_xp"`
	StudentLevel  int       `json:"student_level"`
	Cascaded      bool      `json:"cascaded"`
	UnlockedAt    time.Time `json:"unlocked_at"`
}

// AchievementEventPublisher delivers unlock events to interested consumers.
type AchievementEventPublisher interface {
	PublishUnlocked(ctx context.Context, event AchievementUnlockedEvent) error
}

type natsAchievementPublisher struct {
	conn    *nats.Conn
	subject string
	nodeID  string
}

// UnlockedSubject returns the subject unlock events are published on.
func UnlockedSubject(base string) string {
	return subjectFor(base, "achievements.unlocked")
}

// ProgressSubject returns the subject progress events are consumed from.
func ProgressSubject(base string) string {
	return subjectFor(base, "progress.track")
}

func subjectFor(base, suffix string) string {
	base = strings.Trim(strings.ReplaceAll(strings.TrimSpace(base), ":", "."), ".")
	if base == "" {
		return suffix
	}
	return base + "." + suffix
}

// NewNATSAchievementPublisher publishes unlock events on <base>.achievements.unlocked.
// A nil connection yields a nil publisher, which disables publishing.
func NewNATSAchievementPublisher(conn *nats.Conn, subjectBase string) AchievementEventPublisher {
	if conn == nil {
		return nil
	}
	return &natsAchievementPublisher{
		conn:    conn,
		subject: UnlockedSubject(subjectBase),
		nodeID:  uuid.NewString(),
	}
}

func (p *natsAchievementPublisher) PublishUnlocked(ctx context.Context, event AchievementUnlockedEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	event.Source = p.nodeID
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	msg := nats.NewMsg(p.subject)
	msg.Data = payload
	if correlation := middleware.CorrelationIDFromContext(ctx); correlation != "" {
		msg.Header.Set(middleware.CorrelationHeader, correlation)
	}
	return p.conn.PublishMsg(msg)
}
