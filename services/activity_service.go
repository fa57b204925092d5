package services

import (
	"context"
	"fmt"
	"time"

	"fitQuestAPI/internal/activity"

	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

// ActivityService mirrors goal mutations to the activity_log table. Events
// flow through a buffered channel drained by a background worker; when the
// channel is full the event is dropped with a log line, never blocking or
// failing the local mutation.
type ActivityService struct {
	db    *pgxpool.Pool
	queue chan queuedEvent
	done  chan struct{}
}

type queuedEvent struct {
	clerkID string
	event   activity.Event
}

func NewActivityService(db *pgxpool.Pool) *ActivityService {
	s := &ActivityService{
		db:    db,
		queue: make(chan queuedEvent, 256),
		done:  make(chan struct{}),
	}
	go s.worker()
	return s
}

func (s *ActivityService) worker() {
	defer close(s.done)
	for q := range s.queue {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := s.insert(ctx, q); err != nil {
			log.Printf("activity sync: failed to mirror event for user %s: %v", q.clerkID, err)
		}
		cancel()
	}
}

func (s *ActivityService) insert(ctx context.Context, q queuedEvent) error {
	_, err := s.db.Exec(ctx, `
        INSERT INTO activity_log (clerk_id, goal_id, kind, calories, action, occurred_at)
        VALUES ($1, $2, $3, $4, $5, $6)
    `, q.clerkID, q.event.GoalID, string(q.event.Kind), q.event.Calories, string(q.event.Action), q.event.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to insert activity event: %w", err)
	}
	return nil
}

// SinkFor returns an activity.Sink bound to one user.
func (s *ActivityService) SinkFor(clerkID string) activity.Sink {
	return &userSink{service: s, clerkID: clerkID}
}

// Close stops accepting events and waits for the worker to drain the queue.
func (s *ActivityService) Close() {
	close(s.queue)
	<-s.done
}

type userSink struct {
	service *ActivityService
	clerkID string
}

func (u *userSink) Publish(event activity.Event) {
	select {
	case u.service.queue <- queuedEvent{clerkID: u.clerkID, event: event}:
	default:
		log.Printf("activity sync: queue full, dropping %s event for user %s", event.Action, u.clerkID)
	}
}
