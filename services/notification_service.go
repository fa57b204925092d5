package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"fitQuestAPI/internal/notification"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

type NotificationService struct {
	db         *pgxpool.Pool
	dispatcher *NotificationDispatcher
}

func NewNotificationService(db *pgxpool.Pool) *NotificationService {
	service := &NotificationService{db: db}
	service.dispatcher = NewNotificationDispatcher(service)
	return service
}

// SetPushProvider injects the FCM provider from main.go.
func (s *NotificationService) SetPushProvider(provider PushNotificationProvider) {
	s.dispatcher.SetPushProvider(provider)
}

func (s *NotificationService) getUserID(ctx context.Context, clerkID string) (uuid.UUID, error) {
	var userID uuid.UUID
	err := s.db.QueryRow(ctx, "SELECT id FROM users WHERE clerk_id = $1", clerkID).Scan(&userID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("user not found for clerk_id %s: %w", clerkID, err)
	}
	return userID, nil
}

func (s *NotificationService) CreateNotification(ctx context.Context, req *notification.CreateNotificationRequest) (*notification.Notification, error) {
	prefs, err := s.getPreferencesByUUID(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	dataJSON, _ := json.Marshal(req.Data)

	query := `
		INSERT INTO notifications (id, user_id, type, title, body, data, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING id, user_id, type, title, body, created_at
	`

	notif := &notification.Notification{Data: req.Data}
	err = s.db.QueryRow(
		ctx, query,
		uuid.New(), req.UserID, req.Type, req.Title, req.Body, dataJSON,
	).Scan(&notif.ID, &notif.UserID, &notif.Type, &notif.Title, &notif.Body, &notif.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}

	go s.dispatcher.DispatchNotification(context.Background(), notif, prefs)

	return notif, nil
}

// NotifyGoalAchieved implements GoalNotifier: pushed the moment the user's
// completed calories first reach the daily target.
func (s *NotificationService) NotifyGoalAchieved(ctx context.Context, clerkID string, calories float64, target int) {
	userID, err := s.getUserID(ctx, clerkID)
	if err != nil {
		log.Printf("goal achieved notification skipped: %v", err)
		return
	}

	_, err = s.CreateNotification(ctx, &notification.CreateNotificationRequest{
		UserID: userID,
		Type:   notification.NotificationGoalAchieved,
		Title:  "Daily goal reached!",
		Body:   fmt.Sprintf("You burned %.0f kcal today and hit your %d kcal goal.", calories, target),
		Data:   map[string]any{"calories": calories, "target": target},
	})
	if err != nil {
		log.Printf("failed to create goal achieved notification for %s: %v", clerkID, err)
	}
}

// NotifyStreakMilestone implements GoalNotifier: pushed when an achieved day
// extends the streak to a milestone length.
func (s *NotificationService) NotifyStreakMilestone(ctx context.Context, clerkID string, days int) {
	userID, err := s.getUserID(ctx, clerkID)
	if err != nil {
		log.Printf("streak notification skipped: %v", err)
		return
	}

	_, err = s.CreateNotification(ctx, &notification.CreateNotificationRequest{
		UserID: userID,
		Type:   notification.NotificationStreakMilestone,
		Title:  fmt.Sprintf("%d-day streak!", days),
		Body:   fmt.Sprintf("You have hit your calorie goal %d days in a row. Keep it going!", days),
		Data:   map[string]any{"streak_days": days},
	})
	if err != nil {
		log.Printf("failed to create streak notification for %s: %v", clerkID, err)
	}
}

// NotifyFriendRequest tells a user that someone added them as a friend.
func (s *NotificationService) NotifyFriendRequest(ctx context.Context, clerkID string, fromUsername string) {
	userID, err := s.getUserID(ctx, clerkID)
	if err != nil {
		log.Printf("friend notification skipped: %v", err)
		return
	}

	_, err = s.CreateNotification(ctx, &notification.CreateNotificationRequest{
		UserID: userID,
		Type:   notification.NotificationFriendRequest,
		Title:  "New friend",
		Body:   fmt.Sprintf("%s added you as a friend.", fromUsername),
		Data:   map[string]any{"from_username": fromUsername},
	})
	if err != nil {
		log.Printf("failed to create friend notification for %s: %v", clerkID, err)
	}
}

func (s *NotificationService) GetNotifications(ctx context.Context, clerkID string, limit int) (*notification.NotificationListResponse, error) {
	userID, err := s.getUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	query := `
		SELECT id, user_id, type, title, body, data, is_read, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := s.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*notification.Notification
	for rows.Next() {
		notif := &notification.Notification{}
		var dataStr string
		err := rows.Scan(&notif.ID, &notif.UserID, &notif.Type, &notif.Title, &notif.Body, &dataStr, &notif.IsRead, &notif.CreatedAt)
		if err != nil {
			return nil, err
		}
		json.Unmarshal([]byte(dataStr), &notif.Data)
		notifications = append(notifications, notif)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var unreadCount int
	s.db.QueryRow(ctx, "SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = false", userID).Scan(&unreadCount)

	return &notification.NotificationListResponse{
		Notifications: notifications,
		UnreadCount:   unreadCount,
	}, nil
}

func (s *NotificationService) GetUnreadCount(ctx context.Context, clerkID string) (int, error) {
	userID, err := s.getUserID(ctx, clerkID)
	if err != nil {
		return 0, err
	}

	var unreadCount int
	err = s.db.QueryRow(ctx,
		"SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = false",
		userID,
	).Scan(&unreadCount)
	if err != nil {
		return 0, fmt.Errorf("failed to get unread count: %w", err)
	}
	return unreadCount, nil
}

func (s *NotificationService) MarkAsRead(ctx context.Context, notificationID uuid.UUID, clerkID string) error {
	userID, err := s.getUserID(ctx, clerkID)
	if err != nil {
		return err
	}

	result, err := s.db.Exec(ctx,
		`UPDATE notifications SET is_read = true WHERE id = $1 AND user_id = $2 AND is_read = false`,
		notificationID, userID,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("notification not found or already read")
	}
	return nil
}

func (s *NotificationService) MarkAllAsRead(ctx context.Context, clerkID string) error {
	userID, err := s.getUserID(ctx, clerkID)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(ctx,
		`UPDATE notifications SET is_read = true WHERE user_id = $1 AND is_read = false`,
		userID,
	)
	return err
}

func (s *NotificationService) DeleteNotification(ctx context.Context, notificationID uuid.UUID, clerkID string) error {
	userID, err := s.getUserID(ctx, clerkID)
	if err != nil {
		return err
	}

	result, err := s.db.Exec(ctx,
		`DELETE FROM notifications WHERE id = $1 AND user_id = $2`,
		notificationID, userID,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("notification not found")
	}
	return nil
}

func (s *NotificationService) GetPreferences(ctx context.Context, clerkID string) (*notification.Preferences, error) {
	userID, err := s.getUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}
	return s.getPreferencesByUUID(ctx, userID)
}

func (s *NotificationService) getPreferencesByUUID(ctx context.Context, userID uuid.UUID) (*notification.Preferences, error) {
	prefs := &notification.Preferences{UserID: userID, PushEnabled: true}

	err := s.db.QueryRow(ctx,
		`SELECT push_enabled FROM notification_preferences WHERE user_id = $1`,
		userID,
	).Scan(&prefs.PushEnabled)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to read notification preferences: %w", err)
	}

	rows, err := s.db.Query(ctx,
		`SELECT token, platform FROM device_tokens WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to read device tokens: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var t notification.DeviceToken
		if err := rows.Scan(&t.Token, &t.Platform); err != nil {
			return nil, err
		}
		prefs.DeviceTokens = append(prefs.DeviceTokens, t)
	}
	return prefs, rows.Err()
}

func (s *NotificationService) UpdatePreferences(ctx context.Context, clerkID string, req *notification.UpdatePreferencesRequest) (*notification.Preferences, error) {
	userID, err := s.getUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	if req.PushEnabled != nil {
		_, err = s.db.Exec(ctx, `
			INSERT INTO notification_preferences (user_id, push_enabled)
			VALUES ($1, $2)
			ON CONFLICT (user_id) DO UPDATE SET push_enabled = $2
		`, userID, *req.PushEnabled)
		if err != nil {
			return nil, fmt.Errorf("failed to update preferences: %w", err)
		}
	}

	return s.getPreferencesByUUID(ctx, userID)
}

func (s *NotificationService) RegisterDevice(ctx context.Context, clerkID string, req *notification.RegisterDeviceRequest) error {
	userID, err := s.getUserID(ctx, clerkID)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO device_tokens (user_id, token, platform, registered_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id, token) DO UPDATE SET platform = $3, registered_at = NOW()
	`, userID, req.Token, req.Platform)
	if err != nil {
		return fmt.Errorf("failed to register device: %w", err)
	}
	return nil
}
