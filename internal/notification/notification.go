package notification

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationGoalAchieved    NotificationType = "goal_achieved"
	NotificationStreakMilestone NotificationType = "streak_milestone"
	NotificationFriendRequest   NotificationType = "friend_request"
)

type Notification struct {
	ID        uuid.UUID        `json:"id" db:"id"`
	UserID    uuid.UUID        `json:"user_id" db:"user_id"`
	Type      NotificationType `json:"type" db:"type"`
	Title     string           `json:"title" db:"title"`
	Body      string           `json:"body" db:"body"`
	IsRead    bool             `json:"is_read" db:"is_read"`
	Data      map[string]any   `json:"data" db:"data"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
}

type DeviceToken struct {
	Token    string `json:"token" db:"token"`
	Platform string `json:"platform" db:"platform"`
}

type Preferences struct {
	UserID       uuid.UUID     `json:"user_id" db:"user_id"`
	PushEnabled  bool          `json:"push_enabled" db:"push_enabled"`
	DeviceTokens []DeviceToken `json:"device_tokens"`
}

type CreateNotificationRequest struct {
	UserID uuid.UUID        `json:"user_id" validate:"required"`
	Type   NotificationType `json:"type" validate:"required"`
	Title  string           `json:"title"`
	Body   string           `json:"body"`
	Data   map[string]any   `json:"data"`
}

type RegisterDeviceRequest struct {
	Token    string `json:"token" validate:"required"`
	Platform string `json:"platform" validate:"required,oneof=ios android web"`
}

type UpdatePreferencesRequest struct {
	PushEnabled *bool `json:"push_enabled,omitempty"`
}

type NotificationListResponse struct {
	Notifications []*Notification `json:"notifications"`
	UnreadCount   int             `json:"unread_count"`
}
