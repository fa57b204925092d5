package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"fitQuestAPI/internal/types/leaderboard"
	"fitQuestAPI/internal/types/user"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

// FriendNotifier pushes friend-related notifications. Optional; delivery
// failures never affect the friendship mutation that triggered them.
type FriendNotifier interface {
	NotifyFriendRequest(ctx context.Context, clerkID string, fromUsername string)
}

type UserService struct {
	db       *pgxpool.Pool
	notifier FriendNotifier
}

func NewUserService(db *pgxpool.Pool) *UserService {
	return &UserService{db: db}
}

func (s *UserService) SetFriendNotifier(n FriendNotifier) { s.notifier = n }

func (s *UserService) CreateUser(ctx context.Context, req *user.CreateUserRequest) (*user.User, error) {
	u := &user.User{
		ID:        uuid.New().String(),
		ClerkID:   req.ClerkID,
		Email:     req.Email,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		ImageURL:  req.ImageURL,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	query := `
	INSERT INTO users (id, clerk_id, email, username, first_name, last_name, image_url, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	RETURNING id, clerk_id, email, username, first_name, last_name, image_url, email_verified, created_at, updated_at
	`

	err := s.db.QueryRow(
		ctx,
		query,
		u.ID,
		u.ClerkID,
		u.Email,
		u.Username,
		u.FirstName,
		u.LastName,
		u.ImageURL,
		u.CreatedAt,
		u.UpdatedAt,
	).Scan(
		&u.ID,
		&u.ClerkID,
		&u.Email,
		&u.Username,
		&u.FirstName,
		&u.LastName,
		&u.ImageURL,
		&u.EmailVerified,
		&u.CreatedAt,
		&u.UpdatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return u, nil
}

func (s *UserService) GetUserByClerkID(ctx context.Context, clerkID string) (*user.User, error) {
	query := `
	SELECT id, clerk_id, email, username, first_name, last_name, image_url, email_verified, created_at, updated_at, points
	FROM users
	WHERE clerk_id = $1
	`

	u := &user.User{}
	err := s.db.QueryRow(ctx, query, clerkID).Scan(
		&u.ID,
		&u.ClerkID,
		&u.Email,
		&u.Username,
		&u.FirstName,
		&u.LastName,
		&u.ImageURL,
		&u.EmailVerified,
		&u.CreatedAt,
		&u.UpdatedAt,
		&u.Points,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user not found")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return u, nil
}

func (s *UserService) UpdateProfileByClerkID(ctx context.Context, clerkID string, req *user.UpdateProfileRequest) (*user.User, error) {
	setClauses := []string{}
	args := []interface{}{clerkID}
	argIdx := 2

	if req.Username != "" {
		setClauses = append(setClauses, fmt.Sprintf("username = $%d", argIdx))
		args = append(args, req.Username)
		argIdx++
	}
	if req.FirstName != "" {
		setClauses = append(setClauses, fmt.Sprintf("first_name = $%d", argIdx))
		args = append(args, req.FirstName)
		argIdx++
	}
	if req.LastName != "" {
		setClauses = append(setClauses, fmt.Sprintf("last_name = $%d", argIdx))
		args = append(args, req.LastName)
		argIdx++
	}
	if req.ImageURL != "" {
		setClauses = append(setClauses, fmt.Sprintf("image_url = $%d", argIdx))
		args = append(args, req.ImageURL)
		argIdx++
	}

	if len(setClauses) == 0 {
		return s.GetUserByClerkID(ctx, clerkID)
	}

	query := fmt.Sprintf(`
	UPDATE users SET %s, updated_at = NOW()
	WHERE clerk_id = $1
	RETURNING id, clerk_id, email, username, first_name, last_name, image_url, email_verified, created_at, updated_at, points
	`, strings.Join(setClauses, ", "))

	u := &user.User{}
	err := s.db.QueryRow(ctx, query, args...).Scan(
		&u.ID,
		&u.ClerkID,
		&u.Email,
		&u.Username,
		&u.FirstName,
		&u.LastName,
		&u.ImageURL,
		&u.EmailVerified,
		&u.CreatedAt,
		&u.UpdatedAt,
		&u.Points,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	return u, nil
}

func (s *UserService) DeleteUserByClerkID(ctx context.Context, clerkID string) error {
	result, err := s.db.Exec(ctx, `DELETE FROM users WHERE clerk_id = $1`, clerkID)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("user not found")
	}
	return nil
}

func (s *UserService) UpdateEmailVerification(ctx context.Context, clerkID string, verified bool) error {
	_, err := s.db.Exec(ctx,
		`UPDATE users SET email_verified = $2, updated_at = NOW() WHERE clerk_id = $1`,
		clerkID, verified,
	)
	if err != nil {
		return fmt.Errorf("failed to update email verification: %w", err)
	}
	return nil
}

// SyncPoints mirrors the locally-computed point total to the users table so
// leaderboards can rank without touching per-user preference state.
func (s *UserService) SyncPoints(ctx context.Context, clerkID string, totalPoints int) error {
	_, err := s.db.Exec(ctx,
		`UPDATE users SET points = $2, updated_at = NOW() WHERE clerk_id = $1`,
		clerkID, totalPoints,
	)
	if err != nil {
		return fmt.Errorf("failed to sync points: %w", err)
	}
	return nil
}

func (s *UserService) GetFriends(ctx context.Context, clerkID string) ([]*user.User, error) {
	query := `
    SELECT DISTINCT
        u.id,
        u.clerk_id,
        u.email,
        u.username,
        u.first_name,
        u.last_name,
        u.image_url,
        u.email_verified,
        u.created_at,
        u.updated_at,
        u.points
    FROM users u
    INNER JOIN friendships f ON (
        (f.user_id = u.id AND f.friend_id = (SELECT id FROM users WHERE clerk_id = $1))
        OR
        (f.friend_id = u.id AND f.user_id = (SELECT id FROM users WHERE clerk_id = $1))
    )
    WHERE f.status = 'accepted'
    AND u.clerk_id != $1
    ORDER BY u.username
    `

	rows, err := s.db.Query(ctx, query, clerkID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var friends []*user.User
	for rows.Next() {
		var u user.User
		err := rows.Scan(
			&u.ID,
			&u.ClerkID,
			&u.Email,
			&u.Username,
			&u.FirstName,
			&u.LastName,
			&u.ImageURL,
			&u.EmailVerified,
			&u.CreatedAt,
			&u.UpdatedAt,
			&u.Points,
		)
		if err != nil {
			return nil, err
		}
		friends = append(friends, &u)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return friends, nil
}

func (s *UserService) AddFriend(ctx context.Context, clerkID string, friendClerkID string) error {
	var userID uuid.UUID
	var username string
	err := s.db.QueryRow(ctx, `SELECT id, username FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID, &username)
	if err != nil {
		log.Printf("AddFriend: failed to find user with clerk_id %s: %v", clerkID, err)
		return fmt.Errorf("user not found")
	}

	var friendID uuid.UUID
	err = s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, friendClerkID).Scan(&friendID)
	if err != nil {
		log.Printf("AddFriend: failed to find friend with clerk_id %s: %v", friendClerkID, err)
		return fmt.Errorf("friend user not found")
	}

	if userID == friendID {
		return fmt.Errorf("cannot add yourself as a friend")
	}

	var exists bool
	checkQuery := `
		SELECT EXISTS(
			SELECT 1 FROM friendships
			WHERE (user_id = $1 AND friend_id = $2)
			   OR (user_id = $2 AND friend_id = $1)
		)
	`
	err = s.db.QueryRow(ctx, checkQuery, userID, friendID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check existing friendship")
	}
	if exists {
		return fmt.Errorf("friendship already exists")
	}

	insertQuery := `
		INSERT INTO friendships (user_id, friend_id, status, created_at)
		VALUES ($1, $2, 'accepted', NOW())
	`
	if _, err = s.db.Exec(ctx, insertQuery, userID, friendID); err != nil {
		log.Printf("AddFriend: failed to insert friendship: %v", err)
		return fmt.Errorf("failed to create friendship")
	}

	if s.notifier != nil {
		s.notifier.NotifyFriendRequest(ctx, friendClerkID, username)
	}

	return nil
}

func (s *UserService) RemoveFriend(ctx context.Context, clerkID string, friendClerkID string) error {
	var userID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if err != nil {
		return fmt.Errorf("user not found")
	}

	var friendID uuid.UUID
	err = s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, friendClerkID).Scan(&friendID)
	if err != nil {
		return fmt.Errorf("friend user not found")
	}

	deleteQuery := `
		DELETE FROM friendships
		WHERE (user_id = $1 AND friend_id = $2)
		   OR (user_id = $2 AND friend_id = $1)
	`
	result, err := s.db.Exec(ctx, deleteQuery, userID, friendID)
	if err != nil {
		return fmt.Errorf("failed to remove friendship")
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("friendship not found")
	}

	return nil
}

func (s *UserService) SearchUsers(ctx context.Context, clerkID string, search string) ([]*user.User, error) {
	query := `
	SELECT id, clerk_id, email, username, first_name, last_name, image_url, email_verified, created_at, updated_at, points
	FROM users
	WHERE clerk_id != $1
	  AND (username ILIKE $2 OR first_name ILIKE $2 OR last_name ILIKE $2)
	ORDER BY username
	LIMIT 20
	`

	rows, err := s.db.Query(ctx, query, clerkID, "%"+search+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	defer rows.Close()

	var users []*user.User
	for rows.Next() {
		var u user.User
		err := rows.Scan(
			&u.ID,
			&u.ClerkID,
			&u.Email,
			&u.Username,
			&u.FirstName,
			&u.LastName,
			&u.ImageURL,
			&u.EmailVerified,
			&u.CreatedAt,
			&u.UpdatedAt,
			&u.Points,
		)
		if err != nil {
			return nil, err
		}
		users = append(users, &u)
	}

	return users, rows.Err()
}

func (s *UserService) GetFriendsLeaderboard(ctx context.Context, clerkID string) (*leaderboard.Leaderboard, error) {
	var userID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}

	query := `
	SELECT
		u.id as user_id,
		u.username,
		u.image_url,
		u.points,
		RANK() OVER (ORDER BY u.points DESC) as rank
	FROM users u
	WHERE u.id = $1
	   OR EXISTS (
		SELECT 1 FROM friendships f
		WHERE f.status = 'accepted'
		  AND ((f.user_id = $1 AND f.friend_id = u.id)
		    OR (f.friend_id = $1 AND f.user_id = u.id))
	)
	ORDER BY u.points DESC
	LIMIT 50
	`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch leaderboard: %w", err)
	}
	defer rows.Close()

	return scanLeaderboard(rows, userID)
}

func (s *UserService) GetGlobalLeaderboard(ctx context.Context, clerkID string) (*leaderboard.Leaderboard, error) {
	var userID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}

	query := `
	SELECT
		u.id as user_id,
		u.username,
		u.image_url,
		u.points,
		RANK() OVER (ORDER BY u.points DESC) as rank
	FROM users u
	ORDER BY u.points DESC
	LIMIT 100
	`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch leaderboard: %w", err)
	}
	defer rows.Close()

	return scanLeaderboard(rows, userID)
}

func scanLeaderboard(rows pgx.Rows, userID uuid.UUID) (*leaderboard.Leaderboard, error) {
	var entries []*leaderboard.LeaderboardEntry
	var userPosition *leaderboard.LeaderboardEntry

	for rows.Next() {
		entry := &leaderboard.LeaderboardEntry{}
		err := rows.Scan(
			&entry.UserID,
			&entry.Username,
			&entry.ImageURL,
			&entry.Points,
			&entry.Rank,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		entries = append(entries, entry)

		if entry.UserID == userID {
			userPosition = entry
		}
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &leaderboard.Leaderboard{
		Entries:      entries,
		UserPosition: userPosition,
		TotalUsers:   len(entries),
	}, nil
}
