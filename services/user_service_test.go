package services

import (
	"context"
	"os"
	"testing"

	"fitQuestAPI/internal/types/user"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Integration tests against a real Postgres. Gated behind TEST_DATABASE_URL
// so the unit suite stays self-contained:
//
//	TEST_DATABASE_URL=postgres://localhost/fitquest_test go test ./services/
func integrationUserService(t *testing.T) (*UserService, *pgxpool.Pool) {
	t.Helper()

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id             UUID PRIMARY KEY,
			clerk_id       TEXT NOT NULL UNIQUE,
			email          TEXT NOT NULL,
			username       TEXT NOT NULL,
			first_name     TEXT NOT NULL DEFAULT '',
			last_name      TEXT NOT NULL DEFAULT '',
			image_url      TEXT NOT NULL DEFAULT '',
			email_verified BOOLEAN NOT NULL DEFAULT FALSE,
			points         INTEGER NOT NULL DEFAULT 0,
			created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	require.NoError(t, err)

	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS friendships (
			user_id    UUID NOT NULL REFERENCES users(id),
			friend_id  UUID NOT NULL REFERENCES users(id),
			status     TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	require.NoError(t, err)

	return NewUserService(pool), pool
}

// createIntegrationUser makes a throwaway user whose rows are removed when
// the test finishes.
func createIntegrationUser(t *testing.T, svc *UserService, pool *pgxpool.Pool, name string) *user.User {
	t.Helper()

	suffix := uuid.NewString()[:8]
	u, err := svc.CreateUser(context.Background(), &user.CreateUserRequest{
		ClerkID:   "it_" + name + "_" + suffix,
		Email:     name + "_" + suffix + "@example.com",
		Username:  name + "_" + suffix,
		FirstName: name,
		LastName:  "Test",
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		ctx := context.Background()
		_, err := pool.Exec(ctx,
			`DELETE FROM friendships WHERE user_id = $1 OR friend_id = $1`, u.ID)
		assert.NoError(t, err)
		_, err = pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, u.ID)
		assert.NoError(t, err)
	})
	return u
}

type recordingFriendNotifier struct {
	notified []string
	from     []string
}

func (n *recordingFriendNotifier) NotifyFriendRequest(_ context.Context, clerkID string, fromUsername string) {
	n.notified = append(n.notified, clerkID)
	n.from = append(n.from, fromUsername)
}

func TestFriendshipLifecycle(t *testing.T) {
	svc, pool := integrationUserService(t)
	notifier := &recordingFriendNotifier{}
	svc.SetFriendNotifier(notifier)
	ctx := context.Background()

	alice := createIntegrationUser(t, svc, pool, "alice")
	bob := createIntegrationUser(t, svc, pool, "bob")

	require.NoError(t, svc.AddFriend(ctx, alice.ClerkID, bob.ClerkID))

	// The new friend gets told who added them.
	require.Len(t, notifier.notified, 1)
	assert.Equal(t, bob.ClerkID, notifier.notified[0])
	assert.Equal(t, alice.Username, notifier.from[0])

	// One row in storage, visible from both sides.
	friends, err := svc.GetFriends(ctx, alice.ClerkID)
	require.NoError(t, err)
	require.Len(t, friends, 1)
	assert.Equal(t, bob.ClerkID, friends[0].ClerkID)

	friends, err = svc.GetFriends(ctx, bob.ClerkID)
	require.NoError(t, err)
	require.Len(t, friends, 1)
	assert.Equal(t, alice.ClerkID, friends[0].ClerkID)

	// Duplicates in either direction and self-friending are rejected.
	assert.Error(t, svc.AddFriend(ctx, alice.ClerkID, bob.ClerkID))
	assert.Error(t, svc.AddFriend(ctx, bob.ClerkID, alice.ClerkID))
	assert.Error(t, svc.AddFriend(ctx, alice.ClerkID, alice.ClerkID))

	// Removal works from the side that did not initiate.
	require.NoError(t, svc.RemoveFriend(ctx, bob.ClerkID, alice.ClerkID))
	friends, err = svc.GetFriends(ctx, alice.ClerkID)
	require.NoError(t, err)
	assert.Empty(t, friends)

	assert.Error(t, svc.RemoveFriend(ctx, alice.ClerkID, bob.ClerkID))
}

func TestFriendsLeaderboardRanks(t *testing.T) {
	svc, pool := integrationUserService(t)
	ctx := context.Background()

	alice := createIntegrationUser(t, svc, pool, "alice")
	bob := createIntegrationUser(t, svc, pool, "bob")
	carol := createIntegrationUser(t, svc, pool, "carol")

	require.NoError(t, svc.AddFriend(ctx, alice.ClerkID, bob.ClerkID))
	require.NoError(t, svc.AddFriend(ctx, alice.ClerkID, carol.ClerkID))

	require.NoError(t, svc.SyncPoints(ctx, alice.ClerkID, 140))
	require.NoError(t, svc.SyncPoints(ctx, bob.ClerkID, 300))
	require.NoError(t, svc.SyncPoints(ctx, carol.ClerkID, 28))

	lb, err := svc.GetFriendsLeaderboard(ctx, alice.ClerkID)
	require.NoError(t, err)
	require.Len(t, lb.Entries, 3)

	assert.Equal(t, bob.Username, lb.Entries[0].Username)
	assert.Equal(t, 300, lb.Entries[0].Points)
	assert.Equal(t, 1, lb.Entries[0].Rank)
	assert.Equal(t, alice.Username, lb.Entries[1].Username)
	assert.Equal(t, 2, lb.Entries[1].Rank)
	assert.Equal(t, carol.Username, lb.Entries[2].Username)
	assert.Equal(t, 3, lb.Entries[2].Rank)

	require.NotNil(t, lb.UserPosition)
	assert.Equal(t, alice.Username, lb.UserPosition.Username)
	assert.Equal(t, 140, lb.UserPosition.Points)
}

func TestGlobalLeaderboardOrdering(t *testing.T) {
	svc, pool := integrationUserService(t)
	ctx := context.Background()

	alice := createIntegrationUser(t, svc, pool, "alice")
	require.NoError(t, svc.SyncPoints(ctx, alice.ClerkID, 7))

	// The table is shared, so only the ordering invariant is checked.
	lb, err := svc.GetGlobalLeaderboard(ctx, alice.ClerkID)
	require.NoError(t, err)
	require.NotEmpty(t, lb.Entries)
	for i := 1; i < len(lb.Entries); i++ {
		assert.GreaterOrEqual(t, lb.Entries[i-1].Points, lb.Entries[i].Points)
	}
}
