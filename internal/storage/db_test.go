package storage

import (
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *Database {
	t.Helper()
	db, err := NewDatabase(filepath.Join(t.TempDir(), "banker.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestGetUserNotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetUser("nobody")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestSaveGoalCreatesThenUpdates(t *testing.T) {
	db := newTestDB(t)

	_, err := db.SaveGoal("u1", decimal.RequireFromString("1000.50"))
	require.NoError(t, err)

	user, err := db.GetUser("u1")
	require.NoError(t, err)
	assert.Equal(t, "1000.5", user.Goal.String())
	assert.True(t, user.HasGoal())

	_, err = db.SaveGoal("u1", decimal.NewFromInt(200))
	require.NoError(t, err)

	user, err = db.GetUser("u1")
	require.NoError(t, err)
	assert.True(t, user.Goal.Equal(decimal.NewFromInt(200)))
}

func TestClearGoal(t *testing.T) {
	db := newTestDB(t)

	_, err := db.SaveGoal("u1", decimal.NewFromInt(300))
	require.NoError(t, err)
	require.NoError(t, db.ClearGoal("u1"))

	user, err := db.GetUser("u1")
	require.NoError(t, err)
	assert.False(t, user.HasGoal())
}

func TestClearGoalUnknownUser(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, db.ClearGoal("new"))
	user, err := db.GetUser("new")
	require.NoError(t, err)
	assert.True(t, user.Goal.IsZero())
}

func TestUsersWithGoals(t *testing.T) {
	db := newTestDB(t)

	_, err := db.SaveGoal("a", decimal.NewFromInt(100))
	require.NoError(t, err)
	_, err = db.SaveGoal("b", decimal.Zero)
	require.NoError(t, err)
	_, err = db.SaveGoal("c", decimal.NewFromInt(50))
	require.NoError(t, err)

	users, err := db.UsersWithGoals()
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "a", users[0].UserID)
	assert.Equal(t, "c", users[1].UserID)
}

func TestHasGoalNil(t *testing.T) {
	var u *User
	assert.False(t, u.HasGoal())
}
