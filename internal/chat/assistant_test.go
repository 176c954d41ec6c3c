package chat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NgigiN/banker/internal/budget"
	"github.com/NgigiN/banker/internal/storage"
)

type fakeBudget struct {
	balance decimal.Decimal
	daily   decimal.Decimal
	err     error

	goal decimal.Decimal
	date time.Time
}

func (f *fakeBudget) Balance(ctx context.Context) (decimal.Decimal, error) {
	return f.balance, f.err
}

func (f *fakeBudget) DailyBudget(ctx context.Context, d time.Time) (decimal.Decimal, error) {
	f.date = d
	return f.daily, f.err
}

func (f *fakeBudget) GoalAdjustedDailyBudget(ctx context.Context, goal decimal.Decimal, d time.Time) (decimal.Decimal, error) {
	f.goal, f.date = goal, d
	if f.err != nil {
		return decimal.Zero, f.err
	}
	return f.daily.Sub(goal.Div(decimal.NewFromInt(10))), nil
}

type memGoals struct {
	users map[string]decimal.Decimal
	err   error
}

func newMemGoals() *memGoals {
	return &memGoals{users: make(map[string]decimal.Decimal)}
}

func (m *memGoals) GetUser(userID string) (*storage.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	goal, ok := m.users[userID]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	return &storage.User{UserID: userID, Goal: goal}, nil
}

func (m *memGoals) SaveGoal(userID string, goal decimal.Decimal) (*storage.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.users[userID] = goal
	return &storage.User{UserID: userID, Goal: goal}, nil
}

func (m *memGoals) ClearGoal(userID string) error {
	_, err := m.SaveGoal(userID, decimal.Zero)
	return err
}

var today = time.Date(2023, time.March, 20, 9, 0, 0, 0, time.UTC)

func newTestAssistant(b *fakeBudget, g *memGoals) *Assistant {
	a := NewAssistant(b, g, zerolog.Nop())
	a.now = func() time.Time { return today }
	return a
}

func TestReplyBalance(t *testing.T) {
	a := newTestAssistant(&fakeBudget{balance: decimal.RequireFromString("100")}, newMemGoals())

	assert.Equal(t, "Your balance is 100.00.", a.Reply(context.Background(), "u1", "Balance"))
}

func TestReplyHelp(t *testing.T) {
	a := newTestAssistant(&fakeBudget{}, newMemGoals())

	assert.Equal(t, HelpText, a.Reply(context.Background(), "u1", "hello there"))
}

func TestReplySetAndClearGoal(t *testing.T) {
	goals := newMemGoals()
	a := newTestAssistant(&fakeBudget{}, goals)
	ctx := context.Background()

	assert.Equal(t, "Alright! Updated your saving goal to 1000.00.", a.Reply(ctx, "u1", "Set goal to 1000"))
	assert.True(t, goals.users["u1"].Equal(decimal.NewFromInt(1000)))

	assert.Equal(t, "Alright! Removed your set goal.", a.Reply(ctx, "u1", "Clear goal"))
	assert.True(t, goals.users["u1"].IsZero())
}

func TestReplyDailyBudget(t *testing.T) {
	ctx := context.Background()

	t.Run("without goal", func(t *testing.T) {
		b := &fakeBudget{daily: decimal.RequireFromString("20")}
		a := newTestAssistant(b, newMemGoals())

		assert.Contains(t, a.Reply(ctx, "u1", "show daily budget"), "You can spend 20.00 today.")
		assert.Equal(t, today, b.date)
	})

	t.Run("with goal", func(t *testing.T) {
		goals := newMemGoals()
		goals.users["u1"] = decimal.NewFromInt(100)
		b := &fakeBudget{daily: decimal.RequireFromString("20")}
		a := newTestAssistant(b, goals)

		assert.Equal(t, "You have 10.00 to spend today to reach your goal.", a.Reply(ctx, "u1", "Today's budget"))
		assert.True(t, b.goal.Equal(decimal.NewFromInt(100)))
	})

	t.Run("payday", func(t *testing.T) {
		a := newTestAssistant(&fakeBudget{err: budget.ErrDivisionByZero}, newMemGoals())

		assert.Equal(t, paydayText, a.Reply(ctx, "u1", "today"))
	})

	t.Run("bank down", func(t *testing.T) {
		a := newTestAssistant(&fakeBudget{err: errors.New("dial tcp: refused")}, newMemGoals())

		reply := a.Reply(ctx, "u1", "show daily budget")
		assert.Equal(t, bankDownText, reply)
		assert.NotContains(t, reply, "refused")
	})

	t.Run("store broken", func(t *testing.T) {
		goals := newMemGoals()
		goals.err = errors.New("disk full")
		a := newTestAssistant(&fakeBudget{}, goals)

		assert.Equal(t, brokenText, a.Reply(ctx, "u1", "show daily budget"))
	})
}

func TestOnboardingConversation(t *testing.T) {
	goals := newMemGoals()
	a := newTestAssistant(&fakeBudget{}, goals)
	ctx := context.Background()

	assert.Contains(t, a.Reply(ctx, "u1", "Get started"), connectedAsk)
	assert.Equal(t, connectedAsk, a.Reply(ctx, "u1", "hmm"))
	assert.Equal(t, goalAsk, a.Reply(ctx, "u1", "Yepp 👌"))
	assert.Contains(t, a.Reply(ctx, "u1", "lots"), "I need an amount")

	reply := a.Reply(ctx, "u1", "500")
	assert.Contains(t, reply, "saving 500.00 moneeeeys")
	assert.True(t, goals.users["u1"].Equal(decimal.NewFromInt(500)))

	// conversation is over
	assert.Equal(t, HelpText, a.Reply(ctx, "u1", "500"))
}

func TestOnboardingDeclined(t *testing.T) {
	goals := newMemGoals()
	a := newTestAssistant(&fakeBudget{}, goals)
	ctx := context.Background()

	a.Reply(ctx, "u1", "start")
	assert.Equal(t, declinedText, a.Reply(ctx, "u1", "Nope 🙄"))
	assert.Empty(t, goals.users)
	assert.Equal(t, HelpText, a.Reply(ctx, "u1", "no"))
}

func TestOnboardingInterruptedByCommand(t *testing.T) {
	a := newTestAssistant(&fakeBudget{balance: decimal.NewFromInt(5)}, newMemGoals())
	ctx := context.Background()

	a.Reply(ctx, "u1", "start")
	assert.Equal(t, "Your balance is 5.00.", a.Reply(ctx, "u1", "balance"))
	assert.Equal(t, HelpText, a.Reply(ctx, "u1", "yes"))
}

func TestConversationsArePerUser(t *testing.T) {
	a := newTestAssistant(&fakeBudget{}, newMemGoals())
	ctx := context.Background()

	a.Reply(ctx, "u1", "start")
	assert.Equal(t, HelpText, a.Reply(ctx, "u2", "yes"))
	assert.Equal(t, goalAsk, a.Reply(ctx, "u1", "yes"))
}

func TestReminder(t *testing.T) {
	ctx := context.Background()
	a := newTestAssistant(&fakeBudget{daily: decimal.RequireFromString("20")}, newMemGoals())

	msg, ok, err := a.Reminder(ctx, storage.User{UserID: "u1", Goal: decimal.NewFromInt(100)})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "You can spend 10.00 today, and reach your monthly goal. 💪 Great job!", msg)

	_, ok, err = a.Reminder(ctx, storage.User{UserID: "u2"})
	require.NoError(t, err)
	assert.False(t, ok)

	failing := newTestAssistant(&fakeBudget{err: errors.New("boom")}, newMemGoals())
	_, _, err = failing.Reminder(ctx, storage.User{UserID: "u1", Goal: decimal.NewFromInt(100)})
	assert.Error(t, err)
}
