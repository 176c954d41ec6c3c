// Package chat holds the personal banker's conversation logic, independent of
// the messaging platform carrying it.
package chat

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/NgigiN/banker/internal/budget"
	"github.com/NgigiN/banker/internal/intent"
	"github.com/NgigiN/banker/internal/storage"
)

const (
	HelpText = "Let's chat about money. I understand commands: i.e. 'Balance', 'Set goal 1000', 'Remove goal', 'Today's budget'"

	introText    = "Alright, I will help you to save money each month. 💸 All you need to do is accept that I look at your transactions."
	connectedAsk = "Have you already connected your bank account to me? (yes/no)"
	goalAsk      = "Cool, let's get started. 🤝 How much do you want to save this month?"
	declinedText = "Sorry m8! Then I can't help you..."
	bankDownText = "Sorry, I couldn't reach your bank right now. Please try again later."
	brokenText   = "Sorry, something went wrong on my side. Please try again later."
	paydayText   = "It's payday, a new pay cycle starts today. Ask me again tomorrow! 🎉"
)

// Budget is what the assistant asks about money.
type Budget interface {
	Balance(ctx context.Context) (decimal.Decimal, error)
	DailyBudget(ctx context.Context, currentDate time.Time) (decimal.Decimal, error)
	GoalAdjustedDailyBudget(ctx context.Context, goal decimal.Decimal, currentDate time.Time) (decimal.Decimal, error)
}

// Goals stores each user's savings goal.
type Goals interface {
	GetUser(userID string) (*storage.User, error)
	SaveGoal(userID string, goal decimal.Decimal) (*storage.User, error)
	ClearGoal(userID string) error
}

type stage int

const (
	stageNone stage = iota
	stageAwaitingConnection
	stageAwaitingGoal
)

type Assistant struct {
	budget Budget
	goals  Goals
	now    func() time.Time
	log    zerolog.Logger

	mu     sync.Mutex
	stages map[string]stage
}

func NewAssistant(b Budget, goals Goals, log zerolog.Logger) *Assistant {
	return &Assistant{
		budget: b,
		goals:  goals,
		now:    time.Now,
		log:    log.With().Str("component", "chat").Logger(),
		stages: make(map[string]stage),
	}
}

// Reply answers one message from userID.
func (a *Assistant) Reply(ctx context.Context, userID, text string) string {
	in := intent.Parse(text)
	log := a.log.With().Str("user", userID).Str("intent", in.Kind.String()).Logger()

	switch a.stage(userID) {
	case stageAwaitingConnection:
		switch in.Kind {
		case intent.Yes:
			a.setStage(userID, stageAwaitingGoal)
			return goalAsk
		case intent.No:
			a.setStage(userID, stageNone)
			return declinedText
		case intent.Unknown:
			return connectedAsk
		}
	case stageAwaitingGoal:
		if in.Kind == intent.Unknown || in.Kind == intent.SetGoal {
			if !in.Amount.IsPositive() {
				return "I need an amount, e.g. 500. How much do you want to save this month?"
			}
			a.setStage(userID, stageNone)
			user, err := a.goals.SaveGoal(userID, in.Amount)
			if err != nil {
				log.Error().Err(err).Msg("failed to save goal")
				return brokenText
			}
			return fmt.Sprintf("OK! 💯 I will remind you every day, so that you reach your goal of saving %s moneeeeys 💰💰💰", user.Goal.StringFixed(2))
		}
	}

	// Any recognised command ends a pending conversation.
	a.setStage(userID, stageNone)

	switch in.Kind {
	case intent.Start:
		a.setStage(userID, stageAwaitingConnection)
		return introText + "\n" + connectedAsk
	case intent.Balance:
		balance, err := a.budget.Balance(ctx)
		if err != nil {
			return a.failure(log, err)
		}
		return fmt.Sprintf("Your balance is %s.", balance.StringFixed(2))
	case intent.SetGoal:
		user, err := a.goals.SaveGoal(userID, in.Amount)
		if err != nil {
			log.Error().Err(err).Msg("failed to save goal")
			return brokenText
		}
		return fmt.Sprintf("Alright! Updated your saving goal to %s.", user.Goal.StringFixed(2))
	case intent.ClearGoal:
		if err := a.goals.ClearGoal(userID); err != nil {
			log.Error().Err(err).Msg("failed to clear goal")
			return brokenText
		}
		return "Alright! Removed your set goal."
	case intent.DailyBudget:
		return a.dailyBudget(ctx, log, userID)
	default:
		return HelpText
	}
}

func (a *Assistant) dailyBudget(ctx context.Context, log zerolog.Logger, userID string) string {
	user, err := a.goals.GetUser(userID)
	if err != nil && !errors.Is(err, storage.ErrUserNotFound) {
		log.Error().Err(err).Msg("failed to load user")
		return brokenText
	}

	if !user.HasGoal() {
		daily, err := a.budget.DailyBudget(ctx, a.now())
		if err != nil {
			return a.failure(log, err)
		}
		return fmt.Sprintf("You can spend %s today. Set a goal, e.g. 'Set goal 500', and I'll help you save.", daily.StringFixed(2))
	}

	daily, err := a.budget.GoalAdjustedDailyBudget(ctx, user.Goal, a.now())
	if err != nil {
		return a.failure(log, err)
	}
	return fmt.Sprintf("You have %s to spend today to reach your goal.", daily.StringFixed(2))
}

// Reminder is the daily nudge for a user with a goal. ok is false when the
// user has no goal and should not be reminded.
func (a *Assistant) Reminder(ctx context.Context, user storage.User) (msg string, ok bool, err error) {
	if !user.HasGoal() {
		return "", false, nil
	}
	daily, err := a.budget.GoalAdjustedDailyBudget(ctx, user.Goal, a.now())
	if errors.Is(err, budget.ErrDivisionByZero) {
		return paydayText, true, nil
	}
	if err != nil {
		return "", false, err
	}
	return fmt.Sprintf("You can spend %s today, and reach your monthly goal. 💪 Great job!", daily.StringFixed(2)), true, nil
}

func (a *Assistant) failure(log zerolog.Logger, err error) string {
	if errors.Is(err, budget.ErrDivisionByZero) {
		return paydayText
	}
	log.Error().Err(err).Msg("budget lookup failed")
	return bankDownText
}

func (a *Assistant) stage(userID string) stage {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stages[userID]
}

func (a *Assistant) setStage(userID string, s stage) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if s == stageNone {
		delete(a.stages, userID)
		return
	}
	a.stages[userID] = s
}
