package discord

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/NgigiN/banker/internal/chat"
	"github.com/NgigiN/banker/internal/config"
	"github.com/NgigiN/banker/internal/storage"
)

// Replier produces the answer to a chat message.
type Replier interface {
	Reply(ctx context.Context, userID, text string) string
	Reminder(ctx context.Context, user storage.User) (string, bool, error)
}

type reminderStore interface {
	UsersWithGoals() ([]storage.User, error)
}

type messageSender interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

type Bot struct {
	session   *discordgo.Session
	sender    messageSender
	assistant Replier
	store     reminderStore
	channelID string
	schedule  string
	timeout   time.Duration
	cron      *cron.Cron
	log       zerolog.Logger
}

var _ Replier = (*chat.Assistant)(nil)

func NewBot(cfg *config.Config, assistant Replier, store reminderStore, log zerolog.Logger) (*Bot, error) {
	session, err := discordgo.New("Bot " + cfg.DiscordBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}

	bot := &Bot{
		session:   session,
		sender:    session,
		assistant: assistant,
		store:     store,
		channelID: cfg.DiscordChannelId,
		schedule:  cfg.ReminderSchedule,
		timeout:   cfg.RequestTimeout,
		cron:      cron.New(),
		log:       log.With().Str("component", "discord").Logger(),
	}

	session.AddHandler(bot.handleMessage)
	session.Identify.Intents = discordgo.IntentGuildMessages | discordgo.IntentDirectMessages | discordgo.IntentMessageContent

	return bot, nil
}

func (b *Bot) Start() error {
	if _, err := b.cron.AddFunc(b.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*b.timeout)
		defer cancel()
		b.SendReminders(ctx)
	}); err != nil {
		return fmt.Errorf("invalid reminder schedule %q: %w", b.schedule, err)
	}

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open Discord connection: %w", err)
	}
	b.cron.Start()
	b.log.Info().Str("channel", b.channelID).Str("schedule", b.schedule).Msg("bot connected")
	return nil
}

func (b *Bot) Stop() {
	<-b.cron.Stop().Done()
	b.session.Close()
}

// Connected reports whether the gateway session is up.
func (b *Bot) Connected() bool {
	return b.session != nil && b.session.DataReady
}

func (b *Bot) handleMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if s.State != nil && s.State.User != nil && m.Author.ID == s.State.User.ID {
		return //bot's messages
	}
	b.handle(m.Author.ID, m.Author.Bot, m.GuildID, m.ChannelID, m.Content)
}

func (b *Bot) handle(authorID string, fromBot bool, guildID, channelID, content string) {
	if fromBot {
		return
	}
	if guildID != "" && channelID != b.channelID {
		return //specific to the channel, DMs always answered
	}

	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	defer cancel()

	reply := b.assistant.Reply(ctx, authorID, content)
	if _, err := b.sender.ChannelMessageSend(channelID, reply); err != nil {
		b.log.Error().Err(err).Str("channel", channelID).Msg("failed to send reply")
	}
}

// SendReminders posts today's goal-adjusted budget for every user with a
// goal to the configured channel. One user's failure doesn't stop the rest.
func (b *Bot) SendReminders(ctx context.Context) {
	users, err := b.store.UsersWithGoals()
	if err != nil {
		b.log.Error().Err(err).Msg("failed to load users for reminders")
		return
	}

	sent := 0
	for _, user := range users {
		if ctx.Err() != nil {
			b.log.Warn().Int("sent", sent).Int("users", len(users)).Msg("reminders interrupted")
			return
		}
		msg, ok, err := b.assistant.Reminder(ctx, user)
		if err != nil {
			b.log.Error().Err(err).Str("user", user.UserID).Msg("failed to compute reminder")
			continue
		}
		if !ok {
			continue
		}
		if _, err := b.sender.ChannelMessageSend(b.channelID, fmt.Sprintf("<@%s> %s", user.UserID, msg)); err != nil {
			b.log.Error().Err(err).Str("user", user.UserID).Msg("failed to send reminder")
			continue
		}
		sent++
	}
	b.log.Info().Int("sent", sent).Int("users", len(users)).Msg("reminders sent")
}
