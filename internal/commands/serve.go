package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/NgigiN/banker/internal/api"
	"github.com/NgigiN/banker/internal/chat"
	"github.com/NgigiN/banker/internal/discord"
	"github.com/NgigiN/banker/internal/storage"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(load appLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and, when configured, the Discord bot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := load()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, a)
		},
	}
}

func runServe(ctx context.Context, a *app) error {
	var connected func() bool

	if a.cfg.DiscordEnabled() {
		db, err := storage.NewDatabase(a.cfg.DBPath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		assistant := chat.NewAssistant(a.calc, db, a.log)
		bot, err := discord.NewBot(a.cfg, assistant, db, a.log)
		if err != nil {
			return err
		}
		if err := bot.Start(); err != nil {
			return err
		}
		defer bot.Stop()
		connected = bot.Connected
	} else {
		a.log.Warn().Msg("DISCORD_BOT_TOKEN not set, running without the chat bot")
	}

	srv := api.NewServer(":"+a.cfg.Port, a.client, a.calc, connected, a.cfg.RequestTimeout, a.log)

	errCh := make(chan error, 1)
	go func() {
		a.log.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	return nil
}
