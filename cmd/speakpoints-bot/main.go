package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"speakpoints-bot/internal/backend"
	"speakpoints-bot/internal/bot"
	"speakpoints-bot/pkg/store"
)

var (
	openStore = backend.Open
	newBotApp = bot.NewBotApp
)

func main() {
	bot.LoadDotEnv()
	cfg := bot.LoadConfig()
	if cfg.TelegramToken == "" {
		log.Fatal("TELEGRAM_BOT_TOKEN is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, cfg)
	stop()
	if err != nil {
		log.Fatal(err)
	}
}

// run owns the store connection and releases it before returning, so a
// fatal exit in main never skips the close.
func run(ctx context.Context, cfg *bot.Config) error {
	st, closer, err := openStore(ctx, backend.Options{
		Kind:        cfg.LedgerBackend,
		Path:        cfg.LedgerPath,
		RedisURL:    cfg.RedisURL,
		RedisKey:    cfg.RedisKey,
		DatabaseURL: cfg.DatabaseURL,
	})
	if err != nil {
		return fmt.Errorf("ledger store init error: %w", err)
	}
	defer func() {
		if err := closer.Close(); err != nil {
			log.Printf("ledger store close error: %v", err)
		}
	}()

	app, err := newBotApp(cfg, store.NewKeeper(st))
	if err != nil {
		return fmt.Errorf("telegram bot init error: %w", err)
	}

	log.Printf("SpeakPoint Bot is running with %s ledger", cfg.LedgerBackend)
	if err := app.StartPolling(ctx); err != nil {
		return fmt.Errorf("polling error: %w", err)
	}
	return nil
}
