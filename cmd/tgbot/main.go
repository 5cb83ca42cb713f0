package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"Structura/internal/chat"
	"Structura/internal/logger"
	"Structura/internal/telegram"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Warn("load .env failed", "error", err)
	}
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		logger.SetLevelFromString(lvl)
	}

	token := os.Getenv("TELEGRAM_TOKEN")
	if token == "" {
		logger.Fatal("TELEGRAM_TOKEN missing")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bot := &telegram.Bot{
		Client:    telegram.NewClient(token),
		Responder: chat.NewResponder(nil),
	}
	logger.Info("telegram bot polling")
	if err := bot.Run(ctx); err != nil {
		logger.Fatal("bot stopped", "error", err)
	}
	logger.Info("telegram bot stopped")
}
