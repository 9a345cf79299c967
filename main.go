package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/Abenetwolde/afalagi-telegram-bot/internal/bot"
	"github.com/Abenetwolde/afalagi-telegram-bot/internal/config"
	"github.com/Abenetwolde/afalagi-telegram-bot/internal/database"
	logger "github.com/Abenetwolde/afalagi-telegram-bot/internal/logging"
	"github.com/Abenetwolde/afalagi-telegram-bot/internal/router"

	"go.uber.org/zap"
)

func main() {
	// Configuration is needed before the real logger exists; bootstrap with
	// a plain production logger.
	bootLog, err := zap.NewProduction()
	if err != nil {
		panic("failed to initialize bootstrap logger: " + err.Error())
	}
	if err := config.Init(".", bootLog); err != nil {
		bootLog.Fatal("Failed to load configuration", zap.Error(err))
	}

	log, err := logger.Init(config.Conf.Logging)
	if err != nil {
		bootLog.Fatal("Failed to initialize logger", zap.Error(err))
	}
	defer log.Sync()

	// Initialize database and seed the questionnaire on first boot.
	database.Init(log)
	if err := database.SeedQuestions(log, "config/questions.yaml"); err != nil {
		log.Fatal("Failed to seed questions", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Telegram transport doubles as the notifier for moderation messages.
	tgBot, err := bot.New(config.Conf.Bot, log)
	if err != nil {
		log.Fatal("Failed to create bot", zap.Error(err))
	}
	engine := bot.NewEngine(
		bot.NewStore(),
		tgBot,
		log,
		config.Conf.Bot.AdminIDList(),
		config.Conf.Bot.ChannelID,
	)
	tgBot.SetEngine(engine)

	// Moderation API runs alongside the bot.
	go func() {
		r := router.Setup(log)
		port := ":" + config.Conf.Server.Port
		log.Info("Moderation API listening", zap.String("port", port))
		if err := r.Run(port); err != nil {
			log.Fatal("Failed to run moderation API", zap.Error(err))
		}
	}()

	tgBot.Run(ctx)
	log.Info("Bot stopped")
}
