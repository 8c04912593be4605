package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/bwmarrin/discordgo"
	"github.com/joho/godotenv"

	"github.com/gatehook/gatehook/pkg/bridge"
	"github.com/gatehook/gatehook/pkg/config"
	"github.com/gatehook/gatehook/pkg/discord"
	"github.com/gatehook/gatehook/pkg/logger"
	"github.com/gatehook/gatehook/pkg/webhook"
)

func main() {
	// Best-effort: a missing .env file is fine, the environment wins.
	_ = godotenv.Load()

	if level := os.Getenv("GATEHOOK_LOG_LEVEL"); level != "" {
		logger.SetLevel(logger.ParseLevel(level))
	}

	logger.InfoC("main", "Starting gatehook")

	cfg, err := config.Load()
	if err != nil {
		logger.FatalCF("main", "Invalid configuration", map[string]interface{}{
			"error": err.Error(),
		})
	}

	session, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		logger.FatalCF("main", "Failed to create gateway session", map[string]interface{}{
			"error": err.Error(),
		})
	}

	session.Identify.Intents = discord.ComputeIntents(cfg)

	sender := webhook.NewHTTPSender(cfg.Endpoint, webhook.Options{
		Timeout:             cfg.HTTPTimeout,
		ConnectTimeout:      cfg.HTTPConnectTimeout,
		Insecure:            cfg.InsecureMode,
		MaxResponseBodySize: cfg.MaxResponseBodySize,
		MaxActions:          cfg.MaxActions,
	})

	b := bridge.New(
		discord.NewSessionService(session),
		discord.NewStateChannelInfo(session),
		sender,
	)

	discord.NewHandler(cfg, b).Register(session)

	if err := session.Open(); err != nil {
		logger.FatalCF("main", "Failed to open gateway connection", map[string]interface{}{
			"error": err.Error(),
		})
	}

	logger.InfoCF("main", "Gateway connection open", map[string]interface{}{
		"endpoint": cfg.Endpoint.String(),
	})

	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM)
	<-sc

	logger.InfoC("main", "Shutting down")
	if err := session.Close(); err != nil {
		logger.WarnCF("main", "Error closing gateway session", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
