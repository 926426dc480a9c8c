package main

import (
	"context"
	"net/http"
	"os"

	"hubmatch-api/internal/config"
	"hubmatch-api/internal/geocode"
	"hubmatch-api/internal/handler"
	"hubmatch-api/internal/notifier"
	"hubmatch-api/internal/service"
	"hubmatch-api/internal/source"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	hubSource, cleanup, err := buildHubSource(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot build hub source")
	}
	defer cleanup()

	geocoder := geocode.NewHereClient(cfg.HereAPIKey, cfg.HereBaseURL)
	notify := buildNotifier(cfg)

	matchService := service.NewMatchService(geocoder, hubSource, notify, cfg.BatchWorkers)

	matchHandler := handler.NewMatchHandler(matchService)
	webhookHandler := handler.NewWebhookHandler(matchService, cfg.TypeformWebhookSecret, cfg.WebhookSecret)
	hubsHandler := handler.NewHubsHandler(hubSource)

	r := gin.Default()

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})

	v1 := r.Group("/api/v1")
	v1.POST("/match", matchHandler.Match)
	v1.POST("/match/batch", matchHandler.MatchBatch)
	v1.POST("/webhooks/typeform", webhookHandler.Typeform)
	v1.POST("/webhooks/generic", webhookHandler.Generic)
	v1.GET("/hubs", hubsHandler.List)
	v1.GET("/hubs/stats", hubsHandler.Stats)
	v1.GET("/hubs/:id", hubsHandler.Get)

	log.Info().
		Str("addr", cfg.ServerAddress).
		Str("data_source", cfg.DataSource).
		Str("notification_method", cfg.NotificationMethod).
		Msg("starting hub matching service")

	if err := r.Run(cfg.ServerAddress); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

// buildHubSource wires the configured hub backend. The returned cleanup
// closes the database pool when one was opened.
func buildHubSource(cfg config.Config) (handler.HubDirectory, func(), error) {
	switch cfg.DataSource {
	case "csv":
		return source.NewCSVSource(cfg.CSVPath), func() {}, nil
	case "sheet":
		return source.NewSheetSource(cfg.SheetURL, cfg.SheetName), func() {}, nil
	case "postgres":
		pool, err := pgxpool.New(context.Background(), cfg.DBSource)
		if err != nil {
			return nil, nil, err
		}
		return source.NewPostgresSource(pool, cfg.DBTable), pool.Close, nil
	default:
		// config validation keeps this unreachable
		log.Error().Str("data_source", cfg.DataSource).Msg("unknown data source")
		os.Exit(1)
		return nil, nil, nil
	}
}

// buildNotifier assembles the configured notification channels. Returns nil
// when nothing is configured so the match path skips dispatch entirely.
func buildNotifier(cfg config.Config) notifier.Notifier {
	var channels notifier.Multi

	if cfg.NotificationMethod == "email" || cfg.NotificationMethod == "both" {
		switch cfg.EmailProvider {
		case "mailgun":
			if cfg.MailgunAPIKey != "" && cfg.MailgunDomain != "" {
				channels = append(channels, notifier.NewMailgunNotifier(cfg.MailgunAPIKey, cfg.MailgunDomain, cfg.EmailFrom, cfg.EmailAdmin))
			} else {
				log.Warn().Msg("email notifications enabled but mailgun_api_key or mailgun_domain is empty")
			}
		default:
			if cfg.SendGridAPIKey != "" {
				channels = append(channels, notifier.NewEmailNotifier(cfg.SendGridAPIKey, cfg.EmailFrom, cfg.EmailAdmin))
			} else {
				log.Warn().Msg("email notifications enabled but sendgrid_api_key is empty")
			}
		}
	}

	if cfg.NotificationMethod == "webhook" || cfg.NotificationMethod == "both" {
		if cfg.WebhookURL != "" {
			channels = append(channels, notifier.NewWebhookNotifier(cfg.WebhookURL, cfg.WebhookSecret))
		} else {
			log.Warn().Msg("webhook notifications enabled but webhook_url is empty")
		}
	}

	if len(channels) == 0 {
		return nil
	}
	return channels
}
