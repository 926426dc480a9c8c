package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the service, loaded from config.yaml
// with environment variable overrides.
type Config struct {
	ServerAddress string `mapstructure:"server_address"`
	LogLevel      string `mapstructure:"log_level"`

	// Hub data source: "csv", "sheet" or "postgres".
	DataSource string `mapstructure:"data_source"`
	CSVPath    string `mapstructure:"csv_path"`
	SheetURL   string `mapstructure:"sheet_url"`
	SheetName  string `mapstructure:"sheet_name"`
	DBSource   string `mapstructure:"db_source"`
	DBTable    string `mapstructure:"db_table"`

	HereAPIKey  string `mapstructure:"here_api_key"`
	HereBaseURL string `mapstructure:"here_base_url"`

	// Notification method: "email", "webhook" or "both".
	NotificationMethod string `mapstructure:"notification_method"`

	// Email provider: "sendgrid" or "mailgun".
	EmailProvider  string `mapstructure:"email_provider"`
	SendGridAPIKey string `mapstructure:"sendgrid_api_key"`
	MailgunAPIKey  string `mapstructure:"mailgun_api_key"`
	MailgunDomain  string `mapstructure:"mailgun_domain"`
	EmailFrom      string `mapstructure:"email_from"`
	EmailAdmin     string `mapstructure:"email_admin"`
	WebhookURL     string `mapstructure:"webhook_url"`
	WebhookSecret  string `mapstructure:"webhook_secret"`

	TypeformWebhookSecret string `mapstructure:"typeform_webhook_secret"`

	BatchWorkers int `mapstructure:"batch_workers"`
}

// LoadConfig reads configuration from the given directory and the
// environment. Environment variables take precedence over file values.
func LoadConfig(path string) (Config, error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetDefault("server_address", ":8080")
	viper.SetDefault("log_level", "info")
	viper.SetDefault("data_source", "csv")
	viper.SetDefault("csv_path", "data/hubs.csv")
	viper.SetDefault("sheet_name", "Hubs")
	viper.SetDefault("db_table", "hubs")
	viper.SetDefault("here_base_url", "https://geocode.search.hereapi.com/v1")
	viper.SetDefault("notification_method", "email")
	viper.SetDefault("email_provider", "sendgrid")
	viper.SetDefault("batch_workers", 8)

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// A missing file is fine, the environment can carry everything.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("config: read config: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) validate() error {
	switch c.DataSource {
	case "csv", "sheet", "postgres":
	default:
		return fmt.Errorf("config: data_source must be one of csv, sheet, postgres, got %q", c.DataSource)
	}

	switch c.NotificationMethod {
	case "email", "webhook", "both":
	default:
		return fmt.Errorf("config: notification_method must be one of email, webhook, both, got %q", c.NotificationMethod)
	}

	switch c.EmailProvider {
	case "sendgrid", "mailgun":
	default:
		return fmt.Errorf("config: email_provider must be one of sendgrid, mailgun, got %q", c.EmailProvider)
	}

	if c.BatchWorkers <= 0 {
		return fmt.Errorf("config: batch_workers must be > 0, got %d", c.BatchWorkers)
	}

	return nil
}
