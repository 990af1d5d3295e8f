package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Global
		Database
		Collection
		Site
		Mail
		Telegram
		Schedules
		Tasks
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
		Timezone                 string
	}
	Database struct {
		Path             string
		RunRetentionDays int // Days to keep job run history (default: 30)
	}
	Collection struct {
		Dir           string
		Email         string
		Password      string
		Bridge        string        // Bridge command line
		MaxRetryDelay time.Duration // Upper bound of the random pause between full sync attempts
		MaxAttempts   int           // 0 retries forever
	}
	Site struct {
		DocsDir       string
		MkdocsConfig  string
		MkdocsCommand string
		BaseURL       string
		ViewerURL     string
		GitLabCI      bool
		ExportWorkers int
	}
	Mail struct {
		Server    string
		Port      int
		Password  string
		Recipient string // Backup recipient, defaults to the account email
	}
	Telegram struct {
		Token  string
		ChatID string
		APIURL string
	}
	Schedules struct {
		Backup  string // Cron format, empty disables the job
		Publish string
		Notify  string
		Sync    string
	}
	Tasks struct {
		Workers           int
		MaxRetries        int
		RetryDelay        time.Duration
		TaskTimeout       time.Duration
		ReleaseAfter      time.Duration
		CleanupInterval   time.Duration
		RetentionDuration time.Duration
	}
)

// Location returns the timezone dates are displayed and jobs scheduled in.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Global.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", c.Global.Timezone, err)
	}
	return loc, nil
}

// JobSchedules maps job names to their cron expressions, leaving out the
// disabled ones.
func (c *Config) JobSchedules() map[string]string {
	schedules := map[string]string{}
	for job, schedule := range map[string]string{
		"backup":  c.Schedules.Backup,
		"publish": c.Schedules.Publish,
		"notify":  c.Schedules.Notify,
		"sync":    c.Schedules.Sync,
	} {
		if schedule != "" {
			schedules[job] = schedule
		}
	}
	return schedules
}

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	// an empty *_SCHEDULE disables the job
	v.AllowEmptyEnv(true)
	v.SetDefault("port", 8189)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 5)
	v.SetDefault("timezone", "Europe/Paris")
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("run_retention_days", 30)

	// Collection defaults
	v.SetDefault("collection_dir", DefaultCollectionDir)
	v.SetDefault("anki_bridge", "anki-bridge")
	v.SetDefault("sync_max_retry_delay", "30s")
	v.SetDefault("sync_max_attempts", 0)

	// Site defaults
	v.SetDefault("docs_dir", "./docs")
	v.SetDefault("mkdocs_config", "./mkdocs.yml")
	v.SetDefault("mkdocs_command", "mkdocs")
	v.SetDefault("base_url", DefaultBaseURL)
	v.SetDefault("flashcards_viewer", DefaultViewerURL)
	v.SetDefault("gitlab_ci", false)
	// the bridge holds the collection exclusively, so concurrent exports
	// only work against a bridge that tolerates it
	v.SetDefault("export_workers", 1)

	// Mail and chat defaults
	v.SetDefault("smtp_port", 465)
	v.SetDefault("telegram_api_url", "https://api.telegram.org")

	// Schedule defaults
	v.SetDefault("backup_schedule", "0 3 * * *")
	v.SetDefault("publish_schedule", "30 3 * * *")
	v.SetDefault("notify_schedule", "0 8 * * *")
	v.SetDefault("sync_schedule", "")

	// Task queue defaults
	v.SetDefault("task_workers", 1)
	v.SetDefault("task_max_retries", 2)
	v.SetDefault("task_retry_delay", "5m")
	v.SetDefault("task_timeout", "30m")
	v.SetDefault("task_release_after", "45m")
	v.SetDefault("task_cleanup_interval", "1h")
	v.SetDefault("task_retention_duration", "72h")

	recipient := v.GetString("BACKUP_RECIPIENT")
	if recipient == "" {
		recipient = v.GetString("ANKIWEB_EMAIL")
	}

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
			Timezone:                 v.GetString("TIMEZONE"),
		},
		Database: Database{
			Path:             v.GetString("DATABASE_PATH"),
			RunRetentionDays: v.GetInt("RUN_RETENTION_DAYS"),
		},
		Collection: Collection{
			Dir:           v.GetString("COLLECTION_DIR"),
			Email:         v.GetString("ANKIWEB_EMAIL"),
			Password:      v.GetString("ANKIWEB_PASSWORD"),
			Bridge:        v.GetString("ANKI_BRIDGE"),
			MaxRetryDelay: v.GetDuration("SYNC_MAX_RETRY_DELAY"),
			MaxAttempts:   v.GetInt("SYNC_MAX_ATTEMPTS"),
		},
		Site: Site{
			DocsDir:       v.GetString("DOCS_DIR"),
			MkdocsConfig:  v.GetString("MKDOCS_CONFIG"),
			MkdocsCommand: v.GetString("MKDOCS_COMMAND"),
			BaseURL:       v.GetString("BASE_URL"),
			ViewerURL:     v.GetString("FLASHCARDS_VIEWER"),
			GitLabCI:      v.GetString("GITLAB_CI") != "",
			ExportWorkers: v.GetInt("EXPORT_WORKERS"),
		},
		Mail: Mail{
			Server:    v.GetString("SMTP_SERVER"),
			Port:      v.GetInt("SMTP_PORT"),
			Password:  v.GetString("EMAIL_PASSWORD"),
			Recipient: recipient,
		},
		Telegram: Telegram{
			Token:  v.GetString("TELEGRAM_BOT_TOKEN"),
			ChatID: v.GetString("TELEGRAM_CHAT_ID"),
			APIURL: v.GetString("TELEGRAM_API_URL"),
		},
		Schedules: Schedules{
			Backup:  v.GetString("BACKUP_SCHEDULE"),
			Publish: v.GetString("PUBLISH_SCHEDULE"),
			Notify:  v.GetString("NOTIFY_SCHEDULE"),
			Sync:    v.GetString("SYNC_SCHEDULE"),
		},
		Tasks: Tasks{
			Workers:           v.GetInt("TASK_WORKERS"),
			MaxRetries:        v.GetInt("TASK_MAX_RETRIES"),
			RetryDelay:        v.GetDuration("TASK_RETRY_DELAY"),
			TaskTimeout:       v.GetDuration("TASK_TIMEOUT"),
			ReleaseAfter:      v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval:   v.GetDuration("TASK_CLEANUP_INTERVAL"),
			RetentionDuration: v.GetDuration("TASK_RETENTION_DURATION"),
		},
	}
}
