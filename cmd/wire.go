package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/bnema/dipwatch/internal/adapters/deliver/console"
	"github.com/bnema/dipwatch/internal/adapters/deliver/discord"
	"github.com/bnema/dipwatch/internal/adapters/deliver/mail"
	"github.com/bnema/dipwatch/internal/adapters/repo/jsonfile"
	"github.com/bnema/dipwatch/internal/adapters/scrape"
	"github.com/bnema/dipwatch/internal/adapters/seed"
	"github.com/bnema/dipwatch/internal/application"
	"github.com/bnema/dipwatch/internal/domain"
	"github.com/bnema/dipwatch/internal/ports"
)

const (
	configName = "config"
	configType = "toml"
	configDir  = ".dipwatch"

	defaultGameURL = "http://webdiplomacy.net/board.php?"
)

type appConfig struct {
	GameURL              string
	GameID               string
	OneShot              bool
	WaitMinutes          int
	WarningHours         float64
	FatalHours           float64
	AnnounceStatusChange bool
	SavePath             string
	PolicyFile           string

	ConsoleEnabled bool

	MailEnabled bool
	Mail        mail.Config

	DiscordEnabled   bool
	DiscordToken     string
	DiscordChannelID string
}

type app struct {
	cfg    appConfig
	logger *slog.Logger
	clock  ports.Clock
}

func wireApp() (*app, error) {
	dir, err := resolveConfigDir()
	if err != nil {
		return nil, err
	}

	cfg, err := loadConfig(dir)
	if err != nil {
		return nil, fmt.Errorf("wire configuration: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	return &app{cfg: cfg, logger: logger, clock: ports.SystemClock{}}, nil
}

func resolveConfigDir() (string, error) {
	if dir := os.Getenv("DIPWATCH_CONFIG_DIR"); dir != "" {
		return dir, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}

	return filepath.Join(homeDir, configDir), nil
}

func loadConfig(dir string) (appConfig, error) {
	v := viper.New()
	v.SetConfigName(configName)
	v.SetConfigType(configType)
	v.AddConfigPath(dir)

	v.SetDefault("game.url", defaultGameURL)
	v.SetDefault("game.id", "")
	v.SetDefault("watch.oneshot", true)
	v.SetDefault("watch.wait_minutes", 5)
	v.SetDefault("warn.warning_hours", 12.0)
	v.SetDefault("warn.fatal_hours", 6.0)
	v.SetDefault("announce_status_change", true)
	v.SetDefault("save_path", dir)
	v.SetDefault("notify.policy_file", "")
	v.SetDefault("console.enabled", true)
	v.SetDefault("mail.enabled", false)
	v.SetDefault("mail.host", "localhost")
	v.SetDefault("mail.port", "587")
	v.SetDefault("mail.username", "")
	v.SetDefault("mail.from", "")
	v.SetDefault("mail.to", []string{})
	v.SetDefault("discord.enabled", false)
	v.SetDefault("discord.channel_id", "")

	if err := v.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return appConfig{}, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := appConfig{
		GameURL:              v.GetString("game.url"),
		GameID:               v.GetString("game.id"),
		OneShot:              v.GetBool("watch.oneshot"),
		WaitMinutes:          v.GetInt("watch.wait_minutes"),
		WarningHours:         v.GetFloat64("warn.warning_hours"),
		FatalHours:           v.GetFloat64("warn.fatal_hours"),
		AnnounceStatusChange: v.GetBool("announce_status_change"),
		SavePath:             v.GetString("save_path"),
		PolicyFile:           v.GetString("notify.policy_file"),
		ConsoleEnabled:       v.GetBool("console.enabled"),
		MailEnabled:          v.GetBool("mail.enabled"),
		Mail: mail.Config{
			Host:      v.GetString("mail.host"),
			Port:      v.GetString("mail.port"),
			Username:  v.GetString("mail.username"),
			Password:  os.Getenv("DIPWATCH_MAIL_PASSWORD"),
			From:      v.GetString("mail.from"),
			DefaultTo: v.GetStringSlice("mail.to"),
		},
		DiscordEnabled:   v.GetBool("discord.enabled"),
		DiscordToken:     os.Getenv("DIPWATCH_DISCORD_TOKEN"),
		DiscordChannelID: v.GetString("discord.channel_id"),
	}

	if cfg.DiscordEnabled && cfg.DiscordToken == "" {
		return appConfig{}, fmt.Errorf("DIPWATCH_DISCORD_TOKEN env is required when discord is enabled")
	}

	return cfg, nil
}

func (a *app) newRepository() (ports.SnapshotRepository, error) {
	repo, err := jsonfile.NewRepository(a.cfg.SavePath)
	if err != nil {
		return nil, fmt.Errorf("wire snapshot repository: %w", err)
	}
	return repo, nil
}

// newSinks builds the enabled delivery sinks. The returned cleanup releases
// sinks holding a connection (Discord) and must run after the last
// delivery.
func (a *app) newSinks(out io.Writer) ([]ports.Deliverer, func(), error) {
	var sinks []ports.Deliverer
	var closers []io.Closer

	if a.cfg.ConsoleEnabled {
		sinks = append(sinks, console.NewSink(out))
	}

	if a.cfg.MailEnabled {
		sink, err := mail.NewSink(a.cfg.Mail, a.clock)
		if err != nil {
			return nil, nil, fmt.Errorf("wire mail sink: %w", err)
		}
		sinks = append(sinks, sink)
	}

	if a.cfg.DiscordEnabled {
		sink, err := discord.NewSink(a.cfg.DiscordToken, a.cfg.DiscordChannelID)
		if err != nil {
			return nil, nil, fmt.Errorf("wire discord sink: %w", err)
		}
		sinks = append(sinks, sink)
		closers = append(closers, sink)
	}

	cleanup := func() {
		for _, closer := range closers {
			if err := closer.Close(); err != nil {
				a.logger.Error("close sink", "error", err)
			}
		}
	}

	return sinks, cleanup, nil
}

func (a *app) newWatcher(gameURL string, gameID domain.GameID, out io.Writer) (*application.Watcher, func(), error) {
	if gameID == "" {
		return nil, nil, fmt.Errorf("game id is required (flag --game-id or config game.id)")
	}

	repo, err := a.newRepository()
	if err != nil {
		return nil, nil, err
	}

	sinks, cleanup, err := a.newSinks(out)
	if err != nil {
		return nil, nil, err
	}

	seedPolicy, err := seed.Load(a.cfg.PolicyFile)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire policy seed: %w", err)
	}

	scraper := scrape.New(&http.Client{Timeout: 30 * time.Second}, gameURL, gameID, a.logger)
	dispatcher := application.NewDispatcher(sinks, a.logger)

	return application.NewWatcher(scraper, repo, dispatcher, application.WatcherConfig{
		GameID: gameID,
		Thresholds: domain.Thresholds{
			Warning: a.cfg.WarningHours,
			Fatal:   a.cfg.FatalHours,
		},
		AnnounceStatusChange: a.cfg.AnnounceStatusChange,
		SeedPolicy:           seedPolicy,
	}, a.logger), cleanup, nil
}
