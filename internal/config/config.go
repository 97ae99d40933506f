package config

import (
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Archive      ArchiveConfig  `yaml:"archive" toml:"archive"`
	Logging      LoggingConfig  `yaml:"logging" toml:"logging"`
	Metrics      MetricsConfig  `yaml:"metrics" toml:"metrics"`
	Notify       NotifyConfig   `yaml:"notify" toml:"notify"`
	Schedule     ScheduleConfig `yaml:"schedule" toml:"schedule"`
	ConfigReload ReloadConfig   `yaml:"configReload" toml:"configReload"`
}

type ArchiveConfig struct {
	Root             string `yaml:"root" toml:"root"`
	ArchiveAfterDays int    `yaml:"archiveAfterDays" toml:"archiveAfterDays"`
	DeleteAfterDays  int    `yaml:"deleteAfterDays" toml:"deleteAfterDays"` // 0 = use DeleteBefore
	DeleteBefore     string `yaml:"deleteBefore" toml:"deleteBefore"`       // YYYY-MM-DD, empty = no expiry
	OutputDir        string `yaml:"outputDir" toml:"outputDir"`
	OnCollision      string `yaml:"onCollision" toml:"onCollision"` // "suffix", "fail"
	DryRun           bool   `yaml:"dryRun" toml:"dryRun"`
	PruneEmptyDirs   bool   `yaml:"pruneEmptyDirs" toml:"pruneEmptyDirs"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`   // "debug", "info", "warn", "error"
	Format string `yaml:"format" toml:"format"` // "text", "json"
	Output string `yaml:"output" toml:"output"` // "stdout", "stderr", file path
}

type MetricsConfig struct {
	Namespace string `yaml:"namespace" toml:"namespace"`
	Textfile  string `yaml:"textfile" toml:"textfile"` // node_exporter textfile collector target
	Listen    string `yaml:"listen" toml:"listen"`     // e.g. ":9108", schedule mode only
}

type NotifyConfig struct {
	Telegram TelegramConfig `yaml:"telegram" toml:"telegram"`
}

type TelegramConfig struct {
	Enabled  bool   `yaml:"enabled" toml:"enabled"`
	Token    string `yaml:"token" toml:"token"`
	ChatID   string `yaml:"chatId" toml:"chatId"`
	ProxyURL string `yaml:"proxyUrl" toml:"proxyUrl"`
}

type ScheduleConfig struct {
	Cron string `yaml:"cron" toml:"cron"` // standard 5-field spec or descriptor like "@daily"
}

type ReloadConfig struct {
	Enabled        bool     `yaml:"enabled" toml:"enabled"`
	Mode           string   `yaml:"mode" toml:"mode"` // "auto", "poll", "fsnotify"
	PollInterval   Duration `yaml:"pollInterval" toml:"pollInterval"`
	DebounceWindow Duration `yaml:"debounceWindow" toml:"debounceWindow"`
}

// Duration accepts Go duration strings ("5s", "500ms") in YAML and TOML.
type Duration time.Duration

func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	return d.UnmarshalText([]byte(node.Value))
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Defaults returns the configuration used for any field the file leaves empty.
func Defaults() Config {
	return Config{
		Archive: ArchiveConfig{
			ArchiveAfterDays: 30,
			OnCollision:      "suffix",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
		Metrics: MetricsConfig{
			Namespace: "dir_archiver",
		},
		Schedule: ScheduleConfig{
			Cron: "@daily",
		},
		ConfigReload: ReloadConfig{
			Mode:           "auto",
			PollInterval:   Duration(5 * time.Second),
			DebounceWindow: Duration(500 * time.Millisecond),
		},
	}
}
