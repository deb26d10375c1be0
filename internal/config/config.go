package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/zalando/go-keyring"
	"gopkg.in/yaml.v3"
)

const (
	AppName         = "mail-wordcloud"
	DefaultIMAP     = "imap.gmail.com"
	DefaultIMAPPort = 993
	DefaultMailbox  = "[Gmail]/All Mail"
	DefaultLimit    = 10000

	// UsernameEnv overrides imap.username. It may also be set in a .env
	// file in the working directory.
	UsernameEnv = "MAILCLOUD_USERNAME"
)

type IMAPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
}

type DefaultsConfig struct {
	Mailbox string `yaml:"mailbox"`
	Limit   int    `yaml:"limit"`
	Top     int    `yaml:"top"`
}

type RenderConfig struct {
	Font          string  `yaml:"font"`
	Width         int     `yaml:"width"`
	Height        int     `yaml:"height"`
	Weighting     string  `yaml:"weighting"`
	Background    string  `yaml:"background"`
	WordCloud     string  `yaml:"wordcloud"`
	Heatmap       string  `yaml:"heatmap"`
	HeatmapWidth  float64 `yaml:"heatmap_width"`
	HeatmapHeight float64 `yaml:"heatmap_height"`
}

type Config struct {
	IMAP      IMAPConfig     `yaml:"imap"`
	Defaults  DefaultsConfig `yaml:"defaults"`
	Render    RenderConfig   `yaml:"render"`
	Stopwords string         `yaml:"stopwords,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		IMAP: IMAPConfig{
			Host: DefaultIMAP,
			Port: DefaultIMAPPort,
		},
		Defaults: DefaultsConfig{
			Mailbox: DefaultMailbox,
			Limit:   DefaultLimit,
			Top:     20,
		},
		Render: RenderConfig{
			Font:          "OpenSans-Bold.ttf",
			Width:         1800,
			Height:        1400,
			Weighting:     "normalized",
			Background:    "#000000",
			WordCloud:     "wordcloud.png",
			Heatmap:       "heatmap.png",
			HeatmapWidth:  8,
			HeatmapHeight: 4,
		},
	}
}

func ConfigDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get config directory: %w", err)
	}
	return filepath.Join(configDir, AppName), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

func Load(path string) (*Config, error) {
	if path == "" {
		var err error
		path, err = ConfigPath()
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s - run '%s config init' to create one", path, AppName)
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, nil
}

// ApplyEnv loads a .env file from the working directory, if present, and
// applies environment overrides.
func (c *Config) ApplyEnv() {
	_ = godotenv.Load()
	if user := os.Getenv(UsernameEnv); user != "" {
		c.IMAP.Username = user
	}
}

func (c *Config) Save(path string) error {
	if path == "" {
		var err error
		path, err = ConfigPath()
		if err != nil {
			return err
		}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

func (c *Config) Validate() error {
	if c.IMAP.Host == "" {
		return errors.New("imap.host must not be empty")
	}
	if c.IMAP.Port <= 0 || c.IMAP.Port > 65535 {
		return fmt.Errorf("imap.port must be between 1 and 65535, got %d", c.IMAP.Port)
	}
	if c.Render.Width <= 0 || c.Render.Height <= 0 {
		return fmt.Errorf("render size must be positive, got %dx%d", c.Render.Width, c.Render.Height)
	}
	switch c.Render.Weighting {
	case "raw", "normalized":
	default:
		return fmt.Errorf("render.weighting must be raw or normalized, got %q", c.Render.Weighting)
	}
	return nil
}

// SetPassword stores the password for username in the system keyring.
func SetPassword(username, password string) error {
	if username == "" {
		return errors.New("username must be set before storing password")
	}
	return keyring.Set(AppName, username, password)
}

// GetPassword returns the stored password for username. A missing entry
// is reported as ("", nil).
func GetPassword(username string) (string, error) {
	if username == "" {
		return "", nil
	}
	password, err := keyring.Get(AppName, username)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("failed to get password from keyring: %w", err)
	}
	return password, nil
}

func DeletePassword(username string) error {
	return keyring.Delete(AppName, username)
}

func Exists() bool {
	path, err := ConfigPath()
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}
