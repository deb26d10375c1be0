package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg == nil {
		t.Fatal("expected non-nil config")
	}

	if cfg.IMAP.Host != DefaultIMAP {
		t.Errorf("IMAP.Host = %q, want %q", cfg.IMAP.Host, DefaultIMAP)
	}
	if cfg.IMAP.Port != DefaultIMAPPort {
		t.Errorf("IMAP.Port = %d, want %d", cfg.IMAP.Port, DefaultIMAPPort)
	}
	if cfg.IMAP.Username != "" {
		t.Errorf("IMAP.Username = %q, want empty", cfg.IMAP.Username)
	}

	if cfg.Defaults.Mailbox != "[Gmail]/All Mail" {
		t.Errorf("Defaults.Mailbox = %q, want %q", cfg.Defaults.Mailbox, "[Gmail]/All Mail")
	}
	if cfg.Defaults.Limit != 10000 {
		t.Errorf("Defaults.Limit = %d, want %d", cfg.Defaults.Limit, 10000)
	}

	if cfg.Render.Width != 1800 || cfg.Render.Height != 1400 {
		t.Errorf("Render size = %dx%d, want 1800x1400", cfg.Render.Width, cfg.Render.Height)
	}
	if cfg.Render.Weighting != "normalized" {
		t.Errorf("Render.Weighting = %q, want %q", cfg.Render.Weighting, "normalized")
	}
	if cfg.Render.WordCloud != "wordcloud.png" {
		t.Errorf("Render.WordCloud = %q, want %q", cfg.Render.WordCloud, "wordcloud.png")
	}
	if cfg.Render.Heatmap != "heatmap.png" {
		t.Errorf("Render.Heatmap = %q, want %q", cfg.Render.Heatmap, "heatmap.png")
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
}

func TestConstants(t *testing.T) {
	if AppName != "mail-wordcloud" {
		t.Errorf("AppName = %q, want %q", AppName, "mail-wordcloud")
	}
	if DefaultIMAP != "imap.gmail.com" {
		t.Errorf("DefaultIMAP = %q, want %q", DefaultIMAP, "imap.gmail.com")
	}
	if DefaultIMAPPort != 993 {
		t.Errorf("DefaultIMAPPort = %d, want %d", DefaultIMAPPort, 993)
	}
}

func TestConfigDir(t *testing.T) {
	dir, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir() error = %v", err)
	}

	if filepath.Base(dir) != AppName {
		t.Errorf("config dir should end with %q, got %q", AppName, filepath.Base(dir))
	}
}

func TestConfigPath(t *testing.T) {
	path, err := ConfigPath()
	if err != nil {
		t.Fatalf("ConfigPath() error = %v", err)
	}

	if filepath.Base(path) != "config.yaml" {
		t.Errorf("config path should end with %q, got %q", "config.yaml", filepath.Base(path))
	}
}

func TestLoadAndSave(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	cfg := DefaultConfig()
	cfg.IMAP.Username = "test@gmail.com"
	cfg.IMAP.Port = 9993
	cfg.Defaults.Limit = 50
	cfg.Render.Weighting = "raw"
	cfg.Stopwords = "/tmp/stop.txt"

	if err := cfg.Save(configPath); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if loaded.IMAP.Username != "test@gmail.com" {
		t.Errorf("Username = %q, want %q", loaded.IMAP.Username, "test@gmail.com")
	}
	if loaded.IMAP.Port != 9993 {
		t.Errorf("Port = %d, want %d", loaded.IMAP.Port, 9993)
	}
	if loaded.Defaults.Limit != 50 {
		t.Errorf("Limit = %d, want %d", loaded.Defaults.Limit, 50)
	}
	if loaded.Render.Weighting != "raw" {
		t.Errorf("Weighting = %q, want %q", loaded.Render.Weighting, "raw")
	}
	if loaded.Stopwords != "/tmp/stop.txt" {
		t.Errorf("Stopwords = %q, want %q", loaded.Stopwords, "/tmp/stop.txt")
	}
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("imap:\n  username: me@gmail.com\n"), 0600); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.IMAP.Username != "me@gmail.com" {
		t.Errorf("Username = %q, want %q", cfg.IMAP.Username, "me@gmail.com")
	}
	if cfg.IMAP.Host != DefaultIMAP {
		t.Errorf("Host = %q, want default %q", cfg.IMAP.Host, DefaultIMAP)
	}
	if cfg.Render.Width != 1800 {
		t.Errorf("Width = %d, want default 1800", cfg.Render.Width)
	}
}

func TestLoadNonExistent(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("expected error for non-existent file")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	if err := os.WriteFile(configPath, []byte("invalid: yaml: content: ["), 0600); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	if _, err := Load(configPath); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestSaveCreatesDirectory(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "subdir", "config.yaml")

	if err := DefaultConfig().Save(configPath); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if _, err := os.Stat(filepath.Dir(configPath)); os.IsNotExist(err) {
		t.Error("directory was not created")
	}
}

func TestSavePermissions(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	if err := DefaultConfig().Save(configPath); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	info, err := os.Stat(configPath)
	if err != nil {
		t.Fatalf("failed to stat config file: %v", err)
	}

	if mode := info.Mode().Perm(); mode != 0600 {
		t.Errorf("config file permissions = %o, want %o", mode, 0600)
	}
}

func TestConfigYAMLFormat(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	cfg := DefaultConfig()
	cfg.IMAP.Username = "user@gmail.com"

	if err := cfg.Save(configPath); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	content, err := os.ReadFile(configPath)
	if err != nil {
		t.Fatalf("failed to read config: %v", err)
	}

	s := string(content)
	for _, want := range []string{"imap:", "defaults:", "render:", "heatmap_width:", "username: user@gmail.com"} {
		if !strings.Contains(s, want) {
			t.Errorf("YAML should contain %q", want)
		}
	}
	if strings.Contains(s, "stopwords:") {
		t.Error("empty stopwords should be omitted")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty host", func(c *Config) { c.IMAP.Host = "" }},
		{"zero port", func(c *Config) { c.IMAP.Port = 0 }},
		{"port too large", func(c *Config) { c.IMAP.Port = 70000 }},
		{"zero width", func(c *Config) { c.Render.Width = 0 }},
		{"negative height", func(c *Config) { c.Render.Height = -1 }},
		{"unknown weighting", func(c *Config) { c.Render.Weighting = "log" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(UsernameEnv, "env@gmail.com")

	cfg := DefaultConfig()
	cfg.IMAP.Username = "file@gmail.com"
	cfg.ApplyEnv()

	if cfg.IMAP.Username != "env@gmail.com" {
		t.Errorf("Username = %q, want %q", cfg.IMAP.Username, "env@gmail.com")
	}
}

func TestSetPasswordWithoutUsername(t *testing.T) {
	if err := SetPassword("", "secret"); err == nil {
		t.Error("expected error when setting password without username")
	}
}

func TestGetPasswordWithoutUsername(t *testing.T) {
	password, err := GetPassword("")
	if err != nil {
		t.Errorf("GetPassword(\"\") error = %v, want nil", err)
	}
	if password != "" {
		t.Errorf("GetPassword(\"\") = %q, want empty", password)
	}
}

func TestExists(t *testing.T) {
	// Depends on the user's system state; only check it does not panic.
	_ = Exists()
}
