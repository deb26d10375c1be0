package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/bscott/mail-wordcloud/internal/config"
	"github.com/bscott/mail-wordcloud/internal/render"
)

func (c *ConfigInitCmd) Run(ctx *Context) error {
	return runConfigInit(ctx, os.Stdin, ctx.Formatter.Writer)
}

func runConfigInit(ctx *Context, in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, "mail-wordcloud Configuration Wizard")
	fmt.Fprintln(out, "===================================")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Press enter to keep the value in brackets.")
	fmt.Fprintln(out)

	reader := bufio.NewReader(in)
	ask := func(label, current string) (string, error) {
		if current != "" {
			fmt.Fprintf(out, "%s [%s]: ", label, current)
		} else {
			fmt.Fprintf(out, "%s: ", label)
		}
		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("failed to read input: %w", err)
		}
		if line = strings.TrimSpace(line); line != "" {
			return line, nil
		}
		return current, nil
	}

	cfg := config.DefaultConfig()

	username, err := ask("Username (email address)", cfg.IMAP.Username)
	if err != nil {
		return err
	}
	if username == "" {
		return errors.New("username is required")
	}
	cfg.IMAP.Username = username

	if cfg.IMAP.Host, err = ask("IMAP host", cfg.IMAP.Host); err != nil {
		return err
	}

	portStr, err := ask("IMAP port", strconv.Itoa(cfg.IMAP.Port))
	if err != nil {
		return err
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return fmt.Errorf("invalid IMAP port: %s", portStr)
	}
	cfg.IMAP.Port = port

	if cfg.Defaults.Mailbox, err = ask("Mailbox to search", cfg.Defaults.Mailbox); err != nil {
		return err
	}
	if cfg.Render.Font, err = ask("Word cloud font (TrueType file)", cfg.Render.Font); err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := cfg.Save(ctx.Globals.Config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Enter the password to store it in the system keyring, or leave it empty to be asked on every run.")
	fmt.Fprintln(out, "(Gmail accounts with 2-step verification need an app password.)")
	password, err := ctx.Prompter.Password()
	if err != nil {
		return err
	}
	if password != "" {
		if err := config.SetPassword(username, password); err != nil {
			return fmt.Errorf("failed to store password in keyring: %w", err)
		}
		fmt.Fprintln(out, "Password stored securely in system keyring.")
	}

	configPath := ctx.Globals.Config
	if configPath == "" {
		configPath, _ = config.ConfigPath()
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Configuration saved to %s\n", configPath)
	fmt.Fprintf(out, "Test your connection with: %s mailbox list\n", config.AppName)

	return nil
}

func (c *ConfigShowCmd) Run(ctx *Context) error {
	if ctx.Config == nil {
		return fmt.Errorf("no configuration found - run '%s config init' first", config.AppName)
	}
	cfg := ctx.Config

	passwordStored := false
	if password, err := config.GetPassword(cfg.IMAP.Username); err == nil && password != "" {
		passwordStored = true
	}

	if ctx.Formatter.JSON {
		return ctx.Formatter.PrintJSON(map[string]interface{}{
			"imap": map[string]interface{}{
				"host":            cfg.IMAP.Host,
				"port":            cfg.IMAP.Port,
				"username":        cfg.IMAP.Username,
				"password_stored": passwordStored,
			},
			"defaults": map[string]interface{}{
				"mailbox": cfg.Defaults.Mailbox,
				"limit":   cfg.Defaults.Limit,
				"top":     cfg.Defaults.Top,
			},
			"render": map[string]interface{}{
				"font":           cfg.Render.Font,
				"width":          cfg.Render.Width,
				"height":         cfg.Render.Height,
				"weighting":      cfg.Render.Weighting,
				"background":     cfg.Render.Background,
				"wordcloud":      cfg.Render.WordCloud,
				"heatmap":        cfg.Render.Heatmap,
				"heatmap_width":  cfg.Render.HeatmapWidth,
				"heatmap_height": cfg.Render.HeatmapHeight,
			},
			"stopwords": cfg.Stopwords,
		})
	}

	w := ctx.Formatter.Writer
	configPath := ctx.Globals.Config
	if configPath == "" {
		configPath, _ = config.ConfigPath()
	}
	fmt.Fprintf(w, "Configuration file: %s\n\n", configPath)

	fmt.Fprintln(w, "IMAP Settings:")
	fmt.Fprintf(w, "  Host:     %s\n", cfg.IMAP.Host)
	fmt.Fprintf(w, "  Port:     %d\n", cfg.IMAP.Port)
	fmt.Fprintf(w, "  Username: %s\n", cfg.IMAP.Username)
	if passwordStored {
		fmt.Fprintln(w, "  Password: ********** (stored in keyring)")
	} else {
		fmt.Fprintln(w, "  Password: not stored (prompted on each run)")
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Defaults:")
	fmt.Fprintf(w, "  Mailbox: %s\n", cfg.Defaults.Mailbox)
	fmt.Fprintf(w, "  Limit:   %d\n", cfg.Defaults.Limit)
	fmt.Fprintf(w, "  Top:     %d\n", cfg.Defaults.Top)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Render:")
	fmt.Fprintf(w, "  Font:      %s\n", cfg.Render.Font)
	fmt.Fprintf(w, "  Size:      %dx%d\n", cfg.Render.Width, cfg.Render.Height)
	fmt.Fprintf(w, "  Weighting: %s\n", cfg.Render.Weighting)
	fmt.Fprintf(w, "  Word cloud: %s\n", cfg.Render.WordCloud)
	fmt.Fprintf(w, "  Heatmap:   %s (%gx%g in)\n", cfg.Render.Heatmap, cfg.Render.HeatmapWidth, cfg.Render.HeatmapHeight)

	if cfg.Stopwords != "" {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Stopwords: %s\n", cfg.Stopwords)
	}

	return nil
}

func (c *ConfigSetCmd) Run(ctx *Context) error {
	// ctx.Config carries environment overrides that must not be persisted.
	cfg, err := loadConfigFile(ctx.Globals.Config)
	if err != nil {
		return err
	}

	if err := setConfigValue(cfg, c.Key, c.Value); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := cfg.Save(ctx.Globals.Config); err != nil {
		return err
	}

	ctx.Formatter.PrintSuccess(fmt.Sprintf("Set %s = %s", c.Key, c.Value))
	return nil
}

// loadConfigFile reads the config file as saved, or defaults when there is
// none yet.
func loadConfigFile(path string) (*config.Config, error) {
	if path == "" {
		var err error
		if path, err = config.ConfigPath(); err != nil {
			return nil, err
		}
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return config.DefaultConfig(), nil
	}
	return config.Load(path)
}

func setConfigValue(cfg *config.Config, key, value string) error {
	if key == "stopwords" {
		cfg.Stopwords = value
		return nil
	}

	parts := strings.Split(key, ".")
	if len(parts) != 2 {
		return fmt.Errorf("invalid key format - use section.key (e.g., imap.username, render.weighting)")
	}
	section, name := parts[0], parts[1]

	atoi := func() (int, error) {
		n, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s value: %s", key, value)
		}
		return n, nil
	}
	parseFloat := func() (float64, error) {
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid %s value: %s", key, value)
		}
		return f, nil
	}

	var err error
	switch section {
	case "imap":
		switch name {
		case "host":
			cfg.IMAP.Host = value
		case "port":
			cfg.IMAP.Port, err = atoi()
		case "username":
			cfg.IMAP.Username = value
		default:
			return fmt.Errorf("unknown imap key: %s", name)
		}
	case "defaults":
		switch name {
		case "mailbox":
			cfg.Defaults.Mailbox = value
		case "limit":
			var n int
			if n, err = atoi(); err == nil && n <= 1 {
				return fmt.Errorf("defaults.limit must be greater than 1, got %d", n)
			}
			cfg.Defaults.Limit = n
		case "top":
			cfg.Defaults.Top, err = atoi()
		default:
			return fmt.Errorf("unknown defaults key: %s", name)
		}
	case "render":
		switch name {
		case "font":
			cfg.Render.Font = value
		case "width":
			cfg.Render.Width, err = atoi()
		case "height":
			cfg.Render.Height, err = atoi()
		case "weighting":
			var w render.Weighting
			if w, err = render.ParseWeighting(value); err == nil {
				cfg.Render.Weighting = string(w)
			}
		case "background":
			if _, err = render.ParseColor(value); err == nil {
				cfg.Render.Background = value
			}
		case "wordcloud":
			cfg.Render.WordCloud = value
		case "heatmap":
			cfg.Render.Heatmap = value
		case "heatmap_width":
			cfg.Render.HeatmapWidth, err = parseFloat()
		case "heatmap_height":
			cfg.Render.HeatmapHeight, err = parseFloat()
		default:
			return fmt.Errorf("unknown render key: %s", name)
		}
	default:
		return fmt.Errorf("unknown section: %s (use 'imap', 'defaults', 'render' or 'stopwords')", section)
	}
	return err
}

func (c *ConfigForgetCmd) Run(ctx *Context) error {
	username := ctx.Config.IMAP.Username
	if username == "" {
		return errors.New("no username configured")
	}

	if err := config.DeletePassword(username); err != nil {
		return fmt.Errorf("failed to remove password from keyring: %w", err)
	}

	ctx.Formatter.PrintSuccess(fmt.Sprintf("Removed stored password for %s", username))
	return nil
}
