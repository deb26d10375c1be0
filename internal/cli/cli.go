package cli

import (
	"log/slog"
	"os"

	"github.com/bscott/mail-wordcloud/internal/config"
	"github.com/bscott/mail-wordcloud/internal/logging"
	"github.com/bscott/mail-wordcloud/internal/output"
)

var Version = "0.1.0"

type Globals struct {
	JSON     bool   `help:"Output as JSON" name:"json"`
	HelpJSON bool   `help:"Output command help as JSON (AI agent mode)" name:"help-json"`
	Config   string `help:"Path to config file" short:"c" type:"path"`
	Verbose  bool   `help:"Verbose output" short:"v"`
	Quiet    bool   `help:"Suppress non-essential output" short:"q"`
	NoColor  bool   `help:"Disable colored output" name:"no-color"`
	LogLevel string `help:"Diagnostic log level (debug, info, warn, error)" name:"log-level" default:"warn"`
}

type CLI struct {
	Globals

	Cloud   CloudCmd   `cmd:"" default:"withargs" help:"Build a word cloud from messages sent by the given senders"`
	Mailbox MailboxCmd `cmd:"" help:"Mailbox management"`
	Config  ConfigCmd  `cmd:"" help:"Configuration management"`
	Version VersionCmd `cmd:"" help:"Show version information"`
}

type Context struct {
	Config    *config.Config
	Formatter *output.Formatter
	Logger    *slog.Logger
	Prompter  Prompter
	Globals   *Globals
}

// NewContext loads the configuration and builds the formatter and logger.
// A missing or unreadable config file falls back to defaults.
func NewContext(globals *Globals) (*Context, error) {
	formatter := output.New(globals.JSON, globals.Verbose, globals.Quiet, globals.NoColor)

	logger, err := logging.New(globals.LogLevel, os.Stderr)
	if err != nil {
		return nil, err
	}

	var cfg *config.Config
	if globals.Config != "" {
		cfg, err = config.Load(globals.Config)
	} else if config.Exists() {
		cfg, err = config.Load("")
	}
	if err != nil {
		logger.Warn("using default configuration", "err", err)
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	cfg.ApplyEnv()

	return &Context{
		Config:    cfg,
		Formatter: formatter,
		Logger:    logger,
		Prompter:  newTermPrompter(),
		Globals:   globals,
	}, nil
}

// CloudCmd builds the corpus, prints the top words and renders the images.
type CloudCmd struct {
	N            *int     `help:"Maximum number of messages to consider, must be greater than 1 (default 10000)" name:"n"`
	From         []string `help:"Sender address to include; repeat for several senders" name:"from" sep:"none"`
	Mailbox      string   `help:"IMAP mailbox to search (default from config)" short:"m"`
	Mbox         string   `help:"Read messages from an mbox archive instead of IMAP" type:"existingfile"`
	Weighting    string   `help:"Word weighting: raw or normalized (default from config)"`
	Width        int      `help:"Word cloud width in pixels (default from config)"`
	Height       int      `help:"Word cloud height in pixels (default from config)"`
	Font         string   `help:"TrueType font for the word cloud (default from config)"`
	WordCloud    string   `help:"Word cloud output path" name:"wordcloud"`
	Heatmap      string   `help:"Heatmap output path"`
	NoHeatmap    bool     `help:"Do not render the heatmap" name:"no-heatmap"`
	Corpus       string   `help:"Also write the extracted text to this file"`
	Stopwords    string   `help:"Stopword list replacing the built-in English one" type:"existingfile"`
	Top          *int     `help:"Number of top words to print (default from config)"`
	SavePassword bool     `help:"Store the password in the system keyring after login" name:"save-password"`
}

// MailboxCmd handles mailbox discovery
type MailboxCmd struct {
	List MailboxListCmd `cmd:"" help:"List all mailboxes/folders"`
}

type MailboxListCmd struct {
	SavePassword bool `help:"Store the password in the system keyring after login" name:"save-password"`
}

// ConfigCmd handles configuration management
type ConfigCmd struct {
	Init   ConfigInitCmd   `cmd:"" help:"Interactive setup wizard"`
	Show   ConfigShowCmd   `cmd:"" help:"Display current configuration"`
	Set    ConfigSetCmd    `cmd:"" help:"Set a configuration value"`
	Forget ConfigForgetCmd `cmd:"" help:"Remove the stored password from the keyring"`
}

type ConfigInitCmd struct{}

type ConfigShowCmd struct{}

type ConfigSetCmd struct {
	Key   string `arg:"" help:"Configuration key (e.g., imap.username, render.weighting)"`
	Value string `arg:"" help:"Value to set"`
}

type ConfigForgetCmd struct{}

// VersionCmd shows version information
type VersionCmd struct{}
