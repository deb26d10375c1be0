package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/bscott/mail-wordcloud/internal/config"
)

type HelpSchema struct {
	Name        string          `json:"name"`
	Version     string          `json:"version"`
	Description string          `json:"description"`
	Commands    []CommandSchema `json:"commands"`
	GlobalFlags []FlagSchema    `json:"global_flags"`
}

type CommandSchema struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Default     bool            `json:"default,omitempty"`
	Flags       []FlagSchema    `json:"flags,omitempty"`
	Args        []ArgSchema     `json:"args,omitempty"`
	Subcommands []CommandSchema `json:"subcommands,omitempty"`
	Examples    []string        `json:"examples,omitempty"`
}

type FlagSchema struct {
	Name        string `json:"name"`
	Short       string `json:"short,omitempty"`
	Type        string `json:"type"`
	Default     string `json:"default,omitempty"`
	Required    bool   `json:"required,omitempty"`
	Description string `json:"description"`
}

type ArgSchema struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Required    bool   `json:"required"`
	Description string `json:"description"`
}

const Description = "Word cloud and send-time heatmap of the mail you get from given senders"

func GenerateHelpJSON() ([]byte, error) {
	schema := HelpSchema{
		Name:        config.AppName,
		Version:     Version,
		Description: Description,
		GlobalFlags: globalFlags(),
		Commands: []CommandSchema{
			cloudCommand(),
			mailboxCommands(),
			configCommands(),
			{
				Name:        "version",
				Description: "Show version information",
				Examples:    []string{"mail-wordcloud version", "mail-wordcloud version --json"},
			},
		},
	}

	return json.MarshalIndent(schema, "", "  ")
}

func globalFlags() []FlagSchema {
	return []FlagSchema{
		{Name: "--json", Type: "bool", Description: "Output as JSON (applies to all commands)"},
		{Name: "--help-json", Type: "bool", Description: "Output command help as JSON (AI agent mode)"},
		{Name: "--config", Short: "-c", Type: "string", Description: "Path to config file"},
		{Name: "--verbose", Short: "-v", Type: "bool", Description: "Verbose output"},
		{Name: "--quiet", Short: "-q", Type: "bool", Description: "Suppress non-essential output"},
		{Name: "--no-color", Type: "bool", Description: "Disable colored output"},
		{Name: "--log-level", Type: "string", Default: "warn", Description: "Diagnostic log level (debug, info, warn, error)"},
	}
}

func cloudCommand() CommandSchema {
	return CommandSchema{
		Name:        "cloud",
		Description: "Build a word cloud from messages sent by the given senders (default command)",
		Default:     true,
		Flags: []FlagSchema{
			{Name: "--n", Type: "int", Default: "10000", Description: "Maximum number of messages to consider, must be greater than 1; the newest match is left out"},
			{Name: "--from", Type: "[]string", Required: true, Description: "Sender address; repeat for several senders (OR)"},
			{Name: "--mailbox", Short: "-m", Type: "string", Default: config.DefaultMailbox, Description: "IMAP mailbox to search"},
			{Name: "--mbox", Type: "string", Description: "Read messages from an mbox archive instead of IMAP"},
			{Name: "--weighting", Type: "string", Default: "normalized", Description: "Word weighting: raw or normalized"},
			{Name: "--width", Type: "int", Default: "1800", Description: "Word cloud width in pixels"},
			{Name: "--height", Type: "int", Default: "1400", Description: "Word cloud height in pixels"},
			{Name: "--font", Type: "string", Description: "TrueType font for the word cloud"},
			{Name: "--wordcloud", Type: "string", Default: "wordcloud.png", Description: "Word cloud output path"},
			{Name: "--heatmap", Type: "string", Default: "heatmap.png", Description: "Heatmap output path"},
			{Name: "--no-heatmap", Type: "bool", Description: "Do not render the heatmap"},
			{Name: "--corpus", Type: "string", Description: "Also write the extracted text to this file"},
			{Name: "--stopwords", Type: "string", Description: "Stopword list replacing the built-in English one"},
			{Name: "--top", Type: "int", Default: "20", Description: "Number of top words to print"},
			{Name: "--save-password", Type: "bool", Description: "Store the password in the system keyring after login"},
		},
		Examples: []string{
			"mail-wordcloud --from alice@example.com",
			"mail-wordcloud --from alice@example.com --from bob@example.com --n 500",
			"mail-wordcloud cloud --mbox takeout.mbox --from alice@example.com --no-heatmap",
			"mail-wordcloud --from alice@example.com --weighting raw --top 50 --json",
		},
	}
}

func mailboxCommands() CommandSchema {
	return CommandSchema{
		Name:        "mailbox",
		Description: "Mailbox management",
		Subcommands: []CommandSchema{
			{
				Name:        "mailbox list",
				Description: "List all mailboxes/folders",
				Flags: []FlagSchema{
					{Name: "--save-password", Type: "bool", Description: "Store the password in the system keyring after login"},
				},
				Examples: []string{"mail-wordcloud mailbox list", "mail-wordcloud mailbox list --json"},
			},
		},
	}
}

func configCommands() CommandSchema {
	return CommandSchema{
		Name:        "config",
		Description: "Configuration management",
		Subcommands: []CommandSchema{
			{
				Name:        "config init",
				Description: "Interactive setup wizard",
				Examples:    []string{"mail-wordcloud config init"},
			},
			{
				Name:        "config show",
				Description: "Display current configuration",
				Examples:    []string{"mail-wordcloud config show", "mail-wordcloud config show --json"},
			},
			{
				Name:        "config set",
				Description: "Set a configuration value",
				Args: []ArgSchema{
					{Name: "key", Type: "string", Required: true, Description: "Configuration key (e.g., imap.username, render.weighting)"},
					{Name: "value", Type: "string", Required: true, Description: "Value to set"},
				},
				Examples: []string{
					"mail-wordcloud config set imap.username me@gmail.com",
					"mail-wordcloud config set render.weighting raw",
					"mail-wordcloud config set defaults.mailbox INBOX",
				},
			},
			{
				Name:        "config forget",
				Description: "Remove the stored password from the keyring",
				Examples:    []string{"mail-wordcloud config forget"},
			},
		},
	}
}

func PrintHelpJSON(w io.Writer) error {
	data, err := GenerateHelpJSON()
	if err != nil {
		return fmt.Errorf("failed to generate help JSON: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}
