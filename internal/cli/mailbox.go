package cli

import (
	"fmt"
	"strings"
)

func (c *MailboxListCmd) Run(ctx *Context) error {
	client, err := connect(ctx, c.SavePassword)
	if err != nil {
		return err
	}
	defer client.Close()

	ctx.Formatter.Verbosef("Listing mailboxes...")

	mailboxes, err := client.ListMailboxes()
	if err != nil {
		return err
	}

	if ctx.Formatter.JSON {
		return ctx.Formatter.PrintJSON(map[string]interface{}{
			"count":     len(mailboxes),
			"mailboxes": mailboxes,
		})
	}

	w := ctx.Formatter.Writer
	if len(mailboxes) == 0 {
		fmt.Fprintln(w, "No mailboxes found.")
		return nil
	}

	fmt.Fprintf(w, "Mailboxes (%d):\n\n", len(mailboxes))

	table := ctx.Formatter.NewTable("NAME", "ATTRIBUTES")
	for _, mb := range mailboxes {
		table.AddRow(mb.Name, ctx.Formatter.MutedText(formatAttributes(mb.Attributes)))
	}
	table.Flush()

	return nil
}

// formatAttributes strips the leading backslash from IMAP mailbox
// attributes, e.g. \All becomes All.
func formatAttributes(attrs []string) string {
	cleaned := make([]string, len(attrs))
	for i, attr := range attrs {
		cleaned[i] = strings.TrimPrefix(attr, "\\")
	}
	return strings.Join(cleaned, ", ")
}
