package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/bscott/mail-wordcloud/internal/wordfreq"
)

// ANSI color codes
const (
	Reset  = "\033[0m"
	Bold   = "\033[1m"
	Red    = "\033[31m"
	Green  = "\033[32m"
	Yellow = "\033[33m"
	Gray   = "\033[90m"
)

type Formatter struct {
	JSON    bool
	Verbose bool
	Quiet   bool
	NoColor bool
	Writer  io.Writer

	// ErrWriter receives text-mode errors and warnings.
	ErrWriter io.Writer
}

func New(jsonOutput, verbose, quiet, noColor bool) *Formatter {
	return &Formatter{
		JSON:      jsonOutput,
		Verbose:   verbose,
		Quiet:     quiet,
		NoColor:   noColor,
		Writer:    os.Stdout,
		ErrWriter: os.Stderr,
	}
}

// Color wraps text in ANSI color codes if colors are enabled
func (f *Formatter) Color(color, text string) string {
	if f.NoColor || f.JSON {
		return text
	}
	return color + text + Reset
}

// Bold wraps text in bold if colors are enabled
func (f *Formatter) Bold(text string) string {
	return f.Color(Bold, text)
}

// Success color (green)
func (f *Formatter) SuccessText(text string) string {
	return f.Color(Green, text)
}

// Error color (red)
func (f *Formatter) ErrorText(text string) string {
	return f.Color(Red, text)
}

// Warning color (yellow)
func (f *Formatter) WarningText(text string) string {
	return f.Color(Yellow, text)
}

// Muted color (gray)
func (f *Formatter) MutedText(text string) string {
	return f.Color(Gray, text)
}

func (f *Formatter) PrintJSON(v interface{}) error {
	enc := json.NewEncoder(f.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (f *Formatter) PrintSuccess(message string) {
	if f.Quiet {
		return
	}
	if f.JSON {
		f.PrintJSON(map[string]interface{}{
			"success": true,
			"message": message,
		})
		return
	}
	fmt.Fprintln(f.Writer, f.SuccessText("✓")+" "+message)
}

func (f *Formatter) Verbosef(format string, args ...interface{}) {
	if f.Verbose && !f.Quiet {
		msg := fmt.Sprintf(format, args...)
		fmt.Fprintln(f.Writer, f.MutedText(msg))
	}
}

// Warnf prints a warning on the error writer in text mode. JSON output
// stays parseable, so warnings are dropped there.
func (f *Formatter) Warnf(format string, args ...interface{}) {
	if f.JSON || f.Quiet {
		return
	}
	fmt.Fprintln(f.ErrWriter, f.WarningText("Warning: "+fmt.Sprintf(format, args...)))
}

type TableWriter struct {
	w         *tabwriter.Writer
	headers   []string
	formatter *Formatter
}

func (f *Formatter) NewTable(headers ...string) *TableWriter {
	tw := &TableWriter{
		w:         tabwriter.NewWriter(f.Writer, 0, 0, 2, ' ', 0),
		headers:   headers,
		formatter: f,
	}
	if len(headers) > 0 {
		// Bold headers
		coloredHeaders := make([]string, len(headers))
		for i, h := range headers {
			coloredHeaders[i] = f.Bold(h)
		}
		fmt.Fprintln(tw.w, strings.Join(coloredHeaders, "\t"))
	}
	return tw
}

func (t *TableWriter) AddRow(values ...string) {
	fmt.Fprintln(t.w, strings.Join(values, "\t"))
}

func (t *TableWriter) Flush() {
	t.w.Flush()
}

type JSONResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
}

func (f *Formatter) Success(data interface{}) error {
	if f.JSON {
		return f.PrintJSON(JSONResponse{
			Success: true,
			Data:    data,
		})
	}
	return nil
}

// Error reports err as a JSON response or on the error writer.
func (f *Formatter) Error(err error) error {
	if f.JSON {
		return f.PrintJSON(JSONResponse{
			Success: false,
			Error:   err.Error(),
		})
	}
	fmt.Fprintf(f.ErrWriter, "%s %s\n", f.ErrorText("Error:"), err)
	return err
}

// PrintTop prints the most frequent words with their share of total.
func (f *Formatter) PrintTop(entries []wordfreq.Entry, total int) {
	if f.Quiet || len(entries) == 0 {
		return
	}

	table := f.NewTable("#", "WORD", "COUNT", "SHARE")
	for i, e := range entries {
		share := "-"
		if total > 0 {
			share = fmt.Sprintf("%.2f%%", 100*float64(e.Count)/float64(total))
		}
		table.AddRow(
			f.MutedText(strconv.Itoa(i+1)),
			e.Word,
			strconv.Itoa(e.Count),
			share,
		)
	}
	table.Flush()
}
