package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/bscott/mail-wordcloud/internal/config"
	"github.com/bscott/mail-wordcloud/internal/corpus"
	"github.com/bscott/mail-wordcloud/internal/mbox"
	"github.com/bscott/mail-wordcloud/internal/progress"
	"github.com/bscott/mail-wordcloud/internal/render"
	"github.com/bscott/mail-wordcloud/internal/stopwords"
	"github.com/bscott/mail-wordcloud/internal/wordfreq"
)

// Validate runs before any connection is made.
func (c *CloudCmd) Validate() error {
	if c.N != nil && *c.N <= 1 {
		return fmt.Errorf("--n must be greater than 1, got %d", *c.N)
	}
	if len(c.From) == 0 {
		return errors.New("at least one --from address is required")
	}
	for _, from := range c.From {
		if strings.TrimSpace(from) == "" {
			return errors.New("--from must not be empty")
		}
	}
	if c.Weighting != "" {
		if _, err := render.ParseWeighting(c.Weighting); err != nil {
			return err
		}
	}
	if c.Width < 0 || c.Height < 0 {
		return fmt.Errorf("image size must be positive, got %dx%d", c.Width, c.Height)
	}
	if c.Top != nil && *c.Top < 0 {
		return fmt.Errorf("--top must not be negative, got %d", *c.Top)
	}
	return nil
}

// cloudSettings are the flags merged over the configuration.
type cloudSettings struct {
	limit         int
	mailbox       string
	top           int
	stopwords     string
	weighting     render.Weighting
	cloud         render.CloudOptions
	heatmap       render.HeatmapOptions
	wordcloudPath string
	heatmapPath   string
}

func (c *CloudCmd) settings(cfg *config.Config) (cloudSettings, error) {
	s := cloudSettings{
		limit:         cfg.Defaults.Limit,
		mailbox:       firstNonEmpty(c.Mailbox, cfg.Defaults.Mailbox),
		top:           cfg.Defaults.Top,
		stopwords:     firstNonEmpty(c.Stopwords, cfg.Stopwords),
		wordcloudPath: firstNonEmpty(c.WordCloud, cfg.Render.WordCloud),
		heatmapPath:   firstNonEmpty(c.Heatmap, cfg.Render.Heatmap),
	}
	if c.N != nil {
		s.limit = *c.N
	}
	if s.limit <= 1 {
		return s, fmt.Errorf("message limit must be greater than 1, got %d", s.limit)
	}
	if c.Top != nil {
		s.top = *c.Top
	}

	weighting, err := render.ParseWeighting(firstNonEmpty(c.Weighting, cfg.Render.Weighting))
	if err != nil {
		return s, err
	}
	s.weighting = weighting

	background, err := render.ParseColor(cfg.Render.Background)
	if err != nil {
		return s, fmt.Errorf("render.background: %w", err)
	}

	s.cloud = render.CloudOptions{
		FontPath:   firstNonEmpty(c.Font, cfg.Render.Font),
		Width:      firstPositive(c.Width, cfg.Render.Width),
		Height:     firstPositive(c.Height, cfg.Render.Height),
		Background: background,
	}
	s.heatmap = render.HeatmapOptions{
		Width:  cfg.Render.HeatmapWidth,
		Height: cfg.Render.HeatmapHeight,
	}
	return s, nil
}

func (c *CloudCmd) Run(ctx *Context) error {
	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := c.settings(ctx.Config)
	if err != nil {
		return err
	}
	if err := render.CheckFont(s.cloud.FontPath); err != nil {
		return fmt.Errorf("word cloud: %w", err)
	}

	stopSet, err := loadStopwords(s.stopwords)
	if err != nil {
		return err
	}

	src, closeSource, err := c.openSource(ctx, s.mailbox)
	if err != nil {
		return err
	}
	defer closeSource()

	result, err := c.collect(runCtx, ctx, src, s.limit)
	if err != nil {
		return err
	}

	if c.Corpus != "" {
		if err := writeCorpus(c.Corpus, result.Corpus); err != nil {
			return err
		}
		ctx.Formatter.Verbosef("Corpus written to %s", c.Corpus)
	}

	counts := wordfreq.CountCorpus(result.Corpus, stopSet)
	ctx.Logger.Debug("counted words", "distinct", len(counts), "total", counts.Total())

	if err := c.draw(ctx, s, counts, result.Histogram); err != nil {
		return err
	}

	return c.report(ctx, s, result, counts)
}

func loadStopwords(path string) (stopwords.Set, error) {
	if path == "" {
		return stopwords.English(), nil
	}
	return stopwords.Load(path)
}

// openSource returns the mbox archive when --mbox is set, otherwise a
// logged-in IMAP client with the mailbox selected.
func (c *CloudCmd) openSource(ctx *Context, mailbox string) (corpus.Source, func(), error) {
	if c.Mbox != "" {
		src, err := mbox.Open(c.Mbox)
		if err != nil {
			return nil, nil, err
		}
		ctx.Formatter.Verbosef("Indexed %d messages in %s", src.Len(), c.Mbox)
		closeArchive := func() {
			if err := src.Close(); err != nil {
				ctx.Logger.Debug("close failed", "err", err)
			}
		}
		return src, closeArchive, nil
	}

	client, err := connect(ctx, c.SavePassword)
	if err != nil {
		return nil, nil, err
	}
	closeClient := func() {
		if err := client.Close(); err != nil {
			ctx.Logger.Debug("close failed", "err", err)
		}
	}

	status, err := client.SelectMailbox(mailbox)
	if err != nil {
		closeClient()
		return nil, nil, err
	}
	ctx.Formatter.Verbosef("Selected %s (%d messages)", status.Name, status.Messages)

	return client, closeClient, nil
}

// collect searches src for the senders and builds the corpus from the
// selected messages.
func (c *CloudCmd) collect(runCtx context.Context, ctx *Context, src corpus.Source, limit int) (*corpus.Result, error) {
	ids, err := src.Search(c.From)
	if err != nil {
		return nil, err
	}

	selected := corpus.SelectRecent(ids, limit)
	ctx.Formatter.Verbosef("%d messages match, using %d", len(ids), len(selected))
	if len(selected) == 0 {
		return nil, fmt.Errorf("%w from %s", corpus.ErrNoMessages, strings.Join(c.From, ", "))
	}

	showProgress := !ctx.Formatter.JSON && !ctx.Formatter.Quiet
	bar := progress.New(os.Stderr, len(selected), "Fetching messages", showProgress)
	defer bar.Stop()

	builder := &corpus.Builder{
		Logger:    ctx.Logger,
		OnMessage: func(corpus.MessageID) { bar.Increment() },
	}
	result, err := builder.Build(runCtx, src, selected)
	if err != nil {
		return nil, err
	}
	bar.Stop()

	if undated := result.Fetched - result.Dated; undated > 0 {
		ctx.Formatter.Warnf("%d of %d messages had no usable Date header", undated, result.Fetched)
	}
	return result, nil
}

func writeCorpus(path, text string) error {
	return render.WriteFile(path, func(w io.Writer) error {
		_, err := io.WriteString(w, text+"\n")
		return err
	})
}

func (c *CloudCmd) draw(ctx *Context, s cloudSettings, counts wordfreq.Counts, hist corpus.Histogram) error {
	weights, err := render.WeightsFor(s.weighting, counts)
	if err != nil {
		return err
	}

	err = render.WriteFile(s.wordcloudPath, func(w io.Writer) error {
		return render.WordCloud(w, weights, s.cloud)
	})
	if err != nil {
		return fmt.Errorf("word cloud: %w", err)
	}
	ctx.Formatter.Verbosef("Word cloud written to %s", s.wordcloudPath)

	if c.NoHeatmap {
		return nil
	}
	if err := writeHeatmap(s.heatmapPath, hist, s.heatmap); err != nil {
		return err
	}
	ctx.Formatter.Verbosef("Heatmap written to %s", s.heatmapPath)
	return nil
}

func writeHeatmap(path string, hist corpus.Histogram, opts render.HeatmapOptions) error {
	err := render.WriteFile(path, func(w io.Writer) error {
		return render.Heatmap(w, hist, opts)
	})
	if err != nil {
		return fmt.Errorf("heatmap: %w", err)
	}
	return nil
}

type cloudSummary struct {
	Messages  int              `json:"messages"`
	WithText  int              `json:"with_text"`
	Dated     int              `json:"dated"`
	Words     int              `json:"words"`
	Distinct  int              `json:"distinct"`
	Weighting string           `json:"weighting"`
	WordCloud string           `json:"wordcloud"`
	Heatmap   string           `json:"heatmap,omitempty"`
	Corpus    string           `json:"corpus,omitempty"`
	Top       []wordfreq.Entry `json:"top"`
}

func (c *CloudCmd) report(ctx *Context, s cloudSettings, result *corpus.Result, counts wordfreq.Counts) error {
	summary := cloudSummary{
		Messages:  result.Fetched,
		WithText:  result.WithText,
		Dated:     result.Dated,
		Words:     counts.Total(),
		Distinct:  len(counts),
		Weighting: string(s.weighting),
		WordCloud: s.wordcloudPath,
		Corpus:    c.Corpus,
		Top:       counts.Top(s.top),
	}
	if s.top == 0 {
		summary.Top = []wordfreq.Entry{}
	}
	if !c.NoHeatmap {
		summary.Heatmap = s.heatmapPath
	}

	if ctx.Formatter.JSON {
		return ctx.Formatter.Success(summary)
	}

	ctx.Formatter.PrintTop(summary.Top, summary.Words)
	ctx.Formatter.PrintSuccess(fmt.Sprintf("%d messages, %d words (%d distinct) -> %s",
		summary.Messages, summary.Words, summary.Distinct, summary.WordCloud))
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstPositive(values ...int) int {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}
