package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/feedtailor/feedtailor/internal/model"
	"github.com/feedtailor/feedtailor/internal/service"
)

// Sentinel picks returned by promptPick alongside vocabulary indexes.
const (
	pickSkip = -1
	pickQuit = -2
)

// Prompter walks the unmapped colours one at a time and collects
// resolution edits from terminal input. Quitting keeps the edits
// gathered so far.
type Prompter struct {
	startTime   time.Time
	writer      io.Writer
	input       *NonBlockingReader
	progressBar *progressbar.ProgressBar
	stats       service.ResolutionStats
	statsMutex  sync.RWMutex
}

// NewResolutionPrompter creates a prompter on the given reader and
// writer; nil values fall back to stdin and stdout.
func NewResolutionPrompter(reader io.Reader, writer io.Writer) *Prompter {
	if reader == nil {
		reader = os.Stdin
	}
	if writer == nil {
		writer = os.Stdout
	}

	return &Prompter{
		input:     NewNonBlockingReader(reader),
		writer:    writer,
		startTime: time.Now(),
	}
}

// ResolveColours presents each unmapped colour with the numbered
// generic vocabulary and returns the collected edits. It implements
// service.Prompter.
func (p *Prompter) ResolveColours(ctx context.Context, unmapped []model.UnmappedColour, vocabulary []string) ([]model.ResolutionEdit, error) {
	if len(unmapped) == 0 {
		if _, err := fmt.Fprintln(p.writer, FormatSuccess("All colours are mapped.")); err != nil {
			return nil, fmt.Errorf("failed to write completion notice: %w", err)
		}
		return []model.ResolutionEdit{}, nil
	}
	if len(vocabulary) == 0 {
		return nil, fmt.Errorf("mapping has no generic colours to offer")
	}

	if _, err := fmt.Fprintln(p.writer, RenderBox("Map Unmapped Colours", p.formatIntro(unmapped, vocabulary))); err != nil {
		return nil, fmt.Errorf("failed to write intro box: %w", err)
	}
	p.initProgressBar(len(unmapped))

	edits := make([]model.ResolutionEdit, 0, len(unmapped))

	for i, u := range unmapped {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		p.updateProgress()
		p.incrementPresented()

		if _, err := fmt.Fprintf(p.writer, "\n[%d/%d] %s %s %s\n",
			i+1, len(unmapped),
			PaletteIcon,
			BoldStyle.Render(u.Value),
			SubtleStyle.Render(fmt.Sprintf("(%d products)", u.Count))); err != nil {
			return nil, fmt.Errorf("failed to write colour line: %w", err)
		}

		prompt := fmt.Sprintf("Generic colour [1-%d, s=skip, q=quit]", len(vocabulary))
		pick, err := p.promptPick(ctx, prompt, len(vocabulary))
		if err != nil {
			return nil, err
		}

		switch pick {
		case pickQuit:
			if _, err := fmt.Fprintln(p.writer, FormatInfo(fmt.Sprintf("Stopping early; keeping %d edit(s).", len(edits)))); err != nil {
				slog.Warn("Failed to write quit notice", "error", err)
			}
			return edits, nil
		case pickSkip:
			p.incrementSkipped()
			if _, err := fmt.Fprintln(p.writer, SubtleStyle.Render("  skipped")); err != nil {
				slog.Warn("Failed to write skip notice", "error", err)
			}
		default:
			generic := vocabulary[pick]
			edits = append(edits, model.ResolutionEdit{Value: u.Value, GenericColour: generic})
			p.incrementResolved()
			if _, err := fmt.Fprintln(p.writer, FormatSuccess(fmt.Sprintf("%s mapped to %s", u.Value, generic))); err != nil {
				slog.Warn("Failed to write resolution notice", "error", err)
			}
		}
	}

	return edits, nil
}

// GetResolutionStats returns statistics about the resolution session.
func (p *Prompter) GetResolutionStats() service.ResolutionStats {
	p.statsMutex.RLock()
	defer p.statsMutex.RUnlock()

	stats := p.stats
	stats.Duration = time.Since(p.startTime)
	return stats
}

// ShowCompletion displays the resolution summary to the user.
func (p *Prompter) ShowCompletion() {
	if p.progressBar != nil {
		if err := p.progressBar.Finish(); err != nil {
			slog.Warn("Failed to finish progress bar", "error", err)
		}
		if _, err := fmt.Fprintln(p.writer); err != nil {
			slog.Warn("Failed to write newline", "error", err)
		}
	}

	stats := p.GetResolutionStats()

	summary := fmt.Sprintf("%s Statistics:\n", ChartIcon) +
		fmt.Sprintf("  • Colours presented: %d\n", stats.Presented) +
		fmt.Sprintf("  • Resolved: %d\n", stats.Resolved) +
		fmt.Sprintf("  • Skipped: %d\n", stats.Skipped) +
		fmt.Sprintf("  • Time taken: %s\n", stats.Duration.Round(time.Second))

	if _, err := fmt.Fprintln(p.writer, RenderBox("Resolution Complete", summary)); err != nil {
		slog.Warn("Failed to write completion box", "error", err)
	}
}

func (p *Prompter) formatIntro(unmapped []model.UnmappedColour, vocabulary []string) string {
	intro := fmt.Sprintf("%d colour(s) have no generic mapping.\n\n", len(unmapped)) +
		"Allowed generic colours:\n"

	for i, generic := range vocabulary {
		intro += fmt.Sprintf("  [%d] %s\n", i+1, generic)
	}

	intro += "\nAnswer with a number, s to skip a colour, or q to stop."
	return intro
}

func (p *Prompter) initProgressBar(total int) {
	p.progressBar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(p.writer),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]Resolving colours...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			if _, err := fmt.Fprintln(p.writer); err != nil {
				slog.Warn("Failed to write newline after progress bar", "error", err)
			}
		}),
	)
}

func (p *Prompter) updateProgress() {
	if p.progressBar != nil {
		if err := p.progressBar.Add(1); err != nil {
			slog.Warn("Failed to update progress bar", "error", err)
		}
	}
}

// promptPick reads one answer: a 1-based vocabulary number (returned
// 0-based), s for pickSkip, or q for pickQuit. Exhausted input counts
// as quitting so piped scripts end cleanly.
func (p *Prompter) promptPick(ctx context.Context, prompt string, n int) (int, error) {
	for {
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		default:
		}

		if _, err := fmt.Fprintf(p.writer, "%s: ", FormatPrompt(prompt)); err != nil {
			return 0, fmt.Errorf("failed to write prompt: %w", err)
		}

		answer, err := p.input.ReadLine(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return pickQuit, nil
			}
			return 0, err
		}

		switch strings.ToLower(answer) {
		case "s", "skip":
			return pickSkip, nil
		case "q", "quit":
			return pickQuit, nil
		}

		idx, err := strconv.Atoi(answer)
		if err == nil && idx >= 1 && idx <= n {
			return idx - 1, nil
		}

		if _, err := fmt.Fprintln(p.writer, FormatError(fmt.Sprintf("Enter a number between 1 and %d, s to skip, or q to quit.", n))); err != nil {
			slog.Warn("Failed to write error message", "error", err)
		}
	}
}

func (p *Prompter) incrementPresented() {
	p.statsMutex.Lock()
	defer p.statsMutex.Unlock()
	p.stats.Presented++
}

func (p *Prompter) incrementResolved() {
	p.statsMutex.Lock()
	defer p.statsMutex.Unlock()
	p.stats.Resolved++
}

func (p *Prompter) incrementSkipped() {
	p.statsMutex.Lock()
	defer p.statsMutex.Unlock()
	p.stats.Skipped++
}

// Ensure Prompter implements the service.Prompter interface.
var _ service.Prompter = (*Prompter)(nil)
