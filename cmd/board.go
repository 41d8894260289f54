package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spiffcs/eipboard/config"
	"github.com/spiffcs/eipboard/internal/board"
	"github.com/spiffcs/eipboard/internal/constants"
	"github.com/spiffcs/eipboard/internal/ghclient"
	"github.com/spiffcs/eipboard/internal/log"
	"github.com/spiffcs/eipboard/internal/output"
	"github.com/spiffcs/eipboard/internal/tui"
	"github.com/spiffcs/eipboard/internal/worklist"
)

// boardRuntime bundles TUI state threaded through a board run.
type boardRuntime struct {
	useTUI  bool
	events  chan tui.Event
	tuiDone chan error
}

// startTUI starts the TUI goroutine if TUI mode is enabled.
func (rt *boardRuntime) startTUI(repository string) {
	if !rt.useTUI {
		return
	}
	rt.events = make(chan tui.Event, 100)
	rt.tuiDone = make(chan error, 1)
	go func() {
		rt.tuiDone <- tui.Run(rt.events, os.Stderr, tui.WithRepository(repository))
	}()
}

// close closes the event channel and waits for the TUI to finish.
func (rt *boardRuntime) close() {
	if rt.events == nil {
		return
	}
	close(rt.events)
	if err := <-rt.tuiDone; err != nil {
		log.Warn("progress display failed", "error", err)
	}
	rt.events = nil
}

func (rt *boardRuntime) sendEvent(task tui.TaskID, status tui.TaskStatus, opts ...tui.TaskEventOption) {
	if rt.events == nil {
		return
	}
	tui.SendTaskEvent(rt.events, task, status, opts...)
}

// reportRateLimit surfaces an exhausted quota in the TUI and the log.
func (rt *boardRuntime) reportRateLimit() {
	status := ghclient.GetRateLimitStatus()
	if !status.Limited {
		return
	}
	log.Warn("GitHub rate limit exhausted", "resets", status.ResetAt.Local().Format("15:04:05"))
	if rt.events != nil {
		tui.SendEvent(rt.events, tui.RateLimitEvent{Limited: true, ResetAt: status.ResetAt})
	}
}

// progressReporter forwards board stages to the TUI, or to the log
// progress line when the TUI is off.
type progressReporter struct {
	rt *boardRuntime

	mu         sync.Mutex
	current    tui.TaskID
	lastLogged int // percent
}

func newProgressReporter(rt *boardRuntime) *progressReporter {
	r := &progressReporter{rt: rt, current: tui.TaskEditors}
	rt.sendEvent(tui.TaskEditors, tui.StatusRunning)
	return r
}

func (r *progressReporter) EditorsResolved(count int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rt.sendEvent(tui.TaskEditors, tui.StatusComplete, tui.WithCount(count))
	r.rt.sendEvent(tui.TaskList, tui.StatusRunning)
	r.current = tui.TaskList
}

func (r *progressReporter) PullRequestsListed(count int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rt.sendEvent(tui.TaskList, tui.StatusComplete, tui.WithCount(count))
	r.rt.sendEvent(tui.TaskEvaluate, tui.StatusRunning, tui.WithMessage(fmt.Sprintf("0/%d", count)))
	r.current = tui.TaskEvaluate
}

func (r *progressReporter) Evaluated(completed, total int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.rt.useTUI {
		r.rt.sendEvent(tui.TaskEvaluate, tui.StatusRunning,
			tui.WithProgress(float64(completed)/float64(total)),
			tui.WithMessage(fmt.Sprintf("%d/%d", completed, total)))
		return
	}

	percent := completed * 100 / total
	if completed < total && percent < r.lastLogged+constants.LogThrottlePercent {
		return
	}
	r.lastLogged = percent
	log.Progress("evaluating pull requests: %d/%d (%d%%)", completed, total, percent)
	if completed == total {
		log.ProgressDone()
	}
}

// finish marks the last stage complete.
func (r *progressReporter) finish(wl *worklist.Worklist) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rt.sendEvent(tui.TaskEvaluate, tui.StatusComplete,
		tui.WithCount(wl.Len()),
		tui.WithMessage(fmt.Sprintf("%d awaiting an editor", wl.Len())))
}

// fail marks the running stage as failed.
func (r *progressReporter) fail(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	log.ProgressClear()
	r.rt.sendEvent(r.current, tui.StatusError, tui.WithError(err))
}

// resolveFormat picks the output format from the flags, falling back to the
// configured default.
func resolveFormat(opts *Options, cfg *config.Config) (output.Format, error) {
	if opts.Markdown {
		if opts.Format != "" && opts.Format != string(output.FormatMarkdown) {
			return "", fmt.Errorf("--markdown conflicts with --output %s", opts.Format)
		}
		return output.FormatMarkdown, nil
	}
	if opts.Format != "" {
		return output.ParseFormat(opts.Format)
	}
	return output.ParseFormat(cfg.DefaultFormat)
}

// boardOptions translates config and flags into board options.
func boardOptions(opts *Options, cfg *config.Config) []board.Option {
	workers := cfg.GetWorkers()
	if opts.Workers > 0 {
		workers = opts.Workers
	}
	return []board.Option{
		board.WithRoster(cfg.RosterPath(), cfg.RosterRef()),
		board.WithDocumentPattern(cfg.DocumentPattern),
		board.WithLabels(cfg.SkipLabel(), cfg.OverrideLabel()),
		board.WithWorkers(workers),
	}
}

func runBoard(cmd *cobra.Command, opts *Options) error {
	ctx := cmd.Context()

	stopProfiles, err := profiles(opts)
	if err != nil {
		return err
	}
	defer stopProfiles()

	// everything that can be checked without the network fails here,
	// before any output
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	format, err := resolveFormat(opts, cfg)
	if err != nil {
		return err
	}
	token, err := cfg.GetGitHubToken()
	if err != nil {
		return err
	}
	repoName, err := cfg.GetRepository()
	if err != nil {
		return err
	}
	if opts.Workers < 0 {
		return fmt.Errorf("--workers must not be negative, got %d", opts.Workers)
	}

	rt := &boardRuntime{useTUI: shouldUseTUI(opts)}
	if rt.useTUI {
		log.Initialize(opts.Verbosity, io.Discard)
	} else {
		log.Initialize(opts.Verbosity, os.Stderr)
	}

	client, err := ghclient.NewClient(ctx, token)
	if err != nil {
		return err
	}
	repo, err := client.Repository(repoName)
	if err != nil {
		return err
	}

	rt.startTUI(repo.FullName())
	defer rt.close()
	reporter := newProgressReporter(rt)

	b, err := board.New(repo, append(boardOptions(opts, cfg), board.WithReporter(reporter))...)
	if err != nil {
		reporter.fail(err)
		return err
	}

	wl, err := b.Run(ctx)
	if err != nil {
		reporter.fail(err)
		if errors.Is(err, ghclient.ErrRateLimited) {
			rt.reportRateLimit()
		}
		return err
	}
	reporter.finish(wl)
	rt.reportRateLimit()
	rt.close()

	if err := output.NewFormatter(format).Format(wl.Entries(), cmd.OutOrStdout()); err != nil {
		return fmt.Errorf("failed to render worklist: %w", err)
	}
	printFailures(cmd.ErrOrStderr(), wl.Failures())

	return wl.Err()
}

// printFailures lists the pull requests that could not be evaluated.
func printFailures(w io.Writer, failures []worklist.Failure) {
	if len(failures) == 0 {
		return
	}
	red := color.New(color.FgRed, color.Bold)
	_, _ = red.Fprintf(w, "%d pull request(s) could not be evaluated:\n", len(failures))
	for _, f := range failures {
		_, _ = fmt.Fprintf(w, "  %s: %v\n", f.Identifier, f.Cause)
	}
}
