package internal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/segmentio/ksuid"
)

// MetadataTagger stamps a downloaded file with its metadata
type MetadataTagger interface {
	Tag(ctx context.Context, path, title, album, artist, coverURL string) error
}

// App holds the application state and dependencies
type App struct {
	source     Source
	downloader Downloader
	tagger     MetadataTagger
	archive    *Archive
	prober     DurationProber
	config     *Config
	ui         UIManager
	hasAuth    bool
}

// NewApp initializes the application
func NewApp(config *Config, options ...AppOption) *App {
	ui := NewUIManager(config.Verbose, config.Quiet)

	var jar http.CookieJar
	if config.CookiesFile != "" {
		var err error
		if jar, err = LoadCookieJar(config.CookiesFile); err != nil {
			ui.Warnf("ignoring cookies file: %v\n", err)
		}
	}

	var source Source
	if config.Backend == BackendYTDLP {
		source = NewYTDLPSource(config.TempDir, config.CookiesFile, config.CookiesFromBrowser, config.Verbose)
	} else {
		source = NewYouTubeSource(config.HTTPTimeout, jar)
	}

	app := &App{
		source:     source,
		downloader: NewFileDownloader(ui),
		tagger:     NewTagger(NewHTTPCoverFetcher(config.HTTPTimeout), NewCommentManager(config.Comment), ui),
		prober:     NewProber(&DefaultCommandRunner{}),
		config:     config,
		ui:         ui,
		hasAuth:    jar != nil || config.CookiesFromBrowser != "",
	}

	for _, option := range options {
		option(app)
	}

	return app
}

// AppOption customizes App creation
type AppOption func(*App)

// WithSource sets a custom playlist and stream resolver
func WithSource(source Source) AppOption {
	return func(a *App) {
		a.source = source
	}
}

// WithDownloader sets a custom downloader
func WithDownloader(d Downloader) AppOption {
	return func(a *App) {
		a.downloader = d
	}
}

// WithTagger sets a custom metadata tagger
func WithTagger(t MetadataTagger) AppOption {
	return func(a *App) {
		a.tagger = t
	}
}

// WithArchive records runs in archive
func WithArchive(archive *Archive) AppOption {
	return func(a *App) {
		a.archive = archive
	}
}

// WithProber sets the duration prober used for m3u8 indexes
func WithProber(p DurationProber) AppOption {
	return func(a *App) {
		a.prober = p
	}
}

// WithUI sets a custom UI manager
func WithUI(ui UIManager) AppOption {
	return func(a *App) {
		a.ui = ui
	}
}

// Source returns the resolver used by the app
func (app *App) Source() Source {
	return app.source
}

// Archive returns the download archive, or nil when archiving is disabled
func (app *App) Archive() *Archive {
	return app.archive
}

// runState is the mutable state of one run
type runState struct {
	dir     string
	written map[string]Item
}

// itemJob is the immutable per-item context handed to the completion action
type itemJob struct {
	title        string
	author       string
	album        string
	thumbnailURL string
	watchURL     string
	path         string
}

func newItemJob(item Item, album, path string, includeCover bool) itemJob {
	job := itemJob{
		title:    item.Title,
		author:   item.Author,
		album:    album,
		watchURL: item.WatchURL,
		path:     path,
	}
	if includeCover {
		job.thumbnailURL = item.ThumbnailURL
	}
	return job
}

// completion returns the action run once the job's file is on disk
func (j itemJob) completion(tagger MetadataTagger) CompletionFunc {
	return func(ctx context.Context, path string) error {
		RunLogDebug("tagging %s from %s", j.path, j.watchURL)
		return tagger.Tag(ctx, path, j.title, j.album, j.author, j.thumbnailURL)
	}
}

// ItemFileName is the output file name of an item: "<author> - <title>.<ext>"
func ItemFileName(item Item, ext string) string {
	return Sanitize(item.Author) + " - " + Sanitize(item.Title) + "." + ext
}

// OutputDirFor picks the directory a playlist is written to
func OutputDirFor(playlist *Playlist, override string) string {
	if override != "" {
		return override
	}
	if dir := Sanitize(playlist.Title); dir != "" {
		return dir
	}
	if dir := Sanitize(playlist.ID); dir != "" {
		return dir
	}
	return "playlist"
}

// ResolveOutputDir picks the output directory of a run and joins a relative
// one onto download_dir. Without download_dir it stays relative to the
// working directory.
func (app *App) ResolveOutputDir(playlist *Playlist, override string) string {
	dir := OutputDirFor(playlist, override)
	if base := app.config.DownloadDir; base != "" && !filepath.IsAbs(dir) {
		return filepath.Join(base, dir)
	}
	return dir
}

// DownloadPlaylist downloads every item of a playlist inside the window,
// tagging each new file. Item failures are counted in the report and never
// stop the run. Only a playlist that cannot be resolved or an output
// directory that cannot be created fail the whole run.
func (app *App) DownloadPlaylist(ctx context.Context, playlistURL string, opts RunOptions) (*Report, error) {
	report := &Report{
		RunID:     ksuid.New().String(),
		StartedAt: time.Now(),
	}

	app.ui.Verbose("Resolving playlist %s...\n", playlistURL)
	playlist, err := app.source.Playlist(ctx, playlistURL, opts.UseAuth)
	if err != nil {
		RunLogError("run %s: resolving %s: %v", report.RunID, playlistURL, err)
		return nil, fmt.Errorf("resolving playlist: %w", err)
	}
	report.Playlist = playlist

	dir := app.ResolveOutputDir(playlist, opts.OutputDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	report.OutputDir = dir

	if opts.UseAuth && !app.hasAuth {
		app.ui.Warnf("--auth has no effect without cookies_file or cookies_from_browser configured\n")
	}

	items := opts.Window.Apply(playlist.Items)
	app.ui.Printf("Downloading %d of %d items from %q into %s\n", len(items), len(playlist.Items), playlist.Title, dir)
	RunLogInfo("run %s: %s (%d items, window %s) -> %s", report.RunID, playlistURL, len(items), opts.Window, dir)

	if app.archive != nil {
		if err := app.archive.BeginRun(ctx, report.RunID, playlist, dir, report.StartedAt); err != nil {
			app.ui.Warnf("%v\n", err)
		}
	}

	state := &runState{dir: dir, written: make(map[string]Item)}

	for i, item := range items {
		if ctx.Err() != nil {
			break
		}

		app.ui.Printf("[%d/%d] %s - %s\n", i+1, len(items), item.Author, item.Title)
		outcome := app.downloadItem(ctx, state, playlist, item, opts)

		// an interrupted item is not a failure of the item
		if outcome.Status == StatusFailed && ctx.Err() != nil {
			break
		}

		report.Outcomes = append(report.Outcomes, outcome)
		if outcome.Status == StatusFailed {
			report.Errors++
			app.ui.Errorf("downloading %s (%s): %v\n", item.Title, item.WatchURL, outcome.Err)
			RunLogError("run %s: %v", report.RunID, outcome.Err)
		}

		if app.archive != nil {
			if err := app.archive.RecordOutcome(ctx, report.RunID, outcome); err != nil {
				app.ui.Warnf("%v\n", err)
			}
		}
	}

	report.Duration = time.Since(report.StartedAt)
	app.finish(report)

	if err := ctx.Err(); err != nil {
		return report, err
	}
	return report, nil
}

// downloadItem runs the pipeline for one item
func (app *App) downloadItem(ctx context.Context, state *runState, playlist *Playlist, item Item, opts RunOptions) Outcome {
	outcome := Outcome{Item: item, Status: StatusFailed}

	stream, err := app.source.AudioStream(ctx, item, opts.UseAuth)
	if err != nil {
		outcome.Err = &ItemError{Stage: StageStream, Item: item, Err: err}
		return outcome
	}

	dest := filepath.Join(state.dir, ItemFileName(item, stream.Ext()))
	outcome.Path = dest

	if first, ok := state.written[dest]; ok {
		outcome.Err = &ItemError{Stage: StageDownload, Item: item, Err: &CollisionError{Path: dest, First: first}}
		return outcome
	}

	job := newItemJob(item, playlist.Title, dest, opts.IncludeCovers)
	result, err := app.downloader.Fetch(ctx, stream, dest, opts.SkipExisting, job.completion(app.tagger))
	outcome.Bytes = result.Bytes
	if err != nil {
		var tagErr *TagError
		if errors.As(err, &tagErr) {
			// the file stays on disk but counts as failed
			state.written[dest] = item
			outcome.Err = &ItemError{Stage: StageTag, Item: item, Err: err}
			return outcome
		}
		outcome.Err = &ItemError{Stage: StageDownload, Item: item, Err: err}
		return outcome
	}

	state.written[dest] = item
	if result.Skipped {
		outcome.Status = StatusSkipped
		app.ui.Verbose("Skipping existing %s\n", dest)
	} else {
		outcome.Status = StatusDownloaded
	}
	return outcome
}

// finish writes the run's side outputs; their failures are warnings only
func (app *App) finish(report *Report) {
	ctx := context.Background()

	if app.archive != nil {
		if err := app.archive.FinishRun(ctx, report.RunID, report.Errors, time.Now()); err != nil {
			app.ui.Warnf("%v\n", err)
		}
	}

	if app.config.WriteM3U && len(report.Outcomes) > 0 {
		path, err := WriteM3U(ctx, report, app.prober)
		if err != nil {
			app.ui.Warnf("%v\n", err)
		} else {
			app.ui.Verbose("Wrote %s\n", path)
		}
	}

	RunLogInfo("run %s finished: %d downloaded, %d skipped, %d errors in %s",
		report.RunID, report.Count(StatusDownloaded), report.Count(StatusSkipped), report.Errors, report.Duration)
}
