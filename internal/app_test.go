package internal

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

type appFixture struct {
	source  *fakeSource
	writer  *fakeWriter
	fetcher *countingFetcher
	ui      *recordingUI
	app     *App
}

func newAppFixture(t *testing.T, playlist *Playlist) *appFixture {
	t.Helper()
	f := &appFixture{
		source:  &fakeSource{playlist: playlist, streams: make(map[string]*fakeStream)},
		writer:  newFakeWriter(),
		fetcher: &countingFetcher{contentType: "image/jpeg"},
		ui:      &recordingUI{},
	}
	for _, item := range playlist.Items {
		f.source.streams[item.ID] = &fakeStream{ext: "m4a", data: []byte("audio:" + item.ID)}
	}
	tagger := NewTagger(f.fetcher, NewCommentManager(""), f.ui, WithTagWriter(".m4a", f.writer))
	f.app = NewApp(&Config{Covers: true},
		WithSource(f.source),
		WithDownloader(NewFileDownloader(f.ui)),
		WithTagger(tagger),
		WithUI(f.ui),
	)
	return f
}

func demoPlaylist() *Playlist {
	return &Playlist{
		ID:    "PLdemo",
		Title: "Demo",
		Items: []Item{
			{ID: "a", Index: 0, Title: "Song A", Author: "Artist", ThumbnailURL: "https://img/a.jpg", WatchURL: watchURL("a")},
			{ID: "b", Index: 1, Title: "Song/B", Author: "Art:ist", ThumbnailURL: "https://img/b.jpg", WatchURL: watchURL("b")},
			{ID: "c", Index: 2, Title: "Song C", Author: "Other", ThumbnailURL: "https://img/c.jpg", WatchURL: watchURL("c")},
		},
	}
}

func TestDownloadPlaylistDemo(t *testing.T) {
	t.Chdir(t.TempDir())
	f := newAppFixture(t, demoPlaylist())

	report, err := f.app.DownloadPlaylist(context.Background(), "https://www.youtube.com/playlist?list=PLdemo", RunOptions{IncludeCovers: true})
	if err != nil {
		t.Fatalf("DownloadPlaylist() error = %v", err)
	}

	if report.OutputDir != "Demo" {
		t.Errorf("output dir = %q, want %q", report.OutputDir, "Demo")
	}
	if report.Errors != 0 {
		t.Errorf("errors = %d, want 0", report.Errors)
	}

	want := map[string]string{
		filepath.Join("Demo", "Artist - Song A.m4a"):  "Song A",
		filepath.Join("Demo", "Artxist - SongxB.m4a"): "Song/B",
		filepath.Join("Demo", "Other - Song C.m4a"):   "Song C",
	}
	for path, title := range want {
		if !FileExists(path) {
			t.Errorf("expected %s to exist", path)
			continue
		}
		tags, ok := f.writer.writes[path]
		if !ok {
			t.Errorf("expected %s to be tagged", path)
			continue
		}
		if tags.Title != title || tags.Album != "Demo" {
			t.Errorf("%s: unexpected tags %+v", path, tags)
		}
		if tags.Cover == nil || tags.Cover.Format != ImageJPEG {
			t.Errorf("%s: expected a jpeg cover", path)
		}
	}

	data, err := os.ReadFile(filepath.Join("Demo", "Artist - Song A.m4a"))
	if err != nil || string(data) != "audio:a" {
		t.Errorf("unexpected content %q (%v)", data, err)
	}
	if got := f.writer.writes[filepath.Join("Demo", "Artxist - SongxB.m4a")].Artist; got != "Art:ist" {
		t.Errorf("artist tag = %q, want the unsanitized author", got)
	}
	if report.Count(StatusDownloaded) != 3 {
		t.Errorf("downloaded = %d, want 3", report.Count(StatusDownloaded))
	}
}

func TestDownloadPlaylistPartialFailure(t *testing.T) {
	dir := t.TempDir()
	f := newAppFixture(t, demoPlaylist())
	delete(f.source.streams, "b")

	report, err := f.app.DownloadPlaylist(context.Background(), "url", RunOptions{OutputDir: dir, IncludeCovers: true})
	if err != nil {
		t.Fatalf("DownloadPlaylist() error = %v", err)
	}

	if report.Errors != 1 {
		t.Fatalf("errors = %d, want 1", report.Errors)
	}
	if got := SummaryMessage(report.Errors); got != "1 errors occurred. Running with --auth (or -a) may solve some of them." {
		t.Errorf("summary = %q", got)
	}

	failed := report.Outcomes[1]
	if failed.Status != StatusFailed || !errors.Is(failed.Err, ErrStreamSelection) {
		t.Errorf("unexpected outcome for b: %+v", failed)
	}
	var itemErr *ItemError
	if !errors.As(failed.Err, &itemErr) || itemErr.Stage != StageStream || itemErr.Item.ID != "b" {
		t.Errorf("expected stream ItemError for b, got %v", failed.Err)
	}

	for name, title := range map[string]string{"Artist - Song A.m4a": "Song A", "Other - Song C.m4a": "Song C"} {
		path := filepath.Join(dir, name)
		if !FileExists(path) {
			t.Errorf("expected %s to be downloaded despite the failure", name)
		}
		tags, ok := f.writer.writes[path]
		if !ok {
			t.Errorf("expected %s to be tagged despite the failure", name)
			continue
		}
		if tags.Title != title || tags.Album != "Demo" || tags.Cover == nil {
			t.Errorf("%s: unexpected tags %+v", name, tags)
		}
	}
	if f.writer.calls != 2 {
		t.Errorf("tag writes = %d, want 2", f.writer.calls)
	}
	if len(f.ui.errors) != 1 {
		t.Errorf("expected one reported error, got %v", f.ui.errors)
	}
}

func TestDownloadPlaylistSkipExistingIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	f := newAppFixture(t, demoPlaylist())
	opts := RunOptions{OutputDir: dir, SkipExisting: true, IncludeCovers: true}

	first, err := f.app.DownloadPlaylist(context.Background(), "url", opts)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if first.Count(StatusDownloaded) != 3 {
		t.Fatalf("first run downloaded %d, want 3", first.Count(StatusDownloaded))
	}
	fetches, tagWrites := f.fetcher.count(), f.writer.calls
	opened := f.source.streams["a"].opened

	second, err := f.app.DownloadPlaylist(context.Background(), "url", opts)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if second.Count(StatusSkipped) != 3 || second.Errors != 0 {
		t.Errorf("second run: skipped=%d errors=%d", second.Count(StatusSkipped), second.Errors)
	}
	if f.fetcher.count() != fetches {
		t.Errorf("covers refetched: %d -> %d", fetches, f.fetcher.count())
	}
	if f.writer.calls != tagWrites {
		t.Errorf("files retagged: %d -> %d", tagWrites, f.writer.calls)
	}
	if f.source.streams["a"].opened != opened {
		t.Error("stream reopened for an existing file")
	}
}

func TestDownloadPlaylistWithoutSkipOverwrites(t *testing.T) {
	dir := t.TempDir()
	f := newAppFixture(t, demoPlaylist())
	opts := RunOptions{OutputDir: dir}

	if _, err := f.app.DownloadPlaylist(context.Background(), "url", opts); err != nil {
		t.Fatal(err)
	}
	report, err := f.app.DownloadPlaylist(context.Background(), "url", opts)
	if err != nil {
		t.Fatal(err)
	}
	if report.Count(StatusDownloaded) != 3 {
		t.Errorf("downloaded = %d, want 3", report.Count(StatusDownloaded))
	}
	if f.writer.calls != 6 {
		t.Errorf("tag writes = %d, want 6", f.writer.calls)
	}
}

func TestDownloadPlaylistCollision(t *testing.T) {
	dir := t.TempDir()
	playlist := &Playlist{
		ID:    "PLdup",
		Title: "Dups",
		Items: []Item{
			{ID: "one", Index: 0, Title: "Same?", Author: "Band"},
			{ID: "two", Index: 1, Title: "Same!", Author: "Band"},
		},
	}
	f := newAppFixture(t, playlist)

	report, err := f.app.DownloadPlaylist(context.Background(), "url", RunOptions{OutputDir: dir})
	if err != nil {
		t.Fatal(err)
	}
	if report.Errors != 1 {
		t.Fatalf("errors = %d, want 1", report.Errors)
	}
	if !errors.Is(report.Outcomes[1].Err, ErrCollision) {
		t.Errorf("expected collision, got %v", report.Outcomes[1].Err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "Band - Samex.m4a"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "audio:one" {
		t.Errorf("first file overwritten, content %q", data)
	}
}

func TestDownloadPlaylistWindow(t *testing.T) {
	dir := t.TempDir()
	f := newAppFixture(t, demoPlaylist())
	window, _ := ParseWindow(1, 2, true, true)

	report, err := f.app.DownloadPlaylist(context.Background(), "url", RunOptions{OutputDir: dir, Window: window})
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Outcomes) != 1 || report.Outcomes[0].Item.ID != "b" {
		t.Fatalf("unexpected outcomes %+v", report.Outcomes)
	}
	if FileExists(filepath.Join(dir, "Artist - Song A.m4a")) {
		t.Error("item outside the window was downloaded")
	}
}

func TestDownloadPlaylistCoversDisabled(t *testing.T) {
	f := newAppFixture(t, demoPlaylist())

	if _, err := f.app.DownloadPlaylist(context.Background(), "url", RunOptions{OutputDir: t.TempDir()}); err != nil {
		t.Fatal(err)
	}
	if f.fetcher.count() != 0 {
		t.Errorf("expected no cover fetches, got %d", f.fetcher.count())
	}
	if f.writer.calls != 3 {
		t.Errorf("tag writes = %d, want 3", f.writer.calls)
	}
}

func TestDownloadPlaylistTagFailureCounts(t *testing.T) {
	dir := t.TempDir()
	f := newAppFixture(t, demoPlaylist())
	f.writer.err = errBoom

	report, err := f.app.DownloadPlaylist(context.Background(), "url", RunOptions{OutputDir: dir})
	if err != nil {
		t.Fatal(err)
	}
	if report.Errors != 3 {
		t.Errorf("errors = %d, want 3", report.Errors)
	}
	var itemErr *ItemError
	if !errors.As(report.Outcomes[0].Err, &itemErr) || itemErr.Stage != StageTag {
		t.Errorf("expected tag stage error, got %v", report.Outcomes[0].Err)
	}
	if !FileExists(filepath.Join(dir, "Artist - Song A.m4a")) {
		t.Error("downloaded file removed after tag failure")
	}
}

func TestDownloadPlaylistCoverFailureIsNotCounted(t *testing.T) {
	f := newAppFixture(t, demoPlaylist())
	f.fetcher.err = errBoom

	report, err := f.app.DownloadPlaylist(context.Background(), "url", RunOptions{OutputDir: t.TempDir(), IncludeCovers: true})
	if err != nil {
		t.Fatal(err)
	}
	if report.Errors != 0 {
		t.Errorf("errors = %d, want 0", report.Errors)
	}
	if !f.ui.warned("tagging without cover") {
		t.Errorf("expected cover warning, got %v", f.ui.warnings)
	}
}

func TestDownloadPlaylistDownloadFailure(t *testing.T) {
	f := newAppFixture(t, demoPlaylist())
	f.source.streams["c"].openErr = errBoom

	report, err := f.app.DownloadPlaylist(context.Background(), "url", RunOptions{OutputDir: t.TempDir()})
	if err != nil {
		t.Fatal(err)
	}
	if report.Errors != 1 || !errors.Is(report.Outcomes[2].Err, ErrDownload) {
		t.Errorf("expected one download error, got %d (%v)", report.Errors, report.Outcomes[2].Err)
	}
}

func TestDownloadPlaylistPassesAuth(t *testing.T) {
	f := newAppFixture(t, demoPlaylist())

	if _, err := f.app.DownloadPlaylist(context.Background(), "url", RunOptions{OutputDir: t.TempDir(), UseAuth: true}); err != nil {
		t.Fatal(err)
	}
	if len(f.source.listAuth) != 1 || !f.source.listAuth[0] {
		t.Errorf("playlist resolved without auth: %v", f.source.listAuth)
	}
	for i, auth := range f.source.authSeen {
		if !auth {
			t.Errorf("item %d resolved without auth", i)
		}
	}
	if !f.ui.warned("--auth has no effect") {
		t.Errorf("expected auth warning, got %v", f.ui.warnings)
	}
}

func TestDownloadPlaylistRunLevelErrors(t *testing.T) {
	t.Run("resolution", func(t *testing.T) {
		f := newAppFixture(t, demoPlaylist())
		f.source.playlistErr = ErrResolution

		report, err := f.app.DownloadPlaylist(context.Background(), "url", RunOptions{OutputDir: t.TempDir()})
		if report != nil || !errors.Is(err, ErrResolution) {
			t.Errorf("expected resolution error, got report=%v err=%v", report, err)
		}
	})

	t.Run("output directory", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "file")
		if err := os.WriteFile(file, nil, 0644); err != nil {
			t.Fatal(err)
		}
		f := newAppFixture(t, demoPlaylist())

		report, err := f.app.DownloadPlaylist(context.Background(), "url", RunOptions{OutputDir: filepath.Join(file, "sub")})
		if report != nil || err == nil {
			t.Errorf("expected directory error, got report=%v err=%v", report, err)
		}
		if len(f.source.authSeen) != 0 {
			t.Error("items attempted after a run-level failure")
		}
	})
}

func TestDownloadPlaylistCancelled(t *testing.T) {
	f := newAppFixture(t, demoPlaylist())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := f.app.DownloadPlaylist(ctx, "url", RunOptions{OutputDir: t.TempDir()})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if report == nil || len(report.Outcomes) != 0 || report.Errors != 0 {
		t.Errorf("unexpected partial report %+v", report)
	}
}

func TestOutputDirFor(t *testing.T) {
	tests := []struct {
		name     string
		playlist Playlist
		override string
		want     string
	}{
		{"title", Playlist{ID: "PL1", Title: "My: Mix"}, "", "Myx Mix"},
		{"override", Playlist{ID: "PL1", Title: "My Mix"}, "/music", "/music"},
		{"id fallback", Playlist{ID: "PL1", Title: "__"}, "", "PL1"},
		{"last resort", Playlist{}, "", "playlist"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := OutputDirFor(&tt.playlist, tt.override); got != tt.want {
				t.Errorf("OutputDirFor() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveOutputDir(t *testing.T) {
	base := t.TempDir()
	playlist := &Playlist{ID: "PL1", Title: "Demo"}

	tests := []struct {
		name        string
		downloadDir string
		override    string
		want        string
	}{
		{"working directory", "", "", "Demo"},
		{"joined onto download dir", base, "", filepath.Join(base, "Demo")},
		{"relative override joined", base, "mix", filepath.Join(base, "mix")},
		{"absolute override kept", base, filepath.Join(base, "abs"), filepath.Join(base, "abs")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := NewApp(&Config{DownloadDir: tt.downloadDir}, WithUI(&recordingUI{}))
			if got := app.ResolveOutputDir(playlist, tt.override); got != tt.want {
				t.Errorf("ResolveOutputDir() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDownloadPlaylistUsesDownloadDir(t *testing.T) {
	cwd := t.TempDir()
	t.Chdir(cwd)
	base := t.TempDir()
	f := newAppFixture(t, demoPlaylist())
	f.app.config.DownloadDir = base

	report, err := f.app.DownloadPlaylist(context.Background(), "url", RunOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if report.OutputDir != filepath.Join(base, "Demo") {
		t.Errorf("output dir = %q", report.OutputDir)
	}
	if !FileExists(filepath.Join(base, "Demo", "Artist - Song A.m4a")) {
		t.Error("file not written under the download dir")
	}
	if FileExists(filepath.Join(cwd, "Demo")) {
		t.Error("directory created in the working directory")
	}
}
