package internal

import (
	"fmt"

	"github.com/spf13/cobra"
)

// AddDownloadFlags adds the flags that control a playlist run
func AddDownloadFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP("skip", "s", false, "Skip items whose file already exists (no download, no tagging)")
	cmd.Flags().BoolP("oauth", "o", false, "Alias for --auth")
	_ = cmd.Flags().MarkHidden("oauth")
	cmd.Flags().Int("start", 0, "First playlist position to download (0-based, inclusive)")
	cmd.Flags().Int("stop", 0, "Playlist position to stop before (0-based, exclusive)")
	cmd.Flags().Bool("covers", true, "Embed thumbnails as cover art")
	cmd.Flags().Bool("no-covers", false, "Do not embed cover art")
	cmd.Flags().StringP("output-dir", "d", "", "Directory to download into (default: playlist title)")
	AddSourceFlags(cmd)
	cmd.Flags().Bool("m3u", false, "Write a playlist.m3u8 index into the output directory")
	cmd.Flags().Bool("archive", false, "Record the run in the download archive")
}

// AddSourceFlags adds the flags that select and authenticate the resolver
func AddSourceFlags(cmd *cobra.Command) {
	cmd.Flags().String("backend", "", "Resolver backend: native or ytdlp")
	cmd.Flags().String("cookies", "", "Netscape cookies.txt file used with --auth")
	cmd.Flags().BoolP("auth", "a", false, "Send configured cookies with requests (needed for private playlists and age-restricted items)")
}

// UseAuthFromFlags reports whether --auth (or its --oauth alias) is set
func UseAuthFromFlags(cmd *cobra.Command) bool {
	auth, _ := cmd.Flags().GetBool("auth")
	oauth, _ := cmd.Flags().GetBool("oauth")
	return auth || oauth
}

// HandleVerboseFlag processes the --verbose and --quiet flags to update config
func HandleVerboseFlag(cmd *cobra.Command, config *Config) error {
	if f := cmd.Flags().Lookup("verbose"); f != nil && f.Changed {
		verbose, err := cmd.Flags().GetBool("verbose")
		if err != nil {
			return fmt.Errorf("failed to get verbose flag: %w", err)
		}
		config.Verbose = verbose
	}
	if f := cmd.Flags().Lookup("quiet"); f != nil && f.Changed {
		quiet, err := cmd.Flags().GetBool("quiet")
		if err != nil {
			return fmt.Errorf("failed to get quiet flag: %w", err)
		}
		config.Quiet = quiet
	}
	return nil
}

// HandleSourceFlags applies --backend and --cookies to config
func HandleSourceFlags(cmd *cobra.Command, config *Config) error {
	if changed(cmd, "backend") {
		backend, _ := cmd.Flags().GetString("backend")
		config.Backend = backend
	}
	if changed(cmd, "cookies") {
		cookies, _ := cmd.Flags().GetString("cookies")
		config.CookiesFile = cookies
	}
	return config.Validate()
}

// RunOptionsFromFlags merges the download flags over config
func RunOptionsFromFlags(cmd *cobra.Command, config *Config) (RunOptions, error) {
	if err := HandleSourceFlags(cmd, config); err != nil {
		return RunOptions{}, err
	}

	opts := RunOptions{
		SkipExisting:  config.SkipExisting,
		IncludeCovers: config.Covers,
		OutputDir:     config.OutputDir,
	}

	if changed(cmd, "skip") {
		opts.SkipExisting, _ = cmd.Flags().GetBool("skip")
	}
	opts.UseAuth = UseAuthFromFlags(cmd)

	if changed(cmd, "covers") {
		opts.IncludeCovers, _ = cmd.Flags().GetBool("covers")
	}
	if noCovers, _ := cmd.Flags().GetBool("no-covers"); noCovers {
		opts.IncludeCovers = false
	}
	if changed(cmd, "output-dir") {
		opts.OutputDir, _ = cmd.Flags().GetString("output-dir")
	}
	if changed(cmd, "m3u") {
		config.WriteM3U, _ = cmd.Flags().GetBool("m3u")
	}
	if changed(cmd, "archive") {
		config.Archive, _ = cmd.Flags().GetBool("archive")
	}

	start, _ := cmd.Flags().GetInt("start")
	stop, _ := cmd.Flags().GetInt("stop")
	window, err := ParseWindow(start, stop, changed(cmd, "start"), changed(cmd, "stop"))
	if err != nil {
		return RunOptions{}, err
	}
	opts.Window = window

	return opts, nil
}

func changed(cmd *cobra.Command, name string) bool {
	f := cmd.Flags().Lookup(name)
	return f != nil && f.Changed
}
