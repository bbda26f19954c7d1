package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rtzll/playlist-downloader/internal"
)

var (
	config *internal.Config
	v      *viper.Viper
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "playlist-downloader [playlist URL or ID]",
	Short: "Download a YouTube playlist as tagged audio files",
	Long: `playlist-downloader downloads the audio of every item in a YouTube playlist
into a directory named after the playlist.

Each file is named "<author> - <title>.m4a" and tagged with its title, the
playlist title as album, the author as artist and the thumbnail as cover.
Failed items are reported and counted without stopping the run.

Without an argument the playlist URL is asked for interactively.`,
	Example: `  # Download a playlist
  playlist-downloader "https://www.youtube.com/playlist?list=PLxxxxxxxxxxxxxxxx"

  # Only download new items on a second run
  playlist-downloader PLxxxxxxxxxxxxxxxx --skip

  # Download positions 10 to 19 without cover art
  playlist-downloader PLxxxxxxxxxxxxxxxx --start 10 --stop 20 --no-covers

  # Send cookies for private or age-restricted items
  playlist-downloader PLxxxxxxxxxxxxxxxx --auth --cookies ~/cookies.txt`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := internal.HandleVerboseFlag(cmd, config); err != nil {
			return err
		}
		internal.InitRunLogging(config)
		return nil
	},
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := internal.RunOptionsFromFlags(cmd, config)
		if err != nil {
			return err
		}

		arg, err := playlistArg(args)
		if err != nil {
			return err
		}
		playlistURL, _, err := internal.ParsePlaylistArg(arg)
		if err != nil {
			return err
		}

		app, cleanup, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		report, err := app.DownloadPlaylist(cmd.Context(), playlistURL, opts)
		if report != nil && !config.Quiet {
			fmt.Print(internal.RenderReport(report))
		}
		if report != nil {
			if msg := internal.SummaryMessage(report.Errors); msg != "" {
				fmt.Println(msg)
			}
		}
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "Interrupted.")
			return nil
		}
		return err
	},
}

// playlistArg returns the positional argument or prompts for one
func playlistArg(args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	if !isatty.IsTerminal(os.Stdin.Fd()) && !isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		return "", fmt.Errorf("no playlist given and stdin is not a terminal")
	}
	return internal.PromptPlaylistURL()
}

// newApp builds the app for the configured backend, opening the archive
// when enabled. cleanup must be called when the app is no longer needed.
func newApp(ctx context.Context) (*internal.App, func(), error) {
	if err := config.Validate(); err != nil {
		return nil, nil, err
	}

	if config.Backend == internal.BackendYTDLP {
		if err := internal.InstallYTDLP(ctx); err != nil {
			return nil, nil, err
		}
	}

	var options []internal.AppOption
	cleanup := func() {}
	if config.Archive {
		archive, err := internal.OpenArchive(config.ArchivePath)
		if err != nil {
			return nil, nil, err
		}
		options = append(options, internal.WithArchive(archive))
		cleanup = func() { _ = archive.Close() }
	}

	return internal.NewApp(config, options...), cleanup, nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	config, v = internal.InitConfig(configFileFromArgs(os.Args[1:]))

	if err := internal.EnsureDirs(config.ConfigDir, config.DataDir, config.CacheDir); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating XDG directories: %v\n", err)
		os.Exit(1)
	}

	if err := internal.EnsureDefaultConfig(config.ConfigDir); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to ensure default config: %v\n", err)
	}

	// The first interrupt stops the run between items, a second one exits.
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nReceived interrupt signal. Finishing current item...")
		cancel()

		<-sigCh
		if err := internal.CleanupTempDir(config.TempDir); err != nil {
			fmt.Fprintf(os.Stderr, "Error cleaning up temporary files: %v\n", err)
		}
		os.Exit(130)
	}()

	rootCmd.SetContext(ctx)

	return rootCmd.Execute()
}

// configFileFromArgs finds --config before cobra parses flags, since the
// config is needed to build the commands' defaults
func configFileFromArgs(args []string) string {
	for i, arg := range args {
		if arg == "--config" && i+1 < len(args) {
			return args[i+1]
		}
		if file, ok := strings.CutPrefix(arg, "--config="); ok {
			return file
		}
	}
	return ""
}

func init() {
	internal.AddDownloadFlags(rootCmd)
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output for debugging")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "Only print warnings and errors")
	rootCmd.PersistentFlags().String("config", "", "Config file (default is $XDG_CONFIG_HOME/playlist-downloader/config.toml)")
	rootCmd.SilenceUsage = true
}
