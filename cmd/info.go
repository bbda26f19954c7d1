package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rtzll/playlist-downloader/internal"
)

// infoCmd represents the info command
var infoCmd = &cobra.Command{
	Use:   "info [playlist URL or ID]",
	Short: "Print the resolved playlist as JSON",
	Example: `  # Print playlist metadata
  playlist-downloader info PLxxxxxxxxxxxxxxxx

  # Save metadata to file
  playlist-downloader info PLxxxxxxxxxxxxxxxx -o playlist.json

  # Format output as pretty JSON
  playlist-downloader info PLxxxxxxxxxxxxxxxx --pretty`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := internal.HandleSourceFlags(cmd, config); err != nil {
			return err
		}
		playlistURL, _, err := internal.ParsePlaylistArg(args[0])
		if err != nil {
			return err
		}

		app, cleanup, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		playlist, err := app.Source().Playlist(cmd.Context(), playlistURL, internal.UseAuthFromFlags(cmd))
		if err != nil {
			return err
		}

		var jsonData []byte
		pretty, _ := cmd.Flags().GetBool("pretty")
		if pretty {
			jsonData, err = json.MarshalIndent(playlist, "", "  ")
		} else {
			jsonData, err = json.Marshal(playlist)
		}
		if err != nil {
			return fmt.Errorf("error converting playlist to JSON: %w", err)
		}

		outputFile, _ := cmd.Flags().GetString("output")
		if outputFile != "" {
			return os.WriteFile(outputFile, jsonData, 0644)
		}

		fmt.Println(string(jsonData))

		return nil
	},
}

func init() {
	internal.AddSourceFlags(infoCmd)
	infoCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	infoCmd.Flags().Bool("pretty", false, "Format output as pretty JSON")
	rootCmd.AddCommand(infoCmd)
}
