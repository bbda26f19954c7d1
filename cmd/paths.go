package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rtzll/playlist-downloader/internal"
)

// pathsCmd represents the paths command
var pathsCmd = &cobra.Command{
	Use:   "paths",
	Short: "Show paths used by the application",
	Example: `  # Show all application paths
  playlist-downloader paths`,
	Run: func(cmd *cobra.Command, args []string) {
		used := v.ConfigFileUsed()
		if used == "" {
			used = "(none)"
		}
		fmt.Printf("Config file: %s\n", used)
		fmt.Printf("Config directory: %s\n", config.ConfigDir)
		fmt.Printf("Data directory: %s\n", config.DataDir)
		fmt.Printf("Cache directory: %s\n", config.CacheDir)
		fmt.Printf("Archive: %s\n", config.ArchivePath)
		downloadDir := config.DownloadDir
		if downloadDir == "" {
			downloadDir = "(working directory)"
		}
		fmt.Printf("Download directory: %s\n", downloadDir)
		fmt.Printf("Run log: %s\n", internal.RunLogPath(config))
	},
}

func init() {
	rootCmd.AddCommand(pathsCmd)
}
