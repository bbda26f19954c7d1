package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/rtzll/playlist-downloader/internal"
)

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent runs recorded in the download archive",
	Example: `  # Show the last 20 runs
  playlist-downloader history

  # Show the last 5 runs
  playlist-downloader history -n 5`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !internal.FileExists(config.ArchivePath) {
			fmt.Println("No runs recorded yet. Enable the archive with --archive or archive = true in config.toml.")
			return nil
		}

		archive, err := internal.OpenArchive(config.ArchivePath)
		if err != nil {
			return err
		}
		defer archive.Close()

		limit, _ := cmd.Flags().GetInt("limit")
		runs, err := archive.Runs(cmd.Context(), limit)
		if err != nil {
			return err
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"Run", "Started", "Playlist", "Downloaded", "Skipped", "Errors", "Size"})
		table.SetAutoWrapText(false)
		for _, r := range runs {
			table.Append([]string{
				r.ID,
				humanize.Time(r.StartedAt),
				r.PlaylistTitle,
				strconv.Itoa(r.Downloaded),
				strconv.Itoa(r.Skipped),
				strconv.Itoa(r.Errors),
				humanize.Bytes(uint64(r.Bytes)),
			})
		}
		table.Render()

		return nil
	},
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 20, "Number of runs to show")
	rootCmd.AddCommand(historyCmd)
}
