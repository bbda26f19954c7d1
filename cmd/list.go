package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/rtzll/playlist-downloader/internal"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list [playlist URL or ID]",
	Short: "List the items of a playlist with their positions",
	Example: `  # Show positions to pick --start/--stop from
  playlist-downloader list PLxxxxxxxxxxxxxxxx

  # Show which items are already on disk
  playlist-downloader list PLxxxxxxxxxxxxxxxx -d "My Playlist"`,
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

		dir, _ := cmd.Flags().GetString("output-dir")
		if dir == "" {
			dir = config.OutputDir
		}
		dir = app.ResolveOutputDir(playlist, dir)

		fmt.Printf("%s (%d items)\n", playlist.Title, len(playlist.Items))

		table := tablewriter.NewWriter(os.Stdout)
		header := []string{"#", "Author", "Title", "Length", "On disk"}
		archive := app.Archive()
		if archive != nil {
			header = append(header, "Archived")
		}
		table.SetHeader(header)
		table.SetAutoWrapText(false)
		for _, item := range playlist.Items {
			onDisk := ""
			path := filepath.Join(dir, internal.ItemFileName(item, "m4a"))
			if info, err := os.Stat(path); err == nil {
				onDisk = humanize.Bytes(uint64(info.Size()))
			}
			length := ""
			if item.Duration > 0 {
				length = item.Duration.String()
			}
			row := []string{strconv.Itoa(item.Index), item.Author, item.Title, length, onDisk}
			if archive != nil {
				archived, err := archive.HasItem(cmd.Context(), item.ID)
				if err != nil {
					return err
				}
				mark := ""
				if archived {
					mark = "yes"
				}
				row = append(row, mark)
			}
			table.Append(row)
		}
		table.Render()

		return nil
	},
}

func init() {
	internal.AddSourceFlags(listCmd)
	listCmd.Flags().StringP("output-dir", "d", "", "Directory to check for downloaded files (default: playlist title)")
	rootCmd.AddCommand(listCmd)
}
