package internal

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// MCPServer wraps the MCP server and application dependencies
type MCPServer struct {
	app         *App
	mcpServer   *server.MCPServer
	defaultAuth bool
}

// NewMCPServer creates a new MCP server instance. defaultAuth is used when
// a tool call does not pass "auth".
func NewMCPServer(app *App, version string, defaultAuth bool) *MCPServer {
	mcpServer := server.NewMCPServer(
		"playlist-downloader",
		version,
		server.WithToolCapabilities(true),
	)

	s := &MCPServer{
		app:         app,
		mcpServer:   mcpServer,
		defaultAuth: defaultAuth,
	}

	s.registerTools()

	return s
}

// registerTools registers all available MCP tools
func (s *MCPServer) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("list_playlist",
		mcp.WithDescription("List the items of a YouTube playlist with their 0-based positions. Use the positions as start/stop for download_playlist."),
		mcp.WithString("url",
			mcp.Description("YouTube playlist URL or playlist ID"),
			mcp.Required(),
		),
		mcp.WithBoolean("auth",
			mcp.Description("Send the configured cookies (needed for private playlists)"),
		),
	), s.handleListPlaylist)

	s.mcpServer.AddTool(mcp.NewTool("download_playlist",
		mcp.WithDescription("Download the audio of every item in a YouTube playlist into a local directory and tag the files with title, album, artist and cover art. Returns a summary of the run."),
		mcp.WithString("url",
			mcp.Description("YouTube playlist URL or playlist ID"),
			mcp.Required(),
		),
		mcp.WithString("output_dir",
			mcp.Description("Directory to download into (default: the playlist title)"),
		),
		mcp.WithNumber("start",
			mcp.Description("First position to download (0-based, inclusive)"),
		),
		mcp.WithNumber("stop",
			mcp.Description("Position to stop before (0-based, exclusive)"),
		),
		mcp.WithBoolean("skip_existing",
			mcp.Description("Skip items whose file already exists"),
		),
		mcp.WithBoolean("covers",
			mcp.Description("Embed thumbnails as cover art (default true)"),
		),
		mcp.WithBoolean("auth",
			mcp.Description("Send the configured cookies (needed for private playlists and age-restricted items)"),
		),
	), s.handleDownloadPlaylist)
}

// handleListPlaylist implements the list_playlist tool
func (s *MCPServer) handleListPlaylist(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	arg, err := request.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError("url parameter is required and must be a string"), nil
	}

	playlistURL, _, err := ParsePlaylistArg(arg)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("invalid playlist", err), nil
	}
	RunLogInfo("mcp list_playlist %s", playlistURL)

	playlist, err := s.app.source.Playlist(ctx, playlistURL, request.GetBool("auth", s.defaultAuth))
	if err != nil {
		RunLogError("mcp list_playlist %s: %v", playlistURL, err)
		return mcp.NewToolResultErrorFromErr("playlist error", err), nil
	}

	var buf strings.Builder
	fmt.Fprintf(&buf, "Playlist: %s (%s)\n", playlist.Title, playlist.ID)
	fmt.Fprintf(&buf, "Items: %d\n", len(playlist.Items))
	for _, item := range playlist.Items {
		fmt.Fprintf(&buf, "%d. %s - %s (%s)\n", item.Index, item.Author, item.Title, item.WatchURL)
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.NewTextContent(buf.String())},
	}, nil
}

// handleDownloadPlaylist implements the download_playlist tool
func (s *MCPServer) handleDownloadPlaylist(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	arg, err := request.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError("url parameter is required and must be a string"), nil
	}

	playlistURL, _, err := ParsePlaylistArg(arg)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("invalid playlist", err), nil
	}

	args := request.GetArguments()
	_, hasStart := args["start"]
	_, hasStop := args["stop"]
	window, err := ParseWindow(request.GetInt("start", 0), request.GetInt("stop", 0), hasStart, hasStop)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("invalid window", err), nil
	}

	opts := RunOptions{
		SkipExisting:  request.GetBool("skip_existing", s.app.config.SkipExisting),
		IncludeCovers: request.GetBool("covers", s.app.config.Covers),
		OutputDir:     request.GetString("output_dir", s.app.config.OutputDir),
		UseAuth:       request.GetBool("auth", s.defaultAuth),
		Window:        window,
	}
	RunLogInfo("mcp download_playlist %s window=%s", playlistURL, window)

	report, err := s.app.DownloadPlaylist(ctx, playlistURL, opts)
	if err != nil && report == nil {
		RunLogError("mcp download_playlist %s: %v", playlistURL, err)
		return mcp.NewToolResultErrorFromErr("download failed", err), nil
	}

	text := ReportMarkdown(report)
	if msg := SummaryMessage(report.Errors); msg != "" {
		text += "\n" + msg + "\n"
	}
	if err != nil {
		text += fmt.Sprintf("\nRun interrupted: %v\n", err)
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.NewTextContent(text)},
	}, nil
}

// Start starts the MCP server using the specified transport
func (s *MCPServer) Start(ctx context.Context, transport string, port int) error {
	if transport == "http" {
		httpServer := server.NewStreamableHTTPServer(s.mcpServer)
		addr := fmt.Sprintf(":%d", port)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return httpServer.Start(addr)
	}

	return server.ServeStdio(s.mcpServer)
}
