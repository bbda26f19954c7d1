package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/adrg/xdg"
	"github.com/spf13/cobra"

	"github.com/rtzll/playlist-downloader/internal"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run MCP server for playlist-downloader",
	Long: `Run a Model Context Protocol (MCP) server that exposes playlist-downloader as tools.

The MCP server provides two tools:
- list_playlist: List the items of a playlist with their positions
- download_playlist: Download and tag a playlist (optionally a window of it)

Transport options:
- stdio (default): Standard MCP transport via stdin/stdout
- http: HTTP transport on specified port (use --port to configure)`,
	Example: `  # Run MCP server with stdio transport (e.g. for Claude Desktop)
  playlist-downloader mcp

  # Run MCP server with HTTP transport on port 8080
  playlist-downloader mcp --transport=http --port=8080

  # Set up Claude Desktop integration
  playlist-downloader mcp setup-claude`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		// stdout belongs to the protocol
		config.Verbose = false
		config.Quiet = true
		// the client picks the working directory, often /
		if config.DownloadDir == "" {
			config.DownloadDir = defaultDownloadDir()
		}
		return internal.HandleSourceFlags(cmd, config)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")

		app, cleanup, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		mcpServer := internal.NewMCPServer(app, version, internal.UseAuthFromFlags(cmd))
		internal.RunLogInfo("starting MCP server (transport=%s, download_dir=%s)", transport, config.DownloadDir)

		return mcpServer.Start(cmd.Context(), transport, port)
	},
}

// setupClaudeCmd represents the setup-claude subcommand
var setupClaudeCmd = &cobra.Command{
	Use:   "setup-claude",
	Short: "Configure Claude Desktop to use the playlist-downloader MCP server",
	Long: `Register playlist-downloader as an MCP server in Claude Desktop.

The entry runs this binary with "mcp" and passes, through its environment:
- the XDG base directories, so the server shares this config and archive
- PLAYLIST_DOWNLOADER_DOWNLOAD_DIR, where playlists are downloaded
  (Claude Desktop starts servers in an arbitrary working directory)
- the backend and cookies file, when configured

With --auth the server sends cookies unless a tool call says otherwise.

Other servers and settings in claude_desktop_config.json are kept as they are.`,
	Example: `  # Download into ~/Music (the default)
  playlist-downloader mcp setup-claude

  # Download somewhere else and print the result instead of writing it
  playlist-downloader mcp setup-claude --download-dir ~/Podcasts --dry-run`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := internal.HandleSourceFlags(cmd, config); err != nil {
			return err
		}
		downloadDir, _ := cmd.Flags().GetString("download-dir")
		claudeConfig, _ := cmd.Flags().GetString("claude-config")
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		return setupClaudeDesktop(downloadDir, claudeConfig, internal.UseAuthFromFlags(cmd), dryRun)
	},
}

const claudeServerName = "playlist-downloader"

// MCPServerConfig is one entry of mcpServers in claude_desktop_config.json
type MCPServerConfig struct {
	Command string            `json:"command"`
	Args    []string          `json:"args"`
	Env     map[string]string `json:"env,omitempty"`
}

// setupClaudeDesktop implements the setup-claude subcommand
func setupClaudeDesktop(downloadDir, configPath string, useAuth, dryRun bool) error {
	execPath, err := os.Executable()
	if err != nil {
		return fmt.Errorf("getting executable path: %w", err)
	}
	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		return fmt.Errorf("resolving executable path: %w", err)
	}

	if configPath == "" {
		if configPath, err = claudeDesktopConfigPath(); err != nil {
			return fmt.Errorf("getting Claude Desktop config path: %w", err)
		}
	}

	data, err := os.ReadFile(configPath)
	if os.IsNotExist(err) {
		return fmt.Errorf("config for Claude Desktop not found at %s", configPath)
	}
	if err != nil {
		return fmt.Errorf("reading existing config: %w", err)
	}

	entry, err := claudeServerEntry(execPath, downloadDir, useAuth, config)
	if err != nil {
		return err
	}
	data, err = mergeClaudeServer(data, claudeServerName, entry)
	if err != nil {
		return err
	}

	if dryRun {
		fmt.Println(string(data))
		return nil
	}
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	fmt.Printf("Configured the %s MCP server in %s\n", claudeServerName, configPath)
	fmt.Printf("Playlists will be downloaded into %s\n", entry.Env["PLAYLIST_DOWNLOADER_DOWNLOAD_DIR"])
	fmt.Printf("Restart Claude Desktop to use it\n")
	return nil
}

// claudeServerEntry builds the server entry. Paths are made absolute since
// the server does not run in the current directory.
func claudeServerEntry(execPath, downloadDir string, useAuth bool, c *internal.Config) (MCPServerConfig, error) {
	if downloadDir == "" {
		downloadDir = c.DownloadDir
	}
	if downloadDir == "" {
		downloadDir = defaultDownloadDir()
	}
	downloadDir, err := filepath.Abs(downloadDir)
	if err != nil {
		return MCPServerConfig{}, fmt.Errorf("resolving download dir: %w", err)
	}

	env := map[string]string{
		"XDG_DATA_HOME":                    xdg.DataHome,
		"XDG_CONFIG_HOME":                  xdg.ConfigHome,
		"XDG_CACHE_HOME":                   xdg.CacheHome,
		"PLAYLIST_DOWNLOADER_DOWNLOAD_DIR": downloadDir,
	}
	if c.Backend != "" && c.Backend != internal.BackendNative {
		env["PLAYLIST_DOWNLOADER_BACKEND"] = c.Backend
	}
	if c.CookiesFile != "" {
		cookies, err := filepath.Abs(c.CookiesFile)
		if err != nil {
			return MCPServerConfig{}, fmt.Errorf("resolving cookies file: %w", err)
		}
		env["PLAYLIST_DOWNLOADER_COOKIES_FILE"] = cookies
	}

	args := []string{"mcp"}
	if useAuth {
		args = append(args, "--auth")
	}
	return MCPServerConfig{Command: execPath, Args: args, Env: env}, nil
}

// mergeClaudeServer sets mcpServers[name] in a Claude Desktop config,
// keeping every other key and server untouched
func mergeClaudeServer(data []byte, name string, entry MCPServerConfig) ([]byte, error) {
	doc := map[string]json.RawMessage{}
	if len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parsing existing config: %w", err)
		}
	}

	servers := map[string]json.RawMessage{}
	if raw, ok := doc["mcpServers"]; ok && string(raw) != "null" {
		if err := json.Unmarshal(raw, &servers); err != nil {
			return nil, fmt.Errorf("parsing mcpServers: %w", err)
		}
	}

	encoded, err := json.Marshal(entry)
	if err != nil {
		return nil, fmt.Errorf("marshaling server entry: %w", err)
	}
	servers[name] = encoded

	if doc["mcpServers"], err = json.Marshal(servers); err != nil {
		return nil, fmt.Errorf("marshaling mcpServers: %w", err)
	}

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling config: %w", err)
	}
	return append(out, '\n'), nil
}

// claudeDesktopConfigPath returns the platform-specific config path for Claude Desktop
func claudeDesktopConfigPath() (string, error) {
	switch runtime.GOOS {
	case "darwin", "linux":
		// ~/Library/Application Support on macOS, $XDG_CONFIG_HOME on Linux
		return filepath.Join(xdg.ConfigHome, "Claude", "claude_desktop_config.json"), nil
	case "windows":
		// roaming profile, not xdg's local one
		appData := os.Getenv("APPDATA")
		if appData == "" {
			return "", fmt.Errorf("APPDATA environment variable not set")
		}
		return filepath.Join(appData, "Claude", "claude_desktop_config.json"), nil
	default:
		return "", fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
}

// defaultDownloadDir is the user's music directory
func defaultDownloadDir() string {
	if xdg.UserDirs.Music != "" {
		return xdg.UserDirs.Music
	}
	return filepath.Join(xdg.Home, "Music")
}

func init() {
	internal.AddSourceFlags(mcpCmd)
	mcpCmd.Flags().String("transport", "stdio", "Transport protocol (stdio or http)")
	mcpCmd.Flags().Int("port", 8080, "Port for HTTP transport (only used with --transport=http)")

	internal.AddSourceFlags(setupClaudeCmd)
	setupClaudeCmd.Flags().String("download-dir", "", "Directory the server downloads into (default: download_dir, else your music directory)")
	setupClaudeCmd.Flags().String("claude-config", "", "Path of claude_desktop_config.json (default: platform location)")
	setupClaudeCmd.Flags().Bool("dry-run", false, "Print the updated config instead of writing it")

	mcpCmd.AddCommand(setupClaudeCmd)
	rootCmd.AddCommand(mcpCmd)
}
