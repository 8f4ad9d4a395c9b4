package main

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"wallterm/infra/auth"
	"wallterm/infra/config"
	"wallterm/infra/editor"
	"wallterm/infra/wallapi"
	"wallterm/tui"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

type cliMode int

const (
	cliRun cliMode = iota
	cliVersion
	cliHelp
	cliInvalid
)

// parseCLIArgs returns the mode and, for cliRun, an optional wall ID that
// overrides the configured one.
func parseCLIArgs(args []string) (cliMode, string) {
	if len(args) == 0 {
		return cliRun, ""
	}

	switch args[0] {
	case "--version", "-version", "-v":
		return cliVersion, ""
	case "--help", "-h", "help":
		return cliHelp, ""
	}
	if strings.HasPrefix(args[0], "-") {
		return cliInvalid, fmt.Sprintf("unexpected argument: %s", strings.Join(args, " "))
	}
	return cliRun, args[0]
}

func usage() string {
	return "Usage: wallterm [wall-id] [--version|-version|-v] [--help|-h]"
}

func resolveVersionInfo(v, c, d, moduleVersion string, settings map[string]string) (string, string, string) {
	if v == "dev" {
		mv := strings.TrimSpace(moduleVersion)
		if mv != "" && mv != "(devel)" {
			v = mv
		}
	}
	if c == "none" {
		rev := strings.TrimSpace(settings["vcs.revision"])
		if rev != "" {
			if len(rev) > 12 {
				rev = rev[:12]
			}
			c = rev
		}
	}
	if d == "unknown" {
		t := strings.TrimSpace(settings["vcs.time"])
		if t != "" {
			d = t
		}
	}
	return v, c, d
}

func buildSettingsMap(in []debug.BuildSetting) map[string]string {
	out := make(map[string]string, len(in))
	for _, s := range in {
		out[s.Key] = s.Value
	}
	return out
}

func resolvedRuntimeVersionInfo(v, c, d string) (string, string, string) {
	info, ok := debug.ReadBuildInfo()
	if !ok || info == nil {
		return v, c, d
	}
	return resolveVersionInfo(v, c, d, info.Main.Version, buildSettingsMap(info.Settings))
}

func main() {
	mode, arg := parseCLIArgs(os.Args[1:])
	switch mode {
	case cliVersion:
		v, c, d := resolvedRuntimeVersionInfo(version, commit, date)
		fmt.Printf("wallterm %s\ncommit: %s\nbuilt: %s\n", v, c, d)
		return
	case cliHelp:
		fmt.Println(usage())
		return
	case cliInvalid:
		fmt.Fprintf(os.Stderr, "%s\n%s\n", arg, usage())
		os.Exit(1)
	}

	// 1. Load config from environment.
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	wallID := cfg.WallID
	if arg != "" {
		wallID = arg
	}
	if wallID == "" {
		fmt.Fprintf(os.Stderr, "no wall selected: pass a wall ID or set WALLTERM_WALL\n")
		os.Exit(1)
	}

	// 2. Build infrastructure.
	var tokenProvider auth.TokenProvider
	if cfg.Token != "" {
		tokenProvider = auth.StaticTokenProvider(cfg.Token)
	} else {
		tokenProvider = auth.NewFileTokenProvider(cfg.TokenPath)
	}
	client := wallapi.NewClient(cfg.ServerURL, tokenProvider)

	// Fetch the user ID synchronously for simplicity in wiring.
	userID, err := client.CurrentUserID(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "login check: %v\n", err)
		os.Exit(1)
	}

	// 3. Build services (concrete types satisfy app.* interfaces).
	feedSvc := wallapi.NewFeedService(client, userID)
	wallSvc := wallapi.NewWallService(client)
	uploadSvc := wallapi.NewUploadService(client)
	eventStream := wallapi.NewEventStream(client, userID)
	editorSvc := editor.NewEnvEditor()

	// 4. Wire root TUI model.
	rootModel := tui.NewApp(tui.Deps{
		Feed:    feedSvc,
		Walls:   wallSvc,
		Uploads: uploadSvc,
		Events:  eventStream,
		Editor:  editorSvc,
		WallID:  wallID,
		UserID:  userID,
	})

	// 5. Run.
	p := tea.NewProgram(rootModel, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "wallterm: %v\n", err)
		os.Exit(1)
	}
}
