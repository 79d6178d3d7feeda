// Copyright 2025 The Farecast Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main implements the farecast fare estimate client: a MessagePack IPC
server by default, or an interactive CLI.

Farecast lets a user pick two cities and a future travel date, derives the
calendar quarter of that date and asks a remote prediction service for a fare
estimate. City names come from the service's metadata endpoint and are
searched with substring ranking as the user types.

# Usage

Start the IPC server against a prediction service:

	farecast -url https://fares.example.com

Run the interactive CLI with debug logging:

	farecast -c -d

Persist the current -url and -limit values into the config file:

	farecast -url https://fares.example.com -limit 10 -save

# Configuration

Runtime configuration is a TOML file, created with defaults when missing:

	[api]
	base_url = ""
	timeout_ms = 10000

	[search]
	limit = 8
	cache_size = 256
	use_index = true

	[cli]
	show_quarter = true
	show_presets = true

FARECAST_API_URL overrides api.base_url. Without a base URL the city list
stays empty and estimates are refused; typing still works.

# IPC Protocol

The server communicates via MessagePack over stdin/stdout. See the server
package for the frame layout.

	{"id": "req1", "action": "complete", "q": "san", "l": 5}
	{"id": "req1", "s": [{"w": "San Diego, CA", "r": 1}], "c": 1, "t": 12}

# CLI Mode

CLI mode reads one line at a time. Plain text replaces the focused field's
text and shows the ranked suggestions; commands such as :from, :down, :enter,
:date, :swap, :quick and :go drive the form. Type :help for the full list.

# Command Line Flags

	-config string
	    Path to a config file (default: user config dir)
	-url string
	    Prediction service base URL, overrides config and environment
	-limit int
	    Number of suggestions to show
	-no-index
	    Rank with a linear scan instead of the suffix index
	-save
	    Write -url and -limit into the config file
	-rebuild-config
	    Overwrite the default config file with defaults and exit
	-d  Enable debug mode with detailed logging
	-c  Run in CLI mode instead of server mode
	-version
	    Show current version
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bastiangx/farecast/internal/app"
	"github.com/bastiangx/farecast/internal/cli"
	"github.com/bastiangx/farecast/internal/utils"
	"github.com/bastiangx/farecast/pkg/config"
	"github.com/bastiangx/farecast/pkg/server"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

const (
	Version = "0.3.0"
	gh      = "https://github.com/bastiangx/farecast"
)

// sigHandler is a simple handler for OS signals to exit normally.
func sigHandler() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		os.Exit(0)
	}()
}

// main wires config, session and the chosen front end; it holds no logic of its own.
func main() {
	sigHandler()
	defaultConfig := config.DefaultConfig()

	showVersion := flag.Bool("version", false, "Show current version")
	debugMode := flag.Bool("d", false, "Toggle debug mode")
	cliMode := flag.Bool("c", false, "Run the interactive CLI instead of the IPC server")
	configPath := flag.String("config", "", "Path to a config file")
	apiURL := flag.String("url", "", "Prediction service base URL (overrides config and "+config.EnvAPIURL+")")
	limit := flag.Int("limit", defaultConfig.Search.Limit, "Number of suggestions to show")
	noIndex := flag.Bool("no-index", false, "Rank with a linear scan instead of the suffix index")
	save := flag.Bool("save", false, "Write -url and -limit into the config file")
	rebuild := flag.Bool("rebuild-config", false, "Overwrite the default config file with defaults and exit")

	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	if *debugMode {
		log.SetLevel(log.DebugLevel)
		log.SetReportTimestamp(true)
		log.Debug("Runtime", "info", utils.RuntimeInfo())
	} else {
		log.SetLevel(log.WarnLevel)
	}

	if *rebuild {
		if err := config.RebuildConfigFile(); err != nil {
			log.Fatalf("Failed to rebuild config: %v", err)
		}
		path, _ := config.GetDefaultConfigPath()
		fmt.Fprintf(os.Stderr, "Wrote default config to %s\n", path)
		return
	}

	cfg, cfgPath, err := config.LoadConfigWithPriority(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Debugf("Using config: %s", config.GetActiveConfigPath(cfgPath))

	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if set["limit"] && *limit < 1 {
		log.Fatalf("Invalid -limit %d: must be at least 1", *limit)
	}
	if set["url"] {
		cfg.API.BaseURL = *apiURL
	}
	if set["limit"] {
		cfg.Search.Limit = *limit
	}
	if *noIndex {
		cfg.Search.UseIndex = false
	}

	if *save {
		saveFlags(cfgPath, set, *apiURL, *limit)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	session := app.NewSession(cfg, app.Options{})
	session.Start(ctx)
	defer session.Close()

	if cfg.API.BaseURL == "" {
		log.Warnf("No API base URL configured; set api.base_url, %s or -url", config.EnvAPIURL)
	}

	if *cliMode {
		log.SetReportTimestamp(false)
		log.Debug("CLI config", "limit", cfg.Search.Limit, "index", cfg.Search.UseIndex, "url", cfg.API.BaseURL)

		handler := cli.NewInputHandler(session, cfg.CLI, os.Stdin, os.Stdout)
		if err := handler.Start(ctx); err != nil {
			log.Fatalf("CLI error: %v", err)
		}
		return
	}

	log.Debug("spawning IPC")
	showStartupInfo(cfgPath, cfg)

	srv := server.NewServer(session)
	if err := srv.Start(ctx); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}

// saveFlags persists only the flags given on the command line.
func saveFlags(cfgPath string, set map[string]bool, apiURL string, limit int) {
	if cfgPath == "" {
		log.Fatal("No writable config file to save into")
	}
	stored, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("Failed to read config for saving: %v", err)
	}
	var urlPtr *string
	var limitPtr *int
	if set["url"] {
		urlPtr = &apiURL
	}
	if set["limit"] {
		limitPtr = &limit
	}
	if err := stored.Update(cfgPath, urlPtr, limitPtr, nil); err != nil {
		log.Fatalf("Failed to save config: %v", err)
	}
	fmt.Fprintf(os.Stderr, "Saved settings to %s\n", config.GetActiveConfigPath(cfgPath))
}

func printVersion() {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    false,
		ReportTimestamp: false,
		Prefix:          "",
	})

	styles := log.DefaultStyles()
	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"}).
		Background(lipgloss.AdaptiveColor{Light: "#f2e9e1", Dark: "#26233a"})
	styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	logger.SetStyles(styles)

	logger.Print("")
	logger.Print("[ Farecast ] Fare estimates for any city pair")
	logger.Print("", "version", Version)
	logger.Print("")
	logger.Print("use -h or --help to see available options")
	logger.Print("Github Repo", "gh", gh)
}

// showStartupInfo displays some basic info about the init process.
// It writes to stderr; stdout carries the IPC stream.
func showStartupInfo(cfgPath string, cfg *config.Config) {
	pid := os.Getpid()
	currentLevel := log.GetLevel()
	log.SetLevel(log.InfoLevel)

	println("==========")
	println(" Farecast ")
	println("==========")
	log.Infof("Version: %s", Version)
	log.Infof("Process ID: [ %d ]", pid)
	log.Infof("config: ( %s )", config.GetActiveConfigPath(cfgPath))
	log.Infof("api: ( %s )", cfg.API.BaseURL)
	log.Info("status: ready")
	println("==========")
	println("Press Ctrl+C to exit")

	log.SetLevel(currentLevel)
}
