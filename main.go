// Command tactics-duel starts the duel session server.
//
// It supports three commands:
//  1. "serve" (default) – runs the HTTP server exposing the WebSocket endpoint, REST API, and an /mcp endpoint
//  2. "mcp" – runs an MCP stdio server and spins up an internal HTTP API if none is available
//  3. "version" – prints the version
//
// Settings come from TACTICS_* environment variables (and a .env file);
// flags override them.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/tactics-duel/api"
	"github.com/wricardo/tactics-duel/game/config"
	"github.com/wricardo/tactics-duel/game/service"
	"github.com/wricardo/tactics-duel/game/session"
	"github.com/wricardo/tactics-duel/settings"
	"github.com/wricardo/tactics-duel/telemetry"
	"github.com/wricardo/tactics-duel/transport/mcp"
	"github.com/wricardo/tactics-duel/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Tactics Duel Server"
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Warning: Error loading .env file: %v", err)
		}
	} else {
		log.Println("Loaded environment variables from .env file")
	}

	s, err := settings.Load()
	if err != nil {
		log.Fatalf("Invalid settings: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp(s).Run(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

// newApp builds the command tree with flag defaults taken from s. Root flags
// are inherited by the subcommands.
func newApp(s *settings.Server) *cli.Command {
	flags := []cli.Flag{
		&cli.StringFlag{Name: "host", Value: s.Host, Usage: "HTTP server host"},
		&cli.IntFlag{Name: "port", Value: s.Port, Usage: "HTTP server port"},
		&cli.StringFlag{Name: "config-dir", Value: s.ConfigDir, Usage: "directory containing rule sets"},
		&cli.StringFlag{Name: "static-dir", Value: s.StaticDir, Usage: "directory served at /"},
		&cli.StringFlag{Name: "ruleset", Value: s.Ruleset, Usage: "default rule set for new sessions"},
		&cli.DurationFlag{Name: "session-idle", Value: s.SessionIdle, Usage: "close sessions idle this long"},
		&cli.BoolFlag{Name: "debug", Value: s.Debug, Usage: "enable debug logging"},
		&cli.BoolFlag{Name: "ngrok", Value: s.Ngrok.Enabled, Usage: "enable ngrok tunnel"},
		&cli.StringFlag{Name: "ngrok-domain", Value: s.Ngrok.Domain, Usage: "custom ngrok domain"},
	}

	serve := func(ctx context.Context, cmd *cli.Command) error {
		applyFlags(s, cmd)
		return runHTTPServer(ctx, s)
	}

	return &cli.Command{
		Name:    "tactics-duel",
		Usage:   AppName,
		Version: Version,
		Flags:   flags,
		Action:  serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run HTTP server with WebSocket, REST API, and MCP endpoint",
				Action: serve,
			},
			{
				Name:    "mcp",
				Aliases: []string{"stdio-mcp", "mcp-stdio"},
				Usage:   "Run MCP stdio server backed by an HTTP API",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					applyFlags(s, cmd)
					return runStdioMCP(ctx, s)
				},
			},
			{
				Name:  "version",
				Usage: "Show version information",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					fmt.Fprintf(cmd.Root().Writer, "%s v%s\n", AppName, Version)
					return nil
				},
			},
		},
	}
}

// applyFlags copies parsed flag values over the environment settings
func applyFlags(s *settings.Server, cmd *cli.Command) {
	s.Host = cmd.String("host")
	s.Port = cmd.Int("port")
	s.ConfigDir = cmd.String("config-dir")
	s.StaticDir = cmd.String("static-dir")
	s.Ruleset = cmd.String("ruleset")
	s.SessionIdle = cmd.Duration("session-idle")
	s.Debug = cmd.Bool("debug")
	s.Ngrok.Enabled = cmd.Bool("ngrok")
	s.Ngrok.Domain = cmd.String("ngrok-domain")

	if s.Debug {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	} else {
		log.SetFlags(log.LstdFlags)
	}
}

// initializeServices wires the config and session managers into the game service
func initializeServices(s *settings.Server) (service.GameService, *session.Manager, error) {
	configManager, err := config.NewManager(s.ConfigDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create config manager: %w", err)
	}
	if s.Ruleset != "" {
		if err := configManager.SetDefault(s.Ruleset); err != nil {
			return nil, nil, fmt.Errorf("failed to select default rule set: %w", err)
		}
	}
	log.Printf("Default rule set: %s", configManager.GetDefault().Name)

	sessionManager := session.NewManager()
	return service.NewGameService(sessionManager, configManager), sessionManager, nil
}

// sessionCleanupRoutine closes sessions with no activity within idle until ctx ends
func sessionCleanupRoutine(ctx context.Context, manager *session.Manager, interval, idle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := manager.CleanupExpiredSessions(idle); removed > 0 {
				log.Printf("Closed %d idle sessions", removed)
			}
		}
	}
}

// localURL is the address this process can reach its own HTTP server on
func localURL(s *settings.Server) string {
	host := s.Host
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	return "http://" + net.JoinHostPort(host, fmt.Sprint(s.Port))
}

// runHTTPServer starts the HTTP server with the WebSocket hub, REST API, and
// /mcp endpoint, plus an ngrok tunnel when enabled. It returns after ctx ends
// and the server has shut down.
func runHTTPServer(ctx context.Context, s *settings.Server) error {
	log.Printf("Starting %s v%s", AppName, Version)

	shutdownTracing, err := telemetry.Setup(ctx, "tactics-duel", Version, s.Tracing)
	if err != nil {
		return fmt.Errorf("failed to set up tracing: %w", err)
	}
	defer shutdownTracing(context.Background())

	gameService, sessionManager, err := initializeServices(s)
	if err != nil {
		return err
	}
	defer sessionManager.CloseAll()

	hub := websocket.NewHub(gameService)
	go hub.Run()

	mcpClient := mcp.NewClient(localURL(s))
	router := api.NewServer(gameService, hub,
		api.WithStaticDir(s.StaticDir),
		api.WithMount("/mcp", mcpClient.HTTPHandler()),
	)

	addr := s.Addr()
	httpServer := &http.Server{
		Addr:        addr,
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go sessionCleanupRoutine(ctx, sessionManager, s.CleanupInterval, s.SessionIdle)

	var wg sync.WaitGroup
	serveErr := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()

		log.Printf("HTTP server listening on %s", addr)
		log.Printf("WebSocket: ws://%s/ws?ruleset=<name>", addr)
		log.Printf("REST API: http://%s/api", addr)
		log.Printf("MCP endpoint: http://%s/mcp", addr)

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
			cancel()
		}
	}()

	if s.Ngrok.Enabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrokTunnel(ctx, s.Ngrok, router)
		}()
	}

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	wg.Wait()
	log.Println("Server stopped")

	select {
	case err := <-serveErr:
		return fmt.Errorf("HTTP server failed: %w", err)
	default:
		return nil
	}
}

// runNgrokTunnel serves handler through a public ngrok endpoint until ctx ends
func runNgrokTunnel(ctx context.Context, cfg settings.Ngrok, handler http.Handler) {
	if cfg.AuthToken == "" {
		log.Println("WARNING: Ngrok enabled but no auth token provided (set NGROK_AUTHTOKEN)")
		return
	}

	log.Println("Starting ngrok tunnel...")

	var tunnel ngrokConfig.Tunnel
	if cfg.Domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(cfg.Domain))
		log.Printf("Using custom ngrok domain: %s", cfg.Domain)
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(cfg.AuthToken))
	if err != nil {
		log.Printf("Failed to start ngrok tunnel: %v", err)
		return
	}

	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			log.Printf("Failed to close ngrok tunnel: %v", err)
		}
	}()

	ngrokURL := tun.URL()
	log.Printf("Ngrok tunnel established: %s", ngrokURL)
	log.Printf("  WebSocket (ngrok): %s/ws", ngrokURL)
	log.Printf("  REST API (ngrok): %s/api", ngrokURL)
	log.Printf("  MCP endpoint (ngrok): %s/mcp", ngrokURL)

	if err := http.Serve(tun, handler); err != nil && !errors.Is(err, http.ErrServerClosed) && ctx.Err() == nil {
		log.Printf("Ngrok server error: %v", err)
	}
	log.Println("Ngrok tunnel closed")
}

// runStdioMCP runs an MCP stdio server. It reuses an API already listening
// on the configured address; otherwise it starts an internal HTTP API on a
// random loopback port.
func runStdioMCP(ctx context.Context, s *settings.Server) error {
	baseURL := localURL(s)
	log.Printf("Checking for external API server at %s...", baseURL)

	testClient := &http.Client{Timeout: 2 * time.Second}
	resp, err := testClient.Get(baseURL + "/health")
	if err == nil && resp.StatusCode < 500 {
		resp.Body.Close()
		log.Printf("External API server found at %s, using it for MCP", baseURL)
	} else {
		log.Printf("No external API server found, starting internal HTTP server")

		gameService, sessionManager, err := initializeServices(s)
		if err != nil {
			return err
		}
		defer sessionManager.CloseAll()

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}

		hub := websocket.NewHub(gameService)
		go hub.Run()

		httpServer := &http.Server{Handler: api.NewServer(gameService, hub, api.WithStaticDir(s.StaticDir))}
		go func() {
			if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("Internal HTTP server error: %v", err)
			}
		}()
		defer httpServer.Close()

		baseURL = "http://" + listener.Addr().String()
		log.Printf("Internal HTTP server on %s for MCP stdio", baseURL)
	}

	log.Println("MCP stdio server ready")
	return mcp.NewClient(baseURL).ServeStdio()
}
