// Command notehunt runs the Note Hunt game server and its tooling.
//
// Commands:
//  1. "serve" (default) runs the HTTP server exposing the REST API, WebSocket,
//     the browser client and an /mcp HTTP endpoint
//  2. "mcp" runs an MCP stdio server and spins up an internal HTTP API if none
//     is available
//  3. "validate" checks configuration files
//  4. "autoplay" plays a session through the REST API
//
// Flags can also be set from the environment or a .env file.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/notehunt/api"
	"github.com/wricardo/notehunt/assets"
	"github.com/wricardo/notehunt/game/autoplay"
	"github.com/wricardo/notehunt/game/config"
	"github.com/wricardo/notehunt/game/loop"
	"github.com/wricardo/notehunt/game/service"
	"github.com/wricardo/notehunt/game/session"
	"github.com/wricardo/notehunt/internal/logging"
	"github.com/wricardo/notehunt/transport/mcp"
	"github.com/wricardo/notehunt/transport/websocket"
	"github.com/wricardo/notehunt/validate"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Note Hunt"
)

const (
	sessionRetention = 24 * time.Hour
	cleanupInterval  = time.Hour
	syncInterval     = 5 * time.Second
	defaultAPIURL    = "http://localhost:8080"
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: error loading .env file: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		log.Fatal().Err(err).Msg("notehunt failed")
	}
}

// newApp builds the command tree
func newApp() *cli.Command {
	return &cli.Command{
		Name:           "notehunt",
		Usage:          "find the hidden notes, one at a time",
		Version:        Version,
		DefaultCommand: "serve",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Usage:   "trace, debug, info, warn or error",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
			&cli.StringFlag{
				Name:    "log-format",
				Value:   string(logging.FormatAuto),
				Usage:   "auto, json or console",
				Sources: cli.EnvVars("LOG_FORMAT"),
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if err := logging.Setup(os.Stderr, cmd.String("log-level"), logging.Format(cmd.String("log-format"))); err != nil {
				log.Warn().Err(err).Msg("unknown log level, using info")
			}
			return ctx, nil
		},
		Commands: []*cli.Command{
			serveCommand(),
			mcpCommand(),
			validateCommand(),
			autoplayCommand(),
		},
	}
}

func storageFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config-dir",
			Usage:   "directory of game configurations (empty uses the built-in ones)",
			Sources: cli.EnvVars("CONFIG_DIR"),
		},
		&cli.StringFlag{
			Name:    "store",
			Value:   "file",
			Usage:   "session store: memory, file or sqlite",
			Sources: cli.EnvVars("NOTEHUNT_STORE"),
		},
		&cli.StringFlag{
			Name:    "sessions-dir",
			Value:   "sessions",
			Usage:   "directory for the file store",
			Sources: cli.EnvVars("SESSIONS_DIR"),
		},
		&cli.StringFlag{
			Name:    "db",
			Value:   "notehunt.db",
			Usage:   "database file for the sqlite store",
			Sources: cli.EnvVars("NOTEHUNT_DB"),
		},
	}
}

func serveCommand() *cli.Command {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:    "host",
			Value:   "localhost",
			Usage:   "HTTP server host",
			Sources: cli.EnvVars("HOST"),
		},
		&cli.IntFlag{
			Name:    "port",
			Value:   8080,
			Usage:   "HTTP server port",
			Sources: cli.EnvVars("PORT"),
		},
		&cli.StringFlag{
			Name:    "assets-dir",
			Usage:   "directory of images and audio served under /assets/",
			Sources: cli.EnvVars("ASSETS_DIR"),
		},
		&cli.IntFlag{
			Name:    "tick-rate",
			Value:   loop.DefaultRate,
			Usage:   "frames per second for live sessions",
			Sources: cli.EnvVars("TICK_RATE"),
		},
		&cli.BoolFlag{
			Name:    "ngrok",
			Usage:   "expose the server through an ngrok tunnel",
			Sources: cli.EnvVars("NGROK_ENABLED"),
		},
		&cli.StringFlag{
			Name:    "ngrok-auth",
			Usage:   "ngrok auth token",
			Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN"),
		},
		&cli.StringFlag{
			Name:    "ngrok-domain",
			Usage:   "custom ngrok domain",
			Sources: cli.EnvVars("NGROK_DOMAIN"),
		},
	}

	return &cli.Command{
		Name:  "serve",
		Usage: "run the HTTP server with REST API, WebSocket, browser client and /mcp",
		Flags: append(flags, storageFlags()...),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			svc, err := initializeServices(serviceOptionsFrom(cmd))
			if err != nil {
				return fmt.Errorf("initialize services: %w", err)
			}
			defer svc.Close()

			return runHTTPServer(ctx, svc, serverOptions{
				Addr:        net.JoinHostPort(cmd.String("host"), fmt.Sprint(cmd.Int("port"))),
				AssetsDir:   cmd.String("assets-dir"),
				TickRate:    cmd.Int("tick-rate"),
				Ngrok:       cmd.Bool("ngrok"),
				NgrokAuth:   cmd.String("ngrok-auth"),
				NgrokDomain: cmd.String("ngrok-domain"),
			})
		},
	}
}

func mcpCommand() *cli.Command {
	return &cli.Command{
		Name:    "mcp",
		Aliases: []string{"stdio-mcp", "mcp-stdio"},
		Usage:   "run an MCP stdio server, starting an internal API if none is running",
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:    "url",
				Value:   defaultAPIURL,
				Usage:   "API server to reuse when it is reachable",
				Sources: cli.EnvVars("NOTEHUNT_URL"),
			},
		}, storageFlags()...),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			opts := serviceOptionsFrom(cmd)
			if !cmd.IsSet("store") {
				opts.Store = "memory"
			}
			return runStdioMCP(ctx, cmd.String("url"), opts)
		},
	}
}

func validateCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "check configuration files",
		ArgsUsage: "[config.json ...]",
		Description: "With no arguments every *.json in --config-dir is checked, or the " +
			"built-in configurations when no directory is given.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config-dir",
				Usage:   "directory of configurations to check",
				Sources: cli.EnvVars("CONFIG_DIR"),
			},
			&cli.StringFlag{
				Name:    "assets-dir",
				Usage:   "check that referenced images and audio exist here",
				Sources: cli.EnvVars("ASSETS_DIR"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runValidate(cmd.Root().Writer, cmd.Args().Slice(), cmd.String("config-dir"), cmd.String("assets-dir"))
		},
	}
}

func runValidate(w io.Writer, files []string, configDir, assetsDir string) error {
	v := &validate.Validator{}
	if assetsDir != "" {
		v.Assets = os.DirFS(assetsDir)
	}

	var results []validate.Result
	switch {
	case len(files) > 0:
		for _, file := range files {
			results = append(results, v.File(file))
		}
	case configDir != "":
		var err error
		if results, err = v.FS(os.DirFS(configDir)); err != nil {
			return fmt.Errorf("scan %s: %w", configDir, err)
		}
	default:
		var err error
		if results, err = v.FS(assets.Configs()); err != nil {
			return err
		}
	}

	if len(results) == 0 {
		return errors.New("no configuration files found")
	}
	return validate.Report(w, results)
}

func autoplayCommand() *cli.Command {
	return &cli.Command{
		Name:  "autoplay",
		Usage: "play a session through the REST API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "url",
				Value:   defaultAPIURL,
				Usage:   "API server URL",
				Sources: cli.EnvVars("NOTEHUNT_URL"),
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "configuration for a new session (empty uses the server default)",
			},
			&cli.StringFlag{
				Name:  "session",
				Usage: "resume this session instead of creating one",
			},
			&cli.BoolFlag{
				Name:  "reset",
				Usage: "reset the session before playing",
			},
			&cli.DurationFlag{
				Name:  "delay",
				Usage: "pause between calls so a browser can follow along",
			},
			&cli.IntFlag{
				Name:  "max-steps",
				Value: autoplay.DefaultMaxSteps,
				Usage: "give up after this many API calls",
			},
			&cli.BoolFlag{
				Name:  "keep-carousel",
				Usage: "leave the final carousel running",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			player := autoplay.NewPlayer(autoplay.NewClient(cmd.String("url")), autoplay.Options{
				SessionID:    cmd.String("session"),
				ConfigID:     cmd.String("config"),
				Reset:        cmd.Bool("reset"),
				Delay:        cmd.Duration("delay"),
				MaxSteps:     cmd.Int("max-steps"),
				KeepCarousel: cmd.Bool("keep-carousel"),
			})

			sum, err := player.Play(ctx)
			if sum != nil {
				fmt.Fprintf(cmd.Root().Writer, "Session %s: %d notes, %d moves, %d advances in %s (completed: %v)\n",
					sum.SessionID, sum.Notes, sum.Moves, sum.Advances, sum.Elapsed.Round(time.Millisecond), sum.Completed)
			}
			return err
		},
	}
}

// serviceOptions selects where configurations and sessions live
type serviceOptions struct {
	ConfigDir   string
	Store       string
	SessionsDir string
	DB          string
}

func serviceOptionsFrom(cmd *cli.Command) serviceOptions {
	return serviceOptions{
		ConfigDir:   cmd.String("config-dir"),
		Store:       cmd.String("store"),
		SessionsDir: cmd.String("sessions-dir"),
		DB:          cmd.String("db"),
	}
}

// services holds the wired game stack
type services struct {
	game        service.GameService
	sessions    *session.Manager
	persistence session.SessionPersistence
	closers     []io.Closer
}

// Close releases the session store
func (s *services) Close() {
	if err := s.sessions.SaveAllSessions(); err != nil {
		log.Warn().Err(err).Msg("failed to save sessions on shutdown")
	}
	for _, c := range s.closers {
		if err := c.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close session store")
		}
	}
}

// initializeServices wires config and session managers into the game service
func initializeServices(opts serviceOptions) (*services, error) {
	var configManager *config.Manager
	if opts.ConfigDir == "" {
		configManager = config.NewEmbeddedManager(assets.Configs())
		log.Info().Msg("using built-in configurations")
	} else {
		var err error
		if configManager, err = config.NewManager(opts.ConfigDir); err != nil {
			return nil, fmt.Errorf("failed to create config manager: %w", err)
		}
		log.Info().Str("dir", opts.ConfigDir).Msg("using configurations from disk")
	}

	svc := &services{}
	switch strings.ToLower(opts.Store) {
	case "", "memory":
		svc.sessions = session.NewManager()
	case "file":
		persistence, err := session.NewFilePersistence(opts.SessionsDir, configManager)
		if err != nil {
			return nil, fmt.Errorf("failed to create session persistence: %w", err)
		}
		svc.persistence = persistence
	case "sqlite":
		persistence, err := session.NewSQLitePersistence(opts.DB, configManager)
		if err != nil {
			return nil, fmt.Errorf("failed to open session database: %w", err)
		}
		svc.persistence = persistence
		svc.closers = append(svc.closers, persistence)
	default:
		return nil, fmt.Errorf("unknown session store %q (use memory, file or sqlite)", opts.Store)
	}

	if svc.persistence != nil {
		svc.sessions = session.NewManagerWithPersistence(svc.persistence)
		if err := svc.sessions.LoadPersistedSessions(); err != nil {
			log.Warn().Err(err).Msg("failed to load persisted sessions")
		}
		log.Info().Str("store", opts.Store).Int("sessions", svc.sessions.Count()).Msg("session store ready")
	}

	svc.game = service.NewGameService(svc.sessions, configManager)
	return svc, nil
}

// runHousekeeping evicts idle sessions and drops sessions whose stored copy
// was deleted behind the server's back
func runHousekeeping(ctx context.Context, svc *services) {
	go loop.Every(ctx, cleanupInterval, "session cleanup", func() error {
		if removed := svc.sessions.CleanupExpiredSessions(sessionRetention); removed > 0 {
			log.Info().Int("removed", removed).Msg("cleaned up expired sessions")
		}
		return nil
	})

	if svc.persistence == nil {
		return
	}
	go loop.Every(ctx, syncInterval, "store sync", func() error {
		if pruned := syncStore(svc); pruned > 0 {
			log.Info().Int("pruned", pruned).Msg("store sync pruned orphaned sessions")
		}
		return nil
	})
}

// syncStore drops in-memory sessions that no longer exist in the store
func syncStore(svc *services) int {
	pruned := 0
	for _, sess := range svc.sessions.List() {
		if svc.persistence.Exists(sess.ID) {
			continue
		}
		if err := svc.sessions.DeleteFromMemory(sess.ID); err == nil {
			pruned++
			log.Info().Str("session", sess.ID).Msg("pruned session from memory (stored copy deleted)")
		}
	}
	return pruned
}

// serverOptions configures runHTTPServer
type serverOptions struct {
	Addr        string
	AssetsDir   string
	TickRate    int
	Ngrok       bool
	NgrokAuth   string
	NgrokDomain string
}

// newHandler combines the API server with the /mcp endpoint
func newHandler(svc *services, hub *websocket.Hub, assetsDir, baseURL string) http.Handler {
	opts := api.Options{Web: assets.Web()}
	if assetsDir != "" {
		opts.Assets = os.DirFS(assetsDir)
	}

	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", api.NewServer(svc.game, hub, opts))
	mainRouter.Handle("/mcp", mcp.NewClient(baseURL).HTTPHandler())
	return mainRouter
}

// runHTTPServer serves until ctx is cancelled. The frame runner, WebSocket hub
// and housekeeping share ctx. With ngrok enabled the same handler is also
// served through a public tunnel.
func runHTTPServer(ctx context.Context, svc *services, opts serverOptions) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	hub := websocket.NewHub(svc.game)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		hub.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		_ = loop.NewRunner(svc.game, hub, opts.TickRate).Run(ctx)
	}()
	runHousekeeping(ctx, svc)

	handler := newHandler(svc, hub, opts.AssetsDir, "http://"+opts.Addr)
	httpServer := &http.Server{
		Addr:        opts.Addr,
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		// WebSocket connections outlive any write timeout
		IdleTimeout: 60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", opts.Addr).
			Str("api", "http://"+opts.Addr+"/api").
			Str("ws", "ws://"+opts.Addr+"/ws?session=<session_id>").
			Str("mcp", "http://"+opts.Addr+"/mcp").
			Msgf("%s v%s listening", AppName, Version)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	if opts.Ngrok {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := serveNgrok(ctx, handler, opts.NgrokAuth, opts.NgrokDomain); err != nil {
				log.Error().Err(err).Msg("ngrok tunnel failed")
			}
		}()
	}

	var err error
	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	case err = <-serveErr:
		log.Error().Err(err).Msg("HTTP server failed")
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if shutdownErr := httpServer.Shutdown(shutdownCtx); shutdownErr != nil {
		log.Warn().Err(shutdownErr).Msg("HTTP server shutdown error")
	}

	wg.Wait()
	log.Info().Msg("server stopped")
	return err
}

// serveNgrok serves handler through an ngrok tunnel until ctx is cancelled
func serveNgrok(ctx context.Context, handler http.Handler, authToken, domain string) error {
	if authToken == "" {
		log.Warn().Msg("ngrok enabled but no auth token provided (use --ngrok-auth or NGROK_AUTHTOKEN)")
		return nil
	}

	var tunnel ngrokConfig.Tunnel
	if domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(domain))
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	log.Info().Str("domain", domain).Msg("starting ngrok tunnel")
	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(authToken))
	if err != nil {
		return fmt.Errorf("start tunnel: %w", err)
	}

	server := &http.Server{Handler: handler}
	go func() {
		<-ctx.Done()
		_ = server.Close()
	}()

	url := tun.URL()
	log.Info().
		Str("url", url).
		Str("api", url+"/api").
		Str("mcp", url+"/mcp").
		Msg("ngrok tunnel established")

	if err := server.Serve(tun); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	log.Info().Msg("ngrok tunnel closed")
	return nil
}

// probeAPI reports whether an API server answers at baseURL
func probeAPI(ctx context.Context, baseURL string) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimSuffix(baseURL, "/")+"/api/health", nil)
	if err != nil {
		return false
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode < 500
}

// startInternalServer serves the API on a random loopback port and returns
// its base URL
func startInternalServer(ctx context.Context, svc *services) (string, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", fmt.Errorf("failed to get available port: %w", err)
	}
	baseURL := "http://" + listener.Addr().String()

	hub := websocket.NewHub(svc.game)
	go hub.Run(ctx)
	go func() {
		_ = loop.NewRunner(svc.game, hub, loop.DefaultRate).Run(ctx)
	}()

	server := &http.Server{Handler: api.NewServer(svc.game, hub, api.Options{})}
	go func() {
		<-ctx.Done()
		_ = server.Close()
	}()
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("internal HTTP server error")
		}
	}()

	log.Info().Str("url", baseURL).Msg("internal HTTP server started for MCP stdio")
	return baseURL, nil
}

// runStdioMCP serves MCP over stdio against externalURL when it answers,
// otherwise against an internal server
func runStdioMCP(ctx context.Context, externalURL string, opts serviceOptions) error {
	baseURL := externalURL
	if probeAPI(ctx, externalURL) {
		log.Info().Str("url", externalURL).Msg("external API server found, using it for MCP")
	} else {
		log.Info().Str("url", externalURL).Msg("no external API server found, starting internal one")

		svc, err := initializeServices(opts)
		if err != nil {
			return fmt.Errorf("initialize services: %w", err)
		}
		defer svc.Close()

		ctx, cancel := context.WithCancel(ctx)
		defer cancel()
		if baseURL, err = startInternalServer(ctx, svc); err != nil {
			return err
		}
	}

	log.Info().Msg("MCP stdio server ready")
	return mcp.NewClient(baseURL).ServeStdio()
}
