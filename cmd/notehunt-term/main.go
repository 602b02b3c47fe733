// Command notehunt-term plays Note Hunt in a terminal.
//
// By default it runs the game locally. With --session it attaches to a
// session on a running server over WebSocket, so the same game can be
// watched or played from a browser at the same time.
//
// Arrow keys or WASD move, Enter or Space dismiss, r resets, q quits. Mouse
// clicks work on the direction buttons and the close button.
package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/notehunt/assets"
	"github.com/wricardo/notehunt/game/config"
	"github.com/wricardo/notehunt/game/engine"
	"github.com/wricardo/notehunt/internal/logging"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := &cli.Command{
		Name:  "notehunt-term",
		Usage: "play Note Hunt in a terminal",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "configuration name or .json file for local play",
			},
			&cli.StringFlag{
				Name:    "config-dir",
				Usage:   "directory of configurations (empty uses the built-in ones)",
				Sources: cli.EnvVars("CONFIG_DIR"),
			},
			&cli.Uint64Flag{
				Name:  "seed",
				Usage: "note placement seed for local play (0 picks one)",
			},
			&cli.StringFlag{
				Name:    "url",
				Value:   "http://localhost:8080",
				Usage:   "server for --session",
				Sources: cli.EnvVars("NOTEHUNT_URL"),
			},
			&cli.StringFlag{
				Name:  "session",
				Usage: "attach to this server session instead of playing locally",
			},
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "write logs here (the terminal is busy drawing)",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: run,
	}

	if err := cmd.Run(ctx, os.Args); err != nil {
		log.Fatal().Err(err).Msg("notehunt-term failed")
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	var logOut io.Writer = io.Discard
	if path := cmd.String("log-file"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return err
		}
		defer f.Close()
		logOut = f
	}
	_ = logging.Setup(logOut, cmd.String("log-level"), logging.FormatJSON)

	src, err := openSource(cmd)
	if err != nil {
		return err
	}
	defer src.Close()

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	newUI(screen, src).run(ctx)
	return nil
}

func openSource(cmd *cli.Command) (source, error) {
	if id := cmd.String("session"); id != "" {
		log.Info().Str("session", id).Str("url", cmd.String("url")).Msg("attaching to server session")
		return dialRemote(cmd.String("url"), id)
	}

	manager := config.NewEmbeddedManager(assets.Configs())
	if dir := cmd.String("config-dir"); dir != "" {
		var err error
		if manager, err = config.NewManager(dir); err != nil {
			return nil, err
		}
	}
	cfg, err := manager.Resolve(cmd.String("config"))
	if err != nil {
		return nil, err
	}

	seed := cmd.Uint64("seed")
	if seed == 0 {
		seed = engine.NewSeed()
	}
	eng, err := engine.NewEngineWithSeed(cfg, seed)
	if err != nil {
		return nil, err
	}
	log.Info().Str("config", cfg.Name).Uint64("seed", seed).Msg("local game")
	return &localSource{engine: eng}, nil
}
