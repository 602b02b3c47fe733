// Command notehunt-desktop plays Note Hunt locally in a window.
//
// Arrow keys or WASD move, the on-screen buttons work with mouse and touch,
// Enter, Space or the close button dismiss the popup and the final carousel.
// R resets, M toggles the music and Escape quits.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/notehunt/assets"
	"github.com/wricardo/notehunt/game/config"
	"github.com/wricardo/notehunt/game/engine"
	"github.com/wricardo/notehunt/internal/logging"
	ebitenr "github.com/wricardo/notehunt/render/ebiten"
)

const windowSize = 640

func main() {
	_ = godotenv.Load()

	cmd := &cli.Command{
		Name:  "notehunt-desktop",
		Usage: "play Note Hunt in a window",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "configuration name or .json file (empty uses the default)",
			},
			&cli.StringFlag{
				Name:    "config-dir",
				Usage:   "directory of configurations (empty uses the built-in ones)",
				Sources: cli.EnvVars("CONFIG_DIR"),
			},
			&cli.StringFlag{
				Name:    "assets-dir",
				Value:   "assets",
				Usage:   "directory holding images and music",
				Sources: cli.EnvVars("ASSETS_DIR"),
			},
			&cli.Uint64Flag{
				Name:  "seed",
				Usage: "note placement seed (0 picks one)",
			},
			&cli.BoolFlag{
				Name:  "mute",
				Usage: "do not play music",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal().Err(err).Msg("notehunt-desktop failed")
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	_ = logging.Setup(os.Stderr, cmd.String("log-level"), logging.FormatAuto)

	cfg, err := loadConfig(cmd.String("config-dir"), cmd.String("config"))
	if err != nil {
		return err
	}

	seed := cmd.Uint64("seed")
	if seed == 0 {
		seed = engine.NewSeed()
	}
	eng, err := engine.NewEngineWithSeed(cfg, seed)
	if err != nil {
		return err
	}
	log.Info().Str("config", cfg.Name).Uint64("seed", eng.GetState().Seed).Msg("starting")

	assetsFS := os.DirFS(cmd.String("assets-dir"))
	images := ebitenr.NewImageCache(assetsFS, ".")
	loaded := images.Preload(append([]string{cfg.PlayerImage}, cfg.Images...)...)
	log.Info().Int("images", loaded).Int("wanted", len(cfg.Images)+1).Msg("assets loaded")

	var music *ebitenr.Music
	if cfg.Music != "" && !cmd.Bool("mute") {
		music, err = ebitenr.LoadMusic(audio.NewContext(ebitenr.SampleRate), assetsFS, ".", cfg.Music)
		if err != nil {
			log.Warn().Err(err).Str("music", cfg.Music).Msg("music unavailable")
			music = nil
		} else {
			defer music.Close()
			music.Play()
		}
	}

	game := NewGame(eng, images, music)
	ebiten.SetWindowSize(game.width, game.height)
	ebiten.SetWindowTitle(fmt.Sprintf("Note Hunt - %s", cfg.Name))
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	return ebiten.RunGame(game)
}

func loadConfig(dir, ref string) (*engine.GameConfig, error) {
	manager := config.NewEmbeddedManager(assets.Configs())
	if dir != "" {
		var err error
		if manager, err = config.NewManager(dir); err != nil {
			return nil, err
		}
	}
	return manager.Resolve(ref)
}
