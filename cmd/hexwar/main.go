package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"

	"github.com/mitchelldurbincs/hexwar/internal/config"
	"github.com/mitchelldurbincs/hexwar/internal/game"
	"github.com/mitchelldurbincs/hexwar/internal/game/dice"
	"github.com/mitchelldurbincs/hexwar/internal/game/events"
	"github.com/mitchelldurbincs/hexwar/internal/game/events/subscribers"
	"github.com/mitchelldurbincs/hexwar/internal/persistence"
)

type options struct {
	mapName     string
	fresh       bool
	listMaps    bool
	clearSave   bool
	steps       int
	watchConfig bool
}

func main() {
	configPath := flag.String("config", "", "Path to config file")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error) (empty to use config default)")
	opts := options{}
	flag.StringVar(&opts.mapName, "map", "", "Start a new game on a saved map")
	flag.BoolVar(&opts.fresh, "new", false, "Ignore the autosave and generate a new map")
	flag.BoolVar(&opts.listMaps, "list-maps", false, "List saved maps and exit")
	flag.BoolVar(&opts.clearSave, "clear-autosave", false, "Delete the autosave and exit")
	flag.IntVar(&opts.steps, "steps", -1, "Maximum demo steps (-1 to use config default)")
	flag.BoolVar(&opts.watchConfig, "watch-config", false, "Reload the config file when it changes")
	flag.Parse()

	if err := config.Init(*configPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize config")
	}
	if err := config.LoadEnvironmentConfig(os.Getenv("APP_ENV")); err != nil {
		log.Fatal().Err(err).Msg("Failed to load environment config")
	}
	cfg := config.Get()

	level := cfg.LogLevel()
	if *logLevel != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(*logLevel))
		if err != nil {
			log.Fatal().Err(err).Str("level", *logLevel).Msg("Invalid log level")
		}
		level = parsed
	}
	setupLogging(level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, opts); err != nil {
		log.Fatal().Err(err).Msg("hexwar failed")
	}
}

func run(ctx context.Context, cfg *config.Config, opts options) error {
	store, err := persistence.NewStore(ctx, cfg.StoreConfig(), log.Logger)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	if store != nil {
		defer func() {
			if err := store.Close(); err != nil {
				log.Warn().Err(err).Msg("Closing store failed")
			}
		}()
	}
	gw := persistence.NewGateway(store, log.Logger)

	switch {
	case opts.listMaps:
		return printMaps(ctx, gw)
	case opts.clearSave:
		return gw.ClearSnapshot(ctx)
	}

	if opts.watchConfig {
		config.WatchConfig(func() {
			log.Info().Msg("Config changed, new values apply to the next game")
		})
	}

	var roller dice.Roller = dice.NewRandomRoller(seedOr(cfg.Dice.Seed), log.Logger)
	if cfg.Dice.RollDelayMs > 0 {
		roller = dice.NewDelayedRoller(roller, time.Duration(cfg.Dice.RollDelayMs)*time.Millisecond)
	}

	var subs []events.Subscriber
	if cfg.Logging.Events {
		subs = append(subs, subscribers.NewLoggerSubscriber("event_logger", log.Logger, zerolog.InfoLevel))
	}

	initCfg := game.InitConfig{
		Rules:       cfg.Rules(),
		Map:         cfg.GeneratorConfig(),
		Roller:      roller,
		Autosave:    cfg.Persistence.Autosave,
		Rng:         rand.New(rand.NewSource(seedOr(cfg.Map.Seed))),
		Subscribers: subs,
		Logger:      log.Logger,
	}
	if store != nil {
		initCfg.Gateway = gw
	}
	si := game.NewSessionInitializer(initCfg)

	var s *game.Session
	switch {
	case opts.mapName != "":
		s, err = si.FromMap(ctx, opts.mapName)
	case opts.fresh:
		s, err = si.NewGame(ctx)
	default:
		var resumed bool
		s, resumed, err = si.ResumeOrNew(ctx)
		if err == nil && resumed {
			log.Info().Str("session_id", s.ID()).Msg("Resumed autosave")
		}
	}
	if err != nil {
		return err
	}

	steps := cfg.Demo.MaxSteps
	if opts.steps >= 0 {
		steps = opts.steps
	}
	return playDemo(ctx, s, cfg.Demo, steps)
}

func playDemo(ctx context.Context, s *game.Session, demo config.DemoConfig, steps int) error {
	fmt.Printf("Session %s\n%s\n", s.ID(), s.Render(demo.Color))

	rng := rand.New(rand.NewSource(uint64(time.Now().UnixNano())))
	step := 0
	for ; step < steps && !s.Phase().IsTerminal(); step++ {
		if err := ctx.Err(); err != nil {
			log.Info().Int("step", step).Msg("Demo interrupted")
			break
		}
		if err := game.PlayRandomAction(ctx, s, rng, demo.AttackBias, log.Logger); err != nil {
			if errors.Is(err, persistence.ErrStoreUnavailable) {
				return err
			}
			log.Warn().Err(err).Int("step", step).Msg("Demo action failed")
		}
		if demo.RenderEvery > 0 && (step+1)%demo.RenderEvery == 0 {
			ts := s.TurnState()
			fmt.Printf("Step %d, round %d, player %d:\n%s\n", step+1, ts.RoundNumber, ts.ActivePlayer, s.Render(demo.Color))
		}
	}

	fmt.Printf("Final board after %d steps:\n%s\n", step, s.Render(demo.Color))
	for _, ps := range s.PlayerStats() {
		status := "ALIVE"
		if !ps.Alive {
			status = "DEAD"
		}
		fmt.Printf("Player %d: %d tiles, %d armies, %s\n", ps.PlayerID, ps.TileCount, ps.TotalArmy, status)
	}

	if s.Phase().IsTerminal() {
		if winner := s.Winner(); winner > 0 {
			fmt.Printf("Game over: player %d wins (%s)\n", winner, s.EndReason())
		} else {
			fmt.Printf("Game over: no winner (%s)\n", s.EndReason())
		}
	} else {
		fmt.Printf("Stopped after %d steps, the game continues from the autosave\n", step)
	}
	return nil
}

func printMaps(ctx context.Context, gw *persistence.Gateway) error {
	maps, err := gw.ListMaps(ctx)
	if err != nil {
		return err
	}
	if len(maps) == 0 {
		fmt.Println("No saved maps")
		return nil
	}
	for _, m := range maps {
		fmt.Printf("%-24s %4d tiles  %s\n", m.Name, m.TileCount, m.SavedAt.Format(time.RFC3339))
	}
	return nil
}

func seedOr(seed uint64) uint64 {
	if seed != 0 {
		return seed
	}
	return uint64(time.Now().UnixNano())
}

func setupLogging(level zerolog.Level) {
	zerolog.SetGlobalLevel(level)

	if os.Getenv("APP_ENV") == "production" {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		})
	}
}
