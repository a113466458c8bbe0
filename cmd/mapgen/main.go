package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"

	"github.com/mitchelldurbincs/hexwar/internal/config"
	"github.com/mitchelldurbincs/hexwar/internal/game"
	"github.com/mitchelldurbincs/hexwar/internal/game/mapgen"
	"github.com/mitchelldurbincs/hexwar/internal/persistence"
)

func main() {
	configPath := flag.String("config", "", "Path to config file")
	name := flag.String("name", "", "Save the generated map under this name")
	qRadius := flag.Int("q", -1, "Q radius (-1 to use config default)")
	rRadius := flag.Int("r", -1, "R radius (-1 to use config default)")
	players := flag.Int("players", -1, "Number of start tiles (-1 to use config default)")
	seed := flag.Uint64("seed", 0, "Generator seed (0 for time based)")
	del := flag.String("delete", "", "Delete the named map and exit")
	flag.Parse()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	if err := config.Init(*configPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize config")
	}
	cfg := config.Get()

	mc := cfg.GeneratorConfig()
	if *qRadius >= 0 {
		mc.QRadius = *qRadius
	}
	if *rRadius >= 0 {
		mc.RRadius = *rRadius
	}
	if *players >= 0 {
		mc.PlayerCount = *players
	}
	if *seed == 0 {
		*seed = uint64(time.Now().UnixNano())
	}

	ctx := context.Background()
	store, err := persistence.NewStore(ctx, cfg.StoreConfig(), log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open store")
	}
	if store != nil {
		defer store.Close()
	}
	gw := persistence.NewGateway(store, log.Logger)

	if *del != "" {
		if err := gw.DeleteMap(ctx, *del); err != nil {
			log.Fatal().Err(err).Str("map", *del).Msg("Failed to delete map")
		}
		return
	}

	board, err := mapgen.NewGenerator(mc, rand.New(rand.NewSource(*seed))).GenerateMap()
	if err != nil {
		log.Fatal().Err(err).Msg("Map generation failed")
	}
	log.Info().
		Uint64("seed", *seed).
		Int("tiles", board.Len()).
		Ints("players", board.ActivePlayers()).
		Msg("Map generated")
	fmt.Print(game.RenderBoard(board, cfg.Demo.Color))

	if *name == "" {
		return
	}
	if err := gw.SaveMap(ctx, *name, board); err != nil {
		log.Fatal().Err(err).Str("map", *name).Msg("Failed to save map")
	}
}
