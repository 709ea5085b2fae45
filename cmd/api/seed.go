package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yatagaratsu666/Servidor-Inventario/internal/config"
	"github.com/yatagaratsu666/Servidor-Inventario/internal/logger"
	"github.com/yatagaratsu666/Servidor-Inventario/internal/model"
	"github.com/yatagaratsu666/Servidor-Inventario/internal/service"
)

var seedCmd = &cobra.Command{
	Use:   "seed <players.json>",
	Short: "Create players from a JSON file",
	Long: `Reads a player document, or an array of them, and creates every player
that does not exist yet. Existing players are left untouched.`,
	Args: cobra.ExactArgs(1),
	RunE: runSeed,
}

func runSeed(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read seed file: %w", err)
	}
	players, err := decodePlayers(data)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.Init(cfg.Logger())

	ctx := cmd.Context()
	b, err := openBackends(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer b.Close()

	svc := service.NewPlayerService(b.players)
	svc.SetLogSink(service.NewDirectLogSink(b.logs))

	res, err := svc.CreatePlayers(ctx, players)
	switch {
	case errors.Is(err, model.ErrPlayerExists):
		log.Info("Nothing to seed, all players exist", "count", len(players))
		return nil
	case err != nil:
		return err
	}

	log.Info("Seeded players", "created", len(res.Created), "skipped", len(res.Skipped))
	fmt.Fprintf(cmd.OutOrStdout(), "created %d, skipped %d\n", len(res.Created), len(res.Skipped))
	return nil
}

// decodePlayers accepts a single player object or an array of them.
func decodePlayers(data []byte) ([]*model.Player, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, errors.New("seed file is empty")
	}

	var players []*model.Player
	if data[0] == '[' {
		if err := json.Unmarshal(data, &players); err != nil {
			return nil, fmt.Errorf("invalid seed file: %w", err)
		}
	} else {
		var p model.Player
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("invalid seed file: %w", err)
		}
		players = append(players, &p)
	}

	for i, p := range players {
		if p == nil || p.NombreUsuario == "" {
			return nil, fmt.Errorf("invalid seed file: player %d has no nombreUsuario", i)
		}
	}
	return players, nil
}
