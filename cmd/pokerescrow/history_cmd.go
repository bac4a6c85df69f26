package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lox/pokerescrow/internal/history"
)

// HistoryCmd is the root command for round history utilities.
type HistoryCmd struct {
	Render HistoryRenderCmd `cmd:"render" help:"Print a rounds.toml file"`
}

// HistoryRenderCmd prints each journaled round.
type HistoryRenderCmd struct {
	File    string `arg:"" name:"file" help:"Path to rounds.toml"`
	Limit   int    `help:"Maximum number of rounds to render (0 = all)"`
	NoColor bool   `name:"no-color" help:"Disable colored output"`
}

func (cmd HistoryRenderCmd) Run() error {
	if cmd.File == "" {
		return errors.New("history render requires a file path")
	}
	configureColor(cmd.NoColor)

	rounds, err := history.Load(filepath.Clean(cmd.File))
	if err != nil {
		return err
	}
	if len(rounds) == 0 {
		return fmt.Errorf("no rounds found in %s", cmd.File)
	}

	limit := cmd.Limit
	if limit <= 0 || limit > len(rounds) {
		limit = len(rounds)
	}
	for i := range limit {
		if i > 0 {
			fmt.Fprintln(os.Stdout)
		}
		renderRound(os.Stdout, i+1, rounds[i])
	}
	return nil
}
