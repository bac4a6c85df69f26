package main

import (
	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version  kong.VersionFlag `short:"v" help:"Show version"`
	Server   ServerCmd        `cmd:"" help:"Run the escrow server"`
	Client   ClientCmd        `cmd:"" help:"Submit intents to a running server"`
	Keygen   KeygenCmd        `cmd:"" help:"Generate an actor key"`
	Simulate SimulateCmd      `cmd:"" help:"Play simulated rounds in-process"`
	History  HistoryCmd       `cmd:"" help:"Work with round history files"`
}

func main() {
	// A missing .env is fine; values there only fill unset variables.
	_ = godotenv.Load()

	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("pokerescrow"),
		kong.Description("Escrow, voting and reputation for off-chain poker rooms"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
		kong.Bind(&cli.Client),
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
