package main

import (
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog/log"

	"github.com/zbennett/bbo-extension/internal/config"
	"github.com/zbennett/bbo-extension/internal/logging"
)

var version = "dev"

// stdout receives command output; logs go elsewhere for one-shot commands.
var stdout io.Writer = os.Stdout

type CLI struct {
	Version kong.VersionFlag `short:"v" help:"Show version"`
	Serve   ServeCmd         `cmd:"" help:"Track the live feed and serve the HTTP, SSE and MCP endpoints"`
	Replay  ReplayCmd        `cmd:"" help:"Run a traffic log through the deal tracker and print the final deal"`
	Solve   SolveCmd         `cmd:"" help:"Double dummy analysis of one deal"`
	Convert ConvertCmd       `cmd:"" help:"Hand notation helpers"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("deal-tracker"),
		kong.Description("Bridge deal tracker: auction, play, thinking time and double dummy results"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}

// loadConfig reads the environment and sets up logging. One-shot commands
// log to stderr so stdout stays machine readable.
func loadConfig(oneShot bool) (config.AppConfig, error) {
	cfg, err := config.LoadApp()
	if err != nil {
		return cfg, err
	}
	if err := logging.Init(cfg.Log); err != nil {
		return cfg, err
	}
	if oneShot {
		log.Logger = log.Logger.Output(os.Stderr)
	}
	return cfg, nil
}
