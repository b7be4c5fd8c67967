package main

import (
	"github.com/alecthomas/kong"

	"winenow.app/WineNowNote/cmd"
)

func main() {
	ctx := kong.Parse(&cmd.CLI, kong.Name("WineNowNote"), kong.Description("WineNowNote is a wine tasting journal server."))
	err := ctx.Run(&cmd.Context{Debug: cmd.CLI.Debug})
	ctx.FatalIfErrorf(err)
}
