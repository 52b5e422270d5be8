package main

import (
	"os"

	"github.com/dpshade/pocket-meta/internal/cli"
	"github.com/dpshade/pocket-meta/internal/ui"
)

func main() {
	app := cli.NewCLI(cli.Options{Interactive: ui.Run})
	os.Exit(app.Execute(os.Args[1:]))
}
