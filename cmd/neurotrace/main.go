package main

import (
	"os"

	"github.com/alecthomas/kong"
	charmlog "github.com/charmbracelet/log"
)

var CLI struct {
	Trace  TraceCommand  `cmd:"" help:"Run an automatic whole-neuron reconstruction from a seed voxel."`
	Search SearchCommand `cmd:"" help:"Run an interactive point-to-point path search."`
	Serve  ServeCommand  `cmd:"" help:"Expose Prometheus metrics for a long-running tracer process."`
}

func main() {
	charmlog.SetLevel(charmlog.InfoLevel)

	ctx := kong.Parse(&CLI,
		kong.Name("neurotrace"),
		kong.Description("Path search and automatic reconstruction over 3-D scalar volumes."),
		kong.UsageOnError(),
	)

	if err := ctx.Run(); err != nil {
		charmlog.Error("command failed", "error", err)
		os.Exit(1)
	}
}
