package main

import (
	"os"

	"github.com/stratumviz/stratum/internal/cli"
	"github.com/stratumviz/stratum/pkg/buildinfo"
)

func main() {
	cli.SetVersion(buildinfo.Version, buildinfo.Commit, buildinfo.Date)
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
