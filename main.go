// Package main is the entry point for cue.
package main

import (
	"github.com/cuewatch/cue/cmd"
	"github.com/cuewatch/cue/config"
	"github.com/cuewatch/cue/log"
	"github.com/samber/lo"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())

	cmd.Execute()
}
