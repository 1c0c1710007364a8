package main

import (
	"github.com/robotalks/wake.go/pkg/cli/sh"
	"github.com/robotalks/wake.go/pkg/config"

	_ "github.com/robotalks/wake.go/pkg/cli/cmds/node"
)

//go-build: CGO_ENABLED=0

func init() {
	config.SetupFlags()
}

func main() {
	sh.Main()
}
