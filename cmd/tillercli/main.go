package main

import (
	"github.com/robotalks/tiller.go/pkg/cli/sh"
	env "github.com/robotalks/tiller.go/pkg/env/connector"

	_ "github.com/robotalks/tiller.go/pkg/cli/cmds/steer"
)

//go-build: CGO_ENABLED=0

func init() {
	env.SetupFlags()
}

func main() {
	sh.Main()
}
