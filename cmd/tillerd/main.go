package main

//go-build: CGO_ENABLED=0

import (
	"flag"

	env "github.com/robotalks/tiller.go/pkg/env/device"
	fx "github.com/robotalks/tiller.go/pkg/framework"
)

func init() {
	env.SetupFlags()
}

func main() {
	flag.Parse()

	env := env.NewConfig().MustNewEnv()
	fx.NewLoop().Add(env).RunOrFail()
}
