package main

import (
	"github.com/robotalks/kevsays/pkg/cli/sh"
	"github.com/robotalks/kevsays/pkg/gadget"
)

//go-build: CGO_ENABLED=0

func init() {
	gadget.SetupFlags()
}

func main() {
	sh.Main()
}
