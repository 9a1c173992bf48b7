package main

//go-build: CGO_ENABLED=0

import (
	"flag"
	"log"
	"os"

	"github.com/robotalks/kevsays/pkg/board"
	"github.com/robotalks/kevsays/pkg/framework"
	"github.com/robotalks/kevsays/pkg/gadget"
	"github.com/robotalks/kevsays/pkg/ui"
)

func init() {
	gadget.SetupFlags()
}

func main() {
	flag.Parse()

	conf := gadget.NewConfig()
	g := conf.MustNewGadget(board.NewSimIO(), ui.NewTextDisplay(conf.DisplayRows, os.Stdout))
	runner := framework.NewRunner().HandleSignals().Go(framework.NamedRun("gadget", g))
	if conf.MetricsAddr != "" {
		h, err := g.MetricsHandler()
		if err != nil {
			log.Fatalln(err)
		}
		runner.Go(&framework.HTTPServer{Addr: conf.MetricsAddr, Handler: h})
	}
	runner.WaitOrFail()
}
