package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/robotalks/kevsays/pkg/framework"
	"github.com/robotalks/kevsays/pkg/monitor"
)

var (
	mqttURL = "mqtt://localhost:1883/"
)

func init() {
	if val := os.Getenv("KEVSAYS_MQTT_URL"); val != "" {
		mqttURL = val
	}
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
}

func printReport(topic string, payload []byte) {
	report, err := monitor.DecodeStatusReport(payload)
	if err != nil {
		log.Printf("%s: bad report: %v", topic, err)
		return
	}
	log.Printf("%s: options=%03b debug=%v scheduled=%d",
		monitor.DeviceIDFromTopic(topic), report.Options, report.Debug, report.SchedWaiting)
	for _, cs := range report.Cores {
		log.Printf("  %s", cs.ProcStatus())
	}
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	q, err := monitor.NewQueueFromURL(mqttURL)
	if err != nil {
		log.Fatalln(err)
	}
	framework.NewRunner().HandleSignals().Go(framework.NamedRun("kevmon", framework.RunFunc(func(ctx context.Context) error {
		sub := q.Sub(monitor.StatusTopicPattern, printReport)
		if err := q.Connect(monitor.DefaultConnectTimeout); err != nil {
			return err
		}
		defer q.Close()
		<-ctx.Done()
		if err := sub.Close(); err != nil {
			log.Printf("unsubscribe: %v", err)
		}
		return ctx.Err()
	}))).WaitOrFail()
}
