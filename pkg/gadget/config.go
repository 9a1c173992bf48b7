package gadget

import (
	"flag"
	"log"
	"os"

	"github.com/denisbrodbeck/machineid"

	"github.com/robotalks/kevsays/pkg/be"
	"github.com/robotalks/kevsays/pkg/board"
	"github.com/robotalks/kevsays/pkg/cmt"
	"github.com/robotalks/kevsays/pkg/ui"
)

// Config defines the configurations of the gadget.
type Config struct {
	DeviceID string

	ChannelDepth    int
	SchedSlots      int
	PSAPeriodMs     uint
	StatusPulseMs   int
	UIStatusPulseMs int
	DisplayRows     int

	// MQTTURL specifies the MQTT broker for status reports, empty disables.
	// e.g. mqtt://host:port/topic-prefix/
	MQTTURL string
	// MetricsAddr is the listen address of metrics and the status websocket.
	MetricsAddr string

	// Debug simulates holding the push-button at reset.
	Debug bool
	// Options is the simulated option switch value.
	Options uint
}

const defaultDeviceID = "kevsays"

var defaultConfig = Config{
	DeviceID:        defaultDeviceID,
	ChannelDepth:    cmt.DefaultChannelDepth,
	SchedSlots:      cmt.DefaultSchedSlots,
	PSAPeriodMs:     cmt.DefaultPSAPeriodMs,
	StatusPulseMs:   be.DefaultStatusPulseMs,
	UIStatusPulseMs: ui.DefaultStatusPulseMs,
	DisplayRows:     24,
	MetricsAddr:     ":9470",
}

func init() {
	if id, err := machineid.ID(); err == nil && id != "" {
		defaultConfig.DeviceID = id
	}
	if val := os.Getenv("KEVSAYS_DEVICE_ID"); val != "" {
		defaultConfig.DeviceID = val
	}
	if val := os.Getenv("KEVSAYS_MQTT_URL"); val != "" {
		defaultConfig.MQTTURL = val
	}
	if val := os.Getenv("KEVSAYS_METRICS_ADDR"); val != "" {
		defaultConfig.MetricsAddr = val
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.DeviceID, "id", defaultConfig.DeviceID, "Device ID")
	flag.IntVar(&defaultConfig.ChannelDepth, "channel-depth", defaultConfig.ChannelDepth, "Depth of each core's message channel")
	flag.IntVar(&defaultConfig.SchedSlots, "sched-slots", defaultConfig.SchedSlots, "Scheduled message slots per core")
	flag.UintVar(&defaultConfig.PSAPeriodMs, "psa-period", defaultConfig.PSAPeriodMs, "Process status sample window in ms")
	flag.IntVar(&defaultConfig.StatusPulseMs, "status-pulse", defaultConfig.StatusPulseMs, "Status report period in ms, 0 disables")
	flag.IntVar(&defaultConfig.UIStatusPulseMs, "ui-status-pulse", defaultConfig.UIStatusPulseMs, "UI status line period in ms, 0 disables")
	flag.IntVar(&defaultConfig.DisplayRows, "display-rows", defaultConfig.DisplayRows, "Rows of the simulated display")
	flag.StringVar(&defaultConfig.MQTTURL, "mqtt", defaultConfig.MQTTURL, "MQTT broker URL for status reports")
	flag.StringVar(&defaultConfig.MetricsAddr, "metrics-addr", defaultConfig.MetricsAddr, "Listen address for metrics and status websocket, empty disables")
	flag.BoolVar(&defaultConfig.Debug, "debug", defaultConfig.Debug, "Start with debug on (push-button held at reset)")
	flag.UintVar(&defaultConfig.Options, "options", defaultConfig.Options, "Option switch value (bit 0 is option 1)")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// SystemOptions returns the options of the CMT system.
func (c *Config) SystemOptions(clock cmt.Clock, io board.IO) cmt.Options {
	return cmt.Options{
		ChannelDepth: c.ChannelDepth,
		SchedSlots:   c.SchedSlots,
		PSAPeriodMs:  uint32(c.PSAPeriodMs),
		Clock:        clock,
		TempSensor:   io.TempC,
	}
}

// MustNewGadget creates a Gadget and fails on error.
func (c *Config) MustNewGadget(io board.IO, disp ui.Display) *Gadget {
	g, err := c.NewGadget(io, disp, nil)
	if err != nil {
		log.Fatalln(err)
	}
	return g
}
