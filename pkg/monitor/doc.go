// Package monitor exports the gadget status to the outside: periodic
// status reports encoded as protobuf packets and written to any number of
// packet transports (MQTT, length-prefixed streams, websockets), and a
// Prometheus collector for per-core process status.
package monitor
