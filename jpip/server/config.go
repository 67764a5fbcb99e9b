package server

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/cocosip/jpeg2000-jpip/jpip/bandwidth"
	"github.com/cocosip/jpeg2000-jpip/jpip/session"
)

// Config assembles the pieces a running jpipd server needs. It exists
// so cmd/jpipd can translate a handful of cobra flags directly into a
// Dispatcher, rather than needing a generic configuration file format
// the source spec never defines.
type Config struct {
	Addr               string
	Images             []Image
	GlobalBandwidthBps *float64
	ClientBandwidthBps *float64
	BurstBytes         int
	QueueCapacity      int
}

// Build wires Config into a ready-to-serve Dispatcher, registering its
// Prometheus metrics against reg.
func Build(cfg Config, reg prometheus.Registerer) *Dispatcher {
	images := NewImageRegistry()
	for _, img := range cfg.Images {
		images.Register(img)
	}

	var throttle *bandwidth.Throttle
	if cfg.GlobalBandwidthBps != nil || cfg.ClientBandwidthBps != nil {
		throttle = bandwidth.NewThrottle(cfg.GlobalBandwidthBps, cfg.ClientBandwidthBps, cfg.BurstBytes)
	}

	capacity := cfg.QueueCapacity
	if capacity <= 0 {
		capacity = 256
	}

	return &Dispatcher{
		Images:   images,
		Sessions: session.NewRegistry(),
		Throttle: throttle,
		Queue:    NewRequestQueue(capacity),
		Metrics:  NewMetrics(reg),
	}
}
