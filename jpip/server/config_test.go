package server

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestBuild_RegistersConfiguredImagesAndMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	d := Build(Config{
		Images: []Image{{Name: "scan1", URL: "file:///scan1.jp2", Format: "jp2"}},
	}, reg)

	if _, ok := d.Images.Lookup("scan1"); !ok {
		t.Fatal("expected configured image to be registered")
	}
	if d.Metrics == nil {
		t.Fatal("expected metrics to be built")
	}
	if d.Throttle != nil {
		t.Fatal("expected no throttle when no bandwidth limits are configured")
	}
}

func TestBuild_WiresThrottleWhenBandwidthConfigured(t *testing.T) {
	reg := prometheus.NewRegistry()
	globalBps := 1_000_000.0
	d := Build(Config{GlobalBandwidthBps: &globalBps, BurstBytes: 1500}, reg)

	if d.Throttle == nil {
		t.Fatal("expected throttle to be wired when a bandwidth limit is configured")
	}
}
