package transport

import (
	"testing"
	"time"
)

func TestConnection_LifecycleTransitions(t *testing.T) {
	c := NewConnection(DefaultBackoffConfig(), 1)
	if c.State() != StateDisconnected {
		t.Fatalf("initial state = %v, want disconnected", c.State())
	}

	c.Connect()
	if c.State() != StateConnecting {
		t.Fatalf("state after Connect = %v, want connecting", c.State())
	}

	c.ConnectSucceeded()
	if c.State() != StateConnected {
		t.Fatalf("state after ConnectSucceeded = %v, want connected", c.State())
	}

	c.Close()
	if c.State() != StateDisconnected {
		t.Fatalf("state after Close = %v, want disconnected", c.State())
	}
}

func TestConnection_ConnectSucceededResetsAttemptCounter(t *testing.T) {
	c := NewConnection(DefaultBackoffConfig(), 1)
	c.NextReconnectDelay()
	c.NextReconnectDelay()
	if c.Attempt() != 2 {
		t.Fatalf("Attempt() = %d, want 2", c.Attempt())
	}
	c.ConnectSucceeded()
	if c.Attempt() != 0 {
		t.Fatalf("expected attempt counter reset, got %d", c.Attempt())
	}
}

func TestConnection_NextReconnectDelayStopsAtMaxAttempts(t *testing.T) {
	cfg := DefaultBackoffConfig()
	cfg.MaxAttempts = 2
	c := NewConnection(cfg, 1)

	if _, ok := c.NextReconnectDelay(); !ok {
		t.Fatal("expected first attempt to be allowed")
	}
	if _, ok := c.NextReconnectDelay(); !ok {
		t.Fatal("expected second attempt to be allowed")
	}
	if _, ok := c.NextReconnectDelay(); ok {
		t.Fatal("expected third attempt to be refused once max attempts exhausted")
	}
}

func TestBackoffConfig_DelayGrowsExponentiallyAndCapsAtMax(t *testing.T) {
	cfg := BackoffConfig{Initial: time.Second, Multiplier: 2, Max: 5 * time.Second, JitterFactor: 0}
	c := NewConnection(cfg, 1)

	d0 := cfg.Delay(0, c.rnd)
	d1 := cfg.Delay(1, c.rnd)
	d5 := cfg.Delay(5, c.rnd)

	if d0 != time.Second {
		t.Fatalf("Delay(0) = %v, want 1s", d0)
	}
	if d1 != 2*time.Second {
		t.Fatalf("Delay(1) = %v, want 2s", d1)
	}
	if d5 != 5*time.Second {
		t.Fatalf("Delay(5) = %v, want capped at 5s", d5)
	}
}

func TestConnection_HandlePongSamplesRTT(t *testing.T) {
	c := NewConnection(DefaultBackoffConfig(), 1)
	sent := time.Unix(0, 0)
	c.SendPing(7, sent)

	rtt, ok := c.HandlePong(7, sent.Add(50*time.Millisecond))
	if !ok {
		t.Fatal("expected HandlePong to find the matching ping")
	}
	if rtt != 50*time.Millisecond {
		t.Fatalf("rtt = %v, want 50ms", rtt)
	}
	if c.AverageRTT() != 50*time.Millisecond {
		t.Fatalf("AverageRTT() = %v, want 50ms", c.AverageRTT())
	}
}

func TestConnection_HandlePongRejectsUnknownRequestID(t *testing.T) {
	c := NewConnection(DefaultBackoffConfig(), 1)
	if _, ok := c.HandlePong(999, time.Now()); ok {
		t.Fatal("expected unknown ping requestID to be rejected")
	}
}
