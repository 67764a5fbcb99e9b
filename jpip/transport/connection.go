package transport

import (
	"math/rand"
	"sync"
	"time"
)

// ConnState is a client connection's lifecycle state (spec.md §4.15).
type ConnState int

const (
	StateDisconnected ConnState = iota
	StateConnecting
	StateConnected
	StateClosing
)

func (s ConnState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateClosing:
		return "closing"
	default:
		return "disconnected"
	}
}

// BackoffConfig parameterizes exponential-backoff-with-jitter
// reconnection (spec.md §4.15).
type BackoffConfig struct {
	Initial      time.Duration
	Multiplier   float64
	Max          time.Duration
	JitterFactor float64 // applied as delay * (1 ± JitterFactor*U), U uniform(-1,1)
	MaxAttempts  int
}

// DefaultBackoffConfig matches the spec's defaults.
func DefaultBackoffConfig() BackoffConfig {
	return BackoffConfig{
		Initial:      500 * time.Millisecond,
		Multiplier:   2.0,
		Max:          30 * time.Second,
		JitterFactor: 0.2,
		MaxAttempts:  10,
	}
}

// Delay computes delay(k) = min(initial*multiplier^k, max) * (1 +
// jitterFactor*U), U uniform on (-1,1), using randSource for U.
func (c BackoffConfig) Delay(attempt int, randSource *rand.Rand) time.Duration {
	base := float64(c.Initial)
	for i := 0; i < attempt; i++ {
		base *= c.Multiplier
	}
	if maxDelay := float64(c.Max); base > maxDelay {
		base = maxDelay
	}
	u := randSource.Float64()*2 - 1 // uniform(-1,1)
	jittered := base * (1 + c.JitterFactor*u)
	if jittered < 0 {
		jittered = 0
	}
	return time.Duration(jittered)
}

// Connection tracks a client's lifecycle state and reconnect attempt
// counter.
type Connection struct {
	mu sync.Mutex

	state    ConnState
	backoff  BackoffConfig
	attempt  int
	rnd      *rand.Rand
	rttAvg   time.Duration
	pingSent map[uint32]time.Time
}

// NewConnection builds a Connection in the disconnected state.
func NewConnection(backoff BackoffConfig, seed int64) *Connection {
	return &Connection{
		state:    StateDisconnected,
		backoff:  backoff,
		rnd:      rand.New(rand.NewSource(seed)),
		pingSent: make(map[uint32]time.Time),
	}
}

// State returns the current lifecycle state.
func (c *Connection) State() ConnState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Connect transitions disconnected -> connecting.
func (c *Connection) Connect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = StateConnecting
}

// ConnectSucceeded transitions connecting -> connected and resets the
// reconnect attempt counter.
func (c *Connection) ConnectSucceeded() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = StateConnected
	c.attempt = 0
}

// Close transitions connected -> closing -> disconnected.
func (c *Connection) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = StateClosing
	c.state = StateDisconnected
}

// NextReconnectDelay returns the backoff delay for the next attempt
// and increments the attempt counter, or (0, false) once MaxAttempts
// has been exhausted.
func (c *Connection) NextReconnectDelay() (time.Duration, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.attempt >= c.backoff.MaxAttempts {
		return 0, false
	}
	delay := c.backoff.Delay(c.attempt, c.rnd)
	c.attempt++
	return delay, true
}

// Attempt returns the current reconnect attempt counter.
func (c *Connection) Attempt() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.attempt
}

// SendPing records the send time of a ping keyed by requestID.
func (c *Connection) SendPing(requestID uint32, at time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pingSent[requestID] = at
}

// HandlePong samples the RTT for requestID against the recorded ping
// send time, folding it into a running average, and returns the
// sampled RTT. Returns 0, false if requestID has no matching ping.
func (c *Connection) HandlePong(requestID uint32, at time.Time) (time.Duration, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	sent, ok := c.pingSent[requestID]
	if !ok {
		return 0, false
	}
	delete(c.pingSent, requestID)
	rtt := at.Sub(sent)
	if c.rttAvg == 0 {
		c.rttAvg = rtt
	} else {
		c.rttAvg = (c.rttAvg + rtt) / 2
	}
	return rtt, true
}

// AverageRTT returns the running RTT average sampled from pongs.
func (c *Connection) AverageRTT() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rttAvg
}
