// Package animation implements a flow-controlled playback state machine:
// a per-file_id Idle/Playing/Stopping controller that walks
// (channel,stokes) frames, paces emission by frame_rate, and respects a
// client-acknowledged flow window. The concurrency shape is a
// context.Context/CancelFunc pair, a sync.Once-guarded Start, and atomic
// counters for status reporting, repurposed from "queued fetch jobs" to
// "render+emit one frame".
package animation

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// State is one of the controller's three playback states.
type State int

const (
	Idle State = iota
	Playing
	Stopping
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Playing:
		return "playing"
	case Stopping:
		return "stopping"
	default:
		return "unknown"
	}
}

// Spec is the immutable playback configuration named by a StartAnimation
// message.
type Spec struct {
	FileID string
	First, Last int
	Start, Delta int
	FrameRate float64
	Looping bool
	ReverseAtEnd bool
	AlwaysWait bool
}

// RenderFunc renders and emits one frame. Returning an error marks only
// that frame failed — a missing tile load is fatal to that frame only —
// the controller logs and continues.
type RenderFunc func(ctx context.Context, frame int) error

// nowFunc is overridable in tests to decouple pacing assertions from real
// wall-clock sleeps.
type nowFunc func() time.Time

// Controller runs one animation's state machine. One Controller serves one
// file_id, one queue per source.
type Controller struct {
	spec Spec
	render RenderFunc
	logger *slog.Logger

	mu sync.Mutex
	state State
	current int
	goingForward bool
	delta int
	receivedFrame int
	waitingFlowEvent bool
	flowCond *sync.Cond

	ctx context.Context
	cancel context.CancelFunc
	wg sync.WaitGroup
	startOnce sync.Once

	framesEmitted atomic.Int64
	framesSkipped atomic.Int64

	now nowFunc

	// testFlowWindow, when non-zero, overrides FlowWindow()'s 10*frame_rate
	// formula; used by tests that need a small window without also slowing
	// pacing (the two are coupled through frame_rate in production).
	testFlowWindow int
}

// New constructs a Controller for spec, not yet started (Idle).
func New(spec Spec, render RenderFunc, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Controller{spec: spec, render: render, logger: logger, now: time.Now}
	c.flowCond = sync.NewCond(&c.mu)
	return c
}

// FlowWindow returns 10 * frame_rate, the maximum tolerated distance
// between the current frame and the last client-acknowledged frame, at
// least 1.
func (c *Controller) FlowWindow() int {
	if c.testFlowWindow > 0 {
		return c.testFlowWindow
	}
	w := int(10 * c.spec.FrameRate)
	if w < 1 {
		w = 1
	}
	return w
}

func sign(d int) int {
	if d < 0 {
		return -1
	}
	return 1
}

// Start transitions Idle -> Playing, resetting runtime state, and begins
// the playback goroutine.
func (c *Controller) Start() {
	c.startOnce.Do(func() {
		c.mu.Lock()
		c.state = Playing
		c.current = c.spec.Start
		c.delta = c.spec.Delta
		c.goingForward = sign(c.spec.Delta) >= 0
		c.receivedFrame = c.spec.Start
		c.mu.Unlock()

		c.ctx, c.cancel = context.WithCancel(context.Background())
		c.wg.Add(1)
		go c.loop()
	})
}

// Stop transitions Playing -> Idle (StopAnimation | CloseFile |
// SessionEnd), cancelling the playback goroutine's cancel token and
// waiting for it to observe the request.
func (c *Controller) Stop() {
	c.mu.Lock()
	if c.state == Idle {
		c.mu.Unlock()
		return
	}
	c.state = Stopping
	c.mu.Unlock()
	c.flowCond.Broadcast()
	if c.cancel != nil {
		c.cancel()
	}
	c.wg.Wait()
	c.mu.Lock()
	c.state = Idle
	c.mu.Unlock()
}

// State returns the controller's current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// FramesEmitted returns the count of frames successfully rendered and
// emitted so far.
func (c *Controller) FramesEmitted() int64 { return c.framesEmitted.Load() }

// OnFlowControl records a client AnimationFlowControl acknowledgement,
// relaxing the flow window and waking a stalled playback loop if the bound
// is no longer saturated.
func (c *Controller) OnFlowControl(receivedFrame int) {
	c.mu.Lock()
	c.receivedFrame = receivedFrame
	c.waitingFlowEvent = c.flowSaturatedLocked()
	c.mu.Unlock()
	c.flowCond.Broadcast()
}

// flowSaturatedLocked reports whether |current - received_frame| has hit
// the flow window bound. Caller must hold c.mu.
func (c *Controller) flowSaturatedLocked() bool {
	dist := c.current - c.receivedFrame
	if dist < 0 {
		dist = -dist
	}
	return dist >= c.FlowWindow()
}

func (c *Controller) loop() {
	defer c.wg.Done()
	frameInterval := time.Duration(float64(time.Second) / c.spec.FrameRate)
	start := c.now()
	n := 0

	for {
		c.mu.Lock()
		if c.state != Playing {
			c.mu.Unlock()
			return
		}
		// always_wait: block until the prior frame's flow ack landed.
		for (c.waitingFlowEvent || (c.spec.AlwaysWait && n > 0 && c.receivedFrame < c.current)) && c.state == Playing {
			c.flowCond.Wait()
		}
		if c.state != Playing {
			c.mu.Unlock()
			return
		}
		frame := c.current
		c.mu.Unlock()

		select {
		case <-c.ctx.Done():
			return
		default:
		}

		if err := c.render(c.ctx, frame); err != nil {
			c.framesSkipped.Add(1)
			c.logger.Warn("animation frame skipped", "file_id", c.spec.FileID, "frame", frame, "error", err)
		} else {
			c.framesEmitted.Add(1)
		}

		next, done := c.advance(frame)
		c.mu.Lock()
		c.current = next
		c.waitingFlowEvent = c.flowSaturatedLocked()
		if done {
			c.state = Stopping
		}
		shouldStop := c.state != Playing
		c.mu.Unlock()
		if shouldStop {
			if done {
				// Playback ran to its end on its own: no Stop call will
				// follow to finish the transition, so return to Idle here.
				c.mu.Lock()
				c.state = Idle
				c.mu.Unlock()
			}
			return
		}

		n++
		target := start.Add(time.Duration(n) * frameInterval)
		if d := target.Sub(c.now()); d > 0 {
			select {
			case <-time.After(d):
			case <-c.ctx.Done():
				return
			}
		}
		// If computation overran, the next iteration schedules immediately
		// (no catch-up sleep) — falling straight through here does that.
	}
}

// advance computes the next frame index under wrap-around semantics
// and whether playback should stop after emitting it.
func (c *Controller) advance(current int) (next int, stop bool) {
	next = current + c.delta
	if c.goingForward {
		if next <= c.spec.Last {
			return next, false
		}
		return c.wrapForward(next)
	}
	if next >= c.spec.First {
		return next, false
	}
	return c.wrapBackward(next)
}

func (c *Controller) wrapForward(next int) (int, bool) {
	switch {
	case c.spec.ReverseAtEnd:
		c.delta = -c.delta
		c.goingForward = false
		overshoot := next - c.spec.Last
		return c.spec.Last - overshoot, false
	case c.spec.Looping:
		return c.spec.First + (next - c.spec.Last - 1), false
	default:
		return c.spec.Last, true
	}
}

func (c *Controller) wrapBackward(next int) (int, bool) {
	switch {
	case c.spec.ReverseAtEnd:
		c.delta = -c.delta
		c.goingForward = true
		overshoot := c.spec.First - next
		return c.spec.First + overshoot, false
	case c.spec.Looping:
		return c.spec.Last - (c.spec.First - next - 1), false
	default:
		return c.spec.First, true
	}
}
