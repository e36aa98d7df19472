package anim

import (
	"errors"
	"fmt"
	"math"
)

// DefaultTicksPerSecond is used when a clip does not state its rate.
const DefaultTicksPerSecond = 25

// SpeedOptions are the playback multipliers offered to the user.
var SpeedOptions = []float64{1, 2, 4, 8, 16, 32, 64}

// Clip is a set of node tracks sharing one timeline.
type Clip struct {
	Name           string
	Duration       float32 // ticks
	TicksPerSecond float32 // 0 means DefaultTicksPerSecond
	Tracks         []Track
}

// Rate returns the effective ticks per second.
func (c *Clip) Rate() float32 {
	if c.TicksPerSecond == 0 {
		return DefaultTicksPerSecond
	}
	return c.TicksPerSecond
}

// Validate checks the duration and every track.
func (c *Clip) Validate() error {
	if c.Duration <= 0 {
		return fmt.Errorf("clip %q: duration %g must be positive", c.Name, c.Duration)
	}
	var errs []error
	for i := range c.Tracks {
		errs = append(errs, c.Tracks[i].Validate())
	}
	return errors.Join(errs...)
}

// Player advances a clip's playback time from a wall clock. Time runs in
// an endless loop over [0, duration).
type Player struct {
	duration float64
	rate     float64
	speed    float64
	time     float64 // ticks
	last     float64 // scaled wall clock of the previous Advance
}

// NewPlayer returns a player at time 0 with speed 1 whose clock reference
// is zero.
func NewPlayer(duration, ticksPerSecond float32) *Player {
	rate := float64(ticksPerSecond)
	if rate == 0 {
		rate = DefaultTicksPerSecond
	}
	return &Player{duration: float64(duration), rate: rate, speed: 1}
}

// Advance moves playback to wall clock now (seconds) and returns the new
// time in ticks.
func (p *Player) Advance(now float64) float32 {
	current := now * p.speed
	p.time += p.rate * (current - p.last)
	p.last = current
	if p.duration > 0 {
		p.time = math.Mod(p.time, p.duration)
		if p.time < 0 {
			p.time += p.duration
		}
	} else {
		p.time = 0
	}
	return float32(p.time)
}

// SetSpeed changes the multiplier. The clock reference restarts at now so
// the accumulated time does not jump.
func (p *Player) SetSpeed(speed, now float64) {
	p.speed = speed
	p.last = now * speed
}

// Time returns the current playback time in ticks.
func (p *Player) Time() float32 { return float32(p.time) }

// Speed returns the current multiplier.
func (p *Player) Speed() float64 { return p.speed }

// Duration returns the loop length in ticks.
func (p *Player) Duration() float32 { return float32(p.duration) }
