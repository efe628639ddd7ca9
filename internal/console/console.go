// Package console is an interactive terminal front end: keys drive the controlled body and
// a top-down map follows it.
package console

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Versifine/stride/internal/locomotion"
	"github.com/Versifine/stride/internal/physics"
	"github.com/gdamore/tcell/v2"
	"github.com/go-gl/mathgl/mgl64"
)

const maxFrameDelta = 0.1

// Host is the simulation the console drives. All calls come from the console's frame loop.
type Host interface {
	Step(input locomotion.InputSnapshot, dt float64)
	Status() Status
	Teleport(pos mgl64.Vec3) error
	Reload() error
	Save() error
}

type Console struct {
	screen tcell.Screen
	world  *physics.World
	host   Host
	input  *Input
	tick   time.Duration

	message string
	now     func() time.Time
}

// New builds a console over an initialized screen. frameRate is in frames per second.
func New(screen tcell.Screen, world *physics.World, host Host, frameRate int) (*Console, error) {
	if screen == nil {
		return nil, errors.New("console screen is nil")
	}
	if host == nil {
		return nil, errors.New("console host is nil")
	}
	if frameRate <= 0 {
		frameRate = 60
	}
	return &Console{
		screen:  screen,
		world:   world,
		host:    host,
		input:   NewInput(),
		tick:    time.Second / time.Duration(frameRate),
		message: helpText,
		now:     time.Now,
	}, nil
}

// Run polls keys and steps the host once per tick until ctx is done or the user quits.
// The caller owns the screen and finalizes it afterwards.
func (c *Console) Run(ctx context.Context) error {
	ticker := time.NewTicker(c.tick)
	defer ticker.Stop()

	done := make(chan struct{})
	defer close(done)

	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := c.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	}()

	last := c.now()
	c.render()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			if !c.handleEvent(ev) {
				slog.Info("Console quit")
				return nil
			}
		case <-ticker.C:
			now := c.now()
			c.frame(now, now.Sub(last).Seconds())
			last = now
		}
	}
}

func (c *Console) frame(now time.Time, dt float64) {
	if dt > maxFrameDelta {
		dt = maxFrameDelta
	}
	if dt <= 0 {
		return
	}
	st := c.host.Status()
	c.host.Step(c.input.Snapshot(now, dt, st.LookSensitivity), dt)
	c.render()
}

// handleEvent returns false when the console should stop.
func (c *Console) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		action, line := c.input.Handle(KeyOf(ev), c.now())
		switch action {
		case ActionQuit:
			return false
		case ActionCommand:
			msg, quit := execute(c.host, line)
			if quit {
				return false
			}
			c.message = msg
		}
		c.render()
	case *tcell.EventResize:
		c.screen.Sync()
		c.render()
	}
	return true
}

func (c *Console) render() {
	bottom := c.message
	if line, ok := c.input.CommandLine(); ok {
		bottom = ":" + line
	}
	draw(c.screen, c.world, c.host.Status(), bottom)
}
