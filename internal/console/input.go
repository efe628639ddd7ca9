package console

import (
	"log/slog"
	"time"

	"github.com/Versifine/stride/internal/locomotion"
	"github.com/gdamore/tcell/v2"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	defaultMovePulse = 180 * time.Millisecond
	lookStep         = 5.0 // degrees per key press
)

type Key struct {
	Code tcell.Key
	Rune rune
	Mod  tcell.ModMask
}

func KeyOf(ev *tcell.EventKey) Key {
	return Key{Code: ev.Key(), Rune: ev.Rune(), Mod: ev.Modifiers()}
}

func runeKey(r rune) Key {
	return Key{Code: tcell.KeyRune, Rune: r}
}

type Action int

const (
	ActionNone Action = iota
	ActionCommand
	ActionQuit
)

// Input turns terminal key presses into per-frame input snapshots. Terminals report no
// key-up, so a movement key holds its direction for one pulse and repeats refresh it.
type Input struct {
	pulse time.Duration

	forwardUntil  time.Time
	backwardUntil time.Time
	leftUntil     time.Time
	rightUntil    time.Time
	sprintUntil   time.Time
	sprint        bool

	pendingYaw   float64
	pendingPitch float64

	command bool
	buf     []rune
}

func NewInput() *Input {
	return &Input{pulse: defaultMovePulse}
}

// CommandLine returns the line being typed and whether command mode is active.
func (in *Input) CommandLine() (string, bool) {
	return string(in.buf), in.command
}

func (in *Input) Sprinting(now time.Time) bool {
	return in.sprint || now.Before(in.sprintUntil)
}

// Handle applies one key. ActionCommand comes with the entered line.
func (in *Input) Handle(k Key, now time.Time) (Action, string) {
	if in.command {
		return in.handleCommandKey(k)
	}

	switch k.Code {
	case tcell.KeyCtrlC:
		return ActionQuit, ""
	case tcell.KeyLeft:
		in.pendingYaw -= lookStep
	case tcell.KeyRight:
		in.pendingYaw += lookStep
	case tcell.KeyUp:
		in.pendingPitch += lookStep
	case tcell.KeyDown:
		in.pendingPitch -= lookStep
	case tcell.KeyTab:
		in.toggleSprint()
	case tcell.KeyRune:
		in.handleRune(k.Rune, now)
	}
	return ActionNone, ""
}

func (in *Input) handleRune(r rune, now time.Time) {
	until := now.Add(in.pulse)
	switch r {
	case ':':
		in.command = true
		in.buf = in.buf[:0]
	case 'w', 'W':
		in.forwardUntil, in.backwardUntil = until, time.Time{}
	case 's', 'S':
		in.backwardUntil, in.forwardUntil = until, time.Time{}
	case 'a', 'A':
		in.leftUntil, in.rightUntil = until, time.Time{}
	case 'd', 'D':
		in.rightUntil, in.leftUntil = until, time.Time{}
	case 'h':
		in.pendingYaw -= lookStep
	case 'l':
		in.pendingYaw += lookStep
	case 'k':
		in.pendingPitch += lookStep
	case 'j':
		in.pendingPitch -= lookStep
	case ']':
		in.toggleSprint()
	case 'x', 'X':
		in.clear()
	}
	// Shifted movement keys sprint for the pulse.
	switch r {
	case 'W', 'A', 'S', 'D':
		in.sprintUntil = until
	}
}

func (in *Input) handleCommandKey(k Key) (Action, string) {
	switch k.Code {
	case tcell.KeyEnter:
		line := string(in.buf)
		in.command = false
		in.buf = in.buf[:0]
		if line == "" {
			return ActionNone, ""
		}
		return ActionCommand, line
	case tcell.KeyEscape:
		in.command = false
		in.buf = in.buf[:0]
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if len(in.buf) > 0 {
			in.buf = in.buf[:len(in.buf)-1]
		}
	case tcell.KeyRune:
		in.buf = append(in.buf, k.Rune)
	}
	return ActionNone, ""
}

func (in *Input) toggleSprint() {
	in.sprint = !in.sprint
	slog.Debug("Sprint toggled", "enabled", in.sprint)
}

func (in *Input) clear() {
	*in = Input{pulse: in.pulse, buf: in.buf[:0]}
}

// Snapshot builds the frame's input. Pending look key presses are converted so that the
// controller turns by exactly lookStep degrees per press, then cleared.
func (in *Input) Snapshot(now time.Time, dt, sensitivity float64) locomotion.InputSnapshot {
	var move mgl64.Vec2
	if now.Before(in.forwardUntil) {
		move[1] += 1
	}
	if now.Before(in.backwardUntil) {
		move[1] -= 1
	}
	if now.Before(in.rightUntil) {
		move[0] += 1
	}
	if now.Before(in.leftUntil) {
		move[0] -= 1
	}

	var look mgl64.Vec2
	if scale := sensitivity * dt; scale > 0 {
		look = mgl64.Vec2{in.pendingYaw / scale, in.pendingPitch / scale}
		in.pendingYaw, in.pendingPitch = 0, 0
	}

	return locomotion.InputSnapshot{
		Move:      move,
		Sprint:    in.Sprinting(now),
		LookDelta: look,
	}
}
