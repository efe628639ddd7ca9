package console

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

const helpText = "wasd move (WASD sprints)  Tab/] sprint  arrows/hjkl look  x stop  :tp x y z  :state  :reload  :save  :q"

// execute runs a command line against host and returns the message to show and whether
// the console should quit.
func execute(host Host, line string) (string, bool) {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return "", false
	}

	switch parts[0] {
	case "q", "quit":
		return "", true
	case "help":
		return helpText, false
	case "state":
		return describe(host.Status()), false
	case "tp":
		if len(parts) != 4 {
			return "usage: :tp <x> <y> <z>", false
		}
		var pos mgl64.Vec3
		for i := 0; i < 3; i++ {
			v, err := strconv.ParseFloat(parts[i+1], 64)
			if err != nil {
				return "invalid tp args", false
			}
			pos[i] = v
		}
		if err := host.Teleport(pos); err != nil {
			return fmt.Sprintf("tp failed: %v", err), false
		}
		return fmt.Sprintf("teleported to (%.2f, %.2f, %.2f)", pos.X(), pos.Y(), pos.Z()), false
	case "reload":
		if err := host.Reload(); err != nil {
			return fmt.Sprintf("reload failed: %v", err), false
		}
		return "config reloaded", false
	case "save":
		if err := host.Save(); err != nil {
			return fmt.Sprintf("save failed: %v", err), false
		}
		return "session saved", false
	default:
		return fmt.Sprintf("unknown command: %s", parts[0]), false
	}
}

func describe(s Status) string {
	return fmt.Sprintf("pos=(%.3f,%.3f,%.3f) speed=%.3f vy=%.3f grounded=%t freefall=%t yaw=%.1f pitch=%.1f",
		s.Position.X(), s.Position.Y(), s.Position.Z(),
		s.Speed, s.VerticalVelocity, s.Grounded, s.FreeFalling, s.Yaw, s.Pitch)
}
