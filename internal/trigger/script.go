package trigger

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/Versifine/stride/internal/locomotion"
	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
)

const scriptTimeout = 10 * time.Millisecond

// program is a compiled zone script. It sees one global, `tunables`, a map keyed by the
// names below, and edits it in place.
type program struct {
	compiled *tengo.Compiled
}

type tunableField struct {
	key string
	ptr func(t *locomotion.Tunables) *float64
}

var tunableFields = []tunableField{
	{"move_speed", func(t *locomotion.Tunables) *float64 { return &t.MoveSpeed }},
	{"sprint_speed", func(t *locomotion.Tunables) *float64 { return &t.SprintSpeed }},
	{"speed_change_rate", func(t *locomotion.Tunables) *float64 { return &t.SpeedChangeRate }},
	{"gravity", func(t *locomotion.Tunables) *float64 { return &t.Gravity }},
	{"fall_timeout", func(t *locomotion.Tunables) *float64 { return &t.FallTimeout }},
	{"look_sensitivity", func(t *locomotion.Tunables) *float64 { return &t.LookSensitivity }},
	{"animation_damp_time", func(t *locomotion.Tunables) *float64 { return &t.AnimationDampTime }},
	{"footstep_volume", func(t *locomotion.Tunables) *float64 { return &t.FootstepVolume }},
}

func compile(src string) (*program, error) {
	script := tengo.NewScript([]byte(src))
	if err := script.Add("tunables", map[string]any{}); err != nil {
		return nil, err
	}
	script.SetImports(stdlib.GetModuleMap("math"))

	compiled, err := script.Compile()
	if err != nil {
		return nil, err
	}
	return &program{compiled: compiled}, nil
}

// apply runs the script against t and returns the edited copy.
func (p *program) apply(t locomotion.Tunables) (locomotion.Tunables, error) {
	if err := p.compiled.Set("tunables", tunablesToMap(t)); err != nil {
		return t, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), scriptTimeout)
	defer cancel()
	if err := p.compiled.RunContext(ctx); err != nil {
		return t, err
	}

	out := p.compiled.Get("tunables")
	if out.ValueType() != "map" {
		return t, fmt.Errorf("tunables replaced by %s", out.ValueType())
	}
	return tunablesFromMap(t, out.Map())
}

func tunablesToMap(t locomotion.Tunables) map[string]any {
	m := make(map[string]any, len(tunableFields))
	for _, f := range tunableFields {
		m[f.key] = *f.ptr(&t)
	}
	return m
}

// tunablesFromMap copies the known keys of m onto base. Unknown keys are ignored.
func tunablesFromMap(base locomotion.Tunables, m map[string]any) (locomotion.Tunables, error) {
	out := base
	for _, f := range tunableFields {
		raw, ok := m[f.key]
		if !ok {
			continue
		}
		v, ok := toFloat(raw)
		if !ok {
			return base, fmt.Errorf("tunables.%s: not a number: %v", f.key, raw)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return base, fmt.Errorf("tunables.%s: not finite", f.key)
		}
		*f.ptr(&out) = v
	}
	// move_speed scales the blend parameters and must stay positive.
	if out.MoveSpeed <= 0 || out.SprintSpeed < 0 {
		return base, fmt.Errorf("tunables: move_speed must be positive and sprint_speed not negative")
	}
	return out, nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}
