package trigger

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/Versifine/stride/internal/event"
	"github.com/Versifine/stride/internal/locomotion"
	"github.com/Versifine/stride/internal/physics"
)

type Publisher interface {
	Publish(eventName string, evt any)
}

// Target is the controller side of a zone: tunables are read once on entry and written on
// every zone change.
type Target interface {
	Tunables() locomotion.Tunables
	SetTunables(locomotion.Tunables)
}

type Boxed interface {
	Box() physics.AABB
}

type zone struct {
	id       int
	collider *physics.Collider
	program  *program
}

// Zones tracks which trigger colliders the body overlaps. While the body is inside at least
// one zone the target runs on the base tunables edited by every active zone script, in zone
// order; leaving the last zone restores the base.
type Zones struct {
	world  *physics.World
	mask   locomotion.LayerMask
	events Publisher

	zones  map[*physics.Collider]*zone
	inside []*zone

	base    locomotion.Tunables
	hasBase bool
}

// New compiles the scripts of every trigger collider in world on mask.
func New(world *physics.World, mask locomotion.LayerMask, events Publisher) (*Zones, error) {
	z := &Zones{
		world:  world,
		mask:   mask,
		events: events,
		zones:  make(map[*physics.Collider]*zone),
	}

	id := 0
	for _, c := range world.Colliders() {
		if !c.Trigger {
			continue
		}
		zn := &zone{id: id, collider: c}
		id++
		if !mask.Has(c.Layer) {
			continue
		}
		if c.Script != "" {
			p, err := compile(c.Script)
			if err != nil {
				return nil, fmt.Errorf("compile zone %d script: %w", zn.id, err)
			}
			zn.program = p
		}
		z.zones[c] = zn
	}
	slog.Debug("Trigger zones loaded", "zones", len(z.zones))
	return z, nil
}

func (z *Zones) Len() int {
	return len(z.zones)
}

// Inside lists the ids of the zones the body overlapped on the last Update.
func (z *Zones) Inside() []int {
	ids := make([]int, len(z.inside))
	for i, zn := range z.inside {
		ids[i] = zn.id
	}
	return ids
}

// Update compares the body's overlaps against the previous call and applies the change to
// target. A script error leaves target on the base tunables.
func (z *Zones) Update(body Boxed, target Target) error {
	var now []*zone
	for _, c := range z.world.Overlapping(body.Box(), z.mask) {
		if zn, ok := z.zones[c]; ok {
			now = append(now, zn)
		}
	}
	sort.Slice(now, func(i, j int) bool { return now[i].id < now[j].id })

	if sameZones(now, z.inside) {
		return nil
	}

	if len(z.inside) == 0 && !z.hasBase {
		z.base = target.Tunables()
		z.hasBase = true
	}

	prev := z.inside
	z.inside = now
	for _, zn := range prev {
		if !containsZone(now, zn) {
			slog.Debug("Left zone", "zone", zn.id)
			z.publish(event.EventZoneExit, zn)
		}
	}
	for _, zn := range now {
		if !containsZone(prev, zn) {
			slog.Debug("Entered zone", "zone", zn.id)
			z.publish(event.EventZoneEnter, zn)
		}
	}

	return z.apply(target)
}

// Rebase replaces the tunables zone scripts start from, e.g. after a config reload.
func (z *Zones) Rebase(target Target, base locomotion.Tunables) error {
	z.base = base
	z.hasBase = true
	return z.apply(target)
}

func (z *Zones) apply(target Target) error {
	if !z.hasBase {
		return nil
	}
	tun := z.base
	for _, zn := range z.inside {
		if zn.program == nil {
			continue
		}
		next, err := zn.program.apply(tun)
		if err != nil {
			target.SetTunables(z.base)
			return fmt.Errorf("zone %d script: %w", zn.id, err)
		}
		tun = next
	}
	target.SetTunables(tun)
	if len(z.inside) == 0 {
		z.hasBase = false
	}
	return nil
}

func (z *Zones) publish(name string, zn *zone) {
	if z.events == nil {
		return
	}
	z.events.Publish(name, event.ZoneEvent{Zone: zn.id, Script: zn.program != nil})
}

func sameZones(a, b []*zone) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func containsZone(zs []*zone, zn *zone) bool {
	for _, x := range zs {
		if x == zn {
			return true
		}
	}
	return false
}
