package scene

import (
	"log/slog"

	"github.com/Versifine/stride/internal/locomotion"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"
)

// AgentData is the per-entity payload: the controller, the input it reads this frame and the
// hooks that run after its look pass.
type AgentData struct {
	Controller *locomotion.Controller
	Input      locomotion.InputSnapshot
	After      []func(dt float64)
}

var Agent = donburi.NewComponentType[AgentData]()

// Scene owns the attached controllers and steps them once per frame. It is driven from the
// frame loop only.
type Scene struct {
	ecs *ecs.ECS
	dt  float64
}

func New() *Scene {
	s := &Scene{ecs: ecs.NewECS(donburi.NewWorld())}

	s.ecs.AddSystem(s.updateControllers)
	s.ecs.AddSystem(s.lateUpdateControllers)
	s.ecs.AddSystem(s.runAfterHooks)
	return s
}

// Attach registers ctrl. after runs on every step once the controller's look pass is done.
func (s *Scene) Attach(ctrl *locomotion.Controller, after ...func(dt float64)) donburi.Entity {
	if ctrl == nil {
		panic("scene: nil controller")
	}
	entity := s.ecs.World.Create(Agent)
	Agent.SetValue(s.ecs.World.Entry(entity), AgentData{
		Controller: ctrl,
		After:      after,
	})
	slog.Info("Controller attached", "entity", entity.Id(), "attached", s.Len())
	return entity
}

// Detach removes entity. Unknown or already removed entities are ignored.
func (s *Scene) Detach(entity donburi.Entity) bool {
	if !s.ecs.World.Valid(entity) {
		return false
	}
	s.ecs.World.Remove(entity)
	slog.Info("Controller detached", "entity", entity.Id(), "attached", s.Len())
	return true
}

// SetInput stores the snapshot entity reads on the next Step.
func (s *Scene) SetInput(entity donburi.Entity, input locomotion.InputSnapshot) bool {
	if !s.ecs.World.Valid(entity) {
		return false
	}
	Agent.Get(s.ecs.World.Entry(entity)).Input = input
	return true
}

func (s *Scene) Controller(entity donburi.Entity) (*locomotion.Controller, bool) {
	if !s.ecs.World.Valid(entity) {
		return nil, false
	}
	return Agent.Get(s.ecs.World.Entry(entity)).Controller, true
}

// Controllers lists the attached controllers in entity order.
func (s *Scene) Controllers() []*locomotion.Controller {
	var out []*locomotion.Controller
	Agent.Each(s.ecs.World, func(entry *donburi.Entry) {
		out = append(out, Agent.Get(entry).Controller)
	})
	return out
}

func (s *Scene) Len() int {
	return len(s.Controllers())
}

// Step runs one frame: Update for every controller, then LateUpdate for every controller,
// then the after hooks.
func (s *Scene) Step(dt float64) {
	s.dt = dt
	s.ecs.Update()
}

func (s *Scene) updateControllers(e *ecs.ECS) {
	Agent.Each(e.World, func(entry *donburi.Entry) {
		a := Agent.Get(entry)
		a.Controller.Update(a.Input, s.dt)
	})
}

func (s *Scene) lateUpdateControllers(e *ecs.ECS) {
	Agent.Each(e.World, func(entry *donburi.Entry) {
		a := Agent.Get(entry)
		a.Controller.LateUpdate(a.Input, s.dt)
	})
}

func (s *Scene) runAfterHooks(e *ecs.ECS) {
	Agent.Each(e.World, func(entry *donburi.Entry) {
		for _, fn := range Agent.Get(entry).After {
			fn(s.dt)
		}
	})
}
