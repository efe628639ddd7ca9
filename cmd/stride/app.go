package main

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Versifine/stride/internal/animation"
	"github.com/Versifine/stride/internal/audio"
	"github.com/Versifine/stride/internal/config"
	"github.com/Versifine/stride/internal/console"
	"github.com/Versifine/stride/internal/event"
	"github.com/Versifine/stride/internal/locomotion"
	"github.com/Versifine/stride/internal/physics"
	"github.com/Versifine/stride/internal/scene"
	"github.com/Versifine/stride/internal/session"
	"github.com/Versifine/stride/internal/telemetry"
	"github.com/Versifine/stride/internal/trigger"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/yohamta/donburi"
)

const (
	eyeHeight     = 1.6
	footstepClips = 4
	reloadBacklog = 1
)

var errSessionDisabled = errors.New("session disabled")

// app owns one player controller in one level and implements console.Host. Everything but
// Reload's channel is touched only from the frame loop.
type app struct {
	cfgPath string
	cfg     *config.Config

	world  *physics.World
	body   *physics.Body
	camera *physics.Camera
	spawn  mgl64.Vec3

	ctrl     *locomotion.Controller
	anim     *animation.Animator
	playback *animation.Playback
	audio    *audio.Engine
	bus      *event.Bus
	scene    *scene.Scene
	player   donburi.Entity
	zones    *trigger.Zones

	session   *session.Session
	telemetry *telemetry.Telemetry

	reloads  chan *config.Config
	lastClip string
}

func newApp(cfgPath string, cfg *config.Config, level *physics.Level, world *physics.World) (*app, error) {
	a := &app{
		cfgPath: cfgPath,
		cfg:     cfg,
		world:   world,
		spawn:   level.SpawnPoint(),
		bus:     event.NewBus(),
		anim:    animation.NewAnimator(),
		reloads: make(chan *config.Config, reloadBacklog),
	}
	if cfg.World.Spawn != nil {
		a.spawn = mgl64.Vec3(*cfg.World.Spawn)
	}

	a.body = physics.NewBody(world, physics.DefaultShape(), a.spawn)
	a.camera = physics.NewCamera(a.body, eyeHeight)
	a.playback = animation.NewPlayback(a.anim, a.bus, playbackConfig(cfg))

	a.audio = audio.NewEngine(audioConfig(cfg))
	a.audio.SetListener(a.camera)
	clips, err := loadClips(cfg, a.audio)
	if err != nil {
		return nil, err
	}

	a.ctrl = locomotion.New(cfg.Tunables(), a.body, world, a.camera, locomotion.Options{
		Animation: a.anim,
		Audio:     a.audio,
		Clips:     clips,
		Events:    a.bus,
	})

	a.zones, err = trigger.New(world, config.LayerMask(cfg.World.TriggerLayers), a.bus)
	if err != nil {
		return nil, err
	}

	a.telemetry = telemetry.New(world, telemetry.Config{
		FrameRate:   cfg.Metrics.FrameRate,
		CORSOrigins: cfg.Metrics.CORSOrigins,
	})

	a.subscribe()

	a.scene = scene.New()
	a.player = a.scene.Attach(a.ctrl,
		func(dt float64) { a.playback.Advance(dt) },
		a.camera.Advance,
		a.updateZones,
	)
	return a, nil
}

func playbackConfig(cfg *config.Config) animation.PlaybackConfig {
	return animation.PlaybackConfig{
		StrideLength: cfg.Animation.StrideLength,
		WalkSpeed:    cfg.Animation.WalkSpeed,
		RunThreshold: cfg.Animation.RunThreshold,
	}
}

func audioConfig(cfg *config.Config) audio.Config {
	return audio.Config{
		SampleRate:   cfg.Audio.SampleRate,
		MinDistance:  cfg.Audio.MinDistance,
		MasterVolume: cfg.Audio.MasterVolume,
	}
}

// loadClips reads the configured footstep clips, or synthesizes a small set when none are
// configured.
func loadClips(cfg *config.Config, engine *audio.Engine) ([]locomotion.Clip, error) {
	var loaded []*audio.Clip
	if len(cfg.Audio.Clips) > 0 {
		var err error
		loaded, err = audio.LoadClips(cfg.Audio.Clips)
		if err != nil {
			return nil, fmt.Errorf("load footstep clips: %w", err)
		}
	} else {
		for i := 0; i < footstepClips; i++ {
			loaded = append(loaded, audio.SynthFootstep(fmt.Sprintf("step-%d", i+1), engine.SampleRate(), uint64(i+1)))
		}
	}
	clips := make([]locomotion.Clip, len(loaded))
	for i, c := range loaded {
		clips[i] = c
	}
	slog.Info("Footstep clips ready", "count", len(clips))
	return clips, nil
}

func (a *app) subscribe() {
	a.bus.Subscribe(event.EventFootstep, func(raw any) {
		if ev, ok := raw.(event.FootstepEvent); ok {
			a.ctrl.OnFootstep(ev.Weight)
		}
	})
	a.bus.Subscribe(event.EventFootfall, func(raw any) {
		if ev, ok := raw.(event.FootfallEvent); ok {
			a.lastClip = ev.Clip
		}
	})
	a.bus.Subscribe(event.EventLanded, func(raw any) {
		if ev, ok := raw.(event.LandedEvent); ok {
			a.camera.Land(ev.VerticalVelocity)
		}
	})

	for _, name := range []string{
		event.EventLanded, event.EventAirborne, event.EventFreeFall,
		event.EventFootstep, event.EventFootfall, event.EventConfigSet,
		event.EventZoneEnter, event.EventZoneExit,
	} {
		a.bus.Subscribe(name, func(raw any) {
			a.telemetry.Record(name, raw)
		})
	}
}

func (a *app) updateZones(float64) {
	if err := a.zones.Update(a.body, a.ctrl); err != nil {
		slog.Warn("Zone script failed", "error", err)
	}
}

// Step runs one frame for the player.
func (a *app) Step(input locomotion.InputSnapshot, dt float64) {
	a.drainReloads()

	start := time.Now()
	a.scene.SetInput(a.player, input)
	a.scene.Step(dt)
	a.respawnIfFallen()
	tick := time.Since(start)

	f := telemetry.NewFrame(a.ctrl.State(), a.body.Position(), a.body.Yaw())
	f.Zones = a.zones.Inside()
	a.telemetry.Observe(f, tick)
}

func (a *app) respawnIfFallen() {
	floor := a.world.Bounds().Min.Y() - a.cfg.World.RespawnDepth
	if a.body.Position().Y() >= floor {
		return
	}
	slog.Info("Body fell out of the level, respawning", "y", a.body.Position().Y())
	a.body.Teleport(a.spawn)
}

func (a *app) Status() console.Status {
	st := a.ctrl.State()
	return console.Status{
		Position:         a.body.Position(),
		Yaw:              a.body.Yaw(),
		Pitch:            st.Pitch,
		Speed:            st.Speed,
		VerticalVelocity: st.VerticalVelocity,
		Grounded:         st.Grounded,
		FreeFalling:      st.FreeFalling(),
		VelocityZ:        a.anim.Float(locomotion.ParamVelocityZ),
		VelocityY:        a.anim.Float(locomotion.ParamVelocityY),
		LastClip:         a.lastClip,
		Zones:            a.zones.Inside(),
		LookSensitivity:  a.ctrl.Tunables().LookSensitivity,
	}
}

func (a *app) Teleport(pos mgl64.Vec3) error {
	if !a.world.Bounds().Contains(pos) {
		return fmt.Errorf("(%.2f, %.2f, %.2f) is outside the level", pos.X(), pos.Y(), pos.Z())
	}
	a.body.Teleport(pos)
	slog.Info("Teleported", "x", pos.X(), "y", pos.Y(), "z", pos.Z())
	return nil
}

func (a *app) Reload() error {
	cfg, err := config.Load(a.cfgPath)
	if err != nil {
		return err
	}
	return a.applyConfig(cfg)
}

func (a *app) Save() error {
	if a.session == nil {
		return errSessionDisabled
	}
	return a.session.Save(session.Capture(a.body, a.ctrl))
}

// queueReload hands a config from the watcher goroutine to the frame loop. A newer config
// replaces one that was not applied yet.
func (a *app) queueReload(cfg *config.Config, err error) {
	if err != nil {
		slog.Warn("Config reload rejected", "path", a.cfgPath, "error", err)
		return
	}
	for {
		select {
		case a.reloads <- cfg:
			return
		default:
		}
		select {
		case <-a.reloads:
		default:
		}
	}
}

func (a *app) drainReloads() {
	select {
	case cfg := <-a.reloads:
		if err := a.applyConfig(cfg); err != nil {
			slog.Warn("Config reload failed", "error", err)
		}
	default:
	}
}

// applyConfig swaps the reloadable settings. Level, logging and server settings need a
// restart.
func (a *app) applyConfig(cfg *config.Config) error {
	a.cfg = cfg
	a.playback.SetConfig(playbackConfig(cfg))
	a.audio.SetConfig(audioConfig(cfg))
	err := a.zones.Rebase(a.ctrl, cfg.Tunables())
	slog.Info("Config applied", "path", a.cfgPath)
	a.bus.Publish(event.EventConfigSet, event.ConfigReloadedEvent{Path: a.cfgPath})
	return err
}

// restoreSession places the player where the last run on this level ended.
func (a *app) restoreSession(store session.Store, level string) {
	a.session = session.New(store, level)
	snap, err := a.session.Load()
	if err != nil {
		slog.Warn("Session load failed", "error", err)
		return
	}
	if snap == nil {
		return
	}
	if !session.Restore(*snap, a.body, a.world, a.ctrl) {
		slog.Warn("Saved position outside the level, using spawn", "x", snap.X, "y", snap.Y, "z", snap.Z)
		return
	}
	slog.Info("Session restored", "level", level, "x", snap.X, "y", snap.Y, "z", snap.Z)
}

func (a *app) close() {
	if a.session != nil {
		if err := a.Save(); err != nil {
			slog.Warn("Session save failed", "error", err)
		}
	}
	a.audio.Close()
}
