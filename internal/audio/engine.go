package audio

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Versifine/stride/internal/locomotion"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"
)

const (
	DefaultSampleRate  = 44100
	DefaultMinDistance = 1.0
	maxCueHistory      = 64
	resampleQuality    = 3
	speakerBuffer      = 100 * time.Millisecond
)

// Listener is where cues are heard from; physics.Camera satisfies it.
type Listener interface {
	Position() mgl64.Vec3
	Right() mgl64.Vec3
}

type Config struct {
	SampleRate   int
	MinDistance  float64
	MasterVolume float64
}

func DefaultConfig() Config {
	return Config{SampleRate: DefaultSampleRate, MinDistance: DefaultMinDistance, MasterVolume: 1}
}

// Cue records one triggered one-shot.
type Cue struct {
	Clip     string
	Position mgl64.Vec3
	Volume   float64
	Gain     float64
	Pan      float64
}

// Engine plays positioned one-shots into a mixer. Until Init or Offline is called cues are
// only recorded.
type Engine struct {
	mu       sync.Mutex
	cfg      Config
	rate     beep.SampleRate
	mixer    *beep.Mixer
	listener Listener
	cues     []Cue
	speaker  bool
	offline  bool
}

func NewEngine(cfg Config) *Engine {
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = DefaultSampleRate
	}
	if cfg.MinDistance <= 0 {
		cfg.MinDistance = DefaultMinDistance
	}
	return &Engine{
		cfg:   cfg,
		rate:  beep.SampleRate(cfg.SampleRate),
		mixer: &beep.Mixer{},
	}
}

func (e *Engine) SampleRate() beep.SampleRate {
	return e.rate
}

// Init starts the speaker and plays the mixer on it.
func (e *Engine) Init() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.speaker {
		return nil
	}
	if err := speaker.Init(e.rate, e.rate.N(speakerBuffer)); err != nil {
		return fmt.Errorf("init speaker: %w", err)
	}
	speaker.Play(e.mixer)
	e.speaker = true
	slog.Info("Audio initialized", "sample_rate", int(e.rate))
	return nil
}

// Offline routes cues into the mixer without a speaker; the caller drains it with Stream.
func (e *Engine) Offline() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.offline = true
}

// Stream pulls mixed samples in offline mode.
func (e *Engine) Stream(samples [][2]float64) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n, _ := e.mixer.Stream(samples)
	return n
}

func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.speaker {
		speaker.Lock()
		e.mixer.Clear()
		speaker.Unlock()
		e.speaker = false
		return
	}
	e.mixer.Clear()
}

func (e *Engine) SetListener(l Listener) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listener = l
}

func (e *Engine) SetConfig(cfg Config) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if cfg.MinDistance > 0 {
		e.cfg.MinDistance = cfg.MinDistance
	}
	e.cfg.MasterVolume = cfg.MasterVolume
}

// PlayOneShotAt implements locomotion.AudioSink.
func (e *Engine) PlayOneShotAt(clip locomotion.Clip, position mgl64.Vec3, volume float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	gain, pan := e.spatialize(position)
	e.record(Cue{Clip: clip.Name(), Position: position, Volume: volume, Gain: gain, Pan: pan})

	c, ok := clip.(*Clip)
	if !ok {
		slog.Debug("Cue without audio data", "clip", clip.Name())
		return
	}
	if !e.speaker && !e.offline {
		return
	}

	var s beep.Streamer = c.streamer()
	if src := c.Format().SampleRate; src != e.rate {
		s = beep.Resample(resampleQuality, src, e.rate, s)
	}
	s = newVolume(s, volume*gain*e.cfg.MasterVolume)
	s = &effects.Pan{Streamer: s, Pan: pan}

	if e.speaker {
		speaker.Lock()
		e.mixer.Add(s)
		speaker.Unlock()
		return
	}
	e.mixer.Add(s)
}

// spatialize applies inverse-distance rolloff beyond MinDistance and pans along the
// listener's right vector.
func (e *Engine) spatialize(position mgl64.Vec3) (gain, pan float64) {
	if e.listener == nil {
		return 1, 0
	}
	offset := position.Sub(e.listener.Position())
	dist := offset.Len()
	gain = 1
	if dist > e.cfg.MinDistance {
		gain = e.cfg.MinDistance / dist
	}
	if dist > 0 {
		pan = mgl64.Clamp(offset.Mul(1/dist).Dot(e.listener.Right()), -1, 1)
	}
	return gain, pan
}

func (e *Engine) record(c Cue) {
	if len(e.cues) == maxCueHistory {
		copy(e.cues, e.cues[1:])
		e.cues = e.cues[:maxCueHistory-1]
	}
	e.cues = append(e.cues, c)
}

// Cues returns the recent cue history, oldest first.
func (e *Engine) Cues() []Cue {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Cue, len(e.cues))
	copy(out, e.cues)
	return out
}

// Playing is the number of one-shots still in the mixer.
func (e *Engine) Playing() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.speaker {
		speaker.Lock()
		defer speaker.Unlock()
	}
	return e.mixer.Len()
}
