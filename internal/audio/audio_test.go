package audio

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"
)

type fixedListener struct {
	position mgl64.Vec3
	right    mgl64.Vec3
}

func (l fixedListener) Position() mgl64.Vec3 { return l.position }
func (l fixedListener) Right() mgl64.Vec3    { return l.right }

type bareClip string

func (c bareClip) Name() string { return string(c) }

func TestSynthFootstep(t *testing.T) {
	rate := beep.SampleRate(22050)
	c := SynthFootstep("step_a", rate, 1)

	if c.Name() != "step_a" {
		t.Fatalf("name = %q", c.Name())
	}
	if want := rate.N(footstepDuration); c.Len() != want {
		t.Fatalf("len = %d, want %d", c.Len(), want)
	}
	if d := c.Duration(); d < 170*time.Millisecond || d > 190*time.Millisecond {
		t.Fatalf("duration = %v", d)
	}
	peak := c.Peak()
	if peak < 0.1 || peak > footstepNoiseLevel+footstepThumpLevel+1e-9 {
		t.Fatalf("peak = %v", peak)
	}
}

func TestLoadClipRoundTrip(t *testing.T) {
	rate := beep.SampleRate(22050)
	src := SynthFootstep("gen", rate, 7)
	path := filepath.Join(t.TempDir(), "gravel_1.wav")

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := wav.Encode(f, src.streamer(), src.Format()); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	clips, err := LoadClips([]string{path})
	if err != nil {
		t.Fatalf("LoadClips: %v", err)
	}
	c := clips[0]
	if c.Name() != "gravel_1" {
		t.Fatalf("name = %q, want gravel_1", c.Name())
	}
	if c.Len() != src.Len() {
		t.Fatalf("len = %d, want %d", c.Len(), src.Len())
	}
	if c.Format().SampleRate != rate {
		t.Fatalf("rate = %v, want %v", c.Format().SampleRate, rate)
	}
}

func TestLoadClipErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadClip(filepath.Join(dir, "missing.wav")); err == nil {
		t.Fatal("expected error for missing file")
	}
	bogus := filepath.Join(dir, "bogus.wav")
	if err := os.WriteFile(bogus, []byte("not a wav file"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadClip(bogus); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestEngineSpatialization(t *testing.T) {
	e := NewEngine(Config{SampleRate: 22050, MinDistance: 1, MasterVolume: 1})
	e.SetListener(fixedListener{right: mgl64.Vec3{1, 0, 0}})

	tests := []struct {
		name     string
		position mgl64.Vec3
		gain     float64
		pan      float64
	}{
		{"inside min distance", mgl64.Vec3{0, 0, 0.5}, 1, 0},
		{"far right", mgl64.Vec3{4, 0, 0}, 0.25, 1},
		{"left", mgl64.Vec3{-2, 0, 0}, 0.5, -1},
		{"at listener", mgl64.Vec3{}, 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e.PlayOneShotAt(bareClip("x"), tt.position, 0.5)
			cues := e.Cues()
			c := cues[len(cues)-1]
			if math.Abs(c.Gain-tt.gain) > 1e-12 || math.Abs(c.Pan-tt.pan) > 1e-12 {
				t.Fatalf("gain = %v, pan = %v, want %v, %v", c.Gain, c.Pan, tt.gain, tt.pan)
			}
			if c.Volume != 0.5 || c.Clip != "x" {
				t.Fatalf("cue = %+v", c)
			}
		})
	}
}

func TestEngineWithoutListener(t *testing.T) {
	e := NewEngine(DefaultConfig())
	e.PlayOneShotAt(bareClip("x"), mgl64.Vec3{100, 0, 0}, 1)
	c := e.Cues()[0]
	if c.Gain != 1 || c.Pan != 0 {
		t.Fatalf("cue = %+v", c)
	}
}

func TestEngineRecordsOnlyUntilStarted(t *testing.T) {
	e := NewEngine(DefaultConfig())
	e.PlayOneShotAt(SynthFootstep("a", e.SampleRate(), 1), mgl64.Vec3{}, 1)
	if len(e.Cues()) != 1 {
		t.Fatalf("cues = %d, want 1", len(e.Cues()))
	}
	if e.Playing() != 0 {
		t.Fatalf("playing = %d, want 0", e.Playing())
	}
}

func TestEngineOfflinePansToTheRight(t *testing.T) {
	e := NewEngine(Config{SampleRate: 22050, MinDistance: 1, MasterVolume: 1})
	e.Offline()
	e.SetListener(fixedListener{right: mgl64.Vec3{1, 0, 0}})

	e.PlayOneShotAt(SynthFootstep("a", e.SampleRate(), 3), mgl64.Vec3{1, 0, 0}, 1)
	if e.Playing() != 1 {
		t.Fatalf("playing = %d, want 1", e.Playing())
	}

	buf := make([][2]float64, 2048)
	var left, right float64
	for i := 0; i < 4; i++ {
		n := e.Stream(buf)
		for j := 0; j < n; j++ {
			left += math.Abs(buf[j][0])
			right += math.Abs(buf[j][1])
		}
	}
	if left != 0 {
		t.Fatalf("left energy = %v, want 0 for a hard right pan", left)
	}
	if right <= 0 {
		t.Fatal("no signal on the right channel")
	}

	e.Close()
	if e.Playing() != 0 {
		t.Fatalf("playing after close = %d", e.Playing())
	}
}

func TestEngineResamplesForeignRate(t *testing.T) {
	e := NewEngine(Config{SampleRate: 44100, MinDistance: 1, MasterVolume: 1})
	e.Offline()
	e.PlayOneShotAt(SynthFootstep("a", beep.SampleRate(22050), 1), mgl64.Vec3{}, 1)

	buf := make([][2]float64, 1024)
	e.Stream(buf)
	energy := 0.0
	for _, s := range buf {
		energy += math.Abs(s[0])
	}
	if energy == 0 {
		t.Fatal("resampled clip produced silence")
	}
}

func TestEngineCueHistoryIsBounded(t *testing.T) {
	e := NewEngine(DefaultConfig())
	for i := 0; i < maxCueHistory+10; i++ {
		e.PlayOneShotAt(bareClip("x"), mgl64.Vec3{float64(i), 0, 0}, 1)
	}
	cues := e.Cues()
	if len(cues) != maxCueHistory {
		t.Fatalf("cues = %d, want %d", len(cues), maxCueHistory)
	}
	if cues[0].Position.X() != 10 {
		t.Fatalf("oldest cue x = %v, want 10", cues[0].Position.X())
	}
}
