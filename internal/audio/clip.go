package audio

import (
	"fmt"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"
)

const (
	footstepDuration   = 180 * time.Millisecond
	footstepAttack     = 4 * time.Millisecond
	footstepThumpHz    = 70.0
	footstepNoiseLevel = 0.45
	footstepThumpLevel = 0.8
)

// Clip is a decoded sound held in memory. It implements locomotion.Clip.
type Clip struct {
	name   string
	buffer *beep.Buffer
}

func NewClip(name string, format beep.Format, s beep.Streamer) *Clip {
	buf := beep.NewBuffer(format)
	buf.Append(s)
	return &Clip{name: name, buffer: buf}
}

func (c *Clip) Name() string {
	return c.name
}

func (c *Clip) Format() beep.Format {
	return c.buffer.Format()
}

// Len is the clip length in samples.
func (c *Clip) Len() int {
	return c.buffer.Len()
}

func (c *Clip) Duration() time.Duration {
	return c.buffer.Format().SampleRate.D(c.buffer.Len())
}

func (c *Clip) streamer() beep.StreamSeeker {
	return c.buffer.Streamer(0, c.buffer.Len())
}

// LoadClip decodes a wav file. The clip is named after the file without its extension.
func LoadClip(path string) (*Clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open clip: %w", err)
	}
	defer f.Close()

	s, format, err := wav.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	defer s.Close()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return NewClip(name, format, s), nil
}

// LoadClips loads every path, stopping at the first failure.
func LoadClips(paths []string) ([]*Clip, error) {
	clips := make([]*Clip, 0, len(paths))
	for _, p := range paths {
		c, err := LoadClip(p)
		if err != nil {
			return nil, err
		}
		clips = append(clips, c)
	}
	return clips, nil
}

// SynthFootstep builds a procedural footstep: a short noise scuff over a low thump, shaped
// by a fast attack and a linear release. seed selects the noise so variants differ.
func SynthFootstep(name string, rate beep.SampleRate, seed uint64) *Clip {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	noise := newEnvelope(newOscillator(0, footstepDuration, waveNoise, rate, rng), footstepDuration, footstepAttack, footstepDuration/2, rate)
	thump := newEnvelope(newOscillator(footstepThumpHz+float64(seed%7)*4, footstepDuration, waveSine, rate, rng), footstepDuration, footstepAttack, footstepDuration-footstepAttack, rate)

	mixed := beep.Mix(
		newVolume(noise, footstepNoiseLevel),
		newVolume(thump, footstepThumpLevel),
	)
	format := beep.Format{SampleRate: rate, NumChannels: 2, Precision: 2}
	return NewClip(name, format, beep.Take(rate.N(footstepDuration), mixed))
}

// Peak returns the largest absolute sample value of the clip.
func (c *Clip) Peak() float64 {
	s := c.streamer()
	buf := make([][2]float64, 512)
	peak := 0.0
	for {
		n, ok := s.Stream(buf)
		for i := 0; i < n; i++ {
			peak = math.Max(peak, math.Max(math.Abs(buf[i][0]), math.Abs(buf[i][1])))
		}
		if !ok || n == 0 {
			return peak
		}
	}
}
