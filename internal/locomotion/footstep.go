package locomotion

import "github.com/go-gl/mathgl/mgl64"

// PlayFootstep emits one positioned cue when the animation event weight is above threshold
// and at least one clip exists. pick returns an index in [0, n).
func PlayFootstep(sink AudioSink, clips []Clip, pick func(n int) int, weight, threshold float64, at mgl64.Vec3, volume float64) (Clip, bool) {
	if weight <= threshold || len(clips) == 0 {
		return nil, false
	}
	clip := clips[pick(len(clips))]
	sink.PlayOneShotAt(clip, at, volume)
	return clip, true
}
