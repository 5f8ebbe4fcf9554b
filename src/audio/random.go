package audio

import "math/rand"

var randomWaveforms = []Waveform{WaveSine, WaveSquare, WaveSawtooth, WaveTriangle}

// Randomize returns valid parameters drawn from the ranges of the control surface,
// starting from DefaultParams. Noise, bass and arpeggio layers stay off.
func Randomize(r *rand.Rand) Params {
	p := DefaultParams()
	p.BaseFrequency = 100 + r.Float64()*900
	p.FrequencySweepRatio = 0.2 + r.Float64()*3
	p.Duration = 0.1 + r.Float64()*0.6
	p.Attack = 0.005 + r.Float64()*0.05
	p.Decay = 0.05 + r.Float64()*0.2
	p.Sustain = 0.2 + r.Float64()*0.6
	p.Release = 0.05 + r.Float64()*0.2
	p.FilterFrequency = 500 + r.Float64()*4500
	p.FilterQ = 0.5 + r.Float64()*4
	p.EchoDelay = r.Float64() * 0.2
	p.EchoDecay = r.Float64() * 0.4
	p.BitDepth = 4 + r.Intn(12)
	p.Waveform = randomWaveforms[r.Intn(len(randomWaveforms))]
	return p
}
