package audio

import "math"

// ----- Oscillator ----- //

// OscillatorNode is a periodic source whose pitch follows Frequency.
type OscillatorNode struct {
	nodeBase
	scheduled
	Frequency  *Param
	waveform   Waveform
	waves      *PulseWaveSet // square only
	sampleRate float64
	phase      float64 // 0 ~ 1
}

func newOscillatorNode(sampleRate int, waveform Waveform, waves *PulseWaveSet, freq float64) *OscillatorNode {
	if waveform == WaveNoise {
		waveform = WaveSquare
	}
	return &OscillatorNode{
		nodeBase:   newNodeBase(),
		scheduled:  newScheduled(),
		Frequency:  newParam(freq),
		waveform:   waveform,
		waves:      waves,
		sampleRate: float64(sampleRate),
	}
}

// Waveform returns the shape the oscillator produces.
func (o *OscillatorNode) Waveform() Waveform {
	return o.waveform
}

func (o *OscillatorNode) base() *nodeBase {
	return &o.nodeBase
}

func (o *OscillatorNode) process(frame int64, t float64) float64 {
	if !o.playing(t) {
		return 0
	}
	p := o.phase
	freq := o.Frequency.ValueAt(t)
	value := 0.0
	switch o.waveform {
	case WaveSine:
		value = math.Sin(2 * math.Pi * p)
	case WaveTriangle:
		if p < 0.25 {
			value = p * 4
		} else if p < 0.75 {
			value = 2 - p*4
		} else {
			value = p*4 - 4
		}
	case WaveSawtooth:
		if p < 0.5 {
			value = p * 2
		} else {
			value = p*2 - 2
		}
	case WaveSquare:
		value = o.waves.forFrequency(freq, o.sampleRate).getAtPhase(p)
	}
	o.phase = positiveMod(o.phase+freq/o.sampleRate, 1)
	return value
}

// GlideFrequency returns the pitch of a glide from base reaching
// base*ratio after duration seconds, evaluated t seconds after its start.
func GlideFrequency(base float64, ratio float64, duration float64, t float64) float64 {
	if t <= 0 {
		return base
	}
	if t >= duration {
		return base * ratio
	}
	return base * math.Pow(ratio, t/duration)
}
