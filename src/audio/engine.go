package audio

import "log"

// Output is where an Engine builds and schedules its voices.
type Output interface {
	SampleRate() int
	CurrentTime() float64
	Resume() error
	NewOscillator(waveform Waveform, freq float64) *OscillatorNode
	NewBufferSource(buffer *NoiseBuffer) *BufferSourceNode
	NewGain(value float64) *GainNode
	NewBiquadFilter(kind FilterKind, freq float64, q float64) *BiquadFilterNode
	NewWaveShaper(curve func(float64) float64) *WaveShaperNode
	NewDelay(delayTime float64) *DelayNode
	Schedule(voices ...*Voice) error
}

const (
	warmthFrequency  = 16000
	warmthQ          = 0.5
	noiseLayerGain   = 0.5
	noiseBandRatio   = 2
	noiseBandQ       = 1
	bassPeak         = 0.6
	bassEndFrequency = 20
	bassSweepPortion = 0.7
	bassDecayPortion = 0.8
)

// ----- Engine ----- //

// Engine turns Params into voices on an Output.
type Engine struct {
	out   Output
	noise *NoiseBuffer
}

// NewEngine returns an engine drawing noise at the output's sample rate.
func NewEngine(out Output) *Engine {
	return &Engine{
		out:   out,
		noise: NewNoiseBuffer(out.SampleRate()),
	}
}

// PlayPreset plays the preset with o overlaid on its parameters.
func (e *Engine) PlayPreset(key string, o *Overrides) ([]*Voice, error) {
	preset, err := LookupPreset(key)
	if err != nil {
		return nil, err
	}
	return e.PlayCustom(Merge(preset.Params, o))
}

// PlayCustom validates p and schedules it at the current output time.
// Nothing is built when p is invalid.
func (e *Engine) PlayCustom(p Params) ([]*Voice, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := e.out.Resume(); err != nil {
		return nil, err
	}
	t0 := e.out.CurrentTime()
	var voices []*Voice
	if p.ArpeggioEnabled() {
		voices = e.playArpeggio(&p, t0)
	} else {
		voices = []*Voice{e.playSingle(&p, t0)}
	}
	if err := e.out.Schedule(voices...); err != nil {
		return nil, err
	}
	return voices, nil
}

func (e *Engine) playSingle(p *Params, t0 float64) *Voice {
	end := t0 + p.Duration
	stop := end + p.echoTail() + StopMargin
	v := newVoice(t0, stop)

	var source Node
	if p.Waveform == WaveNoise {
		noise := e.out.NewBufferSource(e.noise)
		noise.Start(t0)
		noise.Stop(stop)
		source = noise
	} else {
		osc := e.out.NewOscillator(p.Waveform, p.BaseFrequency)
		osc.Frequency.SetValueAtTime(p.BaseFrequency, t0)
		osc.Frequency.ExponentialRampToValueAtTime(p.BaseFrequency*p.FrequencySweepRatio, end)
		osc.Start(t0)
		osc.Stop(stop)
		source = osc
	}

	filter := e.out.NewBiquadFilter(FilterLowpass, p.FilterFrequency, p.FilterQ)
	filter.Frequency.SetValueAtTime(p.FilterFrequency, t0)
	if p.FilterSweepRatio > 0 {
		filter.Frequency.ExponentialRampToValueAtTime(p.FilterFrequency*p.FilterSweepRatio, end)
	}
	envelope := e.out.NewGain(envelopeFloor)
	scheduleADSR(envelope.Gain, t0, p)

	e.chain(v, source, filter, envelope, p.BitDepth)
	v.send(envelope)
	if p.EchoEnabled() {
		newEcho(e.out, p.EchoDelay, p.EchoDecay).attach(v, envelope)
	}
	if p.AddNoise && p.NoiseAmount > 0 {
		e.addNoiseLayer(v, p, t0, end)
	}
	if p.AddBass && p.BassFrequency > 0 {
		e.addBassLayer(v, p, t0, end)
	}
	return v
}

// chain wires source -> filter -> crusher -> warmth -> envelope into v.
func (e *Engine) chain(v *Voice, source Node, filter *BiquadFilterNode, envelope *GainNode, bits int) {
	crusher := e.out.NewWaveShaper(NewBitCrusher(bits))
	warmth := e.out.NewBiquadFilter(FilterLowpass, warmthFrequency, warmthQ)
	Connect(source, filter)
	Connect(filter, crusher)
	Connect(crusher, warmth)
	Connect(warmth, envelope)
	v.own(source, filter, crusher, warmth, envelope)
}

// addNoiseLayer mixes band-passed noise straight into the bus.
func (e *Engine) addNoiseLayer(v *Voice, p *Params, t0 float64, end float64) {
	noise := e.out.NewBufferSource(e.noise)
	noise.Start(t0)
	noise.Stop(end + StopMargin)
	filter := e.out.NewBiquadFilter(FilterBandpass, p.BaseFrequency*noiseBandRatio, noiseBandQ)
	gain := e.out.NewGain(p.NoiseAmount * noiseLayerGain)
	scheduleDecay(gain.Gain, t0, p.NoiseAmount*noiseLayerGain, end)
	Connect(noise, filter)
	Connect(filter, gain)
	v.own(noise, filter, gain)
	v.send(gain)
}

// addBassLayer adds a sine falling to a rumble.
func (e *Engine) addBassLayer(v *Voice, p *Params, t0 float64, end float64) {
	bass := e.out.NewOscillator(WaveSine, p.BassFrequency)
	bass.Frequency.SetValueAtTime(p.BassFrequency, t0)
	bass.Frequency.ExponentialRampToValueAtTime(bassEndFrequency, t0+p.Duration*bassSweepPortion)
	bass.Start(t0)
	bass.Stop(end + StopMargin)
	gain := e.out.NewGain(bassPeak)
	scheduleDecay(gain.Gain, t0, bassPeak, t0+p.Duration*bassDecayPortion)
	Connect(bass, gain)
	v.own(bass, gain)
	v.send(gain)
}

func (e *Engine) playArpeggio(p *Params, t0 float64) []*Voice {
	spacing := p.arpeggioSpacing()
	noteLength := spacing * 2
	voices := make([]*Voice, 0, len(p.ArpeggioNotes))
	for i, freq := range p.ArpeggioNotes {
		start := t0 + float64(i)*spacing
		v := newVoice(start, start+noteLength+p.echoTail()+StopMargin)

		osc := e.out.NewOscillator(p.Waveform, freq)
		osc.Frequency.SetValueAtTime(freq, start)
		osc.Start(start)
		osc.Stop(start + noteLength + StopMargin)

		filter := e.out.NewBiquadFilter(FilterLowpass, p.FilterFrequency, p.FilterQ)
		envelope := e.out.NewGain(envelopeFloor)
		scheduleNoteEnvelope(envelope.Gain, start, spacing)

		e.chain(v, osc, filter, envelope, p.BitDepth)
		v.send(envelope)
		if p.EchoEnabled() {
			newEcho(e.out, p.EchoDelay, p.EchoDecay).attach(v, envelope)
		}
		voices = append(voices, v)
	}
	if len(voices) > 1 {
		log.Printf("arpeggio: %d notes, %.3fs apart\n", len(voices), spacing)
	}
	return voices
}
