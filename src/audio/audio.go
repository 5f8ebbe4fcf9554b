package audio

import (
	"fmt"
	"math"
	"sync"
)

const (
	// DefaultSampleRate is the rate used by the device player.
	DefaultSampleRate = 48000
	channelNum        = 2
	bitDepthInBytes   = 2
	samplesPerCycle   = 1024
	fftSize           = 2048 // multiple of samplesPerCycle
)
const bytesPerSample = bitDepthInBytes * channelNum
const bufferSizeInBytes = samplesPerCycle * bytesPerSample // should be >= 4096

// DefaultMasterGain is the bus gain of a new Context.
const DefaultMasterGain = 0.5

// State is the lifecycle of a Context.
type State int

const (
	StateRunning State = iota
	StateSuspended
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateSuspended:
		return "suspended"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

// ----- Context ----- //

// Context renders a graph of nodes into samples. It is the Output of an
// Engine. Rendering and scheduling are serialized by one mutex.
type Context struct {
	sync.Mutex
	sampleRate int
	frame      int64
	state      State
	master     *GainNode
	voices     []*Voice
	delays     []*DelayNode
	analyser   *analyser
}

var _ Output = (*Context)(nil)

// NewContext returns a running context at the given sample rate.
func NewContext(sampleRate int) (*Context, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate %d", ErrOutputUnavailable, sampleRate)
	}
	return &Context{
		sampleRate: sampleRate,
		state:      StateRunning,
		master:     newGainNode(DefaultMasterGain),
		analyser:   newAnalyser(fftSize),
	}, nil
}

// SampleRate returns frames per second.
func (c *Context) SampleRate() int {
	return c.sampleRate
}

// CurrentTime returns the clock in seconds. It only advances while running.
func (c *Context) CurrentTime() float64 {
	c.Lock()
	defer c.Unlock()
	return c.now()
}

func (c *Context) now() float64 {
	return float64(c.frame) / float64(c.sampleRate)
}

// ----- Lifecycle ----- //

// State returns the current lifecycle state.
func (c *Context) State() State {
	c.Lock()
	defer c.Unlock()
	return c.state
}

// Resume restarts a suspended context. Resuming a running context is a no-op.
func (c *Context) Resume() error {
	c.Lock()
	defer c.Unlock()
	if c.state == StateClosed {
		return fmt.Errorf("%w: context closed", ErrOutputUnavailable)
	}
	c.state = StateRunning
	return nil
}

// Suspend stops the clock. A suspended context renders silence.
func (c *Context) Suspend() error {
	c.Lock()
	defer c.Unlock()
	if c.state == StateClosed {
		return fmt.Errorf("%w: context closed", ErrOutputUnavailable)
	}
	c.state = StateSuspended
	return nil
}

// Close releases every voice. A closed context cannot be resumed.
func (c *Context) Close() error {
	c.Lock()
	defer c.Unlock()
	for _, v := range c.voices {
		c.detach(v)
	}
	c.voices = nil
	c.delays = nil
	c.state = StateClosed
	return nil
}

// ----- Master Gain ----- //

// SetMasterGain sets the gain of the bus feeding the device.
func (c *Context) SetMasterGain(gain float64) error {
	if gain < 0 || math.IsNaN(gain) || math.IsInf(gain, 0) {
		return fmt.Errorf("%w: master gain = %v", ErrInvalidParameter, gain)
	}
	c.Lock()
	defer c.Unlock()
	c.master.Gain.SetValue(gain)
	return nil
}

// MasterGain returns the gain of the bus.
func (c *Context) MasterGain() float64 {
	c.Lock()
	defer c.Unlock()
	return c.master.Gain.Value()
}

// ----- Node Factory ----- //

// NewOscillator returns an oscillator. Noise maps to the band-limited square.
func (c *Context) NewOscillator(waveform Waveform, freq float64) *OscillatorNode {
	return newOscillatorNode(c.sampleRate, waveform, squareWaves(), freq)
}

// NewBufferSource returns a looping source over buffer.
func (c *Context) NewBufferSource(buffer *NoiseBuffer) *BufferSourceNode {
	return newBufferSourceNode(buffer)
}

// NewGain returns a gain node.
func (c *Context) NewGain(value float64) *GainNode {
	return newGainNode(value)
}

// NewBiquadFilter returns a filter node.
func (c *Context) NewBiquadFilter(kind FilterKind, freq float64, q float64) *BiquadFilterNode {
	return newBiquadFilterNode(c.sampleRate, kind, freq, q)
}

// NewWaveShaper returns a node applying curve to every sample.
func (c *Context) NewWaveShaper(curve func(float64) float64) *WaveShaperNode {
	return newWaveShaperNode(curve)
}

// NewDelay returns a delay line of delayTime seconds.
func (c *Context) NewDelay(delayTime float64) *DelayNode {
	return newDelayNode(c.sampleRate, delayTime)
}

var sharedSquare struct {
	sync.Once
	waves *PulseWaveSet
}

func squareWaves() *PulseWaveSet {
	sharedSquare.Do(func() {
		sharedSquare.waves = NewPulseWaveSet(defaultPulseDuty, maxPulsePartials)
	})
	return sharedSquare.waves
}

// ----- Scheduling ----- //

// Schedule attaches voices to the bus in one step.
func (c *Context) Schedule(voices ...*Voice) error {
	c.Lock()
	defer c.Unlock()
	if c.state == StateClosed {
		return fmt.Errorf("%w: context closed", ErrOutputUnavailable)
	}
	for _, v := range voices {
		for _, n := range v.sends {
			Connect(n, c.master)
		}
		c.delays = append(c.delays, v.delays...)
		c.voices = append(c.voices, v)
	}
	return nil
}

// ActiveVoices returns the number of voices still attached.
func (c *Context) ActiveVoices() int {
	c.Lock()
	defer c.Unlock()
	return len(c.voices)
}

func (c *Context) detach(v *Voice) {
	for _, n := range v.sends {
		Disconnect(n, c.master)
	}
	if len(v.delays) > 0 {
		delays := c.delays[:0]
		for _, d := range c.delays {
			if !containsDelay(v.delays, d) {
				delays = append(delays, d)
			}
		}
		for i := len(delays); i < len(c.delays); i++ {
			c.delays[i] = nil
		}
		c.delays = delays
	}
	v.release()
}

func containsDelay(delays []*DelayNode, d *DelayNode) bool {
	for _, x := range delays {
		if x == d {
			return true
		}
	}
	return false
}

func (c *Context) releaseFinished(t float64) {
	kept := c.voices[:0]
	for _, v := range c.voices {
		if v.Stop <= t {
			c.detach(v)
		} else {
			kept = append(kept, v)
		}
	}
	for i := len(kept); i < len(c.voices); i++ {
		c.voices[i] = nil
	}
	c.voices = kept
}

// ----- Rendering ----- //

// Render fills out with mono samples from the bus.
func (c *Context) Render(out []float64) {
	c.Lock()
	defer c.Unlock()
	for i := range out {
		if c.state != StateRunning {
			out[i] = 0
			continue
		}
		out[i] = c.step()
	}
}

func (c *Context) step() float64 {
	frame := c.frame
	t := c.now()
	value := pull(c.master, frame, t)
	for _, d := range c.delays {
		d.step(frame, t)
	}
	c.analyser.write(value)
	c.frame++
	c.releaseFinished(c.now())
	return value
}

// Read implements io.Reader with 16-bit little-endian stereo frames.
func (c *Context) Read(buf []byte) (int, error) {
	out := make([]float64, len(buf)/bytesPerSample)
	c.Render(out)
	writeBuffer(out, 0, buf, 0)
	writeBuffer(out, 0, buf, 1)
	return len(out) * bytesPerSample, nil
}

func writeBuffer(out []float64, outOffset int64, buf []byte, ch int) {
	sampleLength := int(len(buf) / bytesPerSample)
	for i := 0; i < sampleLength; i++ {
		value := math.Max(-1, math.Min(1, out[outOffset+int64(i)]))
		switch bitDepthInBytes {
		case 1:
			const max = 127
			b := int(value * max)
			buf[bytesPerSample*i+ch] = byte(b + 128)
		case 2:
			const max = 32767
			b := int16(value * max)
			buf[bytesPerSample*i+2*ch] = byte(b)
			buf[bytesPerSample*i+2*ch+1] = byte(b >> 8)
		}
	}
}
