package audio

const (
	noiseSeed      = 0x7FFF
	noiseAmplitude = 0.5
)

// ----- Noise Buffer ----- //

// NoiseBuffer holds two seconds of 15-bit LFSR noise. It is read-only once built.
type NoiseBuffer struct {
	samples []float64
}

// NewNoiseBuffer generates the noise for the given sample rate.
// The sequence only depends on the length.
func NewNoiseBuffer(sampleRate int) *NoiseBuffer {
	samples := make([]float64, 2*sampleRate)
	lfsr := uint16(noiseSeed)
	for i := range samples {
		feedback := (lfsr ^ (lfsr >> 1)) & 1
		lfsr = (lfsr >> 1) | (feedback << 14)
		samples[i] = (float64(lfsr&1)*2 - 1) * noiseAmplitude
	}
	return &NoiseBuffer{samples: samples}
}

// Len returns the number of samples.
func (b *NoiseBuffer) Len() int {
	return len(b.samples)
}

// At returns the i-th sample.
func (b *NoiseBuffer) At(i int) float64 {
	return b.samples[i]
}

// ----- Buffer Source ----- //

// BufferSourceNode plays a NoiseBuffer from the start, looping.
type BufferSourceNode struct {
	nodeBase
	scheduled
	buffer *NoiseBuffer
	cursor int
}

func newBufferSourceNode(buffer *NoiseBuffer) *BufferSourceNode {
	return &BufferSourceNode{
		nodeBase:  newNodeBase(),
		scheduled: newScheduled(),
		buffer:    buffer,
	}
}

func (s *BufferSourceNode) base() *nodeBase {
	return &s.nodeBase
}

func (s *BufferSourceNode) process(frame int64, t float64) float64 {
	if !s.playing(t) || len(s.buffer.samples) == 0 {
		return 0
	}
	value := s.buffer.samples[s.cursor]
	s.cursor++
	if s.cursor >= len(s.buffer.samples) {
		s.cursor = 0
	}
	return value
}
