package audio

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
)

// ----- Analyser ----- //

type analyser struct {
	out    []float64 // ring, length: fftSize
	cursor int
}

func newAnalyser(size int) *analyser {
	return &analyser{out: make([]float64, size)}
}

func (a *analyser) write(value float64) {
	a.out[a.cursor] = value
	a.cursor++
	if a.cursor >= len(a.out) {
		a.cursor = 0
	}
}

// ordered copies the ring oldest first.
func (a *analyser) ordered() []float64 {
	data := make([]float64, len(a.out))
	n := copy(data, a.out[a.cursor:])
	copy(data[n:], a.out[:a.cursor])
	return data
}

// Snapshot returns the latest samples as bytes centred on 128, oldest first.
func (c *Context) Snapshot() []byte {
	c.Lock()
	data := c.analyser.ordered()
	c.Unlock()
	result := make([]byte, len(data))
	for i, value := range data {
		b := 128 + value*128
		if b < 0 {
			b = 0
		}
		if b > 255 {
			b = 255
		}
		result[i] = byte(b)
	}
	return result
}

// Spectrum returns the magnitudes of the first half of the windowed FFT
// of the latest samples.
func (c *Context) Spectrum() []float64 {
	c.Lock()
	data := c.analyser.ordered()
	c.Unlock()
	window.Apply(data, window.Hann)
	spectrum := fft.FFTReal(data)
	result := make([]float64, len(data)/2)
	for i := range result {
		result[i] = cmplx.Abs(spectrum[i]) * 2 / float64(len(data))
	}
	return result
}
