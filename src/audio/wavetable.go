package audio

import (
	"math"

	"github.com/mjibson/go-dsp/fft"
)

const (
	periodicWaveSize = 4096
	maxPulsePartials = 32
	defaultPulseDuty = 0.5
)

// PeriodicWave is one normalized cycle built from Fourier coefficients.
type PeriodicWave struct {
	values []float64
}

// NewPeriodicWave builds a cycle of size samples from sine coefficients
// imag[n] of harmonic n (imag[0] is ignored). The cycle is peak-normalized.
func NewPeriodicWave(imag []float64, size int) *PeriodicWave {
	spectrum := make([]complex128, size)
	for n := 1; n < len(imag) && n < size/2; n++ {
		// b sin(x) = (b / 2i) e^{ix} - (b / 2i) e^{-ix}
		c := complex(0, -imag[n]*float64(size)/2)
		spectrum[n] += c
		spectrum[size-n] -= c
	}
	cycle := fft.IFFT(spectrum)
	values := make([]float64, size)
	peak := 0.0
	for i, v := range cycle {
		values[i] = real(v)
		peak = math.Max(peak, math.Abs(values[i]))
	}
	if peak > 0 {
		for i := range values {
			values[i] /= peak
		}
	}
	return &PeriodicWave{values: values}
}

// NewPulseWave builds a band-limited pulse from the first partials harmonics.
func NewPulseWave(duty float64, partials int) *PeriodicWave {
	imag := make([]float64, partials+1)
	for n := 1; n <= partials; n++ {
		x := float64(n)
		imag[n] = 2 / (x * math.Pi) * math.Sin(x*math.Pi*duty)
	}
	return NewPeriodicWave(imag, periodicWaveSize)
}

// ----- Pulse Wave Set ----- //

// PulseWaveSet holds one pulse cycle per number of partials.
type PulseWaveSet struct {
	waves []*PeriodicWave // index: number of partials
}

// NewPulseWaveSet builds cycles with 1 to maxPartials partials.
func NewPulseWaveSet(duty float64, maxPartials int) *PulseWaveSet {
	waves := make([]*PeriodicWave, maxPartials+1)
	for i := 1; i <= maxPartials; i++ {
		waves[i] = NewPulseWave(duty, i)
	}
	return &PulseWaveSet{waves: waves}
}

// partialsAt returns how many partials of freq stay at or below Nyquist.
func (s *PulseWaveSet) partialsAt(freq float64, sampleRate float64) int {
	limit := len(s.waves) - 1
	freq = math.Abs(freq)
	if freq == 0 || math.IsNaN(freq) {
		return limit
	}
	partials := math.Floor(sampleRate / 2 / freq)
	if partials >= float64(limit) {
		return limit
	}
	if partials < 1 {
		return 1
	}
	return int(partials)
}

func (s *PulseWaveSet) forFrequency(freq float64, sampleRate float64) *PeriodicWave {
	return s.waves[s.partialsAt(freq, sampleRate)]
}

// getAtPhase returns the interpolated value at phase01 in [0, 1).
func (wt *PeriodicWave) getAtPhase(phase01 float64) float64 {
	length := len(wt.values)
	pos := positiveMod(phase01, 1) * float64(length)
	index := int(pos)
	if index >= length {
		index = 0
	}
	nextIndex := index + 1
	if nextIndex >= length {
		nextIndex = 0
	}
	mod := pos - math.Floor(pos)
	return wt.values[index]*(1-mod) + wt.values[nextIndex]*mod
}

func positiveMod(a float64, b float64) float64 {
	m := math.Mod(a, b)
	if m < 0 {
		m += b
	}
	return m
}
