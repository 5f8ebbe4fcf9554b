package audio

import (
	"math"
)

// FilterKind selects the biquad response.
type FilterKind int

const (
	FilterLowpass FilterKind = iota
	FilterBandpass
)

// ----- Biquad Filter ----- //

// BiquadFilterNode is a second-order IIR filter.
type BiquadFilterNode struct {
	nodeBase
	Frequency  *Param
	Q          *Param
	kind       FilterKind
	sampleRate float64
	a          []float64
	b          []float64
	past       []float64
	lastFreq   float64
	lastQ      float64
}

func newBiquadFilterNode(sampleRate int, kind FilterKind, freq float64, q float64) *BiquadFilterNode {
	return &BiquadFilterNode{
		nodeBase:   newNodeBase(),
		Frequency:  newParam(freq),
		Q:          newParam(q),
		kind:       kind,
		sampleRate: float64(sampleRate),
		past:       make([]float64, 2),
		lastFreq:   math.NaN(),
		lastQ:      math.NaN(),
	}
}

// Kind returns the filter response.
func (f *BiquadFilterNode) Kind() FilterKind {
	return f.kind
}

func (f *BiquadFilterNode) base() *nodeBase {
	return &f.nodeBase
}

func (f *BiquadFilterNode) process(frame int64, t float64) float64 {
	in := f.sumInputs(frame, t)
	freq := f.Frequency.ValueAt(t)
	q := f.Q.ValueAt(t)
	if freq != f.lastFreq || q != f.lastQ {
		f.a, f.b = getH(f.kind, freq/f.sampleRate, q)
		f.lastFreq, f.lastQ = freq, q
	}
	return processFilterEach(in, f.a, f.b, f.past)
}

func getH(kind FilterKind, fc float64, q float64) ([]float64, []float64) {
	fc = math.Min(math.Max(fc, 0.00001), 0.49)
	q = math.Max(q, 0.0001)
	switch kind {
	case FilterBandpass:
		return makeBiquadBandpassH(fc, q)
	default:
		return makeBiquadLowpassH(fc, q)
	}
}

func makeBiquadLowpassH(fc float64, q float64) ([]float64, []float64) {
	// from RBJ's cookbook
	w0 := 2 * math.Pi * fc
	alpha := math.Sin(w0) / (2 * q)
	b0 := (1 - math.Cos(w0)) / 2
	b1 := (1 - math.Cos(w0))
	b2 := (1 - math.Cos(w0)) / 2
	a0 := 1 + alpha
	a1 := -2 * math.Cos(w0)
	a2 := 1 - alpha
	return []float64{b0 / a0, b1 / a0, b2 / a0}, []float64{a1 / a0, a2 / a0}
}

// constant 0 dB peak gain
func makeBiquadBandpassH(fc float64, q float64) ([]float64, []float64) {
	// from RBJ's cookbook
	w0 := 2 * math.Pi * fc
	alpha := math.Sin(w0) / (2 * q)
	b0 := alpha
	b1 := 0.0
	b2 := -alpha
	a0 := 1 + alpha
	a1 := -2 * math.Cos(w0)
	a2 := 1 - alpha
	return []float64{b0 / a0, b1 / a0, b2 / a0}, []float64{a1 / a0, a2 / a0}
}

// a: feedforward, b: feedback, past: delayed intermediate values
func processFilterEach(in float64, a []float64, b []float64, past []float64) float64 {
	// apply b
	for j := 0; j < len(b); j++ {
		in -= past[j] * b[j]
	}
	// apply a
	o := in * a[0]
	for j := 1; j < len(a); j++ {
		o += past[j-1] * a[j]
	}
	// unshift past
	for j := len(past) - 2; j >= 0; j-- {
		past[j+1] = past[j]
	}
	if len(past) > 0 {
		past[0] = in
	}
	return o
}
