package audio

import "math"

// finestBitDepth is the mantissa width of float64. A finer grid changes nothing.
const finestBitDepth = 53

// Quantize clamps x to [-1, 1] and rounds it to a grid of 2^bits steps per unit.
func Quantize(x float64, bits int) float64 {
	x = math.Max(-1, math.Min(1, x))
	if bits >= finestBitDepth {
		return x
	}
	steps := math.Pow(2, float64(bits))
	return math.Round(x*steps) / steps
}

// ----- Wave Shaper ----- //

// WaveShaperNode maps each input sample through a curve.
type WaveShaperNode struct {
	nodeBase
	curve func(float64) float64
}

func newWaveShaperNode(curve func(float64) float64) *WaveShaperNode {
	return &WaveShaperNode{
		nodeBase: newNodeBase(),
		curve:    curve,
	}
}

// NewBitCrusher returns a curve quantizing to the given bit depth.
func NewBitCrusher(bits int) func(float64) float64 {
	return func(x float64) float64 {
		return Quantize(x, bits)
	}
}

func (w *WaveShaperNode) base() *nodeBase {
	return &w.nodeBase
}

func (w *WaveShaperNode) process(frame int64, t float64) float64 {
	return w.curve(w.sumInputs(frame, t))
}
