package audio

import (
	"math"
	"math/rand"
	"testing"
)

func TestQuantize(t *testing.T) {
	expectNearlyEqual(t, Quantize(0.3, 1), 0.5)
	expectNearlyEqual(t, Quantize(0.2, 1), 0)
	expectNearlyEqual(t, Quantize(0.3, 2), 0.25)
	expectNearlyEqual(t, Quantize(2, 4), 1)
	expectNearlyEqual(t, Quantize(-2, 4), -1)
	expectNearlyEqual(t, Quantize(0.123456, 16), 0.123456)
}

func TestQuantizeDeepBitDepths(t *testing.T) {
	for _, bits := range []int{52, 53, 64, 1023, 1024, 1100, math.MaxInt32} {
		q := Quantize(0.3, bits)
		if math.IsNaN(q) || math.Abs(q-0.3) > 1e-15 {
			t.Errorf("bits %d: unexpected %v", bits, q)
		}
		expectEqual(t, Quantize(2, bits), 1.0)
	}
}

func TestDeepBitDepthRendersFiniteSamples(t *testing.T) {
	c := newTestContext(t, 8000)
	p := DefaultParams()
	p.BitDepth = 1100
	p.EchoDelay = 0
	_, err := NewEngine(c).PlayCustom(p)
	expectNoError(t, err)
	out := make([]float64, 800)
	c.Render(out)
	loud := false
	for i, v := range out {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("sample %d is %v", i, v)
		}
		if v != 0 {
			loud = true
		}
	}
	expectEqual(t, loud, true)
}

func TestQuantizeIsIdempotent(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for bits := 1; bits <= 16; bits++ {
		for i := 0; i < 1000; i++ {
			x := r.Float64()*4 - 2
			q := Quantize(x, bits)
			if Quantize(q, bits) != q {
				t.Fatalf("not idempotent: bits %d, x %v", bits, x)
			}
			if q < -1 || q > 1 {
				t.Fatalf("out of range: bits %d, x %v", bits, x)
			}
		}
	}
}

func TestBitCrusherNode(t *testing.T) {
	src := newImpulse()
	w := newWaveShaperNode(NewBitCrusher(2))
	Connect(src, w)
	expectNearlyEqual(t, pull(w, 0, 0), 1)
	expectNearlyEqual(t, pull(w, 1, 0), 0)

	half := newGainNode(0.3)
	Connect(newImpulse(), half)
	w = newWaveShaperNode(NewBitCrusher(2))
	Connect(half, w)
	expectNearlyEqual(t, pull(w, 0, 0), 0.25)
}
