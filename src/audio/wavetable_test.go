package audio

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/mjibson/go-dsp/fft"
)

func TestPeriodicWaveSine(t *testing.T) {
	wt := NewPeriodicWave([]float64{0, 1}, 1024)
	expectNearlyEqual(t, wt.getAtPhase(0), 0)
	expectNearlyEqual(t, wt.getAtPhase(0.25), 1)
	expectNearlyEqual(t, wt.getAtPhase(0.5), 0)
	expectNearlyEqual(t, wt.getAtPhase(0.75), -1)
	expectNearlyEqual(t, wt.getAtPhase(1.25), 1)
}

func TestPulseWaveIsNormalized(t *testing.T) {
	wt := NewPulseWave(defaultPulseDuty, maxPulsePartials)
	peak := 0.0
	sum := 0.0
	for _, v := range wt.values {
		peak = math.Max(peak, math.Abs(v))
		sum += v
	}
	expectNearlyEqual(t, peak, 1)
	expectNearlyEqual(t, sum/float64(len(wt.values)), 0)

	high := wt.getAtPhase(0.25)
	low := wt.getAtPhase(0.75)
	if high < 0.8 {
		t.Errorf("expected high half, got %v", high)
	}
	expectNearlyEqual(t, low, -high)
}

func TestOscillatorShapes(t *testing.T) {
	tests := []struct {
		waveform Waveform
		values   []float64 // at phase 0, 1/8, 1/4, 3/8, 1/2, 5/8, 3/4, 7/8
	}{
		{WaveSine, []float64{0, math.Sqrt2 / 2, 1, math.Sqrt2 / 2, 0, -math.Sqrt2 / 2, -1, -math.Sqrt2 / 2}},
		{WaveTriangle, []float64{0, 0.5, 1, 0.5, 0, -0.5, -1, -0.5}},
		{WaveSawtooth, []float64{0, 0.25, 0.5, 0.75, -1, -0.75, -0.5, -0.25}},
	}
	for _, test := range tests {
		t.Run(test.waveform.String(), func(t *testing.T) {
			osc := newOscillatorNode(8, test.waveform, nil, 1)
			osc.Start(0)
			for i, expected := range test.values {
				expectNearlyEqual(t, pull(osc, int64(i), float64(i)/8), expected)
			}
		})
	}
}

func TestOscillatorIsSilentOutsideSchedule(t *testing.T) {
	osc := newOscillatorNode(100, WaveSine, nil, 25)
	expectEqual(t, pull(osc, 0, 0), 0.0)
	osc.Start(0.05)
	osc.Stop(0.1)
	expectEqual(t, pull(osc, 1, 0.01), 0.0)
	expectNearlyEqual(t, pull(osc, 5, 0.05), 0)
	expectNearlyEqual(t, pull(osc, 6, 0.06), 1)
	expectEqual(t, pull(osc, 10, 0.1), 0.0)
}

func TestOscillatorMapsNoiseToSquare(t *testing.T) {
	osc := newOscillatorNode(100, WaveNoise, squareWaves(), 25)
	expectEqual(t, osc.Waveform(), WaveSquare)
}

func TestPulseWaveSetPartials(t *testing.T) {
	waves := NewPulseWaveSet(defaultPulseDuty, maxPulsePartials)
	expectEqual(t, waves.partialsAt(100, 48000), maxPulsePartials)
	expectEqual(t, waves.partialsAt(750, 48000), maxPulsePartials)
	expectEqual(t, waves.partialsAt(1318, 48000), 18)
	expectEqual(t, waves.partialsAt(-1318, 48000), 18)
	expectEqual(t, waves.partialsAt(12000, 48000), 2)
	expectEqual(t, waves.partialsAt(30000, 48000), 1)
	expectEqual(t, waves.partialsAt(0, 48000), maxPulsePartials)
}

func TestSquareDoesNotAlias(t *testing.T) {
	// 1 second, so bin i is i Hz
	sampleRate := 48000
	freq := 1318.0
	osc := newOscillatorNode(sampleRate, WaveSquare, squareWaves(), freq)
	osc.Start(0)
	data := make([]float64, sampleRate)
	for i := range data {
		data[i] = pull(osc, int64(i), float64(i)/float64(sampleRate))
	}
	spectrum := fft.FFTReal(data)
	fundamental := cmplx.Abs(spectrum[1318])
	if fundamental < 1000 {
		t.Fatalf("fundamental too weak: %v", fundamental)
	}
	highest := 0.0
	for n := 1; n*1318 < sampleRate/2; n++ {
		highest = math.Max(highest, cmplx.Abs(spectrum[n*1318]))
	}
	// folded harmonics 31 and 19
	for _, bin := range []int{7142, 22958} {
		if m := cmplx.Abs(spectrum[bin]); m > fundamental*0.001 {
			t.Errorf("aliased partial at %d Hz: %v (fundamental %v)", bin, m, fundamental)
		}
	}
	expectNearlyEqual(t, highest, fundamental)
}

func TestSquareFollowsGlide(t *testing.T) {
	osc := newOscillatorNode(48000, WaveSquare, squareWaves(), 100)
	osc.Frequency.SetValueAtTime(100, 0)
	osc.Frequency.ExponentialRampToValueAtTime(10000, 1)
	osc.Start(0)
	for i := 0; i < 48000; i++ {
		v := pull(osc, int64(i), float64(i)/48000)
		if math.IsNaN(v) || math.Abs(v) > 1.0001 {
			t.Fatalf("unexpected value at %d: %v", i, v)
		}
	}
}
