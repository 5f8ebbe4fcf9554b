package audio

import (
	"errors"
	"fmt"
	"math"
	"testing"
	"time"
)

func expectNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Errorf("expected no error, but got: %v", err)
	}
}

func expectError(t *testing.T, err error, target error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Errorf("expected %v, but got: %v", target, err)
	}
}

func expectEqual(t *testing.T, actual, expected interface{}) {
	t.Helper()
	if actual != expected {
		t.Errorf("expected %v, but got: %v", expected, actual)
	}
}

func expectNearlyEqual(t *testing.T, actual, expected float64) {
	t.Helper()
	if math.Abs(actual-expected) > 0.0001 {
		t.Errorf("expected %v, but got: %v", expected, actual)
	}
}

func newTestContext(t *testing.T, sampleRate int) *Context {
	t.Helper()
	c, err := NewContext(sampleRate)
	if err != nil {
		t.Fatalf("failed to create context: %v", err)
	}
	return c
}

// impulse emits 1 on its first frame only.
type impulse struct {
	nodeBase
}

func newImpulse() *impulse {
	return &impulse{nodeBase: newNodeBase()}
}

func (i *impulse) base() *nodeBase {
	return &i.nodeBase
}

func (i *impulse) process(frame int64, t float64) float64 {
	if frame == 0 {
		return 1
	}
	return 0
}

func TestNewContext(t *testing.T) {
	_, err := NewContext(0)
	expectError(t, err, ErrOutputUnavailable)

	c := newTestContext(t, 48000)
	expectEqual(t, c.SampleRate(), 48000)
	expectEqual(t, c.State(), StateRunning)
	expectNearlyEqual(t, c.MasterGain(), DefaultMasterGain)
	expectNearlyEqual(t, c.CurrentTime(), 0)
}

func TestContextRendersSine(t *testing.T) {
	c := newTestContext(t, 48000)
	v := newVoice(0, 10)
	osc := c.NewOscillator(WaveSine, 1000)
	osc.Start(0)
	v.own(osc)
	v.send(osc)
	expectNoError(t, c.Schedule(v))

	out := make([]float64, 96)
	c.Render(out)
	for i, value := range out {
		expectNearlyEqual(t, value, DefaultMasterGain*math.Sin(2*math.Pi*float64(i)/48))
	}
	expectNearlyEqual(t, c.CurrentTime(), 96.0/48000)
}

func TestMasterGain(t *testing.T) {
	c := newTestContext(t, 48000)
	expectError(t, c.SetMasterGain(-0.1), ErrInvalidParameter)
	expectError(t, c.SetMasterGain(math.NaN()), ErrInvalidParameter)
	expectNoError(t, c.SetMasterGain(0.2))
	expectNearlyEqual(t, c.MasterGain(), 0.2)

	v := newVoice(0, 10)
	osc := c.NewOscillator(WaveSine, 1000)
	osc.Start(0)
	v.own(osc)
	v.send(osc)
	expectNoError(t, c.Schedule(v))
	out := make([]float64, 13)
	c.Render(out)
	expectNearlyEqual(t, out[12], 0.2)
}

func TestSuspendAndResume(t *testing.T) {
	c := newTestContext(t, 1000)
	v := newVoice(0, 10)
	osc := c.NewOscillator(WaveSquare, 100)
	osc.Start(0)
	v.own(osc)
	v.send(osc)
	expectNoError(t, c.Schedule(v))

	out := make([]float64, 10)
	c.Render(out)
	expectNearlyEqual(t, c.CurrentTime(), 0.01)

	expectNoError(t, c.Suspend())
	expectEqual(t, c.State(), StateSuspended)
	c.Render(out)
	for _, value := range out {
		expectEqual(t, value, 0.0)
	}
	expectNearlyEqual(t, c.CurrentTime(), 0.01)

	expectNoError(t, c.Resume())
	c.Render(out)
	expectNearlyEqual(t, c.CurrentTime(), 0.02)
}

func TestClose(t *testing.T) {
	c := newTestContext(t, 1000)
	v := newVoice(0, 10)
	osc := c.NewOscillator(WaveSine, 100)
	v.own(osc)
	v.send(osc)
	expectNoError(t, c.Schedule(v))
	expectNoError(t, c.Close())

	expectEqual(t, c.State(), StateClosed)
	expectEqual(t, c.ActiveVoices(), 0)
	expectEqual(t, v.Released(), true)
	expectError(t, c.Resume(), ErrOutputUnavailable)
	expectError(t, c.Suspend(), ErrOutputUnavailable)
	expectError(t, c.Schedule(newVoice(0, 1)), ErrOutputUnavailable)
}

func TestVoiceRelease(t *testing.T) {
	c := newTestContext(t, 1000)
	v := newVoice(0, 0.01)
	osc := c.NewOscillator(WaveSine, 100)
	osc.Start(0)
	gain := c.NewGain(1)
	Connect(osc, gain)
	v.own(osc, gain)
	v.send(gain)
	expectNoError(t, c.Schedule(v))
	expectEqual(t, c.ActiveVoices(), 1)
	expectEqual(t, len(c.master.inputs), 1)

	out := make([]float64, 9)
	c.Render(out)
	expectEqual(t, c.ActiveVoices(), 1)
	c.Render(out[:1])
	expectEqual(t, c.ActiveVoices(), 0)
	expectEqual(t, v.Released(), true)
	expectEqual(t, len(c.master.inputs), 0)
	expectEqual(t, len(gain.inputs), 0)
}

func TestDelayLine(t *testing.T) {
	c := newTestContext(t, 1000)
	expectNoError(t, c.SetMasterGain(1))
	v := newVoice(0, 1)
	src := newImpulse()
	d := c.NewDelay(0.01)
	expectEqual(t, d.DelaySamples(), 10)
	Connect(src, d)
	v.own(src, d)
	v.addDelay(d)
	v.send(d)
	expectNoError(t, c.Schedule(v))

	out := make([]float64, 30)
	c.Render(out)
	for i, value := range out {
		if i == 10 {
			expectNearlyEqual(t, value, 1)
		} else {
			expectNearlyEqual(t, value, 0)
		}
	}
}

func TestEchoFeedback(t *testing.T) {
	c := newTestContext(t, 1000)
	expectNoError(t, c.SetMasterGain(1))
	v := newVoice(0, 1)
	src := newImpulse()
	v.own(src)
	newEcho(c, 0.01, 0.5).attach(v, src)
	expectEqual(t, v.DelayCount(), 1)
	expectNoError(t, c.Schedule(v))

	out := make([]float64, 41)
	c.Render(out)
	expectNearlyEqual(t, out[0], 0)
	expectNearlyEqual(t, out[10], 0.4)
	expectNearlyEqual(t, out[20], 0.2)
	expectNearlyEqual(t, out[30], 0.1)
	expectNearlyEqual(t, out[40], 0.05)
	expectNearlyEqual(t, out[15], 0)
}

func TestRead(t *testing.T) {
	c := newTestContext(t, 1000)
	expectNoError(t, c.SetMasterGain(1))
	v := newVoice(0, 1)
	src := newImpulse()
	v.own(src)
	v.send(src)
	expectNoError(t, c.Schedule(v))

	buf := make([]byte, bytesPerSample*4)
	n, err := c.Read(buf)
	expectNoError(t, err)
	expectEqual(t, n, len(buf))
	// 32767 little-endian on both channels
	expectEqual(t, buf[0], byte(0xff))
	expectEqual(t, buf[1], byte(0x7f))
	expectEqual(t, buf[2], byte(0xff))
	expectEqual(t, buf[3], byte(0x7f))
	for _, b := range buf[4:] {
		expectEqual(t, b, byte(0))
	}
}

func TestWriteBufferClips(t *testing.T) {
	buf := make([]byte, bytesPerSample*2)
	writeBuffer([]float64{2, -2}, 0, buf, 0)
	expectEqual(t, int16(uint16(buf[0])|uint16(buf[1])<<8), int16(32767))
	expectEqual(t, int16(uint16(buf[4])|uint16(buf[5])<<8), int16(-32767))
}

func TestBenchmark(t *testing.T) {
	times := 100

	c := newTestContext(t, DefaultSampleRate)
	defer func() { expectNoError(t, c.Close()) }()
	e := NewEngine(c)
	out := make([]byte, bufferSizeInBytes)
	for _, key := range PresetKeys()[:10] {
		_, err := e.PlayPreset(key, nil)
		expectNoError(t, err)
	}
	start := time.Now()
	for n := 0; n < times; n++ {
		_, err := c.Read(out)
		expectNoError(t, err)
	}
	averageProcessTime := float64(time.Since(start).Microseconds()) / float64(times) / 1000
	fmt.Printf("average process time: %.2fms\n", averageProcessTime)
}
