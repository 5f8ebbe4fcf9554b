package audio

const echoWetGain = 0.4

// ----- Delay ----- //

// DelayNode outputs its input delayed by a fixed time. Its input is written
// after every frame, so a delay may sit inside a feedback loop.
type DelayNode struct {
	nodeBase
	cursor int
	past   []float64
}

func newDelayNode(sampleRate int, delayTime float64) *DelayNode {
	length := int(float64(sampleRate) * delayTime)
	if length < 1 {
		length = 1
	}
	return &DelayNode{
		nodeBase: newNodeBase(),
		past:     make([]float64, length),
	}
}

// DelaySamples returns the delay length in samples.
func (d *DelayNode) DelaySamples() int {
	return len(d.past)
}

func (d *DelayNode) base() *nodeBase {
	return &d.nodeBase
}

func (d *DelayNode) process(frame int64, t float64) float64 {
	return d.past[d.cursor]
}

// step pulls the inputs of this frame into the line.
func (d *DelayNode) step(frame int64, t float64) {
	d.past[d.cursor] = d.sumInputs(frame, t)
	d.cursor++
	if d.cursor >= len(d.past) {
		d.cursor = 0
	}
}

// ----- Echo ----- //

type echo struct {
	delay    *DelayNode
	feedback *GainNode
	wet      *GainNode
}

// newEcho wires delay -> feedback -> delay and delay -> wet.
// Feedback gains of 1 or more are not limited.
func newEcho(out Output, delayTime float64, decay float64) *echo {
	e := &echo{
		delay:    out.NewDelay(delayTime),
		feedback: out.NewGain(decay),
		wet:      out.NewGain(echoWetGain),
	}
	Connect(e.delay, e.feedback)
	Connect(e.feedback, e.delay)
	Connect(e.delay, e.wet)
	return e
}

// attach routes src into the echo and the echo into the voice's bus sends.
func (e *echo) attach(v *Voice, src Node) {
	Connect(src, e.delay)
	v.own(e.delay, e.feedback, e.wet)
	v.addDelay(e.delay)
	v.send(e.wet)
}
