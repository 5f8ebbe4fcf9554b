package audio

import "math"

// ----- Node ----- //

// Node is one stage of the signal graph. Nodes are pulled once per frame by
// the Context that owns them; a node is only ever driven by one Context.
type Node interface {
	base() *nodeBase
	process(frame int64, t float64) float64
}

type nodeBase struct {
	inputs []Node
	frame  int64 // last processed frame
	out    float64
}

func newNodeBase() nodeBase {
	return nodeBase{frame: -1}
}

// Connect routes the output of src into dst.
func Connect(src Node, dst Node) {
	b := dst.base()
	b.inputs = append(b.inputs, src)
}

// Disconnect removes every route from src into dst.
func Disconnect(src Node, dst Node) {
	b := dst.base()
	removed := 0
	for i, in := range b.inputs {
		if in == src {
			removed++
		} else {
			b.inputs[i-removed] = in
		}
	}
	for i := len(b.inputs) - removed; i < len(b.inputs); i++ {
		b.inputs[i] = nil
	}
	b.inputs = b.inputs[:len(b.inputs)-removed]
}

// pull returns the output of n for the frame, processing it at most once.
// A cycle without a delay line reads the previous frame's output.
func pull(n Node, frame int64, t float64) float64 {
	b := n.base()
	if b.frame == frame {
		return b.out
	}
	b.frame = frame
	b.out = n.process(frame, t)
	return b.out
}

func (b *nodeBase) sumInputs(frame int64, t float64) float64 {
	sum := 0.0
	for _, in := range b.inputs {
		sum += pull(in, frame, t)
	}
	return sum
}

func (b *nodeBase) release() {
	for i := range b.inputs {
		b.inputs[i] = nil
	}
	b.inputs = nil
}

// ----- Scheduled Source ----- //

type scheduled struct {
	start float64
	stop  float64
}

func newScheduled() scheduled {
	return scheduled{start: math.Inf(1), stop: math.Inf(1)}
}

// Start makes the source audible from time t.
func (s *scheduled) Start(t float64) {
	s.start = t
}

// Stop silences the source from time t.
func (s *scheduled) Stop(t float64) {
	s.stop = t
}

// StartTime returns the scheduled start.
func (s *scheduled) StartTime() float64 {
	return s.start
}

// StopTime returns the scheduled stop.
func (s *scheduled) StopTime() float64 {
	return s.stop
}

func (s *scheduled) playing(t float64) bool {
	return t >= s.start && t < s.stop
}

// ----- Gain ----- //

// GainNode multiplies the sum of its inputs by Gain.
type GainNode struct {
	nodeBase
	Gain *Param
}

func newGainNode(value float64) *GainNode {
	return &GainNode{
		nodeBase: newNodeBase(),
		Gain:     newParam(value),
	}
}

func (g *GainNode) base() *nodeBase {
	return &g.nodeBase
}

func (g *GainNode) process(frame int64, t float64) float64 {
	in := g.sumInputs(frame, t)
	if in == 0 {
		return 0
	}
	return in * g.Gain.ValueAt(t)
}
