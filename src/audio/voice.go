package audio

// StopMargin is the time a voice is kept after its last audible tail.
const StopMargin = 0.1

// ----- Voice ----- //

// Voice owns the nodes of one scheduled sound. Once the output clock reaches
// Stop, the output disconnects its sends from the bus and drops every node.
type Voice struct {
	Start  float64
	Stop   float64
	nodes  []Node
	sends  []Node
	delays []*DelayNode
}

func newVoice(start float64, stop float64) *Voice {
	return &Voice{Start: start, Stop: stop}
}

// Nodes returns the nodes the voice owns.
func (v *Voice) Nodes() []Node {
	return v.nodes
}

// Sends returns the nodes routed into the bus.
func (v *Voice) Sends() []Node {
	return v.sends
}

// DelayCount returns how many delay lines the voice owns.
func (v *Voice) DelayCount() int {
	return len(v.delays)
}

// Released reports whether the output already dropped the voice.
func (v *Voice) Released() bool {
	return v.nodes == nil && v.sends == nil
}

func (v *Voice) own(nodes ...Node) {
	v.nodes = append(v.nodes, nodes...)
}

func (v *Voice) send(n Node) {
	v.sends = append(v.sends, n)
}

func (v *Voice) addDelay(d *DelayNode) {
	v.delays = append(v.delays, d)
}

func (v *Voice) release() {
	for _, n := range v.nodes {
		n.base().release()
	}
	v.nodes = nil
	v.sends = nil
	v.delays = nil
}
