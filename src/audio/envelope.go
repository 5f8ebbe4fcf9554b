package audio

const (
	noteEnvelopePeak   = 0.6
	noteEnvelopeAttack = 0.005
)

// ----- One-shot Envelopes ----- //

// scheduleDecay jumps to peak at t0 and decays exponentially to the floor at end.
func scheduleDecay(gain *Param, t0 float64, peak float64, end float64) {
	gain.SetValueAtTime(peak, t0)
	gain.ExponentialRampToValueAtTime(envelopeFloor, end)
}

// scheduleNoteEnvelope is the short pluck of one arpeggio note.
func scheduleNoteEnvelope(gain *Param, t0 float64, spacing float64) {
	gain.SetValueAtTime(envelopeFloor, t0)
	gain.LinearRampToValueAtTime(noteEnvelopePeak, t0+noteEnvelopeAttack)
	gain.ExponentialRampToValueAtTime(envelopeFloor, t0+spacing*2)
}
