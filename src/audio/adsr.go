package audio

const (
	envelopeFloor = 0.0001
	envelopePeak  = 0.8
)

// ----- ADSR ----- //

/*
  p +   x
    |  / \
    | /   \
  s +/     x-------x
    |              \
  f +---------------x--
    |a |d  |        |r |
    t0                 t0+duration
*/
// scheduleADSR shapes gain over [t0, t0+duration]. Attack and release are not
// clamped against the duration; overlapping segments follow the scheduling order.
func scheduleADSR(gain *Param, t0 float64, p *Params) {
	gain.SetValueAtTime(envelopeFloor, t0)
	gain.LinearRampToValueAtTime(envelopePeak, t0+p.Attack)
	gain.SetTargetAtTime(p.Sustain*envelopePeak, t0+p.Attack, p.Decay/3)
	gain.SetTargetAtTime(envelopeFloor, t0+p.Duration-p.Release, p.Release/3)
}
