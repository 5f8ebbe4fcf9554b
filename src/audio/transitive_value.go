package audio

import (
	"math"
	"sort"
)

// ----- Transition Kind ----- //

const (
	transitionSet = iota
	transitionLinear
	transitionExponential
	transitionTarget
)

type transition struct {
	kind         int
	time         float64 // sec
	value        float64
	timeConstant float64 // sec, transitionTarget only
}

// ----- Param ----- //

// Param is a schedulable value. Its value at any point of the output
// clock is derived from the scheduled transitions, never stepped.
type Param struct {
	value       float64
	transitions []transition
}

func newParam(value float64) *Param {
	return &Param{value: value}
}

// Value returns the value used before any transition.
func (p *Param) Value() float64 {
	return p.value
}

// SetValue changes the value used before any transition.
func (p *Param) SetValue(value float64) {
	p.value = value
}

func (p *Param) insert(t transition) {
	i := sort.Search(len(p.transitions), func(i int) bool {
		return p.transitions[i].time > t.time
	})
	p.transitions = append(p.transitions, transition{})
	copy(p.transitions[i+1:], p.transitions[i:])
	p.transitions[i] = t
}

// SetValueAtTime jumps to value at time.
func (p *Param) SetValueAtTime(value float64, time float64) {
	p.insert(transition{kind: transitionSet, time: time, value: value})
}

// LinearRampToValueAtTime ramps linearly from the previous transition to value at time.
func (p *Param) LinearRampToValueAtTime(value float64, time float64) {
	p.insert(transition{kind: transitionLinear, time: time, value: value})
}

// ExponentialRampToValueAtTime ramps exponentially from the previous transition to value at time.
func (p *Param) ExponentialRampToValueAtTime(value float64, time float64) {
	p.insert(transition{kind: transitionExponential, time: time, value: value})
}

// SetTargetAtTime starts approaching target at time with the given time constant.
func (p *Param) SetTargetAtTime(target float64, time float64, timeConstant float64) {
	p.insert(transition{kind: transitionTarget, time: time, value: target, timeConstant: timeConstant})
}

// ValueAt returns the value at time t.
func (p *Param) ValueAt(t float64) float64 {
	startTime := 0.0
	startValue := p.value
	var target *transition
	current := func(at float64) float64 {
		if target == nil {
			return startValue
		}
		return approach(startValue, target.value, at-startTime, target.timeConstant)
	}
	for i := range p.transitions {
		tr := &p.transitions[i]
		switch tr.kind {
		case transitionLinear, transitionExponential:
			if tr.time > t {
				if t <= startTime {
					return current(t)
				}
				from := current(startTime)
				pos := (t - startTime) / (tr.time - startTime)
				if tr.kind == transitionLinear {
					return from + (tr.value-from)*pos
				}
				return exponentialRamp(from, tr.value, pos)
			}
			startTime, startValue, target = tr.time, tr.value, nil
		case transitionSet:
			if tr.time > t {
				return current(t)
			}
			startTime, startValue, target = tr.time, tr.value, nil
		case transitionTarget:
			if tr.time > t {
				return current(t)
			}
			startValue = current(tr.time)
			startTime = tr.time
			target = tr
		}
	}
	return current(t)
}

// 63% closer to target when elapsed == timeConstant
func approach(initialValue float64, targetValue float64, elapsed float64, timeConstant float64) float64 {
	if timeConstant <= 0 {
		return targetValue
	}
	return targetValue + (initialValue-targetValue)*math.Exp(-elapsed/timeConstant)
}

func exponentialRamp(from float64, to float64, pos float64) float64 {
	if from == 0 || to == 0 || (from < 0) != (to < 0) {
		return from
	}
	return from * math.Pow(to/from, pos)
}
