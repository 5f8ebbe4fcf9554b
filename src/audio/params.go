package audio

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	// ErrInvalidParameter is returned when a parameter set cannot be scheduled.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrOutputUnavailable is returned when the output cannot accept voices.
	ErrOutputUnavailable = errors.New("output unavailable")
	// ErrUnknownPreset is returned by preset lookups that miss.
	ErrUnknownPreset = errors.New("unknown preset")
)

// ----- Waveform ----- //

// Waveform selects the primary sound source.
type Waveform int

const (
	WaveSine Waveform = iota
	WaveSquare
	WaveSawtooth
	WaveTriangle
	WaveNoise
)

var waveformNames = []string{"sine", "square", "sawtooth", "triangle", "noise"}

func (w Waveform) String() string {
	if w < 0 || int(w) >= len(waveformNames) {
		return "unknown"
	}
	return waveformNames[w]
}

// ParseWaveform returns the waveform for its lowercase name.
func ParseWaveform(s string) (Waveform, error) {
	for i, name := range waveformNames {
		if name == s {
			return Waveform(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown waveform %q", ErrInvalidParameter, s)
}

// MarshalText implements encoding.TextMarshaler.
func (w Waveform) MarshalText() ([]byte, error) {
	if w < 0 || int(w) >= len(waveformNames) {
		return nil, fmt.Errorf("%w: unknown waveform %d", ErrInvalidParameter, int(w))
	}
	return []byte(w.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (w *Waveform) UnmarshalText(data []byte) error {
	v, err := ParseWaveform(string(data))
	if err != nil {
		return err
	}
	*w = v
	return nil
}

// ----- Params ----- //

const defaultArpeggioSpacing = 0.07

// Params is a complete, resolved description of one sound effect.
// Times are in seconds, frequencies in Hz.
type Params struct {
	Waveform            Waveform  `json:"waveform"`
	BaseFrequency       float64   `json:"baseFrequency"`
	FrequencySweepRatio float64   `json:"frequencySweepRatio"`
	Duration            float64   `json:"duration"`
	Attack              float64   `json:"attack"`
	Decay               float64   `json:"decay"`
	Sustain             float64   `json:"sustain"` // 0-1
	Release             float64   `json:"release"`
	FilterFrequency     float64   `json:"filterFrequency"`
	FilterQ             float64   `json:"filterQ"`
	FilterSweepRatio    float64   `json:"filterSweepRatio,omitempty"` // 0 = no sweep
	BitDepth            int       `json:"bitDepth"`
	EchoDelay           float64   `json:"echoDelay"`
	EchoDecay           float64   `json:"echoDecay"` // >= 1 grows without bound
	AddNoise            bool      `json:"addNoise,omitempty"`
	NoiseAmount         float64   `json:"noiseAmount,omitempty"`
	AddBass             bool      `json:"addBass,omitempty"`
	BassFrequency       float64   `json:"bassFrequency,omitempty"`
	UseArpeggio         bool      `json:"useArpeggio,omitempty"`
	ArpeggioNotes       []float64 `json:"arpeggioNotes,omitempty"`
	ArpeggioSpacing     float64   `json:"arpeggioSpacing,omitempty"` // 0 = 0.07
	Description         string    `json:"description,omitempty"`
}

// DefaultParams returns the starting point for custom sounds.
func DefaultParams() Params {
	return Params{
		Waveform:            WaveSquare,
		BaseFrequency:       440,
		FrequencySweepRatio: 1.0,
		Duration:            0.3,
		Attack:              0.01,
		Decay:               0.1,
		Sustain:             0.5,
		Release:             0.15,
		FilterFrequency:     3000,
		FilterQ:             1,
		EchoDelay:           0.1,
		EchoDecay:           0.2,
		BitDepth:            10,
	}
}

// EchoEnabled reports whether the echo stage is allocated.
func (p *Params) EchoEnabled() bool {
	return p.EchoDelay > 0 && p.EchoDecay > 0
}

// ArpeggioEnabled reports whether the arpeggio path replaces the single voice.
func (p *Params) ArpeggioEnabled() bool {
	return p.UseArpeggio && len(p.ArpeggioNotes) > 0
}

func (p *Params) arpeggioSpacing() float64 {
	if p.ArpeggioSpacing == 0 {
		return defaultArpeggioSpacing
	}
	return p.ArpeggioSpacing
}

func (p *Params) echoTail() float64 {
	if !p.EchoEnabled() {
		return 0
	}
	return p.EchoDelay * 3
}

func (p *Params) clone() Params {
	c := *p
	if p.ArpeggioNotes != nil {
		c.ArpeggioNotes = append([]float64(nil), p.ArpeggioNotes...)
	}
	return c
}

// Validate checks the invariants the engine relies on.
func (p *Params) Validate() error {
	if p.Waveform < WaveSine || p.Waveform > WaveNoise {
		return invalid("waveform", float64(p.Waveform))
	}
	type field struct {
		name  string
		value float64
	}
	for _, f := range []field{
		{"duration", p.Duration},
		{"baseFrequency", p.BaseFrequency},
		{"frequencySweepRatio", p.FrequencySweepRatio},
		{"filterFrequency", p.FilterFrequency},
		{"filterQ", p.FilterQ},
	} {
		if !(f.value > 0) || math.IsInf(f.value, 0) {
			return invalid(f.name, f.value)
		}
	}
	if p.BitDepth < 1 {
		return invalid("bitDepth", float64(p.BitDepth))
	}
	for _, f := range []field{
		{"filterSweepRatio", p.FilterSweepRatio},
		{"attack", p.Attack},
		{"decay", p.Decay},
		{"release", p.Release},
		{"echoDelay", p.EchoDelay},
		{"echoDecay", p.EchoDecay},
		{"noiseAmount", p.NoiseAmount},
		{"bassFrequency", p.BassFrequency},
		{"arpeggioSpacing", p.ArpeggioSpacing},
	} {
		if !(f.value >= 0) || math.IsInf(f.value, 0) {
			return invalid(f.name, f.value)
		}
	}
	if p.Sustain < 0 || p.Sustain > 1 || math.IsNaN(p.Sustain) {
		return invalid("sustain", p.Sustain)
	}
	if p.AddBass && !(p.BassFrequency > 0) {
		return invalid("bassFrequency", p.BassFrequency)
	}
	if p.UseArpeggio && len(p.ArpeggioNotes) == 0 {
		return fmt.Errorf("%w: arpeggio enabled without notes", ErrInvalidParameter)
	}
	for i, note := range p.ArpeggioNotes {
		if !(note > 0) || math.IsInf(note, 0) {
			return fmt.Errorf("%w: arpeggio note %d = %v", ErrInvalidParameter, i, note)
		}
	}
	return nil
}

func invalid(name string, value float64) error {
	return fmt.Errorf("%w: %s = %v", ErrInvalidParameter, name, value)
}

// ----- Overrides ----- //

// Overrides holds optional replacements for Params fields. Nil fields are absent.
type Overrides struct {
	Waveform            *Waveform  `json:"waveform,omitempty"`
	BaseFrequency       *float64   `json:"baseFrequency,omitempty"`
	FrequencySweepRatio *float64   `json:"frequencySweepRatio,omitempty"`
	Duration            *float64   `json:"duration,omitempty"`
	Attack              *float64   `json:"attack,omitempty"`
	Decay               *float64   `json:"decay,omitempty"`
	Sustain             *float64   `json:"sustain,omitempty"`
	Release             *float64   `json:"release,omitempty"`
	FilterFrequency     *float64   `json:"filterFrequency,omitempty"`
	FilterQ             *float64   `json:"filterQ,omitempty"`
	FilterSweepRatio    *float64   `json:"filterSweepRatio,omitempty"`
	BitDepth            *int       `json:"bitDepth,omitempty"`
	EchoDelay           *float64   `json:"echoDelay,omitempty"`
	EchoDecay           *float64   `json:"echoDecay,omitempty"`
	AddNoise            *bool      `json:"addNoise,omitempty"`
	NoiseAmount         *float64   `json:"noiseAmount,omitempty"`
	AddBass             *bool      `json:"addBass,omitempty"`
	BassFrequency       *float64   `json:"bassFrequency,omitempty"`
	UseArpeggio         *bool      `json:"useArpeggio,omitempty"`
	ArpeggioNotes       *[]float64 `json:"arpeggioNotes,omitempty"`
	ArpeggioSpacing     *float64   `json:"arpeggioSpacing,omitempty"`
	Description         *string    `json:"description,omitempty"`
}

// ParseOverrides decodes a JSON object of overrides. Unknown keys are rejected.
func ParseOverrides(data []byte) (*Overrides, error) {
	o := &Overrides{}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(o); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParameter, err)
	}
	return o, nil
}

// Merge overlays o onto base field by field. base is not modified.
func Merge(base Params, o *Overrides) Params {
	p := base.clone()
	if o == nil {
		return p
	}
	if o.Waveform != nil {
		p.Waveform = *o.Waveform
	}
	setFloat(&p.BaseFrequency, o.BaseFrequency)
	setFloat(&p.FrequencySweepRatio, o.FrequencySweepRatio)
	setFloat(&p.Duration, o.Duration)
	setFloat(&p.Attack, o.Attack)
	setFloat(&p.Decay, o.Decay)
	setFloat(&p.Sustain, o.Sustain)
	setFloat(&p.Release, o.Release)
	setFloat(&p.FilterFrequency, o.FilterFrequency)
	setFloat(&p.FilterQ, o.FilterQ)
	setFloat(&p.FilterSweepRatio, o.FilterSweepRatio)
	if o.BitDepth != nil {
		p.BitDepth = *o.BitDepth
	}
	setFloat(&p.EchoDelay, o.EchoDelay)
	setFloat(&p.EchoDecay, o.EchoDecay)
	setBool(&p.AddNoise, o.AddNoise)
	setFloat(&p.NoiseAmount, o.NoiseAmount)
	setBool(&p.AddBass, o.AddBass)
	setFloat(&p.BassFrequency, o.BassFrequency)
	setBool(&p.UseArpeggio, o.UseArpeggio)
	if o.ArpeggioNotes != nil {
		p.ArpeggioNotes = append([]float64(nil), (*o.ArpeggioNotes)...)
	}
	setFloat(&p.ArpeggioSpacing, o.ArpeggioSpacing)
	if o.Description != nil {
		p.Description = *o.Description
	}
	return p
}

func setFloat(dst *float64, src *float64) {
	if src != nil {
		*dst = *src
	}
}
func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}

// Set parses a single field from its text form, e.g. Set("baseFrequency", "440").
// Arpeggio notes are comma separated.
func (o *Overrides) Set(key string, value string) error {
	switch key {
	case "waveform":
		w, err := ParseWaveform(value)
		if err != nil {
			return err
		}
		o.Waveform = &w
	case "bitDepth":
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidParameter, key, err)
		}
		o.BitDepth = &v
	case "addNoise", "addBass", "useArpeggio":
		v, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidParameter, key, err)
		}
		switch key {
		case "addNoise":
			o.AddNoise = &v
		case "addBass":
			o.AddBass = &v
		case "useArpeggio":
			o.UseArpeggio = &v
		}
	case "arpeggioNotes":
		notes := []float64{}
		for _, s := range strings.Split(value, ",") {
			s = strings.TrimSpace(s)
			if s == "" {
				continue
			}
			v, err := parseFinite(key, s)
			if err != nil {
				return err
			}
			notes = append(notes, v)
		}
		o.ArpeggioNotes = &notes
	case "description":
		o.Description = &value
	default:
		dst := o.floatField(key)
		if dst == nil {
			return fmt.Errorf("%w: unknown key %q", ErrInvalidParameter, key)
		}
		v, err := parseFinite(key, value)
		if err != nil {
			return err
		}
		*dst = &v
	}
	return nil
}

func parseFinite(key string, value string) (float64, error) {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrInvalidParameter, key, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %s = %v", ErrInvalidParameter, key, v)
	}
	return v, nil
}

func (o *Overrides) floatField(key string) **float64 {
	switch key {
	case "baseFrequency":
		return &o.BaseFrequency
	case "frequencySweepRatio":
		return &o.FrequencySweepRatio
	case "duration":
		return &o.Duration
	case "attack":
		return &o.Attack
	case "decay":
		return &o.Decay
	case "sustain":
		return &o.Sustain
	case "release":
		return &o.Release
	case "filterFrequency":
		return &o.FilterFrequency
	case "filterQ":
		return &o.FilterQ
	case "filterSweepRatio":
		return &o.FilterSweepRatio
	case "echoDelay":
		return &o.EchoDelay
	case "echoDecay":
		return &o.EchoDecay
	case "noiseAmount":
		return &o.NoiseAmount
	case "bassFrequency":
		return &o.BassFrequency
	case "arpeggioSpacing":
		return &o.ArpeggioSpacing
	}
	return nil
}

// ToJSON returns the JSON form with camelCase keys. Non-finite values
// cannot be encoded.
func (p Params) ToJSON() (json.RawMessage, error) {
	data, err := json.Marshal(&p)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParameter, err)
	}
	return json.RawMessage(data), nil
}
