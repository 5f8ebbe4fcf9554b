package audio

import (
	"reflect"
	"testing"
)

func TestPresetCatalog(t *testing.T) {
	keys := PresetKeys()
	expectEqual(t, len(keys), 34)
	expectEqual(t, keys[0], "jump")
	expectEqual(t, keys[len(keys)-1], "footstep")
	seen := make(map[string]bool)
	for _, key := range keys {
		if seen[key] {
			t.Errorf("duplicated key %s", key)
		}
		seen[key] = true
	}
	expectEqual(t, reflect.DeepEqual(Categories(), []string{
		"movement", "pickup", "combat", "explosion", "ui", "power", "damage", "environment",
	}), true)
}

func TestPresetsAreValid(t *testing.T) {
	for _, preset := range Presets() {
		t.Run(preset.Key, func(t *testing.T) {
			p := preset.Params
			expectNoError(t, p.Validate())
			if p.BitDepth < 4 || p.BitDepth > 16 {
				t.Errorf("unexpected bit depth %d", p.BitDepth)
			}
			if p.UseArpeggio && len(p.ArpeggioNotes) == 0 {
				t.Errorf("arpeggio without notes")
			}
			if p.Description == "" || preset.Name == "" {
				t.Errorf("missing text")
			}
		})
	}
}

func TestLookupPreset(t *testing.T) {
	coin, err := LookupPreset("coin")
	expectNoError(t, err)
	expectEqual(t, coin.Name, "Coin")
	expectEqual(t, coin.Category, "pickup")
	expectEqual(t, coin.Params.Waveform, WaveSquare)
	expectNearlyEqual(t, coin.Params.BaseFrequency, 988)
	expectNearlyEqual(t, coin.Params.FrequencySweepRatio, 1.3)
	expectNearlyEqual(t, coin.Params.EchoDelay, 0.08)
	expectNearlyEqual(t, coin.Params.EchoDecay, 0.15)
	expectEqual(t, coin.Params.BitDepth, 14)
	expectEqual(t, reflect.DeepEqual(coin.Params.ArpeggioNotes, []float64{988, 1318}), true)

	boom, err := LookupPreset("boom")
	expectNoError(t, err)
	expectEqual(t, boom.Params.Waveform, WaveNoise)
	expectNearlyEqual(t, boom.Params.FilterSweepRatio, 0.08)
	expectEqual(t, boom.Params.AddBass, true)
	expectNearlyEqual(t, boom.Params.BassFrequency, 35)

	_, err = LookupPreset("Coin")
	expectError(t, err, ErrUnknownPreset)
}

func TestLookupReturnsCopy(t *testing.T) {
	coin, err := LookupPreset("coin")
	expectNoError(t, err)
	coin.Params.ArpeggioNotes[0] = 1
	coin.Params.BaseFrequency = 1

	again, err := LookupPreset("coin")
	expectNoError(t, err)
	expectNearlyEqual(t, again.Params.ArpeggioNotes[0], 988)
	expectNearlyEqual(t, again.Params.BaseFrequency, 988)
}

func TestPresetsByCategory(t *testing.T) {
	pickup := PresetsByCategory("pickup")
	expectEqual(t, len(pickup), 4)
	expectEqual(t, pickup[0].Key, "coin")
	expectEqual(t, pickup[3].Key, "key")
	expectEqual(t, len(PresetsByCategory("unknown")), 0)

	total := 0
	for _, c := range Categories() {
		total += len(PresetsByCategory(c))
	}
	expectEqual(t, total, len(PresetKeys()))
}

func TestParsePresetsRejectsDuplicates(t *testing.T) {
	_, err := parsePresets([]byte(`{"items": [
		{"key": "a", "name": "A", "category": "x", "params": {"waveform": "sine", "baseFrequency": 1, "frequencySweepRatio": 1, "duration": 1, "filterFrequency": 1, "filterQ": 1, "bitDepth": 8}},
		{"key": "a", "name": "A", "category": "x", "params": {"waveform": "sine", "baseFrequency": 1, "frequencySweepRatio": 1, "duration": 1, "filterFrequency": 1, "filterQ": 1, "bitDepth": 8}}
	]}`))
	if err == nil {
		t.Errorf("expected error for duplicated key")
	}
	_, err = parsePresets([]byte(`{"items": [{"key": "a", "params": {"waveform": "sine"}}]}`))
	expectError(t, err, ErrInvalidParameter)
}
