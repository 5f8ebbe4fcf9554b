package audio

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"
)

//go:embed presets.json
var presetsJSON []byte

type presetJSON struct {
	Key      string `json:"key"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Params   Params `json:"params"`
}
type presetListJSON struct {
	Items []presetJSON `json:"items"`
}

// Preset is a named parameter set from the built-in catalog.
type Preset struct {
	Key      string
	Name     string
	Category string
	Params   Params
}

func (p *Preset) clone() Preset {
	return Preset{
		Key:      p.Key,
		Name:     p.Name,
		Category: p.Category,
		Params:   p.Params.clone(),
	}
}

type presetData struct {
	list       []*Preset
	byKey      map[string]*Preset
	categories []string
}

var presets struct {
	sync.Once
	data *presetData
}

func loadPresets() *presetData {
	presets.Do(func() {
		data, err := parsePresets(presetsJSON)
		if err != nil {
			panic(err)
		}
		presets.data = data
	})
	return presets.data
}

func parsePresets(bytes []byte) (*presetData, error) {
	listJSON := &presetListJSON{}
	err := json.Unmarshal(bytes, listJSON)
	if err != nil {
		return nil, err
	}
	data := &presetData{
		list:  make([]*Preset, 0, len(listJSON.Items)),
		byKey: make(map[string]*Preset, len(listJSON.Items)),
	}
	for _, item := range listJSON.Items {
		if _, ok := data.byKey[item.Key]; ok {
			return nil, fmt.Errorf("duplicated preset %q", item.Key)
		}
		if err := item.Params.Validate(); err != nil {
			return nil, fmt.Errorf("preset %q: %w", item.Key, err)
		}
		p := &Preset{Key: item.Key, Name: item.Name, Category: item.Category, Params: item.Params}
		data.list = append(data.list, p)
		data.byKey[p.Key] = p
		seen := false
		for _, c := range data.categories {
			if c == p.Category {
				seen = true
				break
			}
		}
		if !seen {
			data.categories = append(data.categories, p.Category)
		}
	}
	return data, nil
}

// LookupPreset returns a copy of the preset with the given key.
func LookupPreset(key string) (Preset, error) {
	p, ok := loadPresets().byKey[key]
	if !ok {
		return Preset{}, fmt.Errorf("%w: %q", ErrUnknownPreset, key)
	}
	return p.clone(), nil
}

// PresetKeys returns every key in catalog order.
func PresetKeys() []string {
	list := loadPresets().list
	keys := make([]string, len(list))
	for i, p := range list {
		keys[i] = p.Key
	}
	return keys
}

// Presets returns copies of every preset in catalog order.
func Presets() []Preset {
	list := loadPresets().list
	result := make([]Preset, len(list))
	for i, p := range list {
		result[i] = p.clone()
	}
	return result
}

// Categories returns the categories in order of first appearance.
func Categories() []string {
	return append([]string(nil), loadPresets().categories...)
}

// PresetsByCategory returns copies of the presets in category.
func PresetsByCategory(category string) []Preset {
	result := []Preset{}
	for _, p := range loadPresets().list {
		if p.Category == category {
			result = append(result, p.clone())
		}
	}
	return result
}
