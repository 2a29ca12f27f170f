package subscription

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
)

// FeatureMap is the fully-normalized view of a package's feature
// configuration. Every catalog key is present: booleans and modules in
// Booleans, numerics in Numerics. A nil numeric value means unlimited; the
// Modules slice is always recomputed from the final boolean values so the two
// can never disagree. Decoding happens once, at tenant-context resolution,
// never per read.
type FeatureMap struct {
	Booleans map[FeatureKey]bool
	Numerics map[FeatureKey]*float64
	Modules  []FeatureKey
}

// DefaultFeatureMap returns a FeatureMap with every catalog key at its default
func DefaultFeatureMap() FeatureMap {
	fm := FeatureMap{
		Booleans: make(map[FeatureKey]bool),
		Numerics: make(map[FeatureKey]*float64),
	}
	for _, def := range catalog {
		switch def.Kind {
		case FeatureNumeric:
			v := def.DefaultNum
			fm.Numerics[def.Key] = &v
		default:
			fm.Booleans[def.Key] = def.DefaultBool
		}
	}
	fm.recomputeModules()
	return fm
}

// DecodeFeatures normalizes a package's raw feature configuration. The input
// may be a structured map, a JSON-serialized string, or nil/empty; malformed
// input is reported through the error but the returned FeatureMap is always
// complete and usable (defaults fill everything that failed to decode).
//
// Normalization rules:
//   - boolean keys coerce true/false, "true"/"false", and 0/1 numerics
//   - numeric keys parse numbers and numeric strings; explicit null means
//     unlimited
//   - a "modules" list in the input unions into the module booleans
//   - anything unknown or uncoercible falls back to the catalog default
func DecodeFeatures(raw any) (FeatureMap, error) {
	fm := DefaultFeatureMap()

	src, err := toFeatureSource(raw)
	if err != nil {
		return fm, err
	}
	if src == nil {
		return fm, nil
	}

	for _, def := range catalog {
		val, present := src[string(def.Key)]
		if !present {
			continue
		}
		switch def.Kind {
		case FeatureNumeric:
			if val == nil {
				fm.Numerics[def.Key] = nil // explicit null: unlimited
				continue
			}
			if num, ok := coerceNumeric(val); ok {
				fm.Numerics[def.Key] = &num
			}
		default:
			if b, ok := coerceBool(val); ok {
				fm.Booleans[def.Key] = b
			}
		}
	}

	// Union an enabled-modules list into the module booleans.
	if rawModules, ok := src["modules"]; ok {
		for _, key := range toStringList(rawModules) {
			def, found := Definition(FeatureKey(key))
			if found && def.Kind == FeatureModule {
				fm.Booleans[def.Key] = true
			}
		}
	}

	fm.recomputeModules()
	return fm, nil
}

// IsEnabled reports whether a boolean or module feature is on
func (fm FeatureMap) IsEnabled(key FeatureKey) bool {
	return fm.Booleans[key]
}

// Numeric returns the numeric value for a key; nil means unlimited
func (fm FeatureMap) Numeric(key FeatureKey) *float64 {
	return fm.Numerics[key]
}

// HasModule reports whether a module toggle is enabled
func (fm FeatureMap) HasModule(key FeatureKey) bool {
	def, ok := Definition(key)
	return ok && def.Kind == FeatureModule && fm.Booleans[key]
}

func (fm *FeatureMap) recomputeModules() {
	fm.Modules = fm.Modules[:0]
	for _, key := range ModuleKeys() {
		if fm.Booleans[key] {
			fm.Modules = append(fm.Modules, key)
		}
	}
}

// toFeatureSource accepts the supported raw forms: nil, map[string]any,
// or a JSON object serialized as string/[]byte.
func toFeatureSource(raw any) (map[string]any, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		return v, nil
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, nil
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(v), &m); err != nil {
			return nil, err
		}
		return m, nil
	case []byte:
		if len(v) == 0 {
			return nil, nil
		}
		var m map[string]any
		if err := json.Unmarshal(v, &m); err != nil {
			return nil, err
		}
		return m, nil
	default:
		return nil, errUnsupportedFeatureSource
	}
}

var errUnsupportedFeatureSource = errors.New("unsupported feature configuration type")

func coerceBool(val any) (bool, bool) {
	switch v := val.(type) {
	case bool:
		return v, true
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "1":
			return true, true
		case "false", "0":
			return false, true
		}
	case float64:
		if v == 1 {
			return true, true
		}
		if v == 0 {
			return false, true
		}
	case int:
		if v == 1 {
			return true, true
		}
		if v == 0 {
			return false, true
		}
	case json.Number:
		if n, err := v.Float64(); err == nil {
			return coerceBool(n)
		}
	}
	return false, false
}

func coerceNumeric(val any) (float64, bool) {
	switch v := val.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		if n, err := v.Float64(); err == nil {
			return n, true
		}
	case string:
		if n, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return n, true
		}
	}
	return 0, false
}

func toStringList(val any) []string {
	switch v := val.(type) {
	case []string:
		return v
	case []any:
		var out []string
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
