package subscription

import "math"

// LimitKey identifies one quota dimension. Limit keys are the numeric subset
// of the feature catalog.
type LimitKey = FeatureKey

// LimitSet is the numeric projection of a FeatureMap used by quota checks.
// A nil value means unlimited; 0 means the feature is disabled outright.
type LimitSet map[LimitKey]*int64

// LimitKeys returns every quota dimension in catalog order
func LimitKeys() []LimitKey {
	return NumericKeys()
}

// LimitsFromFeatures projects the numeric features of a FeatureMap into a
// LimitSet. Pure function of the map, no I/O. Fractional configured values
// round up so a configured allowance is never silently shrunk.
func LimitsFromFeatures(fm FeatureMap) LimitSet {
	limits := make(LimitSet, len(fm.Numerics))
	for key, val := range fm.Numerics {
		if val == nil {
			limits[key] = nil
			continue
		}
		n := int64(math.Ceil(*val))
		limits[key] = &n
	}
	return limits
}

// Get returns the limit for a key. The second return is false when the key is
// not a known quota dimension.
func (l LimitSet) Get(key LimitKey) (*int64, bool) {
	val, ok := l[key]
	return val, ok
}

// IsUnlimited reports whether a dimension has no ceiling
func (l LimitSet) IsUnlimited(key LimitKey) bool {
	val, ok := l[key]
	return ok && val == nil
}

// IsDisabled reports whether a dimension is switched off entirely
func (l LimitSet) IsDisabled(key LimitKey) bool {
	val, ok := l[key]
	return ok && val != nil && *val <= 0
}
