package subscription

import (
	"math"
	"time"
)

const bytesPerGB = 1024 * 1024 * 1024

// UsageSnapshot is a point-in-time count of a tenant's consumed resources.
// It is always a cache: consumers must treat it as eventually consistent, and
// under partial aggregation failure its values are a lower bound, never an
// exact figure.
type UsageSnapshot struct {
	Schools      int64     `json:"schools" gorm:"column:schools"`
	Students     int64     `json:"students" gorm:"column:students"`
	Teachers     int64     `json:"teachers" gorm:"column:teachers"`
	Staff        int64     `json:"staff" gorm:"column:staff"`
	StorageBytes int64     `json:"storageBytes" gorm:"column:storage_bytes"`
	StorageGB    float64   `json:"storageGb" gorm:"column:storage_gb"`
	ComputedAt   time.Time `json:"computedAt" gorm:"column:computed_at"`
}

// RoundStorage derives StorageGB from StorageBytes with fixed
// 3-decimal rounding.
func (s *UsageSnapshot) RoundStorage() {
	s.StorageGB = math.Round(float64(s.StorageBytes)/bytesPerGB*1000) / 1000
}

// StorageGBCeil returns the whole-GB figure used against the storage limit;
// any partial gigabyte counts as consumed.
func (s UsageSnapshot) StorageGBCeil() int64 {
	return int64(math.Ceil(float64(s.StorageBytes) / bytesPerGB))
}
