package subscription

import (
	"strings"

	"github.com/edusuite/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// BillingCycle is the renewal cadence of a package
type BillingCycle string

const (
	BillingMonthly BillingCycle = "monthly"
	BillingYearly  BillingCycle = "yearly"
)

// IsValid returns true for a known billing cycle
func (c BillingCycle) IsValid() bool {
	return c == BillingMonthly || c == BillingYearly
}

// Package is a named template of features and limits plus pricing metadata.
// RawFeatures holds the administratively-written configuration blob exactly
// as stored; this engine only ever decodes it through the catalog (see
// DecodeFeatures) and never writes it back.
type Package struct {
	shared.BaseEntity
	Name        string          `gorm:"type:varchar(100);not null;uniqueIndex"`
	Description string          `gorm:"type:text"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Currency    string          `gorm:"type:varchar(3);not null;default:'USD'"`
	Cycle       BillingCycle    `gorm:"type:varchar(20);not null;default:'monthly'"`
	RawFeatures string          `gorm:"type:jsonb;column:features"`
	IsPublished bool            `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (Package) TableName() string {
	return "packages"
}

// NewPackage creates a package template
func NewPackage(name string, price decimal.Decimal, cycle BillingCycle, rawFeatures string) (*Package, error) {
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Package name cannot be empty")
	}
	if price.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Package price cannot be negative")
	}
	if !cycle.IsValid() {
		return nil, shared.NewDomainError("INVALID_CYCLE", "Invalid billing cycle")
	}

	return &Package{
		BaseEntity:  shared.NewBaseEntity(),
		Name:        name,
		Price:       price,
		Currency:    "USD",
		Cycle:       cycle,
		RawFeatures: rawFeatures,
	}, nil
}

// Features decodes the stored configuration blob into a normalized
// FeatureMap. A decode failure still yields a complete all-default map.
func (p *Package) Features() (FeatureMap, error) {
	if p == nil {
		return DefaultFeatureMap(), nil
	}
	return DecodeFeatures(p.RawFeatures)
}
