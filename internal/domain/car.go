package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PageTags stores the storefront-section tags of a car as a json array column.
// An empty set means the car is untagged and shows up under any default section.
type PageTags []string

// Scan implements sql.Scanner for reading from DB (json column).
func (p *PageTags) Scan(value interface{}) error {
	if value == nil {
		*p = PageTags{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return p.unmarshal(v)
	case string:
		return p.unmarshal([]byte(v))
	default:
		return errors.New("unsupported type for PageTags")
	}
}

func (p *PageTags) unmarshal(b []byte) error {
	if len(b) == 0 {
		*p = PageTags{}
		return nil
	}
	var tags []string
	if err := json.Unmarshal(b, &tags); err != nil {
		*p = PageTags{}
		return nil
	}
	*p = tags
	return nil
}

// Value implements driver.Valuer for writing to DB.
func (p PageTags) Value() (driver.Value, error) {
	if p == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(p))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// MarshalJSON sends pages as [] instead of null when unset.
func (p PageTags) MarshalJSON() ([]byte, error) {
	if p == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(p))
}

// Car is a vehicle record. Price, year, mileage, size and weight are stored as
// display strings exactly as entered by the catalog admin ("$12,500", "45,000 km");
// numeric values for sorting and range filters are derived at query time.
type Car struct {
	CarID        uuid.UUID      `gorm:"column:car_id;type:uuid;primaryKey" json:"car_id"`
	Name         string         `gorm:"column:name;not null" json:"name"`
	Price        string         `gorm:"column:price" json:"price"`
	Year         string         `gorm:"column:year" json:"year"`
	Mileage      string         `gorm:"column:mileage" json:"mileage"`
	Size         string         `gorm:"column:size" json:"size"`
	Weight       string         `gorm:"column:weight" json:"weight"`
	ThumbnailURL string         `gorm:"column:thumbnail_url" json:"thumbnail_url"`
	Pages        PageTags       `gorm:"column:pages;type:json" json:"pages"`
	Details      []CarDetailEntry `gorm:"foreignKey:CarID;references:CarID" json:"details"`
	Features     []Feature      `gorm:"many2many:car_features;foreignKey:CarID;joinForeignKey:CarID;references:FeatureID;joinReferences:FeatureID" json:"features"`
	CreatedAt    time.Time      `gorm:"column:createdAt" json:"createdAt"`
	UpdatedAt    time.Time      `gorm:"column:updatedAt" json:"updatedAt"`
}

func (Car) TableName() string {
	return "Cars"
}

// BeforeCreate sets car_id if not already set (DBs without default uuid).
func (c *Car) BeforeCreate(tx *gorm.DB) error {
	if c.CarID == uuid.Nil {
		c.CarID = uuid.New()
	}
	return nil
}

// CarDetailEntry is one (detail, option) pair on a car, e.g. (Make, Toyota).
// Position preserves the admin-entered order of pairs on the card.
type CarDetailEntry struct {
	EntryID  uuid.UUID `gorm:"column:entry_id;type:uuid;primaryKey" json:"-"`
	CarID    uuid.UUID `gorm:"column:car_id;type:uuid;index;not null" json:"-"`
	DetailID uuid.UUID `gorm:"column:detail_id;type:uuid;not null" json:"detail_id"`
	OptionID uuid.UUID `gorm:"column:option_id;type:uuid;not null" json:"option_id"`
	Position int       `gorm:"column:position;default:0" json:"position"`
}

func (CarDetailEntry) TableName() string {
	return "CarDetailEntries"
}

func (e *CarDetailEntry) BeforeCreate(tx *gorm.DB) error {
	if e.EntryID == uuid.Nil {
		e.EntryID = uuid.New()
	}
	return nil
}
