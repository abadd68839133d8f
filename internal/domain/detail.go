package domain

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CarDetail is a named attribute category ("Make", "Condition", "Body Type").
type CarDetail struct {
	DetailID uuid.UUID `gorm:"column:detail_id;type:uuid;primaryKey" json:"detail_id"`
	Name     string    `gorm:"column:name;uniqueIndex;not null" json:"name"`
}

func (CarDetail) TableName() string {
	return "CarDetails"
}

func (d *CarDetail) BeforeCreate(tx *gorm.DB) error {
	if d.DetailID == uuid.Nil {
		d.DetailID = uuid.New()
	}
	return nil
}

// CarDetailOption is a value within a detail's domain ("Toyota" under "Make").
// Option names are not unique across details, so matching always goes through
// the owning detail_id.
type CarDetailOption struct {
	OptionID uuid.UUID `gorm:"column:option_id;type:uuid;primaryKey" json:"option_id"`
	DetailID uuid.UUID `gorm:"column:detail_id;type:uuid;index;not null" json:"detail_id"`
	Name     string    `gorm:"column:name;not null" json:"name"`
	Icon     string    `gorm:"column:icon" json:"icon,omitempty"`
}

func (CarDetailOption) TableName() string {
	return "CarDetailOptions"
}

func (o *CarDetailOption) BeforeCreate(tx *gorm.DB) error {
	if o.OptionID == uuid.Nil {
		o.OptionID = uuid.New()
	}
	return nil
}
