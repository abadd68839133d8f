package domain

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Feature is a boolean tag a car may carry ("Sunroof", "4WD").
type Feature struct {
	FeatureID uuid.UUID `gorm:"column:feature_id;type:uuid;primaryKey" json:"feature_id"`
	Name      string    `gorm:"column:name;uniqueIndex;not null" json:"name"`
}

func (Feature) TableName() string {
	return "Features"
}

func (f *Feature) BeforeCreate(tx *gorm.DB) error {
	if f.FeatureID == uuid.Nil {
		f.FeatureID = uuid.New()
	}
	return nil
}
