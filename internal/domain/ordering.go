package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Ordering names for the two manual display-order lists the admin can save.
const (
	OrderingCarDetail = "CarDetail"
	OrderingCar       = "Car"
)

// Ordering is an admin-curated display order: a named sequence of entity ids.
// The "CarDetail" list orders detail options globally; the "Car" list orders
// cars and is scoped per storefront page.
type Ordering struct {
	OrderingID uuid.UUID      `gorm:"column:ordering_id;type:uuid;primaryKey" json:"ordering_id"`
	Name       string         `gorm:"column:name;not null;uniqueIndex:idx_ordering_name_page" json:"name"`
	Page       string         `gorm:"column:page;uniqueIndex:idx_ordering_name_page" json:"page"`
	IDs        datatypes.JSON `gorm:"column:ids;type:json" json:"ids"`
	UpdatedAt  time.Time      `gorm:"column:updatedAt" json:"updatedAt"`
}

func (Ordering) TableName() string {
	return "Orderings"
}

func (o *Ordering) BeforeCreate(tx *gorm.DB) error {
	if o.OrderingID == uuid.Nil {
		o.OrderingID = uuid.New()
	}
	return nil
}

// IDList decodes the stored id sequence. A missing or malformed column reads
// as an empty list, which downstream resolves to "no manual order".
func (o *Ordering) IDList() []string {
	if len(o.IDs) == 0 {
		return nil
	}
	var ids []string
	if err := json.Unmarshal(o.IDs, &ids); err != nil {
		return nil
	}
	return ids
}
