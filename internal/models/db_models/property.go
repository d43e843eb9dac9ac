package db_models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Property is a rental the guest is staying at. Areas are ordered: the first
// is the primary search center, the rest rotate as outskirts.
type Property struct {
	BaseModel
	Slug        string         `gorm:"uniqueIndex;size:64;not null"`
	Name        string         `gorm:"size:128;not null"`
	DisplayName string         `gorm:"size:160"`
	City        string         `gorm:"size:96;not null"`
	Region      string         `gorm:"size:32"`
	Timezone    string         `gorm:"size:64;not null;default:America/Chicago"`
	LogoURL     string         `gorm:"size:255"`
	Theme       string         `gorm:"size:16;default:dark"`
	AccentHex   string         `gorm:"size:9"`
	Areas       []PropertyArea `gorm:"foreignKey:PropertyID;constraint:OnDelete:CASCADE"`
}

type PropertyArea struct {
	BaseModel
	PropertyID   uuid.UUID      `gorm:"type:uuid;index;not null"`
	Key          string         `gorm:"size:64;not null"`
	Position     int            `gorm:"not null"`
	Lat          float64        `gorm:"not null"`
	Lng          float64        `gorm:"not null"`
	RadiusMeters float64        `gorm:"not null"`
	Aliases      pq.StringArray `gorm:"type:text[]"`
}

// CityLabel renders "San Antonio, TX".
func (p Property) CityLabel() string {
	if p.Region == "" {
		return p.City
	}
	return p.City + ", " + p.Region
}
