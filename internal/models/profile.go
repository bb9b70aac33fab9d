package models

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

type Profile struct {
	UserID      string `gorm:"column:user_id;type:uuid;primaryKey" json:"user_id"`
	FullName    string `gorm:"column:full_name;type:text" json:"full_name"`
	PhoneNumber string `gorm:"column:phone_number;type:text" json:"phone_number"`

	Skills pq.StringArray `gorm:"column:skills;type:text[]" json:"skills"`

	// JSONB, structure left to the frontend
	Experience  datatypes.JSON `gorm:"column:experience;type:jsonb" json:"experience"`
	Education   datatypes.JSON `gorm:"column:education;type:jsonb" json:"education"`
	Preferences datatypes.JSON `gorm:"column:preferences;type:jsonb" json:"preferences"`

	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamptz" json:"updated_at"`
}

func (Profile) TableName() string { return "profiles" }
