package model

import (
	"gorm.io/datatypes"
)

// Recipe is a row of the recipes table. Optional columns are pointers so
// that SQL NULL survives the round trip.
type Recipe struct {
	ID          int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	Cuisine     *string        `gorm:"type:varchar(255)" json:"cuisine"`
	Title       *string        `gorm:"type:varchar(255)" json:"title"`
	Rating      *float64       `gorm:"type:float;index" json:"rating"`
	PrepTime    *int           `gorm:"type:int" json:"prep_time"`
	CookTime    *int           `gorm:"type:int" json:"cook_time"`
	TotalTime   *int           `gorm:"type:int" json:"total_time"`
	Description *string        `gorm:"type:text" json:"description"`
	Nutrients   datatypes.JSON `gorm:"type:text;not null;default:'{}'" json:"nutrients"`
	Serves      *string        `gorm:"type:varchar(255)" json:"serves"`
}

func (Recipe) TableName() string {
	return "recipes"
}

// Columns is the projection used when reading recipes.
var Columns = []string{
	"id", "cuisine", "title", "rating", "prep_time", "cook_time",
	"total_time", "description", "nutrients", "serves",
}
