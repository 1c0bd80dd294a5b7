// Package gorm provides the GORM-backed generation log
package gorm

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/alchemorsel/ragchef/internal/domain/recipe"
)

// GenerationModel is one pipeline result
type GenerationModel struct {
	ID          uuid.UUID   `gorm:"type:char(36);primaryKey"`
	CreatedAt   time.Time   `gorm:"index"`
	Ingredients StringSlice `gorm:"type:json"`
	Conditions  string      `gorm:"type:text"`
	Title       string      `gorm:"type:varchar(255)"`
	Outcome     string      `gorm:"type:varchar(32);index"`
	Confidence  float64
	Chunks      int
	WebRecipes  int
	Sources     StringSlice `gorm:"type:json"`
	Recipe      RecipeJSON  `gorm:"type:json"`
}

// TableName overrides the table name
func (GenerationModel) TableName() string {
	return "generations"
}

// BeforeCreate hook for GenerationModel
func (g *GenerationModel) BeforeCreate(tx *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}

// StringSlice custom type for handling string slices in JSON
type StringSlice []string

// Scan implements the sql.Scanner interface
func (s *StringSlice) Scan(value interface{}) error {
	if value == nil {
		*s = StringSlice{}
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return fmt.Errorf("cannot scan %T into StringSlice", value)
	}
}

// Value implements the driver.Valuer interface
func (s StringSlice) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(s)
	return string(b), err
}

// RecipeJSON stores a generated recipe as a JSON column
type RecipeJSON recipe.GeneratedRecipe

// Scan implements the sql.Scanner interface
func (r *RecipeJSON) Scan(value interface{}) error {
	if value == nil {
		*r = RecipeJSON{}
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, r)
	case string:
		return json.Unmarshal([]byte(v), r)
	default:
		return fmt.Errorf("cannot scan %T into RecipeJSON", value)
	}
}

// Value implements the driver.Valuer interface
func (r RecipeJSON) Value() (driver.Value, error) {
	b, err := json.Marshal(r)
	return string(b), err
}
