package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

const (
	FieldTypeText     = "text"
	FieldTypeTextarea = "textarea"
	FieldTypeSelect   = "select"
	FieldTypeCheckbox = "checkbox"
	FieldTypeRadio    = "radio"
	FieldTypeNumber   = "number"
	FieldTypeURL      = "url"
)

// CustomField is an admin-defined extra form field attached to listings or
// apps. Options is only meaningful for select/checkbox/radio fields.
type CustomField struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"type:varchar(100);not null" json:"name" validate:"required,min=2,max=100"`
	Slug      string         `gorm:"type:varchar(120);uniqueIndex;not null" json:"slug"`
	Type      string         `gorm:"type:varchar(20);not null" json:"type" validate:"oneof=text textarea select checkbox radio number url"`
	Options   []string       `gorm:"serializer:json" json:"options"`
	AppliesTo string         `gorm:"type:varchar(20);default:'listing'" json:"applies_to" validate:"oneof=listing app"`
	Required  bool           `gorm:"default:false" json:"required"`
	Active    bool           `gorm:"default:true;index" json:"active"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (f *CustomField) Validate() error {
	v := validator.New()
	return v.Struct(f)
}

// NeedsOptions reports whether the field type requires an options list.
func (f *CustomField) NeedsOptions() bool {
	switch f.Type {
	case FieldTypeSelect, FieldTypeCheckbox, FieldTypeRadio:
		return true
	}
	return false
}
