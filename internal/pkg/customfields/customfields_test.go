package customfields

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Arad-Services/as-laburda-pwa-app-sub000/app/models"
	"github.com/Arad-Services/as-laburda-pwa-app-sub000/app/repository"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.CustomField{}))
	return NewService(repository.NewCustomFieldRepository(db))
}

func fieldsOn() models.SettingsSnapshot {
	return models.SettingsSnapshot{CustomFieldsEnabled: true}
}

func TestCreateField(t *testing.T) {
	svc := newTestService(t)

	field := &models.CustomField{
		Name:      "Cuisine Type",
		Type:      models.FieldTypeSelect,
		Options:   []string{"Italian", "Japanese", "Mexican"},
		AppliesTo: "listing",
		Active:    true,
	}
	require.NoError(t, svc.CreateField(fieldsOn(), field))
	assert.Equal(t, "cuisine-type", field.Slug)

	// Option-typed fields without options are rejected.
	bare := &models.CustomField{Name: "Broken Select", Type: models.FieldTypeSelect, AppliesTo: "listing"}
	assert.ErrorIs(t, svc.CreateField(fieldsOn(), bare), ErrMissingOptions)

	assert.ErrorIs(t, svc.CreateField(models.SettingsSnapshot{}, field), ErrFeatureDisabled)
}

func TestValidateValue(t *testing.T) {
	tests := []struct {
		name    string
		field   models.CustomField
		value   string
		wantErr error
	}{
		{"optional empty", models.CustomField{Slug: "notes", Type: models.FieldTypeText}, "", nil},
		{"required empty", models.CustomField{Slug: "notes", Type: models.FieldTypeText, Required: true}, "", ErrValueRequired},
		{"text", models.CustomField{Slug: "notes", Type: models.FieldTypeText}, "open late", nil},
		{"number ok", models.CustomField{Slug: "seats", Type: models.FieldTypeNumber}, "42", nil},
		{"number bad", models.CustomField{Slug: "seats", Type: models.FieldTypeNumber}, "many", ErrInvalidValue},
		{"url ok", models.CustomField{Slug: "menu", Type: models.FieldTypeURL}, "https://example.com/menu", nil},
		{"url bad", models.CustomField{Slug: "menu", Type: models.FieldTypeURL}, "not-a-url", ErrInvalidValue},
		{"select ok", models.CustomField{Slug: "cuisine", Type: models.FieldTypeSelect, Options: []string{"Italian", "Japanese"}}, "Italian", nil},
		{"select bad", models.CustomField{Slug: "cuisine", Type: models.FieldTypeSelect, Options: []string{"Italian", "Japanese"}}, "Thai", ErrInvalidValue},
		{"checkbox ok", models.CustomField{Slug: "amenities", Type: models.FieldTypeCheckbox, Options: []string{"wifi", "parking"}}, "wifi, parking", nil},
		{"checkbox bad", models.CustomField{Slug: "amenities", Type: models.FieldTypeCheckbox, Options: []string{"wifi", "parking"}}, "wifi, pool", ErrInvalidValue},
		{"unknown type", models.CustomField{Slug: "x", Type: "slider"}, "5", ErrInvalidValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateValue(&tt.field, tt.value)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestValidateValues(t *testing.T) {
	svc := newTestService(t)

	require.NoError(t, svc.CreateField(fieldsOn(), &models.CustomField{
		Name: "Cuisine Type", Type: models.FieldTypeSelect,
		Options: []string{"Italian", "Japanese"}, AppliesTo: "listing", Required: true, Active: true,
	}))
	require.NoError(t, svc.CreateField(fieldsOn(), &models.CustomField{
		Name: "Seats", Type: models.FieldTypeNumber, AppliesTo: "listing", Active: true,
	}))

	err := svc.ValidateValues(fieldsOn(), "listing", map[string]string{
		"cuisine-type": "Italian",
		"seats":        "40",
		"unknown-slug": "ignored",
	})
	assert.NoError(t, err)

	err = svc.ValidateValues(fieldsOn(), "listing", map[string]string{"seats": "40"})
	assert.ErrorIs(t, err, ErrValueRequired)
}
