package customfields

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/Arad-Services/as-laburda-pwa-app-sub000/app/models"
	"github.com/Arad-Services/as-laburda-pwa-app-sub000/app/repository"
)

var (
	// ErrFeatureDisabled is returned when custom fields are globally off.
	ErrFeatureDisabled = errors.New("custom fields are disabled")
	// ErrMissingOptions is returned for option-typed fields without options.
	ErrMissingOptions = errors.New("field type requires options")
	// ErrValueRequired is returned when a required field has no value.
	ErrValueRequired = errors.New("value is required")
	// ErrInvalidValue is returned when a value does not fit the field type.
	ErrInvalidValue = errors.New("value does not match field type")
)

// Service manages admin-defined custom field definitions and validates
// submitted values against them.
type Service struct {
	repo repository.CustomFieldRepository
}

// NewService creates a custom fields service.
func NewService(repo repository.CustomFieldRepository) *Service {
	return &Service{repo: repo}
}

// CreateField validates and stores a field definition.
func (s *Service) CreateField(settings models.SettingsSnapshot, field *models.CustomField) error {
	if !settings.CustomFieldsEnabled {
		return ErrFeatureDisabled
	}
	if field.Slug == "" {
		field.Slug = models.Slugify(field.Name)
	}
	if err := field.Validate(); err != nil {
		return fmt.Errorf("field validation failed: %w", err)
	}
	if field.NeedsOptions() && len(field.Options) == 0 {
		return ErrMissingOptions
	}
	return s.repo.Create(field)
}

// UpdateField validates and stores definition changes.
func (s *Service) UpdateField(settings models.SettingsSnapshot, field *models.CustomField) error {
	if !settings.CustomFieldsEnabled {
		return ErrFeatureDisabled
	}
	if err := field.Validate(); err != nil {
		return fmt.Errorf("field validation failed: %w", err)
	}
	if field.NeedsOptions() && len(field.Options) == 0 {
		return ErrMissingOptions
	}
	return s.repo.Update(field)
}

// FieldsFor returns the active field definitions for one target kind.
func (s *Service) FieldsFor(settings models.SettingsSnapshot, appliesTo string) ([]models.CustomField, error) {
	if !settings.CustomFieldsEnabled {
		return nil, ErrFeatureDisabled
	}
	return s.repo.GetAll(appliesTo, true)
}

// ValidateValue checks one submitted value against a field definition.
func ValidateValue(field *models.CustomField, value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		if field.Required {
			return fmt.Errorf("%w: %s", ErrValueRequired, field.Slug)
		}
		return nil
	}

	switch field.Type {
	case models.FieldTypeText, models.FieldTypeTextarea:
		return nil
	case models.FieldTypeNumber:
		if _, err := strconv.ParseFloat(value, 64); err != nil {
			return fmt.Errorf("%w: %s expects a number", ErrInvalidValue, field.Slug)
		}
	case models.FieldTypeURL:
		u, err := url.Parse(value)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%w: %s expects a URL", ErrInvalidValue, field.Slug)
		}
	case models.FieldTypeSelect, models.FieldTypeRadio:
		if !containsOption(field.Options, value) {
			return fmt.Errorf("%w: %s is not one of the allowed options", ErrInvalidValue, field.Slug)
		}
	case models.FieldTypeCheckbox:
		// Checkbox values arrive comma-separated; every entry must be an option.
		for _, v := range strings.Split(value, ",") {
			if !containsOption(field.Options, strings.TrimSpace(v)) {
				return fmt.Errorf("%w: %s contains an unknown option", ErrInvalidValue, field.Slug)
			}
		}
	default:
		return fmt.Errorf("%w: unknown field type %q", ErrInvalidValue, field.Type)
	}
	return nil
}

// ValidateValues checks a submitted value map against all active definitions
// for the target kind. Unknown slugs in the map are ignored.
func (s *Service) ValidateValues(settings models.SettingsSnapshot, appliesTo string, values map[string]string) error {
	fields, err := s.FieldsFor(settings, appliesTo)
	if err != nil {
		return err
	}
	for i := range fields {
		if err := ValidateValue(&fields[i], values[fields[i].Slug]); err != nil {
			return err
		}
	}
	return nil
}

func containsOption(options []string, value string) bool {
	for _, opt := range options {
		if opt == value {
			return true
		}
	}
	return false
}
