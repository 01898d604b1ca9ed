package schema

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrInvalidConfig wraps every schema validation failure
	ErrInvalidConfig = errors.New("invalid collection config")

	// ErrComponentCollision is returned when two collections would share
	// one OpenAPI component name
	ErrComponentCollision = errors.New("component name collision")

	slugPattern      = regexp.MustCompile(`^[a-z][a-z0-9_-]*$`)
	fieldNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

	// reserved property names emitted for every document
	reservedFieldNames = map[string]bool{"id": true, "createdAt": true, "updatedAt": true}
)

// Validator checks collection configs before they reach the registry
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a validator with the schema-specific rules registered
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("fieldname", func(fl validator.FieldLevel) bool {
		return fieldNamePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("fieldtype", func(fl validator.FieldLevel) bool {
		return FieldType(fl.Field().String()).Valid()
	})
	return &Validator{validate: v}
}

// Validate runs struct rules and then cross-field checks
func (v *Validator) Validate(cfg *CollectionConfig) error {
	if cfg == nil {
		return fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}
	if err := v.validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return fmt.Errorf("%w: %s", ErrInvalidConfig, describe(verrs))
		}
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if ComponentName(cfg.Label) == "" {
		return fmt.Errorf("%w: label must contain non-whitespace characters", ErrInvalidConfig)
	}

	seen := make(map[string]bool, len(cfg.Fields))
	for _, f := range cfg.Fields {
		if reservedFieldNames[f.Name] {
			return fmt.Errorf("%w: field name %q is reserved", ErrInvalidConfig, f.Name)
		}
		if seen[f.Name] {
			return fmt.Errorf("%w: duplicate field name %q", ErrInvalidConfig, f.Name)
		}
		seen[f.Name] = true

		if err := validateFieldConfig(f); err != nil {
			return fmt.Errorf("%w: field %q: %v", ErrInvalidConfig, f.Name, err)
		}
	}
	return nil
}

func validateFieldConfig(f Field) error {
	switch f.Type {
	case TypeEnumeration:
		if len(f.EnumOptions) == 0 {
			return errors.New("enumeration requires at least one option")
		}
	case TypeRelation:
		if f.Relation == nil || f.Relation.Target == "" {
			return errors.New("relation requires a target collection")
		}
		switch f.Relation.Cardinality {
		case "", OneToOne, OneToMany, ManyToOne, ManyToMany:
		default:
			return fmt.Errorf("unknown relation cardinality %q", f.Relation.Cardinality)
		}
	case TypeComponent:
		if f.Component == "" {
			return errors.New("component field requires a component uid")
		}
	case TypeDynamicZone:
		if len(f.Components) == 0 {
			return errors.New("dynamic zone requires at least one component uid")
		}
	case TypeText, TypeTextarea, TypeRichText, TypeNumber, TypeDecimal, TypeBoolean,
		TypeDate, TypeDateTime, TypeTime, TypeEmail, TypePassword, TypeUID, TypeJSON, TypeMedia:
	default:
		return fmt.Errorf("unknown field type %q", f.Type)
	}
	return nil
}

// CheckComponentCollision rejects candidate when an existing collection with a
// different slug derives the same component name
func CheckComponentCollision(existing []*CollectionConfig, candidate *CollectionConfig) error {
	name := candidate.ComponentName()
	for _, c := range existing {
		if c.Slug == candidate.Slug {
			continue
		}
		if c.ComponentName() == name {
			return fmt.Errorf("%w: %q (label %q) and %q (label %q) both map to %q",
				ErrComponentCollision, candidate.Slug, candidate.Label, c.Slug, c.Label, name)
		}
	}
	return nil
}

func describe(verrs validator.ValidationErrors) string {
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
	}
	return strings.Join(msgs, "; ")
}
