package config

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/cellmap/pkg/errors"
	"github.com/matzehuels/cellmap/pkg/palette"
)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
}

// Validate checks field constraints, identifiers, colours and geometry.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if stderrors.As(err, &verrs) && len(verrs) > 0 {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s", describe(verrs[0]))
		}
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid config")
	}

	if err := errors.ValidateID("root", c.RootID); err != nil {
		return err
	}
	for _, e := range c.TreeEdges {
		if err := errors.ValidateID("clone", e.Source); err != nil {
			return err
		}
		if err := errors.ValidateID("clone", e.Target); err != nil {
			return err
		}
	}
	for _, r := range c.ClonalPrev {
		if err := errors.ValidateID("site", r.SiteID); err != nil {
			return err
		}
		if err := errors.ValidateID("clone", r.CloneID); err != nil {
			return err
		}
	}
	for _, cc := range c.CloneColours {
		if _, err := palette.Normalize(cc.Colour); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidColour, err, "clone %q", cc.CloneID)
		}
	}

	if err := c.Geometry().Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidGeometry, err, "invalid geometry")
	}
	return nil
}

// describe renders a validation failure using the document's field names.
func describe(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), "Config.")
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s needs at least %s entries", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be > %s, got %v", field, fe.Param(), fe.Value())
	case "gte":
		return fmt.Sprintf("%s must be >= %s, got %v", field, fe.Param(), fe.Value())
	case "lte":
		return fmt.Sprintf("%s must be <= %s, got %v", field, fe.Param(), fe.Value())
	}
	return fmt.Sprintf("%s failed %q validation", field, fe.Tag())
}
