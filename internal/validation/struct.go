package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mariaangelps/490-The-Team/internal/apperr"
	"github.com/mariaangelps/490-The-Team/internal/model"
)

var datePattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])(-(0[1-9]|[12]\d|3[01]))?$`)

// enumTags map custom tags to their allowed values. Several values contain
// spaces or quotes, which the built-in oneof tag cannot express.
var enumTags = map[string][]string{
	"educationlevel":  model.EducationLevels,
	"skillcategory":   model.SkillCategories,
	"proficiency":     model.SkillProficiencies,
	"experiencelevel": model.ExperienceLevels,
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report json names so field errors line up with request bodies
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})

	_ = v.RegisterValidation("emailaddr", func(fl validator.FieldLevel) bool {
		return ValidateEmail(strings.TrimSpace(fl.Field().String())) == nil
	})
	_ = v.RegisterValidation("strongpassword", func(fl validator.FieldLevel) bool {
		return ValidatePassword(fl.Field().String()) == nil
	})
	_ = v.RegisterValidation("yearmonth", func(fl validator.FieldLevel) bool {
		return datePattern.MatchString(strings.TrimSpace(fl.Field().String()))
	})
	for tag, allowed := range enumTags {
		_ = v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return slices.Contains(allowed, fl.Field().String())
		})
	}
	return v
}

// Struct validates s using its `validate` tags and returns a
// VALIDATION_ERROR carrying one message per failing field.
func Struct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	fields := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		if _, seen := fields[fe.Field()]; !seen {
			fields[fe.Field()] = msgForTag(fe)
		}
	}
	return apperr.Validation("Validation failed", fields)
}

func msgForTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_unless", "required_if":
		return "Required"
	case "emailaddr":
		return "Invalid email"
	case "strongpassword":
		return PasswordRule
	case "eqfield":
		return "Does not match"
	case "yearmonth":
		return "Use YYYY-MM or YYYY-MM-DD"
	case "max":
		return fmt.Sprintf("Max %s characters", fe.Param())
	case "gte":
		return fmt.Sprintf("Must be at least %s", fe.Param())
	case "lte":
		return fmt.Sprintf("Must be at most %s", fe.Param())
	case "oneof":
		return "Must be one of: " + fe.Param()
	case "educationlevel", "skillcategory", "proficiency", "experiencelevel":
		return "Must be one of: " + strings.Join(enumTags[fe.Tag()], ", ")
	default:
		return fmt.Sprintf("Failed on '%s' validation", fe.Tag())
	}
}
