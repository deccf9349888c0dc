package family

import (
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	kerrors "github.com/matzehuels/kintree/pkg/errors"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once

	// now is replaced in tests.
	now = time.Now
)

func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// Validate checks a normalized member against the input rules. It returns an
// INVALID_MEMBER error for field problems and INVALID_RELATIONSHIP for bad
// references. Call Normalize first.
func Validate(m Member) error {
	if err := structValidator().Struct(m); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			return kerrors.New(kerrors.ErrCodeInvalidMember, "%s", fieldMessage(verrs[0]))
		}
		return kerrors.Wrap(kerrors.ErrCodeInvalidMember, err, "invalid member")
	}

	if m.BirthDate != "" {
		born, err := time.Parse(time.DateOnly, m.BirthDate)
		if err != nil {
			return kerrors.New(kerrors.ErrCodeInvalidMember, "invalid birth date format")
		}
		if born.After(now()) {
			return kerrors.New(kerrors.ErrCodeInvalidMember, "birth date cannot be in the future")
		}
	}

	return ValidateRelationships(m)
}

// ValidateRelationships rejects self references and identical parents.
func ValidateRelationships(m Member) error {
	if m.ID != "" && (m.ParentID == m.ID || m.Parent2ID == m.ID || m.SpouseID == m.ID) {
		return kerrors.New(kerrors.ErrCodeInvalidRelationship, "a person cannot be related to themselves")
	}
	if m.ParentID != "" && m.ParentID == m.Parent2ID {
		return kerrors.New(kerrors.ErrCodeInvalidRelationship, "both parents cannot be the same person")
	}
	return nil
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "max":
		return field + " must be less than " + fe.Param() + " characters"
	case "oneof":
		return "invalid " + field + " selection"
	case "datetime":
		return "invalid " + strings.ReplaceAll(field, "_", " ") + " format"
	default:
		return "invalid " + field
	}
}
