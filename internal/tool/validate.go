package tool

import (
	"regexp"
	"sync"

	"votcletta/internal/domain"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
)

var toolNamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func descriptorValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// tool names become function identifiers on the server
		_ = validate.RegisterValidation("tool_name", func(fl validator.FieldLevel) bool {
			return toolNamePattern.MatchString(fl.Field().String())
		})
	})
	return validate
}

// ValidateDescriptor checks a descriptor before it is sent to a registry.
func ValidateDescriptor(desc domain.ToolDescriptor) error {
	if err := descriptorValidator().Struct(desc); err != nil {
		return errors.Wrapf(err, "invalid tool descriptor %q", desc.Name)
	}
	return nil
}
