package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every failed rule.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, v := range e {
		msgs[i] = v.Error()
	}
	return strings.Join(msgs, "\n")
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateConfig checks the struct rules and the environment-specific
// requirements.
func ValidateConfig(cfg *Config) error {
	var errs ValidationErrors

	if err := validate.Struct(cfg); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return err
		}
		for _, fe := range fieldErrs {
			errs = append(errs, ValidationError{Field: fe.Field(), Message: describe(fe)})
		}
	}

	if cfg.IsProduction() && cfg.DBDriver == DriverPostgres && cfg.DBPassword == "" {
		errs = append(errs, ValidationError{Field: "DBPassword", Message: "db_password secret is required in production"})
	}
	if cfg.DBMaxIdleConns > cfg.DBMaxOpenConns {
		errs = append(errs, ValidationError{Field: "DBMaxIdleConns", Message: "must not exceed DBMaxOpenConns"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if":
		return "is required"
	case "oneof":
		return fmt.Sprintf("must be one of [%s], got %q", fe.Param(), fmt.Sprint(fe.Value()))
	case "numeric":
		return fmt.Sprintf("must be numeric, got %q", fmt.Sprint(fe.Value()))
	case "url":
		return "must be a valid URL"
	case "gt", "gte", "min":
		return fmt.Sprintf("must be %s %s", fe.Tag(), fe.Param())
	default:
		return fmt.Sprintf("failed %q validation", fe.Tag())
	}
}
