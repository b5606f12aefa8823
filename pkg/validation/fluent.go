// Package validation checks configuration values before any endpoint is contacted.
package validation

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// ConfigValidator checks the fields of one configuration section and keeps
// every failure, prefixed with the section name.
type ConfigValidator struct {
	section string
	errs    []error
}

// NewConfigValidator starts a validator for section
func NewConfigValidator(section string) *ConfigValidator {
	return &ConfigValidator{section: section}
}

func (cv *ConfigValidator) fail(field, format string, args ...any) {
	cv.errs = append(cv.errs, fmt.Errorf("%s.%s: %s", cv.section, field, fmt.Sprintf(format, args...)))
}

// Required rejects an empty value.
func (cv *ConfigValidator) Required(field, value string) *ConfigValidator {
	if value == "" {
		cv.fail(field, "required field is empty")
	}
	return cv
}

// NonNegativeFloat rejects values below zero.
func (cv *ConfigValidator) NonNegativeFloat(field string, value float64) *ConfigValidator {
	if value < 0 {
		cv.fail(field, "value %g must be non-negative", value)
	}
	return cv
}

// RangeDuration rejects durations outside [min, max].
func (cv *ConfigValidator) RangeDuration(field string, value, min, max time.Duration) *ConfigValidator {
	if value < min || value > max {
		cv.fail(field, "duration %v is outside range [%v, %v]", value, min, max)
	}
	return cv
}

// HTTPURL requires an absolute http or https URL.
func (cv *ConfigValidator) HTTPURL(field, value string) *ConfigValidator {
	u, err := url.Parse(value)
	if err != nil {
		cv.fail(field, "invalid URL %q: %v", value, err)
		return cv
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		cv.fail(field, "URL %q must be absolute http(s)", value)
	}
	return cv
}

// Location accepts a file path or an s3://bucket/key URL. Empty is allowed.
func (cv *ConfigValidator) Location(field, value string) *ConfigValidator {
	if !strings.HasPrefix(value, "s3://") {
		return cv
	}
	bucket, key, _ := strings.Cut(strings.TrimPrefix(value, "s3://"), "/")
	if bucket == "" || key == "" {
		cv.fail(field, "location %q must be s3://bucket/key", value)
	}
	return cv
}

// Exclusive rejects setting both a and b.
func (cv *ConfigValidator) Exclusive(field, a, b string, aSet, bSet bool) *ConfigValidator {
	if aSet && bSet {
		cv.fail(field, "%s and %s are mutually exclusive", a, b)
	}
	return cv
}

// Custom records the error returned by fn, wrapped.
func (cv *ConfigValidator) Custom(field string, fn func() error) *ConfigValidator {
	if err := fn(); err != nil {
		cv.errs = append(cv.errs, fmt.Errorf("%s.%s: %w", cv.section, field, err))
	}
	return cv
}

// When runs validations only if condition holds.
func (cv *ConfigValidator) When(condition bool, validations func(*ConfigValidator)) *ConfigValidator {
	if condition {
		validations(cv)
	}
	return cv
}

// Validate returns every collected error joined, or nil.
func (cv *ConfigValidator) Validate() error {
	return errors.Join(cv.errs...)
}
