// ABOUTME: Schema validation for weekly routines produced by the model or by PDF parsing
// ABOUTME: Wraps go-playground/validator and reports every failing field by its JSON path
package routine

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/harper/wodsmith/internal/models"
)

// ErrValidationFailed is wrapped by every ValidationError
var ErrValidationFailed = errors.New("routine validation failed")

var weekIDPattern = regexp.MustCompile(`^semana_\d{4}_W\d{2}$`)

// FieldError describes one invalid or missing field
type FieldError struct {
	Path    string `json:"path"`
	Problem string `json:"problem"`
}

// ValidationError lists every field that failed validation
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = fmt.Sprintf("%s (%s)", f.Path, f.Problem)
	}
	return fmt.Sprintf("%s: %s", ErrValidationFailed.Error(), strings.Join(parts, ", "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func instance() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New()
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
		_ = v.RegisterValidation("weekid", func(fl validator.FieldLevel) bool {
			return weekIDPattern.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("wodformat", func(fl validator.FieldLevel) bool {
			got := fl.Field().String()
			for _, f := range models.WODFormats {
				if strings.EqualFold(f, got) {
					return true
				}
			}
			return false
		})
		validate = v
	})
	return validate
}

// Validate decodes an untyped payload into a WeekRoutine and checks it against the schema
func Validate(payload map[string]any) (*models.WeekRoutine, error) {
	if payload == nil {
		return nil, &ValidationError{Fields: []FieldError{{Path: "$", Problem: "missing payload"}}}
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode payload: %w", err)
	}

	var r models.WeekRoutine
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, decodeError(err)
	}

	if err := ValidateRecord(&r); err != nil {
		return nil, err
	}
	return &r, nil
}

// ValidateRecord checks an already typed routine
func ValidateRecord(r *models.WeekRoutine) error {
	if r == nil {
		return &ValidationError{Fields: []FieldError{{Path: "$", Problem: "missing routine"}}}
	}

	err := instance().Struct(r)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	fields := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, FieldError{
			Path:    trimRoot(fe.Namespace()),
			Problem: describe(fe),
		})
	}
	return &ValidationError{Fields: fields}
}

// trimRoot drops the leading struct name from a validator namespace
func trimRoot(ns string) string {
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "min":
		return "must be at least " + fe.Param()
	case "oneof":
		return "must be one of " + fe.Param()
	case "datetime":
		return "must be a date formatted YYYY-MM-DD"
	case "weekid":
		return "must match semana_YYYY_WNN"
	case "wodformat":
		return "must be one of " + strings.Join(models.WODFormats, ", ")
	}
	return "failed " + fe.Tag()
}

func decodeError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		path := typeErr.Field
		if path == "" {
			path = "$"
		}
		return &ValidationError{Fields: []FieldError{{
			Path:    path,
			Problem: fmt.Sprintf("expected %s, got %s", typeErr.Type, typeErr.Value),
		}}}
	}
	return &ValidationError{Fields: []FieldError{{Path: "$", Problem: err.Error()}}}
}
