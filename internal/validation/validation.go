package validation

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/lostandfound/backend/internal/domain"
	"github.com/lostandfound/backend/internal/dto"
)

// CategoryChecker reports whether a category exposed id exists
type CategoryChecker interface {
	Exists(ctx context.Context, id string) (bool, error)
}

// FieldError describes one rejected field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Errors is returned when a request fails validation
type Errors []FieldError

func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for _, fe := range e {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Validator validates request DTOs against struct tags and the registered rules
type Validator struct {
	validate    *validator.Validate
	clock       domain.Clock
	categories  CategoryChecker
	maxPageSize int
}

// New registers the custom rules:
//   - notfuture: non-zero time not after clock.Now()
//   - category:  existing category exposed id
//   - pubtype, pubstate, vote: wire enum values
func New(clock domain.Clock, categories CategoryChecker, maxPageSize int) *Validator {
	v := &Validator{
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		clock:       clock,
		categories:  categories,
		maxPageSize: maxPageSize,
	}

	v.validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	// Registration only fails on empty tags or nil funcs.
	_ = v.validate.RegisterValidation("notfuture", v.notFuture)
	_ = v.validate.RegisterValidationCtx("category", v.categoryExists)
	_ = v.validate.RegisterValidation("pubtype", func(fl validator.FieldLevel) bool {
		t := dto.PublicationType(fl.Field().String())
		return t == dto.LostSubject || t == dto.FoundSubject
	})
	_ = v.validate.RegisterValidation("pubstate", func(fl validator.FieldLevel) bool {
		s := dto.PublicationState(fl.Field().String())
		return s == dto.Open || s == dto.Closed
	})
	_ = v.validate.RegisterValidation("vote", func(fl validator.FieldLevel) bool {
		switch dto.SinglePublicationVote(fl.Field().String()) {
		case dto.NoVote, dto.Up, dto.Down:
			return true
		}
		return false
	})

	return v
}

func (v *Validator) notFuture(fl validator.FieldLevel) bool {
	t, ok := fl.Field().Interface().(time.Time)
	if !ok || t.IsZero() {
		return false
	}
	return !t.After(v.clock.Now())
}

func (v *Validator) categoryExists(ctx context.Context, fl validator.FieldLevel) bool {
	id := fl.Field().String()
	if id == "" || v.categories == nil {
		return false
	}
	ok, err := v.categories.Exists(ctx, id)
	return err == nil && ok
}

// Struct validates any tagged request struct
func (v *Validator) Struct(ctx context.Context, s interface{}) error {
	err := v.validate.StructCtx(ctx, s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validation error: %w", err)
	}
	return translate(verrs)
}

// ResourceParameters validates listing parameters, including the configured page size cap
// and the date range order.
func (v *Validator) ResourceParameters(ctx context.Context, p *dto.PublicationsResourceParameters) error {
	var out Errors
	if err := v.Struct(ctx, p); err != nil {
		var verrs Errors
		if !errors.As(err, &verrs) {
			return err
		}
		out = append(out, verrs...)
	}
	if p.PageSize > v.maxPageSize {
		out = append(out, FieldError{Field: "pageSize", Message: fmt.Sprintf("must be at most %d", v.maxPageSize)})
	}
	if p.FromDate != nil && p.ToDate != nil && p.FromDate.After(*p.ToDate) {
		out = append(out, FieldError{Field: "fromDate", Message: "must not be after toDate"})
	}
	if len(out) > 0 {
		return out
	}
	return nil
}

func translate(verrs validator.ValidationErrors) Errors {
	out := make(Errors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: fe.Field(), Message: message(fe)})
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "notfuture":
		return "must be set and cannot be in the future"
	case "category":
		return "category with this id does not exist"
	case "pubtype":
		return "must be LostSubject or FoundSubject"
	case "pubstate":
		return "must be Open or Closed"
	case "vote":
		return "must be NoVote, Up or Down"
	case "email":
		return "must be a valid email address"
	case "eqfield":
		return "must match " + fe.Param()
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "lte":
		return "must be less than or equal to " + fe.Param()
	case "alphanum":
		return "must contain only letters and digits"
	case "e164":
		return "must be a phone number in E.164 format"
	default:
		return "is invalid (" + fe.Tag() + ")"
	}
}
