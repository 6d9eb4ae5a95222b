// Package form is the create/edit sheet boundary: it validates raw user
// input and shapes it into typed mutation requests. Invalid input returns an
// apperr.ValidationError with field-level messages and never reaches the
// mutation executor.
package form

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"pantryos/internal/apperr"
	"pantryos/internal/model"
)

var (
	recordIDPattern   = regexp.MustCompile(`^(?i)[a-f0-9-]{32,36}$`)
	loosePhonePattern = regexp.MustCompile(`^[+()\-\s.0-9]{7,24}$`)
	// Deliberately loose: anything@anything.anything. Full RFC validation
	// rejects real addresses more often than it catches typos.
	looseEmailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

	packSizeCeiling = decimal.NewFromInt(1_000_000)
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	mustRegister(v, "itemcategory", func(fl validator.FieldLevel) bool {
		return model.ItemCategory(fl.Field().String()).Valid()
	})
	mustRegister(v, "suppliercategory", func(fl validator.FieldLevel) bool {
		return model.SupplierCategory(fl.Field().String()).Valid()
	})
	mustRegister(v, "packsize", func(fl validator.FieldLevel) bool {
		size, err := decimal.NewFromString(fl.Field().String())
		if err != nil {
			return false
		}
		return size.IsPositive() && size.LessThanOrEqual(packSizeCeiling)
	})
	mustRegister(v, "recordid", func(fl validator.FieldLevel) bool {
		return recordIDPattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "loosephone", func(fl validator.FieldLevel) bool {
		return loosePhonePattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "looseemail", func(fl validator.FieldLevel) bool {
		return looseEmailPattern.MatchString(fl.Field().String())
	})

	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}

func fieldErrors(err error, messages map[string]fieldMessage) error {
	if err == nil {
		return nil
	}
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	fields := make(map[string]string, len(errs))
	for _, fe := range errs {
		if msg, ok := messages[fe.StructField()]; ok {
			fields[msg.field] = msg.text
		} else {
			fields[strings.ToLower(fe.StructField())] = "Invalid value"
		}
	}
	return apperr.NewValidation(fields)
}

type fieldMessage struct {
	field string
	text  string
}
