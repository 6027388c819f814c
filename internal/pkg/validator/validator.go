package validator

import (
	"reflect"
	"strings"

	"evisa/internal/domain"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	enum := func(check func(string) bool) validator.Func {
		return func(fl validator.FieldLevel) bool {
			return check(fl.Field().String())
		}
	}
	_ = validate.RegisterValidation("visa_type", enum(func(s string) bool { return domain.VisaType(s).IsValid() }))
	_ = validate.RegisterValidation("entry_type", enum(func(s string) bool { return domain.EntryType(s).IsValid() }))
	_ = validate.RegisterValidation("document_type", enum(func(s string) bool { return domain.DocumentType(s).IsValid() }))
	_ = validate.RegisterValidation("app_status", enum(func(s string) bool { return domain.ApplicationStatus(s).IsValid() }))
	_ = validate.RegisterValidation("payment_method", enum(func(s string) bool { return domain.PaymentMethod(s).IsValid() }))
}

// Validate checks struct tags and returns field -> failed tag, or nil.
func Validate(v interface{}) map[string]string {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return map[string]string{"_": err.Error()}
	}
	out := make(map[string]string, len(errs))
	for _, e := range errs {
		out[e.Field()] = e.Tag()
	}
	return out
}
