package state

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^(\+7|8)[\d\s\-()]{10,}$`)
)

// deliveryForm is the first checkout step.
type deliveryForm struct {
	Payment string `form:"payment" validate:"required"`
	Address string `form:"address" validate:"required"`
}

// contactsForm is the second checkout step.
type contactsForm struct {
	Email string `form:"email" validate:"required,shop_email"`
	Phone string `form:"phone" validate:"required,ru_phone"`
}

var messages = map[entity.OrderField]map[string]string{
	entity.FieldPayment: {
		"required": "Необходимо выбрать способ оплаты",
	},
	entity.FieldAddress: {
		"required": "Необходимо указать адрес доставки",
	},
	entity.FieldEmail: {
		"required":   "Необходимо указать email",
		"shop_email": "Некорректный формат email",
	},
	entity.FieldPhone: {
		"required": "Необходимо указать телефон",
		"ru_phone": "Некорректный формат телефона",
	},
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("form")
	})

	rules := map[string]validator.Func{
		"shop_email": func(fl validator.FieldLevel) bool {
			return emailPattern.MatchString(fl.Field().String())
		},
		"ru_phone": func(fl validator.FieldLevel) bool {
			return phonePattern.MatchString(stripSpaces(fl.Field().String()))
		},
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(err)
		}
	}
	return v
}

// check validates one form and translates the failures into messages.
// The validator stops at the first failing rule of a field, so each field
// reports at most one message.
func check(form any) entity.FormErrors {
	errs := entity.FormErrors{}

	err := validate.Struct(form)
	if err == nil {
		return errs
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		// Only reachable when form is not a struct.
		panic(err)
	}
	for _, fe := range verrs {
		field := entity.OrderField(fe.Field())
		errs[field] = message(field, fe.Tag())
	}
	return errs
}

func message(field entity.OrderField, tag string) string {
	if msg, ok := messages[field][tag]; ok {
		return msg
	}
	return "Некорректное значение поля " + string(field)
}

func stripSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
