package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	govalidator "github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/stemsi/exstem-paper/internal/model"
)

var (
	trans     ut.Translator
	setupOnce sync.Once
)

// Setup installs JSON field naming, English messages and the block rules on
// gin's binding engine. Safe to call more than once.
func Setup() {
	setupOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*govalidator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(jsonName)

		enLocale := en.New()
		trans, _ = ut.New(enLocale, enLocale).GetTranslator("en")
		_ = en_translations.RegisterDefaultTranslations(v, trans)

		register(v, "blocktype", "{0} must be a known block type", func(fl govalidator.FieldLevel) bool {
			return model.BlockType(fl.Field().String()).Valid()
		})
	})
}

func jsonName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	return name
}

// register adds a custom rule together with its translated message.
func register(v *govalidator.Validate, tag, message string, fn govalidator.Func) {
	_ = v.RegisterValidation(tag, fn)
	_ = v.RegisterTranslation(tag, trans,
		func(t ut.Translator) error { return t.Add(tag, message, true) },
		func(t ut.Translator, fe govalidator.FieldError) string {
			msg, _ := t.T(tag, fe.Field())
			return msg
		},
	)
}

// TranslateErrors maps a binding error to field path and message. Paths
// follow the JSON body, e.g. "blocks[1].id". Anything that is not a
// validation error is reported under "detail".
func TranslateErrors(err error) map[string]string {
	var ve govalidator.ValidationErrors
	if errors.As(err, &ve) {
		fields := make(map[string]string, len(ve))
		for _, fe := range ve {
			fields[fieldPath(fe)] = fe.Translate(trans)
		}
		return fields
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntaxErr):
		return map[string]string{"detail": fmt.Sprintf("malformed JSON at offset %d", syntaxErr.Offset)}
	case errors.As(err, &typeErr) && typeErr.Field != "":
		return map[string]string{typeErr.Field: "must be a " + typeErr.Type.Kind().String()}
	}
	return map[string]string{"detail": err.Error()}
}

// fieldPath drops the root struct name from the error namespace.
func fieldPath(fe govalidator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return fe.Field()
}

// Bind decodes and validates the JSON body into dst. It returns nil on
// success or the translated field errors.
func Bind(c *gin.Context, dst any) map[string]string {
	if err := c.ShouldBindJSON(dst); err != nil {
		return TranslateErrors(err)
	}
	return nil
}
