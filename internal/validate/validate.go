package validate

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	reBarcode = regexp.MustCompile(`^[A-Za-z0-9_-]{1,100}$`)
	reQ       = regexp.MustCompile(`^[A-Za-z0-9 _'.\-]{1,50}$`)

	once sync.Once
	v    *validator.Validate
)

// MaxSaleQty caps a single sale or restock line.
const MaxSaleQty = 100000

func engine() *validator.Validate {
	once.Do(func() {
		v = validator.New(validator.WithRequiredStructEnabled())
		_ = v.RegisterValidation("barcode", func(fl validator.FieldLevel) bool {
			return reBarcode.MatchString(fl.Field().String())
		})
	})
	return v
}

// Struct runs tag validation and flattens failures into one readable message.
func Struct(s any) error {
	err := engine().Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	name := snake(fe.Field())
	switch fe.Tag() {
	case "required":
		return name + " is required"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", name, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be >= %s", name, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be <= %s", name, fe.Param())
	case "barcode":
		return name + " may only contain letters, digits, '-' and '_'"
	}
	return fmt.Sprintf("%s is invalid (%s)", name, fe.Tag())
}

func snake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

func Barcode(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, reBarcode.MatchString(s)
}

// Q validates a search query: trims, enforces allowed characters and max length
func Q(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	if len(s) > 50 {
		s = s[:50]
	}
	return s, reQ.MatchString(s)
}

// ID parses a positive numeric resource id.
func ID(s string) (int64, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

func Quantity(n int) bool { return n > 0 && n <= MaxSaleQty }
