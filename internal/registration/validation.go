package registration

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/yojana-dates/yojana-backend/internal/apperror"
)

var emailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	if err := RegisterRules(v); err != nil {
		panic(err)
	}
	return v
}

// RegisterRules adds the registration field tags (occasion, experience,
// dining, budget, phonedigits, looseemail) to v. Gin's binding validator
// gets the same tags at startup so request DTOs share these rules.
func RegisterRules(v *validator.Validate) error {
	rules := map[string]validator.Func{
		"occasion":    oneOf(Occasions),
		"experience":  oneOf(Experiences),
		"dining":      oneOf(Dinings),
		"budget":      oneOf(Budgets),
		"phonedigits": func(fl validator.FieldLevel) bool { return ValidPhone(fl.Field().String()) },
		"looseemail":  func(fl validator.FieldLevel) bool { return ValidEmail(fl.Field().String()) },
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("register %s: %w", tag, err)
		}
	}
	return nil
}

func oneOf[T ~string](values []T) validator.Func {
	return func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		for _, v := range values {
			if string(v) == s {
				return true
			}
		}
		return false
	}
}

// ValidEmail matches the loose x@y.z shape.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// DigitCount counts the decimal digits in s.
func DigitCount(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}

// ValidPhone requires at least 7 digits once everything else is stripped.
func ValidPhone(s string) bool {
	return DigitCount(s) >= 7
}

// ValidName requires at least 2 characters after trimming.
func ValidName(s string) bool {
	return validate.Var(strings.TrimSpace(s), "min=2") == nil
}

var timeLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseTime accepts RFC 3339 timestamps and zone-less local forms, which
// are read in loc.
func ParseTime(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Normalize validates a raw submission and returns the record to store.
// Checks run in a fixed order and stop at the first violation.
func Normalize(raw map[string]any, loc *time.Location) (*Registration, error) {
	start, ok := ParseTime(stringValue(raw["startDateTime"]), loc)
	if !ok {
		return nil, apperror.Invalid("startDateTime", "Valid startDateTime is required")
	}
	end, ok := ParseTime(stringValue(raw["endDateTime"]), loc)
	if !ok {
		return nil, apperror.Invalid("endDateTime", "Valid endDateTime is required")
	}
	if !end.After(start) {
		return nil, apperror.Invalid("endDateTime", "endDateTime must be after startDateTime")
	}

	occasion := stringValue(raw["occasion"])
	if validate.Var(occasion, "occasion") != nil {
		return nil, apperror.Invalid("occasion", "Valid occasion is required")
	}
	experience := stringValue(raw["experience"])
	if validate.Var(experience, "experience") != nil {
		return nil, apperror.Invalid("experience", "Valid experience is required")
	}
	dining := stringValue(raw["dining"])
	if validate.Var(dining, "dining") != nil {
		return nil, apperror.Invalid("dining", "Valid dining is required")
	}
	budget := stringValue(raw["budget"])
	if validate.Var(budget, "budget") != nil {
		return nil, apperror.Invalid("budget", "Valid budget is required")
	}

	name := stringValue(raw["name"])
	if !ValidName(name) {
		return nil, apperror.Invalid("name", "Name is required (min 2 chars)")
	}
	email := strings.ToLower(stringValue(raw["email"]))
	if validate.Var(email, "looseemail") != nil {
		return nil, apperror.Invalid("email", "Valid email is required")
	}
	phone := stringValue(raw["phone"])
	if validate.Var(phone, "phonedigits") != nil {
		return nil, apperror.Invalid("phone", "Valid phone is required")
	}

	return &Registration{
		StartDateTime:    start,
		EndDateTime:      end,
		Occasion:         Occasion(occasion),
		Experience:       Experience(experience),
		Dining:           Dining(dining),
		DietVeg:          boolValue(raw["dietVeg"]),
		DietHalal:        boolValue(raw["dietHalal"]),
		DietAllergies:    stringValue(raw["dietAllergies"]),
		Flowers:          boolValue(raw["flowers"]),
		Cake:             boolValue(raw["cake"]),
		Budget:           Budget(budget),
		PersonalNote:     stringValue(raw["personalNote"]),
		Name:             name,
		Phone:            phone,
		Email:            email,
		EmergencyContact: stringValue(raw["emergencyContact"]),
		PaymentConfirmed: boolValue(raw["paymentConfirmed"]),
	}, nil
}

// NormalizePatch validates only the keys present in raw. When just one date
// is present the end-after-start rule needs the stored record, so the
// service checks it.
func NormalizePatch(raw map[string]any, loc *time.Location) (*Patch, error) {
	p := &Patch{}

	if v, ok := raw["startDateTime"]; ok {
		t, ok := ParseTime(stringValue(v), loc)
		if !ok {
			return nil, apperror.Invalid("startDateTime", "Invalid startDateTime")
		}
		p.StartDateTime = &t
	}
	if v, ok := raw["endDateTime"]; ok {
		t, ok := ParseTime(stringValue(v), loc)
		if !ok {
			return nil, apperror.Invalid("endDateTime", "Invalid endDateTime")
		}
		p.EndDateTime = &t
	}
	if p.StartDateTime != nil && p.EndDateTime != nil {
		if err := CheckWindow(*p.StartDateTime, *p.EndDateTime); err != nil {
			return nil, err
		}
	}

	if v, ok := raw["occasion"]; ok {
		s := stringValue(v)
		if validate.Var(s, "occasion") != nil {
			return nil, apperror.Invalid("occasion", "Invalid occasion")
		}
		o := Occasion(s)
		p.Occasion = &o
	}
	if v, ok := raw["experience"]; ok {
		s := stringValue(v)
		if validate.Var(s, "experience") != nil {
			return nil, apperror.Invalid("experience", "Invalid experience")
		}
		e := Experience(s)
		p.Experience = &e
	}
	if v, ok := raw["dining"]; ok {
		s := stringValue(v)
		if validate.Var(s, "dining") != nil {
			return nil, apperror.Invalid("dining", "Invalid dining")
		}
		d := Dining(s)
		p.Dining = &d
	}
	if v, ok := raw["budget"]; ok {
		s := stringValue(v)
		if validate.Var(s, "budget") != nil {
			return nil, apperror.Invalid("budget", "Invalid budget")
		}
		b := Budget(s)
		p.Budget = &b
	}

	p.DietVeg = boolField(raw, "dietVeg")
	p.DietHalal = boolField(raw, "dietHalal")
	p.DietAllergies = stringField(raw, "dietAllergies")
	p.Flowers = boolField(raw, "flowers")
	p.Cake = boolField(raw, "cake")
	p.PersonalNote = stringField(raw, "personalNote")

	if name := stringField(raw, "name"); name != nil {
		if !ValidName(*name) {
			return nil, apperror.Invalid("name", "Name must be at least 2 chars")
		}
		p.Name = name
	}
	if phone := stringField(raw, "phone"); phone != nil {
		if !ValidPhone(*phone) {
			return nil, apperror.Invalid("phone", "Invalid phone")
		}
		p.Phone = phone
	}
	if email := stringField(raw, "email"); email != nil {
		lower := strings.ToLower(*email)
		if !ValidEmail(lower) {
			return nil, apperror.Invalid("email", "Invalid email")
		}
		p.Email = &lower
	}

	p.EmergencyContact = stringField(raw, "emergencyContact")
	p.PaymentConfirmed = boolField(raw, "paymentConfirmed")

	return p, nil
}

// CheckWindow enforces end strictly after start.
func CheckWindow(start, end time.Time) error {
	if !end.After(start) {
		return apperror.Invalid("endDateTime", "endDateTime must be after startDateTime")
	}
	return nil
}

// stringValue renders a decoded JSON value as trimmed text. Missing and
// null values become "".
func stringValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

// boolValue reads a flag. Strings are parsed as booleans when they look like
// one ("false", "0") and are otherwise true when non-blank.
func boolValue(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		s := strings.TrimSpace(t)
		if b, err := strconv.ParseBool(s); err == nil {
			return b
		}
		return s != ""
	default:
		return true
	}
}

func stringField(raw map[string]any, key string) *string {
	v, ok := raw[key]
	if !ok {
		return nil
	}
	s := stringValue(v)
	return &s
}

func boolField(raw map[string]any, key string) *bool {
	v, ok := raw[key]
	if !ok {
		return nil
	}
	b := boolValue(v)
	return &b
}
