package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/big"
	"regexp"
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/Overland-East-Bay/scoring-api/internal/domain"
)

// DateLayout is DD.MM.YYYY; leading zeros in day and month are optional.
const DateLayout = "2.1.2006"

// MaxAgeYears bounds BirthDay: ages of this many whole years or more are rejected.
const MaxAgeYears = 70

var (
	digitsRe       = regexp.MustCompile(`^[0-9]+$`)
	leadingSevenRe = regexp.MustCompile(`^7`)
	atSignRe       = regexp.MustCompile(`@`)

	errNotString = errors.New("must be a string")
	errNotList   = errors.New("must be a list")
	errNotDict   = errors.New("must be an object")
)

// Char accepts any string.
func Char(name string, p Presence) Field {
	return NewField(name, p, validateChar)
}

// List accepts any JSON array.
func List(name string, p Presence) Field {
	return NewField(name, p, validateList)
}

// Dict accepts any JSON object.
func Dict(name string, p Presence) Field {
	return NewField(name, p, validateDict)
}

// Arguments is a Dict carrying the inner method arguments.
func Arguments(name string, p Presence) Field {
	return NewField(name, p, validateDict)
}

// Email accepts a string containing '@'.
func Email(name string, p Presence) Field {
	return NewField(name, p, func(value any) (any, error) {
		s, err := validateChar(value)
		if err != nil {
			return nil, err
		}
		if err := validation.Validate(s,
			validation.Required.Error("must contain '@'"),
			validation.Match(atSignRe).Error("must contain '@'"),
		); err != nil {
			return nil, err
		}
		return s, nil
	})
}

// Phone accepts a string or integer whose decimal text is 11 digits starting with 7.
// The normalized value is the digit string.
func Phone(name string, p Presence) Field {
	return NewField(name, p, func(value any) (any, error) {
		s := stringify(value)
		if err := validation.Validate(s,
			validation.Required.Error("must contain 11 digits"),
			validation.RuneLength(11, 11).Error("must contain 11 digits"),
			validation.Match(digitsRe).Error("must contain only digits"),
			validation.Match(leadingSevenRe).Error("must start with '7'"),
		); err != nil {
			return nil, err
		}
		return s, nil
	})
}

// Date accepts a DD.MM.YYYY string. The normalized value is an openapi_types.Date.
func Date(name string, p Presence) Field {
	return NewField(name, p, func(value any) (any, error) {
		d, err := parseDate(value)
		if err != nil {
			return nil, err
		}
		return d, nil
	})
}

// BirthDay is a Date whose age, in whole 365-day years before now(), is below MaxAgeYears.
func BirthDay(name string, p Presence, now func() time.Time) Field {
	return NewField(name, p, func(value any) (any, error) {
		d, err := parseDate(value)
		if err != nil {
			return nil, err
		}
		if err := validation.Validate(d.Time, validation.By(func(any) error {
			if AgeInYears(d.Time, now()) >= MaxAgeYears {
				return fmt.Errorf("must be less than %d years ago", MaxAgeYears)
			}
			return nil
		})); err != nil {
			return nil, err
		}
		return d, nil
	})
}

// Gender accepts the integer codes 0, 1 and 2. The normalized value is a domain.Gender.
func Gender(name string, p Presence) Field {
	return NewField(name, p, func(value any) (any, error) {
		n, ok := asInt64(value)
		if !ok {
			return nil, errors.New("must be one of 0, 1, 2")
		}
		g := domain.Gender(n)
		if err := validation.Validate(g,
			validation.In(domain.GenderUnknown, domain.GenderMale, domain.GenderFemale).Error("must be one of 0, 1, 2"),
		); err != nil {
			return nil, err
		}
		return g, nil
	})
}

// ClientIDs is a List whose every element is an integer. The normalized value is []domain.ClientID.
func ClientIDs(name string, p Presence) Field {
	return NewField(name, p, func(value any) (any, error) {
		v, err := validateList(value)
		if err != nil {
			return nil, err
		}
		items := v.([]any)
		if err := validation.Validate(items, validation.Each(validation.By(func(item any) error {
			if _, ok := asInt64(item); !ok {
				return errors.New("not an integer")
			}
			return nil
		}))); err != nil {
			for _, item := range items {
				if isWideInteger(item) {
					return nil, errors.New("must contain only integers within the 64-bit range")
				}
			}
			return nil, errors.New("must contain only integers")
		}
		ids := make([]domain.ClientID, 0, len(items))
		for _, item := range items {
			n, _ := asInt64(item)
			ids = append(ids, domain.ClientID(n))
		}
		return ids, nil
	})
}

// AgeInYears is the number of whole 365-day periods between the calendar dates of
// birth and now.
func AgeInYears(birth, now time.Time) int {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	born := time.Date(birth.Year(), birth.Month(), birth.Day(), 0, 0, 0, 0, time.UTC)
	days := int(math.Floor(today.Sub(born).Hours() / 24))
	years := days / 365
	if days < 0 && days%365 != 0 {
		years--
	}
	return years
}

func validateChar(value any) (any, error) {
	s, ok := value.(string)
	if !ok {
		return nil, errNotString
	}
	return s, nil
}

func validateList(value any) (any, error) {
	l, ok := value.([]any)
	if !ok {
		return nil, errNotList
	}
	return l, nil
}

func validateDict(value any) (any, error) {
	m, ok := value.(map[string]any)
	if !ok {
		return nil, errNotDict
	}
	return m, nil
}

func parseDate(value any) (openapi_types.Date, error) {
	s, ok := value.(string)
	if !ok {
		return openapi_types.Date{}, errNotString
	}
	if err := validation.Validate(s,
		validation.Required.Error("must be a date in DD.MM.YYYY format"),
		validation.Date(DateLayout).Error("must be a date in DD.MM.YYYY format"),
	); err != nil {
		return openapi_types.Date{}, err
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return openapi_types.Date{}, errors.New("must be a date in DD.MM.YYYY format")
	}
	return openapi_types.Date{Time: t}, nil
}

// asInt64 accepts integral numbers only: Go integer kinds, json.Number without a
// fraction or exponent, and whole float64 values from decoders not using UseNumber.
func asInt64(value any) (int64, bool) {
	switch v := value.(type) {
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case json.Number:
		n, err := v.Int64()
		return n, err == nil
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return int64(v), true
	default:
		return 0, false
	}
}

// isWideInteger reports a JSON integer too large for int64.
func isWideInteger(value any) bool {
	n, ok := value.(json.Number)
	if !ok {
		return false
	}
	if _, err := n.Int64(); err == nil {
		return false
	}
	_, ok = new(big.Int).SetString(n.String(), 10)
	return ok
}

func stringify(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
