package schema

import (
	"encoding/json"
	"testing"
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Overland-East-Bay/scoring-api/internal/domain"
)

var fixedNow = time.Date(2026, time.October, 19, 12, 0, 0, 0, time.UTC)

func nowFunc() time.Time { return fixedNow }

func TestChar(t *testing.T) {
	t.Parallel()

	f := Char("name", Optional)
	for _, v := range []any{json.Number("5"), map[string]any{}, []any{}, true} {
		_, err := f.Validate(v)
		assert.Error(t, err, "value=%#v", v)
	}
	got, err := f.Validate("5")
	require.NoError(t, err)
	assert.Equal(t, "5", got)
}

func TestListAndDict(t *testing.T) {
	t.Parallel()

	list := List("l", Optional)
	for _, v := range []any{json.Number("5"), map[string]any{}, "ab", true} {
		_, err := list.Validate(v)
		assert.Error(t, err, "list value=%#v", v)
	}
	_, err := list.Validate([]any{json.Number("1"), "x"})
	assert.NoError(t, err)

	dict := Arguments("arguments", Required)
	for _, v := range []any{json.Number("5"), []any{}, "ab", true} {
		_, err := dict.Validate(v)
		assert.Error(t, err, "dict value=%#v", v)
	}
	_, err = dict.Validate(map[string]any{"name": "Alexy", "surname": "Vassili"})
	assert.NoError(t, err)
}

func TestEmail(t *testing.T) {
	t.Parallel()

	f := Email("email", Optional)
	for _, v := range []any{json.Number("5"), []any{}, "ab", true, "ab.com", "ab at ab.com", ""} {
		_, err := f.Validate(v)
		assert.Error(t, err, "value=%#v", v)
	}
	_, err := f.Validate("petros@gmail.com")
	assert.NoError(t, err)
}

func TestPhone(t *testing.T) {
	t.Parallel()

	f := Phone("phone", Optional)

	bad := []any{
		json.Number("5"), []any{}, "ab", true,
		json.Number("89632223344"), json.Number("7963222334"), json.Number("789632223344"),
		"89632223344", "7963222334", "789632223344", "7963222334a", "",
	}
	for _, v := range bad {
		_, err := f.Validate(v)
		assert.Error(t, err, "value=%#v", v)
	}

	for _, v := range []any{"79637222999", json.Number("79637222999"), int64(79637222999)} {
		got, err := f.Validate(v)
		require.NoError(t, err, "value=%#v", v)
		assert.Equal(t, "79637222999", got)
	}
}

func TestPhone_ReasonNamesFirstBrokenRule(t *testing.T) {
	t.Parallel()

	f := Phone("phone", Optional)
	_, err := f.Validate("89632223344")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "start with '7'")

	_, err = f.Validate("7963222334a")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "only digits")
}

func TestDate(t *testing.T) {
	t.Parallel()

	f := Date("date", Optional)
	for _, v := range []any{"08.05..2003", "08.052003", "08/05/2003", "08:05:2003", "08052003", "", json.Number("8052003")} {
		_, err := f.Validate(v)
		assert.Error(t, err, "value=%#v", v)
	}

	for _, v := range []string{"08.05.2003", "08.05.1920", "8.5.2003"} {
		got, err := f.Validate(v)
		require.NoError(t, err, "value=%q", v)
		d, ok := got.(openapi_types.Date)
		require.True(t, ok, "got %T", got)
		assert.Equal(t, time.May, d.Month(), "value=%q", v)
	}
}

func TestBirthDay(t *testing.T) {
	t.Parallel()

	f := BirthDay("birthday", Optional, nowFunc)

	_, err := f.Validate("09.05.1945")
	assert.Error(t, err)

	_, err = f.Validate("09.05.1997")
	assert.NoError(t, err)

	_, err = f.Validate("not a date")
	assert.Error(t, err)
}

func TestBirthDay_Boundary(t *testing.T) {
	t.Parallel()

	now := time.Date(2020, time.January, 1, 23, 30, 0, 0, time.UTC)
	f := BirthDay("birthday", Optional, func() time.Time { return now })

	oldest := now.AddDate(0, 0, -(MaxAgeYears*365 - 1))
	_, err := f.Validate(oldest.Format(DateLayout))
	assert.NoError(t, err, "one day under the limit")

	tooOld := now.AddDate(0, 0, -MaxAgeYears*365)
	_, err = f.Validate(tooOld.Format(DateLayout))
	assert.Error(t, err, "exactly at the limit")
}

func TestAgeInYears(t *testing.T) {
	t.Parallel()

	born := time.Date(2000, time.March, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 0, AgeInYears(born, born))
	assert.Equal(t, 0, AgeInYears(born, born.AddDate(0, 0, 364)))
	assert.Equal(t, 1, AgeInYears(born, born.AddDate(0, 0, 365)))
	assert.Equal(t, -1, AgeInYears(born, born.AddDate(0, 0, -1)))
}

func TestGender(t *testing.T) {
	t.Parallel()

	f := Gender("gender", Optional)
	for _, v := range []any{json.Number("-1"), json.Number("100"), json.Number("1.5"), "1", true} {
		_, err := f.Validate(v)
		assert.Error(t, err, "value=%#v", v)
	}

	cases := map[string]domain.Gender{"0": domain.GenderUnknown, "1": domain.GenderMale, "2": domain.GenderFemale}
	for raw, want := range cases {
		got, err := f.Validate(json.Number(raw))
		require.NoError(t, err, "value=%s", raw)
		assert.Equal(t, want, got)
	}
}

func TestClientIDs(t *testing.T) {
	t.Parallel()

	f := ClientIDs("client_ids", NonNull)

	bad := []any{
		map[string]any{"1": 1},
		[]any{json.Number("1"), json.Number("2"), "5"},
		[]any{json.Number("1.5")},
		[]any{true},
		[]any{nil},
	}
	for _, v := range bad {
		_, err := f.Validate(v)
		assert.Error(t, err, "value=%#v", v)
	}

	got, err := f.Validate([]any{json.Number("1"), json.Number("2"), json.Number("3")})
	require.NoError(t, err)
	assert.Equal(t, []domain.ClientID{1, 2, 3}, got)

	got, err = f.Validate([]any{})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestClientIDs_OutOfRange(t *testing.T) {
	t.Parallel()

	f := ClientIDs("client_ids", NonNull)

	_, err := f.Validate([]any{json.Number("1"), json.Number("99999999999999999999")})
	require.Error(t, err)
	assert.Equal(t, "must contain only integers within the 64-bit range", err.Error())

	_, err = f.Validate([]any{json.Number("1"), json.Number("1.5")})
	require.Error(t, err)
	assert.Equal(t, "must contain only integers", err.Error())

	got, err := f.Validate([]any{json.Number("9223372036854775807")})
	require.NoError(t, err)
	assert.Equal(t, []domain.ClientID{9223372036854775807}, got)
}
