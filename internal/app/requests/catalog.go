// Package requests declares the request shapes accepted by the method endpoint and
// their typed views.
package requests

import (
	"errors"

	"github.com/Overland-East-Bay/scoring-api/internal/app/schema"
	"github.com/Overland-East-Bay/scoring-api/internal/ports/out/clock"
)

// Method names routed by the dispatcher.
const (
	MethodOnlineScore      = "online_score"
	MethodClientsInterests = "clients_interests"
)

// Field names of the method envelope.
const (
	FieldAccount   = "account"
	FieldLogin     = "login"
	FieldToken     = "token"
	FieldArguments = "arguments"
	FieldMethod    = "method"
)

// Field names of online_score arguments.
const (
	FieldFirstName = "first_name"
	FieldLastName  = "last_name"
	FieldEmail     = "email"
	FieldPhone     = "phone"
	FieldBirthday  = "birthday"
	FieldGender    = "gender"
)

// Field names of clients_interests arguments.
const (
	FieldClientIDs = "client_ids"
	FieldDate      = "date"
)

// ErrNoScoringPair is the online_score cross-field failure.
var ErrNoScoringPair = errors.New("required at least one of the field pairs: (first_name, last_name), (email, phone), (birthday, gender)")

// scoringPairs are the field pairs of which online_score needs at least one in full.
var scoringPairs = [][2]string{
	{FieldFirstName, FieldLastName},
	{FieldEmail, FieldPhone},
	{FieldBirthday, FieldGender},
}

// Catalog holds the request schemas. Build it once per process.
type Catalog struct {
	Method           *schema.Model
	OnlineScore      *schema.Model
	ClientsInterests *schema.Model
}

// NewCatalog declares every request schema. clk drives the birthday age limit.
func NewCatalog(clk clock.Clock) *Catalog {
	return &Catalog{
		Method: &schema.Model{
			Name: "method_request",
			Fields: []schema.Field{
				schema.Char(FieldAccount, schema.Optional),
				schema.Char(FieldLogin, schema.Required),
				schema.Char(FieldToken, schema.Required),
				schema.Arguments(FieldArguments, schema.Required),
				schema.Char(FieldMethod, schema.NonNull),
			},
		},
		OnlineScore: &schema.Model{
			Name: MethodOnlineScore,
			Fields: []schema.Field{
				schema.Char(FieldFirstName, schema.Optional),
				schema.Char(FieldLastName, schema.Optional),
				schema.Email(FieldEmail, schema.Optional),
				schema.Phone(FieldPhone, schema.Optional),
				schema.BirthDay(FieldBirthday, schema.Optional, clk.Now),
				schema.Gender(FieldGender, schema.Optional),
			},
			Validate: requireScoringPair,
		},
		ClientsInterests: &schema.Model{
			Name: MethodClientsInterests,
			Fields: []schema.Field{
				schema.ClientIDs(FieldClientIDs, schema.NonNull),
				schema.Date(FieldDate, schema.Optional),
			},
		},
	}
}

func requireScoringPair(v *schema.Values) error {
	for _, p := range scoringPairs {
		if v.HasAll(p[0], p[1]) {
			return nil
		}
	}
	return ErrNoScoringPair
}
