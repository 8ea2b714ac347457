package requests

import (
	"github.com/oapi-codegen/nullable"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/Overland-East-Bay/scoring-api/internal/app/schema"
	"github.com/Overland-East-Bay/scoring-api/internal/domain"
)

// MethodRequest is the bound outer envelope.
type MethodRequest struct {
	Account   nullable.Nullable[string]
	Login     nullable.Nullable[string]
	Token     nullable.Nullable[string]
	Arguments map[string]any // nil when sent as null
	Method    string
}

// IsAdmin reports whether the caller logs in as adminLogin.
func (r MethodRequest) IsAdmin(adminLogin string) bool {
	return valueOrEmpty(r.Login) == adminLogin
}

// AccountValue is the account, or "" when absent or null.
func (r MethodRequest) AccountValue() string { return valueOrEmpty(r.Account) }

// LoginValue is the login, or "" when null.
func (r MethodRequest) LoginValue() string { return valueOrEmpty(r.Login) }

// TokenValue is the token, or "" when null.
func (r MethodRequest) TokenValue() string { return valueOrEmpty(r.Token) }

// OnlineScoreRequest is the bound online_score arguments.
type OnlineScoreRequest struct {
	FirstName nullable.Nullable[string]
	LastName  nullable.Nullable[string]
	Email     nullable.Nullable[string]
	Phone     nullable.Nullable[string]
	Birthday  nullable.Nullable[openapi_types.Date]
	Gender    nullable.Nullable[domain.Gender]

	// Has lists the supplied argument names in declaration order.
	Has []string
}

// Profile flattens the request into the scoring input.
func (r OnlineScoreRequest) Profile() domain.Profile {
	var p domain.Profile
	p.FirstName = ptr(r.FirstName)
	p.LastName = ptr(r.LastName)
	p.Email = ptr(r.Email)
	p.Phone = ptr(r.Phone)
	if d := ptr(r.Birthday); d != nil {
		p.Birthday = &d.Time
	}
	p.Gender = ptr(r.Gender)
	return p
}

// ClientsInterestsRequest is the bound clients_interests arguments.
type ClientsInterestsRequest struct {
	ClientIDs []domain.ClientID
	Date      nullable.Nullable[openapi_types.Date]

	Has []string
}

// BindMethod binds the outer envelope.
func (c *Catalog) BindMethod(raw map[string]any) (MethodRequest, error) {
	v, err := schema.Bind(c.Method, raw)
	if err != nil {
		return MethodRequest{}, err
	}
	out := MethodRequest{
		Account: field[string](v, FieldAccount),
		Login:   field[string](v, FieldLogin),
		Token:   field[string](v, FieldToken),
		Method:  v.Value(FieldMethod).(string),
	}
	if args, ok := v.Value(FieldArguments).(map[string]any); ok {
		out.Arguments = args
	}
	return out, nil
}

// BindOnlineScore binds online_score arguments and applies the pair rule.
func (c *Catalog) BindOnlineScore(raw map[string]any) (OnlineScoreRequest, error) {
	v, err := schema.Bind(c.OnlineScore, raw)
	if err != nil {
		return OnlineScoreRequest{}, err
	}
	return OnlineScoreRequest{
		FirstName: field[string](v, FieldFirstName),
		LastName:  field[string](v, FieldLastName),
		Email:     field[string](v, FieldEmail),
		Phone:     field[string](v, FieldPhone),
		Birthday:  field[openapi_types.Date](v, FieldBirthday),
		Gender:    field[domain.Gender](v, FieldGender),
		Has:       v.Provided(),
	}, nil
}

// BindClientsInterests binds clients_interests arguments.
func (c *Catalog) BindClientsInterests(raw map[string]any) (ClientsInterestsRequest, error) {
	v, err := schema.Bind(c.ClientsInterests, raw)
	if err != nil {
		return ClientsInterestsRequest{}, err
	}
	ids, _ := v.Value(FieldClientIDs).([]domain.ClientID)
	return ClientsInterestsRequest{
		ClientIDs: ids,
		Date:      field[openapi_types.Date](v, FieldDate),
		Has:       v.Provided(),
	}, nil
}

// field lifts a bound value into its tri-state form.
func field[T any](v *schema.Values, name string) nullable.Nullable[T] {
	if !v.Has(name) {
		return nullable.Nullable[T]{}
	}
	val, ok := v.Value(name).(T)
	if !ok {
		return nullable.NewNullNullable[T]()
	}
	return nullable.NewNullableWithValue(val)
}

func ptr[T any](n nullable.Nullable[T]) *T {
	v, err := n.Get()
	if err != nil {
		return nil
	}
	return &v
}

func valueOrEmpty(n nullable.Nullable[string]) string {
	if p := ptr(n); p != nil {
		return *p
	}
	return ""
}
