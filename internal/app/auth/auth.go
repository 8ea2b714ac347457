// Package auth checks the salted-digest token carried in the method envelope.
package auth

import (
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"errors"

	"github.com/Overland-East-Bay/scoring-api/internal/app/requests"
	"github.com/Overland-East-Bay/scoring-api/internal/ports/out/clock"
)

// Defaults used when configuration leaves the secrets empty.
const (
	DefaultSalt       = "Otus"
	DefaultAdminLogin = "admin"
	DefaultAdminSalt  = "42"
)

// AdminHourLayout formats the hour window that admin tokens are minted for.
const AdminHourLayout = "2006010215"

// ErrForbidden means the supplied token does not match the expected digest.
var ErrForbidden = errors.New("auth: forbidden")

type Config struct {
	Salt       string
	AdminLogin string
	AdminSalt  string
}

func (c Config) withDefaults() Config {
	if c.Salt == "" {
		c.Salt = DefaultSalt
	}
	if c.AdminLogin == "" {
		c.AdminLogin = DefaultAdminLogin
	}
	if c.AdminSalt == "" {
		c.AdminSalt = DefaultAdminSalt
	}
	return c
}

type Authenticator struct {
	cfg   Config
	clock clock.Clock
}

func NewAuthenticator(cfg Config, clk clock.Clock) *Authenticator {
	return &Authenticator{cfg: cfg.withDefaults(), clock: clk}
}

// AdminLogin is the login that switches a request to the admin token scheme.
func (a *Authenticator) AdminLogin() string { return a.cfg.AdminLogin }

// ExpectedToken computes the token the server accepts for account and login right now.
// The admin token only lives for the current local hour.
func (a *Authenticator) ExpectedToken(account, login string) string {
	if login == a.cfg.AdminLogin {
		hour := a.clock.Now().Local().Format(AdminHourLayout)
		return Digest(hour + a.cfg.AdminSalt)
	}
	return Digest(account + login + a.cfg.Salt)
}

// Check returns ErrForbidden unless r carries the expected token.
func (a *Authenticator) Check(r requests.MethodRequest) error {
	supplied := r.TokenValue()
	if supplied == "" {
		return ErrForbidden
	}
	expected := a.ExpectedToken(r.AccountValue(), r.LoginValue())
	if subtle.ConstantTimeCompare([]byte(supplied), []byte(expected)) != 1 {
		return ErrForbidden
	}
	return nil
}

// Digest is the hex SHA-512 of s.
func Digest(s string) string {
	sum := sha512.Sum512([]byte(s))
	return hex.EncodeToString(sum[:])
}
