package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"

	"github.com/Overland-East-Bay/scoring-api/internal/app/auth"
	platformclock "github.com/Overland-East-Bay/scoring-api/internal/platform/clock"
	"github.com/Overland-East-Bay/scoring-api/internal/platform/config"
	"github.com/Overland-East-Bay/scoring-api/internal/platform/logging"
)

// Tiny dev-only token minting service.
//
// It computes the same salted digests the API checks, so local clients can build
// valid method envelopes without reimplementing the token scheme.

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "devtoken",
		Short:        "Mint scoring API tokens for local development",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, err := config.NewViper(cmd.Flags())
			if err != nil {
				return err
			}
			log, closeLog, err := logging.New(logging.Options{Level: v.GetString(config.KeyLogLevel)})
			if err != nil {
				return err
			}
			defer closeLog.Close()

			a := auth.NewAuthenticator(auth.Config{
				Salt:       v.GetString(config.KeyAuthSalt),
				AdminSalt:  v.GetString(config.KeyAuthAdminSalt),
				AdminLogin: v.GetString(config.KeyAuthAdminLogin),
			}, platformclock.NewSystemClock())

			srv := &http.Server{
				Addr:              fmt.Sprintf(":%d", v.GetInt(config.KeyPort)),
				Handler:           newHandler(a),
				ReadHeaderTimeout: 5 * time.Second,
			}
			log.WithField("addr", srv.Addr).Info("devtoken listening")
			return srv.ListenAndServe()
		},
	}
	cmd.Flags().IntP(config.KeyPort, "p", 5556, "listen port")
	cmd.Flags().String(config.KeyLogLevel, "info", "log level")
	cmd.Flags().String(config.KeyAuthSalt, auth.DefaultSalt, "user token salt")
	cmd.Flags().String(config.KeyAuthAdminSalt, auth.DefaultAdminSalt, "admin token salt")
	cmd.Flags().String(config.KeyAuthAdminLogin, auth.DefaultAdminLogin, "admin login")
	return cmd
}

type tokenResponse struct {
	Account string `json:"account"`
	Login   string `json:"login"`
	Token   string `json:"token"`
	Admin   bool   `json:"admin"`
}

func newHandler(a *auth.Authenticator) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// Mint a token:
	//   GET /token?account=horns%26hoofs&login=h%26f
	r.Get("/token", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		login := strings.TrimSpace(q.Get("login"))
		if login == "" {
			http.Error(w, "missing login", http.StatusBadRequest)
			return
		}
		account := q.Get("account")

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(tokenResponse{
			Account: account,
			Login:   login,
			Token:   a.ExpectedToken(account, login),
			Admin:   login == a.AdminLogin(),
		})
	})
	return r
}

