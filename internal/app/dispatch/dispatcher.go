// Package dispatch routes a bound method request to its handler behind the token guard.
package dispatch

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/Overland-East-Bay/scoring-api/internal/app/requests"
	"github.com/Overland-East-Bay/scoring-api/internal/app/schema"
	"github.com/Overland-East-Bay/scoring-api/internal/domain"
)

// RequestContext is the per-request audit record filled while dispatching.
type RequestContext struct {
	RequestID string
	Method    string
	// Has lists the argument names the caller supplied to the method.
	Has []string
}

type Authenticator interface {
	Check(r requests.MethodRequest) error
}

type Scorer interface {
	Score(ctx context.Context, p domain.Profile) float64
	ClientsInterests(ctx context.Context, ids []domain.ClientID) (map[string][]string, error)
}

// OnlineScoreResponse is the online_score success payload.
type OnlineScoreResponse struct {
	Score float64 `json:"score"`
}

// Handler serves one method after the envelope has been bound.
type Handler func(ctx context.Context, req requests.MethodRequest, rc *RequestContext) (any, error)

type Dispatcher struct {
	catalog  *requests.Catalog
	auth     Authenticator
	scorer   Scorer
	log      *logrus.Logger
	handlers map[string]Handler
}

func New(catalog *requests.Catalog, a Authenticator, scorer Scorer, log *logrus.Logger) *Dispatcher {
	if log == nil {
		log = logrus.StandardLogger()
	}
	d := &Dispatcher{catalog: catalog, auth: a, scorer: scorer, log: log}
	d.handlers = map[string]Handler{
		requests.MethodOnlineScore:      d.authenticated(d.onlineScore),
		requests.MethodClientsInterests: d.authenticated(d.clientsInterests),
	}
	return d
}

// Dispatch binds body as a method request and runs the matching handler. Every error
// it returns is an *Error.
func (d *Dispatcher) Dispatch(ctx context.Context, body map[string]any, rc *RequestContext) (any, error) {
	if rc == nil {
		rc = &RequestContext{}
	}
	req, err := d.catalog.BindMethod(body)
	if err != nil {
		return nil, ToError(err)
	}
	h, ok := d.handlers[req.Method]
	if !ok {
		return nil, ToError(fmt.Errorf("%w: %s", ErrUnknownMethod, req.Method))
	}
	// Only routed names reach RequestContext; it feeds metric labels.
	rc.Method = req.Method
	resp, err := h(ctx, req, rc)
	if err != nil {
		return nil, ToError(err)
	}
	return resp, nil
}

// authenticated rejects the request before next runs unless its token checks out.
func (d *Dispatcher) authenticated(next Handler) Handler {
	return func(ctx context.Context, req requests.MethodRequest, rc *RequestContext) (any, error) {
		if err := d.auth.Check(req); err != nil {
			d.log.WithFields(logrus.Fields{
				"request_id": rc.RequestID,
				"method":     req.Method,
				"login":      req.LoginValue(),
			}).Info("dispatch: authentication failed")
			return nil, err
		}
		return next(ctx, req, rc)
	}
}

func (d *Dispatcher) onlineScore(ctx context.Context, req requests.MethodRequest, rc *RequestContext) (any, error) {
	d.logIgnored(d.catalog.OnlineScore, req.Arguments, rc)
	r, err := d.catalog.BindOnlineScore(req.Arguments)
	if err != nil {
		return nil, err
	}
	rc.Has = r.Has
	return OnlineScoreResponse{Score: d.scorer.Score(ctx, r.Profile())}, nil
}

func (d *Dispatcher) clientsInterests(ctx context.Context, req requests.MethodRequest, rc *RequestContext) (any, error) {
	d.logIgnored(d.catalog.ClientsInterests, req.Arguments, rc)
	r, err := d.catalog.BindClientsInterests(req.Arguments)
	if err != nil {
		return nil, err
	}
	rc.Has = r.Has
	return d.scorer.ClientsInterests(ctx, r.ClientIDs)
}

func (d *Dispatcher) logIgnored(m *schema.Model, args map[string]any, rc *RequestContext) {
	if unknown := schema.Unknown(m, args); len(unknown) > 0 {
		d.log.WithFields(logrus.Fields{
			"request_id": rc.RequestID,
			"ignored":    unknown,
		}).Debug("dispatch: ignoring undeclared arguments")
	}
}
