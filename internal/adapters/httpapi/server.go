// Package httpapi is the HTTP boundary of the scoring service.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Overland-East-Bay/scoring-api/internal/app/dispatch"
	"github.com/Overland-East-Bay/scoring-api/internal/platform/metrics"
)

// MaxBodyBytes bounds the method request body.
const MaxBodyBytes = 1 << 20

type Dispatcher interface {
	Dispatch(ctx context.Context, body map[string]any, rc *dispatch.RequestContext) (any, error)
}

type Server struct {
	dispatcher Dispatcher
	log        *logrus.Logger
	metrics    *metrics.Metrics
}

func NewServer(d Dispatcher, log *logrus.Logger, m *metrics.Metrics) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Server{dispatcher: d, log: log, metrics: m}
}

var errNotObject = errors.New("request body must be a JSON object")

// HandleMethod decodes the body, dispatches it and writes the envelope.
func (s *Server) HandleMethod(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	rid, _ := RequestIDFromContext(r.Context())
	rc := &dispatch.RequestContext{RequestID: rid}

	// Stays 500 if the dispatcher panics.
	status := http.StatusInternalServerError
	var failure string
	defer func() {
		d := time.Since(start)
		s.metrics.ObserveRequest(rc.Method, status, d)
		entry := s.log.WithFields(logrus.Fields{
			"request_id": rid,
			"method":     rc.Method,
			"code":       status,
			"has":        rc.Has,
			"duration":   d,
		})
		if failure != "" {
			entry = entry.WithField("error", failure)
		}
		entry.Info("request")
	}()

	body, err := decodeBody(w, r)
	if err != nil {
		status, failure = http.StatusBadRequest, err.Error()
		writeError(w, status, "")
		return
	}

	resp, err := s.dispatcher.Dispatch(r.Context(), body, rc)
	if err != nil {
		ae := dispatch.ToError(err)
		status, failure = ae.Status, err.Error()
		writeError(w, ae.Status, ae.Message)
		return
	}
	status = http.StatusOK
	writeResponse(w, resp)
}

func decodeBody(w http.ResponseWriter, r *http.Request) (map[string]any, error) {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, errors.New("request body must hold a single JSON value")
	}
	body, ok := raw.(map[string]any)
	if !ok {
		return nil, errNotObject
	}
	return body, nil
}
