package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	gojson "github.com/goccy/go-json"
	"github.com/valyala/fastjson"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/coffersTech/loglab/internal/logging"
	"github.com/coffersTech/loglab/internal/telemetry"
)

func (s *Server) respondJSON(w http.ResponseWriter, status int, v any) {
	data, err := gojson.Marshal(v)
	if err != nil {
		http.Error(w, "encoding failure", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.log.Info(r.Context(), "Root endpoint called")
	s.respondJSON(w, http.StatusOK, map[string]string{"Hello": "World"})
}

func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("pong"))
}

func (s *Server) handleTest(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleItem looks up an item by id, simulating I/O delay for even ids.
func (s *Server) handleItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := strconv.Atoi(chi.URLParam(r, "itemID"))
	if err != nil {
		s.respondJSON(w, http.StatusBadRequest, map[string]string{"detail": "item id must be an integer"})
		return
	}

	ctx, span := s.tracer.Start(r.Context(), "process_item")
	defer span.End()

	span.SetAttributes(attribute.Int("item.id", itemID))
	q := r.URL.Query().Get("q")
	if q != "" {
		span.SetAttributes(attribute.String("item.query", q))
	}

	s.log.Info(ctx, "Processing item", logging.F("item_id", itemID), logging.F("query", q))

	if itemID%2 == 0 {
		s.log.Debug(ctx, "Simulating I/O delay for even item id", logging.F("item_id", itemID))
		time.Sleep(100 * time.Millisecond)
	}

	s.respondJSON(w, http.StatusOK, map[string]any{"item_id": itemID, "q": q})
}

// handleInvalid fails on purpose so the unhandled-error path of the
// access log interceptor can be observed end to end.
func (s *Server) handleInvalid(w http.ResponseWriter, r *http.Request) {
	s.log.Warning(r.Context(), "About to fail on purpose")
	panic(errors.New("intentional failure for testing"))
}

// handleException records an error on its span but handles it, returning
// a successful response.
func (s *Server) handleException(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.tracer.Start(r.Context(), "exception_demo_span")
	defer span.End()

	s.log.Info(ctx, "Starting exception demo")

	err := errors.New("simulated error for tracing demo")
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	s.log.Exception(ctx, "Caught and recorded exception", err)

	s.respondJSON(w, http.StatusOK, map[string]string{
		"status":  "error_handled",
		"message": err.Error(),
	})
}

// handleExternalAPI calls the configured external endpoint through the
// instrumented client and relays a small slice of the response.
func (s *Server) handleExternalAPI(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.tracer.Start(r.Context(), "external_api_call")
	defer span.End()

	target := s.cfg.ExternalAPIURL
	span.SetAttributes(attribute.String("http.url", target))
	s.log.Info(ctx, "Making external API call")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		telemetry.RecordError(ctx, err)
		s.log.Error(ctx, "External API request could not be built", logging.Err(err))
		s.respondJSON(w, http.StatusInternalServerError, map[string]string{"detail": "invalid external API URL"})
		return
	}

	resp, err := s.client.Do(req)
	if err != nil {
		telemetry.RecordError(ctx, err)
		s.log.Error(ctx, "External API request failed", logging.Err(err))
		s.respondJSON(w, http.StatusServiceUnavailable, map[string]string{"detail": "External API unavailable"})
		return
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		telemetry.RecordError(ctx, err)
		s.log.Error(ctx, "External API response could not be read", logging.Err(err))
		s.respondJSON(w, http.StatusBadGateway, map[string]string{"detail": "External API response unreadable"})
		return
	}

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("external API returned %d", resp.StatusCode)
		telemetry.RecordError(ctx, err)
		s.log.Error(ctx, "External API returned error", logging.F("status_code", resp.StatusCode))
		s.respondJSON(w, http.StatusBadGateway, map[string]string{
			"detail": fmt.Sprintf("External API error: %d", resp.StatusCode),
		})
		return
	}

	var parser fastjson.Parser
	parsed, err := parser.ParseBytes(body)
	if err != nil {
		telemetry.RecordError(ctx, err)
		s.log.Error(ctx, "External API returned invalid JSON", logging.Err(err))
		s.respondJSON(w, http.StatusBadGateway, map[string]string{"detail": "External API returned invalid JSON"})
		return
	}

	s.log.Info(ctx, "External API call successful", logging.F("status_code", resp.StatusCode))

	source := target
	if u, err := url.Parse(target); err == nil && u.Host != "" {
		source = u.Host
	}
	s.respondJSON(w, http.StatusOK, map[string]any{
		"source":      source,
		"status_code": resp.StatusCode,
		"origin":      string(parsed.GetStringBytes("origin")),
	})
}
