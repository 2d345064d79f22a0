package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dayanaadylkhanova/altcha-pow/internal/adapter/form"
	"github.com/dayanaadylkhanova/altcha-pow/internal/service"
)

// bodies larger than this cannot carry a valid payload
const maxBodySize = 2 * service.MaxPayloadSize

type verifyRequest struct {
	Payload string `json:"payload"`
}

type verifyResponse struct {
	Verified bool   `json:"verified"`
	Error    string `json:"error,omitempty"`
}

type handler struct {
	log      *slog.Logger
	settings form.Settings
	captcha  Captcha
}

// NewRouter wires the captcha endpoints onto a chi router.
func NewRouter(log *slog.Logger, settings form.Settings, captcha Captcha) *chi.Mux {
	h := &handler{log: log, settings: settings, captcha: captcha}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(requestLogger(log))
	router.Use(middleware.Recoverer)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	router.Get("/challenge", h.challenge)
	router.Post("/verify", h.verify)
	return router
}

func (h *handler) challenge(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")

	if r.URL.Query().Get("encoding") == "base64" {
		s, err := h.captcha.PrepareChallenge(h.settings)
		if err != nil {
			writeJSON(w, http.StatusServiceUnavailable, verifyResponse{Error: form.NotConfiguredMessage})
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, s)
		return
	}

	body, err := h.captcha.ChallengeJSON(h.settings)
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, verifyResponse{Error: form.NotConfiguredMessage})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(body)
}

func (h *handler) verify(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)

	value, err := h.submittedValue(r)
	if err != nil {
		h.log.Debug("read submission failed", "err", err, "request_id", middleware.GetReqID(r.Context()))
		writeJSON(w, http.StatusBadRequest, verifyResponse{Error: form.FailedMessage})
		return
	}

	if h.settings.Secret == "" {
		writeJSON(w, http.StatusServiceUnavailable, verifyResponse{Error: form.NotConfiguredMessage})
		return
	}

	outcome := h.captcha.ValidateSubmission(r.Context(), value, h.settings)
	if !outcome.OK() {
		writeJSON(w, http.StatusBadRequest, verifyResponse{Error: form.UserMessage(outcome)})
		return
	}
	writeJSON(w, http.StatusOK, verifyResponse{Verified: true})
}

// submittedValue reads the payload from a JSON body or from the configured
// form field. An absent value is not an error; the captcha reports it.
func (h *handler) submittedValue(r *http.Request) (string, error) {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "application/json" {
		var req verifyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			return "", err
		}
		return req.Payload, nil
	}
	if err := r.ParseForm(); err != nil {
		return "", err
	}
	field := h.settings.Field
	if field == "" {
		field = form.FieldCurrent
	}
	return strings.TrimSpace(r.PostForm.Get(field)), nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func requestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				log.Debug("http request",
					"method", r.Method,
					"path", r.URL.Path,
					"status", ww.Status(),
					"bytes", ww.BytesWritten(),
					"duration", time.Since(start).String(),
					"request_id", middleware.GetReqID(r.Context()),
				)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
