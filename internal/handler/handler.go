// Package handler exposes the prompt and catalog store over JSON HTTP.
package handler

import (
	"context"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xenking/studio-lights/internal/domain/background"
	"github.com/xenking/studio-lights/internal/domain/generation"
	"github.com/xenking/studio-lights/internal/domain/lighting"
	"github.com/xenking/studio-lights/internal/domain/prompt"
	"github.com/xenking/studio-lights/internal/domain/store"
)

// maxBodyBytes caps request bodies. Generation log payloads are a few
// hundred bytes.
const maxBodyBytes = 64 << 10

// LogAppender persists generation logs. *generation.Recorder satisfies it.
type LogAppender interface {
	Append(ctx context.Context, l *generation.Log) (uuid.UUID, error)
}

// Handler serves the public read API over the catalog tables and the public
// insert API over generation logs.
type Handler struct {
	prompts     prompt.Repository
	schemes     lighting.Repository
	backgrounds background.Repository
	logs        LogAppender
}

// NewHandler constructs a Handler with the required store dependencies.
func NewHandler(
	prompts prompt.Repository,
	schemes lighting.Repository,
	backgrounds background.Repository,
	logs LogAppender,
) *Handler {
	return &Handler{
		prompts:     prompts,
		schemes:     schemes,
		backgrounds: backgrounds,
		logs:        logs,
	}
}

// Register mounts the API routes on mux under /api.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/prompts/{name}", h.GetPrompt)
	mux.HandleFunc("GET /api/lighting-schemes", h.ListLightingSchemes)
	mux.HandleFunc("GET /api/lighting-schemes/{id}", h.GetLightingScheme)
	mux.HandleFunc("GET /api/backgrounds", h.ListBackgrounds)
	mux.HandleFunc("GET /api/backgrounds/{id}", h.GetBackground)
	mux.HandleFunc("POST /api/generation-logs", h.CreateGenerationLog)
}

func writeJSON(w http.ResponseWriter, status int, encode func(e *jx.Encoder)) {
	e := jx.GetEncoder()
	defer jx.PutEncoder(e)
	encode(e)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

// writeError writes the {"code", "message"} error body.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("code", func(e *jx.Encoder) { e.Int(status) })
			e.Field("message", func(e *jx.Encoder) { e.Str(message) })
		})
	})
}

// writeStoreError maps the store taxonomy onto HTTP statuses. Unclassified
// errors are logged and reported as 500 without details.
func writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		notFound   *store.NotFoundError
		validation *store.ValidationError
	)
	switch {
	case errors.As(err, &notFound):
		writeError(w, http.StatusNotFound, notFound.Error())
	case errors.As(err, &validation):
		writeError(w, http.StatusBadRequest, validation.Error())
	case errors.Is(err, store.ErrConstraintViolation):
		writeError(w, http.StatusConflict, "constraint violation")
	case errors.Is(err, store.ErrUnavailable):
		zctx.From(r.Context()).Warn("Store unavailable", zap.Error(err))
		w.Header().Set("Retry-After", "1")
		writeError(w, http.StatusServiceUnavailable, "store unavailable")
	default:
		zctx.From(r.Context()).Error("Request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
