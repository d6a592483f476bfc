package handler

import (
	"net/http"
	"time"

	"github.com/go-faster/jx"

	"github.com/xenking/studio-lights/internal/domain/background"
	"github.com/xenking/studio-lights/internal/domain/lighting"
	"github.com/xenking/studio-lights/internal/domain/prompt"
)

// GetPrompt returns the active prompt template with the given name.
func (h *Handler) GetPrompt(w http.ResponseWriter, r *http.Request) {
	p, err := h.prompts.GetActive(r.Context(), r.PathValue("name"))
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodePrompt(e, p) })
}

// ListLightingSchemes returns active lighting schemes in display order.
func (h *Handler) ListLightingSchemes(w http.ResponseWriter, r *http.Request) {
	schemes, err := h.schemes.ListActive(r.Context())
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Arr(func(e *jx.Encoder) {
			for i := range schemes {
				encodeScheme(e, &schemes[i])
			}
		})
	})
}

// GetLightingScheme returns a single active lighting scheme.
func (h *Handler) GetLightingScheme(w http.ResponseWriter, r *http.Request) {
	s, err := h.schemes.GetActive(r.Context(), r.PathValue("id"))
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeScheme(e, s) })
}

// ListBackgrounds returns active background presets in display order.
func (h *Handler) ListBackgrounds(w http.ResponseWriter, r *http.Request) {
	bgs, err := h.backgrounds.ListActive(r.Context())
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Arr(func(e *jx.Encoder) {
			for i := range bgs {
				encodeBackground(e, &bgs[i])
			}
		})
	})
}

// GetBackground returns a single active background preset.
func (h *Handler) GetBackground(w http.ResponseWriter, r *http.Request) {
	b, err := h.backgrounds.GetActive(r.Context(), r.PathValue("id"))
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeBackground(e, b) })
}

func encodePrompt(e *jx.Encoder, p *prompt.Prompt) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Str(p.ID.String()) })
		e.Field("name", func(e *jx.Encoder) { e.Str(p.Name) })
		e.Field("content", func(e *jx.Encoder) { e.Str(p.Content) })
		e.Field("version", func(e *jx.Encoder) { e.Int(p.Version) })
		e.Field("updated_at", func(e *jx.Encoder) { encodeTime(e, p.UpdatedAt) })
	})
}

func encodeScheme(e *jx.Encoder, s *lighting.Scheme) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Str(s.ID) })
		e.Field("name", func(e *jx.Encoder) { e.Str(s.Name) })
		e.Field("description", func(e *jx.Encoder) { e.Str(s.Description) })
		e.Field("prompt_text", func(e *jx.Encoder) { e.Str(s.PromptText) })
		e.Field("sort_order", func(e *jx.Encoder) { e.Int(s.SortOrder) })
	})
}

func encodeBackground(e *jx.Encoder, b *background.Background) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Str(b.ID) })
		e.Field("name", func(e *jx.Encoder) { e.Str(b.Name) })
		e.Field("description", func(e *jx.Encoder) { e.Str(b.Description) })
		e.Field("prompt_text", func(e *jx.Encoder) { e.Str(b.PromptText) })
		e.Field("sort_order", func(e *jx.Encoder) { e.Int(b.SortOrder) })
		e.Field("is_default", func(e *jx.Encoder) { e.Bool(b.IsDefault) })
	})
}

func encodeTime(e *jx.Encoder, t time.Time) {
	if t.IsZero() {
		e.Null()
		return
	}
	e.Str(t.UTC().Format(time.RFC3339Nano))
}
