package handler

import (
	"io"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/xenking/studio-lights/internal/domain/generation"
	"github.com/xenking/studio-lights/internal/domain/store"
)

// CreateGenerationLog appends one generation log and returns its id.
func (h *Handler) CreateGenerationLog(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "read request body")
		return
	}

	l, err := decodeGenerationLog(body)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}

	id, err := h.logs.Append(r.Context(), l)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("id", func(e *jx.Encoder) { e.Str(id.String()) })
			e.Field("created_at", func(e *jx.Encoder) { encodeTime(e, l.CreatedAt) })
		})
	})
}

// decodeGenerationLog parses the request body. Keys follow the
// generation_logs column names; unknown keys are ignored. Syntax and type
// errors are reported as *store.ValidationError.
func decodeGenerationLog(body []byte) (*generation.Log, error) {
	// Valid also rejects anything after the top-level value.
	if !jx.Valid(body) {
		return nil, &store.ValidationError{Reason: "malformed JSON body"}
	}

	var l generation.Log
	d := jx.DecodeBytes(body)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "user_id":
			l.UserID, err = optionalStr(d)
		case "orientation":
			var v string
			v, err = d.Str()
			l.Orientation = generation.Orientation(v)
		case "lighting_scheme":
			l.LightingScheme, err = d.Str()
		case "background_type":
			var v string
			v, err = d.Str()
			l.BackgroundType = generation.BackgroundType(v)
		case "quality":
			var v string
			v, err = d.Str()
			l.Quality = generation.Quality(v)
		case "has_master":
			l.HasMaster, err = d.Bool()
		case "has_cached_bg":
			l.HasCachedBackground, err = d.Bool()
		case "verification_passed":
			if d.Next() == jx.Null {
				return d.Null()
			}
			var v bool
			v, err = d.Bool()
			l.VerificationPassed = &v
		case "verification_attempts":
			l.VerificationAttempts, err = d.Int()
		case "generation_time_ms":
			if d.Next() == jx.Null {
				return d.Null()
			}
			var v int
			v, err = d.Int()
			l.GenerationTimeMS = &v
		default:
			return d.Skip()
		}
		if err != nil {
			return &store.ValidationError{Field: key, Reason: err.Error()}
		}
		return nil
	})
	if err != nil {
		var vErr *store.ValidationError
		if errors.As(err, &vErr) {
			return nil, vErr
		}
		return nil, &store.ValidationError{Reason: "malformed JSON body"}
	}
	return &l, nil
}

func optionalStr(d *jx.Decoder) (string, error) {
	if d.Next() == jx.Null {
		return "", d.Null()
	}
	return d.Str()
}
