// Package export writes generation logs as newline-delimited JSON, optionally
// gzip-compressed, for offline analytics.
package export

import (
	"context"
	"io"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	pgzip "github.com/klauspost/pgzip"

	"github.com/xenking/studio-lights/internal/domain/generation"
)

// Source yields generation logs in creation order.
type Source interface {
	Stream(ctx context.Context, since time.Time, fn func(generation.Log) error) error
}

// Options controls an export run.
type Options struct {
	Since time.Time
	Gzip  bool
}

// Logs writes every log created at or after opts.Since to w, one JSON object
// per line. It returns the number of records written.
func Logs(ctx context.Context, w io.Writer, src Source, opts Options) (int, error) {
	out := w
	var zw *pgzip.Writer
	if opts.Gzip {
		zw = pgzip.NewWriter(w)
		out = zw
	}

	var (
		e     jx.Encoder
		count int
	)
	err := src.Stream(ctx, opts.Since, func(l generation.Log) error {
		e.Reset()
		EncodeLog(&e, l)
		if _, err := out.Write(append(e.Bytes(), '\n')); err != nil {
			return errors.Wrap(err, "write record")
		}
		count++
		return nil
	})
	if err != nil {
		if zw != nil {
			_ = zw.Close()
		}
		return count, errors.Wrap(err, "stream logs")
	}

	if zw != nil {
		if err := zw.Close(); err != nil {
			return count, errors.Wrap(err, "flush gzip")
		}
	}
	return count, nil
}

// EncodeLog writes l as a JSON object using the column names of the
// generation_logs table. Absent optional values are encoded as null.
func EncodeLog(e *jx.Encoder, l generation.Log) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Str(l.ID.String()) })
		e.Field("user_id", func(e *jx.Encoder) {
			if l.UserID == "" {
				e.Null()
				return
			}
			e.Str(l.UserID)
		})
		e.Field("orientation", func(e *jx.Encoder) { e.Str(string(l.Orientation)) })
		e.Field("lighting_scheme", func(e *jx.Encoder) { e.Str(l.LightingScheme) })
		e.Field("background_type", func(e *jx.Encoder) { e.Str(string(l.BackgroundType)) })
		e.Field("quality", func(e *jx.Encoder) { e.Str(string(l.Quality)) })
		e.Field("has_master", func(e *jx.Encoder) { e.Bool(l.HasMaster) })
		e.Field("has_cached_bg", func(e *jx.Encoder) { e.Bool(l.HasCachedBackground) })
		e.Field("verification_passed", func(e *jx.Encoder) {
			if l.VerificationPassed == nil {
				e.Null()
				return
			}
			e.Bool(*l.VerificationPassed)
		})
		e.Field("verification_attempts", func(e *jx.Encoder) { e.Int(l.VerificationAttempts) })
		e.Field("generation_time_ms", func(e *jx.Encoder) {
			if l.GenerationTimeMS == nil {
				e.Null()
				return
			}
			e.Int(*l.GenerationTimeMS)
		})
		e.Field("created_at", func(e *jx.Encoder) { e.Str(l.CreatedAt.UTC().Format(time.RFC3339Nano)) })
	})
}
