package generation

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/xenking/studio-lights/internal/domain/lighting"
	"github.com/xenking/studio-lights/internal/domain/store"
)

// --- Mock implementations ---

type mockLogRepo struct {
	appended []*Log
	id       uuid.UUID
	err      error
}

func (m *mockLogRepo) Append(_ context.Context, l *Log) (uuid.UUID, error) {
	if m.err != nil {
		return uuid.Nil, m.err
	}
	m.appended = append(m.appended, l)
	return m.id, nil
}

func (m *mockLogRepo) ListRecent(_ context.Context, _ int) ([]Log, error) {
	return nil, nil
}

func (m *mockLogRepo) Stats(_ context.Context, _ time.Time) (*Stats, error) {
	return &Stats{}, nil
}

func (m *mockLogRepo) Stream(_ context.Context, _ time.Time, _ func(Log) error) error {
	return nil
}

type mockSchemeRepo struct {
	active map[string]bool
	err    error
}

func (m *mockSchemeRepo) ListActive(_ context.Context) ([]lighting.Scheme, error) {
	return nil, nil
}

func (m *mockSchemeRepo) GetActive(_ context.Context, id string) (*lighting.Scheme, error) {
	if m.err != nil {
		return nil, m.err
	}
	if !m.active[id] {
		return nil, &store.NotFoundError{Kind: "lighting scheme", Key: id}
	}
	return &lighting.Scheme{ID: id, IsActive: true}, nil
}

func (m *mockSchemeRepo) Create(_ context.Context, _ *lighting.Scheme) error {
	return nil
}

// --- Helpers ---

func validLog() *Log {
	ms := 4200
	passed := true
	return &Log{
		UserID:               "user-1",
		Orientation:          OrientationStanding,
		LightingScheme:       "softbox",
		BackgroundType:       BackgroundText,
		Quality:              Quality2K,
		VerificationPassed:   &passed,
		VerificationAttempts: 1,
		GenerationTimeMS:     &ms,
	}
}

func newRecorder(t *testing.T, cfg RecorderConfig, logs Repository, schemes lighting.Repository) *Recorder {
	t.Helper()
	r, err := NewRecorder(cfg, logs, schemes, noop.NewMeterProvider().Meter("test"))
	require.NoError(t, err)
	return r
}

// --- Tests ---

func TestLogValidate(t *testing.T) {
	negative := -1
	tooLong := math.MaxInt32 + 1

	tests := []struct {
		name   string
		mutate func(l *Log)
		field  string
	}{
		{name: "valid", mutate: func(*Log) {}},
		{name: "missing orientation", mutate: func(l *Log) { l.Orientation = "" }, field: "orientation"},
		{name: "missing lighting scheme", mutate: func(l *Log) { l.LightingScheme = "" }, field: "lighting_scheme"},
		{name: "missing background type", mutate: func(l *Log) { l.BackgroundType = "" }, field: "background_type"},
		{name: "missing quality", mutate: func(l *Log) { l.Quality = "" }, field: "quality"},
		{name: "unknown orientation", mutate: func(l *Log) { l.Orientation = "sideways" }, field: "orientation"},
		{name: "unknown background type", mutate: func(l *Log) { l.BackgroundType = "video" }, field: "background_type"},
		{name: "unknown quality", mutate: func(l *Log) { l.Quality = "4K" }, field: "quality"},
		{name: "negative attempts", mutate: func(l *Log) { l.VerificationAttempts = -1 }, field: "verification_attempts"},
		{name: "negative duration", mutate: func(l *Log) { l.GenerationTimeMS = &negative }, field: "generation_time_ms"},
		{name: "attempts over int4", mutate: func(l *Log) { l.VerificationAttempts = math.MaxInt32 + 1 }, field: "verification_attempts"},
		{name: "duration over int4", mutate: func(l *Log) { l.GenerationTimeMS = &tooLong }, field: "generation_time_ms"},
		{name: "duration at int4 max", mutate: func(l *Log) {
			v := math.MaxInt32
			l.GenerationTimeMS = &v
		}},
		{name: "optional fields absent", mutate: func(l *Log) {
			l.UserID = ""
			l.VerificationPassed = nil
			l.GenerationTimeMS = nil
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := validLog()
			tt.mutate(l)

			err := l.Validate()
			if tt.field == "" {
				require.NoError(t, err)
				return
			}

			var vErr *store.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.field, vErr.Field)
			assert.ErrorIs(t, err, store.ErrValidation)
		})
	}
}

func TestRecorderAppend(t *testing.T) {
	id := uuid.New()
	logs := &mockLogRepo{id: id}
	r := newRecorder(t, RecorderConfig{}, logs, nil)

	got, err := r.Append(context.Background(), validLog())
	require.NoError(t, err)
	assert.Equal(t, id, got)
	require.Len(t, logs.appended, 1)
	assert.Equal(t, "softbox", logs.appended[0].LightingScheme)
}

func TestRecorderAppend_ValidationSkipsStore(t *testing.T) {
	logs := &mockLogRepo{id: uuid.New()}
	r := newRecorder(t, RecorderConfig{}, logs, nil)

	l := validLog()
	l.Quality = ""

	_, err := r.Append(context.Background(), l)
	require.ErrorIs(t, err, store.ErrValidation)
	assert.Empty(t, logs.appended)
}

func TestRecorderAppend_LooseReferences(t *testing.T) {
	logs := &mockLogRepo{id: uuid.New()}
	r := newRecorder(t, RecorderConfig{}, logs, &mockSchemeRepo{})

	l := validLog()
	l.LightingScheme = "softbxo"

	_, err := r.Append(context.Background(), l)
	require.NoError(t, err)
	assert.Len(t, logs.appended, 1)
}

func TestRecorderAppend_StrictReferences(t *testing.T) {
	schemes := &mockSchemeRepo{active: map[string]bool{"softbox": true}}

	t.Run("known scheme", func(t *testing.T) {
		logs := &mockLogRepo{id: uuid.New()}
		r := newRecorder(t, RecorderConfig{StrictReferences: true}, logs, schemes)

		_, err := r.Append(context.Background(), validLog())
		require.NoError(t, err)
		assert.Len(t, logs.appended, 1)
	})

	t.Run("unknown scheme", func(t *testing.T) {
		logs := &mockLogRepo{id: uuid.New()}
		r := newRecorder(t, RecorderConfig{StrictReferences: true}, logs, schemes)

		l := validLog()
		l.LightingScheme = "softbxo"

		_, err := r.Append(context.Background(), l)
		var vErr *store.ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "lighting_scheme", vErr.Field)
		assert.Empty(t, logs.appended)
	})

	t.Run("catalog unavailable", func(t *testing.T) {
		logs := &mockLogRepo{id: uuid.New()}
		down := &mockSchemeRepo{err: &store.UnavailableError{Op: "get lighting scheme", Err: errors.New("dial tcp: refused")}}
		r := newRecorder(t, RecorderConfig{StrictReferences: true}, logs, down)

		_, err := r.Append(context.Background(), validLog())
		require.ErrorIs(t, err, store.ErrUnavailable)
		assert.Empty(t, logs.appended)
	})
}

func TestNewRecorder_StrictNeedsSchemes(t *testing.T) {
	_, err := NewRecorder(RecorderConfig{StrictReferences: true}, &mockLogRepo{}, nil, noop.NewMeterProvider().Meter("test"))
	require.Error(t, err)
}

func TestRecorderAppend_StoreError(t *testing.T) {
	logs := &mockLogRepo{err: &store.UnavailableError{Op: "append generation log", Err: errors.New("timeout")}}
	r := newRecorder(t, RecorderConfig{}, logs, nil)

	_, err := r.Append(context.Background(), validLog())
	require.ErrorIs(t, err, store.ErrUnavailable)
	assert.Contains(t, err.Error(), "append generation log")
}
