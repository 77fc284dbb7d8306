package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerErrorIncludesContextFields(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "test", Level: ParseLevel("debug"), Output: buf, Format: "json"})

	ctx := log.WithRequestID(context.Background(), "req-123")
	ctx = log.WithTrackingCode(ctx, "12345678901")

	log.Error(ctx, "boom", errors.New("boom"))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "req-123", entry["request_id"])
	assert.Equal(t, "12345678901", entry["tracking_code"])
	assert.Equal(t, "test", entry["service"])
	assert.Equal(t, "boom", entry["error"])
	assert.Contains(t, entry, "stack")
}

func TestLoggerWarnStackToggle(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "test", Output: buf, Format: "json"})
	log.Warn(context.Background(), "plain")
	assert.NotContains(t, buf.String(), `"stack"`)

	buf.Reset()
	log = New(Options{ServiceName: "test", Output: buf, Format: "json", WarnStack: true})
	log.Warn(context.Background(), "stacked")
	assert.Contains(t, buf.String(), `"stack"`)
}

func TestWithFieldsDoesNotLeakIntoParent(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "test", Output: buf, Format: "json"})

	parent := context.Background()
	_ = log.WithFields(parent, map[string]any{"payment_id": 7})
	log.Info(parent, "parent")

	assert.NotContains(t, buf.String(), "payment_id")
}

func TestParseLevelDefaults(t *testing.T) {
	assert.Equal(t, zerolog.InfoLevel, ParseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("invalid"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel(" WARN "))
}

func TestWithFieldsRedactsSecrets(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "test", Output: buf, Format: "json"})

	ctx := log.WithFields(context.Background(), map[string]any{
		"Password":     "hunter2",
		"secret_key":   "sk_live",
		"payment_type": "pix",
	})
	ctx = log.WithField(ctx, "token", "eyJ")
	log.Info(ctx, "redacted")

	out := buf.String()
	assert.NotContains(t, out, "hunter2")
	assert.NotContains(t, out, "sk_live")
	assert.NotContains(t, out, "eyJ")
	assert.Contains(t, out, `"payment_type":"pix"`)
	assert.Contains(t, out, "[redacted]")
}

func TestLoggerTagsInstance(t *testing.T) {
	t.Setenv("DYNO", "")
	t.Setenv("HOSTNAME", "api-7f9c")
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "test", Output: buf, Format: "json"})
	log.Info(context.Background(), "hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "api-7f9c", entry["instance"])

	t.Setenv("DYNO", "worker.1")
	buf.Reset()
	New(Options{ServiceName: "test", Output: buf, Format: "json"}).Info(context.Background(), "hello")
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "worker.1", entry["instance"])
}
