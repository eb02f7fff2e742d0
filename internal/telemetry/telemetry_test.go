package telemetry_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/forgebuild/forge/internal/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitDisabledThenTraceTaskIsNoop(t *testing.T) {
	require.NoError(t, telemetry.Init(telemetry.Options{Enabled: false}))

	called := false

	err := telemetry.TraceTask(context.Background(), "compile", "compiles sources", func(context.Context) error {
		called = true
		return nil
	})

	require.NoError(t, err)
	assert.True(t, called)
}

func TestInitEnabledWritesSpanOutput(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, telemetry.Init(telemetry.Options{Enabled: true, Writer: &buf}))

	err := telemetry.TraceTask(context.Background(), "package-jar", "packages the jar", func(context.Context) error {
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, telemetry.Shutdown(context.Background()))

	assert.Contains(t, buf.String(), "package-jar")
}

func TestTraceTaskPropagatesActionError(t *testing.T) {
	require.NoError(t, telemetry.Init(telemetry.Options{Enabled: false}))

	boom := errors.New("boom")

	err := telemetry.TraceTask(context.Background(), "compile", "", func(context.Context) error {
		return boom
	})

	assert.ErrorIs(t, err, boom)
}

func TestShutdownWithoutInitIsNoop(t *testing.T) {
	assert.NoError(t, telemetry.Shutdown(context.Background()))
}
