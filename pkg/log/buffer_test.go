package log_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/forgebuild/forge/pkg/log"
	"github.com/stretchr/testify/assert"
)

func TestBufferedFlushPreservesOrder(t *testing.T) {
	t.Parallel()

	buffered := log.NewBuffered()
	buffered.Info("first")
	buffered.Warnf("second %d", 2)
	buffered.Error("third")

	var out bytes.Buffer
	dest := log.New(&out, log.TraceLevel)

	buffered.Flush(dest)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Len(t, lines, 3)
	assert.Contains(t, lines[0], "first")
	assert.Contains(t, lines[1], "second 2")
	assert.Contains(t, lines[2], "third")
}

func TestBufferedWithFieldAppliesToAllFlushed(t *testing.T) {
	t.Parallel()

	buffered := log.NewBuffered().WithField("project", "a").(*log.Buffered)
	buffered.Info("hello")

	var out bytes.Buffer
	dest := log.New(&out, log.TraceLevel)
	buffered.Flush(dest)

	assert.Contains(t, out.String(), "project=a")
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	lvl, ok := log.ParseLevel("warn")
	assert.True(t, ok)
	assert.Equal(t, log.WarnLevel, lvl)

	_, ok = log.ParseLevel("bogus")
	assert.False(t, ok)
}
