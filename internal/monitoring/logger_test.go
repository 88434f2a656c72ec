package monitoring

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetLogger(t *testing.T) {
	original := Logf
	t.Cleanup(func() { Logf = original })

	var got []string
	SetLogger(func(format string, v ...interface{}) {
		got = append(got, fmt.Sprintf(format, v...))
	})
	Logf("run %s: %d events", "abc", 3)
	assert.Equal(t, []string{"run abc: 3 events"}, got)

	SetLogger(nil)
	assert.NotPanics(t, func() { Logf("muted %d", 1) })
	assert.Len(t, got, 1)
}

func TestSetOutput(t *testing.T) {
	original := Logf
	t.Cleanup(func() { Logf = original })

	var buf bytes.Buffer
	SetOutput(&buf)
	Logf("migrated to version %d", 1)
	assert.Contains(t, buf.String(), "[trackseed] ")
	assert.Contains(t, buf.String(), "migrated to version 1")

	buf.Reset()
	SetOutput(nil)
	Logf("dropped")
	assert.Empty(t, buf.String())
}
