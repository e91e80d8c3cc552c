package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_Levels(t *testing.T) {
	var quiet bytes.Buffer
	l := New(&quiet, false)
	l.Debug("hidden")
	l.Info("hidden")
	l.Warn("shown")
	assert.NotContains(t, quiet.String(), "hidden")
	assert.Contains(t, quiet.String(), "shown")

	var verbose bytes.Buffer
	New(&verbose, true).Debug("debug line")
	assert.Contains(t, verbose.String(), "debug line")
}
