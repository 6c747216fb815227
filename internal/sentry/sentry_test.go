package sentry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInitialize_EmptyDSNDisables(t *testing.T) {
	assert.NoError(t, Initialize(Config{}))
}

func TestInitialize_InvalidDSN(t *testing.T) {
	err := Initialize(Config{DSN: "not-a-dsn"})
	assert.Error(t, err)
}

func TestCaptureHelpers_NoopWhenDisabled(t *testing.T) {
	// Without a client configured these must not panic.
	CaptureException(assert.AnError)
	CaptureMessage("test message")
	Flush(0)
}
