package main

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// syncRecorder is a WriteSyncer that remembers whether it was synced.
type syncRecorder struct {
	bytes.Buffer
	synced bool
}

func (s *syncRecorder) Sync() error {
	s.synced = true
	return nil
}

func TestExitWithError_SyncsLoggerBeforeExit(t *testing.T) {
	out := &syncRecorder{}
	core := zapcore.NewCore(zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), out, zapcore.InfoLevel)
	log := zap.New(core)

	var code int
	var syncedAtExit bool
	orig := exit
	t.Cleanup(func() { exit = orig })
	exit = func(c int) {
		code = c
		syncedAtExit = out.synced
	}

	exitWithError(log, "homedash stopped", errors.New("address already in use"))

	assert.Equal(t, 1, code)
	assert.True(t, syncedAtExit, "logger must be synced before the process exits")
	assert.Contains(t, out.String(), `"msg":"homedash stopped"`)
	assert.Contains(t, out.String(), "address already in use")
}
