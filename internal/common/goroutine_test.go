package common

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
)

func TestSafeGo_RecoversPanics(t *testing.T) {
	done := make(chan struct{})
	SafeGo(arbor.NewLogger(), "panicking", func() {
		defer close(done)
		panic("boom")
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("goroutine did not run")
	}

	ran := make(chan struct{})
	SafeGo(nil, "normal", func() { close(ran) })
	<-ran
}

func TestWriteCrashFile(t *testing.T) {
	dir := t.TempDir()
	InstallCrashHandler(dir)
	t.Cleanup(func() { CrashLogDir = "./logs" })

	path := WriteCrashFile("boom", "stack here")
	require.NotEmpty(t, path)
	assert.True(t, strings.HasPrefix(path, dir))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "PLACESBRIDGE CRASH REPORT")
	assert.Contains(t, string(content), "boom")
	assert.Contains(t, string(content), "stack here")
}
