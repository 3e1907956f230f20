package eval

import (
	"bytes"
	"io"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLockWriter(t *testing.T) {
	var mu sync.Mutex
	assert.Equal(t, io.Discard, lockWriter(&mu, nil))
	assert.Equal(t, os.Stderr, lockWriter(&mu, os.Stderr))

	var buf bytes.Buffer
	w := lockWriter(&mu, &buf)
	assert.IsType(t, syncWriter{}, w)
	assert.Equal(t, w, lockWriter(&mu, w), "already locked writers are not wrapped again")
}

func TestSyncWriter_ConcurrentWrites(t *testing.T) {
	var mu sync.Mutex
	var buf bytes.Buffer
	w := lockWriter(&mu, &buf)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				w.Write([]byte("x"))
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1000, buf.Len())
}

type panicWriter struct{}

func (panicWriter) Write([]byte) (int, error) { panic("boom") }

func TestPlumbing_OutputPanicIsAnError(t *testing.T) {
	var pl plumbing
	f, err := pl.outputFile(panicWriter{})
	require.NoError(t, err)
	f.Write([]byte("data"))
	pl.closeChildSide()

	err = pl.g.Wait()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestPlumbing_InputFile(t *testing.T) {
	var pl plumbing
	f, err := pl.inputFile(bytes.NewBufferString("hello"))
	require.NoError(t, err)
	data, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
	pl.closeChildSide()

	nullIn, err := pl.inputFile(nil)
	require.NoError(t, err)
	assert.Equal(t, devNull, nullIn)
}
