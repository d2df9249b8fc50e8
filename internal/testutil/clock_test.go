package testutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequence_StartsAtZero(t *testing.T) {
	seq := NewSequence()
	assert.Equal(t, int64(0), seq.Current())
}

func TestSequence_NextIncrements(t *testing.T) {
	seq := NewSequence()

	assert.Equal(t, int64(1), seq.Next())
	assert.Equal(t, int64(2), seq.Next())
	assert.Equal(t, int64(3), seq.Next())
	assert.Equal(t, int64(3), seq.Current())
}

func TestSequence_Reset(t *testing.T) {
	seq := NewSequence()
	seq.Next()
	seq.Next()

	seq.Reset()

	assert.Equal(t, int64(0), seq.Current())
	assert.Equal(t, int64(1), seq.Next())
}

func TestSequence_UniqueUnderContention(t *testing.T) {
	seq := NewSequence()
	const workers = 20
	const perWorker = 50

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = make(map[int64]bool, workers*perWorker)
	)
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				v := seq.Next()
				mu.Lock()
				seen[v] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Len(t, seen, workers*perWorker)
	assert.Equal(t, int64(workers*perWorker), seq.Current())
}
