package async

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/po-tracker/internal/common"
	"github.com/joseph-ayodele/po-tracker/internal/core"
)

type fakeProcessor struct {
	mu   sync.Mutex
	seen map[string]string // path -> request id
}

func (f *fakeProcessor) ProcessFile(ctx context.Context, path string) (core.Result, error) {
	f.mu.Lock()
	f.seen[path] = common.RequestIDFromContext(ctx)
	f.mu.Unlock()
	if path == "bad.pdf" {
		return core.Result{Path: path}, errors.New("boom")
	}
	return core.Result{Path: path}, nil
}

func TestProcessorQueue(t *testing.T) {
	proc := &fakeProcessor{seen: map[string]string{}}

	var mu sync.Mutex
	results := map[string]error{}
	q := NewProcessorQueue(proc, nil,
		WithWorkers(3),
		WithQueueSize(1),
		WithResultFunc(func(job Job, res core.Result, err error) {
			mu.Lock()
			defer mu.Unlock()
			results[job.Path] = err
		}),
	)

	paths := []string{"a.pdf", "b.txt", "bad.pdf", "c.png"}
	for _, p := range paths {
		require.NoError(t, q.Enqueue(context.Background(), Job{Path: p, TraceID: "trace-" + p}))
	}
	q.Shutdown(context.Background())

	require.Len(t, results, len(paths))
	for _, p := range paths {
		if p == "bad.pdf" {
			assert.Error(t, results[p])
		} else {
			assert.NoError(t, results[p], p)
		}
		assert.Equal(t, "trace-"+p, proc.seen[p])
	}

	err := q.Enqueue(context.Background(), Job{Path: "late.pdf"})
	assert.ErrorIs(t, err, ErrQueueClosed)
	q.Shutdown(context.Background())
}
