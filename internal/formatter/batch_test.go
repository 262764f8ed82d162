package formatter

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestBatch(t *testing.T, exit string, chunk int) *Batch {
	t.Helper()
	cmd := helperCommand(t, "batch")
	t.Setenv("FF_HELPER_EXIT", exit)
	var out bytes.Buffer
	return &Batch{Command: cmd, ChunkSize: chunk, Stdout: &out, Stderr: &out}
}

func TestBatchCheckStatusOneMeansWouldChange(t *testing.T) {
	b := newTestBatch(t, "1", 0)
	res := b.Run(context.Background(), []string{"a.py", "b.py"}, true, false)
	assert.True(t, res.WouldChange)
	assert.False(t, res.Failed)
	assert.Equal(t, 2, res.Files)
}

func TestBatchCheckOtherStatusFails(t *testing.T) {
	b := newTestBatch(t, "123", 0)
	res := b.Run(context.Background(), []string{"a.py"}, true, false)
	assert.False(t, res.WouldChange)
	assert.True(t, res.Failed)
	assert.Len(t, res.Errors, 1)
}

func TestBatchApplyNonZeroFails(t *testing.T) {
	b := newTestBatch(t, "1", 0)
	res := b.Run(context.Background(), []string{"a.py"}, false, false)
	assert.False(t, res.WouldChange)
	assert.True(t, res.Failed)
}

func TestBatchSuccessInChunks(t *testing.T) {
	b := newTestBatch(t, "0", 2)
	res := b.Run(context.Background(), []string{"a.py", "b.py", "c.py"}, false, true)
	assert.False(t, res.WouldChange)
	assert.False(t, res.Failed)
}

func TestBatchMissingCommand(t *testing.T) {
	var out bytes.Buffer
	b := &Batch{Command: []string{"/nonexistent/black"}, Stdout: &out, Stderr: &out}
	res := b.Run(context.Background(), []string{"a.py"}, true, false)
	assert.True(t, res.Failed)
}

func TestBatchNothingToDo(t *testing.T) {
	b := &Batch{Command: []string{"/nonexistent/black"}}
	res := b.Run(context.Background(), nil, true, false)
	assert.False(t, res.Failed)
	assert.Zero(t, res.Files)
}
