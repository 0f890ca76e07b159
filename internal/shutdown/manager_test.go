package shutdown

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"twinview/internal/logger"
)

func TestShutdownRunsInReverseOrderOnce(t *testing.T) {
	m := NewManager(logger.NewNop(), time.Second)

	var mu sync.Mutex
	var order []string
	record := func(name string) Func {
		return func() {
			mu.Lock()
			defer mu.Unlock()
			order = append(order, name)
		}
	}
	m.Register("loader", record("loader"))
	m.Register("watcher", record("watcher"))
	m.Register("panels", record("panels"))

	m.Shutdown()
	m.Shutdown()

	assert.Equal(t, []string{"panels", "watcher", "loader"}, order)
	assert.Error(t, m.Context().Err())
	select {
	case <-m.Done():
	default:
		t.Fatal("done not closed")
	}
}

func TestShutdownSkipsStuckComponent(t *testing.T) {
	m := NewManager(logger.NewNop(), 20*time.Millisecond)
	block := make(chan struct{})
	defer close(block)

	ran := false
	m.Register("after", Func(func() { ran = true }))
	m.Register("stuck", Func(func() { <-block }))

	start := time.Now()
	m.Shutdown()
	assert.True(t, ran)
	assert.Less(t, time.Since(start), 2*time.Second)
}
