package dispatcher

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testLogger implements Logger for testing
type testLogger struct {
	mu       sync.Mutex
	messages []string
}

func (l *testLogger) Debug(msg string, keysAndValues ...any) {
	l.add("DEBUG", msg, keysAndValues)
}

func (l *testLogger) Info(msg string, keysAndValues ...any) {
	l.add("INFO", msg, keysAndValues)
}

func (l *testLogger) Error(msg string, keysAndValues ...any) {
	l.add("ERROR", msg, keysAndValues)
}

func (l *testLogger) add(level, msg string, kv []any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, fmt.Sprintf("%s: %s %v", level, msg, kv))
}

func (l *testLogger) count(prefix string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, m := range l.messages {
		if strings.HasPrefix(m, prefix) {
			n++
		}
	}
	return n
}

func newTestDispatcher(t *testing.T) (*Dispatcher, *testLogger) {
	t.Helper()
	logger := &testLogger{}
	d, err := New(logger)
	require.NoError(t, err)
	return d, logger
}

func TestDispatcher_SyncHandler(t *testing.T) {
	d, _ := newTestDispatcher(t)

	var got Event
	d.Register(":TEST:", func(e Event) (any, error) {
		got = e
		return "result", nil
	})

	result, err := d.Dispatch(Event{Command: ":TEST:", Args: []string{"arg1"}})

	require.NoError(t, err)
	assert.Equal(t, "result", result)
	assert.Equal(t, []string{"arg1"}, got.Args)
}

func TestDispatcher_UnknownCommand(t *testing.T) {
	d, _ := newTestDispatcher(t)

	_, err := d.Dispatch(Event{Command: ":UNKNOWN:"})

	assert.EqualError(t, err, "unknown command: :UNKNOWN:")
}

func TestDispatcher_HandlersRunOneAtATime(t *testing.T) {
	d, _ := newTestDispatcher(t)

	var running, overlap atomic.Int32
	d.Register(":SLOW:", func(e Event) (any, error) {
		if running.Add(1) > 1 {
			overlap.Add(1)
		}
		time.Sleep(time.Millisecond)
		running.Add(-1)
		return nil, nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = d.Dispatch(Event{Command: ":SLOW:"})
		}()
	}
	wg.Wait()

	assert.Zero(t, overlap.Load())
}

func TestDispatcher_LoggedHandler(t *testing.T) {
	d, logger := newTestDispatcher(t)

	d.Register(":LOGGED:", func(e Event) (any, error) {
		return "ok", nil
	}, Logged())

	_, err := d.Dispatch(Event{Command: ":LOGGED:", Args: []string{"a", "b"}})
	require.NoError(t, err)

	assert.Equal(t, 2, logger.count("DEBUG"))
	assert.Zero(t, logger.count("ERROR"))
}

func TestDispatcher_LoggedHandlerError(t *testing.T) {
	d, logger := newTestDispatcher(t)

	d.Register(":ERROR:", func(e Event) (any, error) {
		return nil, fmt.Errorf("test error")
	}, Logged())

	_, err := d.Dispatch(Event{Command: ":ERROR:"})

	assert.Error(t, err)
	assert.Equal(t, 1, logger.count("ERROR: event failed"))
}

func TestDispatcher_Budget(t *testing.T) {
	d, logger := newTestDispatcher(t)

	d.Register(":FAST:", func(e Event) (any, error) { return nil, nil }, Budget(time.Second))
	d.Register(":OVER:", func(e Event) (any, error) {
		time.Sleep(5 * time.Millisecond)
		return nil, nil
	}, Budget(time.Microsecond))

	_, _ = d.Dispatch(Event{Command: ":FAST:"})
	assert.Zero(t, logger.count("ERROR"))

	_, _ = d.Dispatch(Event{Command: ":OVER:"})
	assert.Equal(t, 1, logger.count("ERROR: event over budget"))
}

func TestDispatcher_HasHandlerAndCommands(t *testing.T) {
	d, _ := newTestDispatcher(t)

	d.Register(":B:", func(e Event) (any, error) { return nil, nil })
	d.Register(":A:", func(e Event) (any, error) { return nil, nil })

	assert.True(t, d.HasHandler(":A:"))
	assert.False(t, d.HasHandler(":NOT_EXISTS:"))
	assert.Equal(t, []string{":A:", ":B:"}, d.Commands())
}

func TestDispatcher_ReRegisterReplaces(t *testing.T) {
	d, _ := newTestDispatcher(t)

	d.Register(":X:", func(e Event) (any, error) { return 1, nil })
	d.Register(":X:", func(e Event) (any, error) { return 2, nil }, Logged())

	result, err := d.Dispatch(Event{Command: ":X:"})
	require.NoError(t, err)
	assert.Equal(t, 2, result)
}
