package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/OCAP2/objectives/internal/mission"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

func newTestManager(t *testing.T, level string) (*SlogManager, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	m := NewSlogManager()
	m.Setup(&buf, level, nil)
	return m, &buf
}

func TestSetup_Destination(t *testing.T) {
	restore := captureStdout(t)
	m, file := newTestManager(t, "info")
	m.Logger().Info("objective added")
	assert.Empty(t, restore(), "the host owns stdout once a log file is open")
	assert.Contains(t, file.String(), "objective added")

	restore = captureStdout(t)
	m = NewSlogManager()
	m.Setup(nil, "info", nil)
	m.Logger().Info("no file yet")
	assert.Contains(t, restore(), "no file yet")
}

func TestSetup_Levels(t *testing.T) {
	tests := []struct {
		level     string
		wantDebug bool
	}{
		{"debug", true},
		{"info", false},
		{"bogus", false},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			m, buf := newTestManager(t, tt.level)
			m.Logger().Debug("tick detail")
			m.Logger().Warn("exit blocked")

			assert.Equal(t, tt.wantDebug, bytes.Contains(buf.Bytes(), []byte("tick detail")))
			assert.Contains(t, buf.String(), "exit blocked")
		})
	}
}

func TestSetup_ReplacesLogger(t *testing.T) {
	m, first := newTestManager(t, "info")
	m.Logger().Info("before reload")

	var second bytes.Buffer
	m.Setup(&second, "info", nil)
	m.Logger().Info("after reload")

	assert.NotContains(t, first.String(), "after reload")
	assert.Contains(t, second.String(), "after reload")
}

func TestSetup_WithOTelProvider(t *testing.T) {
	var buf bytes.Buffer
	m := NewSlogManager()
	m.Setup(&buf, "info", sdklog.NewLoggerProvider())

	m.Logger().Info("bridged")
	assert.Contains(t, buf.String(), "bridged")
	assert.NoError(t, m.Flush(context.Background()))
}

func TestManager_BeforeSetup(t *testing.T) {
	m := NewSlogManager()
	assert.Equal(t, slog.Default(), m.Logger())
	assert.NoError(t, m.Flush(context.Background()))
	assert.NotPanics(t, func() { m.WriteLog(":OBJ:ADD:", "ignored", "info") })
}

func TestWriteLog(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", "unknown"} {
		t.Run(level, func(t *testing.T) {
			m, buf := newTestManager(t, "debug")
			m.WriteLog(":OBJ:LOAD:", level+" line", level)

			assert.Contains(t, buf.String(), level+" line")
			assert.Contains(t, buf.String(), "function=:OBJ:LOAD:")
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"DEBUG": slog.LevelDebug,
		"Info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"ERROR": slog.LevelError,
		"":      slog.LevelInfo,
		"loud":  slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLevel(in), "parseLevel(%q)", in)
	}
}

func TestMultiHandler_FanOut(t *testing.T) {
	var a, b bytes.Buffer
	multi := NewMultiHandler(nil, slog.NewTextHandler(&a, nil), nil, slog.NewTextHandler(&b, nil))
	require.Len(t, multi.sinks, 2)

	slog.New(multi).Info("fanned out")
	assert.Contains(t, a.String(), "fanned out")
	assert.Contains(t, b.String(), "fanned out")
}

func TestMultiHandler_Enabled(t *testing.T) {
	ctx := context.Background()
	info := slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelInfo})
	debug := slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelDebug})

	assert.False(t, NewMultiHandler().Enabled(ctx, slog.LevelError))
	assert.False(t, NewMultiHandler(info).Enabled(ctx, slog.LevelDebug))
	assert.True(t, NewMultiHandler(info, debug).Enabled(ctx, slog.LevelDebug))
}

func TestMultiHandler_AttrsAndGroups(t *testing.T) {
	var buf bytes.Buffer
	multi := NewMultiHandler(slog.NewTextHandler(&buf, nil))

	slog.New(multi.WithAttrs([]slog.Attr{slog.String("component", "markers")})).Info("synced")
	assert.Contains(t, buf.String(), "component=markers")

	buf.Reset()
	slog.New(multi.WithGroup("obj")).Info("added", "desc", "Find the key")
	assert.Contains(t, buf.String(), `obj.desc="Find the key"`)

	assert.Same(t, multi, multi.WithGroup(""))
}

type failingSink struct{ slog.Handler }

func (failingSink) Enabled(context.Context, slog.Level) bool  { return true }
func (failingSink) Handle(context.Context, slog.Record) error { return errors.New("sink down") }

func TestMultiHandler_FailingSinkDoesNotStopOthers(t *testing.T) {
	var buf bytes.Buffer
	multi := NewMultiHandler(failingSink{}, slog.NewTextHandler(&buf, nil))

	r := slog.NewRecord(time.Now(), slog.LevelInfo, "still delivered", 0)
	err := multi.Handle(context.Background(), r)

	assert.ErrorContains(t, err, "sink down")
	assert.Contains(t, buf.String(), "still delivered")
}

func TestSetup_WithMissionContext(t *testing.T) {
	mc := mission.NewContext()
	mc.SetMap("E1M1", 3, false)

	var buf bytes.Buffer
	m := NewSlogManager().WithContext(MissionContext(mc))
	m.Setup(&buf, "info", nil)
	m.Logger().Info("objective added")

	assert.Contains(t, buf.String(), "map=E1M1")
	assert.Contains(t, buf.String(), "skill=3")
	assert.NotContains(t, buf.String(), "previousMap=", "nothing was loaded before")

	mc.SetMap("E1M2", 3, false)
	buf.Reset()
	m.Logger().Info("later")
	assert.Contains(t, buf.String(), "map=E1M2", "context is read per record")
	assert.Contains(t, buf.String(), "previousMap=E1M1")
	assert.NotContains(t, buf.String(), "restored=")

	mc.SetMap("E1M2", 3, true)
	buf.Reset()
	m.Logger().Info("after load")
	assert.Contains(t, buf.String(), "restored=true")
}

func TestMissionContext_Nil(t *testing.T) {
	assert.Nil(t, MissionContext(nil)())
}

func TestContextHandler_WithAttrsAndGroup(t *testing.T) {
	var buf bytes.Buffer
	h := NewContextHandler(slog.NewTextHandler(&buf, nil), func() []slog.Attr {
		return []slog.Attr{slog.String("map", "MAP01")}
	})

	slog.New(h.WithAttrs([]slog.Attr{slog.String("component", "store")})).Info("hello")
	assert.Contains(t, buf.String(), "component=store")
	assert.Contains(t, buf.String(), "map=MAP01")

	assert.Equal(t, h, h.WithGroup(""))
	buf.Reset()
	slog.New(h.WithGroup("obj")).Info("grouped")
	assert.Contains(t, buf.String(), "obj.map=MAP01")
}

func TestEnableGraylog(t *testing.T) {
	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	defer conn.Close()

	var buf bytes.Buffer
	m := NewSlogManager()
	require.NoError(t, m.EnableGraylog(conn.LocalAddr().String()))
	m.Setup(&buf, "info", nil)
	m.Logger().Info("to graylog")

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	packet := make([]byte, 8192)
	n, _, err := conn.ReadFrom(packet)
	require.NoError(t, err)
	assert.Greater(t, n, 0)

	assert.NoError(t, m.Close())
	assert.NoError(t, m.Close(), "second close is a no-op")
}

// captureStdout points osStdout at a pipe until the returned func restores it
// and hands back what was written.
func captureStdout(t *testing.T) func() string {
	t.Helper()

	r, w, err := osPipe()
	require.NoError(t, err)
	orig := osStdout
	osStdout = w

	return func() string {
		w.Close()
		osStdout = orig
		var buf bytes.Buffer
		buf.ReadFrom(r)
		r.Close()
		return buf.String()
	}
}
