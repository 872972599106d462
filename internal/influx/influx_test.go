package influx

import (
	"compress/gzip"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OCAP2/objectives/pkg/core"
)

func TestTransitionPoint(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	p := TransitionPoint(core.Transition{
		Description: "Kill 4 imps",
		Map:         "MAP01",
		Category:    "kill",
		State:       "active",
		Current:     1,
		Target:      4,
		Time:        at,
	})

	assert.Equal(t, MeasurementTransition, p.Name())
	tags := map[string]string{}
	for _, tag := range p.TagList() {
		tags[tag.Key] = tag.Value
	}
	assert.Equal(t, map[string]string{"map": "MAP01", "state": "active", "category": "kill"}, tags)

	fields := map[string]any{}
	for _, f := range p.FieldList() {
		fields[f.Key] = f.Value
	}
	assert.InDelta(t, 0.25, fields["progress"], 1e-9)
	assert.Equal(t, "Kill 4 imps", fields["description"])
	assert.Equal(t, at, p.Time())
}

func TestTransitionPoint_NoTarget(t *testing.T) {
	p := TransitionPoint(core.Transition{Description: "Escape", State: "completed"})
	for _, f := range p.FieldList() {
		if f.Key == "progress" {
			assert.InDelta(t, 1.0, f.Value, 1e-9)
			return
		}
	}
	t.Fatal("progress field missing")
}

type recordingWriter struct {
	points []*influxdb2_write.Point
	err    error
}

func (w *recordingWriter) WritePoint(p *influxdb2_write.Point) error {
	w.points = append(w.points, p)
	return w.err
}

type errorLog struct{ errors []string }

func (l *errorLog) Debug(string, ...any)       {}
func (l *errorLog) Info(string, ...any)        {}
func (l *errorLog) Error(msg string, _ ...any) { l.errors = append(l.errors, msg) }

func TestListener_WritesTransitions(t *testing.T) {
	w := &recordingWriter{}
	l := NewListener(w, &errorLog{})

	o := core.Objective{Description: "Find the key", Category: core.CategoryCollect, Target: 1, Map: "E1M1"}
	l.Activated(o)
	o.State = core.StateCompleted
	o.Current = 1
	l.Completed(o)
	l.AllRequiredComplete("E1M1")

	require.Len(t, w.points, 2)
	for _, tag := range w.points[1].TagList() {
		if tag.Key == "state" {
			assert.Equal(t, "completed", tag.Value)
		}
	}
}

func TestListener_LogsWriteErrors(t *testing.T) {
	w := &recordingWriter{err: errors.New("down")}
	log := &errorLog{}
	NewListener(w, log).Failed(core.Objective{Description: "x", State: core.StateFailed})
	assert.Len(t, log.errors, 1)
}

func TestConnect_Disabled(t *testing.T) {
	viper.Reset()
	defer viper.Reset()
	viper.Set("influx.enabled", false)

	m := NewManager(zerolog.Nop(), filepath.Join(t.TempDir(), "backup.lp.gz"))
	assert.Error(t, m.Connect())
}

func TestWritePoint_Backup(t *testing.T) {
	viper.Reset()
	defer viper.Reset()
	viper.Set("influx.enabled", true)
	viper.Set("influx.protocol", "http")
	viper.Set("influx.host", "127.0.0.1")
	viper.Set("influx.port", "1")
	viper.Set("influx.bucket", "objectives")

	path := filepath.Join(t.TempDir(), "backup.lp.gz")
	m := NewManager(zerolog.Nop(), path)
	require.NoError(t, m.Connect())
	assert.False(t, m.IsValid)

	require.NoError(t, m.WritePoint(TransitionPoint(core.Transition{Description: "Escape", Map: "MAP01", State: "completed"})))
	require.NoError(t, m.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	gz, err := gzip.NewReader(f)
	require.NoError(t, err)
	data, err := io.ReadAll(gz)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), MeasurementTransition+","), string(data))
	assert.Contains(t, string(data), "map=MAP01")
}

func TestWritePoint_NoBackend(t *testing.T) {
	m := &Manager{}
	assert.Error(t, m.WritePoint(TransitionPoint(core.Transition{})))
}
