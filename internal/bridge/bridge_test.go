package bridge

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OCAP2/objectives/internal/dispatcher"
	"github.com/OCAP2/objectives/internal/logging"
	"github.com/OCAP2/objectives/internal/mission"
	"github.com/OCAP2/objectives/internal/objective"
	"github.com/OCAP2/objectives/pkg/core"
)

func newTestService(t *testing.T) (*Service, *objective.Store, *dispatcher.Dispatcher) {
	t.Helper()
	logManager := logging.NewSlogManager()
	logManager.Setup(nil, "info", nil)

	ctx := mission.NewContext()
	store := objective.New(ctx, objective.Config{TickRate: 35}, logManager.Logger())
	store.LoadMap("MAP01", 2, false)

	d, err := dispatcher.New(logManager.Logger())
	require.NoError(t, err)

	svc := NewService(Dependencies{Store: store, LogManager: logManager})
	svc.RegisterHandlers(d)
	return svc, store, d
}

func call(t *testing.T, d *dispatcher.Dispatcher, cmd string, args ...string) any {
	t.Helper()
	result, err := d.Dispatch(dispatcher.Event{Command: cmd, Args: args})
	require.NoError(t, err, cmd)
	return result
}

func TestAdd_ParsesFullVector(t *testing.T) {
	_, store, d := newTestService(t)

	added := call(t, d, ":OBJ:ADD:",
		`"Kill 5 Demons"`, `"Demon"`, "5", "kill", "false", "true", "false", "60", "true", "", "0", "4", `"100,200,0"`, "true")
	assert.Equal(t, true, added)

	o, ok := store.Find("kill 5 demons")
	require.True(t, ok)
	assert.Equal(t, "Demon", o.TargetClass)
	assert.Equal(t, core.CategoryKill, o.Category)
	assert.True(t, o.Persist)
	assert.True(t, o.Required, "required follows primary")
	assert.Equal(t, 60*35, o.TimeLimit)
	assert.Equal(t, 4, o.MaxSkill)
	require.NotNil(t, o.Waypoint)
	assert.Equal(t, core.Position3D{X: 100, Y: 200}, *o.Waypoint)

	assert.Equal(t, false, call(t, d, ":OBJ:ADD:", "KILL 5 DEMONS"), "duplicates are rejected")
}

func TestAdd_MultiPointWaypoint(t *testing.T) {
	_, store, d := newTestService(t)

	call(t, d, ":OBJ:ADD:", "Destroy barrels", "Barrel", "2", "destroy", "", "", "", "", "", "", "", "", "[[7,1,2,3],[8,4,5,6]]")

	o, ok := store.Find("Destroy barrels")
	require.True(t, ok)
	assert.Nil(t, o.Waypoint)
	assert.Equal(t, []int{7, 8}, o.Owners)
	assert.Len(t, o.Waypoints, 2)
}

func TestProgressAndQueries(t *testing.T) {
	_, _, d := newTestService(t)
	call(t, d, ":OBJ:ADD:", "Collect keys", "Key", "3", "collect", "", "", "", "", "true")

	assert.Equal(t, true, call(t, d, ":OBJ:EXISTS:", "Collect keys"))
	assert.Equal(t, true, call(t, d, ":OBJ:ACTIVE:", "Collect keys"))
	assert.Equal(t, true, call(t, d, ":OBJ:REQUIRED:PENDING:"))

	assert.Equal(t, 1, call(t, d, ":OBJ:PROGRESS:ADD:", "Collect keys"))
	assert.Equal(t, 2, call(t, d, ":OBJ:PROGRESS:SET:", "Collect keys", "2"))
	assert.Equal(t, 2, call(t, d, ":OBJ:PROGRESS:GET:", "Collect keys"))
	assert.Equal(t, 3, call(t, d, ":OBJ:PROGRESS:ADD:", "Collect keys", "1"))

	assert.Equal(t, true, call(t, d, ":OBJ:COMPLETED:", "Collect keys"))
	assert.Equal(t, false, call(t, d, ":OBJ:REQUIRED:PENDING:"))

	call(t, d, ":OBJ:FAIL:", "Collect keys")
	assert.Equal(t, false, call(t, d, ":OBJ:FAILED:", "Collect keys"), "terminal states are final")

	call(t, d, ":OBJ:RESET:", "Collect keys")
	assert.Equal(t, true, call(t, d, ":OBJ:ACTIVE:", "Collect keys"))
	assert.Equal(t, 0, call(t, d, ":OBJ:PROGRESS:GET:", "Collect keys"))

	call(t, d, ":OBJ:COMPLETE:", "Collect keys")
	assert.Equal(t, true, call(t, d, ":OBJ:COMPLETED:", "Collect keys"))

	call(t, d, ":OBJ:REMOVE:", "Collect keys")
	assert.Equal(t, false, call(t, d, ":OBJ:EXISTS:", "Collect keys"))
	assert.Equal(t, 0, call(t, d, ":OBJ:PROGRESS:GET:", "Collect keys"), "unknown objectives read as zero")
}

func TestHideAndTrack(t *testing.T) {
	_, store, d := newTestService(t)
	call(t, d, ":OBJ:ADD:", "Secret")

	assert.Equal(t, true, call(t, d, ":OBJ:HIDE:", "Secret"))
	assert.Empty(t, store.Visible())
	assert.Equal(t, false, call(t, d, ":OBJ:HIDE:", "Secret", "false"))
	assert.Len(t, store.Visible(), 1)

	assert.Equal(t, false, call(t, d, ":OBJ:TRACK:", "Secret", "0"))
	o, _ := store.Find("Secret")
	assert.False(t, o.Tracked)
}

func TestWaypoint(t *testing.T) {
	_, store, d := newTestService(t)
	call(t, d, ":OBJ:ADD:", "Exit")

	call(t, d, ":OBJ:WAYPOINT:", "Exit", "10,20,30")
	o, _ := store.Find("Exit")
	require.NotNil(t, o.Waypoint)
	assert.Equal(t, 30.0, o.Waypoint.Z)

	call(t, d, ":OBJ:WAYPOINT:", "Exit", "0,0,0")
	o, _ = store.Find("Exit")
	assert.False(t, o.HasWaypoint(), "a lone origin clears the waypoint")

	call(t, d, ":OBJ:WAYPOINT:", "Exit", "MULTIPOINT Z ((1 2 3), (4 5 6))")
	o, _ = store.Find("Exit")
	assert.Len(t, o.Waypoints, 2)

	call(t, d, ":OBJ:WAYPOINT:CLEAR:", "Exit")
	o, _ = store.Find("Exit")
	assert.False(t, o.HasWaypoint())
}

func TestFind(t *testing.T) {
	_, _, d := newTestService(t)
	call(t, d, ":OBJ:ADD:", "Kill imps", "Imp", "3", "kill")

	o, ok := call(t, d, ":OBJ:FIND:", "kill imps").(core.Objective)
	require.True(t, ok)
	assert.Equal(t, 3, o.Target)
	assert.Nil(t, call(t, d, ":OBJ:FIND:", "nothing"))

	found, ok := call(t, d, ":OBJ:FIND:CLASS:", "IMP").([]core.Objective)
	require.True(t, ok)
	assert.Len(t, found, 1)
	assert.Empty(t, call(t, d, ":OBJ:FIND:CLASS:", "Baron"))
}

func TestClear(t *testing.T) {
	svc, store, d := newTestService(t)
	store.Add(objective.Definition{Description: "Generated", AutoGenerated: true})
	_, err := svc.AddObjective([]string{"Manual"})
	require.NoError(t, err)

	call(t, d, ":OBJ:CLEAR:AUTO:")
	assert.Equal(t, 1, store.Len())
	call(t, d, ":OBJ:CLEAR:ALL:")
	assert.Equal(t, 0, store.Len())
}

func TestMissingArguments(t *testing.T) {
	_, _, d := newTestService(t)
	for _, cmd := range []string{":OBJ:ADD:", ":OBJ:REMOVE:", ":OBJ:HIDE:", ":OBJ:WAYPOINT:", ":OBJ:PROGRESS:SET:", ":OBJ:EXISTS:", ":OBJ:LOAD:"} {
		_, err := d.Dispatch(dispatcher.Event{Command: cmd})
		assert.Error(t, err, cmd)
	}
	_, err := d.Dispatch(dispatcher.Event{Command: ":OBJ:ADD:", Args: []string{"Bad", "", "x"}})
	assert.Error(t, err)
}

const definitionsYAML = `maps:
  MAP01:
    - description: Kill 4 imps
      class: Imp
      count: 4
      category: kill
      primary: true
      waypoint: "100,0,0"
    - description: Escape in time
      time_limit: 2m
      min_skill: 1
      max_skill: 3
    - description: Broken
      category: sideways
  MAP02:
    - description: Other map
  "*":
    - description: Stay alive
      inverse: true
      tracked: false
      waypoint: "0,0,0"
`

func writeDefinitions(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "objectives.yaml")
	require.NoError(t, os.WriteFile(path, []byte(definitionsYAML), 0644))
	return path
}

func TestLoadDefinitions(t *testing.T) {
	_, store, d := newTestService(t)

	assert.Equal(t, 3, call(t, d, ":OBJ:LOAD:", writeDefinitions(t)))

	assert.True(t, store.Exists("Kill 4 imps"))
	assert.True(t, store.Exists("Escape in time"))
	assert.True(t, store.Exists("Stay alive"))
	assert.False(t, store.Exists("Broken"), "invalid entries are skipped")
	assert.False(t, store.Exists("Other map"))

	timed, _ := store.Find("Escape in time")
	assert.Equal(t, 120*35, timed.TimeLimit)
	assert.Equal(t, 1, timed.MinSkill)
	assert.Equal(t, 3, timed.MaxSkill)

	alive, _ := store.Find("Stay alive")
	assert.False(t, alive.HasWaypoint())
	assert.False(t, alive.Tracked)
	assert.True(t, alive.Inverse)
}

func TestLoadDefinitions_MissingFile(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.LoadDefinitions(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestDefinitionFile_For(t *testing.T) {
	f, err := ReadDefinitions(writeDefinitions(t))
	require.NoError(t, err)

	specs := f.For("map02")
	require.Len(t, specs, 2)
	assert.Equal(t, "Other map", specs[0].Description)
	assert.Equal(t, "Stay alive", specs[1].Description)
}

func TestDefinitionFile_ForIsDeterministic(t *testing.T) {
	f := &DefinitionFile{Maps: map[string][]DefinitionSpec{
		"e1m1": {{Description: "Lower first"}, {Description: "Lower second"}},
		"E1M1": {{Description: "Upper"}},
		"E1m1": {{Description: "Mixed"}},
		AnyMap: {{Description: "Everywhere"}},
		"E1M2": {{Description: "Elsewhere"}},
	}}

	want := []string{"Upper", "Mixed", "Lower first", "Lower second", "Everywhere"}
	for i := 0; i < 20; i++ {
		var got []string
		for _, spec := range f.For("E1M1") {
			got = append(got, spec.Description)
		}
		require.Equal(t, want, got)
	}
}

func TestDefinitionSpec_Definition(t *testing.T) {
	required := false
	def, points, owners, err := DefinitionSpec{
		Description: "Barrels",
		Category:    "destroy",
		Primary:     true,
		Required:    &required,
		Waypoint:    "[[1,0,0,0],[2,5,5,0]]",
	}.Definition()
	require.NoError(t, err)
	assert.Equal(t, core.CategoryDestroy, def.Category)
	require.NotNil(t, def.Required)
	assert.False(t, *def.Required)
	assert.True(t, def.Tracked)
	assert.Len(t, points, 2)
	assert.Equal(t, []int{1, 2}, owners)

	_, _, _, err = DefinitionSpec{Description: "x", TimeLimit: "soon"}.Definition()
	assert.Error(t, err)
}
