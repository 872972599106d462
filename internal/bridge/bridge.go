// Package bridge exposes the objective store to the host scripting layer as
// string-keyed commands. Objectives are addressed by description; all logic
// stays in the store.
package bridge

import (
	"fmt"
	"log/slog"

	"github.com/OCAP2/objectives/internal/dispatcher"
	"github.com/OCAP2/objectives/internal/logging"
	"github.com/OCAP2/objectives/internal/objective"
	"github.com/OCAP2/objectives/internal/parser"
	"github.com/OCAP2/objectives/internal/util"
	"github.com/OCAP2/objectives/pkg/core"
)

// Dependencies holds all dependencies needed by the bridge
type Dependencies struct {
	Store      *objective.Store
	Parser     *parser.Parser
	LogManager *logging.SlogManager
}

// Service translates bridge commands into store calls
type Service struct {
	deps         Dependencies
	writeLogFunc func(functionName, data, level string)
}

// NewService creates a new bridge service
func NewService(deps Dependencies) *Service {
	if deps.Parser == nil {
		var logger *slog.Logger
		if deps.LogManager != nil {
			logger = deps.LogManager.Logger()
		}
		deps.Parser = parser.NewParser(logger)
	}
	s := &Service{deps: deps}
	s.writeLogFunc = func(functionName, data, level string) {
		if deps.LogManager != nil {
			deps.LogManager.WriteLog(functionName, data, level)
		}
	}
	return s
}

func (s *Service) writeLog(functionName, data, level string) {
	s.writeLogFunc(functionName, data, level)
}

// RegisterHandlers registers every :OBJ: command with the dispatcher.
func (s *Service) RegisterHandlers(d *dispatcher.Dispatcher) {
	d.Register(":OBJ:ADD:", s.handleAdd, dispatcher.Logged())
	d.Register(":OBJ:REMOVE:", s.withDescription(s.deps.Store.Remove))
	d.Register(":OBJ:RESET:", s.withDescription(s.deps.Store.Reset))
	d.Register(":OBJ:COMPLETE:", s.withDescription(s.deps.Store.Complete))
	d.Register(":OBJ:FAIL:", s.withDescription(s.deps.Store.Fail))
	d.Register(":OBJ:WAYPOINT:CLEAR:", s.withDescription(s.deps.Store.ClearWaypoint))
	d.Register(":OBJ:HIDE:", s.flagHandler(s.deps.Store.SetHidden))
	d.Register(":OBJ:TRACK:", s.flagHandler(s.deps.Store.SetTracked))
	d.Register(":OBJ:WAYPOINT:", s.handleWaypoint)

	d.Register(":OBJ:PROGRESS:SET:", func(e dispatcher.Event) (any, error) {
		desc, v, err := s.deps.Parser.ParseProgress(e.Args, 0)
		if err != nil {
			return nil, err
		}
		s.deps.Store.SetProgress(desc, v)
		return s.deps.Store.Progress(desc), nil
	})
	d.Register(":OBJ:PROGRESS:ADD:", func(e dispatcher.Event) (any, error) {
		desc, v, err := s.deps.Parser.ParseProgress(e.Args, 1)
		if err != nil {
			return nil, err
		}
		s.deps.Store.IncrementProgress(desc, v)
		return s.deps.Store.Progress(desc), nil
	})

	d.Register(":OBJ:PROGRESS:GET:", s.query(func(desc string) any { return s.deps.Store.Progress(desc) }))
	d.Register(":OBJ:EXISTS:", s.query(func(desc string) any { return s.deps.Store.Exists(desc) }))
	d.Register(":OBJ:ACTIVE:", s.query(func(desc string) any { return s.deps.Store.IsActive(desc) }))
	d.Register(":OBJ:COMPLETED:", s.query(func(desc string) any { return s.deps.Store.IsComplete(desc) }))
	d.Register(":OBJ:FAILED:", s.query(func(desc string) any { return s.deps.Store.HasFailed(desc) }))
	d.Register(":OBJ:FIND:", s.query(func(desc string) any {
		o, ok := s.deps.Store.Find(desc)
		if !ok {
			return nil
		}
		return o
	}))
	d.Register(":OBJ:FIND:CLASS:", s.query(func(class string) any {
		found := s.deps.Store.FindByTargetClass(class)
		if found == nil {
			found = []core.Objective{}
		}
		return found
	}))

	d.Register(":OBJ:REQUIRED:PENDING:", func(dispatcher.Event) (any, error) {
		return s.deps.Store.HasIncompleteRequired(), nil
	})
	d.Register(":OBJ:CLEAR:AUTO:", func(dispatcher.Event) (any, error) {
		s.deps.Store.ClearAuto()
		return "ok", nil
	})
	d.Register(":OBJ:CLEAR:ALL:", func(dispatcher.Event) (any, error) {
		s.deps.Store.ClearAll()
		return "ok", nil
	})
	d.Register(":OBJ:LOAD:", func(e dispatcher.Event) (any, error) {
		path, err := s.deps.Parser.ParseDescription(e.Args)
		if err != nil {
			return nil, err
		}
		return s.LoadDefinitions(path)
	}, dispatcher.Logged())
}

// AddObjective parses an :OBJ:ADD: argument vector and creates the objective.
func (s *Service) AddObjective(data []string) (bool, error) {
	functionName := ":OBJ:ADD:"

	req, err := s.deps.Parser.ParseAddObjective(data)
	if err != nil {
		s.writeLog(functionName, fmt.Sprintf(`Error parsing objective: %v`, err), "ERROR")
		return false, err
	}
	return s.add(req.Definition, req.Points, req.Owners), nil
}

func (s *Service) add(def objective.Definition, points []core.Position3D, owners []int) bool {
	if !s.deps.Store.Add(def) {
		return false
	}
	if len(points) > 0 {
		s.deps.Store.SetWaypoints(def.Description, points, owners)
	}
	return true
}

// LoadDefinitions adds the objectives a definition file lists for the
// current map and returns how many were added.
func (s *Service) LoadDefinitions(path string) (int, error) {
	functionName := ":OBJ:LOAD:"

	f, err := ReadDefinitions(path)
	if err != nil {
		s.writeLog(functionName, fmt.Sprintf(`Error reading definitions: %v`, err), "ERROR")
		return 0, err
	}

	mapName := ""
	if ctx := s.deps.Store.Context(); ctx != nil {
		mapName = ctx.Map()
	}

	added := 0
	for _, spec := range f.For(mapName) {
		def, points, owners, err := spec.Definition()
		if err != nil {
			s.writeLog(functionName, fmt.Sprintf(`Skipping objective %q: %v`, spec.Description, err), "WARN")
			continue
		}
		if s.add(def, points, owners) {
			added++
		}
	}
	s.writeLog(functionName, fmt.Sprintf(`Loaded %d objectives for %s from %s`, added, mapName, path), "INFO")
	return added, nil
}

func (s *Service) handleAdd(e dispatcher.Event) (any, error) {
	return s.AddObjective(e.Args)
}

func (s *Service) handleWaypoint(e dispatcher.Event) (any, error) {
	w, err := s.deps.Parser.ParseWaypoint(e.Args)
	if err != nil {
		return nil, err
	}
	switch {
	case w.Clear:
		s.deps.Store.ClearWaypoint(w.Description)
	case len(w.Points) == 1 && w.Owners == nil:
		s.deps.Store.SetWaypoint(w.Description, w.Points[0])
	default:
		s.deps.Store.SetWaypoints(w.Description, w.Points, w.Owners)
	}
	return "ok", nil
}

func (s *Service) withDescription(fn func(desc string)) dispatcher.HandlerFunc {
	return func(e dispatcher.Event) (any, error) {
		desc, err := s.deps.Parser.ParseDescription(e.Args)
		if err != nil {
			return nil, err
		}
		fn(desc)
		return "ok", nil
	}
}

// flagHandler handles [description, flag]; the flag defaults to true.
func (s *Service) flagHandler(fn func(desc string, v bool)) dispatcher.HandlerFunc {
	return func(e dispatcher.Event) (any, error) {
		desc, err := s.deps.Parser.ParseDescription(e.Args)
		if err != nil {
			return nil, err
		}
		v := true
		if len(e.Args) > 1 {
			if v, err = util.ParseBool(e.Args[1]); err != nil {
				return nil, err
			}
		}
		fn(desc, v)
		return v, nil
	}
}

func (s *Service) query(fn func(desc string) any) dispatcher.HandlerFunc {
	return func(e dispatcher.Event) (any, error) {
		desc, err := s.deps.Parser.ParseDescription(e.Args)
		if err != nil {
			return nil, err
		}
		return fn(desc), nil
	}
}
