// Package hooks registers the host lifecycle callbacks on the dispatcher and
// drives the objective store, marker synchronizer and notice center from them.
package hooks

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/OCAP2/objectives/internal/cache"
	"github.com/OCAP2/objectives/internal/config"
	"github.com/OCAP2/objectives/internal/dispatcher"
	"github.com/OCAP2/objectives/internal/host"
	"github.com/OCAP2/objectives/internal/markers"
	"github.com/OCAP2/objectives/internal/notify"
	"github.com/OCAP2/objectives/internal/objective"
	"github.com/OCAP2/objectives/internal/parser"
	"github.com/OCAP2/objectives/internal/render"
	"github.com/OCAP2/objectives/internal/storage"
	"github.com/OCAP2/objectives/internal/util"
	"github.com/OCAP2/objectives/pkg/core"
)

// frameBudget is one tic at 35Hz; slower :TICK: or :FRAME: handlers are logged.
const frameBudget = time.Second / 35

// Exit decisions returned by :LINE:ACTIVATED:.
const (
	ExitIgnored = "ignored"
	ExitAllow   = "allow"
	ExitBlock   = "block"
)

// Network event names sent by participants.
const (
	NetTrack    = "objective.track"
	NetCursor   = "objective.cursor"
	NetResync   = "objective.resync"
	NetSettings = "objective.settings"
	NetJoin     = "player.join"
	NetLeave    = "player.leave"
)

// Dependencies holds everything the hooks drive. Markers, Buffer, Notices and
// Backend are optional.
type Dependencies struct {
	Store    *objective.Store
	Markers  *markers.Synchronizer
	Buffer   *host.MarkerBuffer
	Notices  *notify.Center
	Renderer *render.Renderer
	Settings host.Settings
	Backend  storage.Backend
	Parser   *parser.Parser
	Logger   *slog.Logger

	Version   string
	BuildDate string
}

// Config tunes the hooks.
type Config struct {
	// SyncInterval is the number of ticks between marker sync checks.
	SyncInterval uint64
	Exit         config.ExitConfig
}

// Manager owns the host callbacks.
type Manager struct {
	deps  Dependencies
	cfg   Config
	ticks cache.SafeCounter
}

// NewManager creates a Manager. A nil Renderer is replaced by one drawing from
// deps.Store.
func NewManager(deps Dependencies, cfg Config) *Manager {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Parser == nil {
		deps.Parser = parser.NewParser(deps.Logger)
	}
	if deps.Settings == nil {
		deps.Settings = host.Defaults{}
	}
	if deps.Renderer == nil {
		deps.Renderer = &render.Renderer{
			Store:    deps.Store,
			Settings: deps.Settings,
			Markers:  deps.Markers,
			Notices:  deps.Notices,
		}
	}
	return &Manager{deps: deps, cfg: cfg}
}

// RegisterHandlers registers every host callback with the dispatcher.
func (m *Manager) RegisterHandlers(d *dispatcher.Dispatcher) {
	d.Register(":TICK:", m.handleTick, dispatcher.Budget(frameBudget))
	d.Register(":ENTITY:DIED:", m.entityHandler(core.CategoryKill), dispatcher.Logged())
	d.Register(":ENTITY:DESTROYED:", m.entityHandler(core.CategoryDestroy), dispatcher.Logged())
	d.Register(":ENTITY:COLLECTED:", m.entityHandler(core.CategoryCollect), dispatcher.Logged())
	d.Register(":LINE:ACTIVATED:", m.handleLineActivated, dispatcher.Logged())
	d.Register(":LEVEL:LOADED:", m.handleLevelLoaded, dispatcher.Logged())
	d.Register(":NET:EVENT:", m.handleNetEvent, dispatcher.Logged())
	d.Register(":FRAME:", m.handleFrame, dispatcher.Budget(frameBudget))
	d.Register(":MARKERS:PULL:", m.handleMarkersPull)
	d.Register(":SAVE:", m.handleSave, dispatcher.Logged())

	d.Register(":VERSION:", func(dispatcher.Event) (any, error) {
		return []string{m.deps.Version, m.deps.BuildDate}, nil
	})
}

// Ticks is the number of ticks handled so far.
func (m *Manager) Ticks() uint64 {
	return m.ticks.Value()
}

// handleTick runs one simulation step: participants, timers, distances,
// notice fades and the periodic marker sync, in that order.
func (m *Manager) handleTick(e dispatcher.Event) (any, error) {
	tick, err := m.deps.Parser.ParseTick(e.Args)
	if err != nil {
		return nil, fmt.Errorf("failed to parse tick: %w", err)
	}

	ctx := m.deps.Store.Context()
	if ctx != nil {
		for _, p := range tick.Participants {
			ctx.UpdatePosition(p.Slot, p.Position)
		}
	}

	m.deps.Store.Tick()
	if ctx != nil {
		for _, slot := range ctx.Participants() {
			if pos, ok := ctx.Position(slot); ok {
				m.deps.Store.RefreshDistances(slot, pos)
			}
		}
	}
	if m.deps.Notices != nil {
		m.deps.Notices.Tick()
	}

	m.ticks.Inc()
	if m.deps.Markers != nil && m.ticks.Every(m.cfg.SyncInterval) {
		m.deps.Markers.Sync(false)
	}
	return "ok", nil
}

func (m *Manager) entityHandler(category core.Category) dispatcher.HandlerFunc {
	return func(e dispatcher.Event) (any, error) {
		ev, err := m.deps.Parser.ParseEntityEvent(e.Args)
		if err != nil {
			return nil, fmt.Errorf("failed to parse entity event: %w", err)
		}
		m.deps.Store.EntityRemoved(ev.Class, category)
		if category != core.CategoryCollect {
			m.deps.Store.RemoveOwner(ev.EntityID)
		}
		return "ok", nil
	}
}

// handleLineActivated gates level exits on required objectives. Advisory
// mode warns and lets the exit through; authoritative mode blocks it.
func (m *Manager) handleLineActivated(e dispatcher.Event) (any, error) {
	ev, err := m.deps.Parser.ParseLineActivated(e.Args)
	if err != nil {
		return nil, fmt.Errorf("failed to parse line activation: %w", err)
	}
	if !slices.Contains(m.cfg.Exit.Specials, ev.Special) {
		return ExitIgnored, nil
	}
	if !m.deps.Store.HasIncompleteRequired() {
		return ExitAllow, nil
	}

	if m.deps.Notices != nil {
		m.deps.Notices.ExitBlocked()
	}
	m.deps.Logger.Info("Exit attempted with required objectives pending",
		"slot", ev.Slot, "special", ev.Special, "mode", m.cfg.Exit.Mode)
	if m.cfg.Exit.Mode == config.ExitAuthoritative {
		return ExitBlock, nil
	}
	return ExitAllow, nil
}

// handleLevelLoaded switches maps. A restored session is reloaded from the
// storage backend first and skips the previous-map cleanup.
func (m *Manager) handleLevelLoaded(e dispatcher.Event) (any, error) {
	ev, err := m.deps.Parser.ParseLevelLoaded(e.Args)
	if err != nil {
		return nil, fmt.Errorf("failed to parse level load: %w", err)
	}

	if ev.Restored && m.deps.Backend != nil {
		sess, err := m.deps.Backend.Load(ev.Map)
		switch {
		case errors.Is(err, storage.ErrNoSession):
			m.deps.Logger.Info("No saved objectives for restored map", "map", ev.Map)
		case err != nil:
			m.deps.Logger.Error("Failed to load saved objectives", "map", ev.Map, "error", err)
		default:
			m.deps.Store.Restore(*sess)
			m.deps.Logger.Info("Restored objectives", "map", ev.Map, "objectives", len(sess.Objectives))
		}
	}

	removed := m.deps.Store.LoadMap(ev.Map, ev.Skill, ev.Restored)
	if m.deps.Markers != nil {
		m.deps.Markers.Sync(true)
	}
	return removed, nil
}

func (m *Manager) handleNetEvent(e dispatcher.Event) (any, error) {
	ev, err := m.deps.Parser.ParseNetEvent(e.Args)
	if err != nil {
		return nil, fmt.Errorf("failed to parse net event: %w", err)
	}
	ctx := m.deps.Store.Context()

	switch ev.Name {
	case NetTrack:
		if len(ev.Args) == 0 {
			return nil, fmt.Errorf("%s: %w", ev.Name, parser.ErrMissingArgs)
		}
		return m.deps.Store.ToggleTracked(ev.Args[0]), nil

	case NetCursor:
		delta := 1
		if len(ev.Args) > 0 && strings.EqualFold(ev.Args[0], "up") {
			delta = -1
		}
		return render.MoveCursor(m.deps.Store, ev.Slot, delta), nil

	case NetResync:
		if m.deps.Markers == nil {
			return false, nil
		}
		return m.deps.Markers.Sync(true), nil

	case NetSettings:
		if m.deps.Markers != nil {
			opts := m.deps.Markers.Options()
			m.deps.Markers.SetOptions(markers.Options{
				Numbered:     m.deps.Settings.Bool(ev.Slot, "markers.numbered", opts.Numbered),
				ShowTerminal: m.deps.Settings.Bool(ev.Slot, "markers.showTerminal", opts.ShowTerminal),
			})
		}
		return "ok", nil

	case NetJoin:
		if ctx != nil {
			ctx.Join(ev.Slot)
		}
		return "ok", nil

	case NetLeave:
		if ctx != nil {
			ctx.Leave(ev.Slot)
		}
		if m.deps.Notices != nil {
			m.deps.Notices.Drop(ev.Slot)
		}
		return "ok", nil
	}
	return nil, fmt.Errorf("unknown net event: %s", ev.Name)
}

func (m *Manager) handleFrame(e dispatcher.Event) (any, error) {
	req, err := m.deps.Parser.ParseFrame(e.Args)
	if err != nil {
		return nil, fmt.Errorf("failed to parse frame: %w", err)
	}
	return m.deps.Renderer.Draw(req), nil
}

// handleMarkersPull hands queued spawn/destroy commands to the host. An
// optional first argument caps the batch size.
func (m *Manager) handleMarkersPull(e dispatcher.Event) (any, error) {
	if m.deps.Buffer == nil {
		return []core.MarkerCommand{}, nil
	}
	n := 0
	if len(e.Args) > 0 {
		v, err := strconv.Atoi(util.CleanArg(e.Args[0]))
		if err != nil {
			return nil, fmt.Errorf("failed to parse batch size: %w", err)
		}
		n = v
	}
	cmds := m.deps.Buffer.Pull(n)
	if cmds == nil {
		cmds = []core.MarkerCommand{}
	}
	return cmds, nil
}

// handleSave hands a snapshot of the store to the storage backend and
// returns the snapshot ID.
func (m *Manager) handleSave(dispatcher.Event) (any, error) {
	if m.deps.Backend == nil {
		return nil, errors.New("no storage backend configured")
	}
	sess := m.deps.Store.Snapshot()
	if err := m.deps.Backend.Save(&sess); err != nil {
		m.deps.Logger.Error("Failed to save objectives", "map", sess.Map, "error", err)
		return nil, err
	}
	m.deps.Logger.Info("Objectives saved", "map", sess.Map, "objectives", len(sess.Objectives), "id", sess.ID)
	return sess.ID, nil
}
