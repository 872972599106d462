// Package notify queues on-screen notices and audible cues for each connected
// participant.
package notify

import (
	"fmt"
	"math"
	"sync"

	"github.com/OCAP2/objectives/internal/mission"
	"github.com/OCAP2/objectives/internal/objective"
	"github.com/OCAP2/objectives/internal/queue"
	"github.com/OCAP2/objectives/pkg/core"
)

// Cue names played by the host.
const (
	CueActivated   = "objective_new"
	CueComplete    = "objective_complete"
	CueFailed      = "objective_failed"
	CueExitBlocked = "exit_blocked"
)

// DefaultLimit bounds each participant's queue.
const DefaultLimit = 6

// Notice is one message shown to a participant.
type Notice struct {
	Text string `json:"text"`
	Cue  string `json:"cue,omitempty"`
	// Remaining and Total are in ticks; Remaining/Total is the fade alpha.
	Remaining int `json:"remaining"`
	Total     int `json:"total"`
}

// Alpha is the fade-out opacity of the notice.
func (n Notice) Alpha() float64 {
	if n.Total <= 0 {
		return 0
	}
	return math.Max(0, math.Min(1, float64(n.Remaining)/float64(n.Total)))
}

// Config tunes the notice center.
type Config struct {
	TickRate    int
	FadeSeconds float64
	Limit       int
}

// Center fans objective transitions out to every participant's notice queue.
// It implements objective.Listener.
type Center struct {
	objective.NopListener

	mu     sync.Mutex
	ctx    *mission.Context
	ticks  int
	limit  int
	queues map[int]*queue.Queue[Notice]
}

func New(ctx *mission.Context, cfg Config) *Center {
	rate := cfg.TickRate
	if rate <= 0 {
		rate = 35
	}
	fade := math.Max(cfg.FadeSeconds, objective.MinFadeSeconds)
	limit := cfg.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Center{
		ctx:    ctx,
		ticks:  int(math.Ceil(fade * float64(rate))),
		limit:  limit,
		queues: make(map[int]*queue.Queue[Notice]),
	}
}

func (c *Center) Activated(o core.Objective) {
	c.Broadcast(fmt.Sprintf("New objective: %s", o.Description), CueActivated)
}

func (c *Center) Completed(o core.Objective) {
	c.Broadcast(fmt.Sprintf("Objective complete: %s", o.Description), CueComplete)
}

func (c *Center) Failed(o core.Objective) {
	c.Broadcast(fmt.Sprintf("Objective failed: %s", o.Description), CueFailed)
}

func (c *Center) AllRequiredComplete(string) {
	c.Broadcast("All required objectives complete", CueComplete)
}

// ExitBlocked warns everyone that required objectives are still pending.
func (c *Center) ExitBlocked() {
	c.Broadcast("Complete all required objectives before leaving", CueExitBlocked)
}

// Broadcast queues a notice for every connected participant.
func (c *Center) Broadcast(text, cue string) {
	for _, slot := range c.ctx.Participants() {
		c.Push(slot, text, cue)
	}
}

// Push queues a notice for one participant, dropping the oldest past the limit.
func (c *Center) Push(slot int, text, cue string) {
	q := c.queue(slot)
	q.Push(Notice{Text: text, Cue: cue, Remaining: c.ticks, Total: c.ticks})
	if over := q.Len() - c.limit; over > 0 {
		q.PopN(over)
	}
}

// Tick ages every notice by one tick and drops the expired ones.
func (c *Center) Tick() {
	c.mu.Lock()
	queues := make([]*queue.Queue[Notice], 0, len(c.queues))
	for _, q := range c.queues {
		queues = append(queues, q)
	}
	c.mu.Unlock()

	for _, q := range queues {
		q.Update(func(n *Notice) bool {
			n.Remaining--
			return n.Remaining > 0
		})
	}
}

// Pending returns the notices currently shown to slot, oldest first.
func (c *Center) Pending(slot int) []Notice {
	c.mu.Lock()
	q, ok := c.queues[slot]
	c.mu.Unlock()
	if !ok {
		return nil
	}
	return q.Snapshot()
}

// TakeCues returns the cues queued for slot that have not been played yet.
func (c *Center) TakeCues(slot int) []string {
	c.mu.Lock()
	q, ok := c.queues[slot]
	c.mu.Unlock()
	if !ok {
		return nil
	}
	var cues []string
	q.Update(func(n *Notice) bool {
		if n.Cue != "" {
			cues = append(cues, n.Cue)
			n.Cue = ""
		}
		return true
	})
	return cues
}

// Drop forgets the queue of a departed participant.
func (c *Center) Drop(slot int) {
	c.mu.Lock()
	delete(c.queues, slot)
	c.mu.Unlock()
}

func (c *Center) queue(slot int) *queue.Queue[Notice] {
	c.mu.Lock()
	defer c.mu.Unlock()
	q, ok := c.queues[slot]
	if !ok {
		q = queue.New[Notice]()
		c.queues[slot] = q
	}
	return q
}
