// Package replay plays a chunk schedule on a discrete-event engine, one
// operation at a time, to cross-check the aggregated totals.
package replay

import (
	"reflect"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gitlab.com/akita/akita/v3/sim"

	"github.com/sarchlab/hesmodel"
	"github.com/sarchlab/hesmodel/costmodel"
	"github.com/sarchlab/hesmodel/schedule"
)

// A playNextEvent triggers the player to start the next operation.
type playNextEvent struct {
	time    sim.VTimeInSec
	handler *ChunkPlayer
}

// Time returns the time of the event.
func (e playNextEvent) Time() sim.VTimeInSec {
	return e.time
}

// Handler returns the handler of the event.
func (e playNextEvent) Handler() sim.Handler {
	return e.handler
}

// IsSecondary always returns false.
func (e playNextEvent) IsSecondary() bool {
	return false
}

// An opCompletionEvent is triggered when an operation is completed.
type opCompletionEvent struct {
	time    sim.VTimeInSec
	handler *ChunkPlayer
	step    step
}

// Time returns the time of the event.
func (e opCompletionEvent) Time() sim.VTimeInSec {
	return e.time
}

// Handler returns the handler of the event.
func (e opCompletionEvent) Handler() sim.Handler {
	return e.handler
}

// IsSecondary always returns false.
func (e opCompletionEvent) IsSecondary() bool {
	return false
}

type step struct {
	round int
	kind  hesmodel.RoundKind
	op    hesmodel.Operation
}

// Result is what a replay measured.
type Result struct {
	// Runtime is the virtual time when the last operation completed.
	Runtime float64
	// Bandwidth is the number of elements moved by Transmit operations.
	Bandwidth float64
	// Operations is the number of operations played.
	Operations int
}

// A ChunkPlayer replays the iterations of one chunk in order. Workers run in
// parallel, so one worker's timeline is the wall-clock timeline.
type ChunkPlayer struct {
	sim.TimeTeller
	sim.EventScheduler

	name  string
	costs costmodel.Lookup

	chunk     *schedule.Schedule
	round     int
	opIndex   int
	played    int
	busy      bool
	bandwidth float64
	err       error
}

// NewChunkPlayer creates a new ChunkPlayer.
func NewChunkPlayer(
	name string,
	tt sim.TimeTeller,
	es sim.EventScheduler,
	costs costmodel.Lookup,
) *ChunkPlayer {
	return &ChunkPlayer{
		name:           name,
		TimeTeller:     tt,
		EventScheduler: es,
		costs:          costs,
	}
}

// Name returns the name of the player.
func (p *ChunkPlayer) Name() string {
	return p.name
}

// SetSchedule sets the schedule to play and rewinds the player.
func (p *ChunkPlayer) SetSchedule(s *schedule.Schedule) {
	p.chunk = s
	p.round = 0
	p.opIndex = 0
	p.played = 0
	p.busy = false
	p.bandwidth = 0
	p.err = nil
}

// KickStart starts playing the schedule.
func (p *ChunkPlayer) KickStart() {
	p.Schedule(playNextEvent{
		time:    p.CurrentTime(),
		handler: p,
	})
}

// Handle function of a ChunkPlayer handles events.
func (p *ChunkPlayer) Handle(e sim.Event) error {
	switch e := e.(type) {
	case playNextEvent:
		p.playNext()
	case opCompletionEvent:
		p.completeOp(e)
	default:
		panic("ChunkPlayer cannot handle this event type " +
			reflect.TypeOf(e).String())
	}

	return nil
}

// Err returns the error that stopped the replay, if any.
func (p *ChunkPlayer) Err() error {
	return p.err
}

// Done tells whether every operation has completed.
func (p *ChunkPlayer) Done() bool {
	return !p.hasNext() && !p.busy
}

// Played returns the number of operations started so far.
func (p *ChunkPlayer) Played() int {
	return p.played
}

func (p *ChunkPlayer) hasNext() bool {
	return p.chunk != nil && p.round < p.chunk.ChunkLength
}

// peek returns the step the cursor points at. It must only be called when
// hasNext is true.
func (p *ChunkPlayer) peek() step {
	kind := p.chunk.RoundKindAt(p.round)

	return step{
		round: p.round,
		kind:  kind,
		op:    schedule.IterationOps(kind)[p.opIndex],
	}
}

func (p *ChunkPlayer) advance() {
	kind := p.chunk.RoundKindAt(p.round)

	p.opIndex++
	if p.opIndex >= len(schedule.IterationOps(kind)) {
		p.opIndex = 0
		p.round++
	}
}

// BytesMoved returns the number of elements moved so far.
func (p *ChunkPlayer) BytesMoved() float64 {
	return p.bandwidth
}

func (p *ChunkPlayer) playNext() {
	if p.busy || p.err != nil || !p.hasNext() {
		return
	}

	s := p.peek()

	runtime, err := p.costs.Cost(s.op, hesmodel.Runtime)
	if err != nil {
		p.err = errors.Wrapf(err, "%s, round %d", p.name, s.round)
		return
	}

	p.busy = true
	p.played++
	p.advance()

	p.Schedule(opCompletionEvent{
		time:    p.CurrentTime() + sim.VTimeInSec(runtime),
		handler: p,
		step:    s,
	})
}

func (p *ChunkPlayer) completeOp(e opCompletionEvent) {
	p.busy = false

	if e.step.op == hesmodel.Transmit {
		payload, err := p.costs.Payload(e.step.kind)
		if err != nil {
			p.err = errors.Wrapf(err, "%s, round %d", p.name, e.step.round)
			return
		}
		p.bandwidth += payload
	}

	log.WithFields(log.Fields{
		"player": p.name,
		"time":   float64(p.CurrentTime()),
		"round":  e.step.round,
		"kind":   e.step.kind.String(),
		"op":     e.step.op.String(),
	}).Trace("operation completed")

	p.Schedule(playNextEvent{
		time:    p.CurrentTime(),
		handler: p,
	})
}

// Play replays the schedule on a fresh serial engine.
func Play(s *schedule.Schedule, costs costmodel.Lookup) (Result, error) {
	if s == nil || s.IsEmpty() {
		return Result{}, errors.Wrap(hesmodel.ErrEmptySchedule, "nothing to replay")
	}

	engine := sim.NewSerialEngine()
	player := NewChunkPlayer(s.Variant.Name, engine, engine, costs)
	player.SetSchedule(s)

	player.KickStart()
	if err := engine.Run(); err != nil {
		return Result{}, errors.Wrapf(err, "replaying %s", s.Variant.Name)
	}

	if player.Err() != nil {
		return Result{}, player.Err()
	}

	return Result{
		Runtime:    float64(engine.CurrentTime()),
		Bandwidth:  player.BytesMoved(),
		Operations: player.Played(),
	}, nil
}
