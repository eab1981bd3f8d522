// Package synth is the script synthesis engine: it sends the current script and an
// instruction to a generator, reveals the returned replacement unit by unit and
// commits it as the new script.
//
// The Controller is a single-threaded state machine. It never starts goroutines or
// timers itself; a driver (Runner, or the editor's Update loop) owns it, performs
// the generator call for each Request it hands out and feeds back Results and
// Ticks. Every Request, Result and Tick carries the generation it belongs to, and
// anything stamped with an older generation is dropped when delivered.
package synth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"scriptsmith/internal/generator"
	"scriptsmith/internal/logging"
)

// =============================================================================
// TYPES
// =============================================================================

// State is the controller's lifecycle state.
type State int

const (
	Idle State = iota
	Requesting
	Revealing
	Committing
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Requesting:
		return "requesting"
	case Revealing:
		return "revealing"
	case Committing:
		return "committing"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Request is one synthesis attempt handed to the driver. BaseText is the
// authoritative script at submission time and is never re-read.
type Request struct {
	Generation  uint64
	ID          uuid.UUID
	Instruction string
	BaseText    string

	ctx context.Context
}

// Context is cancelled when the request is superseded, cancelled or finished.
func (r Request) Context() context.Context {
	if r.ctx == nil {
		return context.Background()
	}
	return r.ctx
}

// Result is the generator outcome for the request of the same generation.
type Result struct {
	Generation uint64
	Text       string
	Err        error
}

// Tick asks the controller to reveal one more unit of the given generation.
type Tick struct {
	Generation uint64
}

// EventKind classifies controller notifications.
type EventKind int

const (
	EventStarted EventKind = iota
	EventRevealing
	EventCompleted
	EventFailed
	EventCancelled
)

func (k EventKind) String() string {
	switch k {
	case EventStarted:
		return "started"
	case EventRevealing:
		return "revealing"
	case EventCompleted:
		return "completed"
	case EventFailed:
		return "failed"
	case EventCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Event is delivered to observers on the driver's goroutine.
type Event struct {
	Kind        EventKind
	Generation  uint64
	RequestID   uuid.UUID
	Instruction string
	Message     string
	Err         error
}

// Observer receives controller events. It must not call back into the controller.
type Observer func(Event)

// Snapshot is a read-only view for the host surface.
type Snapshot struct {
	State         State
	Generation    uint64
	Authoritative string
	Preview       string
	Busy          bool
	Instruction   string
	Position      int
	Length        int
	LastErr       error
}

// Option configures a Controller.
type Option func(*Controller)

// WithRevealInterval sets the per-unit reveal cadence.
func WithRevealInterval(d time.Duration) Option {
	return func(c *Controller) { c.interval = d }
}

// WithObserver registers an event observer.
func WithObserver(o Observer) Option {
	return func(c *Controller) {
		if o != nil {
			c.observers = append(c.observers, o)
		}
	}
}

// =============================================================================
// CONTROLLER
// =============================================================================

// Controller binds the generator and the reveal to the buffer.
type Controller struct {
	buf       *Buffer
	interval  time.Duration
	observers []Observer

	state   State
	gen     uint64
	active  *Request
	cancel  context.CancelFunc
	cursor  *Reveal
	lastErr error
}

// NewController returns an idle controller over buf.
func NewController(buf *Buffer, opts ...Option) *Controller {
	if buf == nil {
		buf = NewBuffer("")
	}
	c := &Controller{buf: buf, interval: DefaultRevealInterval}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Buffer returns the buffer the controller writes to.
func (c *Controller) Buffer() *Buffer { return c.buf }

// State returns the current state.
func (c *Controller) State() State { return c.state }

// Generation returns the current generation stamp.
func (c *Controller) Generation() uint64 { return c.gen }

// Busy reports whether a synthesis is in flight.
func (c *Controller) Busy() bool {
	return c.state == Requesting || c.state == Revealing
}

// Interval returns the reveal cadence.
func (c *Controller) Interval() time.Duration { return c.interval }

// Submit starts a synthesis for instruction and returns the Request the driver must
// fulfil. A blank instruction is rejected with ErrEmptyInstruction before any state
// change. An in-flight synthesis is superseded first; the preview keeps whatever the
// superseded reveal last wrote until the new one produces output.
func (c *Controller) Submit(ctx context.Context, instruction string) (Request, error) {
	if strings.TrimSpace(instruction) == "" {
		return Request{}, ErrEmptyInstruction
	}
	if c.Busy() {
		c.abandon("superseded")
	}

	c.gen++
	rctx, cancel := context.WithCancel(ctx)
	req := Request{
		Generation:  c.gen,
		ID:          uuid.New(),
		Instruction: instruction,
		BaseText:    c.buf.Authoritative(),
		ctx:         rctx,
	}
	c.active = &req
	c.cancel = cancel
	c.lastErr = nil
	c.state = Requesting

	logging.Synth("gen=%d id=%s requesting: %q (base %d bytes)", req.Generation, req.ID, instruction, len(req.BaseText))
	c.emit(Event{Kind: EventStarted, Message: MsgAnalyzing})
	return req, nil
}

// Resolve delivers a generator outcome. It returns false when the result is stale
// and was discarded.
func (c *Controller) Resolve(res Result) bool {
	if c.state != Requesting || res.Generation != c.gen {
		logging.SynthDebug("gen=%d dropping stale result (current gen=%d state=%s)", res.Generation, c.gen, c.state)
		return false
	}
	c.release()

	err := res.Err
	if err == nil && res.Text == "" {
		err = fmt.Errorf("%w: empty text", generator.ErrEmptyResult)
	}
	if err != nil {
		c.fail(err)
		return true
	}

	c.cursor = NewReveal(res.Text, c.interval)
	c.buf.setPreview("")
	c.state = Revealing
	logging.Synth("gen=%d revealing %d units", c.gen, c.cursor.Len())
	c.emit(Event{Kind: EventRevealing})
	return true
}

// Advance reveals one more unit. It returns false when the tick is stale or there is
// nothing to reveal. The final unit commits the target.
func (c *Controller) Advance(t Tick) bool {
	if c.state != Revealing || t.Generation != c.gen || c.cursor == nil || c.cursor.Cancelled() {
		logging.RevealDebug("gen=%d dropping tick (current gen=%d state=%s)", t.Generation, c.gen, c.state)
		return false
	}
	if prefix, ok := c.cursor.Next(); ok {
		c.buf.setPreview(prefix)
	}
	if c.cursor.Done() {
		c.commit()
	}
	return true
}

// Cancel aborts the in-flight synthesis, cancelling its request and reveal, and
// restores the preview to the authoritative text. It returns false when idle.
func (c *Controller) Cancel() bool {
	if !c.Busy() {
		return false
	}
	c.abandon("cancelled")
	c.buf.restorePreview()
	c.state = Idle
	return true
}

// Edit applies a direct user edit. An in-flight synthesis is abandoned, including
// its network request.
func (c *Controller) Edit(text string) {
	if c.Busy() {
		c.abandon("edited")
		c.state = Idle
	}
	c.buf.SetAuthoritative(text)
}

// Snapshot returns the current view.
func (c *Controller) Snapshot() Snapshot {
	s := Snapshot{
		State:         c.state,
		Generation:    c.gen,
		Authoritative: c.buf.Authoritative(),
		Preview:       c.buf.Preview(),
		Busy:          c.Busy(),
		LastErr:       c.lastErr,
	}
	if c.active != nil {
		s.Instruction = c.active.Instruction
	}
	if c.cursor != nil {
		s.Position = c.cursor.Position()
		s.Length = c.cursor.Len()
	}
	return s
}

// =============================================================================
// TRANSITIONS
// =============================================================================

func (c *Controller) commit() {
	c.state = Committing
	target := c.cursor.Target()
	c.buf.commit(target)
	c.cursor = nil
	logging.Synth("gen=%d committed %d bytes", c.gen, len(target))
	c.emit(Event{Kind: EventCompleted, Message: MsgUpdated})
	c.active = nil
	c.state = Idle
}

func (c *Controller) fail(err error) {
	c.state = Failed
	c.lastErr = err
	// The preview may still hold a superseded reveal's partial text.
	c.buf.restorePreview()
	logging.Get(logging.CategorySynth).Warn("gen=%d failed: %v", c.gen, err)
	c.emit(Event{Kind: EventFailed, Message: Describe(err), Err: err})
	c.active = nil
	c.state = Idle
}

// abandon cancels the active request context and cursor and invalidates the
// current generation so any result or tick still in flight is dropped.
func (c *Controller) abandon(reason string) {
	ev := Event{Kind: EventCancelled, Message: MsgCancelled}
	c.release()
	if c.cursor != nil {
		c.cursor.Cancel()
		c.cursor = nil
	}
	logging.Synth("gen=%d %s in state %s", c.gen, reason, c.state)
	c.emit(ev)
	c.active = nil
	c.gen++
}

func (c *Controller) release() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

func (c *Controller) emit(ev Event) {
	ev.Generation = c.gen
	if c.active != nil {
		ev.RequestID = c.active.ID
		ev.Instruction = c.active.Instruction
	}
	c.audit(ev)
	for _, o := range c.observers {
		o(ev)
	}
}

var auditKinds = map[EventKind]logging.AuditEventType{
	EventStarted:   logging.AuditSynthStart,
	EventRevealing: logging.AuditSynthReveal,
	EventCompleted: logging.AuditSynthComplete,
	EventFailed:    logging.AuditSynthFail,
	EventCancelled: logging.AuditSynthCancel,
}

func (c *Controller) audit(ev Event) {
	var reqID, errMsg string
	if ev.RequestID != uuid.Nil {
		reqID = ev.RequestID.String()
	}
	if ev.Err != nil {
		errMsg = ev.Err.Error()
	}
	logging.Audit().Synthesis(auditKinds[ev.Kind], reqID, ev.Generation, errMsg)
}
