package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zhouzirui/startup-mentor/backend/internal/model/chat"
	"github.com/zhouzirui/startup-mentor/backend/internal/model/mentor"
	"github.com/zhouzirui/startup-mentor/backend/internal/service/ai"
)

// 用户可见的兜底文案。
const (
	StreamFallbackNotice     = "The mentor is currently reviewing other portfolios. Please try again in a moment."
	GenerationFallbackNotice = "The Mentor is temporarily unavailable due to a cognitive bottleneck."
)

// State is the controller's position in the Idle/Streaming gate.
type State int

const (
	StateIdle State = iota
	StateStreaming
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStreaming:
		return "streaming"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// EventKind names a controller mutation.
type EventKind string

const (
	EventAppended  EventKind = "appended"
	EventFragment  EventKind = "fragment"
	EventSettled   EventKind = "settled"
	EventFailed    EventKind = "failed"
	EventDiscarded EventKind = "discarded" // last event of a closed controller
)

// Event describes one mutation. Message is a copy taken right after it.
type Event struct {
	Kind      EventKind
	Message   chat.Message
	Fragment  string
	Streaming bool
}

// GenerationError is the only error RequestDossier returns.
type GenerationError struct {
	Notice string
	cause  error
}

func (e *GenerationError) Error() string {
	return e.Notice
}

// Unwrap exposes the underlying cause, which always matches ai.ErrGenerationFailure.
func (e *GenerationError) Unwrap() error {
	return e.cause
}

// Option customises a Controller.
type Option func(*Controller)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// WithIDGenerator overrides message id generation.
func WithIDGenerator(newID func() string) Option {
	return func(c *Controller) {
		if newID != nil {
			c.newID = newID
		}
	}
}

// WithTurnTimeout bounds each streaming turn. Zero disables the bound.
func WithTurnTimeout(d time.Duration) Option {
	return func(c *Controller) {
		c.turnTimeout = d
	}
}

// WithSessionID tags the controller for logs and snapshots.
func WithSessionID(id string) Option {
	return func(c *Controller) {
		c.sessionID = id
	}
}

type activeTurn struct {
	id       uint64
	userText string
	index    int
	cancel   context.CancelFunc
	done     chan struct{}
}

type listener struct {
	id int
	fn func(Event)
}

// Controller owns the state of one mentor chat: the transcript, the settled
// history and the Idle/Streaming gate. At most one stream is in flight.
//
// Listeners run synchronously in mutation order while no state lock is held.
// They may call the read-only accessors and Subscribe but must not call Submit
// or Close.
type Controller struct {
	mu       sync.Mutex
	notifyMu sync.Mutex

	mentor      mentor.Mentor
	transport   ai.Transport
	logger      *zap.Logger
	now         func() time.Time
	newID       func() string
	turnTimeout time.Duration
	sessionID   string

	baseCtx    context.Context
	baseCancel context.CancelFunc

	state     State
	closed    bool
	messages  []chat.Message
	history   []chat.Turn
	draft     string
	turnSeq   uint64
	active    *activeTurn
	lastDone  chan struct{}
	listeners []listener
	nextID    int
}

// NewController creates an Idle controller with empty session state.
func NewController(m mentor.Mentor, transport ai.Transport, opts ...Option) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		mentor:     m,
		transport:  transport,
		logger:     zap.NewNop(),
		now:        time.Now,
		newID:      uuid.NewString,
		baseCtx:    ctx,
		baseCancel: cancel,
		messages:   make([]chat.Message, 0, 16),
		history:    make([]chat.Turn, 0, 16),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With(zap.String("session", c.sessionID), zap.String("mentor", m.ID))
	return c
}

// Submit starts a turn. It returns false without touching any state when the
// trimmed text is empty, a turn is already streaming, or the controller is closed.
func (c *Controller) Submit(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}

	c.lock()
	if c.closed || c.state == StateStreaming {
		c.unlock()
		return false
	}

	now := c.now()
	user := c.newMessage(chat.SenderUser, text, chat.StatusSettled, now)
	pending := c.newMessage(chat.SenderMentor, "", chat.StatusPending, now)
	c.messages = append(c.messages, user, pending)
	c.draft = ""
	c.state = StateStreaming
	c.turnSeq++

	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if c.turnTimeout > 0 {
		ctx, cancel = context.WithTimeout(c.baseCtx, c.turnTimeout)
	} else {
		ctx, cancel = context.WithCancel(c.baseCtx)
	}

	turn := &activeTurn{
		id:       c.turnSeq,
		userText: text,
		index:    len(c.messages) - 1,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	c.active = turn
	c.lastDone = turn.done

	req := ai.ChatRequest{
		Mentor:   c.mentor,
		History:  cloneTurns(c.history),
		UserText: text,
	}

	c.logger.Debug("turn started", zap.Uint64("turn", turn.id), zap.Int("history", len(req.History)))

	c.unlockAndNotify(
		Event{Kind: EventAppended, Message: user, Streaming: true},
		Event{Kind: EventAppended, Message: pending, Streaming: true},
	)

	go c.run(ctx, turn, req)
	return true
}

// run is the single consumer of one turn's fragment stream.
func (c *Controller) run(ctx context.Context, turn *activeTurn, req ai.ChatRequest) {
	defer turn.cancel()
	defer func() {
		if r := recover(); r != nil {
			c.fail(turn, fmt.Errorf("%w: panic in transport: %v", ai.ErrStreamFailure, r))
		}
	}()

	reader, err := c.transport.StreamChat(ctx, req)
	if err != nil {
		c.fail(turn, err)
		return
	}
	if reader == nil {
		c.fail(turn, fmt.Errorf("%w: transport returned no stream", ai.ErrStreamFailure))
		return
	}
	defer reader.Close()

	for {
		fragment, err := reader.Recv()
		if errors.Is(err, io.EOF) {
			c.complete(turn)
			return
		}
		if err != nil {
			c.fail(turn, err)
			return
		}
		if !c.applyFragment(turn, fragment) {
			return
		}
	}
}

// applyFragment appends text to the pending message. It reports false once the
// turn is no longer the active one.
func (c *Controller) applyFragment(turn *activeTurn, fragment string) bool {
	c.lock()
	if !c.isActiveLocked(turn) {
		c.unlock()
		c.logger.Debug("dropping stale fragment", zap.Uint64("turn", turn.id))
		return false
	}
	if fragment == "" {
		c.unlock()
		return true
	}

	msg := &c.messages[turn.index]
	msg.Content += fragment
	ev := Event{Kind: EventFragment, Message: *msg, Fragment: fragment, Streaming: true}
	c.unlockAndNotify(ev)
	return true
}

func (c *Controller) complete(turn *activeTurn) {
	c.lock()
	if !c.isActiveLocked(turn) {
		c.unlock()
		return
	}

	msg := &c.messages[turn.index]
	msg.Status = chat.StatusSettled
	c.history = append(c.history,
		chat.Turn{Role: chat.RoleUser, Text: turn.userText},
		chat.Turn{Role: chat.RoleModel, Text: msg.Content},
	)
	done := c.settleLocked()

	c.logger.Debug("turn settled", zap.Uint64("turn", turn.id), zap.Int("chars", len(msg.Content)))
	c.unlockAndNotify(Event{Kind: EventSettled, Message: *msg})
	close(done)
}

func (c *Controller) fail(turn *activeTurn, err error) {
	c.lock()
	if !c.isActiveLocked(turn) {
		c.unlock()
		return
	}

	msg := &c.messages[turn.index]
	msg.Content = StreamFallbackNotice
	msg.Status = chat.StatusFailed
	done := c.settleLocked()

	c.logger.Warn("turn failed", zap.Uint64("turn", turn.id), zap.Error(err))
	c.unlockAndNotify(Event{Kind: EventFailed, Message: *msg})
	close(done)
}

func (c *Controller) isActiveLocked(turn *activeTurn) bool {
	return !c.closed && c.active == turn
}

// settleLocked is the single exit from Streaming. The caller closes the
// returned channel once listeners have seen the terminal event.
func (c *Controller) settleLocked() chan struct{} {
	done := c.active.done
	c.state = StateIdle
	c.active = nil
	return done
}

// Close discards the session. The in-flight stream is cancelled and its later
// fragments are ignored. Listeners get one EventDiscarded, carrying the
// abandoned mentor message when a turn was streaming. Every further Submit is
// rejected.
func (c *Controller) Close() {
	c.lock()
	if c.closed {
		c.unlock()
		return
	}
	c.closed = true

	ev := Event{Kind: EventDiscarded}
	var done chan struct{}
	if c.active != nil {
		turn := c.active
		ev.Message = c.messages[turn.index]
		done = c.settleLocked()
		turn.cancel()
	}
	c.baseCancel()
	c.logger.Debug("session discarded")

	c.unlockAndNotify(ev)
	if done != nil {
		close(done)
	}
}

// Wait blocks until the latest turn has settled and its terminal event has
// been delivered, or until ctx ends.
func (c *Controller) Wait(ctx context.Context) error {
	c.mu.Lock()
	done := c.lastDone
	c.mu.Unlock()

	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Subscribe registers fn for every subsequent event and returns its cancel func.
func (c *Controller) Subscribe(fn func(Event)) func() {
	c.mu.Lock()
	id := c.addListenerLocked(fn)
	c.mu.Unlock()
	return c.unsubscribeFunc(id)
}

// SubscribeWithSnapshot hands the current state to snapshot and registers fn.
// snapshot returns before fn sees its first event, and no mutation falls
// between the two. Like listeners, snapshot must not call Submit or Close.
func (c *Controller) SubscribeWithSnapshot(snapshot func(chat.Transcript), fn func(Event)) func() {
	c.lock()
	snap := c.snapshotLocked()
	id := c.addListenerLocked(fn)
	c.mu.Unlock()
	defer c.notifyMu.Unlock()

	snapshot(snap)
	return c.unsubscribeFunc(id)
}

func (c *Controller) addListenerLocked(fn func(Event)) int {
	c.nextID++
	c.listeners = append(c.listeners, listener{id: c.nextID, fn: fn})
	return c.nextID
}

func (c *Controller) unsubscribeFunc(id int) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			for i, l := range c.listeners {
				if l.id == id {
					c.listeners = append(c.listeners[:i:i], c.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

// lock takes notifyMu before mu. Every mutator uses this order so a listener
// running under notifyMu can still take mu through the accessors.
func (c *Controller) lock() {
	c.notifyMu.Lock()
	c.mu.Lock()
}

func (c *Controller) unlock() {
	c.mu.Unlock()
	c.notifyMu.Unlock()
}

// unlockAndNotify releases mu and delivers events while still holding
// notifyMu, so events arrive in the order mutations happened.
func (c *Controller) unlockAndNotify(events ...Event) {
	listeners := make([]listener, len(c.listeners))
	copy(listeners, c.listeners)
	c.mu.Unlock()
	defer c.notifyMu.Unlock()

	for _, ev := range events {
		for _, l := range listeners {
			c.dispatch(l.fn, ev)
		}
	}
}

func (c *Controller) dispatch(fn func(Event), ev Event) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("listener panicked", zap.String("event", string(ev.Kind)), zap.Any("panic", r))
		}
	}()
	fn(ev)
}

// Messages returns a copy of the transcript.
func (c *Controller) Messages() []chat.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneMessages(c.messages)
}

// History returns a copy of the settled turn records.
func (c *Controller) History() []chat.Turn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneTurns(c.history)
}

// IsStreaming reports whether a turn is in flight.
func (c *Controller) IsStreaming() bool {
	return c.State() == StateStreaming
}

// State returns the current gate state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Closed reports whether Close has been called.
func (c *Controller) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Mentor returns the bound mentor by value.
func (c *Controller) Mentor() mentor.Mentor {
	return c.mentor
}

// Draft returns the unsent input.
func (c *Controller) Draft() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

// SetDraft stores unsent input. Ignored after Close.
func (c *Controller) SetDraft(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.draft = text
}

// Snapshot returns a consistent copy of the whole session state.
func (c *Controller) Snapshot() chat.Transcript {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() chat.Transcript {
	return chat.Transcript{
		SessionID: c.sessionID,
		MentorID:  c.mentor.ID,
		Messages:  cloneMessages(c.messages),
		Streaming: c.state == StateStreaming,
		Draft:     c.draft,
		History:   cloneTurns(c.history),
	}
}

// RequestDossier runs the one-shot structured generation for idea. It is
// independent of the streaming gate and never touches the transcript.
func (c *Controller) RequestDossier(ctx context.Context, idea string) (*ai.Dossier, error) {
	idea = strings.TrimSpace(idea)
	if idea == "" {
		return nil, c.generationError(fmt.Errorf("%w: empty idea", ai.ErrGenerationFailure))
	}

	dossier, err := c.generate(ctx, idea)
	if err != nil {
		c.logger.Warn("dossier generation failed", zap.Error(err))
		return nil, c.generationError(err)
	}
	return dossier, nil
}

func (c *Controller) generate(ctx context.Context, idea string) (dossier *ai.Dossier, err error) {
	defer func() {
		if r := recover(); r != nil {
			dossier = nil
			err = fmt.Errorf("%w: panic in transport: %v", ai.ErrGenerationFailure, r)
		}
	}()

	dossier, err = c.transport.Generate(ctx, ai.DossierRequest{Mentor: c.mentor, Idea: idea})
	if err == nil && dossier == nil {
		err = errors.New("transport returned no dossier")
	}
	return dossier, err
}

func (c *Controller) generationError(err error) *GenerationError {
	if !errors.Is(err, ai.ErrGenerationFailure) {
		err = fmt.Errorf("%w: %v", ai.ErrGenerationFailure, err)
	}
	return &GenerationError{Notice: GenerationFallbackNotice, cause: err}
}

func (c *Controller) newMessage(sender chat.Sender, content string, status chat.Status, at time.Time) chat.Message {
	return chat.Message{
		ID:        c.newID(),
		Sender:    sender,
		Content:   content,
		Timestamp: at.Format(chat.TimestampLayout),
		Status:    status,
		CreatedAt: at,
	}
}

func cloneMessages(in []chat.Message) []chat.Message {
	out := make([]chat.Message, len(in))
	copy(out, in)
	return out
}

func cloneTurns(in []chat.Turn) []chat.Turn {
	out := make([]chat.Turn, len(in))
	copy(out, in)
	return out
}
