package session

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/halcyon-ai/respstream/protocol"
)

// Session reconstructs one generation session from its event stream. It owns
// the transcript, the canonical response snapshot, and the identity indexes
// that tie events to transcript positions.
type Session struct {
	mu     sync.RWMutex
	logger *slog.Logger

	transcript []Message
	byID       map[string]int
	byIndex    map[int]int

	// epochStart is the transcript position where the current response
	// epoch begins; entries before it are never reordered.
	epochStart int

	responseID string
	response   *protocol.Response
	status     protocol.Status
	ended      bool
	lastErr    *protocol.ErrorDetail

	// Response-scoped audio accumulators. The protocol attaches audio to
	// the response, not to any output item.
	audioChunks     []string
	audioTranscript strings.Builder

	em emitter
}

// SessionConfig holds construction options.
type SessionConfig struct {
	Inputs []protocol.InputItem
	Prior  *protocol.Response
	Logger *slog.Logger
}

// SessionOption configures a new session.
type SessionOption func(*SessionConfig)

// WithInputItems seeds the transcript with pre-existing conversation inputs.
func WithInputItems(items ...protocol.InputItem) SessionOption {
	return func(c *SessionConfig) { c.Inputs = append(c.Inputs, items...) }
}

// WithPriorResponse resumes a session mid-response: every output item of the
// snapshot is materialized into the transcript, in snapshot order, before
// any new event is ingested.
func WithPriorResponse(r *protocol.Response) SessionOption {
	return func(c *SessionConfig) { c.Prior = r }
}

// WithLogger sets the logger for skip/mismatch diagnostics.
func WithLogger(l *slog.Logger) SessionOption {
	return func(c *SessionConfig) { c.Logger = l }
}

// NewSession creates a session, optionally seeded from prior inputs and a
// prior response snapshot.
func NewSession(opts ...SessionOption) *Session {
	var cfg SessionConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	s := &Session{
		logger:  cfg.Logger,
		byID:    make(map[string]int),
		byIndex: make(map[int]int),
		status:  protocol.StatusIdle,
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	for _, in := range cfg.Inputs {
		item := in.Clone()
		s.appendInput(Message{Input: &item})
	}

	if cfg.Prior != nil {
		s.response = cfg.Prior.Clone()
		s.responseID = cfg.Prior.ID
		if cfg.Prior.Status != "" {
			s.status = cfg.Prior.Status
		}
		s.ended = s.status.Terminal()
		s.em.endFired = s.ended

		for i, item := range cfg.Prior.Output {
			if item == nil {
				continue
			}
			s.insertOutput(&OutputMessage{
				Item:        item.CloneItem(),
				OutputIndex: i,
			})
		}
	}

	return s
}

// OnChange registers a callback fired once per ingested event, after both
// projections have been updated.
func (s *Session) OnChange(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.em.changeFns = append(s.em.changeFns, fn)
}

// OnEvent registers a callback fired with a copy of every ingested event.
func (s *Session) OnEvent(fn func(protocol.Event)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.em.eventFns = append(s.em.eventFns, fn)
}

// OnStatus registers a callback fired whenever the session status changes.
func (s *Session) OnStatus(fn func(protocol.Status)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.em.statusFns = append(s.em.statusFns, fn)
}

// OnError registers a callback fired when the service reports a terminal
// protocol error.
func (s *Session) OnError(fn func(*protocol.ErrorDetail)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.em.errorFns = append(s.em.errorFns, fn)
}

// OnEnd registers a callback fired exactly once, the first time the session
// reaches a terminal status.
func (s *Session) OnEnd(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.em.endFns = append(s.em.endFns, fn)
}

// AddInput appends one externally-supplied input item to the transcript.
func (s *Session) AddInput(item protocol.InputItem) {
	s.mu.Lock()
	clone := item.Clone()
	s.appendInput(Message{Input: &clone})
	change := append([]func(){}, s.em.changeFns...)
	s.mu.Unlock()

	for _, fn := range change {
		fn()
	}
}

// AddApproval appends a tool-approval response input for the given approval
// request.
func (s *Session) AddApproval(approvalRequestID string, approve bool) {
	s.AddInput(protocol.NewApprovalResponse(approvalRequestID, approve))
}

// Ingest consumes one event from the stream. Events must arrive once each,
// in receipt order; both projections are updated as a unit before any
// notification fires. Ingest never fails: protocol errors are state, and
// anything unintelligible is recorded or skipped with a diagnostic.
func (s *Session) Ingest(ev protocol.Event) {
	s.mu.Lock()

	// The stored copy must never alias the caller's event.
	ev = ev.Clone()

	statusBefore := s.status
	endedBefore := s.ended
	isError := ev.Type == protocol.EventError

	s.applySnapshot(ev)
	s.applyTranscript(ev)

	// Collect the notification plan under the lock, deliver after releasing
	// it so callbacks can use the read accessors.
	var errDetail *protocol.ErrorDetail
	if isError {
		errDetail = s.lastErr.Clone()
	}
	n := s.em.collect(ev.Clone(), s.status != statusBefore, s.status, errDetail, s.ended && !endedBefore)
	s.mu.Unlock()

	n.deliver()
}

// applySnapshot updates the canonical response projection.
func (s *Session) applySnapshot(ev protocol.Event) {
	switch ev.Type {
	case protocol.EventResponseCreated,
		protocol.EventResponseQueued,
		protocol.EventResponseInProgress,
		protocol.EventResponseCompleted,
		protocol.EventResponseFailed,
		protocol.EventResponseIncomplete:
		// Lifecycle events replace the top-level object wholesale, except
		// that a payload omitting the output array keeps the accumulated one.
		if ev.Response != nil {
			prev := s.response
			s.response = ev.Response.Clone()
			if s.response.Output == nil && prev != nil {
				s.response.Output = prev.Output
			}
		} else if s.response == nil {
			s.response = &protocol.Response{}
		}
		s.response.Status = lifecycleStatus(ev)

	case protocol.EventError:
		if s.response == nil {
			s.response = &protocol.Response{}
		}
		s.response.Status = protocol.StatusFailed
		s.response.Error = &protocol.ErrorDetail{
			Code:           ev.Code,
			Message:        ev.Message,
			Param:          ev.Param,
			SequenceNumber: ev.SequenceNumber,
		}

	case protocol.EventAudioDelta, protocol.EventAudioDone,
		protocol.EventAudioTranscriptDelta, protocol.EventAudioTranscriptDone:
		// Response-scoped; nothing positional to mutate here.

	default:
		s.applySnapshotItem(ev)
	}
}

// applySnapshotItem mutates the snapshot's output array. The snapshot is
// strictly positional: without an output index there is nowhere to put the
// data.
func (s *Session) applySnapshotItem(ev protocol.Event) {
	if ev.OutputIndex == nil {
		return
	}
	idx := *ev.OutputIndex

	if s.response == nil {
		s.response = &protocol.Response{}
	}
	for len(s.response.Output) <= idx {
		s.response.Output = append(s.response.Output, nil)
	}

	switch ev.Type {
	case protocol.EventOutputItemAdded, protocol.EventOutputItemDone:
		item, err := ev.ParsedItem()
		if err != nil {
			s.logger.Warn("skipping malformed item payload",
				"event_type", ev.Type,
				"output_index", idx,
				"error", err,
			)
			return
		}
		if item != nil {
			s.response.Output[idx] = item
		}
		return
	}

	item := s.response.Output[idx]
	if item == nil {
		item = newPlaceholder(ev)
		s.response.Output[idx] = item
	}

	kind, known := impliedKind(ev.Type)
	if !known {
		return
	}
	if item.Kind() != kind {
		s.logger.Warn("item kind mismatch, ignoring event",
			"event_type", ev.Type,
			"output_index", idx,
			"have_kind", item.Kind(),
			"want_kind", kind,
		)
		return
	}
	applyToItem(item, ev)
}

// applyTranscript updates the transcript projection and session status.
func (s *Session) applyTranscript(ev protocol.Event) {
	switch ev.Type {
	case protocol.EventResponseCreated:
		// New response epoch: output indices restart from zero.
		s.resetIdentity()
		if ev.Response != nil && ev.Response.ID != "" {
			s.responseID = ev.Response.ID
		}
		s.setStatus(lifecycleStatus(ev))

	case protocol.EventResponseQueued,
		protocol.EventResponseInProgress,
		protocol.EventResponseCompleted,
		protocol.EventResponseFailed,
		protocol.EventResponseIncomplete:
		// A differing response id means we missed the created event.
		if ev.Response != nil && ev.Response.ID != "" && ev.Response.ID != s.responseID {
			s.resetIdentity()
			s.responseID = ev.Response.ID
		}
		s.setStatus(lifecycleStatus(ev))

	case protocol.EventError:
		s.lastErr = &protocol.ErrorDetail{
			Code:           ev.Code,
			Message:        ev.Message,
			Param:          ev.Param,
			SequenceNumber: ev.SequenceNumber,
		}
		s.setStatus(protocol.StatusFailed)

	case protocol.EventAudioDelta:
		s.audioChunks = append(s.audioChunks, ev.Delta)

	case protocol.EventAudioTranscriptDelta:
		s.audioTranscript.WriteString(ev.Delta)

	case protocol.EventAudioTranscriptDone:
		if ev.Text != "" {
			s.audioTranscript.Reset()
			s.audioTranscript.WriteString(ev.Text)
		}

	case protocol.EventAudioDone:
		// Terminal marker only; the chunks already accumulated.

	default:
		s.applyTranscriptItem(ev)
	}
}

// applyTranscriptItem routes an item-scoped event to its transcript entry,
// creating a placeholder when neither identity resolves. Unknown event kinds
// that carry the generic {output_index, item_id?} shape are recorded against
// the item without interpretation.
func (s *Session) applyTranscriptItem(ev protocol.Event) {
	if ev.OutputIndex == nil && ev.ItemID == "" {
		s.logger.Warn("skipping event with no item identity", "event_type", ev.Type)
		return
	}

	pos, ok := s.resolve(ev.ItemID, ev.OutputIndex)
	if !ok {
		om := &OutputMessage{
			Item:        s.discoveredItem(ev),
			OutputIndex: indexOf(ev.OutputIndex),
		}
		pos = s.insertOutput(om)
	}

	om := s.transcript[pos].Output
	if om == nil {
		s.logger.Warn("event identity resolved to an input message, ignoring",
			"event_type", ev.Type,
			"item_id", ev.ItemID,
		)
		return
	}

	// Raw event history is kept regardless of whether the event mutates
	// the item shape.
	om.Events = append(om.Events, ev)

	oldID := om.Item.ItemID()

	switch ev.Type {
	case protocol.EventOutputItemAdded, protocol.EventOutputItemDone:
		item, err := ev.ParsedItem()
		if err != nil {
			s.logger.Warn("skipping malformed item payload",
				"event_type", ev.Type,
				"item_id", ev.ItemID,
				"error", err,
			)
		} else if item != nil {
			// Authoritative replacement; position, raw history, and
			// augmentations survive.
			om.Item = item
		}

	default:
		kind, known := impliedKind(ev.Type)
		if !known {
			break // recorded above, nothing to interpret
		}
		if om.Item.Kind() != kind {
			s.logger.Warn("item kind mismatch, ignoring event",
				"event_type", ev.Type,
				"item_id", ev.ItemID,
				"have_kind", om.Item.Kind(),
				"want_kind", kind,
			)
			break
		}
		applyToItem(om.Item, ev)
		applyAugments(om, ev)
	}

	s.reindexItem(oldID, om.Item.ItemID(), pos)
	// Reconcile a positional lookup the id-based path may have bypassed.
	if ev.OutputIndex != nil {
		s.byIndex[*ev.OutputIndex] = pos
	}
}

// discoveredItem builds the item for a transcript entry seen for the first
// time: the event's own payload when it carries one, a placeholder shell
// otherwise.
func (s *Session) discoveredItem(ev protocol.Event) protocol.Item {
	if ev.Type == protocol.EventOutputItemAdded || ev.Type == protocol.EventOutputItemDone {
		if item, err := ev.ParsedItem(); err == nil && item != nil {
			return item
		}
	}
	return newPlaceholder(ev)
}

func (s *Session) setStatus(st protocol.Status) {
	if st == "" {
		return
	}
	s.status = st
	if st.Terminal() {
		s.ended = true
	}
}

// lifecycleStatus derives the session status from a lifecycle event,
// preferring the status reported on the embedded response object.
func lifecycleStatus(ev protocol.Event) protocol.Status {
	if ev.Response != nil && ev.Response.Status != "" {
		return ev.Response.Status
	}
	switch ev.Type {
	case protocol.EventResponseQueued:
		return protocol.StatusQueued
	case protocol.EventResponseCreated, protocol.EventResponseInProgress:
		return protocol.StatusInProgress
	case protocol.EventResponseCompleted:
		return protocol.StatusCompleted
	case protocol.EventResponseFailed:
		return protocol.StatusFailed
	case protocol.EventResponseIncomplete:
		return protocol.StatusIncomplete
	default:
		return ""
	}
}

// Transcript returns a deep copy of the ordered transcript.
func (s *Session) Transcript() []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Message, len(s.transcript))
	for i, m := range s.transcript {
		out[i] = m.Clone()
	}
	return out
}

// Status returns the current lifecycle status.
func (s *Session) Status() protocol.Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Ended reports whether the session reached a terminal status.
func (s *Session) Ended() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ended
}

// Response returns a deep copy of the canonical response snapshot, or nil
// before any lifecycle event arrived.
func (s *Session) Response() *protocol.Response {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.response.Clone()
}

// LastError returns the last protocol error event, or nil.
func (s *Session) LastError() *protocol.ErrorDetail {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr.Clone()
}

// Err returns the session's terminal failure as an error, or nil while the
// session is live or ended cleanly.
func (s *Session) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.status != protocol.StatusFailed {
		return nil
	}
	perr := &ProtocolError{}
	if s.lastErr != nil {
		perr.Code = s.lastErr.Code
		perr.Message = s.lastErr.Message
		perr.Param = s.lastErr.Param
	} else if s.response != nil && s.response.Error != nil {
		perr.Code = s.response.Error.Code
		perr.Message = s.response.Error.Message
		perr.Param = s.response.Error.Param
	}
	return perr
}

// Snapshot returns the combined session state: transcript, status, response
// snapshot, last error, and the response-scoped audio augmentations.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	transcript := make([]Message, len(s.transcript))
	for i, m := range s.transcript {
		transcript[i] = m.Clone()
	}
	return Snapshot{
		Transcript:      transcript,
		Status:          s.status,
		Ended:           s.ended,
		Response:        s.response.Clone(),
		LastError:       s.lastErr.Clone(),
		AudioChunks:     append([]string(nil), s.audioChunks...),
		AudioTranscript: s.audioTranscript.String(),
	}
}
