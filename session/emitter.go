package session

import "github.com/halcyon-ai/respstream/protocol"

// emitter is a synchronous, in-process publish/subscribe surface. Callbacks
// run inline on the ingesting goroutine, in registration order. The terminal
// end notification fires at most once for the life of the session.
type emitter struct {
	changeFns []func()
	eventFns  []func(protocol.Event)
	statusFns []func(protocol.Status)
	errorFns  []func(*protocol.ErrorDetail)
	endFns    []func()
	endFired  bool
}

// notification is one delivery plan, collected under the session lock and
// delivered after it is released so callbacks can call the read accessors.
type notification struct {
	event     *protocol.Event
	eventFns  []func(protocol.Event)
	status    protocol.Status
	statusFns []func(protocol.Status)
	errDetail *protocol.ErrorDetail
	errorFns  []func(*protocol.ErrorDetail)
	endFns    []func()
	changeFns []func()
}

// collect snapshots the registered callbacks that apply to this delivery.
// Must be called with the session lock held; marks the end notification
// consumed so it cannot fire twice.
func (e *emitter) collect(ev protocol.Event, statusChanged bool, status protocol.Status, errDetail *protocol.ErrorDetail, ended bool) notification {
	n := notification{
		event:     &ev,
		eventFns:  append([]func(protocol.Event){}, e.eventFns...),
		changeFns: append([]func(){}, e.changeFns...),
	}
	if statusChanged {
		n.status = status
		n.statusFns = append(n.statusFns, e.statusFns...)
	}
	if errDetail != nil {
		n.errDetail = errDetail
		n.errorFns = append(n.errorFns, e.errorFns...)
	}
	if ended && !e.endFired {
		e.endFired = true
		n.endFns = append(n.endFns, e.endFns...)
	}
	return n
}

// deliver runs the plan: event, status, error, end, then change.
func (n notification) deliver() {
	if n.event != nil {
		for _, fn := range n.eventFns {
			fn(*n.event)
		}
	}
	for _, fn := range n.statusFns {
		fn(n.status)
	}
	for _, fn := range n.errorFns {
		fn(n.errDetail)
	}
	for _, fn := range n.endFns {
		fn()
	}
	for _, fn := range n.changeFns {
		fn()
	}
}
