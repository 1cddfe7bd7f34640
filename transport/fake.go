package transport

import "time"

// fakeTask is the shared cancelable unit behind FakeEventLoop's idle
// tasks and timers.
type fakeTask struct {
	fn        func()
	cancelled bool
}

func (t *fakeTask) Cancel() { t.cancelled = true }

// FakeEventLoop is a deterministic, manually-driven EventLoop for tests
// and the demo command: idle tasks and timers only run when drained
// explicitly, standing in for a real single-threaded reactor.
type FakeEventLoop struct {
	idle   []*fakeTask
	timers []*fakeTask
}

func NewFakeEventLoop() *FakeEventLoop {
	return &FakeEventLoop{}
}

func (l *FakeEventLoop) ScheduleIdle(fn func()) Cancelable {
	t := &fakeTask{fn: fn}
	l.idle = append(l.idle, t)
	return t
}

func (l *FakeEventLoop) ScheduleTimer(_ time.Duration, fn func()) Cancelable {
	t := &fakeTask{fn: fn}
	l.timers = append(l.timers, t)
	return t
}

// RunIdle drains every idle task scheduled so far, in order, skipping
// cancelled ones. This is the test/demo equivalent of one event-loop
// turn completing.
func (l *FakeEventLoop) RunIdle() {
	pending := l.idle
	l.idle = nil
	for _, t := range pending {
		if !t.cancelled {
			t.fn()
		}
	}
}

// ExpireTimers fires every timer armed so far, letting tests simulate a
// ping timeout without waiting on a real clock.
func (l *FakeEventLoop) ExpireTimers() {
	pending := l.timers
	l.timers = nil
	for _, t := range pending {
		if !t.cancelled {
			t.fn()
		}
	}
}

// PostedError records one PostError call on a FakeResource.
type PostedError struct {
	Code    uint32
	Message string
}

// FakeResource records every error and no-memory post made against it,
// instead of tearing down a real connection.
type FakeResource struct {
	Errors     []PostedError
	NoMemories int
}

func (r *FakeResource) PostError(code uint32, message string) {
	r.Errors = append(r.Errors, PostedError{Code: code, Message: message})
}

func (r *FakeResource) PostNoMemory() {
	r.NoMemories++
}

// Errored reports whether any protocol error was posted.
func (r *FakeResource) Errored() bool { return len(r.Errors) > 0 }

// FakeBaseSurface stands in for the generic surface primitive.
type FakeBaseSurface struct {
	hasBuffer bool
	commitFn  func(bool)
	destroyFn func()
}

func NewFakeBaseSurface() *FakeBaseSurface { return &FakeBaseSurface{} }

func (s *FakeBaseSurface) HasBuffer() bool { return s.hasBuffer }

func (s *FakeBaseSurface) OnCommit(fn func(bool)) { s.commitFn = fn }

func (s *FakeBaseSurface) OnDestroy(fn func()) { s.destroyFn = fn }

// Commit simulates the underlying surface primitive notifying a commit,
// optionally with a buffer attached.
func (s *FakeBaseSurface) Commit(hasBuffer bool) {
	s.hasBuffer = hasBuffer
	if s.commitFn != nil {
		s.commitFn(hasBuffer)
	}
}

// Destroy simulates the underlying surface primitive being destroyed.
func (s *FakeBaseSurface) Destroy() {
	if s.destroyFn != nil {
		s.destroyFn()
	}
}

// FakeSeat is a minimal seat with one pointer and one keyboard grab
// slot, enough to exercise PopupGrabChain's install/tear-down rules.
type FakeSeat struct {
	id SeatID

	validSerials map[Serial]bool

	pointerOwner    ClientID
	pointerHandlers *PointerGrabHandlers

	keyboardHandlers *KeyboardGrabHandlers

	nextButtonSerial Serial
}

func NewFakeSeat(id SeatID) *FakeSeat {
	return &FakeSeat{id: id, validSerials: make(map[Serial]bool)}
}

func (s *FakeSeat) ID() SeatID { return s.id }

// AllowSerial marks a serial as one the seat would currently validate,
// simulating a real recent-input-serial window.
func (s *FakeSeat) AllowSerial(serial Serial) { s.validSerials[serial] = true }

func (s *FakeSeat) ValidateSerial(serial Serial) bool { return s.validSerials[serial] }

func (s *FakeSeat) StartPointerGrab(client ClientID, h PointerGrabHandlers) {
	s.pointerOwner = client
	hc := h
	s.pointerHandlers = &hc
}

func (s *FakeSeat) EndPointerGrab() { s.pointerHandlers = nil }

func (s *FakeSeat) StartKeyboardGrab(_ ClientID, h KeyboardGrabHandlers) {
	hc := h
	s.keyboardHandlers = &hc
}

func (s *FakeSeat) EndKeyboardGrab() { s.keyboardHandlers = nil }

func (s *FakeSeat) HasPointerGrab() bool  { return s.pointerHandlers != nil }
func (s *FakeSeat) HasKeyboardGrab() bool { return s.keyboardHandlers != nil }

// SetNextButtonSerial sets what ForwardPointerButton will report on the
// next call; tests set it to 0 to simulate "no focused client" and trigger
// grab tear-down.
func (s *FakeSeat) SetNextButtonSerial(serial Serial) { s.nextButtonSerial = serial }

// ForwardPointerButton implements transport.Seat.
func (s *FakeSeat) ForwardPointerButton() Serial { return s.nextButtonSerial }

// FireButton simulates a client-originated button event reaching
// whatever grab currently owns the pointer.
func (s *FakeSeat) FireButton() {
	if s.pointerHandlers != nil && s.pointerHandlers.OnButton != nil {
		s.pointerHandlers.OnButton()
	}
}

// FireCancel simulates the compositor revoking both grabs at once (e.g.
// on a seat capability change).
func (s *FakeSeat) FireCancel() {
	if s.pointerHandlers != nil && s.pointerHandlers.OnCancel != nil {
		s.pointerHandlers.OnCancel()
	}
	if s.keyboardHandlers != nil && s.keyboardHandlers.OnCancel != nil {
		s.keyboardHandlers.OnCancel()
	}
}
