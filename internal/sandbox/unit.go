package sandbox

import (
	"fmt"
	"sync"
)

// Message is the single reply of an execution unit: a report, or an
// environment fault when the unit itself failed.
type Message struct {
	Report *Report
	Fault  error
}

// Unit is one disposable execution environment
type Unit interface {
	// Start runs the request asynchronously and writes at most one Message
	// to reply. reply must be buffered.
	Start(req Request, reply chan<- Message)
	// Terminate stops the unit. A terminated unit never replies.
	Terminate()
}

// Spawner creates a fresh unit for every run
type Spawner func(config Config) Unit

// NewVMUnit is the default spawner: one goroutine owning one goja runtime
func NewVMUnit(config Config) Unit {
	return &vmUnit{config: config}
}

type vmUnit struct {
	config Config

	mu         sync.Mutex
	runtime    *Runtime
	terminated bool
}

func (u *vmUnit) Start(req Request, reply chan<- Message) {
	go u.run(req, reply)
}

func (u *vmUnit) run(req Request, reply chan<- Message) {
	defer func() {
		if p := recover(); p != nil {
			u.send(reply, Message{Fault: fmt.Errorf("panic: %v", p)})
		}
	}()

	rt, err := New(u.config)
	if err != nil {
		u.send(reply, Message{Fault: err})
		return
	}

	if !u.attach(rt) {
		return
	}

	report := rt.Execute(req)
	u.send(reply, Message{Report: &report})
}

// attach publishes the runtime so Terminate can interrupt it. It reports
// false when the unit was terminated before the runtime existed.
func (u *vmUnit) attach(rt *Runtime) bool {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.terminated {
		return false
	}
	u.runtime = rt
	return true
}

func (u *vmUnit) send(reply chan<- Message, msg Message) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.terminated {
		return
	}
	select {
	case reply <- msg:
	default:
	}
}

func (u *vmUnit) Terminate() {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.terminated {
		return
	}
	u.terminated = true
	if u.runtime != nil {
		u.runtime.Interrupt("execution unit terminated")
	}
	u.runtime = nil
}
