// Package bustest provides in-memory bus fakes for tests.
package bustest

import (
	"context"
	"fmt"
	"sync"

	"github.com/plexsphere/servicectl/internal/bus"
)

// Call records one invocation made through a Conn.
type Call struct {
	Domain bus.Domain
	Method string
	Args   []interface{}
}

// Handler answers a method call with a reply body or an error.
type Handler func(args []interface{}) ([]interface{}, error)

// Conn is a fake bus.Conn. Methods without a handler fail with a
// *bus.TransportError carrying an UnknownMethod-style message.
type Conn struct {
	domain   bus.Domain
	handlers map[string]Handler

	mu     sync.Mutex
	calls  []Call
	closed bool
}

// NewConn returns a fake connection attached to d.
func NewConn(d bus.Domain) *Conn {
	return &Conn{domain: d, handlers: make(map[string]Handler)}
}

// Handle registers h for the member (for example "ListUnits").
func (c *Conn) Handle(member string, h Handler) *Conn {
	c.handlers[member] = h
	return c
}

// Reply registers a handler that always returns body.
func (c *Conn) Reply(member string, body ...interface{}) *Conn {
	return c.Handle(member, func([]interface{}) ([]interface{}, error) { return body, nil })
}

// Fail registers a handler that always fails with err.
func (c *Conn) Fail(member string, err error) *Conn {
	return c.Handle(member, func([]interface{}) ([]interface{}, error) { return nil, err })
}

func (c *Conn) Domain() bus.Domain { return c.domain }

func (c *Conn) Call(_ context.Context, m bus.Method, args ...interface{}) (*bus.Reply, error) {
	c.mu.Lock()
	c.calls = append(c.calls, Call{Domain: c.domain, Method: m.Member, Args: args})
	h, ok := c.handlers[m.Member]
	c.mu.Unlock()

	if !ok {
		return nil, &bus.TransportError{Domain: c.domain, Op: m.String(), Err: fmt.Errorf("unknown method %s", m.Member)}
	}
	body, err := h(args)
	if err != nil {
		return nil, &bus.TransportError{Domain: c.domain, Op: m.String(), Err: err}
	}
	return &bus.Reply{Member: m.Member, Body: body}, nil
}

func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

// Calls returns a copy of the recorded calls.
func (c *Conn) Calls() []Call {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Call(nil), c.calls...)
}

// CallsTo returns the recorded calls to member.
func (c *Conn) CallsTo(member string) []Call {
	var out []Call
	for _, call := range c.Calls() {
		if call.Method == member {
			out = append(out, call)
		}
	}
	return out
}

// Closed reports whether Close was called.
func (c *Conn) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Connector is a fake bus.Connector handing out preconfigured connections.
// A domain with no connection fails to connect.
type Connector struct {
	mu       sync.Mutex
	conns    map[bus.Domain]*Conn
	errs     map[bus.Domain]error
	connects map[bus.Domain]int
}

// NewConnector returns an empty fake connector.
func NewConnector() *Connector {
	return &Connector{
		conns:    make(map[bus.Domain]*Conn),
		errs:     make(map[bus.Domain]error),
		connects: make(map[bus.Domain]int),
	}
}

// With makes Connect(conn.Domain()) return conn.
func (c *Connector) With(conn *Conn) *Connector {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conns[conn.Domain()] = conn
	return c
}

// Unreachable makes Connect(d) fail with err.
func (c *Connector) Unreachable(d bus.Domain, err error) *Connector {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errs[d] = err
	return c
}

func (c *Connector) Connect(_ context.Context, d bus.Domain) (bus.Conn, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connects[d]++
	if err, ok := c.errs[d]; ok {
		return nil, &bus.TransportError{Domain: d, Op: "connect", Err: err}
	}
	conn, ok := c.conns[d]
	if !ok {
		return nil, &bus.TransportError{Domain: d, Op: "connect", Err: fmt.Errorf("no %s bus", d)}
	}
	return conn, nil
}

// Connects returns how many times Connect was called for d.
func (c *Connector) Connects(d bus.Domain) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connects[d]
}
