// Package bus is a thin synchronous call wrapper around a single D-Bus
// connection to either the system bus or the per-user session bus.
//
// Callers obtain a Conn from a Connector, issue remote method calls with
// Conn.Call and decode the reply with Reply.Decode. Every connection is
// private to its caller and must be closed after use; connections are never
// shared or pooled.
package bus

import (
	"context"
	"fmt"

	"github.com/godbus/dbus/v5"
)

// Domain identifies one of the two independent bus instances.
type Domain string

const (
	// System is the system-wide bus.
	System Domain = "system"
	// Session is the bus of the current user's login session.
	Session Domain = "session"
)

// Domains returns the bus domains in canonical order: system first.
func Domains() []Domain {
	return []Domain{System, Session}
}

// ParseDomain parses a domain name. "user" is accepted as an alias for the
// session bus, matching systemctl's --user flag.
func ParseDomain(s string) (Domain, error) {
	switch s {
	case string(System):
		return System, nil
	case string(Session), "user":
		return Session, nil
	}
	return "", fmt.Errorf("bus: unknown domain %q (must be \"system\" or \"session\")", s)
}

// Method names a remote method: destination service, object path,
// interface and member.
type Method struct {
	Destination string
	Path        dbus.ObjectPath
	Interface   string
	Member      string
}

// String returns the fully qualified method name (interface.member).
func (m Method) String() string {
	return m.Interface + "." + m.Member
}

// Conn is a single open bus connection.
type Conn interface {
	// Domain reports which bus this connection is attached to.
	Domain() Domain

	// Call invokes m with args and blocks until the reply arrives or the
	// transport fails. Failures are *TransportError.
	Call(ctx context.Context, m Method, args ...interface{}) (*Reply, error)

	// Close releases the connection.
	Close() error
}

// Connector opens connections to a bus domain.
type Connector interface {
	// Connect opens a new private connection to d. Failures are
	// *TransportError.
	Connect(ctx context.Context, d Domain) (Conn, error)
}

// Reply is the raw body of a method return.
type Reply struct {
	// Member is the method that produced the reply, for error context.
	Member string
	Body   []interface{}
}

// Decode stores the reply body into dest, one pointer per out argument.
// Any mismatch between the wire shape and dest is a *DeserializationError.
func (r *Reply) Decode(dest ...interface{}) error {
	if err := dbus.Store(r.Body, dest...); err != nil {
		return &DeserializationError{Member: r.Member, Err: err}
	}
	return nil
}

// Field extracts element i of a decoded struct tuple as T. A short tuple or
// a type mismatch is a *DeserializationError naming member.
func Field[T any](tuple []interface{}, i int, member string) (T, error) {
	var zero T
	if i >= len(tuple) {
		return zero, &DeserializationError{
			Member: member,
			Err:    fmt.Errorf("tuple has %d fields, want at least %d", len(tuple), i+1),
		}
	}
	v, ok := tuple[i].(T)
	if !ok {
		return zero, &DeserializationError{
			Member: member,
			Err:    fmt.Errorf("field %d: got %T, want %T", i, tuple[i], zero),
		}
	}
	return v, nil
}
