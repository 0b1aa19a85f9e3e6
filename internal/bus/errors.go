package bus

import (
	"errors"
	"fmt"

	"github.com/godbus/dbus/v5"
)

// TransportError reports a failure to reach the bus or a rejected call:
// connection refused, bus not present, D-Bus error reply, timeout.
type TransportError struct {
	Domain Domain
	// Op is "connect" or the fully qualified method name.
	Op  string
	Err error
}

// Error returns the formatted error string.
func (e *TransportError) Error() string {
	return fmt.Sprintf("bus: %s: %s: %v", e.Domain, e.Op, e.Err)
}

// Unwrap returns the underlying transport error.
func (e *TransportError) Unwrap() error { return e.Err }

// DeserializationError reports a reply whose wire shape does not match the
// expected tuple arity or types, usually daemon version skew.
type DeserializationError struct {
	Member string
	Err    error
}

// Error returns the formatted error string.
func (e *DeserializationError) Error() string {
	return fmt.Sprintf("bus: decode %s reply: %v", e.Member, e.Err)
}

// Unwrap returns the underlying decode error.
func (e *DeserializationError) Unwrap() error { return e.Err }

// RemoteErrorName returns the D-Bus error name carried by err, such as
// "org.freedesktop.systemd1.NoSuchUnit", or "" if err is not an error reply.
func RemoteErrorName(err error) string {
	var dbusErr dbus.Error
	if errors.As(err, &dbusErr) {
		return dbusErr.Name
	}
	var dbusErrPtr *dbus.Error
	if errors.As(err, &dbusErrPtr) && dbusErrPtr != nil {
		return dbusErrPtr.Name
	}
	return ""
}
