package bus

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/godbus/dbus/v5"
)

// DBusConnector implements Connector with godbus private connections.
type DBusConnector struct {
	cfg    Config
	logger *slog.Logger
}

// NewConnector returns a Connector that dials the configured bus addresses.
// Config defaults are applied automatically.
func NewConnector(cfg Config, logger *slog.Logger) *DBusConnector {
	cfg.ApplyDefaults()
	return &DBusConnector{
		cfg:    cfg,
		logger: logger.With("component", "bus"),
	}
}

// Connect opens a new private, authenticated connection to d.
func (c *DBusConnector) Connect(ctx context.Context, d Domain) (Conn, error) {
	opts := []dbus.ConnOption{dbus.WithContext(ctx)}

	var (
		conn *dbus.Conn
		err  error
	)
	if addr := c.cfg.address(d); addr != "" {
		conn, err = dbus.Connect(addr, opts...)
	} else {
		switch d {
		case System:
			conn, err = dbus.ConnectSystemBus(opts...)
		case Session:
			conn, err = dbus.ConnectSessionBus(opts...)
		default:
			err = fmt.Errorf("unknown domain %q", d)
		}
	}
	if err != nil {
		return nil, &TransportError{Domain: d, Op: "connect", Err: err}
	}

	c.logger.Debug("bus connected", "domain", d)
	return &dbusConn{conn: conn, domain: d, timeout: c.cfg.CallTimeout}, nil
}

// dbusConn implements Conn over a godbus connection.
type dbusConn struct {
	conn    *dbus.Conn
	domain  Domain
	timeout time.Duration
}

func (c *dbusConn) Domain() Domain { return c.domain }

func (c *dbusConn) Call(ctx context.Context, m Method, args ...interface{}) (*Reply, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	call := c.conn.Object(m.Destination, m.Path).CallWithContext(ctx, m.String(), 0, args...)
	if call.Err != nil {
		return nil, &TransportError{Domain: c.domain, Op: m.String(), Err: call.Err}
	}
	return &Reply{Member: m.Member, Body: call.Body}, nil
}

func (c *dbusConn) Close() error {
	return c.conn.Close()
}
