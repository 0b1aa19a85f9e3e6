package systemd

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/godbus/dbus/v5"
	"github.com/google/go-cmp/cmp"

	"github.com/plexsphere/servicectl/internal/bus"
	"github.com/plexsphere/servicectl/internal/bus/bustest"
	"github.com/plexsphere/servicectl/internal/polkit"
)

// controlConn answers every mutating manager method with an empty reply.
func controlConn() *bustest.Conn {
	return bustest.NewConn(bus.System).
		Reply("StartUnit", dbus.ObjectPath("/org/freedesktop/systemd1/job/1")).
		Reply("StopUnit", dbus.ObjectPath("/org/freedesktop/systemd1/job/2")).
		Reply("EnableUnitFiles", false, [][]interface{}{}).
		Reply("DisableUnitFiles", [][]interface{}{})
}

func TestControl_DeniedIssuesNoMutation(t *testing.T) {
	for _, action := range []Action{ActionStart, ActionStop, ActionEnable, ActionDisable} {
		t.Run(string(action), func(t *testing.T) {
			conn := controlConn()
			auth := &mockAuthorizer{allow: false}
			m := newTestManager(bustest.NewConnector().With(conn), auth, Config{})

			err := m.Do(context.Background(), action, "foo.service")

			if !errors.Is(err, ErrAuthorizationDenied) {
				t.Fatalf("Do(%s) error = %v, want ErrAuthorizationDenied", action, err)
			}
			var actionErr *ActionError
			if !errors.As(err, &actionErr) {
				t.Fatalf("expected *ActionError, got %T", err)
			}
			if actionErr.Action != action || actionErr.Unit != "foo.service" {
				t.Errorf("ActionError = %+v, want action %s unit foo.service", actionErr, action)
			}
			if calls := conn.Calls(); len(calls) != 0 {
				t.Errorf("remote calls = %+v, want none", calls)
			}
			if auth.getCalls() != 1 {
				t.Errorf("Authorize calls = %d, want 1", auth.getCalls())
			}
			if !conn.Closed() {
				t.Error("connection not closed")
			}
		})
	}
}

func TestControl_AllowedIssuesExactlyOnce(t *testing.T) {
	tests := []struct {
		action   Action
		member   string
		wantArgs []interface{}
	}{
		{ActionStart, "StartUnit", []interface{}{"foo.service", "replace"}},
		{ActionStop, "StopUnit", []interface{}{"foo.service", "replace"}},
		{ActionEnable, "EnableUnitFiles", []interface{}{[]string{"foo.service"}, false, true}},
		{ActionDisable, "DisableUnitFiles", []interface{}{[]string{"foo.service"}, false}},
	}

	for _, tt := range tests {
		t.Run(string(tt.action), func(t *testing.T) {
			conn := controlConn()
			auth := &mockAuthorizer{allow: true}
			m := newTestManager(bustest.NewConnector().With(conn), auth, Config{})

			if err := m.Do(context.Background(), tt.action, "foo.service"); err != nil {
				t.Fatalf("Do(%s): %v", tt.action, err)
			}

			calls := conn.Calls()
			if len(calls) != 1 {
				t.Fatalf("remote calls = %d, want 1", len(calls))
			}
			if calls[0].Method != tt.member {
				t.Errorf("method = %s, want %s", calls[0].Method, tt.member)
			}
			if diff := cmp.Diff(tt.wantArgs, calls[0].Args); diff != "" {
				t.Errorf("args mismatch (-want +got):\n%s", diff)
			}
			if calls[0].Domain != bus.System {
				t.Errorf("domain = %s, want system", calls[0].Domain)
			}
		})
	}
}

func TestControl_AuthorizesWithManageUnitsOnSystemBus(t *testing.T) {
	conn := controlConn()
	auth := &mockAuthorizer{allow: true}
	connector := bustest.NewConnector().With(conn)
	m := newTestManager(connector, auth, Config{})

	if err := m.Start(context.Background(), "foo.service"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if auth.actionIDs[0] != polkit.ManageUnitsAction {
		t.Errorf("action id = %q, want %q", auth.actionIDs[0], polkit.ManageUnitsAction)
	}
	if auth.domains[0] != bus.System {
		t.Errorf("authorized on %s bus, want system", auth.domains[0])
	}
	if connector.Connects(bus.Session) != 0 {
		t.Error("control operation connected to the session bus")
	}
}

func TestControl_CustomConfig(t *testing.T) {
	conn := controlConn()
	auth := &mockAuthorizer{allow: true}
	force := false
	m := newTestManager(bustest.NewConnector().With(conn), auth, Config{
		JobMode:     "fail",
		ForceEnable: &force,
		ActionID:    "org.example.manage",
	})

	if err := m.Stop(context.Background(), "foo.service"); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if err := m.Enable(context.Background(), "foo.service"); err != nil {
		t.Fatalf("Enable: %v", err)
	}

	if got := conn.CallsTo("StopUnit")[0].Args[1]; got != "fail" {
		t.Errorf("StopUnit mode = %v, want fail", got)
	}
	if got := conn.CallsTo("EnableUnitFiles")[0].Args[2]; got != false {
		t.Errorf("EnableUnitFiles force = %v, want false", got)
	}
	if auth.actionIDs[0] != "org.example.manage" {
		t.Errorf("action id = %q, want org.example.manage", auth.actionIDs[0])
	}
}

func TestControl_TransportFailurePropagates(t *testing.T) {
	remote := dbus.Error{Name: "org.freedesktop.systemd1.NoSuchUnit", Body: []interface{}{"Unit foo.service not found."}}
	conn := bustest.NewConn(bus.System).Fail("StartUnit", remote)
	m := newTestManager(bustest.NewConnector().With(conn), &mockAuthorizer{allow: true}, Config{})

	err := m.Start(context.Background(), "foo.service")

	var te *bus.TransportError
	if !errors.As(err, &te) {
		t.Fatalf("Start() error = %v, want *bus.TransportError", err)
	}
	if got := bus.RemoteErrorName(err); got != "org.freedesktop.systemd1.NoSuchUnit" {
		t.Errorf("RemoteErrorName = %q", got)
	}
	if !strings.Contains(err.Error(), "start") || !strings.Contains(err.Error(), "foo.service") {
		t.Errorf("error %q should name the action and unit", err)
	}
	if n := len(conn.CallsTo("StartUnit")); n != 1 {
		t.Errorf("StartUnit calls = %d, want 1 (no retry)", n)
	}
}

func TestControl_ConnectFailure(t *testing.T) {
	connector := bustest.NewConnector().Unreachable(bus.System, errors.New("refused"))
	auth := &mockAuthorizer{allow: true}
	m := newTestManager(connector, auth, Config{})

	err := m.Disable(context.Background(), "foo.service")
	var te *bus.TransportError
	if !errors.As(err, &te) {
		t.Fatalf("Disable() error = %v, want *bus.TransportError", err)
	}
	if auth.getCalls() != 0 {
		t.Errorf("Authorize calls = %d, want 0", auth.getCalls())
	}
}

func TestControl_AuthorizerDecodeErrorPropagates(t *testing.T) {
	conn := controlConn()
	decErr := &bus.DeserializationError{Member: "CheckAuthorization", Err: errors.New("bad shape")}
	m := newTestManager(bustest.NewConnector().With(conn), &mockAuthorizer{allow: false, err: decErr}, Config{})

	err := m.Enable(context.Background(), "foo.service")
	if !errors.Is(err, decErr) {
		t.Fatalf("Enable() error = %v, want wrapped DeserializationError", err)
	}
	if len(conn.Calls()) != 0 {
		t.Error("mutation issued despite failed authorization")
	}
}

func TestControl_EmptyUnitName(t *testing.T) {
	connector := bustest.NewConnector().With(controlConn())
	m := newTestManager(connector, &mockAuthorizer{allow: true}, Config{})

	err := m.Start(context.Background(), "  ")
	if !errors.Is(err, ErrInvalidUnitName) {
		t.Fatalf("Start() error = %v, want ErrInvalidUnitName", err)
	}
	if connector.Connects(bus.System) != 0 {
		t.Error("connected for an invalid unit name")
	}
}

func TestActionError_Message(t *testing.T) {
	denied := &ActionError{Action: ActionStop, Unit: "foo.service", Err: ErrAuthorizationDenied}
	if got := denied.Error(); got != `systemd: not authorized to stop unit "foo.service"` {
		t.Errorf("Error() = %q", got)
	}

	failed := &ActionError{Action: ActionStart, Unit: "foo.service", Err: errors.New("boom")}
	if got := failed.Error(); got != `systemd: start "foo.service": boom` {
		t.Errorf("Error() = %q", got)
	}
}

func TestDo_UnknownAction(t *testing.T) {
	m := newTestManager(bustest.NewConnector(), &mockAuthorizer{}, Config{})
	if err := m.Do(context.Background(), Action("reload"), "foo.service"); err == nil {
		t.Fatal("Do(reload) = nil error, want error")
	}
}
