package systemd

import (
	"context"
	"fmt"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/plexsphere/servicectl/internal/bus"
	"github.com/plexsphere/servicectl/internal/unitstate"
)

var (
	listUnits     = managerMethod("ListUnits")
	listUnitFiles = managerMethod("ListUnitFiles")
)

// unitStatus holds the ListUnits fields kept after decoding.
type unitStatus struct {
	Name        string
	Description string
	ActiveState string
}

// unitFile is one ListUnitFiles entry.
type unitFile struct {
	Path  string
	State string
}

// ListServices returns the service units visible on every configured bus.
// A bus that cannot be reached or queried contributes no records; the
// result is empty, never nil, when every bus fails.
func (m *Manager) ListServices(ctx context.Context) []ServiceRecord {
	return m.Collect(ctx).Services
}

// Collect queries every configured bus concurrently and merges the results.
// Per-domain failures are recorded in the snapshot instead of aborting the
// other domains.
func (m *Manager) Collect(ctx context.Context) Snapshot {
	start := time.Now()
	domains := m.cfg.domains()

	type result struct {
		records []ServiceRecord
		err     error
	}
	results := make([]result, len(domains))

	var wg sync.WaitGroup
	for i, d := range domains {
		wg.Add(1)
		go func() {
			defer wg.Done()
			records, err := m.fetchDomain(ctx, d)
			results[i] = result{records: records, err: err}
		}()
	}
	wg.Wait()

	snap := Snapshot{
		Services: make([]ServiceRecord, 0),
		Failures: make(map[bus.Domain]error),
	}
	for i, r := range results {
		if r.err != nil {
			m.logger.Warn("listing services failed",
				"domain", domains[i],
				"error", r.err,
			)
			snap.Failures[domains[i]] = r.err
			continue
		}
		snap.Services = append(snap.Services, r.records...)
	}

	m.logger.Debug("services collected",
		"count", len(snap.Services),
		"failed_domains", len(snap.Failures),
		"duration", time.Since(start),
	)
	return snap
}

// fetchDomain lists runtime units and unit files on one bus concurrently
// and merges them. Either call failing fails the whole domain.
func (m *Manager) fetchDomain(ctx context.Context, d bus.Domain) ([]ServiceRecord, error) {
	conn, err := m.connector.Connect(ctx, d)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	var (
		units    []unitStatus
		files    []unitFile
		unitsErr error
		filesErr error
		wg       sync.WaitGroup
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		units, unitsErr = callListUnits(ctx, conn)
	}()
	go func() {
		defer wg.Done()
		files, filesErr = callListUnitFiles(ctx, conn)
	}()
	wg.Wait()

	if unitsErr != nil {
		return nil, unitsErr
	}
	if filesErr != nil {
		return nil, filesErr
	}
	return mergeServices(d, units, enablementByName(files)), nil
}

// enablementByName maps unit-file basenames to their enablement state.
// Paths without a usable basename are skipped.
func enablementByName(files []unitFile) map[string]string {
	out := make(map[string]string, len(files))
	for _, f := range files {
		name := path.Base(f.Path)
		if name == "" || name == "." || name == "/" {
			continue
		}
		out[name] = f.State
	}
	return out
}

// mergeServices keeps the service units of units, in order, and joins each
// with its enablement state. Units with no unit-file entry are kept with
// an unknown enablement.
func mergeServices(d bus.Domain, units []unitStatus, enablement map[string]string) []ServiceRecord {
	records := make([]ServiceRecord, 0, len(units))
	for _, u := range units {
		if !strings.HasSuffix(u.Name, serviceSuffix) {
			continue
		}
		state := unitstate.UnknownEnablement
		if raw, ok := enablement[u.Name]; ok {
			state = unitstate.ParseEnablementState(raw)
		}
		records = append(records, ServiceRecord{
			Name:        u.Name,
			Description: u.Description,
			Status:      unitstate.ParseActivationState(u.ActiveState),
			Enablement:  state,
			Domain:      d,
		})
	}
	return records
}

// listUnitsFields is the ListUnits tuple layout (ssssssouso).
var listUnitsFields = []string{"s", "s", "s", "s", "s", "s", "o", "u", "s", "o"}

func callListUnits(ctx context.Context, conn bus.Conn) ([]unitStatus, error) {
	reply, err := conn.Call(ctx, listUnits)
	if err != nil {
		return nil, err
	}
	var rows [][]interface{}
	if err := reply.Decode(&rows); err != nil {
		return nil, err
	}

	units := make([]unitStatus, 0, len(rows))
	for i, row := range rows {
		if err := checkTuple(row, listUnitsFields, listUnits.Member); err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		units = append(units, unitStatus{
			Name:        row[0].(string),
			Description: row[1].(string),
			ActiveState: row[3].(string),
		})
	}
	return units, nil
}

func callListUnitFiles(ctx context.Context, conn bus.Conn) ([]unitFile, error) {
	reply, err := conn.Call(ctx, listUnitFiles)
	if err != nil {
		return nil, err
	}
	var rows [][]interface{}
	if err := reply.Decode(&rows); err != nil {
		return nil, err
	}

	files := make([]unitFile, 0, len(rows))
	for i, row := range rows {
		if err := checkTuple(row, []string{"s", "s"}, listUnitFiles.Member); err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		files = append(files, unitFile{Path: row[0].(string), State: row[1].(string)})
	}
	return files, nil
}

// checkTuple verifies that row has exactly the given D-Bus signature codes.
// Only s, o and u occur in the manager replies consumed here.
func checkTuple(row []interface{}, sig []string, member string) error {
	if len(row) != len(sig) {
		return &bus.DeserializationError{
			Member: member,
			Err:    fmt.Errorf("tuple has %d fields, want %d", len(row), len(sig)),
		}
	}
	for i, code := range sig {
		var err error
		switch code {
		case "s":
			_, err = bus.Field[string](row, i, member)
		case "o":
			_, err = bus.Field[dbus.ObjectPath](row, i, member)
		case "u":
			_, err = bus.Field[uint32](row, i, member)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
