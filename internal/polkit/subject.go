package polkit

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/godbus/dbus/v5"
	"golang.org/x/sys/unix"
)

// subjectKindUnixProcess identifies a subject by process id and start time.
const subjectKindUnixProcess = "unix-process"

// Subject is the polkit subject struct (sa{sv}) describing the caller.
type Subject struct {
	Kind    string
	Details map[string]dbus.Variant
}

// procStatPath is the stat file of the calling process.
var procStatPath = "/proc/self/stat"

// CurrentProcess describes the calling process: pid, start time and
// effective uid. It is rebuilt on every call so that a check always
// reflects current privilege state. If the start time cannot be read it is
// sent as 0, which makes the authority look it up itself.
func CurrentProcess() Subject {
	startTime, err := readStartTime(procStatPath)
	if err != nil {
		startTime = 0
	}
	return unixProcess(uint32(unix.Getpid()), startTime, int32(unix.Geteuid()))
}

func unixProcess(pid uint32, startTime uint64, uid int32) Subject {
	return Subject{
		Kind: subjectKindUnixProcess,
		Details: map[string]dbus.Variant{
			"pid":        dbus.MakeVariant(pid),
			"start-time": dbus.MakeVariant(startTime),
			"uid":        dbus.MakeVariant(uid),
		},
	}
}

// readStartTime returns field 22 (starttime, in clock ticks since boot) of
// a /proc/<pid>/stat file.
func readStartTime(path string) (uint64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return parseStartTime(string(data))
}

func parseStartTime(stat string) (uint64, error) {
	// comm may contain spaces and parens; fields resume after the last ')'.
	end := strings.LastIndexByte(stat, ')')
	if end < 0 || end+2 > len(stat) {
		return 0, errors.New("polkit: invalid stat format")
	}
	fields := strings.Fields(stat[end+2:])
	// fields[0] is field 3 (state); starttime is field 22.
	const startTimeIndex = 22 - 3
	if len(fields) <= startTimeIndex {
		return 0, fmt.Errorf("polkit: stat has %d fields after comm, want > %d", len(fields), startTimeIndex)
	}
	v, err := strconv.ParseUint(fields[startTimeIndex], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("polkit: parse starttime: %w", err)
	}
	return v, nil
}
