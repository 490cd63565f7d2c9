package tetra

/*------------------------------------------------------------------
 *
 * Purpose:	Save receiver events to a log file.
 *
 * Description: Write separated properties in CSV format for easy
 *		reading and later processing.
 *
 *		There are two alternatives here.
 *
 *		-L logfile		Specify full file path.
 *
 *		-l logdir		Daily names will be created here.
 *
 *		Use one or the other but not both.
 *
 *		Traffic bursts are not logged individually; they would
 *		swamp everything else.  Only the first burst heard on a
 *		usage marker gets a line.
 *
 *------------------------------------------------------------------*/

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lestrrat-go/strftime"
)

var eventLogHeader = []string{
	"utime", "isotime", "event", "state",
	"dl_hz", "ul_hz", "serv_det",
	"mcc", "mnc", "cc",
	"tn", "usage", "ssi", "bits",
}

// Daily file names, UTC.
const dailyLogPattern = "%Y-%m-%d.log"

type EventLog struct {
	path  string             // Directory when daily, otherwise the file.
	daily *strftime.Strftime // nil for a single file.

	f        *os.File
	openName string

	heard  map[uint32]bool // Usage markers already logged as traffic.
	now    func() time.Time
	logger *log.Logger
}

/*------------------------------------------------------------------
 *
 * Function:	NewDailyEventLog
 *
 * Purpose:	Log to a new file every day.
 *
 * Inputs:	dir	- Directory for the files.  Created if it does
 *			  not exist, but not multiple levels like "mkdir -p".
 *
 *------------------------------------------------------------------*/

func NewDailyEventLog(dir string, logger *log.Logger) (*EventLog, error) {
	if logger == nil {
		logger = log.Default()
	}

	var stat, statErr = os.Stat(dir)

	switch {
	case statErr == nil && !stat.IsDir():
		return nil, fmt.Errorf("log file location %q is not a directory", dir)
	case statErr != nil:
		if err := os.Mkdir(dir, 0755); err != nil { //nolint:gosec
			return nil, fmt.Errorf("creating log file location: %w", err)
		}

		logger.Info("log file location has been created", "dir", dir)
	}

	var pattern, err = strftime.New(dailyLogPattern)
	if err != nil {
		return nil, err
	}

	var el = newEventLog(dir, logger)
	el.daily = pattern

	return el, nil
}

// NewEventLog appends to a single file.  Typically logrotate would be used
// to keep size under control.
func NewEventLog(path string, logger *log.Logger) (*EventLog, error) {
	if path == "" {
		return nil, errors.New("no log file name")
	}

	return newEventLog(path, logger), nil
}

func newEventLog(path string, logger *log.Logger) *EventLog {
	if logger == nil {
		logger = log.Default()
	}

	return &EventLog{
		path:   path,
		heard:  make(map[uint32]bool),
		now:    func() time.Time { return time.Now().UTC() },
		logger: logger,
	}
}

// open makes sure the right file is open, writing the header if the file is new.
func (el *EventLog) open(now time.Time) error {
	var fullPath = el.path
	if el.daily != nil {
		var fname = el.daily.FormatString(now)

		// Close current file if name has changed
		if el.f != nil && fname != el.openName {
			el.Close()
		}

		el.openName = fname
		fullPath = filepath.Join(el.path, fname)
	}

	if el.f != nil {
		return nil
	}

	var _, statErr = os.Stat(fullPath)
	var alreadyThere = statErr == nil

	el.logger.Info("opening log file", "file", fullPath)

	var f, err = os.OpenFile(fullPath, os.O_RDWR|os.O_APPEND|os.O_CREATE, 0644) //nolint:gosec
	if err != nil {
		el.openName = ""
		return fmt.Errorf("can't open log file for write: %w", err)
	}

	el.f = f

	// Header suitable for importing into a spreadsheet, only if this will be the first line.
	if !alreadyThere {
		return el.writeRow(eventLogHeader)
	}

	return nil
}

func (el *EventLog) writeRow(row []string) error {
	var w = csv.NewWriter(el.f)
	if err := w.Write(row); err != nil {
		return err
	}

	w.Flush()

	return w.Error()
}

func (el *EventLog) write(event string, fields map[string]string) {
	var now = el.now()

	if err := el.open(now); err != nil {
		el.logger.Error("event log", "err", err)
		return
	}

	var row = make([]string, len(eventLogHeader))
	row[0] = strconv.FormatInt(now.Unix(), 10)
	row[1] = now.Format("2006-01-02T15:04:05Z")
	row[2] = event

	for i, col := range eventLogHeader[3:] {
		row[i+3] = fields[col]
	}

	if err := el.writeRow(row); err != nil {
		el.logger.Error("CSV write error", "err", err)
	}
}

func (el *EventLog) SyncChanged(from, to SyncState) {
	if to == Unlocked {
		clear(el.heard)
	}

	el.write("sync", map[string]string{"state": to.String()})
}

func (el *EventLog) SystemInfo(ev SysInfoEvent) {
	el.write("sysinfo", map[string]string{
		"dl_hz":    strconv.FormatInt(ev.DownlinkHz, 10),
		"ul_hz":    strconv.FormatInt(ev.UplinkHz, 10),
		"serv_det": fmt.Sprintf("0x%04x", uint16(ev.ServiceDetails)),
		"tn":       strconv.Itoa(ev.Time.Timeslot + 1),
	})
}

func (el *EventLog) CellData(ev CellDataEvent) {
	el.write("sync_pdu", map[string]string{
		"mcc": strconv.Itoa(int(ev.MCC)),
		"mnc": strconv.Itoa(int(ev.MNC)),
		"cc":  fmt.Sprintf("0x%02x", ev.ColourCode),
		"tn":  strconv.Itoa(ev.Time.Timeslot + 1),
	})
}

func (el *EventLog) Traffic(ev TrafficEvent) {
	if el.heard[ev.Usage] {
		return
	}

	el.heard[ev.Usage] = true

	el.write("traffic", map[string]string{
		"tn":    strconv.Itoa(ev.Timeslot + 1),
		"usage": strconv.FormatUint(uint64(ev.Usage), 10),
		"ssi":   strconv.FormatUint(uint64(ev.SSI), 10),
		"bits":  strconv.Itoa(len(ev.Bits)),
	})
}

func (el *EventLog) Close() error {
	if el.f == nil {
		return nil
	}

	var err = el.f.Close()
	el.f = nil

	return err
}
