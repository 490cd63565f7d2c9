package tetra

/*------------------------------------------------------------------
 *
 * Purpose:	Main program for "tetra-rx", which follows a TETRA
 *		downlink from a file of demodulated bits.
 *
 * Description:	Input is one bit per byte, as written by the
 *		demodulator.  "-" reads standard input so the demodulator
 *		can be piped straight in.
 *
 *		Events are printed on standard output, diagnostics go to
 *		standard error.
 *
 *------------------------------------------------------------------*/

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lestrrat-go/strftime"
	"github.com/spf13/pflag"
)

func TetraRxMain() {
	if status := RunRx(os.Args, os.Stdin, os.Stdout, os.Stderr); status != 0 {
		os.Exit(status)
	}
}

// RunRx is TetraRxMain without the process around it.  Returns the exit status.
func RunRx(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var flags = pflag.NewFlagSet(args[0], pflag.ContinueOnError)
	flags.SetOutput(stderr)

	var configFile = flags.StringP("config", "c", "", "Configuration file.  Default is to search the usual places.")
	var chunk = flags.IntP("chunk", "n", 64, "Bits read and fed at a time.")
	var logLevel = flags.StringP("log-level", "d", "info", "Diagnostic level: debug, info, warn or error.")
	var logDir = flags.StringP("log-dir", "l", "", "Directory name for daily event log files.  Use . for current directory.")
	var logFile = flags.StringP("log-file", "L", "", "Event log file name.")
	var trafficDir = flags.StringP("traffic-dir", "t", "", "Directory for recorded traffic soft bits.")
	var timestampFormat = flags.StringP("timestamp-format", "T", "", "Precede printed events with 'strftime' format time stamp.")
	var version = flags.BoolP("version", "v", false, "Print version and exit.")
	var help = flags.BoolP("help", "h", false, "Display help text.")

	flags.Usage = func() {
		fmt.Fprintf(stderr, "%s - TETRA downlink receiver\n", args[0])
		fmt.Fprintf(stderr, "\n")
		fmt.Fprintf(stderr, "Usage: %s [OPTIONS] <file_with_1_byte_per_bit>\n", args[0])
		fmt.Fprintf(stderr, "\n")
		flags.PrintDefaults()
	}

	if err := flags.Parse(args[1:]); err != nil {
		return 1
	}

	if *help {
		flags.Usage()
		return 0
	}

	if *version {
		PrintVersion(stdout, false)
		return 0
	}

	var level, levelErr = log.ParseLevel(*logLevel)
	if levelErr != nil {
		fmt.Fprintf(stderr, "Invalid log level %q: %s\n", *logLevel, levelErr)
		return 1
	}

	var logger = log.NewWithOptions(stderr, log.Options{
		Level:  level,
		Prefix: "tetra-rx",
	})

	if flags.NArg() != 1 {
		flags.Usage()
		return 1
	}

	if *chunk < 1 {
		logger.Error("chunk size must be positive", "chunk", *chunk)
		return 1
	}

	if *logDir != "" && *logFile != "" {
		logger.Error("use only one of -l and -L")
		return 1
	}

	var cfg, cfgPath, cfgErr = LoadConfig(*configFile)
	if cfgErr != nil {
		logger.Error("configuration", "err", cfgErr)
		return 1
	}

	if cfgPath != "" {
		logger.Info("configuration loaded", "file", cfgPath)
	}

	var printer, printerErr = newEventPrinter(stdout, *timestampFormat)
	if printerErr != nil {
		logger.Error("timestamp format", "err", printerErr)
		return 1
	}

	var consumers = Consumers{printer}

	var eventLog *EventLog
	var elErr error
	switch {
	case *logDir != "":
		eventLog, elErr = NewDailyEventLog(*logDir, logger)
	case *logFile != "":
		eventLog, elErr = NewEventLog(*logFile, logger)
	}

	if elErr != nil {
		logger.Error("event log", "err", elErr)
		return 1
	}

	if eventLog != nil {
		defer eventLog.Close()
		consumers = append(consumers, eventLog)
	}

	if *trafficDir != "" {
		var tr, trErr = NewTrafficRecorder(*trafficDir, logger)
		if trErr != nil {
			logger.Error("traffic recorder", "err", trErr)
			return 1
		}

		consumers = append(consumers, tr)
	}

	var in = stdin
	if name := flags.Arg(0); name != "-" {
		var f, openErr = os.Open(name) //nolint:gosec
		if openErr != nil {
			logger.Error("open", "err", openErr)
			return 2
		}
		defer f.Close()

		in = f
	}

	var session, sessionErr = NewSession(cfg, nil, consumers, WithLogger(logger))
	if sessionErr != nil {
		logger.Error("session", "err", sessionErr)
		return 1
	}
	defer session.Close()

	if err := feedAll(session, bufio.NewReader(in), *chunk); err != nil {
		logger.Error("read", "err", err)
		return 1
	}

	var stats = session.Stats()
	logger.Info("EOF", "bits", stats.BitsIn, "frames", stats.Frames, "sync_losses", stats.SyncLosses)

	return 0
}

func feedAll(session *Session, r io.Reader, chunk int) error {
	var buf = make([]byte, chunk)

	for {
		var n, err = r.Read(buf)
		if n > 0 {
			if feedErr := session.Feed(buf[:n]); feedErr != nil {
				return feedErr
			}
		}

		if errors.Is(err, io.EOF) {
			return nil
		}

		if err != nil {
			return err
		}
	}
}

// eventPrinter writes one line per event in the traditional tetra-rx format.
type eventPrinter struct {
	w     io.Writer
	stamp *strftime.Strftime
	now   func() time.Time
}

func newEventPrinter(w io.Writer, timestampFormat string) (*eventPrinter, error) {
	var p = &eventPrinter{w: w, now: time.Now}

	if timestampFormat != "" {
		var stamp, err = strftime.New(timestampFormat)
		if err != nil {
			return nil, err
		}

		p.stamp = stamp
	}

	return p, nil
}

func (p *eventPrinter) printf(format string, a ...any) {
	if p.stamp != nil {
		fmt.Fprintf(p.w, "[%s] ", p.stamp.FormatString(p.now()))
	}

	fmt.Fprintf(p.w, format, a...)
}

func (p *eventPrinter) SyncChanged(from, to SyncState) {
	switch {
	case to == Locked:
		p.printf("receiver synchronized.\n")
	case from == Locked:
		p.printf("receiver lost synchro.\n")
	}
}

func (p *eventPrinter) SystemInfo(ev SysInfoEvent) {
	var airEncr = "no"
	if ev.ServiceDetails.Has(ServAirEncryption) {
		airEncr = "yes"
	}

	var tail string
	if ev.HyperframeValid {
		tail = fmt.Sprintf("hframe %d", ev.Hyperframe)
	} else {
		tail = fmt.Sprintf("cck id %d", ev.CCKID)
	}

	p.printf("sysinfo (DL %d Hz, UL %d Hz), serv_det 0x%04x air_encr %s %s\n",
		ev.DownlinkHz, ev.UplinkHz, uint16(ev.ServiceDetails), airEncr, tail)
}

func (p *eventPrinter) CellData(ev CellDataEvent) {
	p.printf("sync MCC %d MNC %d CC 0x%02x\n", ev.MCC, ev.MNC, ev.ColourCode)
}

func (p *eventPrinter) Traffic(ev TrafficEvent) {}
