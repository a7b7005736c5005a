package core

// Boot records are single lines of the form
//
//	blink: <event> key=value key="value with spaces"
//
// written through the debug writer during setup. host/monitor parses them.

// RecordPrefix starts every boot record.
const RecordPrefix = "blink:"

// LogBoot announces which program is starting.
func LogBoot(program string) {
	DebugPrintln(RecordPrefix + " boot program=" + program)
}

// LogArmed reports the programmed timer once b is armed.
func LogArmed(b *Blinker) {
	cfg := b.Config()
	DebugPrintln(RecordPrefix + " armed" +
		" threshold=" + utoa(uint32(b.Threshold())) +
		" prescaler=" + utoa(uint32(cfg.Prescaler)) +
		" period_ms=" + utoa(cfg.PeriodMs) +
		" clock_hz=" + utoa(cfg.ClockHz) +
		" pin=" + utoa(uint32(cfg.Pin)) +
		" level=" + levelName(cfg.InitialHigh))
}

// LogConfigError reports a configuration error that stops the program.
func LogConfigError(err error) {
	DebugPrintln(RecordPrefix + " config_error err=" + quote(err.Error()))
}
