package logger

// Console implements a console based logger.
type Console struct {
	Enabled          bool
	UseConsoleWriter bool // human readable output instead of json lines
}

// RotatedFile describes one lumberjack managed log file inside LogFile.Path.
type RotatedFile struct {
	Name       string
	MaxSize    int // megabytes
	MaxBackups int
	MaxAge     int // days
}

// LogFile implements a file based logger split by level.
type LogFile struct {
	Enabled bool
	Path    string

	Access RotatedFile
	Audit  RotatedFile // authorization denials and admin mutations
	Error  RotatedFile
	Info   RotatedFile
	Trace  RotatedFile
	Warn   RotatedFile
}

// Log implements the logger config.
type Log struct {
	LogLevel string // trace, debug, info, warn, error.
	LogEnv   string

	// EnableAccessLogToConsole if true the webserver access log is written to the console.
	// Does not overrule flag Console.Enabled!
	EnableAccessLogToConsole bool
	ReportCaller             bool
	DisableCheckAlive        bool // do not log /checkalive calls

	AppName     string
	ServiceName string

	// Console used mainly for docker and dev.
	Console Console

	File LogFile
}
