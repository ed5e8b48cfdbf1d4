package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
)

// Logger struct to hold leveled loggers and configuration
type Logger struct {
	debugLogger *log.Logger
	infoLogger  *log.Logger
	warnLogger  *log.Logger
	errorLogger *log.Logger
	level       LogLevel
	mutex       sync.Mutex
}

// LogLevel defines the logging levels
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
)

// GlobalLogger is usable before InitLogger runs; it then writes INFO and above to stdout.
var GlobalLogger = New(os.Stdout, "INFO")

// InitLogger replaces the global logger with the specified output and log level
func InitLogger(output io.Writer, level string) {
	GlobalLogger = New(output, level)
}

// New builds a standalone logger. A nil output falls back to stdout.
func New(output io.Writer, level string) *Logger {
	if output == nil {
		output = os.Stdout
	}
	flags := log.Ldate | log.Ltime | log.Lshortfile

	return &Logger{
		debugLogger: log.New(output, color.BlueString("DEBUG: "), flags),
		infoLogger:  log.New(output, color.GreenString("INFO: "), flags),
		warnLogger:  log.New(output, color.YellowString("WARN: "), flags),
		errorLogger: log.New(output, color.RedString("ERROR: "), flags),
		level:       ParseLevel(level),
	}
}

// ParseLevel maps a level name to a LogLevel, defaulting to INFO.
func ParseLevel(level string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return DEBUG
	case "WARN", "WARNING":
		return WARN
	case "ERROR":
		return ERROR
	default:
		return INFO
	}
}

// calldepth 3 points Lshortfile at the caller of the public method.
func (l *Logger) output(target *log.Logger, at LogLevel, msg string) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	if l.level <= at {
		_ = target.Output(3, msg)
	}
}

// Println logs a message at the INFO level
func (l *Logger) Println(v ...interface{}) {
	l.output(l.infoLogger, INFO, fmt.Sprintln(v...))
}

// Printf logs a formatted message at the INFO level
func (l *Logger) Printf(format string, v ...interface{}) {
	l.output(l.infoLogger, INFO, fmt.Sprintf(format, v...))
}

// Warnf logs a formatted message at the WARN level
func (l *Logger) Warnf(format string, v ...interface{}) {
	l.output(l.warnLogger, WARN, fmt.Sprintf(format, v...))
}

// Error logs a message at the ERROR level
func (l *Logger) Error(v ...interface{}) {
	l.output(l.errorLogger, ERROR, fmt.Sprintln(v...))
}

// Errorf logs a formatted message at the ERROR level
func (l *Logger) Errorf(format string, v ...interface{}) {
	l.output(l.errorLogger, ERROR, fmt.Sprintf(format, v...))
}

// Debugf logs a formatted message at the DEBUG level
func (l *Logger) Debugf(format string, v ...interface{}) {
	l.output(l.debugLogger, DEBUG, fmt.Sprintf(format, v...))
}

