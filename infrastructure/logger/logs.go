package logger

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// BackendLog is the logging backend used to create all subsystem loggers.
var BackendLog = NewBackend()

var (
	subsystemLoggers      = make(map[string]*Logger)
	subsystemLoggersMutex sync.Mutex
)

// RegisterSubSystem registers a new subsystem logger, should be called in a
// global variable, returns the existing one if the subsystem is already
// registered
func RegisterSubSystem(subsystem string) *Logger {
	subsystemLoggersMutex.Lock()
	defer subsystemLoggersMutex.Unlock()
	logger, exists := subsystemLoggers[subsystem]
	if !exists {
		logger = BackendLog.Logger(subsystem)
		subsystemLoggers[subsystem] = logger
	}
	return logger
}

// InitLog attaches log file and error log file to the backend log and starts
// the backend.
func InitLog(logFile, errLogFile string) {
	err := BackendLog.AddLogFile(logFile, LevelTrace)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error adding log file %s as log rotator for level %s: %s", logFile, LevelTrace, err)
		os.Exit(1)
	}
	err = BackendLog.AddLogFile(errLogFile, LevelWarn)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error adding log file %s as log rotator for level %s: %s", errLogFile, LevelWarn, err)
		os.Exit(1)
	}
	InitLogStdout(LevelInfo)
}

// InitLogStdout attaches stdout to the backend log and starts the backend.
func InitLogStdout(logLevel Level) {
	err := BackendLog.AddLogWriter(os.Stdout, logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error adding stdout to the loggerfor level %s: %s", logLevel, err)
		os.Exit(1)
	}
	err = BackendLog.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error starting the logger: %s ", err)
		os.Exit(1)
	}
}

// SetLogLevel sets the logging level for provided subsystem. Invalid
// subsystems are ignored. Uninitialized subsystems are dynamically created as
// needed.
func SetLogLevel(subsystemID string, logLevel string) {
	subsystemLoggersMutex.Lock()
	logger, ok := subsystemLoggers[subsystemID]
	subsystemLoggersMutex.Unlock()
	if !ok {
		return
	}

	level, _ := LevelFromString(logLevel)
	logger.SetLevel(level)
}

// SetLogLevels sets the log level for all subsystem loggers to the passed
// level.
func SetLogLevels(logLevel string) {
	for _, subsystemID := range SupportedSubsystems() {
		SetLogLevel(subsystemID, logLevel)
	}
}

// SupportedSubsystems returns a sorted slice of the supported subsystems for
// logging purposes.
func SupportedSubsystems() []string {
	subsystemLoggersMutex.Lock()
	defer subsystemLoggersMutex.Unlock()

	subsystems := make([]string, 0, len(subsystemLoggers))
	for subsysID := range subsystemLoggers {
		subsystems = append(subsystems, subsysID)
	}
	sort.Strings(subsystems)
	return subsystems
}

// ParseAndSetLogLevels attempts to parse the specified debug level and set
// the levels accordingly. An appropriate error is returned if anything is
// invalid. The accepted forms are "level" and "subsystem=level,...".
func ParseAndSetLogLevels(logLevel string) error {
	if !strings.Contains(logLevel, ",") && !strings.Contains(logLevel, "=") {
		if _, ok := LevelFromString(logLevel); !ok {
			return errors.Errorf("the specified debug level [%s] is invalid", logLevel)
		}
		SetLogLevels(logLevel)
		return nil
	}

	supported := make(map[string]struct{})
	for _, subsystem := range SupportedSubsystems() {
		supported[subsystem] = struct{}{}
	}
	for _, logLevelPair := range strings.Split(logLevel, ",") {
		if !strings.Contains(logLevelPair, "=") {
			return errors.Errorf("the specified debug level contains an invalid "+
				"subsystem/level pair [%s]", logLevelPair)
		}
		fields := strings.Split(logLevelPair, "=")
		subsysID, subsysLevel := fields[0], fields[1]
		if _, exists := supported[subsysID]; !exists {
			return errors.Errorf("the specified subsystem [%s] is invalid -- "+
				"supported subsystems are %v", subsysID, SupportedSubsystems())
		}
		if _, ok := LevelFromString(subsysLevel); !ok {
			return errors.Errorf("the specified debug level [%s] is invalid", subsysLevel)
		}
		SetLogLevel(subsysID, subsysLevel)
	}
	return nil
}
