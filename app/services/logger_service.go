package services

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"time"
)

// logRetentionDays is how long daily log files are kept. The terminal
// runs unattended for months, so old days are pruned at startup.
const logRetentionDays = 30

// LoggerService writes the terminal log: one file per day under the
// app data directory, mirrored to stdout. Every service logs through
// it, including the frontend via the Wails binding.
type LoggerService struct {
	logDir     string
	logFile    *os.File
	logger     *log.Logger
	currentDay string
}

// NewLoggerService opens today's log file and prunes expired ones.
func NewLoggerService() *LoggerService {
	s := &LoggerService{logDir: resolveLogDir()}
	s.initialize()
	return s
}

// resolveLogDir picks APPDATA/DataPos/logs, falling back to a logs
// directory next to the binary when no user directory is available.
func resolveLogDir() string {
	appData := os.Getenv("APPDATA")
	if appData == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "logs"
		}
		appData = filepath.Join(home, "AppData", "Roaming")
	}
	return filepath.Join(appData, "DataPos", "logs")
}

func (s *LoggerService) initialize() {
	if err := os.MkdirAll(s.logDir, 0755); err != nil {
		s.logDir = "logs"
		os.MkdirAll(s.logDir, 0755)
	}

	if err := s.rotate(); err != nil {
		log.Printf("Warning: could not open log file: %v. Logging to stdout only.", err)
		s.logger = log.New(os.Stdout, "", log.LstdFlags)
		return
	}

	s.logf("INFO", "Logger initialized", s.logDir)

	if err := s.CleanOldLogs(logRetentionDays); err != nil {
		s.logf("WARNING", "Could not prune old log files", err.Error())
	}
}

// rotate opens the log file for the current day and repoints both the
// service logger and the global one at it.
func (s *LoggerService) rotate() error {
	today := time.Now().Format("2006-01-02")
	if s.currentDay == today && s.logFile != nil {
		return nil
	}

	if s.logFile != nil {
		s.logFile.Close()
	}

	path := filepath.Join(s.logDir, today+".log")
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	s.logFile = file
	s.currentDay = today

	w := io.MultiWriter(os.Stdout, s.logFile)
	if s.logger == nil {
		s.logger = log.New(w, "", log.LstdFlags)
	} else {
		s.logger.SetOutput(w)
	}
	log.SetOutput(w)
	log.SetFlags(log.LstdFlags)

	return nil
}

// logf is the single write path: day rollover check, optional detail
// suffix, level tag.
func (s *LoggerService) logf(level, message string, details ...string) {
	if s.currentDay != time.Now().Format("2006-01-02") {
		s.rotate()
	}
	if len(details) > 0 && details[0] != "" {
		message = message + " | " + details[0]
	}
	s.logger.Printf("[%s] %s", level, message)
}

// LogInfo logs an informational message.
func (s *LoggerService) LogInfo(message string, details ...string) {
	s.logf("INFO", message, details...)
}

// LogWarning logs a warning message.
func (s *LoggerService) LogWarning(message string, details ...string) {
	s.logf("WARNING", message, details...)
}

// LogError logs an error message.
func (s *LoggerService) LogError(message string, err error, details ...string) {
	if err != nil {
		message = fmt.Sprintf("%s | Error: %v", message, err)
	}
	s.logf("ERROR", message, details...)
}

// LogFatal logs a fatal error with a stack trace and exits.
func (s *LoggerService) LogFatal(message string, err error) {
	s.LogError(message, err)
	s.logf("FATAL", "Stack trace:\n"+string(debug.Stack()))
	s.Close()
	os.Exit(1)
}

// LogPanic logs a recovered panic with its stack trace.
func (s *LoggerService) LogPanic(recovered interface{}) {
	s.logf("PANIC", fmt.Sprintf("Recovered from panic: %v", recovered))
	s.logf("PANIC", "Stack trace:\n"+string(debug.Stack()))
}

// LogFrontend records a frontend log entry. Bound to the webview so
// window errors end up in the same daily file as everything else.
func (s *LoggerService) LogFrontend(level, message, detail string) {
	switch strings.ToLower(level) {
	case "error":
		level = "FRONTEND ERROR"
	case "warning", "warn":
		level = "FRONTEND WARNING"
	default:
		level = "FRONTEND INFO"
	}
	s.logf(level, message, detail)
}

// GetLogDirectory returns the directory where logs are stored.
func (s *LoggerService) GetLogDirectory() string {
	return s.logDir
}

// GetTodayLogPath returns the path to today's log file.
func (s *LoggerService) GetTodayLogPath() string {
	return filepath.Join(s.logDir, time.Now().Format("2006-01-02")+".log")
}

// CleanOldLogs removes daily log files older than daysToKeep. The day
// is parsed from the file name, so restored backups with fresh
// modification times are still pruned.
func (s *LoggerService) CleanOldLogs(daysToKeep int) error {
	files, err := os.ReadDir(s.logDir)
	if err != nil {
		return err
	}

	cutoff := time.Now().AddDate(0, 0, -daysToKeep)

	for _, file := range files {
		if file.IsDir() || filepath.Ext(file.Name()) != ".log" {
			continue
		}
		day, err := time.Parse("2006-01-02", strings.TrimSuffix(file.Name(), ".log"))
		if err != nil {
			// Not one of ours
			continue
		}
		if day.Before(cutoff) {
			path := filepath.Join(s.logDir, file.Name())
			s.logf("INFO", "Deleting old log file", path)
			os.Remove(path)
		}
	}

	return nil
}

// Close closes the log file.
func (s *LoggerService) Close() {
	if s.logFile != nil {
		s.logFile.Close()
	}
}

// RecoverPanic logs a panic in a goroutine instead of crashing the
// terminal. Use as: defer logger.RecoverPanic().
func (s *LoggerService) RecoverPanic() {
	if r := recover(); r != nil {
		s.LogPanic(r)
	}
}
