package logger

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/logtide/logtide/internal/model"
	"github.com/logtide/logtide/internal/repository"
)

// The server's own operational logs go two places: stdout/stderr for the
// operator, and asynchronously into the log store itself under the
// "logtide" source so they are queryable through the same API as client
// logs. Persistence is best-effort: a full channel drops the entry rather
// than blocking a request.

const selfSource = "logtide"

var (
	InfoLogger          *log.Logger
	ErrorLogger         *log.Logger
	logChan             chan model.LogRecord
	logRepo             repository.LogRepository
	logMu               sync.Mutex
	logClosed           bool
	loggerBufferSize    = 1000
	LoggerSleepDuration = 100 * time.Millisecond
)

func init() {
	InfoLogger = log.New(os.Stdout, "INFO: ", log.Ldate|log.Ltime|log.Lshortfile)
	ErrorLogger = log.New(os.Stderr, "ERROR: ", log.Ldate|log.Ltime|log.Lshortfile)
	logChan = make(chan model.LogRecord, loggerBufferSize)
}

// InitLogger starts persisting operational logs into the given repository.
// Before this is called, Info/Error only write to stdout/stderr.
func InitLogger(repo repository.LogRepository) {
	logRepo = repo
	go processLogs()
}

func processLogs() {
	for entry := range logChan {
		if err := logRepo.Insert(context.Background(), entry); err != nil {
			ErrorLogger.Printf("failed to save log: %v", err)
		}
	}
}

func logAsync(level, message string) {
	now := time.Now()
	entry := model.LogRecord{
		Source:  selfSource,
		Date:    now.Format("2006-01-02"),
		Time:    now.Format("15:04:05"),
		Level:   level,
		Content: message,
	}

	logMu.Lock()
	if logRepo != nil && !logClosed {
		select {
		case logChan <- entry:
		default:
			ErrorLogger.Printf("log channel full. Dropping log: %v", entry)
		}
	}
	logMu.Unlock()

	if level == "INFO" {
		InfoLogger.Println(message)
	} else {
		ErrorLogger.Println(message)
	}
}

func Info(v ...interface{}) {
	logAsync("INFO", fmt.Sprint(v...))
}

func Infof(format string, v ...interface{}) {
	logAsync("INFO", fmt.Sprintf(format, v...))
}

func Error(v ...interface{}) {
	logAsync("ERROR", fmt.Sprint(v...))
}

func Errorf(format string, v ...interface{}) {
	logAsync("ERROR", fmt.Sprintf(format, v...))
}

// Shutdown waits for buffered entries to drain or the context to expire.
// Logging after Shutdown still reaches stdout/stderr but is no longer
// persisted. The repository itself is closed by its owner, not here.
func Shutdown(ctx context.Context) error {
	logMu.Lock()
	if logClosed {
		logMu.Unlock()
		return nil
	}
	logClosed = true
	close(logChan)
	logMu.Unlock()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			if len(logChan) == 0 {
				return nil
			}
			time.Sleep(LoggerSleepDuration)
		}
	}
}
