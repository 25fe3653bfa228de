// Package errors provides error types for vigil's build reporting.
package errors

import (
	"fmt"
	"sync"
	"time"
)

// BuildError represents a failed build invocation
type BuildError struct {
	Command   string
	Dir       string
	ExitCode  int
	Output    string
	Timestamp time.Time
}

// Error implements the error interface
func (be *BuildError) Error() string {
	return fmt.Sprintf("build %q exited with code %d", be.Command, be.ExitCode)
}

// ErrorCollector retains build errors across watch-loop ticks so the most
// recent failure stays available for reporting
type ErrorCollector struct {
	buildErrors []*BuildError
	mutex       sync.RWMutex
}

// NewErrorCollector creates a new error collector
func NewErrorCollector() *ErrorCollector {
	return &ErrorCollector{
		buildErrors: make([]*BuildError, 0),
	}
}

// Add adds a build error to the collector
func (ec *ErrorCollector) Add(err *BuildError) {
	if err == nil {
		return
	}
	ec.mutex.Lock()
	defer ec.mutex.Unlock()
	if err.Timestamp.IsZero() {
		err.Timestamp = time.Now()
	}
	ec.buildErrors = append(ec.buildErrors, err)
}

// Last returns the most recently collected build error, or nil
func (ec *ErrorCollector) Last() *BuildError {
	ec.mutex.RLock()
	defer ec.mutex.RUnlock()
	if len(ec.buildErrors) == 0 {
		return nil
	}
	return ec.buildErrors[len(ec.buildErrors)-1]
}

// GetErrors returns all collected build errors
func (ec *ErrorCollector) GetErrors() []*BuildError {
	ec.mutex.RLock()
	defer ec.mutex.RUnlock()
	result := make([]*BuildError, len(ec.buildErrors))
	copy(result, ec.buildErrors)
	return result
}

// HasErrors returns true if there are any errors
func (ec *ErrorCollector) HasErrors() bool {
	ec.mutex.RLock()
	defer ec.mutex.RUnlock()
	return len(ec.buildErrors) > 0
}

// Clear clears all errors
func (ec *ErrorCollector) Clear() {
	ec.mutex.Lock()
	defer ec.mutex.Unlock()
	ec.buildErrors = ec.buildErrors[:0]
}
