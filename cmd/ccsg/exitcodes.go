package main

import (
	"errors"
	"fmt"
)

// Exit codes
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError = 2 // Configuration error (invalid settings, unreadable registry)
	ExitDataError   = 3 // At least one record was rejected or skipped
	ExitAborted     = 4 // Batch stopped at the first failed record (on_error: abort)
)

// exitError carries an exit code out of a command. A nil err means the
// command has already reported everything on stdout.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

func withCode(code int, err error) error {
	return &exitError{code: code, err: err}
}

// exitCode returns the process exit code for an error returned by a command.
func exitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return ExitError
}

// silent reports whether err needs no message of its own.
func silent(err error) bool {
	var ee *exitError
	return errors.As(err, &ee) && ee.err == nil
}
