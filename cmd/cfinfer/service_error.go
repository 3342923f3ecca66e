// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/cfinfer/cfinfer/internal/issue"
)

// issueStyle is the glamour style used for catalog help text.
const issueStyle = "dark"

// ServiceError is a command failure that knows how to present itself: a red
// "Error:" line (suggestions included for actionable errors) followed by the
// help text of its issue catalog entry.
type ServiceError struct {
	Err error
	// IssueID selects the catalog help; zero renders the message only.
	IssueID issue.Id
	// Verbose shows the full error chain of actionable errors.
	Verbose bool
}

// newServiceError panics on a nil err so a rendered failure always has a message.
func newServiceError(err error, issueID issue.Id, verbose bool) *ServiceError {
	if err == nil {
		panic("ServiceError: Err must not be nil")
	}
	return &ServiceError{Err: err, IssueID: issueID, Verbose: verbose}
}

// fail wraps err for the CLI layer using the app's verbosity.
func (a *App) fail(err error, issueID issue.Id) error {
	return newServiceError(err, issueID, a.verbose)
}

func (e *ServiceError) Error() string { return e.Err.Error() }

func (e *ServiceError) Unwrap() error { return e.Err }

// Render writes the message and then the catalog help. A help entry that
// fails to render is logged and skipped.
func (e *ServiceError) Render(w io.Writer) {
	if e == nil {
		return
	}

	fmt.Fprintf(w, "\n%s %s\n", ErrorStyle.Render("Error:"), formatErrorForDisplay(e.Err, e.Verbose))

	entry := issue.Get(e.IssueID)
	if entry == nil {
		return
	}
	help, err := entry.Render(issueStyle)
	if err != nil {
		slog.Warn("render issue help", "issue", e.IssueID, "error", err)
		return
	}
	fmt.Fprint(w, help)
}

// formatErrorForDisplay uses the Format method of actionable errors and the
// plain message otherwise.
func formatErrorForDisplay(err error, verbose bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verbose)
	}
	return err.Error()
}
