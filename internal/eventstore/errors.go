package eventstore

import (
	"git.home.luguber.info/inful/docweave/internal/foundation/errors"
)

var (
	// ErrDatabaseOpenFailed indicates the SQLite database could not be opened.
	ErrDatabaseOpenFailed = errors.JournalError("could not open run journal").Build()

	// ErrEventAppendFailed indicates appending an event failed.
	ErrEventAppendFailed = errors.JournalError("failed to append event to run journal").Build()

	// ErrEventQueryFailed indicates querying events failed.
	ErrEventQueryFailed = errors.JournalError("failed to query run journal").Build()
)

func journalErr(sentinel *errors.ClassifiedError, cause error) error {
	return errors.WrapError(cause, errors.CategoryJournal, sentinel.Message()).Build()
}
