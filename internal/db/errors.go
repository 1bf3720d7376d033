package db

import (
	"errors"
	"fmt"
	"strings"

	"github.com/surrealdb/surrealdb.go"
)

var (
	// ErrAlreadyExists is returned when a CREATE hits an existing record id.
	ErrAlreadyExists = errors.New("record already exists")

	// ErrTransactionConflict is returned when concurrent writes touch the same
	// records. Appends to one session can hit this under load; retrying is safe.
	ErrTransactionConflict = errors.New("transaction conflict")
)

var queryErrorPatterns = []struct {
	substr string
	err    error
}{
	{"already exists", ErrAlreadyExists},
	{"Transaction conflict", ErrTransactionConflict},
}

// wrapQueryError prefixes err with op and maps known SurrealDB query errors to
// the sentinels above.
func wrapQueryError(op string, err error) error {
	if err == nil {
		return nil
	}
	var qe *surrealdb.QueryError
	if errors.As(err, &qe) {
		for _, p := range queryErrorPatterns {
			if strings.Contains(qe.Message, p.substr) {
				return fmt.Errorf("%s: %w: %s", op, p.err, qe.Message)
			}
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
