package goalkeeper

import (
	"errors"
	"fmt"
)

// ErrCorruptRecord is returned when a stored completion time cannot be parsed.
var ErrCorruptRecord = errors.New("goalkeeper: corrupt record")

// CorruptRecordError describes an unparseable record.
type CorruptRecordError struct {
	Key   string
	Value string
	Err   error
}

func (e *CorruptRecordError) Error() string {
	return fmt.Sprintf("goalkeeper: corrupt record at %q (value %q): %v", e.Key, e.Value, e.Err)
}

func (e *CorruptRecordError) Unwrap() error { return e.Err }

// Is reports target == ErrCorruptRecord so errors.Is matches the sentinel.
func (e *CorruptRecordError) Is(target error) bool { return target == ErrCorruptRecord }
