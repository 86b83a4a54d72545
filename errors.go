package mimo

import (
	"fmt"

	"github.com/dudk/mimo/internal/workerpool"
)

// Severity classifies an error surfaced from item-level work, mirroring
// spec §9's Fatal/Recoverable split of the source's exception-based
// control flow. It is an alias of workerpool.Severity, the type the
// worker pool actually checks at the slice boundary (spec §4.3/§7), so
// an Item can declare one without importing internal/workerpool itself.
type Severity = workerpool.Severity

const (
	// Recoverable errors are caught at the slice boundary, logged
	// out-of-band, and the cycle continues (spec §4.3/§7).
	Recoverable = workerpool.Recoverable
	// Fatal errors indicate a programmer-contract violation; the audio
	// thread aborts rather than risk running with corrupted state.
	Fatal = workerpool.Fatal
)

// ConfigError reports a problem detected at construction time: a
// missing required parameter, an invalid thread count, a zero block
// size (spec §7 "Configuration error").
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string { return "mimo: config error: " + e.Message }

// StructuralError reports a problem with a control-thread structural
// operation: removing a handle not present, pushing to a zero-capacity
// ring (spec §7 "Structural error").
type StructuralError struct {
	Message string
}

func (e *StructuralError) Error() string { return "mimo: structural error: " + e.Message }

// FatalError reports a programmer-contract violation observed on any
// thread: a selector predicate returning a value outside {0,1,2}, or an
// Item whose Process is not implemented at all (spec §7 "Programmer-
// contract violation"). It implements workerpool.SeverityError as
// Fatal, so an Item returning one from Process aborts the current stage
// immediately instead of being logged and skipped, per spec §9.
type FatalError struct {
	Cause error
}

func (e *FatalError) Error() string { return fmt.Sprintf("mimo: fatal: %v", e.Cause) }

func (e *FatalError) Unwrap() error { return e.Cause }

// Severity reports Fatal, satisfying workerpool.SeverityError.
func (e *FatalError) Severity() Severity { return Fatal }

// DrainError reports a queue that still held entries after deactivate's
// drain loop terminated — a lost command, fatal per spec §7
// ("Queue-drain failure").
type DrainError struct {
	Inbound, Outbound int
}

func (e *DrainError) Error() string {
	return fmt.Sprintf("mimo: queue drain failed: %d inbound, %d outbound entries remain", e.Inbound, e.Outbound)
}
