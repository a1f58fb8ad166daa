package duplicates

import "github.com/grailbio/base/errors"

// WithKind wraps err with a grailbio/base/errors Kind tag so that ExitCode
// can later choose the right process exit status. A nil err returns nil.
// This is the same Kind-driven convention markduplicates and
// cmd/bio-bam-sort use around log.Panicf/os.Exit.
func WithKind(kind errors.Kind, err error) error {
	if err == nil {
		return nil
	}
	return errors.E(kind, err)
}

// ExitCode maps an error returned by this package to the process exit code
// required by spec.md §7: 0 success, 2 invalid usage or infeasible
// configuration (errors.Invalid), 1 everything else (I/O, parse, and
// internal invariant violations).
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if errors.Is(errors.Invalid, err) {
		return 2
	}
	return 1
}
