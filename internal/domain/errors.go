package domain

import "errors"

// Error classes the orchestrator maps to exit codes. Adapters wrap these
// with %w so call sites can classify with errors.Is.
var (
    ErrAuth           = errors.New("authentication failed")
    ErrNotFound       = errors.New("user not found")
    ErrAmbiguousMatch = errors.New("ambiguous user match")
    ErrTransient      = errors.New("transient failure")
    ErrProtocol       = errors.New("unexpected response shape")
    ErrGeneration     = errors.New("generation failed")
)
