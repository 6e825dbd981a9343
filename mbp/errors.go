package mbp

import "errors"

// ErrEvalFailed means a subterm required to evaluate to a numeral or
// Boolean under the model did not. This is fatal — the caller's model was
// inconsistent with the input formula.
var ErrEvalFailed = errors.New("mbp evaluation didn't produce a truth/integer/numeral value")

// ErrCancelled is returned when the host-provided liveness flag went
// clear mid-call.
var ErrCancelled = errors.New("mbp: cancelled")

// ErrPostSubstitutionFalsified signals a bug in definition reconstruction
// or a stale model: substituting the reconstructed definitions back into
// the residue made some literal false under the model.
var ErrPostSubstitutionFalsified = errors.New("mbp: residue falsified after substituting definitions")
