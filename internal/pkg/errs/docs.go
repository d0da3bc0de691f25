// Package errs provides the typed errors shared by the domain, the use cases
// and the adapters.
//
// Every error type wraps a sentinel so callers classify failures with errors.Is
// and read details with errors.As:
//   - ObjectNotFoundError       -> ErrObjectNotFound
//   - ObjectAlreadyExistsError  -> ErrObjectAlreadyExists
//   - ValueIsInvalidError       -> ErrValueIsInvalid
//   - ValueIsOutOfRangeError    -> ErrValueIsOutOfRange
//   - ValueIsRequiredError      -> ErrValueIsRequired
//
// Messages are rendered on a single line so they can go straight into structured logs.
package errs
