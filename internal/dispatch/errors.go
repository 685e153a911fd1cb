package dispatch

// BackendError means the generative call failed or timed out. It is returned
// to the caller, which decides how to inform the user.
type BackendError struct {
	Err error
}

func (e *BackendError) Error() string { return "backend: " + e.Err.Error() }
func (e *BackendError) Unwrap() error { return e.Err }

// PersistenceError means the interaction record could not be written. It is
// logged and swallowed inside Handle; the user still gets the reply.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string { return "persistence: " + e.Err.Error() }
func (e *PersistenceError) Unwrap() error { return e.Err }
