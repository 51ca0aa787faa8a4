package access

// Result is the terminal outcome of a permission resolution.
type Result string

const (
	ResultGranted Result = "granted"
	ResultDenied  Result = "denied"
	ResultError   Result = "error"
)

// Decision carries the resolution outcome together with a short reason string
// intended for audit logging. The reason is never surfaced to unauthorized
// callers.
type Decision struct {
	Result Result `json:"result"`
	Reason string `json:"reason"`
}

// ReasonNotFound marks a resolution that failed because the resource row is
// absent. Callers typically map it to a 404 rather than a 403 to avoid
// leaking existence.
const ReasonNotFound = "resource not found"

// Allowed reports whether the decision grants access.
func (d Decision) Allowed() bool {
	return d.Result == ResultGranted
}

// NotFound reports whether the resolution failed because the resource row is
// absent.
func (d Decision) NotFound() bool {
	return d.Result == ResultError && d.Reason == ReasonNotFound
}

func grant(reason string) Decision {
	return Decision{Result: ResultGranted, Reason: reason}
}

func deny(reason string) Decision {
	return Decision{Result: ResultDenied, Reason: reason}
}

func errorDecision(reason string) Decision {
	return Decision{Result: ResultError, Reason: reason}
}
