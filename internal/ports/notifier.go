package ports

// Port: best-effort notification delivery. Failures are logged by the
// caller, never propagated: notification is outside the consistency
// boundary of a transition.
type Notifier interface {
	Notify(recipientGroup, title, body string) error
}
