// internal/app/membership/errors.go
package membership

import "errors"

// Kind classifies coordinator errors so handlers can map them to HTTP
// status codes without string matching.
type Kind int

const (
	// KindCapability: the caller's role does not permit the operation.
	KindCapability Kind = iota + 1
	// KindValidation: malformed input (empty name, malformed code).
	KindValidation
	// KindConflict: an invariant pre-check failed (already owner,
	// already member, team full).
	KindConflict
	// KindNotFound: code/company/membership does not resolve.
	KindNotFound
)

// Error is a coordinator error with a user-facing message. The
// messages are the German strings the dashboard shows verbatim.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

func capabilityErr(msg string) *Error { return &Error{Kind: KindCapability, Message: msg} }
func validationErr(msg string) *Error { return &Error{Kind: KindValidation, Message: msg} }
func conflictErr(msg string) *Error   { return &Error{Kind: KindConflict, Message: msg} }
func notFoundErr(msg string) *Error   { return &Error{Kind: KindNotFound, Message: msg} }

// KindOf returns the Kind of a coordinator error, or 0 for
// infrastructure errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// User-facing messages.
const (
	msgOnlyManagers  = "Nur Manager können eine Firma erstellen."
	msgEmptyName     = "Firmenname darf nicht leer sein."
	msgAlreadyOwner  = "Du besitzt bereits eine Firma."
	msgInvalidCode   = "Ungültiger Einladungscode"
	msgAlreadyMember = "Du bist bereits Mitglied dieser Firma."
	msgNotOwner      = "Nur der Inhaber kann Mitglieder verwalten."
	msgOwnerNoLeave  = "Als Inhaber kannst du deine Firma nicht verlassen."
)
