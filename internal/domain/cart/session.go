package cart

// Session identifies the current shopper. It is constructed once per request
// at the API boundary and passed explicitly to every component that needs
// cart or identity state; nothing in the service reads ambient globals.
type Session struct {
	// UserID is set for an authenticated shopper (opaque identity-provider id).
	UserID string
	// GuestID is the client-minted session id for an anonymous shopper.
	GuestID string
	// Email and Name come from identity-provider profile claims when present.
	Email string
	Name  string
	Phone string
}

// Authenticated reports whether the session belongs to a signed-in shopper.
func (s Session) Authenticated() bool {
	return s.UserID != ""
}

// Owner is the storage key for the session's cart: the user id when signed
// in, otherwise the guest session id.
func (s Session) Owner() string {
	if s.UserID != "" {
		return s.UserID
	}
	return s.GuestID
}
