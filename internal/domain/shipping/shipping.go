package shipping

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var ErrAddressNotFound = errors.New("address not found")

// Info is the shipping detail for one checkout. It is either filled from a
// saved address plus profile claims, or entered ad hoc; ad hoc info is never
// persisted unless the shopper explicitly saves it.
type Info struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Street    string `json:"street"`
	City      string `json:"city"`
	State     string `json:"state,omitempty"`
	ZipCode   string `json:"zip_code"`
	Country   string `json:"country"`
	Phone     string `json:"phone"`
}

// ValidationError lists the missing required fields. It blocks the
// state-machine transition and never reaches the network.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("shipping info incomplete: missing %s", strings.Join(e.Missing, ", "))
}

// Validate checks completeness. State is optional (not every country has
// one); everything else is required.
func (i Info) Validate() error {
	var missing []string
	require := func(field, value string) {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, field)
		}
	}
	require("first_name", i.FirstName)
	require("last_name", i.LastName)
	require("email", i.Email)
	require("street", i.Street)
	require("city", i.City)
	require("zip_code", i.ZipCode)
	require("country", i.Country)
	require("phone", i.Phone)

	if len(missing) > 0 {
		return &ValidationError{Missing: missing}
	}
	return nil
}

// Address is a saved address-book entry owned by a user profile. The
// checkout core only reads it; address-book CRUD lives elsewhere.
type Address struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	Street    string `json:"street"`
	City      string `json:"city"`
	State     string `json:"state,omitempty"`
	ZipCode   string `json:"zip_code"`
	Country   string `json:"country"`
	IsDefault bool   `json:"is_default"`
}

// AddressRepository reads a user's saved addresses. Save exists for the
// explicit "save this address" affordance only.
type AddressRepository interface {
	Get(ctx context.Context, userID, addressID string) (*Address, error)
	ListByUser(ctx context.Context, userID string) ([]*Address, error)
	Save(ctx context.Context, a *Address) error
}

// FromAddress fills shipping info from a saved address plus profile-sourced
// name, email and phone. The caller still validates the result: a saved
// address does not excuse missing profile fields.
func FromAddress(a *Address, firstName, lastName, email, phone string) Info {
	return Info{
		FirstName: firstName,
		LastName:  lastName,
		Email:     email,
		Street:    a.Street,
		City:      a.City,
		State:     a.State,
		ZipCode:   a.ZipCode,
		Country:   a.Country,
		Phone:     phone,
	}
}
