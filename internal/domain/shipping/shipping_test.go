package shipping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completeInfo() Info {
	return Info{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Street:    "12 Analytical St",
		City:      "London",
		ZipCode:   "EC1A",
		Country:   "GB",
		Phone:     "+44 20 0000 0000",
	}
}

func TestInfo_Validate_Complete(t *testing.T) {
	assert.NoError(t, completeInfo().Validate())
}

func TestInfo_Validate_StateOptional(t *testing.T) {
	info := completeInfo()
	info.State = ""
	assert.NoError(t, info.Validate())
}

func TestInfo_Validate_MissingFields(t *testing.T) {
	info := completeInfo()
	info.Email = ""
	info.Phone = "   " // whitespace counts as missing

	err := info.Validate()

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.ElementsMatch(t, []string{"email", "phone"}, verr.Missing)
	assert.Contains(t, verr.Error(), "email")
}

func TestInfo_Validate_AllMissing(t *testing.T) {
	err := Info{}.Validate()

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Missing, 8)
}

func TestFromAddress(t *testing.T) {
	addr := &Address{
		ID:      "addr-1",
		UserID:  "user-1",
		Street:  "12 Analytical St",
		City:    "London",
		State:   "",
		ZipCode: "EC1A",
		Country: "GB",
	}

	info := FromAddress(addr, "Ada", "Lovelace", "ada@example.com", "+44 20 0000 0000")

	assert.NoError(t, info.Validate())
	assert.Equal(t, addr.Street, info.Street)
	assert.Equal(t, "Ada", info.FirstName)
}

func TestFromAddress_MissingProfileFieldsStillFailValidation(t *testing.T) {
	addr := &Address{Street: "s", City: "c", ZipCode: "z", Country: "GB"}

	info := FromAddress(addr, "", "", "", "")

	var verr *ValidationError
	require.ErrorAs(t, info.Validate(), &verr)
	assert.ElementsMatch(t, []string{"first_name", "last_name", "email", "phone"}, verr.Missing)
}
