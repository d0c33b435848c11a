package resume

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSafeAccountName(t *testing.T) {
	tests := []struct {
		account  string
		expected string
	}{
		{"o'brien 23", "obrien23"},
		{"jane.doe@example.com", "janedoeexamplecom"},
		{"plain", "plain"},
		{"", ""},
		{"  --  ", ""},
		{"Zoë_99", "Zoë99"},
	}

	for _, tt := range tests {
		t.Run(tt.account, func(t *testing.T) {
			assert.Equal(t, tt.expected, SafeAccountName(tt.account))
		})
	}
}

func TestPersistenceError(t *testing.T) {
	cause := assert.AnError
	err := &PersistenceError{Account: "u1", Message: "failed to read store file", Cause: cause}

	assert.Contains(t, err.Error(), "u1")
	assert.Contains(t, err.Error(), "failed to read store file")
	assert.ErrorIs(t, err, cause)

	bare := &PersistenceError{Account: "u1", Message: "boom"}
	assert.Equal(t, "resume store error for u1: boom", bare.Error())
}
