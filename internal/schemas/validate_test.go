package schemas

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResumeStoreSchema_ValidJSON(t *testing.T) {
	var v map[string]interface{}
	require.NoError(t, json.Unmarshal(ResumeStoreSchema(), &v))
	assert.Equal(t, "object", v["type"])
}

func TestValidateResumeStore(t *testing.T) {
	tests := []struct {
		name      string
		document  string
		wantError bool
	}{
		{
			name:     "empty store",
			document: `{}`,
		},
		{
			name: "all outcomes",
			document: `{
				"https://example.com/in/a": {"status": "Already Connected", "timestamp": "2024-01-02 03:04:05"},
				"https://example.com/in/b": {"status": "Connection Sent", "timestamp": "2024-01-02 03:04:06"},
				"https://example.com/in/c": {"status": "No Invite Option", "timestamp": "2024-01-02 03:04:07"},
				"https://example.com/in/d": {"status": "No Connect Option", "timestamp": "2024-01-02 03:04:08"}
			}`,
		},
		{
			name:      "unknown status",
			document:  `{"a": {"status": "Pending", "timestamp": "2024-01-02 03:04:05"}}`,
			wantError: true,
		},
		{
			name:      "missing timestamp",
			document:  `{"a": {"status": "Connection Sent"}}`,
			wantError: true,
		},
		{
			name:      "bad timestamp layout",
			document:  `{"a": {"status": "Connection Sent", "timestamp": "2024-01-02T03:04:05Z"}}`,
			wantError: true,
		},
		{
			name:      "array root",
			document:  `[]`,
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateResumeStore([]byte(tt.document))
			if !tt.wantError {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var validationErr *ValidationError
			assert.True(t, errors.As(err, &validationErr), "expected ValidationError, got %T", err)
		})
	}
}

func TestValidateResumeStore_Malformed(t *testing.T) {
	err := ValidateResumeStore([]byte(`{ invalid json }`))
	require.Error(t, err)

	var loadErr *SchemaLoadError
	assert.True(t, errors.As(err, &loadErr))
}

func TestValidationError_Format(t *testing.T) {
	err := &ValidationError{Errors: []FieldError{{Field: "a.status", Message: "must be one of"}}}
	assert.Contains(t, err.Error(), "1. a.status: must be one of")
}
