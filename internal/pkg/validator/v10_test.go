package validator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type createRequest struct {
	UserID         string `key:"smsAuthorization.userId" validate:"required,max=30"`
	OrganizationID string `key:"smsAuthorization.organizationId" validate:"required,max=256"`
	Lang           string `validate:"omitempty,max=8"`
}

type loginRequest struct {
	Username string `key:"login.username" validate:"required"`
	Password string `key:"login.password" validate:"required"`
}

func TestV10Validator_Validate(t *testing.T) {
	v, err := NewV10Validator()
	require.NoError(t, err)

	tests := []struct {
		name   string
		input  any
		keys   []string
		fields map[string]string
	}{
		{
			name:  "valid",
			input: createRequest{UserID: "u1", OrganizationID: "RETAIL"},
		},
		{
			name:  "empty fields",
			input: createRequest{},
			keys:  []string{"smsAuthorization.userId.empty", "smsAuthorization.organizationId.empty"},
			fields: map[string]string{
				"user_id":         "smsAuthorization.userId.empty",
				"organization_id": "smsAuthorization.organizationId.empty",
			},
		},
		{
			name:   "too long",
			input:  createRequest{UserID: "0123456789012345678901234567890", OrganizationID: "RETAIL"},
			keys:   []string{"smsAuthorization.userId.long"},
			fields: map[string]string{"user_id": "smsAuthorization.userId.long"},
		},
		{
			name:   "field without key tag",
			input:  createRequest{UserID: "u1", OrganizationID: "RETAIL", Lang: "much-too-long"},
			keys:   []string{"Lang.long"},
			fields: map[string]string{"lang": "Lang.long"},
		},
		{
			name:  "login",
			input: loginRequest{},
			keys:  []string{"login.username.empty", "login.password.empty"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.input)
			if tt.keys == nil {
				assert.NoError(t, err)
				return
			}

			var ve ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tt.keys, ve.Keys())
			if tt.fields != nil {
				assert.Equal(t, tt.fields, ve.Values())
			}
		})
	}
}

func TestValidationError_Error(t *testing.T) {
	assert.Equal(t, "validation error", ValidationError{}.Error())
	assert.Equal(t, "login.username.empty login.password.empty", ValidationError{
		{Field: "username", Key: "login.username.empty"},
		{Field: "password", Key: "login.password.empty"},
	}.Error())
}
