package buyer

import (
	"errors"
	"testing"

	"github.com/exportdesk/backend/internal/domain/shared"
	"github.com/exportdesk/backend/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBuyer(t *testing.T) {
	tests := []struct {
		name    string
		details Details
		code    string
	}{
		{"valid", Details{Name: "Harbour Foods", Email: "Buy@Harbour.example", Phone: "+44 131 555 0101"}, ""},
		{"name only", Details{Name: "Walk-in"}, ""},
		{"missing name", Details{Email: "a@b.co"}, "INVALID_NAME"},
		{"bad email", Details{Name: "X", Email: "not-an-email"}, "INVALID_EMAIL"},
		{"bad phone", Details{Name: "X", Phone: "call me"}, "INVALID_PHONE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := NewBuyer(tt.details)
			if tt.code == "" {
				require.NoError(t, err)
				assert.Equal(t, 1, b.Version)
				return
			}
			var de *shared.DomainError
			require.True(t, errors.As(err, &de))
			assert.Equal(t, tt.code, de.Code)
		})
	}
}

func TestBuyer_Update(t *testing.T) {
	b, err := NewBuyer(Details{Name: "Ada", Email: "ADA@EXAMPLE.COM"})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", b.Email)

	err = b.Update(Details{Name: "Ada L", Company: "Engines Ltd", Address: valueobject.Address{City: " London ", Country: "gb"}})
	require.NoError(t, err)
	assert.Equal(t, 2, b.Version)
	assert.Equal(t, "London", b.Address.City)
	assert.Equal(t, "GB", b.Address.Country)
	assert.Equal(t, "Ada L (Engines Ltd)", b.DisplayName())

	err = b.Update(Details{Name: ""})
	assert.Error(t, err)
	assert.Equal(t, "Ada L", b.Name)
}
