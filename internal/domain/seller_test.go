package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSellerRequest(t *testing.T) {
	req, err := NewSellerRequest(" Shop ", "shop@kw.com", "", []string{"https://docs/1"}, "", "Kiwi Store")
	require.NoError(t, err)

	assert.NotEmpty(t, req.ID)
	assert.Equal(t, "Shop", req.SellerName)
	assert.Equal(t, SellerRequestPending, req.Status)
	assert.Nil(t, req.Phone)
	assert.Equal(t, "Kiwi Store", req.Metadata.StoreName)
	assert.Equal(t, StringList{"https://docs/1"}, req.DocumentsURLs)
}

func TestNewSellerRequest_Validation(t *testing.T) {
	tests := []struct {
		name  string
		sname string
		email string
		field string
	}{
		{"missing name", "  ", "shop@kw.com", "name"},
		{"missing email", "Shop", "", "email"},
		{"bad email", "Shop", "not-an-email", "email"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSellerRequest(tt.sname, tt.email, "", nil, "", "")
			require.ErrorIs(t, err, ErrValidation)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestSellerRequest_Decide(t *testing.T) {
	req, err := NewSellerRequest("Shop", "shop@kw.com", "", nil, "", "")
	require.NoError(t, err)
	at := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, req.Decide(SellerRequestApproved, "looks good", at))
	assert.Equal(t, SellerRequestApproved, req.Status)
	require.NotNil(t, req.DecidedAt)
	assert.Equal(t, at, *req.DecidedAt)
	assert.Equal(t, "looks good", *req.DecisionNote)

	err = req.Decide(SellerRequestPending, "", at)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, SellerRequestApproved, req.Status)
}

func TestNormalizeSellerStatus(t *testing.T) {
	assert.Equal(t, SellerApproved, NormalizeSellerStatus("active"))
	assert.Equal(t, SellerSuspended, NormalizeSellerStatus("inactive"))
	assert.Equal(t, SellerRejected, NormalizeSellerStatus("rejected"))
	assert.Equal(t, SellerStatus("weird"), NormalizeSellerStatus("weird"))
}

func TestNewSeller(t *testing.T) {
	s, err := NewSeller("Shop", "", "", "", Metadata{})
	require.NoError(t, err)
	assert.Equal(t, SellerPending, s.Status)
	assert.Nil(t, s.Email)
	assert.Equal(t, "", s.EmailValue())

	_, err = NewSeller("", "shop@kw.com", "", SellerApproved, Metadata{})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = NewSeller("Shop", "broken", "", SellerApproved, Metadata{})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSeller_ValidateStatus(t *testing.T) {
	tests := []struct {
		status string
		valid  bool
	}{
		{"pending", true},
		{"approved", true},
		{"rejected", true},
		{"suspended", true},
		{"active", true},
		{"inactive", true},
		{"blocked", false},
		{"Approved", false},
	}
	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			_, err := NewSeller("Shop", "", "", NormalizeSellerStatus(tt.status), Metadata{})
			if tt.valid {
				require.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, "status", verr.Field)
		})
	}
}

func TestSeller_CloneIsDeep(t *testing.T) {
	s, err := NewSeller("Shop", "shop@kw.com", "", SellerApproved, Metadata{Extra: map[string]any{"tier": "gold"}})
	require.NoError(t, err)

	c := s.Clone()
	*c.Email = "other@kw.com"
	c.Metadata.Extra["tier"] = "silver"

	assert.Equal(t, "shop@kw.com", s.EmailValue())
	assert.Equal(t, "gold", s.Metadata.Extra["tier"])
}

func TestNewSellerProductLink(t *testing.T) {
	link, err := NewSellerProductLink("seller-1", "prod_123", 2)
	require.NoError(t, err)
	assert.Equal(t, 2, link.DisplayOrder)

	_, err = NewSellerProductLink("", "prod_123", 0)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = NewSellerProductLink("seller-1", "123", 0)
	assert.ErrorIs(t, err, ErrValidation)
}
