package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadata_JSON(t *testing.T) {
	var m Metadata
	require.NoError(t, json.Unmarshal([]byte(`{"store_name":"Kiwi","source":"seller_request","tier":"gold","request_id":7}`), &m))

	assert.Equal(t, "Kiwi", m.StoreName)
	assert.Equal(t, SourceSellerRequest, m.Source)
	assert.Empty(t, m.RequestID)
	assert.Equal(t, "gold", m.Extra["tier"])
	assert.Equal(t, float64(7), m.Extra[MetaRequestID])

	b, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"store_name":"Kiwi","source":"seller_request","tier":"gold","request_id":7}`, string(b))
}

func TestMetadata_Merge(t *testing.T) {
	base := Metadata{StoreName: "Kiwi", Extra: map[string]any{"tier": "gold"}}
	merged := base.Merge(Metadata{Source: SourceSellerRequest, Extra: map[string]any{"tier": "silver"}})

	assert.Equal(t, "Kiwi", merged.StoreName)
	assert.Equal(t, SourceSellerRequest, merged.Source)
	assert.Equal(t, "silver", merged.Extra["tier"])
	assert.Equal(t, "gold", base.Extra["tier"])
}

func TestMetadata_Scan(t *testing.T) {
	var m Metadata
	require.NoError(t, m.Scan([]byte(`{"request_id":"req-1"}`)))
	assert.Equal(t, "req-1", m.RequestID)

	require.NoError(t, m.Scan(nil))
	assert.True(t, m.IsEmpty())

	assert.Error(t, m.Scan(42))

	v, err := Metadata{StoreName: "Kiwi"}.Value()
	require.NoError(t, err)
	assert.JSONEq(t, `{"store_name":"Kiwi"}`, v.(string))
}

func TestStringList_Value(t *testing.T) {
	v, err := StringList(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)

	var l StringList
	require.NoError(t, l.Scan(`["a","b"]`))
	assert.Equal(t, StringList{"a", "b"}, l)
}
