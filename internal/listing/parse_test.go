package listing

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProperty(t *testing.T) {
	t.Parallel()

	rec, err := ParseProperty(json.RawMessage(`{"propertyData": ` + camdenPropertyData + `}`))
	require.NoError(t, err)

	assert.Equal(t, "164903663", rec.ID)
	assert.True(t, rec.Status.Published)
	assert.False(t, rec.Status.Archived)
	require.NotNil(t, rec.Text.PageTitle)
	assert.Equal(t, "2 bedroom flat to rent in Camden Road, London, NW1", *rec.Text.PageTitle)
	assert.Nil(t, rec.Text.Disclaimer)
	assert.Nil(t, rec.Text.ShortDescription)
	require.NotNil(t, rec.Prices.PrimaryPrice)
	assert.Equal(t, "£2,362 pcm", *rec.Prices.PrimaryPrice)
	require.NotNil(t, rec.Prices.DisplayPriceQualifier)
	assert.Equal(t, "", *rec.Prices.DisplayPriceQualifier)
	assert.Equal(t, "NW1", *rec.Address.Outcode)
	assert.Equal(t, "England", *rec.Address.UKCountry)
	assert.Equal(t, 2, *rec.Bedrooms)
	assert.Equal(t, 1, *rec.Bathrooms)
	assert.Equal(t, "Flat", *rec.PropertySubType)
	assert.Equal(t, []string{"https://media.test/1.jpg", "https://media.test/2.jpg"}, rec.Images)
	assert.Equal(t, "Camden Lettings", *rec.Agent.Name)
	assert.Equal(t, int64(55123), *rec.Agent.BranchID)
	assert.Equal(t, "020 7000 0000", *rec.Agent.Telephone)
	assert.Equal(t, "https://www.rightmove.co.uk/properties/164903663", rec.URL)
}

func TestParseProperty_Defaults(t *testing.T) {
	t.Parallel()

	rec, err := ParseProperty(json.RawMessage(`{"propertyData": {"id": "42", "bedrooms": null}}`))
	require.NoError(t, err)
	assert.True(t, rec.Status.Published)
	assert.False(t, rec.Status.Archived)
	assert.Nil(t, rec.Bedrooms)
	assert.Nil(t, rec.Prices.PrimaryPrice)
	assert.Nil(t, rec.Agent.BranchID)
	assert.Empty(t, rec.Images)

	out, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"bedrooms":null`)
}

func TestParseProperty_Missing(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{`{}`, `{"propertyData": "x"}`, `{"propertyData": {"text": {}}}`} {
		_, err := ParseProperty(json.RawMessage(raw))
		require.Error(t, err, raw)
		assert.True(t, errors.Is(err, ErrNoPayload), raw)
	}
}
