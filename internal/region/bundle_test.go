package region

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBundleKeepsDocumentOrder(t *testing.T) {
	var b Bundle
	require.NoError(t, json.Unmarshal([]byte(`{"zeta": {"enrolment": 1}, "alpha": {}, "mu": {"lifecycle": 3}}`), &b))

	assert.Equal(t, []string{"zeta", "alpha", "mu"}, b.Keys())
	rec, ok := b.Lookup("mu")
	require.True(t, ok)
	assert.Equal(t, 3.0, rec.Lifecycle)

	out, err := json.Marshal(b)
	require.NoError(t, err)
	assert.JSONEq(t, `{"zeta":{"enrolment":1,"updates":0,"migration":0,"lifecycle":0},"alpha":{"enrolment":0,"updates":0,"migration":0,"lifecycle":0},"mu":{"enrolment":0,"updates":0,"migration":0,"lifecycle":3}}`, string(out))
}

func TestBundleDuplicateKeyKeepsFirstPosition(t *testing.T) {
	var b Bundle
	require.NoError(t, json.Unmarshal([]byte(`{"a": {"enrolment": 1}, "b": {}, "a": {"enrolment": 2}}`), &b))
	assert.Equal(t, []string{"a", "b"}, b.Keys())
	rec, _ := b.Lookup("a")
	assert.Equal(t, 2.0, rec.Enrolment)
}

func TestBundleNullAndErrors(t *testing.T) {
	var b Bundle
	require.NoError(t, json.Unmarshal([]byte(`null`), &b))
	assert.Zero(t, b.Len())

	assert.Error(t, json.Unmarshal([]byte(`[1,2]`), &b))
	assert.Error(t, json.Unmarshal([]byte(`{"a": "x"}`), &b))
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Tamil Nadu", DisplayName("region_tamil_nadu"))
	assert.Equal(t, "Uttar Pradesh", DisplayName("uttar pradesh"))
	assert.Equal(t, "Nct Of Delhi", DisplayName("NCT of Delhi"))
	assert.Equal(t, "Unknown Region", DisplayName(""))
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "andaman and nicobar island", Normalize("  Andaman & Nicobar Island "))
	assert.Equal(t, "a and b and c", Normalize("A & B & C"))
}
