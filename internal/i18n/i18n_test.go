package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFallbackChain(t *testing.T) {
	c := Default()

	assert.Equal(t, "भारत सरकार", c.T(Hindi, "gov_india"))
	assert.Equal(t, "Six Month Trend", c.T(Hindi, "chart_trend"), "missing hindi entry falls back to english")
	assert.Equal(t, "no_such_key", c.T(Marathi, "no_such_key"), "unknown key is returned as-is")
	assert.Equal(t, "Policymaker", c.T(Lang("fr"), "role_admin"))
}

func TestSeedCoversDynamicKeys(t *testing.T) {
	c := Default()
	for _, key := range []string{
		"alert_gen", "rec_gen",
		"layer_enrolment", "layer_updates", "layer_migration", "layer_lifecycle",
		"bucket_no_data", "bucket_neutral", "bucket_enrolment_saturated", "bucket_activity_intense",
		"insight_mig_influx", "insight_mig_outflow", "insight_life_lag", "insight_life_stable",
		"insight_activity_high", "insight_activity_mod",
		"role_admin", "role_field", "role_supervisor", "notice_backend_unavailable",
	} {
		assert.NotEqual(t, key, c.T(English, key), "english entry missing for %s", key)
	}
}

func TestTranslator(t *testing.T) {
	tr := Default().Translator(Bengali)
	assert.Equal(t, "ভারত সরকার", tr("gov_india"))
	assert.Equal(t, "Logout", Default().Translator(English)("logout"))
}

func TestLoad(t *testing.T) {
	c, err := Load([]byte("EN:\n  hello: Hello\nhi:\n  hello: \"\"\n"))
	require.NoError(t, err)
	assert.Equal(t, "Hello", c.T(Hindi, "hello"), "empty translation falls back")
	assert.Equal(t, []string{"hello"}, c.Keys())

	_, err = Load([]byte("hi:\n  hello: x\n"))
	assert.Error(t, err)

	_, err = Load([]byte(":::"))
	assert.Error(t, err)
}

func TestParseLang(t *testing.T) {
	assert.Equal(t, Gujarati, ParseLang(" GU "))
	assert.Equal(t, English, ParseLang("ta"))
	assert.Equal(t, English, ParseLang(""))
}

func TestNegotiate(t *testing.T) {
	assert.Equal(t, Marathi, Negotiate("mr", "hi-IN"))
	assert.Equal(t, Hindi, Negotiate("", "hi-IN,hi;q=0.9,en;q=0.8"))
	assert.Equal(t, Bengali, Negotiate("", "bn"))
	assert.Equal(t, English, Negotiate("", ""))
	assert.Equal(t, English, Negotiate("", "ja-JP"))
}
