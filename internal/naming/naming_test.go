package naming

import "testing"

import "github.com/stretchr/testify/assert"

func TestSanitizeUmlautsAndPunctuation(t *testing.T) {
	assert.Equal(t, "kuenstler_strasse", Sanitize("Künstler-Straße"))
	assert.Equal(t, "kna1", Sanitize("  KNA1  "))
	assert.Equal(t, "a_b_c", Sanitize("A!!B??C"))
}

func TestSanitizeIdempotent(t *testing.T) {
	inputs := []string{"Künstler-Straße", "  Hello__World  ", "already_clean", "123abc"}
	for _, in := range inputs {
		once := Sanitize(in)
		twice := Sanitize(once)
		assert.Equal(t, once, twice, "Sanitize(Sanitize(%q)) should equal Sanitize(%q)", in, in)
	}
}

func TestValidateRejectsLeadingDigit(t *testing.T) {
	assert.Error(t, Validate("1abc"))
	assert.NoError(t, Validate("abc1"))
	assert.NoError(t, Validate("_abc"))
}

func TestBuildPhysicalName(t *testing.T) {
	got, err := BuildPhysicalName("raw", "sap1", "KNA1")
	assert.NoError(t, err)
	assert.Equal(t, "raw_sap1_kna1", got)
}

func TestBuildHistName(t *testing.T) {
	got, err := BuildHistName("rc_sap_customer")
	assert.NoError(t, err)
	assert.Equal(t, "rc_sap_customer_hist", got)
}

func TestBuildSurrogateKeyName(t *testing.T) {
	got, err := BuildSurrogateKeyName("rc_sap_customer")
	assert.NoError(t, err)
	assert.Equal(t, "rc_sap_customer_key", got)
}

func TestResolveColumnNameConflict(t *testing.T) {
	assert.Equal(t, "loaded_at_src", ResolveColumnNameConflict("loaded_at", "rc_sap_customer_key"))
	assert.Equal(t, "rc_sap_customer_key_src", ResolveColumnNameConflict("rc_sap_customer_key", "rc_sap_customer_key"))
	assert.Equal(t, "customer_name", ResolveColumnNameConflict("customer_name", "rc_sap_customer_key"))
}
