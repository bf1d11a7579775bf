package naming

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateServingFriendlyNamesIgnoresOtherSchemas(t *testing.T) {
	findings := ValidateServingFriendlyNames(ServingFriendlyNamesInput{
		SchemaShortName: "bizcore", DatasetName: "bad\tname",
	})
	assert.Empty(t, findings)
}

func TestValidateServingFriendlyNamesAllowsFriendlyNames(t *testing.T) {
	findings := ValidateServingFriendlyNames(ServingFriendlyNamesInput{
		SchemaShortName: "serving", DatasetName: "Customer Orders",
		ColumnNames: []string{"Customer Name", "Order Date"},
	})
	assert.Empty(t, findings)
}

func TestValidateServingFriendlyNamesBlocksControlAndQuoteCharacters(t *testing.T) {
	findings := ValidateServingFriendlyNames(ServingFriendlyNamesInput{
		SchemaShortName: "serving", DatasetName: "Orders",
		ColumnNames: []string{"bad\tname", `quoted"name`, " leading space"},
	})
	assert.Len(t, findings, 3)
	for _, f := range findings {
		assert.True(t, f.Blocking)
	}
}

func TestValidateServingFriendlyNamesWarnsOnLongNames(t *testing.T) {
	long := make([]byte, 64)
	for i := range long {
		long[i] = 'a'
	}
	findings := ValidateServingFriendlyNames(ServingFriendlyNamesInput{
		SchemaShortName: "serving", DatasetName: "Orders",
		ColumnNames: []string{string(long)},
	})
	assert.Len(t, findings, 1)
	assert.False(t, findings[0].Blocking)
	assert.Contains(t, findings[0].Message, "longer than 63")
}

func TestValidateServingFriendlyNamesBlocksDuplicateAfterNormalization(t *testing.T) {
	findings := ValidateServingFriendlyNames(ServingFriendlyNamesInput{
		SchemaShortName: "serving", DatasetName: "Orders",
		ColumnNames: []string{"Customer  Name", "customer name"},
	})
	assert.Len(t, findings, 1)
	assert.True(t, findings[0].Blocking)
	assert.Contains(t, findings[0].Message, "duplicate serving column names")
}
