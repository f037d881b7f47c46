package staging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validFixture = `{
	"company": "NVO",
	"filing_type": "20-F",
	"year": 2024,
	"metadata": {"company_name": "Novo Nordisk", "filing_type": "20-F", "taxonomy": "ifrs"},
	"facts": [
		{"concept": "Revenue", "taxonomy": "ifrs", "unit_measure": "DKK", "period_type": "duration"}
	]
}`

func TestParseValidFixture(t *testing.T) {
	filing, err := Parse([]byte(validFixture))
	require.NoError(t, err)
	assert.Equal(t, "NVO", filing.Company)
	assert.Len(t, filing.Facts, 1)
	assert.Equal(t, "Revenue", filing.Facts[0].Concept)
}

func TestParseRejectsMissingRequiredField(t *testing.T) {
	missingMetadata := `{"company": "NVO", "filing_type": "20-F", "year": 2024, "facts": []}`
	_, err := Parse([]byte(missingMetadata))
	require.Error(t, err)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.NotEmpty(t, verr.Violations)
}

func TestParseRejectsInvalidPeriodType(t *testing.T) {
	bad := `{
		"company": "NVO", "filing_type": "20-F", "year": 2024,
		"metadata": {"company_name": "Novo Nordisk", "filing_type": "20-F"},
		"facts": [{"concept": "Revenue", "taxonomy": "ifrs", "unit_measure": "DKK", "period_type": "bogus"}]
	}`
	_, err := Parse([]byte(bad))
	require.Error(t, err)
}

func TestParseRejectsMalformedJSON(t *testing.T) {
	_, err := Parse([]byte(`{not json`))
	require.Error(t, err)
}
