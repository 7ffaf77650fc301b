package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTestType(t *testing.T) {
	got, ok := ParseTestType("HOME_TEST")
	assert.True(t, ok)
	assert.Equal(t, TestTypeHome, got)

	got, ok = ParseTestType("CLINIC_TEST")
	assert.True(t, ok)
	assert.Equal(t, TestTypeClinic, got)

	_, ok = ParseTestType("home_test")
	assert.False(t, ok)
}

func TestFAQList_ValueAndScan(t *testing.T) {
	empty, err := FAQList(nil).Value()
	require.NoError(t, err)
	assert.Nil(t, empty)

	var faqs FAQList
	require.NoError(t, faqs.Scan(`[{"question":"Fasting needed?","answer":"Yes, 10 hours"}]`))
	require.Len(t, faqs, 1)
	assert.Equal(t, "Fasting needed?", faqs[0].Question)

	require.NoError(t, faqs.Scan(nil))
	assert.Nil(t, faqs)

	assert.Error(t, faqs.Scan(42))
}

func TestLabTest_TableName(t *testing.T) {
	assert.Equal(t, "tests", LabTest{}.TableName())
}
