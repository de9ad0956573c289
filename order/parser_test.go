package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTextSingleLine(t *testing.T) {
	got := ParseText("Молоко 2")
	require.Len(t, got, 1)
	assert.Equal(t, 2.0, got["молоко"])
}

func TestParseTextMultiWordName(t *testing.T) {
	got := ParseText("Хлеб белый 1.5")
	require.Len(t, got, 1)
	assert.Equal(t, 1.5, got["хлеб белый"])
}

func TestParseTextCommaDecimal(t *testing.T) {
	got := ParseText("Сметана 0,5")
	require.Len(t, got, 1)
	assert.Equal(t, 0.5, got["сметана"])
}

func TestParseTextMultiLineSkipsUnrecognized(t *testing.T) {
	text := "Молоко 2\n\nпривет как дела\nСыр 0.3\nМолоко 1"
	got := ParseText(text)

	require.Len(t, got, 2)
	assert.Equal(t, 3.0, got["молоко"], "repeated names sum up")
	assert.Equal(t, 0.3, got["сыр"])
}

func TestParseTextRejectsMalformedQuantities(t *testing.T) {
	cases := []struct {
		name string
		line string
	}{
		{"negative", "Молоко -2"},
		{"explicit plus", "Молоко +2"},
		{"scientific", "Молоко 1e3"},
		{"double separator", "Молоко 1.2.3"},
		{"trailing separator", "Молоко 1."},
		{"leading separator", "Молоко .5"},
		{"bare separator", "Молоко ,"},
		{"no quantity", "Молоко"},
		{"quantity only", "42"},
		{"unit suffix", "Молоко 2л"},
		{"unit after quantity", "Молоко 2 шт"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Empty(t, ParseText(tc.line))
		})
	}
}

func TestParseTextLowercasesAndTrims(t *testing.T) {
	got := ParseText("  СЫР Гауда   2  ")
	require.Len(t, got, 1)
	assert.Equal(t, 2.0, got["сыр гауда"])
}

func TestParseTextEmptyInput(t *testing.T) {
	assert.Empty(t, ParseText(""))
	assert.Empty(t, ParseText("\n\n  \n"))
}

func TestParseTextIsPure(t *testing.T) {
	text := "Молоко 2\nСыр 0.3"
	first := ParseText(text)
	second := ParseText(text)
	assert.Equal(t, first, second)
}
