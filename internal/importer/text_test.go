package importer_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/binder/internal/importer"
	"github.com/MrJamesThe3rd/binder/internal/inventory"
)

func TestParseLine(t *testing.T) {
	type testCase struct {
		name    string
		input   string
		want    importer.Line
		wantErr bool
	}

	tests := []testCase{
		{
			name:  "Full",
			input: "4x Lightning Bolt (M10) LP foil DE",
			want: importer.Line{
				Name: "Lightning Bolt", SetCode: "M10", Quantity: 4,
				Condition: inventory.ConditionLightlyPlayed, Foil: true, Language: "DE",
			},
		},
		{
			name:  "Defaults",
			input: "Counterspell (mh2)",
			want: importer.Line{
				Name: "Counterspell", SetCode: "MH2", Quantity: 1,
				Condition: inventory.ConditionNearMint, Language: "EN",
			},
		},
		{
			name:  "QuantityWithoutX",
			input: "12 Island (UNF)",
			want: importer.Line{
				Name: "Island", SetCode: "UNF", Quantity: 12,
				Condition: inventory.ConditionNearMint, Language: "EN",
			},
		},
		{
			name:  "NameWithComma",
			input: "1x Ragavan, Nimble Pilferer (MH2) nm",
			want: importer.Line{
				Name: "Ragavan, Nimble Pilferer", SetCode: "MH2", Quantity: 1,
				Condition: inventory.ConditionNearMint, Language: "EN",
			},
		},
		{name: "MissingSet", input: "4x Lightning Bolt", wantErr: true},
		{name: "ZeroQuantity", input: "0x Lightning Bolt (M10)", wantErr: true},
		{name: "UnknownToken", input: "1x Lightning Bolt (M10) shiny", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := importer.ParseLine(tt.input)
			assert.Equal(t, tt.input, got.Raw)

			if tt.wantErr {
				assert.ErrorIs(t, got.Err, importer.ErrMalformedLine)
				return
			}

			require.NoError(t, got.Err)

			tt.want.Raw = tt.input
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTextParser_Parse(t *testing.T) {
	input := strings.Join([]string{
		"# trade binder",
		"4x Lightning Bolt (M10)",
		"",
		"// sideboard",
		"2x Duress (M19) foil",
		"garbage",
	}, "\n")

	lines, err := importer.NewTextParser().Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, lines, 3)

	assert.Equal(t, 2, lines[0].Number)
	assert.Equal(t, "Lightning Bolt", lines[0].Name)
	assert.Equal(t, 5, lines[1].Number)
	assert.True(t, lines[1].Foil)
	assert.Equal(t, "garbage", lines[2].Raw)
	assert.Error(t, lines[2].Err)
}
