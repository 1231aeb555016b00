package importer_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/binder/internal/importer"
	"github.com/MrJamesThe3rd/binder/internal/inventory"
)

func TestCSVParser_Parse(t *testing.T) {
	type testCase struct {
		name    string
		input   string
		verify  func(t *testing.T, lines []importer.Line)
		wantErr error
	}

	tests := []testCase{
		{
			name: "TCGplayer",
			input: `Quantity,Name,Simple Name,Set,Set Code,Condition,Printing,Language
3,"Sheoldred, the Apocalypse",Sheoldred,Dominaria United,DMU,Near Mint Foil,Foil,English
1,Fatal Push,Fatal Push,Aether Revolt,AER,Lightly Played,Normal,Japanese
`,
			verify: func(t *testing.T, lines []importer.Line) {
				require.Len(t, lines, 2)

				assert.Equal(t, "Sheoldred, the Apocalypse", lines[0].Name)
				assert.Equal(t, "DMU", lines[0].SetCode)
				assert.Equal(t, 3, lines[0].Quantity)
				assert.Equal(t, inventory.ConditionNearMint, lines[0].Condition)
				assert.True(t, lines[0].Foil)
				assert.Equal(t, "EN", lines[0].Language)

				assert.Equal(t, inventory.ConditionLightlyPlayed, lines[1].Condition)
				assert.False(t, lines[1].Foil)
				assert.Equal(t, "JA", lines[1].Language)
				assert.Equal(t, 3, lines[1].Number)
			},
		},
		{
			name: "Deckbox",
			input: `Count,Tradelist Count,Name,Edition,Edition Code,Card Number,Condition,Language,Foil
2,0,Thoughtseize,Theros,THS,107,Near Mint,English,foil
1,0,Brainstorm,Ice Age,ice,61,Heavily Played,,
`,
			verify: func(t *testing.T, lines []importer.Line) {
				require.Len(t, lines, 2)

				assert.True(t, lines[0].Foil)
				assert.Equal(t, "ICE", lines[1].SetCode)
				assert.Equal(t, inventory.ConditionHeavilyPlayed, lines[1].Condition)
				assert.Equal(t, "EN", lines[1].Language)
			},
		},
		{
			name: "BinderSemicolonWithPreamble",
			input: `Binder export;2026-10-01

Quantity;Name;Set;Condition;Foil;Language
4;Llanowar Elves;M19;NM;false;EN
x;Broken Row;M19;NM;false;EN
;;;;;
1;Opt;XLN;played;true;FR
`,
			verify: func(t *testing.T, lines []importer.Line) {
				require.Len(t, lines, 3)

				assert.Equal(t, 4, lines[0].Quantity)
				assert.False(t, lines[0].Foil)

				assert.ErrorIs(t, lines[1].Err, importer.ErrMalformedLine)
				assert.Equal(t, "x;Broken Row;M19;NM;false;EN", lines[1].Raw)

				assert.Equal(t, inventory.ConditionModeratelyPlayed, lines[2].Condition)
				assert.True(t, lines[2].Foil)
				assert.Equal(t, "FR", lines[2].Language)
			},
		},
		{
			name: "Windows1252",
			input: "Quantity,Name,Set\n1,J\xf6tun Grunt,CSP\n",
			verify: func(t *testing.T, lines []importer.Line) {
				require.Len(t, lines, 1)
				assert.Equal(t, "Jötun Grunt", lines[0].Name)
			},
		},
		{
			name:    "UnknownLayout",
			input:   "Date,Description,Amount\n2026-01-01,Coffee,3.50\n",
			wantErr: importer.ErrUnknownLayout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines, err := importer.NewCSVParser().Parse(strings.NewReader(tt.input))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			tt.verify(t, lines)
		})
	}
}
