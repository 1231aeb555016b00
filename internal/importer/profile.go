package importer

import "strings"

// Profile describes the column layout of a collection export. Optional
// columns may be empty or missing from the header.
type Profile struct {
	Name         string
	QuantityCol  string
	NameCol      string
	SetCol       string
	ConditionCol string
	LanguageCol  string
	FoilCol      string
	// isFoil interprets the foil column; nil means any non-empty value.
	isFoil func(string) bool
}

func (p Profile) requiredCols() []string {
	return []string{p.QuantityCol, p.NameCol, p.SetCol}
}

// profiles are tried in order against every row until one header matches.
var profiles = []Profile{
	{
		Name:         "tcgplayer",
		QuantityCol:  "Quantity",
		NameCol:      "Name",
		SetCol:       "Set Code",
		ConditionCol: "Condition",
		LanguageCol:  "Language",
		FoilCol:      "Printing",
		isFoil:       func(v string) bool { return strings.EqualFold(v, "foil") },
	},
	{
		Name:         "deckbox",
		QuantityCol:  "Count",
		NameCol:      "Name",
		SetCol:       "Edition Code",
		ConditionCol: "Condition",
		LanguageCol:  "Language",
		FoilCol:      "Foil",
	},
	{
		Name:         "binder",
		QuantityCol:  "Quantity",
		NameCol:      "Name",
		SetCol:       "Set",
		ConditionCol: "Condition",
		LanguageCol:  "Language",
		FoilCol:      "Foil",
		isFoil: func(v string) bool {
			switch strings.ToLower(v) {
			case "true", "yes", "1", "foil":
				return true
			}

			return false
		},
	},
}
