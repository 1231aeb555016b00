package inventory

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Condition grades follow the usual marketplace scale.
type Condition string

const (
	ConditionNearMint         Condition = "NM"
	ConditionLightlyPlayed    Condition = "LP"
	ConditionModeratelyPlayed Condition = "MP"
	ConditionHeavilyPlayed    Condition = "HP"
	ConditionDamaged          Condition = "DMG"
)

var conditionAliases = map[string]Condition{
	"nm":                ConditionNearMint,
	"near mint":         ConditionNearMint,
	"mint":              ConditionNearMint,
	"lp":                ConditionLightlyPlayed,
	"lightly played":    ConditionLightlyPlayed,
	"excellent":         ConditionLightlyPlayed,
	"mp":                ConditionModeratelyPlayed,
	"moderately played": ConditionModeratelyPlayed,
	"played":            ConditionModeratelyPlayed,
	"hp":                ConditionHeavilyPlayed,
	"heavily played":    ConditionHeavilyPlayed,
	"dmg":               ConditionDamaged,
	"damaged":           ConditionDamaged,
	"poor":              ConditionDamaged,
}

// ParseCondition accepts the short grade or a common long form in any case.
// An empty string means near mint.
func ParseCondition(s string) (Condition, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ConditionNearMint, nil
	}

	if c, ok := conditionAliases[s]; ok {
		return c, nil
	}

	return "", fmt.Errorf("unknown condition %q", s)
}

// OwnedCard is a user's stock of one catalog card variant.
type OwnedCard struct {
	ID        uuid.UUID
	CardID    uuid.UUID
	UserID    uuid.UUID
	Quantity  int
	Condition Condition
	Foil      bool
	Language  string
	SalePrice *int64 // cents; nil when not for sale
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Listing is the sellable view of an owned card.
type Listing struct {
	OwnedCardID uuid.UUID
	SellerID    uuid.UUID
	Price       int64
	Condition   Condition
}

// AddParams identifies a variant and the number of copies to add to it.
type AddParams struct {
	CardID    uuid.UUID
	UserID    uuid.UUID
	Quantity  int
	Condition Condition
	Foil      bool
	Language  string
}
