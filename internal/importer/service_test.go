package importer_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/binder/internal/catalog"
	"github.com/MrJamesThe3rd/binder/internal/importer"
	"github.com/MrJamesThe3rd/binder/internal/inventory"
)

func TestService_ImportLines(t *testing.T) {
	userID := uuid.New()
	bolt := &catalog.Card{ID: uuid.New(), Name: "Lightning Bolt", SetCode: "M10"}

	type testCase struct {
		name           string
		lines          []string
		setupMock      func(cat *importer.MockCatalog, inv *importer.MockInventory)
		wantSuccessful int
		wantFailed     int
		wantErrors     []string
	}

	tests := []testCase{
		{
			name:  "AllSucceed",
			lines: []string{"4x Lightning Bolt (M10) foil"},
			setupMock: func(cat *importer.MockCatalog, inv *importer.MockInventory) {
				cat.EXPECT().Resolve(gomock.Any(), "Lightning Bolt", "M10").Return(bolt, nil)
				inv.EXPECT().AddCopies(gomock.Any(), inventory.AddParams{
					CardID:    bolt.ID,
					UserID:    userID,
					Quantity:  4,
					Condition: inventory.ConditionNearMint,
					Foil:      true,
					Language:  "EN",
				}).Return(&inventory.OwnedCard{}, true, nil)
			},
			wantSuccessful: 1,
			wantErrors:     []string{""},
		},
		{
			name: "PartialFailure",
			lines: []string{
				"4x Lightning Bolt (M10)",
				"1x Black Lotus (XYZ)",
				"not a card line",
				"2x Lightning Bolt (M10) LP",
			},
			setupMock: func(cat *importer.MockCatalog, inv *importer.MockInventory) {
				cat.EXPECT().Resolve(gomock.Any(), "Lightning Bolt", "M10").Return(bolt, nil).Times(2)
				cat.EXPECT().Resolve(gomock.Any(), "Black Lotus", "XYZ").Return(nil, catalog.ErrCardNotFound)
				inv.EXPECT().AddCopies(gomock.Any(), gomock.Any()).Return(&inventory.OwnedCard{}, false, nil)
				inv.EXPECT().AddCopies(gomock.Any(), gomock.Any()).Return(nil, false, errors.New("db error"))
			},
			wantSuccessful: 1,
			wantFailed:     3,
		},
		{
			name:  "Empty",
			lines: nil,
			setupMock: func(*importer.MockCatalog, *importer.MockInventory) {
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			cat := importer.NewMockCatalog(ctrl)
			inv := importer.NewMockInventory(ctrl)
			tt.setupMock(cat, inv)

			svc := importer.NewService(cat, inv, 3)

			summary, err := svc.ImportLines(context.Background(), userID, importer.ParseLines(tt.lines))
			require.NoError(t, err)

			assert.Equal(t, tt.wantSuccessful, summary.Successful)
			assert.Equal(t, tt.wantFailed, summary.Failed)
			require.Len(t, summary.Log, len(tt.lines))

			for i, entry := range summary.Log {
				assert.Equal(t, tt.lines[i], entry.Line)
			}

			if tt.wantErrors != nil {
				for i, want := range tt.wantErrors {
					assert.Equal(t, want, summary.Log[i].Error)
				}
			}
		})
	}
}

func TestService_ImportLines_ErrorMessages(t *testing.T) {
	ctrl := gomock.NewController(t)
	cat := importer.NewMockCatalog(ctrl)
	inv := importer.NewMockInventory(ctrl)

	cat.EXPECT().Resolve(gomock.Any(), "Black Lotus", "LEA").Return(nil, catalog.ErrCardNotFound)

	svc := importer.NewService(cat, inv, 1)

	summary, err := svc.ImportLines(context.Background(), uuid.New(), importer.ParseLines([]string{
		"1x Black Lotus (LEA)",
		"Black Lotus",
	}))
	require.NoError(t, err)
	require.Len(t, summary.Log, 2)

	assert.Equal(t, `card "Black Lotus" from set LEA not found`, summary.Log[0].Error)
	assert.Contains(t, summary.Log[1].Error, "malformed line")
}

func TestService_Parse(t *testing.T) {
	svc := importer.NewService(nil, nil, 1)

	csvLines, err := svc.Parse(importer.FormatAuto, strings.NewReader("Quantity,Name,Set\n2,Opt,XLN\n"))
	require.NoError(t, err)
	require.Len(t, csvLines, 1)
	assert.Equal(t, "Opt", csvLines[0].Name)

	textLines, err := svc.Parse(importer.FormatAuto, strings.NewReader("2x Opt (XLN)\n"))
	require.NoError(t, err)
	require.Len(t, textLines, 1)
	assert.Equal(t, 2, textLines[0].Quantity)

	_, err = svc.Parse(importer.FormatCSV, strings.NewReader("2x Opt (XLN)\n"))
	assert.ErrorIs(t, err, importer.ErrUnknownLayout)

	_, err = svc.Parse("xml", strings.NewReader(""))
	assert.Error(t, err)
}

// upsertInventory adds quantities atomically per variant, like the
// ON CONFLICT upsert in the store.
type upsertInventory struct {
	mu    sync.Mutex
	stock map[inventory.AddParams]int
}

func (u *upsertInventory) AddCopies(_ context.Context, p inventory.AddParams) (*inventory.OwnedCard, bool, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	qty := p.Quantity
	p.Quantity = 0

	_, exists := u.stock[p]
	u.stock[p] += qty

	return &inventory.OwnedCard{CardID: p.CardID, UserID: p.UserID, Quantity: u.stock[p]}, !exists, nil
}

type staticCatalog map[string]*catalog.Card

func (c staticCatalog) Resolve(_ context.Context, name, setCode string) (*catalog.Card, error) {
	card, ok := c[strings.ToLower(name+"|"+setCode)]
	if !ok {
		return nil, catalog.ErrCardNotFound
	}

	return card, nil
}

func TestService_ConcurrentImportsAccumulate(t *testing.T) {
	userID := uuid.New()
	card := &catalog.Card{ID: uuid.New(), Name: "Opt", SetCode: "XLN"}
	inv := &upsertInventory{stock: map[inventory.AddParams]int{}}
	svc := importer.NewService(staticCatalog{"opt|xln": card}, inv, 4)

	batch := importer.ParseLines([]string{"3x Opt (XLN)", "1x Opt (XLN)", "2x Opt (XLN) foil"})

	var wg sync.WaitGroup

	for i := 0; i < 2; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			summary, err := svc.ImportLines(context.Background(), userID, batch)
			assert.NoError(t, err)
			assert.Equal(t, 3, summary.Successful)
		}()
	}

	wg.Wait()

	key := inventory.AddParams{CardID: card.ID, UserID: userID, Condition: inventory.ConditionNearMint, Language: "EN"}
	assert.Equal(t, 8, inv.stock[key])

	key.Foil = true
	assert.Equal(t, 4, inv.stock[key])
}
