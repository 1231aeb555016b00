package main

import (
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/binder/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/binder/internal/catalog"
	catalogStore "github.com/MrJamesThe3rd/binder/internal/catalog/store"
	"github.com/MrJamesThe3rd/binder/internal/config"
	"github.com/MrJamesThe3rd/binder/internal/conversation"
	conversationStore "github.com/MrJamesThe3rd/binder/internal/conversation/store"
	"github.com/MrJamesThe3rd/binder/internal/database"
	"github.com/MrJamesThe3rd/binder/internal/importer"
	"github.com/MrJamesThe3rd/binder/internal/inventory"
	inventoryStore "github.com/MrJamesThe3rd/binder/internal/inventory/store"
	"github.com/MrJamesThe3rd/binder/internal/profile"
	profileStore "github.com/MrJamesThe3rd/binder/internal/profile/store"
	"github.com/MrJamesThe3rd/binder/internal/report"
	"github.com/MrJamesThe3rd/binder/internal/transaction"
	txStore "github.com/MrJamesThe3rd/binder/internal/transaction/store"
)

type model struct {
	user uuid.UUID

	txService           *transaction.Service
	conversationService *conversation.Service
	profileService      *profile.Service
	importService       *importer.Service
	reportService       *report.Service

	currentView View

	ordersView view.OrdersModel
	importView view.ImportModel
	salesView  view.SalesModel
}

type View int

const (
	ViewMenu   View = 0
	ViewOrders View = 1
	ViewImport View = 2
	ViewSales  View = 3
)

var menuStyle = lipgloss.NewStyle().Padding(2)

func initialModel() model {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	user, err := uuid.Parse(cfg.Console.UserID)
	if err != nil {
		slog.Error("BINDER_USER_ID must be a user uuid", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString(), database.Options{
		MaxOpenConns: cfg.DB.MaxOpenConns,
		MaxIdleConns: cfg.DB.MaxIdleConns,
		ConnLifetime: cfg.DB.ConnLifetime,
	})
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	// Lifecycle events are published by the API only.
	invSvc := inventory.NewService(inventoryStore.New(db))
	txSvc := transaction.NewService(txStore.New(db), invSvc, nil)
	convSvc := conversation.NewService(conversationStore.New(db), txSvc)
	profSvc := profile.NewService(profileStore.New(db), nil, 0)
	impSvc := importer.NewService(catalog.NewService(catalogStore.New(db)), invSvc, cfg.Import.Workers)
	repSvc := report.NewService(txSvc, profSvc)

	return model{
		user:                user,
		txService:           txSvc,
		conversationService: convSvc,
		profileService:      profSvc,
		importService:       impSvc,
		reportService:       repSvc,
		currentView:         ViewMenu,
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.currentView == ViewMenu {
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewOrders
				m.ordersView = view.NewOrdersModel(m.txService, m.conversationService, m.profileService, m.user)

				return m, m.ordersView.Init()
			case "2":
				m.currentView = ViewImport
				m.importView = view.NewImportModel(m.importService, m.user)

				return m, m.importView.Init()
			case "3":
				m.currentView = ViewSales
				m.salesView = view.NewSalesModel(m.reportService, m.user)

				return m, m.salesView.Init()
			}
		}

		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewOrders:
		var newModel tea.Model
		newModel, cmd = m.ordersView.Update(msg)
		m.ordersView = newModel.(view.OrdersModel)
	case ViewImport:
		var newModel tea.Model
		newModel, cmd = m.importView.Update(msg)
		m.importView = newModel.(view.ImportModel)
	case ViewSales:
		var newModel tea.Model
		newModel, cmd = m.salesView.Update(msg)
		m.salesView = newModel.(view.SalesModel)
	}

	return m, cmd
}

func (m model) View() string {
	var current view.View

	switch m.currentView {
	case ViewMenu:
		return menuStyle.Render(
			"Binder\n\n" +
				"1. Order Desk\n" +
				"2. Import Collection\n" +
				"3. Sales Report\n\n" +
				"q. Quit",
		)
	case ViewOrders:
		current = m.ordersView
	case ViewImport:
		current = m.importView
	case ViewSales:
		current = m.salesView
	default:
		return "Unknown View"
	}

	help := lipgloss.NewStyle().Faint(true).Render(current.ShortHelp())

	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().Bold(true).PaddingLeft(1).Render(current.Title()),
		current.View(),
		lipgloss.NewStyle().PaddingLeft(1).Render(help),
	)
}

func main() {
	p := tea.NewProgram(initialModel(), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
