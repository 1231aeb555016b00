package view

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/binder/internal/conversation"
	"github.com/MrJamesThe3rd/binder/internal/money"
	"github.com/MrJamesThe3rd/binder/internal/transaction"
)

// Orders is the lifecycle surface the order desk drives.
type Orders interface {
	List(ctx context.Context, filter transaction.ListFilter) ([]*transaction.Transaction, error)
	Submit(ctx context.Context, buyerID, id uuid.UUID) (*transaction.Transaction, error)
	Accept(ctx context.Context, sellerID, id uuid.UUID) (*transaction.Transaction, error)
	Complete(ctx context.Context, buyerID, id uuid.UUID) (*transaction.Transaction, error)
	Cancel(ctx context.Context, buyerID, id uuid.UUID, reason string) (*transaction.Transaction, error)
	ClearCart(ctx context.Context, buyerID, id uuid.UUID) error
}

type Conversations interface {
	Messages(ctx context.Context, caller, transactionID uuid.UUID) ([]*conversation.Message, error)
	Post(ctx context.Context, caller, transactionID uuid.UUID, body string) (*conversation.Message, error)
}

type Names interface {
	DisplayNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)
}

type ordersState int

const (
	ordersStateBrowse ordersState = iota
	ordersStateCancel
	ordersStateClear
	ordersStateDetail
	ordersStatePost
)

var (
	roleFilters   = []transaction.Role{transaction.RoleNone, transaction.RoleBuyer, transaction.RoleSeller}
	roleLabels    = []string{"All", "Buying", "Selling"}
	statusFilters = [][]transaction.Status{
		transaction.ActiveStatuses,
		nil,
		{transaction.StatusCompleted},
		{transaction.StatusCancelled},
	}
	statusLabels = []string{"Active", "All", "Completed", "Cancelled"}
)

// OrdersModel is the order desk: the user's transactions with keys for
// every lifecycle action.
type OrdersModel struct {
	CommonModel
	orders        Orders
	conversations Conversations
	names         Names
	user          uuid.UUID

	state    ordersState
	table    table.Model
	txs      []*transaction.Transaction
	counter  map[uuid.UUID]string
	form     *huh.Form
	messages []*conversation.Message

	roleIdx   int
	statusIdx int

	loading bool
	err     error
	status  string
}

func NewOrdersModel(orders Orders, conversations Conversations, names Names, user uuid.UUID) OrdersModel {
	columns := []table.Column{
		{Title: "ID", Width: 9},
		{Title: "Role", Width: 7},
		{Title: "With", Width: 18},
		{Title: "Status", Width: 10},
		{Title: "Cards", Width: 6},
		{Title: "Total", Width: 10},
		{Title: "Updated", Width: 12},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return OrdersModel{
		orders:        orders,
		conversations: conversations,
		names:         names,
		user:          user,
		table:         t,
		loading:       true,
	}
}

func (m OrdersModel) Title() string { return "Order Desk" }

func (m OrdersModel) ShortHelp() string {
	switch m.state {
	case ordersStateCancel, ordersStateClear, ordersStatePost:
		return "Navigate form | Esc: cancel"
	case ordersStateDetail:
		return "m: message | Esc: back to list"
	}

	return "Esc: back | s: submit | a: accept | c: complete | x: cancel | d: clear | Enter: details | tab: role | f: status | r: refresh"
}

func (m OrdersModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m OrdersModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ordersLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.err = nil
		m.txs = msg.txs
		m.counter = msg.names
		m.refreshTable()

		return m, nil

	case actionDoneMsg:
		m.state = ordersStateBrowse
		m.form = nil
		m.table.Focus()

		if msg.err != nil {
			m.status = errorStyle.Render(fmt.Sprintf("%s failed: %v", msg.action, msg.err))
			return m, nil
		}

		m.status = successStyle.Render(fmt.Sprintf("%s %s", msg.action, ShortID(msg.id)))

		return m, m.loadCmd()

	case messagesLoadedMsg:
		if msg.err != nil {
			m.status = errorStyle.Render(fmt.Sprintf("loading messages: %v", msg.err))
			return m, nil
		}

		m.messages = msg.messages

		return m, nil

	case messagePostedMsg:
		m.state = ordersStateDetail
		m.form = nil

		if msg.err != nil {
			m.status = errorStyle.Render(fmt.Sprintf("message not sent: %v", msg.err))
			return m, nil
		}

		m.status = ""

		return m, m.loadMessagesCmd()

	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height
		m.table.SetHeight(max(msg.Height-10, 5))

		return m, nil
	}

	switch m.state {
	case ordersStateBrowse:
		return m.updateBrowse(msg)
	case ordersStateDetail:
		return m.updateDetail(msg)
	case ordersStateCancel, ordersStateClear, ordersStatePost:
		return m.updateForm(msg)
	}

	return m, nil
}

func (m OrdersModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)

		return m, cmd
	}

	tx := m.current()

	switch keyMsg.String() {
	case "esc":
		return m, Back
	case "r":
		m.loading = true
		return m, m.loadCmd()
	case "tab":
		m.roleIdx = (m.roleIdx + 1) % len(roleFilters)
		return m, m.loadCmd()
	case "f":
		m.statusIdx = (m.statusIdx + 1) % len(statusFilters)
		return m, m.loadCmd()
	}

	if tx == nil {
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)

		return m, cmd
	}

	switch keyMsg.String() {
	case "s":
		return m, m.actionCmd("submitted", tx.ID, m.orders.Submit)
	case "a":
		return m, m.actionCmd("accepted", tx.ID, m.orders.Accept)
	case "c":
		return m, m.actionCmd("completed", tx.ID, m.orders.Complete)
	case "x":
		m.form = cancelForm()
		m.state = ordersStateCancel
		m.table.Blur()

		return m, m.form.Init()
	case "d":
		m.form = confirmForm(fmt.Sprintf("Clear cart %s and release its cards?", ShortID(tx.ID)))
		m.state = ordersStateClear
		m.table.Blur()

		return m, m.form.Init()
	case "enter":
		m.state = ordersStateDetail
		m.messages = nil
		m.status = ""

		return m, m.loadMessagesCmd()
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m OrdersModel) updateDetail(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "esc":
		m.state = ordersStateBrowse
		return m, nil
	case "m":
		m.form = messageForm()
		m.state = ordersStatePost

		return m, m.form.Init()
	}

	return m, nil
}

func (m OrdersModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		if m.state == ordersStatePost {
			m.state = ordersStateDetail
		} else {
			m.state = ordersStateBrowse
			m.table.Focus()
		}

		m.form = nil

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	tx := m.current()
	if tx == nil {
		m.state = ordersStateBrowse
		m.form = nil

		return m, nil
	}

	switch m.state {
	case ordersStateCancel:
		if !m.form.GetBool("confirm") {
			return m.abandonForm()
		}

		reason := m.form.GetString("reason")

		return m, m.actionCmd("cancelled", tx.ID, func(ctx context.Context, caller, id uuid.UUID) (*transaction.Transaction, error) {
			return m.orders.Cancel(ctx, caller, id, reason)
		})
	case ordersStateClear:
		if !m.form.GetBool("confirm") {
			return m.abandonForm()
		}

		return m, m.actionCmd("cleared", tx.ID, func(ctx context.Context, caller, id uuid.UUID) (*transaction.Transaction, error) {
			return nil, m.orders.ClearCart(ctx, caller, id)
		})
	case ordersStatePost:
		return m, m.postCmd(tx.ID, m.form.GetString("body"))
	}

	return m, nil
}

func (m OrdersModel) abandonForm() (tea.Model, tea.Cmd) {
	m.state = ordersStateBrowse
	m.form = nil
	m.table.Focus()

	return m, nil
}

func cancelForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Key("reason").
				Title("Cancellation reason").
				CharLimit(500).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("a reason is required")
					}

					return nil
				}),
			huh.NewConfirm().
				Key("confirm").
				Title("Cancel this transaction?").
				Affirmative("Yes").
				Negative("No"),
		),
	).WithWidth(45).WithShowHelp(false)
}

func confirmForm(title string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Key("confirm").
				Title(title).
				Affirmative("Yes").
				Negative("No"),
		),
	).WithWidth(45).WithShowHelp(false)
}

func messageForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Key("body").
				Title("Message").
				CharLimit(conversation.MaxMessageLength),
		),
	).WithWidth(45).WithShowHelp(false)
}

func (m OrdersModel) current() *transaction.Transaction {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.txs) {
		return nil
	}

	return m.txs[idx]
}

func (m OrdersModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading transactions...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	header := fmt.Sprintf(
		"Filter: [tab] Role: %s | [f] Status: %s",
		accentStyle.Render(roleLabels[m.roleIdx]),
		accentStyle.Render(statusLabels[m.statusIdx]),
	)

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableView,
	)

	switch m.state {
	case ordersStateCancel, ordersStateClear:
		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panelStyle.Width(48).Render(m.form.View()))
	case ordersStateDetail, ordersStatePost:
		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panelStyle.Width(52).Render(m.detailView()))
	}

	if m.status != "" {
		content = m.status + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m OrdersModel) detailView() string {
	tx := m.current()
	if tx == nil {
		return ""
	}

	var sb strings.Builder

	fmt.Fprintf(&sb, "Transaction %s [%s]\n\n", ShortID(tx.ID), tx.Status)

	for _, it := range tx.Items {
		fmt.Fprintf(&sb, "  %dx %s  %s  %s\n", it.Quantity, ShortID(it.UserCardID), it.Condition, FormatAmount(it.AgreedPrice))
	}

	if tx.CancellationReason != nil {
		fmt.Fprintf(&sb, "\nCancelled: %s\n", *tx.CancellationReason)
	}

	sb.WriteString("\nMessages\n")

	if len(m.messages) == 0 {
		sb.WriteString(faintStyle.Render("  none yet") + "\n")
	}

	for _, msg := range m.messages {
		from := "system"

		if msg.SenderID != nil {
			from = m.counter[*msg.SenderID]
			if *msg.SenderID == m.user {
				from = "you"
			}
		}

		fmt.Fprintf(&sb, "  %s %s: %s\n", faintStyle.Render(msg.CreatedAt.Format("01-02 15:04")), from, msg.Body)
	}

	if m.state == ordersStatePost && m.form != nil {
		sb.WriteString("\n" + m.form.View())
	}

	return sb.String()
}

func (m *OrdersModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.txs))

	for _, tx := range m.txs {
		role := tx.RoleOf(m.user)

		other := tx.SellerID
		if role == transaction.RoleSeller {
			other = tx.BuyerID
		}

		cards := 0

		lines := make([]money.Line, len(tx.Items))
		for i, it := range tx.Items {
			cards += it.Quantity
			lines[i] = money.Line{Cents: it.AgreedPrice, Quantity: it.Quantity}
		}

		total := money.Sum(lines...)
		if tx.TotalAmount != nil {
			total = *tx.TotalAmount
		}

		rows = append(rows, table.Row{
			ShortID(tx.ID),
			string(role),
			m.counter[other],
			string(tx.Status),
			strconv.Itoa(cards),
			FormatAmount(total),
			FormatDate(tx.UpdatedAt),
		})
	}

	m.table.SetRows(rows)
}

// Messages

type ordersLoadedMsg struct {
	txs   []*transaction.Transaction
	names map[uuid.UUID]string
	err   error
}

type actionDoneMsg struct {
	action string
	id     uuid.UUID
	err    error
}

type messagesLoadedMsg struct {
	messages []*conversation.Message
	err      error
}

type messagePostedMsg struct {
	err error
}

func (m OrdersModel) loadCmd() tea.Cmd {
	filter := transaction.ListFilter{
		UserID:   m.user,
		Role:     roleFilters[m.roleIdx],
		Statuses: statusFilters[m.statusIdx],
	}

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		txs, err := m.orders.List(ctx, filter)
		if err != nil {
			return ordersLoadedMsg{err: err}
		}

		ids := make([]uuid.UUID, 0, 2*len(txs))
		for _, tx := range txs {
			ids = append(ids, tx.BuyerID, tx.SellerID)
		}

		names, err := m.names.DisplayNames(ctx, ids)

		return ordersLoadedMsg{txs: txs, names: names, err: err}
	}
}

type actionFunc func(ctx context.Context, caller, id uuid.UUID) (*transaction.Transaction, error)

func (m OrdersModel) actionCmd(action string, id uuid.UUID, fn actionFunc) tea.Cmd {
	user := m.user

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		_, err := fn(ctx, user, id)

		return actionDoneMsg{action: action, id: id, err: err}
	}
}

func (m OrdersModel) loadMessagesCmd() tea.Cmd {
	tx := m.current()
	if tx == nil {
		return nil
	}

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		msgs, err := m.conversations.Messages(ctx, m.user, tx.ID)

		return messagesLoadedMsg{messages: msgs, err: err}
	}
}

func (m OrdersModel) postCmd(id uuid.UUID, body string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		_, err := m.conversations.Post(ctx, m.user, id, body)

		return messagePostedMsg{err: err}
	}
}
