package ui

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/lendx/internal/models"
	"github.com/desertthunder/lendx/internal/registry"
	"github.com/desertthunder/lendx/internal/shared"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	PersonListView ViewState = iota
	LoanListView
)

// SaveFunc persists the registry's persons after a change that should survive the session.
type SaveFunc func([]*models.Person) error

// Options configures a [Model].
type Options struct {
	Currency string
	Sort     registry.SortKey
	Order    registry.SortOrder
	Filter   string
	Save     SaveFunc
	Logger   *log.Logger
}

// Model represents the TUI application state.
type Model struct {
	registry   *registry.Registry
	view       ViewState
	save       SaveFunc
	logger     *log.Logger
	currency   string
	sortKey    registry.SortKey
	order      registry.SortOrder
	filter     int
	selected   int
	width      int
	height     int
	personList list.Model
	loanList   list.Model
	status     string
	statusKind statusKind
	lastEvent  *registry.Event
	cancel     func()
	help       help.Model
	keys       keyMap
}

type statusKind int

const (
	statusInfo statusKind = iota
	statusWarn
	statusError
)

// NewModel creates a new TUI model bound to reg. The model subscribes to reg until [Model.Close] is called.
func NewModel(reg *registry.Registry, opts Options) *Model {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	order := opts.Order
	if !order.Valid() {
		order = registry.Asc
	}

	m := &Model{
		registry: reg,
		view:     PersonListView,
		save:     opts.Save,
		logger:   logger,
		currency: opts.Currency,
		sortKey:  registry.ParseSortKey(string(opts.Sort)),
		order:    order,
		filter:   filterIndex(opts.Filter),
		help:     help.New(),
		keys:     newKeyMap(),
	}

	m.personList = newList()
	m.loanList = newList()
	m.cancel = reg.Subscribe(m.handleEvent)
	m.rebuild()
	return m
}

func newList() list.Model {
	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()
	return l
}

func filterIndex(keyword string) int {
	for i, kw := range models.FilterKeywords {
		if kw == keyword {
			return i
		}
	}
	return 0
}

// Close cancels the registry subscription and unlocks the registry.
func (m *Model) Close() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.registry.SetMode(registry.Editable)
}

// Init sets the terminal title.
func (m *Model) Init() tea.Cmd {
	return tea.SetWindowTitle("lendx")
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.personList.SetSize(msg.Width-4, msg.Height-8)
		m.loanList.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case PersonListView:
			return m.handlePersonListKeys(msg)
		case LoanListView:
			return m.handleLoanListKeys(msg)
		}

	case Msg:
		switch msg.kind {
		case MsgSaved:
			if err, ok := msg.data.(error); ok && err != nil {
				m.logger.Error("failed to save ledger", "error", err)
				m.setStatus(statusError, fmt.Sprintf("Save failed: %v", err))
			} else {
				m.logger.Debug("ledger saved")
			}
		}
		return m, nil
	}

	return m.updateLists(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case PersonListView:
		return m.renderPersonList()
	case LoanListView:
		return m.renderLoanList()
	default:
		return ""
	}
}

func (m *Model) handlePersonListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.enter):
		m.openLoans(m.personList.Index())
		return m, nil
	case key.Matches(msg, m.keys.sort):
		return m, m.sortBy(m.sortKey.Next(), m.order)
	case key.Matches(msg, m.keys.order):
		return m, m.sortBy(m.sortKey, m.order.Toggle())
	case key.Matches(msg, m.keys.filter):
		m.cycleFilter()
		return m, nil
	case key.Matches(msg, m.keys.refresh):
		m.registry.Refresh()
		return m, nil
	}

	var cmd tea.Cmd
	m.personList, cmd = m.personList.Update(msg)
	return m, cmd
}

func (m *Model) handleLoanListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.closeLoans()
		return m, nil
	case key.Matches(msg, m.keys.sort):
		return m, m.sortBy(m.sortKey.Next(), m.order)
	case key.Matches(msg, m.keys.order):
		return m, m.sortBy(m.sortKey, m.order.Toggle())
	case key.Matches(msg, m.keys.filter):
		m.cycleFilter()
		return m, nil
	case key.Matches(msg, m.keys.refresh):
		m.registry.Refresh()
		return m, nil
	}

	var cmd tea.Cmd
	m.loanList, cmd = m.loanList.Update(msg)
	return m, cmd
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case PersonListView:
		m.personList, cmd = m.personList.Update(msg)
	case LoanListView:
		m.loanList, cmd = m.loanList.Update(msg)
	}
	return m, cmd
}

// openLoans shows the loans of the person at index and locks the registry while they are on screen.
func (m *Model) openLoans(index int) {
	if m.registry.View().At(index) == nil {
		return
	}
	m.selected = index
	m.registry.SetMode(registry.Locked)
	m.view = LoanListView
	m.loanList.Select(0)
	m.rebuildLoans()
	m.clearStatus()
}

func (m *Model) closeLoans() {
	m.registry.SetMode(registry.Editable)
	m.view = PersonListView
	m.clearStatus()
}

func (m *Model) sortBy(k registry.SortKey, order registry.SortOrder) tea.Cmd {
	if err := m.registry.Sort(k, order); err != nil {
		m.reportError(err)
		return nil
	}
	m.sortKey, m.order = k, order
	m.updateTitle()
	m.setStatus(statusInfo, fmt.Sprintf("Sorted by %s (%s)", k, order))
	return m.saveCmd()
}

func (m *Model) cycleFilter() {
	next := (m.filter + 1) % len(models.FilterKeywords)
	keyword := models.FilterKeywords[next]

	pred, err := models.ParsePredicate(keyword)
	if err != nil {
		m.reportError(err)
		return
	}
	if err := m.registry.Filter(registry.FilterAll, pred); err != nil {
		m.reportError(err)
		return
	}
	m.filter = next
	m.updateTitle()
	m.setStatus(statusInfo, fmt.Sprintf("Showing %s loans", keyword))
}

func (m *Model) saveCmd() tea.Cmd {
	if m.save == nil {
		return nil
	}
	persons := m.registry.Persons()
	save := m.save
	return func() tea.Msg {
		return savedMsg(save(persons))
	}
}

// handleEvent is the registry listener; it rebuilds the visible items from the registry view.
func (m *Model) handleEvent(e registry.Event) {
	m.logger.Debug("registry changed", "event", e.Kind)
	m.lastEvent = &e
	m.rebuild()
}

func (m *Model) rebuild() {
	view := m.registry.View()
	items := make([]list.Item, 0, view.Len())
	for _, p := range view.All() {
		items = append(items, personItem{person: p, currency: m.currency})
	}

	cursor := m.personList.Index()
	m.personList.SetItems(items)
	if len(items) > 0 {
		m.personList.Select(min(cursor, len(items)-1))
	}
	m.updateTitle()

	if m.view == LoanListView {
		m.rebuildLoans()
	}
}

func (m *Model) updateTitle() {
	m.personList.Title = fmt.Sprintf("Persons • sort %s %s • filter %s",
		m.sortKey, m.order, models.FilterKeywords[m.filter])
}

func (m *Model) rebuildLoans() {
	p := m.registry.View().At(m.selected)
	if p == nil {
		m.closeLoans()
		return
	}

	loans := p.Loans()
	all := loans.Loans()
	items := make([]list.Item, 0, loans.VisibleLen())
	for _, i := range loans.VisibleIndices() {
		items = append(items, loanItem{loan: all[i], index: i + 1, currency: m.currency})
	}
	m.loanList.SetItems(items)
	m.loanList.Title = fmt.Sprintf("Loans of %s • %d of %d shown • filter %s",
		p.Name, loans.VisibleLen(), loans.Len(), models.FilterKeywords[m.filter])
}

func (m *Model) reportError(err error) {
	if errors.Is(err, shared.ErrRegistryLocked) {
		m.setStatus(statusWarn, shared.LockedMessage)
		return
	}
	m.logger.Error("registry operation failed", "error", err)
	m.setStatus(statusError, err.Error())
}

func (m *Model) setStatus(kind statusKind, text string) {
	m.statusKind = kind
	m.status = text
}

func (m *Model) clearStatus() { m.setStatus(statusInfo, "") }

func (m *Model) renderStatus() string {
	switch {
	case m.status == "":
		return ""
	case m.statusKind == statusError:
		return styles.err.Render(m.status)
	case m.statusKind == statusWarn:
		return styles.warn.Render(m.status)
	default:
		return styles.ok.Render(m.status)
	}
}

func (m *Model) renderPersonList() string {
	if m.registry.Len() == 0 {
		title := styles.title.Render("No persons yet")
		hint := styles.help.Render("Add one with: lendx person add --name <name>")
		return fmt.Sprintf("%s\n%s\n\n%s", title, hint, m.help.ShortHelpView([]key.Binding{m.keys.quit}))
	}

	helpKeys := []key.Binding{m.keys.enter, m.keys.sort, m.keys.order, m.keys.filter, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n%s\n\n%s", m.personList.View(), m.renderStatus(), helpView)
}

func (m *Model) renderLoanList() string {
	p := m.registry.View().At(m.selected)
	if p == nil {
		return styles.err.Render("Person no longer exists\n\nPress esc to go back")
	}

	var body string
	if p.Loans().VisibleLen() == 0 {
		body = styles.title.Render(m.loanList.Title) + "\n" + styles.help.Render("No loans match the current filter")
	} else {
		body = m.loanList.View()
	}

	summary := fmt.Sprintf("Total owed: %s%s", m.currency, models.FormatMoney(p.TotalLoanOwed()))
	if months := p.MostOverdueMonths(); months < 0 {
		summary += styles.warn.Render(fmt.Sprintf("  (%d months overdue)", -months))
	}

	helpKeys := []key.Binding{m.keys.up, m.keys.down, m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n%s\n%s\n\n%s", body, summary, m.renderStatus(), helpView)
}
