package tui

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/izharus/re-backup/internal/mirror"
)

// ReviewAction represents the outcome of a plan review.
type ReviewAction int

const (
	// ReviewActionNone means the user quit without applying anything.
	ReviewActionNone ReviewAction = iota
	// ReviewActionApply means the user confirmed the marked items.
	ReviewActionApply
)

// PlanItem is one reviewable operation from a plan.
type PlanItem struct {
	Name string
	Op   mirror.Op
	Size int64 // content size for copies, -1 when unknown
}

// ReviewResult carries the confirmed selection out of the TUI.
type ReviewResult struct {
	Action ReviewAction
	Items  []PlanItem
}

// planListKeyMap defines the key bindings for the plan review list.
type planListKeyMap struct {
	Up        key.Binding
	Down      key.Binding
	Toggle    key.Binding
	ToggleAll key.Binding
	Confirm   key.Binding
	Filter    key.Binding
	ClearFlt  key.Binding
	Help      key.Binding
	Quit      key.Binding
}

func defaultPlanListKeyMap() planListKeyMap {
	return planListKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" ", "tab"),
			key.WithHelp("space/tab", "toggle"),
		),
		ToggleAll: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "toggle all"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "apply marked"),
		),
		Filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "filter"),
		),
		ClearFlt: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "clear filter"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// PlanListModel is the Bubble Tea model for interactive plan review.
type PlanListModel struct {
	table        table.Model
	items        []PlanItem
	filtered     []PlanItem
	marked       map[string]bool // map of item key to marked state
	keys         planListKeyMap
	result       ReviewResult
	source       string
	dest         string
	filter       string
	filtering    bool
	showHelp     bool
	confirmMode  bool
	width        int
	height       int
	quitting     bool
	columnWidths planListColumnWidths
}

// Styles for the plan review TUI.
var planListStyles = struct {
	Title       lipgloss.Style
	Subtitle    lipgloss.Style
	Help        lipgloss.Style
	Filter      lipgloss.Style
	FilterInput lipgloss.Style
	Confirm     lipgloss.Style
	Status      lipgloss.Style
	Checkbox    lipgloss.Style
	DetailBox   lipgloss.Style
	DetailTitle lipgloss.Style
}{
	Title:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6")).Padding(0, 1),
	Subtitle:    lipgloss.NewStyle().Foreground(lipgloss.Color("4")).Padding(0, 1),
	Help:        lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	Filter:      lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
	FilterInput: lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true),
	Confirm:     lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true).Padding(1, 2),
	Status:      lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Padding(0, 1),
	Checkbox:    lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
	DetailBox:   lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1),
	DetailTitle: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("3")),
}

const (
	planListCheckboxWidth = 3
	planListActionWidth   = 8
	planListNameWidth     = 32
	planListSizeWidth     = 10
	planListColumnPadding = 2
	planListColumnCount   = 4
	planListDetailLines   = 2
	planListDetailGap     = 1
	planListDetailHeight  = planListDetailLines + 1 + 2 // title + content + border
)

type planListColumnWidths struct {
	action int
	name   int
	size   int
}

func planListColumns(totalWidth int, items []PlanItem) ([]table.Column, planListColumnWidths) {
	widths := planListColumnWidths{
		action: planListActionWidth,
		name:   planListNameWidth,
		size:   planListSizeWidth,
	}

	if totalWidth > 0 {
		baseTotal := planListCheckboxWidth + widths.action + widths.name + widths.size +
			(planListColumnPadding * planListColumnCount)
		extra := totalWidth - baseTotal
		if extra > 0 {
			maxNameWidth := widths.name
			for _, item := range items {
				if w := runewidth.StringWidth(item.Name); w > maxNameWidth {
					maxNameWidth = w
				}
			}
			widths.name += min(maxNameWidth-widths.name, extra)
		}
	}

	columns := []table.Column{
		{Title: " ", Width: planListCheckboxWidth}, // Checkbox column
		{Title: "Action", Width: widths.action},
		{Title: "Name", Width: widths.name},
		{Title: "Size", Width: widths.size},
	}

	return columns, widths
}

// planItemKey creates a unique key for an item (operation + name).
func planItemKey(item PlanItem) string {
	return string(item.Op) + ":" + item.Name
}

// NewPlanListModel creates a plan review model. Every item starts
// marked; review is opt-out.
func NewPlanListModel(items []PlanItem, source, dest string) PlanListModel {
	sorted := make([]PlanItem, len(items))
	copy(sorted, items)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Op != sorted[j].Op {
			return sorted[i].Op == mirror.OpCopy
		}
		return sorted[i].Name < sorted[j].Name
	})

	marked := make(map[string]bool, len(sorted))
	for _, item := range sorted {
		marked[planItemKey(item)] = true
	}

	columns, columnWidths := planListColumns(0, sorted)

	m := PlanListModel{
		items:        sorted,
		filtered:     sorted,
		marked:       marked,
		keys:         defaultPlanListKeyMap(),
		source:       source,
		dest:         dest,
		columnWidths: columnWidths,
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(m.itemsToRows(sorted)),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("24")).
		Bold(false)
	t.SetStyles(s)

	m.table = t
	return m
}

func (m PlanListModel) itemsToRows(items []PlanItem) []table.Row {
	titleCaser := cases.Title(language.English)

	rows := make([]table.Row, len(items))
	for i, item := range items {
		checkbox := "[ ]"
		if m.marked[planItemKey(item)] {
			checkbox = "[x]"
		}

		size := "-"
		if item.Op == mirror.OpCopy && item.Size >= 0 {
			size = humanize.Bytes(uint64(item.Size)) // #nosec G115 - file sizes are non-negative
		}

		rows[i] = table.Row{
			checkbox,
			titleCaser.String(string(item.Op)),
			truncateText(item.Name, m.columnWidths.name),
			size,
		}
	}
	return rows
}

func (m *PlanListModel) updateColumns(totalWidth int) {
	columns, widths := planListColumns(totalWidth, m.items)
	m.columnWidths = widths
	m.table.SetColumns(columns)
}

func (m PlanListModel) detailPanelWidth() int {
	if m.width > 0 {
		return m.width
	}
	return planListCheckboxWidth + m.columnWidths.action + m.columnWidths.name + m.columnWidths.size +
		(planListColumnPadding * planListColumnCount)
}

func (m PlanListModel) renderDetailPanel() string {
	width := m.detailPanelWidth()
	contentWidth := max(width-4, 10)

	item := m.currentItem()
	var detail string
	switch {
	case item.Name == "":
		detail = "Nothing to review."
	case item.Op == mirror.OpCopy:
		detail = fmt.Sprintf("copy %s to %s", filepath.Join(m.source, item.Name), filepath.Join(m.dest, item.Name))
	default:
		detail = fmt.Sprintf("delete %s", filepath.Join(m.dest, item.Name))
	}

	lines := wrapText(detail, contentWidth, planListDetailLines)
	lines = padLines(lines, planListDetailLines)

	header := planListStyles.DetailTitle.Render("Highlighted operation")
	content := append([]string{header}, lines...)

	return planListStyles.DetailBox.Width(width).Render(strings.Join(content, "\n"))
}

// Init implements tea.Model.
func (m PlanListModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m PlanListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		// Reserve space for title, subtitle, status, help, detail
		newHeight := max(msg.Height-9-planListDetailHeight-planListDetailGap, 5)
		m.table.SetHeight(newHeight)
		m.updateColumns(msg.Width)
		m.table.SetRows(m.itemsToRows(m.filtered))

	case tea.KeyMsg:
		if m.confirmMode {
			switch msg.String() {
			case "y", "Y":
				m.result = ReviewResult{
					Action: ReviewActionApply,
					Items:  m.markedItems(),
				}
				m.quitting = true
				return m, tea.Quit
			case "n", "N", "esc":
				m.confirmMode = false
				return m, nil
			}
			return m, nil
		}

		if m.filtering {
			switch msg.String() {
			case "enter":
				m.filtering = false
				return m, nil
			case "esc":
				m.filter = ""
				m.filtering = false
				m.applyFilter()
				return m, nil
			case "backspace":
				if len(m.filter) > 0 {
					m.filter = m.filter[:len(m.filter)-1]
					m.applyFilter()
				}
				return m, nil
			default:
				if len(msg.String()) == 1 {
					m.filter += msg.String()
					m.applyFilter()
				}
				return m, nil
			}
		}

		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Help):
			m.showHelp = !m.showHelp
			return m, nil

		case key.Matches(msg, m.keys.Filter):
			m.filtering = true
			return m, nil

		case key.Matches(msg, m.keys.ClearFlt):
			m.filter = ""
			m.applyFilter()
			return m, nil

		case key.Matches(msg, m.keys.Toggle):
			if len(m.filtered) > 0 {
				item := m.currentItem()
				m.marked[planItemKey(item)] = !m.marked[planItemKey(item)]
				m.table.SetRows(m.itemsToRows(m.filtered))
			}
			return m, nil

		case key.Matches(msg, m.keys.ToggleAll):
			markedCount := 0
			for _, item := range m.filtered {
				if m.marked[planItemKey(item)] {
					markedCount++
				}
			}
			markAll := markedCount < len(m.filtered)/2+1
			for _, item := range m.filtered {
				m.marked[planItemKey(item)] = markAll
			}
			m.table.SetRows(m.itemsToRows(m.filtered))
			return m, nil

		case key.Matches(msg, m.keys.Confirm):
			if len(m.markedItems()) > 0 {
				m.confirmMode = true
			}
			return m, nil
		}
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *PlanListModel) applyFilter() {
	if m.filter == "" {
		m.filtered = m.items
	} else {
		var filtered []PlanItem
		lowerFilter := strings.ToLower(m.filter)
		for _, item := range m.items {
			if strings.Contains(strings.ToLower(item.Name), lowerFilter) ||
				strings.Contains(string(item.Op), lowerFilter) {
				filtered = append(filtered, item)
			}
		}
		m.filtered = filtered
	}
	m.table.SetRows(m.itemsToRows(m.filtered))
}

func (m PlanListModel) currentItem() PlanItem {
	cursor := m.table.Cursor()
	if cursor >= 0 && cursor < len(m.filtered) {
		return m.filtered[cursor]
	}
	return PlanItem{}
}

func (m PlanListModel) markedItems() []PlanItem {
	var items []PlanItem
	for _, item := range m.items {
		if m.marked[planItemKey(item)] {
			items = append(items, item)
		}
	}
	return items
}

// View implements tea.Model.
func (m PlanListModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(planListStyles.Title.Render("Review Plan"))
	b.WriteString("\n")
	b.WriteString(planListStyles.Subtitle.Render(fmt.Sprintf("%s -> %s", m.source, m.dest)))
	b.WriteString("\n\n")

	if m.filter != "" || m.filtering {
		filterStr := planListStyles.Filter.Render("Filter: ")
		filterVal := planListStyles.FilterInput.Render(m.filter)
		if m.filtering {
			filterVal += "█"
		}
		b.WriteString(filterStr + filterVal + "\n\n")
	}

	if m.confirmMode {
		items := m.markedItems()
		copies, deletes := 0, 0
		for _, item := range items {
			if item.Op == mirror.OpCopy {
				copies++
			} else {
				deletes++
			}
		}
		b.WriteString(m.table.View())
		b.WriteString("\n\n")
		confirmMsg := fmt.Sprintf("Apply %d operation(s) (%d copies, %d deletes)? (y/n)", len(items), copies, deletes)
		b.WriteString(planListStyles.Confirm.Render(confirmMsg))
		return b.String()
	}

	b.WriteString(m.table.View())
	b.WriteString("\n")

	b.WriteString(m.renderDetailPanel())
	b.WriteString("\n")

	markedCount := len(m.markedItems())
	status := fmt.Sprintf("%d of %d operation(s) marked", markedCount, len(m.items))
	if m.filter != "" {
		status = fmt.Sprintf("%d marked, %d of %d shown (filtered)", markedCount, len(m.filtered), len(m.items))
	}
	b.WriteString(planListStyles.Status.Render(status))
	b.WriteString("\n")

	if m.showHelp {
		b.WriteString("\n")
		b.WriteString(m.renderFullHelp())
	} else {
		b.WriteString(m.renderShortHelp())
	}

	return b.String()
}

func (m PlanListModel) renderShortHelp() string {
	keys := []string{
		"↑/↓ navigate",
		"space mark/unmark",
		"a toggle all",
		"enter apply",
		"/ filter",
		"? help",
		"q quit",
	}
	return planListStyles.Help.Render(strings.Join(keys, " • "))
}

func (m PlanListModel) renderFullHelp() string {
	help := `Navigation:
  ↑/k      Move up
  ↓/j      Move down
  g/Home   Go to top
  G/End    Go to bottom

Selection:
  Space/Tab  Toggle the highlighted operation
  a          Toggle all shown operations

Actions:
  Enter    Confirm and apply marked operations

Filter:
  /        Start filtering (by name or action)
  Esc      Clear filter
  Enter    Finish filtering

General:
  ?        Toggle full help
  q        Quit without applying`
	return planListStyles.Help.Render(help)
}

// Result returns the outcome of the user interaction.
func (m PlanListModel) Result() ReviewResult {
	return m.result
}

// RunPlanReview runs the interactive review over plan items and returns
// the confirmed selection. An empty plan returns immediately.
func RunPlanReview(items []PlanItem, source, dest string) (ReviewResult, error) {
	if len(items) == 0 {
		return ReviewResult{}, nil
	}

	mdl := NewPlanListModel(items, source, dest)
	finalModel, err := Run(mdl, tea.WithAltScreen())
	if err != nil {
		return ReviewResult{}, err
	}

	if m, ok := finalModel.(PlanListModel); ok {
		return m.Result(), nil
	}

	return ReviewResult{}, nil
}
