// Package tui provides the Bubble Tea substitution aid.
package tui

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/cryptology/internal/alphabet"
	"github.com/verte-zerg/cryptology/internal/reference"
	"github.com/verte-zerg/cryptology/internal/stats"
	"github.com/verte-zerg/cryptology/internal/substitution"
)

const (
	noPending  = -1
	mapHeight  = 2
	tableGap   = 2
	minTextCol = 10
)

// Model implements the Bubble Tea substitution UI.
type Model struct {
	ciphertext string
	dist       stats.Distribution
	ranked     substitution.Map
	mapping    substitution.Map
	pinned     [alphabet.Size]bool
	pending    int

	width  int
	height int

	table    table.Model
	viewport viewport.Model

	saved bool
}

var (
	textStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	guessStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	pinnedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F")).Underline(true)
	mappingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	footerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

// NewModel constructs a substitution UI over ciphertext. The initial mapping
// pairs ciphertext letters with reference letters by frequency rank.
func NewModel(ciphertext string, uni *reference.UnigramTable) *Model {
	dist := stats.Analyze(ciphertext)
	ranked := substitution.FromDistribution(dist, uni)
	m := &Model{
		ciphertext: ciphertext,
		dist:       dist,
		ranked:     ranked,
		mapping:    ranked,
		pending:    noPending,
		viewport:   viewport.New(0, 0),
	}
	m.table = table.New(
		table.WithColumns(frequencyColumns()),
		table.WithRows(m.frequencyRows()),
		table.WithHeight(alphabet.Size),
	)
	m.table.SetStyles(frequencyTableStyles())
	m.refresh()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			return m, tea.Quit
		case tea.KeyCtrlS, tea.KeyEnter:
			m.saved = true
			return m, tea.Quit
		case tea.KeyCtrlR:
			m.reset()
			return m, nil
		case tea.KeyEsc:
			m.pending = noPending
			m.refresh()
			return m, nil
		case tea.KeyUp, tea.KeyDown, tea.KeyPgUp, tea.KeyPgDown:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		case tea.KeyRunes:
			m.handleRunes(msg.Runes)
			return m, nil
		default:
			return m, nil
		}
	default:
		return m, nil
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return renderStyledRunes(buildStyledRunes([]rune(m.ciphertext), m.mapping, m.pinned, m.pending))
	}
	body := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(m.viewport.Width).Render(m.viewport.View()),
		lipgloss.NewStyle().Width(tableGap).Render(""),
		m.table.View(),
	)
	mapping := mappingStyle.Render(m.mapping.String())
	footer := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, m.renderFooter())
	return lipgloss.JoinVertical(lipgloss.Left, body, mapping, footer)
}

// Mapping returns the current substitution map.
func (m *Model) Mapping() substitution.Map {
	return m.mapping
}

// Saved reports whether the user confirmed the mapping before quitting.
func (m *Model) Saved() bool {
	return m.saved
}

// Plaintext returns the ciphertext with the current mapping applied.
func (m *Model) Plaintext() string {
	return m.mapping.Apply(m.ciphertext)
}

func (m *Model) handleRunes(runes []rune) {
	for _, r := range runes {
		if r > 0x7f {
			continue
		}
		idx, ok := alphabet.Index(byte(r))
		if !ok {
			continue
		}
		if m.pending == noPending {
			m.pending = idx
			continue
		}
		// Both letters are valid, Set cannot fail here.
		_ = m.mapping.Set(alphabet.Upper(m.pending), alphabet.Upper(idx))
		m.pinned[m.pending] = true
		m.pending = noPending
	}
	m.refresh()
}

func (m *Model) reset() {
	m.mapping = m.ranked
	m.pinned = [alphabet.Size]bool{}
	m.pending = noPending
	m.refresh()
}

func (m *Model) resize() {
	tableWidth := lipgloss.Width(m.table.View())
	m.viewport.Width = max(minTextCol, m.width-tableWidth-tableGap)
	m.viewport.Height = max(1, m.height-mapHeight-1)
	m.table.SetHeight(min(alphabet.Size, max(1, m.viewport.Height-1)))
	m.refresh()
}

func (m *Model) refresh() {
	m.table.SetRows(m.frequencyRows())
	runes := buildStyledRunes([]rune(m.ciphertext), m.mapping, m.pinned, m.pending)
	m.viewport.SetContent(wrapLines(runes, m.viewport.Width))
}

func (m *Model) renderFooter() string {
	pinned := 0
	for _, p := range m.pinned {
		if p {
			pinned++
		}
	}
	if m.pending != noPending {
		return footerStyle.Render(fmt.Sprintf("Cipher %c → type plain letter  |  esc cancel  |  Pinned %d/%d",
			alphabet.Upper(m.pending), pinned, alphabet.Size))
	}
	return footerStyle.Render(fmt.Sprintf("Type cipher then plain letter  |  ctrl+r reset  |  enter save  |  ctrl+c quit  |  Pinned %d/%d",
		pinned, alphabet.Size))
}

func frequencyColumns() []table.Column {
	return []table.Column{
		{Title: "Cipher", Width: 6},
		{Title: "Count", Width: 7},
		{Title: "%", Width: 7},
		{Title: "Plain", Width: 5},
	}
}

func (m *Model) frequencyRows() []table.Row {
	sorted := m.dist.Sorted()
	rows := make([]table.Row, 0, len(sorted))
	for _, lc := range sorted {
		plain, _ := m.mapping.Plain(lc.Letter)
		mark := string(plain)
		c, _ := alphabet.Index(lc.Letter)
		if m.pinned[c] {
			mark += "*"
		}
		rows = append(rows, table.Row{
			string(lc.Letter),
			strconv.Itoa(lc.Count),
			strconv.FormatFloat(lc.Percent, 'f', 2, 64),
			mark,
		})
	}
	return rows
}

func frequencyTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell
	return styles
}
