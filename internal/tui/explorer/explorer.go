package explorer

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/joacominatel/askdb/internal/schema"
	"github.com/joacominatel/askdb/internal/tui/theme"
)

// NodeKind identifies the type of a tree node.
type NodeKind int

const (
	NodeDatabase NodeKind = iota
	NodeTable
	NodeColumn
)

// TreeNode represents a single node in the database tree.
type TreeNode struct {
	Kind     NodeKind
	Name     string
	Children []*TreeNode
	Expanded bool

	DataType string // columns only
}

// flatItem is a visible item in the flattened tree view.
type flatItem struct {
	node  *TreeNode
	depth int
}

// SelectDatabaseMsg asks the app to make a database active.
type SelectDatabaseMsg struct {
	Name string
}

// Model is the explorer component: every listed database, with the tables and
// columns of the selected one.
type Model struct {
	roots    []*TreeNode
	items    []flatItem
	selected string
	cursor   int
	width    int
	height   int
	focused  bool
	loading  bool
}

// New creates a new explorer model.
func New() Model {
	return Model{}
}

// SetSize updates the component dimensions.
func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// SetFocused sets the focus state.
func (m *Model) SetFocused(f bool) {
	m.focused = f
}

// SetLoading sets the loading state.
func (m *Model) SetLoading(l bool) {
	m.loading = l
}

// SetDatabases replaces the database list. The selected database keeps its
// tables when it is still listed.
func (m *Model) SetDatabases(names []string) {
	old := make(map[string]*TreeNode, len(m.roots))
	for _, r := range m.roots {
		old[r.Name] = r
	}

	m.roots = make([]*TreeNode, 0, len(names))
	for _, name := range names {
		if n, ok := old[name]; ok && name == m.selected {
			m.roots = append(m.roots, n)
			continue
		}
		m.roots = append(m.roots, &TreeNode{Kind: NodeDatabase, Name: name})
	}
	m.loading = false
	m.flatten()
}

// SetSchema marks desc's database as selected and shows its tables. Other
// databases lose their children. A nil desc selects name with no tables.
func (m *Model) SetSchema(name string, desc *schema.Description) {
	m.selected = name
	for _, r := range m.roots {
		r.Children = nil
		r.Expanded = false
		if r.Name != name || desc == nil {
			continue
		}
		for _, t := range desc.Tables {
			tn := &TreeNode{Kind: NodeTable, Name: t.Name}
			for _, c := range t.Columns {
				tn.Children = append(tn.Children, &TreeNode{Kind: NodeColumn, Name: c.Name, DataType: c.DataType})
			}
			r.Children = append(r.Children, tn)
		}
		r.Expanded = true
	}
	m.flatten()
}

// Selected returns the name of the selected database.
func (m Model) Selected() string {
	return m.selected
}

// Current returns the node under the cursor.
func (m Model) Current() (*TreeNode, bool) {
	if m.cursor < 0 || m.cursor >= len(m.items) {
		return nil, false
	}
	return m.items[m.cursor].node, true
}

// flatten rebuilds the flat item list from the tree.
func (m *Model) flatten() {
	m.items = nil
	for _, r := range m.roots {
		m.flattenNode(r, 0)
	}
	if m.cursor >= len(m.items) {
		m.cursor = max(0, len(m.items)-1)
	}
}

func (m *Model) flattenNode(node *TreeNode, depth int) {
	m.items = append(m.items, flatItem{node: node, depth: depth})
	if node.Expanded {
		for _, child := range node.Children {
			m.flattenNode(child, depth+1)
		}
	}
}

// Update handles messages for the explorer.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.focused {
		return m, nil
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.items)-1 {
				m.cursor++
			}
		case "home", "g":
			m.cursor = 0
		case "end", "G":
			m.cursor = max(0, len(m.items)-1)
		case "enter":
			return m, m.activate()
		case "right", "l":
			m.setExpanded(true)
		case "left", "h":
			m.setExpanded(false)
		}
	}

	return m, nil
}

// activate selects a database, or toggles a table.
func (m *Model) activate() tea.Cmd {
	node, ok := m.Current()
	if !ok {
		return nil
	}
	switch node.Kind {
	case NodeDatabase:
		if node.Name == m.selected && len(node.Children) > 0 {
			node.Expanded = !node.Expanded
			m.flatten()
			return nil
		}
		name := node.Name
		return func() tea.Msg {
			return SelectDatabaseMsg{Name: name}
		}
	case NodeTable:
		node.Expanded = !node.Expanded
		m.flatten()
	}
	return nil
}

func (m *Model) setExpanded(expanded bool) {
	node, ok := m.Current()
	if !ok || len(node.Children) == 0 {
		return
	}
	node.Expanded = expanded
	m.flatten()
}

// View renders the explorer.
func (m Model) View() string {
	title := theme.StyleTitle.Render("Databases")

	if m.loading {
		return title + "\n" + theme.StyleMuted.Render("  Loading...")
	}
	if len(m.roots) == 0 {
		return title + "\n" + theme.StyleMuted.Render("  No databases")
	}

	var b strings.Builder
	b.WriteString(title)
	b.WriteString("\n")

	visibleHeight := max(1, m.height-2)
	scrollOffset := 0
	if m.cursor >= visibleHeight {
		scrollOffset = m.cursor - visibleHeight + 1
	}

	for i := scrollOffset; i < len(m.items) && i < scrollOffset+visibleHeight; i++ {
		b.WriteString(m.renderNode(m.items[i], i == m.cursor))
		if i < scrollOffset+visibleHeight-1 {
			b.WriteString("\n")
		}
	}

	return b.String()
}

func (m Model) renderNode(item flatItem, current bool) string {
	node := item.node
	indent := strings.Repeat("  ", item.depth)

	icon := "  "
	switch {
	case node.Kind == NodeColumn:
		icon = "· "
	case node.Expanded:
		icon = "▼ "
	case len(node.Children) > 0 || node.Kind == NodeDatabase:
		icon = "▶ "
	}

	name := node.Name
	if node.Kind == NodeDatabase && node.Name == m.selected {
		name = "● " + name
	}
	if node.Kind == NodeColumn && node.DataType != "" {
		name += " " + node.DataType
	}

	line := indent + icon + name
	if m.width > 4 && lipgloss.Width(line) > m.width-2 {
		runes := []rune(line)
		for len(runes) > 0 && lipgloss.Width(string(runes)) > m.width-4 {
			runes = runes[:len(runes)-1]
		}
		line = string(runes) + ".."
	}

	switch {
	case current && m.focused:
		return theme.StyleSelected.Render(line)
	case node.Kind == NodeColumn:
		return theme.StyleMuted.Render(line)
	}
	return line
}
