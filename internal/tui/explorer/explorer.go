package explorer

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joacominatel/theseus/internal/app"
	"github.com/joacominatel/theseus/internal/database"
	"github.com/joacominatel/theseus/internal/tui/theme"
)

// NodeKind identifies the type of a tree node.
type NodeKind int

const (
	NodeDatabase NodeKind = iota
	NodeSchema
	NodeTable
	NodeView
	NodeColumn
)

// TreeNode represents a single node in the schema tree.
type TreeNode struct {
	Kind     NodeKind
	Name     string
	Children []*TreeNode
	Expanded bool
	Loaded   bool // whether children have been fetched

	Schema string          // parent schema (tables, views, columns)
	Table  string          // parent relation (columns)
	Column database.Column // column metadata
}

func (n *TreeNode) relation() bool {
	return n.Kind == NodeTable || n.Kind == NodeView
}

// flatItem is a visible item in the flattened tree view.
type flatItem struct {
	node  *TreeNode
	depth int
}

// RequestColumnsMsg is sent when a relation is expanded for the first time.
type RequestColumnsMsg struct {
	Schema string
	Table  string
}

// QuickQueryMsg asks the app to run a query built from the selection.
type QuickQueryMsg struct {
	Query string
}

// RefreshMsg asks the app to reload the schema tree.
type RefreshMsg struct{}

// Model is the explorer (schema tree) component.
type Model struct {
	tree    *TreeNode
	items   []flatItem
	cursor  int
	width   int
	height  int
	focused bool
	loading bool
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

// SetTree populates the explorer from a schema tree. Schemas start
// collapsed except the default one.
func (m *Model) SetTree(tree *app.SchemaTree) {
	root := &TreeNode{
		Kind:     NodeDatabase,
		Name:     tree.Database,
		Expanded: true,
		Loaded:   true,
	}

	for _, s := range tree.Schemas {
		schemaNode := &TreeNode{
			Kind:     NodeSchema,
			Name:     s.Name,
			Expanded: s.Name == database.DefaultSchema,
			Loaded:   true,
		}
		for _, t := range s.Tables {
			schemaNode.Children = append(schemaNode.Children, &TreeNode{Kind: NodeTable, Name: t, Schema: s.Name})
		}
		for _, v := range s.Views {
			schemaNode.Children = append(schemaNode.Children, &TreeNode{Kind: NodeView, Name: v, Schema: s.Name})
		}
		root.Children = append(root.Children, schemaNode)
	}

	m.tree = root
	m.flatten()
	m.loading = false
}

// SetColumns adds column nodes to a table or view node.
func (m *Model) SetColumns(schema, table string, columns []database.Column) {
	node := m.find(schema, table)
	if node == nil {
		return
	}
	node.Children = nil
	for _, col := range columns {
		node.Children = append(node.Children, &TreeNode{
			Kind:   NodeColumn,
			Name:   col.Name,
			Schema: schema,
			Table:  table,
			Column: col,
		})
	}
	node.Loaded = true
	m.flatten()
}

// TableNames returns every table and view name in the tree, qualified
// with its schema unless it lives in the default schema.
func (m Model) TableNames() []string {
	if m.tree == nil {
		return nil
	}
	var names []string
	for _, s := range m.tree.Children {
		for _, t := range s.Children {
			names = append(names, qualify(s.Name, t.Name))
		}
	}
	return names
}

func (m *Model) find(schema, table string) *TreeNode {
	if m.tree == nil {
		return nil
	}
	for _, s := range m.tree.Children {
		if s.Name != schema {
			continue
		}
		for _, t := range s.Children {
			if t.Name == table {
				return t
			}
		}
	}
	return nil
}

// SelectedTable returns the schema and name of the selected relation, if any.
func (m Model) SelectedTable() (schema, table string, ok bool) {
	node := m.selected()
	if node == nil {
		return "", "", false
	}
	switch {
	case node.relation():
		return node.Schema, node.Name, true
	case node.Kind == NodeColumn:
		return node.Schema, node.Table, true
	}
	return "", "", false
}

func (m Model) selected() *TreeNode {
	if m.cursor < 0 || m.cursor >= len(m.items) {
		return nil
	}
	return m.items[m.cursor].node
}

// flatten rebuilds the flat item list from the tree.
func (m *Model) flatten() {
	m.items = nil
	if m.tree != nil {
		m.flattenNode(m.tree, 0)
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

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
	case "g", "home":
		m.cursor = 0
	case "G", "end":
		m.cursor = max(0, len(m.items)-1)
	case "enter", "right", "l":
		return m, m.expand()
	case "left", "h":
		m.collapse()
	case "s":
		if schema, table, ok := m.SelectedTable(); ok {
			query := fmt.Sprintf("SELECT * FROM %s LIMIT 100", qualify(schema, table))
			return m, func() tea.Msg { return QuickQueryMsg{Query: query} }
		}
	case "r":
		return m, func() tea.Msg { return RefreshMsg{} }
	}

	return m, nil
}

func (m *Model) expand() tea.Cmd {
	node := m.selected()
	if node == nil || node.Kind == NodeColumn {
		return nil
	}

	if node.Expanded {
		node.Expanded = false
		m.flatten()
		return nil
	}

	node.Expanded = true
	m.flatten()

	if node.relation() && !node.Loaded {
		schema, table := node.Schema, node.Name
		return func() tea.Msg {
			return RequestColumnsMsg{Schema: schema, Table: table}
		}
	}
	return nil
}

// collapse folds the selected node, or moves to its parent when the node
// is already folded.
func (m *Model) collapse() {
	node := m.selected()
	if node == nil {
		return
	}
	if node.Expanded {
		node.Expanded = false
		m.flatten()
		return
	}
	depth := m.items[m.cursor].depth
	for i := m.cursor - 1; i >= 0; i-- {
		if m.items[i].depth < depth {
			m.cursor = i
			return
		}
	}
}

// View renders the explorer.
func (m Model) View() string {
	title := theme.StyleTitle.Render("Schema Explorer")

	if m.loading {
		return title + "\n" + theme.StyleMuted.Render("  Loading...")
	}

	if m.tree == nil {
		return title + "\n" + theme.StyleMuted.Render("  No connection")
	}

	var b strings.Builder
	b.WriteString(title)
	b.WriteString("\n")

	visibleHeight := max(m.height-2, 1)

	// Scroll offset to keep cursor visible
	scrollOffset := 0
	if m.cursor >= visibleHeight {
		scrollOffset = m.cursor - visibleHeight + 1
	}

	end := min(len(m.items), scrollOffset+visibleHeight)
	for i := scrollOffset; i < end; i++ {
		b.WriteString(m.renderNode(m.items[i], i == m.cursor))
		if i < end-1 {
			b.WriteString("\n")
		}
	}

	return b.String()
}

func (m Model) renderNode(item flatItem, selected bool) string {
	node := item.node
	indent := strings.Repeat("  ", item.depth)

	icon := "▶ "
	switch {
	case node.Kind == NodeColumn:
		icon = "  "
	case node.Expanded:
		icon = "▼ "
	}

	name := node.Name
	switch node.Kind {
	case NodeView:
		name += theme.StyleMuted.Render(" (view)")
	case NodeColumn:
		name += " " + theme.TypeStyle(node.Column.Type).Render(string(node.Column.Type))
		if node.Column.Nullable {
			name += theme.StyleMuted.Render("?")
		}
	}

	line := indent + icon + name

	if m.width > 4 && lipgloss.Width(line) > m.width-2 {
		line = truncate(line, m.width-4) + ".."
	}

	if selected {
		return theme.StyleSelected.Render(line)
	}
	return line
}

func truncate(s string, width int) string {
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes)) > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes)
}

func qualify(schema, table string) string {
	if schema == database.DefaultSchema {
		return table
	}
	return schema + "." + table
}
