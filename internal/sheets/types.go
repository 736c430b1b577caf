package sheets

// Tab names in spreadsheet order.
const (
	TabSummary     = "Summary"
	TabComparison  = "Comparison"
	TabDisciplines = "Disciplines"
	TabDataset     = "Dataset"
)

// Tab is the content of one spreadsheet tab.
type Tab struct {
	Title  string
	Values [][]any
	// HeaderRows are zero-based row indexes rendered bold.
	HeaderRows []int
	// FrozenRows is the number of rows kept visible when scrolling.
	FrozenRows int
}

// TabData holds all tabs of one export.
type TabData struct {
	Tabs []Tab
}

// Titles lists the tab titles in order.
func (d TabData) Titles() []string {
	titles := make([]string, len(d.Tabs))
	for i, t := range d.Tabs {
		titles[i] = t.Title
	}
	return titles
}

// Rows is the number of rows across all tabs.
func (d TabData) Rows() int {
	n := 0
	for _, t := range d.Tabs {
		n += len(t.Values)
	}
	return n
}

// Tab returns the tab called title.
func (d TabData) Tab(title string) (Tab, bool) {
	for _, t := range d.Tabs {
		if t.Title == title {
			return t, true
		}
	}
	return Tab{}, false
}

// tabBuilder appends rows and remembers which of them are headers.
type tabBuilder struct {
	tab Tab
}

func newTab(title string) *tabBuilder {
	return &tabBuilder{tab: Tab{Title: title}}
}

func (b *tabBuilder) row(values ...any) {
	b.tab.Values = append(b.tab.Values, values)
}

func (b *tabBuilder) header(values ...any) {
	b.tab.HeaderRows = append(b.tab.HeaderRows, len(b.tab.Values))
	b.row(values...)
}

func (b *tabBuilder) blank() {
	b.tab.Values = append(b.tab.Values, []any{})
}

func (b *tabBuilder) build() Tab {
	return b.tab
}
