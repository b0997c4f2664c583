package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Zuo-Peng/chatmap/internal/index"
	"github.com/Zuo-Peng/chatmap/internal/search"
)

const debounceDelay = 200 * time.Millisecond

type resultsMsg struct {
	query    string
	kind     string
	features []search.Result
	err      error
}

type debounceMsg struct{ query string }

type previewMsg struct {
	key     string
	content string
}

type model struct {
	db     *index.DB
	opts   search.Options
	browse bool // list every point while the query is empty

	input textinput.Model
	query string
	kind  string

	features []search.Result
	err      error
	cursor   int
	offset   int

	preview viewport.Model
	shown   string // featureKey of the preview content
	help    help.Model

	width    int
	height   int
	quitting bool
	picked   *search.Result
	link     bool
}

func newModel(db *index.DB, query string, opts search.Options, browse bool) model {
	in := textinput.New()
	in.Prompt = "> "
	in.PromptStyle = promptStyle
	in.TextStyle = inputStyle
	in.CharLimit = 256
	in.Placeholder = "search messages..."
	if browse {
		in.Placeholder = "filter points..."
	}
	in.SetValue(query)
	in.Focus()
	return model{
		db:      db,
		opts:    opts,
		browse:  browse,
		input:   in,
		query:   query,
		kind:    opts.Kind,
		preview: viewport.New(0, 0),
		help:    help.New(),
	}
}

func featureKey(r search.Result) string {
	return fmt.Sprintf("%s#%d", r.MapKey, r.FeatureID)
}

func (m model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.fetch())
}

func (m model) current() (search.Result, bool) {
	if m.cursor < 0 || m.cursor >= len(m.features) {
		return search.Result{}, false
	}
	return m.features[m.cursor], true
}

// fetch loads the points for the current query and kind filter.
func (m model) fetch() tea.Cmd {
	db, query, kind, browse := m.db, m.query, m.kind, m.browse
	opts := m.opts
	opts.Query = query
	opts.Kind = kind
	return func() tea.Msg {
		msg := resultsMsg{query: query, kind: kind}
		switch {
		case strings.TrimSpace(query) != "":
			msg.features, msg.err = search.Search(db, opts)
		case browse:
			msg.features, msg.err = search.ListAll(db, opts)
		}
		return msg
	}
}

func debounce(query string) tea.Cmd {
	return tea.Tick(debounceDelay, func(time.Time) tea.Msg {
		return debounceMsg{query: query}
	})
}

func (m model) loadPreview() tea.Cmd {
	r, ok := m.current()
	if !ok || featureKey(r) == m.shown {
		return nil
	}
	db, query, width := m.db, m.query, m.previewWidth()
	return func() tea.Msg {
		return previewMsg{key: featureKey(r), content: renderPreview(db, r, query, width)}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.preview = viewport.New(m.previewWidth(), m.bodyHeight())
		m.shown = ""
		return m, m.loadPreview()

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			return m.move(-1)
		case tea.MouseButtonWheelDown:
			return m.move(1)
		}
		return m, nil

	case debounceMsg:
		if msg.query != m.query {
			return m, nil
		}
		return m, m.fetch()

	case resultsMsg:
		// the user has typed or switched kind since this was requested
		if msg.query != m.query || msg.kind != m.kind {
			return m, nil
		}
		m.features, m.err = msg.features, msg.err
		m.cursor, m.offset = 0, 0
		m.shown = ""
		if len(m.features) == 0 {
			m.preview.SetContent("")
			return m, nil
		}
		return m, m.loadPreview()

	case previewMsg:
		if r, ok := m.current(); !ok || featureKey(r) != msg.key {
			return m, nil
		}
		m.shown = msg.key
		m.preview.SetContent(msg.content)
		m.preview.GotoTop()
		return m, nil
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, keys.Copy, keys.CopyLink):
		r, ok := m.current()
		if !ok {
			return m, nil
		}
		m.picked = &r
		m.link = key.Matches(msg, keys.CopyLink)
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, keys.Up):
		return m.move(-1)
	case key.Matches(msg, keys.Down):
		return m.move(1)

	case key.Matches(msg, keys.NextKind, keys.PrevKind):
		step := 1
		if key.Matches(msg, keys.PrevKind) {
			step = -1
		}
		m.kind = shiftKind(m.kind, step)
		return m, m.fetch()

	case key.Matches(msg, keys.PreviewUp):
		m.preview.LineUp(max(m.bodyHeight()/2, 1))
		return m, nil
	case key.Matches(msg, keys.PreviewDown):
		m.preview.LineDown(max(m.bodyHeight()/2, 1))
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if q := m.input.Value(); q != m.query {
		m.query = q
		return m, tea.Batch(cmd, debounce(q))
	}
	return m, cmd
}

// move shifts the cursor by step, clamped to the loaded points.
func (m model) move(step int) (tea.Model, tea.Cmd) {
	next := min(max(m.cursor+step, 0), len(m.features)-1)
	if next < 0 || next == m.cursor {
		return m, nil
	}
	m.cursor = next
	m.offset = scrollOffset(m.cursor, m.offset, m.visibleRows())
	return m, m.loadPreview()
}
