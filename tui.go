//go:build !gui

package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/haasele/focus-reader/internal/library"
	"github.com/haasele/focus-reader/internal/paginate"
	"github.com/haasele/focus-reader/internal/rsvp"
)

var (
	focusStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF5555"))

	wordStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF"))

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#AAAAFF"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Padding(0, 1)

	chapterStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#55AAAA")).
			Italic(true)

	pausedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFAA00")).
			Bold(true)

	completeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FF00")).
			Bold(true)

	pageTextStyle = lipgloss.NewStyle().
			Padding(1, 2)

	errStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000"))
)

type keyMap struct {
	PlayPause    key.Binding
	SpeedUp      key.Binding
	SpeedDown    key.Binding
	PrevSentence key.Binding
	NextSentence key.Binding
	Pages        key.Binding
	Restart      key.Binding
	Library      key.Binding
	Help         key.Binding
	Quit         key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.PlayPause, k.SpeedUp, k.SpeedDown, k.Pages, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.PlayPause, k.SpeedUp, k.SpeedDown},
		{k.PrevSentence, k.NextSentence, k.Restart},
		{k.Pages, k.Library, k.Quit},
	}
}

var defaultKeys = keyMap{
	PlayPause:    key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "play/pause")),
	SpeedUp:      key.NewBinding(key.WithKeys("up", "+", "="), key.WithHelp("↑/+", "faster")),
	SpeedDown:    key.NewBinding(key.WithKeys("down", "-"), key.WithHelp("↓/-", "slower")),
	PrevSentence: key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "prev sentence")),
	NextSentence: key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "next sentence")),
	Pages:        key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "page view")),
	Restart:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "restart")),
	Library:      key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "library")),
	Help:         key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:         key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

type uiMode int

const (
	modePicker uiMode = iota
	modeLoading
	modeReading
	modePages
)

// bookItem adapts a library record to the picker list.
type bookItem struct {
	meta library.BookMetadata
}

func (i bookItem) Title() string { return i.meta.Title }

func (i bookItem) Description() string {
	pct := 0
	if i.meta.TotalWords > 0 {
		pct = i.meta.LastReadIndex * 100 / i.meta.TotalWords
	}
	author := i.meta.Author
	if author == "" {
		author = "Unknown author"
	}
	return fmt.Sprintf("%s · %d words · %d%% read", author, i.meta.TotalWords, pct)
}

func (i bookItem) FilterValue() string { return i.meta.Title + " " + i.meta.Author }

// eventMsg carries a scheduler event plus the scheduler generation it came
// from, so events from a replaced scheduler are ignored.
type eventMsg struct {
	gen int
	ev  rsvp.Event
}

type bookLoadedMsg struct {
	sess *session
	err  error
}

func waitForEvent(gen int, ch <-chan rsvp.Event) tea.Cmd {
	return func() tea.Msg {
		return eventMsg{gen: gen, ev: <-ch}
	}
}

type model struct {
	prog *program
	keys keyMap
	help help.Model

	mode   uiMode
	picker list.Model
	bar    progress.Model

	sess    *session
	sched   *rsvp.Scheduler
	tracker *library.Tracker
	gen     int

	pages   []paginate.Page
	pageIdx int

	initCmd tea.Cmd

	index    int
	finished bool
	quitting bool
	err      error

	width  int
	height int
}

func newTUIModel(p *program) model {
	picker := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	picker.Title = "Library"
	picker.SetStatusBarItemName("book", "books")

	bar := progress.New(progress.WithDefaultGradient())

	m := model{
		prog:   p,
		keys:   defaultKeys,
		help:   help.New(),
		mode:   modePicker,
		picker: picker,
		bar:    bar,
		width:  80,
		height: 24,
	}
	if p.start != nil {
		_, m.initCmd = m.install(p.start)
	} else {
		m.refreshPicker()
	}
	return m
}

func (m *model) refreshPicker() {
	if m.prog.store == nil {
		return
	}
	books, err := m.prog.store.ListAll()
	if err != nil {
		m.err = err
		return
	}
	items := make([]list.Item, len(books))
	for i, b := range books {
		items[i] = bookItem{meta: b}
	}
	m.picker.SetItems(items)
}

func (m model) Init() tea.Cmd {
	return m.initCmd
}

// install swaps in a freshly loaded session: new scheduler, new tracker, new
// page set, old ones shut down. The generation bump quiets any event still in
// flight from the previous scheduler.
func (m *model) install(sess *session) (model, tea.Cmd) {
	if m.tracker != nil {
		m.tracker.Close()
	}
	if m.sched != nil {
		m.sched.Close()
	}

	sched, tracker := m.prog.newScheduler(sess)
	m.sess = sess
	m.sched = sched
	m.tracker = tracker
	m.pages = paginate.Paginate(sess.doc.Words, m.prog.cfg.PageSize, sess.doc.Boundaries())
	m.pageIdx = 0
	m.index = sched.Snapshot().Index
	m.finished = false
	m.mode = modeReading
	m.gen++
	return *m, waitForEvent(m.gen, sched.Events())
}

// shutdown flushes progress and releases the session's scheduler and tracker.
func (m *model) shutdown() {
	if m.sched != nil {
		m.sched.Pause()
		m.sched.Close()
	}
	if m.tracker != nil {
		m.tracker.Close()
		m.tracker = nil
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.picker.SetSize(msg.Width, msg.Height-1)
		m.bar.Width = msg.Width / 2
		return m, nil

	case eventMsg:
		if msg.gen != m.gen || m.sched == nil {
			return m, nil
		}
		switch msg.ev.Kind {
		case rsvp.EventWord:
			m.index = msg.ev.Index
		case rsvp.EventFinished:
			m.index = 0
			m.finished = true
		}
		return m, waitForEvent(m.gen, m.sched.Events())

	case bookLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.mode = modePicker
			return m, nil
		}
		return m.install(msg.sess)

	case tea.KeyMsg:
		switch m.mode {
		case modePicker:
			return m.updatePicker(msg)
		case modeReading:
			return m.updateReading(msg)
		case modePages:
			return m.updatePages(msg)
		}
	}
	return m, nil
}

func (m model) updatePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.picker.FilterState() != list.Filtering {
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case msg.String() == "enter":
			item, ok := m.picker.SelectedItem().(bookItem)
			if !ok {
				return m, nil
			}
			m.mode = modeLoading
			m.err = nil
			store, fresh := m.prog.store, m.prog.fresh
			return m, func() tea.Msg {
				sess, err := openStored(store, item.meta.ID, fresh)
				return bookLoadedMsg{sess: sess, err: err}
			}
		}
	}
	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	return m, cmd
}

func (m model) updateReading(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.shutdown()
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.PlayPause):
		m.finished = false
		if m.sched.Snapshot().Playing {
			m.sched.Pause()
		} else {
			m.sched.Play()
		}
		return m, nil

	case key.Matches(msg, m.keys.SpeedUp):
		m.sched.AdjustWPM(50)
		return m, nil

	case key.Matches(msg, m.keys.SpeedDown):
		m.sched.AdjustWPM(-50)
		return m, nil

	case key.Matches(msg, m.keys.PrevSentence):
		m.sched.JumpToPrevSentence()
		m.index = m.sched.Snapshot().Index
		return m, nil

	case key.Matches(msg, m.keys.NextSentence):
		m.sched.JumpToNextSentence()
		m.index = m.sched.Snapshot().Index
		return m, nil

	case key.Matches(msg, m.keys.Restart):
		m.sched.Reset()
		m.index = 0
		m.finished = false
		return m, nil

	case key.Matches(msg, m.keys.Pages):
		m.sched.Pause()
		m.pageIdx = paginate.PageForWord(m.pages, m.index)
		m.mode = modePages
		return m, nil

	case key.Matches(msg, m.keys.Library):
		if m.prog.store != nil {
			m.shutdown()
			m.sched, m.sess = nil, nil
			m.refreshPicker()
			m.mode = modePicker
		}
		return m, nil

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}
	return m, nil
}

func (m model) updatePages(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.shutdown()
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Pages):
		m.mode = modeReading
		return m, nil

	case msg.String() == "enter":
		// Resume playback from the top of the page being looked at.
		if len(m.pages) > 0 {
			m.sched.JumpTo(m.pages[m.pageIdx].WordStart)
			m.index = m.sched.Snapshot().Index
		}
		m.finished = false
		m.mode = modeReading
		return m, nil

	case key.Matches(msg, m.keys.PrevSentence): // ←
		if m.pageIdx > 0 {
			m.pageIdx--
		}
		return m, nil

	case key.Matches(msg, m.keys.NextSentence): // →
		if m.pageIdx < len(m.pages)-1 {
			m.pageIdx++
		}
		return m, nil
	}
	return m, nil
}

func (m model) View() string {
	if m.quitting {
		if m.finished {
			return completeStyle.Render("\n  Reading complete!\n")
		}
		return ""
	}

	switch m.mode {
	case modePicker:
		view := m.picker.View()
		if m.err != nil {
			view += "\n" + errStyle.Render(m.err.Error())
		}
		return view
	case modeLoading:
		return statusStyle.Render("Loading…")
	case modePages:
		return m.viewPages()
	default:
		return m.viewReading()
	}
}

func (m model) viewReading() string {
	snap := m.sched.Snapshot()
	total := m.sched.WordCount()

	pause := ""
	if !snap.Playing {
		pause = pausedStyle.Render(" [PAUSED]")
	}
	status := statusStyle.Render(fmt.Sprintf("%s · Word %d/%d · %.0f WPM%s",
		m.sess.doc.Title, m.index+1, total, snap.WPM, pause))

	chapter := ""
	if c := m.sess.doc.ChapterAt(m.index); c != nil {
		chapter = chapterStyle.Render(c.Title)
	}

	var center string
	if m.finished {
		center = centerLine(completeStyle.Render("Reading complete!"), m.width)
	} else {
		center = m.anchoredWord(m.sched.Word(m.index))
	}

	bar := centerLine(m.bar.ViewAs(m.sched.Progress()), m.width)
	helpView := m.help.View(m.keys)

	// Status on top, help at the bottom, the word dead center.
	avail := m.height - 4 - lipgloss.Height(helpView)
	if avail < 1 {
		avail = 1
	}
	top := avail / 2

	var sb strings.Builder
	sb.WriteString(status)
	sb.WriteString("\n")
	sb.WriteString(chapter)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("\n", top))
	sb.WriteString(center)
	sb.WriteString(strings.Repeat("\n", avail-top))
	sb.WriteString(bar)
	sb.WriteString("\n")
	sb.WriteString(helpView)
	return sb.String()
}

// anchoredWord renders the current word with its focus rune highlighted and
// padded so the focus rune sits at the center column regardless of word
// length.
func (m model) anchoredWord(word string) string {
	if word == "" {
		return ""
	}
	parts := m.prog.policy.Split(word)
	styled := wordStyle.Render(parts.Before) +
		focusStyle.Render(parts.Focus) +
		wordStyle.Render(parts.After)

	pad := m.width/2 - lipgloss.Width(parts.Before)
	if pad < 0 {
		pad = 0
	}
	return strings.Repeat(" ", pad) + styled
}

func (m model) viewPages() string {
	if len(m.pages) == 0 {
		return statusStyle.Render("Nothing to page through.")
	}
	page := m.pages[m.pageIdx]

	header := titleStyle.Render(m.sess.doc.Title)
	if page.IsChapterStart {
		header += "  " + chapterStyle.Render(page.ChapterTitle)
	}

	body := pageTextStyle.Width(m.width).Render(page.Text)

	reading := paginate.PageForWord(m.pages, m.index)
	footer := statusStyle.Render(fmt.Sprintf(
		"Page %d/%d · reading position on page %d · ←/→ page · enter: read from here · v: back",
		m.pageIdx+1, len(m.pages), reading+1))

	return header + "\n" + body + "\n" + footer
}

func centerLine(s string, width int) string {
	pad := (width - lipgloss.Width(s)) / 2
	if pad < 0 {
		pad = 0
	}
	return strings.Repeat(" ", pad) + s
}

func runFrontend(p *program) error {
	m := newTUIModel(p)
	prog := tea.NewProgram(m, tea.WithAltScreen())
	_, err := prog.Run()
	return err
}
