package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/jwebster45206/survival-engine/internal/handlers"
	"github.com/jwebster45206/survival-engine/pkg/affliction"
	"github.com/jwebster45206/survival-engine/pkg/sim"
	"github.com/jwebster45206/survival-engine/pkg/stats"
)

type entryKind int

const (
	entryNarrative entryKind = iota
	entryPrompt
	entryOutcome
	entryNotice
	entryError
)

type logEntry struct {
	kind    entryKind
	heading string
	lines   []string
}

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	api            *APIClient
	animal         *handlers.AnimalResponse
	journal        viewport.Model
	status         viewport.Model
	entries        []logEntry
	prompt         *sim.Prompt
	lastNarrative  string
	ready, loading bool
	width, height  int

	// Progress bar state
	progressTick int
}

type turnMsg struct {
	resp *handlers.TurnResponse
	err  error
}

type choiceMsg struct {
	label string
	res   *sim.TurnResult
	err   error
}

type animalMsg struct {
	resp   *handlers.AnimalResponse
	notice string
	err    error
}

type journalMsg struct {
	resp *handlers.JournalResponse
	err  error
}

type progressTickMsg struct{}

var (
	journalPanelStyle = lipgloss.NewStyle().
				PaddingTop(1).
				PaddingLeft(3)

	statusPanelStyle = lipgloss.NewStyle().
				PaddingTop(1).
				PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")). // amber
			Bold(true)

	headingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("108")). // sage
			Bold(true)

	narrativeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	choiceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	dangerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	outcomeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	noticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")). // dark grey
			Italic(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

func NewConsoleUI(api *APIClient, animal *handlers.AnimalResponse) ConsoleUI {
	journal := viewport.New(60, 20)
	journal.MouseWheelEnabled = true

	return ConsoleUI{
		api:     api,
		animal:  animal,
		journal: journal,
		status:  viewport.New(24, 20),
	}
}

func (m ConsoleUI) Init() tea.Cmd {
	cmds := []tea.Cmd{m.loadJournal()}
	if m.animal.Animal.Pending != nil {
		// reopening a pending turn returns its prompt without advancing
		cmds = append(cmds, m.beginTurn())
	}
	return tea.Batch(cmds...)
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		jvCmd tea.Cmd
		svCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		journalWidth, statusWidth := m.panelWidths()
		m.journal.Width = journalWidth - 3
		m.journal.Height = m.height - 4
		m.status.Width = statusWidth - 2
		m.status.Height = m.height - 2
		m.ready = true
		m.render()

	case tea.KeyMsg:
		if model, cmd, handled := m.handleKey(msg); handled {
			return model, cmd
		}

	case journalMsg:
		if msg.err != nil {
			m.addEntry(entryError, "", msg.err.Error())
		} else {
			m.entries = append(journalEntries(msg.resp), m.entries...)
		}
		m.render()

	case turnMsg:
		m.loading = false
		if msg.err != nil {
			m.addEntry(entryError, "", msg.err.Error())
			m.render()
			return m, nil
		}
		m.applyTurn(msg.resp)
		m.render()
		return m, m.refreshAnimal("")

	case choiceMsg:
		m.loading = false
		if msg.err != nil {
			m.addEntry(entryError, "", msg.err.Error())
			m.render()
			return m, nil
		}
		m.prompt = nil
		m.addEntry(entryNotice, "", "You chose: "+msg.label)
		m.applyResult(msg.res)
		m.render()
		return m, m.refreshAnimal("")

	case animalMsg:
		m.loading = false
		if msg.err != nil {
			m.addEntry(entryError, "", msg.err.Error())
		} else {
			m.animal = msg.resp
			if msg.notice != "" {
				m.addEntry(entryNotice, "", msg.notice)
			}
		}
		m.render()

	case progressTickMsg:
		if m.loading {
			m.progressTick++
			m.render()
			return m, progressTick()
		}
	}

	m.journal, jvCmd = m.journal.Update(msg)
	m.status, svCmd = m.status.Update(msg)
	return m, tea.Batch(jvCmd, svCmd)
}

// handleKey processes single-key commands. Unhandled keys fall through to
// the viewports for scrolling.
func (m ConsoleUI) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit, true
	case "c":
		if m.lastNarrative == "" {
			m.addEntry(entryNotice, "", "Nothing to copy yet")
		} else if err := clipboard.WriteAll(m.lastNarrative); err != nil {
			m.addEntry(entryError, "", "Copy failed: "+err.Error())
		} else {
			m.addEntry(entryNotice, "", "Copied the last narrative to the clipboard")
		}
		m.render()
		return m, nil, true
	}

	if m.loading {
		return m, nil, false
	}
	a := m.animal.Animal

	switch key := msg.String(); key {
	case "enter", "n", " ":
		if !a.Alive || m.prompt.NeedsChoice() {
			return m, nil, true
		}
		m.loading = true
		m.progressTick = 0
		return m, tea.Batch(m.beginTurn(), progressTick()), true
	case "r":
		if !a.Alive {
			return m, nil, true
		}
		m.loading = true
		return m, m.toggleRest(), true
	default:
		if i, ok := choiceIndex(key, m.prompt); ok && a.Alive {
			m.loading = true
			m.progressTick = 0
			ch := m.prompt.Choices[i]
			return m, tea.Batch(m.choose(ch.ID, ch.Label), progressTick()), true
		}
	}
	return m, nil, false
}

// choiceIndex maps a number key to an index into the prompt's choices.
func choiceIndex(key string, p *sim.Prompt) (int, bool) {
	if !p.NeedsChoice() || len(key) != 1 || key[0] < '1' || key[0] > '9' {
		return 0, false
	}
	i := int(key[0] - '1')
	if i >= len(p.Choices) {
		return 0, false
	}
	return i, true
}

func (m *ConsoleUI) applyTurn(resp *handlers.TurnResponse) {
	start := resp.Start
	if start.Resumed {
		m.addEntry(entryNotice, "", fmt.Sprintf("Resuming turn %d", start.Turn))
	} else {
		m.addEntry(entryNarrative, turnHeading(start.Turn, start.Clock.Month, start.Clock.Year, string(start.Clock.Season)), start.Narrative...)
	}
	if start.Prompt != nil {
		m.addEntry(entryNarrative, "", start.Prompt.Narrative)
		m.lastNarrative = start.Prompt.Narrative
	}

	if resp.Result == nil {
		m.prompt = start.Prompt
		m.addEntry(entryPrompt, "", choiceLines(start.Prompt)...)
		return
	}
	m.prompt = nil
	m.applyResult(resp.Result)
}

func (m *ConsoleUI) applyResult(res *sim.TurnResult) {
	if len(res.Narrative) > 0 {
		m.addEntry(entryNarrative, "", res.Narrative...)
		m.lastNarrative = strings.Join(res.Narrative, "\n")
	}
	if line := statLine(res.StatDelta); line != "" {
		m.addEntry(entryNotice, "", line)
	}
	switch res.Outcome {
	case sim.OutcomeDeath:
		m.addEntry(entryOutcome, "", "You have died: "+res.CauseOfDeath, fmt.Sprintf("Offspring raised to maturity: %d", res.Fitness))
	case sim.OutcomeReproduction:
		m.addEntry(entryOutcome, "", "Your life's work is done.", fmt.Sprintf("Offspring: %d", res.Fitness))
	}
}

func (m *ConsoleUI) addEntry(kind entryKind, heading string, lines ...string) {
	var kept []string
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			kept = append(kept, l)
		}
	}
	if heading == "" && len(kept) == 0 {
		return
	}
	m.entries = append(m.entries, logEntry{kind: kind, heading: heading, lines: kept})
}

func (m ConsoleUI) panelWidths() (int, int) {
	journalWidth := int(float64(m.width)*0.7) - 2
	return journalWidth, m.width - journalWidth - 2
}

// render rewrites both viewports from the model.
func (m *ConsoleUI) render() {
	if !m.ready {
		return
	}
	m.journal.SetContent(m.writeJournal())
	m.journal.GotoBottom()
	m.status.SetContent(writeStatus(m.animal))
}

func (m ConsoleUI) writeJournal() string {
	width := m.journal.Width - 2
	if width < 20 {
		width = 20
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("SURVIVAL ENGINE") + "\n\n")
	if len(m.entries) == 0 {
		b.WriteString(noticeStyle.Render(wordwrap.String("Press enter to live through the first turn.", width)) + "\n")
	}
	for _, e := range m.entries {
		if e.heading != "" {
			b.WriteString(separatorStyle.Render(strings.Repeat("─", width)) + "\n")
			b.WriteString(headingStyle.Render(e.heading) + "\n")
		}
		for _, line := range e.lines {
			b.WriteString(styleFor(e.kind).Render(wordwrap.String(line, width)) + "\n")
		}
		b.WriteString("\n")
	}
	if m.loading {
		b.WriteString(m.renderProgressBar() + "\n")
	}
	return b.String()
}

func styleFor(kind entryKind) lipgloss.Style {
	switch kind {
	case entryPrompt:
		return choiceStyle
	case entryOutcome:
		return outcomeStyle
	case entryNotice:
		return noticeStyle
	case entryError:
		return errorStyle
	default:
		return narrativeStyle
	}
}

func turnHeading(turn int, month string, year int, season string) string {
	return fmt.Sprintf("Turn %d · %s, year %d (%s)", turn, month, year+1, season)
}

func choiceLines(p *sim.Prompt) []string {
	if p == nil {
		return nil
	}
	lines := make([]string, 0, len(p.Choices))
	for i, ch := range p.Choices {
		line := fmt.Sprintf("%d) %s", i+1, ch.Label)
		if ch.Description != "" {
			line += " - " + ch.Description
		}
		if ch.Style == "danger" {
			line = dangerStyle.Render(line)
		}
		lines = append(lines, line)
	}
	return lines
}

// journalEntries turns the stored journal into log entries.
func journalEntries(resp *handlers.JournalResponse) []logEntry {
	if resp == nil {
		return nil
	}
	out := make([]logEntry, 0, len(resp.Entries))
	for _, e := range resp.Entries {
		out = append(out, logEntry{
			kind:    entryNarrative,
			heading: turnHeading(e.Turn, e.Month, e.Year, string(e.Season)),
			lines:   e.Lines,
		})
	}
	return out
}

func writeStatus(resp *handlers.AnimalResponse) string {
	a := resp.Animal
	var b strings.Builder
	b.WriteString(titleStyle.Render(strings.ToUpper(a.SpeciesID)) + "\n\n")
	if a.Name != "" {
		fmt.Fprintf(&b, "%s\n", a.Name)
	}
	fmt.Fprintf(&b, "%s, %.1f months\n", a.Sex, a.Age)
	fmt.Fprintf(&b, "Weight: %.1f\n", a.Weight)
	if a.Phase != "" {
		fmt.Fprintf(&b, "Phase: %s\n", a.Phase)
	}
	fmt.Fprintf(&b, "Turn %d, %s\n", a.Clock.Turn, a.Clock.Season)
	if a.Clock.Weather != "" {
		fmt.Fprintf(&b, "Weather: %s\n", strings.ReplaceAll(a.Clock.Weather, "_", " "))
	}
	b.WriteString("\n")

	b.WriteString(headingStyle.Render("Stats") + "\n")
	for _, id := range stats.All {
		fmt.Fprintf(&b, "%-4s %4d\n", id, resp.EffectiveStats.Get(id))
	}

	b.WriteString("\n" + headingStyle.Render("Afflictions") + "\n")
	if len(resp.Afflictions) == 0 {
		b.WriteString("None\n")
	}
	for _, st := range resp.Afflictions {
		b.WriteString(describeAffliction(st) + "\n")
	}

	if flags := a.Flags.List(); len(flags) > 0 {
		b.WriteString("\n" + headingStyle.Render("Flags") + "\n")
		for _, f := range flags {
			fmt.Fprintf(&b, "• %s\n", f)
		}
	}

	fmt.Fprintf(&b, "\nOffspring matured: %d\n", a.Reproduction.TotalFitness)
	if !a.Alive {
		b.WriteString("\n" + dangerStyle.Render("Dead: "+a.CauseOfDeath) + "\n")
	}
	b.WriteString("\n" + noticeStyle.Render("enter: next turn\n1-9: choose\nr: rest injuries\nc: copy\nq: quit"))
	return b.String()
}

// statLine summarizes a turn's stat changes, empty when nothing moved.
func statLine(delta stats.Vector) string {
	if delta.IsZero() {
		return ""
	}
	var parts []string
	for _, id := range stats.All {
		if n := delta.Get(id); n != 0 {
			parts = append(parts, fmt.Sprintf("%s %+d", id, n))
		}
	}
	return "Stats: " + strings.Join(parts, ", ")
}

func describeAffliction(st sim.AfflictionStatus) string {
	s := fmt.Sprintf("• %s (%s)", st.Name, st.Severity)
	if st.BodyPart != "" {
		s += " " + st.BodyPart
	}
	if st.Resting {
		s += " [resting]"
	}
	return s
}

// restTarget is the resting value the r key sets: rest unless every injury
// is already resting.
func restTarget(afflictions []affliction.Instance) bool {
	for _, inst := range afflictions {
		if inst.Kind == affliction.KindInjury && !inst.Resting {
			return true
		}
	}
	return false
}

func (m ConsoleUI) beginTurn() tea.Cmd {
	id := m.animal.Animal.ID
	return func() tea.Msg {
		resp, err := m.api.BeginTurn(id)
		return turnMsg{resp: resp, err: err}
	}
}

func (m ConsoleUI) choose(choiceID, label string) tea.Cmd {
	id := m.animal.Animal.ID
	return func() tea.Msg {
		res, err := m.api.Choose(id, choiceID)
		return choiceMsg{label: label, res: res, err: err}
	}
}

func (m ConsoleUI) toggleRest() tea.Cmd {
	id := m.animal.Animal.ID
	resting := restTarget(m.animal.Animal.Afflictions)
	return func() tea.Msg {
		resp, err := m.api.RestAll(id, resting)
		notice := "Injuries are no longer resting"
		if resting {
			notice = "Resting all injuries"
		}
		return animalMsg{resp: resp, notice: notice, err: err}
	}
}

func (m ConsoleUI) refreshAnimal(notice string) tea.Cmd {
	id := m.animal.Animal.ID
	return func() tea.Msg {
		resp, err := m.api.GetAnimal(id)
		return animalMsg{resp: resp, notice: notice, err: err}
	}
}

func (m ConsoleUI) loadJournal() tea.Cmd {
	id := m.animal.Animal.ID
	return func() tea.Msg {
		resp, err := m.api.Journal(id)
		return journalMsg{resp: resp, err: err}
	}
}

func (m ConsoleUI) View() string {
	if !m.ready {
		return "\n  Initializing..."
	}
	journalWidth, statusWidth := m.panelWidths()

	journalPanel := journalPanelStyle.Width(journalWidth).Height(m.height - 2).Render(m.journal.View())
	statusPanel := statusPanelStyle.Width(statusWidth).Height(m.height - 2).Render(m.status.View())
	return lipgloss.JoinHorizontal(lipgloss.Top, journalPanel, statusPanel)
}

// renderProgressBar creates an animated progress bar for loading states
func (m ConsoleUI) renderProgressBar() string {
	usable := m.journal.Width - 6
	if usable > 60 {
		usable = 60
	} else if usable < 10 {
		usable = 10
	}

	const totalFrames = 40
	frame := m.progressTick % totalFrames
	filled := (frame * usable) / totalFrames

	var bar strings.Builder
	for i := 0; i < usable; i++ {
		if i < filled {
			bar.WriteString("█")
		} else if i == filled && frame%4 < 2 {
			bar.WriteString("▓")
		} else {
			bar.WriteString("░")
		}
	}
	return separatorStyle.Render(bar.String())
}

// progressTick creates a command that sends a progress tick message
func progressTick() tea.Cmd {
	return tea.Tick(time.Millisecond*200, func(time.Time) tea.Msg {
		return progressTickMsg{}
	})
}
