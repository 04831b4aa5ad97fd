package main

import (
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/jwebster45206/lifesim-engine/pkg/action"
	"github.com/jwebster45206/lifesim-engine/pkg/chat"
	"github.com/jwebster45206/lifesim-engine/pkg/state"
	"github.com/jwebster45206/lifesim-engine/pkg/textfilter"
	"github.com/muesli/reflow/wordwrap"
)

const (
	WorldName       = "โลก"
	PlaceHolderText = "พิมพ์สิ่งที่คุณต้องการทำ หรือ 1 / 2 เพื่อเลือก..."
)

type screen int

const (
	screenSelect screen = iota
	screenCreate
	screenPlay
)

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	config       *ConsoleConfig
	client       *http.Client
	chatViewport viewport.Model
	metaViewport viewport.Model
	textarea     textarea.Model
	ready        bool
	width        int
	height       int
	err          error
	loading      bool
	screen       screen

	// Character selection state
	savedIDs          []uuid.UUID
	characters        []state.Character
	selected          int
	loadingCharacters bool

	// Character creation form
	nameInput textinput.Model
	ageInput  textinput.Model

	// Play state
	character *state.Character
	gameState *state.SimulationState
	history   []chat.HistoryTurn
	choices   state.ChoicePair

	showQuitModal bool
	progressTick  int
}

type charactersLoadedMsg struct {
	characters []state.Character
	err        error
}

type characterCreatedMsg struct {
	character *state.Character
	err       error
}

type historyLoadedMsg struct {
	history *chat.HistoryResponse
	err     error
}

type turnResponseMsg struct {
	response *chat.TurnResponse
	err      error
}

type characterMsg struct {
	character *state.Character
	err       error
}

type progressTickMsg struct{}

var (
	chatPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(1).
			PaddingLeft(3).
			PaddingRight(0)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(0).
			PaddingLeft(0).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	worldStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	choiceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	loadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)

	modalItemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	modalSelectedItemStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("0")).
				Background(lipgloss.Color("205")).
				Bold(true)

	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

func NewConsoleUI(cfg *ConsoleConfig, client *http.Client, savedIDs []uuid.UUID) ConsoleUI {
	ta := textarea.New()
	ta.Placeholder = PlaceHolderText
	ta.Prompt = promptStyle.Render(":: ")
	ta.CharLimit = 500
	ta.SetWidth(50)
	ta.SetHeight(3)
	ta.ShowLineNumbers = false

	name := textinput.New()
	name.Placeholder = "ชื่อ"
	name.CharLimit = 100
	name.Focus()

	age := textinput.New()
	age.Placeholder = "อายุ"
	age.CharLimit = 3

	chatVp := viewport.New(50, 20)
	chatVp.MouseWheelEnabled = true

	return ConsoleUI{
		config:            cfg,
		client:            client,
		textarea:          ta,
		nameInput:         name,
		ageInput:          age,
		chatViewport:      chatVp,
		metaViewport:      viewport.New(20, 20),
		screen:            screenSelect,
		savedIDs:          savedIDs,
		loadingCharacters: true,
	}
}

func (m ConsoleUI) Init() tea.Cmd {
	return m.loadCharacters()
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if size, ok := msg.(tea.WindowSizeMsg); ok {
		m.width = size.Width
		m.height = size.Height
		m.layout()
	}

	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	switch m.screen {
	case screenSelect:
		return m.updateSelect(msg)
	case screenCreate:
		return m.updateCreate(msg)
	default:
		return m.updatePlay(msg)
	}
}

// layout sizes the play panels for the current window.
func (m *ConsoleUI) layout() {
	if m.width == 0 || m.height == 0 {
		return
	}
	chatWidth := int(float64(m.width)*0.7) - 4
	metaWidth := m.width - chatWidth - 6

	m.chatViewport.Width = chatWidth - 2
	m.chatViewport.Height = m.height - 7
	m.metaViewport.Width = metaWidth - 2
	m.metaViewport.Height = m.height - 4
	m.textarea.SetWidth(chatWidth - 4)

	if m.screen == screenPlay {
		m.ready = true
		m.writeChatContent()
		m.metaViewport.SetContent(m.writeMetadata())
	}
}

func (m ConsoleUI) updateSelect(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case charactersLoadedMsg:
		m.loadingCharacters = false
		m.err = msg.err
		m.characters = msg.characters
		m.selected = 0

	case historyLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.enterPlay(msg.history)
		return m, textarea.Blink

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		}
		if m.loadingCharacters || m.loading {
			return m, nil
		}
		switch msg.Type {
		case tea.KeyUp:
			if m.selected > 0 {
				m.selected--
			}
		case tea.KeyDown:
			// The last row is "new character".
			if m.selected < len(m.characters) {
				m.selected++
			}
		case tea.KeyEnter:
			m.err = nil
			if m.selected == len(m.characters) {
				m.screen = screenCreate
				m.nameInput.Focus()
				return m, textinput.Blink
			}
			m.loading = true
			return m, m.loadHistory(m.characters[m.selected].ID)
		}
	}
	return m, nil
}

func (m ConsoleUI) updateCreate(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case characterCreatedMsg:
		if msg.err != nil {
			m.loading = false
			m.err = msg.err
			return m, nil
		}
		m.savedIDs = append([]uuid.UUID{msg.character.ID}, m.savedIDs...)
		if err := saveCharacterIDs(m.config.IDsFile, m.savedIDs); err != nil {
			m.err = err
		}
		return m, m.loadHistory(msg.character.ID)

	case historyLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.enterPlay(msg.history)
		return m, textarea.Blink

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			m.showQuitModal = true
			return m, nil
		case tea.KeyEsc:
			m.screen = screenSelect
			m.err = nil
			return m, nil
		case tea.KeyTab, tea.KeyShiftTab:
			if m.nameInput.Focused() {
				m.nameInput.Blur()
				m.ageInput.Focus()
			} else {
				m.ageInput.Blur()
				m.nameInput.Focus()
			}
			return m, textinput.Blink
		case tea.KeyEnter:
			if m.loading {
				return m, nil
			}
			name := strings.TrimSpace(m.nameInput.Value())
			age, err := strconv.Atoi(strings.TrimSpace(m.ageInput.Value()))
			switch {
			case name == "":
				m.err = fmt.Errorf("กรุณาใส่ชื่อ")
				return m, nil
			case err != nil || age < 0:
				m.err = fmt.Errorf("อายุต้องเป็นตัวเลข")
				return m, nil
			}
			m.err = nil
			m.loading = true
			return m, m.createCharacter(CreateCharacterRequest{Name: name, Age: age})
		}
	}

	var nameCmd, ageCmd tea.Cmd
	m.nameInput, nameCmd = m.nameInput.Update(msg)
	m.ageInput, ageCmd = m.ageInput.Update(msg)
	return m, tea.Batch(nameCmd, ageCmd)
}

func (m *ConsoleUI) enterPlay(h *chat.HistoryResponse) {
	m.screen = screenPlay
	m.character = h.Character
	m.gameState = h.GameState
	m.history = h.ChatHistory
	m.choices = state.ChoicePair{}
	if h.GameState != nil && h.GameState.PendingChoices.Valid() {
		m.choices = *h.GameState.PendingChoices
	}
	m.textarea.Focus()
	m.layout()
}

func (m ConsoleUI) updatePlay(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.chatViewport, vpCmd = m.chatViewport.Update(msg)
		return m, vpCmd

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyEnter:
			if m.loading {
				return m, nil
			}

			input := strings.TrimSpace(m.textarea.Value())
			if input == "" {
				return m, nil
			}
			if strings.HasPrefix(input, "/") {
				return m.handleCommand(input)
			}

			m.textarea.Reset()
			m.loading = true
			m.progressTick = 0
			m.err = nil

			shown := input
			if m.choices.Valid() {
				shown = action.Normalize(input, &m.choices)
			}
			m.history = append(m.history, chat.HistoryTurn{Speaker: chat.SpeakerUser, Text: shown})
			m.writeChatContent()

			return m, tea.Batch(m.sendTurn(input), progressTick())
		}

	case turnResponseMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			m.writeChatContent()
			return m, nil
		}
		m.history = append(m.history, chat.HistoryTurn{Speaker: chat.SpeakerWorld, Text: msg.response.Narration})
		m.gameState = msg.response.State
		m.choices = msg.response.Choices
		m.writeChatContent()
		m.metaViewport.SetContent(m.writeMetadata())
		return m, m.refreshCharacter()

	case characterMsg:
		if msg.err == nil && msg.character != nil {
			m.character = msg.character
			m.metaViewport.SetContent(m.writeMetadata())
		}

	case progressTickMsg:
		if m.loading {
			m.progressTick++
			m.writeChatContent()
			return m, progressTick()
		}
	}

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.chatViewport, vpCmd = m.chatViewport.Update(msg)
	return m, tea.Batch(tiCmd, vpCmd)
}

func (m ConsoleUI) handleCommand(input string) (tea.Model, tea.Cmd) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "/help":
		m.history = append(m.history, chat.HistoryTurn{Speaker: chat.SpeakerWorld, Text: `คำสั่ง:
• /help - แสดงวิธีใช้
• /switch - เปลี่ยนตัวละคร
• Ctrl+C - ออกจากเกม

วิธีเล่น:
• พิมพ์สิ่งที่ต้องการทำแล้วกด Enter
• พิมพ์ 1 หรือ 2 เพื่อเลือกตัวเลือกที่เสนอ`})
		m.writeChatContent()
	case "/switch":
		m.textarea.Reset()
		m.screen = screenSelect
		m.loadingCharacters = true
		return m, m.loadCharacters()
	}

	m.textarea.Reset()
	return m, nil
}

// writeChatContent rebuilds the chat panel for the current viewport width.
func (m *ConsoleUI) writeChatContent() {
	width := m.chatViewport.Width - 6
	if width < 20 {
		width = 20
	}

	var content strings.Builder
	content.WriteString(titleStyle.Render("LIFE SIM") + "\n\n")
	content.WriteString(separatorStyle.Render(strings.Repeat("─", width)) + "\n\n")

	for _, turn := range m.history {
		switch turn.Speaker {
		case chat.SpeakerUser:
			content.WriteString(userStyle.Render("คุณ: ") + wordwrap.String(turn.Text, width-6) + "\n\n")
		default:
			content.WriteString(worldStyle.Render(WorldName+": ") + wordwrap.String(textfilter.StripChoices(turn.Text), width-6) + "\n\n")
		}
	}

	if m.loading {
		content.WriteString(m.renderProgressBar() + "\n")
	} else if m.choices.Valid() {
		content.WriteString(choiceStyle.Render("1. "+m.choices[0]) + "\n")
		content.WriteString(choiceStyle.Render("2. "+m.choices[1]) + "\n")
	}

	if m.err != nil {
		content.WriteString("\n" + errorStyle.Render("Error: "+m.err.Error()) + "\n")
	}

	m.chatViewport.SetContent(content.String())
	m.chatViewport.GotoBottom()
}

func (m ConsoleUI) writeMetadata() string {
	var content strings.Builder
	if m.character != nil {
		content.WriteString(titleStyle.Render(m.character.Name) + "\n")
		content.WriteString(fmt.Sprintf("อายุ %d\n\n", m.character.Age))
	}

	if gs := m.gameState; gs != nil {
		content.WriteString(titleStyle.Render("สถานะ") + "\n")
		content.WriteString(fmt.Sprintf("วันที่ %d เวลา %s\n", gs.Day, gs.ClockString()))
		content.WriteString(fmt.Sprintf("พลังงาน %s %d\n", meter(gs.Energy), gs.Energy))
		content.WriteString(fmt.Sprintf("ความอิ่ม %s %d\n", meter(gs.Hunger), gs.Hunger))
		content.WriteString(fmt.Sprintf("เงิน %d บาท\n", gs.Money))
		content.WriteString(fmt.Sprintf("อารมณ์ %s\n", gs.Mood))
		content.WriteString(fmt.Sprintf("สถานที่ %s\n\n", gs.Location))
	}

	if m.character != nil {
		writeAttributes(&content, "ทักษะ", m.character.Skills)
		writeAttributes(&content, "ความสัมพันธ์", m.character.Relationships)
	}

	content.WriteString(promptStyle.Render("/help  /switch  Ctrl+C"))
	return content.String()
}

func writeAttributes(sb *strings.Builder, title string, values map[string]int) {
	sb.WriteString(titleStyle.Render(title) + "\n")
	attrs := state.ToAttributes(values)
	if len(attrs) == 0 {
		sb.WriteString("-\n\n")
		return
	}
	for _, a := range attrs {
		fmt.Fprintf(sb, "• %s %d/%d\n", a.Name, a.Value, a.Max)
	}
	sb.WriteString("\n")
}

// meter renders a 0-100 value as a ten cell bar.
func meter(v int) string {
	filled := state.ClampVital(v) / 10
	return strings.Repeat("█", filled) + strings.Repeat("░", 10-filled)
}

func (m ConsoleUI) loadCharacters() tea.Cmd {
	ids := slices.Clone(m.savedIDs)
	return func() tea.Msg {
		if len(ids) == 0 {
			return charactersLoadedMsg{}
		}
		characters, err := lookupCharacters(m.client, m.config.APIBaseURL, ids)
		return charactersLoadedMsg{characters, err}
	}
}

func (m ConsoleUI) createCharacter(req CreateCharacterRequest) tea.Cmd {
	return func() tea.Msg {
		c, err := createCharacter(m.client, m.config.APIBaseURL, req)
		return characterCreatedMsg{c, err}
	}
}

func (m ConsoleUI) loadHistory(id uuid.UUID) tea.Cmd {
	return func() tea.Msg {
		h, err := getHistory(m.client, m.config.APIBaseURL, id)
		return historyLoadedMsg{h, err}
	}
}

func (m ConsoleUI) sendTurn(input string) tea.Cmd {
	id := m.character.ID
	return func() tea.Msg {
		resp, err := sendTurn(m.client, m.config.APIBaseURL, id, input)
		return turnResponseMsg{resp, err}
	}
}

func (m ConsoleUI) refreshCharacter() tea.Cmd {
	id := m.character.ID
	return func() tea.Msg {
		c, err := getCharacter(m.client, m.config.APIBaseURL, id)
		return characterMsg{c, err}
	}
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc, tea.KeyEnter:
			return m, tea.Quit
		}
		switch msg.String() {
		case "y", "Y":
			return m, tea.Quit
		case "n", "N":
			m.showQuitModal = false
			if m.screen == screenPlay {
				m.textarea.Focus()
				return m, textarea.Blink
			}
		}
	}
	return m, nil
}

func (m ConsoleUI) renderModal(body string, width int) string {
	modal := modalStyle.Width(width).Render(body)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) renderQuitModal() string {
	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Quit?"))
	content.WriteString("\n\n")
	content.WriteString("ต้องการออกจากเกมหรือไม่? ความคืบหน้าถูกบันทึกแล้ว")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue, or Ctrl+C to force quit"))
	return m.renderModal(content.String(), 50)
}

func (m ConsoleUI) renderSelectModal() string {
	var content strings.Builder

	switch {
	case m.loadingCharacters:
		content.WriteString(modalTitleStyle.Render("Loading Characters..."))
	case m.loading:
		content.WriteString(modalTitleStyle.Render("Loading..."))
		content.WriteString("\n\n")
		content.WriteString(loadingStyle.Render("กำลังโหลดชีวิตของคุณ..."))
	default:
		content.WriteString(modalTitleStyle.Render("เลือกตัวละคร"))
		content.WriteString("\n\n")

		rows := make([]string, 0, len(m.characters)+1)
		for _, c := range m.characters {
			rows = append(rows, fmt.Sprintf("%s (อายุ %d)", c.Name, c.Age))
		}
		rows = append(rows, "+ สร้างตัวละครใหม่")

		for i, row := range rows {
			if i == m.selected {
				content.WriteString(modalSelectedItemStyle.Render("▶ " + row))
			} else {
				content.WriteString(modalItemStyle.Render("  " + row))
			}
			content.WriteString("\n")
		}
		content.WriteString("\n")
		content.WriteString(promptStyle.Render("Use ↑/↓ to navigate, Enter to select, Ctrl+C to exit"))
	}

	if m.err != nil {
		content.WriteString("\n\n" + errorStyle.Render(m.err.Error()))
	}
	return m.renderModal(content.String(), 60)
}

func (m ConsoleUI) renderCreateModal() string {
	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("สร้างตัวละครใหม่"))
	content.WriteString("\n\n")
	content.WriteString(m.nameInput.View() + "\n")
	content.WriteString(m.ageInput.View() + "\n\n")
	if m.loading {
		content.WriteString(loadingStyle.Render("กำลังสร้าง...") + "\n")
	}
	if m.err != nil {
		content.WriteString(errorStyle.Render(m.err.Error()) + "\n")
	}
	content.WriteString(promptStyle.Render("Tab to switch fields, Enter to create, Esc to go back"))
	return m.renderModal(content.String(), 60)
}

func (m ConsoleUI) View() string {
	if m.width == 0 || m.height == 0 {
		return "\n  Initializing..."
	}
	if m.showQuitModal {
		return m.renderQuitModal()
	}

	switch m.screen {
	case screenSelect:
		return m.renderSelectModal()
	case screenCreate:
		return m.renderCreateModal()
	}

	if !m.ready {
		return "\n  Initializing..."
	}

	chatWidth := int(float64(m.width)*0.7) - 4
	metaWidth := m.width - chatWidth - 6

	chatPanel := chatPanelStyle.Width(chatWidth).Height(m.height - 3).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.chatViewport.View(),
			"",
			separatorStyle.Render(strings.Repeat("─", chatWidth-4)),
			m.textarea.View(),
		),
	)

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, chatPanel, metaPanel)
}

// renderProgressBar creates an animated progress bar for loading states
func (m ConsoleUI) renderProgressBar() string {
	usable := min(max(m.chatViewport.Width-6, 10), 80)

	const totalFrames = 40
	frame := m.progressTick % totalFrames
	filled := (frame * usable) / totalFrames

	var bar strings.Builder
	for i := range usable {
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

func progressTick() tea.Cmd {
	return tea.Tick(time.Millisecond*200, func(time.Time) tea.Msg {
		return progressTickMsg{}
	})
}
