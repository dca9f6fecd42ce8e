package main

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/a-h/kbserver/client"
	"github.com/a-h/kbserver/models"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
)

type AskCommand struct {
	ClientFlags `embed:""`
	Question    string `help:"Ask a single question and print the response as JSON instead of starting the interactive prompt." default:""`
}

func (c AskCommand) Run(ctx context.Context) (err error) {
	kbc := client.New(c.ServerURL, c.ServerAPIKey)

	if c.Question != "" {
		resp, err := kbc.QueryPost(ctx, models.QueryPostRequest{Question: c.Question})
		if err != nil {
			return fmt.Errorf("failed to query: %w", err)
		}
		return printJSON(resp)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	toServer := make(chan string)
	fromServer := make(chan []message)
	errors := make(chan error)

	go func() {
		var history []message
		send := func() bool {
			select {
			case fromServer <- slices.Clone(history):
				return true
			case <-ctx.Done():
				return false
			}
		}
		for {
			var question string
			select {
			case question = <-toServer:
			case <-ctx.Done():
				return
			}
			history = append(history, message{Kind: messageKindHuman, Content: question})
			if !send() {
				return
			}
			resp, err := kbc.QueryPost(ctx, models.QueryPostRequest{Question: question})
			if err != nil {
				select {
				case errors <- err:
					continue
				case <-ctx.Done():
					return
				}
			}
			history = append(history, message{Kind: messageKindAnswer, Content: resp.Response})
			for _, s := range resp.Sources {
				history = append(history, message{Kind: messageKindSource, Content: fmt.Sprintf("%s: %s", s.Type, s.Title())})
			}
			if !send() {
				return
			}
		}
	}()

	p := tea.NewProgram(newModel(ctx, toServer, fromServer, errors))
	if _, err = p.Run(); err != nil {
		return err
	}
	return nil
}

type messageKind int

const (
	messageKindHuman messageKind = iota
	messageKindAnswer
	messageKindSource
)

type message struct {
	Kind    messageKind
	Content string
}

// Dracula color scheme.
var (
	Background  = lipgloss.Color("#282a36")
	CurrentLine = lipgloss.Color("#44475a")
	Comment     = lipgloss.Color("#6272a4")
	Cyan        = lipgloss.Color("#8be9fd")
	Pink        = lipgloss.Color("#ff79c6")
	Purple      = lipgloss.Color("#bd93f9")
	Red         = lipgloss.Color("#ff5555")
)

var headerStyle = lipgloss.NewStyle().Background(CurrentLine).Foreground(Purple).Bold(true).Margin(1).Padding(1)

var errorStyle = lipgloss.NewStyle().Foreground(Red).Margin(1)

const header = "Ask your knowledge base. Press Enter to send, Esc to quit."

type model struct {
	viewport viewport.Model
	textarea textarea.Model
	messages []message
	err      error
	ctx      context.Context

	toServer   chan string
	fromServer chan []message
	errors     chan error
}

func newModel(ctx context.Context, toServer chan string, fromServer chan []message, errors chan error) model {
	ta := textarea.New()
	ta.Placeholder = "Ask a question..."
	ta.Focus()

	ta.Prompt = "┃ "
	ta.CharLimit = 280

	ta.SetHeight(3)

	// Remove cursor line styling
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()

	ta.ShowLineNumbers = false

	vp := viewport.New(80, 20)
	vp.SetContent(headerStyle.Render(header))

	ta.KeyMap.InsertNewline.SetEnabled(false)

	return model{
		ctx:        ctx,
		textarea:   ta,
		viewport:   vp,
		fromServer: fromServer,
		toServer:   toServer,
		errors:     errors,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		m.subscribeToServer(),
		m.subscribeToErrors(),
	)
}

func (m model) subscribeToServer() tea.Cmd {
	return func() tea.Msg {
		select {
		case x := <-m.fromServer:
			return x
		case <-m.ctx.Done():
			return nil
		}
	}
}

func (m model) subscribeToErrors() tea.Cmd {
	return func() tea.Msg {
		select {
		case x := <-m.errors:
			return x
		case <-m.ctx.Done():
			return nil
		}
	}
}

var messageKindToStyle = map[messageKind]lipgloss.Style{
	messageKindHuman:  lipgloss.NewStyle().Padding(1).Margin(1).MarginBottom(0).Background(Background).Foreground(Pink),
	messageKindAnswer: lipgloss.NewStyle().Padding(1).Margin(1).MarginBottom(0).Background(Background).Foreground(Cyan),
	messageKindSource: lipgloss.NewStyle().PaddingLeft(1).MarginLeft(1).Background(Background).Foreground(Comment),
}

var messageKindToIcon = map[messageKind]string{
	messageKindHuman:  "🥷",
	messageKindAnswer: "✨",
	messageKindSource: "📎",
}

func formatMessage(msg message) string {
	style, ok := messageKindToStyle[msg.Kind]
	if !ok {
		return msg.Content
	}
	icon, ok := messageKindToIcon[msg.Kind]
	if !ok {
		icon = "🤷"
	}
	wrapped := wordwrap.String(strings.TrimSpace(icon+" "+msg.Content), 80)
	return style.Render(wrapped)
}

func (m model) render(messages []message) string {
	var sb strings.Builder
	sb.WriteString(headerStyle.Render(header))
	sb.WriteString("\n")
	for _, msg := range messages {
		sb.WriteString(formatMessage(msg))
		sb.WriteString("\n")
	}
	if m.err != nil {
		sb.WriteString(errorStyle.Render(m.err.Error()))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case error:
		m.err = msg
		m.viewport.SetContent(m.render(m.messages))
		m.viewport.GotoBottom()
		return m, m.subscribeToErrors()
	case []message:
		m.messages = msg
		m.err = nil
		m.viewport.SetContent(m.render(msg))
		m.viewport.GotoBottom()
		return m, m.subscribeToServer()
	case tea.WindowSizeMsg:
		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height - m.textarea.Height() - 3
		m.textarea.SetWidth(msg.Width)
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "ctrl+c":
			return m, tea.Quit
		case "enter":
			v := strings.TrimSpace(m.textarea.Value())
			if v == "" {
				// Don't send empty questions.
				return m, nil
			}
			m.textarea.Reset()
			return m, m.ask(v)
		default:
			var cmd tea.Cmd
			m.textarea, cmd = m.textarea.Update(msg)
			return m, cmd
		}

	case cursor.BlinkMsg:
		// Textarea should also process cursor blinks.
		var cmd tea.Cmd
		m.textarea, cmd = m.textarea.Update(msg)
		return m, cmd

	default:
		return m, nil
	}
}

func (m model) ask(question string) tea.Cmd {
	return func() tea.Msg {
		select {
		case m.toServer <- question:
		case <-m.ctx.Done():
		}
		return nil
	}
}

func (m model) View() string {
	return fmt.Sprintf("%s\n\n%s",
		m.viewport.View(),
		m.textarea.View(),
	) + "\n\n"
}
