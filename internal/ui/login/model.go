// Package login renders the sign-in form and exchanges credentials for
// a session token.
package login

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/raccoon129/xires-notify/internal/api"
	"github.com/raccoon129/xires-notify/internal/model"
	"github.com/raccoon129/xires-notify/internal/session"
	"github.com/raccoon129/xires-notify/internal/theme"
)

// ResultMsg carries the outcome of a login attempt.
type ResultMsg struct {
	Identity model.Identity
	Err      error
}

// loginTimeout bounds the login request.
const loginTimeout = 30 * time.Second

// Model is the Bubble Tea model for the sign-in form.
type Model struct {
	client  *api.Client
	session *session.Resolver

	form     *huh.Form
	email    string
	password string

	submitting bool
	errMsg     string

	width  int
	height int
}

// New creates a new login form model.
func New(client *api.Client, resolver *session.Resolver, width, height int) Model {
	m := Model{
		client:  client,
		session: resolver,
		width:   width,
		height:  height,
	}
	m.form = m.buildForm()
	return m
}

// buildForm constructs the credential form.
func (m *Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Placeholder("you@example.com").
				Value(&m.email).
				Validate(validateRequired("Email")),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&m.password).
				Validate(validateRequired("Password")),
		),
	).WithWidth(min(m.width-4, 60))
}

// Init starts the form.
func (m Model) Init() tea.Cmd {
	return m.form.Init()
}

// Update handles messages for the login view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if size, ok := msg.(tea.WindowSizeMsg); ok {
		m.width = size.Width
		m.height = size.Height
		return m, nil
	}

	if m.submitting {
		if result, ok := msg.(ResultMsg); ok {
			m.submitting = false
			if result.Err != nil {
				m.errMsg = loginErrorMessage(result.Err)
				m.password = ""
				m.form = m.buildForm()
				return m, m.form.Init()
			}
		}
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.submitting = true
		m.errMsg = ""
		return m, m.submit()
	}

	return m, cmd
}

// submit exchanges the entered credentials for a token, persists it,
// and resolves the new identity.
func (m Model) submit() tea.Cmd {
	client := m.client
	resolver := m.session
	email := strings.TrimSpace(m.email)
	password := m.password

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loginTimeout)
		defer cancel()

		token, err := client.Login(ctx, email, password)
		if err != nil {
			return ResultMsg{Err: err}
		}

		identity, err := resolver.UpdateAfterLogin(token)
		if err != nil {
			return ResultMsg{Err: err}
		}

		return ResultMsg{Identity: identity}
	}
}

// View renders the login form.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(theme.HeaderStyle.Render("Sign in to Axotl Xires"))
	b.WriteString("\n\n")

	if m.submitting {
		b.WriteString(theme.HelpStyle.Render("Signing in..."))
	} else {
		b.WriteString(m.form.View())
	}

	if m.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(theme.ErrorStyle.Render(m.errMsg))
	}

	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

// loginErrorMessage maps a login failure to a user-facing message.
func loginErrorMessage(err error) string {
	if api.IsAuthError(err) {
		return "Invalid email or password."
	}
	return "Could not sign in. Check your connection and try again."
}

// validateRequired returns a validator that rejects empty input.
func validateRequired(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return &requiredError{field: field}
		}
		return nil
	}
}

// requiredError reports a missing mandatory field.
type requiredError struct {
	field string
}

func (e *requiredError) Error() string {
	return e.field + " is required"
}
