package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"parley/internal/session"
	"parley/internal/types"
	"parley/internal/view"
)

func (m *Model) View() string {
	switch m.gate.State() {
	case session.StateInit:
		return m.loader.View() + " starting"
	case session.StateUnauthenticated:
		return m.renderLogin()
	case session.StateCheckingProfile:
		return m.loader.View() + " loading"
	case session.StateNeedsSetup:
		return m.renderSetup()
	}

	var body string
	switch m.mode {
	case viewModeChat:
		body = m.renderChat()
	case viewModeProjects:
		body = m.renderProjects()
	}
	return lipgloss.JoinVertical(lipgloss.Left, body, m.renderStatusLine())
}

func (m *Model) renderLogin() string {
	lines := []string{
		headerStyle.Render("parley"),
		"",
		"Sign in with your principal.",
		"",
		m.loginInput.View(),
	}
	if m.status != "" {
		lines = append(lines, "", errorStyle.Render(m.status))
	}
	lines = append(lines, "", helpStyle.Render("enter sign in · ctrl+c quit"))
	return strings.Join(lines, "\n")
}

func (m *Model) renderSetup() string {
	lines := []string{
		headerStyle.Render("Welcome to parley"),
		"",
		"Pick a display name so other people can find you.",
		"",
		m.setupInput.View(),
	}
	if m.setupErr != "" {
		lines = append(lines, "", errorStyle.Render(m.setupErr))
	}
	lines = append(lines, "", helpStyle.Render("enter save · ctrl+c quit"))
	return strings.Join(lines, "\n")
}

func (m *Model) renderChat() string {
	sidebar := m.renderSidebar()
	thread := m.renderThreadPane()
	height := lipgloss.Height(sidebar)
	if h := lipgloss.Height(thread); h > height {
		height = h
	}
	if height < 1 {
		height = 1
	}
	divider := strings.Repeat("│\n", height-1) + "│"
	return lipgloss.JoinHorizontal(lipgloss.Top, sidebar, dividerStyle.Render(divider), thread)
}

func (m *Model) renderSidebar() string {
	width := m.sidebarWidth()
	lines := []string{headerStyle.Render(truncate("Conversations", width))}
	if m.searching {
		lines = append(lines, m.searchInput.View())
	}
	entries := m.roster()
	if len(entries) == 0 {
		lines = append(lines, helpStyle.Render("Nobody here yet."))
	}
	now := time.Now()
	for _, entry := range entries {
		lines = append(lines, m.renderRosterRow(entry, width, now))
	}
	for i, line := range lines {
		lines[i] = lipgloss.PlaceHorizontal(width, lipgloss.Left, line)
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderRosterRow(entry rosterEntry, width int, now time.Time) string {
	avatar := avatarStyle.Render(view.Initials(entry.displayName))
	label := entry.displayName
	suffix := ""
	if entry.conv != nil {
		if entry.conv.UnreadCount > 0 {
			suffix = unreadStyle.Render(fmt.Sprintf(" (%d)", entry.conv.UnreadCount))
		}
		if entry.conv.LastMessage != nil {
			label += " · " + view.FormatListTimestamp(entry.conv.LastMessage.Timestamp, now)
		}
	}
	row := avatar + " " + truncate(label, width-5) + suffix
	if entry.peer == m.selectedPeer {
		return selectedStyle.Render("› " + row)
	}
	return "  " + row
}

func (m *Model) renderThreadPane() string {
	header := headerStyle.Render(m.threadHeader())
	input := m.composeInput.View()
	return lipgloss.JoinVertical(lipgloss.Left, header, m.thread.View(), dividerStyle.Render(strings.Repeat("─", m.thread.Width)), input)
}

func (m *Model) threadHeader() string {
	if m.selectedPeer == "" {
		if m.isAdmin {
			return "parley · admin"
		}
		return "parley"
	}
	for _, entry := range m.roster() {
		if entry.peer == m.selectedPeer {
			return entry.displayName
		}
	}
	return view.ShortPrincipal(m.selectedPeer)
}

func (m *Model) renderThread(messages []types.Message) string {
	if len(messages) == 0 {
		return "No messages yet. Say hello."
	}
	var b strings.Builder
	for _, group := range view.GroupMessagesByDate(messages) {
		b.WriteString(dateHeadingStyle.Render(group.Date))
		b.WriteString("\n")
		for _, msg := range group.Messages {
			b.WriteString(m.renderMessage(msg))
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m *Model) renderMessage(msg types.Message) string {
	sender := m.threadHeader()
	style := senderStyle
	if msg.Sender == m.principal {
		sender = m.selfName
		if sender == "" {
			sender = "You"
		}
		style = selfSenderStyle
	}
	line := style.Render(sender)
	if msg.ID == 0 {
		line += pendingStyle.Render(" sending…")
	} else {
		line += timestampStyle.Render(" " + view.FormatMessageTime(msg.Timestamp))
	}
	return line + "\n" + msg.Content
}

func (m *Model) renderProjects() string {
	width := m.width
	if width < minThreadWidth {
		width = minThreadWidth
	}
	lines := []string{headerStyle.Render("Projects")}
	projects := m.currentProjects()
	if len(projects) == 0 {
		lines = append(lines, helpStyle.Render("No projects. Press n to create one."))
	}
	for i, project := range projects {
		title := projectTitleStyle.Render(truncate(project.Name, width-4))
		if i == m.projectIndex {
			title = selectedStyle.Render("› ") + title
		} else {
			title = "  " + title
		}
		lines = append(lines, title)
		if i != m.projectIndex {
			continue
		}
		for wi, workflow := range project.Workflows {
			marker := "  "
			if wi == m.workflowIndex {
				marker = "▸ "
			}
			lines = append(lines, "    "+marker+workflowStyle.Render(workflow.Name))
			for _, task := range workflow.Tasks {
				lines = append(lines, "        • "+taskStyle.Render(truncate(task.Description, width-10)))
			}
		}
	}
	if m.projectMode != projectInputNone {
		lines = append(lines, "", m.projectInput.View())
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderStatusLine() string {
	help := "tab projects · ↑/↓ select · enter send · ctrl+f search · ctrl+y copy · ctrl+l sign out · ctrl+c quit"
	if m.mode == viewModeProjects {
		help = "tab chat · ↑/↓ project · ←/→ workflow · n new · w workflow · t task · D delete · ctrl+c quit"
	}
	if m.status != "" {
		return statusStyle.Render(truncate(m.status, m.width))
	}
	return helpStyle.Render(truncate(help, m.width))
}

func truncate(s string, width int) string {
	if width <= 0 {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}
