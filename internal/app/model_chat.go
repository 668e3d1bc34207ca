package app

import (
	"errors"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"parley/internal/backend"
	"parley/internal/types"
	"parley/internal/view"
)

// rosterEntry is one row of the sidebar: an existing conversation, or a
// directory user the caller has not messaged yet.
type rosterEntry struct {
	peer        string
	displayName string
	conv        *types.Conversation
}

func (m *Model) roster() []rosterEntry {
	if m.engine == nil {
		return nil
	}
	search := strings.TrimSpace(m.searchInput.Value())
	conversations, _ := m.engine.Conversations()
	users, _ := m.engine.Users()

	entries := make([]rosterEntry, 0, len(conversations)+len(users))
	seen := map[string]bool{}
	for _, conv := range view.FilterConversations(conversations, search) {
		conv := conv
		entries = append(entries, rosterEntry{
			peer:        conv.OtherUser.Principal,
			displayName: view.DisplayName(conv.OtherUser),
			conv:        &conv,
		})
		seen[conv.OtherUser.Principal] = true
	}
	for _, user := range view.FilterUsers(users, m.principal, search) {
		if seen[user.Principal] {
			continue
		}
		entries = append(entries, rosterEntry{
			peer:        user.Principal,
			displayName: view.DisplayName(user),
		})
	}
	return entries
}

func (m *Model) updateChat(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		if m.searching {
			m.searching = false
			m.searchInput.SetValue("")
			m.searchInput.Blur()
			return m, nil
		}
		m.status = ""
		return m, nil
	case tea.KeyCtrlF:
		m.searching = !m.searching
		if m.searching {
			m.composeInput.Blur()
			m.searchInput.Focus()
		} else {
			m.searchInput.Blur()
			m.composeInput.Focus()
		}
		return m, nil
	case tea.KeyUp:
		return m, m.moveSelection(-1)
	case tea.KeyDown:
		return m, m.moveSelection(1)
	case tea.KeyPgUp, tea.KeyPgDown:
		var cmd tea.Cmd
		m.thread, cmd = m.thread.Update(msg)
		return m, cmd
	case tea.KeyCtrlY:
		return m, m.copyLastMessage()
	case tea.KeyEnter:
		if m.searching {
			m.searching = false
			m.searchInput.Blur()
			m.composeInput.Focus()
			return m, nil
		}
		return m, m.sendCurrent()
	}

	var cmd tea.Cmd
	if m.searching {
		m.searchInput, cmd = m.searchInput.Update(msg)
	} else {
		if !m.composeInput.Focused() {
			m.composeInput.Focus()
		}
		m.composeInput, cmd = m.composeInput.Update(msg)
	}
	return m, cmd
}

func (m *Model) moveSelection(delta int) tea.Cmd {
	entries := m.roster()
	if len(entries) == 0 {
		return nil
	}
	index := 0
	for i, entry := range entries {
		if entry.peer == m.selectedPeer {
			index = i + delta
			break
		}
	}
	if index < 0 {
		index = 0
	}
	if index >= len(entries) {
		index = len(entries) - 1
	}
	return m.selectPeer(entries[index].peer)
}

func (m *Model) selectPeer(peer string) tea.Cmd {
	if peer == "" || peer == m.selectedPeer {
		return nil
	}
	m.selectedPeer = peer
	m.threadPeer = ""
	m.status = ""
	m.engine.EnsureConversation(peer)
	return tea.Batch(
		markReadCmd(m.mutations, peer),
		saveUIStateCmd(m.uiStore, types.UIState{SelectedPeer: peer}),
	)
}

// sendCurrent sends optimistically: the outgoing message shows in the
// thread and the compose line clears before the backend confirms. On
// failure the text comes back so the user can retry.
func (m *Model) sendCurrent() tea.Cmd {
	content := strings.TrimSpace(m.composeInput.Value())
	if content == "" || m.selectedPeer == "" {
		return nil
	}
	recipient := m.selectedPeer
	m.pending[recipient] = append(m.pending[recipient], pendingSend{
		recipient: recipient,
		content:   content,
		sentAt:    time.Now(),
	})
	m.composeInput.SetValue("")
	m.syncThreadContent()
	return sendMessageCmd(m.mutations, recipient, content)
}

func (m *Model) handleMessageSent(msg messageSentMsg) {
	if msg.err != nil {
		m.removePending(msg.recipient, msg.content)
		if m.composeInput.Value() == "" {
			m.composeInput.SetValue(msg.content)
		}
		m.status = userMessage(msg.err)
		m.syncThreadContent()
		return
	}
	m.status = ""
}

func (m *Model) removePending(recipient, content string) {
	queue := m.pending[recipient]
	for i, p := range queue {
		if p.content == content {
			m.pending[recipient] = append(queue[:i], queue[i+1:]...)
			return
		}
	}
}

// threadMessages merges the cached thread with unconfirmed sends, dropping
// pending entries once the refetched thread contains them.
func (m *Model) threadMessages() []types.Message {
	messages, _ := m.engine.Conversation(m.selectedPeer)
	queue := m.pending[m.selectedPeer]
	if len(queue) == 0 {
		return messages
	}

	remaining := queue[:0]
	for _, p := range queue {
		confirmed := false
		for _, msg := range messages {
			if msg.Sender == m.principal && msg.Content == p.content && msg.Timestamp >= p.sentAt.Add(-time.Second).UnixNano() {
				confirmed = true
				break
			}
		}
		if !confirmed {
			remaining = append(remaining, p)
		}
	}
	m.pending[m.selectedPeer] = remaining

	merged := make([]types.Message, 0, len(messages)+len(remaining))
	merged = append(merged, messages...)
	for _, p := range remaining {
		merged = append(merged, types.Message{
			Sender:    m.principal,
			Recipient: p.recipient,
			Content:   p.content,
			Timestamp: p.sentAt.UnixNano(),
		})
	}
	return merged
}

func (m *Model) syncThreadContent() {
	if m.selectedPeer == "" {
		m.thread.SetContent("Select a conversation.")
		return
	}
	atBottom := m.thread.AtBottom()
	peerChanged := m.threadPeer != m.selectedPeer
	m.threadPeer = m.selectedPeer
	m.thread.SetContent(m.renderThread(m.threadMessages()))
	if atBottom || peerChanged {
		m.thread.GotoBottom()
	}
}

func (m *Model) copyLastMessage() tea.Cmd {
	messages := m.threadMessages()
	if len(messages) == 0 {
		return nil
	}
	return copyToClipboardCmd(messages[len(messages)-1].Content)
}

func userMessage(err error) string {
	var backendErr *backend.Error
	if errors.As(err, &backendErr) {
		return backendErr.UserMessage()
	}
	return err.Error()
}
