package app

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"parley/internal/cache"
	"parley/internal/logging"
	"parley/internal/session"
	syncer "parley/internal/sync"
	"parley/internal/types"
)

const (
	tickInterval     = 250 * time.Millisecond
	minSidebarWidth  = 24
	maxSidebarWidth  = 36
	minThreadWidth   = 30
	minContentHeight = 6
	composeCharLimit = 4000
)

type viewMode int

const (
	viewModeChat viewMode = iota
	viewModeProjects
)

type projectInputMode int

const (
	projectInputNone projectInputMode = iota
	projectInputName
	projectInputWorkflow
	projectInputTask
)

// EngineFactory builds a sync engine for a resolved principal. The UI owns
// the returned engine and closes it at sign-out.
type EngineFactory func(principal string) (*syncer.Engine, error)

type pendingSend struct {
	recipient string
	content   string
	sentAt    time.Time
}

type Model struct {
	newEngine EngineFactory
	engine    *syncer.Engine
	mutations MutationAPI
	uiStore   UIStateAPI
	gate      *session.Gate
	log       logging.Logger

	mode      viewMode
	width     int
	height    int
	status    string
	loader    spinner.Model
	sub       *cache.Subscription
	selfName  string
	principal string
	isAdmin   bool

	loginInput   textinput.Model
	setupInput   textinput.Model
	composeInput textinput.Model
	searchInput  textinput.Model
	searching    bool
	setupErr     string

	selectedPeer string
	thread       viewport.Model
	threadPeer   string
	pending      map[string][]pendingSend

	projectIndex  int
	workflowIndex int
	projectInput  textinput.Model
	projectMode   projectInputMode
}

func NewModel(newEngine EngineFactory, uiStore UIStateAPI, log logging.Logger) Model {
	if log == nil {
		log = logging.Nop()
	}
	loader := spinner.New()
	loader.Spinner = spinner.Line

	login := textinput.New()
	login.Placeholder = "principal"
	login.CharLimit = 128
	login.Focus()

	setup := textinput.New()
	setup.Placeholder = "display name (2-32 characters)"
	setup.CharLimit = types.DisplayNameMaxLen

	compose := textinput.New()
	compose.Placeholder = "Type a message"
	compose.CharLimit = composeCharLimit

	search := textinput.New()
	search.Placeholder = "search people"
	search.Prompt = "/"

	projectInput := textinput.New()
	projectInput.CharLimit = 200

	thread := viewport.New(minThreadWidth, minContentHeight)

	return Model{
		newEngine:    newEngine,
		uiStore:      uiStore,
		gate:         session.NewGate(),
		log:          log,
		loader:       loader,
		loginInput:   login,
		setupInput:   setup,
		composeInput: compose,
		searchInput:  search,
		projectInput: projectInput,
		thread:       thread,
		pending:      map[string][]pendingSend{},
	}
}

func Run(newEngine EngineFactory, uiStore UIStateAPI, log logging.Logger) error {
	model := NewModel(newEngine, uiStore, log)
	p := tea.NewProgram(&model, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(loadIdentityCmd(), loadUIStateCmd(m.uiStore), m.loader.Tick, tickCmd())
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeThread()
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.loader, cmd = m.loader.Update(msg)
		return m, cmd
	case tickMsg:
		m.refreshSession()
		return m, tickCmd()
	case identityResolvedMsg:
		return m, m.handleIdentityResolved(msg)
	case signedInMsg:
		return m, m.handleSignedIn(msg)
	case signedOutMsg:
		if msg.err != nil {
			m.status = "sign out error: " + msg.err.Error()
		}
		return m, nil
	case profileSavedMsg:
		return m, m.handleProfileSaved(msg)
	case messageSentMsg:
		m.handleMessageSent(msg)
		return m, nil
	case markReadMsg:
		if msg.err != nil {
			m.status = "mark read error: " + msg.err.Error()
		}
		return m, nil
	case uiStateLoadedMsg:
		if msg.err == nil && msg.state != nil {
			m.selectedPeer = msg.state.SelectedPeer
		}
		return m, nil
	case uiStateSavedMsg:
		if msg.err != nil {
			m.status = "state save error: " + msg.err.Error()
		}
		return m, nil
	case copiedMsg:
		if msg.err != nil {
			m.status = "copy failed: " + msg.err.Error()
		} else {
			m.status = "copied"
		}
		return m, nil
	case projectCreatedMsg, projectDeletedMsg, workflowAddedMsg, taskAddedMsg:
		m.handleProjectResult(msg)
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

// refreshSession runs on every tick: it keeps the keys the visible screen
// depends on warm and feeds the latest profile snapshot to the session gate.
func (m *Model) refreshSession() {
	if m.engine == nil {
		return
	}
	m.engine.EnsureProfile()
	profile, entry := m.engine.Profile()
	m.gate.ObserveProfile(profile, entry)
	if profile != nil {
		m.selfName = profile.Name
	}
	if m.gate.State() != session.StateReady {
		return
	}
	m.engine.EnsureRole()
	role, _ := m.engine.Role()
	m.isAdmin = role == types.UserRoleAdmin

	switch m.mode {
	case viewModeChat:
		m.engine.EnsureUsers()
		m.engine.EnsureConversations()
		keys := []cache.Key{cache.ProfileKey(), cache.RoleKey(), cache.UsersKey(), cache.ConversationsKey()}
		if m.selectedPeer != "" {
			m.engine.EnsureConversation(m.selectedPeer)
			keys = append(keys, cache.ConversationKey(m.selectedPeer))
		}
		m.setSubscription(keys)
		m.syncThreadContent()
	case viewModeProjects:
		m.engine.EnsureProjects()
		keys := []cache.Key{cache.ProfileKey(), cache.RoleKey(), cache.ProjectsKey()}
		if project := m.selectedProject(); project != nil {
			m.engine.EnsureProject(project.ID)
			keys = append(keys, cache.ProjectKey(project.ID))
		}
		m.setSubscription(keys)
	}
}

// setSubscription keeps a single live subscription whose key set tracks the
// visible screen; polling stops for keys that drop out of it.
func (m *Model) setSubscription(keys []cache.Key) {
	if m.sub == nil {
		m.sub = m.engine.Store().Subscribe(nil, keys...)
		return
	}
	m.sub.SetKeys(keys...)
}

func (m *Model) handleIdentityResolved(msg identityResolvedMsg) tea.Cmd {
	if msg.err != nil {
		m.status = "identity error: " + msg.err.Error()
	}
	m.gate.ResolveIdentity(msg.principal)
	if msg.principal == "" {
		return nil
	}
	return m.startEngine(msg.principal)
}

func (m *Model) handleSignedIn(msg signedInMsg) tea.Cmd {
	if msg.err != nil {
		m.status = "sign in error: " + msg.err.Error()
		return nil
	}
	m.gate.ResolveIdentity(msg.principal)
	return m.startEngine(msg.principal)
}

func (m *Model) startEngine(principal string) tea.Cmd {
	engine, err := m.newEngine(principal)
	if err != nil {
		m.status = "backend error: " + err.Error()
		m.gate.SignOut()
		return nil
	}
	m.principal = principal
	m.engine = engine
	m.mutations = engine.Mutator()
	m.engine.EnsureProfile()
	return nil
}

func (m *Model) signOut() tea.Cmd {
	if m.sub != nil {
		m.sub.Close()
		m.sub = nil
	}
	if m.engine != nil {
		m.engine.Close()
		m.engine = nil
	}
	m.mutations = nil
	m.principal = ""
	m.selfName = ""
	m.isAdmin = false
	m.selectedPeer = ""
	m.threadPeer = ""
	m.pending = map[string][]pendingSend{}
	m.gate.SignOut()
	m.loginInput.SetValue("")
	m.loginInput.Focus()
	return signOutCmd()
}

func (m *Model) handleProfileSaved(msg profileSavedMsg) tea.Cmd {
	if msg.err != nil {
		m.setupErr = userMessage(msg.err)
		return nil
	}
	m.setupErr = ""
	// Invalidation already marked the profile stale; the next tick refetches
	// and the gate flips to ready.
	m.engine.EnsureProfile()
	return nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	switch m.gate.State() {
	case session.StateUnauthenticated:
		return m.updateLogin(msg)
	case session.StateNeedsSetup:
		return m.updateSetup(msg)
	case session.StateReady:
		if msg.Type == tea.KeyCtrlL {
			return m, m.signOut()
		}
		if msg.Type == tea.KeyTab {
			m.toggleMode()
			return m, nil
		}
		switch m.mode {
		case viewModeChat:
			return m.updateChat(msg)
		case viewModeProjects:
			return m.updateProjects(msg)
		}
	}
	return m, nil
}

func (m *Model) toggleMode() {
	if m.mode == viewModeChat {
		m.mode = viewModeProjects
	} else {
		m.mode = viewModeChat
	}
	m.status = ""
}

func (m *Model) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyEnter {
		principal := strings.TrimSpace(m.loginInput.Value())
		if principal == "" {
			m.status = "enter a principal to sign in"
			return m, nil
		}
		m.status = ""
		return m, signInCmd(principal)
	}
	var cmd tea.Cmd
	m.loginInput, cmd = m.loginInput.Update(msg)
	return m, cmd
}

func (m *Model) updateSetup(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if !m.setupInput.Focused() {
		m.setupInput.Focus()
	}
	if msg.Type == tea.KeyEnter {
		name := strings.TrimSpace(m.setupInput.Value())
		if !types.ValidDisplayName(name) {
			m.setupErr = "Name must be between 2 and 32 characters."
			return m, nil
		}
		m.setupErr = ""
		return m, saveProfileCmd(m.mutations, name)
	}
	var cmd tea.Cmd
	m.setupInput, cmd = m.setupInput.Update(msg)
	return m, cmd
}

func (m *Model) resizeThread() {
	sidebar := m.sidebarWidth()
	width := m.width - sidebar - 1
	if width < minThreadWidth {
		width = minThreadWidth
	}
	height := m.height - 5
	if height < minContentHeight {
		height = minContentHeight
	}
	m.thread.Width = width
	m.thread.Height = height
}

func (m *Model) sidebarWidth() int {
	width := m.width / 4
	if width < minSidebarWidth {
		width = minSidebarWidth
	}
	if width > maxSidebarWidth {
		width = maxSidebarWidth
	}
	return width
}
