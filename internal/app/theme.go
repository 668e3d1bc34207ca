package app

import "github.com/charmbracelet/lipgloss"

var (
	headerStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	helpStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	statusStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	errorStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	selectedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("236"))
	dividerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	unreadStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("120")).Bold(true)
	timestampStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	senderStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("75")).Bold(true)
	selfSenderStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("114")).Bold(true)
	dateHeadingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("110")).Bold(true)
	pendingStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("243")).Italic(true)
	avatarStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Bold(true)
	projectTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("69"))
	workflowStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("110"))
	taskStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
)
