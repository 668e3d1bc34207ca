package app

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"parley/internal/types"
)

func (m *Model) currentProjects() []types.Project {
	if m.engine == nil {
		return nil
	}
	projects, _ := m.engine.Projects()
	if m.projectIndex >= len(projects) {
		m.projectIndex = len(projects) - 1
	}
	if m.projectIndex < 0 {
		m.projectIndex = 0
	}
	return projects
}

func (m *Model) selectedProject() *types.Project {
	projects := m.currentProjects()
	if len(projects) == 0 {
		return nil
	}
	return &projects[m.projectIndex]
}

func (m *Model) selectedWorkflow() *types.Workflow {
	project := m.selectedProject()
	if project == nil || len(project.Workflows) == 0 {
		return nil
	}
	if m.workflowIndex >= len(project.Workflows) {
		m.workflowIndex = len(project.Workflows) - 1
	}
	if m.workflowIndex < 0 {
		m.workflowIndex = 0
	}
	return &project.Workflows[m.workflowIndex]
}

func (m *Model) updateProjects(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.projectMode != projectInputNone {
		return m.updateProjectInput(msg)
	}

	switch msg.Type {
	case tea.KeyEsc:
		m.status = ""
		return m, nil
	case tea.KeyUp:
		if m.projectIndex > 0 {
			m.projectIndex--
			m.workflowIndex = 0
		}
		return m, nil
	case tea.KeyDown:
		if m.projectIndex < len(m.currentProjects())-1 {
			m.projectIndex++
			m.workflowIndex = 0
		}
		return m, nil
	case tea.KeyLeft:
		if m.workflowIndex > 0 {
			m.workflowIndex--
		}
		return m, nil
	case tea.KeyRight:
		if project := m.selectedProject(); project != nil && m.workflowIndex < len(project.Workflows)-1 {
			m.workflowIndex++
		}
		return m, nil
	}

	switch msg.String() {
	case "n":
		m.enterProjectInput(projectInputName, "project name")
		return m, nil
	case "w":
		if m.selectedProject() == nil {
			m.status = "select a project first"
			return m, nil
		}
		m.enterProjectInput(projectInputWorkflow, "workflow name")
		return m, nil
	case "t":
		if m.selectedWorkflow() == nil {
			m.status = "select a workflow first"
			return m, nil
		}
		m.enterProjectInput(projectInputTask, "task description")
		return m, nil
	case "D":
		project := m.selectedProject()
		if project == nil {
			return m, nil
		}
		return m, deleteProjectCmd(m.mutations, project.ID)
	}
	return m, nil
}

func (m *Model) enterProjectInput(mode projectInputMode, placeholder string) {
	m.projectMode = mode
	m.projectInput.Placeholder = placeholder
	m.projectInput.SetValue("")
	m.projectInput.Focus()
	m.status = ""
}

func (m *Model) updateProjectInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.projectMode = projectInputNone
		m.projectInput.Blur()
		return m, nil
	case tea.KeyEnter:
		value := strings.TrimSpace(m.projectInput.Value())
		if value == "" {
			return m, nil
		}
		mode := m.projectMode
		m.projectMode = projectInputNone
		m.projectInput.Blur()
		switch mode {
		case projectInputName:
			return m, createProjectCmd(m.mutations, value)
		case projectInputWorkflow:
			if project := m.selectedProject(); project != nil {
				return m, addWorkflowCmd(m.mutations, project.ID, value)
			}
		case projectInputTask:
			project := m.selectedProject()
			workflow := m.selectedWorkflow()
			if project != nil && workflow != nil {
				return m, addTaskCmd(m.mutations, project.ID, workflow.ID, value)
			}
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.projectInput, cmd = m.projectInput.Update(msg)
	return m, cmd
}

func (m *Model) handleProjectResult(msg tea.Msg) {
	switch msg := msg.(type) {
	case projectCreatedMsg:
		if msg.err != nil {
			m.status = "create project error: " + userMessage(msg.err)
			return
		}
		m.status = "project created"
	case projectDeletedMsg:
		if msg.err != nil {
			m.status = "delete project error: " + userMessage(msg.err)
			return
		}
		m.status = "project deleted"
	case workflowAddedMsg:
		if msg.err != nil {
			m.status = "add workflow error: " + userMessage(msg.err)
			return
		}
		m.status = "workflow added"
	case taskAddedMsg:
		if msg.err != nil {
			m.status = "add task error: " + userMessage(msg.err)
			return
		}
		m.status = "task added"
	}
}
