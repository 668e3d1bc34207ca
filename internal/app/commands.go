package app

import (
	"context"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"parley/internal/config"
	"parley/internal/types"
)

const mutationTimeout = 6 * time.Second

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func loadIdentityCmd() tea.Cmd {
	return func() tea.Msg {
		principal, err := config.LoadIdentity()
		return identityResolvedMsg{principal: principal, err: err}
	}
}

func signInCmd(principal string) tea.Cmd {
	return func() tea.Msg {
		err := config.SaveIdentity(principal)
		return signedInMsg{principal: principal, err: err}
	}
}

func signOutCmd() tea.Cmd {
	return func() tea.Msg {
		return signedOutMsg{err: config.ClearIdentity()}
	}
}

func saveProfileCmd(api MutationAPI, displayName string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), mutationTimeout)
		defer cancel()
		err := api.SaveProfile(ctx, displayName)
		return profileSavedMsg{displayName: displayName, err: err}
	}
}

func sendMessageCmd(api MutationAPI, recipient, content string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), mutationTimeout)
		defer cancel()
		message, err := api.SendMessage(ctx, recipient, content)
		return messageSentMsg{recipient: recipient, content: content, message: message, err: err}
	}
}

func markReadCmd(api MutationAPI, peer string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), mutationTimeout)
		defer cancel()
		err := api.MarkConversationRead(ctx, peer)
		return markReadMsg{peer: peer, err: err}
	}
}

func createProjectCmd(api MutationAPI, name string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), mutationTimeout)
		defer cancel()
		project, err := api.CreateProject(ctx, name)
		return projectCreatedMsg{project: project, err: err}
	}
}

func deleteProjectCmd(api MutationAPI, id uint64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), mutationTimeout)
		defer cancel()
		err := api.DeleteProject(ctx, id)
		return projectDeletedMsg{id: id, err: err}
	}
}

func addWorkflowCmd(api MutationAPI, projectID uint64, name string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), mutationTimeout)
		defer cancel()
		workflow, err := api.AddWorkflow(ctx, projectID, name)
		return workflowAddedMsg{projectID: projectID, workflow: workflow, err: err}
	}
}

func addTaskCmd(api MutationAPI, projectID, workflowID uint64, description string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), mutationTimeout)
		defer cancel()
		task, err := api.AddTask(ctx, projectID, workflowID, description)
		return taskAddedMsg{projectID: projectID, workflowID: workflowID, task: task, err: err}
	}
}

func loadUIStateCmd(api UIStateAPI) tea.Cmd {
	return func() tea.Msg {
		state, err := api.Load()
		return uiStateLoadedMsg{state: state, err: err}
	}
}

func saveUIStateCmd(api UIStateAPI, state types.UIState) tea.Cmd {
	return func() tea.Msg {
		return uiStateSavedMsg{err: api.Save(&state)}
	}
}

func copyToClipboardCmd(text string) tea.Cmd {
	return func() tea.Msg {
		return copiedMsg{err: clipboard.WriteAll(text)}
	}
}
