package sync

import (
	"context"

	"parley/internal/types"
)

// Backend is the engine's view of the remote authoritative state. Every call
// may fail independently; no ordering is guaranteed across calls.
type Backend interface {
	GetCallerUserProfile(ctx context.Context) (*types.UserProfile, error)
	SaveCallerUserProfile(ctx context.Context, profile types.UserProfile) error
	GetCallerUserRole(ctx context.Context) (types.UserRole, error)
	IsCallerAdmin(ctx context.Context) (bool, error)
	AssignRole(ctx context.Context, principal string, role types.UserRole) error

	ListUsers(ctx context.Context) ([]types.ChatUser, error)
	ListConversations(ctx context.Context) ([]types.Conversation, error)
	GetConversation(ctx context.Context, peer string) ([]types.Message, error)
	MarkConversationRead(ctx context.Context, peer string) error
	SendMessage(ctx context.Context, recipient, content string) (*types.Message, error)

	GetProjects(ctx context.Context) ([]types.Project, error)
	GetProject(ctx context.Context, id uint64) (*types.Project, error)
	CreateProject(ctx context.Context, name string) (*types.Project, error)
	UpdateProject(ctx context.Context, project types.Project) error
	DeleteProject(ctx context.Context, id uint64) error
	AddWorkflow(ctx context.Context, projectID uint64, name string) (*types.Workflow, error)
	AddTask(ctx context.Context, projectID, workflowID uint64, description string) (*types.Task, error)
}
