package app

import (
	"context"

	"parley/internal/types"
)

// MutationAPI is the slice of the mutation runner the UI drives. Tests
// substitute a fake; production wiring passes *sync.Mutator.
type MutationAPI interface {
	SaveProfile(ctx context.Context, displayName string) error
	SendMessage(ctx context.Context, recipient, content string) (*types.Message, error)
	MarkConversationRead(ctx context.Context, peer string) error
	CreateProject(ctx context.Context, name string) (*types.Project, error)
	DeleteProject(ctx context.Context, id uint64) error
	AddWorkflow(ctx context.Context, projectID uint64, name string) (*types.Workflow, error)
	AddTask(ctx context.Context, projectID, workflowID uint64, description string) (*types.Task, error)
}

// UIStateAPI persists lightweight UI choices across runs.
type UIStateAPI interface {
	Load() (*types.UIState, error)
	Save(state *types.UIState) error
}
