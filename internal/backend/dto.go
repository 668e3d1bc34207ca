package backend

import "parley/internal/types"

type UsersResponse struct {
	Users []types.ChatUser `json:"users"`
}

type ConversationsResponse struct {
	Conversations []types.Conversation `json:"conversations"`
}

type MessagesResponse struct {
	Messages []types.Message `json:"messages"`
}

type ProjectsResponse struct {
	Projects []types.Project `json:"projects"`
}

type ProfileResponse struct {
	Profile *types.UserProfile `json:"profile"`
}

type RoleResponse struct {
	Role types.UserRole `json:"role"`
}

type AdminResponse struct {
	Admin bool `json:"admin"`
}

type AssignRoleRequest struct {
	Principal string         `json:"principal"`
	Role      types.UserRole `json:"role"`
}

type SendMessageRequest struct {
	Recipient string `json:"recipient"`
	Content   string `json:"content"`
}

type CreateProjectRequest struct {
	Name string `json:"name"`
}

type AddWorkflowRequest struct {
	Name string `json:"name"`
}

type AddTaskRequest struct {
	Description string `json:"description"`
}

type HealthResponse struct {
	OK      bool   `json:"ok"`
	Version string `json:"version"`
	PID     int    `json:"pid"`
}
