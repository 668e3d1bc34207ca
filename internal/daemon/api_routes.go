package daemon

import "net/http"

func (a *API) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", a.Health)
	mux.HandleFunc("/v1/profile", a.Profile)
	mux.HandleFunc("/v1/role", a.Role)
	mux.HandleFunc("/v1/role/admin", a.RoleAdmin)
	mux.HandleFunc("/v1/roles", a.AssignRole)
	mux.HandleFunc("/v1/users", a.Users)
	mux.HandleFunc("/v1/conversations", a.Conversations)
	mux.HandleFunc("/v1/conversations/", a.ConversationByPeer)
	mux.HandleFunc("/v1/messages", a.SendMessage)
	mux.HandleFunc("/v1/projects", a.Projects)
	mux.HandleFunc("/v1/projects/", a.ProjectByID)
	mux.HandleFunc("/v1/shutdown", a.ShutdownDaemon)
}
