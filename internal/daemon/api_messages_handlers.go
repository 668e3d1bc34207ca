package daemon

import (
	"net/http"
	"strings"

	"parley/internal/logging"
	"parley/internal/types"
)

func (a *API) Conversations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	principal, ok := a.requirePrincipal(w, r)
	if !ok {
		return
	}
	summaries, err := a.Stores.Messages.ConversationsFor(r.Context(), principal)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	conversations := make([]types.Conversation, 0, len(summaries))
	for _, s := range summaries {
		user := types.ChatUser{Principal: s.Peer}
		if profile, found, err := a.Stores.Profiles.Get(r.Context(), s.Peer); err == nil && found {
			user.DisplayName = profile.Name
		}
		conversations = append(conversations, types.Conversation{
			OtherUser:   user,
			LastMessage: s.LastMessage,
			UnreadCount: s.Unread,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"conversations": conversations})
}

func (a *API) ConversationByPeer(w http.ResponseWriter, r *http.Request) {
	principal, ok := a.requirePrincipal(w, r)
	if !ok {
		return
	}
	path := strings.TrimPrefix(r.URL.Path, "/v1/conversations/")
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	peer := parts[0]

	if len(parts) == 1 {
		if r.Method != http.MethodGet {
			writeMethodNotAllowed(w)
			return
		}
		messages, err := a.Stores.Messages.List(r.Context(), principal, peer)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"messages": messages})
		return
	}

	if len(parts) == 2 && parts[1] == "read" {
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w)
			return
		}
		if err := a.Stores.Messages.MarkRead(r.Context(), principal, peer); err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return
	}

	writeError(w, http.StatusNotFound, "not found")
}

func (a *API) SendMessage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}
	principal, ok := a.requirePrincipal(w, r)
	if !ok {
		return
	}
	var req struct {
		Recipient string `json:"recipient"`
		Content   string `json:"content"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Recipient) == "" {
		writeError(w, http.StatusBadRequest, "recipient is required")
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		writeError(w, http.StatusBadRequest, "message content is required")
		return
	}
	if strings.TrimSpace(req.Recipient) == principal {
		writeError(w, http.StatusBadRequest, "invalid recipient")
		return
	}
	msg, err := a.Stores.Messages.Append(r.Context(), principal, req.Recipient, req.Content)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	a.logger().Debug("message stored",
		logging.F("sender", principal),
		logging.F("recipient", req.Recipient),
		logging.F("id", msg.ID))
	writeJSON(w, http.StatusCreated, msg)
}
