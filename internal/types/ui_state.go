package types

// UIState is the small slice of presentation state persisted between
// launches. It is not entity cache: the engine can always rebuild those.
type UIState struct {
	SelectedPeer string `json:"selected_peer,omitempty"`
}
