package cache

import "strconv"

type Kind string

const (
	KindProfile       Kind = "profile"
	KindRole          Kind = "role"
	KindUsers         Kind = "users"
	KindConversations Kind = "conversations"
	KindConversation  Kind = "conversation"
	KindProjects      Kind = "projects"
	KindProject       Kind = "project"
)

// Key addresses one cacheable unit of state. Discriminant narrows a kind to
// a single instance, e.g. the peer principal of one conversation.
type Key struct {
	Kind         Kind
	Discriminant string
}

func (k Key) String() string {
	if k.Discriminant == "" {
		return string(k.Kind)
	}
	return string(k.Kind) + "/" + k.Discriminant
}

func ProfileKey() Key       { return Key{Kind: KindProfile} }
func RoleKey() Key          { return Key{Kind: KindRole} }
func UsersKey() Key         { return Key{Kind: KindUsers} }
func ConversationsKey() Key { return Key{Kind: KindConversations} }

func ConversationKey(peer string) Key {
	return Key{Kind: KindConversation, Discriminant: peer}
}

func ProjectsKey() Key { return Key{Kind: KindProjects} }

func ProjectKey(id uint64) Key {
	return Key{Kind: KindProject, Discriminant: strconv.FormatUint(id, 10)}
}
