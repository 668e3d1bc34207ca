package view

import (
	"strings"
	"time"

	"parley/internal/types"
)

// InitialsPlaceholder is rendered for users with no resolved display name.
const InitialsPlaceholder = "?"

// Initials returns the first two runes of the display name, uppercased.
func Initials(displayName string) string {
	trimmed := strings.TrimSpace(displayName)
	if trimmed == "" {
		return InitialsPlaceholder
	}
	runes := []rune(trimmed)
	if len(runes) > 2 {
		runes = runes[:2]
	}
	return strings.ToUpper(string(runes))
}

// DisplayName resolves a user's visible name, falling back to a shortened
// principal for unregistered users.
func DisplayName(user types.ChatUser) string {
	if strings.TrimSpace(user.DisplayName) != "" {
		return user.DisplayName
	}
	return ShortPrincipal(user.Principal)
}

func ShortPrincipal(principal string) string {
	if len(principal) > 20 {
		return principal[:10] + "…" + principal[len(principal)-6:]
	}
	return principal
}

// localTime converts a server-assigned nanosecond instant to local wall
// clock.
func localTime(timestampNs int64) time.Time {
	return time.Unix(0, timestampNs).Local()
}

// FormatListTimestamp renders a conversation-list timestamp: time of day for
// today, "Yesterday" for the previous calendar day, the weekday inside the
// preceding six days, month and day beyond that.
func FormatListTimestamp(timestampNs int64, now time.Time) string {
	t := localTime(timestampNs)
	now = now.Local()

	ty, tm, td := t.Date()
	ny, nm, nd := now.Date()
	if ty == ny && tm == nm && td == nd {
		return t.Format("3:04 PM")
	}

	tDay := time.Date(ty, tm, td, 0, 0, 0, 0, t.Location())
	nDay := time.Date(ny, nm, nd, 0, 0, 0, 0, now.Location())
	days := int(nDay.Sub(tDay).Hours() / 24)
	switch {
	case days == 1:
		return "Yesterday"
	case days >= 2 && days < 7:
		return t.Format("Mon")
	default:
		return t.Format("Jan 2")
	}
}

// FormatMessageTime renders the per-message stamp inside a thread.
func FormatMessageTime(timestampNs int64) string {
	return localTime(timestampNs).Format("3:04 PM")
}

// DateGroup is one contiguous run of messages sharing a local calendar date.
type DateGroup struct {
	Date     string
	Messages []types.Message
}

// dateKey is the group label for a message's local calendar date.
func dateKey(timestampNs int64) string {
	return localTime(timestampNs).Format("Monday, January 2")
}

// GroupMessagesByDate partitions messages into groups keyed by local
// calendar date. Groups appear in first-occurrence order of each date key
// and messages keep their original server order; a date whose messages
// arrive in disjoint input positions still yields a single group.
func GroupMessagesByDate(messages []types.Message) []DateGroup {
	var groups []DateGroup
	index := map[string]int{}
	for _, msg := range messages {
		key := dateKey(msg.Timestamp)
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, DateGroup{Date: key})
		}
		groups[i].Messages = append(groups[i].Messages, msg)
	}
	return groups
}

// FilterConversations narrows a conversation snapshot by a case-insensitive
// display-name search.
func FilterConversations(conversations []types.Conversation, search string) []types.Conversation {
	search = strings.ToLower(strings.TrimSpace(search))
	if search == "" {
		return conversations
	}
	var out []types.Conversation
	for _, c := range conversations {
		if strings.Contains(strings.ToLower(DisplayName(c.OtherUser)), search) {
			out = append(out, c)
		}
	}
	return out
}

// FilterUsers narrows the directory for the new-chat picker, excluding the
// caller.
func FilterUsers(users []types.ChatUser, selfPrincipal, search string) []types.ChatUser {
	search = strings.ToLower(strings.TrimSpace(search))
	var out []types.ChatUser
	for _, u := range users {
		if u.Principal == selfPrincipal {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(DisplayName(u)), search) {
			continue
		}
		out = append(out, u)
	}
	return out
}
