package store

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"

	"parley/internal/types"
)

// MessageStore holds one nested bucket per conversation pair. Message ids
// come from the pair bucket's sequence, so they are unique and monotonic
// within a conversation; timestamps are assigned here, in server order.
type MessageStore struct {
	db *bolt.DB
	mu sync.Mutex
}

// ConversationSummary is the per-peer projection the daemon serves; it is
// derived from the message log, never stored.
type ConversationSummary struct {
	Peer        string
	LastMessage *types.Message
	Unread      int
}

const pairSep = "\x00"

// pairKey is order-independent so both participants address the same bucket.
func pairKey(a, b string) []byte {
	if a > b {
		a, b = b, a
	}
	return []byte(a + pairSep + b)
}

func unreadKey(owner, peer string) []byte {
	return []byte(owner + pairSep + peer)
}

func (s *MessageStore) Append(ctx context.Context, sender, recipient, content string) (*types.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sender = strings.TrimSpace(sender)
	recipient = strings.TrimSpace(recipient)
	if sender == "" || recipient == "" {
		return nil, errors.New("sender and recipient are required")
	}
	if strings.TrimSpace(content) == "" {
		return nil, errors.New("message content is required")
	}

	var msg types.Message
	err := s.db.Update(func(tx *bolt.Tx) error {
		pair, err := tx.Bucket(bucketMessages).CreateBucketIfNotExists(pairKey(sender, recipient))
		if err != nil {
			return err
		}
		seq, err := pair.NextSequence()
		if err != nil {
			return err
		}
		msg = types.Message{
			ID:        seq,
			Sender:    sender,
			Recipient: recipient,
			Content:   content,
			Timestamp: time.Now().UnixNano(),
		}
		raw, err := json.Marshal(msg)
		if err != nil {
			return err
		}
		if err := pair.Put(itob(seq), raw); err != nil {
			return err
		}

		unread := tx.Bucket(bucketUnread)
		key := unreadKey(recipient, sender)
		count := btoi(unread.Get(key))
		return unread.Put(key, itob(count+1))
	})
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// List returns the full conversation between a and b in server order.
func (s *MessageStore) List(ctx context.Context, a, b string) ([]types.Message, error) {
	out := make([]types.Message, 0)
	err := s.db.View(func(tx *bolt.Tx) error {
		pair := tx.Bucket(bucketMessages).Bucket(pairKey(a, b))
		if pair == nil {
			return nil
		}
		return pair.ForEach(func(_, v []byte) error {
			var msg types.Message
			if err := json.Unmarshal(v, &msg); err != nil {
				return err
			}
			out = append(out, msg)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ConversationsFor derives the conversation list for owner: one summary per
// peer with at least one message, newest activity first.
func (s *MessageStore) ConversationsFor(ctx context.Context, owner string) ([]ConversationSummary, error) {
	out := make([]ConversationSummary, 0)
	err := s.db.View(func(tx *bolt.Tx) error {
		unread := tx.Bucket(bucketUnread)
		return tx.Bucket(bucketMessages).ForEachBucket(func(k []byte) error {
			parts := strings.SplitN(string(k), pairSep, 2)
			if len(parts) != 2 {
				return nil
			}
			var peer string
			switch owner {
			case parts[0]:
				peer = parts[1]
			case parts[1]:
				peer = parts[0]
			default:
				return nil
			}
			pair := tx.Bucket(bucketMessages).Bucket(k)
			if pair == nil {
				return nil
			}
			_, raw := pair.Cursor().Last()
			if len(raw) == 0 {
				return nil
			}
			var last types.Message
			if err := json.Unmarshal(raw, &last); err != nil {
				return err
			}
			out = append(out, ConversationSummary{
				Peer:        peer,
				LastMessage: &last,
				Unread:      int(btoi(unread.Get(unreadKey(owner, peer)))),
			})
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].LastMessage.Timestamp > out[j].LastMessage.Timestamp
	})
	return out, nil
}

// MarkRead resets owner's unread counter for peer.
func (s *MessageStore) MarkRead(ctx context.Context, owner, peer string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketUnread).Delete(unreadKey(owner, peer))
	})
}
