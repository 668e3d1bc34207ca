package store

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"sync"

	bolt "go.etcd.io/bbolt"

	"parley/internal/types"
)

// ProfileStore persists one profile record per principal, plus role
// assignments.
type ProfileStore struct {
	db *bolt.DB
	mu sync.Mutex
}

func (s *ProfileStore) Get(ctx context.Context, principal string) (*types.UserProfile, bool, error) {
	var (
		out *types.UserProfile
		ok  bool
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketProfiles).Get([]byte(principal))
		if len(raw) == 0 {
			return nil
		}
		var profile types.UserProfile
		if err := json.Unmarshal(raw, &profile); err != nil {
			return err
		}
		out = &profile
		ok = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return out, ok, nil
}

// Put upserts the profile for principal. A first-time save also grants the
// default user role.
func (s *ProfileStore) Put(ctx context.Context, principal string, profile types.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	principal = strings.TrimSpace(principal)
	if principal == "" {
		return errors.New("principal is required")
	}
	raw, err := json.Marshal(profile)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		profiles := tx.Bucket(bucketProfiles)
		first := profiles.Stats().KeyN == 0
		if err := profiles.Put([]byte(principal), raw); err != nil {
			return err
		}
		roles := tx.Bucket(bucketRoles)
		if roles.Get([]byte(principal)) != nil {
			return nil
		}
		// The first registered user bootstraps as admin.
		role := types.UserRoleUser
		if first {
			role = types.UserRoleAdmin
		}
		return roles.Put([]byte(principal), []byte(role))
	})
}

// List returns the registered user directory sorted by display name.
func (s *ProfileStore) List(ctx context.Context) ([]types.ChatUser, error) {
	out := make([]types.ChatUser, 0)
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketProfiles).ForEach(func(k, v []byte) error {
			var profile types.UserProfile
			if err := json.Unmarshal(v, &profile); err != nil {
				return err
			}
			out = append(out, types.ChatUser{Principal: string(k), DisplayName: profile.Name})
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DisplayName == out[j].DisplayName {
			return out[i].Principal < out[j].Principal
		}
		return out[i].DisplayName < out[j].DisplayName
	})
	return out, nil
}

// Role returns the principal's role; unregistered principals are guests.
func (s *ProfileStore) Role(ctx context.Context, principal string) (types.UserRole, error) {
	role := types.UserRoleGuest
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketRoles).Get([]byte(principal))
		if len(raw) > 0 {
			role = types.UserRole(raw)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return role, nil
}

func (s *ProfileStore) SetRole(ctx context.Context, principal string, role types.UserRole) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	principal = strings.TrimSpace(principal)
	if principal == "" {
		return errors.New("principal is required")
	}
	switch role {
	case types.UserRoleAdmin, types.UserRoleUser, types.UserRoleGuest:
	default:
		return errors.New("invalid role")
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketRoles).Put([]byte(principal), []byte(role))
	})
}
