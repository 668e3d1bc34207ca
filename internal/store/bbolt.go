package store

import (
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	bucketProfiles = []byte("profiles")
	bucketRoles    = []byte("roles")
	bucketMessages = []byte("messages")
	bucketUnread   = []byte("unread")
	bucketProjects = []byte("projects")
)

// Repository is the daemon's bbolt-backed persistence root.
type Repository struct {
	db       *bolt.DB
	profiles *ProfileStore
	messages *MessageStore
	projects *ProjectStore
}

func Open(path string) (*Repository, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("repository db path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Repository{
		db:       db,
		profiles: &ProfileStore{db: db},
		messages: &MessageStore{db: db},
		projects: &ProjectStore{db: db},
	}, nil
}

func (r *Repository) Profiles() *ProfileStore { return r.profiles }
func (r *Repository) Messages() *MessageStore { return r.messages }
func (r *Repository) Projects() *ProjectStore { return r.projects }

func (r *Repository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

func initSchema(db *bolt.DB) error {
	return db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bucketProfiles, bucketRoles, bucketMessages, bucketUnread, bucketProjects} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
}

func itob(v uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, v)
	return buf
}

func btoi(b []byte) uint64 {
	if len(b) != 8 {
		return 0
	}
	return binary.BigEndian.Uint64(b)
}
