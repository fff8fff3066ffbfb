package session

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStore persists sessions as a single JSON object keyed by session id.
// Every operation reads and rewrites the whole file; a mutex serializes
// writers within the process. Suited to the low call volume of this service.
type FileStore struct {
	mu   sync.Mutex
	path string
}

type fileDB struct {
	Sessions map[string]Session `json:"sessions"`
}

// NewFileStore creates the backing file (and parent directory) if missing.
func NewFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("%w: mkdir: %v", ErrUnavailable, err)
	}
	s := &FileStore{path: path}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := s.write(fileDB{Sessions: map[string]Session{}}); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *FileStore) Save(ctx context.Context, id string, sess Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.read()
	if err != nil {
		return err
	}
	db.Sessions[id] = sess
	return s.write(db)
}

func (s *FileStore) Get(ctx context.Context, id string) (Session, error) {
	if err := ctx.Err(); err != nil {
		return Session{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.read()
	if err != nil {
		return Session{}, err
	}
	sess, ok := db.Sessions[id]
	if !ok {
		return Session{}, ErrNotFound
	}
	return sess, nil
}

func (s *FileStore) List(ctx context.Context) ([]Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.read()
	if err != nil {
		return nil, err
	}
	out := make([]Session, 0, len(db.Sessions))
	for _, sess := range db.Sessions {
		out = append(out, sess)
	}
	return out, nil
}

func (s *FileStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.read()
	if err != nil {
		return err
	}
	delete(db.Sessions, id)
	return s.write(db)
}

func (s *FileStore) read() (fileDB, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return fileDB{}, fmt.Errorf("%w: read %s: %v", ErrUnavailable, s.path, err)
	}
	var db fileDB
	if err := json.Unmarshal(raw, &db); err != nil {
		return fileDB{}, fmt.Errorf("%w: decode %s: %v", ErrUnavailable, s.path, err)
	}
	if db.Sessions == nil {
		db.Sessions = map[string]Session{}
	}
	return db, nil
}

func (s *FileStore) write(db fileDB) error {
	data, err := json.MarshalIndent(db, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode: %v", ErrUnavailable, err)
	}
	// Write-then-rename so a crash mid-write cannot truncate the database.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("%w: write %s: %v", ErrUnavailable, tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("%w: rename %s: %v", ErrUnavailable, s.path, err)
	}
	return nil
}

var _ Store = (*FileStore)(nil)
