// Package store keeps subscriber settings.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"

	"shutdowns-bot/internal/models"
)

// Store is the subscriber persistence used by the bot and the jobs.
type Store interface {
	Get(ctx context.Context, telegramID int64) (models.Subscriber, bool, error)
	SetGroup(ctx context.Context, telegramID int64, group int) error
	SetLanguage(ctx context.Context, telegramID int64, lang string) error
	Delete(ctx context.Context, telegramID int64) error
	All(ctx context.Context) ([]models.Subscriber, error)
	CountByGroup(ctx context.Context) (map[int]int, error)
}

// fileEntry is the on-disk value, keyed by the decimal Telegram id:
// {"123": {"group": 4, "language": "uk"}}
type fileEntry struct {
	Group    int    `json:"group,omitempty"`
	Language string `json:"language,omitempty"`
}

// FileStore keeps subscribers in a single JSON file.
type FileStore struct {
	path string
	now  func() time.Time

	mu    sync.Mutex
	users map[int64]models.Subscriber
}

var _ Store = (*FileStore)(nil)

// NewFileStore loads path. A missing file is an empty store.
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{path: path, now: time.Now, users: make(map[int64]models.Subscriber)}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(data) == 0 {
		return s, nil
	}

	var raw map[string]fileEntry
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	for key, e := range raw {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("decode %s: bad user id %q", path, key)
		}
		s.users[id] = models.Subscriber{TelegramID: id, Group: e.Group, Language: e.Language}
	}
	return s, nil
}

func (s *FileStore) Get(_ context.Context, telegramID int64) (models.Subscriber, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.users[telegramID]
	return sub, ok, nil
}

func (s *FileStore) SetGroup(_ context.Context, telegramID int64, group int) error {
	return s.update(telegramID, func(sub *models.Subscriber) { sub.Group = group })
}

func (s *FileStore) SetLanguage(_ context.Context, telegramID int64, lang string) error {
	return s.update(telegramID, func(sub *models.Subscriber) { sub.Language = lang })
}

func (s *FileStore) Delete(_ context.Context, telegramID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.users[telegramID]
	if !ok {
		return nil
	}
	delete(s.users, telegramID)
	if err := s.saveLocked(); err != nil {
		s.users[telegramID] = prev
		return err
	}
	return nil
}

// All returns the subscribers ordered by Telegram id.
func (s *FileStore) All(_ context.Context) ([]models.Subscriber, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Subscriber, 0, len(s.users))
	for _, sub := range s.users {
		out = append(out, sub)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TelegramID < out[j].TelegramID })
	return out, nil
}

// CountByGroup returns how many subscribers follow each group.
func (s *FileStore) CountByGroup(_ context.Context) (map[int]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := make(map[int]int)
	for _, sub := range s.users {
		if sub.HasGroup() {
			counts[sub.Group]++
		}
	}
	return counts, nil
}

func (s *FileStore) update(telegramID int64, fn func(*models.Subscriber)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, existed := s.users[telegramID]
	sub := prev
	sub.TelegramID = telegramID
	fn(&sub)
	sub.UpdatedAt = s.now()
	s.users[telegramID] = sub

	if err := s.saveLocked(); err != nil {
		if existed {
			s.users[telegramID] = prev
		} else {
			delete(s.users, telegramID)
		}
		return err
	}
	return nil
}

// saveLocked writes the file through a temp file and rename so readers
// never see a partial document.
func (s *FileStore) saveLocked() error {
	raw := make(map[string]fileEntry, len(s.users))
	for id, sub := range s.users {
		raw[strconv.FormatInt(id, 10)] = fileEntry{Group: sub.Group, Language: sub.Language}
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("encode users: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".users-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("rename to %s: %w", s.path, err)
	}
	return nil
}
