package repository

import (
	"context"
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	json "github.com/goccy/go-json"

	"vx-landing/internal/domain"
	"vx-landing/internal/metrics"
	"vx-landing/pkg/logger"
)

// Kind names one JSON document owned by the FileStore
type Kind string

const (
	KindContacts  Kind = "contacts"
	KindSettings  Kind = "settings"
	KindAnalytics Kind = "analytics"
	KindSpam      Kind = "spam_contacts"
)

var (
	// ErrParse marks a document that exists but is not valid JSON
	ErrParse = stderrors.New("malformed document")
	// ErrIO marks a failed read or write of a document file
	ErrIO = stderrors.New("document i/o failure")
)

// FileStore keeps every document as a pretty-printed JSON file under one
// directory. Each kind has its own mutex so a read-modify-write through an
// Update method cannot interleave with another writer of the same kind.
type FileStore struct {
	dir   string
	locks map[Kind]*sync.Mutex
	now   func() time.Time
	log   *logger.Logger
}

// NewFileStore creates the data directory if needed
func NewFileStore(dir string, log *logger.Logger) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create data dir %s: %v", ErrIO, dir, err)
	}
	return &FileStore{
		dir: dir,
		locks: map[Kind]*sync.Mutex{
			KindContacts:  {},
			KindSettings:  {},
			KindAnalytics: {},
			KindSpam:      {},
		},
		now: time.Now,
		log: log,
	}, nil
}

// WithClock overrides the clock used to name backups
func (s *FileStore) WithClock(now func() time.Time) *FileStore {
	s.now = now
	return s
}

// Dir returns the data directory
func (s *FileStore) Dir() string {
	return s.dir
}

// Path returns the file backing kind
func (s *FileStore) Path(kind Kind) string {
	return filepath.Join(s.dir, string(kind)+".json")
}

// Contacts returns all stored contacts in insertion order
func (s *FileStore) Contacts(ctx context.Context) ([]domain.Contact, error) {
	s.locks[KindContacts].Lock()
	defer s.locks[KindContacts].Unlock()
	return load(ctx, s, KindContacts, emptyContacts)
}

// SaveContacts replaces the contacts document
func (s *FileStore) SaveContacts(ctx context.Context, contacts []domain.Contact) error {
	s.locks[KindContacts].Lock()
	defer s.locks[KindContacts].Unlock()
	return s.write(ctx, KindContacts, nonNilContacts(contacts))
}

// UpdateContacts runs fn over the current contacts and writes its result
func (s *FileStore) UpdateContacts(ctx context.Context, fn func([]domain.Contact) ([]domain.Contact, error)) error {
	s.locks[KindContacts].Lock()
	defer s.locks[KindContacts].Unlock()

	contacts, err := load(ctx, s, KindContacts, emptyContacts)
	if err != nil {
		return err
	}
	updated, err := fn(contacts)
	if err != nil {
		return err
	}
	return s.write(ctx, KindContacts, nonNilContacts(updated))
}

// ClearContacts writes a timestamped backup of the current collection next
// to the contacts file, then empties the collection. Backups are never pruned.
func (s *FileStore) ClearContacts(ctx context.Context) (string, error) {
	s.locks[KindContacts].Lock()
	defer s.locks[KindContacts].Unlock()

	contacts, err := load(ctx, s, KindContacts, emptyContacts)
	if err != nil {
		return "", err
	}

	backup := filepath.Join(s.dir, "contacts_backup_"+strconv.FormatInt(s.now().UnixMilli(), 10)+".json")
	if err := s.writeFile(ctx, backup, nonNilContacts(contacts)); err != nil {
		observe(KindContacts, "backup", err)
		return "", err
	}
	observe(KindContacts, "backup", nil)

	if err := s.write(ctx, KindContacts, []domain.Contact{}); err != nil {
		return "", err
	}
	return backup, nil
}

// Settings returns the settings singleton
func (s *FileStore) Settings(ctx context.Context) (domain.Settings, error) {
	s.locks[KindSettings].Lock()
	defer s.locks[KindSettings].Unlock()
	return load(ctx, s, KindSettings, domain.DefaultSettings)
}

// SaveSettings replaces the settings singleton wholesale
func (s *FileStore) SaveSettings(ctx context.Context, settings domain.Settings) error {
	s.locks[KindSettings].Lock()
	defer s.locks[KindSettings].Unlock()
	return s.write(ctx, KindSettings, settings)
}

// UpdateSettings runs fn over the current settings and writes the result
func (s *FileStore) UpdateSettings(ctx context.Context, fn func(*domain.Settings) error) (domain.Settings, error) {
	s.locks[KindSettings].Lock()
	defer s.locks[KindSettings].Unlock()

	settings, err := load(ctx, s, KindSettings, domain.DefaultSettings)
	if err != nil {
		return settings, err
	}
	if err := fn(&settings); err != nil {
		return settings, err
	}
	return settings, s.write(ctx, KindSettings, settings)
}

// Analytics returns the analytics singleton
func (s *FileStore) Analytics(ctx context.Context) (domain.Analytics, error) {
	s.locks[KindAnalytics].Lock()
	defer s.locks[KindAnalytics].Unlock()
	return load(ctx, s, KindAnalytics, domain.DefaultAnalytics)
}

// UpdateAnalytics runs fn over the current analytics and writes the result
func (s *FileStore) UpdateAnalytics(ctx context.Context, fn func(*domain.Analytics) error) error {
	s.locks[KindAnalytics].Lock()
	defer s.locks[KindAnalytics].Unlock()

	analytics, err := load(ctx, s, KindAnalytics, domain.DefaultAnalytics)
	if err != nil {
		return err
	}
	if analytics.UniqueVisitors == nil {
		analytics.UniqueVisitors = map[string][]string{}
	}
	if err := fn(&analytics); err != nil {
		return err
	}
	return s.write(ctx, KindAnalytics, analytics)
}

// SpamContacts returns contacts moved out of the main collection as spam
func (s *FileStore) SpamContacts(ctx context.Context) ([]domain.Contact, error) {
	s.locks[KindSpam].Lock()
	defer s.locks[KindSpam].Unlock()
	return load(ctx, s, KindSpam, emptyContacts)
}

// AppendSpam adds contact to the spam document
func (s *FileStore) AppendSpam(ctx context.Context, contact domain.Contact) error {
	s.locks[KindSpam].Lock()
	defer s.locks[KindSpam].Unlock()

	spam, err := load(ctx, s, KindSpam, emptyContacts)
	if err != nil {
		return err
	}
	return s.write(ctx, KindSpam, append(spam, contact))
}

// load reads kind, writing and returning the default document when the file
// does not exist yet. Callers hold the kind's lock.
func load[T any](ctx context.Context, s *FileStore, kind Kind, def func() T) (T, error) {
	var doc T
	if err := ctx.Err(); err != nil {
		return doc, err
	}

	data, err := os.ReadFile(s.Path(kind))
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			doc = def()
			s.log.WithField("kind", string(kind)).Info("Document missing, writing defaults")
			return doc, s.write(ctx, kind, doc)
		}
		observe(kind, "read", err)
		return doc, fmt.Errorf("%w: read %s: %v", ErrIO, kind, err)
	}

	if err := json.Unmarshal(data, &doc); err != nil {
		observe(kind, "read", err)
		return doc, fmt.Errorf("%w: %s: %v", ErrParse, kind, err)
	}
	observe(kind, "read", nil)
	return doc, nil
}

func (s *FileStore) write(ctx context.Context, kind Kind, doc interface{}) error {
	err := s.writeFile(ctx, s.Path(kind), doc)
	observe(kind, "write", err)
	return err
}

// writeFile replaces path atomically: the document goes to a temp file that
// is synced and then renamed over the target.
func (s *FileStore) writeFile(ctx context.Context, path string, doc interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", ErrIO, filepath.Base(path), err)
	}

	tmp := path + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	if _, err = file.Write(data); err != nil {
		file.Close()
		os.Remove(tmp)
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(tmp)
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	if err = file.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	if err = os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	return nil
}

func observe(kind Kind, op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	metrics.StoreOperations.WithLabelValues(string(kind), op, result).Inc()
}

func emptyContacts() []domain.Contact {
	return []domain.Contact{}
}

func nonNilContacts(contacts []domain.Contact) []domain.Contact {
	if contacts == nil {
		return []domain.Contact{}
	}
	return contacts
}
