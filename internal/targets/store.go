package targets

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgraph-io/badger/v4"
)

// Store persists the associations of a session.
type Store interface {
	// Load returns the persisted associations, empty when none exist.
	Load(session string) (Associations, error)
	// Save replaces the persisted associations.
	Save(session string, a Associations) error
}

// FileStore keeps one text file per session in Dir.
type FileStore struct {
	// Dir is the directory holding session files, os.TempDir() when empty.
	Dir string
}

// Path returns the file backing session.
func (s FileStore) Path(session string) string {
	dir := s.Dir
	if dir == "" {
		dir = os.TempDir()
	}

	return filepath.Join(dir, "mixin-targetdb-"+session+".txt")
}

// Load reads the session file. A missing file is not an error.
func (s FileStore) Load(session string) (Associations, error) {
	f, err := os.Open(s.Path(session))
	if errors.Is(err, os.ErrNotExist) {
		return Associations{}, nil
	}

	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Decode(f)
}

// Save writes the session file.
func (s FileStore) Save(session string, a Associations) error {
	var buf bytes.Buffer
	if err := Encode(&buf, a); err != nil {
		return err
	}

	path := s.Path(session)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create store directory: %w", err)
	}

	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// BadgerConfig configures a BadgerStore.
type BadgerConfig struct {
	// Path is the database directory. Ignored when InMemory is true.
	Path string
	// InMemory keeps everything in memory.
	InMemory bool
	// Logger receives badger's internal logging; nil disables it.
	Logger *slog.Logger
}

// BadgerStore keeps one key per target under "targets/<session>/".
type BadgerStore struct {
	db *badger.DB
}

type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// OpenBadgerStore opens the database described by cfg. The caller must Close
// the store.
func OpenBadgerStore(cfg BadgerConfig) (*BadgerStore, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("path is required for persistent target store")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
			return nil, fmt.Errorf("create database directory %s: %w", cfg.Path, err)
		}

		opts = badger.DefaultOptions(cfg.Path)
	}

	opts = opts.WithNumVersionsToKeep(1)
	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}

	return &BadgerStore{db: db}, nil
}

// Close closes the database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

func sessionPrefix(session string) []byte {
	return []byte("targets/" + session + "/")
}

// Load reads every target key of the session.
func (s *BadgerStore) Load(session string) (Associations, error) {
	out := make(Associations)
	prefix := sessionPrefix(session)

	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			target := strings.TrimPrefix(string(item.Key()), string(prefix))

			err := item.Value(func(val []byte) error {
				out[target] = strings.Split(string(val), ",")
				return nil
			})
			if err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", session, err)
	}

	return out, nil
}

// Save replaces every target key of the session.
func (s *BadgerStore) Save(session string, a Associations) error {
	prefix := sessionPrefix(session)

	err := s.db.Update(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false

		var stale [][]byte

		it := txn.NewIterator(opts)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			stale = append(stale, it.Item().KeyCopy(nil))
		}
		it.Close()

		for _, key := range stale {
			if err := txn.Delete(key); err != nil {
				return err
			}
		}

		for _, target := range a.Targets() {
			if len(a[target]) == 0 {
				continue
			}

			key := append(append([]byte{}, prefix...), target...)
			if err := txn.Set(key, []byte(strings.Join(a[target], ","))); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("save session %s: %w", session, err)
	}

	return nil
}
