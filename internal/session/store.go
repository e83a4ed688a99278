package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/medassist-labs/medchat/internal/logger"
)

// Turn is one message in a conversation, in conversation order.
type Turn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

var (
	// ErrNotFound means no file exists for the session id. Callers decide
	// whether that is an error (retrieval) or a fresh session (chat).
	ErrNotFound = errors.New("session: not found")
	// ErrInvalidID rejects ids that are not a clean single path element.
	ErrInvalidID = errors.New("session: invalid id")
)

// Store persists one JSON file per session: a UTF-8 array of turns,
// overwritten wholesale on every save. There is no locking; concurrent
// writers to the same session race and the last write wins.
type Store struct {
	dir       string
	backupDir string
}

func NewStore(dir, backupDir string) *Store {
	return &Store{dir: dir, backupDir: backupDir}
}

// Load reads the stored turns for a session. A missing file returns
// ErrNotFound. An unparsable file is moved into the backup directory under a
// timestamped name and an empty sequence is returned: the conversation
// continues as if new.
func (s *Store) Load(id string) ([]Turn, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read session %s: %w", id, err)
	}

	var turns []Turn
	if err := json.Unmarshal(data, &turns); err != nil {
		backup, qerr := s.quarantine(id)
		if qerr != nil {
			return nil, fmt.Errorf("quarantine session %s: %w", id, qerr)
		}
		logger.Warn("session file unparsable, moved to backup",
			"session", id,
			"backup", backup,
			"error", err)
		return []Turn{}, nil
	}
	return turns, nil
}

// Save writes the full turn sequence, replacing any prior content. The data
// lands in a temp file first and is renamed into place so readers never see a
// partial record.
func (s *Store) Save(id string, turns []Turn) error {
	if err := checkID(id); err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}

	if turns == nil {
		turns = []Turn{}
	}
	data, err := json.MarshalIndent(turns, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session %s: %w", id, err)
	}

	tmp, err := os.CreateTemp(s.dir, "."+id+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write session %s: %w", id, err)
	}
	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("chmod session %s: %w", id, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close session %s: %w", id, err)
	}
	if err := os.Rename(tmp.Name(), s.path(id)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("save session %s: %w", id, err)
	}
	return nil
}

// List returns the session ids present on disk, in filename order.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	var ids []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}
	return ids, nil
}

// quarantine moves a session file into the backup directory. The name embeds
// the session id and a nanosecond timestamp so repeated failures never collide.
func (s *Store) quarantine(id string) (string, error) {
	if err := os.MkdirAll(s.backupDir, 0755); err != nil {
		return "", fmt.Errorf("create backup dir: %w", err)
	}
	backup := filepath.Join(s.backupDir, fmt.Sprintf("%s_%d.json", id, time.Now().UnixNano()))
	if err := os.Rename(s.path(id), backup); err != nil {
		return "", err
	}
	return backup, nil
}

func (s *Store) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}

func checkID(id string) error {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		return ErrInvalidID
	}
	return nil
}
