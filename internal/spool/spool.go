// Package spool implements a durable on-disk queue for tracking requests.
//
// Each queued hit lives in its own JSON or YAML file under the spool
// directory; filenames sort chronologically, so draining the directory in
// name order preserves submission order. Files are only removed after the
// batch containing them was accepted by the tracking endpoint, which makes
// the spool the SDK's retry story: a failed ship leaves everything in
// place for the next pass.
package spool

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"gopkg.in/yaml.v3"

	matomo "github.com/GesetzeFinden-at/matomo-sdk"
	sdkerrors "github.com/GesetzeFinden-at/matomo-sdk/internal/errors"
)

// seq disambiguates files created within the same nanosecond.
var seq atomic.Uint64

// Spool is a hit queue rooted at one directory.
type Spool struct {
	dir string
}

// Entry is one queued hit together with the file holding it.
type Entry struct {
	File   string
	Params matomo.Params
}

// New opens (creating if needed) a spool at dir.
func New(dir string) (*Spool, error) {
	if dir == "" {
		return nil, sdkerrors.NewValidationError("missing_spool_dir", "spool directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, sdkerrors.NewIOError("spool_create", "cannot create spool directory %s", dir).WithCause(err)
	}
	return &Spool{dir: dir}, nil
}

// Dir returns the spool directory.
func (s *Spool) Dir() string { return s.dir }

// Add queues one hit and returns the created filename.
func (s *Spool) Add(p matomo.Params) (string, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return "", sdkerrors.NewIOError("spool_encode", "cannot encode hit").WithCause(err)
	}

	name := fmt.Sprintf("hit-%020d-%06d.json", time.Now().UnixNano(), seq.Add(1))
	path := filepath.Join(s.dir, name)

	// Write-then-rename so the watcher never reads a half-written file.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", sdkerrors.NewIOError("spool_write", "cannot write spool file %s", tmp).WithCause(err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return "", sdkerrors.NewIOError("spool_write", "cannot finalize spool file %s", path).WithCause(err)
	}

	return name, nil
}

// Pending lists queued files in submission order.
func (s *Spool) Pending() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, sdkerrors.NewIOError("spool_read", "cannot read spool directory %s", s.dir).WithCause(err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if isHitFile(name) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// Load reads the queued hit stored in the named file.
func (s *Spool) Load(name string) (matomo.Params, error) {
	path := filepath.Join(s.dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		return matomo.Params{}, sdkerrors.NewIOError("spool_read", "cannot read spool file %s", path).WithCause(err)
	}
	return decodeHit(data, name)
}

// Remove deletes a shipped file.
func (s *Spool) Remove(name string) error {
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil {
		return sdkerrors.NewIOError("spool_remove", "cannot remove spool file %s", name).WithCause(err)
	}
	return nil
}

func isHitFile(name string) bool {
	if strings.HasSuffix(name, ".tmp") {
		return false
	}
	ext := filepath.Ext(name)
	return ext == ".json" || ext == ".yml" || ext == ".yaml"
}

func decodeHit(data []byte, name string) (matomo.Params, error) {
	var p matomo.Params
	var err error
	switch filepath.Ext(name) {
	case ".yml", ".yaml":
		err = yaml.Unmarshal(data, &p)
	default:
		err = json.Unmarshal(data, &p)
	}
	if err != nil {
		return matomo.Params{}, sdkerrors.NewIOError("spool_decode", "spool file %s is not a valid hit", name).WithCause(err)
	}
	return p, nil
}

// DecodeHitList parses a standalone file holding a list of hits, as
// consumed by the CLI's bulk command. JSON and YAML are recognized by the
// file extension.
func DecodeHitList(path string) ([]matomo.Params, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, sdkerrors.NewIOError("hit_list_read", "cannot read %s", path).WithCause(err)
	}

	var hits []matomo.Params
	switch filepath.Ext(path) {
	case ".yml", ".yaml":
		err = yaml.Unmarshal(data, &hits)
	default:
		err = json.Unmarshal(data, &hits)
	}
	if err != nil {
		return nil, sdkerrors.NewIOError("hit_list_decode", "%s is not a valid hit list", path).WithCause(err)
	}
	return hits, nil
}
