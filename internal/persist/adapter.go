// Package persist reads and writes the transaction list to a key-value
// string store under a fixed key, encoded as a JSON array.
package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"budget/internal/core"
)

// Key is the fixed key holding the serialized transaction list.
const Key = "transactions"

const corruptPrefix = Key + ".corrupt."

// ErrListUnsupported is returned by Quarantined when the backend cannot list keys.
var ErrListUnsupported = errors.New("storage backend cannot list keys")

// ErrCorruptState is returned by Load when stored content does not parse.
var ErrCorruptState = errors.New("persisted transactions are corrupt")

// CorruptError carries the raw unparseable content so it can be preserved.
type CorruptError struct {
	Raw string
	Err error
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("%v: %v", ErrCorruptState, e.Err)
}

func (e *CorruptError) Unwrap() []error { return []error{ErrCorruptState, e.Err} }

// Adapter persists the full transaction sequence, overwriting it on every save.
type Adapter struct {
	kv  KV
	now func() time.Time
}

func NewAdapter(kv KV) *Adapter {
	return &Adapter{kv: kv, now: time.Now}
}

// Load returns the persisted sequence. An absent key yields an empty
// sequence and no error; unparseable content yields an empty sequence and a
// *CorruptError. Records stored without an id receive a fresh one.
func (a *Adapter) Load(ctx context.Context) ([]core.Transaction, error) {
	raw, ok, err := a.kv.Get(ctx, Key)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", Key, err)
	}
	if !ok {
		return []core.Transaction{}, nil
	}

	var ts []core.Transaction
	if err := json.Unmarshal([]byte(raw), &ts); err != nil {
		return []core.Transaction{}, &CorruptError{Raw: raw, Err: err}
	}
	if ts == nil {
		// "null" is what an empty list looked like to some older writers.
		ts = []core.Transaction{}
	}
	for i := range ts {
		if ts[i].ID == "" {
			ts[i].ID = core.NewID()
		}
	}
	return ts, nil
}

// Save serializes ts and overwrites the stored value.
func (a *Adapter) Save(ctx context.Context, ts []core.Transaction) error {
	if ts == nil {
		ts = []core.Transaction{}
	}
	body, err := json.Marshal(ts)
	if err != nil {
		return fmt.Errorf("encode transactions: %w", err)
	}
	if err := a.kv.Set(ctx, Key, string(body)); err != nil {
		return fmt.Errorf("write %s: %w", Key, err)
	}
	return nil
}

// Quarantine copies raw content to a timestamped side key and returns it.
func (a *Adapter) Quarantine(ctx context.Context, raw string) (string, error) {
	key := corruptPrefix + strconv.FormatInt(a.now().Unix(), 10)
	if err := a.kv.Set(ctx, key, raw); err != nil {
		return "", fmt.Errorf("write %s: %w", key, err)
	}
	return key, nil
}

// Quarantined lists the keys written by Quarantine, oldest first.
func (a *Adapter) Quarantined(ctx context.Context) ([]string, error) {
	l, ok := a.kv.(Lister)
	if !ok {
		return nil, ErrListUnsupported
	}
	keys, err := l.Keys(ctx)
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}
	var out []string
	for _, k := range keys {
		if strings.HasPrefix(k, corruptPrefix) {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out, nil
}

// Ping checks the backing store when it supports health checks.
func (a *Adapter) Ping(ctx context.Context) error {
	if p, ok := a.kv.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}
