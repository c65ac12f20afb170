package patrimonio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// SyncPayload is the wire format of the sync endpoint: one optional field
// per logical key, plus the server's last-write stamp. A null or absent
// field means "not set", never "empty"; present fields overwrite the
// whole key on either side.
type SyncPayload struct {
	Snapshots    json.RawMessage `json:"snapshots,omitempty"`
	Targets      json.RawMessage `json:"targets,omitempty"`
	TargetsMeta  json.RawMessage `json:"targetsMeta,omitempty"`
	LastModified string          `json:"lastModified,omitempty"`
}

type syncError struct {
	Error string `json:"error"`
}

// SyncClient mirrors the local storage against a remote key-value sync
// endpoint. Conflict resolution is last-write-wins per whole key; the
// single-user setup makes anything finer unnecessary.
type SyncClient struct {
	BaseURL string
	HTTP    *http.Client

	storage Storage
}

// NewSyncClient creates a client against the given base URL, e.g.
// "https://example.com/api". The endpoint is BaseURL + "/sync".
func NewSyncClient(baseURL string, storage Storage) *SyncClient {
	return &SyncClient{
		BaseURL: baseURL,
		HTTP:    &http.Client{Timeout: 15 * time.Second},
		storage: storage,
	}
}

func (c *SyncClient) url() string { return c.BaseURL + "/sync" }

// Pull downloads the remote state and overwrites the local keys that are
// set remotely. Keys the server has never seen are left untouched
// locally.
func (c *SyncClient) Pull(ctx context.Context) (SyncPayload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(), nil)
	if err != nil {
		return SyncPayload{}, err
	}
	res, err := c.HTTP.Do(req)
	if err != nil {
		return SyncPayload{}, fmt.Errorf("sync pull: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return SyncPayload{}, remoteError("pull", res)
	}

	var payload SyncPayload
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return SyncPayload{}, fmt.Errorf("sync pull: invalid response: %w", err)
	}

	for key, raw := range map[string]json.RawMessage{
		KeySnapshots:   payload.Snapshots,
		KeyTargets:     payload.Targets,
		KeyTargetsMeta: payload.TargetsMeta,
	} {
		if !isSet(raw) {
			continue
		}
		if err := c.storage.Write(key, raw); err != nil {
			return payload, fmt.Errorf("sync pull: cannot store %s: %w", key, err)
		}
	}
	return payload, nil
}

// Push uploads every locally set key, overwriting the remote copies.
// Returns the server's new last-modified stamp.
func (c *SyncClient) Push(ctx context.Context) (string, error) {
	var payload SyncPayload
	for _, f := range []struct {
		key  string
		dest *json.RawMessage
	}{
		{KeySnapshots, &payload.Snapshots},
		{KeyTargets, &payload.Targets},
		{KeyTargetsMeta, &payload.TargetsMeta},
	} {
		data, ok, err := c.storage.Read(f.key)
		if err != nil {
			return "", fmt.Errorf("sync push: cannot read %s: %w", f.key, err)
		}
		if ok {
			*f.dest = data
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.url(), bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.HTTP.Do(req)
	if err != nil {
		return "", fmt.Errorf("sync push: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return "", remoteError("push", res)
	}

	var ack struct {
		LastModified string `json:"lastModified"`
	}
	if err := json.NewDecoder(res.Body).Decode(&ack); err != nil {
		return "", fmt.Errorf("sync push: invalid response: %w", err)
	}
	return ack.LastModified, nil
}

// PushAsync pushes in the background. A save never waits on, or fails
// because of, the network; the outcome is reported through notify, which
// may be nil.
func (c *SyncClient) PushAsync(notify func(error)) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		_, err := c.Push(ctx)
		if notify != nil {
			notify(err)
		}
	}()
}

// isSet reports whether a raw field carries a value ("null" means the
// server has nothing for that key).
func isSet(raw json.RawMessage) bool {
	return len(raw) > 0 && !bytes.Equal(raw, []byte("null"))
}

func remoteError(op string, res *http.Response) error {
	var se syncError
	if err := json.NewDecoder(res.Body).Decode(&se); err == nil && se.Error != "" {
		return fmt.Errorf("sync %s: %s", op, se.Error)
	}
	return fmt.Errorf("sync %s: server returned %s", op, res.Status)
}
