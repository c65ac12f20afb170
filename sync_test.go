package patrimonio

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSyncPull(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/sync" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"snapshots":[{"id":1}],"targets":null,"lastModified":"2026-03-12T10:00:00.000Z"}`))
	}))
	defer server.Close()

	storage := MemStorage{}
	storage.Write(KeyTargets, []byte(`{"Cripto":{"target":40}}`))

	client := NewSyncClient(server.URL, storage)
	payload, err := client.Pull(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if payload.LastModified != "2026-03-12T10:00:00.000Z" {
		t.Errorf("lastModified = %q", payload.LastModified)
	}

	// The set key lands in storage.
	data, ok, _ := storage.Read(KeySnapshots)
	if !ok || string(data) != `[{"id":1}]` {
		t.Errorf("snapshots not stored: %q (ok=%v)", data, ok)
	}
	// Null means unset on the server: the local key stays as it was.
	data, ok, _ = storage.Read(KeyTargets)
	if !ok || !strings.Contains(string(data), "Cripto") {
		t.Errorf("null field must not clobber the local key: %q", data)
	}
}

func TestSyncPush(t *testing.T) {
	var got SyncPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/sync" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Error(err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true,"lastModified":"2026-03-12T10:05:00.000Z"}`))
	}))
	defer server.Close()

	storage := MemStorage{}
	storage.Write(KeySnapshots, []byte(`[{"id":7}]`))

	client := NewSyncClient(server.URL, storage)
	stamp, err := client.Push(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stamp != "2026-03-12T10:05:00.000Z" {
		t.Errorf("stamp = %q", stamp)
	}
	if string(got.Snapshots) != `[{"id":7}]` {
		t.Errorf("pushed snapshots = %q", got.Snapshots)
	}
	// Unset local keys are omitted, not sent as empty values.
	if got.Targets != nil || got.TargetsMeta != nil {
		t.Errorf("unset keys leaked into the payload: %+v", got)
	}
}

func TestSyncRemoteError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"database unavailable"}`))
	}))
	defer server.Close()

	client := NewSyncClient(server.URL, MemStorage{})
	if _, err := client.Pull(context.Background()); err == nil || !strings.Contains(err.Error(), "database unavailable") {
		t.Errorf("pull error = %v, want the server message", err)
	}
	if _, err := client.Push(context.Background()); err == nil || !strings.Contains(err.Error(), "database unavailable") {
		t.Errorf("push error = %v, want the server message", err)
	}
}

func TestSyncPushAsyncNotifies(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok":true,"lastModified":"x"}`))
	}))
	defer server.Close()

	client := NewSyncClient(server.URL, MemStorage{})
	done := make(chan error, 1)
	client.PushAsync(func(err error) { done <- err })
	if err := <-done; err != nil {
		t.Errorf("async push failed: %v", err)
	}
}
