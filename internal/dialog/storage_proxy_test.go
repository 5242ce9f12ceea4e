//go:build !integration

package dialog

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"sync"
	"testing"

	"telegram-dialog-state/internal/domain"
	"telegram-dialog-state/internal/domain/model"
	"telegram-dialog-state/internal/domain/ports/repository"
)

// memStorage is a small in-memory DialogStorage used by unit tests.
// It round-trips every mapping through JSON, matching the numeric
// widening both real backends apply.
type memStorage struct {
	mu     sync.RWMutex
	store  map[string][]byte
	writes int
	setErr error
}

func newMemStorage() *memStorage {
	return &memStorage{store: make(map[string][]byte)}
}

func (m *memStorage) GetData(ctx context.Context, key repository.StorageKey) (map[string]any, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	raw, ok := m.store[key.String()]
	if !ok {
		return map[string]any{}, nil
	}
	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, err
	}
	return data, nil
}

func (m *memStorage) SetData(ctx context.Context, key repository.StorageKey, data map[string]any) error {
	if m.setErr != nil {
		return m.setErr
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store[key.String()] = raw
	m.writes++
	return nil
}

func testRegistry() model.StateGroups {
	return model.StateGroups{
		"Main": model.NewStateGroup("Main", "step1", "step2"),
	}
}

func newTestProxy(storage repository.DialogStorage) *StorageProxy {
	threadID := int64(7)
	return NewStorageProxy(storage, 100, 200, "private", &threadID, 42, testRegistry())
}

func TestLoadContext(t *testing.T) {
	ctx := context.Background()

	t.Run("should fail with unknown intent when nothing is stored", func(t *testing.T) {
		proxy := newTestProxy(newMemStorage())
		c, err := proxy.LoadContext(ctx, "x")
		if c != nil {
			t.Errorf("expected nil context, got %+v", c)
		}
		if !errors.Is(err, domain.ErrUnknownIntent) {
			t.Fatalf("expected ErrUnknownIntent, got %v", err)
		}
	})

	t.Run("should round-trip a saved context", func(t *testing.T) {
		proxy := newTestProxy(newMemStorage())
		state := proxy.stateGroups["Main"][1]
		saved := model.NewContext("intent-1", model.DefaultStackID, state)
		saved.DialogData["answer"] = "blue"

		if err := proxy.SaveContext(ctx, saved); err != nil {
			t.Fatalf("save: %v", err)
		}
		loaded, err := proxy.LoadContext(ctx, "intent-1")
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if loaded.ID != "intent-1" || loaded.StackID != model.DefaultStackID {
			t.Errorf("identity fields not preserved: %+v", loaded)
		}
		if loaded.State != state {
			t.Errorf("expected the canonical registry state instance, got %+v", loaded.State)
		}
		if loaded.DialogData["answer"] != "blue" {
			t.Errorf("dialog data not preserved: %+v", loaded.DialogData)
		}
	})

	t.Run("should fail with unknown state for an unregistered group", func(t *testing.T) {
		proxy := newTestProxy(newMemStorage())
		ghost := &model.State{Group: "Ghost", Name: "x"}
		if err := proxy.SaveContext(ctx, model.NewContext("intent-2", "", ghost)); err != nil {
			t.Fatalf("save: %v", err)
		}
		_, err := proxy.LoadContext(ctx, "intent-2")
		if !errors.Is(err, domain.ErrUnknownState) {
			t.Fatalf("expected ErrUnknownState, got %v", err)
		}
	})

	t.Run("should not collide with a stack of the same id", func(t *testing.T) {
		proxy := newTestProxy(newMemStorage())
		stack := model.NewStack("shared")
		stack.Push("some-intent")
		if err := proxy.SaveStack(ctx, stack); err != nil {
			t.Fatalf("save stack: %v", err)
		}
		if _, err := proxy.LoadContext(ctx, "shared"); !errors.Is(err, domain.ErrUnknownIntent) {
			t.Fatalf("expected ErrUnknownIntent, got %v", err)
		}
	})
}

func TestSaveContext(t *testing.T) {
	t.Run("nil context is a no-op", func(t *testing.T) {
		storage := newMemStorage()
		proxy := newTestProxy(storage)
		if err := proxy.SaveContext(context.Background(), nil); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if storage.writes != 0 {
			t.Errorf("expected no writes, got %d", storage.writes)
		}
	})

	t.Run("storage failure propagates unchanged", func(t *testing.T) {
		storage := newMemStorage()
		storage.setErr = errors.New("connection refused")
		proxy := newTestProxy(storage)
		state := proxy.stateGroups["Main"][0]
		err := proxy.SaveContext(context.Background(), model.NewContext("intent-1", "", state))
		if !errors.Is(err, storage.setErr) {
			t.Fatalf("expected the storage error, got %v", err)
		}
	})
}

func TestRemoveContext(t *testing.T) {
	ctx := context.Background()
	storage := newMemStorage()
	proxy := newTestProxy(storage)
	state := proxy.stateGroups["Main"][0]

	if err := proxy.SaveContext(ctx, model.NewContext("intent-1", "", state)); err != nil {
		t.Fatalf("save: %v", err)
	}
	// Tombstoning twice must look exactly like tombstoning once.
	for i := 0; i < 2; i++ {
		if err := proxy.RemoveContext(ctx, "intent-1"); err != nil {
			t.Fatalf("remove #%d: %v", i+1, err)
		}
	}
	if _, err := proxy.LoadContext(ctx, "intent-1"); !errors.Is(err, domain.ErrUnknownIntent) {
		t.Fatalf("expected ErrUnknownIntent after remove, got %v", err)
	}
}

func TestLoadStack(t *testing.T) {
	ctx := context.Background()

	t.Run("missing stack is a fresh empty stack, not an error", func(t *testing.T) {
		proxy := newTestProxy(newMemStorage())
		stack, err := proxy.LoadStack(ctx, "y")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if stack.ID != "y" || !stack.Empty() || stack.AccessSettings != nil {
			t.Errorf("expected fresh stack with only id set, got %+v", stack)
		}
	})

	t.Run("should round-trip a stack with access settings", func(t *testing.T) {
		proxy := newTestProxy(newMemStorage())
		status := model.MemberStatusAdministrator
		msgID := int64(555)
		saved := model.NewStack(model.DefaultStackID)
		saved.Push("intent-1")
		saved.Push("intent-2")
		saved.LastMessageID = &msgID
		saved.LastReplyKeyboard = true
		saved.AccessSettings = &model.AccessSettings{
			UserIDs:      []int64{1, 2},
			MemberStatus: &status,
		}

		if err := proxy.SaveStack(ctx, saved); err != nil {
			t.Fatalf("save: %v", err)
		}
		loaded, err := proxy.LoadDefaultStack(ctx)
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if !reflect.DeepEqual(loaded.Intents, []string{"intent-1", "intent-2"}) {
			t.Errorf("intents not preserved: %v", loaded.Intents)
		}
		if loaded.LastMessageID == nil || *loaded.LastMessageID != 555 {
			t.Errorf("last message id not preserved: %v", loaded.LastMessageID)
		}
		if !loaded.LastReplyKeyboard {
			t.Error("last reply keyboard flag not preserved")
		}
		if loaded.AccessSettings == nil {
			t.Fatal("expected access settings to survive the round trip")
		}
		if !reflect.DeepEqual(loaded.AccessSettings.UserIDs, []int64{1, 2}) {
			t.Errorf("user ids not preserved: %v", loaded.AccessSettings.UserIDs)
		}
		if loaded.AccessSettings.MemberStatus == nil || *loaded.AccessSettings.MemberStatus != model.MemberStatusAdministrator {
			t.Errorf("member status not preserved: %v", loaded.AccessSettings.MemberStatus)
		}
	})

	t.Run("absent access settings stay absent", func(t *testing.T) {
		proxy := newTestProxy(newMemStorage())
		saved := model.NewStack("s")
		saved.Push("intent-1")
		if err := proxy.SaveStack(ctx, saved); err != nil {
			t.Fatalf("save: %v", err)
		}
		loaded, err := proxy.LoadStack(ctx, "s")
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if loaded.AccessSettings != nil {
			t.Errorf("expected absent access settings, got %+v", loaded.AccessSettings)
		}
	})
}

func TestSaveStack(t *testing.T) {
	ctx := context.Background()

	t.Run("nil stack is a no-op", func(t *testing.T) {
		storage := newMemStorage()
		proxy := newTestProxy(storage)
		if err := proxy.SaveStack(ctx, nil); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if storage.writes != 0 {
			t.Errorf("expected no writes, got %d", storage.writes)
		}
	})

	t.Run("logically empty stack is tombstoned even with settings", func(t *testing.T) {
		proxy := newTestProxy(newMemStorage())
		status := model.MemberStatusCreator
		stack := model.NewStack("s")
		stack.AccessSettings = &model.AccessSettings{UserIDs: []int64{9}, MemberStatus: &status}

		if err := proxy.SaveStack(ctx, stack); err != nil {
			t.Fatalf("save: %v", err)
		}
		loaded, err := proxy.LoadStack(ctx, "s")
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if !loaded.Empty() || loaded.AccessSettings != nil {
			t.Errorf("expected a fresh stack after tombstoning, got %+v", loaded)
		}
	})

	t.Run("a set last message id keeps the stack alive", func(t *testing.T) {
		proxy := newTestProxy(newMemStorage())
		msgID := int64(13)
		stack := model.NewStack("s")
		stack.LastMessageID = &msgID

		if err := proxy.SaveStack(ctx, stack); err != nil {
			t.Fatalf("save: %v", err)
		}
		loaded, err := proxy.LoadStack(ctx, "s")
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if loaded.LastMessageID == nil || *loaded.LastMessageID != 13 {
			t.Errorf("expected persisted last message id, got %v", loaded.LastMessageID)
		}
	})
}

func TestRemoveStack(t *testing.T) {
	ctx := context.Background()
	proxy := newTestProxy(newMemStorage())
	stack := model.NewStack("s")
	stack.Push("intent-1")
	if err := proxy.SaveStack(ctx, stack); err != nil {
		t.Fatalf("save: %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := proxy.RemoveStack(ctx, "s"); err != nil {
			t.Fatalf("remove #%d: %v", i+1, err)
		}
	}
	loaded, err := proxy.LoadStack(ctx, "s")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !loaded.Empty() {
		t.Errorf("expected empty stack after remove, got %+v", loaded)
	}
}

func TestResolveState(t *testing.T) {
	proxy := newTestProxy(newMemStorage())

	t.Run("resolves to the canonical registry instance", func(t *testing.T) {
		state, err := proxy.resolveState("Main:step1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if state != proxy.stateGroups["Main"][0] {
			t.Errorf("expected identical pointer into the registry, got %+v", state)
		}
	})

	t.Run("unknown member of a known group", func(t *testing.T) {
		if _, err := proxy.resolveState("Main:step9"); !errors.Is(err, domain.ErrUnknownState) {
			t.Fatalf("expected ErrUnknownState, got %v", err)
		}
	})

	t.Run("unknown group", func(t *testing.T) {
		if _, err := proxy.resolveState("Other:step1"); !errors.Is(err, domain.ErrUnknownState) {
			t.Fatalf("expected ErrUnknownState, got %v", err)
		}
	})
}

func TestParseAccessSettings(t *testing.T) {
	t.Run("full record", func(t *testing.T) {
		// Shapes as they come back from a JSON codec.
		raw := map[string]any{
			"user_ids":      []any{float64(1), float64(2)},
			"member_status": "administrator",
			"custom":        nil,
		}
		settings, err := parseAccessSettings(raw)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !reflect.DeepEqual(settings.UserIDs, []int64{1, 2}) {
			t.Errorf("user ids: %v", settings.UserIDs)
		}
		if settings.MemberStatus == nil || *settings.MemberStatus != model.MemberStatusAdministrator {
			t.Errorf("member status: %v", settings.MemberStatus)
		}
		if settings.Custom != nil {
			t.Errorf("custom should pass through as nil, got %v", settings.Custom)
		}
	})

	t.Run("missing user ids default to an empty list", func(t *testing.T) {
		settings, err := parseAccessSettings(map[string]any{"custom": "x"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if settings.UserIDs == nil || len(settings.UserIDs) != 0 {
			t.Errorf("expected empty user id list, got %v", settings.UserIDs)
		}
	})

	t.Run("absent and empty raw values parse to absent", func(t *testing.T) {
		for name, raw := range map[string]any{"nil": nil, "empty map": map[string]any{}} {
			settings, err := parseAccessSettings(raw)
			if err != nil {
				t.Fatalf("%s: expected no error, got %v", name, err)
			}
			if settings != nil {
				t.Errorf("%s: expected absent settings, got %+v", name, settings)
			}
		}
	})

	t.Run("dumping absent settings round-trips to absent", func(t *testing.T) {
		settings, err := parseAccessSettings(dumpAccessSettings(nil))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if settings != nil {
			t.Errorf("expected absent settings, got %+v", settings)
		}
	})

	t.Run("unrecognized member status fails loudly", func(t *testing.T) {
		_, err := parseAccessSettings(map[string]any{"member_status": "overlord"})
		if !errors.Is(err, domain.ErrInvalidArgument) {
			t.Fatalf("expected ErrInvalidArgument, got %v", err)
		}
	})
}
