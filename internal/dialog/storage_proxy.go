// Package dialog persists conversational dialog state. StorageProxy
// is the sole gateway between typed dialog entities and the raw
// key-value store: it owns key construction, (de)serialization, and
// resolution of stored state identifiers against the registered state
// groups.
package dialog

import (
	"context"
	"fmt"
	"strings"

	"telegram-dialog-state/internal/domain"
	"telegram-dialog-state/internal/domain/model"
	"telegram-dialog-state/internal/domain/ports/repository"
)

const (
	keyNamespace = "dialog"
	kindContext  = "context"
	kindStack    = "stack"
)

// StorageProxy is scoped to one conversation (bot, chat, user,
// optional thread). It holds no entity data between calls: every load
// re-reads the store and every save re-writes it, exactly one store
// call per operation. Concurrent updates to the same key are the
// caller's problem; the proxy adds no locking, caching, or retries.
type StorageProxy struct {
	storage     repository.DialogStorage
	userID      int64
	chatID      int64
	chatType    string
	threadID    *int64
	botID       int64
	stateGroups model.StateGroups
}

func NewStorageProxy(
	storage repository.DialogStorage,
	userID, chatID int64,
	chatType string,
	threadID *int64,
	botID int64,
	stateGroups model.StateGroups,
) *StorageProxy {
	return &StorageProxy{
		storage:     storage,
		userID:      userID,
		chatID:      chatID,
		chatType:    chatType,
		threadID:    threadID,
		botID:       botID,
		stateGroups: stateGroups,
	}
}

// LoadContext reads the context stored for intentID. A missing or
// tombstoned record is an error: a referenced dialog instance that no
// longer exists.
func (p *StorageProxy) LoadContext(ctx context.Context, intentID string) (*model.Context, error) {
	data, err := p.storage.GetData(ctx, p.contextKey(intentID))
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("context not found for intent id %q: %w", intentID, domain.ErrUnknownIntent)
	}
	return p.contextFromMap(data)
}

// SaveContext writes the context under its intent id. A nil context is
// a no-op.
func (p *StorageProxy) SaveContext(ctx context.Context, c *model.Context) error {
	if c == nil {
		return nil
	}
	return p.storage.SetData(ctx, p.contextKey(c.ID), contextToMap(c))
}

// RemoveContext tombstones the record for intentID by writing an empty
// mapping. The store's own delete semantics, if any, are not relied on.
func (p *StorageProxy) RemoveContext(ctx context.Context, intentID string) error {
	return p.storage.SetData(ctx, p.contextKey(intentID), map[string]any{})
}

// LoadStack reads the stack stored for stackID. Unlike contexts, a
// missing stack is a normal initial condition and yields a fresh empty
// stack rather than an error.
func (p *StorageProxy) LoadStack(ctx context.Context, stackID string) (*model.Stack, error) {
	data, err := p.storage.GetData(ctx, p.stackKey(stackID))
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return model.NewStack(stackID), nil
	}
	return stackFromMap(data)
}

// LoadDefaultStack loads the conversation's primary stack.
func (p *StorageProxy) LoadDefaultStack(ctx context.Context) (*model.Stack, error) {
	return p.LoadStack(ctx, model.DefaultStackID)
}

// SaveStack writes the stack under its id. A nil stack is a no-op. A
// logically empty stack (no intents and no last message id) is written
// as a tombstone regardless of what else it carries, so storage does
// not accumulate dead stacks.
func (p *StorageProxy) SaveStack(ctx context.Context, s *model.Stack) error {
	if s == nil {
		return nil
	}
	if s.Empty() && s.LastMessageID == nil {
		return p.storage.SetData(ctx, p.stackKey(s.ID), map[string]any{})
	}
	return p.storage.SetData(ctx, p.stackKey(s.ID), stackToMap(s))
}

// RemoveStack tombstones the record for stackID.
func (p *StorageProxy) RemoveStack(ctx context.Context, stackID string) error {
	return p.storage.SetData(ctx, p.stackKey(stackID), map[string]any{})
}

func (p *StorageProxy) contextKey(intentID string) repository.StorageKey {
	return p.key(fmt.Sprintf("%s:%s:%s", keyNamespace, kindContext, intentID))
}

func (p *StorageProxy) stackKey(stackID string) repository.StorageKey {
	return p.key(fmt.Sprintf("%s:%s:%s", keyNamespace, kindStack, stackID))
}

func (p *StorageProxy) key(destiny string) repository.StorageKey {
	return repository.StorageKey{
		BotID:    p.botID,
		ChatID:   p.chatID,
		UserID:   p.userID,
		ThreadID: p.threadID,
		Destiny:  destiny,
	}
}

// resolveState maps a stored identifier ("<group>:<name>", or just
// "<group>") back to the canonical registered instance. The group is
// the text before the first separator; members are scanned in
// declaration order and matched on the full identifier.
func (p *StorageProxy) resolveState(text string) (*model.State, error) {
	group, _, _ := strings.Cut(text, ":")
	states, ok := p.stateGroups[group]
	if !ok {
		return nil, fmt.Errorf("unknown state group %q: %w", group, domain.ErrUnknownState)
	}
	for _, st := range states {
		if st.ID() == text {
			return st, nil
		}
	}
	return nil, fmt.Errorf("unknown state %q: %w", text, domain.ErrUnknownState)
}
