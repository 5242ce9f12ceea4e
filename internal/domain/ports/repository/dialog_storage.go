package repository

import (
	"context"
	"strconv"
	"strings"
)

// StorageKey scopes one persisted record to a conversation: bot, chat,
// user, optional thread, and a destiny discriminator of the form
// "<namespace>:<kind>:<entity-id>" that keeps contexts and stacks from
// colliding with each other or with unrelated keys in a shared store.
type StorageKey struct {
	BotID    int64
	ChatID   int64
	UserID   int64
	ThreadID *int64
	Destiny  string
}

// String renders the key as a flat colon-joined string. A nil thread
// id is omitted entirely so threaded and non-threaded conversations
// can never collide.
func (k StorageKey) String() string {
	parts := make([]string, 0, 5)
	parts = append(parts,
		strconv.FormatInt(k.BotID, 10),
		strconv.FormatInt(k.ChatID, 10),
		strconv.FormatInt(k.UserID, 10),
	)
	if k.ThreadID != nil {
		parts = append(parts, strconv.FormatInt(*k.ThreadID, 10))
	}
	parts = append(parts, k.Destiny)
	return strings.Join(parts, ":")
}

// DialogStorage is the port for the external key-value store holding
// dialog records. The store persists flat mappings verbatim; it does
// not understand the schema. An empty mapping is the tombstone
// convention for "no record" — there is no delete operation and no
// cross-key transaction.
type DialogStorage interface {
	GetData(ctx context.Context, key StorageKey) (map[string]any, error)
	SetData(ctx context.Context, key StorageKey, data map[string]any) error
}
