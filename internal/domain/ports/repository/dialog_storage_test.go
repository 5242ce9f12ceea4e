//go:build !integration

package repository

import "testing"

func TestStorageKeyString(t *testing.T) {
	t.Run("without thread", func(t *testing.T) {
		key := StorageKey{BotID: 42, ChatID: 200, UserID: 100, Destiny: "dialog:context:i1"}
		if got, want := key.String(), "42:200:100:dialog:context:i1"; got != want {
			t.Errorf("expected %q, got %q", want, got)
		}
	})

	t.Run("with thread", func(t *testing.T) {
		thread := int64(7)
		key := StorageKey{BotID: 42, ChatID: 200, UserID: 100, ThreadID: &thread, Destiny: "dialog:stack:"}
		if got, want := key.String(), "42:200:100:7:dialog:stack:"; got != want {
			t.Errorf("expected %q, got %q", want, got)
		}
	})
}
