package session_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/lumehq/chat-relay/internal/model/chat"
	"github.com/lumehq/chat-relay/internal/service/session"
)

func TestGetOrCreateSeedsSystemTurn(t *testing.T) {
	store := session.NewStore()

	conv := store.GetOrCreate("s1")
	turns := conv.Turns()
	if len(turns) != 1 {
		t.Fatalf("expected 1 seeded turn, got %d", len(turns))
	}
	if turns[0].Role != chat.RoleSystem {
		t.Fatalf("expected system turn first, got %s", turns[0].Role)
	}
	if turns[0].Content != session.SystemPrompt {
		t.Fatalf("unexpected system prompt: %q", turns[0].Content)
	}
}

func TestGetOrCreateReturnsExisting(t *testing.T) {
	store := session.NewStore()

	first := store.GetOrCreate("s1")
	first.Append(chat.NewTurn(chat.RoleUser, "hello"))

	second := store.GetOrCreate("s1")
	if second.Len() != 2 {
		t.Fatalf("expected existing conversation with 2 turns, got %d", second.Len())
	}
	if store.Len() != 1 {
		t.Fatalf("expected 1 session, got %d", store.Len())
	}
}

func TestAppendPreservesOrder(t *testing.T) {
	store := session.NewStore()
	conv := store.GetOrCreate("s1")

	conv.Append(chat.NewTurn(chat.RoleUser, "first question"))
	conv.Append(chat.NewTurn(chat.RoleAssistant, "first answer"))
	conv.Append(chat.NewTurn(chat.RoleUser, "second question"))
	conv.Append(chat.NewTurn(chat.RoleAssistant, "second answer"))

	turns := conv.Turns()
	wantRoles := []chat.Role{chat.RoleSystem, chat.RoleUser, chat.RoleAssistant, chat.RoleUser, chat.RoleAssistant}
	if len(turns) != len(wantRoles) {
		t.Fatalf("expected %d turns, got %d", len(wantRoles), len(turns))
	}
	for i, want := range wantRoles {
		if turns[i].Role != want {
			t.Fatalf("turn %d: expected role %s, got %s", i, want, turns[i].Role)
		}
	}
}

func TestTurnsReturnsCopy(t *testing.T) {
	store := session.NewStore()
	conv := store.GetOrCreate("s1")

	turns := conv.Turns()
	turns[0].Content = "mutated"

	if conv.Turns()[0].Content != session.SystemPrompt {
		t.Fatal("Turns must return a copy, not the backing slice")
	}
}

func TestGetMissingSession(t *testing.T) {
	store := session.NewStore()
	if _, ok := store.Get("missing"); ok {
		t.Fatal("expected no conversation for unknown session")
	}
}

func TestConcurrentDistinctSessions(t *testing.T) {
	store := session.NewStore()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			conv := store.GetOrCreate(fmt.Sprintf("s%d", n))
			conv.LockSend()
			defer conv.UnlockSend()
			conv.Append(chat.NewTurn(chat.RoleUser, "hello"))
			conv.Append(chat.NewTurn(chat.RoleAssistant, "hi"))
		}(i)
	}
	wg.Wait()

	if store.Len() != 16 {
		t.Fatalf("expected 16 sessions, got %d", store.Len())
	}
	for i := 0; i < 16; i++ {
		conv, ok := store.Get(fmt.Sprintf("s%d", i))
		if !ok {
			t.Fatalf("missing session s%d", i)
		}
		if conv.Len() != 3 {
			t.Fatalf("session s%d: expected 3 turns, got %d", i, conv.Len())
		}
	}
}
