package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/wricardo/interstellar-mission/game/engine"
)

func createTestConfig() *engine.UniverseConfig {
	return &engine.UniverseConfig{
		Name:          "Test Universe",
		Description:   "Test configuration",
		Rows:          3,
		Cols:          3,
		Origin:        engine.Coord{Row: 0, Col: 0},
		Destination:   engine.Coord{Row: 2, Col: 2},
		InitialEnergy: 10,
		Costs: [][]int{
			{0, 1, 1},
			{1, 1, 1},
			{1, 1, 1},
		},
		Stars:      []engine.Coord{{Row: 0, Col: 1}},
		BlackHoles: []engine.Coord{{Row: 1, Col: 1}},
	}
}

func TestManager_Create(t *testing.T) {
	manager := NewManager(nil)
	config := createTestConfig()
	opts := engine.DefaultSearchOptions()

	t.Run("create with custom ID", func(t *testing.T) {
		session, err := manager.Create("test-session", "test", config, opts)
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		if session.ID != "test-session" || session.ConfigID != "test" {
			t.Errorf("unexpected session: %+v", session)
		}
		if session.Engine == nil {
			t.Error("Expected engine to be initialized")
		}
		if session.Options != opts {
			t.Errorf("Options = %+v, want %+v", session.Options, opts)
		}
	})

	t.Run("create with auto-generated ID", func(t *testing.T) {
		session, err := manager.Create("", "test", config, opts)
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		if len(session.ID) != 4 {
			t.Errorf("Expected 4-character session ID, got %q", session.ID)
		}
	})

	t.Run("duplicate session ID", func(t *testing.T) {
		if _, err := manager.Create("test-session", "test", config, opts); err != ErrSessionAlreadyExists {
			t.Errorf("Expected ErrSessionAlreadyExists, got %v", err)
		}
	})

	t.Run("case-insensitive duplicate check", func(t *testing.T) {
		if _, err := manager.Create("TEST-SESSION", "test", config, opts); err != ErrSessionAlreadyExists {
			t.Errorf("Expected ErrSessionAlreadyExists for case variant, got %v", err)
		}
	})

	t.Run("invalid session ID", func(t *testing.T) {
		if _, err := manager.Create("../escape", "test", config, opts); !errors.Is(err, ErrInvalidSessionID) {
			t.Errorf("Expected ErrInvalidSessionID, got %v", err)
		}
	})

	t.Run("invalid config", func(t *testing.T) {
		invalid := createTestConfig()
		invalid.Name = ""
		if _, err := manager.Create("invalid-test", "test", invalid, opts); !errors.Is(err, engine.ErrInvalidUniverse) {
			t.Errorf("Expected ErrInvalidUniverse, got %v", err)
		}
	})

	t.Run("invalid options", func(t *testing.T) {
		bad := opts
		bad.Mode = "fastest"
		if _, err := manager.Create("bad-opts", "test", config, bad); !errors.Is(err, engine.ErrInvalidOptions) {
			t.Errorf("Expected ErrInvalidOptions, got %v", err)
		}
	})
}

func TestManager_Get(t *testing.T) {
	manager := NewManager(nil)
	created, _ := manager.Create("get-test", "test", createTestConfig(), engine.DefaultSearchOptions())

	t.Run("get existing session", func(t *testing.T) {
		session, err := manager.Get("get-test")
		if err != nil {
			t.Fatalf("Failed to get session: %v", err)
		}
		if session != created {
			t.Error("Expected the same session instance")
		}
	})

	t.Run("case-insensitive get", func(t *testing.T) {
		session, err := manager.Get("GET-TEST")
		if err != nil {
			t.Fatalf("Failed to get session with different case: %v", err)
		}
		if session.ID != created.ID {
			t.Errorf("Expected same session regardless of case")
		}
	})

	t.Run("get non-existent session", func(t *testing.T) {
		if _, err := manager.Get("non-existent"); err != ErrSessionNotFound {
			t.Errorf("Expected ErrSessionNotFound, got %v", err)
		}
	})
}

func TestManager_Delete(t *testing.T) {
	manager := NewManager(nil)
	config := createTestConfig()
	opts := engine.DefaultSearchOptions()

	manager.Create("delete-test", "test", config, opts)

	t.Run("delete existing session", func(t *testing.T) {
		if err := manager.Delete("delete-test"); err != nil {
			t.Fatalf("Failed to delete session: %v", err)
		}
		if _, err := manager.Get("delete-test"); err != ErrSessionNotFound {
			t.Error("Expected session to be deleted")
		}
	})

	t.Run("delete non-existent session", func(t *testing.T) {
		if err := manager.Delete("non-existent"); err != ErrSessionNotFound {
			t.Errorf("Expected ErrSessionNotFound, got %v", err)
		}
	})

	t.Run("case-insensitive delete", func(t *testing.T) {
		manager.Create("case-test", "test", config, opts)
		if err := manager.Delete("CASE-TEST"); err != nil {
			t.Fatalf("Failed to delete with different case: %v", err)
		}
		if _, err := manager.Get("case-test"); err != ErrSessionNotFound {
			t.Error("Expected session to be deleted regardless of case")
		}
	})
}

func TestManager_List(t *testing.T) {
	manager := NewManager(nil)
	config := createTestConfig()
	opts := engine.DefaultSearchOptions()

	for i := 1; i <= 3; i++ {
		if _, err := manager.Create(fmt.Sprintf("list-%d", i), "test", config, opts); err != nil {
			t.Fatal(err)
		}
	}

	found := make(map[string]bool)
	for _, s := range manager.List() {
		found[s.ID] = true
	}
	for i := 1; i <= 3; i++ {
		if id := fmt.Sprintf("list-%d", i); !found[id] {
			t.Errorf("Session %s not found in list", id)
		}
	}
	if manager.Count() != 3 {
		t.Errorf("Count() = %d, want 3", manager.Count())
	}
}

func TestManager_CleanupExpired(t *testing.T) {
	manager := NewManager(nil)
	config := createTestConfig()
	opts := engine.DefaultSearchOptions()

	active, _ := manager.Create("active", "test", config, opts)
	expired, _ := manager.Create("expired", "test", config, opts)

	expired.LastAccessedAt = time.Now().Add(-2 * time.Hour)
	active.LastAccessedAt = time.Now()

	if deleted := manager.CleanupExpiredSessions(1 * time.Hour); deleted != 1 {
		t.Errorf("Expected 1 session to be deleted, got %d", deleted)
	}
	if _, err := manager.Get("expired"); err != ErrSessionNotFound {
		t.Error("Expected expired session to be deleted")
	}
	if _, err := manager.Get("active"); err != nil {
		t.Error("Expected active session to still exist")
	}
}

func TestManager_UpdateLastAccessed(t *testing.T) {
	manager := NewManager(nil)
	session, _ := manager.Create("access-test", "test", createTestConfig(), engine.DefaultSearchOptions())
	session.LastAccessedAt = time.Now().Add(-time.Minute)
	originalTime := session.LastAccessedAt

	if err := manager.UpdateLastAccessed("access-test"); err != nil {
		t.Fatalf("Failed to update last accessed: %v", err)
	}

	updated, _ := manager.Get("access-test")
	if !updated.LastAccessedAt.After(originalTime) {
		t.Error("Expected LastAccessedAt to be updated")
	}

	if err := manager.UpdateLastAccessed("missing"); err != ErrSessionNotFound {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestManager_ConcurrentAccess(t *testing.T) {
	manager := NewManager(nil)
	config := createTestConfig()
	opts := engine.DefaultSearchOptions()

	var wg sync.WaitGroup
	errs := make(chan error, 100)

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			_, err := manager.Create(fmt.Sprintf("c-%d", id%50), "test", config, opts)
			if err != nil && err != ErrSessionAlreadyExists {
				errs <- err
			}
		}(i)
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Unexpected error during concurrent access: %v", err)
	}
	if manager.Count() != 50 {
		t.Errorf("Count() = %d, want 50", manager.Count())
	}
}

func TestManager_SessionIsolation(t *testing.T) {
	manager := NewManager(nil)
	config := createTestConfig()
	opts := engine.DefaultSearchOptions()

	session1, _ := manager.Create("iso-1", "test", config, opts)
	session2, _ := manager.Create("iso-2", "test", config, opts)

	if _, err := session1.Engine.Resolve(context.Background(), opts); err != nil {
		t.Fatal(err)
	}
	if session1.Engine.Result() == nil {
		t.Fatal("Expected session 1 to have a result")
	}
	if session2.Engine.Result() != nil {
		t.Error("Session 2 should not see session 1's result")
	}
}

func TestManager_SessionIDGeneration(t *testing.T) {
	manager := NewManager(nil)
	config := createTestConfig()

	generatedIDs := make(map[string]bool)
	for i := 0; i < 50; i++ {
		session, err := manager.Create("", "test", config, engine.DefaultSearchOptions())
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		if generatedIDs[session.ID] {
			t.Errorf("Duplicate session ID generated: %s", session.ID)
		}
		generatedIDs[session.ID] = true

		if len(session.ID) != 4 {
			t.Errorf("Expected 4-character ID, got %d", len(session.ID))
		}
	}
}
