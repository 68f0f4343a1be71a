package chat

import (
	"fmt"
	"sync"
	"testing"
)

func TestRegistryLifecycle(t *testing.T) {
	r := NewRegistry()

	if _, ok := r.Lookup("conn-1"); ok {
		t.Fatal("lookup before bind should report unjoined")
	}

	r.Bind("conn-1", "user-1", "alice")

	ident, ok := r.Lookup("conn-1")
	if !ok {
		t.Fatal("lookup after bind failed")
	}
	if ident.UserID != "user-1" || ident.Username != "alice" {
		t.Fatalf("unexpected identity: %+v", ident)
	}

	if !r.UsernameActive("alice") {
		t.Fatal("alice should be active")
	}
	if r.UsernameActive("bob") {
		t.Fatal("bob should not be active")
	}

	ident, ok = r.Unbind("conn-1")
	if !ok || ident.UserID != "user-1" {
		t.Fatalf("unbind returned %+v, %v", ident, ok)
	}

	if _, ok := r.Lookup("conn-1"); ok {
		t.Fatal("lookup after unbind should report unjoined")
	}
	if r.UsernameActive("alice") {
		t.Fatal("alice should no longer be active")
	}
}

func TestRegistryUnbindUnknown(t *testing.T) {
	r := NewRegistry()

	if _, ok := r.Unbind("missing"); ok {
		t.Fatal("unbind of unknown connection should report false")
	}
}

func TestRegistryRebindReplacesIdentity(t *testing.T) {
	r := NewRegistry()

	r.Bind("conn-1", "user-1", "alice")
	r.Bind("conn-1", "user-2", "bob")

	ident, ok := r.Lookup("conn-1")
	if !ok || ident.UserID != "user-2" || ident.Username != "bob" {
		t.Fatalf("rebind did not replace identity: %+v", ident)
	}
	if r.Len() != 1 {
		t.Fatalf("expected 1 binding, got %d", r.Len())
	}
}

func TestRegistryConcurrentAccess(t *testing.T) {
	r := NewRegistry()

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			connID := fmt.Sprintf("conn-%d", i)
			r.Bind(connID, fmt.Sprintf("user-%d", i), fmt.Sprintf("name-%d", i))
			r.Lookup(connID)
			r.UsernameActive(fmt.Sprintf("name-%d", i))
		}(i)
	}
	wg.Wait()

	if r.Len() != n {
		t.Fatalf("expected %d bindings, got %d", n, r.Len())
	}

	for i := 0; i < n; i++ {
		if _, ok := r.Unbind(fmt.Sprintf("conn-%d", i)); !ok {
			t.Fatalf("binding for conn-%d missing", i)
		}
	}
	if r.Len() != 0 {
		t.Fatalf("expected empty registry, got %d", r.Len())
	}
}
