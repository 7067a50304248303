package breaker

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRegistry_FirstRegistrationWins(t *testing.T) {
	r := NewRegistry()

	a := r.Get("x", Config{FailureThreshold: 2, RecoveryTimeout: time.Hour})
	b := r.Get("x", Config{FailureThreshold: 50, RecoveryTimeout: time.Minute})

	if a != b {
		t.Fatal("Get() returned different instances for the same name")
	}

	// The instance keeps the first config's thresholds: two failures open it.
	ctx := context.Background()
	_, _ = a.Execute(ctx, failing)
	_, _ = a.Execute(ctx, failing)

	if a.State() != StateOpen {
		t.Errorf("state = %v, want open under the first config's threshold", a.State())
	}
}

func TestRegistry_NameOverridesConfig(t *testing.T) {
	r := NewRegistry()

	b := r.Get("orders", Config{Name: "something-else"})
	if b.Name() != "orders" {
		t.Errorf("Name() = %q, want the registry key %q", b.Name(), "orders")
	}
}

func TestRegistry_Lookup(t *testing.T) {
	r := NewRegistry()

	if _, ok := r.Lookup("missing"); ok {
		t.Error("Lookup() found an unregistered breaker")
	}

	created := r.Get("svc", Config{})
	found, ok := r.Lookup("svc")
	if !ok || found != created {
		t.Error("Lookup() did not return the registered breaker")
	}
}

func TestRegistry_Names(t *testing.T) {
	r := NewRegistry()
	r.Get("zeta", Config{})
	r.Get("alpha", Config{})
	r.Get("mid", Config{})

	names := r.Names()
	want := []string{"alpha", "mid", "zeta"}
	if len(names) != len(want) {
		t.Fatalf("Names() = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("Names()[%d] = %s, want %s", i, names[i], want[i])
		}
	}
}

func TestRegistry_AllStats(t *testing.T) {
	r := NewRegistry()
	ctx := context.Background()

	a := r.Get("a", Config{FailureThreshold: 1, RecoveryTimeout: time.Hour})
	r.Get("b", Config{})

	_, _ = a.Execute(ctx, failing)

	stats := r.AllStats()
	if len(stats) != 2 {
		t.Fatalf("AllStats() has %d entries, want 2", len(stats))
	}
	if stats["a"].State != StateOpen {
		t.Errorf("stats[a].State = %v, want open", stats["a"].State)
	}
	if stats["b"].State != StateClosed {
		t.Errorf("stats[b].State = %v, want closed", stats["b"].State)
	}
}

func TestRegistry_ResetAll(t *testing.T) {
	r := NewRegistry()
	ctx := context.Background()

	a := r.Get("a", Config{FailureThreshold: 1, RecoveryTimeout: time.Hour})
	b := r.Get("b", Config{FailureThreshold: 1, RecoveryTimeout: time.Hour})
	_, _ = a.Execute(ctx, failing)
	_, _ = b.Execute(ctx, failing)

	r.ResetAll()

	for _, name := range []string{"a", "b"} {
		br, _ := r.Lookup(name)
		if br.State() != StateClosed {
			t.Errorf("breaker %q state = %v after ResetAll, want closed", name, br.State())
		}
	}
}

func TestNewDefaultRegistry(t *testing.T) {
	r := NewDefaultRegistry()

	names := r.Names()
	want := []string{"database", "external-api"}
	if len(names) != len(want) {
		t.Fatalf("Names() = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("Names()[%d] = %s, want %s", i, names[i], want[i])
		}
	}

	// The database breaker trips fast: three failures open it.
	db, _ := r.Lookup("database")
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, _ = db.Execute(ctx, failing)
	}
	if db.State() != StateOpen {
		t.Errorf("database breaker state = %v, want open after 3 failures", db.State())
	}
	if _, err := db.Execute(ctx, succeeding); !errors.Is(err, ErrOpen) {
		t.Errorf("Execute() error = %v, want ErrOpen", err)
	}
}
