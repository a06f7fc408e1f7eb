package telemetry

import (
	"context"
	"testing"

	"github.com/shearops/shear/internal/store"
	"github.com/shearops/shear/internal/store/storetest"
)

func TestWrapStoreDisabledReturnsOriginal(t *testing.T) {
	t.Setenv("SHEAR_OTEL_ENABLED", "")

	fake := &storetest.Fake{}
	if got := WrapStore(fake); got != fake {
		t.Error("WrapStore must be a no-op when telemetry is off")
	}
}

func TestWrapStoreEnabledDelegates(t *testing.T) {
	// The global default providers are no-ops, so instruments are safe
	// to exercise without Init.
	t.Setenv("SHEAR_OTEL_ENABLED", "true")

	fake := &storetest.Fake{
		VersionsByItem: map[string][]store.Version{
			storetest.Key("lib-1", 1): {{ID: 1, Label: "1.0"}},
		},
	}
	wrapped := WrapStore(fake)
	if _, ok := wrapped.(*InstrumentedStore); !ok {
		t.Fatalf("WrapStore() = %T, want *InstrumentedStore", wrapped)
	}

	if _, err := wrapped.Libraries(context.Background()); err != nil {
		t.Fatalf("Libraries() error = %v", err)
	}
	if fake.Calls.Libraries != 1 {
		t.Errorf("inner store saw %d calls, want 1", fake.Calls.Libraries)
	}

	item := store.Item{LibraryID: "lib-1", LibraryTitle: "Documents", ID: 1}
	if err := wrapped.DeleteVersions(context.Background(), item, []int{1}); err != nil {
		t.Fatalf("DeleteVersions() error = %v", err)
	}
	if len(fake.Calls.Deletes) != 1 {
		t.Errorf("inner store saw %d deletes, want 1", len(fake.Calls.Deletes))
	}
	if wrapped.BaseURL() != fake.BaseURL() {
		t.Error("BaseURL not delegated")
	}
}
