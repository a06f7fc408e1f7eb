package engine

import (
	"testing"
	"time"

	"github.com/shearops/shear/internal/store"
)

func TestSelectDeletable(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	cutoff := now.AddDate(0, 0, -45)

	tests := []struct {
		name     string
		versions []store.Version
		wantIDs  []int
	}{
		{
			name: "three versions, only the old non-current one selected",
			versions: []store.Version{
				{ID: 1, Label: "1.0", Created: now.AddDate(0, 0, -60)},
				{ID: 2, Label: "2.0", Created: now.AddDate(0, 0, -10)},
				{ID: 3, Label: "3.0", Created: now.AddDate(0, 0, -120), IsCurrent: true},
			},
			wantIDs: []int{1},
		},
		{
			name: "current version never selected regardless of age",
			versions: []store.Version{
				{ID: 1, Label: "1.0", Created: now.AddDate(0, 0, -300), IsCurrent: true},
			},
			wantIDs: nil,
		},
		{
			name: "created exactly at cutoff is kept",
			versions: []store.Version{
				{ID: 1, Label: "1.0", Created: cutoff},
				{ID: 2, Label: "2.0", Created: cutoff.Add(-time.Second)},
				{ID: 3, Label: "3.0", Created: now, IsCurrent: true},
			},
			wantIDs: []int{2},
		},
		{
			name: "nothing eligible returns nil without error",
			versions: []store.Version{
				{ID: 1, Label: "1.0", Created: now.AddDate(0, 0, -5)},
				{ID: 2, Label: "2.0", Created: now, IsCurrent: true},
			},
			wantIDs: nil,
		},
		{
			name:     "no versions at all",
			versions: nil,
			wantIDs:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SelectDeletable(tt.versions, cutoff)
			if len(got) != len(tt.wantIDs) {
				t.Fatalf("selected %d versions, want %d: %+v", len(got), len(tt.wantIDs), got)
			}
			for i, id := range tt.wantIDs {
				if got[i].ID != id {
					t.Errorf("selected[%d].ID = %d, want %d", i, got[i].ID, id)
				}
			}
		})
	}
}
