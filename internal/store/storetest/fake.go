// Package storetest provides an in-memory store.Client for engine and
// command tests.
package storetest

import (
	"context"
	"fmt"
	"strconv"

	"github.com/shearops/shear/internal/store"
)

// Key builds the map key used for per-item fixtures.
func Key(libraryID string, itemID int) string {
	return fmt.Sprintf("%s/%d", libraryID, itemID)
}

// DeleteCall records one DeleteVersions invocation.
type DeleteCall struct {
	Item       store.Item
	VersionIDs []int
}

// FailPlan makes a call fail a fixed number of times before succeeding.
// Times < 0 fails forever.
type FailPlan struct {
	Times int
	Err   error
}

func (p *FailPlan) take() error {
	if p == nil || p.Times == 0 {
		return nil
	}
	if p.Times > 0 {
		p.Times--
	}
	return p.Err
}

// CallLog counts and records the store traffic a test generated.
type CallLog struct {
	Libraries    int
	ItemPages    int
	Versions     []string
	Deletes      []DeleteCall
	ByteReads    int
	PolicyReads  int
	PolicyWrites []store.TenantPolicy
}

// Fake is an in-memory store.Client. Fixtures are plain exported maps;
// zero value is an empty store. Not safe for concurrent use, matching
// the single-threaded engine contract.
type Fake struct {
	Libs           []store.Library
	ItemsByLib     map[string][]store.Item
	VersionsByItem map[string][]store.Version
	BytesByLib     map[string]int64
	Tenant         store.TenantPolicy

	// VersionBytes is subtracted from the owning library's bytes for
	// every successfully deleted version, so size snapshots move.
	VersionBytes int64

	// PageSize chops item listings into pages; 0 returns everything
	// in one page.
	PageSize int

	LibrariesErr error
	ItemsErrs    map[string]error     // library ID → page-fetch error
	VersionsErrs map[string]error     // Key(lib,item) → version-load error
	DeleteErrs   map[string]*FailPlan // Key(lib,item) → delete failures

	Site string

	Calls CallLog
}

var _ store.Client = (*Fake)(nil)

func (f *Fake) Libraries(ctx context.Context) ([]store.Library, error) {
	f.Calls.Libraries++
	if f.LibrariesErr != nil {
		return nil, f.LibrariesErr
	}
	out := make([]store.Library, len(f.Libs))
	copy(out, f.Libs)
	return out, nil
}

func (f *Fake) Items(ctx context.Context, lib store.Library, pageToken string) (store.ItemPage, error) {
	f.Calls.ItemPages++
	if err := f.ItemsErrs[lib.ID]; err != nil {
		return store.ItemPage{}, err
	}
	items := f.ItemsByLib[lib.ID]
	if f.PageSize <= 0 {
		return store.ItemPage{Items: items}, nil
	}
	offset := 0
	if pageToken != "" {
		n, err := strconv.Atoi(pageToken)
		if err != nil {
			return store.ItemPage{}, fmt.Errorf("bad page token %q", pageToken)
		}
		offset = n
	}
	end := offset + f.PageSize
	if end > len(items) {
		end = len(items)
	}
	page := store.ItemPage{Items: items[offset:end]}
	if end < len(items) {
		page.NextToken = strconv.Itoa(end)
	}
	return page, nil
}

func (f *Fake) Versions(ctx context.Context, item store.Item) ([]store.Version, error) {
	key := Key(item.LibraryID, item.ID)
	f.Calls.Versions = append(f.Calls.Versions, key)
	if err := f.VersionsErrs[key]; err != nil {
		return nil, err
	}
	versions := f.VersionsByItem[key]
	out := make([]store.Version, len(versions))
	copy(out, versions)
	return out, nil
}

func (f *Fake) DeleteVersions(ctx context.Context, item store.Item, versionIDs []int) error {
	key := Key(item.LibraryID, item.ID)
	if err := f.DeleteErrs[key].take(); err != nil {
		return err
	}
	f.Calls.Deletes = append(f.Calls.Deletes, DeleteCall{Item: item, VersionIDs: append([]int(nil), versionIDs...)})
	kept := f.VersionsByItem[key][:0:0]
	for _, v := range f.VersionsByItem[key] {
		if !containsID(versionIDs, v.ID) {
			kept = append(kept, v)
		}
	}
	if f.VersionsByItem != nil {
		f.VersionsByItem[key] = kept
	}
	if f.BytesByLib != nil {
		f.BytesByLib[item.LibraryID] -= f.VersionBytes * int64(len(versionIDs))
	}
	return nil
}

func (f *Fake) LibraryStorageBytes(ctx context.Context, lib store.Library) (int64, error) {
	f.Calls.ByteReads++
	return f.BytesByLib[lib.ID], nil
}

func (f *Fake) Policy(ctx context.Context) (store.TenantPolicy, error) {
	f.Calls.PolicyReads++
	return f.Tenant, nil
}

func (f *Fake) UpdatePolicy(ctx context.Context, p store.TenantPolicy) error {
	f.Calls.PolicyWrites = append(f.Calls.PolicyWrites, p)
	f.Tenant = p
	return nil
}

func (f *Fake) BaseURL() string {
	if f.Site != "" {
		return f.Site
	}
	return "https://fake.sharepoint.test/sites/test"
}

func containsID(ids []int, id int) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
