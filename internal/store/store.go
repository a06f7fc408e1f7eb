// Package store defines the versioned object store the trimming engine
// runs against: the domain records, the client surface, and the error
// classification shared by callers.
package store

import (
	"context"
	"time"
)

// Library is a versioned-object collection (a document library).
// Resolved once per run and read-only to the engine.
type Library struct {
	ID                string `json:"id"`
	Title             string `json:"title"`
	ItemCount         int    `json:"item_count"`
	Hidden            bool   `json:"hidden"`
	ServerRelativeURL string `json:"server_relative_url"`
}

// Item is one versioned file in a library. Fields are fixed at
// discovery time and immutable for the rest of the run.
type Item struct {
	LibraryID          string `json:"library_id"`
	LibraryTitle       string `json:"library_title"`
	ID                 int    `json:"id"`
	Name               string `json:"name"`
	ServerRelativePath string `json:"server_relative_path"`
}

// Version is one stored version of an item. Exactly one version per
// item is current; the current version is never a deletion candidate.
type Version struct {
	ID        int       `json:"id"`
	Label     string    `json:"label"`
	Created   time.Time `json:"created"`
	IsCurrent bool      `json:"is_current"`
}

// TenantPolicy is the tenant-wide version expiration configuration.
// The engine reads it for operator display only; the store enforces
// retention server-side and rejects deletes that violate it.
type TenantPolicy struct {
	AutoExpiration    bool `json:"auto_expiration"`
	MajorVersionLimit int  `json:"major_version_limit"`
	ExpireAfterDays   int  `json:"expire_after_days"`
}

// ItemPage is one page of enumerated items plus the opaque token for
// the next page. An empty NextToken means the listing is exhausted.
type ItemPage struct {
	Items     []Item
	NextToken string
}

// Client is the remote store surface the engine needs. Implementations
// are used from a single goroutine and must tolerate reuse across a
// whole run.
type Client interface {
	// Libraries lists the document libraries visible to the caller,
	// hidden ones included (the resolver filters those out).
	Libraries(ctx context.Context) ([]Library, error)

	// Items returns one page of file items from lib. Pass an empty
	// pageToken for the first page. Folder entries are never returned.
	Items(ctx context.Context, lib Library, pageToken string) (ItemPage, error)

	// Versions returns all stored versions of item, current included.
	Versions(ctx context.Context, item Item) ([]Version, error)

	// DeleteVersions permanently removes the identified versions of
	// item. Partial success is not reported; the call fails as a whole.
	DeleteVersions(ctx context.Context, item Item, versionIDs []int) error

	// LibraryStorageBytes reports the bytes currently held by lib.
	LibraryStorageBytes(ctx context.Context, lib Library) (int64, error)

	// Policy reads the tenant version expiration policy.
	Policy(ctx context.Context) (TenantPolicy, error)

	// UpdatePolicy replaces the tenant version expiration policy.
	UpdatePolicy(ctx context.Context, p TenantPolicy) error

	// BaseURL identifies the site this client talks to, for log lines.
	BaseURL() string
}
