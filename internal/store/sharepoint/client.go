// Package sharepoint implements store.Client against the SharePoint
// REST API: document libraries are lists with BaseTemplate 101, items
// are file list entries, and version history hangs off each item's
// file resource.
package sharepoint

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/shearops/shear/internal/store"
)

const (
	// documentLibraryTemplate is the SharePoint list template for
	// document libraries.
	documentLibraryTemplate = 101

	// DefaultPageSize is the item page size requested per listing call.
	DefaultPageSize = 2000

	// minTimeout keeps slow tenants from starving long batch windows.
	minTimeout = 10 * time.Minute
)

// Options configure a Client beyond the required site and token.
type Options struct {
	// PageSize overrides DefaultPageSize when positive.
	PageSize int
	// Timeout is the per-request ceiling; raised to minTimeout when lower.
	Timeout time.Duration
}

// Client talks to one SharePoint site. A single Client is reused for a
// whole run; it is not safe for concurrent use.
type Client struct {
	siteURL  string
	pageSize int
	http     *resty.Client
}

var _ store.Client = (*Client)(nil)

// New returns a Client for the given site. authToken is sent as a
// bearer token on every request.
func New(siteURL, authToken string, opts Options) *Client {
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	timeout := opts.Timeout
	if timeout < minTimeout {
		timeout = minTimeout
	}
	site := strings.TrimRight(siteURL, "/")
	httpClient := resty.NewWithClient(&http.Client{Timeout: timeout}).
		SetBaseURL(site).
		SetAuthToken(authToken).
		SetHeader("Accept", "application/json;odata=nometadata")
	return &Client{siteURL: site, pageSize: pageSize, http: httpClient}
}

// BaseURL returns the site URL this client was built for.
func (c *Client) BaseURL() string {
	return c.siteURL
}

type listEntry struct {
	ID         string `json:"Id"`
	Title      string `json:"Title"`
	ItemCount  int    `json:"ItemCount"`
	Hidden     bool   `json:"Hidden"`
	RootFolder struct {
		ServerRelativeURL string `json:"ServerRelativeUrl"`
	} `json:"RootFolder"`
}

// Libraries lists every document-library list on the site, hidden ones
// included.
func (c *Client) Libraries(ctx context.Context) ([]store.Library, error) {
	var body struct {
		Value []listEntry `json:"value"`
	}
	params := map[string]string{
		"$filter": fmt.Sprintf("BaseTemplate eq %d", documentLibraryTemplate),
		"$select": "Id,Title,ItemCount,Hidden,RootFolder/ServerRelativeUrl",
		"$expand": "RootFolder",
	}
	if err := c.get(ctx, &body, "/_api/web/lists", params); err != nil {
		return nil, fmt.Errorf("list document libraries: %w", err)
	}
	libs := make([]store.Library, 0, len(body.Value))
	for _, e := range body.Value {
		libs = append(libs, store.Library{
			ID:                e.ID,
			Title:             e.Title,
			ItemCount:         e.ItemCount,
			Hidden:            e.Hidden,
			ServerRelativeURL: e.RootFolder.ServerRelativeURL,
		})
	}
	return libs, nil
}

type itemEntry struct {
	ID          int         `json:"Id"`
	FileLeafRef string      `json:"FileLeafRef"`
	FileRef     string      `json:"FileRef"`
	FSObjType   json.Number `json:"FSObjType"`
}

// Items returns one page of file items from lib. Folders are filtered
// server-side and dropped again here because FSObjType filtering is not
// honored by every SharePoint version.
func (c *Client) Items(ctx context.Context, lib store.Library, pageToken string) (store.ItemPage, error) {
	var body struct {
		Value    []itemEntry `json:"value"`
		NextLink string      `json:"odata.nextLink"`
	}
	params := map[string]string{
		"$select": "Id,FileLeafRef,FileRef,FSObjType",
		"$filter": "FSObjType eq 0",
		"$top":    fmt.Sprintf("%d", c.pageSize),
	}
	if pageToken != "" {
		params["$skiptoken"] = pageToken
	}
	path := fmt.Sprintf("/_api/web/lists(guid'%s')/items", lib.ID)
	if err := c.get(ctx, &body, path, params); err != nil {
		return store.ItemPage{}, fmt.Errorf("list items in %q: %w", lib.Title, err)
	}
	page := store.ItemPage{Items: make([]store.Item, 0, len(body.Value))}
	for _, e := range body.Value {
		if e.FSObjType.String() != "0" {
			continue
		}
		page.Items = append(page.Items, store.Item{
			LibraryID:          lib.ID,
			LibraryTitle:       lib.Title,
			ID:                 e.ID,
			Name:               e.FileLeafRef,
			ServerRelativePath: e.FileRef,
		})
	}
	page.NextToken = skipToken(body.NextLink)
	return page, nil
}

// skipToken pulls the $skiptoken value out of an odata.nextLink URL so
// callers can hold an opaque token instead of a server-specific link.
func skipToken(nextLink string) string {
	if nextLink == "" {
		return ""
	}
	u, err := url.Parse(nextLink)
	if err != nil {
		return ""
	}
	return u.Query().Get("$skiptoken")
}

type versionEntry struct {
	ID               int       `json:"ID"`
	VersionLabel     string    `json:"VersionLabel"`
	Created          time.Time `json:"Created"`
	IsCurrentVersion bool      `json:"IsCurrentVersion"`
}

// Versions returns all stored versions of item, the current one included.
func (c *Client) Versions(ctx context.Context, item store.Item) ([]store.Version, error) {
	var body struct {
		Value []versionEntry `json:"value"`
	}
	path := fmt.Sprintf("/_api/web/lists(guid'%s')/items(%d)/file/versions", item.LibraryID, item.ID)
	params := map[string]string{
		"$select": "ID,VersionLabel,Created,IsCurrentVersion",
	}
	if err := c.get(ctx, &body, path, params); err != nil {
		return nil, fmt.Errorf("load versions of %q: %w", item.ServerRelativePath, err)
	}
	versions := make([]store.Version, 0, len(body.Value))
	for _, e := range body.Value {
		versions = append(versions, store.Version{
			ID:        e.ID,
			Label:     e.VersionLabel,
			Created:   e.Created,
			IsCurrent: e.IsCurrentVersion,
		})
	}
	return versions, nil
}

// DeleteVersions removes the identified versions of item. SharePoint
// has no bulk delete for file versions, so the chunk is issued as one
// DeleteByID call per version, failing on the first rejected delete.
func (c *Client) DeleteVersions(ctx context.Context, item store.Item, versionIDs []int) error {
	for _, id := range versionIDs {
		path := fmt.Sprintf("/_api/web/lists(guid'%s')/items(%d)/file/versions/DeleteByID(vid=%d)",
			item.LibraryID, item.ID, id)
		if err := c.post(ctx, nil, path, nil); err != nil {
			return fmt.Errorf("delete version %d of %q: %w", id, item.ServerRelativePath, err)
		}
	}
	return nil
}

// LibraryStorageBytes reads the storage metrics of the library's root
// folder. SharePoint serializes Int64 metrics as strings, hence the
// json.Number indirection.
func (c *Client) LibraryStorageBytes(ctx context.Context, lib store.Library) (int64, error) {
	var body struct {
		TotalSize json.Number `json:"TotalSize"`
	}
	path := fmt.Sprintf("/_api/web/GetFolderByServerRelativeUrl('%s')/StorageMetrics",
		strings.ReplaceAll(lib.ServerRelativeURL, "'", "''"))
	params := map[string]string{"$select": "TotalSize"}
	if err := c.get(ctx, &body, path, params); err != nil {
		return 0, fmt.Errorf("storage metrics for %q: %w", lib.Title, err)
	}
	total, err := body.TotalSize.Int64()
	if err != nil {
		return 0, fmt.Errorf("storage metrics for %q: bad TotalSize %q: %w", lib.Title, body.TotalSize, err)
	}
	return total, nil
}

type versionPolicyBody struct {
	DefaultTrimMode        int `json:"DefaultTrimMode"`
	DefaultExpireAfterDays int `json:"DefaultExpireAfterDays"`
	MajorVersionLimit      int `json:"MajorVersionLimit"`
}

// trimModeAutoExpiration is the DefaultTrimMode value for
// automatic version expiration.
const trimModeAutoExpiration = 0

// Policy reads the site version expiration policy template.
func (c *Client) Policy(ctx context.Context) (store.TenantPolicy, error) {
	var body versionPolicyBody
	if err := c.get(ctx, &body, "/_api/site/VersionPolicyForNewLibrariesTemplate", nil); err != nil {
		return store.TenantPolicy{}, fmt.Errorf("read version policy: %w", err)
	}
	return store.TenantPolicy{
		AutoExpiration:    body.DefaultTrimMode == trimModeAutoExpiration,
		MajorVersionLimit: body.MajorVersionLimit,
		ExpireAfterDays:   body.DefaultExpireAfterDays,
	}, nil
}

// UpdatePolicy replaces the site version expiration policy. The REST
// surface exposes one setter per trim mode rather than a writable
// resource, so the call picks the setter matching p.
func (c *Client) UpdatePolicy(ctx context.Context, p store.TenantPolicy) error {
	const base = "/_api/site/VersionPolicyForNewLibrariesTemplate"
	var (
		path    string
		payload any
	)
	switch {
	case p.AutoExpiration:
		path = base + "/SetAutoExpiration"
	case p.ExpireAfterDays > 0:
		path = base + "/SetExpireAfterDays"
		payload = map[string]int{
			"majorVersionLimit": p.MajorVersionLimit,
			"expireAfterDays":   p.ExpireAfterDays,
		}
	default:
		path = base + "/SetNoExpiration"
		payload = map[string]int{"majorVersionLimit": p.MajorVersionLimit}
	}
	if err := c.post(ctx, nil, path, payload); err != nil {
		return fmt.Errorf("update version policy: %w", err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, out any, path string, params map[string]string) error {
	req := c.http.R().SetContext(ctx)
	if len(params) > 0 {
		req.SetQueryParams(params)
	}
	resp, err := req.Get(path)
	return c.finish(resp, err, out)
}

func (c *Client) post(ctx context.Context, out any, path string, payload any) error {
	req := c.http.R().SetContext(ctx)
	if payload != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(payload)
	}
	resp, err := req.Post(path)
	return c.finish(resp, err, out)
}

func (c *Client) finish(resp *resty.Response, err error, out any) error {
	if err != nil {
		return err
	}
	if resp.IsError() {
		return decodeError(resp)
	}
	if out != nil {
		if err := json.Unmarshal(resp.Body(), out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// restError covers the two error envelopes SharePoint emits depending
// on the odata level; message arrives either as a plain string or as a
// lang/value object.
type restError struct {
	Error      *restErrorBody `json:"error"`
	ODataError *restErrorBody `json:"odata.error"`
}

type restErrorBody struct {
	Code    string          `json:"code"`
	Message json.RawMessage `json:"message"`
}

func decodeError(resp *resty.Response) error {
	re := &store.RequestError{StatusCode: resp.StatusCode()}
	var envelope restError
	if err := json.Unmarshal(resp.Body(), &envelope); err == nil {
		body := envelope.Error
		if body == nil {
			body = envelope.ODataError
		}
		if body != nil {
			re.Code = body.Code
			re.Message = decodeErrorMessage(body.Message)
		}
	}
	if re.Message == "" {
		re.Message = strings.TrimSpace(string(resp.Body()))
	}
	if re.Message == "" {
		re.Message = resp.Status()
	}
	return re
}

func decodeErrorMessage(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var obj struct {
		Value string `json:"value"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj.Value
	}
	return string(raw)
}
