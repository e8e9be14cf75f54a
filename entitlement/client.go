package entitlement

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/goliatone/go-navgate/gate"
	"github.com/goliatone/go-navgate/naverrors"
)

// DefaultClientTimeout bounds remote entitlement checks.
const DefaultClientTimeout = 5 * time.Second

// checkResponse is the wire format returned by the entitlement backend.
type checkResponse struct {
	HasAccess      bool   `json:"has_access"`
	RequiredTier   string `json:"required_tier,omitempty"`
	UpgradeMessage string `json:"upgrade_message,omitempty"`
	UpgradeCTAURL  string `json:"upgrade_cta_url,omitempty"`
}

// HTTPDoer issues HTTP requests. *http.Client satisfies it.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client checks entitlements against a remote backend over HTTP. Concurrent
// checks for the same feature and scope are collapsed into a single request.
// It implements gate.Checker.
type Client struct {
	baseURL string
	http    HTTPDoer
	headers http.Header
	hooks   []gate.CheckHook
	group   singleflight.Group
}

// ClientOption customizes a Client.
type ClientOption func(*Client)

// WithHTTPClient overrides the HTTP transport.
func WithHTTPClient(doer HTTPDoer) ClientOption {
	return func(c *Client) {
		if c == nil || doer == nil {
			return
		}
		c.http = doer
	}
}

// WithHeader adds a header to every backend request.
func WithHeader(key, value string) ClientOption {
	return func(c *Client) {
		if c == nil || strings.TrimSpace(key) == "" {
			return
		}
		c.headers.Set(key, value)
	}
}

// WithClientHook registers a check hook for remote decisions.
func WithClientHook(hook gate.CheckHook) ClientOption {
	return func(c *Client) {
		if c == nil || hook == nil {
			return
		}
		c.hooks = append(c.hooks, hook)
	}
}

// NewClient builds a Client for the entitlement backend at baseURL.
func NewClient(baseURL string, options ...ClientOption) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, naverrors.NewBadInput(naverrors.TextCodeBackendUnavailable, "entitlement backend URL required", nil)
	}
	client := &Client{
		baseURL: trimmed,
		http:    &http.Client{Timeout: DefaultClientTimeout},
		headers: http.Header{},
	}
	for _, opt := range options {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// Check implements gate.Checker.
func (c *Client) Check(ctx context.Context, feature string, requiredTier string) (gate.Access, error) {
	access, _, err := c.CheckWithTrace(ctx, feature, requiredTier)
	return access, err
}

// CheckWithTrace checks the remote backend and reports provenance. Every
// settled decision carries the remote source.
func (c *Client) CheckWithTrace(ctx context.Context, feature string, requiredTier string) (gate.Access, gate.CheckTrace, error) {
	if c == nil {
		return gate.Access{}, gate.CheckTrace{}, naverrors.WrapSentinel(naverrors.ErrCheckerRequired, "", nil)
	}
	normalized := gate.NormalizeKey(feature)
	trace := gate.CheckTrace{
		Feature:       strings.TrimSpace(feature),
		NormalizedKey: normalized,
		Source:        gate.CheckSourceRemote,
	}
	if normalized == "" {
		err := naverrors.WrapSentinel(naverrors.ErrInvalidKey, "", map[string]any{
			naverrors.MetaFeatureKey: feature,
		})
		c.emit(ctx, trace, err)
		return gate.Access{}, trace, err
	}
	scope := gate.ScopeFromContext(ctx)
	trace.Scope = scope
	key := flightKey(normalized, requiredTier, scope)

	result, err, _ := c.group.Do(key, func() (any, error) {
		return c.fetch(ctx, normalized, requiredTier, scope)
	})
	if err != nil {
		c.emit(ctx, trace, err)
		return gate.Access{}, trace, err
	}
	// a caller whose context expired must not act on a shared result
	if ctxErr := ctx.Err(); ctxErr != nil {
		err := naverrors.WrapExternal(ctxErr, naverrors.TextCodeCheckFailed, "entitlement check canceled", map[string]any{
			naverrors.MetaFeatureKeyNormalized: normalized,
		})
		c.emit(ctx, trace, err)
		return gate.Access{}, trace, err
	}
	access, ok := result.(gate.Access)
	if !ok {
		err := naverrors.NewInternal(naverrors.TextCodeCheckFailed, "unexpected entitlement response type", nil)
		c.emit(ctx, trace, err)
		return gate.Access{}, trace, err
	}
	trace.Access = access
	c.emit(ctx, trace, nil)
	return access, trace, nil
}

func (c *Client) emit(ctx context.Context, trace gate.CheckTrace, err error) {
	if len(c.hooks) == 0 {
		return
	}
	event := gate.CheckEvent{
		Feature:       trace.Feature,
		NormalizedKey: trace.NormalizedKey,
		Scope:         trace.Scope,
		Access:        trace.Access,
		Source:        trace.Source,
		Error:         err,
		Trace:         trace,
	}
	for _, hook := range c.hooks {
		if hook == nil {
			continue
		}
		hook.OnCheck(ctx, event)
	}
}

func (c *Client) fetch(ctx context.Context, feature string, requiredTier string, scope gate.Scope) (gate.Access, error) {
	endpoint := c.baseURL + "/v1/entitlements/check"
	query := url.Values{}
	query.Set("feature", feature)
	if tier := strings.TrimSpace(requiredTier); tier != "" {
		query.Set("required_tier", tier)
	}
	if scope.TenantID != "" {
		query.Set("tenant_id", scope.TenantID)
	}
	if scope.OrgID != "" {
		query.Set("org_id", scope.OrgID)
	}
	if scope.UserID != "" {
		query.Set("user_id", scope.UserID)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return gate.Access{}, naverrors.WrapInternal(err, naverrors.TextCodeCheckFailed, "building entitlement request failed", map[string]any{
			naverrors.MetaEndpoint: endpoint,
		})
	}
	req.Header.Set("Accept", "application/json")
	for key, values := range c.headers {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return gate.Access{}, naverrors.WrapExternal(err, naverrors.TextCodeBackendUnavailable, "entitlement backend unreachable", map[string]any{
			naverrors.MetaEndpoint:             endpoint,
			naverrors.MetaFeatureKeyNormalized: feature,
		})
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return gate.Access{}, naverrors.NewExternal(naverrors.TextCodeCheckFailed,
			fmt.Sprintf("entitlement backend returned %d", resp.StatusCode), map[string]any{
				naverrors.MetaEndpoint:             endpoint,
				naverrors.MetaStatusCode:           resp.StatusCode,
				naverrors.MetaFeatureKeyNormalized: feature,
			})
	}

	var payload checkResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&payload); err != nil {
		return gate.Access{}, naverrors.WrapExternal(err, naverrors.TextCodeCheckFailed, "decoding entitlement response failed", map[string]any{
			naverrors.MetaEndpoint:             endpoint,
			naverrors.MetaFeatureKeyNormalized: feature,
		})
	}

	return gate.Access{
		HasAccess:      payload.HasAccess,
		RequiredTier:   payload.RequiredTier,
		UpgradeMessage: payload.UpgradeMessage,
		UpgradeCTAURL:  payload.UpgradeCTAURL,
	}, nil
}

func flightKey(feature, requiredTier string, scope gate.Scope) string {
	return strings.Join([]string{feature, requiredTier, scope.TenantID, scope.OrgID, scope.UserID}, "\x1f")
}

var _ gate.Checker = (*Client)(nil)
