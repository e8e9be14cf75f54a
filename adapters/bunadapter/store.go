package bunadapter

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/uptrace/bun"

	"github.com/goliatone/go-navgate/gate"
	"github.com/goliatone/go-navgate/store"
)

// DefaultTable is the default table name for entitlement grants.
const DefaultTable = "tenant_entitlements"

// ErrDBRequired indicates the underlying Bun DB is missing.
var ErrDBRequired = errors.New("bunadapter: db is required")

// ErrInvalidKey indicates a missing or invalid feature key.
var ErrInvalidKey = errors.New("bunadapter: feature key required")

// Store persists entitlement grants through Bun.
type Store struct {
	db        bun.IDB
	table     string
	now       func() time.Time
	updatedBy func(gate.Actor) string
}

// Option customizes the Bun store adapter.
type Option func(*Store)

// NewStore constructs a new Bun-backed grant store.
func NewStore(db bun.IDB, opts ...Option) *Store {
	adapter := &Store{
		db:        db,
		table:     DefaultTable,
		now:       time.Now,
		updatedBy: defaultUpdatedBy,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(adapter)
		}
	}
	if adapter.table == "" {
		adapter.table = DefaultTable
	}
	if adapter.now == nil {
		adapter.now = time.Now
	}
	if adapter.updatedBy == nil {
		adapter.updatedBy = defaultUpdatedBy
	}
	return adapter
}

// WithTable sets the table name used for grants.
func WithTable(table string) Option {
	return func(adapter *Store) {
		if adapter == nil {
			return
		}
		adapter.table = strings.TrimSpace(table)
	}
}

// WithNowFunc overrides the timestamp function used for updates.
func WithNowFunc(now func() time.Time) Option {
	return func(adapter *Store) {
		if adapter == nil {
			return
		}
		adapter.now = now
	}
}

// WithUpdatedByBuilder overrides the updated_by value builder.
func WithUpdatedByBuilder(builder func(gate.Actor) string) Option {
	return func(adapter *Store) {
		if adapter == nil {
			return
		}
		adapter.updatedBy = builder
	}
}

// GrantRecord maps to the tenant_entitlements table. A NULL granted column
// is an explicit unset, which falls back to plan requirements.
type GrantRecord struct {
	bun.BaseModel `bun:"table:tenant_entitlements"`
	Feature       string    `bun:"feature,pk"`
	ScopeType     string    `bun:"scope_type,pk"`
	ScopeID       string    `bun:"scope_id,pk"`
	Granted       *bool     `bun:"granted,nullzero"`
	Tier          string    `bun:"tier,nullzero"`
	UpdatedBy     string    `bun:"updated_by,nullzero"`
	UpdatedAt     time.Time `bun:"updated_at,nullzero"`
}

// Get implements store.Reader. The narrowest scope with a row wins: user,
// then org, then tenant, then system.
func (s *Store) Get(ctx context.Context, feature string, scope gate.Scope) (store.Grant, error) {
	if s == nil || s.db == nil {
		return store.MissingGrant(), ErrDBRequired
	}
	normalized, err := normalizeKey(feature)
	if err != nil {
		return store.MissingGrant(), err
	}
	for _, key := range readScopes(scope) {
		record := GrantRecord{}
		query := s.db.NewSelect().Model(&record).
			Where("feature = ?", normalized).
			Where("scope_type = ?", key.kind).
			Where("scope_id = ?", key.id).
			Limit(1)
		if s.table != "" {
			query = query.TableExpr(s.table)
		}
		if err := query.Scan(ctx); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				continue
			}
			return store.MissingGrant(), err
		}
		return grantFromRecord(record), nil
	}
	return store.MissingGrant(), nil
}

// Set implements store.Writer.
func (s *Store) Set(ctx context.Context, feature string, scope gate.Scope, granted bool, actor gate.Actor) error {
	if s == nil || s.db == nil {
		return ErrDBRequired
	}
	normalized, err := normalizeKey(feature)
	if err != nil {
		return err
	}
	key := writeScope(scope)
	return s.upsert(ctx, normalized, key, boolPtr(granted), actor)
}

// Unset implements store.Writer.
func (s *Store) Unset(ctx context.Context, feature string, scope gate.Scope, actor gate.Actor) error {
	if s == nil || s.db == nil {
		return ErrDBRequired
	}
	normalized, err := normalizeKey(feature)
	if err != nil {
		return err
	}
	key := writeScope(scope)
	return s.upsert(ctx, normalized, key, nil, actor)
}

// Delete removes a stored grant row.
func (s *Store) Delete(ctx context.Context, feature string, scope gate.Scope) error {
	if s == nil || s.db == nil {
		return ErrDBRequired
	}
	normalized, err := normalizeKey(feature)
	if err != nil {
		return err
	}
	key := writeScope(scope)
	query := s.db.NewDelete().
		Where("feature = ?", normalized).
		Where("scope_type = ?", key.kind).
		Where("scope_id = ?", key.id)
	if s.table != "" {
		query = query.TableExpr(s.table)
	}
	_, err = query.Exec(ctx)
	return err
}

func (s *Store) upsert(ctx context.Context, feature string, key scopeKey, granted *bool, actor gate.Actor) error {
	record := GrantRecord{
		Feature:   feature,
		ScopeType: string(key.kind),
		ScopeID:   key.id,
		Granted:   granted,
		UpdatedBy: s.updatedBy(actor),
		UpdatedAt: s.now(),
	}
	query := s.db.NewInsert().Model(&record).
		On("CONFLICT (feature, scope_type, scope_id) DO UPDATE").
		Set("granted = EXCLUDED.granted").
		Set("updated_by = EXCLUDED.updated_by").
		Set("updated_at = EXCLUDED.updated_at")
	if s.table != "" {
		query = query.TableExpr(s.table)
	}
	_, err := query.Exec(ctx)
	return err
}

func defaultUpdatedBy(actor gate.Actor) string {
	if actor.ID != "" {
		return actor.ID
	}
	if actor.Name != "" {
		return actor.Name
	}
	if actor.Type != "" {
		return actor.Type
	}
	return ""
}

func normalizeKey(feature string) (string, error) {
	normalized := gate.NormalizeKey(strings.TrimSpace(feature))
	if normalized == "" {
		return "", ErrInvalidKey
	}
	return normalized, nil
}

func boolPtr(value bool) *bool {
	return &value
}

type scopeKey struct {
	kind scopeKind
	id   string
}

type scopeKind string

const (
	scopeSystem scopeKind = "system"
	scopeTenant scopeKind = "tenant"
	scopeOrg    scopeKind = "org"
	scopeUser   scopeKind = "user"
)

func readScopes(scope gate.Scope) []scopeKey {
	scopes := make([]scopeKey, 0, 4)
	if scope.UserID != "" {
		scopes = append(scopes, scopeKey{kind: scopeUser, id: scope.UserID})
	}
	if scope.OrgID != "" {
		scopes = append(scopes, scopeKey{kind: scopeOrg, id: scope.OrgID})
	}
	if scope.TenantID != "" {
		scopes = append(scopes, scopeKey{kind: scopeTenant, id: scope.TenantID})
	}
	scopes = append(scopes, scopeKey{kind: scopeSystem})
	return scopes
}

func writeScope(scope gate.Scope) scopeKey {
	switch {
	case scope.UserID != "":
		return scopeKey{kind: scopeUser, id: scope.UserID}
	case scope.OrgID != "":
		return scopeKey{kind: scopeOrg, id: scope.OrgID}
	case scope.TenantID != "":
		return scopeKey{kind: scopeTenant, id: scope.TenantID}
	default:
		return scopeKey{kind: scopeSystem}
	}
}

func grantFromRecord(record GrantRecord) store.Grant {
	if record.Granted == nil {
		return store.UnsetGrant()
	}
	if *record.Granted {
		return store.GrantedGrant(record.Tier)
	}
	return store.RevokedGrant()
}

var _ store.ReadWriter = (*Store)(nil)
