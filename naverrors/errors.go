package naverrors

import (
	goerrors "github.com/goliatone/go-errors"
)

const (
	MetaFeatureKey           = "feature_key"
	MetaFeatureKeyNormalized = "feature_key_norm"
	MetaRequiredTier         = "required_tier"
	MetaRole                 = "role"
	MetaScope                = "scope"
	MetaStore                = "store"
	MetaDomain               = "domain"
	MetaAdapter              = "adapter"
	MetaOperation            = "operation"
	MetaStrict               = "strict"
	MetaPath                 = "path"
	MetaItemID               = "item_id"
	MetaEndpoint             = "endpoint"
	MetaStatusCode           = "status_code"
)

const (
	TextCodeInvalidKey         = "FEATURE_KEY_REQUIRED"
	TextCodeCheckerRequired    = "ENTITLEMENT_CHECKER_REQUIRED"
	TextCodeSessionRequired    = "SESSION_REQUIRED"
	TextCodeCatalogInvalid     = "NAV_CATALOG_INVALID"
	TextCodeResolverRequired   = "RESOLVER_REQUIRED"
	TextCodeStoreRequired      = "STORE_REQUIRED"
	TextCodeStoreReadFailed    = "STORE_READ_FAILED"
	TextCodeStoreWriteFailed   = "STORE_WRITE_FAILED"
	TextCodePlanLookupFailed   = "PLAN_LOOKUP_FAILED"
	TextCodeCheckFailed        = "ENTITLEMENT_CHECK_FAILED"
	TextCodeBackendUnavailable = "ENTITLEMENT_BACKEND_UNAVAILABLE"
	TextCodeAdapterFailed      = "ADAPTER_FAILED"
	TextCodeRenderFailed       = "NAV_RENDER_FAILED"
	TextCodePathRequired       = "PATH_REQUIRED"
	TextCodePathInvalid        = "PATH_INVALID"
	TextCodeGrantTypeInvalid   = "GRANT_TYPE_INVALID"
)

var (
	ErrInvalidKey       = newSentinel(goerrors.CategoryBadInput, goerrors.CodeBadRequest, TextCodeInvalidKey, "feature key required")
	ErrCheckerRequired  = newSentinel(goerrors.CategoryOperation, goerrors.CodeInternal, TextCodeCheckerRequired, "entitlement checker not configured")
	ErrSessionRequired  = newSentinel(goerrors.CategoryBadInput, goerrors.CodeBadRequest, TextCodeSessionRequired, "session is required")
	ErrCatalogInvalid   = newSentinel(goerrors.CategoryBadInput, goerrors.CodeBadRequest, TextCodeCatalogInvalid, "navigation catalog is invalid")
	ErrResolverRequired = newSentinel(goerrors.CategoryOperation, goerrors.CodeInternal, TextCodeResolverRequired, "resolver is required")
	ErrStoreRequired    = newSentinel(goerrors.CategoryOperation, goerrors.CodeInternal, TextCodeStoreRequired, "store is required")
	ErrPathRequired     = newSentinel(goerrors.CategoryBadInput, goerrors.CodeBadRequest, TextCodePathRequired, "path is required")
	ErrPathInvalid      = newSentinel(goerrors.CategoryBadInput, goerrors.CodeBadRequest, TextCodePathInvalid, "path is invalid")
	ErrScopeRequired    = newSentinel(goerrors.CategoryBadInput, goerrors.CodeBadRequest, TextCodeSessionRequired, "scope is required")
	ErrSnapshotRequired = newSentinel(goerrors.CategoryOperation, goerrors.CodeInternal, TextCodeStoreWriteFailed, "snapshot is required")
)

func newSentinel(category goerrors.Category, code int, textCode, message string) *goerrors.Error {
	err := goerrors.New(message, category).WithTextCode(textCode)
	if code != 0 {
		err.WithCode(code)
	}
	return err
}

// IsSentinel reports whether err is one of the package sentinels.
func IsSentinel(err error) bool {
	return err == ErrInvalidKey ||
		err == ErrCheckerRequired ||
		err == ErrSessionRequired ||
		err == ErrCatalogInvalid ||
		err == ErrResolverRequired ||
		err == ErrStoreRequired ||
		err == ErrPathRequired ||
		err == ErrPathInvalid ||
		err == ErrScopeRequired ||
		err == ErrSnapshotRequired
}

// WrapSentinel attaches metadata to a sentinel while keeping its identity
// reachable through Source.
func WrapSentinel(sentinel *goerrors.Error, message string, meta map[string]any) *goerrors.Error {
	if sentinel == nil {
		return nil
	}
	if message == "" {
		message = sentinel.Message
	}
	err := goerrors.New(message, sentinel.Category).
		WithTextCode(sentinel.TextCode).
		WithCode(sentinel.Code).
		WithSeverity(sentinel.Severity)
	err.Source = sentinel
	if meta != nil {
		err.WithMetadata(meta)
	}
	return err
}

// Wrap converts err into a rich error carrying category, text code and
// metadata. Rich errors are cloned so callers never mutate shared state.
func Wrap(err error, category goerrors.Category, textCode, message string, meta map[string]any) *goerrors.Error {
	if err == nil {
		return nil
	}
	if IsSentinel(err) {
		if sentinel, ok := err.(*goerrors.Error); ok {
			return WrapSentinel(sentinel, "", meta)
		}
	}
	if rich, ok := err.(*goerrors.Error); ok {
		clone := rich.Clone()
		if clone.TextCode == "" && textCode != "" {
			clone.TextCode = textCode
		}
		if clone.Message == "" && message != "" {
			clone.Message = message
		}
		if meta != nil {
			clone.WithMetadata(meta)
		}
		return clone
	}
	if message == "" {
		message = err.Error()
	}
	wrapped := goerrors.New(message, category).WithTextCode(textCode)
	wrapped.Source = err
	if meta != nil {
		wrapped.WithMetadata(meta)
	}
	return wrapped
}

// New builds a fresh rich error.
func New(category goerrors.Category, textCode, message string, meta map[string]any) *goerrors.Error {
	err := goerrors.New(message, category).WithTextCode(textCode)
	if meta != nil {
		err.WithMetadata(meta)
	}
	return err
}

func NewBadInput(textCode, message string, meta map[string]any) *goerrors.Error {
	return New(goerrors.CategoryBadInput, textCode, message, meta)
}

func WrapBadInput(err error, textCode, message string, meta map[string]any) *goerrors.Error {
	return Wrap(err, goerrors.CategoryBadInput, textCode, message, meta)
}

func NewOperation(textCode, message string, meta map[string]any) *goerrors.Error {
	return New(goerrors.CategoryOperation, textCode, message, meta)
}

func WrapOperation(err error, textCode, message string, meta map[string]any) *goerrors.Error {
	return Wrap(err, goerrors.CategoryOperation, textCode, message, meta)
}

func NewExternal(textCode, message string, meta map[string]any) *goerrors.Error {
	return New(goerrors.CategoryExternal, textCode, message, meta)
}

func WrapExternal(err error, textCode, message string, meta map[string]any) *goerrors.Error {
	return Wrap(err, goerrors.CategoryExternal, textCode, message, meta)
}

func NewInternal(textCode, message string, meta map[string]any) *goerrors.Error {
	return New(goerrors.CategoryInternal, textCode, message, meta)
}

func WrapInternal(err error, textCode, message string, meta map[string]any) *goerrors.Error {
	return Wrap(err, goerrors.CategoryInternal, textCode, message, meta)
}

// As unwraps err into a rich error when possible.
func As(err error) (*goerrors.Error, bool) {
	var rich *goerrors.Error
	if goerrors.As(err, &rich) {
		return rich, true
	}
	return nil, false
}
