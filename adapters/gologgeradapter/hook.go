package gologgeradapter

import (
	"context"
	"strings"

	"github.com/goliatone/go-logger/glog"

	"github.com/goliatone/go-navgate/activity"
	"github.com/goliatone/go-navgate/gate"
)

// Hook logs entitlement checks and audit events using go-logger.
type Hook struct {
	logger        glog.Logger
	checkLevel    string
	eventLevel    string
	checkMessage  string
	eventMessage  string
	failedMessage string
}

// Option customizes the logger hook.
type Option func(*Hook)

// New builds a logging hook for check and audit events.
func New(logger glog.Logger, opts ...Option) *Hook {
	hook := &Hook{
		logger:        logger,
		checkLevel:    "debug",
		eventLevel:    "info",
		checkMessage:  "navgate.check",
		eventMessage:  "navgate.event",
		failedMessage: "navgate.check_failed",
	}
	for _, opt := range opts {
		if opt != nil {
			opt(hook)
		}
	}
	return hook
}

// WithCheckLevel sets the log level for entitlement check events.
func WithCheckLevel(level string) Option {
	return func(hook *Hook) {
		if hook == nil {
			return
		}
		hook.checkLevel = strings.ToLower(strings.TrimSpace(level))
	}
}

// WithEventLevel sets the log level for audit events.
func WithEventLevel(level string) Option {
	return func(hook *Hook) {
		if hook == nil {
			return
		}
		hook.eventLevel = strings.ToLower(strings.TrimSpace(level))
	}
}

// WithCheckMessage overrides the check log message.
func WithCheckMessage(message string) Option {
	return func(hook *Hook) {
		if hook == nil {
			return
		}
		hook.checkMessage = message
	}
}

// WithEventMessage overrides the audit log message.
func WithEventMessage(message string) Option {
	return func(hook *Hook) {
		if hook == nil {
			return
		}
		hook.eventMessage = message
	}
}

// OnCheck implements gate.CheckHook.
func (h *Hook) OnCheck(ctx context.Context, event gate.CheckEvent) {
	if h == nil || h.logger == nil {
		return
	}
	fields := map[string]any{
		"feature_key":      event.Feature,
		"feature_key_norm": event.NormalizedKey,
		"has_access":       event.Access.HasAccess,
		"check_source":     string(event.Source),
		"cache_hit":        event.Trace.CacheHit,
	}
	if event.Access.RequiredTier != "" {
		fields["required_tier"] = event.Access.RequiredTier
	}
	for key, value := range scopeFields(event.Scope) {
		fields[key] = value
	}
	level := h.checkLevel
	message := h.checkMessage
	if event.Error != nil {
		fields["error"] = event.Error.Error()
		level = "error"
		message = h.failedMessage
	}
	h.log(ctx, level, message, fields)
}

// OnEvent implements activity.Hook.
func (h *Hook) OnEvent(ctx context.Context, event activity.Event) {
	if h == nil || h.logger == nil {
		return
	}
	fields := map[string]any{
		"action": string(event.Action),
	}
	if event.Feature != "" {
		fields["feature_key"] = event.Feature
		fields["feature_key_norm"] = event.NormalizedKey
	}
	if event.Path != "" {
		fields["path"] = event.Path
	}
	if event.Role != "" {
		fields["role"] = string(event.Role)
	}
	if event.Reason != "" {
		fields["reason"] = event.Reason
	}
	if event.Granted != nil {
		fields["granted"] = *event.Granted
	}
	if event.Actor.ID != "" {
		fields["actor_id"] = event.Actor.ID
		fields["actor_type"] = event.Actor.Type
		fields["actor_name"] = event.Actor.Name
	}
	for key, value := range scopeFields(gate.Scope(event.Scope)) {
		fields[key] = value
	}
	h.log(ctx, h.eventLevel, h.eventMessage, fields)
}

func (h *Hook) log(ctx context.Context, level string, message string, fields map[string]any) {
	logger := h.logger
	if logger == nil {
		return
	}
	if ctx != nil {
		logger = logger.WithContext(ctx)
	}
	if fieldsLogger, ok := logger.(glog.FieldsLogger); ok && len(fields) > 0 {
		logger = fieldsLogger.WithFields(fields)
	}
	switch level {
	case "trace":
		logger.Trace(message)
	case "debug":
		logger.Debug(message)
	case "warn":
		logger.Warn(message)
	case "error":
		logger.Error(message)
	case "fatal":
		// Denied navigation is never fatal; downgrade to error.
		logger.Error(message)
	default:
		logger.Info(message)
	}
}

func scopeFields(scope gate.Scope) map[string]any {
	return map[string]any{
		"tenant_id": scope.TenantID,
		"org_id":    scope.OrgID,
		"user_id":   scope.UserID,
		"system":    scope.System,
	}
}

var _ gate.CheckHook = (*Hook)(nil)
var _ activity.Hook = (*Hook)(nil)
