// Package publishers routes audit events to the publisher for their
// category: compliance writes synchronously, security is ring-buffered and
// operations are sampled.
package publishers

import (
	"context"

	audit "riskgate/pkg/platform/audit"
)

type Router struct {
	compliance audit.Emitter
	security   audit.Emitter
	operations audit.Emitter
}

func NewRouter(compliance, security, operations audit.Emitter) *Router {
	return &Router{compliance: compliance, security: security, operations: operations}
}

func (r *Router) Emit(ctx context.Context, event audit.Event) error {
	if event.Category == "" {
		event.Category = audit.AuditEvent(event.Action).Category()
	}
	switch event.Category {
	case audit.CategoryCompliance:
		return r.compliance.Emit(ctx, event)
	case audit.CategorySecurity:
		return r.security.Emit(ctx, event)
	default:
		return r.operations.Emit(ctx, event)
	}
}
