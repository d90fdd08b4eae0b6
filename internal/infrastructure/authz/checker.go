// Package authz holds the permission-check port the HTTP dispatch boundary
// calls before a command reaches an actor. The platform's policy engine sits
// behind this interface; this module ships only the local allow-all stub.
package authz

import (
	"context"

	"go.uber.org/zap"
)

// Subject and resource types used at the dispatch boundary.
const (
	SubjectUser     = "user"
	SubjectTerminal = "terminal"

	ResourceTenant = "tenant"
)

// CheckRequest identifies one permission question: may subject perform
// permission on resource.
type CheckRequest struct {
	ResourceType string
	ResourceID   string
	Permission   string
	SubjectType  string
	SubjectID    string
}

// PermissionChecker answers permission questions. Implementations must be
// safe for concurrent use. A false result with a nil error is a policy
// denial; an error means the decision could not be made and the caller must
// fail closed.
type PermissionChecker interface {
	CheckPermission(ctx context.Context, req CheckRequest) (bool, error)
}

// AllowAll grants every request. It stands in for the policy engine in
// local and test environments.
type AllowAll struct{}

// NewAllowAll returns a checker that grants everything
func NewAllowAll() AllowAll {
	return AllowAll{}
}

// CheckPermission implements PermissionChecker
func (AllowAll) CheckPermission(context.Context, CheckRequest) (bool, error) {
	return true, nil
}

// LoggingChecker wraps another checker and logs denials and failures, so
// policy rollouts can be audited without touching the dispatch path.
type LoggingChecker struct {
	next   PermissionChecker
	logger *zap.Logger
}

// NewLoggingChecker decorates next with denial logging
func NewLoggingChecker(next PermissionChecker, logger *zap.Logger) *LoggingChecker {
	return &LoggingChecker{next: next, logger: logger}
}

// CheckPermission implements PermissionChecker
func (c *LoggingChecker) CheckPermission(ctx context.Context, req CheckRequest) (bool, error) {
	allowed, err := c.next.CheckPermission(ctx, req)
	switch {
	case err != nil:
		c.logger.Error("permission check failed",
			zap.String("permission", req.Permission),
			zap.String("subject", req.SubjectType+":"+req.SubjectID),
			zap.Error(err))
	case !allowed:
		c.logger.Warn("permission denied",
			zap.String("permission", req.Permission),
			zap.String("resource", req.ResourceType+":"+req.ResourceID),
			zap.String("subject", req.SubjectType+":"+req.SubjectID))
	}
	return allowed, err
}

var (
	_ PermissionChecker = AllowAll{}
	_ PermissionChecker = (*LoggingChecker)(nil)
)
