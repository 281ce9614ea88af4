package scoreauth

import (
	"context"
	"errors"
	"time"
)

const (
	auditEventSessionRestore       = "session_restore"
	auditEventLoginSuccess         = "login_success"
	auditEventLoginFailure         = "login_failure"
	auditEventSignupSuccess        = "signup_success"
	auditEventSignupFailure        = "signup_failure"
	auditEventProfileUpdateSuccess = "profile_update_success"
	auditEventProfileUpdateFailure = "profile_update_failure"
	auditEventLogout               = "logout"
)

// AuditErrorCode is the coarse failure class written to [AuditEvent.Error].
type AuditErrorCode string

const (
	auditErrNotAuthenticated  AuditErrorCode = "not_authenticated"
	auditErrInvalidInput      AuditErrorCode = "invalid_input"
	auditErrService           AuditErrorCode = "service_rejected"
	auditErrTransport         AuditErrorCode = "transport_failure"
	auditErrStorage           AuditErrorCode = "storage_failure"
	auditErrMalformedResponse AuditErrorCode = "malformed_response"
	auditErrNotCreated        AuditErrorCode = "not_created"
	auditErrInvalidRecord     AuditErrorCode = "invalid_record"
	auditErrTokenExpired      AuditErrorCode = "token_expired"
	auditErrCanceled          AuditErrorCode = "canceled"
	auditErrInternal          AuditErrorCode = "internal_error"
)

var errStoredTokenExpired = errors.New("stored token expired")

func (m *Manager) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	user *User,
	err error,
	metadataBuilder func() map[string]string,
) {
	if m == nil || m.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		Success:   success,
		Metadata:  metadata,
	}
	if user != nil {
		event.UserID = user.ID
		event.Role = string(user.Role)
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	m.audit.Emit(ctx, event)
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrNotAuthenticated):
		return auditErrNotAuthenticated
	case errors.Is(err, ErrInvalidInput):
		return auditErrInvalidInput
	case errors.Is(err, ErrStorageFailure):
		return auditErrStorage
	case errors.Is(err, ErrServiceFailure):
		return auditErrService
	case errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return auditErrCanceled
	case errors.Is(err, ErrTransportFailure):
		return auditErrTransport
	case errors.Is(err, ErrMalformedLoginResponse):
		return auditErrMalformedResponse
	case errors.Is(err, ErrSignupNotCreated):
		return auditErrNotCreated
	case errors.Is(err, ErrRoleInvalid):
		return auditErrInvalidRecord
	case errors.Is(err, errStoredTokenExpired):
		return auditErrTokenExpired
	default:
		return auditErrInternal
	}
}
