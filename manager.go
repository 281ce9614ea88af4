package scoreauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sportae/scoreauth/api"
	"github.com/sportae/scoreauth/jwt"
	"github.com/sportae/scoreauth/session"
)

// Manager owns the signed-in session. It keeps memory, the credential store
// and the client's default credentials consistent, and notifies subscribers
// after every committed change.
//
// Manager is safe for concurrent use, but session operations are not
// serialized against each other: when two overlap, the last one to commit
// wins.
type Manager struct {
	config    Config
	creds     *session.CredentialSet
	client    AuthClient
	inspector *jwt.Inspector
	logger    *zap.Logger
	audit     *auditDispatcher
	metrics   *Metrics

	mu       sync.RWMutex
	user     *User
	token    string
	socket   string
	ready    bool
	inflight int
	// gen advances on every committed change to user, token or socket.
	gen uint64

	subMu   sync.Mutex
	subs    []subscriber
	nextSub uint64
}

type subscriber struct {
	id uint64
	fn func(State)
}

type snapshot struct {
	user   *User
	token  string
	socket string
}

func (m *Manager) usable() bool {
	return m != nil && m.creds != nil && m.client != nil
}

// State returns a copy of the current session.
func (m *Manager) State() State {
	if m == nil {
		return State{}
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stateLocked()
}

func (m *Manager) stateLocked() State {
	return State{
		User:        m.user.clone(),
		AuthToken:   m.token,
		SocketToken: m.socket,
		IsLoading:   m.inflight > 0,
		Ready:       m.ready,
	}
}

// Subscribe registers fn to receive the session after every change,
// including IsLoading and Ready transitions. fn runs synchronously on the
// goroutine that made the change. The returned func unregisters fn.
func (m *Manager) Subscribe(fn func(State)) (cancel func()) {
	if m == nil || fn == nil {
		return func() {}
	}

	m.subMu.Lock()
	m.nextSub++
	id := m.nextSub
	m.subs = append(m.subs, subscriber{id: id, fn: fn})
	m.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.subMu.Lock()
			defer m.subMu.Unlock()
			for i, s := range m.subs {
				if s.id == id {
					m.subs = append(m.subs[:i:i], m.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// notify delivers a fresh snapshot, so a late delivery never shows a state
// older than the change that triggered it.
func (m *Manager) notify() {
	m.subMu.Lock()
	subs := make([]subscriber, len(m.subs))
	copy(subs, m.subs)
	m.subMu.Unlock()

	if len(subs) == 0 {
		return
	}
	s := m.State()
	for _, sub := range subs {
		sub.fn(s)
	}
}

func (m *Manager) begin() {
	m.mu.Lock()
	m.inflight++
	first := m.inflight == 1
	m.mu.Unlock()
	if first {
		m.notify()
	}
}

func (m *Manager) end() {
	m.mu.Lock()
	m.inflight--
	last := m.inflight == 0
	m.mu.Unlock()
	if last {
		m.notify()
	}
}

// applyLocked replaces the session and the client's default credentials in
// one step. Callers hold m.mu.
func (m *Manager) applyLocked(s snapshot) {
	m.user = s.user
	m.token = s.token
	m.socket = s.socket
	m.gen++
	if s.user != nil && s.token != "" {
		m.client.Attach(s.token, s.user.ID)
		return
	}
	m.client.Detach()
}

func (m *Manager) snapshotLocked() snapshot {
	return snapshot{user: m.user, token: m.token, socket: m.socket}
}

// Restore hydrates the session from the credential store and marks the
// Manager ready. It reports whether a session was restored. Read and decode
// failures are logged and leave the session signed out.
func (m *Manager) Restore(ctx context.Context) bool {
	if !m.usable() {
		return false
	}
	m.begin()
	defer m.end()

	m.mu.RLock()
	startGen := m.gen
	m.mu.RUnlock()

	restored := false
	defer func() {
		m.mu.Lock()
		m.ready = true
		m.mu.Unlock()
	}()

	rec, err := m.creds.Load(ctx)
	if err != nil {
		m.metrics.Inc(MetricRestoreFailure)
		m.logger.Warn("restore: credential store read failed", zap.Error(err))
		m.emitAudit(ctx, auditEventSessionRestore, false, nil, &StorageError{Op: "load", Err: err}, nil)
		return false
	}
	if !rec.Complete() {
		m.metrics.Inc(MetricRestoreEmpty)
		m.logger.Debug("restore: no stored session",
			zap.Bool("has_user", rec.UserJSON != ""),
			zap.Bool("has_token", rec.AuthToken != ""),
		)
		return false
	}

	user, err := decodeUser(rec.UserJSON)
	if err != nil {
		m.metrics.Inc(MetricRestoreFailure)
		m.logger.Warn("restore: stored user is unreadable", zap.Error(err))
		m.emitAudit(ctx, auditEventSessionRestore, false, nil, err, nil)
		return false
	}

	if m.config.Session.DiscardExpiredTokens && m.inspector.Expired(rec.AuthToken) {
		m.metrics.Inc(MetricRestoreExpired)
		m.logger.Info("restore: stored token expired, discarding session", zap.String("user_id", user.ID))
		if err := m.creds.Clear(context.WithoutCancel(ctx)); err != nil {
			m.logger.Warn("restore: clearing expired session failed", zap.Error(err))
		}
		m.emitAudit(ctx, auditEventSessionRestore, false, user, errStoredTokenExpired, nil)
		return false
	}

	m.mu.Lock()
	if m.gen == startGen {
		m.applyLocked(snapshot{user: user, token: rec.AuthToken, socket: rec.SocketToken})
		restored = true
	}
	m.mu.Unlock()

	if !restored {
		m.logger.Debug("restore: session changed while reading, keeping current session")
		return false
	}

	m.metrics.Inc(MetricRestoreSuccess)
	m.logger.Info("session restored", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	m.emitAudit(ctx, auditEventSessionRestore, true, user, nil, nil)
	m.notify()
	return true
}

// Login signs in through the viewer surface. A missing or unknown role code
// in the response yields a viewer.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	return m.login(ctx, email, password, RoleViewer)
}

// ScorerLogin signs in through the scorer surface. It calls the same
// endpoint as Login; a missing or unknown role code yields a scorer.
func (m *Manager) ScorerLogin(ctx context.Context, email, password string) error {
	return m.login(ctx, email, password, RoleScorer)
}

func (m *Manager) login(ctx context.Context, email, password string, fallback Role) error {
	if !m.usable() {
		return ErrManagerNotReady
	}
	m.begin()
	defer m.end()

	surface := map[string]string{"surface": string(fallback)}
	metadata := func() map[string]string { return surface }

	start := time.Now()
	user, next, err := m.authenticate(ctx, email, password, fallback)
	m.metrics.Observe(MetricLoginLatency, time.Since(start))
	if err != nil {
		m.metrics.Inc(MetricLoginFailure)
		m.logger.Info("login failed", zap.String("surface", string(fallback)), zap.Error(err))
		m.emitAudit(ctx, auditEventLoginFailure, false, nil, err, metadata)
		return err
	}

	if err := m.establish(ctx, next); err != nil {
		m.metrics.Inc(MetricLoginFailure)
		m.metrics.Inc(MetricLoginRollback)
		m.logger.Warn("login rolled back: credentials not persisted",
			zap.String("user_id", user.ID),
			zap.Error(err),
		)
		m.emitAudit(ctx, auditEventLoginFailure, false, user, err, metadata)
		return err
	}

	m.metrics.Inc(MetricLoginSuccess)
	m.logger.Info("signed in",
		zap.String("user_id", user.ID),
		zap.String("role", string(user.Role)),
		zap.String("surface", string(fallback)),
	)
	m.emitAudit(ctx, auditEventLoginSuccess, true, user, nil, metadata)
	return nil
}

func (m *Manager) authenticate(ctx context.Context, email, password string, fallback Role) (*User, snapshot, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, snapshot{}, fmt.Errorf("%w: email and password are required", ErrInvalidInput)
	}

	resp, err := m.client.Login(ctx, email, password)
	if err != nil {
		if errors.Is(err, api.ErrMalformedResponse) {
			return nil, snapshot{}, fmt.Errorf("%w: %w", ErrMalformedLoginResponse, err)
		}
		return nil, snapshot{}, err
	}
	if resp == nil || resp.Token == "" || strings.TrimSpace(resp.ID.String()) == "" {
		return nil, snapshot{}, ErrMalformedLoginResponse
	}

	user := &User{
		ID:           resp.ID.String(),
		Email:        email,
		Name:         resp.Name,
		Role:         roleFromCode(resp.Role, fallback),
		ProfilePic:   resp.ProfilePic,
		Status:       resp.Status.String(),
		MobileNumber: resp.MobileNumber.String(),
		CountryCode:  resp.CountryCode.String(),
		Address:      resp.Address,
	}
	if raw := resp.Role.Raw(); raw != "" && raw != "null" {
		if _, ok := resp.Role.Code(); !ok {
			m.logger.Warn("unrecognized role code, using surface default",
				zap.String("role_code", raw),
				zap.String("role", string(fallback)),
			)
		}
	}

	return user, snapshot{user: user, token: resp.Token, socket: resp.SocketToken}, nil
}

// establish commits next to memory and the client, then persists it. When
// persistence fails the previous session is put back, unless another
// operation has committed in the meantime.
func (m *Manager) establish(ctx context.Context, next snapshot) error {
	userJSON, err := json.Marshal(next.user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}

	m.mu.Lock()
	prev := m.snapshotLocked()
	m.applyLocked(next)
	gen := m.gen
	m.mu.Unlock()

	err = m.creds.Save(ctx, session.Record{
		UserJSON:    string(userJSON),
		AuthToken:   next.token,
		SocketToken: next.socket,
	})
	if err != nil {
		m.rollback(ctx, gen, prev)
		return &StorageError{Op: "save", Err: err}
	}

	m.notify()
	return nil
}

func (m *Manager) rollback(ctx context.Context, gen uint64, prev snapshot) {
	m.mu.Lock()
	if m.gen != gen {
		m.mu.Unlock()
		m.logger.Debug("rollback skipped: session superseded")
		return
	}
	m.applyLocked(prev)
	m.mu.Unlock()

	// The failed save may have written some slots; put back what was there.
	ctx = context.WithoutCancel(ctx)
	var err error
	if prev.user == nil {
		err = m.creds.Clear(ctx)
	} else {
		var userJSON []byte
		userJSON, err = json.Marshal(prev.user)
		if err == nil {
			err = m.creds.Save(ctx, session.Record{
				UserJSON:    string(userJSON),
				AuthToken:   prev.token,
				SocketToken: prev.socket,
			})
		}
	}
	if err != nil {
		m.logger.Warn("rollback: restoring stored credentials failed", zap.Error(err))
	}
}

// Signup creates a viewer account and then signs in with the same
// credentials. Creation alone never yields a session; a sign-in failure
// after creation is returned as is.
func (m *Manager) Signup(ctx context.Context, email, password string) error {
	return m.signup(ctx, email, password, RoleViewer)
}

// ScorerSignup creates an account and signs in through the scorer surface.
// Only Email and Password reach the service.
func (m *Manager) ScorerSignup(ctx context.Context, req ScorerSignupRequest) error {
	if m.usable() && (req.Name != "" || req.MobileNumber != "" || req.CountryCode != "") {
		m.logger.Debug("scorer signup: profile fields are not sent at creation")
	}
	return m.signup(ctx, req.Email, req.Password, RoleScorer)
}

func (m *Manager) signup(ctx context.Context, email, password string, surface Role) error {
	if !m.usable() {
		return ErrManagerNotReady
	}
	m.begin()
	defer m.end()

	metadata := func() map[string]string {
		return map[string]string{"surface": string(surface)}
	}

	email = strings.TrimSpace(email)
	var err error
	if email == "" || password == "" {
		err = fmt.Errorf("%w: email and password are required", ErrInvalidInput)
	} else {
		var res *api.SignupResult
		res, err = m.client.Signup(ctx, email, password)
		if err == nil && !res.Created() {
			status := 0
			if res != nil {
				status = res.StatusCode
			}
			err = fmt.Errorf("%w: status %d", ErrSignupNotCreated, status)
		}
	}
	if err != nil {
		m.metrics.Inc(MetricSignupFailure)
		m.logger.Info("signup failed", zap.String("surface", string(surface)), zap.Error(err))
		m.emitAudit(ctx, auditEventSignupFailure, false, nil, err, metadata)
		return err
	}

	m.metrics.Inc(MetricSignupSuccess)
	m.emitAudit(ctx, auditEventSignupSuccess, true, nil, nil, metadata)

	return m.login(ctx, email, password, surface)
}

// UpdateProfile sends the set fields of p and merges them into the signed-in
// user. Tokens are not touched. If the user slot cannot be rewritten the
// merge is undone and a [*StorageError] is returned.
func (m *Manager) UpdateProfile(ctx context.Context, p ProfileUpdate) error {
	if !m.usable() {
		return ErrManagerNotReady
	}
	m.begin()
	defer m.end()

	m.mu.RLock()
	current := m.user.clone()
	token := m.token
	m.mu.RUnlock()

	err := m.updateProfile(ctx, current, token, p)
	if err != nil {
		m.metrics.Inc(MetricProfileUpdateFailure)
		m.logger.Info("profile update failed", zap.Error(err))
		m.emitAudit(ctx, auditEventProfileUpdateFailure, false, current, err, nil)
		return err
	}

	m.metrics.Inc(MetricProfileUpdateSuccess)
	m.emitAudit(ctx, auditEventProfileUpdateSuccess, true, current, nil, nil)
	return nil
}

func (m *Manager) updateProfile(ctx context.Context, current *User, token string, p ProfileUpdate) error {
	if current == nil || token == "" || strings.TrimSpace(current.ID) == "" {
		return ErrNotAuthenticated
	}

	req := p.request()
	if req.Empty() {
		return nil
	}
	if _, err := m.client.EditProfile(ctx, req); err != nil {
		return err
	}

	m.mu.Lock()
	if m.user == nil || m.token != token || m.user.ID != current.ID {
		m.mu.Unlock()
		return fmt.Errorf("%w: session ended during profile update", ErrNotAuthenticated)
	}
	prev := m.user
	merged := m.user.clone()
	p.applyTo(merged)
	m.user = merged
	m.gen++
	gen := m.gen
	m.mu.Unlock()

	userJSON, err := json.Marshal(merged)
	if err == nil {
		err = m.creds.SaveUser(ctx, string(userJSON))
	}
	if err != nil {
		m.mu.Lock()
		if m.gen == gen {
			m.user = prev
			m.gen++
		}
		m.mu.Unlock()
		return &StorageError{Op: "save user", Err: err}
	}

	m.notify()
	return nil
}

// Logout signs out. Memory and the client's credentials are cleared first
// and subscribers notified; then the stored credentials are deleted on a
// best-effort basis. Logout never fails and may be called repeatedly.
func (m *Manager) Logout(ctx context.Context) {
	if !m.usable() {
		return
	}
	m.begin()
	defer m.end()

	m.mu.Lock()
	prev := m.user
	m.applyLocked(snapshot{})
	m.mu.Unlock()

	m.metrics.Inc(MetricLogout)
	m.notify()

	if err := m.creds.Clear(context.WithoutCancel(ctx)); err != nil {
		m.metrics.Inc(MetricLogoutStorageFailure)
		m.logger.Warn("logout: clearing stored credentials failed", zap.Error(err))
	}

	if prev != nil {
		m.logger.Info("signed out", zap.String("user_id", prev.ID))
	}
	m.emitAudit(ctx, auditEventLogout, true, prev, nil, nil)
}

// Close stops the audit dispatcher after flushing queued events.
func (m *Manager) Close() {
	if m == nil {
		return
	}
	if m.audit != nil {
		m.audit.Close()
	}
}

// AuditDropped returns how many audit events were dropped.
func (m *Manager) AuditDropped() uint64 {
	if m == nil || m.audit == nil {
		return 0
	}
	return m.audit.Dropped()
}

// MetricsSnapshot returns the current counters.
func (m *Manager) MetricsSnapshot() MetricsSnapshot {
	if m == nil || m.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return m.metrics.Snapshot()
}
