package command

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-credentials/pkg/types"
	featuregate "github.com/goliatone/go-featuregate/gate"
	"github.com/google/uuid"
)

type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFixedClock() *fixedClock {
	return &fixedClock{now: time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)}
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type fakeRequestRepo struct {
	mu            sync.Mutex
	requests      map[uuid.UUID]*types.ResetRequest
	transitionErr error
	getCalls      int
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{requests: map[uuid.UUID]*types.ResetRequest{}}
}

func (r *fakeRequestRepo) add(req types.ResetRequest) *types.ResetRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	if req.ID == uuid.Nil {
		req.ID = uuid.New()
	}
	if req.Status == "" {
		req.Status = types.ResetStatusPending
	}
	stored := req
	r.requests[req.ID] = &stored
	return &stored
}

func (r *fakeRequestRepo) CreateRequest(_ context.Context, req types.ResetRequest) (*types.ResetRequest, error) {
	req.Status = types.ResetStatusPending
	req.NewPasswordHash = ""
	return r.add(req), nil
}

func (r *fakeRequestRepo) GetRequest(_ context.Context, id uuid.UUID) (*types.ResetRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.getCalls++
	req, ok := r.requests[id]
	if !ok {
		return nil, types.ErrRequestNotFound
	}
	copy := *req
	return &copy, nil
}

func (r *fakeRequestRepo) ListRequests(context.Context, types.ResetRequestFilter) (types.ResetRequestPage, error) {
	return types.ResetRequestPage{}, nil
}

func (r *fakeRequestRepo) CountSince(_ context.Context, email string, since time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, req := range r.requests {
		if req.Email == strings.ToLower(email) && !req.RequestedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (r *fakeRequestRepo) LatestRequestedAt(_ context.Context, email string) (time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest time.Time
	for _, req := range r.requests {
		if req.Email == strings.ToLower(email) && req.RequestedAt.After(latest) {
			latest = req.RequestedAt
		}
	}
	return latest, nil
}

func (r *fakeRequestRepo) Transition(_ context.Context, id uuid.UUID, to types.ResetStatus, review types.ResetReview) (*types.ResetRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.transitionErr != nil {
		return nil, r.transitionErr
	}
	req, ok := r.requests[id]
	if !ok {
		return nil, types.ErrRequestNotFound
	}
	if req.Status != types.ResetStatusPending {
		return nil, types.ErrRequestNotPending
	}
	req.Status = to
	req.ReviewedAt = review.ReviewedAt
	req.ReviewedBy = review.ReviewerID
	req.AdminNotes = review.Notes
	if to == types.ResetStatusApproved {
		req.NewPasswordHash = review.NewPasswordHash
		req.PasswordChangedAt = review.ReviewedAt
		req.PasswordChangedBy = review.ReviewerID
	}
	copy := *req
	return &copy, nil
}

func (r *fakeRequestRepo) PurgeTerminalBefore(_ context.Context, cutoff time.Time) ([]uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []uuid.UUID
	for id, req := range r.requests {
		if req.Status.IsTerminal() && req.RequestedAt.Before(cutoff) {
			ids = append(ids, id)
			delete(r.requests, id)
		}
	}
	return ids, nil
}

type fakeAccountRepo struct {
	mu           sync.Mutex
	accounts     map[uuid.UUID]*types.Account
	unlockErr    error
	emailLookups int
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{accounts: map[uuid.UUID]*types.Account{}}
}

func (r *fakeAccountRepo) add(account types.Account) *types.Account {
	r.mu.Lock()
	defer r.mu.Unlock()
	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}
	stored := account
	r.accounts[account.ID] = &stored
	return &stored
}

func (r *fakeAccountRepo) GetByEmail(_ context.Context, email string) (*types.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.emailLookups++
	for _, account := range r.accounts {
		if strings.EqualFold(account.Email, email) {
			copy := *account
			return &copy, nil
		}
	}
	return nil, nil
}

func (r *fakeAccountRepo) GetByID(_ context.Context, id uuid.UUID) (*types.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	account, ok := r.accounts[id]
	if !ok {
		return nil, types.ErrAccountNotFound
	}
	copy := *account
	return &copy, nil
}

func (r *fakeAccountRepo) Unlock(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.unlockErr != nil {
		return r.unlockErr
	}
	account, ok := r.accounts[id]
	if !ok {
		return types.ErrAccountNotFound
	}
	account.FailedLoginAttempts = 0
	account.IsLocked = false
	account.LockReason = ""
	account.LockedAt = time.Time{}
	return nil
}

type recordingCredentialStore struct {
	mu           sync.Mutex
	replaceCalls int
	secrets      map[uuid.UUID]string
	err          error
}

func newRecordingCredentialStore() *recordingCredentialStore {
	return &recordingCredentialStore{secrets: map[uuid.UUID]string{}}
}

func (s *recordingCredentialStore) ReplaceSecret(_ context.Context, userID uuid.UUID, storedHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replaceCalls++
	if s.err != nil {
		return s.err
	}
	s.secrets[userID] = storedHash
	return nil
}

func (s *recordingCredentialStore) VerifySecret(_ context.Context, userID uuid.UUID, password string, verifier types.PasswordHasher) (bool, error) {
	s.mu.Lock()
	stored, ok := s.secrets[userID]
	s.mu.Unlock()
	if !ok {
		return false, types.ErrCredentialNotFound
	}
	return verifier.Verify(stored, password), nil
}

// stubHasher produces a recognizable hash that never contains the input.
// beforeHash runs once, on the next Hash call, before the hash is computed.
type stubHasher struct {
	mu         sync.Mutex
	hashed     int
	err        error
	beforeHash func()
}

func (h *stubHasher) Hash(password string) (string, error) {
	h.mu.Lock()
	hook := h.beforeHash
	h.beforeHash = nil
	h.mu.Unlock()
	if hook != nil {
		hook()
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.err != nil {
		return "", h.err
	}
	h.hashed++
	sum := sha256.Sum256([]byte(password))
	return strings.Repeat("0", 32) + ":" + hex.EncodeToString(sum[:]), nil
}

func (h *stubHasher) Verify(stored, password string) bool {
	expected, _ := h.Hash(password)
	return expected == stored
}

type recordingAuditSink struct {
	mu        sync.Mutex
	entries   []types.AuditEntry
	err       error
	deleteErr error
}

func (s *recordingAuditSink) Log(_ context.Context, entry types.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.entries = append(s.entries, entry)
	return nil
}

func (s *recordingAuditSink) ListAudit(context.Context, types.AuditFilter) (types.AuditPage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return types.AuditPage{Entries: append([]types.AuditEntry(nil), s.entries...), Total: len(s.entries)}, nil
}

func (s *recordingAuditSink) DeleteByObjectIDs(_ context.Context, objectType string, ids []string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteErr != nil {
		return 0, s.deleteErr
	}
	drop := map[string]bool{}
	for _, id := range ids {
		drop[id] = true
	}
	kept := s.entries[:0]
	deleted := 0
	for _, entry := range s.entries {
		if entry.ObjectType == objectType && drop[entry.ObjectID] {
			deleted++
			continue
		}
		kept = append(kept, entry)
	}
	s.entries = kept
	return deleted, nil
}

func (s *recordingAuditSink) actions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.entries))
	for _, entry := range s.entries {
		out = append(out, entry.Action)
	}
	return out
}

// fakeUnitOfWork serializes units and restores every fake it hands out when
// fn fails, mirroring a rolled back transaction.
type fakeUnitOfWork struct {
	mu          sync.Mutex
	requests    *fakeRequestRepo
	accounts    *fakeAccountRepo
	credentials *recordingCredentialStore
	audit       *recordingAuditSink
	runs        int
	rollbacks   int
}

type fakeSnapshot struct {
	requests map[uuid.UUID]types.ResetRequest
	accounts map[uuid.UUID]types.Account
	secrets  map[uuid.UUID]string
	entries  []types.AuditEntry
}

func (u *fakeUnitOfWork) RunInTx(ctx context.Context, fn func(ctx context.Context, stores types.TxStores) error) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.runs++
	snapshot := u.snapshot()
	err := fn(ctx, types.TxStores{
		Requests:    u.requests,
		Accounts:    u.accounts,
		Credentials: u.credentials,
		Audit:       u.audit,
	})
	if err != nil {
		u.rollbacks++
		u.restore(snapshot)
	}
	return err
}

func (u *fakeUnitOfWork) snapshot() fakeSnapshot {
	snap := fakeSnapshot{
		requests: map[uuid.UUID]types.ResetRequest{},
		accounts: map[uuid.UUID]types.Account{},
		secrets:  map[uuid.UUID]string{},
	}
	u.requests.mu.Lock()
	for id, req := range u.requests.requests {
		snap.requests[id] = *req
	}
	u.requests.mu.Unlock()
	u.accounts.mu.Lock()
	for id, account := range u.accounts.accounts {
		snap.accounts[id] = *account
	}
	u.accounts.mu.Unlock()
	u.credentials.mu.Lock()
	for id, secret := range u.credentials.secrets {
		snap.secrets[id] = secret
	}
	u.credentials.mu.Unlock()
	u.audit.mu.Lock()
	snap.entries = append([]types.AuditEntry(nil), u.audit.entries...)
	u.audit.mu.Unlock()
	return snap
}

func (u *fakeUnitOfWork) restore(snap fakeSnapshot) {
	u.requests.mu.Lock()
	u.requests.requests = map[uuid.UUID]*types.ResetRequest{}
	for id, req := range snap.requests {
		stored := req
		u.requests.requests[id] = &stored
	}
	u.requests.mu.Unlock()
	u.accounts.mu.Lock()
	u.accounts.accounts = map[uuid.UUID]*types.Account{}
	for id, account := range snap.accounts {
		stored := account
		u.accounts.accounts[id] = &stored
	}
	u.accounts.mu.Unlock()
	u.credentials.mu.Lock()
	u.credentials.secrets = snap.secrets
	u.credentials.mu.Unlock()
	u.audit.mu.Lock()
	u.audit.entries = snap.entries
	u.audit.mu.Unlock()
}

type fakeAlertRepo struct {
	mu     sync.Mutex
	alerts map[uuid.UUID]*types.SecurityAlert
	err    error
}

func newFakeAlertRepo() *fakeAlertRepo {
	return &fakeAlertRepo{alerts: map[uuid.UUID]*types.SecurityAlert{}}
}

func (r *fakeAlertRepo) CreateAlert(_ context.Context, alert types.SecurityAlert) (*types.SecurityAlert, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	alert.ID = uuid.New()
	alert.Status = types.AlertStatusOpen
	stored := alert
	r.alerts[alert.ID] = &stored
	return &stored, nil
}

func (r *fakeAlertRepo) CloseAlert(_ context.Context, id, closedBy uuid.UUID, at time.Time) (*types.SecurityAlert, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	alert, ok := r.alerts[id]
	if !ok || alert.Status != types.AlertStatusOpen {
		return nil, types.ErrAlertNotOpen
	}
	alert.Status = types.AlertStatusClosed
	alert.ClosedAt = at
	alert.ClosedBy = closedBy
	copy := *alert
	return &copy, nil
}

func (r *fakeAlertRepo) ListAlerts(context.Context, types.AlertFilter) ([]types.SecurityAlert, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]types.SecurityAlert, 0, len(r.alerts))
	for _, alert := range r.alerts {
		out = append(out, *alert)
	}
	return out, len(out), nil
}

type stubFeatureGate struct {
	enabled bool
	err     error
	keys    []string
}

func (s *stubFeatureGate) Enabled(_ context.Context, key string, _ ...featuregate.ResolveOption) (bool, error) {
	s.keys = append(s.keys, key)
	if s.err != nil {
		return false, s.err
	}
	return s.enabled, nil
}

type recordingLogger struct {
	mu     sync.Mutex
	lines  []string
	fields [][]any
}

func (l *recordingLogger) record(msg string, fields []any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, msg)
	l.fields = append(l.fields, fields)
}

func (l *recordingLogger) Debug(msg string, fields ...any) { l.record(msg, fields) }
func (l *recordingLogger) Info(msg string, fields ...any)  { l.record(msg, fields) }
func (l *recordingLogger) Error(msg string, err error, fields ...any) {
	l.record(msg, append(fields, "error", err))
}

var (
	adminActor      = types.ActorRef{ID: uuid.New(), Role: types.ActorRoleAdmin}
	superAdminActor = types.ActorRef{ID: uuid.New(), Role: types.ActorRoleSuperAdmin}
	memberActor     = types.ActorRef{ID: uuid.New(), Role: "member"}
)
