package recordstore

import (
	"context"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"riskgate/pkg/platform/audit/store/memory"
	"riskgate/pkg/platform/sentinel"
)

type deviceKey struct {
	userID   string
	deviceID string
}

type mfaAttempt struct {
	userID   string
	deviceID string
	success  bool
	at       time.Time
}

// InMemoryStore is a goroutine-safe Store for tests and single-node
// development. Reads return copies.
type InMemoryStore struct {
	*memory.InMemoryStore

	mu            sync.RWMutex
	verifications map[string]VerificationRecord
	accounts      map[string]AccountRecord
	roles         map[string][]string
	enrollments   map[string]MFAEnrollment
	bypasses      []BypassGrant
	sessions      []SessionRecord
	attempts      []mfaAttempt
	deviceTrust   map[deviceKey]DeviceTrustRecord
	trusted       map[deviceKey]TrustedDeviceRecord
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		InMemoryStore: memory.NewInMemoryStore(),
		verifications: make(map[string]VerificationRecord),
		accounts:      make(map[string]AccountRecord),
		roles:         make(map[string][]string),
		enrollments:   make(map[string]MFAEnrollment),
		deviceTrust:   make(map[deviceKey]DeviceTrustRecord),
		trusted:       make(map[deviceKey]TrustedDeviceRecord),
	}
}

// -----------------------------------------------------------------------------
// Seeding
// -----------------------------------------------------------------------------

func (s *InMemoryStore) PutVerification(v VerificationRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.verifications[v.ID] = cloneVerification(v)
	if v.Account != nil {
		s.accounts[v.Account.UserID] = *v.Account
	}
}

func (s *InMemoryStore) PutAccount(a AccountRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[a.UserID] = a
}

func (s *InMemoryStore) PutRoles(userID string, roles ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roles[userID] = slices.Clone(roles)
}

func (s *InMemoryStore) PutEnrollment(userID string, e MFAEnrollment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.Methods = slices.Clone(e.Methods)
	s.enrollments[userID] = e
}

func (s *InMemoryStore) PutBypassGrant(g BypassGrant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bypasses = append(s.bypasses, g)
}

func (s *InMemoryStore) AddSession(sess SessionRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = append(s.sessions, sess)
}

func (s *InMemoryStore) RecordMFAAttempt(userID, deviceID string, success bool, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts = append(s.attempts, mfaAttempt{userID: userID, deviceID: deviceID, success: success, at: at})
}

// -----------------------------------------------------------------------------
// Verification data
// -----------------------------------------------------------------------------

func (s *InMemoryStore) GetVerificationByID(_ context.Context, id string) (*VerificationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.verifications[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	out := cloneVerification(v)
	if out.Account == nil {
		if a, ok := s.accounts[v.UserID]; ok {
			out.Account = &a
		}
	}
	return &out, nil
}

func (s *InMemoryStore) FindDocumentsByHash(_ context.Context, fileHash, excludeVerificationID string) ([]DocumentRef, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var refs []DocumentRef
	for _, v := range s.verifications {
		if v.ID == excludeVerificationID {
			continue
		}
		for _, d := range v.Documents {
			if d.FileHash != "" && d.FileHash == fileHash {
				refs = append(refs, DocumentRef{DocumentID: d.ID, VerificationID: v.ID, UserID: v.UserID})
			}
		}
	}
	slices.SortFunc(refs, func(a, b DocumentRef) int {
		if c := strings.Compare(a.VerificationID, b.VerificationID); c != 0 {
			return c
		}
		return strings.Compare(a.DocumentID, b.DocumentID)
	})
	return refs, nil
}

func (s *InMemoryStore) CountRecentVerifications(_ context.Context, userID string, since time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, v := range s.verifications {
		if v.UserID == userID && !v.SubmittedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

// -----------------------------------------------------------------------------
// Accounts and MFA data
// -----------------------------------------------------------------------------

func (s *InMemoryStore) GetAccountCreationDate(_ context.Context, userID string) (time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[userID]
	if !ok {
		return time.Time{}, sentinel.ErrNotFound
	}
	return a.CreatedAt, nil
}

func (s *InMemoryStore) GetUserRoles(_ context.Context, userID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.roles[userID]), nil
}

func (s *InMemoryStore) GetMFAEnrollment(_ context.Context, userID string) (MFAEnrollment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e := s.enrollments[userID]
	e.Methods = slices.Clone(e.Methods)
	return e, nil
}

func (s *InMemoryStore) GetActiveBypassGrants(_ context.Context, userID string, now time.Time) ([]BypassGrant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []BypassGrant
	for _, g := range s.bypasses {
		if g.UserID == userID && now.Before(g.ExpiresAt) {
			out = append(out, g)
		}
	}
	return out, nil
}

func (s *InMemoryStore) GetMFAVerificationAttempts(_ context.Context, userID, deviceID string, since time.Time) (MFAAttemptStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var stats MFAAttemptStats
	for _, a := range s.attempts {
		if a.userID != userID || a.at.Before(since) {
			continue
		}
		if deviceID != "" && a.deviceID != deviceID {
			continue
		}
		stats.Total++
		if a.success {
			stats.Successful++
		}
	}
	return stats, nil
}

// -----------------------------------------------------------------------------
// Sessions and devices
// -----------------------------------------------------------------------------

func (s *InMemoryStore) GetRecentSessions(_ context.Context, userID, deviceID string, since time.Time, limit int) ([]SessionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []SessionRecord
	for _, sess := range s.sessions {
		if sess.UserID != userID || sess.CreatedAt.Before(since) {
			continue
		}
		if deviceID != "" && sess.DeviceID != deviceID {
			continue
		}
		out = append(out, sess)
	}
	slices.SortStableFunc(out, func(a, b SessionRecord) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *InMemoryStore) GetDeviceTrustRecord(_ context.Context, userID, deviceID string) (*DeviceTrustRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.deviceTrust[deviceKey{userID, deviceID}]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	out := cloneDeviceTrust(r)
	return &out, nil
}

// UpsertDeviceTrustRecord keeps the record with the latest UpdatedAt.
func (s *InMemoryStore) UpsertDeviceTrustRecord(_ context.Context, record DeviceTrustRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := deviceKey{record.UserID, record.DeviceID}
	if existing, ok := s.deviceTrust[key]; ok {
		if existing.UpdatedAt.After(record.UpdatedAt) {
			return nil
		}
		if !existing.FirstSeen.IsZero() {
			record.FirstSeen = existing.FirstSeen
		}
	}
	s.deviceTrust[key] = cloneDeviceTrust(record)
	return nil
}

func (s *InMemoryStore) GetTrustedDevice(_ context.Context, userID, deviceID string) (*TrustedDeviceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.trusted[deviceKey{userID, deviceID}]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &r, nil
}

// UpsertTrustedDevice keeps the record with the latest TrustedAt.
func (s *InMemoryStore) UpsertTrustedDevice(_ context.Context, record TrustedDeviceRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := deviceKey{record.UserID, record.DeviceID}
	if existing, ok := s.trusted[key]; ok && existing.TrustedAt.After(record.TrustedAt) {
		return nil
	}
	s.trusted[key] = record
	return nil
}

func cloneVerification(v VerificationRecord) VerificationRecord {
	out := v
	if v.Account != nil {
		a := *v.Account
		out.Account = &a
	}
	if v.Business != nil {
		b := *v.Business
		out.Business = &b
	}
	if v.Location != nil {
		l := *v.Location
		out.Location = &l
	}
	out.Documents = make([]DocumentRecord, len(v.Documents))
	for i, d := range v.Documents {
		d.ExtractedFields = maps.Clone(d.ExtractedFields)
		d.FraudIndicators = slices.Clone(d.FraudIndicators)
		out.Documents[i] = d
	}
	return out
}

func cloneDeviceTrust(r DeviceTrustRecord) DeviceTrustRecord {
	out := r
	out.RiskFactors = slices.Clone(r.RiskFactors)
	if r.Behavior != nil {
		b := *r.Behavior
		out.Behavior = &b
	}
	return out
}
