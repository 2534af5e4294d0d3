package service

import (
	"bytes"
	"context"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/MKhiriev/go-warden-sync/internal/crypto"
	"github.com/MKhiriev/go-warden-sync/internal/store"
	"github.com/MKhiriev/go-warden-sync/models"
	"github.com/stretchr/testify/require"
)

// testVaultKey — детерминированный 64-байтный ключ хранилища.
func testVaultKey(t *testing.T, fill byte) *crypto.SymmetricKey {
	t.Helper()
	key, err := crypto.SymmetricKeyFromBytes(bytes.Repeat([]byte{fill}, 64))
	require.NoError(t, err)
	t.Cleanup(key.Close)
	return key
}

func enc(t *testing.T, plain string, key *crypto.SymmetricKey) string {
	t.Helper()
	out, err := crypto.EncryptString(plain, key)
	require.NoError(t, err)
	return out
}

func dec(t *testing.T, value string, key *crypto.SymmetricKey) string {
	t.Helper()
	out, err := crypto.DecryptToString(value, key)
	require.NoError(t, err)
	return out
}

func testSealer() SecretSealer {
	return crypto.NewSealer(crypto.NewKeyChainService(), bytes.Repeat([]byte{7}, 32))
}

func testVault() models.Vault {
	return models.Vault{
		ID:         1,
		Email:      "user@example.com",
		ServerURLs: models.ResolveServerURLs("https://vault.example.com"),
		Kdf:        models.KdfParams{Type: models.KdfPBKDF2, Iterations: 5000},
	}
}

func syncedVault() models.Vault {
	v := testVault()
	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	v.LastSyncAt = &at
	return v
}

func strPtr(s string) *string { return &s }
func i64Ptr(v int64) *int64  { return &v }

// linkedEntry builds an entry already bound to cipherID in vault 1.
func linkedEntry(t *testing.T, kind models.EntryKind, cipherID, revision string, data any) models.Entry {
	t.Helper()
	raw, err := models.EncodeEntryData(data)
	require.NoError(t, err)
	return models.Entry{
		Kind:  kind,
		Title: "local",
		Data:  raw,
		Link: models.BitwardenLink{
			VaultID:      i64Ptr(1),
			CipherID:     strPtr(cipherID),
			RevisionDate: revision,
			SyncStatus:   models.SyncStatusSynced,
		},
	}
}

// ── memEntries ───────────────────────────────────────────────────────────────

type memEntries struct {
	mu      sync.Mutex
	rows    map[int64]models.Entry
	nextID  int64
	inserts int
	updates int
	deletes int
}

func newMemEntries(seed ...models.Entry) *memEntries {
	m := &memEntries{rows: map[int64]models.Entry{}}
	for _, e := range seed {
		m.nextID++
		e.ID = m.nextID
		m.rows[e.ID] = e
	}
	return m
}

func (m *memEntries) writes() int { return m.inserts + m.updates + m.deletes }

func (m *memEntries) inVault(e models.Entry, vaultID int64) bool {
	return e.Link.VaultID != nil && *e.Link.VaultID == vaultID
}

func (m *memEntries) Get(_ context.Context, id int64) (models.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.rows[id]
	if !ok {
		return models.Entry{}, store.ErrEntryNotFound
	}
	return e, nil
}

func (m *memEntries) GetByCipherID(_ context.Context, vaultID int64, cipherID string) (models.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.sorted() {
		if m.inVault(e, vaultID) && e.Link.Linked() && *e.Link.CipherID == cipherID {
			return e, nil
		}
	}
	return models.Entry{}, store.ErrEntryNotFound
}

func (m *memEntries) sorted() []models.Entry {
	out := make([]models.Entry, 0, len(m.rows))
	for _, e := range m.rows {
		out = append(out, e)
	}
	slices.SortFunc(out, func(a, b models.Entry) int { return int(a.ID - b.ID) })
	return out
}

func (m *memEntries) ListByVault(_ context.Context, vaultID int64) ([]models.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Entry
	for _, e := range m.sorted() {
		if m.inVault(e, vaultID) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memEntries) ListPendingUpload(_ context.Context, vaultID int64) ([]models.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Entry
	for _, e := range m.sorted() {
		if m.inVault(e, vaultID) && (!e.Link.Linked() || e.Link.LocalModified) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memEntries) CountLinked(_ context.Context, vaultID int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.rows {
		if m.inVault(e, vaultID) && e.Link.Linked() {
			n++
		}
	}
	return n, nil
}

func (m *memEntries) Insert(_ context.Context, e models.Entry) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	e.ID = m.nextID
	m.rows[e.ID] = e
	m.inserts++
	return e.ID, nil
}

func (m *memEntries) Update(_ context.Context, e models.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[e.ID]; !ok {
		return store.ErrEntryNotFound
	}
	m.rows[e.ID] = e
	m.updates++
	return nil
}

func (m *memEntries) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return store.ErrEntryNotFound
	}
	delete(m.rows, id)
	m.deletes++
	return nil
}

func (m *memEntries) DeleteLinkedNotIn(_ context.Context, vaultID int64, keep []string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, e := range m.rows {
		if m.inVault(e, vaultID) && e.Link.Linked() && !slices.Contains(keep, *e.Link.CipherID) {
			delete(m.rows, id)
			m.deletes++
			n++
		}
	}
	return n, nil
}

// ── memPending ───────────────────────────────────────────────────────────────

type memPending struct {
	mu  sync.Mutex
	ops []models.PendingOperation
}

func (m *memPending) Enqueue(_ context.Context, op models.PendingOperation) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	op.ID = int64(len(m.ops) + 1)
	if op.Status == "" {
		op.Status = models.OperationPending
	}
	m.ops = append(m.ops, op)
	return op.ID, nil
}

func (m *memPending) ListRunnable(_ context.Context, vaultID int64) ([]models.PendingOperation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.PendingOperation
	for _, op := range m.ops {
		if op.VaultID == vaultID && op.Status != models.OperationCompleted {
			out = append(out, op)
		}
	}
	return out, nil
}

func (m *memPending) set(id int64, fn func(*models.PendingOperation)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.ops {
		if m.ops[i].ID == id {
			fn(&m.ops[i])
			return nil
		}
	}
	return store.ErrPendingOperationNotFound
}

func (m *memPending) MarkCompleted(_ context.Context, id int64) error {
	return m.set(id, func(op *models.PendingOperation) { op.Status = models.OperationCompleted })
}

func (m *memPending) MarkFailed(_ context.Context, id int64, lastError string) error {
	return m.set(id, func(op *models.PendingOperation) {
		op.Status = models.OperationFailed
		op.Attempts++
		op.LastError = lastError
	})
}

func (m *memPending) HasActiveDelete(_ context.Context, vaultID int64, cipherID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, op := range m.ops {
		if op.VaultID == vaultID && op.Type == models.OperationDelete &&
			op.Status != models.OperationCompleted && op.CipherID != nil && *op.CipherID == cipherID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memPending) PurgeCompleted(_ context.Context, vaultID int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var (
		kept []models.PendingOperation
		n    int64
	)
	for _, op := range m.ops {
		if op.VaultID == vaultID && op.Status == models.OperationCompleted {
			n++
			continue
		}
		kept = append(kept, op)
	}
	m.ops = kept
	return n, nil
}

// ── memConflicts ─────────────────────────────────────────────────────────────

type memConflicts struct {
	mu   sync.Mutex
	rows []models.ConflictBackup
}

func (m *memConflicts) Insert(_ context.Context, b models.ConflictBackup) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b.ID = int64(len(m.rows) + 1)
	m.rows = append(m.rows, b)
	return b.ID, nil
}

func (m *memConflicts) ListByVault(_ context.Context, vaultID int64) ([]models.ConflictBackup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.ConflictBackup
	for _, b := range m.rows {
		if b.VaultID == vaultID {
			out = append(out, b)
		}
	}
	return out, nil
}

// ── memFolders / memSends ────────────────────────────────────────────────────

type memFolders struct {
	rows    map[string]models.Folder
	upserts int
}

func newMemFolders() *memFolders { return &memFolders{rows: map[string]models.Folder{}} }

func (m *memFolders) GetByServerID(_ context.Context, _ int64, id string) (models.Folder, error) {
	f, ok := m.rows[id]
	if !ok {
		return models.Folder{}, store.ErrFolderNotFound
	}
	return f, nil
}

func (m *memFolders) ListByVault(_ context.Context, _ int64) ([]models.Folder, error) {
	var out []models.Folder
	for _, f := range m.rows {
		out = append(out, f)
	}
	return out, nil
}

func (m *memFolders) Upsert(_ context.Context, f models.Folder) error {
	m.rows[f.ServerFolderID] = f
	m.upserts++
	return nil
}

func (m *memFolders) DeleteNotIn(_ context.Context, _ int64, keep []string) (int64, error) {
	var n int64
	for id := range m.rows {
		if !slices.Contains(keep, id) {
			delete(m.rows, id)
			n++
		}
	}
	return n, nil
}

type memSends struct {
	rows    map[string]models.Send
	upserts int
}

func newMemSends() *memSends { return &memSends{rows: map[string]models.Send{}} }

func (m *memSends) GetByServerID(_ context.Context, _ int64, id string) (models.Send, error) {
	s, ok := m.rows[id]
	if !ok {
		return models.Send{}, store.ErrSendNotFound
	}
	return s, nil
}

func (m *memSends) ListByVault(_ context.Context, _ int64) ([]models.Send, error) {
	var out []models.Send
	for _, s := range m.rows {
		out = append(out, s)
	}
	return out, nil
}

func (m *memSends) Upsert(_ context.Context, s models.Send) error {
	m.rows[s.ServerSendID] = s
	m.upserts++
	return nil
}

func (m *memSends) DeleteNotIn(_ context.Context, _ int64, keep []string) (int64, error) {
	var n int64
	for id := range m.rows {
		if !slices.Contains(keep, id) {
			delete(m.rows, id)
			n++
		}
	}
	return n, nil
}

// ── memVaults ────────────────────────────────────────────────────────────────

type memVaults struct {
	rows        map[int64]models.Vault
	syncUpdates int
	kdfUpdates  int
}

func newMemVaults(seed ...models.Vault) *memVaults {
	m := &memVaults{rows: map[int64]models.Vault{}}
	for _, v := range seed {
		m.rows[v.ID] = v
	}
	return m
}

func (m *memVaults) Insert(_ context.Context, v models.Vault) (models.Vault, error) {
	v.ID = int64(len(m.rows) + 1)
	m.rows[v.ID] = v
	return v, nil
}

func (m *memVaults) Get(_ context.Context, id int64) (models.Vault, error) {
	v, ok := m.rows[id]
	if !ok {
		return models.Vault{}, store.ErrVaultNotFound
	}
	return v, nil
}

func (m *memVaults) GetByEmail(_ context.Context, email, serverURL string) (models.Vault, error) {
	for _, v := range m.rows {
		if v.Email == email && v.ServerURLs.Vault == serverURL {
			return v, nil
		}
	}
	return models.Vault{}, store.ErrVaultNotFound
}

func (m *memVaults) List(_ context.Context) ([]models.Vault, error) {
	var out []models.Vault
	for _, v := range m.rows {
		out = append(out, v)
	}
	return out, nil
}

func (m *memVaults) UpdateKdf(_ context.Context, id int64, kdf models.KdfParams) error {
	v, ok := m.rows[id]
	if !ok {
		return store.ErrVaultNotFound
	}
	v.Kdf = kdf
	m.rows[id] = v
	m.kdfUpdates++
	return nil
}

func (m *memVaults) UpdateSyncStatus(_ context.Context, id int64, at time.Time, stamp string) error {
	v, ok := m.rows[id]
	if !ok {
		return store.ErrVaultNotFound
	}
	v.LastSyncAt = &at
	v.RevisionStamp = stamp
	m.rows[id] = v
	m.syncUpdates++
	return nil
}
