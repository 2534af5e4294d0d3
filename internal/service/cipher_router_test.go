package service

import (
	"context"
	"testing"

	"github.com/MKhiriev/go-warden-sync/internal/crypto"
	"github.com/MKhiriev/go-warden-sync/internal/logger"
	"github.com/MKhiriev/go-warden-sync/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type routerFixture struct {
	router    CipherRouter
	entries   *memEntries
	pending   *memPending
	conflicts *memConflicts
	sealer    SecretSealer
}

func newRouterFixture(t *testing.T, seed ...models.Entry) *routerFixture {
	t.Helper()
	f := &routerFixture{
		entries:   newMemEntries(seed...),
		pending:   &memPending{},
		conflicts: &memConflicts{},
		sealer:    testSealer(),
	}
	f.router = NewCipherRouter(f.entries, f.pending, NewConflictResolver(f.conflicts, logger.Nop()), f.sealer, logger.Nop())
	return f
}

func loginCipher(t *testing.T, id, revision string, key *crypto.SymmetricKey) models.Cipher {
	t.Helper()
	return models.Cipher{
		ID:           id,
		Type:         models.CipherTypeLogin,
		Name:         enc(t, "GitHub", key),
		Notes:        enc(t, "work account", key),
		RevisionDate: revision,
		Login: &models.CipherLogin{
			Username: enc(t, "octocat", key),
			Password: enc(t, "hunter2", key),
			URIs: []models.CipherURI{
				{URI: enc(t, "https://github.com", key)},
				{URI: enc(t, "androidapp://com.github.android", key)},
			},
		},
		Fields: []models.CipherField{
			{Name: enc(t, "email", key), Value: enc(t, "octo@example.com", key)},
			{Name: enc(t, "monica_city", key), Value: enc(t, "Berlin", key)},
		},
	}
}

// ── Route: password ──────────────────────────────────────────────────────────

func TestCipherRouter_Route_NewPassword_Added(t *testing.T) {
	key := testVaultKey(t, 0x11)
	f := newRouterFixture(t)

	res := f.router.Route(context.Background(), syncedVault(), loginCipher(t, "c1", "r1", key), key)
	require.Equal(t, RouteAdded, res.Outcome, res.Reason)
	assert.Equal(t, models.EntryKindPassword, res.Kind)

	entry, err := f.entries.Get(context.Background(), res.EntryID)
	require.NoError(t, err)
	assert.Equal(t, "GitHub", entry.Title)
	assert.Equal(t, "work account", entry.Notes)
	assert.Equal(t, "c1", *entry.Link.CipherID)
	assert.Equal(t, "r1", entry.Link.RevisionDate)
	assert.Equal(t, models.SyncStatusSynced, entry.Link.SyncStatus)
	assert.False(t, entry.Link.LocalModified)

	// пароль хранится только в запечатанном виде
	assert.NotContains(t, entry.Secret, "hunter2")
	plain, err := f.sealer.Open(entry.Secret)
	require.NoError(t, err)
	assert.Equal(t, "hunter2", plain)

	data, err := models.DecodeEntryData[models.LoginData](entry)
	require.NoError(t, err)
	assert.Equal(t, "octocat", data.Username)
	assert.Equal(t, "https://github.com", data.Website)
	assert.Equal(t, "com.github.android", data.AppPackageName)
	assert.Equal(t, "octo@example.com", data.Email, "legacy field name is read")
	assert.Equal(t, "Berlin", data.City)
}

func TestCipherRouter_Route_Idempotent(t *testing.T) {
	key := testVaultKey(t, 0x11)
	f := newRouterFixture(t)
	ctx := context.Background()
	c := loginCipher(t, "c1", "r1", key)

	first := f.router.Route(ctx, syncedVault(), c, key)
	require.Equal(t, RouteAdded, first.Outcome)
	writes := f.entries.writes()

	second := f.router.Route(ctx, syncedVault(), c, key)
	assert.Equal(t, RouteSkipped, second.Outcome)
	assert.Equal(t, writes, f.entries.writes(), "unchanged cipher must not write")
}

func TestCipherRouter_Route_NewRevision_Updated(t *testing.T) {
	key := testVaultKey(t, 0x11)
	existing := linkedEntry(t, models.EntryKindPassword, "c1", "r1", models.LoginData{Username: "old"})
	f := newRouterFixture(t, existing)

	res := f.router.Route(context.Background(), syncedVault(), loginCipher(t, "c1", "r2", key), key)
	require.Equal(t, RouteUpdated, res.Outcome, res.Reason)

	entry, err := f.entries.Get(context.Background(), res.EntryID)
	require.NoError(t, err)
	assert.Equal(t, "r2", entry.Link.RevisionDate)
	data, err := models.DecodeEntryData[models.LoginData](entry)
	require.NoError(t, err)
	assert.Equal(t, "octocat", data.Username)
}

func TestCipherRouter_Route_FolderMoveIsUpdate(t *testing.T) {
	key := testVaultKey(t, 0x11)
	existing := linkedEntry(t, models.EntryKindPassword, "c1", "r1", models.LoginData{})
	f := newRouterFixture(t, existing)

	c := loginCipher(t, "c1", "r1", key)
	c.FolderID = strPtr("folder-1")

	res := f.router.Route(context.Background(), syncedVault(), c, key)
	require.Equal(t, RouteUpdated, res.Outcome)
	entry, _ := f.entries.Get(context.Background(), res.EntryID)
	assert.Equal(t, "folder-1", entry.Link.FolderID)
}

func TestCipherRouter_Route_LocalModified(t *testing.T) {
	key := testVaultKey(t, 0x11)

	t.Run("revision mismatch records conflict", func(t *testing.T) {
		existing := linkedEntry(t, models.EntryKindPassword, "c1", "r1", models.LoginData{Username: "mine", Website: "https://mine.example"})
		existing.Link.LocalModified = true
		existing.Secret = "sealed-local"
		f := newRouterFixture(t, existing)

		res := f.router.Route(context.Background(), syncedVault(), loginCipher(t, "c1", "r2", key), key)
		require.Equal(t, RouteConflict, res.Outcome)
		assert.Zero(t, f.entries.writes(), "local entry must stay untouched")

		require.Len(t, f.conflicts.rows, 1)
		backup := f.conflicts.rows[0]
		assert.Equal(t, models.ConflictConcurrentEdit, backup.Type)
		assert.Equal(t, "c1", backup.CipherID)
		assert.Equal(t, "r1", backup.LocalRevisionDate)
		assert.Equal(t, "r2", backup.ServerRevisionDate)
		assert.Contains(t, backup.LocalDataJSON, "mine.example")
		assert.NotContains(t, backup.LocalDataJSON, "sealed-local")
	})

	t.Run("same revision waits for upload", func(t *testing.T) {
		existing := linkedEntry(t, models.EntryKindPassword, "c1", "r1", models.LoginData{})
		existing.Link.LocalModified = true
		f := newRouterFixture(t, existing)

		res := f.router.Route(context.Background(), syncedVault(), loginCipher(t, "c1", "r1", key), key)
		assert.Equal(t, RouteSkipped, res.Outcome)
		assert.Empty(t, f.conflicts.rows)
		assert.Zero(t, f.entries.writes())
	})
}

func TestCipherRouter_Route_Skips(t *testing.T) {
	key := testVaultKey(t, 0x11)
	ctx := context.Background()

	t.Run("trash", func(t *testing.T) {
		f := newRouterFixture(t)
		c := loginCipher(t, "c1", "r1", key)
		c.DeletedDate = strPtr("2026-01-01T00:00:00Z")
		assert.Equal(t, RouteSkipped, f.router.Route(ctx, syncedVault(), c, key).Outcome)
		assert.Zero(t, f.entries.writes())
	})

	t.Run("pending local delete", func(t *testing.T) {
		f := newRouterFixture(t)
		_, err := f.pending.Enqueue(ctx, models.PendingOperation{VaultID: 1, Type: models.OperationDelete, CipherID: strPtr("c1")})
		require.NoError(t, err)

		res := f.router.Route(ctx, syncedVault(), loginCipher(t, "c1", "r1", key), key)
		assert.Equal(t, RouteSkipped, res.Outcome)
		assert.Zero(t, f.entries.writes())
	})

	t.Run("unknown type", func(t *testing.T) {
		f := newRouterFixture(t)
		res := f.router.Route(ctx, syncedVault(), models.Cipher{ID: "c9", Type: 9, Name: enc(t, "x", key)}, key)
		assert.Equal(t, RouteSkipped, res.Outcome)
		assert.Contains(t, res.Reason, "unknown cipher type")
	})
}

func TestCipherRouter_Route_PasswordDecryptFails(t *testing.T) {
	key := testVaultKey(t, 0x11)
	other := testVaultKey(t, 0x22)
	f := newRouterFixture(t)

	c := loginCipher(t, "c1", "r1", key)
	c.Login.Password = enc(t, "hunter2", other)

	res := f.router.Route(context.Background(), syncedVault(), c, key)
	require.Equal(t, RouteError, res.Outcome)
	assert.ErrorIs(t, res.Err, ErrPasswordDecrypt)
	assert.Zero(t, f.entries.writes())
}

func TestCipherRouter_Route_SoftFieldFailureKeepsRecord(t *testing.T) {
	key := testVaultKey(t, 0x11)
	other := testVaultKey(t, 0x22)
	f := newRouterFixture(t)

	c := loginCipher(t, "c1", "r1", key)
	c.Login.Username = enc(t, "octocat", other)

	res := f.router.Route(context.Background(), syncedVault(), c, key)
	require.Equal(t, RouteAdded, res.Outcome)
	entry, _ := f.entries.Get(context.Background(), res.EntryID)
	data, _ := models.DecodeEntryData[models.LoginData](entry)
	assert.Empty(t, data.Username)
}

// ── Route: other kinds ───────────────────────────────────────────────────────

func TestCipherRouter_Route_Totp(t *testing.T) {
	key := testVaultKey(t, 0x11)
	f := newRouterFixture(t)

	c := models.Cipher{
		ID:           "t1",
		Type:         models.CipherTypeLogin,
		Name:         enc(t, "", key),
		RevisionDate: "r1",
		Login: &models.CipherLogin{
			Totp: enc(t, "otpauth://totp/ACME:alice?secret=JBSWY3DPEHPK3PXP&issuer=ACME&period=60&digits=8&algorithm=sha256", key),
		},
	}

	res := f.router.Route(context.Background(), syncedVault(), c, key)
	require.Equal(t, RouteAdded, res.Outcome, res.Reason)
	assert.Equal(t, models.EntryKindTOTP, res.Kind)

	entry, _ := f.entries.Get(context.Background(), res.EntryID)
	assert.Equal(t, "Authenticator", entry.Title)
	assert.Empty(t, entry.Secret)
	data, err := models.DecodeEntryData[models.TotpData](entry)
	require.NoError(t, err)
	assert.Equal(t, "ACME", data.Issuer)
	assert.Equal(t, "alice", data.AccountName)
	assert.Equal(t, 60, data.Period)
	assert.Equal(t, 8, data.Digits)
	assert.Equal(t, "SHA256", data.Algorithm)
}

func TestCipherRouter_Route_TotpWithPasswordIsPassword(t *testing.T) {
	key := testVaultKey(t, 0x11)
	f := newRouterFixture(t)

	c := loginCipher(t, "c1", "r1", key)
	c.Login.Totp = enc(t, "JBSWY3DPEHPK3PXP", key)

	res := f.router.Route(context.Background(), syncedVault(), c, key)
	require.Equal(t, RouteAdded, res.Outcome)
	assert.Equal(t, models.EntryKindPassword, res.Kind)
}

func TestCipherRouter_Route_Card(t *testing.T) {
	key := testVaultKey(t, 0x11)
	f := newRouterFixture(t)

	c := models.Cipher{
		ID:           "k1",
		Type:         models.CipherTypeCard,
		Name:         enc(t, "", key),
		RevisionDate: "r1",
		Card: &models.CipherCard{
			CardholderName: enc(t, "Alice", key),
			Brand:          enc(t, "Visa", key),
			Number:         enc(t, "4111111111111111", key),
			ExpMonth:       enc(t, "12", key),
			ExpYear:        enc(t, "2030", key),
			Code:           enc(t, "123", key),
		},
	}

	res := f.router.Route(context.Background(), syncedVault(), c, key)
	require.Equal(t, RouteAdded, res.Outcome)
	entry, _ := f.entries.Get(context.Background(), res.EntryID)
	assert.Equal(t, "Card", entry.Title)

	data, err := models.DecodeEntryData[models.BankCardData](entry)
	require.NoError(t, err)
	assert.Equal(t, models.BankCardData{
		CardNumber:     "4111111111111111",
		CardholderName: "Alice",
		ExpiryMonth:    "12",
		ExpiryYear:     "2030",
		CVV:            "123",
		BankName:       "Visa",
		Brand:          "Visa",
		CardType:       models.CardTypeCredit,
	}, data)
}

func TestCipherRouter_Route_SecureNote(t *testing.T) {
	key := testVaultKey(t, 0x11)
	f := newRouterFixture(t)

	c := models.Cipher{
		ID:           "n1",
		Type:         models.CipherTypeSecureNote,
		Name:         enc(t, "Wifi", key),
		Notes:        enc(t, "password: swordfish", key),
		RevisionDate: "r1",
		SecureNote:   &models.CipherSecureNote{},
	}

	res := f.router.Route(context.Background(), syncedVault(), c, key)
	require.Equal(t, RouteAdded, res.Outcome)
	entry, _ := f.entries.Get(context.Background(), res.EntryID)
	data, err := models.DecodeEntryData[models.NoteData](entry)
	require.NoError(t, err)
	assert.Equal(t, "password: swordfish", data.Content)
}

func TestCipherRouter_Route_Identity(t *testing.T) {
	key := testVaultKey(t, 0x11)

	tests := []struct {
		name     string
		identity func() *models.CipherIdentity
		wantType models.DocumentType
		wantNum  string
	}{
		{
			name: "passport",
			identity: func() *models.CipherIdentity {
				return &models.CipherIdentity{PassportNumber: enc(t, "P123", key)}
			},
			wantType: models.DocumentTypePassport,
			wantNum:  "P123",
		},
		{
			name: "license wins the number",
			identity: func() *models.CipherIdentity {
				return &models.CipherIdentity{LicenseNumber: enc(t, "L1", key), PassportNumber: enc(t, "P1", key)}
			},
			wantType: models.DocumentTypePassport,
			wantNum:  "L1",
		},
		{
			name: "ssn",
			identity: func() *models.CipherIdentity {
				return &models.CipherIdentity{SSN: enc(t, "123-45", key)}
			},
			wantType: models.DocumentTypeIDCard,
			wantNum:  "123-45",
		},
		{
			name:     "none",
			identity: func() *models.CipherIdentity { return &models.CipherIdentity{} },
			wantType: models.DocumentTypeOther,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newRouterFixture(t)
			id := tt.identity()
			id.FirstName = enc(t, "Ada", key)
			id.LastName = enc(t, "Lovelace", key)
			id.Company = enc(t, "Home Office", key)

			c := models.Cipher{ID: "i1", Type: models.CipherTypeIdentity, Name: enc(t, "", key), RevisionDate: "r1", Identity: id}
			res := f.router.Route(context.Background(), syncedVault(), c, key)
			require.Equal(t, RouteAdded, res.Outcome)

			entry, _ := f.entries.Get(context.Background(), res.EntryID)
			assert.Equal(t, "Identity", entry.Title)
			data, err := models.DecodeEntryData[models.DocumentData](entry)
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, data.DocumentType)
			assert.Equal(t, tt.wantNum, data.DocumentNumber)
			assert.Equal(t, "Ada Lovelace", data.FullName)
			assert.Equal(t, "Home Office", data.IssuedBy)
		})
	}
}

// ── Route: passkeys ──────────────────────────────────────────────────────────

func passkeyCipher(t *testing.T, key *crypto.SymmetricKey, counter string) models.Cipher {
	t.Helper()
	return models.Cipher{
		ID:           "p1",
		Type:         models.CipherTypeLogin,
		Name:         enc(t, "example.com [Passkey]", key),
		RevisionDate: "r2",
		Login: &models.CipherLogin{
			Username: enc(t, "alice", key),
			Fido2Credentials: []models.Fido2Credential{{
				CredentialID: enc(t, "cred-1", key),
				RpID:         "example.com", // plain text from another client
				UserName:     enc(t, "alice", key),
				Counter:      enc(t, counter, key),
				Discoverable: enc(t, "true", key),
			}},
		},
	}
}

func TestCipherRouter_Route_PasskeyNotLocal_Skipped(t *testing.T) {
	key := testVaultKey(t, 0x11)
	f := newRouterFixture(t)

	res := f.router.Route(context.Background(), syncedVault(), passkeyCipher(t, key, "3"), key)
	assert.Equal(t, RouteSkipped, res.Outcome)
	assert.Equal(t, models.EntryKindPasskey, res.Kind)
	assert.Zero(t, f.entries.writes(), "passkeys are never created from the server")
}

func TestCipherRouter_Route_PasskeyMetadataRefresh(t *testing.T) {
	key := testVaultKey(t, 0x11)

	existing := linkedEntry(t, models.EntryKindPasskey, "p1", "r1", models.PasskeyData{
		CredentialID: "cred-1",
		RpID:         "old.example.com",
		Counter:      7,
		Mode:         models.PasskeyModeBitwarden,
	})
	f := newRouterFixture(t, existing)

	res := f.router.Route(context.Background(), syncedVault(), passkeyCipher(t, key, "3"), key)
	require.Equal(t, RouteUpdated, res.Outcome, res.Reason)

	entry, _ := f.entries.Get(context.Background(), res.EntryID)
	assert.Equal(t, "example.com", entry.Title, "passkey suffix is stripped")
	assert.Equal(t, models.SyncStatusReference, entry.Link.SyncStatus, "no local private key")
	assert.Empty(t, entry.Secret)

	data, err := models.DecodeEntryData[models.PasskeyData](entry)
	require.NoError(t, err)
	assert.Equal(t, "example.com", data.RpID)
	assert.Equal(t, "alice", data.UserName)
	assert.Equal(t, 7, data.Counter, "counter never goes backwards")
}

// ── Route: kind changes ──────────────────────────────────────────────────────

func TestCipherRouter_Route_KindChange_PasswordNeverBecomesPasskey(t *testing.T) {
	key := testVaultKey(t, 0x11)
	sealer := testSealer()
	sealed, err := sealer.Seal("hunter2")
	require.NoError(t, err)

	existing := linkedEntry(t, models.EntryKindPassword, "p1", "r1", models.LoginData{Username: "octocat", Website: "https://github.com"})
	existing.Secret = sealed
	f := newRouterFixture(t, existing)

	res := f.router.Route(context.Background(), syncedVault(), passkeyCipher(t, key, "3"), key)
	assert.Equal(t, RouteSkipped, res.Outcome)
	assert.Zero(t, f.entries.writes())

	entry, err := f.entries.Get(context.Background(), res.EntryID)
	require.NoError(t, err)
	assert.Equal(t, models.EntryKindPassword, entry.Kind)
	assert.Equal(t, sealed, entry.Secret)
	assert.Equal(t, "r1", entry.Link.RevisionDate)
	data, err := models.DecodeEntryData[models.LoginData](entry)
	require.NoError(t, err)
	assert.Equal(t, "https://github.com", data.Website)
}

func TestCipherRouter_Route_KindChange_PasskeyKeepsPrivateKey(t *testing.T) {
	key := testVaultKey(t, 0x11)
	sealer := testSealer()
	privateKey, err := sealer.Seal("pkcs8-private-key")
	require.NoError(t, err)

	existing := linkedEntry(t, models.EntryKindPasskey, "c1", "r1", models.PasskeyData{
		CredentialID: "cred-1",
		RpID:         "github.com",
		Mode:         models.PasskeyModeBitwarden,
	})
	existing.Secret = privateKey
	f := newRouterFixture(t, existing)

	// шифр на сервере потерял блок FIDO2 и теперь выглядит как обычный логин
	res := f.router.Route(context.Background(), syncedVault(), loginCipher(t, "c1", "r2", key), key)
	assert.Equal(t, RouteSkipped, res.Outcome)
	assert.Zero(t, f.entries.writes())

	entry, err := f.entries.Get(context.Background(), res.EntryID)
	require.NoError(t, err)
	assert.Equal(t, models.EntryKindPasskey, entry.Kind)
	assert.Equal(t, privateKey, entry.Secret)
	data, err := models.DecodeEntryData[models.PasskeyData](entry)
	require.NoError(t, err)
	assert.Equal(t, "cred-1", data.CredentialID)
	assert.Equal(t, models.PasskeyModeBitwarden, data.Mode)
}

func TestCipherRouter_Route_KindChange_PasswordAndTotp(t *testing.T) {
	key := testVaultKey(t, 0x11)
	sealer := testSealer()
	sealed, err := sealer.Seal("old-password")
	require.NoError(t, err)

	totpOnly := func(id, revision string) models.Cipher {
		return models.Cipher{
			ID:           id,
			Type:         models.CipherTypeLogin,
			Name:         enc(t, "ACME", key),
			RevisionDate: revision,
			Login: &models.CipherLogin{
				Totp: enc(t, "otpauth://totp/ACME:alice?secret=JBSWY3DPEHPK3PXP&issuer=ACME", key),
			},
		}
	}

	t.Run("password to totp drops the sealed password", func(t *testing.T) {
		existing := linkedEntry(t, models.EntryKindPassword, "c1", "r1", models.LoginData{Username: "alice"})
		existing.Secret = sealed
		f := newRouterFixture(t, existing)

		res := f.router.Route(context.Background(), syncedVault(), totpOnly("c1", "r2"), key)
		require.Equal(t, RouteUpdated, res.Outcome, res.Reason)

		entry, _ := f.entries.Get(context.Background(), res.EntryID)
		assert.Equal(t, models.EntryKindTOTP, entry.Kind)
		assert.Empty(t, entry.Secret)
	})

	t.Run("totp to password seals the new password", func(t *testing.T) {
		existing := linkedEntry(t, models.EntryKindTOTP, "c1", "r1", models.TotpData{Secret: "JBSWY3DPEHPK3PXP"})
		f := newRouterFixture(t, existing)

		res := f.router.Route(context.Background(), syncedVault(), loginCipher(t, "c1", "r2", key), key)
		require.Equal(t, RouteUpdated, res.Outcome, res.Reason)

		entry, _ := f.entries.Get(context.Background(), res.EntryID)
		assert.Equal(t, models.EntryKindPassword, entry.Kind)
		plain, err := f.sealer.Open(entry.Secret)
		require.NoError(t, err)
		assert.Equal(t, "hunter2", plain)
	})
}
