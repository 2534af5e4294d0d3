// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

const (
	vaultColumns = `id, email, server_url, identity_url, api_url,
		kdf_type, kdf_iterations, kdf_memory, kdf_parallelism,
		last_sync_at, revision_stamp, created_at`

	insertVault = `
		INSERT INTO vaults (
			email,
			server_url,
			identity_url,
			api_url,
			kdf_type,
			kdf_iterations,
			kdf_memory,
			kdf_parallelism,
			created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?);`

	getVaultByID = `SELECT ` + vaultColumns + ` FROM vaults WHERE id = ?;`

	getVaultByEmail = `SELECT ` + vaultColumns + ` FROM vaults WHERE email = ? AND server_url = ?;`

	listVaults = `SELECT ` + vaultColumns + ` FROM vaults ORDER BY id;`

	updateVaultKdf = `
		UPDATE vaults
		SET kdf_type = ?, kdf_iterations = ?, kdf_memory = ?, kdf_parallelism = ?
		WHERE id = ?;`

	updateVaultSyncStatus = `
		UPDATE vaults
		SET last_sync_at = ?, revision_stamp = ?
		WHERE id = ?;`
)

const (
	entryColumns = `id, kind, title, notes, favorite, data, secret,
		vault_id, cipher_id, folder_id, revision_date, local_modified, sync_status,
		created_at, updated_at`

	insertEntry = `
		INSERT INTO entries (
			kind,
			title,
			notes,
			favorite,
			data,
			secret,
			vault_id,
			cipher_id,
			folder_id,
			revision_date,
			local_modified,
			sync_status,
			created_at,
			updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`

	getEntryByID = `SELECT ` + entryColumns + ` FROM entries WHERE id = ?;`

	getEntryByCipherID = `SELECT ` + entryColumns + ` FROM entries WHERE vault_id = ? AND cipher_id = ?;`

	listEntriesByVault = `SELECT ` + entryColumns + ` FROM entries WHERE vault_id = ? ORDER BY id;`

	listEntriesPendingUpload = `SELECT ` + entryColumns + ` FROM entries
		WHERE vault_id = ? AND (cipher_id IS NULL OR local_modified = 1)
		ORDER BY id;`

	countLinkedEntries = `SELECT COUNT(*) FROM entries WHERE vault_id = ? AND cipher_id IS NOT NULL;`

	updateEntry = `
		UPDATE entries
		SET kind = ?,
			title = ?,
			notes = ?,
			favorite = ?,
			data = ?,
			secret = ?,
			vault_id = ?,
			cipher_id = ?,
			folder_id = ?,
			revision_date = ?,
			local_modified = ?,
			sync_status = ?,
			updated_at = ?
		WHERE id = ?;`

	deleteEntry = `DELETE FROM entries WHERE id = ?;`
)

const (
	folderColumns = `id, vault_id, server_folder_id, name, revision_date, category_id, updated_at`

	getFolderByServerID = `SELECT ` + folderColumns + ` FROM folders WHERE vault_id = ? AND server_folder_id = ?;`

	listFoldersByVault = `SELECT ` + folderColumns + ` FROM folders WHERE vault_id = ? ORDER BY id;`

	upsertFolder = `
		INSERT INTO folders (vault_id, server_folder_id, name, revision_date, category_id, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (vault_id, server_folder_id) DO UPDATE SET
			name = excluded.name,
			revision_date = excluded.revision_date,
			updated_at = excluded.updated_at;`
)

const (
	sendColumns = `id, vault_id, server_send_id, access_id, key_base64, type, name, notes,
		text, text_hidden, file_name, file_size, access_count, max_access_count,
		has_password, disabled, hide_email, revision_date, expiration_date,
		deletion_date, share_url, updated_at`

	getSendByServerID = `SELECT ` + sendColumns + ` FROM sends WHERE vault_id = ? AND server_send_id = ?;`

	listSendsByVault = `SELECT ` + sendColumns + ` FROM sends WHERE vault_id = ? ORDER BY id;`

	upsertSend = `
		INSERT INTO sends (
			vault_id, server_send_id, access_id, key_base64, type, name, notes,
			text, text_hidden, file_name, file_size, access_count, max_access_count,
			has_password, disabled, hide_email, revision_date, expiration_date,
			deletion_date, share_url, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (vault_id, server_send_id) DO UPDATE SET
			access_id = excluded.access_id,
			key_base64 = excluded.key_base64,
			type = excluded.type,
			name = excluded.name,
			notes = excluded.notes,
			text = excluded.text,
			text_hidden = excluded.text_hidden,
			file_name = excluded.file_name,
			file_size = excluded.file_size,
			access_count = excluded.access_count,
			max_access_count = excluded.max_access_count,
			has_password = excluded.has_password,
			disabled = excluded.disabled,
			hide_email = excluded.hide_email,
			revision_date = excluded.revision_date,
			expiration_date = excluded.expiration_date,
			deletion_date = excluded.deletion_date,
			share_url = excluded.share_url,
			updated_at = excluded.updated_at;`
)

const (
	conflictColumns = `id, vault_id, entry_id, cipher_id, conflict_type,
		local_data_json, server_data_json, local_revision_date, server_revision_date,
		entry_title, description, created_at`

	insertConflictBackup = `
		INSERT INTO conflict_backups (
			vault_id,
			entry_id,
			cipher_id,
			conflict_type,
			local_data_json,
			server_data_json,
			local_revision_date,
			server_revision_date,
			entry_title,
			description,
			created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`

	listConflictBackups = `SELECT ` + conflictColumns + ` FROM conflict_backups WHERE vault_id = ? ORDER BY id;`
)

const (
	pendingColumns = `id, vault_id, operation_type, entry_id, cipher_id, status,
		attempts, last_error, created_at, updated_at`

	insertPendingOperation = `
		INSERT INTO pending_operations (
			vault_id,
			operation_type,
			entry_id,
			cipher_id,
			status,
			attempts,
			last_error,
			created_at,
			updated_at
		) VALUES (?, ?, ?, ?, ?, 0, '', ?, ?);`

	markPendingCompleted = `
		UPDATE pending_operations
		SET status = 'COMPLETED', attempts = attempts + 1, last_error = '', updated_at = ?
		WHERE id = ?;`

	markPendingFailed = `
		UPDATE pending_operations
		SET status = 'FAILED', attempts = attempts + 1, last_error = ?, updated_at = ?
		WHERE id = ?;`

	hasActiveDelete = `
		SELECT EXISTS (
			SELECT 1 FROM pending_operations
			WHERE vault_id = ? AND cipher_id = ? AND operation_type = 'DELETE'
			AND status IN ('PENDING', 'FAILED')
		);`

	purgeCompletedOperations = `DELETE FROM pending_operations WHERE vault_id = ? AND status = 'COMPLETED';`
)
