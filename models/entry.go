package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// EntryKind discriminates the local entry shapes stored in a single table.
type EntryKind string

const (
	EntryKindPassword EntryKind = "PASSWORD"
	EntryKindTOTP     EntryKind = "TOTP"
	EntryKindNote     EntryKind = "NOTE"
	EntryKindBankCard EntryKind = "BANK_CARD"
	EntryKindDocument EntryKind = "DOCUMENT"
	EntryKindPasskey  EntryKind = "PASSKEY"
)

// SyncStatus tracks the relationship of a local entry with its server cipher.
type SyncStatus string

const (
	SyncStatusSynced    SyncStatus = "SYNCED"
	SyncStatusPending   SyncStatus = "PENDING"
	SyncStatusReference SyncStatus = "REFERENCE"
	SyncStatusFailed    SyncStatus = "FAILED"
)

// BitwardenLink ties a local entry to a server cipher. CipherID stays nil
// until the first successful upload.
type BitwardenLink struct {
	VaultID       *int64
	CipherID      *string
	FolderID      string
	RevisionDate  string
	LocalModified bool
	SyncStatus    SyncStatus
}

// Linked reports whether the entry references a server cipher.
func (l BitwardenLink) Linked() bool {
	return l.CipherID != nil && *l.CipherID != ""
}

// Entry is a local vault item. Data holds the kind-specific JSON payload,
// Secret holds the locally sealed password or passkey private key.
type Entry struct {
	ID        int64
	Kind      EntryKind
	Title     string
	Notes     string
	Favorite  bool
	Data      json.RawMessage
	Secret    string
	Link      BitwardenLink
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DecodeEntryData unmarshals the kind-specific payload of e.
func DecodeEntryData[T any](e Entry) (T, error) {
	var v T
	if len(e.Data) == 0 {
		return v, nil
	}
	if err := json.Unmarshal(e.Data, &v); err != nil {
		return v, fmt.Errorf("decode %s entry data: %w", e.Kind, err)
	}
	return v, nil
}

// EncodeEntryData marshals a kind-specific payload for [Entry.Data].
func EncodeEntryData(v any) (json.RawMessage, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode entry data: %w", err)
	}
	return data, nil
}

// LoginData is the payload of a password entry.
type LoginData struct {
	Username        string `json:"username"`
	Website         string `json:"website"`
	Totp            string `json:"totp,omitempty"`
	AppPackageName  string `json:"appPackageName,omitempty"`
	AppName         string `json:"appName,omitempty"`
	Email           string `json:"email,omitempty"`
	Phone           string `json:"phone,omitempty"`
	AddressLine     string `json:"addressLine,omitempty"`
	City            string `json:"city,omitempty"`
	State           string `json:"state,omitempty"`
	ZipCode         string `json:"zipCode,omitempty"`
	Country         string `json:"country,omitempty"`
	PasskeyBindings string `json:"passkeyBindings,omitempty"`
}

// TotpData is the payload of a standalone authenticator entry.
type TotpData struct {
	Secret      string `json:"secret"`
	Issuer      string `json:"issuer"`
	AccountName string `json:"accountName"`
	Period      int    `json:"period,omitempty"`
	Digits      int    `json:"digits,omitempty"`
	Algorithm   string `json:"algorithm,omitempty"`
}

// NoteData is the payload of a secure note entry.
type NoteData struct {
	Content string `json:"content"`
}

// CardType is the payment card category.
type CardType string

const (
	CardTypeCredit CardType = "CREDIT"
	CardTypeDebit  CardType = "DEBIT"
)

// BankCardData is the payload of a bank card entry.
type BankCardData struct {
	CardNumber     string   `json:"cardNumber"`
	CardholderName string   `json:"cardholderName"`
	ExpiryMonth    string   `json:"expiryMonth"`
	ExpiryYear     string   `json:"expiryYear"`
	CVV            string   `json:"cvv"`
	BankName       string   `json:"bankName"`
	Brand          string   `json:"brand,omitempty"`
	CardType       CardType `json:"cardType"`
}

// DocumentType is the identity document category.
type DocumentType string

const (
	DocumentTypeIDCard        DocumentType = "ID_CARD"
	DocumentTypePassport      DocumentType = "PASSPORT"
	DocumentTypeDriverLicense DocumentType = "DRIVER_LICENSE"
	DocumentTypeOther         DocumentType = "OTHER"
)

// DocumentData is the payload of an identity document entry.
type DocumentData struct {
	DocumentType   DocumentType `json:"documentType"`
	DocumentNumber string       `json:"documentNumber"`
	FullName       string       `json:"fullName"`
	IssuedBy       string       `json:"issuedBy"`
	Nationality    string       `json:"nationality"`
	Email          string       `json:"email,omitempty"`
	Phone          string       `json:"phone,omitempty"`
}

// PasskeyMode tells whether a passkey can be shared with Bitwarden.
type PasskeyMode string

const (
	PasskeyModeBitwarden PasskeyMode = "BITWARDEN_COMPATIBLE"
	PasskeyModeLegacy    PasskeyMode = "LEGACY"
)

// PasskeyData is the public part of a passkey entry. The PKCS#8 private
// key lives in [Entry.Secret].
type PasskeyData struct {
	CredentialID    string      `json:"credentialId"`
	RpID            string      `json:"rpId"`
	RpName          string      `json:"rpName"`
	UserHandle      string      `json:"userHandle,omitempty"`
	UserName        string      `json:"userName"`
	UserDisplayName string      `json:"userDisplayName"`
	KeyAlgorithm    string      `json:"keyAlgorithm,omitempty"`
	KeyCurve        string      `json:"keyCurve,omitempty"`
	Counter         int         `json:"counter"`
	Discoverable    bool        `json:"discoverable"`
	CreationDate    string      `json:"creationDate,omitempty"`
	Mode            PasskeyMode `json:"mode"`
}
