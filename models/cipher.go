package models

// CipherType is the server-side record kind.
type CipherType int

const (
	CipherTypeLogin      CipherType = 1
	CipherTypeSecureNote CipherType = 2
	CipherTypeCard       CipherType = 3
	CipherTypeIdentity   CipherType = 4
)

// FieldType is the kind of a custom field.
type FieldType int

const (
	FieldTypeText    FieldType = 0
	FieldTypeHidden  FieldType = 1
	FieldTypeBoolean FieldType = 2
	FieldTypeLinked  FieldType = 3
)

// Cipher is the wire form of a server vault record. Every string payload
// field holds a cipher string ("2.iv|data|mac") unless empty.
type Cipher struct {
	ID             string            `json:"id,omitempty"`
	OrganizationID string            `json:"organizationId,omitempty"`
	FolderID       *string           `json:"folderId"`
	Type           CipherType        `json:"type"`
	Name           string            `json:"name"`
	Notes          string            `json:"notes,omitempty"`
	Favorite       bool              `json:"favorite"`
	Reprompt       int               `json:"reprompt"`
	Login          *CipherLogin      `json:"login,omitempty"`
	Card           *CipherCard       `json:"card,omitempty"`
	Identity       *CipherIdentity   `json:"identity,omitempty"`
	SecureNote     *CipherSecureNote `json:"secureNote,omitempty"`
	Fields         []CipherField     `json:"fields,omitempty"`
	RevisionDate   string            `json:"revisionDate,omitempty"`
	CreationDate   string            `json:"creationDate,omitempty"`
	DeletedDate    *string           `json:"deletedDate,omitempty"`
}

// IsDeleted reports whether the cipher sits in the server trash.
func (c Cipher) IsDeleted() bool {
	return c.DeletedDate != nil && *c.DeletedDate != ""
}

// Folder returns the folder id or an empty string.
func (c Cipher) Folder() string {
	if c.FolderID == nil {
		return ""
	}
	return *c.FolderID
}

// CipherLogin is the login payload of a type 1 cipher.
type CipherLogin struct {
	Username         string            `json:"username,omitempty"`
	Password         string            `json:"password,omitempty"`
	Totp             string            `json:"totp,omitempty"`
	URIs             []CipherURI       `json:"uris,omitempty"`
	Fido2Credentials []Fido2Credential `json:"fido2Credentials,omitempty"`
}

// CipherURI is a single login URI with an optional match strategy.
type CipherURI struct {
	URI   string `json:"uri"`
	Match *int   `json:"match,omitempty"`
}

// Fido2Credential is an encrypted passkey record attached to a login.
type Fido2Credential struct {
	CredentialID    string `json:"credentialId"`
	KeyType         string `json:"keyType"`
	KeyAlgorithm    string `json:"keyAlgorithm"`
	KeyCurve        string `json:"keyCurve"`
	KeyValue        string `json:"keyValue"`
	RpID            string `json:"rpId"`
	RpName          string `json:"rpName,omitempty"`
	UserHandle      string `json:"userHandle,omitempty"`
	UserName        string `json:"userName,omitempty"`
	UserDisplayName string `json:"userDisplayName,omitempty"`
	Counter         string `json:"counter"`
	Discoverable    string `json:"discoverable"`
	CreationDate    string `json:"creationDate,omitempty"`
}

// CipherCard is the payload of a type 3 cipher.
type CipherCard struct {
	CardholderName string `json:"cardholderName,omitempty"`
	Brand          string `json:"brand,omitempty"`
	Number         string `json:"number,omitempty"`
	ExpMonth       string `json:"expMonth,omitempty"`
	ExpYear        string `json:"expYear,omitempty"`
	Code           string `json:"code,omitempty"`
}

// CipherIdentity is the payload of a type 4 cipher.
type CipherIdentity struct {
	Title          string `json:"title,omitempty"`
	FirstName      string `json:"firstName,omitempty"`
	MiddleName     string `json:"middleName,omitempty"`
	LastName       string `json:"lastName,omitempty"`
	Address1       string `json:"address1,omitempty"`
	Address2       string `json:"address2,omitempty"`
	Address3       string `json:"address3,omitempty"`
	City           string `json:"city,omitempty"`
	State          string `json:"state,omitempty"`
	PostalCode     string `json:"postalCode,omitempty"`
	Country        string `json:"country,omitempty"`
	Company        string `json:"company,omitempty"`
	Email          string `json:"email,omitempty"`
	Phone          string `json:"phone,omitempty"`
	SSN            string `json:"ssn,omitempty"`
	Username       string `json:"username,omitempty"`
	PassportNumber string `json:"passportNumber,omitempty"`
	LicenseNumber  string `json:"licenseNumber,omitempty"`
}

// CipherSecureNote is the payload of a type 2 cipher. Type 0 is generic.
type CipherSecureNote struct {
	Type int `json:"type"`
}

// CipherField is a custom name/value field.
type CipherField struct {
	Name     string    `json:"name,omitempty"`
	Value    string    `json:"value,omitempty"`
	Type     FieldType `json:"type"`
	LinkedID *int      `json:"linkedId,omitempty"`
}

// Folder is the wire form of a server folder.
type FolderResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	RevisionDate string `json:"revisionDate"`
}

// Profile is the account section of the sync snapshot.
type Profile struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	Name          string `json:"name,omitempty"`
	SecurityStamp string `json:"securityStamp"`
	Key           string `json:"key,omitempty"`
}

// SyncResponse is the full vault snapshot returned by GET /sync.
type SyncResponse struct {
	Profile Profile          `json:"profile"`
	Folders []FolderResponse `json:"folders"`
	Ciphers []Cipher         `json:"ciphers"`
	Sends   []SendResponse   `json:"sends"`
}

// ActiveCiphers returns the ciphers that are not in the server trash.
func (s SyncResponse) ActiveCiphers() []Cipher {
	active := make([]Cipher, 0, len(s.Ciphers))
	for _, c := range s.Ciphers {
		if !c.IsDeleted() {
			active = append(active, c)
		}
	}
	return active
}
