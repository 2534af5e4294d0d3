package models

import "time"

// SendType is the kind of a Bitwarden Send.
type SendType int

const (
	SendTypeText SendType = 0
	SendTypeFile SendType = 1
)

// SendText is the text payload of a Send.
type SendText struct {
	Text   string `json:"text,omitempty"`
	Hidden bool   `json:"hidden"`
}

// SendFile is the file metadata of a Send.
type SendFile struct {
	ID       string `json:"id,omitempty"`
	FileName string `json:"fileName,omitempty"`
	Size     string `json:"size,omitempty"`
}

// SendResponse is the wire form of a Send.
type SendResponse struct {
	ID             string    `json:"id"`
	AccessID       string    `json:"accessId"`
	Type           SendType  `json:"type"`
	Name           string    `json:"name"`
	Notes          string    `json:"notes,omitempty"`
	Key            string    `json:"key"`
	Password       *string   `json:"password,omitempty"`
	Text           *SendText `json:"text,omitempty"`
	File           *SendFile `json:"file,omitempty"`
	AccessCount    int       `json:"accessCount"`
	MaxAccessCount *int      `json:"maxAccessCount,omitempty"`
	Disabled       bool      `json:"disabled"`
	HideEmail      bool      `json:"hideEmail"`
	RevisionDate   string    `json:"revisionDate"`
	ExpirationDate *string   `json:"expirationDate,omitempty"`
	DeletionDate   string    `json:"deletionDate"`
}

// SendRequest is the body of POST /sends.
type SendRequest struct {
	Type           SendType  `json:"type"`
	Key            string    `json:"key"`
	Name           string    `json:"name"`
	Notes          string    `json:"notes,omitempty"`
	Password       string    `json:"password,omitempty"`
	Text           *SendText `json:"text,omitempty"`
	MaxAccessCount *int      `json:"maxAccessCount,omitempty"`
	Disabled       bool      `json:"disabled"`
	HideEmail      bool      `json:"hideEmail"`
	DeletionDate   string    `json:"deletionDate"`
	ExpirationDate *string   `json:"expirationDate,omitempty"`
}

// Send is the decrypted local copy of a server Send.
type Send struct {
	ID             int64
	VaultID        int64
	ServerSendID   string
	AccessID       string
	KeyBase64      string
	Type           SendType
	Name           string
	Notes          string
	Text           string
	TextHidden     bool
	FileName       string
	FileSize       string
	AccessCount    int
	MaxAccessCount *int
	HasPassword    bool
	Disabled       bool
	HideEmail      bool
	RevisionDate   string
	ExpirationDate *string
	DeletionDate   string
	ShareURL       string
	UpdatedAt      time.Time
}

// TextSendDraft describes a new text Send created on this client.
type TextSendDraft struct {
	Name           string
	Text           string
	Notes          string
	Password       string
	MaxAccessCount int
	HideEmail      bool
	HideText       bool
	DeletionDate   time.Time
	ExpirationDate *time.Time
}
