package models

import (
	"encoding/json"
	"net/http"
	"time"
)

// Session is the server-defined session value. The client never looks inside it.
type Session = json.RawMessage

// LinkRecord is one entry of the /list response, kept verbatim.
type LinkRecord = json.RawMessage

// Token identifies a saved link.
type Token string

type SessionRequest struct {
	Session Session `json:"session"`
}

type SessionResponse struct {
	Session Session `json:"session"`
}

type ListResponse struct {
	Links []LinkRecord `json:"links"`
}

type SaveRequest struct {
	URL   string `json:"url"`
	Token *Token `json:"token"`
}

type TokenResponse struct {
	Token Token `json:"token"`
}

type ForgetRequest struct {
	Token Token `json:"token"`
}

const (
	AlertTypeSuccess = "success"
	AlertTypeError   = "error"
)

// Alert is a transient notification shown to the user.
type Alert struct {
	ID   int    `json:"id"`
	Msg  string `json:"msg"`
	Type string `json:"type"`
}

// StoredCookie is a cookie received from the server in the form it is persisted.
type StoredCookie struct {
	Name     string        `json:"name"`
	Value    string        `json:"value"`
	Path     string        `json:"path,omitempty"`
	Domain   string        `json:"domain,omitempty"`
	Expires  time.Time     `json:"expires,omitempty"`
	Secure   bool          `json:"secure,omitempty"`
	HttpOnly bool          `json:"http_only,omitempty"`
	SameSite http.SameSite `json:"same_site,omitempty"`
}

const (
	KeeperTypeFile = iota
	KeeperTypeMemory
)
