package models

import "time"

// RemoteFile is one entry of the server's file listing. The listing is a
// read-only snapshot: the server is the sole producer and the client
// replaces the whole list on every refresh.
type RemoteFile struct {
	// Name is unique within the listing. It arrives unescaped; callers
	// rendering it into markup must HTML-escape it, and callers putting it
	// into a URL must percent-encode it. These are two separate steps.
	Name string `json:"name"`

	// Size in bytes, non-negative.
	Size int64 `json:"size"`

	// Date is the modification time in epoch milliseconds.
	Date int64 `json:"date"`

	// DateStr is the server-formatted modification time. Optional; display
	// prefers it when present.
	DateStr string `json:"dateStr,omitempty"`
}

// ModifiedAt converts the epoch-millisecond Date field to a time.Time.
func (f RemoteFile) ModifiedAt() time.Time {
	return time.UnixMilli(f.Date)
}

// ListResponse is the body of GET /list-files.
type ListResponse struct {
	Files []RemoteFile `json:"files"`
}

// StatusResponse is the generic mutation response body: upload, delete,
// register, login and logout all answer with some subset of these fields.
type StatusResponse struct {
	Success  bool   `json:"success"`
	Count    int    `json:"count,omitempty"`
	Message  string `json:"message,omitempty"`
	Username string `json:"username,omitempty"`
}

// LoginStatus is the body of GET /check-login.
type LoginStatus struct {
	LoggedIn bool   `json:"loggedIn"`
	Username string `json:"username,omitempty"`
}
