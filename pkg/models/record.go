package models

// Record is one decoded access-log line.
type Record struct {
	RemoteHost string `json:"remotehost"`
	RFC931     string `json:"rfc931"`
	AuthUser   string `json:"authuser"`
	Date       int64  `json:"date"`
	Request    string `json:"request"`
	Status     uint16 `json:"status"`
	Bytes      uint64 `json:"bytes"`

	// Tags holds the IDs of rules that matched the record. It is filled by the
	// tagging stage before the record reaches the driver.
	Tags []string `json:"tags,omitempty"`
}
