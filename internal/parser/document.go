package parser

import (
	"bytes"
	"encoding/json"
	"io"
)

// VirtualAddress is a tunnel address assigned to a client session.
type VirtualAddress struct {
	Address string `json:"address"`
	LastRef string `json:"last_ref"`
}

// Client is one row of the client list. Counters and timestamps are kept
// exactly as the daemon printed them.
type Client struct {
	CommonName       string           `json:"common_name"`
	RealAddress      string           `json:"real_address"`
	BytesReceived    string           `json:"bytes_received"`
	BytesSent        string           `json:"bytes_sent"`
	ConnectedSince   string           `json:"connected_since"`
	VirtualAddresses []VirtualAddress `json:"virtual_addresses"`
}

// Route is one row of the routing table. Routes only live until they are
// attached to their client.
type Route struct {
	VirtualAddress string
	CommonName     string
	RealAddress    string
	LastRef        string
}

// GlobalStats maps a stat name to its raw value.
type GlobalStats map[string]string

// Document is the normalized report consumed by the dashboard.
type Document struct {
	Updated     string      `json:"updated"`
	Clients     []*Client   `json:"clients"`
	GlobalStats GlobalStats `json:"global_stats"`
}

// NewDocument returns an empty document whose collections encode as
// [] and {} rather than null.
func NewDocument() *Document {
	return &Document{
		Clients:     []*Client{},
		GlobalStats: GlobalStats{},
	}
}

// WriteJSON renders the document with two-space indentation.
func (d *Document) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(d)
}

// MarshalIndent returns the rendered document.
func (d *Document) MarshalIndent() ([]byte, error) {
	var buf bytes.Buffer
	if err := d.WriteJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
