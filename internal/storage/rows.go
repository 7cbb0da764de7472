package storage

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// ClientRow is one client of a snapshot
type ClientRow struct {
	SnapshotID     uuid.UUID
	CapturedAt     time.Time
	Updated        string
	CommonName     string
	RealAddress    string
	BytesReceived  string
	BytesSent      string
	ConnectedSince string
}

// AddressRow is one virtual address attached to a client of a snapshot
type AddressRow struct {
	SnapshotID  uuid.UUID
	RealAddress string
	Position    int // order within the client's virtual_addresses
	Address     string
	LastRef     string
}

// StatRow is one GLOBAL STATS entry of a snapshot
type StatRow struct {
	SnapshotID uuid.UUID
	CapturedAt time.Time
	Name       string
	Value      string
}

// Rows holds a snapshot flattened into the three archive tables
type Rows struct {
	Clients   []ClientRow
	Addresses []AddressRow
	Stats     []StatRow
}

// Flatten converts a snapshot into table rows.
// Stats are emitted sorted by name so inserts are deterministic.
func Flatten(snap Snapshot) Rows {
	var rows Rows
	if snap.Document == nil {
		return rows
	}

	for _, c := range snap.Document.Clients {
		rows.Clients = append(rows.Clients, ClientRow{
			SnapshotID:     snap.ID,
			CapturedAt:     snap.CapturedAt,
			Updated:        snap.Updated,
			CommonName:     c.CommonName,
			RealAddress:    c.RealAddress,
			BytesReceived:  c.BytesReceived,
			BytesSent:      c.BytesSent,
			ConnectedSince: c.ConnectedSince,
		})
		for i, va := range c.VirtualAddresses {
			rows.Addresses = append(rows.Addresses, AddressRow{
				SnapshotID:  snap.ID,
				RealAddress: c.RealAddress,
				Position:    i,
				Address:     va.Address,
				LastRef:     va.LastRef,
			})
		}
	}

	names := make([]string, 0, len(snap.Document.GlobalStats))
	for name := range snap.Document.GlobalStats {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		rows.Stats = append(rows.Stats, StatRow{
			SnapshotID: snap.ID,
			CapturedAt: snap.CapturedAt,
			Name:       name,
			Value:      snap.Document.GlobalStats[name],
		})
	}

	return rows
}
