// Package hostref is a reference implementation of hostapi's capability
// interfaces backed by SQLite via gorm (spec §1, §6 — the host boundary is
// out of scope for the core itself, but tests and the demo daemon need a
// real collaborator). Grounded on nhbchain's services/otc-gateway/server.go
// DB-and-transaction shape, adapted here from invoice/branch/decision models
// to two tables: one row per publisher-info record, and named blobs holding
// the publisher-state, ledger-state and registry bodies.
package hostref

import "time"

// publisherRecordRow is the gorm row backing one (id, month, year)
// PublisherInfo (spec §3).
type publisherRecordRow struct {
	ID            string `gorm:"primaryKey"`
	Month         int    `gorm:"primaryKey"`
	Year          int    `gorm:"primaryKey"`
	Duration      uint64
	Visits        uint32
	Score         float64
	Percent       uint32
	Weight        float64
	Pinned        bool
	Category      uint32
	FaviconURL    string
	Verified      bool
	Contributions string // json-encoded []types.ContributionInfo
	UpdatedAt     time.Time
}

func (publisherRecordRow) TableName() string { return "publisher_records" }

// blobRow stores a single named opaque blob: the publisher-state JSON, the
// wallet's ledger-state blob, and the last-fetched registry body all share
// this shape, distinguished by Name.
type blobRow struct {
	Name string `gorm:"primaryKey"`
	Body []byte
}

func (blobRow) TableName() string { return "blobs" }

const (
	blobNamePublisherState = "publisher_state"
	blobNameLedgerState    = "ledger_state"
)
