// model.go defines the persisted data model
package datastore

import "time"

// Design is a stored label design: raw markup plus physical dimensions.
type Design struct {
	ID           uint   `gorm:"primaryKey"`
	Name         string `gorm:"index:idx_designs_name;not null"`
	Markup       string `gorm:"type:text;not null"`
	WidthInches  float64
	HeightInches float64
	Dpmm         int
	CreatedAt    time.Time `gorm:"index"`
}

// PrintLog is one issued serial. The table is append-only: rows are never
// updated or deleted, the full set per design forms the issuance history.
type PrintLog struct {
	ID       uint      `gorm:"primaryKey"`
	DesignID uint      `gorm:"index:idx_printlogs_design;not null"`
	Serial   int       `gorm:"index:idx_printlogs_serial;not null"`
	IssuedAt time.Time `gorm:"index:idx_printlogs_issued;not null"` // UTC
	Reprint  bool
}

// PrintLogFilter selects ledger rows for audit queries. Zero values mean
// "no constraint".
type PrintLogFilter struct {
	DesignName string     // substring match on the design name
	Serial     *int       // exact serial
	From       *time.Time // inclusive lower bound on IssuedAt (UTC)
	To         *time.Time // inclusive upper bound on IssuedAt (UTC)
}

// PrintLogRecord is a ledger row joined with its design name, as consumed
// by the reporting surface.
type PrintLogRecord struct {
	ID         uint      `json:"id"`
	DesignID   uint      `json:"designId"`
	DesignName string    `json:"designName"`
	Serial     int       `json:"serial"`
	IssuedAt   time.Time `json:"issuedAtUtc"`
	Reprint    bool      `json:"isReprint"`
}
