package designs

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Design is a saved certificate design. The document itself is stored as
// JSONB so the editor can round-trip it without schema migrations.
type Design struct {
	gorm.Model
	Title      string         `gorm:"size:255"`
	EventID    string         `gorm:"size:36;index"`
	Content    datatypes.JSON `gorm:"type:jsonb"`
	PreviewURL string         `gorm:"size:512"`
	CreatedBy  string         `gorm:"size:36"`
}

// Run is a summary row for one completed batch run of a design.
type Run struct {
	gorm.Model
	TaskID    string `gorm:"size:64;index"`
	DesignID  uint   `gorm:"index"`
	EventID   string `gorm:"size:36;index"`
	Total     int
	Succeeded int
	Failed    int
	Cancelled int
	ReportKey string `gorm:"size:512"`
}
