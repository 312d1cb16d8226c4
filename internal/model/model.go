package model

import (
	"time"

	geom "github.com/peterstace/simplefeatures/geom"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

////////////////////////
// DATABASE STRUCTURES //
////////////////////////

// DatabaseModels is a list of all the structs exported here which represent tables in the database schema
var DatabaseModels = []interface{}{
	&Wall{},
	&Cut{},
	&FlaggedCut{},
	&SegmentSnapshot{},
}

// WallKey is embedded by every per-wall table. Lot, floor and wall ID
// identify a wall across a whole building.
type WallKey struct {
	Lot    string `json:"lot" gorm:"size:127"`
	Floor  int    `json:"floor"`
	WallID uint   `json:"wallId" gorm:"index"`
}

// Wall is the structural definition of a wall run.
//
// Command: :WALL:ADD: / :WALL:UPDATE: / :WALL:REMOVE:
type Wall struct {
	Lot        string          `json:"lot" gorm:"primaryKey;size:127"`
	Floor      int             `json:"floor" gorm:"primaryKey;autoIncrement:false"`
	WallID     uint            `json:"wallId" gorm:"primaryKey;autoIncrement:false"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
	DeletedAt  gorm.DeletedAt  `json:"deletedAt" gorm:"index"`
	Axis       string          `json:"axis" gorm:"size:1"`
	Height     float64         `json:"height"`
	Thickness  float64         `json:"thickness"`
	Centerline geom.LineString `json:"centerline"` // start and end corner, XYZ
}

func (*Wall) TableName() string {
	return "walls"
}

// Cut is a door or window opening on one edge of a wall. Removed cuts are
// soft-deleted so the edit history survives.
//
// Command: :CLICK:
type Cut struct {
	gorm.Model
	WallKey
	Edge      int          `json:"edge"`
	StartX    int          `json:"startX"`
	StartY    int          `json:"startY"`
	EndX      int          `json:"endX"`
	EndY      int          `json:"endY"`
	Kind      string       `json:"kind" gorm:"size:16"`
	Side      string       `json:"side" gorm:"size:16"`
	HalfW     int          `json:"halfW"`
	HalfH     int          `json:"halfH"`
	Footprint geom.Polygon `json:"footprint"` // edge-local grid units
}

func (*Cut) TableName() string {
	return "cuts"
}

// FlaggedCut is a cut that stopped fitting after a wall update.
type FlaggedCut struct {
	gorm.Model
	WallKey
	Edge   int    `json:"edge"`
	StartX int    `json:"startX"`
	StartY int    `json:"startY"`
	EndX   int    `json:"endX"`
	EndY   int    `json:"endY"`
	Kind   string `json:"kind" gorm:"size:16"`
	Reason string `json:"reason" gorm:"size:64"`
}

func (*FlaggedCut) TableName() string {
	return "flagged_cuts"
}

// SegmentSnapshot holds the latest processed segments of a wall. There is
// one row per wall; rebuilds overwrite it.
//
// Command: :SEGMENTS:
type SegmentSnapshot struct {
	Lot       string         `json:"lot" gorm:"primaryKey;size:127"`
	Floor     int            `json:"floor" gorm:"primaryKey;autoIncrement:false"`
	WallID    uint           `json:"wallId" gorm:"primaryKey;autoIncrement:false"`
	UpdatedAt time.Time      `json:"updatedAt"`
	Count     int            `json:"count"`
	CellArea  int            `json:"cellArea"` // solid cells across all segments
	Segments  datatypes.JSON `json:"segments"`
}

func (*SegmentSnapshot) TableName() string {
	return "segment_snapshots"
}
