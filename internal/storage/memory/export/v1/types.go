// Package v1 contains the v1 export format for a wall editing session.
package v1

// Version is written into every export.
const Version = 1

// Export is the root JSON structure for v1 format.
type Export struct {
	Version  int    `json:"version"`
	Started  string `json:"started"`
	Exported string `json:"exported"`
	Walls    []Wall `json:"walls"`
}

// Wall is one wall run with its cut history. The nested arrays keep the
// file small:
//
//	cuts, removed: [edge, startX, startY, endX, endY, kind, side]
//	flagged:       [edge, startX, startY, endX, endY, kind, reason]
//	segments:      [edge, minX, minY, maxX, maxY]
type Wall struct {
	Lot        string     `json:"lot"`
	Floor      int        `json:"floor"`
	ID         uint       `json:"id"`
	Axis       string     `json:"axis,omitempty"`
	Height     float64    `json:"height"`
	Thickness  float64    `json:"thickness"`
	Start      [3]float64 `json:"start"`
	End        [3]float64 `json:"end"`
	Cuts       [][]any    `json:"cuts"`
	Removed    [][]any    `json:"removed"`
	Flagged    [][]any    `json:"flagged"`
	Segments   [][]any    `json:"segments"`
	SolidCells int        `json:"solidCells"`
	Deleted    bool       `json:"deleted,omitempty"`
}
