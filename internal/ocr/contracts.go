package ocr

import (
	"context"

	"github.com/infradyn/docextract/constants"
)

// BlockType classifies a unit of detected text.
type BlockType string

const (
	BlockLine BlockType = "LINE"
	BlockWord BlockType = "WORD"
	BlockCell BlockType = "CELL"
	BlockForm BlockType = "FORM"
)

// Block is one detected text fragment.
type Block struct {
	Type BlockType `json:"block_type"`
	Text string    `json:"text"`
}

// PollResponse is the wire shape of one poll of an async detection job.
// NextCursor is set only on SUCCEEDED responses with more result pages.
type PollResponse struct {
	Status     constants.JobStatus `json:"status"`
	Blocks     []Block             `json:"blocks"`
	NextCursor string              `json:"next_cursor,omitempty"`
}

// API is the wire contract of the remote document-OCR service.
type API interface {
	// Submit starts an async text-detection job against a stored object.
	Submit(ctx context.Context, bucket, key string) (jobID string, err error)
	// Poll reads job state; pass a cursor to page through a SUCCEEDED job's blocks.
	Poll(ctx context.Context, jobID, cursor string) (PollResponse, error)
	// Detect runs single-shot detection, used for raster images.
	Detect(ctx context.Context, bucket, key string) ([]Block, error)
}
