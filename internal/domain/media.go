package domain

import "time"

// MediaHandle is an opaque reference to a staged upload.
type MediaHandle struct {
	Slot        string    `json:"slot"`
	Handle      string    `json:"handle"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"contentType"`
	Size        int64     `json:"size"`
	StagedAt    time.Time `json:"stagedAt"`
}

// MediaKey is the blob storage key of a staged file.
func MediaKey(owner, scope string, h MediaHandle) string {
	return owner + "/" + scope + "/" + h.Slot + "/" + h.Handle
}
