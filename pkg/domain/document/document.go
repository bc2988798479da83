// Package document defines the uploaded-document entity.
package document

import "time"

// Document is an uploaded file attached to a project. Documents are
// immutable after upload; the only mutations are create and delete.
// ExtractedContent is nil when backend text extraction failed or has not
// run.
type Document struct {
	ID               string    `json:"id"`
	Filename         string    `json:"filename"`
	Size             int64     `json:"size"`
	ContentType      string    `json:"content_type"`
	UploadedBy       string    `json:"uploaded_by"`
	ProjectID        string    `json:"project_id"`
	ExtractedContent *string   `json:"extracted_content,omitempty"`
	UploadedAt       time.Time `json:"uploaded_at"`
}

// EntityID returns the stable identifier used by the entity store.
func (d Document) EntityID() string { return d.ID }

// HasContent reports whether text extraction produced usable content.
func (d Document) HasContent() bool {
	return d.ExtractedContent != nil && *d.ExtractedContent != ""
}
