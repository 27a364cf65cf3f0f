package model

import (
	"time"
)

// DateLayout is the only accepted format of MediaMetadata.Date
const DateLayout = "2006-01-02"

// MediaMetadata is supplied by the uploader when requesting an upload link.
// The validated request body is staged verbatim and read back once the
// transcript is ready.
type MediaMetadata struct {
	Topic     string `json:"topic"`
	SourceURL string `json:"source_url"`
	Date      string `json:"date"`
}

// Validate checks field lengths and that Date is a real calendar date
func (x *MediaMetadata) Validate() error {
	var errs ValidationErrors
	errs.minLength("topic", x.Topic)
	errs.minLength("source_url", x.SourceURL)
	if _, err := time.Parse(DateLayout, x.Date); err != nil {
		errs.add("date", "invalid date format "+x.Date+". Expected format is YYYY-MM-DD")
	}
	return errs.result()
}

// Attributes projects the metadata onto the attributes attached to indexed
// transcript chunks. Date is not propagated.
func (x *MediaMetadata) Attributes() MetadataAttributes {
	return MetadataAttributes{
		Topic:     x.Topic,
		SourceURL: x.SourceURL,
	}
}

// MetadataAttributes are the filterable attributes of a knowledge base document
type MetadataAttributes struct {
	Topic     string `json:"topic"`
	SourceURL string `json:"source_url"`
}

// MetadataSidecar is the companion document stored next to a transcript with
// the SidecarSuffix. The knowledge base indexer reads the attributes from it.
type MetadataSidecar struct {
	MetadataAttributes MetadataAttributes `json:"metadataAttributes"`
}

// NewMetadataSidecar builds the sidecar document for the metadata
func NewMetadataSidecar(meta *MediaMetadata) *MetadataSidecar {
	return &MetadataSidecar{MetadataAttributes: meta.Attributes()}
}

// UploadLink is returned to the uploader
type UploadLink struct {
	UploadURL string `json:"upload_url"`
	TaskID    TaskID `json:"task_id"`
}
