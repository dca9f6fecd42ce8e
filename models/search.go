package models

type ResultType string

const (
	ResultTypeNote     ResultType = "note"
	ResultTypeDocument ResultType = "document"
	ResultTypeWebClip  ResultType = "web_clip"
)

type SearchResult struct {
	Type ResultType `json:"type"`
	// Data is a Note, Document or WebClip, depending on Type.
	Data any `json:"data"`
}
