package models

import "time"

type Document struct {
	ID string `json:"id"`
	// Filename is the name of the stored upload, prefixed to make it unique.
	Filename     string    `json:"filename"`
	OriginalName string    `json:"original_name"`
	TextContent  string    `json:"text_content"`
	Tags         []string  `json:"tags"`
	UploadedAt   time.Time `json:"uploaded_at"`
}
