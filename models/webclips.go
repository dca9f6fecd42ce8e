package models

import "time"

type WebClip struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Tags      []string  `json:"tags"`
	ClippedAt time.Time `json:"clipped_at"`
}

type WebClipsPostRequest struct {
	URL  string   `json:"url"`
	Tags []string `json:"tags,omitempty"`
}

// ClipContent is the cleaned up title and text of a fetched page.
type ClipContent struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}
