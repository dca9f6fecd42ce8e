package models

type QueryPostRequest struct {
	// Question to match against the knowledge base.
	Question string `json:"question"`
}

type QueryPostResponse struct {
	Question string         `json:"question"`
	Response string         `json:"response"`
	Sources  []SearchResult `json:"sources"`
}
