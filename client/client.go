// Package client is a typed client for the knowledge base HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"

	"github.com/a-h/jsonapi"
	"github.com/a-h/kbserver/models"
)

func New(baseURL, apiKey string) Client {
	return Client{
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

type Client struct {
	baseURL string
	apiKey  string
}

func (c Client) NotesGet(ctx context.Context) (notes []models.Note, err error) {
	err = c.do(ctx, http.MethodGet, nil, &notes, http.StatusOK, "api", "notes")
	return notes, err
}

func (c Client) NotesPost(ctx context.Context, req models.NotesPostRequest) (note models.Note, err error) {
	err = c.do(ctx, http.MethodPost, req, &note, http.StatusCreated, "api", "notes")
	return note, err
}

func (c Client) NotesPut(ctx context.Context, id string, req models.NotesPutRequest) (note models.Note, err error) {
	err = c.do(ctx, http.MethodPut, req, &note, http.StatusOK, "api", "notes", id)
	return note, err
}

func (c Client) NotesDelete(ctx context.Context, id string) (resp models.MessageResponse, err error) {
	err = c.do(ctx, http.MethodDelete, nil, &resp, http.StatusOK, "api", "notes", id)
	return resp, err
}

func (c Client) DocumentsGet(ctx context.Context) (docs []models.Document, err error) {
	err = c.do(ctx, http.MethodGet, nil, &docs, http.StatusOK, "api", "documents")
	return docs, err
}

// DocumentsPost uploads the content of r as a multipart file named name.
func (c Client) DocumentsPost(ctx context.Context, name string, r io.Reader, tags []string) (doc models.Document, err error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filepath.Base(name))
	if err != nil {
		return doc, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err = io.Copy(fw, r); err != nil {
		return doc, fmt.Errorf("failed to copy file: %w", err)
	}
	for _, tag := range tags {
		if err = mw.WriteField("tags[]", tag); err != nil {
			return doc, fmt.Errorf("failed to write tag: %w", err)
		}
	}
	if err = mw.Close(); err != nil {
		return doc, fmt.Errorf("failed to close multipart writer: %w", err)
	}
	url, err := jsonapi.URL(c.baseURL).Path("api", "documents").String()
	if err != nil {
		return doc, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return doc, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())
	err = c.send(httpReq, &doc, http.StatusCreated)
	return doc, err
}

func (c Client) DocumentsDelete(ctx context.Context, id string) (resp models.MessageResponse, err error) {
	err = c.do(ctx, http.MethodDelete, nil, &resp, http.StatusOK, "api", "documents", id)
	return resp, err
}

func (c Client) WebClipsGet(ctx context.Context) (clips []models.WebClip, err error) {
	err = c.do(ctx, http.MethodGet, nil, &clips, http.StatusOK, "api", "web_clips")
	return clips, err
}

func (c Client) WebClipsPost(ctx context.Context, req models.WebClipsPostRequest) (clip models.WebClip, err error) {
	err = c.do(ctx, http.MethodPost, req, &clip, http.StatusCreated, "api", "web_clips")
	return clip, err
}

func (c Client) WebClipsDelete(ctx context.Context, id string) (resp models.MessageResponse, err error) {
	err = c.do(ctx, http.MethodDelete, nil, &resp, http.StatusOK, "api", "web_clips", id)
	return resp, err
}

// Search returns raw results. The data field of each result is left as a JSON object.
func (c Client) Search(ctx context.Context, q string) (results []SearchResult, err error) {
	url, err := jsonapi.URL(c.baseURL).Path("api", "search").Query(map[string]string{"q": q}).String()
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	err = c.send(httpReq, &results, http.StatusOK)
	return results, err
}

func (c Client) QueryPost(ctx context.Context, req models.QueryPostRequest) (resp QueryPostResponse, err error) {
	url, err := jsonapi.URL(c.baseURL).Path("api", "ai_query").String()
	if err != nil {
		return resp, err
	}
	return jsonapi.Post[models.QueryPostRequest, QueryPostResponse](ctx, url, req, jsonapi.WithRequestHeader("Authorization", c.apiKey))
}

// SearchResult is a search hit as received over the wire.
type SearchResult struct {
	Type models.ResultType `json:"type"`
	Data json.RawMessage   `json:"data"`
}

// Title returns the display name of the result.
func (sr SearchResult) Title() string {
	var v struct {
		Title        string `json:"title"`
		OriginalName string `json:"original_name"`
	}
	if err := json.Unmarshal(sr.Data, &v); err != nil {
		return ""
	}
	if sr.Type == models.ResultTypeDocument {
		return v.OriginalName
	}
	return v.Title
}

type QueryPostResponse struct {
	Question string         `json:"question"`
	Response string         `json:"response"`
	Sources  []SearchResult `json:"sources"`
}

func (c Client) do(ctx context.Context, method string, req, resp any, expectedStatus int, path ...string) (err error) {
	url, err := jsonapi.URL(c.baseURL).Path(path...).String()
	if err != nil {
		return err
	}
	var body io.Reader
	if req != nil {
		buf, err := json.Marshal(req)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(buf)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if req != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	return c.send(httpReq, resp, expectedStatus)
}

func (c Client) send(httpReq *http.Request, resp any, expectedStatus int) (err error) {
	res, err := jsonapi.Raw(httpReq, jsonapi.WithRequestHeader("Authorization", c.apiKey))
	if err != nil {
		return fmt.Errorf("failed to perform HTTP request: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode != expectedStatus {
		body, _ := io.ReadAll(res.Body)
		return jsonapi.InvalidStatusError{
			Status: res.StatusCode,
			Body:   string(body),
		}
	}
	if err = json.NewDecoder(res.Body).Decode(resp); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
