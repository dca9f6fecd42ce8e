package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// localTimeLayout matches timestamps written without a zone offset, such as
// 2024-01-02T03:04:05.123456. They are read as UTC.
const localTimeLayout = "2006-01-02T15:04:05.999999999"

// ParseTime parses an RFC 3339 timestamp, or one without a zone offset.
func ParseTime(s string) (t time.Time, err error) {
	if t, err = time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	if t, err = time.Parse(localTimeLayout, s); err == nil {
		return t, nil
	}
	return t, fmt.Errorf("failed to parse time %q: %w", s, err)
}

type timestamp time.Time

func (t *timestamp) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, err := ParseTime(s)
	if err != nil {
		return err
	}
	*t = timestamp(v)
	return nil
}

func (n *Note) UnmarshalJSON(data []byte) error {
	type note Note
	var v struct {
		note
		CreatedAt timestamp `json:"created_at"`
		UpdatedAt timestamp `json:"updated_at"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*n = Note(v.note)
	n.CreatedAt = time.Time(v.CreatedAt)
	n.UpdatedAt = time.Time(v.UpdatedAt)
	return nil
}

func (d *Document) UnmarshalJSON(data []byte) error {
	type document Document
	var v struct {
		document
		UploadedAt timestamp `json:"uploaded_at"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*d = Document(v.document)
	d.UploadedAt = time.Time(v.UploadedAt)
	return nil
}

func (c *WebClip) UnmarshalJSON(data []byte) error {
	type webClip WebClip
	var v struct {
		webClip
		ClippedAt timestamp `json:"clipped_at"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*c = WebClip(v.webClip)
	c.ClippedAt = time.Time(v.ClippedAt)
	return nil
}
