package identify

import (
	"encoding/json"
	"fmt"
)

// Response is the identification result document: zero or more signal
// matches plus the identified track, if any.
type Response struct {
	Matches []Match `json:"matches"`
	Track   *Track  `json:"track"`
}

// Match describes how a submitted signature aligned against a catalog
// entry.
type Match struct {
	Offset   float64 `json:"offset"`
	TimeSkew float64 `json:"time_skew"`
}

// Track is the identified recording with its display metadata.
type Track struct {
	Title    string    `json:"title"`
	Subtitle string    `json:"subtitle"`
	Sections []Section `json:"sections"`
	Hub      Hub       `json:"hub"`
}

// Section groups related track metadata entries.
type Section struct {
	Type     string     `json:"type"`
	Metadata []Metadata `json:"metadata"`
}

// Metadata is one labeled metadata value, such as an album name or
// release year.
type Metadata struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

// Hub lists follow-up actions offered for the track.
type Hub struct {
	Actions []Action `json:"actions"`
}

// Action is one follow-up action, such as an external catalog link.
type Action struct {
	Name string `json:"name"`
	ID   string `json:"id,omitempty"`
}

// ParseResponse decodes a response body.
func ParseResponse(data []byte) (*Response, error) {
	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("identify: parsing response: %w", err)
	}
	return &resp, nil
}

// Matched reports whether the response identified a track.
func (r *Response) Matched() bool {
	return r.Track != nil && len(r.Matches) > 0
}
