// Package models defines server-side data models persisted in the database.
package models

import "time"

// Summary is a stored note together with its generated summary.
type Summary struct {
	ID        string    `json:"id"`
	Note      string    `json:"note"`
	Summary   string    `json:"summary"`
	Tags      []string  `json:"tags"`
	Starred   bool      `json:"starred"`
	Slug      *string   `json:"slug,omitempty"`
	OwnerID   string    `json:"ownerId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// PublicSummary is the projection served to anyone holding a share slug.
type PublicSummary struct {
	Note      string    `json:"note"`
	Summary   string    `json:"summary"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"createdAt"`
}

// Public returns the shareable projection of s.
func (s *Summary) Public() *PublicSummary {
	return &PublicSummary{
		Note:      s.Note,
		Summary:   s.Summary,
		Tags:      s.Tags,
		CreatedAt: s.CreatedAt,
	}
}

// SummaryPatch lists the fields of an update; nil fields are left unchanged.
type SummaryPatch struct {
	Note    *string
	Summary *string
	Tags    *[]string
	Starred *bool
}

// Empty reports whether the patch changes nothing.
func (p SummaryPatch) Empty() bool {
	return p.Note == nil && p.Summary == nil && p.Tags == nil && p.Starred == nil
}

// SortOrder names a sortable field (createdAt, updatedAt, starred, note,
// summary) and its direction.
type SortOrder struct {
	Field string
	Desc  bool
}

// SummaryFilter narrows a listing. Zero values mean "no filter".
type SummaryFilter struct {
	Query   string
	OwnerID string
}

// SummaryPage is one page of a paginated listing.
type SummaryPage struct {
	Items []*Summary `json:"items"`
	Page  int        `json:"page"`
	Pages int        `json:"pages"`
	Total int        `json:"total"`
}
