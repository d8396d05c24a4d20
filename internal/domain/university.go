package domain

import "strings"

// University is one catalog row. A university offering N courses appears
// N times, so ID is not unique across a catalog; use DedupKey to collapse rows.
type University struct {
	ID           string   `json:"universityId"`
	Name         string   `json:"name"`
	Country      string   `json:"country"`
	State        string   `json:"state,omitempty"`
	City         string   `json:"city"`
	ProgramLevel string   `json:"programLevel"`
	Course       string   `json:"course"`
	TuitionFee   string   `json:"tuitionFee"`
	LivingCost   string   `json:"livingCost"`
	TotalCost    string   `json:"totalEstimatedCost"`
	Scholarships string   `json:"scholarships"`
	IntlServices string   `json:"intlServices"`
	Website      string   `json:"website,omitempty"`
	ImageURL     string   `json:"imageUrl,omitempty"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
}

// NameKeyPrefix marks keys derived from a university name rather than an id
const NameKeyPrefix = "name:"

// DedupKey identifies the university a row belongs to: the trimmed external
// id, or NameKeyPrefix plus the lower-cased trimmed name when the id is
// absent. An id row "ubc" and an id-less row named "UBC" get different keys.
// External ids are assumed never to start with NameKeyPrefix.
func (u University) DedupKey() string {
	if id := strings.TrimSpace(u.ID); id != "" {
		return id
	}
	return NameKeyPrefix + strings.ToLower(strings.TrimSpace(u.Name))
}

// HasIntlServices reports whether the row lists any international student services
func (u University) HasIntlServices() bool {
	return strings.TrimSpace(u.IntlServices) != ""
}

// Catalog is a loaded snapshot of the university catalog
type Catalog struct {
	Universities []University `json:"universities"`
	Source       string       `json:"source"` // name of the CatalogSource that produced it
}
