// Package catalog provides access to the remote museum collection API.
//
// The client fetches the universe of candidate object IDs and individual
// object records. Records without a displayable image, or that are not in the
// public domain, are treated as absent.
package catalog

import (
	"net/url"
	"strconv"
	"strings"
)

// ItemID identifies a catalog object. The Met API uses integer object IDs.
type ItemID int64

// String returns the decimal form of the ID.
func (id ItemID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// ParseItemID parses a decimal object ID.
func ParseItemID(s string) (ItemID, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, err
	}
	return ItemID(n), nil
}

// Item is the subset of an object record the feed needs.
// Display fields are passed through untouched.
type Item struct {
	ID                ItemID   `json:"objectID"`
	Title             string   `json:"title"`
	ArtistDisplayName string   `json:"artistDisplayName"`
	ObjectDate        string   `json:"objectDate"`
	Culture           string   `json:"culture"`
	Medium            string   `json:"medium"`
	Department        string   `json:"department"`
	Classification    string   `json:"classification"`
	Period            string   `json:"period"`
	AccessionYear     string   `json:"accessionYear"`
	WikidataURL       string   `json:"objectWikidata_URL"`
	Dimensions        string   `json:"dimensions"`
	CreditLine        string   `json:"creditLine"`
	PrimaryImage      string   `json:"primaryImage"`
	PrimaryImageSmall string   `json:"primaryImageSmall"`
	AdditionalImages  []string `json:"additionalImages"`
	ObjectURL         string   `json:"objectURL"`
	IsPublicDomain    bool     `json:"isPublicDomain"`
}

// HasDisplayableImage reports whether the record carries any image reference.
func (it Item) HasDisplayableImage() bool {
	return it.PrimaryImageSmall != "" || it.PrimaryImage != ""
}

// IsEligible reports whether the record is rights-cleared for display.
func (it Item) IsEligible() bool {
	return it.IsPublicDomain
}

// ImageURL prefers the small rendition.
func (it Item) ImageURL() string {
	if it.PrimaryImageSmall != "" {
		return it.PrimaryImageSmall
	}
	return it.PrimaryImage
}

// DisplayTitle returns the title or "Untitled".
func (it Item) DisplayTitle() string {
	if t := strings.TrimSpace(it.Title); t != "" {
		return t
	}
	return "Untitled"
}

// Artist returns the artist name or "Unknown".
func (it Item) Artist() string {
	if a := strings.TrimSpace(it.ArtistDisplayName); a != "" {
		return a
	}
	return "Unknown"
}

// MetaLine joins artist, date and culture with " • ", skipping empty parts.
func (it Item) MetaLine() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{it.Artist(), it.ObjectDate, it.Culture} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " • ")
}

// SearchURL builds an outbound web search link from title, artist and
// culture plus "art museum". Empty parts are left out.
func (it Item) SearchURL() string {
	terms := make([]string, 0, 5)
	for _, p := range []string{it.Title, it.ArtistDisplayName, it.Culture, "art", "museum"} {
		if p = strings.TrimSpace(p); p != "" {
			terms = append(terms, p)
		}
	}
	return "https://www.google.com/search?q=" + url.QueryEscape(strings.Join(terms, " "))
}
