package itinerary

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pkordes/itinerary-planner/backend/internal/domain"
)

// categoryRules maps place type tags to user-facing categories.
// Order matters: the first rule with any matching tag wins.
var categoryRules = []struct {
	tags     []string
	category string
}{
	{[]string{"restaurant", "food"}, "Restaurant"},
	{[]string{"cafe"}, "Cafe"},
	{[]string{"museum"}, "Museum"},
	{[]string{"park", "natural_feature"}, "Outdoor"},
	{[]string{"tourist_attraction", "point_of_interest"}, "Attraction"},
	{[]string{"lodging", "hotel"}, "Accommodation"},
	{[]string{"shopping_mall", "store"}, "Shopping"},
	{[]string{"bar", "night_club"}, "Nightlife"},
}

// CategoryForTags picks a single category label for a list of place type
// tags. If no rule matches, the first tag is returned with its first letter
// upper-cased. Returns nil when tags is empty.
func CategoryForTags(tags []string) *string {
	if len(tags) == 0 {
		return nil
	}
	for _, rule := range categoryRules {
		for _, want := range rule.tags {
			for _, tag := range tags {
				if tag == want {
					c := rule.category
					return &c
				}
			}
		}
	}
	c := capitalize(tags[0])
	return &c
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// FromSearchResult builds a template from a bare search hit. Only the title,
// address and place ID are known; the store enriches the rest on insertion.
func FromSearchResult(s domain.PlaceSuggestion) domain.ActivityTemplate {
	id := s.ID
	return domain.ActivityTemplate{
		Title:      s.Name,
		Location:   s.Address,
		SourceType: domain.SourceSearch,
		PlaceID:    &id,
	}
}

// FromPlaceDetails builds a fully populated template from a details record.
func FromPlaceDetails(d domain.PlaceDetails) domain.ActivityTemplate {
	id := d.ID
	t := domain.ActivityTemplate{
		Title:      d.Name,
		Location:   d.FormattedAddress,
		SourceType: domain.SourceSearch,
		PlaceID:    &id,
		PhotoRef:   d.PhotoRef,
		Category:   CategoryForTags(d.Types),
		Rating:     d.Rating,
	}
	if d.Coordinates != nil {
		c := *d.Coordinates
		t.Coordinates = &c
	}
	return t
}

// FromIdea builds a template from a saved idea. Ideas carry no position or
// rating, so both are always left unset.
func FromIdea(i domain.Idea) domain.ActivityTemplate {
	id := i.ID
	t := domain.ActivityTemplate{
		Title:      i.Title,
		Location:   ideaLocation(i),
		SourceType: i.Source,
		IdeaID:     &id,
		PhotoRef:   i.PhotoRef,
	}
	if i.PlaceID != nil && *i.PlaceID != "" {
		p := *i.PlaceID
		t.PlaceID = &p
	}
	if i.Category != "" {
		c := i.Category
		t.Category = &c
	}
	return t
}

// ManualTemplate builds a template for an activity typed in by the user.
func ManualTemplate(title, location string) domain.ActivityTemplate {
	return domain.ActivityTemplate{
		Title:      strings.TrimSpace(title),
		Location:   strings.TrimSpace(location),
		SourceType: domain.SourceManual,
	}
}

func ideaLocation(i domain.Idea) string {
	var parts []string
	for _, p := range []string{i.City, i.Country} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// enrich fills the gaps in t from a details lookup. Fields the template
// already carries win over the lookup.
func enrich(t domain.ActivityTemplate, d domain.PlaceDetails) domain.ActivityTemplate {
	if d.Coordinates != nil {
		c := *d.Coordinates
		t.Coordinates = &c
	}
	if t.Category == nil {
		t.Category = CategoryForTags(d.Types)
	}
	if t.Rating == nil {
		t.Rating = d.Rating
	}
	if t.PhotoRef == nil {
		t.PhotoRef = d.PhotoRef
	}
	return t
}
