package pipeline

import (
	"github.com/PuerkitoBio/goquery"

	"ScraperExtranet/internal/config"
	"ScraperExtranet/internal/extranet"
	"ScraperExtranet/internal/record"
)

// Profile is what differs between the two extraction variants.
type Profile struct {
	Schema record.Schema
	// NoMatch is recorded when no result row matches the searched name.
	NoMatch record.Status
	// Extract reads the schema's fields from a loaded profile page.
	Extract func(doc *goquery.Document, pageURL string) map[string]string
}

// ProfileFor returns the profile of variant v. Unknown variants get the
// labeled profile.
func ProfileFor(v config.Variant) Profile {
	if v == config.VariantTables {
		return Profile{
			Schema:  record.TablesSchema(),
			NoMatch: record.StatusLinkNotFound,
			Extract: func(doc *goquery.Document, _ string) map[string]string {
				return extranet.TableFields(doc)
			},
		}
	}
	return Profile{
		Schema:  record.LabeledSchema(),
		NoMatch: record.StatusNoExactLink,
		Extract: extranet.LabeledFields,
	}
}
