package enrich

import (
	"regexp"
	"strings"

	"github.com/sells-group/contact-enrich/internal/model"
)

// ColWebsite is the auxiliary sheet column holding a company's website.
const ColWebsite = "Website URL"

// legalSuffixes lists legal entity suffixes stripped from company names.
var legalSuffixes = []string{
	" LLC", " L.L.C.", " L.L.C",
	" INC", " INC.", " INCORPORATED",
	" CORP", " CORP.", " CORPORATION",
	" LTD", " LTD.", " LIMITED",
	" LP", " L.P.", " L.P",
	" LLP", " L.L.P.", " L.L.P",
	" PC", " P.C.", " P.C",
	" PLC", " P.L.C.",
	" PLLC",
	" GMBH", " AG", " S.A.", " SA", " B.V.", " BV", " PTY", " PTY.",
	" CO", " CO.",
}

var multiSpaceRe = regexp.MustCompile(`\s{2,}`)

// CanonicalCompanyName strips legal suffixes and surrounding punctuation
// from a company name, keeping its case. "Acme Widgets, Inc." becomes
// "Acme Widgets".
func CanonicalCompanyName(raw string) string {
	name := multiSpaceRe.ReplaceAllString(strings.TrimSpace(raw), " ")
	for {
		stripped := false
		for _, suffix := range legalSuffixes {
			if len(name) > len(suffix) && strings.EqualFold(name[len(name)-len(suffix):], suffix) {
				name = strings.TrimRight(name[:len(name)-len(suffix)], " ,")
				stripped = true
				break
			}
		}
		if !stripped {
			return name
		}
	}
}

// ResolveCompany builds the CompanyData for a contact's raw company name.
// The first auxiliary row with any cell that, trimmed and lower-cased,
// equals the canonical name supplies the website. Cells are not
// suffix-stripped, and every cell is compared, not just a company column.
func ResolveCompany(rawCompany string, pq *model.SheetData) model.CompanyData {
	canonical := CanonicalCompanyName(rawCompany)
	company := model.CompanyData{
		Name:           canonical,
		AboutLinks:     []model.Link{},
		CaseStudyLinks: []model.Link{},
	}
	if canonical == "" {
		return company
	}

	want := strings.ToLower(canonical)
	row := pq.FindRow(func(cell string) bool {
		return strings.ToLower(strings.TrimSpace(cell)) == want
	})
	if row != nil {
		company.Website = strings.TrimSpace(row.Data[ColWebsite])
	}
	return company
}
