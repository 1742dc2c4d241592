// Package enrich turns unprocessed contact rows into enriched contacts.
package enrich

import (
	"os"
	"slices"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/contact-enrich/internal/model"
)

// Auxiliary sheet columns holding the keyword vocabulary.
const (
	ColTitles    = "Titles"
	ColSeniority = "Seniority"
	ColNegative  = "Negative"
)

// ExtractKeywords collects the keyword vocabulary from an auxiliary sheet.
// Empty cells are skipped and duplicates keep their first position.
func ExtractKeywords(sheet *model.SheetData) model.PqKeywords {
	kw := model.PqKeywords{
		Titles:           []string{},
		Seniority:        []string{},
		NegativeKeywords: []string{},
	}
	if sheet == nil {
		return kw
	}
	for _, row := range sheet.Rows {
		kw.Titles = appendUnique(kw.Titles, row.Data[ColTitles])
		kw.Seniority = appendUnique(kw.Seniority, row.Data[ColSeniority])
		kw.NegativeKeywords = appendUnique(kw.NegativeKeywords, row.Data[ColNegative])
	}
	return kw
}

func appendUnique(list []string, v string) []string {
	if v == "" || slices.Contains(list, v) {
		return list
	}
	return append(list, v)
}

// MergeKeywords appends extra after base with the same de-duplication.
func MergeKeywords(base, extra model.PqKeywords) model.PqKeywords {
	out := model.PqKeywords{
		Titles:           slices.Clone(base.Titles),
		Seniority:        slices.Clone(base.Seniority),
		NegativeKeywords: slices.Clone(base.NegativeKeywords),
	}
	for _, v := range extra.Titles {
		out.Titles = appendUnique(out.Titles, v)
	}
	for _, v := range extra.Seniority {
		out.Seniority = appendUnique(out.Seniority, v)
	}
	for _, v := range extra.NegativeKeywords {
		out.NegativeKeywords = appendUnique(out.NegativeKeywords, v)
	}
	return out
}

// LoadKeywordsFile reads a YAML keyword file with titles, seniority and
// negative lists. An empty path yields an empty vocabulary.
func LoadKeywordsFile(path string) (model.PqKeywords, error) {
	if path == "" {
		return model.PqKeywords{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return model.PqKeywords{}, eris.Wrapf(err, "enrich: read keywords file %s", path)
	}
	var kw model.PqKeywords
	if err := yaml.Unmarshal(data, &kw); err != nil {
		return model.PqKeywords{}, eris.Wrapf(err, "enrich: parse keywords file %s", path)
	}
	return MergeKeywords(model.PqKeywords{}, kw), nil
}
