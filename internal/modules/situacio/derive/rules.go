// Package derive computes display-only values from a curriculum unit. Every renderer
// consumes these results; none of them numbers anything on its own.
package derive

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/yungbote/situacio-backend/internal/modules/situacio/model"
)

var competencyPrefix = regexp.MustCompile(`(?i)^\s*CE\.?\d+\.\s*`)

// CompetencyCode is a renumbered specific competency.
type CompetencyCode struct {
	Code string
	Text string
}

// NormalizeCompetencyCode strips any foreign "CE<n>." prefix and assigns CE.<i+1>.
func NormalizeCompetencyCode(raw string, i int) CompetencyCode {
	text := competencyPrefix.ReplaceAllString(raw, "")
	return CompetencyCode{
		Code: "CE." + strconv.Itoa(i+1) + ".",
		Text: strings.TrimSpace(text),
	}
}

// NumberCriterion leaves a criterion untouched when it contains a period anywhere
// (treated as official numbering), otherwise prefixes its 1-based position.
// An unnumbered criterion containing an abbreviation is therefore left unnumbered.
func NumberCriterion(raw string, i int) string {
	if strings.Contains(raw, ".") {
		return raw
	}
	return numberPrefix(i+1) + raw
}

// NumberedList prefixes each item with its 1-based position.
func NumberedList(items []string) []string {
	out := make([]string, 0, len(items))
	for i, it := range items {
		out = append(out, numberPrefix(i+1)+it)
	}
	return out
}

func numberPrefix(n int) string {
	return strconv.Itoa(n) + ". "
}

// SupportRow is one row of the additional-supports table.
type SupportRow struct {
	Student     string
	Measure     string
	Placeholder bool
}

// ResolveAdditionalSupports always yields max(1, len(items)) rows.
func ResolveAdditionalSupports(items []model.AdditionalSupport) []SupportRow {
	if len(items) == 0 {
		return []SupportRow{{Student: NoDataLabel, Measure: NoDataLabel, Placeholder: true}}
	}
	out := make([]SupportRow, 0, len(items))
	for _, it := range items {
		out = append(out, SupportRow{Student: it.StudentLabel, Measure: it.Measure})
	}
	return out
}

// FilenameSlug lowercases the title and keeps only [a-z0-9]. Collisions are accepted.
func FilenameSlug(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ExportFilename builds "SA_<slug><ext>". ext may be empty.
func ExportFilename(title, ext string) string {
	return FilePrefix + "_" + FilenameSlug(title) + ext
}
