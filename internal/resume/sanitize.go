package resume

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// linkKind selects the canonicalization rule applied by NormalizeURL.
type linkKind int

const (
	linkLinkedIn linkKind = iota
	linkGitHub
	linkWebsite
	linkCompany
)

var (
	parentheticalRe = regexp.MustCompile(`\s*\([^)]*\)\s*`)
	partialDateRe   = regexp.MustCompile(`^\d{4}(-\d{2})?(-\d{2})?$`)
	naturalDateRe   = regexp.MustCompile(`^([a-z]+),?\s+(\d{4})$`)
)

var monthNumbers = map[string]string{
	"jan": "01", "january": "01",
	"feb": "02", "february": "02",
	"mar": "03", "march": "03",
	"apr": "04", "april": "04",
	"may": "05",
	"jun": "06", "june": "06",
	"jul": "07", "july": "07",
	"aug": "08", "august": "08",
	"sep": "09", "sept": "09", "september": "09",
	"oct": "10", "october": "10",
	"nov": "11", "november": "11",
	"dec": "12", "december": "12",
}

// Layouts tried as a last resort for date strings that are neither partial
// dates nor "<Month> <Year>" forms.
var dateLayouts = []string{
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"2006/01/02",
	"01/02/2006",
	"02.01.2006",
	time.RFC3339,
}

// NormalizeDate reduces an arbitrary date-like string to a partial date
// (YYYY, YYYY-MM or YYYY-MM-DD). "present", "current" and anything
// unparseable collapse to "", which downstream code reads as ongoing or
// unknown. Idempotent and never fails.
func NormalizeDate(value any) string {
	s, ok := value.(string)
	if !ok {
		return ""
	}

	trimmed := strings.ToLower(strings.TrimSpace(s))
	if trimmed == "" || trimmed == "present" || trimmed == "current" {
		return ""
	}

	// Strip explanatory annotations like "(1 year 2 months)".
	cleaned := strings.TrimSpace(parentheticalRe.ReplaceAllString(trimmed, " "))

	if partialDateRe.MatchString(cleaned) {
		return cleaned
	}

	if m := naturalDateRe.FindStringSubmatch(cleaned); m != nil {
		if month, ok := monthNumbers[m[1]]; ok {
			return fmt.Sprintf("%s-%s", m[2], month)
		}
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, cleaned); err == nil {
			return t.Format("2006-01-02")
		}
	}

	return ""
}

// normalizeURL canonicalizes a link for the given kind. Values that already
// carry a scheme pass through unchanged; social handles are stripped of
// leading @ and slashes and composed into full profile URLs; generic websites
// must contain a dot or are discarded.
func normalizeURL(value any, kind linkKind) string {
	s, ok := value.(string)
	if !ok {
		return ""
	}
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return ""
	}

	if strings.HasPrefix(trimmed, "http://") || strings.HasPrefix(trimmed, "https://") {
		return trimmed
	}

	switch kind {
	case linkLinkedIn:
		handle := strings.ReplaceAll(strings.TrimPrefix(trimmed, "@"), "/", "")
		return "https://linkedin.com/in/" + handle
	case linkGitHub:
		handle := strings.ReplaceAll(strings.TrimPrefix(trimmed, "@"), "/", "")
		return "https://github.com/" + handle
	case linkCompany:
		return "https://" + trimmed
	case linkWebsite:
		if !strings.Contains(trimmed, ".") {
			return ""
		}
		return "https://" + trimmed
	}

	return ""
}

// Sanitize post-processes raw LLM output before validation: trims strings,
// normalizes dates and contact URLs, and drops placeholder values so the
// validator's defaults see clean input. Shape-preserving and pure.
func Sanitize(data map[string]any) map[string]any {
	if data == nil {
		return nil
	}

	return map[string]any{
		"header":         sanitizeHeader(asMap(data["header"])),
		"summary":        trimmedString(data["summary"]),
		"workExperience": sanitizeWorkExperience(data["workExperience"]),
		"projects":       sanitizeProjects(data["projects"]),
		"education":      sanitizeEducation(data["education"]),
	}
}

func sanitizeHeader(header map[string]any) map[string]any {
	if header == nil {
		return map[string]any{}
	}

	out := map[string]any{
		"name":       trimmedString(header["name"]),
		"shortAbout": trimmedString(header["shortAbout"]),
		"skills":     stringList(header["skills"], true),
	}

	if location := optionalString(header["location"]); location != "" {
		out["location"] = location
	}

	if contacts := sanitizeContacts(asMap(header["contacts"])); len(contacts) > 0 {
		out["contacts"] = contacts
	}

	return out
}

func sanitizeContacts(contacts map[string]any) map[string]any {
	out := map[string]any{}
	if contacts == nil {
		return out
	}

	if email := optionalString(contacts["email"]); email != "" && strings.Contains(email, "@") {
		out["email"] = email
	}
	if phone := optionalString(contacts["phone"]); phone != "" {
		out["phone"] = phone
	}
	if website := normalizeURL(contacts["website"], linkWebsite); website != "" {
		out["website"] = website
	}
	if twitter := optionalString(contacts["twitter"]); twitter != "" {
		out["twitter"] = twitter
	}
	if linkedin := normalizeURL(contacts["linkedin"], linkLinkedIn); linkedin != "" {
		out["linkedin"] = linkedin
	}
	if github := normalizeURL(contacts["github"], linkGitHub); github != "" {
		out["github"] = github
	}

	return out
}

func sanitizeWorkExperience(value any) []map[string]any {
	items, _ := value.([]any)
	out := make([]map[string]any, 0, len(items))

	for _, item := range items {
		job := asMap(item)
		if job == nil {
			continue
		}

		entry := map[string]any{
			"company":     trimmedString(job["company"]),
			"title":       trimmedString(job["title"]),
			"start":       NormalizeDate(job["start"]),
			"description": trimmedString(job["description"]),
		}

		if end := NormalizeDate(job["end"]); end != "" {
			entry["end"] = end
		} else {
			entry["end"] = nil
		}

		if link := normalizeURL(job["link"], linkCompany); link != "" {
			entry["link"] = link
		}
		if location := optionalString(job["location"]); location != "" {
			entry["location"] = location
		}
		if contract := optionalString(job["contract"]); contract != "" {
			entry["contract"] = contract
		}

		out = append(out, entry)
	}

	return out
}

func sanitizeProjects(value any) []map[string]any {
	items, _ := value.([]any)
	out := make([]map[string]any, 0, len(items))

	for _, item := range items {
		project := asMap(item)
		if project == nil {
			continue
		}

		entry := map[string]any{
			"name":         trimmedString(project["name"]),
			"description":  trimmedString(project["description"]),
			"technologies": stringList(project["technologies"], false),
			"highlights":   stringList(project["highlights"], false),
		}

		if link := normalizeURL(project["link"], linkWebsite); link != "" {
			entry["link"] = link
		}
		if date := NormalizeDate(project["date"]); date != "" {
			entry["date"] = date
		}

		out = append(out, entry)
	}

	return out
}

func sanitizeEducation(value any) []map[string]any {
	items, _ := value.([]any)
	out := make([]map[string]any, 0, len(items))

	for _, item := range items {
		edu := asMap(item)
		if edu == nil {
			continue
		}

		entry := map[string]any{
			"school": trimmedString(edu["school"]),
			"degree": trimmedString(edu["degree"]),
			"start":  trimmedString(edu["start"]),
			"end":    trimmedString(edu["end"]),
		}

		if score := optionalString(edu["score"]); score != "" {
			entry["score"] = score
		}

		out = append(out, entry)
	}

	return out
}

func asMap(value any) map[string]any {
	m, _ := value.(map[string]any)
	return m
}

func trimmedString(value any) string {
	s, _ := value.(string)
	return strings.TrimSpace(s)
}

// optionalString trims the value and treats the literal strings "null" and
// "undefined" as absent. LLMs emit those instead of omitting fields.
func optionalString(value any) string {
	s := trimmedString(value)
	if s == "null" || s == "undefined" {
		return ""
	}
	return s
}

func stringList(value any, dropEmpty bool) []string {
	items, _ := value.([]any)
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			continue
		}
		s = strings.TrimSpace(s)
		if dropEmpty && s == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}
