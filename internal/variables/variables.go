// Package variables resolves {{token}} placeholders in card text against a
// guest record. Tokens outside the known set pass through verbatim, so
// substitution is a pure, idempotent function of (text, guest).
package variables

import (
	"regexp"
	"strings"

	"card-dispatch/internal/canvas"
	"card-dispatch/internal/guests"
)

// tokenPattern matches the card-text grammar: double braces around word
// characters only. The simpler single-brace {name} grammar used by message
// presets lives in the composer, not here.
var tokenPattern = regexp.MustCompile(`\{\{(\w+)\}\}`)

// Known token identifiers. location/lieu and time/heure are aliases.
const (
	TokenName      = "name"
	TokenFirstName = "first_name"
	TokenLastName  = "last_name"
	TokenEmail     = "email"
	TokenLocation  = "location"
	TokenLieu      = "lieu"
	TokenDate      = "date"
	TokenTime      = "time"
	TokenHeure     = "heure"
)

// ExtractVariables scans every text item's content and returns the
// deduplicated token set. Non-text items never carry tokens.
func ExtractVariables(items []canvas.Item) map[string]struct{} {
	found := make(map[string]struct{})
	for _, it := range items {
		if it.Kind != canvas.KindText {
			continue
		}
		for _, m := range tokenPattern.FindAllStringSubmatch(it.Content, -1) {
			found[m[1]] = struct{}{}
		}
	}
	return found
}

// Substitute replaces every known token with the guest's field value (empty
// string when the field is absent). Unknown tokens are left byte-identical.
func Substitute(text string, g guests.Guest) string {
	return tokenPattern.ReplaceAllStringFunc(text, func(match string) string {
		name := match[2 : len(match)-2]
		value, known := resolve(name, g)
		if !known {
			return match
		}
		return value
	})
}

// ValidationResult reports which known tokens would resolve empty for a
// guest. Unknown tokens are listed separately and never fail validation:
// substitution leaves them verbatim, so they cannot produce a broken artifact.
type ValidationResult struct {
	Valid   bool     `json:"valid"`
	Missing []string `json:"missing,omitempty"`
	Unknown []string `json:"unknown,omitempty"`
}

// ValidateTemplateForGuest flags every known token whose resolved value would
// be empty for this guest.
func ValidateTemplateForGuest(items []canvas.Item, g guests.Guest) ValidationResult {
	res := ValidationResult{Valid: true}

	for token := range ExtractVariables(items) {
		value, known := resolve(token, g)
		if !known {
			res.Unknown = append(res.Unknown, token)
			continue
		}
		if value == "" {
			res.Valid = false
			res.Missing = append(res.Missing, token)
		}
	}

	return res
}

// resolve maps a token identifier to the guest field. The second return is
// false for identifiers outside the known set.
func resolve(token string, g guests.Guest) (string, bool) {
	switch token {
	case TokenName:
		return g.Name, true
	case TokenFirstName:
		first, _ := splitName(g.Name)
		return first, true
	case TokenLastName:
		_, last := splitName(g.Name)
		return last, true
	case TokenEmail:
		return g.Email, true
	case TokenLocation, TokenLieu:
		return g.Location, true
	case TokenDate:
		return g.Date, true
	case TokenTime, TokenHeure:
		return g.Time, true
	}
	return "", false
}

// splitName derives first/last from the full name on whitespace. Everything
// after the first field belongs to the last name.
func splitName(name string) (string, string) {
	fields := strings.Fields(name)
	switch len(fields) {
	case 0:
		return "", ""
	case 1:
		return fields[0], ""
	default:
		return fields[0], strings.Join(fields[1:], " ")
	}
}
