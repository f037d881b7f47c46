package normalize

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
)

var (
	splitAcronym = regexp.MustCompile(`([A-Z]+)([A-Z][a-z])`)
	splitCamel   = regexp.MustCompile(`([a-z0-9])([A-Z])`)
	nonAlnum     = regexp.MustCompile(`[^a-zA-Z0-9]+`)
)

// maxLabelLength is the normalized_label length ceiling before truncation
// and hash-suffixing kicks in.
const maxLabelLength = 100

// truncatedLength leaves room for an 8-hex-character hash.
const truncatedLength = 92

// SnakeCase converts an XBRL-style PascalCase concept name to snake_case,
// splitting both acronym boundaries ("XBRLFormat" -> "xbrl_format") and
// ordinary camel boundaries ("NetIncome" -> "net_income").
func SnakeCase(conceptName string) string {
	s := splitAcronym.ReplaceAllString(conceptName, "${1}_${2}")
	s = splitCamel.ReplaceAllString(s, "${1}_${2}")
	s = nonAlnum.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	return strings.ToLower(s)
}

// suffixRewrites maps XBRL suffix conventions to semantically explicit tags
// applied during auto-fallback.
var suffixRewrites = []struct {
	suffix      string
	replacement string
}{
	{"_policy_text_block", "_policy_note"},
	{"_text_block", "_note"},
	{"_abstract", "_section_header"},
}

// AutoFallbackLabel produces the deterministic snake_case + hash-suffix
// fallback label for a concept name that reached no earlier resolution
// step. Labels longer than 100 characters are truncated to 92 characters
// and suffixed with an 8-hex-character stable hash of the full pre-
// truncation label, guaranteeing uniqueness per distinct input name.
func AutoFallbackLabel(conceptName string) string {
	label := SnakeCase(conceptName)
	for _, r := range suffixRewrites {
		if strings.HasSuffix(label, r.suffix) {
			label = strings.TrimSuffix(label, r.suffix) + r.replacement
			break
		}
	}

	if len(label) <= maxLabelLength {
		return label
	}

	sum := sha256.Sum256([]byte(label))
	hash := hex.EncodeToString(sum[:])[:8]
	return label[:truncatedLength] + hash
}
