// sanitize.go - Bereinigung von Formularfeldern
// Enthaelt: sanitizeString(), sanitizeProductName(), sanitizeCategory(), validImageURL()

package server

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/7blacky7/vismatch/catalog"
)

const (
	maxNameLength     = 100
	maxCategoryLength = 50

	defaultProductName = "Unnamed Product"
)

var (
	reJavascript = regexp.MustCompile(`(?i)javascript:`)
	reEventAttr  = regexp.MustCompile(`(?i)on\w+=`)
)

// sanitizeString kuerzt auf max Zeichen und entfernt HTML- und Script-Reste
func sanitizeString(s string, max int) string {
	s = strings.TrimSpace(s)
	if r := []rune(s); max > 0 && len(r) > max {
		s = string(r[:max])
	}
	s = strings.NewReplacer("<", "", ">", "").Replace(s)
	s = reJavascript.ReplaceAllString(s, "")
	s = reEventAttr.ReplaceAllString(s, "")
	return s
}

func sanitizeProductName(s string) string {
	if s = sanitizeString(s, maxNameLength); s == "" {
		return defaultProductName
	}
	return s
}

func sanitizeCategory(s string) string {
	if s = sanitizeString(s, maxCategoryLength); s == "" {
		return catalog.DefaultCategory
	}
	return s
}

// validImageURL akzeptiert nur absolute http(s)-URLs mit Host
func validImageURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
