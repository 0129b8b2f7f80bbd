package domain

import (
	"errors"
	"fmt"
	"path"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/gosimple/slug"
	"golang.org/x/text/unicode/norm"
)

// MaxNameLength bounds layout names, in bytes.
const MaxNameLength = 255

// LayoutExt is the extension of stored layout files.
const LayoutExt = ".json"

var (
	ErrNameTooLong = errors.New("layout name exceeds maximum allowed size")
	ErrInvalidUTF8 = errors.New("layout name contains invalid UTF-8 sequences")
)

// SanitizeName enforces the size limit, validates UTF-8 and strips control characters.
// Names are rejected rather than truncated so two long names never collide silently.
func SanitizeName(name string) (string, error) {
	if len(name) > MaxNameLength {
		return "", fmt.Errorf("%w: size=%d limit=%d", ErrNameTooLong, len(name), MaxNameLength)
	}
	if !utf8.ValidString(name) {
		return "", ErrInvalidUTF8
	}
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, name), nil
}

// DefaultLayoutName is the name used when a save request carries none.
func DefaultLayoutName(now time.Time) string {
	return "layout_" + now.Format("2006-01-02_15-04-05")
}

var slugPunct = strings.NewReplacer("@", " at ", "&", " ", "_", "-")

// Slugify turns a display name into a filesystem-safe ASCII slug:
// letters are transliterated and lowercased, and any run of other characters becomes one dash.
func Slugify(name string) string {
	name = norm.NFKC.String(strings.TrimSpace(name))
	return slug.MakeLang(slugPunct.Replace(name), "en")
}

// FilenameFor derives the storage filename for a layout name.
// An empty name (or one that slugifies to nothing) falls back to DefaultLayoutName.
func FilenameFor(name string, now time.Time) (string, error) {
	clean, err := SanitizeName(name)
	if err != nil {
		return "", &ValidationError{Fields: map[string][]string{"name": {err.Error()}}, Cause: err}
	}
	base := Slugify(clean)
	if base == "" {
		base = Slugify(DefaultLayoutName(now))
	}
	return base + LayoutExt, nil
}

// NormalizeFilename validates a filename coming from a caller and appends
// LayoutExt when missing. Anything that is not a plain basename is rejected.
func NormalizeFilename(filename string) (string, error) {
	filename = strings.TrimSpace(filename)
	if filename == "" ||
		strings.ContainsAny(filename, "/\\\x00") ||
		strings.Contains(filename, "..") ||
		strings.HasPrefix(filename, ".") {
		return "", &ValidationError{
			Fields: map[string][]string{"filename": {fmt.Sprintf("%q is not a valid layout filename", filename)}},
			Cause:  ErrInvalidFilename,
		}
	}
	if path.Ext(filename) != LayoutExt {
		filename += LayoutExt
	}
	return filename, nil
}

// NameFromFilename strips the extension, giving the name shown in listings.
func NameFromFilename(filename string) string {
	return strings.TrimSuffix(filename, LayoutExt)
}
