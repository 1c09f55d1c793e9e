package usecase

import (
	"encoding/json"
	"errors"
	"path"
	"regexp"
	"strings"

	"github.com/dtkav/casemap/aggregate"
)

var (
	ErrNoAttachments = errors.New("no attachments found for this item")
	ErrNoImage       = errors.New("no image attachments found for this item")
)

// Attachment is a file stored against a list item.
type Attachment struct {
	FileName          string `json:"FileName"`
	ServerRelativeURL string `json:"ServerRelativeUrl"`
}

var imageName = regexp.MustCompile(`(?i)\.(png|jpe?g|webp|gif)$`)

// IsImage reports whether name has an image extension we can serve.
func IsImage(name string) bool {
	return imageName.MatchString(name)
}

var extPattern = regexp.MustCompile(`\.([a-zA-Z0-9]+)$`)

// Extension returns the lowercased extension of name, or "jpg" if it has none.
func Extension(name string) string {
	m := extPattern.FindStringSubmatch(name)
	if m == nil {
		return "jpg"
	}
	return strings.ToLower(m[1])
}

// ContentType guesses the MIME type from a file name.
func ContentType(name string) string {
	switch strings.ToLower(strings.TrimPrefix(path.Ext(name), ".")) {
	case "png":
		return "image/png"
	case "webp":
		return "image/webp"
	case "gif":
		return "image/gif"
	case "jpg", "jpeg":
		return "image/jpeg"
	default:
		return "application/octet-stream"
	}
}

// ExportName is the stable download name of a cover image.
func ExportName(source string) string {
	return "cover." + Extension(source)
}

// ImageReference returns the file name held in the item's Image column. The
// column is usually a JSON string, sometimes an already-decoded object.
// Anything unreadable means no preference.
func ImageReference(item aggregate.Record) string {
	var ref struct {
		FileName string `json:"fileName"`
	}
	switch v := item["Image"].(type) {
	case string:
		if v == "" || json.Unmarshal([]byte(v), &ref) != nil {
			return ""
		}
	case map[string]any:
		name, _ := v["fileName"].(string)
		return name
	default:
		return ""
	}
	return ref.FileName
}

func find(atts []Attachment, match func(Attachment) bool) (Attachment, bool) {
	for _, a := range atts {
		if match(a) {
			return a, true
		}
	}
	return Attachment{}, false
}

func pickPreferredOrImage(preferred string, atts []Attachment) (Attachment, bool) {
	if preferred != "" {
		if a, ok := find(atts, func(a Attachment) bool { return a.FileName == preferred }); ok {
			return a, true
		}
	}
	return find(atts, func(a Attachment) bool { return IsImage(a.FileName) })
}

// PickImage chooses the attachment shown for an item: the preferred file, then
// the first image, then whatever was attached first.
func PickImage(preferred string, atts []Attachment) (Attachment, error) {
	if len(atts) == 0 {
		return Attachment{}, ErrNoAttachments
	}
	if a, ok := pickPreferredOrImage(preferred, atts); ok {
		return a, nil
	}
	return atts[0], nil
}

// PickCover is PickImage without the last fallback. The preferred file is
// returned even when it is not an image; callers decide what to do with it.
func PickCover(preferred string, atts []Attachment) (Attachment, error) {
	if len(atts) == 0 {
		return Attachment{}, ErrNoAttachments
	}
	if a, ok := pickPreferredOrImage(preferred, atts); ok {
		return a, nil
	}
	return Attachment{}, ErrNoImage
}
