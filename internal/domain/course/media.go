package course

import "strings"

// ParseMediaKind maps the stored lecture type to a MediaKind. Both the
// extension form ("mp4") and the content category form ("video") name a
// video; everything else is shown as a document.
func ParseMediaKind(s string) MediaKind {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mp4", "video":
		return Video
	default:
		return Document
	}
}

// MediaKindFromContentType infers the kind of a replacement file from its
// declared content type. Only the top-level category is consulted.
func MediaKindFromContentType(contentType string) MediaKind {
	top, _, _ := strings.Cut(strings.TrimSpace(contentType), "/")
	if strings.EqualFold(top, "video") {
		return Video
	}
	return Document
}
