// Package filetype classifies filenames into preview categories by
// extension and resolves the media MIME type for playable categories.
// Resolution is pure and total: any string, including the empty string and
// names with only a leading dot, resolves to a category.
package filetype

import "strings"

// Category is the preview-strategy classification for a file.
type Category string

const (
	CategoryImage      Category = "image"
	CategoryPDF        Category = "pdf"
	CategoryText       Category = "text"
	CategoryVideo      Category = "video"
	CategoryAudio      Category = "audio"
	CategoryWord       Category = "word"
	CategoryExcel      Category = "excel"
	CategoryPowerPoint Category = "powerpoint"
	CategoryArchive    Category = "archive"
	CategoryOther      Category = "other"
)

// Category checks run in a fixed order so extensions listed in more than
// one set (ogg is both a video and an audio container) resolve the same way
// every time: video wins over audio.
var categoryOrder = []Category{
	CategoryImage,
	CategoryPDF,
	CategoryText,
	CategoryVideo,
	CategoryAudio,
	CategoryWord,
	CategoryExcel,
	CategoryPowerPoint,
	CategoryArchive,
}

var extensions = map[Category][]string{
	CategoryImage:      {"jpg", "jpeg", "png", "gif", "webp", "bmp"},
	CategoryPDF:        {"pdf"},
	CategoryText:       {"txt", "md", "html", "css", "js", "json", "xml", "log", "ini", "conf", "sh", "bat", "py", "java", "c", "cpp", "h"},
	CategoryVideo:      {"mp4", "webm", "ogg", "mov", "avi", "mkv"},
	CategoryAudio:      {"mp3", "wav", "flac", "aac"},
	CategoryWord:       {"doc", "docx"},
	CategoryExcel:      {"xls", "xlsx"},
	CategoryPowerPoint: {"ppt", "pptx"},
	CategoryArchive:    {"zip", "rar", "7z", "tar", "gz", "bz2", "xz"},
}

var byExtension = buildIndex()

func buildIndex() map[string]Category {
	index := make(map[string]Category)
	for _, cat := range categoryOrder {
		for _, ext := range extensions[cat] {
			if _, taken := index[ext]; !taken {
				index[ext] = cat
			}
		}
	}
	return index
}

// Resolve maps a filename to its preview category using the lower-cased
// suffix after the last dot. Names without a dot, names ending in a dot and
// unrecognized suffixes all resolve to CategoryOther.
func Resolve(filename string) Category {
	ext := extension(filename)
	if ext == "" {
		return CategoryOther
	}
	if cat, ok := byExtension[ext]; ok {
		return cat
	}
	return CategoryOther
}

var videoMIME = map[string]string{
	"mp4":  "video/mp4",
	"webm": "video/webm",
	"ogg":  "video/ogg",
	"mov":  "video/quicktime",
	"avi":  "video/x-msvideo",
	"mkv":  "video/x-matroska",
}

var audioMIME = map[string]string{
	"mp3":  "audio/mpeg",
	"wav":  "audio/wav",
	"ogg":  "audio/ogg",
	"flac": "audio/flac",
	"aac":  "audio/aac",
}

// MIMEType returns the media MIME type for a filename in a playable
// category. Unknown suffixes fall back to the category default (video/mp4,
// audio/mpeg); non-media categories return the empty string.
func MIMEType(filename string) string {
	ext := extension(filename)
	switch Resolve(filename) {
	case CategoryVideo:
		if mime, ok := videoMIME[ext]; ok {
			return mime
		}
		return "video/mp4"
	case CategoryAudio:
		if mime, ok := audioMIME[ext]; ok {
			return mime
		}
		return "audio/mpeg"
	default:
		return ""
	}
}

func extension(filename string) string {
	idx := strings.LastIndexByte(filename, '.')
	if idx < 0 || idx == len(filename)-1 {
		return ""
	}
	return strings.ToLower(filename[idx+1:])
}
