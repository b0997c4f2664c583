package parse

import (
	"path"
	"regexp"
	"strings"
)

var mediaExtRe = regexp.MustCompile(`(?i)\.(jpeg|jpg|mp4|ogg|opus|mp3|m4a|wav)`)

var extTypes = map[string]FileType{
	"jpeg": FileImage,
	"jpg":  FileImage,
	"mp4":  FileVideo,
	"ogg":  FileAudio,
	"opus": FileAudio,
	"mp3":  FileAudio,
	"m4a":  FileAudio,
	"wav":  FileAudio,
}

// FindMediaFile looks for the earliest media file name in a message such as
// "<attached: 00000005-PHOTO-2025-01-09-12-23-16.jpg>". The name starts after
// the last ':' before the extension.
func FindMediaFile(text string) (string, FileType, bool) {
	loc := mediaExtRe.FindStringSubmatchIndex(text)
	if loc == nil || loc[0] == 0 {
		return "", FileNone, false
	}

	start := strings.LastIndex(text[:loc[0]], ":") + 1
	name := strings.TrimPrefix(text[start:loc[1]], " ")
	return name, extTypes[strings.ToLower(text[loc[2]:loc[3]])], true
}

func stripPath(p string) string {
	if p == "" {
		return ""
	}
	return path.Base(strings.ReplaceAll(p, "\\", "/"))
}
