// SPDX-License-Identifier: EPL-2.0

package formats

import (
	"fmt"
	"strings"
)

// FileType identifies a conversion target as the caller names it.
type FileType int

const (
	FileTypeMP3 FileType = iota
	FileTypeM4A
	FileTypeWAV
	FileTypeWMA
	FileTypeFLAC
	FileTypeALAC
	FileTypeAAC
	FileTypeAIFF
	FileTypeAIFC
	FileTypeOgg
	FileTypeCAF
	FileTypeAU
	FileTypeM4R

	fileTypeCount
)

var fileTypeNames = [fileTypeCount]string{
	FileTypeMP3:  "mp3",
	FileTypeM4A:  "m4a",
	FileTypeWAV:  "wav",
	FileTypeWMA:  "wma",
	FileTypeFLAC: "flac",
	FileTypeALAC: "alac",
	FileTypeAAC:  "aac",
	FileTypeAIFF: "aiff",
	FileTypeAIFC: "aifc",
	FileTypeOgg:  "ogg",
	FileTypeCAF:  "caf",
	FileTypeAU:   "au",
	FileTypeM4R:  "m4r",
}

// FileTypes returns every supported file type in declaration order.
func FileTypes() []FileType {
	out := make([]FileType, 0, fileTypeCount)
	for ft := range fileTypeCount {
		out = append(out, ft)
	}
	return out
}

// Valid reports whether ft is inside the supported set.
func (ft FileType) Valid() bool {
	return ft >= 0 && ft < fileTypeCount
}

func (ft FileType) String() string {
	if !ft.Valid() {
		return fmt.Sprintf("FileType(%d)", int(ft))
	}
	return fileTypeNames[ft]
}

// Extension returns the extension a destination of this type is expected to
// carry, including the leading dot.
func (ft FileType) Extension() string {
	if ft == FileTypeALAC {
		return ".m4a"
	}
	return "." + ft.String()
}

// ParseFileType resolves a file type from its name or an extension.
func ParseFileType(s string) (FileType, error) {
	name := normalizeExt(s)
	switch name {
	case "aif":
		name = "aiff"
	case "oga":
		name = "ogg"
	}

	for ft, n := range fileTypeNames {
		if n == name {
			return FileType(ft), nil
		}
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownFileType, s)
}

// MarshalText implements encoding.TextMarshaler.
func (ft FileType) MarshalText() ([]byte, error) {
	if !ft.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownFileType, int(ft))
	}
	return []byte(ft.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (ft *FileType) UnmarshalText(text []byte) error {
	parsed, err := ParseFileType(string(text))
	if err != nil {
		return err
	}
	*ft = parsed
	return nil
}

func normalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}
