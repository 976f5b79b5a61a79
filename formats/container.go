// SPDX-License-Identifier: EPL-2.0

package formats

// Container identifies the file format wrapping the encoded audio.
type Container int

const (
	ContainerUnknown Container = iota
	ContainerMP3
	ContainerM4A
	ContainerWAVE
	ContainerAIFF
	ContainerAIFC
	ContainerFLAC
	ContainerADTS
	ContainerCAF
	ContainerAU
	ContainerOgg
)

var containerNames = map[Container]string{
	ContainerMP3:  "mp3",
	ContainerM4A:  "m4a",
	ContainerWAVE: "wav",
	ContainerAIFF: "aiff",
	ContainerAIFC: "aifc",
	ContainerFLAC: "flac",
	ContainerADTS: "aac",
	ContainerCAF:  "caf",
	ContainerAU:   "au",
	ContainerOgg:  "ogg",
}

// String returns the short name of the container, which doubles as its
// canonical file extension.
func (c Container) String() string {
	if name, ok := containerNames[c]; ok {
		return name
	}
	return "unknown"
}

// Extension returns the canonical file extension including the leading dot.
func (c Container) Extension() string {
	if c == ContainerUnknown {
		return ""
	}
	return "." + c.String()
}

// ContainerForExtension maps a file extension (with or without the dot, any
// case) to the container that normally uses it.
func ContainerForExtension(ext string) Container {
	switch normalizeExt(ext) {
	case "mp3":
		return ContainerMP3
	case "m4a", "m4r", "mp4", "m4b":
		return ContainerM4A
	case "wav", "wave":
		return ContainerWAVE
	case "aif", "aiff":
		return ContainerAIFF
	case "aifc":
		return ContainerAIFC
	case "flac":
		return ContainerFLAC
	case "aac", "adts":
		return ContainerADTS
	case "caf":
		return ContainerCAF
	case "au", "snd":
		return ContainerAU
	case "ogg", "oga":
		return ContainerOgg
	default:
		return ContainerUnknown
	}
}

// BigEndian reports whether linear PCM in this container is stored big-endian.
func (c Container) BigEndian() bool {
	switch c {
	case ContainerAIFF, ContainerAIFC, ContainerAU:
		return true
	default:
		return false
	}
}
