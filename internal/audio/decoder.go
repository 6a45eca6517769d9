package audio

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"net/url"
	"os/exec"
	"path"
	"strings"

	"github.com/dhowden/tag"
	"github.com/faiface/beep"
	"github.com/faiface/beep/flac"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/wav"
	"github.com/pkg/errors"

	playerrors "github.com/jscyril/preview_player/pkg/errors"
)

// Container is the file format of a fetched preview
type Container string

const (
	ContainerUnknown Container = ""
	ContainerMP3     Container = "mp3"
	ContainerWAV     Container = "wav"
	ContainerFLAC    Container = "flac"
	ContainerM4A     Container = "m4a"
	ContainerOGG     Container = "ogg"
)

// SupportedFormats returns the containers decoded without a transcoder
func SupportedFormats() []Container {
	return []Container{ContainerMP3, ContainerWAV, ContainerFLAC}
}

// IsSupported reports whether c is decoded natively
func IsSupported(c Container) bool {
	for _, format := range SupportedFormats() {
		if c == format {
			return true
		}
	}
	return false
}

// NeedsTranscode reports whether c is known but has to go through the
// external transcoder
func NeedsTranscode(c Container) bool {
	return c == ContainerM4A || c == ContainerOGG
}

// memFile lets a fetched preview be decoded and seeked in memory
type memFile struct {
	*bytes.Reader
}

func (memFile) Close() error { return nil }

func newMemFile(b []byte) memFile {
	return memFile{bytes.NewReader(b)}
}

// Sniff identifies the container of data, falling back to the extension of
// src when the bytes carry no recognisable signature.
func Sniff(data []byte, src string) Container {
	if c := sniffBytes(data); c != ContainerUnknown {
		return c
	}
	return fromExtension(src)
}

func sniffBytes(data []byte) Container {
	if len(data) >= 12 && string(data[0:4]) == "RIFF" && string(data[8:12]) == "WAVE" {
		return ContainerWAV
	}

	format, fileType, err := tag.Identify(bytes.NewReader(data))
	if err == nil {
		switch {
		case fileType == tag.FLAC:
			return ContainerFLAC
		case fileType == tag.OGG:
			return ContainerOGG
		case fileType == tag.MP3:
			return ContainerMP3
		case format == tag.MP4:
			return ContainerM4A
		}
	}

	// Bare MPEG audio frame sync
	if len(data) >= 2 && data[0] == 0xFF && data[1]&0xE0 == 0xE0 {
		return ContainerMP3
	}
	return ContainerUnknown
}

func fromExtension(src string) Container {
	p := src
	if u, err := url.Parse(src); err == nil {
		p = u.Path
	}
	switch strings.ToLower(path.Ext(p)) {
	case ".mp3":
		return ContainerMP3
	case ".wav":
		return ContainerWAV
	case ".flac":
		return ContainerFLAC
	case ".m4a", ".m4p", ".mp4", ".aac":
		return ContainerM4A
	case ".ogg", ".oga":
		return ContainerOGG
	}
	return ContainerUnknown
}

// EmbeddedTitle returns the title tag of data, if any
func EmbeddedTitle(data []byte) string {
	m, err := tag.ReadFrom(bytes.NewReader(data))
	if err != nil {
		return ""
	}
	return m.Title()
}

// DecodeAudio decodes a natively supported container
func DecodeAudio(r io.ReadSeekCloser, c Container) (beep.StreamSeekCloser, beep.Format, error) {
	switch c {
	case ContainerMP3:
		return mp3.Decode(r)
	case ContainerWAV:
		return wav.Decode(r)
	case ContainerFLAC:
		return flac.Decode(r)
	default:
		return nil, beep.Format{}, fmt.Errorf("%w: %q", playerrors.ErrInvalidFormat, string(c))
	}
}

// Transcode pipes data through the external transcoder and returns WAV bytes
func Transcode(ctx context.Context, transcoder string, data []byte) ([]byte, error) {
	if transcoder == "" {
		return nil, errors.Wrap(playerrors.ErrInvalidFormat, "no transcoder configured")
	}

	var out, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, transcoder,
		"-hide_banner", "-loglevel", "error",
		"-i", "pipe:0",
		"-f", "wav", "-acodec", "pcm_s16le",
		"pipe:1",
	)
	cmd.Stdin = bytes.NewReader(data)
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, errors.Wrapf(err, "transcode: %s", strings.TrimSpace(stderr.String()))
	}

	wavData := out.Bytes()
	if err := fixWAVSizes(wavData); err != nil {
		return nil, err
	}
	return wavData, nil
}

// fixWAVSizes rewrites the RIFF and data chunk sizes. A transcoder writing
// to a pipe cannot seek back to fill them in.
func fixWAVSizes(b []byte) error {
	if len(b) < 12 || string(b[0:4]) != "RIFF" || string(b[8:12]) != "WAVE" {
		return errors.Wrap(playerrors.ErrInvalidFormat, "transcoder output is not WAV")
	}
	binary.LittleEndian.PutUint32(b[4:8], uint32(len(b)-8))

	off := 12
	for off+8 <= len(b) {
		id := string(b[off : off+4])
		if id == "data" {
			binary.LittleEndian.PutUint32(b[off+4:off+8], uint32(len(b)-off-8))
			return nil
		}
		size := int(binary.LittleEndian.Uint32(b[off+4 : off+8]))
		off += 8 + size + size%2
	}
	return errors.Wrap(playerrors.ErrInvalidFormat, "transcoder output has no data chunk")
}

// decode turns fetched bytes into a seekable stream
func decode(ctx context.Context, transcoder string, data []byte, src string) (beep.StreamSeekCloser, beep.Format, Container, error) {
	c := Sniff(data, src)
	native := c
	switch {
	case IsSupported(c):
	case NeedsTranscode(c):
		wavData, err := Transcode(ctx, transcoder, data)
		if err != nil {
			return nil, beep.Format{}, c, err
		}
		data = wavData
		native = ContainerWAV
	default:
		return nil, beep.Format{}, c, fmt.Errorf("%w: unrecognised preview %s", playerrors.ErrInvalidFormat, src)
	}

	s, format, err := DecodeAudio(newMemFile(data), native)
	return s, format, c, err
}
