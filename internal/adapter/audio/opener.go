package audio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/dhowden/tag"

	"github.com/tejashwikalptaru/vizwave/internal/domain"
	"github.com/tejashwikalptaru/vizwave/internal/ports"
)

// format is one decodable container.
type format struct {
	name  string
	exts  []string
	magic func(head []byte) bool
	open  func(f *os.File) (ports.PCMStream, error)
}

var formats = []format{
	{
		name: "wav",
		exts: []string{".wav", ".wave"},
		magic: func(h []byte) bool {
			return len(h) >= 12 && bytes.Equal(h[:4], []byte("RIFF")) && bytes.Equal(h[8:12], []byte("WAVE"))
		},
		open: openWAV,
	},
	{
		name: "flac",
		exts: []string{".flac"},
		magic: func(h []byte) bool {
			return bytes.HasPrefix(h, []byte("fLaC"))
		},
		open: openFLAC,
	},
	{
		name: "ogg",
		exts: []string{".ogg", ".oga"},
		magic: func(h []byte) bool {
			return bytes.HasPrefix(h, []byte("OggS"))
		},
		open: openOGG,
	},
	{
		name: "mp3",
		exts: []string{".mp3"},
		magic: func(h []byte) bool {
			// ID3v2 tag or an MPEG frame sync
			return bytes.HasPrefix(h, []byte("ID3")) || (len(h) >= 2 && h[0] == 0xFF && h[1]&0xE0 == 0xE0)
		},
		open: openMP3,
	},
}

// FileOpener opens audio files, choosing the decoder from the file header
// and falling back to the extension.
//
// Thread-safety: FileOpener is stateless and safe for concurrent use.
type FileOpener struct {
	logger *slog.Logger
}

var _ ports.SourceOpener = (*FileOpener)(nil)

// NewFileOpener creates a file opener.
func NewFileOpener(logger *slog.Logger) *FileOpener {
	return &FileOpener{logger: logger}
}

// Extensions lists every supported extension, for file dialogs.
func (o *FileOpener) Extensions() []string {
	var exts []string
	for _, f := range formats {
		exts = append(exts, f.exts...)
	}
	return exts
}

// Supports reports whether ext (with dot, any case) has a decoder.
func (o *FileOpener) Supports(ext string) bool {
	_, ok := formatByExt(ext)
	return ok
}

// Open decodes the file at path. The returned stream owns the file.
func (o *FileOpener) Open(path string) (ports.PCMStream, domain.SourceInfo, error) {
	info := domain.SourceInfo{Kind: domain.SourceFile, Path: path, Title: filepath.Base(path)}
	if path == "" {
		return nil, info, domain.NewSourceError("open", path, "empty path", domain.ErrFileNotFound)
	}

	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			err = fmt.Errorf("%w: %w", domain.ErrFileNotFound, err)
		}
		return nil, info, domain.NewSourceError("open", path, "cannot open file", err)
	}

	head := make([]byte, 12)
	n, _ := io.ReadFull(file, head)
	f, ok := formatByMagic(head[:n])
	if !ok {
		f, ok = formatByExt(filepath.Ext(path))
	}
	if !ok {
		_ = file.Close()
		return nil, info, domain.NewSourceError("open", path,
			fmt.Sprintf("no decoder for %q", filepath.Ext(path)), domain.ErrUnsupportedFormat)
	}

	readTags(file, &info)
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		_ = file.Close()
		return nil, info, domain.NewSourceError("open", path, "cannot rewind file", err)
	}

	stream, err := f.open(file)
	if err != nil {
		_ = file.Close()
		return nil, info, domain.NewSourceError("decode", path, err.Error(),
			fmt.Errorf("%w: %w", domain.ErrUnsupportedFormat, err))
	}

	sf := stream.Format()
	info.Format = f.name
	info.SampleRate = sf.SampleRate
	info.Channels = sf.Channels
	info.Duration = stream.Duration()

	if o.logger != nil {
		o.logger.Debug("source opened",
			slog.String("path", path),
			slog.String("format", f.name),
			slog.Int("sample_rate", sf.SampleRate),
			slog.Int("channels", sf.Channels),
			slog.Duration("duration", info.Duration))
	}
	return stream, info, nil
}

func formatByExt(ext string) (format, bool) {
	ext = strings.ToLower(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	for _, f := range formats {
		if slices.Contains(f.exts, ext) {
			return f, true
		}
	}
	return format{}, false
}

func formatByMagic(head []byte) (format, bool) {
	for _, f := range formats {
		if f.magic(head) {
			return f, true
		}
	}
	return format{}, false
}

// readTags fills title, artist and album from embedded tags when present.
// Files without tags keep their base name as title.
func readTags(rs io.ReadSeeker, info *domain.SourceInfo) {
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return
	}
	metadata, err := tag.ReadFrom(rs)
	if err != nil || metadata == nil {
		return
	}
	if title := strings.TrimSpace(metadata.Title()); title != "" {
		info.Title = title
	}
	if artist := strings.TrimSpace(metadata.Artist()); artist != "" {
		info.Artist = artist
	}
	if album := strings.TrimSpace(metadata.Album()); album != "" {
		info.Album = album
	}
}
