package cds

import (
	"context"
	"fmt"
	"io/fs"
	"mime"
	"net/url"
	"path"
	"strings"
)

// mediaTypes covers media extensions missing from the system table on
// minimal hosts.
var mediaTypes = map[string]string{
	".mp3":  "audio/mpeg",
	".flac": "audio/flac",
	".ogg":  "audio/ogg",
	".m4a":  "audio/mp4",
	".wav":  "audio/wav",
	".mp4":  "video/mp4",
	".mkv":  "video/x-matroska",
	".avi":  "video/x-msvideo",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

// MediaType returns the MIME type and UPnP class of a file name, or empty
// strings when the file is not media.
func MediaType(name string) (mimeType, class string) {
	ext := strings.ToLower(path.Ext(name))
	mimeType, ok := mediaTypes[ext]
	if !ok {
		mimeType, _, _ = strings.Cut(mime.TypeByExtension(ext), ";")
	}
	switch {
	case strings.HasPrefix(mimeType, "audio/"):
		return mimeType, ClassAudioItem
	case strings.HasPrefix(mimeType, "video/"):
		return mimeType, ClassVideoItem
	case strings.HasPrefix(mimeType, "image/"):
		return mimeType, ClassImageItem
	default:
		return "", ""
	}
}

// Import adds the media files of fsys below container parent, mirroring
// the directory tree. Hidden entries and non-media files are skipped. Item
// resources are baseURL followed by the escaped file path, so baseURL
// should be where fsys is served. Import returns the number of items added.
func (d *MemoryDirectory) Import(ctx context.Context, fsys fs.FS, parent, baseURL string) (int, error) {
	if _, err := d.Object(ctx, parent); err != nil {
		return 0, err
	}

	id := func(p string) string {
		if p == "." {
			return parent
		}
		return parent + "/" + p
	}

	items := 0
	err := fs.WalkDir(fsys, ".", func(p string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if p == "." {
			return nil
		}
		if strings.HasPrefix(entry.Name(), ".") {
			if entry.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if entry.IsDir() {
			return d.AddContainer(id(path.Dir(p)), id(p), entry.Name())
		}

		mimeType, class := MediaType(entry.Name())
		if class == "" {
			return nil
		}
		info, err := entry.Info()
		if err != nil {
			return err
		}
		res := Resource{
			URL:          baseURL + escapePath(p),
			ProtocolInfo: fmt.Sprintf("http-get:*:%s:*", mimeType),
			Size:         info.Size(),
		}
		title := strings.TrimSuffix(entry.Name(), path.Ext(entry.Name()))
		if err := d.AddItem(id(path.Dir(p)), id(p), title, class, res); err != nil {
			return err
		}
		items++
		return nil
	})
	if err != nil {
		return items, fmt.Errorf("import: %w", err)
	}
	return items, nil
}

func escapePath(p string) string {
	segs := strings.Split(p, "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return strings.Join(segs, "/")
}
