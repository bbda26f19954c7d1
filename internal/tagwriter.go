package internal

import (
	"fmt"

	"github.com/zhaarey/go-mp4tag"
)

// MP4TagWriter writes iTunes-style ilst atoms
type MP4TagWriter struct{}

func (w *MP4TagWriter) WriteTags(path string, tags TagSet) error {
	t := &mp4tag.MP4Tags{
		Title:     tags.Title,
		TitleSort: tags.Title,
		Artist:    tags.Artist,
		Album:     tags.Album,
		AlbumSort: tags.Album,
		Comment:   tags.Comment,
	}

	if tags.Cover != nil {
		format := mp4tag.ImageTypePNG
		if tags.Cover.Format == ImageJPEG {
			format = mp4tag.ImageTypeJPEG
		}
		t.Pictures = []*mp4tag.MP4Picture{{Format: format, Data: tags.Cover.Data}}
	}

	mp4, err := mp4tag.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer mp4.Close()

	if err := mp4.Write(t, []string{}); err != nil {
		return fmt.Errorf("writing mp4 tags: %w", err)
	}
	return nil
}
