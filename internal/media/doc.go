// Package media opens photos, videos, and audio files and reads the metadata
// snapshot the importer resolves paths from.
//
// Open picks the media type by extension. Photos are read with EXIF, videos
// and m4a files through ffprobe tags, and mp3 files through ID3 frames. When
// configured, exiftool supplies XMP values from earlier imports and a
// geocoder turns coordinates into a place map.
package media
