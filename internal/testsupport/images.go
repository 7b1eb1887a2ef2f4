package testsupport

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"
)

// EXIF describes the tags written by WriteJPEG. Empty fields are omitted.
type EXIF struct {
	Make             string
	Model            string
	DateTimeOriginal string // "YYYY:MM:DD HH:MM:SS"
}

type ifdEntry struct {
	tag   uint16
	typ   uint16
	count uint32
	data  []byte
}

// WriteJPEG writes a small valid JPEG to path with an APP1 EXIF segment
// carrying tags.
func WriteJPEG(t testing.TB, path string, tags EXIF) {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for x := 0; x < 4; x++ {
		for y := 0; y < 4; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 40), G: uint8(y * 40), B: 90, A: 255})
		}
	}
	var encoded bytes.Buffer
	if err := jpeg.Encode(&encoded, img, nil); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}

	var out bytes.Buffer
	out.Write([]byte{0xFF, 0xD8})
	if app1 := exifSegment(tags); app1 != nil {
		out.Write([]byte{0xFF, 0xE1})
		_ = binary.Write(&out, binary.BigEndian, uint16(len(app1)+2))
		out.Write(app1)
	}
	out.Write(encoded.Bytes()[2:])

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, out.Bytes(), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func asciiEntry(tag uint16, value string) ifdEntry {
	data := append([]byte(value), 0)
	return ifdEntry{tag: tag, typ: 2, count: uint32(len(data)), data: data}
}

// exifSegment builds "Exif\0\0" followed by a little-endian TIFF with IFD0
// (Make, Model, ExifIFD pointer) and an Exif IFD (DateTimeOriginal).
func exifSegment(tags EXIF) []byte {
	var ifd0, exifIFD []ifdEntry
	if tags.Make != "" {
		ifd0 = append(ifd0, asciiEntry(0x010F, tags.Make))
	}
	if tags.Model != "" {
		ifd0 = append(ifd0, asciiEntry(0x0110, tags.Model))
	}
	if tags.DateTimeOriginal != "" {
		exifIFD = append(exifIFD, asciiEntry(0x9003, tags.DateTimeOriginal))
		ifd0 = append(ifd0, ifdEntry{tag: 0x8769, typ: 4, count: 1})
	}
	if len(ifd0) == 0 {
		return nil
	}

	ifdSize := func(n int) uint32 { return uint32(2 + 12*n + 4) }
	ifd0Offset := uint32(8)
	exifOffset := ifd0Offset + ifdSize(len(ifd0))
	dataOffset := exifOffset
	if len(exifIFD) > 0 {
		dataOffset += ifdSize(len(exifIFD))
	}

	var data bytes.Buffer
	writeIFD := func(buf *bytes.Buffer, entries []ifdEntry) {
		_ = binary.Write(buf, binary.LittleEndian, uint16(len(entries)))
		for _, e := range entries {
			_ = binary.Write(buf, binary.LittleEndian, e.tag)
			_ = binary.Write(buf, binary.LittleEndian, e.typ)
			_ = binary.Write(buf, binary.LittleEndian, e.count)
			switch {
			case e.tag == 0x8769:
				_ = binary.Write(buf, binary.LittleEndian, exifOffset)
			case len(e.data) <= 4:
				padded := make([]byte, 4)
				copy(padded, e.data)
				buf.Write(padded)
			default:
				_ = binary.Write(buf, binary.LittleEndian, dataOffset+uint32(data.Len()))
				data.Write(e.data)
			}
		}
		_ = binary.Write(buf, binary.LittleEndian, uint32(0))
	}

	var tiff bytes.Buffer
	tiff.Write([]byte{'I', 'I', 42, 0})
	_ = binary.Write(&tiff, binary.LittleEndian, ifd0Offset)
	writeIFD(&tiff, ifd0)
	if len(exifIFD) > 0 {
		writeIFD(&tiff, exifIFD)
	}
	tiff.Write(data.Bytes())

	return append([]byte("Exif\x00\x00"), tiff.Bytes()...)
}
