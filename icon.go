package dmi

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"
	"math"
)

// Icon is a fully assembled DMI: the manifest header plus every IconState,
// each carrying its sliced tile images (spec.md §3 "Icon").
type Icon struct {
	Version string
	Width   uint32
	Height  uint32
	States  []*IconState
}

// IconState is one animation state: its manifest attributes plus the tile
// images sliced from the atlas, ordered frame-major/dir-minor — frame 1's
// directions in dirOrder, then frame 2's, and so on (spec.md §3/§4.2).
type IconState struct {
	Name            string
	Dirs            uint8
	Frames          uint32
	Images          []image.Image
	Delay           []float32
	Loop            Looping
	Rewind          bool
	Movement        bool
	Hotspot         *Hotspot
	UnknownSettings []UnknownSetting
}

// Image returns the tile for the given direction and 1-based frame number.
// Tiles are sliced frame-major/dir-minor (see IconState's doc comment), so
// the index of a given (dir, frame) pair is the frame's block offset
// ((frame-1) * Dirs) plus the direction's ordinal within that block.
func (st *IconState) Image(dir Dir, frame uint32) (image.Image, error) {
	ord, ok := dirOrdinal(dir, st.Dirs)
	if !ok {
		return nil, newErr(KindIconState, fmt.Sprintf("state %q has no %s direction at dirs=%d", st.Name, dir, st.Dirs))
	}
	if frame < 1 || frame > st.Frames {
		return nil, newErr(KindIconState, fmt.Sprintf("state %q has no frame %d (frames=%d)", st.Name, frame, st.Frames))
	}
	idx := int(frame-1)*int(st.Dirs) + ord
	if idx >= len(st.Images) {
		return nil, newErr(KindIconState, fmt.Sprintf("state %q: image index %d out of range (%d images)", st.Name, idx, len(st.Images)))
	}
	return st.Images[idx], nil
}

// State looks up a state by name.
func (icon *Icon) State(name string) (*IconState, bool) {
	for _, st := range icon.States {
		if st.Name == name {
			return st, true
		}
	}
	return nil, false
}

// Load performs a full load: decode the PNG raster, inflate and parse the
// manifest, and slice every state's tiles out of the atlas (spec.md §4.7).
func Load(r io.Reader) (*Icon, error) {
	return loadIcon(r, false)
}

// LoadStrict is Load with strict zTXt compression-method checking.
func LoadStrict(r io.Reader) (*Icon, error) {
	return loadIcon(r, true)
}

func loadIcon(r io.Reader, strict bool) (*Icon, error) {
	raw, err := LoadRawDmi(r)
	if err != nil {
		return nil, err
	}
	manifest, err := manifestFromRawDmi(raw, strict)
	if err != nil {
		return nil, err
	}

	var rasterBuf bytes.Buffer
	if _, err := raw.Save(&rasterBuf, true); err != nil {
		return nil, err
	}
	img, err := png.Decode(&rasterBuf)
	if err != nil {
		return nil, wrapErr(KindGeneric, "decoding png raster", err)
	}
	rgba, err := rasterToRGBA(img)
	if err != nil {
		return nil, err
	}

	b := rgba.Bounds()
	cols, rows, err := atlasShape(b.Dx(), b.Dy(), manifest.Width, manifest.Height)
	if err != nil {
		return nil, err
	}
	totalTiles := cols * rows

	icon := &Icon{Version: manifest.Version, Width: manifest.Width, Height: manifest.Height}

	tileIndex := 0
	for _, ms := range manifest.States {
		need := int(ms.Dirs) * int(ms.Frames)
		images := make([]image.Image, 0, need)
		for i := 0; i < need; i++ {
			if tileIndex >= totalTiles {
				return nil, newErr(KindGeometryMismatch, fmt.Sprintf("state %q needs more tiles than the atlas provides", ms.Name))
			}
			col := tileIndex % cols
			row := tileIndex / cols
			x0 := col * int(manifest.Width)
			y0 := row * int(manifest.Height)
			tile := rgba.SubImage(image.Rect(x0, y0, x0+int(manifest.Width), y0+int(manifest.Height)))
			images = append(images, tile)
			tileIndex++
		}
		icon.States = append(icon.States, stateFromManifest(&ms, images))
	}

	return icon, nil
}

// LoadMeta performs the metadata-only load: only {IHDR, zTXt} are read off
// the wire, so returned states carry the manifest's attributes with empty
// Images slices. Geometry is still cross-validated against the IHDR pixel
// dimensions (spec.md §4.7 "Metadata-only load").
func LoadMeta(r io.Reader) (*Icon, error) {
	return loadIconMeta(r, false)
}

// LoadMetaStrict is LoadMeta with strict zTXt compression-method checking.
func LoadMetaStrict(r io.Reader) (*Icon, error) {
	return loadIconMeta(r, true)
}

func loadIconMeta(r io.Reader, strict bool) (*Icon, error) {
	raw, err := LoadRawDmiMeta(r)
	if err != nil {
		return nil, err
	}
	manifest, err := manifestFromRawDmi(raw, strict)
	if err != nil {
		return nil, err
	}

	cols, rows, err := atlasShape(int(raw.IhdrWidth()), int(raw.IhdrHeight()), manifest.Width, manifest.Height)
	if err != nil {
		return nil, err
	}
	totalTiles := cols * rows

	icon := &Icon{Version: manifest.Version, Width: manifest.Width, Height: manifest.Height}

	tileIndex := 0
	for _, ms := range manifest.States {
		need := int(ms.Dirs) * int(ms.Frames)
		if tileIndex+need > totalTiles {
			return nil, newErr(KindGeometryMismatch, fmt.Sprintf("state %q needs more tiles than the atlas provides", ms.Name))
		}
		tileIndex += need
		icon.States = append(icon.States, stateFromManifest(&ms, nil))
	}

	return icon, nil
}

func manifestFromRawDmi(raw *RawDmi, strict bool) (*Manifest, error) {
	if raw.Ztxt == nil {
		return nil, newErr(KindMissingZtxt, "dmi has no zTXt chunk")
	}
	_, ztxt, err := decodeZtxtChunk(raw.Ztxt, strict)
	if err != nil {
		return nil, err
	}
	manifestText, err := ztxt.inflate()
	if err != nil {
		return nil, err
	}
	return ParseManifest(manifestText)
}

func stateFromManifest(ms *ManifestState, images []image.Image) *IconState {
	return &IconState{
		Name:            ms.Name,
		Dirs:            ms.Dirs,
		Frames:          ms.Frames,
		Images:          images,
		Delay:           ms.Delay,
		Loop:            ms.Loop,
		Rewind:          ms.Rewind,
		Movement:        ms.Movement,
		Hotspot:         ms.Hotspot,
		UnknownSettings: ms.UnknownSettings,
	}
}

// atlasShape validates that a pngW x pngH raster tiles evenly into
// tileW x tileH cells and returns the resulting column/row count
// (spec.md §4.2 "Tile slicing").
func atlasShape(pngW, pngH int, tileW, tileH uint32) (cols, rows int, err error) {
	if pngW == 0 || pngH == 0 {
		return 0, 0, newErr(KindGeometryMismatch, "png raster has a zero dimension")
	}
	if tileW == 0 || tileH == 0 {
		return 0, 0, newErr(KindGeometryMismatch, "state tile width/height must not be zero")
	}
	if pngW%int(tileW) != 0 || pngH%int(tileH) != 0 {
		return 0, 0, newErr(KindGeometryMismatch, fmt.Sprintf("png %dx%d is not evenly divisible by state tile %dx%d", pngW, pngH, tileW, tileH))
	}
	return pngW / int(tileW), pngH / int(tileH), nil
}

// rasterToRGBA normalizes any PNG-decodable image into an *image.RGBA with
// bounds starting at (0,0), rejecting color models image/png never
// produces (spec.md §4.3: Grayscale, Grayscale+Alpha, Palette(+tRNS), RGB,
// and RGBA are all expanded to RGBA; anything else is UnsupportedColorType).
func rasterToRGBA(img image.Image) (*image.RGBA, error) {
	switch img.(type) {
	case *image.Gray, *image.Gray16, *image.NRGBA, *image.NRGBA64, *image.RGBA, *image.RGBA64, *image.Paletted:
		b := img.Bounds()
		out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
		return out, nil
	default:
		return nil, newErr(KindUnsupportedColorType, fmt.Sprintf("unsupported png color model %T", img))
	}
}

// Save assembles every state's tiles into a single atlas, shaped
// ⌈√n⌉ columns by ⌈n/⌈√n⌉⌉ rows (n = total tile count across all states),
// encodes it as a PNG, attaches a fresh zTXt manifest chunk, and writes the
// result to w (spec.md §4.7 "Save").
func (icon *Icon) Save(w io.Writer) error {
	total := 0
	for _, st := range icon.States {
		need := int(st.Dirs) * int(st.Frames)
		if len(st.Images) != need {
			return newErr(KindIconState, fmt.Sprintf("state %q has %d images, expected dirs*frames=%d", st.Name, len(st.Images), need))
		}
		total += need
	}

	cols, rows := atlasDimensions(total)

	tileW, tileH := int(icon.Width), int(icon.Height)
	atlas := image.NewRGBA(image.Rect(0, 0, cols*tileW, rows*tileH))

	tileIndex := 0
	for _, st := range icon.States {
		for _, img := range st.Images {
			col := tileIndex % cols
			row := tileIndex / cols
			x0, y0 := col*tileW, row*tileH
			dstRect := image.Rect(x0, y0, x0+tileW, y0+tileH)
			draw.Draw(atlas, dstRect, img, img.Bounds().Min, draw.Src)
			tileIndex++
		}
	}

	var rasterBuf bytes.Buffer
	encoder := png.Encoder{CompressionLevel: png.DefaultCompression}
	if err := encoder.Encode(&rasterBuf, atlas); err != nil {
		return wrapErr(KindGeneric, "encoding png raster", err)
	}

	raw, err := decodeRawDmi(rasterBuf.Bytes())
	if err != nil {
		return err
	}

	manifest := &Manifest{Version: icon.Version, Width: icon.Width, Height: icon.Height}
	for _, st := range icon.States {
		manifest.States = append(manifest.States, ManifestState{
			Name:            st.Name,
			Dirs:            st.Dirs,
			Frames:          st.Frames,
			Delay:           st.Delay,
			Loop:            st.Loop,
			Rewind:          st.Rewind,
			Movement:        st.Movement,
			Hotspot:         st.Hotspot,
			UnknownSettings: st.UnknownSettings,
		})
	}
	manifestText, err := EmitManifest(manifest)
	if err != nil {
		return err
	}
	ztxt, err := newZtxtChunk(manifestText)
	if err != nil {
		return err
	}
	raw.Ztxt = ztxt

	_, err = raw.Save(w, true)
	return err
}

// atlasDimensions picks the ⌈√n⌉ x ⌈n/⌈√n⌉⌉ grid shape this library always
// writes (spec.md §9 REDESIGN FLAG: drop empty trailing rows rather than
// the original format's fixed-width-with-padding layout). A zero-tile icon
// still emits a single 1x1-tile atlas so the PNG raster is never empty.
func atlasDimensions(total int) (cols, rows int) {
	if total == 0 {
		return 1, 1
	}
	cols = int(math.Ceil(math.Sqrt(float64(total))))
	rows = int(math.Ceil(float64(total) / float64(cols)))
	return cols, rows
}
