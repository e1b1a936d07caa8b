package qr

import (
	"image"
	"image/draw"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
)

// Locator attempts to decode a QR symbol from a rasterized page.
//
// Regions are tried in order of likelihood: full frame first, then the
// top-right quadrant (the conventional QR position on Turkish e-invoices),
// then the top-left quadrant. Every region is tried in normal and inverted
// pixel polarity, since some documents render QR codes light-on-dark.
// The first successful decode wins.
type Locator struct {
	reader gozxing.Reader
	hints  map[gozxing.DecodeHintType]interface{}
}

// NewLocator creates a Locator with a QR-only reader.
func NewLocator() *Locator {
	return &Locator{
		reader: qrcode.NewQRCodeReader(),
		hints: map[gozxing.DecodeHintType]interface{}{
			gozxing.DecodeHintType_TRY_HARDER: true,
		},
	}
}

// DecodeFrame attempts to decode a QR symbol from a rendered page frame.
// It returns the decoded text and true on success, or "" and false after
// exhausting every region/polarity combination.
func (l *Locator) DecodeFrame(img image.Image) (string, bool) {
	for _, region := range frameRegions(img.Bounds()) {
		frame := img
		if region != img.Bounds() {
			frame = cropRegion(img, region)
		}
		if text, ok := l.decodeRegion(frame); ok {
			return text, true
		}
	}
	return "", false
}

func (l *Locator) decodeRegion(img image.Image) (string, bool) {
	source := gozxing.NewLuminanceSourceFromImage(img)

	if text, ok := l.decodeSource(source); ok {
		return text, true
	}
	// Inverted polarity: light-on-dark QR codes.
	return l.decodeSource(gozxing.NewInvertedLuminanceSource(source))
}

func (l *Locator) decodeSource(source gozxing.LuminanceSource) (string, bool) {
	bitmap, err := gozxing.NewBinaryBitmap(gozxing.NewHybridBinarizer(source))
	if err != nil {
		return "", false
	}
	result, err := l.reader.Decode(bitmap, l.hints)
	if err != nil {
		return "", false
	}
	return result.GetText(), true
}

// frameRegions returns the decode regions for a frame in attempt order:
// full frame, top-right quadrant, top-left quadrant.
func frameRegions(b image.Rectangle) []image.Rectangle {
	midX := b.Min.X + b.Dx()/2
	midY := b.Min.Y + b.Dy()/2
	return []image.Rectangle{
		b,
		image.Rect(midX, b.Min.Y, b.Max.X, midY),
		image.Rect(b.Min.X, b.Min.Y, midX, midY),
	}
}

func cropRegion(img image.Image, r image.Rectangle) image.Image {
	out := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(out, out.Bounds(), img, r.Min, draw.Src)
	return out
}
