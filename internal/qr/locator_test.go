package qr

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
)

func encodeQR(t *testing.T, text string, size int) image.Image {
	t.Helper()
	writer := qrcode.NewQRCodeWriter()
	matrix, err := writer.Encode(text, gozxing.BarcodeFormat_QR_CODE, size, size, nil)
	if err != nil {
		t.Fatalf("failed to encode QR: %v", err)
	}
	return matrix
}

// pageWithQR composes a white page with the QR symbol drawn at the given offset.
func pageWithQR(width, height int, symbol image.Image, at image.Point) *image.RGBA {
	page := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(page, page.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	target := image.Rectangle{Min: at, Max: at.Add(symbol.Bounds().Size())}
	draw.Draw(page, target, symbol, symbol.Bounds().Min, draw.Src)
	return page
}

func invertImage(src *image.RGBA) *image.RGBA {
	out := image.NewRGBA(src.Bounds())
	for i := 0; i < len(src.Pix); i += 4 {
		out.Pix[i] = 255 - src.Pix[i]
		out.Pix[i+1] = 255 - src.Pix[i+1]
		out.Pix[i+2] = 255 - src.Pix[i+2]
		out.Pix[i+3] = src.Pix[i+3]
	}
	return out
}

func TestDecodeFrameFullFrame(t *testing.T) {
	const payload = "1234567890|GIB2025000001234|10.12.2025|1180,50"
	frame := pageWithQR(300, 300, encodeQR(t, payload, 260), image.Pt(20, 20))

	text, ok := NewLocator().DecodeFrame(frame)
	if !ok {
		t.Fatal("expected decode to succeed")
	}
	if text != payload {
		t.Errorf("decoded %q, want %q", text, payload)
	}
}

func TestDecodeFrameTopRightQuadrant(t *testing.T) {
	const payload = "VKN: 1234567890 Tutar: 250,00"
	// QR in the top-right corner of a wide page, the conventional e-invoice position.
	frame := pageWithQR(800, 600, encodeQR(t, payload, 180), image.Pt(600, 20))

	text, ok := NewLocator().DecodeFrame(frame)
	if !ok {
		t.Fatal("expected decode to succeed")
	}
	if text != payload {
		t.Errorf("decoded %q, want %q", text, payload)
	}
}

func TestDecodeFrameTopLeftQuadrant(t *testing.T) {
	const payload = "sol üst köşe"
	frame := pageWithQR(800, 600, encodeQR(t, payload, 180), image.Pt(20, 20))

	text, ok := NewLocator().DecodeFrame(frame)
	if !ok {
		t.Fatal("expected decode to succeed")
	}
	if text != payload {
		t.Errorf("decoded %q, want %q", text, payload)
	}
}

func TestDecodeFrameInvertedPolarity(t *testing.T) {
	const payload = "inverted-payload-1234567890"
	frame := invertImage(pageWithQR(300, 300, encodeQR(t, payload, 260), image.Pt(20, 20)))

	text, ok := NewLocator().DecodeFrame(frame)
	if !ok {
		t.Fatal("expected inverted decode to succeed")
	}
	if text != payload {
		t.Errorf("decoded %q, want %q", text, payload)
	}
}

func TestDecodeFrameBlankPage(t *testing.T) {
	blank := pageWithQR(400, 400, image.NewRGBA(image.Rect(0, 0, 0, 0)), image.Pt(0, 0))

	if text, ok := NewLocator().DecodeFrame(blank); ok {
		t.Errorf("expected no decode on blank page, got %q", text)
	}
}
