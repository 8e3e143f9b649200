// Package imagehost downscales member photos and pushes them to the unsigned
// upload endpoint, returning the public URL stored on the profile.
package imagehost

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	_ "image/gif"
	_ "image/png"

	"go.uber.org/zap"
	"golang.org/x/image/draw"

	xerrors "github.com/jabalpuragrawalsabha2019-pixel/jbp-agrawal-sabha/pkg/errors"
)

const (
	maxDimension = 1024
	jpegQuality  = 80
)

type Service struct {
	uploadURL    string
	uploadPreset string
	http         *http.Client
	logger       *zap.Logger
}

func NewService(uploadURL, uploadPreset string, logger *zap.Logger) *Service {
	return &Service{
		uploadURL:    uploadURL,
		uploadPreset: uploadPreset,
		http:         &http.Client{Timeout: 30 * time.Second},
		logger:       logger,
	}
}

// Enabled reports whether an upload endpoint is configured. Photo uploads are
// optional; profiles work without one.
func (s *Service) Enabled() bool { return s.uploadURL != "" }

// Upload compresses the image and posts it, returning the hosted URL.
func (s *Service) Upload(ctx context.Context, r io.Reader) (string, error) {
	src, _, err := image.Decode(r)
	if err != nil {
		return "", xerrors.NewValidation("file", fmt.Errorf("unreadable image: %w", err))
	}

	compressed, err := compress(src)
	if err != nil {
		return "", err
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "photo.jpg")
	if err != nil {
		return "", err
	}
	if _, err := part.Write(compressed); err != nil {
		return "", err
	}
	if err := mw.WriteField("upload_preset", s.uploadPreset); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.uploadURL, &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := s.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", xerrors.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.logger.Warn("image upload rejected", zap.Int("status", resp.StatusCode))
		return "", fmt.Errorf("%w: upload returned %d", xerrors.ErrTransport, resp.StatusCode)
	}

	var out struct {
		SecureURL string `json:"secure_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: %v", xerrors.ErrTransport, err)
	}
	if out.SecureURL == "" {
		return "", fmt.Errorf("%w: upload response missing secure_url", xerrors.ErrTransport)
	}
	return out.SecureURL, nil
}

// compress scales the image to fit maxDimension, preserving aspect ratio, and
// re-encodes as JPEG.
func compress(src image.Image) ([]byte, error) {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w > maxDimension || h > maxDimension {
		scale := float64(maxDimension) / float64(w)
		if h > w {
			scale = float64(maxDimension) / float64(h)
		}
		w = int(float64(w) * scale)
		h = int(float64(h) * scale)
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
