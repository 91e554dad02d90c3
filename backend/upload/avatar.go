package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"github.com/bytedance/sonic"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

const (
	AvatarSize = 256
	// MaxSourceSide bounds the width and height of an uploaded image so the
	// decoded bitmap stays small.
	MaxSourceSide = 8000
)

var ErrInvalidImage = errors.New("invalid image")

// ResizeAvatar decodes a JPEG, PNG or GIF image, crops it to a centered
// square and encodes it as a AvatarSize x AvatarSize JPEG.
func ResizeAvatar(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	if cfg.Width > MaxSourceSide || cfg.Height > MaxSourceSide {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d px", ErrInvalidImage, cfg.Width, cfg.Height, MaxSourceSide)
	}

	src, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	return encodeSquare(src)
}

func encodeSquare(src image.Image) ([]byte, error) {
	dst := imaging.Fill(src, AvatarSize, AvatarSize, imaging.Center, imaging.Lanczos)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, dst, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type hostResponse struct {
	Success bool `json:"success"`
	Data    struct {
		URL string `json:"url"`
	} `json:"data"`
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// ImageHost uploads avatars to an imgbb compatible API.
type ImageHost struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

func NewImageHost(endpoint, apiKey string) *ImageHost {
	return &ImageHost{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

// UploadAvatar resizes the image and returns the hosted URL.
func (h *ImageHost) UploadAvatar(ctx context.Context, userID uint, r io.Reader) (string, error) {
	data, err := ResizeAvatar(r)
	if err != nil {
		return "", err
	}

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	name := fmt.Sprintf("avatar-%d-%s", userID, uuid.NewString()[:8])
	if err := w.WriteField("name", name); err != nil {
		return "", err
	}
	part, err := w.CreateFormFile("image", name+".jpg")
	if err != nil {
		return "", err
	}
	if _, err := part.Write(data); err != nil {
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}

	u, err := url.Parse(h.endpoint)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("key", h.apiKey)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := h.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}
	var out hostResponse
	if err := sonic.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("image host: status=%d: %w", resp.StatusCode, err)
	}
	if resp.StatusCode >= 400 || !out.Success || out.Data.URL == "" {
		return "", fmt.Errorf("image host: status=%d message=%q", resp.StatusCode, out.Error.Message)
	}
	return out.Data.URL, nil
}
