package media

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"PostGenius/utils"

	"github.com/disintegration/imaging"
	"github.com/dustin/go-humanize"
	"github.com/h2non/filetype"
)

const maxImageBytes = 20 << 20

var ErrNotAnImage = errors.New("image source is not a supported image")

type Image struct {
	Bytes    []byte
	MIME     string
	Filename string
}

// Loader turns an image source (data URI or http(s) URL) into bytes ready for
// a multipart upload.
type Loader struct {
	client       *http.Client
	maxDimension int
}

func NewLoader(client *http.Client, maxDimension int) *Loader {
	if client == nil {
		client = http.DefaultClient
	}
	return &Loader{client: client, maxDimension: maxDimension}
}

func (l *Loader) Load(ctx context.Context, source string) (*Image, error) {
	source = strings.TrimSpace(source)
	var (
		raw []byte
		err error
	)
	switch {
	case strings.HasPrefix(source, "data:"):
		raw, err = decodeDataURI(source)
	case strings.HasPrefix(source, "http://"), strings.HasPrefix(source, "https://"):
		raw, err = l.fetch(ctx, source)
	default:
		return nil, fmt.Errorf("unsupported image source scheme")
	}
	if err != nil {
		return nil, err
	}

	kind, err := filetype.Match(raw)
	if err != nil || !filetype.IsImage(raw) {
		return nil, ErrNotAnImage
	}

	img := &Image{
		Bytes:    raw,
		MIME:     kind.MIME.Value,
		Filename: "image." + kind.Extension,
	}
	l.downscale(img)

	utils.Debugf("[Media] loaded %s image (%s)", img.MIME, humanize.Bytes(uint64(len(img.Bytes))))
	return img, nil
}

// downscale shrinks images whose longest side exceeds maxDimension. Formats
// imaging cannot decode (e.g. webp) are passed through untouched.
func (l *Loader) downscale(img *Image) {
	if l.maxDimension <= 0 {
		return
	}
	format, err := imaging.FormatFromFilename(img.Filename)
	if err != nil {
		return
	}
	src, err := imaging.Decode(bytes.NewReader(img.Bytes), imaging.AutoOrientation(true))
	if err != nil {
		utils.Debugf("[Media] skip resize, decode failed: %v", err)
		return
	}
	b := src.Bounds()
	if b.Dx() <= l.maxDimension && b.Dy() <= l.maxDimension {
		return
	}

	resized := imaging.Fit(src, l.maxDimension, l.maxDimension, imaging.Lanczos)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, format); err != nil {
		utils.Warnf("[Media] resize encode failed, sending original: %v", err)
		return
	}
	utils.Infof("[Media] resized image %dx%d -> %dx%d (%s -> %s)",
		b.Dx(), b.Dy(), resized.Bounds().Dx(), resized.Bounds().Dy(),
		humanize.Bytes(uint64(len(img.Bytes))), humanize.Bytes(uint64(buf.Len())))
	img.Bytes = buf.Bytes()
}

func (l *Loader) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if _, err := url.ParseRequestURI(rawURL); err != nil {
		return nil, fmt.Errorf("invalid image url: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch image: unexpected status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("fetch image: %w", err)
	}
	if len(body) > maxImageBytes {
		return nil, fmt.Errorf("image exceeds %s", humanize.Bytes(maxImageBytes))
	}
	return body, nil
}

// decodeDataURI accepts "data:[<mime>][;base64],<payload>".
func decodeDataURI(uri string) ([]byte, error) {
	comma := strings.IndexByte(uri, ',')
	if comma < 0 {
		return nil, fmt.Errorf("malformed data uri")
	}
	meta, payload := uri[len("data:"):comma], uri[comma+1:]

	if !strings.HasSuffix(meta, ";base64") {
		decoded, err := url.PathUnescape(payload)
		if err != nil {
			return nil, fmt.Errorf("malformed data uri: %w", err)
		}
		return []byte(decoded), nil
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		// Some encoders drop padding.
		data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
		if err != nil {
			return nil, fmt.Errorf("malformed data uri: %w", err)
		}
	}
	return data, nil
}
