package publishers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"

	"PostGenius/media"
	"PostGenius/models"
	"PostGenius/utils"
)

const (
	DefaultGraphAPIBase    = "https://graph.facebook.com"
	DefaultFacebookVersion = "v19.0"

	fallbackPublishMessage = "Error al publicar."
	maxResponseBytes       = 1 << 20
)

type FacebookPublisher struct {
	client  *http.Client
	images  *media.Loader
	baseURL string
	version string
}

type FacebookErrorResponse struct {
	Error *struct {
		Message   string `json:"message"`
		Type      string `json:"type"`
		Code      int    `json:"code"`
		FBTraceID string `json:"fbtrace_id"`
	} `json:"error"`
}

// NewFacebookPublisher creates a FacebookPublisher with an injectable http.Client.
// If nil is passed, a default client with a sensible timeout is used. Empty
// baseURL/version fall back to the public Graph API.
func NewFacebookPublisher(client *http.Client, images *media.Loader, baseURL, version string) *FacebookPublisher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if images == nil {
		images = media.NewLoader(client, 0)
	}
	if baseURL == "" {
		baseURL = DefaultGraphAPIBase
	}
	if version == "" {
		version = DefaultFacebookVersion
	}
	return &FacebookPublisher{
		client:  client,
		images:  images,
		baseURL: strings.TrimRight(baseURL, "/"),
		version: version,
	}
}

func (f *FacebookPublisher) Publish(ctx context.Context, req models.PublishRequest) models.PublishResult {
	if strings.TrimSpace(req.PageID) == "" || strings.TrimSpace(req.AccessToken) == "" {
		return failure("Missing Facebook page credentials")
	}

	var (
		body []byte
		err  error
	)
	if strings.TrimSpace(req.ImageSource) != "" {
		img, loadErr := f.images.Load(ctx, req.ImageSource)
		if loadErr != nil {
			return failure(fmt.Sprintf("Could not load image: %v", loadErr))
		}
		body, err = f.publishPhoto(ctx, req, img)
	} else {
		body, err = f.publishFeed(ctx, req)
	}
	if err != nil {
		return failure(fmt.Sprintf("Error publishing to Facebook: %v", err))
	}

	return normalizeResponse(body)
}

// publishFeed posts a text-only message as form fields on /{page}/feed.
func (f *FacebookPublisher) publishFeed(ctx context.Context, req models.PublishRequest) ([]byte, error) {
	form := url.Values{}
	form.Set("message", req.Message)
	form.Set("access_token", req.AccessToken)
	if req.ScheduledAt != nil {
		form.Set("published", "false")
		form.Set("scheduled_publish_time", strconv.FormatInt(req.ScheduledAt.Unix(), 10))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, f.endpoint(req.PageID, "feed"), strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return f.do(httpReq)
}

// publishPhoto uploads the image with its caption on /{page}/photos.
func (f *FacebookPublisher) publishPhoto(ctx context.Context, req models.PublishRequest, img *media.Image) ([]byte, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	fields := [][2]string{
		{"access_token", req.AccessToken},
		{"message", req.Message},
	}
	if req.ScheduledAt != nil {
		fields = append(fields,
			[2]string{"published", "false"},
			[2]string{"scheduled_publish_time", strconv.FormatInt(req.ScheduledAt.Unix(), 10)},
		)
	}
	for _, kv := range fields {
		if err := writer.WriteField(kv[0], kv[1]); err != nil {
			return nil, err
		}
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="source"; filename=%q`, img.Filename))
	header.Set("Content-Type", img.MIME)
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(img.Bytes); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, f.endpoint(req.PageID, "photos"), body)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())
	return f.do(httpReq)
}

func (f *FacebookPublisher) endpoint(pageID, edge string) string {
	return fmt.Sprintf("%s/%s/%s/%s", f.baseURL, f.version, url.PathEscape(pageID), edge)
}

// do sends the request and returns the body regardless of status code; the
// Graph API reports errors in the JSON payload.
func (f *FacebookPublisher) do(req *http.Request) ([]byte, error) {
	req.Header.Set("Accept", "application/json")
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		utils.Debugf("[Facebook] %s %s -> %d", req.Method, req.URL.Path, resp.StatusCode)
	}
	return body, nil
}

// normalizeResponse folds the Graph API's inconsistent success shapes ("id"
// on feed posts, "post_id" on photos) and its error object into one result.
func normalizeResponse(body []byte) models.PublishResult {
	var fbErr FacebookErrorResponse
	if err := json.Unmarshal(body, &fbErr); err == nil && fbErr.Error != nil {
		msg := strings.TrimSpace(fbErr.Error.Message)
		if msg == "" {
			msg = fallbackPublishMessage
		}
		return failure(msg)
	}

	var obj map[string]interface{}
	if err := json.Unmarshal(body, &obj); err != nil {
		return failure(fallbackPublishMessage)
	}
	for _, key := range []string{"post_id", "id"} {
		if id := stringField(obj[key]); id != "" {
			return models.PublishResult{
				Success:    true,
				ExternalID: id,
				Message:    "Published successfully on Facebook",
			}
		}
	}
	return failure(fallbackPublishMessage)
}

func stringField(v interface{}) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return ""
	}
}
