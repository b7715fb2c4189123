package utils

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

// UploadOptions are the transform parameters applied by the image host
// before the asset is stored.
type UploadOptions struct {
	Width   int
	Height  int
	Crop    string
	Quality int
}

// Transforms for the two asset classes the application stores.
var (
	PostTransform    = UploadOptions{Width: 470, Height: 600, Crop: "fit", Quality: 70}
	ProfileTransform = UploadOptions{Width: 150, Height: 150, Crop: "fit", Quality: 70}
)

// Uploader pushes an image to the external image host and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, image string, opts UploadOptions) (string, error)
}

// Cloudinary implements Uploader against the Cloudinary upload API with
// signed requests. The image argument may be a data URI or a remote URL;
// both are accepted by the upload endpoint as the file parameter.
type Cloudinary struct {
	cloudName string
	apiKey    string
	apiSecret string
	folder    string
	client    *http.Client
}

// NewCloudinary builds a client for the given account. folder may be empty.
func NewCloudinary(cloudName, apiKey, apiSecret, folder string) *Cloudinary {
	return &Cloudinary{
		cloudName: cloudName,
		apiKey:    apiKey,
		apiSecret: apiSecret,
		folder:    folder,
		client:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Cloudinary) endpoint() string {
	return fmt.Sprintf("https://api.cloudinary.com/v1_1/%s/image/upload", c.cloudName)
}

// transformation renders opts in Cloudinary's comma-joined parameter syntax.
func transformation(opts UploadOptions) string {
	parts := []string{}
	if opts.Crop != "" {
		parts = append(parts, "c_"+opts.Crop)
	}
	if opts.Height > 0 {
		parts = append(parts, "h_"+strconv.Itoa(opts.Height))
	}
	if opts.Quality > 0 {
		parts = append(parts, "q_"+strconv.Itoa(opts.Quality))
	}
	if opts.Width > 0 {
		parts = append(parts, "w_"+strconv.Itoa(opts.Width))
	}
	return strings.Join(parts, ",")
}

// sign produces the request signature: sha1 over the sorted parameter set
// (minus file and api_key) concatenated with the secret.
func (c *Cloudinary) sign(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+params[k])
	}
	sum := sha1.Sum([]byte(strings.Join(pairs, "&") + c.apiSecret))
	return hex.EncodeToString(sum[:])
}

type cloudinaryResponse struct {
	SecureURL string `json:"secure_url"`
	URL       string `json:"url"`
	Error     struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Upload sends the image with the transform applied eagerly and returns the
// hosted URL.
func (c *Cloudinary) Upload(ctx context.Context, image string, opts UploadOptions) (string, error) {
	signed := map[string]string{
		"timestamp": strconv.FormatInt(time.Now().Unix(), 10),
	}
	if t := transformation(opts); t != "" {
		signed["transformation"] = t
	}
	if c.folder != "" {
		signed["folder"] = c.folder
	}

	form := url.Values{}
	for k, v := range signed {
		form.Set(k, v)
	}
	form.Set("file", image)
	form.Set("api_key", c.apiKey)
	form.Set("signature", c.sign(signed))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var body cloudinaryResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode upload response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if body.Error.Message != "" {
			return "", fmt.Errorf("upload rejected: %s", body.Error.Message)
		}
		return "", fmt.Errorf("upload failed with status %d", resp.StatusCode)
	}
	if body.SecureURL != "" {
		return body.SecureURL, nil
	}
	return body.URL, nil
}
