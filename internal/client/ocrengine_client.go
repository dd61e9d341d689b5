package client

import (
	"context"
	"fmt"
	"time"

	"github.com/skandahq/be-bills/internal/httpclient"
	"github.com/skandahq/be-bills/internal/ocr"
)

// OCREngineClient talks to the OCR engine sidecar over HTTP. The sidecar
// mounts the same upload volume as this service, so requests carry file
// paths rather than image bytes.
type OCREngineClient struct {
	client *httpclient.Client
}

// NewOCREngineClient creates a new OCR engine client. Recognition can take
// tens of seconds on cold model load, so the timeout is set well above the
// default HTTP client timeout.
func NewOCREngineClient(baseURL string, timeout time.Duration) *OCREngineClient {
	return &OCREngineClient{
		client: httpclient.NewClient(baseURL, httpclient.WithTimeout(timeout)),
	}
}

// RecognizeRequest represents the recognize request
type RecognizeRequest struct {
	ImagePath string `json:"image_path"`
}

// RecognizeResponse represents the recognize response
type RecognizeResponse struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	Error      string  `json:"error,omitempty"`
}

// Recognize runs OCR over the image at the given path.
func (c *OCREngineClient) Recognize(ctx context.Context, imagePath string) (ocr.RawResult, error) {
	req := RecognizeRequest{ImagePath: imagePath}

	var resp RecognizeResponse
	if err := c.client.Post(ctx, "/api/v1/recognize", req, &resp); err != nil {
		return ocr.RawResult{}, fmt.Errorf("failed to recognize image: %w", err)
	}

	return ocr.RawResult{
		Text:       resp.Text,
		Confidence: resp.Confidence,
		Err:        resp.Error,
	}, nil
}
