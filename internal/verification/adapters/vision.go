// Package adapters holds concrete clients for the verification ports.
package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"veriface/internal/verification/ports"
)

// HTTPVisionClient calls the external vision subsystem over HTTP. The
// subsystem owns embedding extraction and pixel-level variation detection;
// this client only moves bytes and decodes signals.
type HTTPVisionClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPVisionClient constructs a client for the vision service at baseURL.
// Timeouts are enforced by the caller's context, not the http.Client, so the
// service layer stays in control of the deadline.
func NewHTTPVisionClient(baseURL string) *HTTPVisionClient {
	return &HTTPVisionClient{
		baseURL:    baseURL,
		httpClient: &http.Client{},
	}
}

// analyzeResponse is the vision service's wire format.
type analyzeResponse struct {
	SimilarityScore       float64            `json:"similarity_score"`
	ConfidenceProbability *float64           `json:"confidence_probability"`
	DetectedVariations    []string           `json:"detected_variations"`
	Quality               map[string]float64 `json:"quality"`
	Error                 string             `json:"error"`
}

func (c *HTTPVisionClient) Analyze(ctx context.Context, liveImage, referenceImage []byte, subjectRef string) (*ports.Signals, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	if err := writeImagePart(mw, "live_image", liveImage); err != nil {
		return nil, err
	}
	if len(referenceImage) > 0 {
		if err := writeImagePart(mw, "reference_image", referenceImage); err != nil {
			return nil, err
		}
	}
	if subjectRef != "" {
		if err := mw.WriteField("subject_ref", subjectRef); err != nil {
			return nil, fmt.Errorf("write subject_ref field: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/analyze", &body)
	if err != nil {
		return nil, fmt.Errorf("build analyze request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ports.ErrProcessing, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// fall through to decode
	case http.StatusUnprocessableEntity:
		// The vision service reports "no usable face" as 422.
		return nil, ports.ErrNoFace
	default:
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("%w: vision service returned %d: %s", ports.ErrProcessing, resp.StatusCode, payload)
	}

	var decoded analyzeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("%w: decode analyze response: %w", ports.ErrProcessing, err)
	}
	if decoded.Error == "no_face_detected" {
		return nil, ports.ErrNoFace
	}
	if decoded.Error != "" {
		return nil, fmt.Errorf("%w: %s", ports.ErrProcessing, decoded.Error)
	}

	return &ports.Signals{
		SimilarityScore:       decoded.SimilarityScore,
		ConfidenceProbability: decoded.ConfidenceProbability,
		DetectedVariations:    decoded.DetectedVariations,
		Quality:               decoded.Quality,
	}, nil
}

// Health verifies the vision service is reachable.
func (c *HTTPVisionClient) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/healthz", nil)
	if err != nil {
		return fmt.Errorf("build health check request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("vision health check: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("vision health check returned %d", resp.StatusCode)
	}
	return nil
}

func writeImagePart(mw *multipart.Writer, field string, data []byte) error {
	part, err := mw.CreateFormFile(field, field+".jpg")
	if err != nil {
		return fmt.Errorf("create %s part: %w", field, err)
	}
	if _, err := part.Write(data); err != nil {
		return fmt.Errorf("write %s part: %w", field, err)
	}
	return nil
}
