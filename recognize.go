package main

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
	"github.com/gin-gonic/gin"

	"lg/calorie-tracker-api/internal/nutrition"
)

// Rekognition rejects inline image bytes above 5 MB.
const maxImageBytes = 5 << 20

const (
	maxLabels          = 10
	minLabelConfidence = 75
)

// labelDetector is the slice of the Rekognition client used here, so tests
// can substitute a fake.
type labelDetector interface {
	DetectLabels(ctx context.Context, params *rekognition.DetectLabelsInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectLabelsOutput, error)
}

// newRekognitionClient loads AWS credentials from the default chain.
func newRekognitionClient(ctx context.Context, region string) (*rekognition.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return rekognition.NewFromConfig(cfg), nil
}

type recognizeRequest struct {
	Image string `json:"image"` // data URI, e.g. data:image/jpeg;base64,...
}

type recognizedLabel struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
}

type recognizeResponse struct {
	Labels []recognizedLabel `json:"labels"`
	Foods  []foodPayload     `json:"foods"`
}

// decodeImageDataURI returns the raw bytes of a base64 image data URI.
func decodeImageDataURI(uri string) ([]byte, error) {
	header, payload, ok := strings.Cut(uri, ",")
	if !ok || !strings.HasPrefix(header, "data:image/") || !strings.HasSuffix(header, ";base64") {
		return nil, errors.New("image must be a base64 data:image/... URI")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, errors.New("image is not valid base64")
	}
	if len(data) == 0 {
		return nil, errors.New("image is empty")
	}
	if len(data) > maxImageBytes {
		return nil, errors.New("image must be 5 MB or smaller")
	}
	return data, nil
}

// matchLabels maps detected labels onto built-in foods, highest-confidence
// label first, each food at most once.
func matchLabels(labels []recognizedLabel) []foodPayload {
	foods := []foodPayload{}
	seen := make(map[string]bool)
	for _, l := range labels {
		for _, f := range nutrition.SearchCommonFoods(l.Name) {
			if seen[f.Name] {
				continue
			}
			seen[f.Name] = true
			foods = append(foods, foodPayloadFromItem(f, "recognized"))
		}
	}
	return foods
}

// recognizeFood detects what is in a photo and proposes matching foods for
// the add-food dialog. Nothing is logged; the client still picks a quantity.
// POST /api/foods/recognize. 503 when no AWS region is configured.
func (h *Handler) recognizeFood(c *gin.Context) {
	if h.labels == nil {
		apiError(c, http.StatusServiceUnavailable, "image recognition is not configured")
		return
	}

	var body recognizeRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	img, err := decodeImageDataURI(body.Image)
	if err != nil {
		apiError(c, http.StatusBadRequest, err.Error())
		return
	}

	out, err := h.labels.DetectLabels(c.Request.Context(), &rekognition.DetectLabelsInput{
		Image:         &types.Image{Bytes: img},
		MaxLabels:     aws.Int32(maxLabels),
		MinConfidence: aws.Float32(minLabelConfidence),
	})
	if err != nil {
		log.Printf("[recognizeFood] DetectLabels error: %v", err)
		apiError(c, http.StatusBadGateway, "image recognition failed")
		return
	}

	labels := make([]recognizedLabel, 0, len(out.Labels))
	for _, l := range out.Labels {
		labels = append(labels, recognizedLabel{
			Name:       aws.ToString(l.Name),
			Confidence: nutrition.RoundTenth(float64(aws.ToFloat32(l.Confidence))),
		})
	}

	c.JSON(http.StatusOK, recognizeResponse{Labels: labels, Foods: matchLabels(labels)})
}
