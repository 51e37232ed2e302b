package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/rekognition"
	"github.com/aws/aws-sdk-go/service/rekognition/rekognitioniface"
	"go.uber.org/zap"
)

var ErrInvalidName = errors.New("invalid image name")

// Config is read from the function environment.
type Config struct {
	SampleBucket    string  `env:"SAMPLE_BUCKET,required,notEmpty"`
	SampleKeyPrefix string  `env:"SAMPLE_KEY_PREFIX"`
	MaxLabels       int64   `env:"MAX_LABELS" envDefault:"10"`
	MinConfidence   float64 `env:"MIN_CONFIDENCE" envDefault:"80"`
	LogLevel        string  `env:"LOG_LEVEL" envDefault:"info"`
}

// Request is the body produced by the API Gateway request template.
type Request struct {
	Name string `json:"name"`
}

type Response struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
}

type Label struct {
	Name       string   `json:"name"`
	Confidence float64  `json:"confidence"`
	Parents    []string `json:"parents,omitempty"`
}

type Handler struct {
	cfg    Config
	client rekognitioniface.RekognitionAPI
	logger *zap.Logger
}

func NewHandler(cfg Config, client rekognitioniface.RekognitionAPI, logger *zap.Logger) *Handler {
	return &Handler{cfg: cfg, client: client, logger: logger}
}

// Handle labels the sample image named by req. Bad names are answered with
// a 400 response; Rekognition failures are returned as errors.
func (h *Handler) Handle(ctx context.Context, req Request) (Response, error) {
	logger := h.logger.With(zap.String("name", req.Name))

	key, err := h.objectKey(req.Name)
	if err != nil {
		logger.Warn("rejected request", zap.Error(err))
		return errorResponse(http.StatusBadRequest, err), nil
	}

	out, err := h.client.DetectLabelsWithContext(ctx, &rekognition.DetectLabelsInput{
		Image: &rekognition.Image{
			S3Object: &rekognition.S3Object{
				Bucket: aws.String(h.cfg.SampleBucket),
				Name:   aws.String(key),
			},
		},
		MaxLabels:     aws.Int64(h.cfg.MaxLabels),
		MinConfidence: aws.Float64(h.cfg.MinConfidence),
	})
	if err != nil {
		logger.Error("detect labels failed", zap.String("key", key), zap.Error(err))
		return Response{}, fmt.Errorf("detect labels for s3://%s/%s: %w", h.cfg.SampleBucket, key, err)
	}

	labels := make([]Label, 0, len(out.Labels))
	for _, l := range out.Labels {
		label := Label{Name: aws.StringValue(l.Name), Confidence: aws.Float64Value(l.Confidence)}
		for _, p := range l.Parents {
			label.Parents = append(label.Parents, aws.StringValue(p.Name))
		}
		labels = append(labels, label)
	}
	body, err := json.Marshal(labels)
	if err != nil {
		return Response{}, fmt.Errorf("encode labels: %w", err)
	}

	logger.Info("detected labels", zap.String("key", key), zap.Int("labels", len(labels)))
	return Response{StatusCode: http.StatusOK, Body: string(body)}, nil
}

func (h *Handler) objectKey(name string) (string, error) {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return "", fmt.Errorf("%w: empty", ErrInvalidName)
	case strings.ContainsAny(name, `/\`), name == ".", name == "..":
		return "", fmt.Errorf("%w: %q is a path", ErrInvalidName, name)
	}
	return h.cfg.SampleKeyPrefix + name, nil
}

func errorResponse(status int, err error) Response {
	body, _ := json.Marshal(map[string]string{"message": err.Error()})
	return Response{StatusCode: status, Body: string(body)}
}
