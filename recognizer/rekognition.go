package recognizer

import (
	"context"
	"image"
	"log"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// DetectTextAPI is the subset of the Rekognition client used for OCR.
type DetectTextAPI interface {
	DetectText(ctx context.Context, params *rekognition.DetectTextInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectTextOutput, error)
}

// RekognitionConfig configures the AWS Rekognition engine.
type RekognitionConfig struct {
	Region string `yaml:"region" json:"region"`
	// MinConfidence drops LINE detections scored below it, in percent.
	MinConfidence float32 `yaml:"min_confidence" json:"min_confidence"`
}

// RekognitionEngine reads text with the AWS Rekognition DetectText API.
type RekognitionEngine struct {
	client        DetectTextAPI
	minConfidence float32
}

// NewRekognitionEngine creates an engine over an existing client.
func NewRekognitionEngine(client DetectTextAPI, minConfidence float32) *RekognitionEngine {
	return &RekognitionEngine{client: client, minConfidence: minConfidence}
}

// NewRekognitionEngineFromConfig loads the default AWS configuration and builds a client.
func NewRekognitionEngineFromConfig(ctx context.Context, cfg RekognitionConfig) (*RekognitionEngine, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load AWS config")
	}
	return NewRekognitionEngine(rekognition.NewFromConfig(awsCfg), cfg.MinConfidence), nil
}

// ReadText sends the crop as PNG and returns LINE detections, most confident first.
func (e *RekognitionEngine) ReadText(ctx context.Context, img gocv.Mat) ([]Result, error) {
	buf, err := gocv.IMEncode(gocv.PNGFileExt, img)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode crop")
	}
	defer buf.Close()

	out, err := e.client.DetectText(ctx, &rekognition.DetectTextInput{
		Image: &types.Image{Bytes: buf.GetBytes()},
	})
	if err != nil {
		return nil, errors.Wrap(err, "rekognition DetectText")
	}

	log.Printf("rekognition returned %d text detections", len(out.TextDetections))

	var results []Result
	for _, d := range out.TextDetections {
		if d.Type != types.TextTypesLine || d.DetectedText == nil {
			continue
		}
		confidence := aws.ToFloat32(d.Confidence)
		if confidence < e.minConfidence {
			continue
		}
		results = append(results, Result{
			Box:        boxToRect(d.Geometry, img.Cols(), img.Rows()),
			Text:       aws.ToString(d.DetectedText),
			Confidence: confidence / 100,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Confidence > results[j].Confidence
	})
	return results, nil
}

// Close is a no-op, the client holds no native resources.
func (e *RekognitionEngine) Close() error { return nil }

// boxToRect converts a ratio-based bounding box to pixel coordinates.
func boxToRect(g *types.Geometry, width, height int) image.Rectangle {
	if g == nil || g.BoundingBox == nil {
		return image.Rect(0, 0, width, height)
	}
	b := g.BoundingBox
	x := int(aws.ToFloat32(b.Left) * float32(width))
	y := int(aws.ToFloat32(b.Top) * float32(height))
	w := int(aws.ToFloat32(b.Width) * float32(width))
	h := int(aws.ToFloat32(b.Height) * float32(height))
	return image.Rect(x, y, x+w, y+h).Intersect(image.Rect(0, 0, width, height))
}
