package service

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
)

// Candidate plates: 2-4 leading alphanumerics, optional separator,
// 2-5 trailing alphanumerics. Broad on purpose; the confidence pick
// below does the disambiguation.
var plateRegex = regexp.MustCompile(`^[A-Z0-9]{2,4}[- ]?[A-Z0-9]{2,5}$`)

type LPRService struct {
	rekognitionClient *rekognition.Client
}

func NewLPRService(rekClient *rekognition.Client) *LPRService {
	return &LPRService{rekognitionClient: rekClient}
}

// ProcessImageForLPR runs text detection over a camera frame and picks
// the plate-shaped detection with the highest confidence.
func (s *LPRService) ProcessImageForLPR(ctx context.Context, imageBytes []byte) (string, float32, error) {
	if s.rekognitionClient == nil {
		return "", 0, fmt.Errorf("rekognition client not configured")
	}

	input := &rekognition.DetectTextInput{
		Image: &types.Image{
			Bytes: imageBytes,
		},
	}

	result, err := s.rekognitionClient.DetectText(ctx, input)
	if err != nil {
		return "", 0, fmt.Errorf("rekognition DetectText: %w", err)
	}
	log.Printf("LPRService: Rekognition returned %d text detections", len(result.TextDetections))

	var bestPlate string
	var bestConfidence float32
	for _, detection := range result.TextDetections {
		if detection.Type != types.TextTypesLine && detection.Type != types.TextTypesWord {
			continue
		}
		if detection.DetectedText == nil || detection.Confidence == nil {
			continue
		}
		normalized := strings.ToUpper(strings.ReplaceAll(*detection.DetectedText, ".", ""))
		if !plateRegex.MatchString(strings.ReplaceAll(normalized, " ", "")) {
			continue
		}
		if *detection.Confidence > bestConfidence {
			bestConfidence = *detection.Confidence
			bestPlate = strings.ReplaceAll(normalized, " ", "")
		}
	}

	if bestPlate == "" {
		return "", 0, fmt.Errorf("no plate-shaped text recognized in image")
	}
	log.Printf("LPRService: selected plate '%s' with confidence %.2f", bestPlate, bestConfidence)
	return bestPlate, bestConfidence, nil
}
