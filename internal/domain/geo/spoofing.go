package geo

import "math"

// Spoofing heuristics. Confidence is additive and deliberately not capped at 1.0.
const (
	TeleportSpeedFactor       = 2.0
	TeleportConfidence        = 0.8
	StaticMaxDistanceMeters   = 1.0
	StaticMinElapsedMillis    = 60000
	StaticConfidence          = 0.6
	AltitudeJumpMeters        = 1000.0
	AltitudeJumpConfidence    = 0.4
	DirectionChangeDegrees    = 90.0
	MovementPatternConfidence = 0.5
	SpoofingThreshold         = 0.5
)

// Anomaly descriptions reported by the detector
const (
	AnomalyTeleportation   = "Teleportation detected: impossible speed"
	AnomalyStaticPosition  = "Static coordinates detected"
	AnomalyAltitudeJump    = "Sudden altitude change detected"
	AnomalyMovementPattern = "Suspicious movement pattern detected"
)

// SpoofingResult is the outcome of comparing a location with its predecessor
type SpoofingResult struct {
	IsSpoofingDetected bool     `json:"is_spoofing_detected"`
	Confidence         float64  `json:"confidence"`
	DetectedAnomalies  []string `json:"detected_anomalies"`
}

// MovementPatternAnalyzer inspects the shape of movement between two fixes.
// Real heading / trajectory analysis plugs in here.
type MovementPatternAnalyzer interface {
	// DirectionChange returns the heading change in degrees
	DirectionChange(previous, current Point) float64
	// IsStraightLine reports emulator-like straight-line movement
	IsStraightLine(previous, current Point) bool
}

// NoopPatternAnalyzer never reports a suspicious pattern.
// TODO: replace with heading analysis over the device's stored track once telemetry history is queryable.
type NoopPatternAnalyzer struct{}

func (NoopPatternAnalyzer) DirectionChange(Point, Point) float64 { return 0 }
func (NoopPatternAnalyzer) IsStraightLine(Point, Point) bool      { return false }

// SpoofingDetector is the single GPS spoofing policy used by every validator
type SpoofingDetector struct {
	maxSpeedKmh float64
	patterns    MovementPatternAnalyzer
}

// NewSpoofingDetector creates a detector. Speeds above twice maxSpeedKmh count as teleportation.
// A nil analyzer disables the movement pattern heuristic.
func NewSpoofingDetector(maxSpeedKmh float64, patterns MovementPatternAnalyzer) *SpoofingDetector {
	return &SpoofingDetector{
		maxSpeedKmh: maxSpeedKmh,
		patterns:    patterns,
	}
}

// Detect scores current against previous. Without a previous fix there is no evidence.
func (d *SpoofingDetector) Detect(current Point, previous *Point) SpoofingResult {
	if previous == nil {
		return SpoofingResult{DetectedAnomalies: []string{}}
	}

	anomalies := []string{}
	confidence := 0.0

	distance := Distance(*previous, current)
	elapsed := ElapsedMillis(*previous, current)

	if elapsed > 0 && SpeedKmh(*previous, current) > d.maxSpeedKmh*TeleportSpeedFactor {
		anomalies = append(anomalies, AnomalyTeleportation)
		confidence += TeleportConfidence
	}

	// GPS emulators tend to replay a frozen fix
	if distance < StaticMaxDistanceMeters && elapsed > StaticMinElapsedMillis {
		anomalies = append(anomalies, AnomalyStaticPosition)
		confidence += StaticConfidence
	}

	if current.Altitude != nil && previous.Altitude != nil {
		if math.Abs(*current.Altitude-*previous.Altitude) > AltitudeJumpMeters {
			anomalies = append(anomalies, AnomalyAltitudeJump)
			confidence += AltitudeJumpConfidence
		}
	}

	if d.patterns != nil {
		if d.patterns.DirectionChange(*previous, current) > DirectionChangeDegrees ||
			d.patterns.IsStraightLine(*previous, current) {
			anomalies = append(anomalies, AnomalyMovementPattern)
			confidence += MovementPatternConfidence
		}
	}

	return SpoofingResult{
		IsSpoofingDetected: confidence > SpoofingThreshold,
		Confidence:         confidence,
		DetectedAnomalies:  anomalies,
	}
}
