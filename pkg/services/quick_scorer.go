package services

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"math/rand"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/duahurufo/exeloka-engine/pkg/models"
)

// projectTypeWeights maps project types to baseline sensitivity. Extractive
// and construction-heavy types score high; religious and educational projects
// carry low baseline friction.
var projectTypeWeights = map[string]float64{
	"infrastructure": 0.9,
	"manufacturing":  0.8,
	"mining":         0.95,
	"agriculture":    0.6,
	"education":      0.4,
	"healthcare":     0.5,
	"tourism":        0.7,
	"residential":    0.8,
	"commercial":     0.7,
	"religious":      0.3,
	"environmental":  0.6,
}

const defaultProjectTypeWeight = 0.5

// culturalKeywords maps description keywords to sensitivity weights.
// Sensitivity is the mean weight of matched keywords.
var culturalKeywords = map[string]float64{
	// High sensitivity
	"sacred": 0.95, "religious": 0.9, "mosque": 0.9, "kyai": 0.85, "pesantren": 0.8,
	"burial": 0.9, "cemetery": 0.9, "traditional": 0.7, "ceremony": 0.8, "ritual": 0.9,

	// Medium sensitivity
	"community": 0.6, "local": 0.5, "village": 0.6, "farmer": 0.7, "fisherman": 0.7,
	"market": 0.5, "school": 0.4, "hospital": 0.4, "road": 0.3, "bridge": 0.3,

	// Location-specific
	"sampang": 0.8, "madura": 0.8, "java": 0.6, "east java": 0.7, "jawa timur": 0.7,

	// Risk indicators
	"protest": 0.95, "conflict": 0.9, "dispute": 0.8, "opposition": 0.8, "resistance": 0.7,
}

const defaultCulturalSensitivity = 0.3

// stakeholderWeights maps stakeholder roles to risk weight; the overall
// stakeholder risk is the max over all listed roles.
var stakeholderWeights = map[string]float64{
	"government": 0.3, "local government": 0.4, "community leader": 0.8, "religious leader": 0.9,
	"kyai": 0.95, "village head": 0.7, "farmer": 0.6, "fisherman": 0.6, "resident": 0.5,
	"ngo": 0.6, "activist": 0.8, "business": 0.3, "developer": 0.2,
}

const defaultStakeholderWeight = 0.4

// QuickScorer produces a deterministic rule-plus-network project assessment
// without external calls.
type QuickScorer interface {
	Score(input *models.QuickAnalysisInput) (*models.QuickAnalysisResult, error)
	// LearnFromFeedback records an observed outcome. The current design only
	// persists the weight snapshot; it does not retrain, so score quality
	// does not improve until a real training step exists.
	LearnFromFeedback(input *models.QuickAnalysisInput, outcome *models.QuickAnalysisOutcome) error
}

// quickScorer implements QuickScorer with a fixed-topology network loaded
// from a weight snapshot.
type quickScorer struct {
	snapshot     *WeightSnapshot
	snapshotPath string
	coldStart    bool
	logger       *zap.Logger
}

// NewQuickScorer loads the weight snapshot at snapshotPath, or falls back to
// randomized cold-start weights when the artifact is absent. Cold-start mode
// is logged because it weakens the determinism guarantee across processes.
func NewQuickScorer(snapshotPath string, logger *zap.Logger) QuickScorer {
	log := logger.Named("quick-scorer")

	snapshot, err := LoadWeightSnapshot(snapshotPath)
	if err != nil {
		log.Warn("No weight snapshot available, running in cold-start mode with randomized weights",
			zap.String("path", snapshotPath),
			zap.Error(err))
		return &quickScorer{
			snapshot:     NewRandomSnapshot(rand.New(rand.NewSource(time.Now().UnixNano()))),
			snapshotPath: snapshotPath,
			coldStart:    true,
			logger:       log,
		}
	}

	log.Info("Loaded weight snapshot",
		zap.String("path", snapshotPath),
		zap.String("version", snapshot.Version))
	return &quickScorer{
		snapshot:     snapshot,
		snapshotPath: snapshotPath,
		logger:       log,
	}
}

// Score extracts features, runs the network and generates rule-based advice.
// For a fixed weight snapshot the full output is deterministic in the input.
func (s *quickScorer) Score(input *models.QuickAnalysisInput) (*models.QuickAnalysisResult, error) {
	if input == nil {
		return nil, fmt.Errorf("quick analysis input is required")
	}

	start := time.Now()

	features := extractFeatures(input)
	output := s.snapshot.run(features)

	successProbability := output[0]
	riskScore := output[1]
	culturalSensitivity := output[2]
	complexity := output[3]

	riskLevel := riskLevelFor(riskScore)

	result := &models.QuickAnalysisResult{
		// Quick analysis confidence is capped below enhanced analysis.
		ConfidenceScore:       minFloat(0.85, 0.6+successProbability*0.25),
		RiskLevel:             riskLevel,
		RiskScore:             riskScore,
		CulturalCompatibility: culturalSensitivity,
		Complexity:            complexity,
		RecommendedApproaches: generateApproaches(input, successProbability, riskScore, culturalSensitivity),
		KeyConsiderations:     generateConsiderations(input, riskScore, culturalSensitivity, complexity),
		EstimatedSuccessRate:  successProbability,
		ProcessingTime:        time.Since(start),
		ColdStart:             s.coldStart,
	}

	s.logger.Info("Quick analysis completed",
		zap.String("risk_level", riskLevel),
		zap.Int("success_pct", int(successProbability*100)),
		zap.String("project_type", input.ProjectType),
		zap.Duration("elapsed", result.ProcessingTime))

	return result, nil
}

// LearnFromFeedback computes the corrected target vector for an observed
// outcome and persists the current snapshot. It is the integration point for
// a future training step.
func (s *quickScorer) LearnFromFeedback(input *models.QuickAnalysisInput, outcome *models.QuickAnalysisOutcome) error {
	if input == nil || outcome == nil {
		return fmt.Errorf("input and outcome are required")
	}

	actualRiskScore := 0.3
	switch outcome.ActualRiskLevel {
	case models.RiskLevelHigh:
		actualRiskScore = 0.9
	case models.RiskLevelMedium:
		actualRiskScore = 0.6
	}

	culturalScore := 0.3
	if outcome.CulturalIssues {
		culturalScore = 0.8
	}

	// Corrected target vector: success, risk, cultural, complexity, timeline,
	// cost. Kept for the future training step; unused until then.
	_ = []float64{outcome.SuccessRate, actualRiskScore, culturalScore, 0.5, 0.5, 0.5}
	_ = extractFeatures(input)

	if err := s.snapshot.Save(s.snapshotPath); err != nil {
		return fmt.Errorf("persist weight snapshot: %w", err)
	}

	s.logger.Info("Outcome feedback recorded",
		zap.Float64("actual_success_rate", outcome.SuccessRate),
		zap.String("actual_risk_level", outcome.ActualRiskLevel))
	return nil
}

// extractFeatures builds the padded feature vector. Unused slots are filled
// with low-magnitude noise from a generator seeded by the input itself, so
// identical inputs always produce identical vectors.
func extractFeatures(input *models.QuickAnalysisInput) []float64 {
	features := make([]float64, FeatureVectorSize)

	weight, ok := projectTypeWeights[strings.ToLower(input.ProjectType)]
	if !ok {
		weight = defaultProjectTypeWeight
	}
	features[0] = weight

	description := strings.ToLower(input.Description)
	var sensitivitySum float64
	var keywordCount int
	for keyword, w := range culturalKeywords {
		if strings.Contains(description, keyword) {
			sensitivitySum += w
			keywordCount++
		}
	}
	if keywordCount > 0 {
		features[1] = sensitivitySum / float64(keywordCount)
	} else {
		features[1] = defaultCulturalSensitivity
	}

	var stakeholderRisk float64
	for _, stakeholder := range input.Stakeholders {
		w, ok := stakeholderWeights[strings.ToLower(stakeholder)]
		if !ok {
			w = defaultStakeholderWeight
		}
		stakeholderRisk = maxFloat(stakeholderRisk, w)
	}
	features[2] = stakeholderRisk

	locationStr := strings.ToLower(serializeLocation(input.LocationDetails))
	var locationSensitivity float64
	if strings.Contains(locationStr, "sampang") {
		locationSensitivity += 0.8
	}
	if strings.Contains(locationStr, "madura") {
		locationSensitivity += 0.7
	}
	if strings.Contains(locationStr, "religious") || strings.Contains(locationStr, "sacred") {
		locationSensitivity += 0.9
	}
	features[3] = minFloat(locationSensitivity, 1.0)

	features[4] = minFloat(float64(len(input.RiskFactors))*0.2, 1.0)

	timelineUrgency := 0.5
	if input.TimelineStart != nil && input.TimelineEnd != nil {
		days := input.TimelineEnd.Sub(*input.TimelineStart).Hours() / 24
		timelineUrgency = clamp(30/maxFloat(days, 30), 0.1, 1.0)
	}
	features[5] = timelineUrgency

	budgetFactor := 0.5
	budget := strings.ToLower(input.BudgetRange)
	switch {
	case budget == "":
	case strings.Contains(budget, "high") || strings.Contains(budget, "large"):
		budgetFactor = 0.8
	case strings.Contains(budget, "low") || strings.Contains(budget, "small"):
		budgetFactor = 0.3
	case strings.Contains(budget, "medium"):
		budgetFactor = 0.5
	}
	features[6] = budgetFactor

	noise := rand.New(rand.NewSource(featureSeed(input)))
	for i := 7; i < FeatureVectorSize; i++ {
		features[i] = noise.Float64() * 0.1
	}

	return features
}

// featureSeed derives a stable seed from the input so padding noise is a
// pure function of the input.
func featureSeed(input *models.QuickAnalysisInput) int64 {
	h := fnv.New64a()
	encoded, err := json.Marshal(input)
	if err != nil {
		return 0
	}
	h.Write(encoded)
	return int64(h.Sum64())
}

func serializeLocation(details models.JSONBMap) string {
	if len(details) == 0 {
		return "{}"
	}
	encoded, err := json.Marshal(details)
	if err != nil {
		return "{}"
	}
	return string(encoded)
}

// generateApproaches produces rule-based recommendations keyed off score
// thresholds and project type, capped at 5.
func generateApproaches(input *models.QuickAnalysisInput, successProbability, riskScore, culturalSensitivity float64) []string {
	var approaches []string

	if riskScore > 0.7 {
		approaches = append(approaches,
			"Engage religious leaders (kyai) early in the process",
			"Conduct extensive community consultations before project initiation",
			"Consider cultural impact mitigation measures")
	}

	if culturalSensitivity > 0.8 {
		approaches = append(approaches,
			"Involve local cultural advisors in project planning",
			"Schedule activities around religious observances and local ceremonies",
			"Implement traditional conflict resolution mechanisms if needed")
	}

	projectType := strings.ToLower(input.ProjectType)
	if strings.Contains(projectType, "infrastructure") {
		approaches = append(approaches,
			"Coordinate with village heads for community access and logistics",
			"Ensure fair compensation for any land use or displacement")
	}
	if strings.Contains(projectType, "manufacturing") || strings.Contains(projectType, "mining") {
		approaches = append(approaches,
			"Establish local employment and skills training programs",
			"Implement environmental protection measures that align with local concerns")
	}

	if successProbability > 0.7 {
		approaches = append(approaches,
			"Leverage existing community support networks",
			"Consider expanding project scope based on positive reception")
	} else {
		approaches = append(approaches,
			"Focus on building trust through small, visible community benefits",
			"Consider phased implementation to demonstrate value incrementally")
	}

	if len(approaches) > 5 {
		approaches = approaches[:5]
	}
	return approaches
}

// generateConsiderations produces rule-based key considerations, capped at 4.
func generateConsiderations(input *models.QuickAnalysisInput, riskScore, culturalSensitivity, complexity float64) []string {
	considerations := []string{
		fmt.Sprintf("Cultural sensitivity level: %s", bucketLabel(culturalSensitivity)),
		fmt.Sprintf("Project complexity: %s", bucketLabel(complexity)),
	}

	for _, stakeholder := range input.Stakeholders {
		lower := strings.ToLower(stakeholder)
		if strings.Contains(lower, "religious") || strings.Contains(lower, "kyai") {
			considerations = append(considerations, "Religious leadership engagement is critical for success")
			break
		}
	}

	if len(input.RiskFactors) > 2 {
		considerations = append(considerations, "Multiple risk factors present - comprehensive mitigation strategy needed")
	}

	if riskScore > 0.6 {
		considerations = append(considerations,
			"Consider engaging a local cultural consultant",
			"Plan for extended community engagement timeline")
	}

	if len(considerations) > 4 {
		considerations = considerations[:4]
	}
	return considerations
}

// riskLevelFor buckets a risk score. Boundaries are exact: 0.4 is medium,
// 0.7 is high.
func riskLevelFor(riskScore float64) string {
	switch {
	case riskScore < 0.4:
		return models.RiskLevelLow
	case riskScore < 0.7:
		return models.RiskLevelMedium
	default:
		return models.RiskLevelHigh
	}
}

func bucketLabel(v float64) string {
	switch {
	case v > 0.7:
		return "High"
	case v > 0.4:
		return "Medium"
	default:
		return "Low"
	}
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
