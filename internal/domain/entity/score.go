package entity

type QualityTier string

const (
	TierExcellent QualityTier = "Excellent"
	TierGood      QualityTier = "Good"
	TierAverage   QualityTier = "Average"
	TierPoor      QualityTier = "Poor"
	TierVeryPoor  QualityTier = "Very Poor"
)

type Recommendation string

const (
	RecommendApprove Recommendation = "Approve"
	RecommendReview  Recommendation = "Review"
	RecommendReject  Recommendation = "Reject"
)

type ConsolidatedScore struct {
	Value          float64
	Confidence     float64
	QualityTier    QualityTier
	Recommendation Recommendation
}
