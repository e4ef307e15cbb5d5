package forecast

import (
	"fmt"
	"math"
)

// Action is the inventory move suggested for a demand score.
type Action string

const (
	IncreaseStock   Action = "Increase Stock"
	MaintainStock   Action = "Maintain Stock"
	SlightReduction Action = "Slight Reduction"
	ReduceStock     Action = "Reduce Stock"
)

// Priority of a recommendation tier.
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// Score thresholds. Each tier applies when the score is strictly greater.
const (
	HighDemandThreshold = 120.0
	LowDemandThreshold  = 60.0
)

// Recommendation is the tier matched by a final score.
type Recommendation struct {
	Action           Action   `json:"action"`
	Percentage       string   `json:"percentage"`
	Priority         Priority `json:"priority"`
	Multiplier       float64  `json:"multiplier"`
	RecommendedUnits int      `json:"recommended_units"`
	Message          string   `json:"message"`
}

type tier struct {
	above      float64
	action     Action
	percentage string
	priority   Priority
	multiplier float64
	message    string
}

// tiers are evaluated top down; the last one has no lower bound.
var tiers = []tier{
	{120, IncreaseStock, "40-50%", PriorityHigh, 1.5, "High demand expected - Stock up significantly"},
	{100, MaintainStock, "0%", PriorityMedium, 1.2, "Stable demand - Continue normal operations"},
	{80, MaintainStock, "0%", PriorityMedium, 1.0, "Normal demand levels"},
	{60, SlightReduction, "10-15%", PriorityLow, 0.9, "Lower demand - Consider minor stock reduction"},
	{math.Inf(-1), ReduceStock, "20-30%", PriorityLow, 0.7, "Low demand - Reduce inventory significantly"},
}

// Recommend maps a final score to its recommendation tier. Units are rounded
// half to even.
func Recommend(score float64) Recommendation {
	t := tiers[len(tiers)-1]
	for _, candidate := range tiers {
		if score > candidate.above {
			t = candidate
			break
		}
	}
	return Recommendation{
		Action:           t.action,
		Percentage:       t.percentage,
		Priority:         t.priority,
		Multiplier:       t.multiplier,
		RecommendedUnits: int(math.RoundToEven(score * t.multiplier)),
		Message:          t.message,
	}
}

// InventoryAction is the coarse three-way action reported on batch rows:
// increase above the high threshold, reduce below the low one, maintain otherwise.
func InventoryAction(score float64) Action {
	switch {
	case score > HighDemandThreshold:
		return IncreaseStock
	case score < LowDemandThreshold:
		return ReduceStock
	default:
		return MaintainStock
	}
}

// Advisory is a human readable suggestion shown next to a score.
type Advisory struct {
	Title    string `json:"title"`
	Action   string `json:"action"`
	Priority string `json:"priority"`
	Details  string `json:"details"`
}

// Advisories returns the merchandising suggestions for a product's score.
func Advisories(score float64, product string) []Advisory {
	switch {
	case score > HighDemandThreshold:
		return []Advisory{
			{
				Title:    "High Demand Alert",
				Action:   "Increase stock by 40-50%",
				Priority: "high",
				Details:  fmt.Sprintf("Expected high demand for %s. Consider bulk ordering.", product),
			},
			{
				Title:    "Pricing Strategy",
				Action:   "Consider dynamic pricing",
				Priority: "medium",
				Details:  "High demand allows for optimized pricing",
			},
		}
	case score > 100:
		return []Advisory{{
			Title:    "Moderate Demand",
			Action:   "Maintain current stock levels",
			Priority: "medium",
			Details:  "Stable market conditions expected",
		}}
	case score < LowDemandThreshold:
		return []Advisory{{
			Title:    "Low Demand Warning",
			Action:   "Reduce stock by 20-30%",
			Priority: "low",
			Details:  "Consider promotional offers or bundling",
		}}
	default:
		return []Advisory{{
			Title:    "Normal Demand",
			Action:   "Standard inventory management",
			Priority: "medium",
			Details:  "Maintain regular stock rotation",
		}}
	}
}
