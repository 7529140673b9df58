package repository

import "time"

// RoiCalculation is one ROI estimate the user ran.
type RoiCalculation struct {
	ID              string
	WasteType       string
	Volume          float64
	DisposalCost    float64
	MarketPrice     float64
	PotentialProfit float64
	ROIPercentage   float64
	PaybackDays     float64
	CreatedAt       time.Time
}

// OfferInterest records interest registered in a marketplace offer.
type OfferInterest struct {
	ID        string
	OfferID   int
	OfferName string
	Company   string
	CreatedAt time.Time
}

// MatchAcceptance records a match the user accepted.
type MatchAcceptance struct {
	ID        string
	MatchID   int
	WasteName string
	Consumer  string
	Score     float64
	Message   string
	CreatedAt time.Time
}
