package api

// Company is a marketplace participant.
type Company struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Type  string `json:"type,omitempty"`
	Logo  string `json:"logo,omitempty"`
}

// Waste is a byproduct listed by a generator company.
type Waste struct {
	ID           int     `json:"id,omitempty"`
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	Category     string  `json:"category"`
	Quantity     float64 `json:"quantity"`
	Unit         string  `json:"unit"`
	PricePerUnit float64 `json:"price_per_unit"`
	CompanyID    int     `json:"company_id,omitempty"`
	Available    bool    `json:"available"`
}

// Match is a proposed pairing between a generator and a consumer.
type Match struct {
	ID               int     `json:"id"`
	Score            float64 `json:"score"`
	Waste            Waste   `json:"waste"`
	GeneratorCompany Company `json:"generator_company"`
	ConsumerCompany  Company `json:"consumer_company"`
	EstimatedSavings float64 `json:"estimated_savings"`
	Status           string  `json:"status,omitempty"`
	CreatedAt        string  `json:"created_at,omitempty"`
}

// MonthlySavings is one point of the dashboard savings trend.
type MonthlySavings struct {
	Month   string  `json:"month"`
	Savings float64 `json:"savings"`
}

// DashboardStats are the KPI figures for the logged-in company.
type DashboardStats struct {
	TotalSavings     float64          `json:"total_savings"`
	CO2Avoided       float64          `json:"co2_avoided"`
	MatchesCompleted int              `json:"matches_completed"`
	MaterialsMoved   float64          `json:"materials_moved"`
	MonthlyTrend     []MonthlySavings `json:"monthly_trend"`
}

// InventoryItem is one live inventory row.
type InventoryItem struct {
	Waste               Waste    `json:"waste"`
	Company             Company  `json:"company"`
	Status              string   `json:"status"`
	InterestedCompanies []string `json:"interested_companies"`
	LastUpdate          string   `json:"last_update,omitempty"`
}

// ESGRanking is one row of the circularity ranking. Scores are computed server-side.
type ESGRanking struct {
	CompanyID         int     `json:"company_id"`
	CompanyName       string  `json:"company_name"`
	Position          int     `json:"position"`
	CircularScore     float64 `json:"circular_score"`
	TransactionsCount int     `json:"transactions_count"`
	TotalSavings      float64 `json:"total_savings"`
	CO2Avoided        float64 `json:"co2_avoided"`
}

// ROIInput is the body of POST /roi/calculate.
type ROIInput struct {
	WasteType    string  `json:"waste_type"`
	Volume       float64 `json:"volume"`
	DisposalCost float64 `json:"disposal_cost"`
	MarketPrice  float64 `json:"market_price"`
}

// ROIResult is the server's ROI computation.
type ROIResult struct {
	PotentialProfit float64 `json:"potential_profit"`
	ROIPercentage   float64 `json:"roi_percentage"`
	PaybackDays     float64 `json:"payback_days"`
}

// ResidueOffer is a marketplace listing of available waste material.
type ResidueOffer struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Quantity    float64 `json:"quantity"`
	Unit        string  `json:"unit"`
	Price       float64 `json:"price"`
	Company     string  `json:"company"`
	Urgency     string  `json:"urgency"`
	Description string  `json:"description,omitempty"`
	CreatedAt   string  `json:"created_at,omitempty"`
}

// NewOffer is the body of POST /residue-offers.
type NewOffer struct {
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	Unit        string  `json:"unit"`
	Price       float64 `json:"price"`
	Urgency     string  `json:"urgency"`
}

// Token is the login response.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type,omitempty"`
	CompanyID   int    `json:"company_id"`
}

// AcceptResult is the response of POST /matches/{id}/accept.
type AcceptResult struct {
	Message string `json:"message"`
	MatchID int    `json:"match_id"`
}
