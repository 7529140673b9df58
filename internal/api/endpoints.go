package api

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/go-resty/resty/v2"
)

const (
	opLogin          = "login"
	opHealth         = "health"
	opCompanies      = "companies"
	opCompany        = "company"
	opWastes         = "wastes"
	opDashboardStats = "dashboard_stats"
	opMatches        = "matches"
	opAcceptMatch    = "accept_match"
	opInventory      = "inventory"
	opESGRanking     = "esg_ranking"
	opResidueOffers  = "residue_offers"
	opCreateOffer    = "create_offer"
	opCalculateROI   = "calculate_roi"
)

// Login exchanges credentials for a bearer token. The email is sent as the
// OAuth2 form field "username".
func (c *Client) Login(ctx context.Context, email, password string) (Token, error) {
	var tok Token
	err := c.getJSON(ctx, call{
		op:     opLogin,
		method: http.MethodPost,
		path:   "/token",
		build: func(r *resty.Request) {
			r.SetFormData(map[string]string{"username": email, "password": password})
		},
	}, &tok)
	if err != nil {
		return Token{}, err
	}
	if tok.AccessToken == "" {
		return Token{}, fmt.Errorf("%s: empty access token", opLogin)
	}
	return tok, nil
}

// Health probes GET /health. Any 2xx counts as connected.
func (c *Client) Health(ctx context.Context) error {
	_, err := c.do(ctx, call{op: opHealth, method: http.MethodGet, path: "/health"})
	return err
}

// Companies lists all companies. Public.
func (c *Client) Companies(ctx context.Context) ([]Company, error) {
	var out []Company
	if err := c.getJSON(ctx, call{op: opCompanies, method: http.MethodGet, path: "/companies"}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Company fetches one company. Public.
func (c *Client) Company(ctx context.Context, id int) (Company, error) {
	var out Company
	err := c.getJSON(ctx, call{
		op:     opCompany,
		method: http.MethodGet,
		path:   "/companies/{id}",
		build: func(r *resty.Request) {
			r.SetPathParam("id", strconv.Itoa(id))
		},
	}, &out)
	return out, err
}

// Wastes lists waste listings, optionally restricted to one category. Public.
func (c *Client) Wastes(ctx context.Context, category string) ([]Waste, error) {
	var out []Waste
	err := c.getJSON(ctx, call{
		op:     opWastes,
		method: http.MethodGet,
		path:   "/wastes",
		build: func(r *resty.Request) {
			if category != "" {
				r.SetQueryParam("category", category)
			}
		},
	}, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DashboardStats fetches the KPI figures.
func (c *Client) DashboardStats(ctx context.Context) (DashboardStats, error) {
	var out DashboardStats
	err := c.getJSON(ctx, call{op: opDashboardStats, method: http.MethodGet, path: "/dashboard/stats", auth: true}, &out)
	return out, err
}

// Matches lists proposed matches, best score first as returned by the server.
func (c *Client) Matches(ctx context.Context) ([]Match, error) {
	var out []Match
	if err := c.getJSON(ctx, call{op: opMatches, method: http.MethodGet, path: "/matches", auth: true}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AcceptMatch transitions a match to accepted.
func (c *Client) AcceptMatch(ctx context.Context, id int) (AcceptResult, error) {
	resp, err := c.do(ctx, call{
		op:     opAcceptMatch,
		method: http.MethodPost,
		path:   "/matches/{id}/accept",
		auth:   true,
		build: func(r *resty.Request) {
			r.SetPathParam("id", strconv.Itoa(id))
		},
	})
	if err != nil {
		return AcceptResult{}, err
	}
	out := AcceptResult{MatchID: id}
	if len(resp.Body()) == 0 {
		return out, nil
	}
	if err := decode(opAcceptMatch, resp.Body(), &out); err != nil {
		return AcceptResult{}, err
	}
	return out, nil
}

// Inventory fetches the real-time inventory.
func (c *Client) Inventory(ctx context.Context) ([]InventoryItem, error) {
	var out []InventoryItem
	if err := c.getJSON(ctx, call{op: opInventory, method: http.MethodGet, path: "/inventory/real-time", auth: true}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ESGRanking fetches the circularity ranking.
func (c *Client) ESGRanking(ctx context.Context) ([]ESGRanking, error) {
	var out []ESGRanking
	if err := c.getJSON(ctx, call{op: opESGRanking, method: http.MethodGet, path: "/esg/ranking", auth: true}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ResidueOffers lists marketplace offers. A body that is not a JSON array
// (e.g. an error object sent with 200) yields an empty list.
func (c *Client) ResidueOffers(ctx context.Context) ([]ResidueOffer, error) {
	resp, err := c.do(ctx, call{op: opResidueOffers, method: http.MethodGet, path: "/residue-offers", auth: true})
	if err != nil {
		return nil, err
	}
	if !isJSONArray(resp.Body()) {
		return []ResidueOffer{}, nil
	}
	var out []ResidueOffer
	if err := decode(opResidueOffers, resp.Body(), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateOffer posts a new residue offer.
func (c *Client) CreateOffer(ctx context.Context, offer NewOffer) (ResidueOffer, error) {
	resp, err := c.do(ctx, call{
		op:     opCreateOffer,
		method: http.MethodPost,
		path:   "/residue-offers",
		auth:   true,
		build: func(r *resty.Request) {
			r.SetHeader("Content-Type", "application/json").SetBody(offer)
		},
	})
	if err != nil {
		return ResidueOffer{}, err
	}
	created := ResidueOffer{
		Name:        offer.Name,
		Category:    offer.Category,
		Quantity:    offer.Quantity,
		Unit:        offer.Unit,
		Price:       offer.Price,
		Urgency:     offer.Urgency,
		Description: offer.Description,
	}
	if len(resp.Body()) == 0 {
		return created, nil
	}
	if err := decode(opCreateOffer, resp.Body(), &created); err != nil {
		return ResidueOffer{}, err
	}
	return created, nil
}

// CalculateROI asks the server for an ROI estimate. The endpoint is stateless
// and unauthenticated. A body that is not valid JSON, or that lacks any of
// the three result fields, yields ErrInvalidROI.
func (c *Client) CalculateROI(ctx context.Context, in ROIInput) (ROIResult, error) {
	resp, err := c.do(ctx, call{
		op:     opCalculateROI,
		method: http.MethodPost,
		path:   "/roi/calculate",
		build: func(r *resty.Request) {
			r.SetHeader("Content-Type", "application/json").SetBody(in)
		},
	})
	if err != nil {
		return ROIResult{}, err
	}

	// Python's json module writes NaN and Infinity as bare literals, which
	// fail to decode.
	var wire struct {
		PotentialProfit *float64 `json:"potential_profit"`
		ROIPercentage   *float64 `json:"roi_percentage"`
		PaybackDays     *float64 `json:"payback_days"`
	}
	if err := decode(opCalculateROI, resp.Body(), &wire); err != nil {
		return ROIResult{}, fmt.Errorf("%w: %w", ErrInvalidROI, err)
	}
	if wire.PotentialProfit == nil || wire.ROIPercentage == nil || wire.PaybackDays == nil {
		return ROIResult{}, fmt.Errorf("%s: missing result field: %w", opCalculateROI, ErrInvalidROI)
	}
	out := ROIResult{
		PotentialProfit: *wire.PotentialProfit,
		ROIPercentage:   *wire.ROIPercentage,
		PaybackDays:     *wire.PaybackDays,
	}
	if !out.Valid() {
		return ROIResult{}, fmt.Errorf("%s: %w", opCalculateROI, ErrInvalidROI)
	}
	return out, nil
}

// Valid reports whether every field is a finite number.
func (r ROIResult) Valid() bool {
	for _, v := range []float64{r.PotentialProfit, r.ROIPercentage, r.PaybackDays} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
