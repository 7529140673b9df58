package service

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/reciloop/reciloop/internal/api"
	"github.com/reciloop/reciloop/internal/database"
	"github.com/reciloop/reciloop/internal/database/repository"
)

const testToken = "tok-refinaria"

// fakeBackend serves the subset of the marketplace API the services call.
type fakeBackend struct {
	accepted atomic.Int32
	offers   []api.ResidueOffer
}

func (b *fakeBackend) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	authed := func(h http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer "+testToken {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Could not validate credentials"})
				return
			}
			h(w, r)
		}
	}
	mux.HandleFunc("POST /token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.PostForm.Get("password") != "senha" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Email ou senha incorretos"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"access_token": testToken, "token_type": "bearer", "company_id": 1})
	})
	mux.HandleFunc("GET /dashboard/stats", authed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, api.DashboardStats{TotalSavings: 2400000, CO2Avoided: 1250, MatchesCompleted: 12})
	}))
	mux.HandleFunc("GET /matches", authed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []api.Match{{ID: 7, Score: 92, Waste: api.Waste{Name: "Borra Oleosa"}}})
	}))
	mux.HandleFunc("POST /matches/{id}/accept", authed(func(w http.ResponseWriter, r *http.Request) {
		b.accepted.Add(1)
		writeJSON(w, http.StatusOK, map[string]any{"message": "Match accepted", "match_id": 7})
	}))
	mux.HandleFunc("GET /inventory/real-time", authed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []api.InventoryItem{{Status: "disponível"}})
	}))
	mux.HandleFunc("GET /esg/ranking", authed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []api.ESGRanking{{CompanyName: "Cimpor", Position: 1, CircularScore: 87.5}})
	}))
	mux.HandleFunc("GET /residue-offers", authed(func(w http.ResponseWriter, r *http.Request) {
		offers := b.offers
		if offers == nil {
			offers = []api.ResidueOffer{}
		}
		writeJSON(w, http.StatusOK, offers)
	}))
	mux.HandleFunc("POST /residue-offers", authed(func(w http.ResponseWriter, r *http.Request) {
		var in api.NewOffer
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		writeJSON(w, http.StatusOK, api.ResidueOffer{ID: 42, Name: in.Name, Category: in.Category, Quantity: in.Quantity,
			Unit: in.Unit, Price: in.Price, Urgency: in.Urgency, Company: "Refinaria Suape"})
	}))
	mux.HandleFunc("POST /roi/calculate", func(w http.ResponseWriter, r *http.Request) {
		var in api.ROIInput
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		profit := in.Volume * (in.DisposalCost + in.MarketPrice)
		writeJSON(w, http.StatusOK, api.ROIResult{PotentialProfit: profit, ROIPercentage: 2333.3, PaybackDays: 7})
	})
	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newBackendClient(t *testing.T, b *fakeBackend) *api.Client {
	t.Helper()
	srv := httptest.NewServer(b.handler(t))
	t.Cleanup(srv.Close)
	c, err := api.New(srv.URL, api.WithTimeout(2*time.Second))
	require.NoError(t, err)
	return c
}

func newJournal(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.OpenAndMigrate(filepath.Join(t.TempDir(), "activity.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newMarketService(t *testing.T, b *fakeBackend) (*MarketService, *sql.DB) {
	t.Helper()
	db := newJournal(t)
	return &MarketService{
		Client:      newBackendClient(t, b).WithToken(testToken),
		ROI:         repository.NewRoiCalculationRepo(db),
		Interests:   repository.NewOfferInterestRepo(db),
		Acceptances: repository.NewMatchAcceptanceRepo(db),
	}, db
}
