package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(srv.URL, WithTimeout(2*time.Second))
	require.NoError(t, err)
	return c
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestNewWithoutBaseURLIsNotConfigured(t *testing.T) {
	t.Parallel()
	_, err := New("   ")
	require.ErrorIs(t, err, ErrNotConfigured)
}

func TestNewRejectsNonPositiveTimeout(t *testing.T) {
	t.Parallel()
	_, err := New("http://localhost", WithTimeout(0))
	require.Error(t, err)
}

func TestLoginSendsFormAndReturnsToken(t *testing.T) {
	t.Parallel()
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/token", r.URL.Path)
		require.Contains(t, r.Header.Get("Content-Type"), "application/x-www-form-urlencoded")
		require.NoError(t, r.ParseForm())
		require.Equal(t, "cimpor@example.com", r.PostForm.Get("username"))
		require.Equal(t, "senha", r.PostForm.Get("password"))
		require.Empty(t, r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, map[string]any{"access_token": "tok-1", "token_type": "bearer", "company_id": 2})
	}))

	tok, err := c.Login(context.Background(), "cimpor@example.com", "senha")
	require.NoError(t, err)
	require.Equal(t, "tok-1", tok.AccessToken)
	require.Equal(t, 2, tok.CompanyID)
}

func TestLoginBadCredentialsUsesServerDetail(t *testing.T) {
	t.Parallel()
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Credenciais recusadas"})
	}))

	_, err := c.Login(context.Background(), "x@example.com", "nope")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	require.NotErrorIs(t, err, ErrUnauthorized)
	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, "Credenciais recusadas", apiErr.Detail)
	require.Equal(t, http.StatusUnauthorized, StatusCode(err))
}

func TestLoginBadCredentialsWithoutBodyFallsBack(t *testing.T) {
	t.Parallel()
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	_, err := c.Login(context.Background(), "x@example.com", "nope")
	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, "Email ou senha incorretos", apiErr.Detail)
}

func TestLoginEmptyTokenIsError(t *testing.T) {
	t.Parallel()
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"company_id": 1})
	}))
	_, err := c.Login(context.Background(), "a@b.c", "x")
	require.Error(t, err)
}

func TestAuthenticatedCallsSendBearer(t *testing.T) {
	t.Parallel()
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-9" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Invalid token"})
			return
		}
		switch r.URL.Path {
		case "/dashboard/stats":
			writeJSON(w, http.StatusOK, DashboardStats{
				TotalSavings:     2400000,
				CO2Avoided:       1234,
				MatchesCompleted: 156,
				MonthlyTrend:     []MonthlySavings{{Month: "Jan", Savings: 180000}},
			})
		case "/matches":
			writeJSON(w, http.StatusOK, []Match{{ID: 1, Score: 91.5, Waste: Waste{Name: "Borra Oleosa"}}})
		case "/inventory/real-time":
			writeJSON(w, http.StatusOK, []InventoryItem{{Waste: Waste{Name: "PET"}, Status: "disponível", InterestedCompanies: []string{"Braskem"}}})
		case "/esg/ranking":
			writeJSON(w, http.StatusOK, []ESGRanking{{Position: 1, CompanyName: "Cimpor", CircularScore: 95.2}})
		default:
			http.NotFound(w, r)
		}
	}))

	ctx := context.Background()
	_, err := c.Matches(ctx)
	require.ErrorIs(t, err, ErrUnauthorized)

	authed := c.WithToken("tok-9")
	require.True(t, authed.Authenticated())
	require.False(t, c.Authenticated())

	stats, err := authed.DashboardStats(ctx)
	require.NoError(t, err)
	require.Equal(t, 156, stats.MatchesCompleted)
	require.Len(t, stats.MonthlyTrend, 1)

	matches, err := authed.Matches(ctx)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	require.Equal(t, "Borra Oleosa", matches[0].Waste.Name)

	inv, err := authed.Inventory(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"Braskem"}, inv[0].InterestedCompanies)

	rank, err := authed.ESGRanking(ctx)
	require.NoError(t, err)
	require.Equal(t, 95.2, rank[0].CircularScore)
}

func TestWrongTokenIsUnauthorized(t *testing.T) {
	t.Parallel()
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Invalid token"})
	}))
	_, err := c.WithToken("stale").ESGRanking(context.Background())
	require.ErrorIs(t, err, ErrUnauthorized)
	require.NotErrorIs(t, err, ErrInvalidCredentials)
}

func TestCompaniesIsPublic(t *testing.T) {
	t.Parallel()
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Empty(t, r.Header.Get("Authorization"))
		switch r.URL.Path {
		case "/companies":
			writeJSON(w, http.StatusOK, []Company{{ID: 1, Name: "Petrobras"}, {ID: 2, Name: "Cimpor"}})
		case "/companies/2":
			writeJSON(w, http.StatusOK, Company{ID: 2, Name: "Cimpor"})
		default:
			writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Empresa não encontrada"})
		}
	}))

	list, err := c.Companies(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)

	one, err := c.Company(context.Background(), 2)
	require.NoError(t, err)
	require.Equal(t, "Cimpor", one.Name)

	_, err = c.Company(context.Background(), 99)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestWastesPassesCategory(t *testing.T) {
	t.Parallel()
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Oleosos", r.URL.Query().Get("category"))
		writeJSON(w, http.StatusOK, []Waste{{ID: 1, Name: "Borra Oleosa", Category: "Oleosos"}})
	}))
	got, err := c.Wastes(context.Background(), "Oleosos")
	require.NoError(t, err)
	require.Len(t, got, 1)
}

func TestAcceptMatchPostsToMatchPath(t *testing.T) {
	t.Parallel()
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/matches/7/accept", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]any{"message": "Match aceito com sucesso", "match_id": 7})
	})).WithToken("tok")

	res, err := c.AcceptMatch(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, 7, res.MatchID)
	require.Equal(t, "Match aceito com sucesso", res.Message)
}

func TestResidueOffersNonArrayBodyIsEmpty(t *testing.T) {
	t.Parallel()
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"detail": "Not Found"})
	})).WithToken("tok")

	offers, err := c.ResidueOffers(context.Background())
	require.NoError(t, err)
	require.NotNil(t, offers)
	require.Empty(t, offers)
}

func TestCreateOfferSendsJSONBody(t *testing.T) {
	t.Parallel()
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		require.Contains(t, r.Header.Get("Content-Type"), "application/json")
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var got NewOffer
		require.NoError(t, json.Unmarshal(body, &got))
		require.Equal(t, 150.0, got.Quantity)
		require.Equal(t, "high", got.Urgency)
		writeJSON(w, http.StatusCreated, ResidueOffer{ID: 10, Name: got.Name, Company: "Refinaria Suape", Urgency: got.Urgency})
	})).WithToken("tok")

	created, err := c.CreateOffer(context.Background(), NewOffer{Name: "Borra", Category: "Resíduos Oleosos", Quantity: 150, Unit: "ton", Price: 200, Urgency: "high"})
	require.NoError(t, err)
	require.Equal(t, 10, created.ID)
	require.Equal(t, "Refinaria Suape", created.Company)
}

func TestCreateOfferServerErrorCarriesDetail(t *testing.T) {
	t.Parallel()
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": []map[string]string{{"msg": "field required"}}})
	})).WithToken("tok")

	_, err := c.CreateOffer(context.Background(), NewOffer{Name: "x"})
	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, "Erro 422: Unprocessable Entity", apiErr.Detail)
}

func TestCalculateROI(t *testing.T) {
	t.Parallel()
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Empty(t, r.Header.Get("Authorization"))
		var in ROIInput
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		require.Equal(t, "Borra Oleosa", in.WasteType)
		profit := in.Volume*in.MarketPrice - in.Volume*in.DisposalCost
		writeJSON(w, http.StatusOK, map[string]any{
			"potential_profit": profit,
			"roi_percentage":   -333.3,
			"payback_days":     7,
		})
	}))

	got, err := c.CalculateROI(context.Background(), ROIInput{WasteType: "Borra Oleosa", Volume: 100, DisposalCost: 200, MarketPrice: 150})
	require.NoError(t, err)
	require.Equal(t, -5000.0, got.PotentialProfit)
	require.Equal(t, 7.0, got.PaybackDays)
}

func TestMalformedJSONIsError(t *testing.T) {
	t.Parallel()
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id": "one"`))
	}))
	_, err := c.Companies(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "decode response")
}

func TestCalculateROIRejectsUnusableBodies(t *testing.T) {
	t.Parallel()
	cases := map[string]string{
		"nan literal":    `{"potential_profit": NaN, "roi_percentage": 1, "payback_days": 2}`,
		"infinity":       `{"potential_profit": 1, "roi_percentage": Infinity, "payback_days": 2}`,
		"missing fields": `{"waste_type": "x"}`,
		"null field":     `{"potential_profit": 1, "roi_percentage": null, "payback_days": 2}`,
		"truncated":      `{"potential_profit": "lots"`,
		"not an object":  `"ok"`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(body))
			}))
			res, err := c.CalculateROI(context.Background(), ROIInput{WasteType: "x"})
			require.ErrorIs(t, err, ErrInvalidROI)
			require.Equal(t, ROIResult{}, res)
		})
	}
}

func TestCalculateROIAcceptsZeroes(t *testing.T) {
	t.Parallel()
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"potential_profit": 0, "roi_percentage": 0, "payback_days": 0})
	}))
	res, err := c.CalculateROI(context.Background(), ROIInput{WasteType: "x"})
	require.NoError(t, err)
	require.Equal(t, ROIResult{}, res)
}

func TestServerErrorMessage(t *testing.T) {
	t.Parallel()
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	err := c.Health(context.Background())
	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, "Erro interno do servidor. Tente novamente.", apiErr.Detail)
}

func TestNetworkErrorIsWrapped(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := New(url, WithTimeout(time.Second))
	require.NoError(t, err)
	err = c.Health(context.Background())
	require.Error(t, err)
	require.Equal(t, 0, StatusCode(err))
}

func TestCanceledContextShortCircuits(t *testing.T) {
	t.Parallel()
	c, err := New("http://127.0.0.1:1")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.Companies(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestROIResultValid(t *testing.T) {
	t.Parallel()
	require.True(t, ROIResult{PotentialProfit: 1, ROIPercentage: 2, PaybackDays: 7}.Valid())
	require.False(t, ROIResult{PotentialProfit: math.NaN()}.Valid())
	require.False(t, ROIResult{PaybackDays: math.Inf(1)}.Valid())
}

func TestRequestsAreCounted(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []Waste{})
	}))
	before := testutil.ToFloat64(requestsTotal.WithLabelValues(opWastes, outcomeOK))
	_, err := c.Wastes(context.Background(), "")
	require.NoError(t, err)
	after := testutil.ToFloat64(requestsTotal.WithLabelValues(opWastes, outcomeOK))
	require.Equal(t, before+1, after)
}
