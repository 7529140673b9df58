package tui

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/reciloop/reciloop/internal/api"
	"github.com/reciloop/reciloop/internal/config"
	"github.com/reciloop/reciloop/internal/market"
	"github.com/reciloop/reciloop/internal/service"
)

const token = "tok-cimpor"

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func backend(t *testing.T) *api.Client {
	t.Helper()
	mux := http.NewServeMux()
	authed := func(h http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer "+token {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Could not validate credentials"})
				return
			}
			h(w, r)
		}
	}
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("POST /token", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"access_token": token, "company_id": 2})
	})
	mux.HandleFunc("GET /dashboard/stats", authed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, api.DashboardStats{
			TotalSavings: 2400000, CO2Avoided: 1250.5, MatchesCompleted: 12, MaterialsMoved: 3400,
			MonthlyTrend: []api.MonthlySavings{{Month: "Jan", Savings: 150000}, {Month: "Fev", Savings: 300000}},
		})
	}))
	mux.HandleFunc("GET /matches", authed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []api.Match{{
			ID: 7, Score: 92,
			Waste:            api.Waste{Name: "Borra Oleosa", Category: "Resíduos Oleosos", Quantity: 150, Unit: "ton"},
			GeneratorCompany: api.Company{Name: "Refinaria Suape"},
			ConsumerCompany:  api.Company{Name: "Cimpor"},
			EstimatedSavings: 45000,
		}})
	}))
	mux.HandleFunc("GET /inventory/real-time", authed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []api.InventoryItem{{
			Waste: api.Waste{Name: "Lodo Industrial", Quantity: 200, Unit: "ton"}, Company: api.Company{Name: "Cimpor"},
			Status: market.StatusAvailable, InterestedCompanies: []string{"Bunge"},
		}})
	}))
	mux.HandleFunc("GET /esg/ranking", authed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []api.ESGRanking{{CompanyName: "Cimpor", Position: 1, CircularScore: 87.5, TransactionsCount: 4}})
	}))
	mux.HandleFunc("GET /residue-offers", authed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []api.ResidueOffer{})
	}))
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	c, err := api.New(srv.URL, api.WithTimeout(2*time.Second))
	require.NoError(t, err)
	return c
}

func newTestApp(t *testing.T, client *api.Client) *App {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg := config.Config{UI: config.UIConfig{PollInterval: time.Second}}
	return New(context.Background(), Deps{
		Config:   cfg,
		Client:   client,
		Sessions: &service.SessionService{Client: client},
	})
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func keyEnter() tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyEnter} }

func keyEsc() tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyEsc} }

// loggedIn returns an App past login with the dashboard snapshot applied.
func loggedIn(t *testing.T) *App {
	t.Helper()
	client := backend(t)
	a := newTestApp(t, client)
	msg := a.doLogin(market.LoginForm{Email: "cimpor@example.com", Password: "senha"})()
	require.IsType(t, loggedInMsg{}, msg)
	a.Update(msg)
	require.Equal(t, pageDashboard, a.page)
	a.Update(a.loadSnapshot()())
	return a
}

func TestNotConfiguredShowsStatusOnLogin(t *testing.T) {
	a := newTestApp(t, nil)
	require.Equal(t, pageLogin, a.page)
	require.Contains(t, a.View(), "API não configurada")

	a.login.inputs[loginEmail].SetValue("refinaria@example.com")
	a.login.inputs[loginPassword].SetValue("senha")
	a.Update(a.doLogin(a.login.values())())
	require.True(t, a.isErr)
	require.Contains(t, a.status, "API não configurada")
}

func TestLoginRejectsEmptyFields(t *testing.T) {
	a := newTestApp(t, backend(t))

	a.Update(keyEnter())
	require.Equal(t, loginPassword, a.login.focus)
	_, cmd := a.Update(keyEnter())
	require.Nil(t, cmd)
	require.True(t, a.isErr)
	require.Equal(t, market.MsgLoginRequired, a.status)
	require.Equal(t, pageLogin, a.page)
}

func TestHealthAndCompaniesOnLoginPage(t *testing.T) {
	client := backend(t)
	a := newTestApp(t, client)

	a.Update(a.checkHealth()())
	a.Update(companiesMsg{{ID: 1, Name: "Refinaria Suape"}, {ID: 2, Name: "Cimpor"}})
	view := a.View()
	require.Contains(t, view, "API conectada")
	require.Contains(t, view, "2 empresas cadastradas")
	require.Contains(t, view, "bunge@example.com")
}

func TestLoginLoadsDashboard(t *testing.T) {
	a := loggedIn(t)

	view := a.View()
	require.Contains(t, view, "R$ 2.400.000,00")
	require.Contains(t, view, "1.250,5 ton")
	require.Contains(t, view, "Borra Oleosa")
	require.Len(t, a.matches, 1)
	require.True(t, a.sampleOffers)
	require.Len(t, a.offers, 3)
}

func TestPagesAreUnreachableBeforeLogin(t *testing.T) {
	a := newTestApp(t, backend(t))
	require.Nil(t, a.gotoPage(pageMatches))
	require.Equal(t, pageLogin, a.page)
}

func TestMatchDetailShowsBreakdown(t *testing.T) {
	a := loggedIn(t)

	a.Update(keyRunes("2"))
	require.Equal(t, pageMatches, a.page)
	a.Update(keyEnter())
	require.Equal(t, modalMatchDetail, a.modal)

	view := a.View()
	require.Contains(t, view, "Compatibilidade química")
	require.Contains(t, view, "Excelente")
	require.Contains(t, view, "95%")

	a.Update(keyEsc())
	require.Equal(t, modalNone, a.modal)
}

func TestInventoryPollsOnlyWhileVisible(t *testing.T) {
	a := loggedIn(t)

	a.Update(keyRunes("4"))
	require.Equal(t, pageInventory, a.page)
	gen := a.pollGen

	a.Update(a.loadInventory()())
	require.Equal(t, 1, a.invUpdates)
	require.Contains(t, a.View(), "Atualizações: 1")

	_, cmd := a.Update(inventoryTickMsg{gen: gen})
	require.NotNil(t, cmd)

	_, cmd = a.Update(inventoryTickMsg{gen: gen - 1})
	require.Nil(t, cmd)

	a.Update(keyRunes("1"))
	_, cmd = a.Update(inventoryTickMsg{gen: gen})
	require.Nil(t, cmd)

	a.Update(keyRunes("4"))
	require.Equal(t, gen+1, a.pollGen)
}

func TestOfferFiltersCombine(t *testing.T) {
	a := loggedIn(t)
	a.Update(keyRunes("6"))
	require.Equal(t, pageOffers, a.page)
	require.Len(t, a.visibleOffers(), 3)

	a.Update(keyRunes("u"))
	require.Equal(t, "high", a.filter.Urgency)
	require.Len(t, a.visibleOffers(), 1)

	a.Update(keyRunes("x"))
	a.Update(keyRunes("/"))
	require.True(t, a.searching)
	a.Update(keyRunes("cimpor"))
	a.Update(keyEnter())
	require.False(t, a.searching)
	require.Equal(t, "cimpor", a.filter.Search)
	visible := a.visibleOffers()
	require.Len(t, visible, 1)
	require.Equal(t, "Lodo Industrial", visible[0].Name)

	a.Update(keyRunes("c"))
	require.Equal(t, market.Categories[0], a.filter.Category)
	require.Empty(t, a.visibleOffers())
	require.Contains(t, a.View(), "Nenhuma oferta encontrada")
}

func TestNewOfferModalValidates(t *testing.T) {
	a := loggedIn(t)
	a.Update(keyRunes("6"))
	a.Update(keyRunes("n"))
	require.Equal(t, modalNewOffer, a.modal)
	require.Contains(t, a.View(), "Nova oferta de resíduo")

	_, cmd := a.Update(keyEnter())
	require.Nil(t, cmd)
	require.True(t, a.isErr)
	require.Equal(t, market.MsgOfferRequired, a.status)

	for i := 0; i < offerCategory; i++ {
		a.Update(tea.KeyMsg{Type: tea.KeyTab})
	}
	require.True(t, a.offerForm.onChoice())
	a.Update(tea.KeyMsg{Type: tea.KeyRight})
	require.Equal(t, market.Categories[1], a.offerForm.values().Category)

	a.Update(keyEsc())
	require.Equal(t, modalNone, a.modal)
}

func TestRegisterInterestShowsConfirmation(t *testing.T) {
	a := loggedIn(t)
	a.Update(keyRunes("6"))
	_, cmd := a.Update(keyRunes("i"))
	require.NotNil(t, cmd)
	a.Update(cmd())
	require.False(t, a.isErr)
	require.Equal(t, service.MsgInterestRegistered, a.status)
}

func TestUnauthorizedEndsSession(t *testing.T) {
	a := loggedIn(t)
	a.session.Client = a.session.Client.WithToken("expired")

	a.Update(a.loadMatches()())
	require.Equal(t, pageLogin, a.page)
	require.Nil(t, a.session)
	require.Contains(t, a.status, "Sessão expirada")
	require.Equal(t, "cimpor@example.com", a.login.value(loginEmail))
}

func TestStartWrapsResultAndTracksBusy(t *testing.T) {
	a := newTestApp(t, nil)
	cmd := a.start(func() tea.Msg { return statusMsg("ok") })
	require.Equal(t, 1, a.busy)
	require.NotNil(t, cmd)

	a.Update(finishedMsg{msg: statusMsg("pronto")})
	require.Equal(t, 0, a.busy)
	require.Equal(t, "pronto", a.status)
}

func TestLogoutReturnsToLogin(t *testing.T) {
	a := loggedIn(t)
	a.Update(keyRunes("L"))
	require.Equal(t, pageLogin, a.page)
	require.Nil(t, a.session)
	require.Empty(t, a.matches)
}

func TestResultsFromEndedSessionAreDropped(t *testing.T) {
	a := loggedIn(t)
	a.Update(keyRunes("2"))
	pending := a.loadSnapshot()
	pendingMatches := a.loadMatches()

	a.Update(keyRunes("L"))
	require.Equal(t, pageLogin, a.page)

	a.Update(pending())
	require.Equal(t, pageLogin, a.page)
	require.Nil(t, a.session)
	require.Empty(t, a.matches)
	require.Zero(t, a.stats.TotalSavings)

	a.Update(pendingMatches())
	require.Empty(t, a.matches)
}

func TestResultsFromPreviousSessionDoNotOverwriteNewOne(t *testing.T) {
	a := loggedIn(t)
	stale := a.loadMatches()
	staleErr := a.scoped(func() tea.Msg { return errMsg{api.ErrUnauthorized} })

	a.Update(keyRunes("L"))
	a.Update(a.doLogin(market.LoginForm{Email: "bunge@example.com", Password: "senha"})())
	require.Equal(t, pageDashboard, a.page)
	require.Empty(t, a.matches)

	a.Update(stale())
	require.Empty(t, a.matches)

	a.Update(staleErr())
	require.NotNil(t, a.session)
	require.Equal(t, "bunge@example.com", a.session.Email)

	a.Update(a.loadMatches()())
	require.Len(t, a.matches, 1)
}

func TestRestoredSessionDoesNotReplaceLogin(t *testing.T) {
	a := loggedIn(t)
	gen := a.sessionGen
	a.Update(restoredMsg{session: service.Session{Email: "outra@example.com", Client: a.session.Client}})
	require.Equal(t, gen, a.sessionGen)
	require.Equal(t, "cimpor@example.com", a.session.Email)
}
