package tui

import (
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/reciloop/reciloop/internal/api"
	"github.com/reciloop/reciloop/internal/market"
	"github.com/reciloop/reciloop/internal/service"
)

// messages
type healthMsg struct{ err error }

type companiesMsg []api.Company

type loggedInMsg struct{ session service.Session }

type restoredMsg struct{ session service.Session }

type snapshotMsg service.Snapshot

type statsMsg api.DashboardStats

type matchesMsg []api.Match

type inventoryMsg struct {
	items []api.InventoryItem
	err   error
}

type inventoryTickMsg struct{ gen int }

type rankingMsg []api.ESGRanking

type offersMsg struct {
	offers []api.ResidueOffer
	sample bool
}

type matchAcceptedMsg api.AcceptResult

type roiMsg api.ROIResult

type offerCreatedMsg api.ResidueOffer

type historyMsg service.History

type resetDoneMsg struct{}

type statusMsg string

type errMsg struct{ error }

// finishedMsg wraps the result of a command started with App.start.
type finishedMsg struct{ msg tea.Msg }

// sessionMsg carries a result produced under session generation gen.
type sessionMsg struct {
	gen int
	msg tea.Msg
}

const historyLimit = 20

func (a *App) checkHealth() tea.Cmd {
	client := a.client
	return func() tea.Msg {
		return healthMsg{err: client.Health(a.ctx)}
	}
}

func (a *App) loadCompanies() tea.Cmd {
	client := a.client
	return func() tea.Msg {
		list, err := client.Companies(a.ctx)
		if err != nil {
			a.log.Warn("load companies", zap.Error(err))
			return nil
		}
		return companiesMsg(list)
	}
}

func (a *App) restoreSession() tea.Cmd {
	sessions := a.sessions
	return func() tea.Msg {
		if sessions == nil {
			return nil
		}
		sess, err := sessions.Restore()
		if err != nil {
			if !errors.Is(err, service.ErrNotLoggedIn) {
				a.log.Warn("restore session", zap.Error(err))
			}
			return nil
		}
		return restoredMsg{session: sess}
	}
}

func (a *App) doLogin(form market.LoginForm) tea.Cmd {
	sessions := a.sessions
	return func() tea.Msg {
		if sessions == nil {
			return errMsg{api.ErrNotConfigured}
		}
		sess, err := sessions.Login(a.ctx, form)
		if err != nil {
			return errMsg{err}
		}
		return loggedInMsg{session: sess}
	}
}

func (a *App) loadSnapshot() tea.Cmd {
	client := a.session.Client
	return a.scoped(func() tea.Msg {
		snap, err := service.LoadSnapshot(a.ctx, client, a.log)
		if err != nil {
			return errMsg{err}
		}
		return snapshotMsg(snap)
	})
}

func (a *App) loadMatches() tea.Cmd {
	client := a.session.Client
	return a.scoped(func() tea.Msg {
		list, err := client.Matches(a.ctx)
		if err != nil {
			return errMsg{err}
		}
		return matchesMsg(list)
	})
}

func (a *App) loadInventory() tea.Cmd {
	client := a.session.Client
	return a.scoped(func() tea.Msg {
		items, err := client.Inventory(a.ctx)
		return inventoryMsg{items: items, err: err}
	})
}

// tickInventory schedules the next poll for the current generation.
func (a *App) tickInventory() tea.Cmd {
	gen := a.pollGen
	return tea.Tick(a.pollEvery, func(time.Time) tea.Msg {
		return inventoryTickMsg{gen: gen}
	})
}

func (a *App) loadRanking() tea.Cmd {
	client := a.session.Client
	return a.scoped(func() tea.Msg {
		list, err := client.ESGRanking(a.ctx)
		if err != nil {
			return errMsg{err}
		}
		return rankingMsg(list)
	})
}

func (a *App) loadOffers() tea.Cmd {
	svc := a.market
	return a.scoped(func() tea.Msg {
		offers, sample, err := svc.Offers(a.ctx)
		if err != nil {
			return errMsg{err}
		}
		return offersMsg{offers: offers, sample: sample}
	})
}

func (a *App) acceptMatch(m api.Match) tea.Cmd {
	svc := a.market
	return a.scoped(func() tea.Msg {
		res, err := svc.AcceptMatch(a.ctx, m)
		if err != nil {
			return errMsg{err}
		}
		return matchAcceptedMsg(res)
	})
}

func (a *App) calculateROI(form market.ROIForm) tea.Cmd {
	svc := a.market
	return a.scoped(func() tea.Msg {
		res, err := svc.CalculateROI(a.ctx, form)
		if err != nil {
			return errMsg{err}
		}
		return roiMsg(res)
	})
}

func (a *App) createOffer(form market.OfferForm) tea.Cmd {
	svc := a.market
	return a.scoped(func() tea.Msg {
		created, err := svc.CreateOffer(a.ctx, form)
		if err != nil {
			return errMsg{err}
		}
		return offerCreatedMsg(created)
	})
}

func (a *App) registerInterest(o api.ResidueOffer) tea.Cmd {
	svc := a.market
	return a.scoped(func() tea.Msg {
		msg, err := svc.RegisterInterest(a.ctx, o)
		if err != nil {
			return errMsg{err}
		}
		return statusMsg(msg)
	})
}

func (a *App) loadHistory() tea.Cmd {
	svc := a.market
	return a.scoped(func() tea.Msg {
		if svc == nil {
			return nil
		}
		h, err := svc.History(a.ctx, historyLimit)
		if err != nil {
			return errMsg{err}
		}
		return historyMsg(h)
	})
}

func (a *App) resetJournal() tea.Cmd {
	maint := a.maint
	return func() tea.Msg {
		if maint == nil {
			return errMsg{errors.New("histórico local indisponível")}
		}
		if err := maint.Reset(a.ctx); err != nil {
			return errMsg{err}
		}
		return resetDoneMsg{}
	}
}

// scoped stamps cmd's result with the current session so Update can drop
// results that land after a logout or a re-login.
func (a *App) scoped(cmd tea.Cmd) tea.Cmd {
	gen := a.sessionGen
	return func() tea.Msg {
		return sessionMsg{gen: gen, msg: cmd()}
	}
}
