package tui

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/reciloop/reciloop/internal/api"
	"github.com/reciloop/reciloop/internal/config"
	"github.com/reciloop/reciloop/internal/database/repository"
	"github.com/reciloop/reciloop/internal/market"
	"github.com/reciloop/reciloop/internal/prefs"
	"github.com/reciloop/reciloop/internal/service"
)

// App is the dashboard. One page is visible at a time.
type App struct {
	ctx      context.Context
	cfg      config.Config
	client   *api.Client // nil when no API URL is configured
	sessions *service.SessionService
	journal  Journal
	maint    *service.MaintenanceService
	log      *zap.Logger

	page   page
	modal  modalState
	keys   keyMap
	help   help.Model
	spin   spinner.Model
	width  int
	busy   int
	status string
	isErr  bool

	apiState  apiState
	companies []api.Company

	session    *service.Session
	market     *service.MarketService
	sessionGen int

	stats        api.DashboardStats
	matches      []api.Match
	inventory    []api.InventoryItem
	ranking      []api.ESGRanking
	offers       []api.ResidueOffer
	sampleOffers bool
	history      service.History

	matchCursor int
	offerCursor int

	login     loginForm
	roi       roiForm
	roiResult *api.ROIResult
	offerForm offerForm
	filter    market.OfferFilter
	search    textinput.Model
	searching bool

	pollEvery  time.Duration
	pollGen    int
	invUpdates int
	invAt      time.Time
}

// Journal groups the local activity repos. Any of them may be nil.
type Journal struct {
	ROI         *repository.RoiCalculationRepo
	Interests   *repository.OfferInterestRepo
	Acceptances *repository.MatchAcceptanceRepo
}

// Deps are the collaborators New wires into the App.
type Deps struct {
	Config      config.Config
	Client      *api.Client
	Sessions    *service.SessionService
	Journal     Journal
	Maintenance *service.MaintenanceService
	Log         *zap.Logger
}

type page string

const (
	pageLogin      page = "login"
	pageDashboard  page = "dashboard"
	pageMatches    page = "matches"
	pageCalculator page = "calculator"
	pageInventory  page = "inventory"
	pageESG        page = "esg"
	pageOffers     page = "offers"
	pageHistory    page = "history"
)

// pages reachable after login, in tab order.
var pages = []page{pageDashboard, pageMatches, pageCalculator, pageInventory, pageESG, pageOffers, pageHistory}

var pageTitles = map[page]string{
	pageDashboard:  "Dashboard",
	pageMatches:    "Matches",
	pageCalculator: "Calculadora ROI",
	pageInventory:  "Inventário",
	pageESG:        "Ranking ESG",
	pageOffers:     "Ofertas",
	pageHistory:    "Histórico",
}

type modalState string

const (
	modalNone         modalState = ""
	modalMatchDetail  modalState = "matchDetail"
	modalNewOffer     modalState = "newOffer"
	modalConfirmReset modalState = "confirmReset"
)

type apiState int

const (
	apiUnknown apiState = iota
	apiNotConfigured
	apiConnected
	apiDown
)

func New(ctx context.Context, deps Deps) *App {
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}
	p, err := prefs.Load()
	if err != nil {
		log.Warn("load prefs", zap.Error(err))
	}
	search := newInput("buscar por nome, descrição ou empresa", 80)
	search.SetValue(p.OfferFilter.Search)

	a := &App{
		ctx:       ctx,
		cfg:       deps.Config,
		client:    deps.Client,
		sessions:  deps.Sessions,
		journal:   deps.Journal,
		maint:     deps.Maintenance,
		log:       log,
		page:      pageLogin,
		keys:      newKeyMap(),
		help:      help.New(),
		spin:      spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(infoStyle)),
		login:     newLoginForm(p.LastEmail),
		roi:       newROIForm(),
		filter:    p.OfferFilter,
		search:    search,
		pollEvery: deps.Config.UI.PollInterval,
	}
	if a.pollEvery <= 0 {
		a.pollEvery = service.DefaultPollInterval
	}
	if a.client == nil {
		a.apiState = apiNotConfigured
	}
	return a
}

func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink}
	if a.client != nil {
		cmds = append(cmds, a.checkHealth(), a.loadCompanies(), a.restoreSession())
	}
	return tea.Batch(cmds...)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = m.Width
		a.help.Width = m.Width
		return a, nil
	case tea.KeyMsg:
		if m.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.modal != modalNone {
			return a.handleModalKey(m)
		}
		switch a.page {
		case pageLogin:
			return a.handleLoginKey(m)
		case pageCalculator:
			if a.roi.editing {
				return a.handleROIEditKey(m)
			}
		case pageOffers:
			if a.searching {
				return a.handleSearchKey(m)
			}
		}
		return a.handlePageKey(m)
	case spinner.TickMsg:
		if a.busy == 0 {
			return a, nil
		}
		var cmd tea.Cmd
		a.spin, cmd = a.spin.Update(m)
		return a, cmd

	case healthMsg:
		if m.err != nil {
			a.apiState = apiDown
			a.log.Warn("api health check failed", zap.Error(m.err))
		} else {
			a.apiState = apiConnected
		}
	case companiesMsg:
		a.companies = []api.Company(m)
	case finishedMsg:
		a.done()
		return a.Update(m.msg)
	case sessionMsg:
		if m.gen != a.sessionGen {
			a.log.Debug("dropping result from ended session", zap.Int("gen", m.gen), zap.Int("current", a.sessionGen))
			return a, nil
		}
		return a.Update(m.msg)
	case loggedInMsg:
		return a, a.startSession(m.session, "Login realizado")
	case restoredMsg:
		if a.session != nil {
			return a, nil
		}
		return a, a.startSession(m.session, "Sessão restaurada")
	case snapshotMsg:
		a.stats = m.Stats
		a.matches = m.Matches
		a.inventory = m.Inventory
		a.ranking = m.Ranking
		a.offers = m.Offers
		a.sampleOffers = m.SampleOffer
		a.clampCursors()
	case statsMsg:
		a.stats = api.DashboardStats(m)
	case matchesMsg:
		a.matches = []api.Match(m)
		a.clampCursors()
	case inventoryMsg:
		if m.err != nil {
			return a, a.handleError(m.err)
		}
		a.inventory = m.items
		a.invUpdates++
		a.invAt = time.Now()
	case inventoryTickMsg:
		if m.gen != a.pollGen || a.page != pageInventory || a.session == nil {
			return a, nil
		}
		return a, tea.Batch(a.loadInventory(), a.tickInventory())
	case rankingMsg:
		a.ranking = []api.ESGRanking(m)
	case offersMsg:
		a.offers = m.offers
		a.sampleOffers = m.sample
		a.clampCursors()
	case matchAcceptedMsg:
		a.modal = modalNone
		a.setStatus(service.MsgMatchAccepted)
		return a, tea.Batch(a.loadMatches(), a.loadHistory())
	case roiMsg:
		res := api.ROIResult(m)
		a.roiResult = &res
		a.setStatus("Cálculo concluído")
		return a, a.loadHistory()
	case offerCreatedMsg:
		a.modal = modalNone
		a.setStatus(service.MsgOfferCreated + " " + m.Name)
		return a, a.loadOffers()
	case historyMsg:
		a.history = service.History(m)
	case resetDoneMsg:
		a.setStatus("Histórico local apagado")
		return a, a.loadHistory()
	case statusMsg:
		a.setStatus(string(m))
	case errMsg:
		return a, a.handleError(m.error)
	}
	return a, nil
}

func (a *App) handleLoginKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case m.String() == "esc":
		return a, tea.Quit
	case m.String() == "enter":
		if a.login.focus == loginEmail && a.login.value(loginPassword) == "" {
			return a, a.login.next()
		}
		form := a.login.values()
		if err := form.Validate(); err != nil {
			a.setError(err.Error())
			return a, nil
		}
		a.setStatus("Entrando...")
		return a, a.start(a.doLogin(form))
	case key.Matches(m, a.keys.NextField):
		return a, a.login.next()
	case key.Matches(m, a.keys.PrevField):
		return a, a.login.prev()
	}
	return a, a.login.update(m)
}

func (a *App) handlePageKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := a.keys
	switch {
	case key.Matches(m, k.Quit):
		return a, tea.Quit
	case key.Matches(m, k.NextPage):
		return a, a.gotoPage(a.pageOffset(1))
	case key.Matches(m, k.PrevPage):
		return a, a.gotoPage(a.pageOffset(-1))
	case key.Matches(m, k.GotoPage):
		idx := int(m.Runes[0] - '1')
		return a, a.gotoPage(pages[idx])
	case key.Matches(m, k.Logout):
		return a, a.logout("Sessão encerrada")
	}

	switch a.page {
	case pageDashboard:
		if key.Matches(m, k.Refresh) {
			return a, a.start(a.loadSnapshot())
		}
	case pageMatches:
		return a.handleMatchesKey(m)
	case pageCalculator:
		if key.Matches(m, k.Edit) {
			a.roi.editing = true
			return a, a.roi.focusAt(a.roi.focus)
		}
	case pageInventory:
		if key.Matches(m, k.Refresh) {
			return a, a.loadInventory()
		}
	case pageESG:
		if key.Matches(m, k.Refresh) {
			return a, a.start(a.loadRanking())
		}
	case pageOffers:
		return a.handleOffersKey(m)
	case pageHistory:
		switch {
		case key.Matches(m, k.Refresh):
			return a, a.loadHistory()
		case key.Matches(m, k.Reset):
			a.modal = modalConfirmReset
		}
	}
	return a, nil
}

func (a *App) handleMatchesKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := a.keys
	switch {
	case key.Matches(m, k.Up):
		if a.matchCursor > 0 {
			a.matchCursor--
		}
	case key.Matches(m, k.Down):
		if a.matchCursor < len(a.matches)-1 {
			a.matchCursor++
		}
	case key.Matches(m, k.Select):
		if len(a.matches) > 0 {
			a.modal = modalMatchDetail
		}
	case key.Matches(m, k.Accept):
		if len(a.matches) > 0 {
			return a, a.start(a.acceptMatch(a.matches[a.matchCursor]))
		}
	case key.Matches(m, k.Refresh):
		return a, a.start(a.loadMatches())
	}
	return a, nil
}

func (a *App) handleROIEditKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case m.String() == "esc":
		a.roi.editing = false
		a.roi.blurAll()
		return a, nil
	case m.String() == "enter":
		a.roi.editing = false
		a.roi.blurAll()
		a.setStatus("Calculando...")
		return a, a.start(a.calculateROI(a.roi.values()))
	case key.Matches(m, a.keys.NextField):
		return a, a.roi.next()
	case key.Matches(m, a.keys.PrevField):
		return a, a.roi.prev()
	}
	return a, a.roi.update(m)
}

func (a *App) handleOffersKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := a.keys
	switch {
	case key.Matches(m, k.Up):
		if a.offerCursor > 0 {
			a.offerCursor--
		}
	case key.Matches(m, k.Down):
		if a.offerCursor < len(a.visibleOffers())-1 {
			a.offerCursor++
		}
	case key.Matches(m, k.Search):
		a.searching = true
		return a, a.search.Focus()
	case key.Matches(m, k.Category):
		a.filter.Category = market.NextCategory(a.filter.Category)
		a.filterChanged()
	case key.Matches(m, k.Urgency):
		a.filter.Urgency = market.NextUrgency(a.filter.Urgency)
		a.filterChanged()
	case key.Matches(m, k.Clear):
		a.filter = market.OfferFilter{}
		a.search.SetValue("")
		a.filterChanged()
	case key.Matches(m, k.NewOffer):
		a.offerForm = newOfferForm()
		a.modal = modalNewOffer
		return a, textinput.Blink
	case key.Matches(m, k.Interest):
		visible := a.visibleOffers()
		if len(visible) > 0 {
			return a, a.registerInterest(visible[a.offerCursor])
		}
	case key.Matches(m, k.Refresh):
		return a, a.start(a.loadOffers())
	}
	return a, nil
}

func (a *App) handleSearchKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.String() {
	case "enter", "esc":
		a.searching = false
		a.search.Blur()
		return a, nil
	}
	var cmd tea.Cmd
	a.search, cmd = a.search.Update(m)
	if a.filter.Search != a.search.Value() {
		a.filter.Search = a.search.Value()
		a.filterChanged()
	}
	return a, cmd
}

func (a *App) handleModalKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := a.keys
	switch a.modal {
	case modalMatchDetail:
		switch {
		case key.Matches(m, k.Back):
			a.modal = modalNone
		case key.Matches(m, k.Accept):
			return a, a.start(a.acceptMatch(a.matches[a.matchCursor]))
		}
	case modalConfirmReset:
		switch {
		case key.Matches(m, k.Confirm):
			a.modal = modalNone
			return a, a.start(a.resetJournal())
		case key.Matches(m, k.Deny):
			a.modal = modalNone
		}
	case modalNewOffer:
		f := &a.offerForm
		switch {
		case m.String() == "esc":
			a.modal = modalNone
		case m.String() == "enter":
			form := f.values()
			if _, err := form.Validate(); err != nil {
				a.setError(err.Error())
				return a, nil
			}
			a.setStatus("Publicando oferta...")
			return a, a.start(a.createOffer(form))
		case key.Matches(m, k.NextField):
			return a, f.move(1)
		case key.Matches(m, k.PrevField):
			return a, f.move(-1)
		case f.onChoice() && key.Matches(m, k.Cycle):
			delta := 1
			if m.String() == "left" {
				delta = -1
			}
			f.cycle(delta)
		case !f.onChoice():
			return a, f.update(m)
		}
	}
	return a, nil
}

// gotoPage switches pages. Entering the inventory page starts a fresh
// polling loop; leaving it lets the pending tick lapse.
func (a *App) gotoPage(p page) tea.Cmd {
	if a.session == nil {
		return nil
	}
	a.page = p
	a.modal = modalNone
	switch p {
	case pageInventory:
		a.pollGen++
		return tea.Batch(a.loadInventory(), a.tickInventory())
	case pageHistory:
		return a.loadHistory()
	}
	return nil
}

func (a *App) pageOffset(delta int) page {
	idx := 0
	for i, p := range pages {
		if p == a.page {
			idx = i
		}
	}
	return pages[(idx+delta+len(pages))%len(pages)]
}

func (a *App) startSession(sess service.Session, msg string) tea.Cmd {
	a.sessionGen++
	a.session = &sess
	a.market = &service.MarketService{
		Client:      sess.Client,
		ROI:         a.journal.ROI,
		Interests:   a.journal.Interests,
		Acceptances: a.journal.Acceptances,
		Log:         a.log,
	}
	a.page = pageDashboard
	a.login = newLoginForm(sess.Email)
	a.setStatus(msg + " - " + sess.Email)
	return a.start(a.loadSnapshot())
}

func (a *App) logout(msg string) tea.Cmd {
	email := ""
	if a.session != nil {
		email = a.session.Email
	}
	if a.sessions != nil {
		if err := a.sessions.Logout(); err != nil {
			a.log.Warn("logout", zap.Error(err))
		}
	}
	a.session = nil
	a.market = nil
	a.sessionGen++
	a.page = pageLogin
	a.modal = modalNone
	a.pollGen++
	a.stats = api.DashboardStats{}
	a.matches, a.inventory, a.ranking, a.offers = nil, nil, nil, nil
	a.roiResult = nil
	a.invUpdates = 0
	a.login = newLoginForm(email)
	a.setStatus(msg)
	return textinput.Blink
}

// handleError logs err and shows it. An expired token ends the session.
func (a *App) handleError(err error) tea.Cmd {
	a.log.Error("action failed", zap.String("page", string(a.page)), zap.Error(err))
	if a.session != nil && errors.Is(err, api.ErrUnauthorized) {
		return a.logout("Sessão expirada. Faça login novamente.")
	}
	a.setError(UserMessage(err))
	return nil
}

func (a *App) filterChanged() {
	a.offerCursor = 0
	f := a.filter
	if err := prefs.Update(func(p *prefs.Prefs) { p.OfferFilter = f }); err != nil {
		a.log.Warn("save filter", zap.Error(err))
	}
}

func (a *App) visibleOffers() []api.ResidueOffer {
	return a.filter.Apply(a.offers)
}

func (a *App) clampCursors() {
	if a.matchCursor >= len(a.matches) {
		a.matchCursor = 0
	}
	if a.offerCursor >= len(a.visibleOffers()) {
		a.offerCursor = 0
	}
}

func (a *App) setStatus(s string) {
	a.status = s
	a.isErr = false
}

func (a *App) setError(s string) {
	a.status = s
	a.isErr = true
}

// start marks a request in flight and keeps the spinner going until its
// result arrives wrapped in finishedMsg.
func (a *App) start(cmd tea.Cmd) tea.Cmd {
	a.busy++
	wrapped := func() tea.Msg { return finishedMsg{msg: cmd()} }
	if a.busy == 1 {
		return tea.Batch(wrapped, a.spin.Tick)
	}
	return wrapped
}

func (a *App) done() {
	if a.busy > 0 {
		a.busy--
	}
}
