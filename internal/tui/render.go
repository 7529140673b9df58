package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/reciloop/reciloop/internal/format"
	"github.com/reciloop/reciloop/internal/market"
)

// testAccounts are the demo logins seeded by the backend.
var testAccounts = []string{
	"refinaria@example.com",
	"cimpor@example.com",
	"petroquimica@example.com",
	"bunge@example.com",
}

func (a *App) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("♻ ReciLoop"))
	if a.session != nil {
		b.WriteString(mutedStyle.Render("  " + a.session.Email))
		b.WriteString("\n" + a.renderTabs())
	}
	b.WriteString("\n\n")

	var body string
	switch a.page {
	case pageLogin:
		body = a.renderLogin()
	case pageMatches:
		body = a.renderMatches()
	case pageCalculator:
		body = a.renderCalculator()
	case pageInventory:
		body = a.renderInventory()
	case pageESG:
		body = a.renderESG()
	case pageOffers:
		body = a.renderOffers()
	case pageHistory:
		body = a.renderHistory()
	default:
		body = a.renderDashboard()
	}
	b.WriteString(body)
	if a.modal != modalNone {
		b.WriteString("\n\n" + modalStyle.Render(a.renderModal()))
	}
	b.WriteString("\n\n" + a.renderStatus())
	b.WriteString("\n" + a.help.View(a.helpFor()))
	return b.String()
}

func (a *App) renderTabs() string {
	tabs := make([]string, 0, len(pages))
	for i, p := range pages {
		label := fmt.Sprintf("%d %s", i+1, pageTitles[p])
		if p == a.page {
			tabs = append(tabs, activeTabStyle.Render(label))
		} else {
			tabs = append(tabs, tabStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (a *App) renderStatus() string {
	line := ""
	if a.busy > 0 {
		line = a.spin.View() + " "
	}
	switch {
	case a.status == "":
		return line
	case a.isErr:
		return line + errorStyle.Render(a.status)
	default:
		return line + successStyle.Render(a.status)
	}
}

func (a *App) apiStatusLine() string {
	switch a.apiState {
	case apiNotConfigured:
		return warningStyle.Render("● API não configurada (RECILOOP_API_BASE_URL)")
	case apiConnected:
		return successStyle.Render("● API conectada: " + a.client.BaseURL())
	case apiDown:
		return errorStyle.Render("● API indisponível: " + a.client.BaseURL())
	default:
		return mutedStyle.Render("● verificando API...")
	}
}

func (a *App) renderLogin() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Entrar") + "\n")
	b.WriteString(mutedStyle.Render("Marketplace de resíduos industriais") + "\n\n")
	labels := []string{"Email", "Senha"}
	for i, in := range a.login.inputs {
		marker := "  "
		if i == a.login.focus {
			marker = selectedStyle.Render("▶ ")
		}
		fmt.Fprintf(&b, "%s%-6s %s\n", marker, labelStyle.Render(labels[i]), in.View())
	}
	b.WriteString("\n" + a.apiStatusLine() + "\n")
	if len(a.companies) > 0 {
		fmt.Fprintf(&b, "%s\n", mutedStyle.Render(fmt.Sprintf("%d empresas cadastradas", len(a.companies))))
	}
	b.WriteString("\n" + labelStyle.Render("Contas de teste (senha: senha)") + "\n")
	for _, acct := range testAccounts {
		b.WriteString(mutedStyle.Render("  "+acct) + "\n")
	}
	return b.String()
}

func kpiCard(label, value string) string {
	return cardStyle.Render(labelStyle.Render(label) + "\n" + valueStyle.Render(value))
}

func (a *App) renderDashboard() string {
	s := a.stats
	cards := lipgloss.JoinHorizontal(lipgloss.Top,
		kpiCard("Economia total", format.Currency(s.TotalSavings)),
		kpiCard("CO₂ evitado", format.Number(s.CO2Avoided)+" ton"),
		kpiCard("Matches concluídos", format.Integer(int64(s.MatchesCompleted))),
		kpiCard("Materiais movimentados", format.Number(s.MaterialsMoved)+" ton"),
	)
	var b strings.Builder
	b.WriteString(headerStyle.Render("Visão geral") + "\n")
	b.WriteString(cards + "\n\n")

	b.WriteString(headerStyle.Render("Economia mensal") + "\n")
	if len(s.MonthlyTrend) == 0 {
		b.WriteString(mutedStyle.Render("Sem dados de tendência") + "\n")
	} else {
		peak := 0.0
		for _, m := range s.MonthlyTrend {
			if m.Savings > peak {
				peak = m.Savings
			}
		}
		for _, m := range s.MonthlyTrend {
			pct := 0.0
			if peak > 0 {
				pct = m.Savings / peak * 100
			}
			fmt.Fprintf(&b, "%-5s %s %s\n", m.Month, infoStyle.Render(market.ESGRing(pct, 30)), format.Currency(m.Savings))
		}
	}

	if len(a.matches) > 0 {
		b.WriteString("\n" + headerStyle.Render("Melhores matches") + "\n")
		for i, m := range a.matches {
			if i == 3 {
				break
			}
			fmt.Fprintf(&b, "%s  %s → %s  %s\n",
				scoreStyle(m.Score).Render(fmt.Sprintf("%3.0f%%", m.Score)),
				m.Waste.Name, m.ConsumerCompany.Name, successStyle.Render(format.Currency(m.EstimatedSavings)))
		}
	}
	return b.String()
}

func (a *App) renderMatches() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Matches sugeridos") + "\n")
	if len(a.matches) == 0 {
		b.WriteString(mutedStyle.Render("Nenhum match disponível no momento."))
		return b.String()
	}
	for i, m := range a.matches {
		marker := "  "
		if i == a.matchCursor {
			marker = selectedStyle.Render("▶ ")
		}
		status := ""
		if m.Status != "" {
			status = mutedStyle.Render(" [" + m.Status + "]")
		}
		fmt.Fprintf(&b, "%s%s  %-22s %s → %s  %s%s\n",
			marker,
			scoreStyle(m.Score).Render(fmt.Sprintf("%3.0f%%", m.Score)),
			m.Waste.Name,
			m.GeneratorCompany.Name,
			m.ConsumerCompany.Name,
			successStyle.Render(format.Currency(m.EstimatedSavings)),
			status)
	}
	return b.String()
}

func (a *App) renderMatchDetail() string {
	m := a.matches[a.matchCursor]
	bd := market.ScoreBreakdown(m.Score)
	tier := market.ScoreTier(m.Score)
	var b strings.Builder
	b.WriteString(titleStyle.Render("Match #"+fmt.Sprint(m.ID)) + "\n\n")
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("Resíduo:"), textStyle.Render(m.Waste.Name))
	if m.Waste.Category != "" {
		fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("Categoria:"), m.Waste.Category)
	}
	if m.Waste.Quantity > 0 {
		fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("Quantidade:"), format.Quantity(m.Waste.Quantity, m.Waste.Unit))
	}
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("Gerador:"), m.GeneratorCompany.Name)
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("Consumidor:"), m.ConsumerCompany.Name)
	fmt.Fprintf(&b, "%s %s\n\n", labelStyle.Render("Economia estimada:"), successStyle.Render(format.Currency(m.EstimatedSavings)))
	fmt.Fprintf(&b, "%s %s (%s)\n", labelStyle.Render("Score:"), scoreStyle(m.Score).Render(format.Percent(m.Score)), tier.Label())
	for _, row := range []struct {
		label string
		value float64
	}{
		{"Compatibilidade química", bd.Chemical},
		{"Proximidade geográfica", bd.Geographic},
		{"Viabilidade econômica", bd.Economic},
	} {
		fmt.Fprintf(&b, "  %-24s %s %s\n", row.label, infoStyle.Render(market.ESGRing(row.value, 20)), format.Percent(row.value))
	}
	b.WriteString("\n[a] Aceitar match  [esc] Fechar")
	return b.String()
}

func (a *App) renderCalculator() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Calculadora de ROI") + "\n")
	for i, in := range a.roi.inputs {
		marker := "  "
		if a.roi.editing && i == a.roi.focus {
			marker = selectedStyle.Render("▶ ")
		}
		fmt.Fprintf(&b, "%s%-28s %s\n", marker, labelStyle.Render(roiLabels[i]), in.View())
	}
	if !a.roi.editing {
		b.WriteString(mutedStyle.Render("\n[e] editar valores e calcular") + "\n")
	}
	if r := a.roiResult; r != nil {
		b.WriteString("\n" + headerStyle.Render("Resultado") + "\n")
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
			kpiCard("Lucro potencial", format.Currency(r.PotentialProfit)),
			kpiCard("ROI", format.Percent(r.ROIPercentage)),
			kpiCard("Payback", format.Number(r.PaybackDays)+" dias"),
		))
	}
	return b.String()
}

func (a *App) renderInventory() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Inventário em tempo real") + "  ")
	last := "-"
	if !a.invAt.IsZero() {
		last = a.invAt.Format("15:04:05")
	}
	b.WriteString(mutedStyle.Render(fmt.Sprintf("Atualizações: %d  Última: %s  (a cada %s)", a.invUpdates, last, a.pollEvery)) + "\n")
	if len(a.inventory) == 0 {
		b.WriteString(mutedStyle.Render("Nenhum item no inventário."))
		return b.String()
	}
	sum := market.Summarize(a.inventory)
	fmt.Fprintf(&b, "%s  %s  %s\n\n",
		successStyle.Render(fmt.Sprintf("%d disponíveis", sum.Available)),
		warningStyle.Render(fmt.Sprintf("%d reservados", sum.Reserved)),
		infoStyle.Render(fmt.Sprintf("%d interessados", sum.Interested)))
	for _, it := range a.inventory {
		status := market.StatusLabel(it.Status)
		if market.Available(it) {
			status = successStyle.Render(status)
		} else {
			status = warningStyle.Render(status)
		}
		interested := ""
		if len(it.InterestedCompanies) > 0 {
			interested = mutedStyle.Render("  interessados: " + strings.Join(it.InterestedCompanies, ", "))
		}
		fmt.Fprintf(&b, "%-22s %-18s %14s  %s%s\n",
			it.Waste.Name, it.Company.Name, format.Quantity(it.Waste.Quantity, it.Waste.Unit), status, interested)
	}
	return b.String()
}

func (a *App) renderESG() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Ranking de circularidade ESG") + "\n")
	if len(a.ranking) == 0 {
		b.WriteString(mutedStyle.Render("Ranking indisponível."))
		return b.String()
	}
	for _, r := range a.ranking {
		fmt.Fprintf(&b, "%2dº %-22s %s %s  %s transações  %s  %s t CO₂\n",
			r.Position,
			r.CompanyName,
			scoreStyle(r.CircularScore).Render(market.ESGRing(r.CircularScore, 16)),
			format.Number(r.CircularScore),
			format.Integer(int64(r.TransactionsCount)),
			format.Currency(r.TotalSavings),
			format.Number(r.CO2Avoided))
	}
	return b.String()
}

func (a *App) renderOffers() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Marketplace de resíduos") + "\n")
	search := a.search.View()
	if !a.searching && a.filter.Search == "" {
		search = mutedStyle.Render("[/] buscar")
	}
	category := a.filter.Category
	if category == "" || category == market.All {
		category = "Todas"
	}
	fmt.Fprintf(&b, "%s  %s %s  %s %s\n",
		search,
		labelStyle.Render("Categoria:"), category,
		labelStyle.Render("Urgência:"), market.UrgencyLabel(a.filter.Urgency))
	if a.sampleOffers {
		b.WriteString(mutedStyle.Render("Exibindo ofertas de exemplo") + "\n")
	}
	b.WriteString("\n")

	visible := a.visibleOffers()
	if len(visible) == 0 {
		b.WriteString(mutedStyle.Render("Nenhuma oferta encontrada com os filtros atuais."))
		return b.String()
	}
	for i, o := range visible {
		marker := "  "
		if i == a.offerCursor {
			marker = selectedStyle.Render("▶ ")
		}
		u := market.Urgency(o.Urgency)
		fmt.Fprintf(&b, "%s%-20s %-18s %14s  %s/%s  %s  %s  %s\n",
			marker, o.Name, o.Category,
			format.Quantity(o.Quantity, o.Unit),
			format.Currency(o.Price), o.Unit,
			urgencyStyle(o.Urgency).Render(u.Icon()+" "+u.Label()),
			mutedStyle.Render(o.Company),
			mutedStyle.Render(format.Date(o.CreatedAt)))
	}
	if sel := visible[a.offerCursor]; sel.Description != "" {
		b.WriteString("\n" + textStyle.Render(sel.Description))
	}
	return b.String()
}

func (a *App) renderHistory() string {
	h := a.history
	var b strings.Builder
	b.WriteString(headerStyle.Render("Histórico local") + "\n\n")

	b.WriteString(labelStyle.Render("Cálculos de ROI") + "\n")
	if len(h.Calculations) == 0 {
		b.WriteString(mutedStyle.Render("  nenhum") + "\n")
	}
	for _, c := range h.Calculations {
		fmt.Fprintf(&b, "  %s  %-18s %s  ROI %s  payback %s dias\n",
			mutedStyle.Render(c.CreatedAt.Local().Format("02/01 15:04")), c.WasteType,
			format.Currency(c.PotentialProfit), format.Percent(c.ROIPercentage), format.Number(c.PaybackDays))
	}

	b.WriteString("\n" + labelStyle.Render("Matches aceitos") + "\n")
	if len(h.Acceptances) == 0 {
		b.WriteString(mutedStyle.Render("  nenhum") + "\n")
	}
	for _, m := range h.Acceptances {
		fmt.Fprintf(&b, "  %s  #%d %s → %s (%s)\n",
			mutedStyle.Render(m.CreatedAt.Local().Format("02/01 15:04")), m.MatchID, m.WasteName, m.Consumer, format.Percent(m.Score))
	}

	b.WriteString("\n" + labelStyle.Render("Interesses registrados") + "\n")
	if len(h.Interests) == 0 {
		b.WriteString(mutedStyle.Render("  nenhum") + "\n")
	}
	for _, i := range h.Interests {
		fmt.Fprintf(&b, "  %s  %s (%s)\n",
			mutedStyle.Render(i.CreatedAt.Local().Format("02/01 15:04")), i.OfferName, i.Company)
	}
	return b.String()
}

func (a *App) renderModal() string {
	switch a.modal {
	case modalMatchDetail:
		return a.renderMatchDetail()
	case modalConfirmReset:
		return titleStyle.Render("Apagar histórico local?") + "\nCálculos, interesses e aceites registrados neste computador serão removidos.\n[y] Sim  [n] Não"
	case modalNewOffer:
		return a.renderOfferForm()
	default:
		return ""
	}
}

func (a *App) renderOfferForm() string {
	f := a.offerForm
	var b strings.Builder
	b.WriteString(titleStyle.Render("Nova oferta de resíduo") + "\n\n")
	for i := 0; i < offerFieldCount; i++ {
		marker := "  "
		if i == f.cursor {
			marker = selectedStyle.Render("▶ ")
		}
		var value string
		if i < len(f.inputs) {
			value = f.inputs[i].View()
		} else {
			value = "‹ " + f.choice(i) + " ›"
		}
		fmt.Fprintf(&b, "%s%-20s %s\n", marker, labelStyle.Render(offerLabels[i]), value)
	}
	b.WriteString("\n[enter] Publicar  [esc] Cancelar")
	return b.String()
}
