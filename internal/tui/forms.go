package tui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/reciloop/reciloop/internal/market"
)

func newInput(placeholder string, limit int) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = ""
	ti.CharLimit = limit
	ti.Width = 40
	return ti
}

// fieldSet is an ordered group of text inputs with one focused at a time.
type fieldSet struct {
	inputs []textinput.Model
	focus  int
}

func (f *fieldSet) focusAt(i int) tea.Cmd {
	if len(f.inputs) == 0 {
		return nil
	}
	f.focus = (i + len(f.inputs)) % len(f.inputs)
	for j := range f.inputs {
		f.inputs[j].Blur()
	}
	return f.inputs[f.focus].Focus()
}

func (f *fieldSet) next() tea.Cmd { return f.focusAt(f.focus + 1) }
func (f *fieldSet) prev() tea.Cmd { return f.focusAt(f.focus - 1) }

func (f *fieldSet) blurAll() {
	for j := range f.inputs {
		f.inputs[j].Blur()
	}
}

func (f *fieldSet) update(msg tea.Msg) tea.Cmd {
	if len(f.inputs) == 0 {
		return nil
	}
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

func (f *fieldSet) value(i int) string { return f.inputs[i].Value() }

// login page

const (
	loginEmail = iota
	loginPassword
)

type loginForm struct {
	fieldSet
}

func newLoginForm(lastEmail string) loginForm {
	email := newInput("empresa@example.com", 120)
	email.SetValue(lastEmail)
	password := newInput("senha", 120)
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	f := loginForm{fieldSet{inputs: []textinput.Model{email, password}}}
	if lastEmail != "" {
		f.focusAt(loginPassword)
	} else {
		f.focusAt(loginEmail)
	}
	return f
}

func (f loginForm) values() market.LoginForm {
	return market.LoginForm{Email: f.value(loginEmail), Password: f.value(loginPassword)}
}

// ROI calculator

const (
	roiWasteType = iota
	roiVolume
	roiDisposalCost
	roiMarketPrice
)

var roiLabels = []string{"Tipo de resíduo", "Volume (ton/mês)", "Custo de descarte (R$/ton)", "Preço de mercado (R$/ton)"}

type roiForm struct {
	fieldSet
	editing bool
}

func newROIForm() roiForm {
	d := market.DefaultROIForm()
	values := []string{d.WasteType, d.Volume, d.DisposalCost, d.MarketPrice}
	inputs := make([]textinput.Model, len(values))
	for i, v := range values {
		inputs[i] = newInput(roiLabels[i], 40)
		inputs[i].SetValue(v)
	}
	return roiForm{fieldSet: fieldSet{inputs: inputs}}
}

func (f roiForm) values() market.ROIForm {
	return market.ROIForm{
		WasteType:    f.value(roiWasteType),
		Volume:       f.value(roiVolume),
		DisposalCost: f.value(roiDisposalCost),
		MarketPrice:  f.value(roiMarketPrice),
	}
}

// new-offer modal: four text inputs followed by three choice fields

const (
	offerName = iota
	offerDescription
	offerQuantity
	offerPrice
	offerCategory
	offerUnit
	offerUrgency
	offerFieldCount
)

var offerLabels = []string{"Nome", "Descrição", "Quantidade", "Preço (R$/unidade)", "Categoria", "Unidade", "Urgência"}

type offerForm struct {
	fieldSet
	cursor   int
	category int
	unit     int
	urgency  int
}

func newOfferForm() offerForm {
	placeholders := []string{"Borra Oleosa", "Origem e composição do material", "150", "200"}
	inputs := make([]textinput.Model, len(placeholders))
	for i, p := range placeholders {
		inputs[i] = newInput(p, 200)
	}
	f := offerForm{fieldSet: fieldSet{inputs: inputs}, urgency: 1}
	f.focusAt(offerName)
	return f
}

func (f *offerForm) move(delta int) tea.Cmd {
	f.cursor = (f.cursor + delta + offerFieldCount) % offerFieldCount
	if f.cursor < len(f.inputs) {
		return f.focusAt(f.cursor)
	}
	f.blurAll()
	return nil
}

func (f *offerForm) onChoice() bool { return f.cursor >= len(f.inputs) }

func (f *offerForm) cycle(delta int) {
	step := func(v, n int) int { return (v + delta + n) % n }
	switch f.cursor {
	case offerCategory:
		f.category = step(f.category, len(market.Categories))
	case offerUnit:
		f.unit = step(f.unit, len(market.Units))
	case offerUrgency:
		f.urgency = step(f.urgency, len(market.UrgencyLevels))
	}
}

func (f offerForm) choice(field int) string {
	switch field {
	case offerCategory:
		return market.Categories[f.category]
	case offerUnit:
		return market.Units[f.unit]
	case offerUrgency:
		return market.UrgencyLevels[f.urgency].Label()
	}
	return ""
}

func (f offerForm) values() market.OfferForm {
	return market.OfferForm{
		Name:        f.value(offerName),
		Description: f.value(offerDescription),
		Quantity:    f.value(offerQuantity),
		Price:       f.value(offerPrice),
		Category:    market.Categories[f.category],
		Unit:        market.Units[f.unit],
		Urgency:     string(market.UrgencyLevels[f.urgency]),
	}
}
