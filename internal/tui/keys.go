package tui

import (
	"github.com/charmbracelet/bubbles/key"
)

type keyMap struct {
	Quit      key.Binding
	NextPage  key.Binding
	PrevPage  key.Binding
	GotoPage  key.Binding
	Up        key.Binding
	Down      key.Binding
	Select    key.Binding
	Back      key.Binding
	Refresh   key.Binding
	Logout    key.Binding
	Accept    key.Binding
	Edit      key.Binding
	NextField key.Binding
	PrevField key.Binding
	Search    key.Binding
	Category  key.Binding
	Urgency   key.Binding
	Clear     key.Binding
	NewOffer  key.Binding
	Interest  key.Binding
	Cycle     key.Binding
	Reset     key.Binding
	Confirm   key.Binding
	Deny      key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "sair")),
		NextPage:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "próxima aba")),
		PrevPage:  key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "aba anterior")),
		GotoPage:  key.NewBinding(key.WithKeys("1", "2", "3", "4", "5", "6", "7"), key.WithHelp("1-7", "ir para aba")),
		Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "subir")),
		Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "descer")),
		Select:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "detalhes")),
		Back:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "voltar")),
		Refresh:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "atualizar")),
		Logout:    key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "sair da conta")),
		Accept:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "aceitar match")),
		Edit:      key.NewBinding(key.WithKeys("e", "enter"), key.WithHelp("e", "editar")),
		NextField: key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "próximo campo")),
		PrevField: key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("shift+tab", "campo anterior")),
		Search:    key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "buscar")),
		Category:  key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "categoria")),
		Urgency:   key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "urgência")),
		Clear:     key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "limpar filtros")),
		NewOffer:  key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "nova oferta")),
		Interest:  key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "tenho interesse")),
		Cycle:     key.NewBinding(key.WithKeys("left", "right", " "), key.WithHelp("←/→", "alternar opção")),
		Reset:     key.NewBinding(key.WithKeys("X"), key.WithHelp("X", "limpar histórico")),
		Confirm:   key.NewBinding(key.WithKeys("y", "Y"), key.WithHelp("y", "sim")),
		Deny:      key.NewBinding(key.WithKeys("n", "N", "esc"), key.WithHelp("n", "não")),
	}
}

// pageHelp adapts the bindings relevant to one screen to help.KeyMap.
type pageHelp []key.Binding

func (p pageHelp) ShortHelp() []key.Binding  { return p }
func (p pageHelp) FullHelp() [][]key.Binding { return [][]key.Binding{p} }

func (a *App) helpFor() pageHelp {
	k := a.keys
	nav := []key.Binding{k.GotoPage, k.NextPage, k.Logout, k.Quit}
	switch a.modal {
	case modalMatchDetail:
		return pageHelp{k.Accept, k.Back}
	case modalNewOffer:
		return pageHelp{k.NextField, k.Cycle, k.Select, k.Back}
	case modalConfirmReset:
		return pageHelp{k.Confirm, k.Deny}
	}
	switch a.page {
	case pageLogin:
		return pageHelp{k.NextField, k.Select, k.Quit}
	case pageMatches:
		return append(pageHelp{k.Up, k.Down, k.Select, k.Accept, k.Refresh}, nav...)
	case pageCalculator:
		if a.roi.editing {
			return pageHelp{k.NextField, k.Select, k.Back}
		}
		return append(pageHelp{k.Edit}, nav...)
	case pageOffers:
		if a.searching {
			return pageHelp{k.Select, k.Back}
		}
		return append(pageHelp{k.Up, k.Down, k.Search, k.Category, k.Urgency, k.Clear, k.NewOffer, k.Interest}, nav...)
	case pageHistory:
		return append(pageHelp{k.Refresh, k.Reset}, nav...)
	default:
		return append(pageHelp{k.Refresh}, nav...)
	}
}
