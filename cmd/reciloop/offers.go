package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/reciloop/reciloop/internal/api"
	"github.com/reciloop/reciloop/internal/format"
	"github.com/reciloop/reciloop/internal/market"
	"github.com/reciloop/reciloop/internal/service"
)

func newInventoryCmd(e *env) *cobra.Command {
	var (
		watch    bool
		interval time.Duration
		count    int
	)
	cmd := &cobra.Command{
		Use:   "inventory",
		Short: "Inventário ao vivo de resíduos",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := e.session()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !watch {
				items, err := sess.Client.Inventory(cmd.Context())
				if err != nil {
					return err
				}
				return e.emit(out, items, func(w io.Writer) { printInventory(w, items) })
			}

			if interval <= 0 {
				interval = e.cfg.UI.PollInterval
			}
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			poller := &service.InventoryPoller{Source: sess.Client, Interval: interval, Log: e.log}
			for u := range poller.Run(ctx) {
				fmt.Fprintf(out, "Atualização #%d às %s\n", u.Seq, u.At.Format("15:04:05"))
				if u.Err != nil {
					fmt.Fprintf(out, "  %s\n", describe(u.Err))
				} else if err := e.emit(out, u.Items, func(w io.Writer) { printInventory(w, u.Items) }); err != nil {
					return err
				}
				if count > 0 && u.Seq >= count {
					cancel()
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "atualiza periodicamente até Ctrl+C")
	cmd.Flags().DurationVar(&interval, "interval", 0, "intervalo entre atualizações (padrão: ui.poll_interval)")
	cmd.Flags().IntVar(&count, "count", 0, "para após N atualizações (0 = sem limite)")
	return cmd
}

func printInventory(w io.Writer, items []api.InventoryItem) {
	if len(items) == 0 {
		fmt.Fprintln(w, "Inventário vazio.")
		return
	}
	rows := make([][]string, 0, len(items))
	for _, it := range items {
		rows = append(rows, []string{
			it.Waste.Name,
			it.Company.Name,
			format.Quantity(it.Waste.Quantity, it.Waste.Unit),
			market.StatusLabel(it.Status),
			strconv.Itoa(len(it.InterestedCompanies)),
			format.Date(it.LastUpdate),
		})
	}
	fmt.Fprintln(w, renderTable([]string{"Resíduo", "Empresa", "Quantidade", "Status", "Interessados", "Atualizado"}, rows))
	s := market.Summarize(items)
	fmt.Fprintf(w, "%d disponíveis, %d reservados, %d interessados\n", s.Available, s.Reserved, s.Interested)
}

func newOffersCmd(e *env) *cobra.Command {
	var search, category, urgency string
	cmd := &cobra.Command{
		Use:   "offers",
		Short: "Lista as ofertas de resíduos",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, note, err := buildFilter(search, category, urgency)
			if err != nil {
				return err
			}
			svc, err := e.market()
			if err != nil {
				return err
			}
			offers, sample, err := svc.Offers(cmd.Context())
			if err != nil {
				return err
			}
			visible := filter.Apply(offers)

			out := cmd.OutOrStdout()
			if note != "" {
				fmt.Fprintln(cmd.ErrOrStderr(), note)
			}
			return e.emit(out, visible, func(w io.Writer) {
				if sample {
					fmt.Fprintln(w, "Ofertas de exemplo (o marketplace ainda não tem ofertas).")
				}
				printOffers(w, visible)
			})
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "busca por nome ou empresa")
	cmd.Flags().StringVarP(&category, "category", "c", market.All, "categoria ("+strings.Join(market.Categories, ", ")+")")
	cmd.Flags().StringVarP(&urgency, "urgency", "u", market.All, "urgência (high, medium, low)")
	return cmd
}

// buildFilter resolves the offer flags. note is set when a category typo
// was corrected.
func buildFilter(search, category, urgency string) (market.OfferFilter, string, error) {
	f := market.OfferFilter{Search: strings.TrimSpace(search), Category: market.All, Urgency: market.All}

	resolved, ok := market.ResolveCategory(category)
	if !ok {
		if resolved != "" {
			return f, "", usagef("categoria desconhecida %q; você quis dizer %q?", category, resolved)
		}
		return f, "", usagef("categoria desconhecida %q", category)
	}
	f.Category = resolved
	note := ""
	if resolved != market.All && !strings.EqualFold(resolved, strings.TrimSpace(category)) {
		note = fmt.Sprintf("Usando categoria %q.", resolved)
	}

	if u := strings.TrimSpace(urgency); u != "" && !strings.EqualFold(u, market.All) {
		parsed, err := market.ParseUrgency(u)
		if err != nil {
			return f, "", usagef("urgência inválida %q: use high, medium ou low", urgency)
		}
		f.Urgency = string(parsed)
	}
	return f, note, nil
}

func printOffers(w io.Writer, offers []api.ResidueOffer) {
	if len(offers) == 0 {
		fmt.Fprintln(w, "Nenhuma oferta encontrada com os filtros atuais.")
		return
	}
	rows := make([][]string, 0, len(offers))
	for _, o := range offers {
		u := market.Urgency(o.Urgency)
		rows = append(rows, []string{
			strconv.Itoa(o.ID),
			o.Name,
			o.Category,
			format.Quantity(o.Quantity, o.Unit),
			format.Currency(o.Price) + "/" + o.Unit,
			o.Company,
			u.Icon() + " " + u.Label(),
		})
	}
	fmt.Fprintln(w, renderTable([]string{"ID", "Material", "Categoria", "Quantidade", "Preço", "Empresa", "Urgência"}, rows))
}

func newOfferCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "offer",
		Short: "Cria ofertas e registra interesse",
	}
	cmd.AddCommand(newOfferCreateCmd(e), newOfferInterestCmd(e))
	return cmd
}

func newOfferCreateCmd(e *env) *cobra.Command {
	form := market.NewOfferForm()
	var urgency string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Publica uma nova oferta",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			category, ok := market.ResolveCategory(form.Category)
			if !ok || category == market.All {
				return usagef("categoria inválida %q", form.Category)
			}
			form.Category = category
			u, err := market.ParseUrgency(urgency)
			if err != nil {
				return usagef("urgência inválida %q: use high, medium ou low", urgency)
			}
			form.Urgency = string(u)

			svc, err := e.market()
			if err != nil {
				return err
			}
			created, err := svc.CreateOffer(cmd.Context(), form)
			if err != nil {
				return err
			}
			return e.emit(cmd.OutOrStdout(), created, func(w io.Writer) {
				fmt.Fprintln(w, service.MsgOfferCreated)
				printOffers(w, []api.ResidueOffer{created})
			})
		},
	}
	cmd.Flags().StringVar(&form.Name, "name", "", "nome do material")
	cmd.Flags().StringVar(&form.Category, "category", form.Category, "categoria")
	cmd.Flags().StringVar(&form.Description, "description", "", "descrição")
	cmd.Flags().StringVar(&form.Quantity, "quantity", "", "quantidade")
	cmd.Flags().StringVar(&form.Unit, "unit", form.Unit, "unidade ("+strings.Join(market.Units, ", ")+")")
	cmd.Flags().StringVar(&form.Price, "price", "", "preço por unidade (R$)")
	cmd.Flags().StringVar(&urgency, "urgency", form.Urgency, "urgência (high, medium, low)")
	return cmd
}

func newOfferInterestCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "interest <offer-id>",
		Short: "Registra interesse em uma oferta",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil || id <= 0 {
				return usagef("id de oferta inválido: %q", args[0])
			}
			svc, err := e.market()
			if err != nil {
				return err
			}
			offers, _, err := svc.Offers(cmd.Context())
			if err != nil {
				return err
			}
			for _, o := range offers {
				if o.ID != id {
					continue
				}
				msg, err := svc.RegisterInterest(cmd.Context(), o)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), msg)
				return nil
			}
			return usagef("oferta #%d não encontrada", id)
		},
	}
}
