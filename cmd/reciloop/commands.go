package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/reciloop/reciloop/internal/api"
	"github.com/reciloop/reciloop/internal/config"
	"github.com/reciloop/reciloop/internal/database"
	"github.com/reciloop/reciloop/internal/database/repository"
	"github.com/reciloop/reciloop/internal/format"
	"github.com/reciloop/reciloop/internal/market"
	"github.com/reciloop/reciloop/internal/prefs"
	"github.com/reciloop/reciloop/internal/service"
)

func newLoginCmd(e *env) *cobra.Command {
	var form market.LoginForm
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Autentica na API e salva a sessão",
		Long: `Autentica na API e salva a sessão localmente para os demais comandos.
A senha também pode vir de RECILOOP_PASSWORD.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if form.Email == "" {
				if p, err := prefs.Load(); err == nil {
					form.Email = p.LastEmail
				}
			}
			if form.Password == "" {
				form.Password = os.Getenv("RECILOOP_PASSWORD")
			}
			sess, err := e.sessions.Login(cmd.Context(), form)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Login realizado: %s (empresa #%d)\n", sess.Email, sess.CompanyID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&form.Email, "email", "e", "", "e-mail da empresa (padrão: último usado)")
	cmd.Flags().StringVarP(&form.Password, "password", "p", "", "senha")
	return cmd
}

func newLogoutCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Encerra a sessão salva",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := e.sessions.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Sessão encerrada.")
			return nil
		},
	}
}

func newStatusCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Mostra API, sessão e diário local",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			if e.client == nil {
				fmt.Fprintln(out, "API:     não configurada (defina RECILOOP_API_BASE_URL ou `reciloop config set-url`)")
			} else if err := e.client.Health(cmd.Context()); err != nil {
				fmt.Fprintf(out, "API:     %s (indisponível: %s)\n", e.client.BaseURL(), describe(err))
			} else {
				fmt.Fprintf(out, "API:     %s (online)\n", e.client.BaseURL())
			}

			sess, err := e.session()
			switch {
			case err == nil:
				company, cerr := sess.Client.Company(cmd.Context(), sess.CompanyID)
				if cerr != nil {
					e.log.Debug("lookup session company", zap.Int("company_id", sess.CompanyID), zap.Error(cerr))
					fmt.Fprintf(out, "Sessão:  %s (empresa #%d)\n", sess.Email, sess.CompanyID)
				} else {
					fmt.Fprintf(out, "Sessão:  %s (%s, empresa #%d)\n", sess.Email, company.Name, sess.CompanyID)
				}
			case errors.Is(err, service.ErrNotLoggedIn), errors.Is(err, api.ErrNotConfigured):
				fmt.Fprintln(out, "Sessão:  nenhuma")
			default:
				e.log.Warn("restore session", zap.Error(err))
				fmt.Fprintf(out, "Sessão:  inválida (%s)\n", describe(err))
			}

			db, err := e.journal()
			if err != nil {
				return err
			}
			version, dirty, err := database.SchemaVersion(db)
			if err != nil {
				return err
			}
			calcs, err := repository.NewRoiCalculationRepo(db).Count(cmd.Context())
			if err != nil {
				return err
			}
			interests, err := repository.NewOfferInterestRepo(db).Count(cmd.Context())
			if err != nil {
				return err
			}
			accepted, err := repository.NewMatchAcceptanceRepo(db).Count(cmd.Context())
			if err != nil {
				return err
			}
			schema := fmt.Sprintf("v%d", version)
			if dirty {
				schema += " (dirty)"
			}
			fmt.Fprintf(out, "Diário:  %s, esquema %s: %d cálculos, %d interesses, %d matches aceitos\n",
				e.cfg.Database.Path, schema, calcs, interests, accepted)
			return nil
		},
	}
}

func newStatsCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "KPIs da empresa logada",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := e.session()
			if err != nil {
				return err
			}
			stats, err := sess.Client.DashboardStats(cmd.Context())
			if err != nil {
				return err
			}
			return e.emit(cmd.OutOrStdout(), stats, func(w io.Writer) {
				fmt.Fprintf(w, "Economia total:         %s\n", format.Currency(stats.TotalSavings))
				fmt.Fprintf(w, "CO₂ evitado:            %s\n", format.Quantity(stats.CO2Avoided, "ton"))
				fmt.Fprintf(w, "Matches concluídos:     %s\n", format.Integer(int64(stats.MatchesCompleted)))
				fmt.Fprintf(w, "Materiais movimentados: %s\n", format.Quantity(stats.MaterialsMoved, "ton"))
				if len(stats.MonthlyTrend) == 0 {
					return
				}
				rows := make([][]string, 0, len(stats.MonthlyTrend))
				for _, m := range stats.MonthlyTrend {
					rows = append(rows, []string{m.Month, format.Currency(m.Savings)})
				}
				fmt.Fprintln(w, renderTable([]string{"Mês", "Economia"}, rows))
			})
		},
	}
}

func newMatchesCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "matches",
		Short: "Lista os matches sugeridos",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := e.session()
			if err != nil {
				return err
			}
			matches, err := sess.Client.Matches(cmd.Context())
			if err != nil {
				return err
			}
			return e.emit(cmd.OutOrStdout(), matches, func(w io.Writer) {
				if len(matches) == 0 {
					fmt.Fprintln(w, "Nenhum match disponível.")
					return
				}
				rows := make([][]string, 0, len(matches))
				for _, m := range matches {
					rows = append(rows, []string{
						strconv.Itoa(m.ID),
						m.Waste.Name,
						m.GeneratorCompany.Name,
						m.ConsumerCompany.Name,
						format.Percent(m.Score),
						market.ScoreTier(m.Score).Label(),
						format.Currency(m.EstimatedSavings),
					})
				}
				fmt.Fprintln(w, renderTable(
					[]string{"ID", "Resíduo", "Gerador", "Consumidor", "Score", "Nível", "Economia"}, rows))
			})
		},
	}
}

func newAcceptCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "accept <match-id>",
		Short: "Aceita um match",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil || id <= 0 {
				return usagef("id de match inválido: %q", args[0])
			}
			svc, err := e.market()
			if err != nil {
				return err
			}
			match := api.Match{ID: id}
			if matches, err := svc.Client.Matches(cmd.Context()); err == nil {
				for _, m := range matches {
					if m.ID == id {
						match = m
						break
					}
				}
			}
			if _, err := svc.AcceptMatch(cmd.Context(), match); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), service.MsgMatchAccepted)
			return nil
		},
	}
}

func newESGCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "esg",
		Short: "Ranking ESG de circularidade",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := e.session()
			if err != nil {
				return err
			}
			ranking, err := sess.Client.ESGRanking(cmd.Context())
			if err != nil {
				return err
			}
			return e.emit(cmd.OutOrStdout(), ranking, func(w io.Writer) {
				if len(ranking) == 0 {
					fmt.Fprintln(w, "Ranking indisponível.")
					return
				}
				rows := make([][]string, 0, len(ranking))
				for _, r := range ranking {
					rows = append(rows, []string{
						fmt.Sprintf("#%d", r.Position),
						r.CompanyName,
						market.ESGRing(r.CircularScore, 10) + " " + format.Percent(r.CircularScore),
						market.ScoreTier(r.CircularScore).Label(),
						format.Integer(int64(r.TransactionsCount)),
						format.Currency(r.TotalSavings),
						format.Quantity(r.CO2Avoided, "ton"),
					})
				}
				fmt.Fprintln(w, renderTable(
					[]string{"Posição", "Empresa", "Score circular", "Nível", "Transações", "Economia", "CO₂ evitado"}, rows))
			})
		},
	}
}

func newROICmd(e *env) *cobra.Command {
	form := market.DefaultROIForm()
	cmd := &cobra.Command{
		Use:   "roi",
		Short: "Calcula o ROI de valorizar um resíduo",
		Long:  "Calcula o ROI de valorizar um resíduo. Não exige login.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := e.apiClient()
			if err != nil {
				return err
			}
			svc, err := e.marketFor(client)
			if err != nil {
				return err
			}
			res, err := svc.CalculateROI(cmd.Context(), form)
			if err != nil {
				return err
			}
			return e.emit(cmd.OutOrStdout(), res, func(w io.Writer) {
				fmt.Fprintf(w, "Resíduo:         %s\n", strings.TrimSpace(form.WasteType))
				fmt.Fprintf(w, "Lucro potencial: %s\n", format.Currency(res.PotentialProfit))
				fmt.Fprintf(w, "ROI:             %s\n", format.Percent(res.ROIPercentage))
				fmt.Fprintf(w, "Payback:         %s dias\n", format.Number(res.PaybackDays))
			})
		},
	}
	cmd.Flags().StringVar(&form.WasteType, "waste-type", form.WasteType, "tipo de resíduo")
	cmd.Flags().StringVar(&form.Volume, "volume", form.Volume, "volume mensal (ton)")
	cmd.Flags().StringVar(&form.DisposalCost, "disposal-cost", form.DisposalCost, "custo de descarte (R$/ton)")
	cmd.Flags().StringVar(&form.MarketPrice, "market-price", form.MarketPrice, "preço de mercado (R$/ton)")
	return cmd
}

func newCompaniesCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "companies",
		Short: "Lista as empresas do marketplace",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := e.apiClient()
			if err != nil {
				return err
			}
			companies, err := client.Companies(cmd.Context())
			if err != nil {
				return err
			}
			return e.emit(cmd.OutOrStdout(), companies, func(w io.Writer) {
				rows := make([][]string, 0, len(companies))
				for _, c := range companies {
					rows = append(rows, []string{strconv.Itoa(c.ID), c.Name, c.Type, c.Email})
				}
				fmt.Fprintln(w, renderTable([]string{"ID", "Empresa", "Tipo", "E-mail"}, rows))
				fmt.Fprintf(w, "%d empresas\n", len(companies))
			})
		},
	}
}

func newWastesCmd(e *env) *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "wastes",
		Short: "Lista os resíduos cadastrados",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := e.apiClient()
			if err != nil {
				return err
			}
			wastes, err := client.Wastes(cmd.Context(), strings.TrimSpace(category))
			if err != nil {
				return err
			}
			return e.emit(cmd.OutOrStdout(), wastes, func(w io.Writer) {
				if len(wastes) == 0 {
					fmt.Fprintln(w, "Nenhum resíduo encontrado.")
					return
				}
				rows := make([][]string, 0, len(wastes))
				for _, r := range wastes {
					avail := "não"
					if r.Available {
						avail = "sim"
					}
					rows = append(rows, []string{
						strconv.Itoa(r.ID),
						r.Name,
						r.Category,
						format.Quantity(r.Quantity, r.Unit),
						format.Currency(r.PricePerUnit) + "/" + r.Unit,
						strconv.Itoa(r.CompanyID),
						avail,
					})
				}
				fmt.Fprintln(w, renderTable([]string{"ID", "Resíduo", "Categoria", "Quantidade", "Preço", "Empresa #", "Disponível"}, rows))
			})
		},
	}
	cmd.Flags().StringVarP(&category, "category", "c", "", "filtra pela categoria exata do servidor")
	return cmd
}

func newHistoryCmd(e *env) *cobra.Command {
	var (
		limit int
		reset bool
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Mostra o diário local de atividades",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := e.journal()
			if err != nil {
				return err
			}
			if reset {
				maint := &service.MaintenanceService{DB: db}
				if err := maint.Reset(cmd.Context()); err != nil {
					e.log.Error("reset journal", zap.Error(err))
					return err
				}
				e.log.Info("journal reset")
				fmt.Fprintln(cmd.OutOrStdout(), "Diário local apagado.")
				return nil
			}

			svc := &service.MarketService{
				ROI:         repository.NewRoiCalculationRepo(db),
				Interests:   repository.NewOfferInterestRepo(db),
				Acceptances: repository.NewMatchAcceptanceRepo(db),
				Log:         e.log,
			}
			h, err := svc.History(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return e.emit(cmd.OutOrStdout(), h, func(w io.Writer) { printHistory(w, h) })
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", repository.DefaultListLimit, "linhas por seção")
	cmd.Flags().BoolVar(&reset, "reset", false, "apaga o diário local")
	return cmd
}

func printHistory(w io.Writer, h service.History) {
	const stamp = "02/01/2006 15:04"

	fmt.Fprintln(w, "Cálculos de ROI")
	if len(h.Calculations) == 0 {
		fmt.Fprintln(w, "  nenhum")
	} else {
		rows := make([][]string, 0, len(h.Calculations))
		for _, c := range h.Calculations {
			rows = append(rows, []string{
				c.CreatedAt.Local().Format(stamp),
				c.WasteType,
				format.Quantity(c.Volume, "ton"),
				format.Currency(c.PotentialProfit),
				format.Percent(c.ROIPercentage),
			})
		}
		fmt.Fprintln(w, renderTable([]string{"Quando", "Resíduo", "Volume", "Lucro", "ROI"}, rows))
	}

	fmt.Fprintln(w, "Interesses registrados")
	if len(h.Interests) == 0 {
		fmt.Fprintln(w, "  nenhum")
	} else {
		rows := make([][]string, 0, len(h.Interests))
		for _, i := range h.Interests {
			rows = append(rows, []string{i.CreatedAt.Local().Format(stamp), strconv.Itoa(i.OfferID), i.OfferName, i.Company})
		}
		fmt.Fprintln(w, renderTable([]string{"Quando", "Oferta", "Material", "Empresa"}, rows))
	}

	fmt.Fprintln(w, "Matches aceitos")
	if len(h.Acceptances) == 0 {
		fmt.Fprintln(w, "  nenhum")
	} else {
		rows := make([][]string, 0, len(h.Acceptances))
		for _, a := range h.Acceptances {
			rows = append(rows, []string{
				a.CreatedAt.Local().Format(stamp),
				strconv.Itoa(a.MatchID),
				a.WasteName,
				a.Consumer,
				format.Percent(a.Score),
			})
		}
		fmt.Fprintln(w, renderTable([]string{"Quando", "Match", "Resíduo", "Consumidor", "Score"}, rows))
	}
}

func newConfigCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Lê e altera a configuração",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Mostra a configuração efetiva",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := e.cfg
			return e.emit(cmd.OutOrStdout(), c, func(w io.Writer) {
				url := c.API.BaseURL
				if url == "" {
					url = "(não configurada)"
				}
				fmt.Fprintf(w, "api.base_url      = %s\n", url)
				fmt.Fprintf(w, "api.timeout       = %s\n", c.API.Timeout)
				fmt.Fprintf(w, "ui.poll_interval  = %s\n", c.UI.PollInterval)
				fmt.Fprintf(w, "database.path     = %s\n", c.Database.Path)
				fmt.Fprintf(w, "log.path          = %s\n", c.Log.Path)
				fmt.Fprintf(w, "log.level         = %s\n", c.Log.Level)
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "set-url <url>",
		Short: "Define a URL base da API",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			url := strings.TrimRight(strings.TrimSpace(args[0]), "/")
			if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
				return usagef("URL inválida: %q (use http:// ou https://)", args[0])
			}
			c := e.cfg
			c.API.BaseURL = url
			if err := config.Save(c); err != nil {
				e.log.Error("save config", zap.Error(err))
				return err
			}
			e.cfg = c
			fmt.Fprintf(cmd.OutOrStdout(), "API configurada: %s\n", url)
			return nil
		},
	})
	return cmd
}
