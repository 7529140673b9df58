// Command reciloop is the terminal client for the ReciLoop waste-exchange
// marketplace. Without a subcommand it opens the interactive dashboard.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/reciloop/reciloop/internal/api"
	"github.com/reciloop/reciloop/internal/config"
	"github.com/reciloop/reciloop/internal/database"
	"github.com/reciloop/reciloop/internal/database/repository"
	"github.com/reciloop/reciloop/internal/logging"
	"github.com/reciloop/reciloop/internal/service"
	"github.com/reciloop/reciloop/internal/tui"
)

// env is built once per invocation in PersistentPreRunE.
type env struct {
	cfg      config.Config
	log      *zap.Logger
	client   *api.Client // nil when no API URL is configured
	sessions *service.SessionService
	db       *sql.DB // opened on first use, see journal
	jsonOut  bool
	restored bool // a saved session was used by this command
}

type rootFlags struct {
	verbose     bool
	jsonOut     bool
	metricsAddr string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := execute(ctx, &env{}, nil); err != nil {
		fmt.Fprintln(os.Stderr, "erro:", describe(err))
		stop()
		os.Exit(1)
	}
}

// execute runs the command tree and releases e's resources whatever the
// outcome. A saved token the API rejected is forgotten.
func execute(ctx context.Context, e *env, configure func(*cobra.Command)) error {
	cmd := newRootCmd(e)
	if configure != nil {
		configure(cmd)
	}
	err := cmd.ExecuteContext(ctx)
	if err != nil && e.restored && errors.Is(err, api.ErrUnauthorized) {
		if lerr := e.sessions.Logout(); lerr != nil {
			e.log.Warn("clear rejected session", zap.Error(lerr))
		} else {
			e.log.Info("saved session rejected by api; cleared")
		}
	}
	e.close()
	return err
}

func newRootCmd(e *env) *cobra.Command {
	var flags rootFlags

	cmd := &cobra.Command{
		Use:   "reciloop",
		Short: "ReciLoop - marketplace de resíduos industriais",
		Long: `ReciLoop conecta geradores e consumidores de resíduos industriais.

Sem subcomando abre o painel interativo: KPIs, matches, calculadora de ROI,
inventário ao vivo, ranking ESG e ofertas. Os subcomandos executam uma
única operação e saem.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return e.setup(flags)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), e, flags.metricsAddr)
		},
	}

	cmd.SetFlagErrorFunc(flagError)
	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "log at debug level")
	cmd.PersistentFlags().BoolVar(&flags.jsonOut, "json", false, "print raw JSON instead of tables")
	cmd.Flags().StringVar(&flags.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while the dashboard runs")

	cmd.AddCommand(
		newLoginCmd(e),
		newLogoutCmd(e),
		newStatusCmd(e),
		newStatsCmd(e),
		newMatchesCmd(e),
		newAcceptCmd(e),
		newInventoryCmd(e),
		newESGCmd(e),
		newOffersCmd(e),
		newOfferCmd(e),
		newROICmd(e),
		newCompaniesCmd(e),
		newWastesCmd(e),
		newHistoryCmd(e),
		newConfigCmd(e),
	)
	return cmd
}

func (e *env) setup(flags rootFlags) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	level := cfg.Log.Level
	if flags.verbose {
		level = "debug"
	}
	log, err := logging.New(cfg.Log.Path, level)
	if err != nil {
		return err
	}

	e.cfg = cfg
	e.log = log
	e.jsonOut = flags.jsonOut

	if cfg.APIConfigured() {
		client, err := api.New(cfg.API.BaseURL, api.WithTimeout(cfg.API.Timeout), api.WithLogger(log))
		if err != nil {
			return err
		}
		e.client = client
	} else {
		log.Info("api not configured")
	}
	e.sessions = &service.SessionService{Client: e.client, Log: log}
	return nil
}

func (e *env) close() {
	if e.db != nil {
		if err := e.db.Close(); err != nil && e.log != nil {
			e.log.Warn("close journal", zap.Error(err))
		}
		e.db = nil
	}
	if e.log != nil {
		_ = e.log.Sync()
	}
}

// journal opens the activity database on first use.
func (e *env) journal() (*sql.DB, error) {
	if e.db != nil {
		return e.db, nil
	}
	db, err := database.OpenAndMigrate(e.cfg.Database.Path)
	if err != nil {
		e.log.Error("open journal", zap.String("path", e.cfg.Database.Path), zap.Error(err))
		return nil, err
	}
	e.db = db
	return db, nil
}

func (e *env) apiClient() (*api.Client, error) {
	if e.client == nil {
		return nil, api.ErrNotConfigured
	}
	return e.client, nil
}

// session restores the saved login.
func (e *env) session() (service.Session, error) {
	if _, err := e.apiClient(); err != nil {
		return service.Session{}, err
	}
	sess, err := e.sessions.Restore()
	if err != nil {
		return service.Session{}, err
	}
	e.restored = true
	return sess, nil
}

// market builds a MarketService for the saved session, journaling to the
// local database.
func (e *env) market() (*service.MarketService, error) {
	sess, err := e.session()
	if err != nil {
		return nil, err
	}
	return e.marketFor(sess.Client)
}

func (e *env) marketFor(client *api.Client) (*service.MarketService, error) {
	db, err := e.journal()
	if err != nil {
		return nil, err
	}
	return &service.MarketService{
		Client:      client,
		ROI:         repository.NewRoiCalculationRepo(db),
		Interests:   repository.NewOfferInterestRepo(db),
		Acceptances: repository.NewMatchAcceptanceRepo(db),
		Log:         e.log,
	}, nil
}

func runTUI(ctx context.Context, e *env, metricsAddr string) error {
	db, err := e.journal()
	if err != nil {
		return err
	}

	if metricsAddr != "" {
		srv := serveMetrics(metricsAddr, e.log)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	app := tui.New(ctx, tui.Deps{
		Config:   e.cfg,
		Client:   e.client,
		Sessions: e.sessions,
		Journal: tui.Journal{
			ROI:         repository.NewRoiCalculationRepo(db),
			Interests:   repository.NewOfferInterestRepo(db),
			Acceptances: repository.NewMatchAcceptanceRepo(db),
		},
		Maintenance: &service.MaintenanceService{DB: db},
		Log:         e.log,
	})

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		e.log.Error("tui exited", zap.Error(err))
		return err
	}
	return nil
}

// serveMetrics exposes the client's registry on addr until shut down.
func serveMetrics(addr string, log *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(api.Registry, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server", zap.String("addr", addr), zap.Error(err))
		}
	}()
	log.Info("serving metrics", zap.String("addr", addr))
	return srv
}
