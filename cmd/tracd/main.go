// Command tracd is TRAC's server process: it loads the platform config,
// wires the metadata DB, storage plugins, codecs, data/admin/health
// services, and starts the gRPC API and REST gateway side by side —
// following cmd/warren's cobra-rooted bootstrap and os/signal shutdown
// handling, restructured around TRAC's single-process, single-node
// deployment (no Raft cluster bootstrap, no containerd lifecycle).
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/tracplatform/trac/internal/admin"
	"github.com/tracplatform/trac/internal/codec"
	"github.com/tracplatform/trac/internal/config"
	"github.com/tracplatform/trac/internal/dataservice"
	"github.com/tracplatform/trac/internal/gateway"
	"github.com/tracplatform/trac/internal/grpcapi"
	"github.com/tracplatform/trac/internal/health"
	"github.com/tracplatform/trac/internal/metadb"
	"github.com/tracplatform/trac/internal/metadb/embedded"
	"github.com/tracplatform/trac/internal/metadb/postgres"
	"github.com/tracplatform/trac/internal/metadataservice"
	"github.com/tracplatform/trac/internal/objectstore"
	rpccodec "github.com/tracplatform/trac/internal/rpc/codec"
	rpctrac "github.com/tracplatform/trac/internal/rpc/trac"
	log "github.com/tracplatform/trac/internal/telemetry/log"
)

// Exit codes per spec.md §6: 0 success, 1 startup error, 2 config error,
// 3 runtime error, 4 data error.
const (
	exitStartupError = 1
	exitConfigError  = 2
	exitRuntimeError = 3
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "tracd",
	Short: "TRAC data platform server",
	Long: `tracd serves the Data and Admin gRPC APIs and the REST gateway
that fronts them, against a pluggable metadata database and object
store.`,
	RunE: runServer,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "trac.yaml", "path to the platform config file")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "output logs in JSON format")
	cobra.OnInitialize(initLogging)
}

func initLogging() {
	level, _ := rootCmd.PersistentFlags().GetString("log-level")
	jsonOutput, _ := rootCmd.PersistentFlags().GetBool("log-json")
	log.Init(log.Config{Level: log.Level(level), JSONOutput: jsonOutput})
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitStartupError)
	}
}

func runServer(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(exitConfigError)
	}

	adapter, tenants, err := openMetadataDB(ctx, cfg.MetadataDatabase)
	if err != nil {
		return fmt.Errorf("opening metadata database: %w", err)
	}
	defer adapter.Close()

	for _, tenant := range cfg.Tenants.Bootstrap {
		if err := tenants.ProvisionTenant(tenant); err != nil {
			return fmt.Errorf("provisioning bootstrap tenant %q: %w", tenant, err)
		}
	}

	stores := objectstore.NewRegistry()
	for key, plugin := range cfg.StoragePlugins {
		store, err := objectstore.NewStore(ctx, objectstore.PluginConfig{Type: plugin.Type, Properties: plugin.Properties})
		if err != nil {
			return fmt.Errorf("building storage plugin %q: %w", key, err)
		}
		stores.Register(key, store)
	}

	codecs := codec.NewRegistry()
	codecs.Register(codec.CSVCodec{})
	codecs.Register(codec.JSONCodec{})
	codecs.Register(codec.ArrowStreamCodec{})
	codecs.Register(codec.ParquetCodec{})

	db := metadb.New(adapter)
	dataSvc := dataservice.New(db, stores, codecs)
	metadataSvc := metadataservice.New(db)
	adminSvc := admin.New(tenants)
	healthSvc := health.New(map[string]health.Check{
		"metadata-database": func(ctx context.Context) error {
			_, err := tenants.ListTenants()
			return err
		},
	})

	grpcLog := log.WithComponent("grpcapi")
	server := grpcapi.NewServer(
		grpcapi.NewDataServer(dataSvc),
		grpcapi.NewMetadataServer(metadataSvc),
		grpcapi.NewAdminServer(adminSvc),
		grpcapi.NewHealthServer(healthSvc),
		grpcLog,
	)

	grpcAddr := serviceAddr(cfg, "data", "0.0.0.0:8081")
	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(grpcAddr); err != nil {
			errCh <- fmt.Errorf("grpc server: %w", err)
		}
	}()

	if gwCfg, ok := cfg.Services["gateway"]; ok && gwCfg.Enabled {
		httpServer, err := buildGatewayServer(grpcAddr, gwCfg, cfg.Gateway, log.WithComponent("gateway"))
		if err != nil {
			return fmt.Errorf("building gateway: %w", err)
		}
		go func() {
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				errCh <- fmt.Errorf("gateway server: %w", err)
			}
		}()
		defer httpServer.Close()
	}

	log.Logger.Info().Str("addr", grpcAddr).Msg("tracd ready")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
		log.Logger.Info().Msg("shutting down")
	case err := <-errCh:
		log.Logger.Error().Err(err).Msg("server error")
		server.Stop()
		os.Exit(exitRuntimeError)
	}

	server.Stop()
	return nil
}

// openMetadataDB dispatches MetadataDatabaseConfig.Dialect to the matching
// metadb.Adapter constructor, returning both the Adapter (for metadb.New)
// and its narrower metadb.TenantAdmin view (for internal/admin).
func openMetadataDB(ctx context.Context, cfg config.MetadataDatabaseConfig) (metadb.Adapter, metadb.TenantAdmin, error) {
	switch cfg.Dialect {
	case "embedded":
		adapter, err := embedded.Open(cfg.EmbeddedDBPath)
		if err != nil {
			return nil, nil, err
		}
		return adapter, adapter, nil
	case "postgres":
		adapter, err := postgres.Open(ctx, cfg.JDBCURL)
		if err != nil {
			return nil, nil, err
		}
		return adapter, adapter, nil
	default:
		return nil, nil, fmt.Errorf("unknown metadataDatabase.dialect %q", cfg.Dialect)
	}
}

func serviceAddr(cfg *config.Config, name, fallback string) string {
	svc, ok := cfg.Services[name]
	if !ok || svc.Host == "" {
		return fallback
	}
	return fmt.Sprintf("%s:%d", svc.Host, svc.Port)
}

// buildGatewayServer dials tracd's own gRPC listener and wraps it in an
// *http.Server running the REST↔gRPC gateway, so the gateway always
// exercises the real wire protocol rather than calling service methods
// in-process.
func buildGatewayServer(grpcAddr string, svcCfg config.ServiceConfig, gwCfg config.GatewayConfig, logger zerolog.Logger) (*http.Server, error) {
	conn, err := grpc.NewClient(grpcAddr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(rpccodec.Name)),
	)
	if err != nil {
		return nil, fmt.Errorf("dialing grpc backend: %w", err)
	}

	routes, err := gateway.BuildRoutes(gwCfg)
	if err != nil {
		return nil, err
	}
	gw, err := gateway.New(routes, rpctrac.NewAdminServiceClient(conn), rpctrac.NewHealthClient(conn), rpctrac.NewMetadataServiceClient(conn), gwCfg.Redirects, logger)
	if err != nil {
		return nil, err
	}

	addr := fmt.Sprintf("%s:%d", svcCfg.Host, svcCfg.Port)
	logger.Info().Str("addr", addr).Msg("gateway listening")
	return &http.Server{Addr: addr, Handler: gw}, nil
}
