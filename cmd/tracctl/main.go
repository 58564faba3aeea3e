// Command tracctl is TRAC's admin CLI: a thin cobra wrapper around the
// Admin and Health gRPC clients, following cmd/warren's node/service
// subcommand layout (one cobra.Command per RPC, flags for request
// fields, fmt.Println for results) — out of scope for full
// implementation per spec.md §1, but its bootstrap (root command,
// --server flag, dial/exit handling) is in-scope ambient CLI tooling.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	rpccodec "github.com/tracplatform/trac/internal/rpc/codec"
	"github.com/tracplatform/trac/internal/rpc/trac"
)

var serverAddr string

var rootCmd = &cobra.Command{
	Use:   "tracctl",
	Short: "TRAC admin CLI",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverAddr, "server", "localhost:8081", "tracd gRPC address")
	rootCmd.AddCommand(tenantCmd, healthCmd)
	tenantCmd.AddCommand(tenantCreateCmd, tenantListCmd)
}

var tenantCmd = &cobra.Command{
	Use:   "tenant",
	Short: "Manage tenants",
}

var tenantCreateCmd = &cobra.Command{
	Use:   "create [tenantId]",
	Short: "Provision a new tenant",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		conn, err := dial()
		if err != nil {
			return err
		}
		defer conn.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		resp, err := trac.NewAdminServiceClient(conn).CreateTenant(ctx, &trac.CreateTenantRequest{TenantID: args[0]})
		if err != nil {
			return err
		}
		fmt.Printf("tenant %q provisioned\n", resp.TenantID)
		return nil
	},
}

var tenantListCmd = &cobra.Command{
	Use:   "list",
	Short: "List provisioned tenants",
	RunE: func(cmd *cobra.Command, args []string) error {
		conn, err := dial()
		if err != nil {
			return err
		}
		defer conn.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		resp, err := trac.NewAdminServiceClient(conn).ListTenants(ctx, &trac.ListTenantsRequest{})
		if err != nil {
			return err
		}
		for _, id := range resp.TenantIDs {
			fmt.Println(id)
		}
		return nil
	},
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check server health",
	RunE: func(cmd *cobra.Command, args []string) error {
		conn, err := dial()
		if err != nil {
			return err
		}
		defer conn.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		resp, err := trac.NewHealthClient(conn).Check(ctx, &trac.HealthCheckRequest{})
		if err != nil {
			return err
		}
		fmt.Println(resp.Status)
		if resp.Status != trac.StatusServing {
			os.Exit(1)
		}
		return nil
	},
}

func dial() (*grpc.ClientConn, error) {
	return grpc.NewClient(serverAddr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(rpccodec.Name)),
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
