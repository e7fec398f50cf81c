package cmd

import (
	"fmt"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/theapemachine/jsonrpc-go/pkg/builtin"
	"github.com/theapemachine/jsonrpc-go/pkg/jsonrpc"
	"github.com/theapemachine/jsonrpc-go/pkg/registry"
	"github.com/theapemachine/jsonrpc-go/pkg/service"
	"github.com/theapemachine/jsonrpc-go/pkg/stores"
	"github.com/theapemachine/jsonrpc-go/pkg/transport"
)

var (
	portFlag  int
	hostFlag  string
	stdioFlag bool

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Serve the builtin method packs",
		Long:  longServe,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, cleanup := buildRegistry()
			defer cleanup()

			opts := []jsonrpc.Option{
				jsonrpc.WithMaxInFlight(viper.GetInt("dispatch.max_in_flight")),
			}

			if stdioFlag {
				dispatcher := jsonrpc.NewDispatcher(reg, opts...)
				return transport.NewLineServer(dispatcher).Serve(
					cmd.Context(), os.Stdin, os.Stdout,
				)
			}

			srv := service.NewRPCServer(projectName, version, reg, opts...)

			if wsAddr := viper.GetString("server.ws_addr"); wsAddr != "" {
				go func() {
					log.Info("websocket listener starting", "addr", wsAddr)

					if err := http.ListenAndServe(
						wsAddr, transport.NewWSHandler(srv.Dispatcher()),
					); err != nil {
						log.Error("websocket listener stopped", "error", err)
					}
				}()
			}

			host := hostFlag
			if !cmd.Flags().Changed("host") && viper.IsSet("server.host") {
				host = viper.GetString("server.host")
			}

			port := portFlag
			if !cmd.Flags().Changed("port") && viper.IsSet("server.port") {
				port = viper.GetInt("server.port")
			}

			return srv.Start(fmt.Sprintf("%s:%d", host, port))
		},
	}
)

/*
buildRegistry assembles the method packs every transport serves. The
returned cleanup stops the key/value store's expiry sweeper.
*/
func buildRegistry() (*registry.Registry, func()) {
	store := stores.NewInMemoryKVStore()

	reg := registry.New().
		RegisterProvider(builtin.Math()).
		RegisterProvider(builtin.NewKV(store))

	if err := reg.RegisterService(builtin.NewSystem()); err != nil {
		log.Fatal("failed to register system methods", "error", err)
	}

	return reg, store.Close
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntVarP(&portFlag, "port", "p", 3210, "Port to serve on")
	serveCmd.Flags().StringVarP(&hostFlag, "host", "H", "0.0.0.0", "Host address to bind to")
	serveCmd.Flags().BoolVar(&stdioFlag, "stdio", false, "Serve newline-delimited requests on stdin/stdout instead of HTTP")
}

var longServe = `
Serve the builtin method packs over HTTP, and optionally over WebSocket
or stdin/stdout.

Examples:
  # Serve on port 8080
  jsonrpc-go serve --port 8080

  # Serve on stdin/stdout for use behind a process supervisor
  jsonrpc-go serve --stdio

  # Probe a running server
  jsonrpc-go call math.sum '[3,4]'
`
