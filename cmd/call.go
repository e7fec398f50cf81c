package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/theapemachine/jsonrpc-go/pkg/client"
	"github.com/theapemachine/jsonrpc-go/pkg/jsonrpc"
)

var (
	urlFlag    string
	idFlag     string
	notifyFlag bool

	callCmd = &cobra.Command{
		Use:   "call <method> [params]",
		Short: "Send one request to a running server",
		Long:  longCall,
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			method := args[0]

			var params any

			if len(args) == 2 {
				if !json.Valid([]byte(args[1])) {
					return fmt.Errorf("params must be valid JSON, got %q", args[1])
				}

				params = json.RawMessage(args[1])
			}

			conn := client.New(urlFlag)

			if notifyFlag {
				return conn.Notify(method, params)
			}

			if idFlag == "" {
				result, err := conn.Call(method, params)

				if err != nil {
					return err
				}

				fmt.Println(string(result))
				return nil
			}

			resp, err := conn.CallWithID(parseID(idFlag), method, params)

			if err != nil {
				return err
			}

			if resp.Error != nil {
				return resp.Error
			}

			fmt.Println(string(resp.Result))
			return nil
		},
	}
)

/*
parseID maps the --id flag onto the request id space: integers become
number ids, the literal "null" becomes a null id, and anything else is
a string id.
*/
func parseID(raw string) jsonrpc.ID {
	if raw == "null" {
		return jsonrpc.NullID()
	}

	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return jsonrpc.NewNumberID(n)
	}

	return jsonrpc.NewStringID(raw)
}

func init() {
	rootCmd.AddCommand(callCmd)

	callCmd.Flags().StringVar(&urlFlag, "url", "http://localhost:3210", "Base URL of the server")
	callCmd.Flags().StringVar(&idFlag, "id", "", "Request id to use (default is a generated uuid)")
	callCmd.Flags().BoolVar(&notifyFlag, "notify", false, "Send as a notification and skip the response")
}

var longCall = `
Send a single JSON-RPC request to a running server and print the result.

Examples:
  # Positional params
  jsonrpc-go call math.sum '[3,4]'

  # Named params against another host
  jsonrpc-go call math.add '{"a":3,"b":4}' --url http://localhost:8080

  # Fire-and-forget
  jsonrpc-go call kv.delete '["motd"]' --notify
`
