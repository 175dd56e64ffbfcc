package main

import (
	"encoding/json"
	"io"
	"os"

	"github.com/alanwang67/message_board/client"
	"github.com/alanwang67/message_board/protocol"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newClientCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "client",
		Short: "Issue single requests against running board servers",
	}
	cmd.PersistentFlags().StringSlice("server", []string{"127.0.0.1:8080"}, "board server address (repeatable)")
	mustBind(v, cmd.PersistentFlags(), "server")

	run := func(fn func(cmd *cobra.Command, c *client.Client, args []string) (any, error)) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			c, err := newBoardClient(v, 0)
			if err != nil {
				return err
			}
			reply, err := fn(cmd, c, args)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), reply)
		}
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "index",
		Short: "GET / (server id, request count and messages)",
		Args:  cobra.NoArgs,
		RunE: run(func(cmd *cobra.Command, c *client.Client, _ []string) (any, error) {
			return c.Index(cmd.Context())
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "now",
		Short: "GET /now",
		Args:  cobra.NoArgs,
		RunE: run(func(cmd *cobra.Command, c *client.Client, _ []string) (any, error) {
			return c.Now(cmd.Context())
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "send MESSAGE",
		Short: "POST /send",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(cmd *cobra.Command, c *client.Client, args []string) (any, error) {
			return c.Send(cmd.Context(), args[0])
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "POST /clear",
		Args:  cobra.NoArgs,
		RunE: run(func(cmd *cobra.Command, c *client.Client, _ []string) (any, error) {
			return c.Clear(cmd.Context())
		}),
	})
	cmd.AddCommand(newBenchCommand(v))
	return cmd
}

func newBoardClient(v *viper.Viper, id uint64) (*client.Client, error) {
	logger, err := newLogger(os.Stderr, v.GetString("log-level"), v.GetString("log-format"))
	if err != nil {
		return nil, err
	}
	addrs := v.GetStringSlice("server")
	servers := make([]*protocol.Connection, 0, len(addrs))
	for _, addr := range addrs {
		servers = append(servers, &protocol.Connection{Network: "tcp", Address: addr})
	}
	return client.New(id, servers, client.WithLogger(logger)), nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
