package main

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/danmuck/callwire/internal/config"
	"github.com/danmuck/callwire/internal/logging"
	"github.com/danmuck/callwire/internal/protocol"
	"github.com/danmuck/callwire/internal/protocol/salvage"
	"github.com/danmuck/callwire/internal/transport"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "callctl",
		Short:         "Encode, send and inspect Call envelopes",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newCallCmd(), newEncodeCmd(), newDecodeCmd(), newSalvageCmd(), newConfigCmd())
	return root
}

func newCallCmd() *cobra.Command {
	var (
		configPath string
		baseURL    string
		mode       string
		token      string
		op         int32
		timeout    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "call --op N [params...]",
		Short: "Send one Call envelope and print the business payload",
		Long: `
Send one Call envelope to <base_url>/Call and print the business JSON.

An empty token is sent as "-". Empty params are elided from the envelope.

  callctl call --config client.toml --op 12 -- entities 0 25
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.DefaultClientConfig()
			if configPath != "" {
				loaded, err := config.LoadClientConfig(configPath)
				if err != nil {
					return err
				}
				cfg = loaded
			}
			if cmd.Flags().Changed("base-url") {
				cfg.BaseURL = baseURL
			}
			if cmd.Flags().Changed("mode") {
				m, err := transport.ParseMode(mode)
				if err != nil {
					return err
				}
				cfg.Mode = m
			}
			if cmd.Flags().Changed("token") {
				cfg.Token = token
			}
			if cmd.Flags().Changed("timeout") {
				cfg.Timeout = timeout
			}
			if err := config.ValidateClientConfig(cfg); err != nil {
				return err
			}
			return runCall(cmd.Context(), cmd.OutOrStdout(), cfg, op, args)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "client config (toml)")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "remote base url, overrides config")
	cmd.Flags().StringVarP(&mode, "mode", "m", "wrapped", "transport mode: wrapped | raw")
	cmd.Flags().StringVarP(&token, "token", "t", "", "access token")
	cmd.Flags().Int32VarP(&op, "op", "o", 0, "operation code")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "request timeout")
	_ = cmd.MarkFlagRequired("op")
	return cmd
}

func runCall(ctx context.Context, out io.Writer, cfg config.ClientConfig, op int32, params []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := logging.New("callctl")
	client, err := transport.New(cfg.Transport(), transport.WithLogger(logger))
	if err != nil {
		return err
	}
	res, err := client.Call(ctx, op, cfg.Token, params...)
	if err != nil {
		var ce *transport.CallError
		if errors.As(err, &ce) {
			fmt.Fprintln(out, ce.Body)
		}
		return err
	}
	_, err = fmt.Fprintln(out, string(res.Body))
	return err
}

func newEncodeCmd() *cobra.Command {
	var (
		op    int32
		token string
	)
	cmd := &cobra.Command{
		Use:   "encode --op N [params...]",
		Short: "Print the hex envelope for op, token and params",
		RunE: func(cmd *cobra.Command, args []string) error {
			buf, err := protocol.EncodeChecked(op, token, args...)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(buf))
			return err
		},
	}
	cmd.Flags().Int32VarP(&op, "op", "o", 0, "operation code")
	cmd.Flags().StringVarP(&token, "token", "t", "", "access token")
	return cmd
}

func newDecodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decode <hex>",
		Short: "Decode a hex envelope",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := hex.DecodeString(strings.TrimSpace(args[0]))
			if err != nil {
				return fmt.Errorf("decode hex: %w", err)
			}
			env, err := protocol.Decode(raw)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "op: %d\n", env.OpCode)
			fmt.Fprintf(out, "token: %q\n", env.Token)
			for i, p := range env.Params {
				fmt.Fprintf(out, "param[%d]: %q\n", i, p)
			}
			return nil
		},
	}
}

func newSalvageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "salvage <error text>",
		Short: "Recover the JSON payload embedded in a server error body",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := salvage.RecoverEmbeddedJSON(args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), body)
			return err
		},
	}
}

func newConfigCmd() *cobra.Command {
	var (
		kind   string
		output string
		force  bool
	)
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Config templates",
	}
	initCmd := &cobra.Command{
		Use:   "init --kind client|stub --output path",
		Short: "Write a config template",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(output) == "" {
				output = strings.ToLower(strings.TrimSpace(kind)) + ".toml"
			}
			if err := config.WriteTemplate(output, kind, force); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "wrote %s config template: %s\n", kind, output)
			return err
		},
	}
	initCmd.Flags().StringVar(&kind, "kind", "client", "config kind: client | stub")
	initCmd.Flags().StringVar(&output, "output", "", "output path")
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite existing config file")
	cmd.AddCommand(initCmd)
	return cmd
}
