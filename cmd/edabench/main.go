package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"edabench/internal/config"
	"edabench/internal/container"
	"edabench/internal/recipe"
	"edabench/internal/render"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

type globalFlags struct {
	configFile string
	envFile    string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var g globalFlags
	rootCmd := &cobra.Command{
		Use:           "edabench",
		Short:         "Exploratory data analysis and feature engineering workbench",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&g.configFile, "config", "", "YAML config file (env EDABENCH_* overrides it)")
	rootCmd.PersistentFlags().StringVar(&g.envFile, "env-file", ".env", "dotenv file loaded before configuration")

	rootCmd.AddCommand(
		newServeCmd(&g),
		newRunCmd(&g),
		newDescribeCmd(&g),
		newElbowCmd(&g),
	)
	return rootCmd
}

// boot loads the env file and configuration and wires the container
func boot(g *globalFlags) (*container.Container, error) {
	if g.envFile != "" {
		if err := godotenv.Load(g.envFile); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("load %s: %w", g.envFile, err)
		}
	}
	cfg, err := config.Load(g.configFile)
	if err != nil {
		return nil, err
	}
	return container.New(cfg)
}

func writeJSON(w io.Writer, v any) error {
	b, err := render.JSON(v, true)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

func newServeCmd(g *globalFlags) *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve [files...]",
		Short: "Serve the JSON API, optionally preloading files as sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := boot(g)
			if err != nil {
				return err
			}
			defer c.Close()

			for _, path := range args {
				sess, _, err := c.OpenFile(path)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", sess.ID(), path)
			}
			if port == "" {
				port = c.Config.Server.Port
			}
			return c.Server().Start(cmd.Context(), ":"+port)
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "listen port (default server.port)")
	return cmd
}

func newRunCmd(g *globalFlags) *cobra.Command {
	var recipePath, logFormat string
	cmd := &cobra.Command{
		Use:   "run <file> --recipe recipe.yaml",
		Short: "Replay a recipe of derivations and analyses against a file",
		Long: `Load a CSV or XLSX file, apply every step of a YAML recipe in order and
print the step outcomes followed by the operation log.

Example:
  edabench run survey.csv --recipe prep.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := boot(g)
			if err != nil {
				return err
			}
			defer c.Close()

			rec, err := recipe.Load(recipePath)
			if err != nil {
				return err
			}
			sess, _, err := c.OpenFile(args[0])
			if err != nil {
				return err
			}

			outcomes, runErr := c.Runner.Run(cmd.Context(), sess, rec)
			out := cmd.OutOrStdout()
			if err := writeJSON(out, outcomes); err != nil {
				return err
			}
			switch logFormat {
			case "html":
				fmt.Fprintln(out, string(sess.ExportLogHTML()))
			case "text":
				fmt.Fprintln(out, sess.ExportLog())
			}
			return runErr
		},
	}
	cmd.Flags().StringVar(&recipePath, "recipe", "", "recipe YAML file")
	cmd.Flags().StringVar(&logFormat, "log", "text", "operation log format: text, html or none")
	_ = cmd.MarkFlagRequired("recipe")
	return cmd
}

func newDescribeCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "describe <file> [columns...]",
		Short: "Print descriptive statistics for columns (all by default)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := boot(g)
			if err != nil {
				return err
			}
			defer c.Close()

			sess, reports, err := c.OpenFile(args[0])
			if err != nil {
				return err
			}
			columns := args[1:]
			if len(columns) == 0 {
				for _, r := range reports {
					columns = append(columns, r.Column)
				}
			}
			desc, err := sess.Describe(columns...)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), desc)
		},
	}
}

func newElbowCmd(g *globalFlags) *cobra.Command {
	var features string
	var k int
	cmd := &cobra.Command{
		Use:   "elbow <file> --features a,b[,c...]",
		Short: "Print the K-Means inertia curve and optionally fit k clusters",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := boot(g)
			if err != nil {
				return err
			}
			defer c.Close()

			sess, _, err := c.OpenFile(args[0])
			if err != nil {
				return err
			}
			prep, err := sess.ClusterPrepare(strings.Split(features, ",")...)
			if err != nil {
				return err
			}
			curve, err := sess.ClusterSweep(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%d rows prepared, %d dropped\n", prep.Rows, prep.Dropped)
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "k\tinertia")
			for _, p := range curve {
				fmt.Fprintf(tw, "%d\t%.4f\n", p.K, p.Inertia)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			if k == 0 {
				return nil
			}

			fit, err := sess.ClusterFit(cmd.Context(), k)
			if err != nil {
				return err
			}
			means, err := sess.ClusterMeans()
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "\nk=%d silhouette=%.4f sizes=%v\n", fit.K, fit.Silhouette, fit.Sizes)
			return writeJSON(out, means)
		},
	}
	cmd.Flags().StringVar(&features, "features", "", "comma separated numeric columns")
	cmd.Flags().IntVar(&k, "k", 0, "fit this many clusters after the sweep")
	_ = cmd.MarkFlagRequired("features")
	return cmd
}
