// Command staffctl drives the assistant and the staffing prediction
// dashboard from a terminal.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	config "dining-staff-dashboard/configs"
	"dining-staff-dashboard/pkg/backend"
	"dining-staff-dashboard/pkg/charts"
	"dining-staff-dashboard/pkg/dashboard"
	"dining-staff-dashboard/pkg/widget"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// defaultCLITimeout はタイムアウト未設定時にCLIが使う値です。
const defaultCLITimeout = 60 * time.Second

func main() {
	_ = godotenv.Load()
	if err := newRootCmd(config.LoadConfig()).Execute(); err != nil {
		os.Exit(1)
	}
}

type rootOptions struct {
	backendURL string
	timeout    time.Duration
	simple     bool
}

func newRootCmd(cfg *config.Config) *cobra.Command {
	opts := &rootOptions{}
	timeout := cfg.BackendTimeout
	if timeout <= 0 {
		timeout = defaultCLITimeout
	}

	rootCmd := &cobra.Command{
		Use:           "staffctl",
		Short:         "Dining hall staffing predictions and assistant chat",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	rootCmd.PersistentFlags().StringVar(&opts.backendURL, "backend", cfg.BackendBaseURL, "Prediction / assistant API base URL")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", timeout, "Request timeout")
	rootCmd.PersistentFlags().BoolVar(&opts.simple, "simple", cfg.DashboardVariant == string(dashboard.Simple), "Use the simple dashboard (dates only, tomorrow's summary)")

	rootCmd.AddCommand(newStatusCmd(opts))
	rootCmd.AddCommand(newChatCmd(opts))
	rootCmd.AddCommand(newPredictCmd(opts))
	return rootCmd
}

func (o *rootOptions) client() *backend.Client {
	return backend.NewClient(o.backendURL, o.timeout)
}

func (o *rootOptions) variant() dashboard.Variant {
	if o.simple {
		return dashboard.Simple
	}
	return dashboard.Full
}

func newStatusCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show assistant availability and the staffing summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			client := opts.client()

			fmt.Fprintf(out, "%s %s\n", labelStyle.Render("Backend:"), valueStyle.Render(client.BaseURL()))

			status, err := client.ChatStatus(ctx)
			switch {
			case err != nil:
				fmt.Fprintf(out, "%s %s\n", labelStyle.Render("Assistant:"), errorStyle.Render("unreachable ("+err.Error()+")"))
			case status.AgentAvailable:
				fmt.Fprintf(out, "%s %s\n", labelStyle.Render("Assistant:"), successStyle.Render(widget.DefaultCopy().StatusAvailable))
			default:
				fmt.Fprintf(out, "%s %s\n", labelStyle.Render("Assistant:"), mutedStyle.Render(widget.DefaultCopy().StatusUnavailable))
			}

			title, fetch := "Today", client.TodaySummary
			if opts.simple {
				title, fetch = "Tomorrow", client.TomorrowSummary
			}
			s, err := fetch(ctx)
			if err != nil {
				return fmt.Errorf("サマリーの取得に失敗: %w", err)
			}
			printSummaryView(out, title, dashboard.NewSummaryView(s))
			return nil
		},
	}
}

func newChatCmd(opts *rootOptions) *cobra.Command {
	var clearFirst bool
	cmd := &cobra.Command{
		Use:   "chat <message>",
		Short: "Send one message to the dining hall assistant",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			c := widget.NewController(ctx, opts.client(), nil, widget.DefaultCopy())
			if clearFirst {
				c.Clear(ctx)
			}
			before := len(c.Messages())
			if !c.Send(ctx, strings.Join(args, " ")) {
				return errors.New("message is empty")
			}
			for _, m := range c.Messages()[before:] {
				printMessage(out, m)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&clearFirst, "clear", false, "Clear the conversation before sending")
	return cmd
}

type predictOptions struct {
	start, end  string
	event       string
	weather     string
	detail      string
	detailEvent string
	xlsx        string
}

func newPredictCmd(opts *rootOptions) *cobra.Command {
	var p predictOptions
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict staffing hours for a date range",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPredict(cmd.Context(), cmd, opts, p)
		},
	}
	cmd.Flags().StringVar(&p.start, "start", "", "Start date (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&p.end, "end", "", "End date (YYYY-MM-DD, default start + 7 days)")
	cmd.Flags().StringVar(&p.event, "event", "", "Event identifier, e.g. career_fair")
	cmd.Flags().StringVar(&p.weather, "weather", "", "Weather identifier, e.g. rainy")
	cmd.Flags().StringVar(&p.detail, "detail", "", "Show the per-type breakdown for this date")
	cmd.Flags().StringVar(&p.detailEvent, "detail-event", "", "Event used for the breakdown")
	cmd.Flags().StringVar(&p.xlsx, "xlsx", "", "Write the predictions to this xlsx file")
	return cmd
}

func runPredict(ctx context.Context, cmd *cobra.Command, opts *rootOptions, p predictOptions) error {
	out := cmd.OutOrStdout()
	surface := &cliSurface{out: out, errOut: cmd.ErrOrStderr()}
	d := dashboard.NewController(opts.client(), charts.NewTerminal(out), surface, opts.variant())
	d.Init(ctx)

	v := d.View()
	start, end := v.StartDate, v.EndDate
	if p.start != "" {
		start = p.start
	}
	if p.end != "" {
		end = p.end
	}
	d.SetDateRange(start, end)
	if p.event != "" {
		d.SetEvent(p.event)
	}
	if p.weather != "" {
		d.SetWeather(p.weather)
	}

	if v.Summary != nil {
		title := "Today"
		if opts.simple {
			title = "Tomorrow"
		}
		printSummaryView(out, title, v.Summary)
	}

	if err := d.GeneratePredictions(ctx); err != nil {
		return err
	}

	if p.detail != "" {
		if err := d.OpenDetail(ctx, p.detail); err != nil {
			return err
		}
		if p.detailEvent != "" {
			if err := d.ChangeDetailEvent(ctx, p.detailEvent); err != nil {
				return err
			}
		}
	}

	if p.xlsx != "" {
		if err := exportWorkbook(d.View(), p.xlsx); err != nil {
			return err
		}
		fmt.Fprintf(out, "%s %s\n", successStyle.Render("Saved"), valueStyle.Render(p.xlsx))
	}
	return nil
}

func exportWorkbook(v dashboard.View, path string) error {
	wb := charts.NewWorkbook()
	if _, err := wb.RenderStacked(dashboard.BuildStacked(v.Series)); err != nil {
		return err
	}
	if v.Detail != nil && v.Detail.Point != nil {
		if _, err := wb.RenderDoughnut(dashboard.BuildDoughnut(*v.Detail.Point)); err != nil {
			return err
		}
	}
	return wb.SaveAs(path)
}
