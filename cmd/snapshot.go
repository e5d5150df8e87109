package cmd

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/anicoll/energy-dashboard/internal/pkg/config"
	"github.com/anicoll/energy-dashboard/internal/pkg/model"
	"github.com/anicoll/energy-dashboard/pkg/hasher"
)

// SnapshotCommand assembles one dashboard and prints it as tables.
func SnapshotCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	zap.ReplaceGlobals(logger)
	return snapshot(c.Context, cfg, c.App.Writer)
}

func snapshot(ctx context.Context, cfg config.Config, out io.Writer) error {
	store, err := openStore(ctx, cfg.StoreCfg)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}
	svc, err := newService(cfg, store)
	if err != nil {
		return err
	}
	d, err := svc.Assemble(ctx, cfg.DefaultPreset)
	if err != nil {
		return err
	}
	return writeSnapshot(out, d, cfg.DefaultPreset)
}

func writeSnapshot(out io.Writer, d *model.Dashboard, preset model.Preset) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "Dashboard %s (generated %s)\n", preset, d.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	if !d.HasData {
		fmt.Fprintln(tw, "No daily data in the selected range.")
	}

	fmt.Fprintln(tw, "\nKPI\tVALUE\tUNIT\tDELTA")
	for _, kpi := range d.Kpis {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", kpi.Label, strconv.FormatFloat(kpi.Value, 'f', -1, 64), kpi.Unit, formatDelta(kpi.DeltaPercent))
	}

	fmt.Fprintln(tw, "\nSOURCE\tHEALTH\tCHECKED\tMESSAGE")
	for _, s := range d.SourceStatus {
		msg := ""
		if s.Message != nil {
			msg = *s.Message
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", s.SourceName, s.Health, s.CheckedAt.Format("2006-01-02 15:04"), msg)
	}

	fmt.Fprintln(tw, "\nRUN\tSTATUS\tSOURCES\tOK\tFAILED\tDURATION")
	for _, a := range d.IngestionAudit {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%d\t%s\n", a.ID, a.Status, a.SourceCount, a.SuccessCount, a.FailureCount, a.DurationLabel())
	}
	return tw.Flush()
}

func formatDelta(delta *float64) string {
	if delta == nil {
		return "-"
	}
	return fmt.Sprintf("%+.1f%%", *delta)
}

// TokenCommand prints a fresh resync token and the bcrypt hash to configure as
// RESYNC_TOKEN_HASH.
func TokenCommand(c *cli.Context) error {
	token, err := hasher.GenerateToken(c.Int("length"))
	if err != nil {
		return err
	}
	hash, err := hasher.HashPassword([]byte(token))
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "token: %s\nRESYNC_TOKEN_HASH=%s\n", token, hash)
	return nil
}
