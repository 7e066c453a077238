// qahctl is the leader's command line for the qah API.
//
//	qahctl [-api URL] [-member NAME] songs export <file>
//	qahctl songs import <file>
//	qahctl dates list
//	qahctl dates enable|disable <YYYY-MM-DD>
//	qahctl roster
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/caarlos0/env/v11"
	"go.uber.org/zap"

	logpkg "github.com/vonm84/qah-app/common/logger"
	"github.com/vonm84/qah-app/internal/aggregator"
	"github.com/vonm84/qah-app/internal/client"
	"github.com/vonm84/qah-app/internal/domain"
)

type cliConfig struct {
	APIURL   string `env:"QAH_API_URL" envDefault:"http://localhost:8080"`
	Member   string `env:"QAH_MEMBER" envDefault:"Admin"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"warn"`
}

var errUsage = errors.New("usage: qahctl [-api URL] [-member NAME] songs export|import <file> | dates list|enable|disable <date> | roster")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	var cfg cliConfig
	if err := env.Parse(&cfg); err != nil {
		return fmt.Errorf("failed to parse env: %w", err)
	}

	fs := flag.NewFlagSet("qahctl", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&cfg.APIURL, "api", cfg.APIURL, "qah API base URL")
	fs.StringVar(&cfg.Member, "member", cfg.Member, "member name sent as X-Member-Name")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	args = fs.Args()
	if len(args) == 0 {
		return errUsage
	}

	logger, err := logpkg.NewLogger(cfg.LogLevel, "console", "qahctl")
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	c := client.New(strings.TrimRight(cfg.APIURL, "/"), cfg.Member, logger)
	switch args[0] {
	case "songs":
		return runSongs(ctx, c, args[1:], stdout, logger)
	case "dates":
		return runDates(ctx, c, args[1:], stdout)
	case "roster":
		return runRoster(ctx, c, stdout)
	default:
		return errUsage
	}
}

func runSongs(ctx context.Context, c *client.Client, args []string, stdout io.Writer, logger *zap.Logger) error {
	if len(args) != 2 {
		return errUsage
	}
	file := args[1]
	switch args[0] {
	case "export":
		csv, err := c.ExportSongs(ctx)
		if err != nil {
			return err
		}
		if err := os.WriteFile(file, []byte(csv), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", file, err)
		}
		logger.Info("Songs exported", zap.String("file", file))
		fmt.Fprintf(stdout, "exported songs to %s\n", file)
		return nil
	case "import":
		data, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", file, err)
		}
		songs, err := c.ImportSongs(ctx, string(data))
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "imported %d songs\n", len(songs))
		return nil
	}
	return errUsage
}

func runDates(ctx context.Context, c *client.Client, args []string, stdout io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	switch args[0] {
	case "list":
		dates, err := c.LeaderDates(ctx)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "DATE\tWEEKDAY\tENABLED")
		for _, d := range dates {
			fmt.Fprintf(tw, "%s\t%s\t%t\n", d.Date, d.Date.Weekday(), d.Enabled)
		}
		return tw.Flush()
	case "enable", "disable":
		if len(args) != 2 {
			return errUsage
		}
		date, err := domain.ParseDate(args[1])
		if err != nil {
			return fmt.Errorf("%w: %v", errUsage, err)
		}
		enabled := args[0] == "enable"
		if err := c.SetDateEnabled(ctx, date, enabled); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "%s enabled=%t\n", date, enabled)
		return nil
	}
	return errUsage
}

func runRoster(ctx context.Context, c *client.Client, stdout io.Writer) error {
	roster, err := c.Roster(ctx)
	if err != nil {
		return err
	}
	printRoster(stdout, roster)
	return nil
}

func printRoster(w io.Writer, roster []aggregator.DateRoster) {
	for _, dr := range roster {
		fmt.Fprintf(w, "%s (%d singing)\n", dr.Date, dr.AttendeeCount())
		for _, s := range dr.Songs {
			fmt.Fprintf(w, "  %s\n", s.SongName)
			for _, g := range s.PartGroups {
				names := make([]string, 0, len(g.Members))
				for _, m := range g.Members {
					name := m.Name
					if m.AttendanceStatus == domain.AttendanceMaybe {
						name += "?"
					}
					names = append(names, name)
				}
				fmt.Fprintf(w, "    %-4s %s\n", g.Short, strings.Join(names, ", "))
			}
		}
	}
}
