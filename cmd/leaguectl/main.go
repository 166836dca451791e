package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/AdamBeresnev/leagueos/internal/apiclient"
	"github.com/AdamBeresnev/leagueos/internal/config"
	"github.com/AdamBeresnev/leagueos/internal/db"
	"github.com/AdamBeresnev/leagueos/internal/league"
	"github.com/AdamBeresnev/leagueos/internal/logger"
	"github.com/AdamBeresnev/leagueos/internal/metrics"
	"github.com/AdamBeresnev/leagueos/internal/service"
	"github.com/AdamBeresnev/leagueos/internal/store"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"
)

func main() {
	cliApp := &cli.App{
		Name:  "leaguectl",
		Usage: "record and inspect league games from the command line",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Value: "leagueos.yaml", EnvVars: []string{"CONFIG_FILE"}, Usage: "path to the configuration file"},
			&cli.StringFlag{Name: "token", EnvVars: []string{"LEAGUE_TOKEN"}, Usage: "bearer token for the league API"},
		},
		Commands: []*cli.Command{
			newTimeCommand(),
			newResolveCommand(),
			newRecordCommand(),
			newDashboardCommand(),
			newJournalCommand(),
			newMigrateCommand(),
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// deps holds what the API backed commands share. Build it lazily so the time
// helpers work without any configuration.
type deps struct {
	cfg       *config.Config
	database  *sqlx.DB
	recording *service.RecordingService
	dashboard *service.DashboardService
	admin     *service.AdminService
}

func load(c *cli.Context) (*deps, error) {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	lg := logger.FromConfig(cfg)
	m := metrics.New(prometheus.NewRegistry())

	database, err := db.InitDB(cfg, lg)
	if err != nil {
		return nil, err
	}
	journalStore := store.NewJournalStore(database)

	client := apiclient.New(cfg, lg, m)
	recording, err := service.NewRecordingService(client, journalStore, cfg, m, lg)
	if err != nil {
		database.Close()
		return nil, err
	}

	return &deps{
		cfg:       cfg,
		database:  database,
		recording: recording,
		dashboard: service.NewDashboardService(client, m, lg),
		admin:     service.NewAdminService(client, journalStore),
	}, nil
}

func (d *deps) Close() error {
	return d.database.Close()
}

func requireToken(c *cli.Context) (string, error) {
	token := c.String("token")
	if token == "" {
		return "", cli.Exit("a league API token is required (--token or LEAGUE_TOKEN)", 2)
	}
	return token, nil
}

func printJSON(c *cli.Context, v any) error {
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

var clubFlag = &cli.Int64Flag{Name: "club", Required: true, Usage: "club id"}

func newTimeCommand() *cli.Command {
	return &cli.Command{
		Name:  "time",
		Usage: "start time helpers",
		Subcommands: []*cli.Command{
			{
				Name:      "floor",
				Usage:     "align HH:MM down to the 5 minute grid",
				ArgsUsage: "HH:MM",
				Action: func(c *cli.Context) error {
					input := c.Args().First()
					floored := league.FloorToFiveMinutes(input)
					next, ok := league.NextSlot(input)
					if !ok {
						return cli.Exit(fmt.Sprintf("invalid time %q", input), 1)
					}
					fmt.Fprintf(c.App.Writer, "%s (next slot %s)\n", floored, next)
					return nil
				},
			},
			{
				Name:      "combine",
				Usage:     "join a session date and a start time",
				ArgsUsage: "YYYY-MM-DD HH:MM",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "tz", Usage: "IANA zone, defaults to local time"},
				},
				Action: func(c *cli.Context) error {
					loc := time.Local
					if tz := c.String("tz"); tz != "" {
						var err error
						if loc, err = time.LoadLocation(tz); err != nil {
							return cli.Exit(err.Error(), 1)
						}
					}
					t, ok := league.CombineDateAndTimeIn(c.Args().Get(0), c.Args().Get(1), loc)
					if !ok {
						return cli.Exit("expected YYYY-MM-DD HH:MM", 1)
					}
					fmt.Fprintln(c.App.Writer, t.Format(time.RFC3339))
					return nil
				},
			},
			{
				Name:      "check",
				Usage:     "check that an RFC 3339 timestamp sits on a slot",
				ArgsUsage: "TIMESTAMP",
				Action: func(c *cli.Context) error {
					t, err := time.Parse(time.RFC3339Nano, c.Args().First())
					if err != nil {
						return cli.Exit(err.Error(), 1)
					}
					if err := league.CheckAligned(t); err != nil {
						return cli.Exit(err.Error(), 1)
					}
					fmt.Fprintln(c.App.Writer, "ok")
					return nil
				},
			},
		},
	}
}

func newResolveCommand() *cli.Command {
	return &cli.Command{
		Name:  "resolve",
		Usage: "show the session new games would be recorded against",
		Flags: []cli.Flag{
			clubFlag,
			&cli.Int64Flag{Name: "season", Usage: "season id, defaults to the first active season"},
		},
		Action: func(c *cli.Context) error {
			token, err := requireToken(c)
			if err != nil {
				return err
			}
			d, err := load(c)
			if err != nil {
				return err
			}
			defer d.Close()

			rc, err := d.recording.Resolve(c.Context, token, c.Int64("club"), c.Int64("season"))
			if err != nil {
				return err
			}
			return printJSON(c, rc)
		},
	}
}

func newRecordCommand() *cli.Command {
	return &cli.Command{
		Name:  "record",
		Usage: "record a doubles game",
		Flags: []cli.Flag{
			clubFlag,
			&cli.Int64Flag{Name: "season", Usage: "season id, defaults to the first active season"},
			&cli.StringFlag{Name: "time", Required: true, Usage: "start time HH:MM"},
			&cli.Int64Flag{Name: "court", Required: true},
			&cli.IntFlag{Name: "score-a", Required: true},
			&cli.IntFlag{Name: "score-b", Required: true},
			&cli.Int64SliceFlag{Name: "side-a", Required: true, Usage: "two player ids"},
			&cli.Int64SliceFlag{Name: "side-b", Required: true, Usage: "two player ids"},
			&cli.BoolFlag{Name: "confirm", Usage: "record even if the game looks like a duplicate"},
		},
		Action: func(c *cli.Context) error {
			token, err := requireToken(c)
			if err != nil {
				return err
			}
			d, err := load(c)
			if err != nil {
				return err
			}
			defer d.Close()

			profile, err := d.admin.AuthorizeRecorder(c.Context, token, c.Int64("club"))
			if err != nil {
				return err
			}

			result, err := d.recording.Record(c.Context, token, c.Int64("club"), service.RecordInput{
				SeasonID:   c.Int64("season"),
				StartTime:  c.String("time"),
				CourtID:    c.Int64("court"),
				ScoreA:     c.Int("score-a"),
				ScoreB:     c.Int("score-b"),
				SideA:      c.Int64Slice("side-a"),
				SideB:      c.Int64Slice("side-b"),
				Confirm:    c.Bool("confirm"),
				RecordedBy: profile.ID,
			})
			if err != nil {
				return err
			}
			return printJSON(c, result)
		},
	}
}

func newDashboardCommand() *cli.Command {
	return &cli.Command{
		Name:  "dashboard",
		Usage: "print a player's dashboard",
		Flags: []cli.Flag{
			clubFlag,
			&cli.Int64Flag{Name: "player", Usage: "player id, defaults to the player matching the token's profile"},
		},
		Action: func(c *cli.Context) error {
			token, err := requireToken(c)
			if err != nil {
				return err
			}
			d, err := load(c)
			if err != nil {
				return err
			}
			defer d.Close()

			dash, err := d.dashboard.Load(c.Context, token, c.Int64("club"), c.Int64("player"))
			if err != nil {
				return err
			}
			return printJSON(c, dash)
		},
	}
}

func newJournalCommand() *cli.Command {
	return &cli.Command{
		Name:  "journal",
		Usage: "list recent recording attempts from the local journal",
		Flags: []cli.Flag{clubFlag},
		Action: func(c *cli.Context) error {
			d, err := load(c)
			if err != nil {
				return err
			}
			defer d.Close()

			overview, err := d.admin.Journal(c.Context, c.Int64("club"))
			if err != nil {
				return err
			}
			return printJSON(c, overview)
		},
	}
}

func newMigrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "apply journal migrations",
		Action: func(c *cli.Context) error {
			cfg, err := config.LoadConfig(c.String("config"))
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			database, err := db.InitDB(cfg, logger.FromConfig(cfg))
			if err != nil {
				return err
			}
			defer database.Close()
			fmt.Fprintf(c.App.Writer, "journal at %s is up to date\n", cfg.Database.Path)
			return nil
		},
	}
}
