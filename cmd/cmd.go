// submodule cmd contains command definitions
package main

import (
	"github.com/desertthunder/lendx/internal/formatter"
	"github.com/urfave/cli/v3"
)

func personFlags(required bool) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "name",
			Aliases:  []string{"n"},
			Usage:    "Full name; identifies the person",
			Required: required,
		},
		&cli.StringFlag{
			Name:    "phone",
			Aliases: []string{"p"},
			Usage:   "Phone number",
		},
		&cli.StringFlag{
			Name:    "email",
			Aliases: []string{"e"},
			Usage:   "Email address",
		},
		&cli.StringFlag{
			Name:    "address",
			Aliases: []string{"a"},
			Usage:   "Postal address",
		},
		&cli.StringSliceFlag{
			Name:    "tag",
			Aliases: []string{"t"},
			Usage:   "Tag (repeatable)",
		},
	}
}

func filterFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "filter",
		Aliases: []string{"f"},
		Usage:   "Show only matching loans: all, overdue, unpaid, paid, missed, simple, compound (comma-separated to combine)",
		Value:   "all",
	}
}

func sortFlags(byFlag string) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  byFlag,
			Usage: "Sort key: name, overdue or amount (defaults to display.default_sort)",
		},
		&cli.StringFlag{
			Name:  "order",
			Usage: "asc or desc (defaults to display.default_order)",
		},
	}
}

// setupCommand handles setup operations for the configuration file and database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage:  "Create the config file and initialize the database",
		Action: r.Setup,
		Commands: []*cli.Command{
			{
				Name:   "rollback",
				Usage:  "Revert the most recent database migration",
				Action: r.Rollback,
			},
		},
	}
}

// personCommand handles person operations
func personCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "person",
		Aliases: []string{"p"},
		Usage:   "Manage the people you lent money to",
		Commands: []*cli.Command{
			{
				Name:   "add",
				Usage:  "Add a person",
				Flags:  personFlags(true),
				Action: r.PersonAdd,
			},
			{
				Name:  "edit",
				Usage: "Edit the person at INDEX; omitted fields keep their value",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "index"},
				},
				Flags:  personFlags(false),
				Action: r.PersonEdit,
			},
			{
				Name:    "delete",
				Aliases: []string{"rm"},
				Usage:   "Delete the person at INDEX and all of their loans",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "index"},
				},
				Action: r.PersonDelete,
			},
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List persons with what they owe",
				Flags: append([]cli.Flag{
					filterFlag(),
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				}, sortFlags("sort")...),
				Action: r.PersonList,
			},
			{
				Name:   "sort",
				Usage:  "Reorder persons and keep the new order",
				Flags:  sortFlags("by"),
				Action: r.PersonSort,
			},
		},
	}
}

// loanCommand handles loan operations on a single person
func loanCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "loan",
		Aliases: []string{"l"},
		Usage:   "Grant, pay and inspect loans",
		Commands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Grant a loan to the person at PERSON",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "person"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "type",
						Usage: "Interest model: simple or compound",
						Value: "simple",
					},
					&cli.StringFlag{
						Name:     "principal",
						Usage:    "Amount lent",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "rate",
						Usage: "Monthly interest rate (0.01 = 1% per month)",
						Value: "0",
					},
					&cli.StringFlag{
						Name:  "created",
						Usage: "Date the loan was granted, YYYY-MM-DD (defaults to today)",
					},
					&cli.StringFlag{
						Name:     "due",
						Usage:    "Due date, YYYY-MM-DD",
						Required: true,
					},
				},
				Action: r.LoanAdd,
			},
			{
				Name:  "pay",
				Usage: "Record a payment against loan LOAN of person PERSON",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "person"},
					&cli.StringArg{Name: "loan"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "amount",
						Usage:    "Amount paid",
						Required: true,
					},
				},
				Action: r.LoanPay,
			},
			{
				Name:    "delete",
				Aliases: []string{"rm"},
				Usage:   "Delete loan LOAN of person PERSON",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "person"},
					&cli.StringArg{Name: "loan"},
				},
				Action: r.LoanDelete,
			},
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List the loans of person PERSON",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "person"},
				},
				Flags: []cli.Flag{
					filterFlag(),
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.LoanList,
			},
		},
	}
}

// exportCommand writes the ledger to a file
func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export persons and their loans",
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:  "format",
				Usage: "Export format: csv, md, txt or json",
				Value: formatter.FormatCSV,
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output file path (defaults to loans.<format>); use - for stdout. With --per-person, the output directory",
			},
			&cli.BoolFlag{
				Name:  "per-person",
				Usage: "Write one statement file per person plus a manifest",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Concurrent writers for --per-person",
				Value: 4,
			},
			&cli.FloatFlag{
				Name:  "rate-limit",
				Usage: "Statements written per second for --per-person (0: unlimited)",
			},
			filterFlag(),
		}, sortFlags("sort")...),
		Action: r.Export,
	}
}

// tuiCommand returns the top-level TUI command for interactive browsing.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Browse persons and loans interactively",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "File receiving logs while the TUI owns the terminal",
				Value: "./tmp/lendx-tui.log",
			},
		},
		Action: r.TUI,
	}
}
