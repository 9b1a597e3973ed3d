package main

import (
	"context"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/fpmem/pkg/fixedpoint"
	"github.com/samcharles93/fpmem/pkg/mem"
)

func decodeCmd() *cli.Command {
	var (
		input  string
		bits   int
		frac   int
		format string
		limit  int
	)
	return &cli.Command{
		Name:  "decode",
		Usage: "Print the values stored in a .mem file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "input", Aliases: []string{"i"}, Usage: "path to a .mem file", Destination: &input, Required: true},
			&cli.IntFlag{Name: "bits", Aliases: []string{"w"}, Usage: "total bit width", Value: fixedpoint.Q15.BitWidth, Destination: &bits},
			&cli.IntFlag{Name: "frac", Aliases: []string{"f"}, Usage: "fractional bits", Value: fixedpoint.Q15.FractionalBits, Destination: &frac},
			&cli.StringFlag{Name: "format", Usage: "line encoding (binary, hex)", Value: "binary", Destination: &format},
			&cli.IntFlag{Name: "limit", Usage: "show at most this many lines (0 = all)", Destination: &limit},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg := fixedpoint.Config{BitWidth: bits, FractionalBits: frac}
			f, err := fixedpoint.ParseFormat(format)
			if err != nil {
				return err
			}
			vals, err := mem.ReadFile(input, cfg, f)
			if err != nil {
				return err
			}
			if limit > 0 && limit < len(vals) {
				vals = vals[:limit]
			}

			table := tablewriter.NewWriter(c.Root().Writer)
			table.SetHeader([]string{"LINE", "RAW", "INT", "REAL"})
			table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
			table.SetAlignment(tablewriter.ALIGN_LEFT)
			table.SetHeaderLine(false)
			table.SetBorder(false)
			table.SetNoWhiteSpace(true)
			table.SetTablePadding("    ")
			for i, v := range vals {
				raw, err := cfg.Encode(v, f)
				if err != nil {
					return err
				}
				table.Append([]string{
					strconv.Itoa(i),
					raw,
					strconv.FormatInt(v, 10),
					strconv.FormatFloat(cfg.Dequantize(v), 'g', -1, 64),
				})
			}
			table.Render()
			return nil
		},
	}
}
