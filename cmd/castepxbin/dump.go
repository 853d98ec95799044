package main

import (
	"context"
	"fmt"
	"os"
	"sort"

	json "github.com/goccy/go-json"
	"github.com/urfave/cli/v3"

	"github.com/zhubonan/castepxbin/castepbin"
	"github.com/zhubonan/castepxbin/internal/logger"
)

func dumpCmd() *cli.Command {
	var (
		headers  []string
		keysOnly bool
	)

	return &cli.Command{
		Name:  "dump",
		Usage: "Decode a file and print the namespace as JSON",
		Flags: append(commonFileFlags(),
			&cli.StringSliceFlag{
				Name:        "header",
				Usage:       "restrict decoding to a section header (repeatable)",
				Destination: &headers,
			},
			&cli.BoolFlag{
				Name:        "keys",
				Usage:       "print decoded field names only",
				Destination: &keysOnly,
			},
		),
		Action: func(ctx context.Context, c *cli.Command) error {
			log := logger.FromContext(ctx)

			f, err := os.Open(filePath)
			if err != nil {
				return err
			}
			defer f.Close()

			d := castepbin.Decoder{Order: byteOrder(), Headers: headers}
			ns, err := d.Decode(f)
			if err != nil {
				return err
			}
			log.Debug("decoded namespace", "fields", len(ns))

			if keysOnly {
				keys := make([]string, 0, len(ns))
				for k := range ns {
					keys = append(keys, k)
				}
				sort.Strings(keys)
				for _, k := range keys {
					fmt.Println(k)
				}
				return nil
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(ns)
		},
	}
}
