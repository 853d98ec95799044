package main

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/urfave/cli/v3"

	"github.com/zhubonan/castepxbin/castepbin"
)

func headersCmd() *cli.Command {
	return &cli.Command{
		Name:  "headers",
		Usage: "List the section headers found in a file",
		Flags: commonFileFlags(),
		Action: func(_ context.Context, c *cli.Command) error {
			f, err := os.Open(filePath)
			if err != nil {
				return err
			}
			defer f.Close()

			offsets, checkpoint, err := castepbin.ScanHeaders(f, byteOrder())
			if err != nil {
				return err
			}

			layout := "standard"
			if checkpoint {
				layout = "checkpoint"
			}
			fmt.Printf("File: %s\n", filePath)
			fmt.Printf("Layout: %s | headers=%d\n", layout, len(offsets))

			names := make([]string, 0, len(offsets))
			for name := range offsets {
				names = append(names, name)
			}
			sort.Slice(names, func(i, j int) bool {
				return offsets[names[i]] < offsets[names[j]]
			})
			for _, name := range names {
				fmt.Printf("  %-36s @ %d\n", name, offsets[name])
			}
			return nil
		},
	}
}
