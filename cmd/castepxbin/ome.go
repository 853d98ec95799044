package main

import (
	"context"
	"fmt"
	"math/cmplx"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/zhubonan/castepxbin/omebin"
)

func omeCmd() *cli.Command {
	var (
		nbands int64
		nkpts  int64
		nspins int64
		kind   string
	)

	return &cli.Command{
		Name:  "ome",
		Usage: "Summarize an optical matrix file (ome_bin, cst_ome, dome_bin)",
		Flags: append(commonFileFlags(),
			&cli.Int64Flag{Name: "bands", Usage: "number of bands", Required: true, Destination: &nbands},
			&cli.Int64Flag{Name: "kpoints", Usage: "number of k-points", Required: true, Destination: &nkpts},
			&cli.Int64Flag{Name: "spins", Usage: "number of spins", Value: 1, Destination: &nspins},
			&cli.StringFlag{Name: "type", Usage: "file type (ome, cst, dome)", Value: "ome", Destination: &kind},
		),
		Action: func(_ context.Context, c *cli.Command) error {
			f, err := os.Open(filePath)
			if err != nil {
				return err
			}
			defer f.Close()

			nb, nk, ns := int(nbands), int(nkpts), int(nspins)
			switch kind {
			case "dome":
				dm, err := omebin.ReadDomeBin(f, nb, nk, ns, byteOrder())
				if err != nil {
					return err
				}
				fmt.Printf("File: %s\n", filePath)
				fmt.Printf("Version: %g | header: %q\n", dm.Version, dm.Header)
				fmt.Printf("Elements: %v (%d values)\n", dm.Elements.Shape, dm.Elements.Len())
				return nil
			case "cst":
				om, err := omebin.ReadCstOme(f, nb, nk, ns, byteOrder())
				if err != nil {
					return err
				}
				printOpticalMatrix(om)
				return nil
			case "ome":
				om, err := omebin.ReadOmeBin(f, nb, nk, ns, byteOrder())
				if err != nil {
					return err
				}
				fmt.Printf("Version: %g | header: %q\n", om.Version, om.Header)
				printOpticalMatrix(om)
				return nil
			default:
				return fmt.Errorf("unknown optical matrix type %q", kind)
			}
		},
	}
}

func printOpticalMatrix(om *omebin.OpticalMatrix) {
	fmt.Printf("File: %s\n", filePath)
	fmt.Printf("Elements: %v (%d values)\n", om.Elements.Shape, om.Elements.Len())
	maxAbs := 0.0
	for _, v := range om.Elements.Data {
		if a := cmplx.Abs(v); a > maxAbs {
			maxAbs = a
		}
	}
	fmt.Printf("Max |element|: %g\n", maxAbs)
}
