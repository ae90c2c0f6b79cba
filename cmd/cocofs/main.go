package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/thorpej/cocofs"
	"github.com/thorpej/cocofs/disks"
	"github.com/urfave/cli/v2"
)

func main() {
	app := newApp()
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %s\n", app.Name, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "cocofs",
		Usage: "Manipulate TRS-80 Color Computer (CoCo DOS) disk images",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "image",
				Aliases:  []string{"i"},
				Usage:    "disk image file; names ending in .rle.gz are compressed",
				EnvVars:  []string{"COCOFS_IMAGE"},
				Required: true,
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "log debugging information to stderr",
				EnvVars: []string{"COCOFS_VERBOSE"},
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "dump",
				Usage:  "Show every directory entry and granule chain, and check consistency",
				Action: dumpImage,
			},
			{
				Name:  "format",
				Usage: "Create a new, empty image, overwriting any existing one",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "compressed",
						Usage: "write the image compressed regardless of its name",
					},
				},
				Action: formatImage,
			},
			{
				Name:      "ls",
				Usage:     "List files",
				ArgsUsage: "[FILE...]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Usage:   "output format: text, table, or csv",
						Value:   string(cocofs.ListText),
						EnvVars: []string{"COCOFS_LS_FORMAT"},
					},
				},
				Action: listFiles,
			},
			{
				Name:      "rm",
				Usage:     "Delete files",
				ArgsUsage: "FILE...",
				Action:    removeFiles,
			},
			{
				Name:  "copyin",
				Usage: "Copy host files into the image",
				Description: "The type and encoding of each file are guessed from its extension.\n" +
					"Override them with qualifiers, e.g. loader.bin[Code,Binary].",
				ArgsUsage: "FILE[TYPE,ENCODING]...",
				Action:    copyIn,
			},
			{
				Name:      "copyout",
				Usage:     "Copy files out of the image",
				ArgsUsage: "FILE...",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "dest",
						Usage: "directory to write files to",
						Value: ".",
					},
				},
				Action: copyOut,
			},
			{
				Name:      "compress",
				Usage:     "Write a compressed copy of the image",
				ArgsUsage: "OUTPUT",
				Action:    convertImage(disks.Compressed),
			},
			{
				Name:      "decompress",
				Usage:     "Write a raw copy of the image",
				ArgsUsage: "OUTPUT",
				Action:    convertImage(disks.Raw),
			},
		},
	}
}

func options(context *cli.Context) cocofs.Options {
	level := slog.LevelInfo
	if context.Bool("verbose") {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return cocofs.Options{Logger: slog.New(handler), Stdout: context.App.Writer}
}

func mount(context *cli.Context) (*cocofs.Volume, error) {
	return cocofs.Mount(disks.NewImageFile(context.String("image")), options(context))
}

// requireArgs checks the number of positional arguments. A negative `most`
// means there's no upper limit.
func requireArgs(context *cli.Context, least, most int) error {
	n := context.NArg()
	if n < least || (most >= 0 && n > most) {
		cli.ShowSubcommandHelp(context)
		return cli.Exit("", 2)
	}
	return nil
}

func dumpImage(context *cli.Context) error {
	if err := requireArgs(context, 0, 0); err != nil {
		return err
	}
	volume, err := mount(context)
	if err != nil {
		return err
	}
	_, err = volume.Dump()
	return err
}

func formatImage(context *cli.Context) error {
	if err := requireArgs(context, 0, 0); err != nil {
		return err
	}
	file := disks.NewImageFile(context.String("image"))
	if context.Bool("compressed") {
		file.Representation = disks.Compressed
	}
	return cocofs.Create(file, options(context)).Flush()
}

func listFiles(context *cli.Context) error {
	format, err := cocofs.ParseListFormat(context.String("format"))
	if err != nil {
		return err
	}
	volume, err := mount(context)
	if err != nil {
		return err
	}
	return volume.List(format, context.Args().Slice()...)
}

func removeFiles(context *cli.Context) error {
	if err := requireArgs(context, 1, -1); err != nil {
		return err
	}
	volume, err := mount(context)
	if err != nil {
		return err
	}
	return volume.Remove(context.Args().Slice()...)
}

func copyIn(context *cli.Context) error {
	if err := requireArgs(context, 1, -1); err != nil {
		return err
	}
	volume, err := mount(context)
	if err != nil {
		return err
	}
	return volume.CopyIn(context.Args().Slice()...)
}

func copyOut(context *cli.Context) error {
	if err := requireArgs(context, 1, -1); err != nil {
		return err
	}
	volume, err := mount(context)
	if err != nil {
		return err
	}
	return volume.CopyOut(context.String("dest"), context.Args().Slice()...)
}

func convertImage(representation disks.Representation) cli.ActionFunc {
	return func(context *cli.Context) error {
		if err := requireArgs(context, 1, 1); err != nil {
			return err
		}
		source := disks.NewImageFile(context.String("image"))
		dest := disks.ImageFile{Path: context.Args().First(), Representation: representation}
		return source.Convert(dest)
	}
}
