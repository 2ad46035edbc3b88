package main

import (
	"os"

	"github.com/prism-render/prism/cmd"
	"github.com/urfave/cli"
)

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "prism"
	app.Usage = "geometry intersection and light sampling core for path tracing"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "bench",
			Usage: "benchmark intersection queries against a procedural scene",
			Description: `
Generate a procedural triangle scene, pre-process it with the selected
acceleration structure and fire a batch of rays from concurrent workers,
cross-checking a sample of them against the brute force reference.`,
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:  "primitives, p",
					Value: 50000,
					Usage: "number of procedural triangles",
				},
				cli.IntFlag{
					Name:  "rays, r",
					Value: 1000000,
					Usage: "number of intersection queries",
				},
				cli.StringFlag{
					Name:  "accel, a",
					Value: "bvh",
					Usage: "acceleration structure (bvh or brute)",
				},
				cli.IntFlag{
					Name:  "leaf-size",
					Value: 10,
					Usage: "minimum primitives per BVH leaf",
				},
				cli.Int64Flag{
					Name:  "seed",
					Value: 1,
					Usage: "RNG seed for the procedural scene and ray batch",
				},
				cli.IntFlag{
					Name:  "check",
					Value: 1000,
					Usage: "rays to cross-check against brute force (0 to skip)",
				},
			},
			Action: cmd.Bench,
		},
	}

	app.Run(os.Args)
}
