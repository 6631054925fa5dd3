// Command cellimage slices images into terminal grid cells.
package main

import "github.com/gogpu/cellimage/internal/cli"

var version = "dev"

func main() {
	cli.SetVersion(version)
	cli.Execute()
}
