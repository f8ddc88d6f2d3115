// umbrella synthesizes a Helm umbrella chart from compiled-in sub-charts.
package main

import (
	"os"

	"github.com/KenkoGeek/timonel-examples/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
