// odoo2mod turns XML exports of Odoo records into module source files.
package main

import (
	"os"

	"github.com/hupe1980/odoo2mod/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
