package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/devicelab-dev/webquery/pkg/jsengine"
	"github.com/urfave/cli/v2"
)

var checkCommand = &cli.Command{
	Name:      "check",
	Usage:     "Syntax-check a script before sending it to a browser",
	ArgsUsage: "FILE",
	Description: `Compile FILE as a function body, the form WebDriver's execute script
takes, and report syntax errors. Use - to read standard input.

Examples:
  webquery check snippet.js
  echo "return document.title;" | webquery check -`,
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "expression",
			Usage: "Treat the input as an expression instead of a function body",
		},
	},
	Action: runCheck,
}

func runCheck(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one FILE argument, got %d", c.NArg())
	}
	file := c.Args().First()

	var (
		data []byte
		err  error
	)
	if file == "-" {
		data, err = io.ReadAll(c.App.Reader)
	} else {
		data, err = os.ReadFile(file) //#nosec G304 -- user-provided script
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", file, err)
	}

	if c.Bool("expression") {
		err = jsengine.CheckExpression(string(data))
	} else {
		err = jsengine.Check(string(data))
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "%s: ok\n", file)
	return nil
}
