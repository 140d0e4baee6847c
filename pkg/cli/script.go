package cli

import (
	"fmt"

	"github.com/devicelab-dev/webquery/pkg/core"
	"github.com/devicelab-dev/webquery/pkg/jsengine"
	"github.com/devicelab-dev/webquery/pkg/selector"
	"github.com/urfave/cli/v2"
)

// Selector kinds accepted by --kind.
const (
	kindQuery  = "qs"
	kindJQuery = "jquery"
	kindSizzle = "sizzle"
)

// selectorFlags build the selector shared by script and query.
var selectorFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "kind",
		Aliases: []string{"k"},
		Usage:   "Selector kind (qs, jquery, sizzle)",
		Value:   kindQuery,
	},
	&cli.StringFlag{
		Name:  "context",
		Usage: "Scope a jquery or sizzle selector to the elements matching this selector",
	},
	&cli.StringFlag{
		Name:  "variable",
		Usage: "Global a jquery selector is called through (e.g. $)",
	},
	&cli.StringFlag{
		Name:  "base",
		Usage: "Base element expression for a qs selector",
	},
	&cli.IntFlag{
		Name:  "eq",
		Usage: "Reduce a jquery selector to the element at this index",
	},
	&cli.StringFlag{
		Name:  "find",
		Usage: "Descend into matches of a jquery selector",
	},
}

var scriptCommand = &cli.Command{
	Name:      "script",
	Usage:     "Print the JavaScript a selector evaluates",
	ArgsUsage: "SELECTOR",
	Description: `Print the expression a selector sends to the browser.

Examples:
  webquery script "#main .item"
  webquery script --kind jquery --context "#menu" --find li --eq 0 "ul"
  webquery script --kind sizzle --check "div:first"`,
	Flags: append([]cli.Flag{
		&cli.BoolFlag{
			Name:  "check",
			Usage: "Syntax-check the expression",
		},
	}, selectorFlags...),
	Action: runScript,
}

func runScript(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	sel, err := buildSelector(c, cfg.Libraries.JQueryVariable)
	if err != nil {
		return err
	}

	expr := selector.All(sel)
	if c.Bool("check") {
		if err := jsengine.CheckExpression(expr); err != nil {
			return err
		}
	}
	fmt.Fprintln(c.App.Writer, expr)
	return nil
}

// buildSelector composes the selector described by the selector flags and
// the first argument. variable is the jQuery global used when --variable is
// not given.
func buildSelector(c *cli.Context, variable string) (selector.Selector, error) {
	if c.NArg() != 1 {
		return nil, fmt.Errorf("expected exactly one SELECTOR argument, got %d", c.NArg())
	}
	raw := c.Args().First()

	kind := c.String("kind")
	if kind != kindJQuery && (c.IsSet("eq") || c.IsSet("find") || c.IsSet("variable")) {
		return nil, fmt.Errorf("--eq, --find and --variable need --kind %s", kindJQuery)
	}
	if kind != kindQuery && c.IsSet("base") {
		return nil, fmt.Errorf("--base needs --kind %s", kindQuery)
	}

	switch kind {
	case kindQuery:
		if c.IsSet("context") {
			return nil, fmt.Errorf("--context needs --kind %s or %s", kindJQuery, kindSizzle)
		}
		q := selector.QuerySelector(raw)
		if c.IsSet("base") {
			q = selector.QuerySelectorIn(raw, c.String("base"))
		}
		if err := q.Err(); err != nil {
			return nil, err
		}
		return q, nil

	case kindJQuery:
		if variable == "" {
			variable = selector.DefaultVariable
		}
		if c.IsSet("variable") {
			variable = c.String("variable")
		}
		var context *selector.JQuery
		if c.IsSet("context") {
			context = selector.JQuerySelector(c.String("context"), selector.WithVariable(variable))
		}
		j, err := selector.NewJQuery(raw, context, variable)
		if err != nil {
			return nil, err
		}
		if c.IsSet("find") {
			j = j.Find(c.String("find"))
		}
		if c.IsSet("eq") {
			j = j.Eq(c.Int("eq"))
		}
		if err := j.Err(); err != nil {
			return nil, err
		}
		return j, nil

	case kindSizzle:
		var context *selector.Sizzle
		if c.IsSet("context") {
			context = selector.SizzleSelector(c.String("context"), nil)
		}
		s, err := selector.NewSizzle(raw, context)
		if err != nil {
			return nil, err
		}
		return s, nil
	}

	return nil, core.InvalidArgument("kind", fmt.Sprintf("unknown selector kind %q (qs, jquery, sizzle)", kind))
}
