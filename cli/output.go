package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/urfave/cli/v2"
)

const (
	formatTable    = "table"
	formatCSV      = "csv"
	formatMarkdown = "markdown"
)

// printf prints a message with a newline.
func printf(w io.Writer, format string, a ...interface{}) {
	//nolint:errcheck
	fmt.Fprintf(w, format+"\n", a...)
}

func checkFormat(c *cli.Context) error {
	switch format := c.String(flagFormat); format {
	case formatTable, formatCSV, formatMarkdown:
		return nil
	default:
		return errors.Errorf("unknown output format %q, expected %s, %s or %s", format, formatTable, formatCSV, formatMarkdown)
	}
}

func renderTable(c *cli.Context, t table.Writer) error {
	if err := checkFormat(c); err != nil {
		return err
	}
	switch c.String(flagFormat) {
	case formatCSV:
		printf(c.App.Writer, "%s", t.RenderCSV())
	case formatMarkdown:
		printf(c.App.Writer, "%s", t.RenderMarkdown())
	default:
		printf(c.App.Writer, "%s", t.Render())
	}
	return nil
}

func joinInts(values []int) string {
	return strings.Join(lo.Map(values, func(v, _ int) string { return strconv.Itoa(v) }), " ")
}
