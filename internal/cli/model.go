// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"code.hybscloud.com/ordering/internal/model"
)

// ModelOptions holds flags for the model command.
type ModelOptions struct {
	*RootOptions
	Litmus string
}

// litmusPrograms maps --litmus values to program constructors.
var litmusPrograms = map[string]func(fenced bool) *model.Prog{
	"sb": model.SB,
	"mp": model.MP,
}

// NewModelCommand creates the model command.
func NewModelCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ModelOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "model",
		Short: "Show which outcomes each memory model allows",
		Long: `Enumerate every execution of a litmus program under sequential
consistency, x86-TSO and a relaxed model, with and without fences.

The sb program is the store-buffering detector; mp is the message-passing
shape behind the propagation detector. The row marked '*' is the outcome
the detector reports.

Example:
  ordering model --litmus sb
  ordering model --litmus mp --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runModel(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Litmus, "litmus", "sb", "litmus program (sb|mp)")

	return cmd
}

// ModelReport is the evaluation of one program variant.
type ModelReport struct {
	Name    string      `json:"name"`
	Fenced  bool        `json:"fenced"`
	Program string      `json:"program"`
	Rows    []model.Row `json:"rows"`
	table   string
}

// ModelReports is every variant of one litmus program.
type ModelReports []ModelReport

func (r ModelReports) String() string {
	parts := make([]string, len(r))
	for i, rep := range r {
		title := rep.Name
		if rep.Fenced {
			title += " (fenced)"
		}
		parts[i] = title + "\n\n" + rep.Program + "\n\n" + strings.TrimRight(rep.table, "\n")
	}
	return strings.Join(parts, "\n\n")
}

func runModel(opts *ModelOptions, cmd *cobra.Command) error {
	build, ok := litmusPrograms[opts.Litmus]
	if !ok {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid litmus %q: must be sb or mp", opts.Litmus))
	}

	var reports ModelReports
	for _, fenced := range []bool{false, true} {
		p := build(fenced)
		var table strings.Builder
		if err := model.WriteTable(&table, p, model.Models); err != nil {
			return WrapExitError(ExitFailure, "failed to render table", err)
		}
		reports = append(reports, ModelReport{
			Name:    p.Name,
			Fenced:  fenced,
			Program: p.String(),
			Rows:    model.Rows(p, model.Models),
			table:   table.String(),
		})
	}
	return opts.formatter(cmd).Success(reports)
}
