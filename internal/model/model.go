// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package model

import (
	"fmt"
	"io"
	"strings"
)

// Model evaluates a program to the set of outcomes it permits.
//
// Eval panics if p fails Validate.
type Model interface {
	Eval(p *Prog) OutcomeSet
	String() string
}

// Models lists the supported models from strongest to weakest.
var Models = []Model{SC{}, TSO{}, Relaxed{}}

// Allowed reports whether m permits outcome o of p.
func Allowed(m Model, p *Prog, o Outcome) bool {
	s := m.Eval(p)
	return s.Has(o)
}

func mustValidate(p *Prog) {
	if err := p.Validate(); err != nil {
		panic(err)
	}
}

// Row is one outcome of a table: which models permit it.
type Row struct {
	Outcome string          `json:"outcome"`
	Witness bool            `json:"witness"`
	Allowed map[string]bool `json:"allowed"`
}

// Rows evaluates p under every model and returns one row per outcome any
// model permits, in ascending outcome order.
func Rows(p *Prog, models []Model) []Row {
	sets := make([]OutcomeSet, len(models))
	var all OutcomeSet
	for i, m := range models {
		sets[i] = m.Eval(p)
		all.AddAll(&sets[i])
	}

	var rows []Row
	for _, o := range all.Outcomes() {
		r := Row{
			Outcome: p.Format(o),
			Witness: o == p.Witness,
			Allowed: make(map[string]bool, len(models)),
		}
		for i, m := range models {
			r.Allowed[m.String()] = sets[i].Has(o)
		}
		rows = append(rows, r)
	}
	return rows
}

// WriteTable prints p's outcomes as a Y/N table, one column per model.
// The witness row is marked with '*'.
func WriteTable(w io.Writer, p *Prog, models []Model) error {
	header := []string{fmt.Sprintf("%-16s", "outcome")}
	for _, m := range models {
		header = append(header, fmt.Sprintf("%-8s", m.String()))
	}
	if _, err := fmt.Fprintln(w, strings.TrimRight(strings.Join(header, " "), " ")); err != nil {
		return err
	}

	for _, r := range Rows(p, models) {
		label := r.Outcome
		if r.Witness {
			label += " *"
		}
		cols := []string{fmt.Sprintf("%-16s", label)}
		for _, m := range models {
			yn := "N"
			if r.Allowed[m.String()] {
				yn = "Y"
			}
			cols = append(cols, fmt.Sprintf("%-8s", yn))
		}
		if _, err := fmt.Fprintln(w, strings.TrimRight(strings.Join(cols, " "), " ")); err != nil {
			return err
		}
	}
	return nil
}
