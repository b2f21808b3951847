// Copyright 2017 Pilosa Corp.
//
// Redistribution and use in source and binary forms, with or without
// modification, are permitted provided that the following conditions
// are met:
//
// 1. Redistributions of source code must retain the above copyright
// notice, this list of conditions and the following disclaimer.
//
// 2. Redistributions in binary form must reproduce the above copyright
// notice, this list of conditions and the following disclaimer in the
// documentation and/or other materials provided with the distribution.
//
// 3. Neither the name of the copyright holder nor the names of its
// contributors may be used to endorse or promote products derived
// from this software without specific prior written permission.
//
// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND
// CONTRIBUTORS "AS IS" AND ANY EXPRESS OR IMPLIED WARRANTIES,
// INCLUDING, BUT NOT LIMITED TO, THE IMPLIED WARRANTIES OF
// MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE ARE
// DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR
// CONTRIBUTORS BE LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL,
// SPECIAL, EXEMPLARY, OR CONSEQUENTIAL DAMAGES (INCLUDING,
// BUT NOT LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR
// SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS
// INTERRUPTION) HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY,
// WHETHER IN CONTRACT, STRICT LIABILITY, OR TORT (INCLUDING
// NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE
// OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH
// DAMAGE.

package cmd

import (
	"io"
	"time"

	"github.com/jaffee/commandeer"
	"github.com/patentdata/pdk/usecase/yearly"
	"github.com/spf13/cobra"
)

// YearlyMain is wrapped by NewYearlyCommand. It is exported for testing
// purposes.
var YearlyMain *yearly.Main

// NewYearlyCommand returns a new cobra command wrapping YearlyMain.
func NewYearlyCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	var err error
	YearlyMain = yearly.NewMain()
	yearlyCommand := &cobra.Command{
		Use:   "yearly",
		Short: "fetch, summarize and map a range of years",
		Long: `Makes sure every quarter of each year is cached, summarizes the years,
and writes a heat map per year and view, the top assignee tables, and a
time series chart of all years.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := newRun(stderr)
			if err != nil {
				return err
			}
			defer r.Close()
			YearlyMain.Log, YearlyMain.Stats, YearlyMain.Stdout = r.Log, r.Stats, stdout
			start := time.Now()
			if err := YearlyMain.RunContext(cmd.Context()); err != nil {
				return err
			}
			r.Log.Printf("done: %v", time.Since(start))
			return nil
		},
	}
	flags := yearlyCommand.Flags()
	err = commandeer.Flags(flags, YearlyMain)
	if err != nil {
		panic(err)
	}
	return yearlyCommand
}

func init() {
	subcommandFns["yearly"] = NewYearlyCommand
}
