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
	"github.com/patentdata/pdk/usecase/export"
	"github.com/spf13/cobra"
)

// ExportMain is wrapped by NewExportCommand. It is exported for testing
// purposes.
var ExportMain *export.Main

// NewExportCommand returns a new cobra command wrapping ExportMain.
func NewExportCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	var err error
	ExportMain = export.NewMain()
	exportCommand := &cobra.Command{
		Use:   "export",
		Short: "flatten cached datasets into CSV, SQLite or Kafka",
		Long: `Replays cached datasets page by page, flattens them into the patents,
inventors, assignees and citations tables, and writes the rows to every
configured sink.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := newRun(stderr)
			if err != nil {
				return err
			}
			defer r.Close()
			ExportMain.Log, ExportMain.Stats = r.Log, r.Stats
			start := time.Now()
			if err := ExportMain.Run(); err != nil {
				return err
			}
			r.Log.Printf("done: %v", time.Since(start))
			return nil
		},
	}
	flags := exportCommand.Flags()
	err = commandeer.Flags(flags, ExportMain)
	if err != nil {
		panic(err)
	}
	return exportCommand
}

func init() {
	subcommandFns["export"] = NewExportCommand
}
