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

	"github.com/jaffee/commandeer"
	"github.com/patentdata/pdk/usecase/citations"
	"github.com/spf13/cobra"
)

// CitationsMain is wrapped by NewCitationsCommand. It is exported for
// testing purposes.
var CitationsMain *citations.Main

// NewCitationsCommand returns a new cobra command wrapping CitationsMain.
func NewCitationsCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	var err error
	CitationsMain = citations.NewMain()
	citationsCommand := &cobra.Command{
		Use:   "citations",
		Short: "follow citations outwards and map each layer",
		Long: `Starting from a set of patents, fetches the patents they cite, then
the patents those cite, and so on, caching each layer. The inventors of
each layer are drawn as a heat map. Without patent numbers a walk saved
under the given name is drawn again.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := newRun(stderr)
			if err != nil {
				return err
			}
			defer r.Close()
			CitationsMain.Log, CitationsMain.Stats = r.Log, r.Stats
			return CitationsMain.RunContext(cmd.Context())
		},
	}
	flags := citationsCommand.Flags()
	err = commandeer.Flags(flags, CitationsMain)
	if err != nil {
		panic(err)
	}
	return citationsCommand
}

func init() {
	subcommandFns["citations"] = NewCitationsCommand
}
