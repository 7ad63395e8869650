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
	"fmt"
	"io"

	"github.com/jaffee/commandeer"
	"github.com/pilosa/nyctaxi"
	"github.com/pilosa/nyctaxi/usecase/taxi"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// ETLMain is wrapped by NewETLCommand and only exported for testing purposes.
var ETLMain *taxi.Main

// NewETLCommand returns a new cobra command wrapping ETLMain.
func NewETLCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	ETLMain = taxi.NewMain()
	ETLMain.Stderr = stderr
	etlCommand := &cobra.Command{
		Use:   "etl [date]",
		Short: "etl - replace the stored trips of one day with the trips of the source",
		Long: `Reads the trip CSV, keeps the trips picked up on the given day
(default ` + taxi.DefaultDate + `), drops the ones failing the data quality
rules and replaces that day's trips in the store.

The positional date takes precedence over --date.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				ETLMain.Date = args[0]
			}
			ctx, cancel := signalContext()
			defer cancel()
			res, err := ETLMain.Run(ctx)
			if err != nil {
				return runError(res, err)
			}
			printResult(stdout, res)
			return nil
		},
	}
	flags := etlCommand.Flags()
	err := commandeer.Flags(flags, ETLMain)
	if err != nil {
		panic(err)
	}
	return etlCommand
}

func printResult(w io.Writer, res nyctaxi.Result) {
	if res.NoOp() {
		fmt.Fprintf(w, "%s: no trips found\n", res.Day)
		return
	}
	fmt.Fprintf(w, "%s: found %d, kept %d, deleted %d, inserted %d in %v\n",
		res.Day, res.Found, res.Kept, res.Deleted, res.Inserted, res.Duration)
}

func runError(res nyctaxi.Result, err error) error {
	if res.Day.IsZero() {
		return err
	}
	return errors.Wrapf(err, "%s failed in %s (%s)", res.Day, res.FailedIn, nyctaxi.KindOf(err))
}

func init() {
	subcommandFns["etl"] = NewETLCommand
}
