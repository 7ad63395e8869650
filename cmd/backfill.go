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
	"github.com/pilosa/nyctaxi/usecase/taxi"
	"github.com/spf13/cobra"
)

// BackfillMain is wrapped by NewBackfillCommand and only exported for testing
// purposes.
var BackfillMain *taxi.Backfill

// NewBackfillCommand returns a new cobra command wrapping BackfillMain.
func NewBackfillCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	BackfillMain = taxi.NewBackfill()
	BackfillMain.Stderr = stderr
	backfillCommand := &cobra.Command{
		Use:   "backfill",
		Short: "backfill - run etl for every day of a date range",
		Long: `Runs etl for each day from --start to --end inclusive, one day
after the other. A failed day is retried --retries times, --retry-delay apart,
before moving on to the next day. The command fails if any day failed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()
			results, err := BackfillMain.Run(ctx)
			for _, res := range results {
				if res.Err != nil {
					fmt.Fprintf(stdout, "%s: failed in %s (%s): %v\n", res.Day, res.FailedIn, res.Kind, res.Err)
					continue
				}
				printResult(stdout, res)
			}
			return err
		},
	}
	flags := backfillCommand.Flags()
	err := commandeer.Flags(flags, BackfillMain.Main)
	if err != nil {
		panic(err)
	}
	// the days come from --start and --end.
	if err := flags.MarkHidden("date"); err != nil {
		panic(err)
	}
	flags.StringVar(&BackfillMain.Start, "start", BackfillMain.Start, "First day to load, as YYYY-MM-DD.")
	flags.StringVar(&BackfillMain.End, "end", BackfillMain.End, "Last day to load, as YYYY-MM-DD.")
	flags.IntVar(&BackfillMain.Retries, "retries", BackfillMain.Retries, "Number of retries of a failed day.")
	flags.DurationVar(&BackfillMain.RetryDelay, "retry-delay", BackfillMain.RetryDelay, "Wait between retries of a failed day.")
	return backfillCommand
}

func init() {
	subcommandFns["backfill"] = NewBackfillCommand
}
