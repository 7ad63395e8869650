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
	"bytes"
	"io/ioutil"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pilosa/nyctaxi/test"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func TestSetAllConfig(t *testing.T) {
	cfg := test.TempFile(t, `batch-size = 10
kafka-hosts = ["a:9092", "b:9092"]
store-path = "config.db"
verbose = true
`)
	t.Setenv("NYCTAXI_STORE_PATH", "env.db")
	t.Setenv("NYCTAXI_STORE", "leveldb")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	config := flags.String("config", "", "")
	store := flags.String("store", "bolt", "")
	storePath := flags.String("store-path", "trips.db", "")
	batchSize := flags.Int("batch-size", 1000, "")
	kafkaHosts := flags.StringSlice("kafka-hosts", nil, "")
	verbose := flags.Bool("verbose", false, "")
	bind := flags.String("bind", ":5000", "")

	err := flags.Parse([]string{"--config", cfg, "--store", "bolt"})
	test.ErrNil(t, err, "parsing flags")
	err = setAllConfig(viper.New(), flags, "NYCTAXI")
	test.ErrNil(t, err, "setting config")

	test.MustBe(t, cfg, *config, "config")
	test.MustBe(t, "bolt", *store, "flag beats env")
	test.MustBe(t, "env.db", *storePath, "env beats config file")
	test.MustBe(t, 10, *batchSize, "config file beats default")
	test.MustBe(t, []string{"a:9092", "b:9092"}, *kafkaHosts, "string slice from config file")
	test.MustBe(t, true, *verbose, "bool from config file")
	test.MustBe(t, ":5000", *bind, "default")
}

func TestSetAllConfigBadFile(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("config", "", "")
	err := flags.Parse([]string{"--config", filepath.Join(t.TempDir(), "missing.toml")})
	test.ErrNil(t, err, "parsing flags")
	if err := setAllConfig(viper.New(), flags, "NYCTAXI"); err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}

const sample = "tpep_pickup_datetime,tpep_dropoff_datetime,passenger_count,trip_distance,pickup_longitude,pickup_latitude,RatecodeID,store_and_fwd_flag,dropoff_longitude,dropoff_latitude,payment_type,fare_amount,extra,mta_tax,tip_amount,tolls_amount,improvement_surcharge,total_amount\n" +
	"2016-01-31 01:00:00,2016-01-31 01:20:00,2,5.52,-73.9801,40.7430,1,N,-73.9134,40.7631,2,19,0.5,0.5,0,0,0.3,20.3\n" +
	"2016-02-01 08:15:30,2016-02-01 08:31:00,1,2.3,-73.9935,40.7506,1,Y,-73.9776,40.7614,1,11,0.5,0.5,2.36,0,0.3,14.66\n"

func TestETLCommand(t *testing.T) {
	source := test.TempFile(t, sample)
	db := filepath.Join(t.TempDir(), "trips.db")
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	rc := NewRootCommand(nil, stdout, stderr)
	rc.SetArgs([]string{"etl", "--source", source, "--store-path", db, "2016-02-01"})
	err := rc.Execute()
	test.ErrNil(t, err, "executing etl")
	test.MustBe(t, "2016-02-01", ETLMain.Date, "positional date")
	if !strings.Contains(stdout.String(), "2016-02-01: found 1, kept 1, deleted 0, inserted 1") {
		t.Fatalf("unexpected output: %s", stdout)
	}

	rc = NewRootCommand(nil, stdout, stderr)
	rc.SetArgs([]string{"etl", "--source", filepath.Join(t.TempDir(), "missing.csv"), "--store-path", db})
	err = rc.Execute()
	if err == nil || !strings.Contains(err.Error(), "2016-01-31 failed in extracting (SourceUnreadable)") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestBackfillCommand(t *testing.T) {
	source := test.TempFile(t, sample)
	db := filepath.Join(t.TempDir(), "trips.db")
	stdout := &bytes.Buffer{}
	rc := NewRootCommand(nil, stdout, &bytes.Buffer{})
	rc.SetArgs([]string{"backfill", "--source", source, "--store-path", db,
		"--start", "2016-01-30", "--end", "2016-02-01", "--retry-delay", "1ms"})
	err := rc.Execute()
	test.ErrNil(t, err, "executing backfill")
	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	test.MustBe(t, 3, len(lines), "output lines")
	test.MustBe(t, "2016-01-30: no trips found", lines[0])
	test.MustBe(t, 1, BackfillMain.Retries, "default retries")
}

func TestSetAllConfigYAML(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "nyctaxi.yaml")
	err := ioutil.WriteFile(cfg, []byte("bind: \":8080\"\n"), 0600)
	test.ErrNil(t, err, "writing config")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("config", "", "")
	bind := flags.String("bind", ":5000", "")
	test.ErrNil(t, flags.Parse([]string{"--config", cfg}), "parsing flags")
	test.ErrNil(t, setAllConfig(viper.New(), flags, "NYCTAXI"), "setting config")
	test.MustBe(t, ":8080", *bind, "bind from yaml")
}
