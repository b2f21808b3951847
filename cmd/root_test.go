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
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func TestRootCommandHasSubcommands(t *testing.T) {
	rc := NewRootCommand(nil, &bytes.Buffer{}, &bytes.Buffer{})
	names := []string{}
	for _, c := range rc.Commands() {
		names = append(names, c.Name())
	}
	sort.Strings(names)
	require.Equal(t, []string{"citations", "export", "fetch", "serve", "yearly"}, names)
}

func TestSetAllConfig(t *testing.T) {
	conf := filepath.Join(t.TempDir(), "pdk.toml")
	require.NoError(t, os.WriteFile(conf, []byte(`
data-dir = "from-file"
url = "http://file"
s3-bucket = "file-bucket"
patents = ["1", "2"]
`), 0644))
	t.Setenv("PDK_URL", "http://env")
	t.Setenv("PDK_PAGE_INTERVAL", "5s")

	var (
		config, dataDir, url, bucket string
		interval                     time.Duration
		patents                      []string
	)
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.StringVar(&config, "config", "", "")
	flags.StringVar(&dataDir, "data-dir", "data", "")
	flags.StringVar(&url, "url", "http://default", "")
	flags.StringVar(&bucket, "s3-bucket", "", "")
	flags.DurationVar(&interval, "page-interval", time.Minute, "")
	flags.StringSliceVar(&patents, "patents", nil, "")
	require.NoError(t, flags.Parse([]string{"--config", conf, "--s3-bucket", "flag-bucket"}))

	require.NoError(t, setAllConfig(viper.New(), flags, "PDK"))
	require.Equal(t, "from-file", dataDir)
	require.Equal(t, "http://env", url, "env beats file")
	require.Equal(t, "flag-bucket", bucket, "flag beats file")
	require.Equal(t, 5*time.Second, interval)
	require.Equal(t, []string{"1", "2"}, patents)
}

func TestSetAllConfigBadFile(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("config", "", "")
	require.NoError(t, flags.Parse([]string{"--config", filepath.Join(t.TempDir(), "missing.toml")}))
	require.Error(t, setAllConfig(viper.New(), flags, "PDK"))
}

func TestRun(t *testing.T) {
	stderr := &bytes.Buffer{}
	progress = true
	defer func() { progress = false }()
	r, err := newRun(stderr)
	require.NoError(t, err)
	require.NotEmpty(t, r.ID)
	r.Stats.Count("fetch.pages", 2, 1)
	r.Log.Debugf("not shown")
	require.NoError(t, r.Close())
	require.Contains(t, stderr.String(), "fetch.pages: 2")
}
