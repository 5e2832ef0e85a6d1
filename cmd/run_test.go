package cmd
// SPDX-License-Identifier: BSD-3-Clause
//
// Authors: Alexander Jung <a.jung@lancs.ac.uk>
//
// Copyright (c) 2021, Lancaster University.  All rights reserved.
//
// Redistribution and use in source and binary forms, with or without
// modification, are permitted provided that the following conditions
// are met:
//
// 1. Redistributions of source code must retain the above copyright
//    notice, this list of conditions and the following disclaimer.
// 2. Redistributions in binary form must reproduce the above copyright
//    notice, this list of conditions and the following disclaimer in the
//    documentation and/or other materials provided with the distribution.
// 3. Neither the name of the copyright holder nor the names of its
//    contributors may be used to endorse or promote products derived from
//    this software without specific prior written permission.
//
// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS "AS IS"
// AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT LIMITED TO, THE
// IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE
// ARE DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR CONTRIBUTORS BE
// LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL, SPECIAL, EXEMPLARY, OR
// CONSEQUENTIAL DAMAGES (INCLUDING, BUT NOT LIMITED TO, PROCUREMENT OF
// SUBSTITUTE GOODS OR SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS
// INTERRUPTION) HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY, WHETHER IN
// CONTRACT, STRICT LIABILITY, OR TORT (INCLUDING NEGLIGENCE OR OTHERWISE)
// ARISING IN ANY WAY OUT OF THE USE OF THIS SOFTWARE, EVEN IF ADVISED OF THE
// POSSIBILITY OF SUCH DAMAGE.

import (
  "os"
  "testing"
  "strings"
  "io/ioutil"

  "github.com/stretchr/testify/assert"
  "github.com/stretchr/testify/require"

  "github.com/cfd-hpc/foambench/internal/errs"
)

// setTempDir redirects the process temporary directory for one test.
func setTempDir(t *testing.T) string {
  t.Helper()

  tmp := t.TempDir()
  oldTmp := os.Getenv("TMPDIR")
  os.Setenv("TMPDIR", tmp)
  t.Cleanup(func() { os.Setenv("TMPDIR", oldTmp) })

  return tmp
}

// Rejected input must leave nothing behind, in particular no fallback
// output directory.
func TestParamsValidatesBeforeTempDir(t *testing.T) {
  tmp := setTempDir(t)

  config := &RunConfig{
    Container: "solver.sif",
    NProcs:    16,
    MeshLevel: 5,
    Nodes:     "1,2",
  }

  _, err := config.Params()
  require.Error(t, err)
  assert.True(t, errs.Is(err, errs.CodeConfiguration))

  entries, err := ioutil.ReadDir(tmp)
  require.NoError(t, err)
  assert.Empty(t, entries)
}

func TestParamsTempDirFallback(t *testing.T) {
  tmp := setTempDir(t)

  config := &RunConfig{
    Container: "solver.sif",
    NProcs:    16,
    MeshLevel: 3,
    Nodes:     "1,2",
  }

  params, err := config.Params()
  require.NoError(t, err)
  require.NotEmpty(t, params.OutputDir)
  assert.True(t, strings.HasPrefix(params.OutputDir, tmp), params.OutputDir)

  _, err = os.Stat(params.OutputDir)
  require.NoError(t, err)
}
