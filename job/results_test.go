package job
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
  "path"
  "testing"
  "strings"
  "io/ioutil"

  "github.com/stretchr/testify/assert"
  "github.com/stretchr/testify/require"
)

func TestInitTable(t *testing.T) {
  table := path.Join(t.TempDir(), ResultsFileName)
  require.NoError(t, InitTable(table))

  dat, err := ioutil.ReadFile(table)
  require.NoError(t, err)
  assert.Equal(t, TableHeader+"\n", string(dat))
}

func TestResultRoundTrip(t *testing.T) {
  table := path.Join(t.TempDir(), ResultsFileName)
  require.NoError(t, InitTable(table))

  result := Result{
    Nodes:     2,
    NProcs:    16,
    MeshLevel: 3,
    Cells:     144000,
    WallTime:  37.254361,
    ExitCode:  0,
  }
  require.NoError(t, AppendResult(table, &result))

  results, err := ReadTable(table)
  require.NoError(t, err)
  require.Len(t, results, 1)
  assert.Equal(t, result, results[0])
}

// Rows appended by the batch script body use a fixed six-decimal wall time;
// parsing must preserve the precision as written.
func TestReadTableShellRow(t *testing.T) {
  table := path.Join(t.TempDir(), ResultsFileName)
  err := ioutil.WriteFile(table, []byte(
    TableHeader+"\n"+"2,16,3,144000,37.250000,143\n",
  ), 0644)
  require.NoError(t, err)

  results, err := ReadTable(table)
  require.NoError(t, err)
  require.Len(t, results, 1)
  assert.Equal(t, 2, results[0].Nodes)
  assert.Equal(t, 16, results[0].NProcs)
  assert.Equal(t, 3, results[0].MeshLevel)
  assert.Equal(t, 144000, results[0].Cells)
  assert.Equal(t, 37.25, results[0].WallTime)
  assert.Equal(t, 143, results[0].ExitCode)
}

func TestReadTableInvariant(t *testing.T) {
  table := path.Join(t.TempDir(), ResultsFileName)
  require.NoError(t, InitTable(table))

  // Only node count and wall time vary within one run's table
  for i, nodes := range []int{1, 2, 4} {
    require.NoError(t, AppendResult(table, &Result{
      Nodes:     nodes,
      NProcs:    16,
      MeshLevel: 3,
      Cells:     144000,
      WallTime:  float64(100 - i),
    }))
  }

  results, err := ReadTable(table)
  require.NoError(t, err)
  require.Len(t, results, 3)

  for _, result := range results {
    assert.Equal(t, 16, result.NProcs)
    assert.Equal(t, 3, result.MeshLevel)
    assert.Equal(t, 144000, result.Cells)
  }
}

func TestReadTableBadHeader(t *testing.T) {
  table := path.Join(t.TempDir(), ResultsFileName)
  err := ioutil.WriteFile(table, []byte("a,b,c\n1,2,3\n"), 0644)
  require.NoError(t, err)

  _, err = ReadTable(table)
  require.Error(t, err)
}

func TestCombine(t *testing.T) {
  dir := t.TempDir()

  var tables []string
  rows := map[string][]string{
    "np2_ml1": {"1,2,1,6000,10.500000,0", "2,2,1,6000,6.250000,0"},
    "np4_ml1": {"1,4,1,6000,8.100000,0"},
    "np8_ml1": nil, // this combination failed before producing a table
  }

  for _, name := range []string{"np2_ml1", "np4_ml1", "np8_ml1"} {
    table := path.Join(dir, name+".csv")
    tables = append(tables, table)

    if rows[name] == nil {
      continue
    }

    contents := TableHeader + "\n" + strings.Join(rows[name], "\n") + "\n"
    require.NoError(t, ioutil.WriteFile(table, []byte(contents), 0644))
  }

  combined := path.Join(dir, CombinedFileName)
  count, err := Combine(tables, combined)
  require.NoError(t, err)
  assert.Equal(t, 3, count)

  dat, err := ioutil.ReadFile(combined)
  require.NoError(t, err)

  lines := strings.Split(strings.TrimRight(string(dat), "\n"), "\n")
  require.Len(t, lines, 4)
  assert.Equal(t, TableHeader, lines[0])

  // Iteration order is preserved, rows carried over verbatim
  assert.Equal(t, rows["np2_ml1"][0], lines[1])
  assert.Equal(t, rows["np2_ml1"][1], lines[2])
  assert.Equal(t, rows["np4_ml1"][0], lines[3])
}

func TestCombineAllMissing(t *testing.T) {
  dir := t.TempDir()

  combined := path.Join(dir, CombinedFileName)
  count, err := Combine([]string{path.Join(dir, "nope.csv")}, combined)
  require.NoError(t, err)
  assert.Equal(t, 0, count)

  _, err = os.Stat(combined)
  require.NoError(t, err)
}
