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
  "fmt"
  "path"
  "testing"
  "strings"
  "io/ioutil"

  "github.com/stretchr/testify/assert"
  "github.com/stretchr/testify/require"

  "github.com/cfd-hpc/foambench/spec"
  "github.com/cfd-hpc/foambench/internal/errs"
)

const (
  testBlockMeshDict = `blocks
(
    hex (0 1 2 3 4 5 6 7) (@CELLS_X@ @CELLS_Y@ @CELLS_Z@) simpleGrading (1 1 1)
    hex (8 0 3 9 10 4 7 11) (@CELLS_REF@ @CELLS_Y@ @CELLS_Z@) simpleGrading (1 1 1)
);
`
  testDecomposeParDict = `numberOfSubdomains @NPROCS@;

method          scotch;
`
  testControlDict = `application     pisoFoam;

endTime         0.5;

deltaT          0.0001;
`
)

// writeTemplate lays out a minimal case template for materialization tests.
func writeTemplate(t *testing.T) string {
  t.Helper()

  template := path.Join(t.TempDir(), "template")
  require.NoError(t, os.MkdirAll(path.Join(template, "system"), os.ModePerm))

  files := map[string]string{
    blockMeshDict:    testBlockMeshDict,
    decomposeParDict: testDecomposeParDict,
    controlDict:      testControlDict,
  }
  for name, contents := range files {
    err := ioutil.WriteFile(path.Join(template, name), []byte(contents), 0644)
    require.NoError(t, err)
  }

  return template
}

func templateParams(t *testing.T) *spec.Params {
  return &spec.Params{
    Container: "solver.sif",
    Template:  writeTemplate(t),
    NProcs:    16,
    MeshLevel: 3,
    Nodes:     []int{1, 2},
    OutputDir: t.TempDir(),
  }
}

func TestMaterialize(t *testing.T) {
  for level := spec.MinMeshLevel; level <= spec.MaxMeshLevel; level++ {
    params := templateParams(t)
    params.MeshLevel = level

    workspace, err := Materialize(params)
    require.NoError(t, err)

    cells, err := spec.MeshCells(level)
    require.NoError(t, err)

    dat, err := ioutil.ReadFile(path.Join(workspace, blockMeshDict))
    require.NoError(t, err)

    contents := string(dat)
    assert.NotContains(t, contents, "@CELLS_")
    assert.Contains(t, contents,
      fmt.Sprintf("(%d %d %d)", cells[0], cells[1], cells[2]))
    assert.Contains(t, contents,
      fmt.Sprintf("(%d %d %d)", cells[3], cells[1], cells[2]))
  }
}

func TestMaterializeProcs(t *testing.T) {
  params := templateParams(t)

  workspace, err := Materialize(params)
  require.NoError(t, err)

  dat, err := ioutil.ReadFile(path.Join(workspace, decomposeParDict))
  require.NoError(t, err)
  assert.Contains(t, string(dat), "numberOfSubdomains 16;")
}

func TestMaterializeKeepsEndTime(t *testing.T) {
  params := templateParams(t)

  workspace, err := Materialize(params)
  require.NoError(t, err)

  dat, err := ioutil.ReadFile(path.Join(workspace, controlDict))
  require.NoError(t, err)
  assert.Contains(t, string(dat), "endTime         0.5;")
}

func TestMaterializeEndTimeOverride(t *testing.T) {
  params := templateParams(t)
  params.EndTime = 0.025

  workspace, err := Materialize(params)
  require.NoError(t, err)

  dat, err := ioutil.ReadFile(path.Join(workspace, controlDict))
  require.NoError(t, err)
  assert.Contains(t, string(dat), "endTime         0.025;")
  assert.NotContains(t, string(dat), "endTime         0.5;")
}

func TestMaterializeNeverTouchesTemplate(t *testing.T) {
  params := templateParams(t)

  _, err := Materialize(params)
  require.NoError(t, err)

  dat, err := ioutil.ReadFile(path.Join(params.Template, blockMeshDict))
  require.NoError(t, err)
  assert.Equal(t, testBlockMeshDict, string(dat))
}

func TestMaterializeBadMeshLevel(t *testing.T) {
  params := templateParams(t)
  params.MeshLevel = 5

  _, err := Materialize(params)
  require.Error(t, err)
  assert.True(t, errs.Is(err, errs.CodeConfiguration))

  // Validation precedes any filesystem write
  _, err = os.Stat(path.Join(params.OutputDir, "case"))
  assert.True(t, os.IsNotExist(err))
}

func TestMaterializeMissingTemplate(t *testing.T) {
  params := templateParams(t)
  params.Template = path.Join(t.TempDir(), "nope")

  _, err := Materialize(params)
  require.Error(t, err)
  assert.True(t, errs.Is(err, errs.CodeIO))
}

func TestMaterializeMissingCaseFile(t *testing.T) {
  params := templateParams(t)
  require.NoError(t, os.Remove(path.Join(params.Template, decomposeParDict)))

  _, err := Materialize(params)
  require.Error(t, err)
  assert.True(t, errs.Is(err, errs.CodeIO))
}

func TestSubstituteOncePerOccurrence(t *testing.T) {
  filePath := path.Join(t.TempDir(), "dict")
  err := ioutil.WriteFile(filePath, []byte("@NPROCS@ @NPROCS@"), 0644)
  require.NoError(t, err)

  require.NoError(t, substitute(filePath, map[string]string{"@NPROCS@": "8"}))

  dat, err := ioutil.ReadFile(filePath)
  require.NoError(t, err)
  assert.Equal(t, "8 8", string(dat))
  assert.False(t, strings.Contains(string(dat), "@"))
}
