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
  "regexp"
  "strconv"
  "strings"
  "io/ioutil"

  "github.com/otiai10/copy"

  "github.com/cfd-hpc/foambench/log"
  "github.com/cfd-hpc/foambench/spec"
  "github.com/cfd-hpc/foambench/internal/errs"
)

// Placeholder tokens rewritten in the materialized case.  Substitutions are
// literal, whole-token and case-sensitive.
const (
  tokenCellsX   = "@CELLS_X@"
  tokenCellsY   = "@CELLS_Y@"
  tokenCellsZ   = "@CELLS_Z@"
  tokenCellsRef = "@CELLS_REF@"
  tokenNProcs   = "@NPROCS@"
)

const (
  blockMeshDict    = "system/blockMeshDict"
  decomposeParDict = "system/decomposeParDict"
  controlDict      = "system/controlDict"
)

var endTimePattern = regexp.MustCompile(`(?m)^endTime(\s+)\S+;`)

// Materialize copies the case template into the output directory and
// rewrites its placeholder tokens with the concrete parameter values,
// returning the workspace path.  The template tree is never modified.
func Materialize(params *spec.Params) (string, error) {
  // Hard validation before any file is touched
  cells, err := spec.MeshCells(params.MeshLevel)
  if err != nil {
    return "", err
  }

  if _, err := os.Stat(params.Template); os.IsNotExist(err) {
    return "", errs.New(errs.CodeIO,
      "Template directory does not exist: %s", params.Template,
    )
  }

  workspace := path.Join(params.OutputDir, "case")

  log.Debugf("Materializing case: %s -> %s", params.Template, workspace)

  if err := copy.Copy(params.Template, workspace); err != nil {
    return "", errs.New(errs.CodeIO, "Could not copy template: %s", err)
  }

  err = substitute(path.Join(workspace, blockMeshDict), map[string]string{
    tokenCellsX:   strconv.Itoa(cells[0]),
    tokenCellsY:   strconv.Itoa(cells[1]),
    tokenCellsZ:   strconv.Itoa(cells[2]),
    tokenCellsRef: strconv.Itoa(cells[3]),
  })
  if err != nil {
    return "", err
  }

  err = substitute(path.Join(workspace, decomposeParDict), map[string]string{
    tokenNProcs: strconv.Itoa(params.NProcs),
  })
  if err != nil {
    return "", err
  }

  // The template default is kept unless an end time override is supplied
  if params.EndTime > 0 {
    err = rewriteEndTime(path.Join(workspace, controlDict), params.EndTime)
    if err != nil {
      return "", err
    }
  }

  return workspace, nil
}

// substitute performs literal token replacement within one case file.
func substitute(filePath string, tokens map[string]string) error {
  dat, err := ioutil.ReadFile(filePath)
  if err != nil {
    return errs.New(errs.CodeIO, "Could not read case file: %s", err)
  }

  contents := string(dat)
  for token, value := range tokens {
    contents = strings.ReplaceAll(contents, token, value)
  }

  return ioutil.WriteFile(filePath, []byte(contents), 0644)
}

// rewriteEndTime replaces the existing endTime statement in the run control
// file, preserving its alignment.
func rewriteEndTime(filePath string, endTime float64) error {
  dat, err := ioutil.ReadFile(filePath)
  if err != nil {
    return errs.New(errs.CodeIO, "Could not read case file: %s", err)
  }

  value := strconv.FormatFloat(endTime, 'g', -1, 64)
  contents := endTimePattern.ReplaceAllString(
    string(dat), fmt.Sprintf("endTime${1}%s;", value),
  )

  return ioutil.WriteFile(filePath, []byte(contents), 0644)
}
