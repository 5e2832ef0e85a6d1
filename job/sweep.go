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
  "time"

  "github.com/cfd-hpc/foambench/log"
  "github.com/cfd-hpc/foambench/spec"
  "github.com/cfd-hpc/foambench/internal/errs"
)

// Sweep executes the single-run pipeline once per (process count, mesh
// level) combination, in nested iteration order, each with an isolated
// output directory, then concatenates the per-run tables.  A combination's
// fatal error is logged and the sweep continues; the missing rows surface
// when combining.  Returns the combined table path.
func Sweep(base *spec.Params, sweep *spec.SweepSpec) (string, error) {
  root := path.Join(
    base.OutputDir,
    "results-"+time.Now().Format("20060102-150405"),
  )

  if err := os.MkdirAll(root, os.ModePerm); err != nil {
    return "", errs.New(errs.CodeIO, "Could not create sweep directory: %s", err)
  }

  log.Infof("Sweeping %d combinations under %s",
    len(sweep.NProcs)*len(sweep.MeshLevels), root)

  var tables []string
  for _, nprocs := range sweep.NProcs {
    for _, level := range sweep.MeshLevels {
      // Each combination gets its own immutable parameter value and its own
      // workspace, never shared with another combination.
      params := *base
      params.NProcs = nprocs
      params.MeshLevel = level
      params.OutputDir = path.Join(root, fmt.Sprintf("np%d_ml%d", nprocs, level))

      tables = append(tables, path.Join(params.OutputDir, ResultsFileName))

      if err := runOne(&params); err != nil {
        log.Errorf("Combination nprocs=%d mesh_level=%d failed: %s",
          nprocs, level, err)
        continue
      }
    }
  }

  combined := path.Join(root, CombinedFileName)
  rows, err := Combine(tables, combined)
  if err != nil {
    return "", err
  }

  log.Infof("Combined %d rows into %s", rows, combined)

  return combined, nil
}

// runOne drives the full single-run pipeline for one combination.
func runOne(params *spec.Params) error {
  j, err := NewJob(params)
  if err != nil {
    return err
  }

  if err := j.Prepare(); err != nil {
    return err
  }

  return j.Start()
}
