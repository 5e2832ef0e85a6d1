package spec
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
  "strconv"
  "strings"

  "github.com/cfd-hpc/foambench/internal/errs"
)

const (
  MinMeshLevel = 1
  MaxMeshLevel = 4

  // DefaultWallTime is the time limit declared to the scheduler when the
  // user does not request one.
  DefaultWallTime = "02:00:00"
)

// meshCells maps a refinement level onto the four block resolutions
// substituted into blockMeshDict.  Values grow roughly 8x in cell count per
// level.
var meshCells = map[int][4]int{
  1: {20, 15, 8, 4},
  2: {40, 30, 15, 8},
  3: {80, 60, 30, 16},
  4: {160, 120, 60, 32},
}

// Params is the immutable description of one benchmark run: a fixed problem
// size measured across a list of node counts.  It is built once from user
// input and passed through the pipeline unchanged.
type Params struct {
  Container  string
  Template   string
  NProcs     int
  MeshLevel  int
  Nodes      []int
  EndTime    float64 // <= 0 keeps the template default
  WallTime   string
  Partition  string
  Account    string
  SbatchArgs string
  OutputDir  string
}

// Validate checks the parameter set before anything touches the filesystem.
func (p *Params) Validate() error {
  if p.MeshLevel < MinMeshLevel || p.MeshLevel > MaxMeshLevel {
    return errs.New(errs.CodeConfiguration,
      "Mesh level must be between %d and %d: %d",
      MinMeshLevel, MaxMeshLevel, p.MeshLevel,
    )
  }

  if p.NProcs <= 0 {
    return errs.New(errs.CodeConfiguration,
      "Number of processes must be positive: %d", p.NProcs,
    )
  }

  if len(p.Nodes) == 0 {
    return errs.New(errs.CodeConfiguration, "No node counts requested")
  }

  for _, n := range p.Nodes {
    if n <= 0 {
      return errs.New(errs.CodeConfiguration, "Invalid node count: %d", n)
    }
  }

  if len(p.Container) == 0 {
    return errs.New(errs.CodeConfiguration, "Container image not specified")
  }

  return nil
}

// MeshCells returns the block resolutions for a refinement level.
func MeshCells(level int) ([4]int, error) {
  cells, ok := meshCells[level]
  if !ok {
    return [4]int{}, errs.New(errs.CodeConfiguration,
      "Mesh level must be between %d and %d: %d",
      MinMeshLevel, MaxMeshLevel, level,
    )
  }

  return cells, nil
}

// ParseNodes parses a comma-separated list of node counts, e.g. "1,2,4".
func ParseNodes(nodes string) ([]int, error) {
  var parsed []int

  for _, field := range strings.Split(nodes, ",") {
    n, err := strconv.Atoi(strings.TrimSpace(field))
    if err != nil {
      return nil, errs.New(errs.CodeConfiguration,
        "Invalid syntax for node counts: %s", nodes,
      )
    }

    parsed = append(parsed, n)
  }

  return parsed, nil
}
